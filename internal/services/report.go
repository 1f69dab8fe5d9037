package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// MonthRevenue is the sum of invoice totals created in one calendar month.
type MonthRevenue struct {
	Month    int             `json:"month"`
	Total    decimal.Decimal `json:"total"`
	Invoices int             `json:"invoices"`
}

// RevenueReport is a home's revenue for one year. Best and Worst are month
// numbers (1-12); ties go to the earliest month.
type RevenueReport struct {
	HomeID  uint            `json:"home_id"`
	Year    int             `json:"year"`
	Months  []MonthRevenue  `json:"months"`
	Total   decimal.Decimal `json:"total"`
	Average decimal.Decimal `json:"average"`
	Best    int             `json:"best_month"`
	Worst   int             `json:"worst_month"`
}

type ReportService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, now: time.Now}
}

// Revenue sums stored invoice totals per month of year. year <= 0 means the
// current year.
func (s *ReportService) Revenue(ctx context.Context, homeID uint, year int) (*RevenueReport, error) {
	now := s.now()
	if year <= 0 {
		year = now.Year()
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(1, 0, 0)

	var rows []invoiceAmount
	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Select("home_id, total_amount, created_at").
		Where("home_id = ? AND created_at >= ? AND created_at < ?", homeID, from, to).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	rep := &RevenueReport{HomeID: homeID, Year: year, Months: make([]MonthRevenue, 12), Total: decimal.Zero}
	for i := range rep.Months {
		rep.Months[i] = MonthRevenue{Month: i + 1, Total: decimal.Zero}
	}
	for _, r := range rows {
		m := &rep.Months[r.CreatedAt.In(now.Location()).Month()-1]
		m.Total = m.Total.Add(r.TotalAmount)
		m.Invoices++
		rep.Total = rep.Total.Add(r.TotalAmount)
	}
	rep.Average = rep.Total.Div(decimal.NewFromInt(12))

	best, worst := 0, 0
	for i, m := range rep.Months {
		if m.Total.GreaterThan(rep.Months[best].Total) {
			best = i
		}
		if m.Total.LessThan(rep.Months[worst].Total) {
			worst = i
		}
	}
	rep.Best, rep.Worst = best+1, worst+1
	return rep, nil
}

var invoiceExportHeader = []string{
	"Invoice", "Date", "Room", "Tenant", "Phone", "Occupants",
	"Old electric", "New electric", "Electric usage",
	"Old shared", "New shared", "Shared usage", "Shared billed usage",
	"Electric", "Water", "Shared", "Rent", "Services", "Total",
}

// ExportInvoices writes a home's invoices, newest first, as an xlsx workbook.
func (s *ReportService) ExportInvoices(ctx context.Context, homeID uint) ([]byte, error) {
	var invoices []models.Invoice
	if err := s.db.WithContext(ctx).
		Where("home_id = ?", homeID).
		Order("created_at DESC, id DESC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Invoices"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	header := make([]any, len(invoiceExportHeader))
	for i, h := range invoiceExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, inv := range invoices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			inv.ID, inv.CreatedAt.Format("2006-01-02"), inv.RoomName, inv.Tenant, inv.Phone,
			num(inv.Quantity),
			num(inv.OldElectric), num(inv.NewElectric), num(inv.ElectricUsage),
			num(inv.OldShared), num(inv.NewShared), num(inv.SharedUsage), num(inv.SharedEffectiveUsage),
			num(inv.ElectricAmount), num(inv.WaterAmount), num(inv.SharedAmount),
			num(inv.RoomPrice), num(inv.ServicesAmount), num(inv.TotalAmount),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write invoice %d: %w", inv.ID, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
