package services

import (
	"context"
	"errors"
	"time"

	"github.com/diewo77/go-rentals/internal/billing"
	"github.com/diewo77/go-rentals/internal/logger"
	"github.com/diewo77/go-rentals/internal/metrics"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// InvoiceRequest is what a user submits to compute an invoice for a room.
type InvoiceRequest struct {
	RoomID     uint             `json:"room_id"`
	Readings   billing.Readings `json:"readings"`
	Shared     bool             `json:"shared"`
	Divisor    any              `json:"divisor"`
	ServiceIDs []uint           `json:"service_ids"`
	// ServicePrices overrides catalog prices for this invoice only.
	ServicePrices map[uint]any `json:"service_prices"`
}

// Quote is a computed, not yet stored, invoice with its breakdown.
type Quote struct {
	Invoice   *models.Invoice   `json:"invoice"`
	Breakdown billing.Breakdown `json:"breakdown"`
}

// InvoiceView is a stored invoice redrawn with today's prices. The amount
// owed is always the stored total, see Breakdown.AmountOwed.
type InvoiceView struct {
	Invoice   *models.Invoice   `json:"invoice"`
	Breakdown billing.Breakdown `json:"breakdown"`
}

// InvoicePage is one page of a home's invoices plus revenue figures over
// all of them.
type InvoicePage struct {
	Invoices     []models.Invoice `json:"invoices"`
	Page         int              `json:"page"`
	Limit        int              `json:"limit"`
	TotalPages   int              `json:"total_pages"`
	Total        int64            `json:"total"`
	TotalRevenue decimal.Decimal  `json:"total_revenue"`
	MonthRevenue decimal.Decimal  `json:"month_revenue"`
}

// Prefill is the starting state of the invoice form for a room: the
// previous invoice's closing readings become the opening ones.
type Prefill struct {
	Room          *models.Room             `json:"room"`
	Prices        billing.Prices           `json:"prices"`
	Services      []billing.ServiceCharge  `json:"services"`
	Readings      billing.Readings         `json:"readings"`
	ServiceIDs    []uint                   `json:"service_ids"`
	ServicePrices map[uint]decimal.Decimal `json:"service_prices"`
	LastInvoiceID *uint                    `json:"last_invoice_id,omitempty"`
}

// InvoiceService computes, stores and reads invoices. Stored invoices are
// never updated.
type InvoiceService struct {
	db      *gorm.DB
	catalog *CatalogService
	now     func() time.Time
}

func NewInvoiceService(db *gorm.DB, catalog *CatalogService) *InvoiceService {
	return &InvoiceService{db: db, catalog: catalog, now: time.Now}
}

func (s *InvoiceService) input(ctx context.Context, homeID uint, req InvoiceRequest) (billing.Input, error) {
	if req.RoomID == 0 {
		return billing.Input{}, ErrRoomRequired
	}
	var room models.Room
	if err := s.db.WithContext(ctx).Where("home_id = ?", homeID).First(&room, req.RoomID).Error; err != nil {
		return billing.Input{}, notFound(err, "room")
	}
	prices, err := s.catalog.Prices(ctx, homeID)
	if err != nil {
		return billing.Input{}, err
	}
	catalog, err := s.catalog.Catalog(ctx, homeID)
	if err != nil {
		return billing.Input{}, err
	}
	overrides := make(map[uint]decimal.Decimal, len(req.ServicePrices))
	for id, p := range req.ServicePrices {
		if p != nil {
			overrides[id] = billing.Coerce(p)
		}
	}
	return billing.Input{
		Room:     room.Billing(),
		Prices:   prices,
		Readings: req.Readings,
		Sharing:  billing.Sharing{Enabled: req.Shared, Divisor: req.Divisor},
		Services: billing.Selection{ServiceIDs: req.ServiceIDs, Catalog: catalog, Overrides: overrides},
	}, nil
}

// Preview computes an invoice without storing it.
func (s *InvoiceService) Preview(ctx context.Context, homeID uint, req InvoiceRequest) (*Quote, error) {
	in, err := s.input(ctx, homeID, req)
	if err != nil {
		return nil, err
	}
	inv, breakdown := billing.Preview(in)
	return &Quote{Invoice: models.NewInvoice(inv), Breakdown: breakdown}, nil
}

// Create computes and stores an invoice. When the insert fails the computed
// quote is returned along with a *SaveError so the caller can offer a retry.
// Submitting twice stores two invoices.
func (s *InvoiceService) Create(ctx context.Context, homeID uint, req InvoiceRequest) (*models.Invoice, *Quote, error) {
	q, err := s.Preview(ctx, homeID, req)
	if err != nil {
		return nil, nil, err
	}
	log := logger.FromContext(ctx).With(
		zap.Uint("home_id", homeID),
		zap.Uint("room_id", req.RoomID),
	)

	row := *q.Invoice
	row.CreatedAt = s.now()
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		metrics.InvoiceSaveFailed()
		log.Error("invoice insert failed", zap.Error(err))
		return nil, q, &SaveError{Op: "create invoice", Cause: err}
	}

	if row.ElectricUsage.IsNegative() {
		metrics.NegativeUsage("electric")
		log.Warn("negative electricity usage", zap.Uint("invoice_id", row.ID), zap.String("usage", row.ElectricUsage.String()))
	}
	if row.SharedUsage.IsNegative() {
		metrics.NegativeUsage("shared")
		log.Warn("negative shared-equipment usage", zap.Uint("invoice_id", row.ID), zap.String("usage", row.SharedUsage.String()))
	}
	metrics.InvoiceCreated(row.TotalAmount)
	log.Info("invoice created", zap.Uint("invoice_id", row.ID), zap.String("total", row.TotalAmount.String()))
	return &row, q, nil
}

// Get loads a stored invoice of the given home.
func (s *InvoiceService) Get(ctx context.Context, homeID, invoiceID uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.WithContext(ctx).Where("home_id = ?", homeID).First(&inv, invoiceID).Error; err != nil {
		return nil, notFound(err, "invoice")
	}
	return &inv, nil
}

// View loads a stored invoice and redraws its breakdown with the prices and
// catalog in effect now.
func (s *InvoiceService) View(ctx context.Context, homeID, invoiceID uint) (*InvoiceView, error) {
	inv, err := s.Get(ctx, homeID, invoiceID)
	if err != nil {
		return nil, err
	}
	prices, err := s.catalog.Prices(ctx, homeID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalog.Catalog(ctx, homeID)
	if err != nil {
		return nil, err
	}
	return &InvoiceView{Invoice: inv, Breakdown: billing.Reconstruct(inv.Billing(), prices, catalog)}, nil
}

// List returns one page of a home's invoices, newest first. Out of range
// pages are clamped.
func (s *InvoiceService) List(ctx context.Context, homeID uint, page, limit int) (*InvoicePage, error) {
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	db := s.db.WithContext(ctx)

	all, err := invoiceTotals(db, []uint{homeID}, time.Time{})
	if err != nil {
		return nil, err
	}
	month, err := invoiceTotals(db, []uint{homeID}, monthStart(s.now()))
	if err != nil {
		return nil, err
	}
	total := all[homeID].Invoices
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	out := &InvoicePage{
		Invoices:     []models.Invoice{},
		Page:         page,
		Limit:        limit,
		TotalPages:   totalPages,
		Total:        total,
		TotalRevenue: all[homeID].Revenue,
		MonthRevenue: month[homeID].Revenue,
	}

	if err := db.Where("home_id = ?", homeID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&out.Invoices).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one invoice. Other invoices are untouched.
func (s *InvoiceService) Delete(ctx context.Context, homeID, invoiceID uint) error {
	res := s.db.WithContext(ctx).Where("home_id = ?", homeID).Delete(&models.Invoice{}, invoiceID)
	if res.Error != nil {
		logger.FromContext(ctx).Error("invoice delete failed", zap.Uint("invoice_id", invoiceID), zap.Error(res.Error))
		return &SaveError{Op: "delete invoice", Cause: res.Error}
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	metrics.InvoiceDeleted()
	logger.FromContext(ctx).Info("invoice deleted", zap.Uint("invoice_id", invoiceID), zap.Uint("home_id", homeID))
	return nil
}

// LatestForRoom returns the most recent invoice of a room.
func (s *InvoiceService) LatestForRoom(ctx context.Context, roomID uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		First(&inv).Error
	if err != nil {
		return nil, notFound(err, "invoice")
	}
	return &inv, nil
}

// Prefill builds the initial invoice form for a room.
func (s *InvoiceService) Prefill(ctx context.Context, homeID, roomID uint) (*Prefill, error) {
	if roomID == 0 {
		return nil, ErrRoomRequired
	}
	var room models.Room
	if err := s.db.WithContext(ctx).Where("home_id = ?", homeID).First(&room, roomID).Error; err != nil {
		return nil, notFound(err, "room")
	}
	prices, err := s.catalog.Prices(ctx, homeID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalog.Catalog(ctx, homeID)
	if err != nil {
		return nil, err
	}

	p := &Prefill{
		Room:          &room,
		Prices:        prices,
		Services:      catalog,
		ServiceIDs:    []uint{},
		ServicePrices: map[uint]decimal.Decimal{},
	}

	last, err := s.LatestForRoom(ctx, roomID)
	if errors.Is(err, ErrNotFound) {
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	p.LastInvoiceID = &last.ID
	p.Readings.OldElectric = last.NewElectric
	p.Readings.OldShared = last.NewShared

	current := make(map[uint]decimal.Decimal, len(catalog))
	for _, c := range catalog {
		current[c.ID] = c.Price
	}
	for _, id := range last.ServiceIDs {
		p.ServiceIDs = append(p.ServiceIDs, id)
		if price, ok := current[id]; ok {
			p.ServicePrices[id] = price
		}
	}
	return p, nil
}
