package services

import (
	"context"
	"time"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HomeInput is the editable part of a home.
type HomeInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address" validate:"max=500"`
}

// HomeSummary is a home with the figures shown on the home list.
type HomeSummary struct {
	models.Home
	MonthRevenue decimal.Decimal `json:"month_revenue"`
	InvoiceCount int64           `json:"invoice_count"`
}

type HomeService struct {
	db       *gorm.DB
	notifier *HomesNotifier
	now      func() time.Time
}

// NewHomeService returns a HomeService publishing changes on notifier,
// which may be nil.
func NewHomeService(db *gorm.DB, notifier *HomesNotifier) *HomeService {
	return &HomeService{db: db, notifier: notifier, now: time.Now}
}

// Get loads a home without its rooms.
func (s *HomeService) Get(ctx context.Context, homeID uint) (*models.Home, error) {
	var h models.Home
	if err := s.db.WithContext(ctx).First(&h, homeID).Error; err != nil {
		return nil, notFound(err, "home")
	}
	return &h, nil
}

// List returns the user's homes, newest first, with this month's revenue
// and the number of invoices of each.
func (s *HomeService) List(ctx context.Context, userID uint) ([]HomeSummary, error) {
	var homes []models.Home
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&homes).Error; err != nil {
		return nil, err
	}
	if len(homes) == 0 {
		return []HomeSummary{}, nil
	}

	ids := make([]uint, len(homes))
	for i, h := range homes {
		ids[i] = h.ID
	}
	db := s.db.WithContext(ctx)
	all, err := invoiceTotals(db, ids, time.Time{})
	if err != nil {
		return nil, err
	}
	month, err := invoiceTotals(db, ids, monthStart(s.now()))
	if err != nil {
		return nil, err
	}

	out := make([]HomeSummary, 0, len(homes))
	for _, h := range homes {
		out = append(out, HomeSummary{Home: h, MonthRevenue: month[h.ID].Revenue, InvoiceCount: all[h.ID].Invoices})
	}
	return out, nil
}

// Create stores a new home for userID together with its zero-priced settings.
func (s *HomeService) Create(ctx context.Context, userID uint, in HomeInput) (*models.Home, error) {
	if err := invalid(validation.Struct(in)); err != nil {
		return nil, err
	}
	home := &models.Home{UserID: userID, Name: in.Name, Address: in.Address}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(home).Error; err != nil {
			return err
		}
		return tx.Create(&models.Setting{HomeID: home.ID}).Error
	})
	if err != nil {
		return nil, &SaveError{Op: "create home", Cause: err}
	}
	s.notifier.Publish(HomesChanged{UserID: userID, HomeID: home.ID, Kind: HomeCreated})
	return home, nil
}

// Update changes the name and address of home.
func (s *HomeService) Update(ctx context.Context, home *models.Home, in HomeInput) error {
	if err := invalid(validation.Struct(in)); err != nil {
		return err
	}
	home.Name = in.Name
	home.Address = in.Address
	if err := s.db.WithContext(ctx).Model(home).
		Updates(map[string]any{"name": in.Name, "address": in.Address}).Error; err != nil {
		return &SaveError{Op: "update home", Cause: err}
	}
	s.notifier.Publish(HomesChanged{UserID: home.UserID, HomeID: home.ID, Kind: HomeUpdated})
	return nil
}

// Delete removes home with its rooms, services, settings and invoices.
func (s *HomeService) Delete(ctx context.Context, home *models.Home) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Invoice{}, &models.Service{}, &models.Setting{}, &models.Room{}} {
			if err := tx.Where("home_id = ?", home.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Home{}, home.ID).Error
	})
	if err != nil {
		return &SaveError{Op: "delete home", Cause: err}
	}
	s.notifier.Publish(HomesChanged{UserID: home.UserID, HomeID: home.ID, Kind: HomeDeleted})
	return nil
}

// Detail loads a home with its rooms and writes the recomputed room counters
// back. Two concurrent loads both write; the last one wins.
func (s *HomeService) Detail(ctx context.Context, homeID uint) (*models.Home, error) {
	db := s.db.WithContext(ctx)
	var h models.Home
	if err := db.Preload("Rooms", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("room_name ASC, id ASC")
	}).First(&h, homeID).Error; err != nil {
		return nil, notFound(err, "home")
	}

	total, empty := models.CountRooms(h.Rooms)
	if total != h.RoomTotal || empty != h.RoomTotalEmpty {
		if err := db.Model(&models.Home{}).Where("id = ?", h.ID).
			Updates(map[string]any{"room_total": total, "room_total_empty": empty}).Error; err != nil {
			return nil, &SaveError{Op: "update room counters", Cause: err}
		}
	}
	h.RoomTotal, h.RoomTotalEmpty = total, empty
	return &h, nil
}

type invoiceAmount struct {
	HomeID      uint
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// invoiceTotal is the number and summed total of a home's invoices.
type invoiceTotal struct {
	HomeID   uint
	Invoices int64
	Revenue  decimal.Decimal
}

// invoiceTotals aggregates invoices per home in the database. A non-zero
// since keeps only invoices created at or after it. Homes without invoices
// are absent from the map; their zero value reads as no revenue.
func invoiceTotals(db *gorm.DB, homeIDs []uint, since time.Time) (map[uint]invoiceTotal, error) {
	q := db.Model(&models.Invoice{}).
		Select("home_id, COUNT(*) AS invoices, COALESCE(SUM(total_amount), 0) AS revenue").
		Where("home_id IN ?", homeIDs)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	var rows []invoiceTotal
	if err := q.Group("home_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]invoiceTotal, len(rows))
	for _, r := range rows {
		out[r.HomeID] = r
	}
	return out, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
