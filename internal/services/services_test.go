package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/diewo77/go-rentals/internal/billing"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "rentals.db")), &gorm.Config{})
	require.NoError(t, err, "open db")
	require.NoError(t, db.AutoMigrate(models.All()...), "migrate")
	return db
}

// clock is a settable time source for services under test.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newClock() *clock {
	return &clock{t: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)}
}

type fixture struct {
	db       *gorm.DB
	clock    *clock
	user     models.User
	home     *models.Home
	room     *models.Room
	homes    *HomeService
	rooms    *RoomService
	catalog  *CatalogService
	invoices *InvoiceService
	reports  *ReportService
}

// newFixture seeds one user owning one home with a two-person room rented
// at 2,000,000, electricity at 3,000 and water at 15,000 per person.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := setupTestDB(t)
	c := newClock()

	f := &fixture{db: db, clock: c}
	f.homes = NewHomeService(db, nil)
	f.homes.now = c.now
	f.rooms = NewRoomService(db)
	f.catalog = NewCatalogService(db)
	f.invoices = NewInvoiceService(db, f.catalog)
	f.invoices.now = c.now
	f.reports = NewReportService(db)
	f.reports.now = c.now

	f.user = models.User{Email: "owner@example.com", Name: "Owner", Password: "x"}
	require.NoError(t, db.Create(&f.user).Error)

	home, err := f.homes.Create(ctx, f.user.ID, HomeInput{Name: "Nha A", Address: "12 Le Loi"})
	require.NoError(t, err)
	f.home = home

	_, err = f.catalog.UpdateSettings(ctx, home.ID, SettingsInput{ElectricPrice: "3.000", WaterPrice: 15000})
	require.NoError(t, err)

	room, err := f.rooms.Create(ctx, home.ID, RoomInput{
		RoomName:  "101",
		Tenant:    "Tran Van B",
		Phone:     "0900000000",
		Quantity:  2,
		RoomPrice: "2.000.000",
		Deposit:   "1.000.000",
	})
	require.NoError(t, err)
	f.room = room
	return f
}

// basicRequest bills electricity 100 -> 150 and nothing shared.
func (f *fixture) basicRequest() InvoiceRequest {
	return InvoiceRequest{
		RoomID:   f.room.ID,
		Readings: billing.Readings{OldElectric: 100, NewElectric: "150"},
	}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
