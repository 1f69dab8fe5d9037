package services

import (
	"context"
	"time"

	"github.com/diewo77/go-rentals/internal/billing"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RoomInput is a room as submitted by a form. Money and quantity fields
// accept numbers or formatted text ("2.000.000").
type RoomInput struct {
	RoomName   string     `json:"room_name" validate:"required,max=100"`
	Tenant     string     `json:"tenant" validate:"required,max=255"`
	Phone      string     `json:"phone" validate:"required,max=50"`
	Hometown   string     `json:"hometown" validate:"max=255"`
	IDCard     string     `json:"id_card" validate:"max=50"`
	Quantity   any        `json:"quantity"`
	RoomPrice  any        `json:"room_price"`
	Deposit    any        `json:"deposit"`
	RentalDate *time.Time `json:"rental_date"`
	Note       string     `json:"note"`
	IsActive   *bool      `json:"is_active"`
}

func (in RoomInput) parse() (quantity int, price, deposit decimal.Decimal, err error) {
	v := validation.Struct(in)
	quantity = int(billing.Coerce(in.Quantity).IntPart())
	price = billing.Coerce(in.RoomPrice)
	deposit = billing.Coerce(in.Deposit)
	validation.MinInt("quantity", quantity, 1, v)
	validation.Positive("room_price", price, v)
	validation.NonNegative("deposit", deposit, v)
	return quantity, price, deposit, invalid(v)
}

func (in RoomInput) apply(r *models.Room) error {
	quantity, price, deposit, err := in.parse()
	if err != nil {
		return err
	}
	r.RoomName = in.RoomName
	r.Tenant = in.Tenant
	r.Phone = in.Phone
	r.Hometown = in.Hometown
	r.IDCard = in.IDCard
	r.Quantity = quantity
	r.RoomPrice = price
	r.Deposit = deposit
	r.RentalDate = in.RentalDate
	r.Note = in.Note
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	return nil
}

type RoomService struct {
	db *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{db: db}
}

// List returns the rooms of a home ordered by name.
func (s *RoomService) List(ctx context.Context, homeID uint) ([]models.Room, error) {
	rooms := []models.Room{}
	err := s.db.WithContext(ctx).Where("home_id = ?", homeID).Order("room_name ASC, id ASC").Find(&rooms).Error
	return rooms, err
}

// Get loads a room of the given home.
func (s *RoomService) Get(ctx context.Context, homeID, roomID uint) (*models.Room, error) {
	var r models.Room
	if err := s.db.WithContext(ctx).Where("home_id = ?", homeID).First(&r, roomID).Error; err != nil {
		return nil, notFound(err, "room")
	}
	return &r, nil
}

// Create adds a room to a home. New rooms are active unless told otherwise.
func (s *RoomService) Create(ctx context.Context, homeID uint, in RoomInput) (*models.Room, error) {
	r := &models.Room{HomeID: homeID, IsActive: true}
	if err := in.apply(r); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, &SaveError{Op: "create room", Cause: err}
	}
	return r, nil
}

// Update replaces the editable fields of a room.
func (s *RoomService) Update(ctx context.Context, homeID, roomID uint, in RoomInput) (*models.Room, error) {
	r, err := s.Get(ctx, homeID, roomID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(r); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return nil, &SaveError{Op: "update room", Cause: err}
	}
	return r, nil
}

// Delete removes a room. Its invoices are kept; they carry their own snapshot.
func (s *RoomService) Delete(ctx context.Context, homeID, roomID uint) error {
	res := s.db.WithContext(ctx).Where("home_id = ?", homeID).Delete(&models.Room{}, roomID)
	if res.Error != nil {
		return &SaveError{Op: "delete room", Cause: res.Error}
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
