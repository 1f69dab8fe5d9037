package models

import (
	"time"

	"github.com/diewo77/go-rentals/internal/billing"
	"github.com/shopspring/decimal"
)

// Room is a rented room of a home together with its current tenant.
type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	HomeID uint `gorm:"index;not null" json:"home_id"`

	RoomName string `gorm:"size:100;not null" json:"room_name"`
	Tenant   string `gorm:"size:255" json:"tenant"`
	Phone    string `gorm:"size:50" json:"phone"`
	Hometown string `gorm:"size:255" json:"hometown,omitempty"`
	IDCard   string `gorm:"size:50" json:"id_card,omitempty"`

	// Quantity is the number of occupants billed for water and shared equipment.
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	RoomPrice decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"room_price"`
	Deposit   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"deposit"`

	RentalDate *time.Time `json:"rental_date,omitempty"`
	Note       string     `gorm:"type:text" json:"note,omitempty"`
	IsActive   bool       `gorm:"not null" json:"is_active"`
}

// Billing returns the snapshot of the room read by the invoice calculator.
func (r *Room) Billing() billing.Room {
	return billing.Room{
		ID:        r.ID,
		HomeID:    r.HomeID,
		Name:      r.RoomName,
		Tenant:    r.Tenant,
		Phone:     r.Phone,
		Occupants: decimal.NewFromInt(int64(r.Quantity)),
		Rent:      r.RoomPrice,
	}
}
