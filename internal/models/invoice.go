package models

import (
	"errors"
	"time"

	"github.com/diewo77/go-rentals/internal/billing"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrInvoiceImmutable is returned when something tries to update a stored invoice.
var ErrInvoiceImmutable = errors.New("invoices cannot be modified")

// Invoice is the persisted outcome of one billing computation for one room.
// Rows are only ever inserted or deleted.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	HomeID uint `gorm:"index;not null" json:"home_id"`
	RoomID uint `gorm:"index;not null" json:"room_id"`

	// Room snapshot
	RoomName  string          `gorm:"size:100" json:"room_name"`
	Tenant    string          `gorm:"size:255" json:"tenant"`
	Phone     string          `gorm:"size:50" json:"phone"`
	Quantity  decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"quantity"`
	RoomPrice decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"room_price"`

	// Meter readings
	OldElectric decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"old_electric"`
	NewElectric decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"new_electric"`
	OldWater    decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"old_water"`
	NewWater    decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"new_water"`
	OldShared   decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"old_shared"`
	NewShared   decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"new_shared"`

	// Usage
	ElectricUsage        decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"electric_usage"`
	WaterUsage           decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"water_usage"`
	SharedUsage          decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"shared_usage"`
	SharedEffectiveUsage decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"shared_effective_usage"`
	CombinedUsage        decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"combined_usage"`

	// Sharing
	Shared  bool                `gorm:"not null;default:false" json:"shared"`
	Divisor decimal.NullDecimal `gorm:"type:decimal(20,6)" json:"divisor"`

	ServiceIDs datatypes.JSONSlice[uint] `json:"service_ids"`

	// Amounts
	ElectricAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"electric_amount"`
	WaterAmount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"water_amount"`
	SharedAmount   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"shared_amount"`
	ServicesAmount decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"services_amount"`
	NumberPrice    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"number_price"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"total_amount"`
}

// BeforeUpdate rejects every update issued through gorm.
func (i *Invoice) BeforeUpdate(tx *gorm.DB) error {
	return ErrInvoiceImmutable
}

// NewInvoice maps a computed invoice onto a row ready to insert.
func NewInvoice(inv billing.Invoice) *Invoice {
	ids := inv.ServiceIDs
	if ids == nil {
		ids = []uint{}
	}
	return &Invoice{
		HomeID:    inv.HomeID,
		RoomID:    inv.RoomID,
		RoomName:  inv.RoomName,
		Tenant:    inv.Tenant,
		Phone:     inv.Phone,
		Quantity:  inv.Occupants,
		RoomPrice: inv.Rent,

		OldElectric: inv.OldElectric,
		NewElectric: inv.NewElectric,
		OldWater:    inv.OldWater,
		NewWater:    inv.NewWater,
		OldShared:   inv.OldShared,
		NewShared:   inv.NewShared,

		ElectricUsage:        inv.ElectricUsage,
		WaterUsage:           inv.WaterUsage,
		SharedUsage:          inv.SharedUsage,
		SharedEffectiveUsage: inv.SharedEffectiveUsage,
		CombinedUsage:        inv.CombinedUsage,

		Shared:     inv.Shared,
		Divisor:    inv.Divisor,
		ServiceIDs: datatypes.JSONSlice[uint](ids),

		ElectricAmount: inv.ElectricAmount,
		WaterAmount:    inv.WaterAmount,
		SharedAmount:   inv.SharedAmount,
		ServicesAmount: inv.ServicesAmount,
		NumberPrice:    inv.NumberPrice,
		TotalAmount:    inv.Total,
	}
}

// Billing returns the stored record in the calculator's representation.
func (i *Invoice) Billing() billing.Invoice {
	return billing.Invoice{
		RoomID:    i.RoomID,
		HomeID:    i.HomeID,
		RoomName:  i.RoomName,
		Tenant:    i.Tenant,
		Phone:     i.Phone,
		Occupants: i.Quantity,
		Rent:      i.RoomPrice,

		OldElectric: i.OldElectric,
		NewElectric: i.NewElectric,
		OldWater:    i.OldWater,
		NewWater:    i.NewWater,
		OldShared:   i.OldShared,
		NewShared:   i.NewShared,

		ElectricUsage:        i.ElectricUsage,
		WaterUsage:           i.WaterUsage,
		SharedUsage:          i.SharedUsage,
		SharedEffectiveUsage: i.SharedEffectiveUsage,
		CombinedUsage:        i.CombinedUsage,

		Shared:     i.Shared,
		Divisor:    i.Divisor,
		ServiceIDs: []uint(i.ServiceIDs),

		ElectricAmount: i.ElectricAmount,
		WaterAmount:    i.WaterAmount,
		SharedAmount:   i.SharedAmount,
		ServicesAmount: i.ServicesAmount,
		NumberPrice:    i.NumberPrice,
		Total:          i.TotalAmount,
	}
}
