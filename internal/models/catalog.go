package models

import (
	"time"

	"github.com/diewo77/go-rentals/internal/billing"
	"github.com/shopspring/decimal"
)

// Service is an add-on (wifi, trash collection, parking...) offered by a
// home. Its price may change over time; invoices only keep the total.
type Service struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	HomeID uint            `gorm:"index;not null" json:"home_id"`
	Name   string          `gorm:"size:255;not null" json:"name"`
	Price  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"`
}

// Charges converts a service list into the catalog the calculator reads.
func Charges(services []Service) []billing.ServiceCharge {
	out := make([]billing.ServiceCharge, 0, len(services))
	for _, s := range services {
		out = append(out, billing.ServiceCharge{ID: s.ID, Name: s.Name, Price: s.Price})
	}
	return out
}

// Setting holds the current unit prices of a home. There is one row per home.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	HomeID        uint            `gorm:"uniqueIndex;not null" json:"home_id"`
	ElectricPrice decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"electric_price"`
	WaterPrice    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"water_price"`
}

// Prices returns the unit prices as used by the calculator.
func (s *Setting) Prices() billing.Prices {
	return billing.Prices{Electric: s.ElectricPrice, Water: s.WaterPrice}
}
