package billing

import "github.com/shopspring/decimal"

// Room is the part of a rented room the calculator reads. It is copied
// into the invoice so later edits of the room do not change past invoices.
type Room struct {
	ID        uint
	HomeID    uint
	Name      string
	Tenant    string
	Phone     string
	Occupants decimal.Decimal
	Rent      decimal.Decimal
}

// Prices holds a home's unit prices. Shared-equipment usage is billed at
// the electricity price.
type Prices struct {
	Electric decimal.Decimal `json:"electric_price"`
	Water    decimal.Decimal `json:"water_price"`
}

// Readings are the raw meter readings as entered. Values may be numbers,
// numeric text or nil; they go through Coerce. Water readings are kept on
// the invoice but water is billed per occupant, not metered.
type Readings struct {
	OldElectric any `json:"old_electric"`
	NewElectric any `json:"new_electric"`
	OldWater    any `json:"old_water"`
	NewWater    any `json:"new_water"`
	OldShared   any `json:"old_shared"`
	NewShared   any `json:"new_shared"`
}

// Sharing configures per-head apportionment of the shared-equipment meter.
type Sharing struct {
	Enabled bool `json:"enabled"`
	Divisor any  `json:"divisor"`
}

// Selection is the set of add-on services chosen for an invoice together
// with the catalog and any explicit per-service price overrides.
type Selection struct {
	ServiceIDs []uint
	Catalog    []ServiceCharge
	Overrides  map[uint]decimal.Decimal
}

// Input gathers everything Compute needs.
type Input struct {
	Room     Room
	Prices   Prices
	Readings Readings
	Sharing  Sharing
	Services Selection
}

// Invoice is the outcome of one billing computation for one room. It is a
// value: Compute returns a fresh copy and nothing in this package mutates
// one afterwards.
type Invoice struct {
	RoomID   uint
	HomeID   uint
	RoomName string
	Tenant   string
	Phone    string

	Occupants decimal.Decimal
	Rent      decimal.Decimal

	OldElectric decimal.Decimal
	NewElectric decimal.Decimal
	OldWater    decimal.Decimal
	NewWater    decimal.Decimal
	OldShared   decimal.Decimal
	NewShared   decimal.Decimal

	ElectricUsage        decimal.Decimal
	WaterUsage           decimal.Decimal
	SharedUsage          decimal.Decimal
	SharedEffectiveUsage decimal.Decimal
	// CombinedUsage is electricity plus effective shared-equipment usage.
	CombinedUsage decimal.Decimal

	Shared  bool
	Divisor decimal.NullDecimal

	ServiceIDs []uint

	ElectricAmount decimal.Decimal
	WaterAmount    decimal.Decimal
	SharedAmount   decimal.Decimal
	ServicesAmount decimal.Decimal
	// NumberPrice is floor(ElectricAmount + SharedAmount).
	NumberPrice decimal.Decimal
	Total       decimal.Decimal
}

// Compute derives the five billable components and the grand total:
//
//	electric = (new_e - old_e) * electric_price
//	water    = occupants * water_price
//	shared   = apportion(new_s - old_s) * electric_price
//	total    = floor(electric + water + shared + rent + services)
func Compute(in Input) Invoice {
	r := in.Readings
	occupants := in.Room.Occupants

	electricUsage := MeterDelta(r.OldElectric, r.NewElectric)
	sharedUsage := MeterDelta(r.OldShared, r.NewShared)
	divisor := Coerce(in.Sharing.Divisor)
	sharedEffective := Apportion(sharedUsage, in.Sharing.Enabled, divisor, occupants)

	ids := UniqueIDs(in.Services.ServiceIDs)

	inv := Invoice{
		RoomID:    in.Room.ID,
		HomeID:    in.Room.HomeID,
		RoomName:  in.Room.Name,
		Tenant:    in.Room.Tenant,
		Phone:     in.Room.Phone,
		Occupants: occupants,
		Rent:      in.Room.Rent,

		OldElectric: Coerce(r.OldElectric),
		NewElectric: Coerce(r.NewElectric),
		OldWater:    Coerce(r.OldWater),
		NewWater:    Coerce(r.NewWater),
		OldShared:   Coerce(r.OldShared),
		NewShared:   Coerce(r.NewShared),

		ElectricUsage:        electricUsage,
		WaterUsage:           occupants,
		SharedUsage:          sharedUsage,
		SharedEffectiveUsage: sharedEffective,
		CombinedUsage:        electricUsage.Add(sharedEffective),

		Shared:     in.Sharing.Enabled,
		ServiceIDs: ids,

		ElectricAmount: electricUsage.Mul(in.Prices.Electric),
		WaterAmount:    WaterAmount(occupants, in.Prices.Water),
		SharedAmount:   sharedEffective.Mul(in.Prices.Electric),
		ServicesAmount: ServicesTotal(ids, in.Services.Catalog, in.Services.Overrides),
	}
	if in.Sharing.Enabled {
		inv.Divisor = decimal.NewNullDecimal(divisor)
	}
	inv.NumberPrice = inv.ElectricAmount.Add(inv.SharedAmount).Floor()
	inv.Total = grandTotal(inv.ElectricAmount, inv.WaterAmount, inv.SharedAmount, inv.Rent, inv.ServicesAmount)
	return inv
}

// WaterAmount is the flat per-head water charge. Water readings play no
// part in it.
func WaterAmount(occupants, unitPrice decimal.Decimal) decimal.Decimal {
	return occupants.Mul(unitPrice)
}

// Preview computes an invoice and the breakdown a user sees before
// confirming it. The breakdown total always equals the invoice total.
func Preview(in Input) (Invoice, Breakdown) {
	inv := Compute(in)
	catalog := applyOverrides(in.Services.Catalog, in.Services.Overrides)
	return inv, Reconstruct(inv, in.Prices, catalog)
}

func grandTotal(components ...decimal.Decimal) decimal.Decimal {
	return decimal.Sum(decimal.Zero, components...).Floor()
}
