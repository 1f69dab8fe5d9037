package billing

import "github.com/shopspring/decimal"

// LineKind names one billable component of an invoice.
type LineKind string

const (
	LineElectric LineKind = "electric"
	LineShared   LineKind = "shared"
	LineWater    LineKind = "water"
	LineRent     LineKind = "rent"
	LineServices LineKind = "services"
)

// Line is one row of a displayed breakdown.
type Line struct {
	Kind      LineKind        `json:"kind"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// Breakdown is a presentation of an invoice's components priced with a
// given set of prices. Total is recomputed from the lines; AmountOwed is the
// total stored on the invoice and is the only figure that is charged.
type Breakdown struct {
	Lines      []Line          `json:"lines"`
	Services   []ServiceCharge `json:"services"`
	Total      decimal.Decimal `json:"total"`
	AmountOwed decimal.Decimal `json:"amount_owed"`
	// Drift is Total - AmountOwed; non-zero once prices changed after creation.
	Drift decimal.Decimal `json:"drift"`
}

// Amount returns the amount of the line of the given kind, zero if absent.
func (b Breakdown) Amount(kind LineKind) decimal.Decimal {
	for _, l := range b.Lines {
		if l.Kind == kind {
			return l.Amount
		}
	}
	return decimal.Zero
}

// Reconstruct redraws an invoice's breakdown from its stored usage and
// sharing flags using the given prices and service catalog, which are
// usually the ones in effect now rather than at creation. The result is for
// display; rec.Total stays the amount owed.
func Reconstruct(rec Invoice, prices Prices, catalog []ServiceCharge) Breakdown {
	effective := Apportion(rec.SharedUsage, rec.Shared, Coerce(rec.Divisor), rec.Occupants)

	byID := make(map[uint]ServiceCharge, len(catalog))
	for _, c := range catalog {
		byID[c.ID] = c
	}
	services := make([]ServiceCharge, 0, len(rec.ServiceIDs))
	for _, id := range UniqueIDs(rec.ServiceIDs) {
		c, ok := byID[id]
		if !ok {
			c = ServiceCharge{ID: id, Price: decimal.Zero}
		}
		services = append(services, c)
	}
	servicesAmount := ServicesTotal(rec.ServiceIDs, catalog, nil)

	lines := []Line{
		{Kind: LineElectric, Quantity: rec.ElectricUsage, UnitPrice: prices.Electric, Amount: rec.ElectricUsage.Mul(prices.Electric)},
		{Kind: LineShared, Quantity: effective, UnitPrice: prices.Electric, Amount: effective.Mul(prices.Electric)},
		{Kind: LineWater, Quantity: rec.WaterUsage, UnitPrice: prices.Water, Amount: WaterAmount(rec.WaterUsage, prices.Water)},
		{Kind: LineRent, Quantity: decimal.NewFromInt(1), UnitPrice: rec.Rent, Amount: rec.Rent},
		{Kind: LineServices, Quantity: decimal.NewFromInt(int64(len(services))), UnitPrice: decimal.Zero, Amount: servicesAmount},
	}

	amounts := make([]decimal.Decimal, 0, len(lines))
	for _, l := range lines {
		amounts = append(amounts, l.Amount)
	}
	total := grandTotal(amounts...)

	return Breakdown{
		Lines:      lines,
		Services:   services,
		Total:      total,
		AmountOwed: rec.Total,
		Drift:      total.Sub(rec.Total),
	}
}
