package billing

import "github.com/shopspring/decimal"

// ServiceCharge is one entry of a home's add-on service catalog at the
// price currently in effect.
type ServiceCharge struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ServicesTotal sums the unit price of every selected service. A price is
// taken from overrides first, then from the catalog; a service missing from
// both contributes zero. Duplicate ids are counted once.
func ServicesTotal(selected []uint, catalog []ServiceCharge, overrides map[uint]decimal.Decimal) decimal.Decimal {
	prices := make(map[uint]decimal.Decimal, len(catalog))
	for _, c := range catalog {
		prices[c.ID] = c.Price
	}
	total := decimal.Zero
	for _, id := range UniqueIDs(selected) {
		if p, ok := overrides[id]; ok {
			total = total.Add(p)
			continue
		}
		total = total.Add(prices[id])
	}
	return total
}

// UniqueIDs returns ids with duplicates and zero ids removed, keeping the
// first occurrence order.
func UniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func applyOverrides(catalog []ServiceCharge, overrides map[uint]decimal.Decimal) []ServiceCharge {
	out := make([]ServiceCharge, 0, len(catalog)+len(overrides))
	known := make(map[uint]struct{}, len(catalog))
	for _, c := range catalog {
		if p, ok := overrides[c.ID]; ok {
			c.Price = p
		}
		known[c.ID] = struct{}{}
		out = append(out, c)
	}
	for id, p := range overrides {
		if _, ok := known[id]; !ok {
			out = append(out, ServiceCharge{ID: id, Price: p})
		}
	}
	return out
}
