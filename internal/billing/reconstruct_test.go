package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sharedScenario() (Input, Invoice) {
	in := scenarioInput()
	in.Readings.NewShared = "90"
	in.Sharing = Sharing{Enabled: true, Divisor: 3}
	in.Services = Selection{
		ServiceIDs: []uint{1, 2},
		Catalog:    []ServiceCharge{{ID: 1, Name: "wifi", Price: d(50000)}, {ID: 2, Name: "trash", Price: d(30000)}},
	}
	return in, Compute(in)
}

func TestReconstruct_UnchangedPricesReproduceTotal(t *testing.T) {
	in, inv := sharedScenario()

	b := Reconstruct(inv, in.Prices, in.Services.Catalog)

	assert.True(t, b.Total.Equal(inv.Total), "reconstructed %s stored %s", b.Total, inv.Total)
	assert.True(t, b.AmountOwed.Equal(inv.Total))
	assert.True(t, b.Drift.IsZero())
	assert.True(t, b.Amount(LineElectric).Equal(d(150000)))
	assert.True(t, b.Amount(LineShared).Equal(d(180000)))
	assert.True(t, b.Amount(LineWater).Equal(d(30000)))
	assert.True(t, b.Amount(LineRent).Equal(d(2000000)))
	assert.True(t, b.Amount(LineServices).Equal(d(80000)))
	require.Len(t, b.Services, 2)
	assert.Equal(t, "wifi", b.Services[0].Name)
}

func TestReconstruct_PriceChangeDriftsButOwedStays(t *testing.T) {
	_, inv := sharedScenario()
	stored := inv.Total

	newPrices := Prices{Electric: d(3500), Water: d(20000)}
	catalog := []ServiceCharge{{ID: 1, Name: "wifi", Price: d(60000)}}

	b := Reconstruct(inv, newPrices, catalog)

	assert.False(t, b.Total.Equal(stored))
	assert.True(t, b.AmountOwed.Equal(stored), "stored total is what is owed")
	assert.True(t, inv.Total.Equal(stored), "record is not modified")
	assert.True(t, b.Drift.Equal(b.Total.Sub(stored)))
	// removed service shows at zero
	require.Len(t, b.Services, 2)
	assert.True(t, b.Services[1].Price.IsZero())
}

func TestBreakdown_AmountMissingKind(t *testing.T) {
	assert.True(t, Breakdown{}.Amount(LineRent).IsZero())
}
