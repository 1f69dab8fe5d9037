package services

import (
	"bytes"
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedYear(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	for _, at := range []time.Time{
		time.Date(2025, time.December, 30, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.February, 20, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC),
	} {
		f.clock.t = at
		_, _, err := f.invoices.Create(ctx, f.home.ID, f.basicRequest())
		require.NoError(t, err)
	}
	f.clock.t = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
}

func TestReportService_Revenue(t *testing.T) {
	f := newFixture(t)
	seedYear(t, f)

	rep, err := f.reports.Revenue(context.Background(), f.home.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 2026, rep.Year)
	require.Len(t, rep.Months, 12)
	assert.Equal(t, 1, rep.Months[1].Invoices)
	assert.True(t, rep.Months[1].Total.Equal(dec(2180000)))
	assert.Equal(t, 2, rep.Months[2].Invoices)
	assert.True(t, rep.Months[2].Total.Equal(dec(4360000)))
	assert.True(t, rep.Total.Equal(dec(6540000)), "got %s", rep.Total)
	assert.True(t, rep.Average.Equal(dec(545000)), "got %s", rep.Average)
	assert.Equal(t, 3, rep.Best)
	assert.Equal(t, 1, rep.Worst)

	prev, err := f.reports.Revenue(context.Background(), f.home.ID, 2025)
	require.NoError(t, err)
	assert.True(t, prev.Months[11].Total.Equal(dec(2180000)))
	assert.Equal(t, 12, prev.Best)
}

func TestReportService_RevenueEmptyYear(t *testing.T) {
	f := newFixture(t)

	rep, err := f.reports.Revenue(context.Background(), f.home.ID, 2020)
	require.NoError(t, err)
	assert.True(t, rep.Total.IsZero())
	assert.True(t, rep.Average.IsZero())
	assert.Equal(t, 1, rep.Best)
	assert.Equal(t, 1, rep.Worst)
}

func TestReportService_ExportInvoices(t *testing.T) {
	f := newFixture(t)
	seedYear(t, f)

	data, err := f.reports.ExportInvoices(context.Background(), f.home.ID)
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Invoices"}, book.GetSheetList())
	rows, err := book.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, invoiceExportHeader, rows[0])

	latest, err := f.invoices.LatestForRoom(context.Background(), f.room.ID)
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatUint(uint64(latest.ID), 10), rows[1][0])
	assert.Equal(t, "2026-03-03", rows[1][1])
	assert.Equal(t, "101", rows[1][2])
	assert.Equal(t, "2180000", rows[1][len(invoiceExportHeader)-1])
}

func TestReportService_ExportEmpty(t *testing.T) {
	f := newFixture(t)

	data, err := f.reports.ExportInvoices(context.Background(), f.home.ID)
	require.NoError(t, err)
	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Invoices")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
