package handlers

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestInvoices_Flow(t *testing.T) {
	api := newTestAPI(t)
	owner := api.user("owner@example.com")
	homePath, roomID := api.seedHome(owner.ID)
	body := `{"room_id":` + roomID + `,"readings":{"old_electric":100,"new_electric":"150"}}`

	w := api.do(http.MethodGet, homePath+"/invoices/new?room_id="+roomID, "", owner.ID)
	expectStatus(t, w, http.StatusOK)
	prefill := decode(t, w)
	assert.Nil(t, prefill["last_invoice_id"])

	w = api.do(http.MethodPost, homePath+"/invoices/preview", body, owner.ID)
	expectStatus(t, w, http.StatusOK)
	preview := decode(t, w)
	assert.Equal(t, "2180000", preview["invoice"].(map[string]any)["total_amount"])
	assert.Equal(t, "2180000", preview["breakdown"].(map[string]any)["total"])

	var count int64
	require.NoError(t, api.db.Model(&models.Invoice{}).Count(&count).Error)
	assert.Zero(t, count, "preview stores nothing")

	w = api.do(http.MethodPost, homePath+"/invoices", body, owner.ID)
	expectStatus(t, w, http.StatusCreated)
	created := decode(t, w)["invoice"].(map[string]any)
	assert.Equal(t, "2180000", created["total_amount"])
	invoicePath := homePath + "/invoices/" + idOf(t, created)

	w = api.do(http.MethodGet, invoicePath, "", owner.ID)
	expectStatus(t, w, http.StatusOK)
	view := decode(t, w)["breakdown"].(map[string]any)
	assert.Equal(t, "2180000", view["amount_owed"])
	assert.Equal(t, "0", view["drift"])

	w = api.do(http.MethodGet, homePath+"/invoices/new?room_id="+roomID, "", owner.ID)
	expectStatus(t, w, http.StatusOK)
	readings := decode(t, w)["readings"].(map[string]any)
	assert.Equal(t, "150", readings["old_electric"])

	w = api.do(http.MethodGet, homePath+"/invoices?page=1&limit=5", "", owner.ID)
	expectStatus(t, w, http.StatusOK)
	page := decode(t, w)
	assert.Equal(t, float64(1), page["total"])
	assert.Equal(t, "2180000", page["total_revenue"])
	assert.Len(t, page["invoices"], 1)

	w = api.do(http.MethodGet, homePath+"/invoices/export.xlsx", "", owner.ID)
	expectStatus(t, w, http.StatusOK)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment;")
	book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	rows, err := book.GetRows("Invoices")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	require.NoError(t, book.Close())

	w = api.do(http.MethodGet, homePath+"/reports/revenue", "", owner.ID)
	expectStatus(t, w, http.StatusOK)
	report := decode(t, w)
	assert.Equal(t, float64(time.Now().Year()), report["year"])
	assert.Equal(t, "2180000", report["total"])

	w = api.do(http.MethodDelete, invoicePath, "", owner.ID)
	expectStatus(t, w, http.StatusNoContent)
	w = api.do(http.MethodDelete, invoicePath, "", owner.ID)
	expectStatus(t, w, http.StatusNotFound)
	assert.Equal(t, "not_found", decode(t, w)["error"])
}

func TestInvoices_SharedMeterAndServices(t *testing.T) {
	api := newTestAPI(t)
	owner := api.user("owner@example.com")
	homePath, roomID := api.seedHome(owner.ID)

	w := api.do(http.MethodPost, homePath+"/services", `{"name":"wifi","price":50000}`, owner.ID)
	expectStatus(t, w, http.StatusCreated)
	wifiID := idOf(t, decode(t, w))

	body := `{"room_id":` + roomID + `,
		"readings":{"old_electric":100,"new_electric":150,"old_shared":0,"new_shared":90},
		"shared":true,"divisor":"3",
		"service_ids":[` + wifiID + `],
		"service_prices":{"` + wifiID + `":"35.000"}}`
	w = api.do(http.MethodPost, homePath+"/invoices", body, owner.ID)
	expectStatus(t, w, http.StatusCreated)
	inv := decode(t, w)["invoice"].(map[string]any)
	assert.Equal(t, "180000", inv["shared_amount"])
	assert.Equal(t, "35000", inv["services_amount"])
	assert.Equal(t, "2395000", inv["total_amount"])
}

func TestInvoices_ExponentReadings(t *testing.T) {
	api := newTestAPI(t)
	owner := api.user("owner@example.com")
	homePath, roomID := api.seedHome(owner.ID)

	w := api.do(http.MethodPost, homePath+"/invoices/preview",
		`{"room_id":`+roomID+`,"readings":{"old_electric":1e2,"new_electric":1.5e2}}`, owner.ID)
	expectStatus(t, w, http.StatusOK)
	inv := decode(t, w)["invoice"].(map[string]any)
	assert.Equal(t, "50", inv["electric_usage"])
	assert.Equal(t, "2180000", inv["total_amount"])
}

func TestInvoices_Errors(t *testing.T) {
	api := newTestAPI(t)
	owner := api.user("owner@example.com")
	homePath, _ := api.seedHome(owner.ID)

	w := api.do(http.MethodPost, homePath+"/invoices", `{"readings":{}}`, owner.ID)
	expectStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "room_required", decode(t, w)["error"])

	w = api.do(http.MethodPost, homePath+"/invoices", `{"room_id":9999}`, owner.ID)
	expectStatus(t, w, http.StatusNotFound)

	w = api.do(http.MethodPost, homePath+"/invoices", ``, owner.ID)
	expectStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "invalid_json", decode(t, w)["error"])

	w = api.do(http.MethodGet, homePath+"/invoices/abc", "", owner.ID)
	expectStatus(t, w, http.StatusBadRequest)

	w = api.do(http.MethodGet, homePath+"/invoices/new", "", owner.ID)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestInvoices_SaveFailureReturnsPreview(t *testing.T) {
	api := newTestAPI(t)
	owner := api.user("owner@example.com")
	homePath, roomID := api.seedHome(owner.ID)
	require.NoError(t, api.db.Migrator().DropTable(&models.Invoice{}))

	w := api.do(http.MethodPost, homePath+"/invoices",
		`{"room_id":`+roomID+`,"readings":{"old_electric":100,"new_electric":150}}`, owner.ID)
	expectStatus(t, w, http.StatusInternalServerError)
	body := decode(t, w)
	assert.Equal(t, "save_failed", body["error"])
	details := body["details"].(map[string]any)
	assert.NotEmpty(t, details["cause"])
	preview := details["preview"].(map[string]any)
	assert.Equal(t, "2180000", preview["invoice"].(map[string]any)["total_amount"])
}
