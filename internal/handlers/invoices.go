package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/policy"
	"github.com/diewo77/go-rentals/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type InvoiceHandler struct {
	invoices *services.InvoiceService
	reports  *services.ReportService
}

func NewInvoiceHandler(invoices *services.InvoiceService, reports *services.ReportService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, reports: reports}
}

// New returns the prefilled invoice form for ?room_id=.
func (h *InvoiceHandler) New(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	roomID, _ := httpx.QueryID(r, "room_id")
	p, err := h.invoices.Prefill(r.Context(), home.ID, roomID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *InvoiceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	var req services.InvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badJSON(w, err)
		return
	}
	q, err := h.invoices.Preview(r.Context(), home.ID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// Create stores an invoice. On a failed insert the response carries the
// computed preview so the client can resubmit it.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	var req services.InvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badJSON(w, err)
		return
	}
	inv, q, err := h.invoices.Create(r.Context(), home.ID, req)
	var saveErr *services.SaveError
	if errors.As(err, &saveErr) && q != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "save_failed", map[string]any{
			"cause":   saveErr.Cause.Error(),
			"preview": q,
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, services.InvoiceView{Invoice: inv, Breakdown: q.Breakdown})
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	page, err := h.invoices.List(r.Context(), home.ID,
		httpx.QueryInt(r, "page", 1),
		httpx.QueryInt(r, "limit", services.DefaultPageSize))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

// Get returns a stored invoice with its breakdown redrawn at current prices.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	id, ok := httpx.PathID(r, "invoiceID")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_invoice_id", nil)
		return
	}
	view, err := h.invoices.View(r.Context(), home.ID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	id, ok := httpx.PathID(r, "invoiceID")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_invoice_id", nil)
		return
	}
	if err := h.invoices.Delete(r.Context(), home.ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export downloads every invoice of the home as a spreadsheet.
func (h *InvoiceHandler) Export(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	data, err := h.reports.ExportInvoices(r.Context(), home.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="invoices-home-%d.xlsx"`, home.ID))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Revenue returns the monthly revenue report for ?year= (default: this year).
func (h *InvoiceHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	home, _ := policy.HomeFromContext(r.Context())
	rep, err := h.reports.Revenue(r.Context(), home.ID, httpx.QueryInt(r, "year", 0))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}
