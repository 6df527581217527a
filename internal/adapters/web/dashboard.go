package web

import (
	"net/http"

	"business-dashboard/internal/app"
)

// dataset handles GET /api/dataset.
func (h *Handler) dataset(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Dataset(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// regenerate handles POST /api/dataset/regenerate. Cached insights for the
// old snapshot stop being served because the snapshot id changes.
func (h *Handler) regenerate(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Regenerate(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// dashboard handles GET /api/dashboard?window=7d|30d|all.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Metrics(r.Context(), r.URL.Query().Get("window"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// products handles GET /api/products?q=&category=.
func (h *Handler) products(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.ListProducts(r.Context(), app.ProductFilter{
		Query:      q.Get("q"),
		CategoryID: q.Get("category"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// customers handles GET /api/customers.
func (h *Handler) customers(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// transactions handles GET /api/transactions.
func (h *Handler) transactions(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListTransactions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// export handles POST /api/dataset/export.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ExportSnapshot(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}
