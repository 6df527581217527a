package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"business-dashboard/internal/app"
	"business-dashboard/internal/auth"
	"business-dashboard/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// Options configures NewHandler. Zero values are valid: no CORS origins,
// auth disabled, no metrics, and a no-op logger.
type Options struct {
	AllowedOrigins string
	Tokens         *auth.Tokens
	Metrics        *telemetry.Metrics
	Logger         *zap.Logger
}

// Handler holds the ApplicationService and the collaborators the routes need.
type Handler struct {
	svc     app.ApplicationService
	tokens  *auth.Tokens
	metrics *telemetry.Metrics
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	if opts.Tokens == nil {
		opts.Tokens = auth.NewTokens("")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	h := &Handler{
		svc:     svc,
		tokens:  opts.Tokens,
		metrics: opts.Metrics,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(opts.Logger))
	r.Use(Recoverer)
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(Metrics(opts.Metrics))

	// ── Health and metrics (public) ───────────────────────────────────────────
	r.Get("/api/health", h.health)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(maxBodyBytes))

		// ── Dataset and views (public) ────────────────────────────────────────
		r.Get("/api/dataset", h.dataset)
		r.Post("/api/dataset/regenerate", h.regenerate)
		r.Get("/api/dashboard", h.dashboard)
		r.Get("/api/products", h.products)
		r.Get("/api/customers", h.customers)
		r.Get("/api/transactions", h.transactions)

		// ── AI and export (bearer auth when a secret is configured) ───────────
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Get("/api/auth/me", h.me)
			r.Post("/api/chat", h.chatMessage)
			r.Post("/api/insights", h.insights)
			r.Post("/api/dataset/export", h.export)
		})
	})

	return r
}

// health returns service status and the current snapshot id, if any.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status     string `json:"status"`
		SnapshotID string `json:"snapshot_id,omitempty"`
	}

	resp := response{Status: "ok"}
	if ds, err := h.svc.Dataset(r.Context()); err == nil {
		resp.SnapshotID = ds.SnapshotID.String()
	}
	writeJSON(w, resp)
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
