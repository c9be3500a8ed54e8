/*
handlers.go - HTTP API handlers

PURPOSE:
  Exposes the client registry, the computed tax calendar and the daily alert
  trigger over REST. Handles HTTP request/response and JSON serialization,
  delegating all domain logic to the calendar, factory and alert packages.

ENDPOINTS:
  Clients:
    GET    /api/clients                  List all clients
    POST   /api/clients                  Create client
    GET    /api/clients/{id}             Get client
    PUT    /api/clients/{id}             Replace client
    DELETE /api/clients/{id}             Delete client

  Calendar:
    GET    /api/clients/{id}/calendar    Full calendar (?year=, default current)
    GET    /api/clients/{id}/upcoming    Events due soon (?days=, default 30)
    GET    /api/clients/{id}/overdue     Events already past

  Alerting:
    POST   /api/cron/alerts              Daily trigger (?dry_run=1 to evaluate only)

  Misc:
    GET    /api/years                    Supported fiscal years
    GET    /api/scenarios                List demo datasets
    POST   /api/scenarios/load           Load a demo dataset

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Cron trigger with a bad bearer token
  - 404: Unknown client
  - 500: Internal errors, fatal run failures

SECURITY:
  Only the cron trigger is authenticated (shared-secret bearer token, and
  only when a secret is configured). The rest of the surface is expected to
  sit behind the practice-management app's own auth proxy.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - alert/scheduler.go: The daily run
*/
package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/contaflow/tax-engine/alert"
	"github.com/contaflow/tax-engine/calendar"
	"github.com/contaflow/tax-engine/factory"
	"github.com/contaflow/tax-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Factory   *factory.ProfileFactory
	Scheduler *alert.Scheduler
	Logger    *zap.Logger

	// CronSecret guards the daily trigger. Empty means the check is skipped.
	CronSecret string

	// Now supplies the reference day; overridable in tests.
	Now func() calendar.Date
}

// NewHandler creates a handler with the given dependencies.
func NewHandler(store *sqlite.Store, f *factory.ProfileFactory, scheduler *alert.Scheduler, logger *zap.Logger, cronSecret string) *Handler {
	return &Handler{
		Store:      store,
		Factory:    f,
		Scheduler:  scheduler,
		Logger:     logger,
		CronSecret: cronSecret,
		Now:        calendar.Today,
	}
}

// =============================================================================
// CLIENT CRUD
// =============================================================================

// ListClients returns all clients.
// GET /api/clients
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.ListClients(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list clients", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"clients": toClientDTOs(recs)})
}

// CreateClient registers a new client.
// POST /api/clients
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	h.saveClient(w, r, req)
}

// UpdateClient replaces an existing client.
// PUT /api/clients/{id}
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.Store.GetClient(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to load client", err)
		return
	}
	if existing == nil {
		h.writeError(w, http.StatusNotFound, "client not found", nil)
		return
	}

	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	req.ID = id
	h.saveClient(w, r, req)
}

// saveClient validates and persists a client from a request body. The record
// must produce a buildable profile before it is accepted.
func (h *Handler) saveClient(w http.ResponseWriter, r *http.Request, req ClientRequest) {
	if req.Name == "" || req.NIT == "" {
		h.writeError(w, http.StatusBadRequest, "name and nit are required", nil)
		return
	}

	flagsJSON := "{}"
	if len(req.Flags) > 0 {
		b, err := json.Marshal(req.Flags)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid flags", err)
			return
		}
		flagsJSON = string(b)
	}

	rec := sqlite.ClientRecord{
		ID:             req.ID,
		Name:           req.Name,
		NIT:            req.NIT,
		Classification: req.Classification,
		Regime:         req.Regime,
		VATPeriodicity: req.VATPeriodicity,
		FlagsJSON:      flagsJSON,
		Emails:         req.Emails,
		AlertsEnabled:  true,
	}
	if req.AlertDays != nil {
		rec.AlertDays = *req.AlertDays
	}
	if req.AlertsEnabled != nil {
		rec.AlertsEnabled = *req.AlertsEnabled
	}

	if _, err := h.Factory.BuildProfile(rec); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid tax profile", err)
		return
	}

	if err := h.Store.SaveClient(r.Context(), rec); err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to save client", err)
		return
	}

	saved, err := h.Store.GetClient(r.Context(), rec.ID)
	if err != nil || saved == nil {
		h.writeError(w, http.StatusInternalServerError, "failed to reload client", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toClientDTO(*saved))
}

// GetClient returns one client.
// GET /api/clients/{id}
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to load client", err)
		return
	}
	if rec == nil {
		h.writeError(w, http.StatusNotFound, "client not found", nil)
		return
	}
	h.writeJSON(w, http.StatusOK, toClientDTO(*rec))
}

// DeleteClient removes one client.
// DELETE /api/clients/{id}
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteClient(r.Context(), id); err != nil {
		h.writeError(w, http.StatusNotFound, "client not found", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// =============================================================================
// CALENDAR
// =============================================================================

// clientEvents loads a client and computes its calendar for a year.
func (h *Handler) clientEvents(w http.ResponseWriter, r *http.Request, year int) ([]calendar.TaxEvent, string, bool) {
	id := chi.URLParam(r, "id")
	rec, err := h.Store.GetClient(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to load client", err)
		return nil, id, false
	}
	if rec == nil {
		h.writeError(w, http.StatusNotFound, "client not found", nil)
		return nil, id, false
	}

	profile, err := h.Factory.BuildProfile(*rec)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid tax profile", err)
		return nil, id, false
	}
	events, err := calendar.ComputeObligations(profile, year)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to compute calendar", err)
		return nil, id, false
	}
	return events, id, true
}

// GetCalendar returns the full obligation calendar for a year.
// GET /api/clients/{id}/calendar?year=2026
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year := h.Now().Year()
	if q := r.URL.Query().Get("year"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid year", err)
			return
		}
		year = parsed
	}

	events, id, ok := h.clientEvents(w, r, year)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, CalendarResponse{
		ClientID: id,
		Year:     year,
		Count:    len(events),
		Events:   toEventDTOs(events),
	})
}

// GetUpcoming returns events due within a horizon.
// GET /api/clients/{id}/upcoming?days=30
func (h *Handler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	days := 30
	if q := r.URL.Query().Get("days"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid days", err)
			return
		}
		days = parsed
	}

	today := h.Now()
	events, id, ok := h.clientEvents(w, r, today.Year())
	if !ok {
		return
	}
	upcoming := calendar.Upcoming(events, today, days)
	h.writeJSON(w, http.StatusOK, CalendarResponse{
		ClientID: id,
		Year:     today.Year(),
		Count:    len(upcoming),
		Events:   toEventDTOs(upcoming),
	})
}

// GetOverdue returns events already past.
// GET /api/clients/{id}/overdue
func (h *Handler) GetOverdue(w http.ResponseWriter, r *http.Request) {
	today := h.Now()
	events, id, ok := h.clientEvents(w, r, today.Year())
	if !ok {
		return
	}
	overdue := calendar.Overdue(events, today)
	h.writeJSON(w, http.StatusOK, CalendarResponse{
		ClientID: id,
		Year:     today.Year(),
		Count:    len(overdue),
		Events:   toEventDTOs(overdue),
	})
}

// ListYears reports which fiscal years have published tables.
// GET /api/years
func (h *Handler) ListYears(w http.ResponseWriter, r *http.Request) {
	type yearDTO struct {
		Year int    `json:"year"`
		UVT  string `json:"uvt"`
	}
	out := []yearDTO{}
	for _, y := range calendar.SupportedYears() {
		uvt, err := calendar.UVTValue(y)
		if err != nil {
			continue
		}
		out = append(out, yearDTO{Year: y, UVT: uvt.String()})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"years": out})
}

// =============================================================================
// CRON TRIGGER
// =============================================================================

// TriggerAlerts runs the daily alert batch.
// POST /api/cron/alerts
//
// When a shared secret is configured the caller must present it as a bearer
// token; without a configured secret the check is skipped entirely.
func (h *Handler) TriggerAlerts(w http.ResponseWriter, r *http.Request) {
	if h.CronSecret != "" {
		got := r.Header.Get("Authorization")
		want := "Bearer " + h.CronSecret
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			h.writeError(w, http.StatusUnauthorized, "invalid cron token", nil)
			return
		}
	}

	dryRun := r.URL.Query().Get("dry_run") == "1" || r.URL.Query().Get("dry_run") == "true"
	today := h.Now()

	summary, err := h.Scheduler.Run(r.Context(), today, dryRun)
	if err != nil {
		// Only a client-list load failure lands here; per-client problems
		// are inside the summary.
		h.writeError(w, http.StatusInternalServerError, "alert run failed", err)
		return
	}

	h.writeJSON(w, http.StatusOK, CronResponse{
		Success:        true,
		RunID:          summary.RunID,
		Date:           summary.Date.String(),
		DryRun:         summary.DryRun,
		ClientsChecked: summary.ClientsChecked,
		Alerts:         summary.Alerts,
		Failures:       summary.Failures,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Success: false, Error: msg}
	if err != nil {
		resp.Detail = err.Error()
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error(msg, zap.Error(err))
	}
	h.writeJSON(w, status, resp)
}
