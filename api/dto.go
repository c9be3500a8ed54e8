/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the internal domain
  model so internal fields can move without breaking clients.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation happens in handlers (via the factory), not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/contaflow/tax-engine/alert"
	"github.com/contaflow/tax-engine/calendar"
	"github.com/contaflow/tax-engine/store/sqlite"
)

// =============================================================================
// CLIENT TYPES
// =============================================================================

// ClientDTO represents a client in API responses.
type ClientDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	NIT            string          `json:"nit"`
	Classification string          `json:"classification"`
	Regime         string          `json:"regime,omitempty"`
	VATPeriodicity string          `json:"vat_periodicity,omitempty"`
	Flags          map[string]bool `json:"flags"`
	AlertDays      []int           `json:"alert_days,omitempty"`
	Emails         []string        `json:"emails"`
	AlertsEnabled  bool            `json:"alerts_enabled"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ClientRequest creates or replaces a client. AlertDays and AlertsEnabled
// are pointers so "absent" can be told apart from explicit zero values.
type ClientRequest struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	NIT            string          `json:"nit"`
	Classification string          `json:"classification"`
	Regime         string          `json:"regime"`
	VATPeriodicity string          `json:"vat_periodicity"`
	Flags          map[string]bool `json:"flags"`
	AlertDays      *[]int          `json:"alert_days"`
	Emails         []string        `json:"emails"`
	AlertsEnabled  *bool           `json:"alerts_enabled"`
}

func toClientDTO(rec sqlite.ClientRecord) ClientDTO {
	flags := map[string]bool{}
	if rec.FlagsJSON != "" {
		// Stored flags are written by this API; a decode failure here means
		// hand-edited data, shown as empty rather than failing the read.
		_ = json.Unmarshal([]byte(rec.FlagsJSON), &flags)
	}
	emails := rec.Emails
	if emails == nil {
		emails = []string{}
	}
	return ClientDTO{
		ID:             rec.ID,
		Name:           rec.Name,
		NIT:            rec.NIT,
		Classification: rec.Classification,
		Regime:         rec.Regime,
		VATPeriodicity: rec.VATPeriodicity,
		Flags:          flags,
		AlertDays:      rec.AlertDays,
		Emails:         emails,
		AlertsEnabled:  rec.AlertsEnabled,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
}

func toClientDTOs(recs []sqlite.ClientRecord) []ClientDTO {
	out := make([]ClientDTO, 0, len(recs))
	for _, r := range recs {
		out = append(out, toClientDTO(r))
	}
	return out
}

// =============================================================================
// CALENDAR TYPES
// =============================================================================

// EventDTO represents one computed obligation.
type EventDTO struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Type  string `json:"type"`
}

// CalendarResponse wraps a computed calendar.
type CalendarResponse struct {
	ClientID string     `json:"client_id"`
	Year     int        `json:"year"`
	Count    int        `json:"count"`
	Events   []EventDTO `json:"events"`
}

func toEventDTOs(events []calendar.TaxEvent) []EventDTO {
	out := make([]EventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, EventDTO{Title: e.Title, Date: e.Date.String(), Type: string(e.Type)})
	}
	return out
}

// =============================================================================
// CRON TRIGGER TYPES
// =============================================================================

// CronResponse is the daily trigger's response contract. Per-client failures
// ride along in Failures; they never flip Success.
type CronResponse struct {
	Success        bool                  `json:"success"`
	RunID          string                `json:"run_id"`
	Date           string                `json:"date"`
	DryRun         bool                  `json:"dry_run"`
	ClientsChecked int                   `json:"clients_checked"`
	Alerts         []alert.ClientAlert   `json:"alerts"`
	Failures       []alert.ClientFailure `json:"failures"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioDTO describes one loadable demo dataset.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Clients     int    `json:"clients"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}
