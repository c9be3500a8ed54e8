/*
Package alert runs the daily deadline-reminder batch.

PURPOSE:
  Once per day an external scheduler triggers one Run. The run loads every
  client with alerting enabled, recomputes each client's tax calendar for
  the current year, and notifies the clients that have an obligation due in
  exactly one of their configured alert-day offsets.

FAILURE ISOLATION:
  Each client is its own failure domain. A profile that fails validation, a
  calendar the engine refuses to compute, a panic, or an email provider
  error is captured in the run summary for that client alone; the run keeps
  going and still reports overall success. Only the inability to list
  clients at all fails a run.

IDEMPOTENCE:
  Matching is by exact day-offset equality, so rerunning on the same
  calendar day with the same data produces the same matched set. Suppressing
  duplicate emails across reruns is the invoking schedule's concern (it
  triggers once per day); the core keeps no "already alerted" state.

SEE ALSO:
  - calendar: rule engine and query layer
  - factory: record-to-profile conversion and defaults
  - notify: delivery
*/
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/contaflow/tax-engine/calendar"
	"github.com/contaflow/tax-engine/factory"
	"github.com/contaflow/tax-engine/notify"
	"github.com/contaflow/tax-engine/store/sqlite"
)

// Evaluation stages, used in failure records and metrics labels.
const (
	StageProfile  = "profile"
	StageCalendar = "calendar"
	StageDispatch = "dispatch"
)

// ClientSource lists the clients eligible for alerting. Implemented by the
// sqlite store; tests substitute a fake.
type ClientSource interface {
	ListAlertEnabled(ctx context.Context) ([]sqlite.ClientRecord, error)
}

// Scheduler evaluates and dispatches deadline reminders.
type Scheduler struct {
	Source   ClientSource
	Factory  *factory.ProfileFactory
	Notifier notify.Notifier
	Logger   *zap.Logger
	Metrics  *Metrics

	// HorizonDays bounds how far ahead the matcher looks. Alert-day offsets
	// beyond the horizon can never fire.
	HorizonDays int

	// DispatchTimeout bounds each notification send so one unresponsive
	// destination cannot stall the run.
	DispatchTimeout time.Duration

	// Parallelism bounds concurrent client evaluations.
	Parallelism int
}

// NewScheduler creates a scheduler with production defaults: a 30-day
// horizon, 10s dispatch timeout and four concurrent evaluations.
func NewScheduler(source ClientSource, f *factory.ProfileFactory, notifier notify.Notifier, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Source:          source,
		Factory:         f,
		Notifier:        notifier,
		Logger:          logger,
		HorizonDays:     30,
		DispatchTimeout: 10 * time.Second,
		Parallelism:     4,
	}
}

// =============================================================================
// RUN RESULTS
// =============================================================================

// ClientAlert records one successfully matched (and, unless dry-run,
// dispatched) notification.
type ClientAlert struct {
	ClientID   string             `json:"client_id"`
	ClientName string             `json:"client_name"`
	Recipients []string           `json:"recipients"`
	EventCount int                `json:"event_count"`
	Events     []notify.EventLine `json:"events"`
}

// ClientFailure records one absorbed per-client failure.
type ClientFailure struct {
	ClientID string `json:"client_id"`
	Stage    string `json:"stage"`
	Reason   string `json:"reason"`
}

// RunSummary is the outcome of one scheduler invocation.
type RunSummary struct {
	RunID          string          `json:"run_id"`
	Date           calendar.Date   `json:"date"`
	DryRun         bool            `json:"dry_run"`
	ClientsChecked int             `json:"clients_checked"`
	Alerts         []ClientAlert   `json:"alerts"`
	Failures       []ClientFailure `json:"failures"`
}

// clientOutcome is the per-client success/failure union collected by the
// fan-out. Exactly one of alert/failure may be set; both nil means the
// client simply had nothing due.
type clientOutcome struct {
	alert   *ClientAlert
	failure *ClientFailure
}

// =============================================================================
// RUN
// =============================================================================

// Run executes one batch evaluation for the given reference day. The error
// return is non-nil only when the client list cannot be loaded; every
// per-client problem is absorbed into the summary.
func (s *Scheduler) Run(ctx context.Context, today calendar.Date, dryRun bool) (*RunSummary, error) {
	s.Metrics.run()

	records, err := s.Source.ListAlertEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load client list: %w", err)
	}

	// Clients without a destination address are skipped entirely; they are
	// not evaluated and never reach the notifier.
	eligible := records[:0:0]
	for _, rec := range records {
		if len(rec.Emails) == 0 {
			s.Logger.Debug("skipping client without destinations", zap.String("client_id", rec.ID))
			continue
		}
		eligible = append(eligible, rec)
	}

	summary := &RunSummary{
		RunID:          uuid.New().String(),
		Date:           today,
		DryRun:         dryRun,
		ClientsChecked: len(eligible),
		Alerts:         []ClientAlert{},
		Failures:       []ClientFailure{},
	}

	outcomes := make([]clientOutcome, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism())

	for i, rec := range eligible {
		i, rec := i, rec
		g.Go(func() error {
			outcomes[i] = s.evaluateClient(gctx, rec, today, dryRun)
			return nil
		})
	}
	// Workers never return errors; Wait only orders the outcome writes.
	_ = g.Wait()

	for _, out := range outcomes {
		switch {
		case out.alert != nil:
			summary.Alerts = append(summary.Alerts, *out.alert)
			s.Metrics.sent()
		case out.failure != nil:
			summary.Failures = append(summary.Failures, *out.failure)
			s.Metrics.failed(out.failure.Stage)
		}
	}
	s.Metrics.checked(len(eligible))

	s.Logger.Info("alert run completed",
		zap.String("run_id", summary.RunID),
		zap.String("date", today.String()),
		zap.Bool("dry_run", dryRun),
		zap.Int("clients_checked", summary.ClientsChecked),
		zap.Int("alerts", len(summary.Alerts)),
		zap.Int("failures", len(summary.Failures)))
	return summary, nil
}

// evaluateClient runs the full pipeline for one client. Panics are contained
// here so one corrupt record cannot take down the batch.
func (s *Scheduler) evaluateClient(ctx context.Context, rec sqlite.ClientRecord, today calendar.Date, dryRun bool) (out clientOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("panic during client evaluation",
				zap.String("client_id", rec.ID), zap.Any("panic", r))
			out = clientOutcome{failure: &ClientFailure{
				ClientID: rec.ID,
				Stage:    StageCalendar,
				Reason:   fmt.Sprintf("panic: %v", r),
			}}
		}
	}()

	profile, err := s.Factory.BuildProfile(rec)
	if err != nil {
		s.Logger.Warn("invalid client profile",
			zap.String("client_id", rec.ID), zap.Error(err))
		return clientOutcome{failure: &ClientFailure{ClientID: rec.ID, Stage: StageProfile, Reason: err.Error()}}
	}
	cfg := s.Factory.BuildAlertConfig(rec)

	events, err := calendar.ComputeObligations(profile, today.Year())
	if err != nil {
		s.Logger.Warn("failed to compute client calendar",
			zap.String("client_id", rec.ID), zap.Error(err))
		return clientOutcome{failure: &ClientFailure{ClientID: rec.ID, Stage: StageCalendar, Reason: err.Error()}}
	}

	matched := matchAlertDays(calendar.Upcoming(events, today, s.horizonDays()), today, cfg.Days)
	if len(matched) == 0 {
		return clientOutcome{}
	}

	alert := &ClientAlert{
		ClientID:   rec.ID,
		ClientName: rec.Name,
		Recipients: cfg.Emails,
		EventCount: len(matched),
		Events:     matched,
	}
	if dryRun {
		return clientOutcome{alert: alert}
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.dispatchTimeout())
	defer cancel()
	err = s.Notifier.Send(sendCtx, notify.Notification{
		ClientID:   rec.ID,
		ClientName: rec.Name,
		NIT:        rec.NIT,
		To:         cfg.Emails,
		Events:     matched,
	})
	if err != nil {
		return clientOutcome{failure: &ClientFailure{ClientID: rec.ID, Stage: StageDispatch, Reason: err.Error()}}
	}
	return clientOutcome{alert: alert}
}

// matchAlertDays keeps the upcoming events whose whole-day distance from
// today exactly equals one of the configured offsets. Exact equality (not
// "within N days") is what makes a day's run idempotent.
func matchAlertDays(upcoming []calendar.TaxEvent, today calendar.Date, offsets []int) []notify.EventLine {
	offsetSet := make(map[int]struct{}, len(offsets))
	for _, d := range offsets {
		offsetSet[d] = struct{}{}
	}

	var lines []notify.EventLine
	for _, e := range upcoming {
		days := calendar.DaysUntil(today, e.Date)
		if _, ok := offsetSet[days]; !ok {
			continue
		}
		lines = append(lines, notify.EventLine{
			Title:      e.Title,
			Date:       e.Date,
			Type:       e.Type,
			DaysUntil:  days,
			MinPenalty: penaltyFor(e.Date.Year()),
		})
	}
	return lines
}

// penaltyFor formats the year's minimum late-filing penalty for display,
// with dot thousand separators as written locally. Empty when the year has
// no published UVT value.
func penaltyFor(year int) string {
	p, err := calendar.MinimumPenalty(year)
	if err != nil {
		return ""
	}
	return formatThousands(p)
}

func formatThousands(d decimal.Decimal) string {
	s := d.StringFixed(0)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

func (s *Scheduler) horizonDays() int {
	if s.HorizonDays <= 0 {
		return 30
	}
	return s.HorizonDays
}

func (s *Scheduler) dispatchTimeout() time.Duration {
	if s.DispatchTimeout <= 0 {
		return 10 * time.Second
	}
	return s.DispatchTimeout
}

func (s *Scheduler) parallelism() int {
	if s.Parallelism <= 0 {
		return 4
	}
	return s.Parallelism
}
