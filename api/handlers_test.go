package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/contaflow/tax-engine/alert"
	"github.com/contaflow/tax-engine/calendar"
	"github.com/contaflow/tax-engine/factory"
	"github.com/contaflow/tax-engine/notify"
	"github.com/contaflow/tax-engine/store/sqlite"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

type captureNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (c *captureNotifier) Send(ctx context.Context, n notify.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
	return nil
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

type testAPI struct {
	router   http.Handler
	store    *sqlite.Store
	notifier *captureNotifier
}

func newTestAPI(t *testing.T, cronSecret string) *testAPI {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	f := factory.NewProfileFactory()
	notifier := &captureNotifier{}
	scheduler := alert.NewScheduler(store, f, notifier, zap.NewNop())

	h := NewHandler(store, f, scheduler, zap.NewNop(), cronSecret)
	h.Now = func() calendar.Date { return calendar.NewDate(2026, time.March, 3) }

	return &testAPI{router: NewRouter(h, nil), store: store, notifier: notifier}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rw := httptest.NewRecorder()
	a.router.ServeHTTP(rw, req)
	return rw
}

func decodeBody[T any](t *testing.T, rw *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&out))
	return out
}

func validClientBody() map[string]any {
	return map[string]any{
		"name":            "Comercializadora Andina SAS",
		"nit":             "900123451",
		"classification":  "PERSONA_JURIDICA",
		"regime":          "ORDINARIO",
		"vat_periodicity": "BIMESTRAL",
		"emails":          []string{"contabilidad@andina.example.com"},
	}
}

// =============================================================================
// CLIENT CRUD
// =============================================================================

func TestCreateAndGetClient(t *testing.T) {
	api := newTestAPI(t, "")

	rw := api.do(t, http.MethodPost, "/api/clients", validClientBody(), nil)
	require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())

	created := decodeBody[ClientDTO](t, rw)
	assert.NotEmpty(t, created.ID, "server assigns an id when none is given")
	assert.Equal(t, "900123451", created.NIT)
	assert.True(t, created.AlertsEnabled, "alerting is on unless explicitly disabled")

	rw = api.do(t, http.MethodGet, "/api/clients/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, rw.Code)
	got := decodeBody[ClientDTO](t, rw)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Comercializadora Andina SAS", got.Name)
}

func TestCreateClient_ValidationFailures(t *testing.T) {
	api := newTestAPI(t, "")

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing name", func(b map[string]any) { b["name"] = "" }},
		{"missing nit", func(b map[string]any) { b["nit"] = "" }},
		{"unknown classification", func(b map[string]any) { b["classification"] = "SUCURSAL" }},
		{"unknown regime", func(b map[string]any) { b["regime"] = "PREFERENCIAL" }},
		{"unknown periodicity", func(b map[string]any) { b["vat_periodicity"] = "MENSUAL" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validClientBody()
			tt.mutate(body)
			rw := api.do(t, http.MethodPost, "/api/clients", body, nil)
			require.Equal(t, http.StatusBadRequest, rw.Code)
			resp := decodeBody[ErrorResponse](t, rw)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestUpdateClient_NotFound(t *testing.T) {
	api := newTestAPI(t, "")

	rw := api.do(t, http.MethodPut, "/api/clients/ghost", validClientBody(), nil)
	assert.Equal(t, http.StatusNotFound, rw.Code)
}

func TestUpdateClient_ReplacesRecord(t *testing.T) {
	api := newTestAPI(t, "")

	created := decodeBody[ClientDTO](t, api.do(t, http.MethodPost, "/api/clients", validClientBody(), nil))

	body := validClientBody()
	body["name"] = "Comercializadora Andina ZOMAC SAS"
	body["alerts_enabled"] = false
	rw := api.do(t, http.MethodPut, "/api/clients/"+created.ID, body, nil)
	require.Equal(t, http.StatusOK, rw.Code)

	updated := decodeBody[ClientDTO](t, rw)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Comercializadora Andina ZOMAC SAS", updated.Name)
	assert.False(t, updated.AlertsEnabled)
}

func TestDeleteClient(t *testing.T) {
	api := newTestAPI(t, "")

	created := decodeBody[ClientDTO](t, api.do(t, http.MethodPost, "/api/clients", validClientBody(), nil))

	rw := api.do(t, http.MethodDelete, "/api/clients/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, rw.Code)

	rw = api.do(t, http.MethodGet, "/api/clients/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rw.Code)

	rw = api.do(t, http.MethodDelete, "/api/clients/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rw.Code)
}

// =============================================================================
// CALENDAR ENDPOINTS
// =============================================================================

func TestGetCalendar(t *testing.T) {
	api := newTestAPI(t, "")
	created := decodeBody[ClientDTO](t, api.do(t, http.MethodPost, "/api/clients", validClientBody(), nil))

	rw := api.do(t, http.MethodGet, fmt.Sprintf("/api/clients/%s/calendar?year=2026", created.ID), nil, nil)
	require.Equal(t, http.StatusOK, rw.Code)

	resp := decodeBody[CalendarResponse](t, rw)
	assert.Equal(t, created.ID, resp.ClientID)
	assert.Equal(t, 2026, resp.Year)
	// Two income-tax installments plus six bimonthly VAT filings.
	assert.Equal(t, 8, resp.Count)
	require.Len(t, resp.Events, 8)
	assert.Equal(t, "IVA", resp.Events[0].Type)
	assert.Equal(t, "2026-01-13", resp.Events[0].Date)
}

func TestGetCalendar_UnsupportedYear(t *testing.T) {
	api := newTestAPI(t, "")
	created := decodeBody[ClientDTO](t, api.do(t, http.MethodPost, "/api/clients", validClientBody(), nil))

	rw := api.do(t, http.MethodGet, fmt.Sprintf("/api/clients/%s/calendar?year=2019", created.ID), nil, nil)
	assert.Equal(t, http.StatusBadRequest, rw.Code)
}

func TestGetCalendar_UnknownClient(t *testing.T) {
	api := newTestAPI(t, "")

	rw := api.do(t, http.MethodGet, "/api/clients/ghost/calendar", nil, nil)
	assert.Equal(t, http.StatusNotFound, rw.Code)
}

func TestGetUpcomingAndOverdue(t *testing.T) {
	// Reference day is pinned to 2026-03-03: one VAT filing (Jan 13) is past,
	// one (Mar 10) falls inside the default 30-day window.
	api := newTestAPI(t, "")
	created := decodeBody[ClientDTO](t, api.do(t, http.MethodPost, "/api/clients", validClientBody(), nil))

	rw := api.do(t, http.MethodGet, "/api/clients/"+created.ID+"/upcoming", nil, nil)
	require.Equal(t, http.StatusOK, rw.Code)
	upcoming := decodeBody[CalendarResponse](t, rw)
	require.Equal(t, 1, upcoming.Count)
	assert.Equal(t, "2026-03-10", upcoming.Events[0].Date)

	rw = api.do(t, http.MethodGet, "/api/clients/"+created.ID+"/overdue", nil, nil)
	require.Equal(t, http.StatusOK, rw.Code)
	overdue := decodeBody[CalendarResponse](t, rw)
	require.Equal(t, 1, overdue.Count)
	assert.Equal(t, "2026-01-13", overdue.Events[0].Date)
}

func TestListYears(t *testing.T) {
	api := newTestAPI(t, "")

	rw := api.do(t, http.MethodGet, "/api/years", nil, nil)
	require.Equal(t, http.StatusOK, rw.Code)

	type yearDTO struct {
		Year int    `json:"year"`
		UVT  string `json:"uvt"`
	}
	resp := decodeBody[map[string][]yearDTO](t, rw)
	require.Len(t, resp["years"], 2)
	assert.Equal(t, 2025, resp["years"][0].Year)
	assert.Equal(t, "49799", resp["years"][0].UVT)
	assert.Equal(t, 2026, resp["years"][1].Year)
}

// =============================================================================
// CRON TRIGGER
// =============================================================================

func TestTriggerAlerts_OpenWithoutSecret(t *testing.T) {
	api := newTestAPI(t, "")
	api.do(t, http.MethodPost, "/api/clients", validClientBody(), nil)

	rw := api.do(t, http.MethodPost, "/api/cron/alerts", nil, nil)
	require.Equal(t, http.StatusOK, rw.Code)

	resp := decodeBody[CronResponse](t, rw)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "2026-03-03", resp.Date)
	assert.Equal(t, 1, resp.ClientsChecked)
	require.Len(t, resp.Alerts, 1, "the Mar 10 VAT filing is 7 days out")
	assert.Equal(t, 1, api.notifier.count())
}

func TestTriggerAlerts_SecretRequired(t *testing.T) {
	api := newTestAPI(t, "cron-secret")

	rw := api.do(t, http.MethodPost, "/api/cron/alerts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rw.Code)

	rw = api.do(t, http.MethodPost, "/api/cron/alerts", nil,
		map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rw.Code)

	rw = api.do(t, http.MethodPost, "/api/cron/alerts", nil,
		map[string]string{"Authorization": "Bearer cron-secret"})
	assert.Equal(t, http.StatusOK, rw.Code)
}

func TestTriggerAlerts_DryRun(t *testing.T) {
	api := newTestAPI(t, "")
	api.do(t, http.MethodPost, "/api/clients", validClientBody(), nil)

	rw := api.do(t, http.MethodPost, "/api/cron/alerts?dry_run=1", nil, nil)
	require.Equal(t, http.StatusOK, rw.Code)

	resp := decodeBody[CronResponse](t, rw)
	assert.True(t, resp.DryRun)
	require.Len(t, resp.Alerts, 1)
	assert.Zero(t, api.notifier.count(), "dry run must not dispatch")
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestLoadScenario(t *testing.T) {
	api := newTestAPI(t, "")

	rw := api.do(t, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "despacho-mixto"}, nil)
	require.Equal(t, http.StatusOK, rw.Code)

	rw = api.do(t, http.MethodGet, "/api/clients", nil, nil)
	require.Equal(t, http.StatusOK, rw.Code)
	resp := decodeBody[map[string][]ClientDTO](t, rw)
	assert.Len(t, resp["clients"], 3)
}

func TestLoadScenario_Unknown(t *testing.T) {
	api := newTestAPI(t, "")

	rw := api.do(t, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "nope"}, nil)
	assert.Equal(t, http.StatusBadRequest, rw.Code)
}
