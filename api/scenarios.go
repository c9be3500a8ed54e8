/*
scenarios.go - Demo dataset loaders for testing and demonstrations

PURPOSE:
  Pre-built client datasets that populate the database with realistic data
  for local development and demos. Each scenario covers a distinct slice of
  the regulatory matrix so the full calendar behavior is visible at once.

AVAILABLE SCENARIOS:
  despacho-mixto:       Small practice: one of each classification
  regimen-simple:       RST clients with bimonthly advances
  gran-contribuyente:   Large taxpayer with every optional obligation

NOTE:
  Loading a scenario RESETS the database. Development environments only.

SEE ALSO:
  - handlers.go: response helpers
  - store/sqlite: persistence
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/contaflow/tax-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "despacho-mixto",
		Name:        "Despacho mixto",
		Description: "Una persona natural, una juridica y un gran contribuyente con perfiles tipicos",
		Clients:     3,
	},
	{
		ID:          "regimen-simple",
		Name:        "Regimen Simple",
		Description: "Clientes RST con anticipos bimestrales y sin obligaciones opcionales",
		Clients:     2,
	},
	{
		ID:          "gran-contribuyente",
		Name:        "Gran contribuyente completo",
		Description: "Un gran contribuyente con todas las obligaciones opcionales activas",
		Clients:     1,
	},
}

// ListScenarios returns the available demo datasets.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"scenarios": scenarios})
}

// LoadScenario resets the database and loads one demo dataset.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	var clients []sqlite.ClientRecord
	switch req.ScenarioID {
	case "despacho-mixto":
		clients = despachoMixto()
	case "regimen-simple":
		clients = regimenSimple()
	case "gran-contribuyente":
		clients = granContribuyente()
	default:
		h.writeError(w, http.StatusBadRequest, "unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to reset database", err)
		return
	}
	if err := h.saveAll(ctx, clients); err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to load scenario", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"loaded":  req.ScenarioID,
		"clients": len(clients),
	})
}

func (h *Handler) saveAll(ctx context.Context, clients []sqlite.ClientRecord) error {
	for _, c := range clients {
		if err := h.Store.SaveClient(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// DATASETS
// =============================================================================

func despachoMixto() []sqlite.ClientRecord {
	return []sqlite.ClientRecord{
		{
			ID:             "cli-natural-01",
			Name:           "Maria Restrepo",
			NIT:            "52.487.221-3",
			Classification: "PERSONA_NATURAL",
			VATPeriodicity: "CUATRIMESTRAL",
			FlagsJSON:      `{"informacion_exogena": true}`,
			Emails:         []string{"maria@example.com"},
			AlertsEnabled:  true,
		},
		{
			ID:             "cli-juridica-01",
			Name:           "Comercializadora Andina SAS",
			NIT:            "900.123.456-7",
			Classification: "PERSONA_JURIDICA",
			Regime:         "ORDINARIO",
			VATPeriodicity: "BIMESTRAL",
			FlagsJSON:      `{"agente_retencion": true, "informacion_exogena": true}`,
			AlertDays:      []int{10, 3},
			Emails:         []string{"contabilidad@andina.example.com", "gerencia@andina.example.com"},
			AlertsEnabled:  true,
		},
		{
			ID:             "cli-grande-01",
			Name:           "Industrias del Cauca SA",
			NIT:            "890.900.112-1",
			Classification: "GRAN_CONTRIBUYENTE",
			Regime:         "ORDINARIO",
			VATPeriodicity: "BIMESTRAL",
			FlagsJSON:      `{"agente_retencion": true, "impuesto_patrimonio": true, "precios_transferencia": true}`,
			Emails:         []string{"impuestos@cauca.example.com"},
			AlertsEnabled:  true,
		},
	}
}

func regimenSimple() []sqlite.ClientRecord {
	return []sqlite.ClientRecord{
		{
			ID:             "cli-rst-01",
			Name:           "Cafeteria El Roble",
			NIT:            "901.555.010-9",
			Classification: "PERSONA_JURIDICA",
			Regime:         "SIMPLE",
			VATPeriodicity: "BIMESTRAL",
			Emails:         []string{"elroble@example.com"},
			AlertsEnabled:  true,
		},
		{
			ID:             "cli-rst-02",
			Name:           "Jorge Palacios",
			NIT:            "79.444.218-0",
			Classification: "PERSONA_NATURAL",
			Regime:         "SIMPLE",
			VATPeriodicity: "NINGUNA",
			Emails:         []string{"jpalacios@example.com"},
			AlertsEnabled:  true,
		},
	}
}

func granContribuyente() []sqlite.ClientRecord {
	return []sqlite.ClientRecord{
		{
			ID:             "cli-grande-full",
			Name:           "Grupo Energetico del Norte SA",
			NIT:            "860.002.964-4",
			Classification: "GRAN_CONTRIBUYENTE",
			Regime:         "ORDINARIO",
			VATPeriodicity: "BIMESTRAL",
			FlagsJSON: `{
				"agente_retencion": true,
				"gmf": true,
				"informacion_exogena": true,
				"impuesto_patrimonio": true,
				"impuesto_carbono": true,
				"impuesto_bebidas_azucaradas": true,
				"impuesto_combustibles": true,
				"impuesto_plasticos": true,
				"registro_beneficiarios": true,
				"precios_transferencia": true,
				"informe_pais_por_pais": true
			}`,
			AlertDays:     []int{30, 15, 7, 1},
			Emails:        []string{"tributaria@genorte.example.com"},
			AlertsEnabled: true,
		},
	}
}
