package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/gemscreener/internal/strategyconfig"
)

// ConfigHandler exposes the active strategy configuration
type ConfigHandler struct {
	cfg      *strategyconfig.Config
	snapshot *strategyconfig.Snapshot
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *strategyconfig.Config, snapshot *strategyconfig.Snapshot) *ConfigHandler {
	return &ConfigHandler{cfg: cfg, snapshot: snapshot}
}

// GetConfig returns the snapshot identity and the full tables
// GET /api/config
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot": h.snapshot,
		"config":   h.cfg,
	})
}

// GetBenchmark returns the benchmark used for a sector (Default when unknown)
// GET /api/config/benchmarks/{sector}
func (h *ConfigHandler) GetBenchmark(w http.ResponseWriter, r *http.Request) {
	sector := mux.Vars(r)["sector"]
	_, known := h.cfg.SectorBenchmarks[sector]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sector":    sector,
		"fallback":  !known,
		"benchmark": h.cfg.Benchmark(sector),
	})
}
