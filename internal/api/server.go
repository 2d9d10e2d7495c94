// Package api exposes the read-only simulation surface: current prices,
// sector balance data, corporations, statements, and the leaderboard.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"corpsim/internal/balance"
	"corpsim/internal/config"
	"corpsim/internal/corp"
	"corpsim/internal/econ"
	"corpsim/internal/market"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	cfg    config.APIConfig
	log    *slog.Logger
	store  *corp.Store
	prices *market.Loader
	bal    balance.Config
	mux    *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, store *corp.Store, prices *market.Loader, bal balance.Config) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		log:    logger,
		store:  store,
		prices: prices,
		bal:    bal,
		mux:    chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/prices", s.handlePrices)
		r.Get("/sectors", s.handleSectors)
		r.Get("/corporations", s.handleCorporations)
		r.Get("/corporations/{id}/statement", s.handleStatement)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	seasonID, err := s.store.ActiveSeasonID(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items, err := s.prices.LoadItems(r.Context(), seasonID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	type priced struct {
		Name           string  `json:"name"`
		Class          string  `json:"class"`
		ReferencePrice float64 `json:"reference_price"`
		CurrentPrice   float64 `json:"current_price"`
		ScarcityFactor float64 `json:"scarcity_factor"`
	}
	out := make([]priced, 0, len(items))
	for _, it := range items {
		out = append(out, priced{
			Name:           it.Name,
			Class:          string(it.Class),
			ReferencePrice: it.ReferencePrice,
			CurrentPrice:   market.PriceOf(it),
			ScarcityFactor: market.ScarcityFactor(it),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"season_id": seasonID, "items": out})
}

func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	type sectorInfo struct {
		Sector    string                         `json:"sector"`
		Class     string                         `json:"class"`
		UnitFlows map[string]econ.ProductionFlow `json:"unit_flows"`
	}
	floors := s.bal.CostFloorSectors()
	out := make([]sectorInfo, 0, len(s.bal.Sectors))
	for _, name := range sortedSectorNames(s.bal.Sectors) {
		class := "general"
		if floors[name] {
			class = balance.ClassCostFloor
		}
		out = append(out, sectorInfo{Sector: name, Class: class, UnitFlows: s.bal.Sectors[name]})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sectors": out})
}

func (s *Server) handleCorporations(w http.ResponseWriter, r *http.Request) {
	seasonID, err := s.store.ActiveSeasonID(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out, err := s.store.ListCorporations(r.Context(), seasonID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"season_id": seasonID, "corporations": out})
}

// handleStatement computes a fresh statement against the current snapshot.
// ?latest=1 returns the last persisted turn result instead; ?period_hours=N
// overrides the accounting window for the fresh computation.
func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	seasonID, err := s.store.ActiveSeasonID(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	corpID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid corporation id")
		return
	}

	if r.URL.Query().Get("latest") == "1" {
		rec, err := s.store.LatestStatement(r.Context(), seasonID, corpID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
		return
	}

	c, err := s.store.GetCorporation(r.Context(), seasonID, corpID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	commodities, products, err := s.prices.Snapshot(r.Context(), seasonID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	periodHours := 0.0
	if raw := strings.TrimSpace(r.URL.Query().Get("period_hours")); raw != "" {
		periodHours, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid period_hours")
			return
		}
	}

	params := s.bal.Params(periodHours, c.DividendPercentage)
	stmt := econ.ComputeStatements(c.Entries, s.bal.Flows(), commodities, products, s.bal.UnitEconomics, params)
	writeJSON(w, http.StatusOK, map[string]any{
		"corporation_id": c.ID,
		"name":           c.Name,
		"statement":      stmt,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	seasonID, err := s.store.ActiveSeasonID(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	out, err := s.store.Leaderboard(r.Context(), seasonID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": out})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, corp.ErrCorporationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, corp.ErrSeasonNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func sortedSectorNames(sectors map[string]balance.SectorChain) []string {
	out := make([]string, 0, len(sectors))
	for name := range sectors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
