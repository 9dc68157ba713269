// Package server exposes the settings surface and the last stored
// snapshot over HTTP.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strconv"

	"merkwatch/watcher-service/internal/metrics"
	"merkwatch/watcher-service/internal/model"
	"merkwatch/watcher-service/internal/store"
)

// Server serves settings, snapshot browse, health and metrics endpoints.
type Server struct {
	store   store.Store
	metrics *metrics.Registry
}

// New constructs a Server. m may be nil to disable /metrics.
func New(st store.Store, m *metrics.Registry) *Server {
	return &Server{store: st, metrics: m}
}

// Handler builds the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/settings", s.handleSettings)
	mux.HandleFunc("/wishlist", s.handleWishlist)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Service: "watcher-service",
		Version: "0.1.0",
	})
}

// handleSettings reads (GET) or replaces (PUT) the alerting configuration.
// Values take effect at the start of the next poll cycle — a cycle in
// flight keeps the config it started with.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := store.LoadConfig(r.Context(), s.store)
		if err != nil {
			log.Printf("[server] load config: %v", err)
			http.Error(w, "failed to load settings", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, cfg)

	case http.MethodPut:
		var cfg model.UserConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if cfg.DiscountThreshold < 1 || cfg.DiscountThreshold > 100 {
			http.Error(w, "discountThreshold must be between 1 and 100", http.StatusBadRequest)
			return
		}
		if cfg.ConditionFilter == "" {
			cfg.ConditionFilter = model.ConditionAll
		}
		if err := store.SaveConfig(r.Context(), s.store, cfg); err != nil {
			log.Printf("[server] save config: %v", err)
			http.Error(w, "failed to save settings", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, cfg)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type wishlistResponse struct {
	Count    int            `json:"count"`
	Products model.Snapshot `json:"products"`
}

// handleWishlist returns the last stored snapshot. With ?sort=discount
// the products are ordered by discount descending, the way the wishlist
// browser displays them; storage order is never touched.
func (s *Server) handleWishlist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot, err := store.LoadSnapshot(r.Context(), s.store)
	if err != nil {
		log.Printf("[server] load snapshot: %v", err)
		http.Error(w, "failed to load snapshot", http.StatusInternalServerError)
		return
	}
	if snapshot == nil {
		snapshot = model.Snapshot{}
	}

	if r.URL.Query().Get("sort") == "discount" {
		sorted := make(model.Snapshot, len(snapshot))
		copy(sorted, snapshot)
		sort.SliceStable(sorted, func(i, j int) bool {
			return discountValue(sorted[i]) > discountValue(sorted[j])
		})
		snapshot = sorted
	}

	writeJSON(w, http.StatusOK, wishlistResponse{
		Count:    len(snapshot),
		Products: snapshot,
	})
}

// discountValue treats missing or unparsable discounts as -1 so they
// sort after every real discount, including "0".
func discountValue(p model.NormalizedProduct) int {
	if p.Discount == nil {
		return -1
	}
	v, err := strconv.Atoi(*p.Discount)
	if err != nil {
		return -1
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] encode response: %v", err)
	}
}
