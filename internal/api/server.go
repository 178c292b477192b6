package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jumpbot/internal/config"
	"jumpbot/internal/db"
	"jumpbot/internal/dispatch"
	"jumpbot/internal/logger"
	"jumpbot/internal/resolve"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// Server is the HTTP API server that connects the dispatcher, routing engine, and database.
type Server struct {
	cfg       *config.Config
	db        *db.DB
	startedAt time.Time

	mu      sync.RWMutex
	disp    *dispatch.Dispatcher
	catalog CatalogInfo
	ready   bool
}

// CatalogInfo describes the loaded catalog for /api/status.
type CatalogInfo struct {
	Source         string `json:"source"`
	Systems        int    `json:"systems"`
	Gates          int    `json:"gates"`
	TradeHubs      int    `json:"trade_hubs"`
	StationSystems int    `json:"station_systems"`
}

// NewServer creates a Server. database may be nil, which disables query history.
func NewServer(cfg *config.Config, database *db.DB) *Server {
	return &Server{cfg: cfg, db: database, startedAt: time.Now()}
}

// SetDispatcher is called when the catalog finishes loading.
func (s *Server) SetDispatcher(d *dispatch.Dispatcher, source string) {
	u := d.Engine().Universe()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disp = d
	s.catalog = CatalogInfo{
		Source:         source,
		Systems:        u.Len(),
		Gates:          u.GateCount(),
		TradeHubs:      len(u.TradeHubs()),
		StationSystems: u.StationSystems(),
	}
	s.ready = true
}

func (s *Server) dispatcher() (*dispatch.Dispatcher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disp, s.ready
}

func (s *Server) historyEnabled() bool {
	return s.db != nil && s.cfg.History
}

// Handler returns the HTTP handler with all API routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/systems/autocomplete", s.handleAutocomplete)
	mux.HandleFunc("GET /api/resolve", s.requireReady(s.handleResolve))
	// Routing
	mux.HandleFunc("GET /api/route", s.requireReady(s.handleRoute))
	mux.HandleFunc("POST /api/route/multi", s.requireReady(s.handleMultiRoute))
	mux.HandleFunc("GET /api/popular/{system}", s.requireReady(s.handlePopular))
	mux.HandleFunc("GET /api/nearest/{feature}/{system}", s.requireReady(s.handleNearest))
	// Chat
	mux.HandleFunc("POST /api/command", s.requireReady(s.handleCommand))
	mux.HandleFunc("POST /api/fleetping", s.requireReady(s.handleFleetPing))
	// History
	mux.HandleFunc("GET /api/history", s.handleGetHistory)
	mux.HandleFunc("GET /api/history/{id}", s.handleGetHistoryByID)
	mux.HandleFunc("DELETE /api/history", s.handleClearHistory)
	mux.Handle("GET /metrics", promhttp.Handler())
	return corsMiddleware(recoverMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware turns a panicking handler into a generic 500.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("API", fmt.Sprintf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack()))
				writeError(w, 500, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireReady(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.dispatcher(); !ok {
			writeError(w, 503, "catalog is still loading")
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, 400, "invalid json: "+err.Error())
		return false
	}
	return true
}

// queryBool accepts 1/true/yes and treats a bare "?path" as true.
func queryBool(r *http.Request, key string) bool {
	q := r.URL.Query()
	if !q.Has(key) {
		return false
	}
	switch strings.ToLower(q.Get(key)) {
	case "", "1", "true", "yes", "on":
		return true
	}
	return false
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// --- Handlers ---

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.ready
	info := s.catalog
	var popular []string
	var cache resolve.Stats
	if s.disp != nil {
		popular = s.disp.Engine().PopularSystems()
		cache = s.disp.Engine().Resolver().Cache().Stats()
	}
	s.mu.RUnlock()

	result := map[string]interface{}{
		"ready":           ready,
		"history_enabled": s.historyEnabled(),
		"uptime_seconds":  int64(time.Since(s.startedAt).Seconds()),
	}
	if ready {
		result["catalog"] = info
		result["popular_systems"] = popular
		result["resolver_cache"] = cache
	}
	writeJSON(w, result)
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	d, ok := s.dispatcher()
	if q == "" || !ok {
		writeJSON(w, map[string][]string{"systems": {}})
		return
	}
	limit := queryInt(r, "limit", 15)
	writeJSON(w, map[string][]string{"systems": d.Engine().Resolver().Complete(q, limit)})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, 400, "q is required")
		return
	}
	d, _ := s.dispatcher()
	writeJSON(w, d.Engine().Resolve(q))
}
