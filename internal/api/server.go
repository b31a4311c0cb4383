// Package api exposes the player-state surface over HTTP.
// GET endpoints are public read-only snapshots.
// POST endpoints (commands) require the session bearer token; the
// ticker speed control requires the admin token.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/talgya/uchumi/internal/engine"
	"github.com/talgya/uchumi/internal/persistence"
	"github.com/talgya/uchumi/internal/session"
	"github.com/talgya/uchumi/internal/state"
)

// Server serves one player session over HTTP.
type Server struct {
	Session  *session.Session
	Ticker   *engine.Ticker
	DB       *persistence.DB // optional; enables ledger history
	Port     int
	AuthKey  string // bearer token for command POSTs. Empty = commands disabled.
	AdminKey string // bearer token for speed control. Empty = disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	commandLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public read endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/networth", s.handleNetWorth)
	mux.HandleFunc("/api/v1/notifications", s.handleNotifications)
	mux.HandleFunc("/api/v1/transactions", s.handleTransactions)
	mux.HandleFunc("/api/v1/market", s.handleMarket)
	mux.HandleFunc("/api/v1/stocks", s.handleStocks)

	// Command endpoints (POST, bearer token, rate limited).
	command := func(path string, h http.HandlerFunc) {
		mux.HandleFunc(path, RateLimitMiddleware(commandLimiter, s.authOnly(h)))
	}
	command("/api/v1/build", s.handleBuild)
	command("/api/v1/upgrade", s.handleUpgrade)
	command("/api/v1/demolish", s.handleDemolish)
	command("/api/v1/produce", s.handleProduce)
	command("/api/v1/sell", s.handleSell)
	command("/api/v1/boost", s.handleBoost)
	command("/api/v1/buy", s.handleBuyMaterial)
	command("/api/v1/market/post", s.handleMarketPost)
	command("/api/v1/market/buy", s.handleMarketBuy)
	command("/api/v1/stocks/buy", s.handleStockBuy)
	command("/api/v1/stocks/sell", s.handleStockSell)
	command("/api/v1/workers/hire", s.handleWorkerHire)
	command("/api/v1/workers/fire", s.handleWorkerFire)

	// Admin control plane.
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "commands_auth", s.AuthKey != "", "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearer(r *http.Request, key string) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == key
}

// authOnly requires the session bearer token and the POST method.
func (s *Server) authOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AuthKey == "" {
			http.Error(w, "command endpoints disabled (no UCHUMI_AUTH_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearer(r, s.AuthKey) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// adminOnly requires the admin bearer token on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no UCHUMI_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearer(r, s.AdminKey) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// apply decodes the request body into in, then runs the command. The
// request body must already have been validated enough to avoid
// tripping engine preconditions (slot range, positive quantities).
func (s *Server) apply(w http.ResponseWriter, r *http.Request, in any, fn func(st *state.EconomicState) error) {
	if err := json.NewDecoder(r.Body).Decode(in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	err := s.Session.Apply(time.Now(), fn)
	if err != nil {
		if engine.IsRejection(err) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		slog.Error("command failed", "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, s.Session.Snapshot())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.Session.Snapshot()
	writeJSON(w, map[string]any{
		"name":      "Uchumi wa Afrika",
		"player":    snap.Identity.DisplayName,
		"tick":      s.Ticker.Tick,
		"speed":     s.Ticker.Speed,
		"running":   s.Ticker.Running,
		"level":     snap.Level,
		"xp":        snap.XP,
		"money":     snap.Money,
		"stars":     snap.Stars,
		"net_worth": snap.NetWorth,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Session.Snapshot())
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	snap := s.Session.Snapshot()
	writeJSON(w, map[string]float64{"net_worth": snap.NetWorth})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	snap := s.Session.Snapshot()
	writeJSON(w, snap.Notifications)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	snap := s.Session.Snapshot()

	// Durable ledger when available; the in-state log otherwise.
	if s.DB != nil {
		rows, err := s.DB.RecentLedger(snap.Identity.PlayerID, 100)
		if err == nil {
			if rows == nil {
				rows = []persistence.LedgerRow{}
			}
			writeJSON(w, rows)
			return
		}
		slog.Error("ledger query failed", "error", err)
	}
	writeJSON(w, snap.Transactions)
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	snap := s.Session.Snapshot()
	if snap.MarketListings == nil {
		snap.MarketListings = []state.MarketListing{}
	}
	writeJSON(w, snap.MarketListings)
}

func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	snap := s.Session.Snapshot()
	writeJSON(w, map[string]any{
		"companies": snap.Companies,
		"holdings":  snap.PlayerStocks,
	})
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot       int    `json:"slot"`
		BuildingID string `json:"building_id"`
	}
	s.apply(w, r, &req, func(st *state.EconomicState) error {
		if req.Slot < 0 || req.Slot >= len(st.Slots) {
			return engine.ErrInvalidSlotState
		}
		return engine.Build(st, s.Session.Catalog(), req.Slot, req.BuildingID, time.Now())
	})
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot int `json:"slot"`
	}
	s.apply(w, r, &req, func(st *state.EconomicState) error {
		if req.Slot < 0 || req.Slot >= len(st.Slots) {
			return engine.ErrInvalidSlotState
		}
		return engine.Upgrade(st, s.Session.Catalog(), req.Slot, time.Now())
	})
}

func (s *Server) handleDemolish(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot int `json:"slot"`
	}
	s.apply(w, r, &req, func(st *state.EconomicState) error {
		if req.Slot < 0 || req.Slot >= len(st.Slots) {
			return engine.ErrInvalidSlotState
		}
		return engine.Demolish(st, req.Slot, time.Now())
	})
}

func (s *Server) handleProduce(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot       int    `json:"slot"`
		RecipeID   string `json:"recipe_id"`
		Batch      int    `json:"batch"`
		DurationMs int64  `json:"duration_ms"`
	}
	s.apply(w, r, &req, func(st *state.EconomicState) error {
		if req.Slot < 0 || req.Slot >= len(st.Slots) || req.Batch <= 0 || req.DurationMs <= 0 {
			return engine.ErrInvalidSlotState
		}
		return engine.StartProduction(st, s.Session.Catalog(), req.Slot, req.RecipeID, req.Batch,
			time.Duration(req.DurationMs)*time.Millisecond, time.Now())
	})
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot       int     `json:"slot"`
		Item       string  `json:"item"`
		Quantity   int     `json:"quantity"`
		UnitPrice  float64 `json:"unit_price"`
		DurationMs int64   `json:"duration_ms"`
	}
	s.apply(w, r, &req, func(st *state.EconomicState) error {
		if req.Slot < 0 || req.Slot >= len(st.Slots) || req.Quantity <= 0 || req.DurationMs <= 0 {
			return engine.ErrInvalidSlotState
		}
		return engine.StartSelling(st, req.Slot, req.Item, req.Quantity, req.UnitPrice,
			time.Duration(req.DurationMs)*time.Millisecond, time.Now())
	})
}

func (s *Server) handleBoost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot  int `json:"slot"`
		Stars int `json:"stars"`
	}
	s.apply(w, r, &req, func(st *state.EconomicState) error {
		if req.Slot < 0 || req.Slot >= len(st.Slots) || req.Stars <= 0 {
			return engine.ErrInvalidSlotState
		}
		return engine.BoostConstruction(st, req.Slot, req.Stars, time.Now())
	})
}

func (s *Server) handleBuyMaterial(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Item     string `json:"item"`
		Quantity int    `json:"quantity"`
	}
	s.apply(w, r, &req, func(st *state.EconomicState) error {
		if req.Quantity <= 0 {
			return engine.ErrUnknownItem
		}
		return engine.BuyMaterial(st, s.Session.Catalog(), req.Item, req.Quantity, time.Now())
	})
}

func (s *Server) handleMarketPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Item      string  `json:"item"`
		Quantity  int     `json:"quantity"`
		UnitPrice float64 `json:"unit_price"`
	}
	s.apply(w, r, &req, func(st *state.EconomicState) error {
		if req.Quantity <= 0 || req.UnitPrice <= 0 {
			return engine.ErrInsufficientResources
		}
		return engine.PostToMarket(st, req.Item, req.Quantity, req.UnitPrice, time.Now())
	})
}

func (s *Server) handleMarketBuy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ListingID string `json:"listing_id"`
		Quantity  int    `json:"quantity"`
	}
	s.apply(w, r, &req, func(st *state.EconomicState) error {
		if req.Quantity <= 0 {
			return engine.ErrUnknownListing
		}
		return engine.BuyFromMarket(st, s.Session.Catalog(), req.ListingID, req.Quantity, time.Now())
	})
}

func (s *Server) handleStockBuy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ticker   string `json:"ticker"`
		Quantity int64  `json:"quantity"`
	}
	s.apply(w, r, &req, func(st *state.EconomicState) error {
		if req.Quantity <= 0 {
			return engine.ErrUnknownTicker
		}
		return engine.BuyStock(st, req.Ticker, req.Quantity, time.Now())
	})
}

func (s *Server) handleStockSell(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ticker   string `json:"ticker"`
		Quantity int64  `json:"quantity"`
	}
	s.apply(w, r, &req, func(st *state.EconomicState) error {
		if req.Quantity <= 0 {
			return engine.ErrUnknownTicker
		}
		return engine.SellStock(st, req.Ticker, req.Quantity, time.Now())
	})
}

func (s *Server) handleWorkerHire(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ArchetypeID string `json:"archetype_id"`
	}
	s.apply(w, r, &req, func(st *state.EconomicState) error {
		return engine.HireWorker(st, s.Session.Catalog(), req.ArchetypeID, time.Now())
	})
}

func (s *Server) handleWorkerFire(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkerID string `json:"worker_id"`
	}
	s.apply(w, r, &req, func(st *state.EconomicState) error {
		return engine.FireWorker(st, req.WorkerID, time.Now())
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Ticker.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Ticker.Speed})
}
