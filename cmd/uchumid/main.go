// Command uchumid runs the Uchumi wa Afrika game-state daemon: the tick
// loop, the periodic market/payroll jobs, and the HTTP API for one
// player session.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/uchumi/internal/api"
	"github.com/talgya/uchumi/internal/catalog"
	"github.com/talgya/uchumi/internal/engine"
	"github.com/talgya/uchumi/internal/entropy"
	"github.com/talgya/uchumi/internal/persistence"
	"github.com/talgya/uchumi/internal/session"
	"github.com/talgya/uchumi/internal/state"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("Uchumi wa Afrika — economic simulation daemon")

	dbPath := envOr("UCHUMI_DB", "data/uchumi.db")
	apiPort := envInt("UCHUMI_PORT", 8080)
	playerID := envOr("UCHUMI_PLAYER_ID", "mchezaji-1")
	playerName := envOr("UCHUMI_PLAYER_NAME", "Mchezaji")
	seed := int64(envInt("UCHUMI_SEED", 42))

	// ── Catalog ───────────────────────────────────────────────────────
	var cat *catalog.Catalog
	if path := os.Getenv("UCHUMI_CATALOG"); path != "" {
		loaded, err := catalog.LoadFile(path)
		if err != nil {
			slog.Error("failed to load catalog file", "path", path, "error", err)
			os.Exit(1)
		}
		cat = loaded
		slog.Info("catalog loaded", "path", path)
	} else {
		cat = catalog.Default()
		slog.Info("using built-in catalog")
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// ── Load or Seed Player State ─────────────────────────────────────
	st, err := db.Load(playerID)
	if err != nil {
		slog.Error("failed to load player state", "error", err)
		os.Exit(1)
	}
	if st != nil {
		slog.Info("player state restored",
			"player", st.Identity.DisplayName,
			"level", st.Level,
			"money", st.Money,
			"net_worth", st.NetWorth,
		)
	} else {
		slog.Info("no saved state found, seeding new account", "player", playerName)
		identity := state.Identity{
			PlayerID:    playerID,
			DisplayName: playerName,
			Role:        state.RolePlayer,
		}
		st = state.New(identity, cat, time.Now())
		st.NetWorth = engine.NetWorth(st, cat)
		if err := db.Save(st); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── Session + Jobs ────────────────────────────────────────────────
	shocks := entropy.NewSource(os.Getenv("RANDOM_ORG_KEY"))
	if shocks != nil {
		slog.Info("random.org entropy enabled")
	}
	drift := engine.NewMarketDrift(seed)
	sess := session.New(st, cat, db, drift, shocks, 5*time.Second)

	ticker := engine.NewTicker()
	ticker.OnSecond = sess.AdvanceTick
	ticker.OnMinute = sess.PaySalaries
	ticker.OnHour = sess.Fluctuate
	ticker.OnDay = func(now time.Time) {
		sess.PayDividends(now)
		// Daily checkpoint regardless of debounce.
		if err := sess.Flush(); err != nil {
			slog.Error("daily save failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	authKey := os.Getenv("UCHUMI_AUTH_KEY")
	if authKey == "" {
		slog.Warn("UCHUMI_AUTH_KEY not set — command endpoints will be disabled")
	}
	adminKey := os.Getenv("UCHUMI_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("UCHUMI_ADMIN_KEY not set — speed control will be disabled")
	}

	apiServer := &api.Server{
		Session:  sess,
		Ticker:   ticker,
		DB:       db,
		Port:     apiPort,
		AuthKey:  authKey,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		ticker.Stop()
	}()

	fmt.Printf("\nUchumi wa Afrika: %s yuko tayari.\n", st.Identity.DisplayName)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	ticker.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	if err := sess.Flush(); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. State saved.")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
