// Package session serializes all mutations of one player's state: user
// commands and tick advances take the same lock, so a command is never
// applied while a tick is being computed. Persistence is debounced and
// fire-and-forget; engine logic never waits on a save.
package session

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/uchumi/internal/catalog"
	"github.com/talgya/uchumi/internal/engine"
	"github.com/talgya/uchumi/internal/entropy"
	"github.com/talgya/uchumi/internal/state"
)

// Store is the persistence adapter the session writes snapshots to.
type Store interface {
	Save(st *state.EconomicState) error
}

// Session owns one player's EconomicState and is its single writer.
type Session struct {
	mu    sync.Mutex
	st    *state.EconomicState
	cat   catalog.Provider
	store Store // may be nil (in-memory play)

	drift   *engine.MarketDrift
	shocks  *entropy.Source
	saveGap time.Duration
	lastSav time.Time
	dirty   bool
}

// New creates a session. saveGap is the minimum spacing between
// snapshot writes; dirty state older than that flushes on the next
// mutation or on Flush.
func New(st *state.EconomicState, cat catalog.Provider, store Store, drift *engine.MarketDrift, shocks *entropy.Source, saveGap time.Duration) *Session {
	return &Session{
		st:      st,
		cat:     cat,
		store:   store,
		drift:   drift,
		shocks:  shocks,
		saveGap: saveGap,
	}
}

// Catalog exposes the content tables the session validates against.
func (s *Session) Catalog() catalog.Provider { return s.cat }

// Apply runs one command handler against the state under the session
// lock. On success the cached net worth is refreshed and a debounced
// save is scheduled; on rejection the state is untouched.
func (s *Session) Apply(now time.Time, fn func(st *state.EconomicState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.st); err != nil {
		return err
	}
	s.st.NetWorth = engine.NetWorth(s.st, s.cat)
	s.markDirty(now)
	return nil
}

// AdvanceTick settles elapsed jobs. Skips persistence entirely when the
// tick was a no-op.
func (s *Session) AdvanceTick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if engine.Advance(s.st, s.cat, now) {
		s.markDirty(now)
	}
}

// PaySalaries runs the payroll job.
func (s *Session) PaySalaries(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if engine.PaySalaries(s.st, now) {
		s.st.NetWorth = engine.NetWorth(s.st, s.cat)
		s.markDirty(now)
	}
}

// PayDividends runs the dividend payout job.
func (s *Session) PayDividends(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if engine.PayDividends(s.st, now) {
		s.st.NetWorth = engine.NetWorth(s.st, s.cat)
		s.markDirty(now)
	}
}

// Fluctuate runs the market-fluctuation job.
func (s *Session) Fluctuate(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if engine.Fluctuate(s.st, s.drift, s.shocks, now) {
		s.st.NetWorth = engine.NetWorth(s.st, s.cat)
		s.markDirty(now)
	}
}

// Snapshot returns a deep copy of the state for readers, so API
// handlers never observe a half-applied mutation.
func (s *Session) Snapshot() *state.EconomicState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deepCopy(s.st)
}

// Flush writes the snapshot synchronously. Used on shutdown and daily
// checkpoints.
func (s *Session) Flush() error {
	s.mu.Lock()
	snap := deepCopy(s.st)
	s.dirty = false
	s.lastSav = time.Now()
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Save(snap)
}

// markDirty schedules a debounced, fire-and-forget save. Called with
// the session lock held.
func (s *Session) markDirty(now time.Time) {
	s.dirty = true
	if s.store == nil {
		return
	}
	if now.Sub(s.lastSav) < s.saveGap {
		return // a later mutation or Flush picks it up
	}

	snap := deepCopy(s.st)
	s.dirty = false
	s.lastSav = now
	go func() {
		if err := s.store.Save(snap); err != nil {
			slog.Error("state save failed", "error", err, "player", snap.Identity.PlayerID)
		}
	}()
}

func deepCopy(st *state.EconomicState) *state.EconomicState {
	raw, err := json.Marshal(st)
	if err != nil {
		panic("session: state not serializable: " + err.Error())
	}
	var out state.EconomicState
	if err := json.Unmarshal(raw, &out); err != nil {
		panic("session: state roundtrip failed: " + err.Error())
	}
	return &out
}
