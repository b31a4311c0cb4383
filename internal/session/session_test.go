package session_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/uchumi/internal/catalog"
	"github.com/talgya/uchumi/internal/engine"
	"github.com/talgya/uchumi/internal/entropy"
	"github.com/talgya/uchumi/internal/session"
	"github.com/talgya/uchumi/internal/state"
)

var t0 = time.UnixMilli(1_700_000_000_000)

// memStore records saved snapshots in memory.
type memStore struct {
	mu    sync.Mutex
	saves []*state.EconomicState
}

func (m *memStore) Save(st *state.EconomicState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, st)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func newSession(store session.Store) (*session.Session, *state.EconomicState) {
	cat := catalog.Default()
	identity := state.Identity{PlayerID: "p1", DisplayName: "Asha", Role: state.RolePlayer}
	st := state.New(identity, cat, t0)
	var shocks *entropy.Source
	return session.New(st, cat, store, engine.NewMarketDrift(1), shocks, time.Hour), st
}

func TestApplySuccessRefreshesNetWorth(t *testing.T) {
	sess, st := newSession(nil)

	err := sess.Apply(t0, func(st *state.EconomicState) error {
		return engine.Build(st, sess.Catalog(), 0, "shamba", t0)
	})
	require.NoError(t, err)

	assert.Equal(t, 5210.0, st.NetWorth)
	assert.False(t, sess.Snapshot().Slots[0].Empty())
}

func TestApplyRejectionLeavesStateUntouched(t *testing.T) {
	sess, _ := newSession(nil)
	before := sess.Snapshot()

	err := sess.Apply(t0, func(st *state.EconomicState) error {
		return engine.Build(st, sess.Catalog(), 0, "kasri", t0)
	})
	require.ErrorIs(t, err, engine.ErrUnknownBuilding)

	after := sess.Snapshot()
	assert.Equal(t, before.Money, after.Money)
	assert.Equal(t, before.Inventory, after.Inventory)
	assert.Equal(t, before.Slots, after.Slots)
}

func TestSnapshotIsIsolatedFromLiveState(t *testing.T) {
	sess, _ := newSession(nil)

	snap := sess.Snapshot()
	snap.Money = 0
	snap.Inventory["Mbao"].Quantity = 0

	fresh := sess.Snapshot()
	assert.Equal(t, state.StartingMoney, fresh.Money)
	assert.Equal(t, 10, fresh.Inventory["Mbao"].Quantity)
}

func TestAdvanceTickSkipsSaveWhenIdle(t *testing.T) {
	store := &memStore{}
	sess, _ := newSession(store)

	// Nothing scheduled: no state change, no snapshot written.
	sess.AdvanceTick(t0.Add(time.Second))
	assert.Zero(t, store.count())
}

func TestMutationTriggersDebouncedSave(t *testing.T) {
	store := &memStore{}
	sess, _ := newSession(store)

	err := sess.Apply(t0, func(st *state.EconomicState) error {
		return engine.BuyMaterial(st, sess.Catalog(), "Sukari", 1, t0)
	})
	require.NoError(t, err)

	// The save is fire-and-forget; poll briefly for it.
	require.Eventually(t, func() bool { return store.count() == 1 },
		time.Second, 10*time.Millisecond)

	// A second mutation inside the save gap stays pending.
	err = sess.Apply(t0.Add(time.Second), func(st *state.EconomicState) error {
		return engine.BuyMaterial(st, sess.Catalog(), "Sukari", 1, t0.Add(time.Second))
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.count())

	// Flush picks up the pending write.
	require.NoError(t, sess.Flush())
	assert.Equal(t, 2, store.count())
}

func TestFlushWritesDeepCopy(t *testing.T) {
	store := &memStore{}
	sess, st := newSession(store)

	require.NoError(t, sess.Flush())
	require.Equal(t, 1, store.count())

	saved := store.saves[0]
	assert.NotSame(t, st, saved)
	assert.Equal(t, st.Money, saved.Money)
}

func TestFlushWithoutStoreIsNoOp(t *testing.T) {
	sess, _ := newSession(nil)
	assert.NoError(t, sess.Flush())
}

func TestJobsRunUnderSessionLock(t *testing.T) {
	sess, _ := newSession(nil)

	require.NoError(t, sess.Apply(t0, func(st *state.EconomicState) error {
		return engine.HireWorker(st, sess.Catalog(), "mkulima", t0)
	}))

	sess.PaySalaries(t0.Add(time.Minute))
	sess.Fluctuate(t0.Add(time.Hour))
	sess.PayDividends(t0.Add(24 * time.Hour))

	snap := sess.Snapshot()
	// One signing cost plus one payroll run.
	assert.Equal(t, state.StartingMoney-240, snap.Money)
	assert.Equal(t, "salary", snap.Notifications[0].Kind)
}

func TestApplyPropagatesHandlerError(t *testing.T) {
	sess, _ := newSession(nil)
	sentinel := errors.New("boom")

	err := sess.Apply(t0, func(*state.EconomicState) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}
