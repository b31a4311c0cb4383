package engine

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	humanize "github.com/dustin/go-humanize"

	"github.com/talgya/uchumi/internal/catalog"
	"github.com/talgya/uchumi/internal/state"
)

// XP awards per settled job, and the star bounty per level gained.
const (
	xpPerConstructionLevel = 100
	xpPerProducedUnit      = 2
	starsPerLevel          = 5
)

// Advance settles every slot job whose end time has elapsed, applies
// XP and leveling, and refreshes the cached net worth. It returns false
// when nothing elapsed, in which case the state is untouched and the
// caller may skip persistence.
//
// now is read once and applied to all slots, so jobs ending at the same
// wall-clock instant settle in the same tick regardless of slot order.
func Advance(st *state.EconomicState, cat catalog.Provider, now time.Time) bool {
	nowMs := now.UnixMilli()
	changed := false

	for i := range st.Slots {
		slot := &st.Slots[i]
		switch {
		case slot.Construction != nil && nowMs >= slot.Construction.EndMs:
			settleConstruction(st, slot, now)
			changed = true
		case slot.Activity != nil && nowMs >= slot.Activity.EndMs:
			settleActivity(st, cat, slot, now)
			changed = true
		}
	}

	if !changed {
		return false
	}

	applyLeveling(st, now)
	st.NetWorth = NetWorth(st, cat)
	return true
}

func settleConstruction(st *state.EconomicState, slot *state.Slot, now time.Time) {
	job := slot.Construction
	slot.Level = job.TargetLevel
	slot.Construction = nil
	st.XP += xpPerConstructionLevel * job.TargetLevel
	st.Notify("construction", fmt.Sprintf("Ujenzi umekamilika: ngazi %d.", job.TargetLevel), now)
}

func settleActivity(st *state.EconomicState, cat catalog.Provider, slot *state.Slot, now time.Time) {
	job := slot.Activity
	slot.Activity = nil

	switch job.Type {
	case state.ActivityProduce:
		price, ok := cat.Price(job.Item)
		if !ok {
			// Data-integrity gap: the catalog no longer prices this item.
			// Keep the player's goods rather than dropping progress.
			slog.Warn("produced item missing from catalog price index",
				"item", job.Item, "quantity", job.Quantity)
		}
		st.AddItem(job.Item, job.Quantity, price)
		st.XP += xpPerProducedUnit * job.Quantity
		st.Notify("production", fmt.Sprintf("Uzalishaji umekamilika: %d x %s.", job.Quantity, job.Item), now)

	case state.ActivitySell:
		net := job.SaleValue * (1 - SaleFeeRate)
		st.RecordIncome(net, fmt.Sprintf("Mauzo: %d x %s", job.Quantity, job.Item), now)
		st.XP += int(math.Floor(net * 0.01))
		st.Notify("sale", fmt.Sprintf("Mauzo yamekamilika: %s zimeingia.", humanize.Commaf(net)), now)

	default:
		panic("engine: unknown activity type " + string(job.Type))
	}
}

// applyLeveling folds accumulated XP into levels, restoring the
// invariant 0 <= xp < threshold(level).
func applyLeveling(st *state.EconomicState, now time.Time) {
	for st.XP >= state.XPThreshold(st.Level) {
		st.XP -= state.XPThreshold(st.Level)
		st.Level++
		st.Stars += starsPerLevel
		st.Notify("levelup", fmt.Sprintf("Hongera! Umefikia ngazi %d.", st.Level), now)
	}
}
