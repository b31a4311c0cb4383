package engine

import (
	"github.com/talgya/uchumi/internal/catalog"
	"github.com/talgya/uchumi/internal/state"
)

// NetWorth derives total asset value from scratch: cash, inventory at
// receipt prices, building replacement cost at catalog prices, and
// stock holdings at current prices. It never reads st.NetWorth.
func NetWorth(st *state.EconomicState, cat catalog.Provider) float64 {
	total := st.Money

	for _, entry := range st.Inventory {
		total += float64(entry.Quantity) * entry.UnitPrice
	}

	for ticker, shares := range st.PlayerStocks {
		if c := st.CompanyByTicker(ticker); c != nil {
			total += float64(shares) * c.Price
		}
	}

	for i := range st.Slots {
		total += buildingValue(&st.Slots[i], cat)
	}

	return total
}

// buildingValue is the total historical investment in a slot: the build
// cost plus every upgrade cost up to the current level, valued at
// catalog prices. Not depreciated, not a market value.
func buildingValue(slot *state.Slot, cat catalog.Provider) float64 {
	if slot.Empty() {
		return 0
	}
	b, ok := cat.Building(slot.BuildingID)
	if !ok {
		return 0
	}

	total := costValue(b.BuildCost, cat)
	for level := 2; level <= slot.Level; level++ {
		total += costValue(b.UpgradeCost(level), cat)
	}
	return total
}

func costValue(cost []catalog.CostItem, cat catalog.Provider) float64 {
	total := 0.0
	for _, c := range cost {
		price, _ := cat.Price(c.Name)
		total += float64(c.Quantity) * price
	}
	return total
}
