// Package engine implements the game rules: command handlers that
// validate player intents against the catalog, the tick function that
// settles elapsed jobs, the net worth calculator, and the periodic
// market/payroll jobs. All functions here are synchronous and free of
// I/O; the session layer serializes them against the tick loop.
package engine

import (
	"fmt"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/uchumi/internal/catalog"
	"github.com/talgya/uchumi/internal/state"
)

const (
	// BaseConstruction is the duration of an initial build. An upgrade
	// to target level n+1 from level n takes BaseConstruction << n.
	BaseConstruction = 15 * time.Minute

	// BoostPerStar is how much construction time one star buys back.
	BoostPerStar = 3 * time.Minute

	// SaleFeeRate is the market friction on completed sales.
	SaleFeeRate = 0.05
)

// Build places a new building on an empty slot, deducting its full
// material cost. All-or-nothing: if any material is short, nothing is
// deducted.
func Build(st *state.EconomicState, cat catalog.Provider, slotIndex int, buildingID string, now time.Time) error {
	slot := st.SlotAt(slotIndex)
	if !slot.Empty() {
		return ErrInvalidSlotState
	}
	b, ok := cat.Building(buildingID)
	if !ok {
		return ErrUnknownBuilding
	}
	if !coversCost(st, b.BuildCost) {
		return ErrInsufficientMaterials
	}

	deductCost(st, b.BuildCost)
	slot.BuildingID = b.ID
	slot.Level = 0
	slot.Construction = &state.ConstructionJob{
		StartMs:     now.UnixMilli(),
		EndMs:       now.Add(BaseConstruction).UnixMilli(),
		TargetLevel: 1,
	}
	st.Notify("construction", fmt.Sprintf("Ujenzi wa %s umeanza.", b.Name), now)
	return nil
}

// Upgrade starts construction toward the next level of an occupied,
// idle building. Duration doubles with every level already built.
func Upgrade(st *state.EconomicState, cat catalog.Provider, slotIndex int, now time.Time) error {
	slot := st.SlotAt(slotIndex)
	if slot.Empty() || slot.Busy() {
		return ErrInvalidSlotState
	}
	b, ok := cat.Building(slot.BuildingID)
	if !ok {
		return ErrUnknownBuilding
	}
	target := slot.Level + 1
	cost := b.UpgradeCost(target)
	if !coversCost(st, cost) {
		return ErrInsufficientMaterials
	}

	deductCost(st, cost)
	duration := BaseConstruction << slot.Level
	slot.Construction = &state.ConstructionJob{
		StartMs:     now.UnixMilli(),
		EndMs:       now.Add(duration).UnixMilli(),
		TargetLevel: target,
	}
	st.Notify("construction", fmt.Sprintf("Uboreshaji wa %s hadi ngazi %d umeanza.", b.Name, target), now)
	return nil
}

// Demolish clears a slot back to empty. No refund, no rejection path;
// demolishing an already-empty slot is a no-op.
func Demolish(st *state.EconomicState, slotIndex int, now time.Time) error {
	slot := st.SlotAt(slotIndex)
	if slot.Empty() {
		return nil
	}
	*slot = state.Slot{}
	st.Notify("demolish", "Jengo limebomolewa.", now)
	return nil
}

// StartProduction begins a timed production run on an occupied, idle
// slot whose building matches the recipe. Inputs are deducted up front.
func StartProduction(st *state.EconomicState, cat catalog.Provider, slotIndex int, recipeID string, batchQuantity int, duration time.Duration, now time.Time) error {
	if batchQuantity <= 0 || duration <= 0 {
		panic(fmt.Sprintf("engine: non-positive batch %d or duration %s", batchQuantity, duration))
	}
	slot := st.SlotAt(slotIndex)
	if slot.Empty() || slot.Busy() {
		return ErrInvalidSlotState
	}
	r, ok := cat.Recipe(recipeID)
	if !ok {
		return ErrUnknownRecipe
	}
	if r.BuildingID != slot.BuildingID {
		return ErrInvalidSlotState
	}
	if len(st.Workers) < r.RequiredWorkers {
		return ErrInsufficientWorkers
	}
	inputs := scaleCost(r.Inputs, batchQuantity)
	if !coversCost(st, inputs) {
		return ErrInsufficientResources
	}

	deductCost(st, inputs)
	slot.Activity = &state.ActivityJob{
		Type:     state.ActivityProduce,
		Item:     r.Output.Name,
		Quantity: r.Output.Quantity * batchQuantity,
		StartMs:  now.UnixMilli(),
		EndMs:    now.Add(duration).UnixMilli(),
	}
	return nil
}

// StartSelling moves quantity of an item out of inventory and into a
// timed sale. The goods are in transit and unavailable until the sale
// settles.
func StartSelling(st *state.EconomicState, slotIndex int, item string, quantity int, unitPrice float64, duration time.Duration, now time.Time) error {
	if quantity <= 0 || duration <= 0 {
		panic(fmt.Sprintf("engine: non-positive quantity %d or duration %s", quantity, duration))
	}
	slot := st.SlotAt(slotIndex)
	if slot.Empty() || slot.Busy() {
		return ErrInvalidSlotState
	}
	if !st.Has(item, quantity) {
		return ErrInsufficientResources
	}

	st.RemoveItem(item, quantity)
	slot.Activity = &state.ActivityJob{
		Type:      state.ActivitySell,
		Item:      item,
		Quantity:  quantity,
		SaleValue: float64(quantity) * unitPrice,
		StartMs:   now.UnixMilli(),
		EndMs:     now.Add(duration).UnixMilli(),
	}
	return nil
}

// BoostConstruction spends stars to pull a construction job's end time
// forward. The end time may land in the past; the next tick settles it.
func BoostConstruction(st *state.EconomicState, slotIndex int, stars int, now time.Time) error {
	if stars <= 0 {
		panic(fmt.Sprintf("engine: non-positive star spend %d", stars))
	}
	slot := st.SlotAt(slotIndex)
	if slot.Construction == nil {
		return ErrInvalidSlotState
	}
	if st.Stars < stars {
		return ErrInsufficientStars
	}

	st.Stars -= stars
	slot.Construction.EndMs -= int64(stars) * BoostPerStar.Milliseconds()
	st.Notify("boost", fmt.Sprintf("Ujenzi umeharakishwa kwa nyota %d.", stars), now)
	return nil
}

// BuyMaterial purchases quantity of a catalog item at the canonical
// price, crediting inventory and recording the expense.
func BuyMaterial(st *state.EconomicState, cat catalog.Provider, item string, quantity int, now time.Time) error {
	if quantity <= 0 {
		panic(fmt.Sprintf("engine: non-positive quantity %d", quantity))
	}
	price, ok := cat.Price(item)
	if !ok || price <= 0 {
		return ErrUnknownItem
	}
	cost := price * float64(quantity)
	if st.Money < cost {
		return ErrInsufficientFunds
	}

	st.RecordExpense(cost, fmt.Sprintf("Ununuzi: %d x %s", quantity, item), now)
	st.AddItem(item, quantity, price)
	return nil
}

// BuyFromMarket purchases from a player listing. The goods enter
// inventory at the catalog canonical price, not the listing price.
func BuyFromMarket(st *state.EconomicState, cat catalog.Provider, listingID string, quantity int, now time.Time) error {
	if quantity <= 0 {
		panic(fmt.Sprintf("engine: non-positive quantity %d", quantity))
	}
	idx := -1
	for i := range st.MarketListings {
		if st.MarketListings[i].ID == listingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownListing
	}
	listing := &st.MarketListings[idx]
	if quantity > listing.Quantity {
		return ErrInsufficientResources
	}
	cost := listing.UnitPrice * float64(quantity)
	if st.Money < cost {
		return ErrInsufficientFunds
	}

	st.RecordExpense(cost, fmt.Sprintf("Soko: %d x %s kutoka %s", quantity, listing.Item, listing.Seller), now)
	canonical, _ := cat.Price(listing.Item)
	st.AddItem(listing.Item, quantity, canonical)

	listing.Quantity -= quantity
	if listing.Quantity <= 0 {
		st.MarketListings = append(st.MarketListings[:idx], st.MarketListings[idx+1:]...)
	}
	return nil
}

// PostToMarket moves inventory into a new player-to-player listing.
func PostToMarket(st *state.EconomicState, item string, quantity int, unitPrice float64, now time.Time) error {
	if quantity <= 0 || unitPrice <= 0 {
		panic(fmt.Sprintf("engine: non-positive quantity %d or price %f", quantity, unitPrice))
	}
	if !st.Has(item, quantity) {
		return ErrInsufficientResources
	}

	st.RemoveItem(item, quantity)
	st.MarketListings = append(st.MarketListings, state.MarketListing{
		ID:        uuid.NewString(),
		Item:      item,
		Seller:    st.Identity.PlayerID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		PostedMs:  now.UnixMilli(),
	})
	return nil
}

// BuyStock purchases shares of a listed company at the current price.
func BuyStock(st *state.EconomicState, ticker string, quantity int64, now time.Time) error {
	if quantity <= 0 {
		panic(fmt.Sprintf("engine: non-positive share quantity %d", quantity))
	}
	c := st.CompanyByTicker(ticker)
	if c == nil {
		return ErrUnknownTicker
	}
	if quantity > c.AvailableShares {
		return ErrInsufficientShares
	}
	cost := c.Price * float64(quantity)
	if st.Money < cost {
		return ErrInsufficientFunds
	}

	st.RecordExpense(cost, fmt.Sprintf("Hisa: %d x %s @ %s", quantity, ticker, humanize.Commaf(c.Price)), now)
	st.PlayerStocks[ticker] += quantity
	c.AvailableShares -= quantity
	return nil
}

// SellStock sells held shares back at the current price.
func SellStock(st *state.EconomicState, ticker string, quantity int64, now time.Time) error {
	if quantity <= 0 {
		panic(fmt.Sprintf("engine: non-positive share quantity %d", quantity))
	}
	c := st.CompanyByTicker(ticker)
	if c == nil {
		return ErrUnknownTicker
	}
	if st.PlayerStocks[ticker] < quantity {
		return ErrInsufficientShares
	}

	proceeds := c.Price * float64(quantity)
	st.RecordIncome(proceeds, fmt.Sprintf("Mauzo ya hisa: %d x %s @ %s", quantity, ticker, humanize.Commaf(c.Price)), now)
	st.PlayerStocks[ticker] -= quantity
	if st.PlayerStocks[ticker] == 0 {
		delete(st.PlayerStocks, ticker)
	}
	c.AvailableShares += quantity
	return nil
}

// HireWorker employs one worker of a catalog archetype. The first
// salary is paid up front as a signing cost.
func HireWorker(st *state.EconomicState, cat catalog.Provider, archetypeID string, now time.Time) error {
	w, ok := cat.Worker(archetypeID)
	if !ok {
		return ErrUnknownWorker
	}
	if st.Money < w.Salary {
		return ErrInsufficientFunds
	}

	st.RecordExpense(w.Salary, fmt.Sprintf("Kuajiri %s", w.Name), now)
	st.Workers = append(st.Workers, state.HiredWorker{
		ID:          uuid.NewString(),
		ArchetypeID: w.ID,
		Name:        w.Name,
		Specialty:   w.Specialty,
		Salary:      w.Salary,
		HiredAtMs:   now.UnixMilli(),
	})
	st.Notify("worker", fmt.Sprintf("%s ameajiriwa.", w.Name), now)
	return nil
}

// FireWorker removes a hired worker. Idempotent on an unknown id.
func FireWorker(st *state.EconomicState, workerID string, now time.Time) error {
	for i := range st.Workers {
		if st.Workers[i].ID == workerID {
			name := st.Workers[i].Name
			st.Workers = append(st.Workers[:i], st.Workers[i+1:]...)
			st.Notify("worker", fmt.Sprintf("%s ameachishwa kazi.", name), now)
			return nil
		}
	}
	return nil
}

// coversCost reports whether the inventory covers every item of a cost.
func coversCost(st *state.EconomicState, cost []catalog.CostItem) bool {
	for _, c := range cost {
		if !st.Has(c.Name, c.Quantity) {
			return false
		}
	}
	return true
}

// deductCost removes every item of a fully-validated cost.
func deductCost(st *state.EconomicState, cost []catalog.CostItem) {
	for _, c := range cost {
		st.RemoveItem(c.Name, c.Quantity)
	}
}

func scaleCost(cost []catalog.CostItem, factor int) []catalog.CostItem {
	if factor == 1 {
		return cost
	}
	scaled := make([]catalog.CostItem, len(cost))
	for i, c := range cost {
		scaled[i] = catalog.CostItem{Name: c.Name, Quantity: c.Quantity * factor}
	}
	return scaled
}
