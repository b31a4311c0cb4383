package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/uchumi/internal/catalog"
	"github.com/talgya/uchumi/internal/engine"
	"github.com/talgya/uchumi/internal/state"
)

var t0 = time.UnixMilli(1_700_000_000_000)

func newTestState() *state.EconomicState {
	identity := state.Identity{PlayerID: "p1", DisplayName: "Asha", Role: state.RolePlayer}
	return state.New(identity, catalog.Default(), t0)
}

func TestBuildDeductsFullCostAndStartsConstruction(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()

	// Fresh accounts hold exactly the farm's build cost: Mbao 10, Matofali 5.
	err := engine.Build(st, cat, 0, "shamba", t0)
	require.NoError(t, err)

	assert.False(t, st.Has("Mbao", 1), "Mbao should be fully consumed and pruned")
	assert.False(t, st.Has("Matofali", 1), "Matofali should be fully consumed and pruned")

	slot := st.SlotAt(0)
	require.NotNil(t, slot.Construction)
	assert.Equal(t, "shamba", slot.BuildingID)
	assert.Equal(t, 0, slot.Level)
	assert.Equal(t, 1, slot.Construction.TargetLevel)
	assert.Equal(t, t0.UnixMilli()+900_000, slot.Construction.EndMs)
	assert.Nil(t, slot.Activity)
}

func TestBuildAllOrNothing(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()

	// Short one brick: no partial deduction may happen.
	st.RemoveItem("Matofali", 1)
	before := st.Inventory["Mbao"].Quantity

	err := engine.Build(st, cat, 0, "shamba", t0)
	require.ErrorIs(t, err, engine.ErrInsufficientMaterials)

	assert.Equal(t, before, st.Inventory["Mbao"].Quantity)
	assert.True(t, st.Has("Matofali", 4))
	assert.True(t, st.SlotAt(0).Empty())
}

func TestBuildRejectsOccupiedSlot(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()

	require.NoError(t, engine.Build(st, cat, 0, "shamba", t0))
	st.AddItem("Mbao", 10, 12)
	st.AddItem("Matofali", 5, 18)

	err := engine.Build(st, cat, 0, "shamba", t0)
	assert.ErrorIs(t, err, engine.ErrInvalidSlotState)
}

func TestBuildUnknownBuilding(t *testing.T) {
	st := newTestState()
	err := engine.Build(st, catalog.Default(), 0, "kasri", t0)
	assert.ErrorIs(t, err, engine.ErrUnknownBuilding)
}

func TestUpgradeCostAndDurationScale(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()

	slot := st.SlotAt(3)
	slot.BuildingID = "shamba"
	slot.Level = 2

	// Upgrade to level 3 costs base x 3 and takes base << 2.
	st.AddItem("Mbao", 18, 12)
	st.AddItem("Matofali", 12, 18)

	require.NoError(t, engine.Upgrade(st, cat, 3, t0))
	require.NotNil(t, slot.Construction)
	assert.Equal(t, 3, slot.Construction.TargetLevel)

	wantDuration := (15 * time.Minute) << 2
	assert.Equal(t, t0.Add(wantDuration).UnixMilli(), slot.Construction.EndMs)
	assert.False(t, st.Has("Mbao", 1))
	assert.False(t, st.Has("Matofali", 1))
}

func TestUpgradeRejectsBusySlot(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()

	require.NoError(t, engine.Build(st, cat, 0, "shamba", t0))
	err := engine.Upgrade(st, cat, 0, t0)
	assert.ErrorIs(t, err, engine.ErrInvalidSlotState)
}

func TestDemolishIsUnconditionalAndIdempotent(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()

	require.NoError(t, engine.Build(st, cat, 0, "shamba", t0))
	require.NoError(t, engine.Demolish(st, 0, t0))
	assert.True(t, st.SlotAt(0).Empty())
	assert.Nil(t, st.SlotAt(0).Construction)

	// Second demolish on the now-empty slot is a no-op.
	require.NoError(t, engine.Demolish(st, 0, t0))
}

func TestStartProductionDeductsInputs(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()

	slot := st.SlotAt(1)
	slot.BuildingID = "uvuvi"
	slot.Level = 1
	st.AddItem("Kamba", 2, 8)

	err := engine.StartProduction(st, cat, 1, "samaki", 2, time.Hour, t0)
	require.NoError(t, err)

	assert.False(t, st.Has("Kamba", 1))
	require.NotNil(t, slot.Activity)
	assert.Equal(t, state.ActivityProduce, slot.Activity.Type)
	assert.Equal(t, "Samaki", slot.Activity.Item)
	assert.Equal(t, 10, slot.Activity.Quantity)
	assert.Zero(t, slot.Activity.SaleValue)
}

func TestStartProductionRejections(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()

	slot := st.SlotAt(1)
	slot.BuildingID = "uvuvi"
	slot.Level = 1

	// No Kamba in stock.
	err := engine.StartProduction(st, cat, 1, "samaki", 1, time.Hour, t0)
	assert.ErrorIs(t, err, engine.ErrInsufficientResources)

	// Recipe belongs to a different building.
	st.AddItem("Mahindi", 6, 6)
	err = engine.StartProduction(st, cat, 1, "unga", 1, time.Hour, t0)
	assert.ErrorIs(t, err, engine.ErrInvalidSlotState)

	err = engine.StartProduction(st, cat, 1, "ugali", 1, time.Hour, t0)
	assert.ErrorIs(t, err, engine.ErrUnknownRecipe)
}

func TestStartProductionRequiresWorkers(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()

	slot := st.SlotAt(2)
	slot.BuildingID = "mgodi"
	slot.Level = 1

	// The ore recipe needs two hired workers.
	err := engine.StartProduction(st, cat, 2, "chuma", 1, time.Hour, t0)
	assert.ErrorIs(t, err, engine.ErrInsufficientWorkers)

	require.NoError(t, engine.HireWorker(st, cat, "mchimbaji", t0))
	require.NoError(t, engine.HireWorker(st, cat, "mchimbaji", t0))
	assert.NoError(t, engine.StartProduction(st, cat, 2, "chuma", 1, time.Hour, t0))
}

func TestStartSellingMovesGoodsInTransit(t *testing.T) {
	st := newTestState()

	slot := st.SlotAt(1)
	slot.BuildingID = "duka"
	slot.Level = 1
	st.AddItem("Samaki", 100, 15)

	err := engine.StartSelling(st, 1, "Samaki", 100, 2.0, 30*time.Minute, t0)
	require.NoError(t, err)

	assert.False(t, st.Has("Samaki", 1), "goods in transit must leave inventory")
	require.NotNil(t, slot.Activity)
	assert.Equal(t, state.ActivitySell, slot.Activity.Type)
	assert.Equal(t, 200.0, slot.Activity.SaleValue)
}

func TestBoostConstruction(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()

	require.NoError(t, engine.Build(st, cat, 0, "shamba", t0))
	st.Stars = 5
	endBefore := st.SlotAt(0).Construction.EndMs

	require.NoError(t, engine.BoostConstruction(st, 0, 5, t0))
	assert.Equal(t, 0, st.Stars)
	// 5 stars x 3 minutes = 15 minutes off a 15-minute job.
	assert.Equal(t, endBefore-15*time.Minute.Milliseconds(), st.SlotAt(0).Construction.EndMs)

	err := engine.BoostConstruction(st, 0, 1, t0)
	assert.ErrorIs(t, err, engine.ErrInsufficientStars)
}

func TestBoostRequiresActiveConstruction(t *testing.T) {
	st := newTestState()
	st.Stars = 10
	err := engine.BoostConstruction(st, 0, 1, t0)
	assert.ErrorIs(t, err, engine.ErrInvalidSlotState)
}

func TestBuyMaterial(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()
	st.Money = 100

	require.NoError(t, engine.BuyMaterial(st, cat, "Sukari", 5, t0))
	assert.Equal(t, 50.0, st.Money)
	assert.True(t, st.Has("Sukari", 5))
	require.NotEmpty(t, st.Transactions)
	assert.Equal(t, state.TxExpense, st.Transactions[0].Type)
	assert.Equal(t, 50.0, st.Transactions[0].Amount)

	err := engine.BuyMaterial(st, cat, "Sukari", 6, t0)
	assert.ErrorIs(t, err, engine.ErrInsufficientFunds)

	err = engine.BuyMaterial(st, cat, "Almasi", 1, t0)
	assert.ErrorIs(t, err, engine.ErrUnknownItem)
}

func TestPostAndBuyFromMarketRepricesAtCatalog(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()

	st.AddItem("Samaki", 20, 15)
	require.NoError(t, engine.PostToMarket(st, "Samaki", 20, 99.0, t0))
	assert.False(t, st.Has("Samaki", 1))
	require.Len(t, st.MarketListings, 1)

	listingID := st.MarketListings[0].ID
	st.Money = 10_000

	require.NoError(t, engine.BuyFromMarket(st, cat, listingID, 15, t0))
	// Paid the listing price...
	assert.Equal(t, 10_000-15*99.0, st.Money)
	// ...but goods enter inventory at the catalog canonical price.
	assert.Equal(t, 15.0, st.Inventory["Samaki"].UnitPrice)
	assert.Equal(t, 15, st.Inventory["Samaki"].Quantity)
	// Listing decremented, not removed.
	require.Len(t, st.MarketListings, 1)
	assert.Equal(t, 5, st.MarketListings[0].Quantity)

	// Buying the remainder removes the listing.
	require.NoError(t, engine.BuyFromMarket(st, cat, listingID, 5, t0))
	assert.Empty(t, st.MarketListings)

	err := engine.BuyFromMarket(st, cat, listingID, 1, t0)
	assert.ErrorIs(t, err, engine.ErrUnknownListing)
}

func TestBuyFromMarketQuantityCap(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()

	st.AddItem("Unga", 3, 14)
	require.NoError(t, engine.PostToMarket(st, "Unga", 3, 20, t0))

	err := engine.BuyFromMarket(st, cat, st.MarketListings[0].ID, 4, t0)
	assert.ErrorIs(t, err, engine.ErrInsufficientResources)
}

func TestBuyAndSellStock(t *testing.T) {
	st := newTestState()
	st.Money = 10_000

	require.NoError(t, engine.BuyStock(st, "KILIMO", 100, t0))
	assert.Equal(t, 10_000-100*18.0, st.Money)
	assert.Equal(t, int64(100), st.PlayerStocks["KILIMO"])
	assert.Equal(t, int64(250_000-100), st.CompanyByTicker("KILIMO").AvailableShares)

	err := engine.SellStock(st, "KILIMO", 200, t0)
	assert.ErrorIs(t, err, engine.ErrInsufficientShares)

	require.NoError(t, engine.SellStock(st, "KILIMO", 100, t0))
	assert.Equal(t, 10_000.0, st.Money)
	_, held := st.PlayerStocks["KILIMO"]
	assert.False(t, held, "zero holdings should be pruned")
	assert.Equal(t, int64(250_000), st.CompanyByTicker("KILIMO").AvailableShares)
}

func TestBuyStockRejections(t *testing.T) {
	st := newTestState()

	err := engine.BuyStock(st, "HAKUNA", 1, t0)
	assert.ErrorIs(t, err, engine.ErrUnknownTicker)

	st.Money = 1
	err = engine.BuyStock(st, "SAFCOM", 10, t0)
	assert.ErrorIs(t, err, engine.ErrInsufficientFunds)
}

func TestHireAndFireWorker(t *testing.T) {
	st := newTestState()
	cat := catalog.Default()
	st.Money = 500

	require.NoError(t, engine.HireWorker(st, cat, "mkulima", t0))
	require.Len(t, st.Workers, 1)
	assert.Equal(t, 500-120.0, st.Money)
	assert.Equal(t, "shamba", st.Workers[0].Specialty)

	err := engine.HireWorker(st, cat, "askari", t0)
	assert.ErrorIs(t, err, engine.ErrUnknownWorker)

	require.NoError(t, engine.FireWorker(st, st.Workers[0].ID, t0))
	assert.Empty(t, st.Workers)

	// Firing an unknown id is a no-op.
	assert.NoError(t, engine.FireWorker(st, "ghost", t0))
}

func TestSlotIndexOutOfRangePanics(t *testing.T) {
	st := newTestState()
	assert.Panics(t, func() {
		_ = engine.Demolish(st, 99, t0)
	})
}
