// Package state defines the persisted game state for one player: money,
// inventory, building slots with their timed jobs, stocks, and the
// transaction/notification logs. Everything here is plain serializable
// data; rules live in the engine package.
package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/uchumi/internal/catalog"
)

const (
	// DefaultSlotCount is the number of building plots a new player owns.
	DefaultSlotCount = 20

	// MaxNotifications caps the notification log; oldest entries drop.
	MaxNotifications = 50

	// StartingMoney and StartingStars seed a fresh account.
	StartingMoney = 5000.0
	StartingStars = 5
)

// Role distinguishes normal players from admin accounts.
type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

// Identity is the opaque authenticated identity handed in by the auth
// collaborator. The engine never interprets it beyond display.
type Identity struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Role        Role   `json:"role"`
}

// InventoryEntry is one commodity holding. Entries with zero quantity
// are pruned after every settle step.
type InventoryEntry struct {
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"` // catalog price at receipt
}

// ConstructionJob is a timed transition of a slot to TargetLevel.
// Created by build/upgrade commands, consumed by the tick engine.
type ConstructionJob struct {
	StartMs     int64 `json:"start_ms"`
	EndMs       int64 `json:"end_ms"`
	TargetLevel int   `json:"target_level"`
}

// ActivityType tags what an occupied slot is busy doing.
type ActivityType string

const (
	ActivityProduce ActivityType = "produce"
	ActivitySell    ActivityType = "sell"
)

// ActivityJob is a timed production or selling run on an occupied slot.
type ActivityJob struct {
	Type      ActivityType `json:"type"`
	Item      string       `json:"item"`
	Quantity  int          `json:"quantity"`
	SaleValue float64      `json:"sale_value"` // 0 for produce
	StartMs   int64        `json:"start_ms"`
	EndMs     int64        `json:"end_ms"`
}

// Slot is one building plot. A slot holds at most one of Construction
// and Activity at a time; an empty slot has no BuildingID.
type Slot struct {
	BuildingID   string           `json:"building_id,omitempty"`
	Level        int              `json:"level"`
	Construction *ConstructionJob `json:"construction,omitempty"`
	Activity     *ActivityJob     `json:"activity,omitempty"`
}

// Empty reports whether no building occupies the slot.
func (s *Slot) Empty() bool { return s.BuildingID == "" }

// Busy reports whether the slot has an active timed job.
func (s *Slot) Busy() bool { return s.Construction != nil || s.Activity != nil }

// TransactionType splits the ledger into income and expenses.
type TransactionType string

const (
	TxIncome  TransactionType = "income"
	TxExpense TransactionType = "expense"
)

// Transaction is one ledger entry. The in-state log is unbounded; the
// persistence layer keeps the durable copy.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	AtMs        int64           `json:"at_ms"`
}

// Notification is one entry in the capped player-facing feed.
type Notification struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"` // "construction", "production", "sale", "levelup", ...
	Message string `json:"message"`
	AtMs    int64  `json:"at_ms"`
	Read    bool   `json:"read"`
}

// HiredWorker is one employed worker instance of a catalog archetype.
type HiredWorker struct {
	ID          string  `json:"id"`
	ArchetypeID string  `json:"archetype_id"`
	Name        string  `json:"name"`
	Specialty   string  `json:"specialty"`
	Salary      float64 `json:"salary"`
	HiredAtMs   int64   `json:"hired_at_ms"`
}

// Company is the live record of a listed company. Seeded from the
// catalog at account creation, then mutated by the market jobs.
type Company struct {
	Ticker          string  `json:"ticker"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	TotalShares     int64   `json:"total_shares"`
	AvailableShares int64   `json:"available_shares"`
	DailyRevenue    float64 `json:"daily_revenue"`
	DividendYield   float64 `json:"dividend_yield"`
	MarketCap       float64 `json:"market_cap"`
}

// MarketListing is a player-to-player commodity offer.
type MarketListing struct {
	ID        string  `json:"id"`
	Item      string  `json:"item"`
	Seller    string  `json:"seller"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	PostedMs  int64   `json:"posted_ms"`
}

// EconomicState is the root aggregate for one player session. Mutated
// only through the engine's command handlers and tick functions, under
// a single writer.
type EconomicState struct {
	Identity Identity `json:"identity"`

	Money float64 `json:"money"`
	Stars int     `json:"stars"`
	Level int     `json:"level"`
	XP    int     `json:"xp"`

	Inventory map[string]*InventoryEntry `json:"inventory"`
	Slots     []Slot                     `json:"slots"`

	PlayerStocks   map[string]int64 `json:"player_stocks"`
	Companies      []Company        `json:"companies"`
	MarketListings []MarketListing  `json:"market_listings"`
	Workers        []HiredWorker    `json:"workers"`

	Transactions  []Transaction  `json:"transactions"`
	Notifications []Notification `json:"notifications"`

	// NetWorth is derived and cached; never an authoritative input.
	NetWorth float64 `json:"net_worth"`
}

// New seeds a fresh account: starting cash and stars, empty slots, a
// small pile of building materials, and the catalog's company listings.
func New(identity Identity, cat catalog.Provider, now time.Time) *EconomicState {
	st := &EconomicState{
		Identity:     identity,
		Money:        StartingMoney,
		Stars:        StartingStars,
		Level:        1,
		Inventory:    make(map[string]*InventoryEntry),
		Slots:        make([]Slot, DefaultSlotCount),
		PlayerStocks: make(map[string]int64),
	}

	// Enough material for a first farm.
	st.AddItem("Mbao", 10, priceOrZero(cat, "Mbao"))
	st.AddItem("Matofali", 5, priceOrZero(cat, "Matofali"))

	for _, c := range cat.Companies() {
		st.Companies = append(st.Companies, Company{
			Ticker:          c.Ticker,
			Name:            c.Name,
			Price:           c.Price,
			TotalShares:     c.TotalShares,
			AvailableShares: c.AvailableShares,
			DailyRevenue:    c.DailyRevenue,
			DividendYield:   c.DividendYield,
			MarketCap:       c.Price * float64(c.TotalShares),
		})
	}

	st.Notify("welcome", fmt.Sprintf("Karibu %s! Jenga himaya yako ya kiuchumi.", identity.DisplayName), now)
	return st
}

func priceOrZero(cat catalog.Provider, item string) float64 {
	p, _ := cat.Price(item)
	return p
}

// SlotAt returns the slot at index i. An out-of-range index is a caller
// bug, not a game-state condition.
func (st *EconomicState) SlotAt(i int) *Slot {
	if i < 0 || i >= len(st.Slots) {
		panic(fmt.Sprintf("state: slot index %d out of range [0,%d)", i, len(st.Slots)))
	}
	return &st.Slots[i]
}

// AddItem credits quantity of an item, creating the entry at unitPrice
// if it does not exist yet.
func (st *EconomicState) AddItem(name string, quantity int, unitPrice float64) {
	if entry, ok := st.Inventory[name]; ok {
		entry.Quantity += quantity
		return
	}
	st.Inventory[name] = &InventoryEntry{Quantity: quantity, UnitPrice: unitPrice}
}

// RemoveItem debits quantity of an item, pruning the entry when it
// reaches zero. Callers must have validated availability first.
func (st *EconomicState) RemoveItem(name string, quantity int) {
	entry, ok := st.Inventory[name]
	if !ok || entry.Quantity < quantity {
		panic(fmt.Sprintf("state: removing %d %s without prior validation", quantity, name))
	}
	entry.Quantity -= quantity
	if entry.Quantity <= 0 {
		delete(st.Inventory, name)
	}
}

// Has reports whether the inventory covers quantity of an item.
func (st *EconomicState) Has(name string, quantity int) bool {
	entry, ok := st.Inventory[name]
	return ok && entry.Quantity >= quantity
}

// CompanyByTicker returns the live company record, or nil.
func (st *EconomicState) CompanyByTicker(ticker string) *Company {
	for i := range st.Companies {
		if st.Companies[i].Ticker == ticker {
			return &st.Companies[i]
		}
	}
	return nil
}

// Notify prepends a notification and drops entries beyond the cap.
func (st *EconomicState) Notify(kind, message string, now time.Time) {
	n := Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: message,
		AtMs:    now.UnixMilli(),
	}
	st.Notifications = append([]Notification{n}, st.Notifications...)
	if len(st.Notifications) > MaxNotifications {
		st.Notifications = st.Notifications[:MaxNotifications]
	}
}

// RecordIncome prepends an income transaction and credits money.
func (st *EconomicState) RecordIncome(amount float64, description string, now time.Time) {
	st.Money += amount
	st.record(TxIncome, amount, description, now)
}

// RecordExpense prepends an expense transaction and debits money.
// Affordability is checked by the command handlers, not here.
func (st *EconomicState) RecordExpense(amount float64, description string, now time.Time) {
	st.Money -= amount
	st.record(TxExpense, amount, description, now)
}

func (st *EconomicState) record(kind TransactionType, amount float64, description string, now time.Time) {
	tx := Transaction{
		ID:          uuid.NewString(),
		Type:        kind,
		Amount:      amount,
		Description: description,
		AtMs:        now.UnixMilli(),
	}
	st.Transactions = append([]Transaction{tx}, st.Transactions...)
}

// XPThreshold returns the XP needed to leave the given level.
func XPThreshold(level int) int { return level * 1000 }
