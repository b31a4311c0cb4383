// Package catalog holds the immutable game-content tables: buildings,
// recipes, worker archetypes, commodity prices, and listed companies.
// The engine only reads from here; nothing in the catalog is player state.
package catalog

import "fmt"

// CostItem is one named item requirement (build cost, recipe input).
type CostItem struct {
	Name     string `yaml:"name" json:"name"`
	Quantity int    `yaml:"quantity" json:"quantity"`
}

// ItemStack is a named quantity of a commodity (recipe output).
type ItemStack struct {
	Name     string `yaml:"name" json:"name"`
	Quantity int    `yaml:"quantity" json:"quantity"`
}

// Building describes a constructible facility type.
type Building struct {
	ID                string     `yaml:"id" json:"id"`
	Name              string     `yaml:"name" json:"name"`
	BuildCost         []CostItem `yaml:"build_cost" json:"build_cost"`
	UpgradeBase       []CostItem `yaml:"upgrade_base" json:"upgrade_base"`
	ProductionPerHour int        `yaml:"production_per_hour" json:"production_per_hour"`
}

// UpgradeCost returns the materials required to bring a building to
// targetLevel. Cost is the upgrade base scaled by the target level, so
// it is a pure function of (building, targetLevel).
func (b *Building) UpgradeCost(targetLevel int) []CostItem {
	if targetLevel < 2 {
		panic(fmt.Sprintf("catalog: upgrade target level %d below 2", targetLevel))
	}
	cost := make([]CostItem, len(b.UpgradeBase))
	for i, c := range b.UpgradeBase {
		cost[i] = CostItem{Name: c.Name, Quantity: c.Quantity * targetLevel}
	}
	return cost
}

// Recipe describes one production chain step.
type Recipe struct {
	ID              string     `yaml:"id" json:"id"`
	BuildingID      string     `yaml:"building_id" json:"building_id"`
	Output          ItemStack  `yaml:"output" json:"output"`
	Inputs          []CostItem `yaml:"inputs" json:"inputs"`
	RequiredWorkers int        `yaml:"required_workers" json:"required_workers"`
}

// Worker is a hireable archetype, not an individual.
type Worker struct {
	ID        string  `yaml:"id" json:"id"`
	Name      string  `yaml:"name" json:"name"`
	Specialty string  `yaml:"specialty" json:"specialty"`
	Salary    float64 `yaml:"salary" json:"salary"`
	Effect    string  `yaml:"effect" json:"effect"`
}

// Company is a tradable listed company as seeded at state creation.
// Live price/revenue figures are player state, not catalog data.
type Company struct {
	Ticker          string  `yaml:"ticker" json:"ticker"`
	Name            string  `yaml:"name" json:"name"`
	Price           float64 `yaml:"price" json:"price"`
	TotalShares     int64   `yaml:"total_shares" json:"total_shares"`
	AvailableShares int64   `yaml:"available_shares" json:"available_shares"`
	DailyRevenue    float64 `yaml:"daily_revenue" json:"daily_revenue"`
	DividendYield   float64 `yaml:"dividend_yield" json:"dividend_yield"`
}

// Provider is the read surface the engine consumes.
type Provider interface {
	Building(id string) (*Building, bool)
	Recipe(id string) (*Recipe, bool)
	Price(item string) (float64, bool)
	Worker(id string) (*Worker, bool)
	Companies() []Company
}

// Catalog is an in-memory Provider.
type Catalog struct {
	buildings map[string]*Building
	recipes   map[string]*Recipe
	workers   map[string]*Worker
	prices    map[string]float64
	companies []Company
}

// New assembles a Catalog from content tables. Malformed entries
// (duplicate or empty ids, non-positive prices) are caller bugs.
func New(buildings []Building, recipes []Recipe, workers []Worker, prices map[string]float64, companies []Company) *Catalog {
	c := &Catalog{
		buildings: make(map[string]*Building, len(buildings)),
		recipes:   make(map[string]*Recipe, len(recipes)),
		workers:   make(map[string]*Worker, len(workers)),
		prices:    make(map[string]float64, len(prices)),
		companies: companies,
	}
	for i := range buildings {
		b := buildings[i]
		if b.ID == "" {
			panic("catalog: building with empty id")
		}
		if _, dup := c.buildings[b.ID]; dup {
			panic("catalog: duplicate building id " + b.ID)
		}
		c.buildings[b.ID] = &b
	}
	for i := range recipes {
		r := recipes[i]
		if r.ID == "" || r.Output.Name == "" || r.Output.Quantity <= 0 {
			panic("catalog: malformed recipe " + r.ID)
		}
		if _, dup := c.recipes[r.ID]; dup {
			panic("catalog: duplicate recipe id " + r.ID)
		}
		c.recipes[r.ID] = &r
	}
	for i := range workers {
		w := workers[i]
		if w.ID == "" {
			panic("catalog: worker with empty id")
		}
		c.workers[w.ID] = &w
	}
	for name, p := range prices {
		if p <= 0 {
			panic("catalog: non-positive price for " + name)
		}
		c.prices[name] = p
	}
	return c
}

func (c *Catalog) Building(id string) (*Building, bool) {
	b, ok := c.buildings[id]
	return b, ok
}

func (c *Catalog) Recipe(id string) (*Recipe, bool) {
	r, ok := c.recipes[id]
	return r, ok
}

func (c *Catalog) Price(item string) (float64, bool) {
	p, ok := c.prices[item]
	return p, ok
}

func (c *Catalog) Worker(id string) (*Worker, bool) {
	w, ok := c.workers[id]
	return w, ok
}

// Companies returns a copy of the company seed table.
func (c *Catalog) Companies() []Company {
	out := make([]Company, len(c.companies))
	copy(out, c.companies)
	return out
}
