// Built-in content tables. Item and building names are Swahili, matching
// the game's setting. A YAML content file can replace any of these tables
// (see loader.go).
package catalog

// Default returns the shipped content tables.
func Default() *Catalog {
	return New(defaultBuildings(), defaultRecipes(), defaultWorkers(), defaultPrices(), defaultCompanies())
}

func defaultBuildings() []Building {
	return []Building{
		{
			ID:   "shamba",
			Name: "Shamba", // farm
			BuildCost: []CostItem{
				{Name: "Mbao", Quantity: 10},
				{Name: "Matofali", Quantity: 5},
			},
			UpgradeBase: []CostItem{
				{Name: "Mbao", Quantity: 6},
				{Name: "Matofali", Quantity: 4},
			},
			ProductionPerHour: 12,
		},
		{
			ID:   "uvuvi",
			Name: "Kituo cha Uvuvi", // fishing station
			BuildCost: []CostItem{
				{Name: "Mbao", Quantity: 15},
				{Name: "Kamba", Quantity: 8},
			},
			UpgradeBase: []CostItem{
				{Name: "Mbao", Quantity: 8},
				{Name: "Kamba", Quantity: 5},
			},
			ProductionPerHour: 10,
		},
		{
			ID:   "kiwanda",
			Name: "Kiwanda", // factory
			BuildCost: []CostItem{
				{Name: "Matofali", Quantity: 20},
				{Name: "Chuma", Quantity: 12},
			},
			UpgradeBase: []CostItem{
				{Name: "Matofali", Quantity: 10},
				{Name: "Chuma", Quantity: 8},
			},
			ProductionPerHour: 8,
		},
		{
			ID:   "mgodi",
			Name: "Mgodi", // mine
			BuildCost: []CostItem{
				{Name: "Mbao", Quantity: 25},
				{Name: "Chuma", Quantity: 6},
			},
			UpgradeBase: []CostItem{
				{Name: "Mbao", Quantity: 12},
				{Name: "Chuma", Quantity: 6},
			},
			ProductionPerHour: 6,
		},
		{
			ID:   "duka",
			Name: "Duka", // shop
			BuildCost: []CostItem{
				{Name: "Mbao", Quantity: 8},
				{Name: "Matofali", Quantity: 8},
			},
			UpgradeBase: []CostItem{
				{Name: "Mbao", Quantity: 5},
				{Name: "Matofali", Quantity: 5},
			},
			ProductionPerHour: 15,
		},
	}
}

func defaultRecipes() []Recipe {
	return []Recipe{
		{
			ID:         "mahindi",
			BuildingID: "shamba",
			Output:     ItemStack{Name: "Mahindi", Quantity: 6},
			Inputs:     nil, // primary production
		},
		{
			ID:              "kahawa",
			BuildingID:      "shamba",
			Output:          ItemStack{Name: "Kahawa", Quantity: 3},
			Inputs:          nil,
			RequiredWorkers: 1,
		},
		{
			ID:         "samaki",
			BuildingID: "uvuvi",
			Output:     ItemStack{Name: "Samaki", Quantity: 5},
			Inputs:     []CostItem{{Name: "Kamba", Quantity: 1}},
		},
		{
			ID:              "chuma",
			BuildingID:      "mgodi",
			Output:          ItemStack{Name: "Chuma", Quantity: 4},
			Inputs:          nil,
			RequiredWorkers: 2,
		},
		{
			ID:         "unga",
			BuildingID: "kiwanda",
			Output:     ItemStack{Name: "Unga", Quantity: 4},
			Inputs:     []CostItem{{Name: "Mahindi", Quantity: 6}},
		},
		{
			ID:              "mkate",
			BuildingID:      "kiwanda",
			Output:          ItemStack{Name: "Mkate", Quantity: 3},
			Inputs:          []CostItem{{Name: "Unga", Quantity: 2}, {Name: "Sukari", Quantity: 1}},
			RequiredWorkers: 1,
		},
	}
}

func defaultWorkers() []Worker {
	return []Worker{
		{ID: "mkulima", Name: "Mkulima", Specialty: "shamba", Salary: 120, Effect: "farm output"},
		{ID: "mvuvi", Name: "Mvuvi", Specialty: "uvuvi", Salary: 140, Effect: "fishing output"},
		{ID: "fundi", Name: "Fundi", Specialty: "kiwanda", Salary: 200, Effect: "factory output"},
		{ID: "mchimbaji", Name: "Mchimbaji", Specialty: "mgodi", Salary: 180, Effect: "mine output"},
	}
}

func defaultPrices() map[string]float64 {
	return map[string]float64{
		"Mbao":     12,
		"Matofali": 18,
		"Kamba":    8,
		"Chuma":    35,
		"Mahindi":  6,
		"Samaki":   15,
		"Unga":     14,
		"Sukari":   10,
		"Mkate":    28,
		"Kahawa":   45,
	}
}

func defaultCompanies() []Company {
	return []Company{
		{Ticker: "SAFCOM", Name: "Safari Communications", Price: 42.5, TotalShares: 1_000_000, AvailableShares: 400_000, DailyRevenue: 85_000, DividendYield: 0.04},
		{Ticker: "KILIMO", Name: "Kilimo Bora Ltd", Price: 18.0, TotalShares: 500_000, AvailableShares: 250_000, DailyRevenue: 22_000, DividendYield: 0.06},
		{Ticker: "BANDARI", Name: "Bandari Holdings", Price: 65.0, TotalShares: 2_000_000, AvailableShares: 900_000, DailyRevenue: 310_000, DividendYield: 0.03},
		{Ticker: "CHAIBOR", Name: "Chai Bora Estates", Price: 9.5, TotalShares: 750_000, AvailableShares: 300_000, DailyRevenue: 12_500, DividendYield: 0.05},
	}
}
