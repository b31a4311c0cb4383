package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// contentFile is the YAML shape of a catalog content file. Any table
// left empty falls back to the shipped defaults, so a content file can
// override just prices, or just recipes.
type contentFile struct {
	Buildings []Building         `yaml:"buildings"`
	Recipes   []Recipe           `yaml:"recipes"`
	Workers   []Worker           `yaml:"workers"`
	Prices    map[string]float64 `yaml:"prices"`
	Companies []Company          `yaml:"companies"`
}

// LoadFile reads a YAML content file and merges it over the defaults.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var cf contentFile
	if err := yaml.Unmarshal(raw, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	buildings := cf.Buildings
	if len(buildings) == 0 {
		buildings = defaultBuildings()
	}
	recipes := cf.Recipes
	if len(recipes) == 0 {
		recipes = defaultRecipes()
	}
	workers := cf.Workers
	if len(workers) == 0 {
		workers = defaultWorkers()
	}
	prices := cf.Prices
	if len(prices) == 0 {
		prices = defaultPrices()
	}
	companies := cf.Companies
	if len(companies) == 0 {
		companies = defaultCompanies()
	}

	return New(buildings, recipes, workers, prices, companies), nil
}
