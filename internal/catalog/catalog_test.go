package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/uchumi/internal/catalog"
)

func TestDefaultLookups(t *testing.T) {
	cat := catalog.Default()

	b, ok := cat.Building("shamba")
	require.True(t, ok)
	assert.Equal(t, "Shamba", b.Name)
	assert.Equal(t, []catalog.CostItem{
		{Name: "Mbao", Quantity: 10},
		{Name: "Matofali", Quantity: 5},
	}, b.BuildCost)

	r, ok := cat.Recipe("samaki")
	require.True(t, ok)
	assert.Equal(t, "uvuvi", r.BuildingID)
	assert.Equal(t, 5, r.Output.Quantity)

	w, ok := cat.Worker("fundi")
	require.True(t, ok)
	assert.Equal(t, 200.0, w.Salary)

	p, ok := cat.Price("Samaki")
	require.True(t, ok)
	assert.Equal(t, 15.0, p)

	_, ok = cat.Building("ikulu")
	assert.False(t, ok)
	_, ok = cat.Price("Almasi")
	assert.False(t, ok)
}

func TestUpgradeCostScalesWithTargetLevel(t *testing.T) {
	cat := catalog.Default()
	b, ok := cat.Building("shamba")
	require.True(t, ok)

	assert.Equal(t, []catalog.CostItem{
		{Name: "Mbao", Quantity: 12},
		{Name: "Matofali", Quantity: 8},
	}, b.UpgradeCost(2))

	assert.Equal(t, []catalog.CostItem{
		{Name: "Mbao", Quantity: 30},
		{Name: "Matofali", Quantity: 20},
	}, b.UpgradeCost(5))

	assert.Panics(t, func() { b.UpgradeCost(1) })
}

func TestCompaniesReturnsCopy(t *testing.T) {
	cat := catalog.Default()

	first := cat.Companies()
	first[0].Price = 0

	second := cat.Companies()
	assert.NotZero(t, second[0].Price, "mutating a returned slice must not touch the catalog")
}

func TestNewPanicsOnMalformedTables(t *testing.T) {
	assert.Panics(t, func() {
		catalog.New([]catalog.Building{{ID: ""}}, nil, nil, nil, nil)
	})
	assert.Panics(t, func() {
		catalog.New([]catalog.Building{{ID: "a"}, {ID: "a"}}, nil, nil, nil, nil)
	})
	assert.Panics(t, func() {
		catalog.New(nil, nil, nil, map[string]float64{"Mbao": -1}, nil)
	})
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	content := `
prices:
  Mbao: 99
  Samaki: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cat, err := catalog.LoadFile(path)
	require.NoError(t, err)

	// Overridden table replaces the default wholesale.
	p, ok := cat.Price("Mbao")
	require.True(t, ok)
	assert.Equal(t, 99.0, p)
	_, ok = cat.Price("Matofali")
	assert.False(t, ok)

	// Untouched tables still come from the defaults.
	_, ok = cat.Building("shamba")
	assert.True(t, ok)
	_, ok = cat.Recipe("mkate")
	assert.True(t, ok)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := catalog.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prices: [not, a, map]"), 0644))
	_, err = catalog.LoadFile(path)
	assert.Error(t, err)
}
