// Periodic market and payroll jobs. These run on longer cadences than
// the per-second tick but are the same kind of pure state transition.
package engine

import (
	"fmt"
	"time"

	humanize "github.com/dustin/go-humanize"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/uchumi/internal/entropy"
	"github.com/talgya/uchumi/internal/state"
)

// Job cadences.
const (
	SalaryInterval      = time.Minute
	FluctuationInterval = time.Hour
	DividendInterval    = 24 * time.Hour
)

// Fluctuation bounds and floors.
const (
	maxPriceDrift   = 0.025 // ±2.5% per fluctuation
	maxRevenueDrift = 0.05  // ±5% per fluctuation
	minSharePrice   = 1.0
	minDailyRevenue = 100.0
)

// PaySalaries deducts the total salary of all hired workers. When the
// balance cannot cover payroll, nothing is deducted and a shortage
// notification is emitted; workers are never auto-fired.
func PaySalaries(st *state.EconomicState, now time.Time) bool {
	total := 0.0
	for _, w := range st.Workers {
		total += w.Salary
	}
	if total == 0 {
		return false
	}

	if st.Money < total {
		st.Notify("salary", fmt.Sprintf("Huna fedha za kutosha kulipa mishahara (%s).", humanize.Commaf(total)), now)
		return true
	}

	st.RecordExpense(total, fmt.Sprintf("Mishahara ya wafanyakazi %d", len(st.Workers)), now)
	st.Notify("salary", fmt.Sprintf("Mishahara imelipwa: %s.", humanize.Commaf(total)), now)
	return true
}

// PayDividends credits one aggregated dividend payment across all held
// stocks: perShare = dailyRevenue * yield / totalOutstandingShares.
func PayDividends(st *state.EconomicState, now time.Time) bool {
	total := 0.0
	for ticker, shares := range st.PlayerStocks {
		c := st.CompanyByTicker(ticker)
		if c == nil || c.TotalShares == 0 {
			continue
		}
		perShare := c.DailyRevenue * c.DividendYield / float64(c.TotalShares)
		total += perShare * float64(shares)
	}
	if total <= 0 {
		return false
	}

	st.RecordIncome(total, "Gawio la hisa", now)
	st.Notify("dividend", fmt.Sprintf("Gawio limeingia: %s.", humanize.Commaf(total)), now)
	return true
}

// MarketDrift is a smooth noise field driving share-price movement.
// Sampling it along wall-clock time yields a bounded walk that is
// continuous between fluctuations and deterministic per seed.
type MarketDrift struct {
	noise opensimplex.Noise
}

// NewMarketDrift creates a drift field from a seed.
func NewMarketDrift(seed int64) *MarketDrift {
	return &MarketDrift{noise: opensimplex.NewNormalized(seed)}
}

// sample returns a value in [-1, 1] for one company channel at time t.
func (d *MarketDrift) sample(t float64, channel int) float64 {
	return d.noise.Eval2(t, float64(channel)*7.31)*2 - 1
}

// Fluctuate applies one market-fluctuation step: each company's price
// follows the drift field (±2.5%), its daily revenue takes an
// independent random shock (±5%), and market cap is recomputed. Both
// are floored to positive minimums. src may be nil (crypto fallback).
func Fluctuate(st *state.EconomicState, drift *MarketDrift, src *entropy.Source, now time.Time) bool {
	if len(st.Companies) == 0 {
		return false
	}

	// Hour-scale time coordinate for the noise field.
	t := float64(now.UnixMilli()) / float64(time.Hour.Milliseconds())

	for i := range st.Companies {
		c := &st.Companies[i]

		c.Price *= 1 + maxPriceDrift*drift.sample(t, i)
		if c.Price < minSharePrice {
			c.Price = minSharePrice
		}

		shock := (src.Float()*2 - 1) * maxRevenueDrift
		c.DailyRevenue *= 1 + shock
		if c.DailyRevenue < minDailyRevenue {
			c.DailyRevenue = minDailyRevenue
		}

		c.MarketCap = c.Price * float64(c.TotalShares)
	}
	return true
}
