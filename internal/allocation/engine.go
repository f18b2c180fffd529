// Package allocation turns a user profile plus optional goal overrides
// into an asset allocation with fund picks and compounding projections.
// The selection logic is a fixed rule table, not an optimizer.
package allocation

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"

	"fundpal/internal/models"
	"fundpal/internal/quotes"
)

// Request carries the accumulated investment parameters for one plan.
// Zero/nil fields mean "not specified" and fall back to profile-derived
// defaults.
type Request struct {
	GoalName       string
	DurationYears  *int
	RiskOverride   string // "High" or "Low"; anything else keeps the base map
	Amount         *float64
	InstrumentType string // "SIP" or "Lumpsum", defaults to SIP
}

// Selector picks one fund from a class's candidate list. The contract
// is "any candidate from the declared class"; injecting a selector
// makes the choice deterministic for tests.
type Selector func(class string, candidates []Fund) Fund

// SeededSelector returns a deterministic selector: the same seed, class
// and candidate list always yield the same pick.
func SeededSelector(seed int64) Selector {
	return func(class string, candidates []Fund) Fund {
		h := seed
		for _, ch := range class {
			h = h*31 + int64(ch)
		}
		rng := rand.New(rand.NewSource(h))
		return candidates[rng.Intn(len(candidates))]
	}
}

// Engine produces allocation plans.
type Engine struct {
	catalog  Catalog
	quotes   quotes.Provider
	selector Selector
	fallback *rand.Rand // bounded placeholder prices when the quote source fails
}

// Option configures an Engine.
type Option func(*Engine)

// WithSelector overrides the fund selection strategy.
func WithSelector(s Selector) Option {
	return func(e *Engine) { e.selector = s }
}

// WithFallbackSeed pins the placeholder-price stream, for tests.
func WithFallbackSeed(seed int64) Option {
	return func(e *Engine) { e.fallback = rand.New(rand.NewSource(seed)) }
}

// NewEngine builds an engine over a fund catalog and a quote source.
func NewEngine(catalog Catalog, provider quotes.Provider, opts ...Option) *Engine {
	e := &Engine{
		catalog:  catalog,
		quotes:   provider,
		selector: SeededSelector(1),
		fallback: rand.New(rand.NewSource(rand.Int63())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildPlan assembles a complete allocation plan for the profile and
// request. It never fails outright: a price-lookup error degrades to a
// bounded placeholder price.
func (e *Engine) BuildPlan(profile models.UserProfile, req Request) models.AllocationPlan {
	weights, rationale := e.resolveAllocation(profile, req)

	monthly := e.recommendedAmount(profile, req)
	instrument := "SIP"
	if strings.EqualFold(req.InstrumentType, "lumpsum") {
		instrument = "Lumpsum"
	}

	picks := make(map[string]models.FundPick, len(weights))
	for class, weight := range weights {
		fund := e.pickFund(class)
		picks[class] = models.FundPick{
			Weight:    weight,
			Fund:      fund.Name,
			Ticker:    fund.Ticker,
			UnitPrice: e.unitPrice(fund.Ticker),
			Action:    "buy",
			CAGR:      e.catalog.cagr(class),
		}
	}

	return models.AllocationPlan{
		Allocation:     picks,
		Projections:    e.project(monthly, weights),
		Rationale:      rationale,
		InstrumentType: instrument,
		MonthlyAmount:  monthly,
		RiskProfile:    fmt.Sprintf("%s / %s", titleCase(string(profile.RiskTolerance)), profile.AgeBracket),
	}
}

// resolveAllocation applies the override precedence: emergency goal,
// then duration, then explicit risk. Each override replaces the whole
// allocation map so the weights always sum to one.
func (e *Engine) resolveAllocation(profile models.UserProfile, req Request) (map[string]float64, string) {
	weights, rationale := baseAllocation(profile.AgeBracket)

	if strings.Contains(strings.ToLower(req.GoalName), "emergency") {
		return clone(emergencyAllocation), "An emergency fund must stay liquid, so everything goes into the lowest-volatility class."
	}

	if req.DurationYears != nil {
		switch {
		case *req.DurationYears < 3:
			weights = shortHorizonAllocation
			rationale = fmt.Sprintf("A %d-year horizon is too short for equity swings, so the plan stays conservative.", *req.DurationYears)
		case *req.DurationYears > 10:
			weights = longHorizonAllocation
			rationale = fmt.Sprintf("With %d years to compound, the plan can ride out equity volatility for higher growth.", *req.DurationYears)
		}
	}

	// Risk override is evaluated last and wins over the duration rule.
	switch strings.ToLower(req.RiskOverride) {
	case "high":
		weights = highRiskAllocation
		rationale = "You asked for a high-risk plan, so it concentrates on equity and mid-caps."
	case "low":
		weights = lowRiskAllocation
		rationale = "You asked for a low-risk plan, so it sticks to deposits and debt."
	}

	return clone(weights), rationale
}

// recommendedAmount derives the monthly contribution when the user has
// not named one: 30% of estimated surplus, rounded to the nearest 100,
// floored at 500.
func (e *Engine) recommendedAmount(profile models.UserProfile, req Request) float64 {
	if req.Amount != nil && *req.Amount > 0 {
		return *req.Amount
	}

	surplus := profile.MonthlySurplus
	if surplus <= 0 {
		income := profile.MonthlyIncome
		if income <= 0 {
			income = 30000
		}
		// The 10000 baseline stands in for unavoidable living costs
		// beyond rent and EMIs.
		surplus = math.Max(income-(profile.MonthlyRent+profile.MonthlyEMI+10000), 1000)
	}

	amount := math.Round(surplus*0.3/100) * 100
	if amount < 500 {
		amount = 500
	}
	return amount
}

func (e *Engine) pickFund(class string) Fund {
	ac, ok := e.catalog[class]
	if !ok || len(ac.Candidates) == 0 {
		return Fund{Name: "Generic " + class + " Fund"}
	}
	return e.selector(class, ac.Candidates)
}

// unitPrice asks the quote provider, degrading to a bounded placeholder
// so a price outage never sinks plan generation.
func (e *Engine) unitPrice(ticker string) float64 {
	if ticker == "" {
		return e.placeholderPrice()
	}
	price, err := e.quotes.Price(ticker)
	if err != nil {
		log.Printf("WARNING: price lookup failed for %s, using placeholder: %v", ticker, err)
		return e.placeholderPrice()
	}
	return math.Round(price*100) / 100
}

func (e *Engine) placeholderPrice() float64 {
	return math.Round((100+e.fallback.Float64()*1900)*100) / 100
}

func clone(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return "Moderate"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
