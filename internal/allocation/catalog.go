package allocation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fundpal/internal/models"
)

// Fund is one candidate instrument inside an asset class.
type Fund struct {
	Name   string `yaml:"name"`
	Ticker string `yaml:"ticker"`
}

// AssetClass groups candidate funds with the fixed expected return used
// for projections. The CAGR figures are educational planning constants,
// not forecasts.
type AssetClass struct {
	CAGR       float64 `yaml:"cagr"`
	Candidates []Fund  `yaml:"candidates"`
}

// Catalog is the static fund universe the engine selects from.
type Catalog map[string]AssetClass

// defaultCAGR applies to any class a custom catalog leaves unmapped.
const defaultCAGR = 0.06

// DefaultCatalog returns the built-in fund universe.
func DefaultCatalog() Catalog {
	return Catalog{
		"Liquid": {
			CAGR: 0.05,
			Candidates: []Fund{
				{Name: "SBI Liquid Fund", Ticker: "LIQUIDBEES.NS"},
				{Name: "HDFC Liquid Fund", Ticker: "LIQUIDBEES.NS"},
				{Name: "ICICI Pru Liquid", Ticker: "LIQUIDBEES.NS"},
			},
		},
		"Debt": {
			CAGR: 0.07,
			Candidates: []Fund{
				{Name: "HDFC Short Term Debt", Ticker: "GILT5YBEES.NS"},
				{Name: "Kotak Bond Fund", Ticker: "GILT5YBEES.NS"},
				{Name: "Axis Banking & PSU", Ticker: "GILT5YBEES.NS"},
			},
		},
		"Hybrid": {
			CAGR: 0.10,
			Candidates: []Fund{
				{Name: "ICICI Pru Balanced Advantage", Ticker: "NIFTYBEES.NS"},
				{Name: "HDFC Balanced Advantage", Ticker: "NIFTYBEES.NS"},
				{Name: "SBI Equity Hybrid", Ticker: "NIFTYBEES.NS"},
			},
		},
		"Equity": {
			CAGR: 0.12,
			Candidates: []Fund{
				{Name: "Nifty 50 Index Fund", Ticker: "NIFTYBEES.NS"},
				{Name: "HDFC Mid-Cap Opportunities", Ticker: "JUNIORBEES.NS"},
				{Name: "Parag Parikh Flexi Cap", Ticker: "NIFTYBEES.NS"},
			},
		},
		"MidCap": {
			CAGR: 0.14,
			Candidates: []Fund{
				{Name: "HDFC Mid-Cap Opportunities", Ticker: "JUNIORBEES.NS"},
				{Name: "Nippon Growth Fund", Ticker: "JUNIORBEES.NS"},
			},
		},
		"Gold": {
			CAGR: 0.08,
			Candidates: []Fund{
				{Name: "Sovereign Gold Bond", Ticker: "GOLDBEES.NS"},
				{Name: "Nippon India Gold ETF", Ticker: "GOLDBEES.NS"},
			},
		},
		"FD": {
			CAGR: 0.065,
			Candidates: []Fund{
				{Name: "HDFC Bank FD", Ticker: "HDFCBANK.NS"},
				{Name: "SBI FD", Ticker: "SBIN.NS"},
				{Name: "Bajaj Finance FD", Ticker: "BAJFINANCE.NS"},
			},
		},
	}
}

// LoadCatalog reads a fund universe from a YAML file, falling back to
// the built-in catalog when the path is empty or the file is missing.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fund catalog: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse fund catalog: %w", err)
	}
	for class, ac := range cat {
		if len(ac.Candidates) == 0 {
			return nil, fmt.Errorf("fund catalog: class %s has no candidates", class)
		}
	}
	return cat, nil
}

// cagr returns the expected return for a class, defaulting for classes
// the catalog doesn't know.
func (c Catalog) cagr(class string) float64 {
	if ac, ok := c[class]; ok && ac.CAGR > 0 {
		return ac.CAGR
	}
	return defaultCAGR
}

// baseAllocation is the age-bracket default before any override. Each
// map is complete and sums to 1.0; overrides replace the whole map,
// never patch it.
func baseAllocation(bracket models.AgeBracket) (map[string]float64, string) {
	switch bracket {
	case models.Age18To25:
		return map[string]float64{"Equity": 0.60, "MidCap": 0.10, "Gold": 0.10, "Liquid": 0.20},
			"Under 25 you have the longest horizon, so the plan leans on equity for growth."
	case models.Age36To50:
		return map[string]float64{"Equity": 0.30, "Debt": 0.40, "Hybrid": 0.20, "Liquid": 0.10},
			"Between 36 and 50 stability becomes key, shifting weight towards debt while keeping some growth."
	case models.Age50Plus:
		return map[string]float64{"FD": 0.50, "Debt": 0.30, "Equity": 0.10, "Liquid": 0.10},
			"Past 50 the focus is capital preservation and predictable income."
	default: // 26-35 is also the fallback bracket
		return map[string]float64{"Equity": 0.40, "Hybrid": 0.30, "Debt": 0.20, "Liquid": 0.10},
			"Between 26 and 35 a balanced mix of equity and debt manages risk while building wealth."
	}
}

// Fixed replacement maps for the duration and risk overrides.
var (
	shortHorizonAllocation = map[string]float64{"Liquid": 0.40, "Debt": 0.40, "Hybrid": 0.20}
	longHorizonAllocation  = map[string]float64{"Equity": 0.50, "MidCap": 0.20, "Hybrid": 0.20, "Gold": 0.10}
	highRiskAllocation     = map[string]float64{"Equity": 0.60, "MidCap": 0.30, "Gold": 0.10}
	lowRiskAllocation      = map[string]float64{"FD": 0.40, "Debt": 0.40, "Liquid": 0.20}
	emergencyAllocation    = map[string]float64{"Liquid": 1.0}
)
