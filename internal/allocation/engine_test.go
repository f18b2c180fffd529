package allocation

import (
	"errors"
	"math"
	"testing"

	"fundpal/internal/models"
)

// fixedQuotes returns the same price for every ticker, or an error.
type fixedQuotes struct {
	price float64
	err   error
}

func (f fixedQuotes) Price(string) (float64, error) { return f.price, f.err }

func firstCandidate(_ string, candidates []Fund) Fund { return candidates[0] }

func testEngine(q fixedQuotes) *Engine {
	return NewEngine(DefaultCatalog(), q, WithSelector(firstCandidate), WithFallbackSeed(7))
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func weightSum(plan models.AllocationPlan) float64 {
	var sum float64
	for _, pick := range plan.Allocation {
		sum += pick.Weight
	}
	return sum
}

func TestWeightsAlwaysSumToOne(t *testing.T) {
	e := testEngine(fixedQuotes{price: 250})

	requests := []Request{
		{},
		{GoalName: "Emergency Fund"},
		{DurationYears: intPtr(2)},
		{DurationYears: intPtr(15)},
		{RiskOverride: "High"},
		{RiskOverride: "Low", DurationYears: intPtr(20)},
		{GoalName: "Car", DurationYears: intPtr(3)},
	}
	brackets := []models.AgeBracket{models.Age18To25, models.Age26To35, models.Age36To50, models.Age50Plus}

	for _, bracket := range brackets {
		for _, req := range requests {
			plan := e.BuildPlan(models.UserProfile{AgeBracket: bracket, RiskTolerance: models.RiskModerate}, req)
			if diff := math.Abs(weightSum(plan) - 1.0); diff > 1e-6 {
				t.Errorf("bracket %s req %+v: weights sum to %v", bracket, req, weightSum(plan))
			}
		}
	}
}

func TestEmergencyGoalGoesFullyLiquid(t *testing.T) {
	e := testEngine(fixedQuotes{price: 100})
	plan := e.BuildPlan(models.UserProfile{AgeBracket: models.Age18To25}, Request{GoalName: "emergency fund"})

	pick, ok := plan.Allocation["Liquid"]
	if !ok || len(plan.Allocation) != 1 {
		t.Fatalf("emergency goal allocation = %v, want only Liquid", plan.Allocation)
	}
	if pick.Weight != 1.0 {
		t.Errorf("liquid weight = %v, want 1.0", pick.Weight)
	}
}

func TestRiskOverrideBeatsDuration(t *testing.T) {
	e := testEngine(fixedQuotes{price: 100})

	// Short duration alone forces the conservative split...
	short := e.BuildPlan(models.UserProfile{AgeBracket: models.Age26To35}, Request{DurationYears: intPtr(2)})
	if _, ok := short.Allocation["Equity"]; ok {
		t.Errorf("short-horizon plan should hold no pure equity: %v", short.Allocation)
	}

	// ...but an explicit high-risk ask wins even over a short horizon.
	risky := e.BuildPlan(models.UserProfile{AgeBracket: models.Age26To35}, Request{DurationYears: intPtr(2), RiskOverride: "High"})
	if _, ok := risky.Allocation["MidCap"]; !ok {
		t.Errorf("high-risk override should include mid-caps: %v", risky.Allocation)
	}
}

func TestConservativeProfileStillGetsLongHorizonSplit(t *testing.T) {
	e := testEngine(fixedQuotes{price: 100})

	// A cautious profile without a stated risk ask keeps the duration
	// table in charge: 15 years means the growth-heavy split, not FDs.
	plan := e.BuildPlan(
		models.UserProfile{AgeBracket: models.Age26To35, RiskTolerance: models.RiskConservative},
		Request{GoalName: "Retirement", DurationYears: intPtr(15), Amount: floatPtr(5000)})

	if got := plan.Allocation["Equity"].Weight; got != 0.50 {
		t.Errorf("equity weight = %v, want the long-horizon 0.50", got)
	}
	if _, ok := plan.Allocation["FD"]; ok {
		t.Errorf("profile tolerance alone must not force the low-risk split: %v", plan.Allocation)
	}
}

func TestMidHorizonKeepsAgeDefault(t *testing.T) {
	e := testEngine(fixedQuotes{price: 100})

	base := e.BuildPlan(models.UserProfile{AgeBracket: models.Age26To35}, Request{})
	mid := e.BuildPlan(models.UserProfile{AgeBracket: models.Age26To35}, Request{DurationYears: intPtr(5)})

	for class, pick := range base.Allocation {
		if mid.Allocation[class].Weight != pick.Weight {
			t.Errorf("5-year horizon changed %s weight: %v vs %v", class, mid.Allocation[class].Weight, pick.Weight)
		}
	}
}

func TestRecommendedAmount(t *testing.T) {
	e := testEngine(fixedQuotes{price: 100})

	// Explicit amount wins.
	plan := e.BuildPlan(models.UserProfile{AgeBracket: models.Age26To35}, Request{Amount: floatPtr(5000)})
	if plan.MonthlyAmount != 5000 {
		t.Errorf("explicit amount = %v, want 5000", plan.MonthlyAmount)
	}

	// Derived from income - (rent + emi + 10000) baseline:
	// 40000 - (12000 + 3000 + 10000) = 15000 surplus; 30% = 4500.
	profile := models.UserProfile{AgeBracket: models.Age26To35, MonthlyIncome: 40000, MonthlyRent: 12000, MonthlyEMI: 3000}
	plan = e.BuildPlan(profile, Request{})
	if plan.MonthlyAmount != 4500 {
		t.Errorf("derived amount = %v, want 4500", plan.MonthlyAmount)
	}

	// Floors: tiny surplus still recommends at least 500.
	broke := models.UserProfile{AgeBracket: models.Age26To35, MonthlyIncome: 11000, MonthlyRent: 9000}
	plan = e.BuildPlan(broke, Request{})
	if plan.MonthlyAmount != 500 {
		t.Errorf("floored amount = %v, want 500", plan.MonthlyAmount)
	}
}

func TestInstrumentTypeDefaultsToSIP(t *testing.T) {
	e := testEngine(fixedQuotes{price: 100})

	plan := e.BuildPlan(models.UserProfile{AgeBracket: models.Age26To35}, Request{})
	if plan.InstrumentType != "SIP" {
		t.Errorf("instrument = %q, want SIP", plan.InstrumentType)
	}

	plan = e.BuildPlan(models.UserProfile{AgeBracket: models.Age26To35}, Request{InstrumentType: "lumpsum"})
	if plan.InstrumentType != "Lumpsum" {
		t.Errorf("instrument = %q, want Lumpsum", plan.InstrumentType)
	}
}

func TestQuoteFailureFallsBackToBoundedPrice(t *testing.T) {
	e := testEngine(fixedQuotes{err: errors.New("quote service down")})

	plan := e.BuildPlan(models.UserProfile{AgeBracket: models.Age26To35}, Request{})
	for class, pick := range plan.Allocation {
		if pick.UnitPrice < 100 || pick.UnitPrice > 2000 {
			t.Errorf("%s placeholder price %v outside [100,2000]", class, pick.UnitPrice)
		}
	}
}

func TestDeterministicSelection(t *testing.T) {
	q := fixedQuotes{price: 100}
	a := NewEngine(DefaultCatalog(), q, WithSelector(SeededSelector(42)), WithFallbackSeed(1))
	b := NewEngine(DefaultCatalog(), q, WithSelector(SeededSelector(42)), WithFallbackSeed(1))

	pa := a.BuildPlan(models.UserProfile{AgeBracket: models.Age36To50}, Request{})
	pb := b.BuildPlan(models.UserProfile{AgeBracket: models.Age36To50}, Request{})

	for class, pick := range pa.Allocation {
		if pb.Allocation[class].Fund != pick.Fund {
			t.Errorf("same seed picked different funds for %s: %q vs %q", class, pick.Fund, pb.Allocation[class].Fund)
		}
	}
}
