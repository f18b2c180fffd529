package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fundpal/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "fundpal.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testProfile(userID string) models.UserProfile {
	return models.UserProfile{
		UserID:         userID,
		AgeBracket:     models.Age26To35,
		RiskTolerance:  models.RiskModerate,
		IncomeType:     models.IncomeSalaried,
		LiteracyLevel:  2,
		MonthlyIncome:  50000,
		MonthlyRent:    15000,
		DailyEssential: 500,
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := openTestStore(t)

	p := testProfile("u1")
	p.HasCreditCardDebt = true
	if err := s.SaveProfile(p); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetProfile("u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != p {
		t.Errorf("profile round trip mismatch:\n got %+v\nwant %+v", got, p)
	}

	if _, err := s.GetProfile("nobody"); err != ErrUnknownUser {
		t.Errorf("missing user: got %v, want ErrUnknownUser", err)
	}
}

func TestSaveProfileUpdatesExisting(t *testing.T) {
	s := openTestStore(t)

	p := testProfile("u1")
	if err := s.SaveProfile(p); err != nil {
		t.Fatalf("save: %v", err)
	}
	p.MonthlyIncome = 60000
	p.RiskTolerance = models.RiskAggressive
	if err := s.SaveProfile(p); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.GetProfile("u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MonthlyIncome != 60000 || got.RiskTolerance != models.RiskAggressive {
		t.Errorf("update not applied: %+v", got)
	}

	ids, err := s.ListUserIDs()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("upsert created duplicate user rows: %v", ids)
	}
}

func TestBalanceFollowsLedger(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	if _, err := s.AddTransaction("u1", "income", decimal.NewFromInt(50000), "Salary", "august salary", now); err != nil {
		t.Fatalf("add income: %v", err)
	}
	if _, err := s.AddTransaction("u1", "expense", decimal.NewFromFloat(1234.56), "Food", "groceries", now); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	balance, err := s.Balance("u1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	want := decimal.NewFromFloat(48765.44)
	if !balance.Equal(want) {
		t.Errorf("balance = %s, want %s", balance, want)
	}
}

func TestComputeState(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)

	if err := s.SaveProfile(testProfile("u1")); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if err := s.SetBudget("u1", "Food", 8000); err != nil {
		t.Fatalf("set budget: %v", err)
	}
	if err := s.AddObligation("u1", "Rent", 15000, now.AddDate(0, 0, 3)); err != nil {
		t.Fatalf("add obligation: %v", err)
	}

	if _, err := s.AddTransaction("u1", "income", decimal.NewFromInt(50000), "Salary", "", now.AddDate(0, 0, -10)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddTransaction("u1", "expense", decimal.NewFromInt(6000), "Food", "", now.AddDate(0, 0, -5)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddTransaction("u1", "expense", decimal.NewFromInt(1400), "Transport", "", now.AddDate(0, 0, -2)); err != nil {
		t.Fatal(err)
	}

	state, err := s.ComputeState("u1", now)
	if err != nil {
		t.Fatalf("compute state: %v", err)
	}

	if state.CurrentBalance != 42600 {
		t.Errorf("balance = %.2f, want 42600", state.CurrentBalance)
	}
	food := state.Categories["Food"]
	if food.Spent != 6000 || food.Budget != 8000 {
		t.Errorf("food category = %+v, want spent 6000 budget 8000", food)
	}
	if len(state.Upcoming) != 1 || state.Upcoming[0].Name != "Rent" || state.Upcoming[0].DaysUntil != 3 {
		t.Errorf("upcoming = %+v", state.Upcoming)
	}
	if state.UpcomingBills7d != 15000 {
		t.Errorf("bills7d = %.2f, want 15000", state.UpcomingBills7d)
	}
	if state.MonthlyIncome != 50000 {
		t.Errorf("monthly income = %.2f", state.MonthlyIncome)
	}
	// 7400 spent over 30 days, income 50000
	wantRate := (50000.0 - 7400.0) / 50000.0 * 100
	if diff := state.SavingsRate - wantRate; diff > 0.01 || diff < -0.01 {
		t.Errorf("savings rate = %.2f, want %.2f", state.SavingsRate, wantRate)
	}
	if state.IncomeStability != 90 {
		t.Errorf("income stability = %.0f, want 90 for salaried", state.IncomeStability)
	}
	if state.EmergencyFundMonths != 42600.0/(500*30) {
		t.Errorf("emergency fund months = %.2f", state.EmergencyFundMonths)
	}
	if state.DaysInPeriod != 31 || state.DaysElapsed != 15 {
		t.Errorf("period = %d/%d", state.DaysElapsed, state.DaysInPeriod)
	}
}

func TestSaveInvestmentsReplacesPlan(t *testing.T) {
	s := openTestStore(t)

	first := models.AllocationPlan{Allocation: map[string]models.FundPick{
		"Equity": {Weight: 0.6, Fund: "Nifty 50 Index Fund", Ticker: "NIFTYBEES.NS", UnitPrice: 250},
		"Liquid": {Weight: 0.4, Fund: "Liquid Fund", Ticker: "LIQUIDBEES.NS", UnitPrice: 1000},
	}}
	if err := s.SaveInvestments("u1", first); err != nil {
		t.Fatalf("save first plan: %v", err)
	}

	second := models.AllocationPlan{Allocation: map[string]models.FundPick{
		"Debt": {Weight: 1.0, Fund: "Gilt Fund", Ticker: "GILT5YBEES.NS", UnitPrice: 55},
	}}
	if err := s.SaveInvestments("u1", second); err != nil {
		t.Fatalf("save second plan: %v", err)
	}

	active, err := s.ActiveInvestments("u1")
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].AssetClass != "Debt" {
		t.Errorf("active plan = %+v, want single Debt line", active)
	}
}

func TestHoldingsUpsertAndDelete(t *testing.T) {
	s := openTestStore(t)

	h := models.Holding{
		Symbol:      "NIFTYBEES.NS",
		Quantity:    decimal.NewFromInt(10),
		AvgBuyPrice: decimal.NewFromFloat(250.5),
	}
	if err := s.UpsertHolding("u1", h); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Holding("u1", "NIFTYBEES.NS")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Quantity.Equal(h.Quantity) || !got.AvgBuyPrice.Equal(h.AvgBuyPrice) {
		t.Errorf("holding = %+v", got)
	}

	h.Quantity = decimal.Zero
	if err := s.UpsertHolding("u1", h); err != nil {
		t.Fatalf("delete via zero quantity: %v", err)
	}
	all, err := s.Holdings("u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("holdings after sell-out = %+v, want none", all)
	}
}

func TestRecordSafetyAudit(t *testing.T) {
	s := openTestStore(t)

	err := s.RecordSafety("u1", models.SafetyCheckResult{
		IsSafe:        false,
		BlockedReason: "Cannot recommend crypto",
	}, "invest 5000 in crypto")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	err = s.RecordSafety("u1", models.SafetyCheckResult{
		IsSafe:        true,
		WarningsAdded: []string{"low surplus"},
	}, "should I invest")
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	n, err := s.SafetyLogCount("u1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("audit rows = %d, want 2", n)
	}
}
