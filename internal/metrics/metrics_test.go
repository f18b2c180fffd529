package metrics

import (
	"math"
	"testing"
)

func TestRunwayDays(t *testing.T) {
	cases := []struct {
		name           string
		balance        float64
		dailyEssential float64
		want           int
	}{
		{"exact division", 3000, 500, 6},
		{"floors fraction", 3200, 500, 6},
		{"zero balance", 0, 500, 0},
		{"zero essential uses guard default", 3000, 0, 30},
		{"negative essential uses guard default", 3000, -10, 30},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RunwayDays(tc.balance, tc.dailyEssential); got != tc.want {
				t.Errorf("RunwayDays(%v, %v) = %d, want %d", tc.balance, tc.dailyEssential, got, tc.want)
			}
		})
	}
}

func TestRunwayDaysMonotonic(t *testing.T) {
	// More balance never shortens the runway; higher burn never extends it.
	prev := RunwayDays(0, 500)
	for balance := 100.0; balance <= 10000; balance += 100 {
		cur := RunwayDays(balance, 500)
		if cur < prev {
			t.Fatalf("runway decreased from %d to %d at balance %v", prev, cur, balance)
		}
		prev = cur
	}

	prev = RunwayDays(5000, 1)
	for essential := 2.0; essential <= 1000; essential += 1 {
		cur := RunwayDays(5000, essential)
		if cur > prev {
			t.Fatalf("runway increased from %d to %d at essential %v", prev, cur, essential)
		}
		prev = cur
	}
}

func TestBudgetUtilization(t *testing.T) {
	// 10 days into a 30-day month with a 3000 budget, 1000 is expected spend.
	u := BudgetUtilization(1500, 3000, 10, 30)
	if !u.OverBudget {
		t.Error("expected over budget when 1500 spent against 1000 expected")
	}
	if u.Pace != "ahead" {
		t.Errorf("expected pace ahead, got %q", u.Pace)
	}
	if math.Abs(u.Utilization-0.5) > 1e-9 {
		t.Errorf("utilization = %v, want 0.5", u.Utilization)
	}

	u = BudgetUtilization(800, 3000, 10, 30)
	if u.OverBudget || u.Pace != "on_track" {
		t.Errorf("expected on_track under expected spend, got %+v", u)
	}

	// Zero budget must not divide by zero.
	u = BudgetUtilization(500, 0, 10, 30)
	if u.Utilization != 0 {
		t.Errorf("zero budget utilization = %v, want 0", u.Utilization)
	}
}

func TestHealthScoreBounds(t *testing.T) {
	inputs := [][3]float64{
		{0, 0, 0},
		{30, 100, 6},
		{100, 500, 50}, // far past every cap
		{15, 50, 3},
	}
	for _, in := range inputs {
		score := HealthScore(in[0], in[1], in[2])
		if score < 0 || score > 100 {
			t.Errorf("HealthScore(%v) = %v, out of [0,100]", in, score)
		}
	}

	if got := HealthScore(30, 100, 6); got != 100 {
		t.Errorf("all caps met should score 100, got %v", got)
	}
	if got := HealthScore(0, 0, 0); got != 0 {
		t.Errorf("all zeros should score 0, got %v", got)
	}
}

func TestHealthScoreIncreasingUpToCaps(t *testing.T) {
	// Strictly increasing in each component until its cap, flat beyond.
	if HealthScore(10, 50, 2) >= HealthScore(20, 50, 2) {
		t.Error("score should increase with savings rate below the 30% cap")
	}
	if HealthScore(30, 50, 2) != HealthScore(45, 50, 2) {
		t.Error("savings rate beyond 30% should earn no extra credit")
	}
	if HealthScore(10, 40, 2) >= HealthScore(10, 80, 2) {
		t.Error("score should increase with income stability")
	}
	if HealthScore(10, 50, 1) >= HealthScore(10, 50, 4) {
		t.Error("score should increase with emergency fund months below 6")
	}
	if HealthScore(10, 50, 6) != HealthScore(10, 50, 12) {
		t.Error("emergency fund beyond 6 months should earn no extra credit")
	}
}

func TestSafeToSpendDaily(t *testing.T) {
	// 30000 income, 15000 essentials, 6000 goal -> 9000/30 = 300/day.
	if got := SafeToSpendDaily(30000, 15000, 6000); got != 300 {
		t.Errorf("SafeToSpendDaily = %v, want 300", got)
	}

	// Never negative, whatever the sign mix.
	negatives := [][3]float64{
		{10000, 15000, 0},
		{0, 0, 5000},
		{-1000, 500, 500},
	}
	for _, in := range negatives {
		if got := SafeToSpendDaily(in[0], in[1], in[2]); got < 0 {
			t.Errorf("SafeToSpendDaily(%v) = %v, want >= 0", in, got)
		}
	}

	// Rounded to two decimals.
	got := SafeToSpendDaily(1000, 0, 0)
	if got != 33.33 {
		t.Errorf("SafeToSpendDaily(1000,0,0) = %v, want 33.33", got)
	}
}

func TestCashflowStress(t *testing.T) {
	// Both conditions met: stressed.
	check := CashflowStress(100, 1000, 500, 2000)
	if !check.IsStressed {
		t.Fatal("expected stress when balance is low and bills exceed income")
	}
	if check.Shortfall != 1500 {
		t.Errorf("shortfall = %v, want 1500", check.Shortfall)
	}
	if check.Reason == "" {
		t.Error("stressed check should carry a reason")
	}

	// Low balance alone is not stress.
	if CashflowStress(100, 1000, 3000, 2000).IsStressed {
		t.Error("bills covered by income should not be stressed")
	}

	// Bill wave alone is not stress.
	if CashflowStress(5000, 1000, 500, 2000).IsStressed {
		t.Error("healthy balance should not be stressed")
	}
}
