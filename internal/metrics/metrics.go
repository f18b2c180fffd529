// Package metrics computes the continuous financial health figures the
// planner builds its mode decision on. Everything here is a pure
// function over already-fetched numbers; no I/O, no state.
package metrics

import (
	"math"

	"fundpal/internal/models"
)

// RunwayDays returns how many days of essential spending the current
// balance covers. When dailyEssential is zero or negative we return a
// fixed safe default rather than dividing by zero; the 30 is a guard
// value, not a statement about the user's finances.
func RunwayDays(balance, dailyEssential float64) int {
	if dailyEssential <= 0 {
		return 30
	}
	return int(math.Floor(balance / dailyEssential))
}

// Utilization describes one category's pace against its budget.
type Utilization struct {
	Utilization float64
	OverBudget  bool
	Pace        string // "ahead" or "on_track"
}

// BudgetUtilization compares spending so far against the pro-rated
// budget for the elapsed portion of the period.
func BudgetUtilization(spent, budget float64, daysElapsed, daysInPeriod int) Utilization {
	var expected float64
	if daysInPeriod > 0 {
		expected = budget / float64(daysInPeriod) * float64(daysElapsed)
	}

	var util float64
	if budget > 0 {
		util = spent / budget
	}

	u := Utilization{Utilization: util, OverBudget: spent > expected, Pace: "on_track"}
	if u.OverBudget {
		u.Pace = "ahead"
	}
	return u
}

// HealthScore folds savings rate, income stability and emergency fund
// coverage into a 0-100 score. Each component is capped before scaling:
// a 30% savings rate earns the full 40 points, a 100 stability score
// the full 30, and 6 months of emergency fund the final 30. Inputs
// beyond the caps earn no extra credit.
func HealthScore(savingsRate, incomeStability, emergencyFundMonths float64) float64 {
	savings := math.Min(savingsRate, 30) / 30 * 40
	stability := math.Min(incomeStability, 100) * 0.3
	emergency := math.Min(emergencyFundMonths, 6) / 6 * 30
	return math.Round(savings + stability + emergency)
}

// SafeToSpendDaily spreads the discretionary pool left after essentials
// and goal reservations over a 30-day month. Never negative.
func SafeToSpendDaily(predictedIncome, essentialExpenses, goalAllocation float64) float64 {
	discretionary := predictedIncome - essentialExpenses - goalAllocation
	if discretionary < 0 {
		return 0
	}
	return math.Round(discretionary/30*100) / 100
}

// CashflowStress flags the combination of a depleted balance and a bill
// wave the next week's income won't cover. Both conditions must hold;
// either one alone is survivable.
func CashflowStress(balance, avg7dExpense, predictedIncome7d, upcomingBills7d float64) models.StressCheck {
	threshold := avg7dExpense * 0.5
	check := models.StressCheck{
		Threshold: threshold,
		Shortfall: upcomingBills7d - predictedIncome7d,
	}

	if balance < threshold && upcomingBills7d > predictedIncome7d {
		check.IsStressed = true
		check.Reason = "Low balance relative to expenses and upcoming bills exceed income."
	}
	return check
}
