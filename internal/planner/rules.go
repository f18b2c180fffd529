package planner

import (
	"fmt"
	"sort"

	"fundpal/internal/metrics"
	"fundpal/internal/models"
)

// Rule is one step of the classification. Rules run in declaration
// order; a rule may halt the evaluation, which skips everything after
// it. Precedence between modes is therefore carried entirely by this
// ordering, not by any numeric rank.
type Rule struct {
	Name string
	When func(*evaluation) bool
	Then func(*evaluation)
}

func standardRules() []Rule {
	return []Rule{
		{
			// Terminal path: with under 3 days of runway nothing else
			// matters. Exactly one alert and one suggestion go out.
			Name: "runway-emergency",
			When: func(ev *evaluation) bool { return ev.runway() < 3 },
			Then: func(ev *evaluation) {
				ev.mode = models.ModeEmergency
				ev.alerts = append(ev.alerts, fmt.Sprintf("Critical: Only %d days of essential money left!", ev.runway()))
				ev.suggestions = append(ev.suggestions, "Avoid all non-essential spending")
				ev.priority = "Reduce spending immediately"
				ev.halted = true
			},
		},
		{
			Name: "runway-warning",
			When: func(ev *evaluation) bool { return ev.runway() < 7 },
			Then: func(ev *evaluation) {
				ev.mode = models.ModeWarning
				ev.alerts = append(ev.alerts, fmt.Sprintf("Warning: Only %d days runway", ev.runway()))
			},
		},
		{
			// The suggestion is added regardless of mode; the mode only
			// changes if nothing stronger claimed it first.
			Name: "emergency-fund",
			When: func(ev *evaluation) bool { return ev.state.EmergencyFundMonths < 1 },
			Then: func(ev *evaluation) {
				if ev.mode == "" {
					ev.mode = models.ModeStabilization
				}
				ev.suggestions = append(ev.suggestions, "Focus on building emergency fund first")
			},
		},
		{
			// Debt outranks warning and stabilization but never the
			// emergency short-circuit above.
			Name: "high-interest-debt",
			When: func(ev *evaluation) bool { return ev.state.HasCreditCardDebt },
			Then: func(ev *evaluation) {
				if ev.mode != models.ModeEmergency {
					ev.mode = models.ModeDebtFirst
				}
				ev.alerts = append(ev.alerts, "Credit card debt is costing you 36-42% per year")
				ev.suggestions = append(ev.suggestions, "Pay off credit card before investing")
			},
		},
		{
			Name: "category-budgets",
			When: func(ev *evaluation) bool { return len(ev.state.Categories) > 0 },
			Then: func(ev *evaluation) {
				for _, category := range sortedCategories(ev.state.Categories) {
					data := ev.state.Categories[category]
					util := metrics.BudgetUtilization(data.Spent, data.Budget, ev.state.DaysElapsed, ev.state.DaysInPeriod)
					if util.Utilization > 0.8 {
						ev.alerts = append(ev.alerts, fmt.Sprintf("%s: %d%% of budget used", category, int(util.Utilization*100)))
					}
				}
			},
		},
		{
			Name: "upcoming-obligations",
			When: func(ev *evaluation) bool { return len(ev.state.Upcoming) > 0 },
			Then: func(ev *evaluation) {
				for _, ob := range ev.state.Upcoming {
					if ob.DaysUntil > 7 {
						continue
					}
					gap := ob.Amount - ev.state.AvailableForObligation
					if gap > 0 {
						ev.alerts = append(ev.alerts, fmt.Sprintf("%s due in %d days, need %.0f more", ob.Name, ob.DaysUntil, gap))
						ev.suggestions = append(ev.suggestions, fmt.Sprintf("Keep %.0f aside for %s", ob.Amount, ob.Name))
					}
				}
			},
		},
		{
			// Health figures always compute; stress can escalate an
			// otherwise-calm turn to WARNING but never demotes a mode a
			// stronger rule already claimed.
			Name: "health-and-cashflow",
			When: func(ev *evaluation) bool { return true },
			Then: func(ev *evaluation) {
				s := ev.state
				ev.health = metrics.HealthScore(s.SavingsRate, s.IncomeStability, s.EmergencyFundMonths)

				essentials := s.DailyEssential * 30
				goalAllocation := s.MonthlyIncome * goalReservationPct
				ev.safeDaily = metrics.SafeToSpendDaily(s.MonthlyIncome, essentials, goalAllocation)

				ev.stress = metrics.CashflowStress(s.CurrentBalance, s.Avg7DayExpense, s.PredictedIncome7d, s.UpcomingBills7d)
				if ev.stress.IsStressed {
					ev.alerts = append(ev.alerts, fmt.Sprintf("Cashflow stress: %s", ev.stress.Reason))
					if ev.mode == "" || ev.mode == models.ModeNormal {
						ev.mode = models.ModeWarning
					}
				}
			},
		},
	}
}

// sortedCategories keeps alert order stable across turns; map iteration
// order would otherwise shuffle the decision output.
func sortedCategories(m map[string]models.CategoryBudget) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
