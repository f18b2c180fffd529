// Package planner classifies a user's financial state into a single
// dominant mode and collects the alerts and suggestions for the turn.
package planner

import (
	"fundpal/internal/metrics"
	"fundpal/internal/models"
)

// Defaults applied when the state snapshot is missing a figure. Absence
// degrades to the safest assumption; the planner never errors.
const (
	defaultMonthlyIncome  = 30000
	defaultDailyEssential = 500
	goalReservationPct    = 0.20
)

// Planner evaluates the rule table against a state snapshot.
type Planner struct {
	rules []Rule
}

// New returns a planner with the standard rule set.
func New() *Planner {
	return &Planner{rules: standardRules()}
}

// Analyze runs the rules in order and returns the decision for this
// turn. The input state is read-only; all outputs live on the returned
// decision.
func (p *Planner) Analyze(state models.UserFinancialState) models.PlannerDecision {
	ev := &evaluation{state: normalize(state)}

	for _, rule := range p.rules {
		if !rule.When(ev) {
			continue
		}
		rule.Then(ev)
		if ev.halted {
			break
		}
	}

	return ev.finish()
}

// normalize fills defaulted inputs so every rule can assume sane
// numbers without re-checking.
func normalize(s models.UserFinancialState) models.UserFinancialState {
	if s.MonthlyIncome <= 0 {
		s.MonthlyIncome = defaultMonthlyIncome
	}
	if s.DailyEssential <= 0 {
		s.DailyEssential = defaultDailyEssential
	}
	if s.DaysInPeriod <= 0 {
		s.DaysInPeriod = 30
	}
	if s.DaysElapsed <= 0 {
		s.DaysElapsed = 1
	}
	if s.PredictedIncome7d <= 0 {
		s.PredictedIncome7d = s.MonthlyIncome / 30 * 7
	}
	return s
}

// evaluation is the mutable scratchpad threaded through the rules.
type evaluation struct {
	state       models.UserFinancialState
	mode        models.Mode // empty until a rule claims it
	alerts      []string
	suggestions []string
	priority    string // only the emergency rule pins this directly
	health      float64
	safeDaily   float64
	stress      models.StressCheck
	halted      bool
}

func (ev *evaluation) runway() int {
	return metrics.RunwayDays(ev.state.CurrentBalance, ev.state.DailyEssential)
}

func (ev *evaluation) finish() models.PlannerDecision {
	mode := ev.mode
	if mode == "" {
		mode = models.ModeNormal
	}

	priority := ev.priority
	if priority == "" && len(ev.suggestions) > 0 {
		priority = ev.suggestions[0]
	}

	return models.PlannerDecision{
		Mode:             mode,
		Alerts:           ev.alerts,
		Suggestions:      ev.suggestions,
		ShouldWarn:       len(ev.alerts) > 0,
		PriorityAction:   priority,
		HealthScore:      ev.health,
		SafeToSpendDaily: ev.safeDaily,
		Stress:           ev.stress,
	}
}
