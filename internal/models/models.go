package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mode is the single dominant risk classification for the current turn.
type Mode string

const (
	ModeEmergency     Mode = "emergency"     // Runway < 3 days
	ModeWarning       Mode = "warning"       // Runway 3-7 days or cashflow stress
	ModeDebtFirst     Mode = "debt_first"    // High interest debt outstanding
	ModeStabilization Mode = "stabilization" // Building emergency fund
	ModeGoalFocus     Mode = "goal_focus"    // Working toward goals
	ModeNormal        Mode = "normal"        // Everything okay
)

// RiskTolerance buckets a user's appetite for drawdowns.
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

// IncomeType describes how the user earns.
type IncomeType string

const (
	IncomeSalaried IncomeType = "salaried"
	IncomeGig      IncomeType = "gig"
	IncomeBusiness IncomeType = "business"
)

// AgeBracket is one of four ordinal bands used by the allocation engine.
type AgeBracket string

const (
	Age18To25 AgeBracket = "18-25"
	Age26To35 AgeBracket = "26-35"
	Age36To50 AgeBracket = "36-50"
	Age50Plus AgeBracket = "50+"
)

// UserProfile holds the slow-moving facts about a user.
// Immutable within a single turn.
type UserProfile struct {
	UserID            string        `json:"user_id"`
	AgeBracket        AgeBracket    `json:"age_bracket"`
	RiskTolerance     RiskTolerance `json:"risk_tolerance"`
	IncomeType        IncomeType    `json:"income_type"`
	LiteracyLevel     int           `json:"literacy_level"` // 1 (low) to 3 (high)
	MonthlyIncome     float64       `json:"monthly_income"`
	MonthlyRent       float64       `json:"monthly_rent"`
	MonthlyEMI        float64       `json:"monthly_emi"`
	MonthlySurplus    float64       `json:"monthly_surplus"`
	DailyEssential    float64       `json:"daily_essential"`
	HasCreditCardDebt bool          `json:"has_credit_card_debt"`
}

// CategoryBudget pairs month-to-date spending with the budget for one category.
type CategoryBudget struct {
	Spent  float64 `json:"spent"`
	Budget float64 `json:"budget"`
}

// Obligation is a known upcoming payment.
type Obligation struct {
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	DaysUntil int     `json:"days_until"`
}

// UserFinancialState is the snapshot the planner reasons over.
// Recomputed fresh each turn from the transaction ledger; the decision
// core treats it as read-only.
type UserFinancialState struct {
	CurrentBalance         float64                   `json:"current_balance"`
	DailyEssential         float64                   `json:"daily_essential"`
	EmergencyFundMonths    float64                   `json:"emergency_fund_months"`
	HasCreditCardDebt      bool                      `json:"has_credit_card_debt"`
	Categories             map[string]CategoryBudget `json:"categories"`
	Upcoming               []Obligation              `json:"upcoming"`
	DaysElapsed            int                       `json:"days_elapsed"`
	DaysInPeriod           int                       `json:"days_in_period"`
	MonthlyIncome          float64                   `json:"monthly_income"`
	Avg7DayExpense         float64                   `json:"avg_7d_expense"`
	PredictedIncome7d      float64                   `json:"predicted_income_7d"`
	UpcomingBills7d        float64                   `json:"upcoming_bills_7d"`
	AvailableForObligation float64                   `json:"available_for_obligation"`
	SavingsRate            float64                   `json:"savings_rate"`     // percent, 0-100
	IncomeStability        float64                   `json:"income_stability"` // score, 0-100
}

// StressCheck is the cashflow-stress diagnostic attached to a decision.
type StressCheck struct {
	IsStressed bool    `json:"is_stressed"`
	Reason     string  `json:"reason,omitempty"`
	Threshold  float64 `json:"threshold"`
	Shortfall  float64 `json:"shortfall"`
}

// PlannerDecision is the planner's verdict for one turn.
// Built once, never mutated afterwards.
type PlannerDecision struct {
	Mode             Mode        `json:"mode"`
	Alerts           []string    `json:"alerts"`
	Suggestions      []string    `json:"suggestions"`
	ShouldWarn       bool        `json:"should_warn"`
	PriorityAction   string      `json:"priority_action,omitempty"`
	HealthScore      float64     `json:"health_score"`
	SafeToSpendDaily float64     `json:"safe_to_spend_daily"`
	Stress           StressCheck `json:"cashflow_stress"`
}

// Intent labels what the interpreter thinks the user wants.
type Intent string

const (
	IntentLogIncome  Intent = "log_income"
	IntentLogExpense Intent = "log_expense"
	IntentQuery      Intent = "query"
	IntentAdvice     Intent = "advice"
	IntentGoal       Intent = "goal"
	IntentResearch   Intent = "research"
)

// KnownIntent reports whether the interpreter produced a label we handle.
func KnownIntent(i Intent) bool {
	switch i {
	case IntentLogIncome, IntentLogExpense, IntentQuery, IntentAdvice, IntentGoal, IntentResearch:
		return true
	}
	return false
}

// ParsedIntent is the structured output of the message interpreter.
// Pointer fields distinguish "not mentioned" from zero so the dialogue
// controller can merge turns without clobbering known slots.
type ParsedIntent struct {
	Intent          Intent   `json:"intent"`
	Amount          *float64 `json:"amount"`
	Category        string   `json:"category"`
	TransactionType string   `json:"transaction_type"`
	Date            string   `json:"date"`
	InvestmentType  string   `json:"investment_type"` // "SIP" or "Lumpsum"
	Source          string   `json:"source"`
	RawQuery        string   `json:"raw_query"`
	GoalName        string   `json:"goal_name"`
	DurationYears   *int     `json:"duration_years"`
	RiskProfile     string   `json:"risk_profile"` // "Low", "Moderate", "High"
}

// FundPick is one asset-class line of an allocation plan.
type FundPick struct {
	Weight    float64 `json:"weight"` // fraction of the plan; all picks sum to 1.0
	Fund      string  `json:"fund"`
	Ticker    string  `json:"ticker"`
	UnitPrice float64 `json:"unit_price"`
	Action    string  `json:"action"` // "buy" or "sell"
	CAGR      float64 `json:"expected_cagr"`
}

// Projection is the compounded outcome at one horizon.
type Projection struct {
	Years          int     `json:"years"`
	FutureValue    float64 `json:"future_value"`
	TotalPrincipal float64 `json:"total_principal"`
	WealthGained   float64 `json:"wealth_gained"`
}

// AllocationPlan is the full output of the allocation engine.
// Constructed fresh on every request and replaced atomically, never patched.
type AllocationPlan struct {
	Allocation     map[string]FundPick `json:"allocation"`
	Projections    []Projection        `json:"projections"` // 3, 5 and 10 year horizons
	Rationale      string              `json:"rationale"`
	InstrumentType string              `json:"instrument_type"` // "SIP" or "Lumpsum"
	MonthlyAmount  float64             `json:"monthly_amount"`
	RiskProfile    string              `json:"risk_profile"`
}

// SafetyCheckResult is the outcome of the safety gate. Pure value,
// discarded after the turn.
type SafetyCheckResult struct {
	IsSafe           bool     `json:"is_safe"`
	ModifiedResponse string   `json:"modified_response,omitempty"`
	WarningsAdded    []string `json:"warnings_added"`
	BlockedReason    string   `json:"blocked_reason,omitempty"`
}

// Card is a structured payload rendered by the presentation layer
// alongside the natural-language reply.
type Card struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Data     map[string]any `json:"data"`
}

// Transaction is one ledger entry. Amounts are decimal so balance
// arithmetic never accumulates float drift.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        string          `json:"type"` // "income" or "expense"
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// Holding is a priceable position in the user's portfolio.
type Holding struct {
	Symbol        string          `json:"symbol"`
	Quantity      decimal.Decimal `json:"quantity"`
	AvgBuyPrice   decimal.Decimal `json:"average_buy_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	InvestedValue decimal.Decimal `json:"invested_value"`
	PnL           decimal.Decimal `json:"pnl"`
	PnLPct        decimal.Decimal `json:"pnl_pct"`
}
