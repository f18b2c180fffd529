// Package orchestrator runs one conversation turn end to end: parse
// the message, persist what it says, rebuild the financial state, run
// the planner, branch into the investment dialogue when asked, phrase
// the reply, and pass everything through the safety gate last.
package orchestrator

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fundpal/internal/allocation"
	"fundpal/internal/dialogue"
	"fundpal/internal/models"
	"fundpal/internal/planner"
	"fundpal/internal/portfolio"
	"fundpal/internal/safety"
	"fundpal/internal/store"
)

// Interpreter turns free text into a structured intent.
type Interpreter interface {
	Parse(message string) models.ParsedIntent
}

// Coach phrases a decision for the user at their literacy level.
type Coach interface {
	Respond(literacy int, situation string, decision models.PlannerDecision, messageGoal string) (string, error)
}

// Reply is the full output of one turn.
type Reply struct {
	Text  string
	Cards []models.Card
}

// Orchestrator wires the decision core together. The pipeline order is
// fixed; the safety gate always runs last so nothing bypasses it.
type Orchestrator struct {
	store       *store.Store
	interpreter Interpreter
	planner     *planner.Planner
	dialogue    *dialogue.Controller
	engine      *allocation.Engine
	coach       Coach
	gate        *safety.Gate
	portfolio   *portfolio.Service
	now         func() time.Time
}

func New(st *store.Store, in Interpreter, pl *planner.Planner, dc *dialogue.Controller,
	eng *allocation.Engine, coach Coach, gate *safety.Gate, pf *portfolio.Service) *Orchestrator {
	return &Orchestrator{
		store:       st,
		interpreter: in,
		planner:     pl,
		dialogue:    dc,
		engine:      eng,
		coach:       coach,
		gate:        gate,
		portfolio:   pf,
		now:         time.Now,
	}
}

// Handle processes one inbound message for one user.
func (o *Orchestrator) Handle(userID, message string) (Reply, error) {
	profile, err := o.store.GetProfile(userID)
	if errors.Is(err, store.ErrUnknownUser) {
		profile = defaultProfile(userID)
		if err := o.store.SaveProfile(profile); err != nil {
			return Reply{}, fmt.Errorf("create profile: %w", err)
		}
	} else if err != nil {
		return Reply{}, err
	}

	// Slash commands execute directly: no model call, no ledger write
	// besides what the command itself does.
	command := strings.HasPrefix(strings.TrimSpace(message), "/")

	var cards []models.Card
	parsed := models.ParsedIntent{Intent: models.IntentQuery, RawQuery: message}
	if !command {
		parsed = o.interpreter.Parse(message)
		if card, err := o.persist(userID, parsed); err != nil {
			return Reply{}, err
		} else if card != nil {
			cards = append(cards, *card)
		}
	}

	state, err := o.store.ComputeState(userID, o.now())
	if err != nil {
		return Reply{}, err
	}
	decision := o.planner.Analyze(state)

	var text string
	var extraCard *models.Card
	if command {
		text, extraCard = o.runCommand(userID, message)
	} else {
		text, extraCard = o.respond(userID, message, parsed, profile, state, decision)
	}
	if extraCard != nil {
		cards = append(cards, *extraCard)
	}

	result := o.gate.Check(userID, text, profile, state, deriveRecommendation(message))
	if !result.IsSafe {
		o.dialogue.Abandon(userID)
		return Reply{Text: fmt.Sprintf("%s. Let's focus on safer options for your money.", result.BlockedReason)}, nil
	}
	text = result.ModifiedResponse
	for _, w := range result.WarningsAdded {
		text += "\n⚠️ " + w
	}
	return Reply{Text: text, Cards: cards}, nil
}

// persist writes any transaction the message described. A write
// failure fails the whole turn: confirming something that was not
// saved is worse than an error message.
func (o *Orchestrator) persist(userID string, parsed models.ParsedIntent) (*models.Card, error) {
	var txType string
	switch parsed.Intent {
	case models.IntentLogIncome:
		txType = "income"
	case models.IntentLogExpense:
		txType = "expense"
	default:
		return nil, nil
	}
	if parsed.Amount == nil || *parsed.Amount <= 0 {
		return nil, nil
	}

	description := parsed.Source
	if description == "" {
		description = parsed.RawQuery
	}
	txn, err := o.store.AddTransaction(userID, txType, decimal.NewFromFloat(*parsed.Amount),
		parsed.Category, description, o.now())
	if err != nil {
		return nil, fmt.Errorf("persist transaction: %w", err)
	}

	balance, err := o.store.Balance(userID)
	if err != nil {
		return nil, err
	}

	title := "Expense Logged"
	if txType == "income" {
		title = "Income Logged"
	}
	return &models.Card{
		Type:     "transaction_confirmation",
		Title:    title,
		Subtitle: txn.Category,
		Data: map[string]any{
			"amount":      *parsed.Amount,
			"new_balance": balance.InexactFloat64(),
		},
	}, nil
}

// respond picks the turn's reply text and optional card, before the
// safety gate has seen it.
func (o *Orchestrator) respond(userID, message string, parsed models.ParsedIntent,
	profile models.UserProfile, state models.UserFinancialState, decision models.PlannerDecision) (string, *models.Card) {

	if isPortfolioQuery(message) {
		return o.portfolioReply(userID)
	}

	if o.dialogue.WantsInvestment(userID, message, parsed) {
		outcome := o.dialogue.Observe(userID, message, parsed, profile)
		if !outcome.Ready {
			return outcome.Question, nil
		}
		return o.investmentReply(userID, profile, decision, outcome.Request)
	}

	goal := messageGoal(parsed, decision)
	text, err := o.coach.Respond(profile.LiteracyLevel, situation(state), decision, goal)
	if err != nil {
		log.Printf("coach failed for %s: %v", userID, err)
		text = goal
	}
	return text, nil
}

// investmentReply builds and persists an allocation plan once the
// dialogue has every slot.
func (o *Orchestrator) investmentReply(userID string, profile models.UserProfile,
	decision models.PlannerDecision, req allocation.Request) (string, *models.Card) {

	plan := o.engine.BuildPlan(profile, req)
	if err := o.store.SaveInvestments(userID, plan); err != nil {
		log.Printf("save plan for %s: %v", userID, err)
	}

	data := map[string]any{
		"monthly_amount": plan.MonthlyAmount,
		"risk_profile":   plan.RiskProfile,
	}
	for class, pick := range plan.Allocation {
		data[strings.ToLower(class)+"_weight"] = fmt.Sprintf("%.0f%% (%s)", pick.Weight*100, pick.Fund)
	}
	for _, p := range plan.Projections {
		data[fmt.Sprintf("value_in_%d_years", p.Years)] = p.FutureValue
	}
	card := &models.Card{
		Type:     "investment_allocation",
		Title:    fmt.Sprintf("%s Plan: %s", plan.InstrumentType, req.GoalName),
		Subtitle: plan.Rationale,
		Data:     data,
	}

	goal := fmt.Sprintf("I suggest a %s of ₹%.0f per month. %s.", plan.InstrumentType, plan.MonthlyAmount, plan.Rationale)
	text, err := o.coach.Respond(profile.LiteracyLevel, "planning an investment", decision, goal)
	if err != nil {
		text = goal
	}
	return text, card
}

const commandUsage = "Commands: /buy TICKER AMOUNT, /sell TICKER UNITS, /portfolio, /recent"

// runCommand executes a slash command against the simulated portfolio.
// Tickers come from the user's accepted plan card.
func (o *Orchestrator) runCommand(userID, message string) (string, *models.Card) {
	fields := strings.Fields(strings.TrimSpace(message))

	switch strings.ToLower(fields[0]) {
	case "/portfolio":
		return o.portfolioReply(userID)

	case "/recent":
		return o.recentReply(userID)

	case "/buy":
		if len(fields) != 3 {
			return "Usage: /buy TICKER AMOUNT, e.g. /buy NIFTYBEES.NS 5000", nil
		}
		symbol := strings.ToUpper(fields[1])
		amount, err := decimal.NewFromString(fields[2])
		if err != nil {
			return fmt.Sprintf("I couldn't read %q as an amount.", fields[2]), nil
		}
		h, err := o.portfolio.Buy(userID, symbol, amount)
		if errors.Is(err, portfolio.ErrInsufficientBalance) {
			return "Your balance doesn't cover that buy. Log some income first or try a smaller amount.", nil
		}
		if err != nil {
			log.Printf("buy %s for %s: %v", symbol, userID, err)
			return fmt.Sprintf("The buy didn't go through: %v.", err), nil
		}
		return fmt.Sprintf("Bought ₹%s of %s.", amount, symbol), tradeCard("Buy Executed", symbol, h)

	case "/sell":
		if len(fields) != 3 {
			return "Usage: /sell TICKER UNITS, e.g. /sell NIFTYBEES.NS 10", nil
		}
		symbol := strings.ToUpper(fields[1])
		units, err := decimal.NewFromString(fields[2])
		if err != nil {
			return fmt.Sprintf("I couldn't read %q as a unit count.", fields[2]), nil
		}
		h, err := o.portfolio.Sell(userID, symbol, units)
		if errors.Is(err, portfolio.ErrInsufficientUnits) {
			return "You don't hold that many units. Check /portfolio for what you have.", nil
		}
		if err != nil {
			log.Printf("sell %s for %s: %v", symbol, userID, err)
			return fmt.Sprintf("The sell didn't go through: %v.", err), nil
		}
		return fmt.Sprintf("Sold %s units of %s.", units, symbol), tradeCard("Sell Executed", symbol, h)
	}

	return commandUsage, nil
}

func tradeCard(title, symbol string, h models.Holding) *models.Card {
	return &models.Card{
		Type:     "trade_execution",
		Title:    title,
		Subtitle: symbol,
		Data: map[string]any{
			"units_held": h.Quantity.String(),
			"avg_price":  h.AvgBuyPrice.InexactFloat64(),
			"last_price": h.CurrentPrice.InexactFloat64(),
		},
	}
}

const recentWindow = 30 * 24 * time.Hour

// recentReply lists the last month's ledger entries, newest first.
func (o *Orchestrator) recentReply(userID string) (string, *models.Card) {
	now := o.now()
	txns, err := o.store.Transactions(userID, now.Add(-recentWindow), now)
	if err != nil {
		log.Printf("recent transactions for %s: %v", userID, err)
		return "I couldn't load your transactions right now. Try again in a bit.", nil
	}
	if len(txns) == 0 {
		return "Nothing logged in the last 30 days. Tell me about a spend or income and I'll track it.", nil
	}

	const limit = 10
	shown := txns
	if len(shown) > limit {
		shown = shown[:limit]
	}
	data := make(map[string]any, len(shown))
	for i, txn := range shown {
		sign := "-"
		if txn.Type == "income" {
			sign = "+"
		}
		key := fmt.Sprintf("%02d %s %s", i+1, txn.Date.Format("Jan 2"), txn.Category)
		data[key] = fmt.Sprintf("%s₹%s", sign, txn.Amount)
	}
	return fmt.Sprintf("Your last %d transactions.", len(shown)), &models.Card{
		Type:     "recent_transactions",
		Title:    "Recent Transactions",
		Subtitle: "last 30 days",
		Data:     data,
	}
}

func (o *Orchestrator) portfolioReply(userID string) (string, *models.Card) {
	sum, err := o.portfolio.Get(userID)
	if err != nil {
		log.Printf("portfolio for %s: %v", userID, err)
		return "I couldn't load your portfolio right now. Try again in a bit.", nil
	}
	if len(sum.Holdings) == 0 {
		return "You don't hold any investments yet. Say \"invest\" and we can set up a plan.", nil
	}

	data := map[string]any{
		"invested":  sum.InvestedValue.InexactFloat64(),
		"current":   sum.CurrentValue.InexactFloat64(),
		"total_pnl": sum.TotalPnL.InexactFloat64(),
	}
	for _, h := range sum.Holdings {
		data[h.Symbol] = fmt.Sprintf("%s units, P&L %s", h.Quantity, h.PnL.Round(2))
	}
	return "Here's where your portfolio stands today.", &models.Card{
		Type:  "portfolio_summary",
		Title: "Your Portfolio",
		Data:  data,
	}
}

// messageGoal states what the reply should communicate, per intent.
func messageGoal(parsed models.ParsedIntent, decision models.PlannerDecision) string {
	switch parsed.Intent {
	case models.IntentLogIncome:
		return "Got it, your income is logged."
	case models.IntentLogExpense:
		if decision.ShouldWarn {
			return "Your expense is logged, but spending needs attention."
		}
		return "Got it, your expense is logged."
	case models.IntentAdvice:
		return "Answer their money question using the current numbers."
	case models.IntentGoal:
		return "Acknowledge the goal and say what reaching it takes."
	case models.IntentResearch:
		return "Explain the concept they asked about in plain terms."
	}
	return "Answer their question about their finances."
}

func situation(state models.UserFinancialState) string {
	return fmt.Sprintf("balance ₹%.0f, about %.1f months of emergency fund, savings rate %.0f%%",
		state.CurrentBalance, state.EmergencyFundMonths, state.SavingsRate)
}

func isPortfolioQuery(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "portfolio") || strings.Contains(lower, "my holdings")
}

// recommendationPatterns maps message phrasings to the safety gate's
// recommendation categories.
var recommendationPatterns = []struct {
	category string
	phrases  []string
}{
	{"crypto", []string{"crypto", "bitcoin", "ethereum"}},
	{"futures_options", []string{"futures", "options", "f&o"}},
	{"penny_stocks", []string{"penny stock"}},
	{"chit_fund", []string{"chit fund"}},
	{"skip_emi", []string{"skip emi", "skip my emi", "miss emi"}},
	{"skip_rent", []string{"skip rent", "skip my rent"}},
	{"skip_medicine", []string{"skip medicine", "skip my medicine"}},
}

func deriveRecommendation(message string) string {
	lower := strings.ToLower(message)
	for _, p := range recommendationPatterns {
		for _, phrase := range p.phrases {
			if strings.Contains(lower, phrase) {
				return p.category
			}
		}
	}
	return ""
}

// defaultProfile seeds a first-contact user with moderate assumptions
// until they tell us otherwise.
func defaultProfile(userID string) models.UserProfile {
	return models.UserProfile{
		UserID:        userID,
		AgeBracket:    models.Age26To35,
		RiskTolerance: models.RiskModerate,
		IncomeType:    models.IncomeSalaried,
		LiteracyLevel: 2,
	}
}
