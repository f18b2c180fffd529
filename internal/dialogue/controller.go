// Package dialogue runs the multi-turn slot-filling conversation that
// gathers investment parameters. State is per user, in memory only: a
// process restart drops in-flight conversations by design.
package dialogue

import (
	"strings"
	"sync"

	"fundpal/internal/allocation"
	"fundpal/internal/models"
)

// Slots are the named parameters collected across turns. Amount, goal
// and duration are required; risk and instrument type have defaults.
type Slots struct {
	Amount         *float64
	GoalName       string
	DurationYears  *int
	RiskProfile    string
	InstrumentType string // "SIP" unless the user explicitly asked for a lumpsum
}

// Outcome is what one turn of the dialogue produced: either a single
// clarifying question, or a complete request ready for the allocation
// engine.
type Outcome struct {
	Question string
	Ready    bool
	Request  allocation.Request
}

// Controller owns the per-user slot store. A session-level mutex keeps
// each user's merge-and-decide atomic, so two near-simultaneous
// messages for the same user cannot lose slots to interleaving.
type Controller struct {
	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu    sync.Mutex
	slots Slots
}

// NewController returns an empty controller.
func NewController() *Controller {
	return &Controller{sessions: make(map[string]*session)}
}

// investment keywords that open a collecting session even without an
// explicit instrument type from the interpreter.
var investmentKeywords = []string{"invest", "sip", "lumpsum", "mutual fund", "allocation"}

// WantsInvestment reports whether this turn should enter (or continue)
// the slot-filling flow.
func (c *Controller) WantsInvestment(userID, message string, parsed models.ParsedIntent) bool {
	if parsed.InvestmentType != "" || parsed.GoalName != "" || parsed.DurationYears != nil {
		return true
	}
	lower := strings.ToLower(message)
	for _, kw := range investmentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return c.Active(userID)
}

// Active reports whether the user has an open collecting session.
func (c *Controller) Active(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[userID]
	return ok
}

// Observe merges the turn's extracted fields into the user's session
// and decides the next step. Required slots are checked in fixed
// priority order (amount, goal, duration) and at most one question is
// asked per turn. Once every required slot is present the session is
// deleted and a ready request is returned.
func (c *Controller) Observe(userID, message string, parsed models.ParsedIntent, profile models.UserProfile) Outcome {
	s := c.session(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	merge(&s.slots, message, parsed)

	if question, missing := nextQuestion(s.slots); missing {
		return Outcome{Question: question}
	}

	req := s.slots.request(profile)
	c.drop(userID)
	return Outcome{Ready: true, Request: req}
}

// Abandon discards any open session for the user.
func (c *Controller) Abandon(userID string) {
	c.drop(userID)
}

func (c *Controller) session(userID string) *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[userID]
	if !ok {
		s = &session{}
		c.sessions[userID] = s
	}
	return s
}

func (c *Controller) drop(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, userID)
}

// merge overlays newly extracted values onto the stored slots. New
// non-null values always win: last mentioned, no confirmation step.
func merge(slots *Slots, message string, parsed models.ParsedIntent) {
	if parsed.Amount != nil {
		slots.Amount = parsed.Amount
	}
	if parsed.GoalName != "" {
		slots.GoalName = parsed.GoalName
	}
	if parsed.DurationYears != nil {
		slots.DurationYears = parsed.DurationYears
	}
	if parsed.RiskProfile != "" {
		slots.RiskProfile = parsed.RiskProfile
	}
	if parsed.InvestmentType != "" {
		slots.InstrumentType = parsed.InvestmentType
	} else if strings.Contains(strings.ToLower(message), "lumpsum") {
		slots.InstrumentType = "Lumpsum"
	}
}

// nextQuestion returns the clarifying question for the first missing
// required slot, in priority order.
func nextQuestion(s Slots) (string, bool) {
	switch {
	case s.Amount == nil:
		return "How much would you like to invest each month?", true
	case s.GoalName == "":
		return "What are you investing for? A goal like a car, a house, or retirement helps me plan.", true
	case s.DurationYears == nil:
		return "How many years do you want to stay invested?", true
	}
	return "", false
}

// request converts filled slots into an allocation request. Only a
// risk the user actually stated becomes an override; the profile's
// tolerance stays a label, so the age and duration tables keep
// deciding the map for users who never mentioned risk.
func (s Slots) request(profile models.UserProfile) allocation.Request {
	instrument := s.InstrumentType
	if instrument == "" {
		instrument = "SIP"
	}

	return allocation.Request{
		GoalName:       s.GoalName,
		DurationYears:  s.DurationYears,
		RiskOverride:   s.RiskProfile,
		Amount:         s.Amount,
		InstrumentType: instrument,
	}
}
