// Package safety is the final checkpoint before any advice reaches the
// user. It can hard-block a recommendation category, soften risky
// language with contextual warnings, and appends the educational
// disclaimer to anything that reads like advice.
package safety

import (
	"log"
	"strings"
	"time"

	"fundpal/internal/models"
)

// Disclaimer is appended verbatim, at most once, to advisory text.
const Disclaimer = "💡 This is educational info, not financial advice."

// blockedRecommendations never change at runtime. If the turn's
// recommendation category lands here the gate refuses outright; this is
// an intentional refusal, not an error.
var blockedRecommendations = map[string]bool{
	"skip_emi":        true,
	"skip_rent":       true,
	"skip_medicine":   true,
	"crypto":          true,
	"futures_options": true,
	"penny_stocks":    true,
	"chit_fund":       true,
}

// AuditSink records every gate invocation for the audit trail.
type AuditSink interface {
	RecordSafety(userID string, result models.SafetyCheckResult, context string) error
}

// Gate applies the safety rules in fixed order.
type Gate struct {
	audit AuditSink
}

// NewGate builds a gate. A nil sink disables persistence but the gate
// still logs every decision.
func NewGate(audit AuditSink) *Gate {
	return &Gate{audit: audit}
}

// Check runs the rules over the generated response. The rule order is
// part of the contract: the hard block list always evaluates first and
// short-circuits; the disclaimer rule runs last and is idempotent.
func (g *Gate) Check(userID, response string, profile models.UserProfile, state models.UserFinancialState, recommendationType string) models.SafetyCheckResult {
	result := g.check(response, profile, state, recommendationType)
	g.logDecision(userID, result, recommendationType)
	return result
}

func (g *Gate) check(response string, profile models.UserProfile, state models.UserFinancialState, recommendationType string) models.SafetyCheckResult {
	lower := strings.ToLower(response)

	// Rule 1: hard blocks. No modified text, no further rules.
	if blockedRecommendations[recommendationType] {
		return models.SafetyCheckResult{
			IsSafe:        false,
			WarningsAdded: []string{},
			BlockedReason: "Cannot recommend " + recommendationType,
		}
	}

	warnings := []string{}

	// Rule 2: risk alignment for investment talk.
	if strings.Contains(lower, "invest") || strings.Contains(lower, "mutual fund") {
		if profile.RiskTolerance == models.RiskConservative {
			warnings = append(warnings, "Note: Only consider low-risk options like FD or RD")
		}
		if state.EmergencyFundMonths < 3 {
			warnings = append(warnings, "Priority: Build emergency fund before investing")
		}
	}

	// Rule 3: affordability.
	if strings.Contains(lower, "save") || strings.Contains(lower, "invest") {
		if profile.MonthlySurplus < 1000 {
			warnings = append(warnings, "Focus on essentials first given your current surplus")
		}
	}

	// Rule 4: recurring commitments against variable income.
	if profile.IncomeType == models.IncomeGig {
		if strings.Contains(lower, "sip") || strings.Contains(lower, "recurring") {
			warnings = append(warnings, "Consider flexible savings given variable income")
		}
	}

	// Rule 5: disclaimer on advisory language, exactly once.
	modified := response
	if containsAdvisoryLanguage(lower) && !strings.Contains(response, Disclaimer) {
		modified = response + "\n\n" + Disclaimer
	}

	return models.SafetyCheckResult{
		IsSafe:           true,
		ModifiedResponse: modified,
		WarningsAdded:    warnings,
	}
}

var advisoryWords = []string{"suggest", "recommend", "should", "advice"}

func containsAdvisoryLanguage(lower string) bool {
	for _, w := range advisoryWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// logDecision records the invocation whether or not the response was
// blocked. The audit trail failing must never fail the turn.
func (g *Gate) logDecision(userID string, result models.SafetyCheckResult, context string) {
	log.Printf("safety check user=%s safe=%t blocked=%q warnings=%d at=%s",
		userID, result.IsSafe, result.BlockedReason, len(result.WarningsAdded), time.Now().Format(time.RFC3339))

	if g.audit == nil {
		return
	}
	if err := g.audit.RecordSafety(userID, result, context); err != nil {
		log.Printf("WARNING: safety audit write failed: %v", err)
	}
}
