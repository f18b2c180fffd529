package ai

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"fundpal/internal/models"
)

// Literacy-tiered system prompts. The tier changes vocabulary, not
// substance: the same decision is phrased for whoever is reading it.
var coachPrompts = map[int]string{
	1: `You are FundPal, a friendly money helper.
The user has LOW financial literacy.
- Use VERY simple words, no jargon (no "cashflow", "volatility", "portfolio")
- Use examples from daily life, short sentences, emojis sparingly
- Be encouraging, never judgmental`,
	2: `You are FundPal, a helpful financial assistant.
The user has MEDIUM financial literacy.
- Terms like budget, EMI, savings, emergency fund, interest are fine
- Avoid complex terms like portfolio allocation or liquidity ratio
- Be friendly but informative, include specific numbers, explain "why" briefly`,
	3: `You are FundPal, a knowledgeable financial coach.
The user has HIGH financial literacy.
- Terms like SIP, mutual funds, debt-to-income ratio, compound interest are fine
- Be concise and data-driven, include percentages and projections
- Skip basic explanations, focus on actionable insights`,
}

// Respond phrases a structured decision for the user. With no model
// configured it falls back to a plain deterministic rendering so the
// assistant still answers.
func (c *Client) Respond(literacy int, situation string, decision models.PlannerDecision, messageGoal string) (string, error) {
	if !c.Configured() {
		return fallbackResponse(decision, messageGoal), nil
	}

	prompt, ok := coachPrompts[literacy]
	if !ok {
		prompt = coachPrompts[2]
	}

	decisionJSON, _ := json.Marshal(decision)
	user := fmt.Sprintf("User situation: %s\nPlanner decision: %s\nWhat to communicate: %s\n\nGenerate a response:",
		situation, string(decisionJSON), messageGoal)

	text, err := c.generate(prompt, user, false)
	if err != nil {
		log.Printf("WARNING: coach generation failed, using plain rendering: %v", err)
		return fallbackResponse(decision, messageGoal), nil
	}
	return strings.TrimSpace(text), nil
}

// fallbackResponse is the no-model rendering: the message goal plus the
// planner's alerts and priority, stated plainly.
func fallbackResponse(decision models.PlannerDecision, messageGoal string) string {
	var b strings.Builder
	b.WriteString(messageGoal)
	for _, alert := range decision.Alerts {
		b.WriteString("\n⚠️ ")
		b.WriteString(alert)
	}
	if decision.PriorityAction != "" {
		b.WriteString("\nNext step: ")
		b.WriteString(decision.PriorityAction)
	}
	return b.String()
}
