package ai

import (
	"encoding/json"
	"log"
	"strings"

	"fundpal/internal/models"
)

// observerPrompt instructs the model to emit exactly the ParsedIntent
// schema. Category and amount conventions mirror what the transaction
// ledger expects.
const observerPrompt = `You are a financial message parser. Extract structured data from user messages.

CATEGORY MAPPING:
- Food: zomato, swiggy, restaurant, biryani, pizza, chai, groceries, kirana
- Transport: uber, ola, petrol, diesel, metro, bus, auto
- Rent: rent, housing, pg, flat
- Utilities: electricity, water, gas, internet, mobile, recharge
- Entertainment: netflix, movie, spotify, games
- Shopping: amazon, flipkart, clothes, shoes
- Health: medicine, doctor, hospital
- Income sources: salary, freelance, client, rent received, rental income

AMOUNT PARSING: "2k" = 2000, "5 hundred" = 500, "1.5k" = 1500.
DATE PARSING: resolve "yesterday"/"today"/"last week" to ISO 8601 dates.

Return JSON only, with this structure:
{
  "intent": "log_income" | "log_expense" | "query" | "advice" | "goal" | "research",
  "amount": number | null,
  "category": string | null,
  "transaction_type": "income" | "expense" | null,
  "date": "ISO 8601 date" | null,
  "investment_type": "SIP" | "Lumpsum" | null,
  "source": string | null,
  "raw_query": string | null,
  "goal_name": string | null,
  "duration_years": integer | null,
  "risk_profile": "Low" | "Moderate" | "High" | null
}

Examples:
"Invest 5k in SIP for a car in 3 years" -> {"intent":"advice","amount":5000,"investment_type":"SIP","goal_name":"Car","duration_years":3}
"I want to invest for a car" -> {"intent":"advice","goal_name":"Car"}
"I spent 200 on lunch" -> {"intent":"log_expense","amount":200,"category":"Food","transaction_type":"expense"}
"3 years" -> {"intent":"advice","duration_years":3}
"10k" -> {"intent":"advice","amount":10000}
"High risk" -> {"intent":"advice","risk_profile":"High"}`

// Parse turns a free-text message into a structured intent. The model
// contract is not fully reliable, so the output is fence-stripped and
// schema-validated; anything unusable degrades to a generic query
// intent carrying the raw message. Parse never fails the turn.
func (c *Client) Parse(message string) models.ParsedIntent {
	fallback := models.ParsedIntent{Intent: models.IntentQuery, RawQuery: message}

	if !c.Configured() {
		return fallback
	}

	text, err := c.generate(observerPrompt, message, true)
	if err != nil {
		log.Printf("WARNING: intent parse failed, treating as query: %v", err)
		return fallback
	}

	parsed, err := decodeIntent(text)
	if err != nil {
		log.Printf("WARNING: unusable interpreter output, treating as query: %v", err)
		return fallback
	}
	if parsed.RawQuery == "" {
		parsed.RawQuery = message
	}
	return parsed
}

// decodeIntent strips markdown fences the model sometimes wraps around
// its JSON, then validates the schema.
func decodeIntent(text string) (models.ParsedIntent, error) {
	cleaned := StripFences(text)

	var parsed models.ParsedIntent
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return models.ParsedIntent{}, err
	}
	if !models.KnownIntent(parsed.Intent) {
		return models.ParsedIntent{}, &UnknownIntentError{Label: string(parsed.Intent)}
	}
	return parsed, nil
}

// UnknownIntentError marks interpreter output that parsed as JSON but
// carried an intent label outside the schema.
type UnknownIntentError struct {
	Label string
}

func (e *UnknownIntentError) Error() string {
	return "unknown intent label: " + e.Label
}

// StripFences removes ```json fences and surrounding noise from model
// output.
func StripFences(text string) string {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
