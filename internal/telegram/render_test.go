package telegram

import (
	"strings"
	"testing"

	"fundpal/internal/models"
)

func TestRenderCard(t *testing.T) {
	card := models.Card{
		Type:     "transaction_confirmation",
		Title:    "Expense Logged",
		Subtitle: "Food",
		Data: map[string]any{
			"amount":      1234.5,
			"new_balance": 48765.44,
		},
	}

	out := RenderCard(card)
	for _, want := range []string{"*Expense Logged*", "_Food_", "Amount: ₹1,234.5", "New Balance: ₹48,765.44"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered card missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReplyJoinsCards(t *testing.T) {
	out := RenderReply("Got it!", []models.Card{
		{Title: "A", Data: map[string]any{"x": 1}},
		{Title: "B", Data: map[string]any{"y": "two"}},
	})
	if !strings.HasPrefix(out, "Got it!") {
		t.Errorf("reply text should lead: %q", out)
	}
	if !strings.Contains(out, "*A*") || !strings.Contains(out, "*B*") {
		t.Errorf("cards missing from reply: %q", out)
	}
}

func TestChatID(t *testing.T) {
	if id, ok := ChatID("tg:12345"); !ok || id != 12345 {
		t.Errorf("ChatID(tg:12345) = %d, %v", id, ok)
	}
	if _, ok := ChatID("web:abc"); ok {
		t.Error("non-telegram id should not parse")
	}
	if _, ok := ChatID("tg:notanumber"); ok {
		t.Error("garbage chat id should not parse")
	}
}
