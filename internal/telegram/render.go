package telegram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"fundpal/internal/models"
)

// RenderCard formats a structured card as a Markdown block appended
// under the natural-language reply.
func RenderCard(card models.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", card.Title)
	if card.Subtitle != "" {
		fmt.Fprintf(&b, "_%s_\n", card.Subtitle)
	}

	keys := make([]string, 0, len(card.Data))
	for k := range card.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(&b, "• %s: %s\n", labelFor(k), formatValue(card.Data[k]))
	}
	return b.String()
}

// RenderReply joins the reply text with its cards.
func RenderReply(text string, cards []models.Card) string {
	parts := []string{text}
	for _, card := range cards {
		parts = append(parts, RenderCard(card))
	}
	return strings.Join(parts, "\n\n")
}

func labelFor(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func formatValue(v any) string {
	switch n := v.(type) {
	case float64:
		return "₹" + humanize.CommafWithDigits(n, 2)
	case int:
		return humanize.Comma(int64(n))
	case int64:
		return humanize.Comma(n)
	case string:
		return n
	}
	return fmt.Sprintf("%v", v)
}
