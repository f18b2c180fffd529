package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"fundpal/internal/logger"
)

// Client talks to the Telegram Bot API for one bot token.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: "https://api.telegram.org",
		http:    &http.Client{Timeout: 90 * time.Second},
	}
}

// Configured reports whether a bot token was provided.
func (c *Client) Configured() bool {
	return c.token != ""
}

// Send delivers a Markdown message to one chat.
func (c *Client) Send(chatID int64, text string) error {
	if !c.Configured() {
		log.Println("Telegram: token missing, skipping send")
		return nil
	}

	logger.Debugf("telegram send chat=%d: %s", chatID, text)

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	body, _ := json.Marshal(payload)

	resp, err := c.http.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram send: status %s", resp.Status)
	}
	return nil
}
