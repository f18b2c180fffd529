package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Update represents a Telegram Update object (partial schema)
type Update struct {
	UpdateID int `json:"update_id"`
	Message  struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From struct {
			Username string `json:"username"`
		} `json:"from"`
	} `json:"message"`
}

type UpdateResponse struct {
	Ok          bool     `json:"ok"`
	Result      []Update `json:"result"`
	Description string   `json:"description"`
	ErrorCode   int      `json:"error_code"`
}

// MessageHandler processes one inbound message. The user id is derived
// from the chat id so each chat gets its own ledger and dialogue state.
type MessageHandler func(userID, text string) string

// Listen long-polls getUpdates until ctx is cancelled. It blocks, so
// run it in a goroutine.
func (c *Client) Listen(ctx context.Context, handler MessageHandler) {
	if !c.Configured() {
		log.Println("Telegram Listener: token missing, disabled.")
		return
	}

	offset := 0
	log.Println("Telegram Listener: Started")

	for {
		select {
		case <-ctx.Done():
			log.Println("Telegram Listener: Stopped")
			return
		default:
		}

		url := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=60", c.baseURL, c.token, offset)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			log.Printf("Telegram Listener Error: %v", err)
			return
		}
		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Telegram Listener Error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		var result UpdateResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			resp.Body.Close()
			log.Printf("Telegram Decode Error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}
		resp.Body.Close()

		if !result.Ok {
			log.Printf("Telegram API Error: %s (Code: %d)", result.Description, result.ErrorCode)
			time.Sleep(5 * time.Second)
			continue
		}

		for _, update := range result.Result {
			offset = update.UpdateID + 1

			text := strings.TrimSpace(update.Message.Text)
			if text == "" {
				continue
			}

			userID := "tg:" + strconv.FormatInt(update.Message.Chat.ID, 10)
			reply := handler(userID, text)
			if reply == "" {
				continue
			}
			if err := c.Send(update.Message.Chat.ID, reply); err != nil {
				log.Printf("Telegram Reply Failed: %v", err)
			}
		}
	}
}

// ChatID extracts the numeric chat id from a listener user id. It
// returns false for ids that did not come from Telegram.
func ChatID(userID string) (int64, bool) {
	raw, ok := strings.CutPrefix(userID, "tg:")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
