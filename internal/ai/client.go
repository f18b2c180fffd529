// Package ai talks to the Gemini REST API for the two language tasks
// the assistant outsources: parsing free text into a structured intent
// and phrasing a structured decision back into natural language.
package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client is a minimal Gemini REST client. With no API key configured
// it stays usable: callers get deterministic fallbacks instead of
// errors, so the rest of the pipeline keeps working.
type Client struct {
	apiKey string
	url    string
	http   *http.Client
}

// NewClient builds a client from explicit credentials. An empty key is
// allowed and switches every language task to its fallback path.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if apiKey == "" {
		log.Println("WARNING: GEMINI_API_KEY not set. Language features run in fallback mode.")
	}

	return &Client{
		apiKey: apiKey,
		url:    fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent", model),
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether live model calls are possible.
func (c *Client) Configured() bool { return c.apiKey != "" }

// generate sends one system+user exchange and returns the model's text.
// jsonOutput forces the JSON response mime type for structured tasks.
func (c *Client) generate(systemInstruction, userText string, jsonOutput bool) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("ai client not configured")
	}

	payload := map[string]any{
		"system_instruction": map[string]any{
			"parts": map[string]any{"text": systemInstruction},
		},
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": userText}}},
		},
	}
	if jsonOutput {
		payload["generationConfig"] = map[string]any{"response_mime_type": "application/json"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.url+"?key="+c.apiKey, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ai api error %d: %s", resp.StatusCode, string(b))
	}

	// candidates[0].content.parts[0].text
	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in ai response")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
