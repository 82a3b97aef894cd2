// Package assistant is the thin boundary to the external language model. Each
// call is a single chat-completions round trip; failures surface to the caller
// and are never retried here.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultLanguage = "English"

// Config carries the endpoint settings. The client is constructed explicitly
// and passed around; there is no package-level singleton.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ParsedMedicine is the schema-constrained output of free-text parsing.
type ParsedMedicine struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	TimeOfDay    string `json:"time_of_day"`
	Instructions string `json:"instructions"`
	DurationDays *int   `json:"duration_days,omitempty"`
}

func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", fmt.Errorf("assistant API key is not configured")
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: 1,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("contacting assistant: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("assistant returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding assistant response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("assistant returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// ParseMedicine turns free text like "take 2 paracetamol after dinner for a
// week" into structured medicine fields. A response that does not parse as the
// expected JSON is an error; no partial medicine is ever produced.
func (c *Client) ParseMedicine(ctx context.Context, text string) (*ParsedMedicine, error) {
	prompt := `Extract medicine details from the text below. Return ONLY JSON with this schema:
{
  "name": "string",
  "dosage": "string",
  "frequency": "string",
  "time_of_day": "string",
  "instructions": "string",
  "duration_days": number (optional)
}

Text: ` + text

	content, err := c.complete(ctx, []Message{
		{Role: "system", Content: "You must output valid JSON only. Never include markdown code fences."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	var parsed ParsedMedicine
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &parsed); err != nil {
		return nil, fmt.Errorf("assistant returned unparseable medicine: %w", err)
	}
	if strings.TrimSpace(parsed.Name) == "" {
		return nil, fmt.Errorf("assistant could not identify a medicine name")
	}
	return &parsed, nil
}

// Chat runs a multi-turn health conversation under a fixed persona, answering
// in the user's preferred language.
func (c *Client) Chat(ctx context.Context, history []Message, language string) (string, error) {
	if strings.TrimSpace(language) == "" {
		language = defaultLanguage
	}
	persona := fmt.Sprintf(
		"You are a friendly medication-adherence assistant. Answer general health "+
			"and medication questions briefly and clearly, remind users to consult a "+
			"doctor for medical decisions, and respond in %s.", language)

	messages := append([]Message{{Role: "system", Content: persona}}, history...)
	return c.complete(ctx, messages)
}

// Insights summarizes a behavior-analysis payload into short prose.
func (c *Client) Insights(ctx context.Context, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	prompt := "Summarize this medication adherence data into 2-3 short, encouraging " +
		"insights for the user. Plain prose, no lists, no JSON.\n\n" + string(data)

	return c.complete(ctx, []Message{
		{Role: "system", Content: "You are a medication-adherence coach."},
		{Role: "user", Content: prompt},
	})
}

// Translate renders text in the target language. Requesting the default
// language is a no-op and costs no round trip.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	target := strings.TrimSpace(targetLanguage)
	if target == "" || strings.EqualFold(target, defaultLanguage) {
		return text, nil
	}
	prompt := fmt.Sprintf("Translate the following text to %s. Return only the translation.\n\n%s", target, text)
	return c.complete(ctx, []Message{{Role: "user", Content: prompt}})
}

// stripCodeFences tolerates models that wrap JSON in markdown fences despite
// the system instruction.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
