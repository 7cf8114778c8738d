// Package rewrite turns raw alert text into an editorial post via an
// OpenAI-compatible chat completion endpoint.
package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GroqConfig holds the completion endpoint settings.
type GroqConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Groq calls the Groq chat-completions API.
type Groq struct {
	cfg    GroqConfig
	client *http.Client
}

// NewGroq builds the client.
func NewGroq(cfg GroqConfig) (*Groq, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Groq{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

const promptTemplate = `You are a professional Cricket News Editor for a WhatsApp channel.
Rewrite the raw match data into a CRISP NARRATIVE post.

YOUR OUTPUT MUST MIRROR THE TONE OF THESE EXAMPLES.

EXAMPLE 1 (Toss):
🏏 TOSS UPDATE – ENG vs SL 🏏
Sri Lanka have won the toss and elected to bowl first in their Super 8 opener at the Pallekele International Cricket Stadium.

A massive game in Group 2 to kick off the business end. The Lankan Lions will look to exploit the early moisture on a surface that promises plenty of turn. Game on!

EXAMPLE 2 (Match Update):
🏏 10 OVER UPDATE – ENG vs SL 🏏
England find themselves in a tough spot, reaching 68/4 after 10 overs in their Super 8 opener.

Phil Salt (37*) is leading a lone fightback, but Sri Lanka's spinners have dominated, including the massive wicket of captain Harry Brook (14) right at the 10-over mark. The middle order needs to stabilize quickly or risk a complete collapse.

RULES:
1. Exactly 1 Heading and 2 narrative paragraphs.
2. IMPORTANT: Use a double newline (\n\n) to create a clear blank space between the two paragraphs.
3. Length: 3-4 sentences total.
4. No bullet points or labels. Weave stats into natural sentences.

%s
MATCH DATA: %s`

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Rewrite produces the editorial copy for one alert. The input is truncated
// to keep the prompt inside the model's cheap range.
func (g *Groq) Rewrite(ctx context.Context, text, battingSide string) (string, error) {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return "", nil
	}
	if len(clean) > 400 {
		clean = clean[:400]
	}
	hint := ""
	if battingSide != "" {
		hint = fmt.Sprintf("\nTEAM CONTEXT: %s is currently batting.", battingSide)
	}

	body, err := json.Marshal(chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an elite cricket news editor."},
			{Role: "user", Content: fmt.Sprintf(promptTemplate, hint, clean)},
		},
		Temperature: 0.5,
		MaxTokens:   200,
		TopP:        0.9,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completion: status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	out := strings.TrimSpace(parsed.Choices[0].Message.Content)
	return strings.ReplaceAll(out, "\n\n\n", "\n\n"), nil
}
