package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Update is one operator message from the control chat.
type Update struct {
	ID   int64
	Text string
}

// Source yields operator updates newer than the given offset.
type Source interface {
	Updates(ctx context.Context, offset int64) ([]Update, error)
}

// TelegramSourceConfig holds the polling credentials.
type TelegramSourceConfig struct {
	BotToken string
	Timeout  time.Duration
	// APIBase overrides the Telegram endpoint in tests.
	APIBase string
}

// TelegramSource reads commands through the Bot API's getUpdates long poll.
type TelegramSource struct {
	cfg    TelegramSourceConfig
	client *http.Client
}

// NewTelegramSource builds the source.
func NewTelegramSource(cfg TelegramSourceConfig) (*TelegramSource, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.telegram.org"
	}
	return &TelegramSource{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

type getUpdatesResponse struct {
	OK     bool `json:"ok"`
	Result []struct {
		UpdateID int64 `json:"update_id"`
		Message  *struct {
			Text string `json:"text"`
		} `json:"message"`
		ChannelPost *struct {
			Text string `json:"text"`
		} `json:"channel_post"`
	} `json:"result"`
}

func (s *TelegramSource) Updates(ctx context.Context, offset int64) ([]Update, error) {
	params := url.Values{"timeout": {"5"}}
	if offset > 0 {
		params.Set("offset", strconv.FormatInt(offset+1, 10))
	}
	endpoint := fmt.Sprintf("%s/bot%s/getUpdates?%s", s.cfg.APIBase, s.cfg.BotToken, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build getUpdates request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}
	defer resp.Body.Close()

	var parsed getUpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode getUpdates: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("getUpdates: not ok")
	}

	var updates []Update
	for _, r := range parsed.Result {
		text := ""
		switch {
		case r.Message != nil:
			text = r.Message.Text
		case r.ChannelPost != nil:
			text = r.ChannelPost.Text
		}
		updates = append(updates, Update{ID: r.UpdateID, Text: text})
	}
	return updates, nil
}
