package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charleschow/nhl-companion/internal/core/state/watch"
	"github.com/charleschow/nhl-companion/internal/events"
	"github.com/charleschow/nhl-companion/internal/telemetry"
)

// Notifier posts notification intents to the session's HTTPS webhook. The
// payload carries both a Discord/Slack-style "content" line and structured
// fields for generic receivers.
type Notifier struct {
	httpClient *http.Client
}

func NewNotifier() *Notifier {
	return &Notifier{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// NewNotifierWithClient is used by tests to reach an httptest TLS server.
func NewNotifierWithClient(hc *http.Client) *Notifier {
	return &Notifier{httpClient: hc}
}

type Embed struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

type Payload struct {
	Content   string  `json:"content"`
	Embeds    []Embed `json:"embeds,omitempty"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	GameID    int64   `json:"gameId"`
	PlayID    int64   `json:"playId"`
	Timestamp string  `json:"timestamp"`
}

const colorRed = 0xE74C3C

func (n *Notifier) Name() string { return "webhook" }

func (n *Notifier) Enabled(cfg watch.Config) bool {
	return cfg.EnableWebhooks && watch.ValidWebhookURL(cfg.WebhookURL)
}

func (n *Notifier) Notify(ctx context.Context, gameID int64, intent events.NotificationIntent) error {
	ts := time.Now().UTC().Format(time.RFC3339)
	return n.send(ctx, intent.Config.WebhookURL, Payload{
		Content:   fmt.Sprintf("**%s**: %s", intent.Title, intent.Body),
		Embeds:    []Embed{{Title: intent.Title, Description: intent.Body, Color: colorRed, Timestamp: ts}},
		Title:     intent.Title,
		Body:      intent.Body,
		GameID:    gameID,
		PlayID:    intent.PlayID,
		Timestamp: ts,
	})
}

func (n *Notifier) send(ctx context.Context, url string, payload Payload) error {
	if !watch.ValidWebhookURL(url) {
		return watch.ErrWebhookURLInvalid
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		telemetry.Warnf("webhook: rate limited by %s", req.URL.Host)
		return fmt.Errorf("webhook rate limited")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: status=%d", resp.StatusCode)
	}
	return nil
}
