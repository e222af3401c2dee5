package watch

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	MinPollingFrequency     = 3
	DefaultPollingFrequency = 3
)

var (
	ErrPollingTooFast     = errors.New("polling frequency must be at least 3 seconds")
	ErrWebhookURLRequired = errors.New("webhook URL is required when webhooks are enabled")
	ErrWebhookURLInvalid  = errors.New("webhook URL must be a valid HTTPS URL")
)

// Config is the per-session watch configuration chosen by the user.
type Config struct {
	PollingFrequency int    `json:"pollingFrequency" yaml:"polling_frequency"`
	EnableAudio      bool   `json:"enableAudio" yaml:"enable_audio"`
	EnableWebhooks   bool   `json:"enableWebhooks" yaml:"enable_webhooks"`
	WebhookURL       string `json:"webhookUrl,omitempty" yaml:"webhook_url"`
	TestMode         bool   `json:"testMode" yaml:"test_mode"`
}

func DefaultConfig() Config {
	return Config{PollingFrequency: DefaultPollingFrequency}
}

// WithDefaults fills a zero polling frequency with the default.
func (c Config) WithDefaults() Config {
	if c.PollingFrequency == 0 {
		c.PollingFrequency = DefaultPollingFrequency
	}
	return c
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.PollingFrequency) * time.Second
}

func (c Config) Validate() error {
	if c.PollingFrequency < MinPollingFrequency {
		return fmt.Errorf("%w (got %d)", ErrPollingTooFast, c.PollingFrequency)
	}
	if c.EnableWebhooks {
		if strings.TrimSpace(c.WebhookURL) == "" {
			return ErrWebhookURLRequired
		}
		if !ValidWebhookURL(c.WebhookURL) {
			return ErrWebhookURLInvalid
		}
	}
	return nil
}

// ValidWebhookURL reports whether raw parses as an absolute https URL.
func ValidWebhookURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != ""
}
