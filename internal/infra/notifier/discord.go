package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"byte-highlight/internal/usecase/notify"
)

// DiscordConfig configures the Discord webhook channel.
type DiscordConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// Discord posts alerts as embeds to a Discord webhook.
type Discord struct {
	enabled bool
	hook    *webhook
}

// NewDiscord creates the channel. Discord allows 30 webhook calls per minute.
func NewDiscord(cfg DiscordConfig) *Discord {
	return &Discord{
		enabled: cfg.Enabled && cfg.WebhookURL != "",
		hook: &webhook{
			service:    "Discord",
			url:        cfg.WebhookURL,
			httpClient: &http.Client{Timeout: cfg.Timeout},
			limiter:    NewRateLimiter(0.5, 3),
			baseDelay:  5 * time.Second,
			retryAfter: discordRetryAfter,
		},
	}
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

const (
	discordMaxTitle       = 256
	discordMaxDescription = 4096
	discordMaxFieldValue  = 1024
)

var discordColors = map[notify.Level]int{
	notify.LevelInfo:    0x2ECC71,
	notify.LevelWarning: 0xF1C40F,
	notify.LevelError:   0xE74C3C,
}

func (d *Discord) Name() string    { return "discord" }
func (d *Discord) IsEnabled() bool { return d.enabled }

// Send implements notify.Channel.
func (d *Discord) Send(ctx context.Context, a notify.Alert) error {
	if !d.enabled {
		return notify.ErrChannelDisabled
	}
	if err := a.Validate(); err != nil {
		return err
	}
	return d.hook.send(ctx, a.Title, buildDiscordPayload(a))
}

func buildDiscordPayload(a notify.Alert) discordPayload {
	embed := discordEmbed{
		Title:       truncate(a.Title, discordMaxTitle, ""),
		Description: truncate(a.Text, discordMaxDescription, "..."),
		Color:       discordColors[a.Level],
		Timestamp:   a.OccurredAt.UTC().Format(time.RFC3339),
	}
	for _, f := range a.Fields {
		embed.Fields = append(embed.Fields, discordField{
			Name:   f.Name,
			Value:  truncate(f.Value, discordMaxFieldValue, "..."),
			Inline: len(f.Value) < 40,
		})
	}
	return discordPayload{Embeds: []discordEmbed{embed}}
}

// discordRetryAfter prefers retry_after (seconds) from the JSON body.
func discordRetryAfter(resp *http.Response, body []byte) time.Duration {
	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		return time.Duration(payload.RetryAfter * float64(time.Second))
	}
	return headerRetryAfter(resp)
}
