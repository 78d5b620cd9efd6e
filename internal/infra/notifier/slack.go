package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"byte-highlight/internal/usecase/notify"
)

// SlackConfig configures the Slack Incoming Webhook channel.
type SlackConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// Slack posts alerts as Block Kit messages.
type Slack struct {
	enabled bool
	hook    *webhook
}

// NewSlack creates the channel. Slack webhooks accept one message per second.
func NewSlack(cfg SlackConfig) *Slack {
	return &Slack{
		enabled: cfg.Enabled && cfg.WebhookURL != "",
		hook: &webhook{
			service:    "Slack",
			url:        cfg.WebhookURL,
			httpClient: &http.Client{Timeout: cfg.Timeout},
			limiter:    NewRateLimiter(1.0, 1),
			baseDelay:  2 * time.Second,
		},
	}
}

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string       `json:"type"`
	Text     *slackText   `json:"text,omitempty"`
	Fields   []*slackText `json:"fields,omitempty"`
	Elements []*slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	slackMaxSection  = 3000
	slackMaxFallback = 150
	slackMaxFields   = 10
)

var slackIcons = map[notify.Level]string{
	notify.LevelInfo:    ":white_check_mark:",
	notify.LevelWarning: ":warning:",
	notify.LevelError:   ":rotating_light:",
}

func (s *Slack) Name() string    { return "slack" }
func (s *Slack) IsEnabled() bool { return s.enabled }

// Send implements notify.Channel.
func (s *Slack) Send(ctx context.Context, a notify.Alert) error {
	if !s.enabled {
		return notify.ErrChannelDisabled
	}
	if err := a.Validate(); err != nil {
		return err
	}
	return s.hook.send(ctx, a.Title, buildSlackPayload(a))
}

func buildSlackPayload(a notify.Alert) slackPayload {
	section := fmt.Sprintf("%s *%s*", slackIcons[a.Level], a.Title)
	if a.Text != "" {
		section += "\n" + a.Text
	}

	blocks := []slackBlock{{
		Type: "section",
		Text: &slackText{Type: "mrkdwn", Text: truncate(section, slackMaxSection, "...")},
	}}

	if len(a.Fields) > 0 {
		fields := make([]*slackText, 0, len(a.Fields))
		for i, f := range a.Fields {
			if i == slackMaxFields {
				break
			}
			fields = append(fields, &slackText{Type: "mrkdwn", Text: fmt.Sprintf("*%s*\n%s", f.Name, f.Value)})
		}
		blocks = append(blocks, slackBlock{Type: "section", Fields: fields})
	}

	blocks = append(blocks, slackBlock{
		Type:     "context",
		Elements: []*slackText{{Type: "mrkdwn", Text: a.OccurredAt.UTC().Format(time.RFC3339)}},
	})

	fallback := strings.TrimSpace(a.Title + " " + a.Text)
	return slackPayload{Text: truncate(fallback, slackMaxFallback, "..."), Blocks: blocks}
}
