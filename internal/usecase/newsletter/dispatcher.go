package newsletter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/observability/metrics"
	"byte-highlight/internal/observability/tracing"
	"byte-highlight/internal/utils/text"
)

const (
	// BatchThreshold is the recipient count from which one batch call is used
	// instead of one call per address.
	BatchThreshold = 10

	// DevRecipientLimit caps the recipient list in development mode.
	DevRecipientLimit = 2

	// SandboxMessage is reported when sandbox mode suppresses delivery.
	SandboxMessage = "Sandbox mode - No email sent"

	// NoRecipientsMessage is reported when the list is empty after capping.
	NoRecipientsMessage = "No recipients to send to"

	senderIdentityMarker = "does not match a verified Sender Identity"
)

// DispatchConfig controls the dispatcher's environment-dependent behaviour.
type DispatchConfig struct {
	// Configured is false when no provider API key is set.
	Configured bool
	// DevMode limits every dispatch to DevRecipientLimit recipients.
	DevMode bool
	// ProviderSandbox sends sandboxed messages to the provider with its
	// sandbox flag instead of short-circuiting locally.
	ProviderSandbox bool
}

// Request is the input of a dispatch.
type Request struct {
	Recipients []Recipient
	Subject    string
	HTML       string
	Sandbox    bool
}

// DispatchResult describes what the dispatcher did.
type DispatchResult struct {
	Mode      entity.DispatchMode
	Attempted int
	Sent      int
	Failed    int
	Message   string
}

// Dispatcher decides how a newsletter is handed to the provider.
type Dispatcher struct {
	Mailer Mailer
	Config DispatchConfig
}

// Dispatch delivers req to its recipients.
//
// Fewer than BatchThreshold recipients are sent one call per address; a failed
// address is logged and skipped. BatchThreshold or more recipients go out in one
// batch call whose failure is returned as a single error. Sandboxed requests
// never reach the provider unless ProviderSandbox is set.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*DispatchResult, error) {
	ctx, span := tracing.Start(ctx, "newsletter.Dispatch",
		attribute.Int("recipients", len(req.Recipients)),
		attribute.Bool("sandbox", req.Sandbox))
	res, err := d.dispatch(ctx, req)
	if res != nil {
		span.SetAttributes(attribute.String("mode", string(res.Mode)), attribute.Int("sent", res.Sent))
	}
	tracing.End(span, err)
	return res, err
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) (*DispatchResult, error) {
	if !d.Config.Configured {
		slog.Error("missing e-mail provider API key")
		return nil, ErrNotConfigured
	}

	recipients := req.Recipients
	if d.Config.DevMode && len(recipients) > DevRecipientLimit {
		slog.Info("development mode: limiting recipients",
			slog.Int("requested", len(recipients)),
			slog.Int("limit", DevRecipientLimit))
		recipients = recipients[:DevRecipientLimit]
	}

	if len(recipients) == 0 {
		return &DispatchResult{Mode: entity.DispatchModeIndividual, Message: NoRecipientsMessage}, nil
	}

	base := Message{
		Subject: req.Subject,
		HTML:    req.HTML,
		Text:    text.HTMLToText(req.HTML),
		Sandbox: req.Sandbox,
	}

	if req.Sandbox && !d.Config.ProviderSandbox {
		return d.sandbox(recipients, req.Subject), nil
	}

	slog.Info("dispatching newsletter",
		slog.Int("recipients", len(recipients)),
		slog.Bool("sandbox", req.Sandbox))

	if len(recipients) < BatchThreshold {
		return d.individual(ctx, base, recipients), nil
	}
	return d.batch(ctx, base, recipients)
}

// SendOne delivers a single message, reporting its failure to the caller.
// Sandboxed messages short-circuit before the API key is checked so that
// previews work on unconfigured installations.
func (d *Dispatcher) SendOne(ctx context.Context, to Recipient, subject, html string, sandbox bool) (*DispatchResult, error) {
	if sandbox && !d.Config.ProviderSandbox {
		return d.sandbox([]Recipient{to}, subject), nil
	}
	if !d.Config.Configured {
		return nil, ErrNotConfigured
	}

	start := time.Now()
	msg := Message{
		Recipients: []Recipient{to},
		Subject:    subject,
		HTML:       html,
		Text:       text.HTMLToText(html),
		Sandbox:    sandbox,
	}
	if err := d.Mailer.Send(ctx, msg); err != nil {
		metrics.RecordDispatch(string(entity.DispatchModeIndividual), "failure")
		metrics.RecordRecipients("failed", 1)
		slog.Error("email sending error",
			slog.String("to", to.Email),
			slog.Any("error", err))
		return nil, classifyProviderError(err)
	}

	metrics.RecordDispatch(string(entity.DispatchModeIndividual), "success")
	metrics.RecordRecipients("sent", 1)
	metrics.RecordDispatchDuration(string(entity.DispatchModeIndividual), time.Since(start))
	slog.Info("email sent", slog.String("to", to.Email), slog.Bool("sandbox", sandbox))
	return &DispatchResult{Mode: entity.DispatchModeIndividual, Attempted: 1, Sent: 1}, nil
}

func (d *Dispatcher) sandbox(recipients []Recipient, subject string) *DispatchResult {
	for _, r := range recipients {
		slog.Info("sandbox mode: would send email",
			slog.String("to", r.Email),
			slog.String("subject", subject))
	}
	metrics.RecordDispatch(string(entity.DispatchModeSandbox), "success")
	metrics.RecordRecipients("sandboxed", len(recipients))
	return &DispatchResult{
		Mode:      entity.DispatchModeSandbox,
		Attempted: len(recipients),
		Message:   SandboxMessage,
	}
}

func (d *Dispatcher) individual(ctx context.Context, base Message, recipients []Recipient) *DispatchResult {
	start := time.Now()
	res := &DispatchResult{
		Mode:      entity.DispatchModeIndividual,
		Attempted: len(recipients),
		Message:   "Sent individual emails",
	}

	for _, r := range recipients {
		msg := base
		msg.Recipients = []Recipient{r}
		if err := d.Mailer.Send(ctx, msg); err != nil {
			// ベストエフォート: 失敗した宛先はスキップして続行
			res.Failed++
			slog.Warn("failed to send to recipient, skipping",
				slog.String("to", r.Email),
				slog.Any("error", classifyProviderError(err)))
			continue
		}
		res.Sent++
	}

	metrics.RecordDispatch(string(res.Mode), "success")
	metrics.RecordRecipients("sent", res.Sent)
	metrics.RecordRecipients("failed", res.Failed)
	metrics.RecordDispatchDuration(string(res.Mode), time.Since(start))
	return res
}

func (d *Dispatcher) batch(ctx context.Context, base Message, recipients []Recipient) (*DispatchResult, error) {
	start := time.Now()
	msg := base
	msg.Recipients = recipients

	res := &DispatchResult{Mode: entity.DispatchModeBatch, Attempted: len(recipients)}
	if err := d.Mailer.Send(ctx, msg); err != nil {
		res.Failed = len(recipients)
		metrics.RecordDispatch(string(res.Mode), "failure")
		metrics.RecordRecipients("failed", res.Failed)
		slog.Error("newsletter batch sending error",
			slog.Int("recipients", len(recipients)),
			slog.Any("error", err))
		return res, fmt.Errorf("%w: %w", ErrBatchFailed, classifyProviderError(err))
	}

	res.Sent = len(recipients)
	res.Message = fmt.Sprintf("Sent batch to %d recipients", res.Sent)
	metrics.RecordDispatch(string(res.Mode), "success")
	metrics.RecordRecipients("sent", res.Sent)
	metrics.RecordDispatchDuration(string(res.Mode), time.Since(start))
	return res, nil
}

// classifyProviderError maps the provider's sender identity rejection to
// ErrSenderNotVerified and leaves other errors untouched.
func classifyProviderError(err error) error {
	if err != nil && strings.Contains(err.Error(), senderIdentityMarker) {
		return fmt.Errorf("%w: %w", ErrSenderNotVerified, err)
	}
	return err
}
