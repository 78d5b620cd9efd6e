package newsletter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/repository"
)

const (
	// NoSubscribersMessage is reported when there is nobody to mail.
	NoSubscribersMessage = "No active subscribers found"

	testEmailSubject  = "Test Email from The Byte Highlight"
	debugEmailSubject = "Debug Test Email"

	// introTimeout bounds the editorial intro call so a slow model never
	// delays the weekly send.
	introTimeout = 20 * time.Second

	defaultRecentSends = 20
)

// SendInput is a manually composed newsletter.
type SendInput struct {
	Subject string
	Content string
	// TestMode sandboxes delivery.
	TestMode bool
	// TestRecipient, when set, replaces the subscriber list with one address.
	TestRecipient string
}

// Outcome is returned by every send operation.
type Outcome struct {
	Message    string
	Recipients int
	Result     *DispatchResult
}

// Service composes newsletters and hands them to the Dispatcher.
type Service struct {
	Subscribers repository.SubscriberRepository
	Articles    repository.ArticleRepository
	// SendLogs is optional; when nil dispatches are not recorded.
	SendLogs   repository.SendLogRepository
	Dispatcher *Dispatcher
	Digest     DigestBuilder
	// Tokens is optional; without it unsubscribe links carry no token.
	Tokens UnsubscribeIssuer
	// Intro is optional; without it the digest has no editorial paragraph.
	Intro IntroWriter
	// Observer is optional and told about every dispatch.
	Observer DispatchObserver
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SendNewsletter sends a manually composed issue to every active subscriber,
// or only to in.TestRecipient when it is set.
func (s *Service) SendNewsletter(ctx context.Context, in SendInput) (*Outcome, error) {
	subject := strings.TrimSpace(in.Subject)
	content := strings.TrimSpace(in.Content)
	if subject == "" || content == "" {
		return nil, ErrMissingContent
	}

	tag := ""
	if in.TestMode {
		tag = "(TEST MODE) "
	}

	if in.TestRecipient != "" {
		to := entity.NormalizeEmail(in.TestRecipient)
		if err := entity.ValidateEmail(to); err != nil {
			return nil, err
		}
		res, err := s.Dispatcher.SendOne(ctx, s.personalize(to), subject, content, in.TestMode)
		s.recordSend(ctx, subject, in.TestMode, 1, res, err)
		if err != nil {
			return nil, fmt.Errorf("send test newsletter: %w", err)
		}
		return &Outcome{
			Message:    fmt.Sprintf("Newsletter %ssent to test email: %s", tag, to),
			Recipients: 1,
			Result:     res,
		}, nil
	}

	emails, err := s.Subscribers.ListActiveEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active subscribers: %w", err)
	}
	if len(emails) == 0 {
		return &Outcome{Message: NoSubscribersMessage}, nil
	}

	res, err := s.dispatch(ctx, emails, subject, content, in.TestMode)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Message:    fmt.Sprintf("Newsletter %ssent to %d subscribers", tag, len(emails)),
		Recipients: len(emails),
		Result:     res,
	}, nil
}

// SendTestEmail sends a fixed test message to one address.
func (s *Service) SendTestEmail(ctx context.Context, to string, sandbox bool) (*Outcome, error) {
	to = entity.NormalizeEmail(to)
	if to == "" {
		return nil, ErrMissingRecipient
	}
	if err := entity.ValidateEmail(to); err != nil {
		return nil, err
	}

	html := fmt.Sprintf(`<h1>Test Email</h1>
<p>This is a test email from The Byte Highlight.</p>
<p>If you are reading this, e-mail delivery is working.</p>
<p>Sent at %s</p>`, s.now().UTC().Format(time.RFC3339))

	res, err := s.Dispatcher.SendOne(ctx, Recipient{Email: to}, testEmailSubject, html, sandbox)
	if err != nil {
		return nil, fmt.Errorf("send test email: %w", err)
	}

	msg := fmt.Sprintf("Test email successfully sent to %s", to)
	if sandbox {
		msg = fmt.Sprintf("Test email (SANDBOX MODE) successfully sent to %s", to)
	}
	return &Outcome{Message: msg, Recipients: 1, Result: res}, nil
}

// SendDebugEmail performs a real, non-sandboxed send to one address so that
// sender identity problems surface as ErrSenderNotVerified.
func (s *Service) SendDebugEmail(ctx context.Context, to string) (*Outcome, error) {
	to = entity.NormalizeEmail(to)
	if to == "" {
		return nil, ErrMissingRecipient
	}
	if err := entity.ValidateEmail(to); err != nil {
		return nil, err
	}

	html := fmt.Sprintf(`<h1>Debug Test Email</h1>
<p>This message verifies the e-mail provider configuration.</p>
<p>Timestamp: %s</p>`, s.now().UTC().Format(time.RFC3339))

	res, err := s.Dispatcher.SendOne(ctx, Recipient{Email: to}, debugEmailSubject, html, false)
	if err != nil {
		return nil, fmt.Errorf("send debug email: %w", err)
	}
	return &Outcome{
		Message:    fmt.Sprintf("Debug email sent to %s. Check your inbox and spam folder.", to),
		Recipients: 1,
		Result:     res,
	}, nil
}

// SendWeekly renders the weekly digest and sends it to every active subscriber.
func (s *Service) SendWeekly(ctx context.Context) (*Outcome, error) {
	emails, err := s.Subscribers.ListActiveEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active subscribers: %w", err)
	}
	if len(emails) == 0 {
		slog.Info("weekly newsletter skipped: no active subscribers")
		return &Outcome{Message: NoSubscribersMessage}, nil
	}

	digest, err := s.PreviewWeekly(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.dispatch(ctx, emails, digest.Subject, digest.HTML, false)
	if err != nil {
		return nil, err
	}

	slog.Info("weekly newsletter sent",
		slog.Int("subscribers", len(emails)),
		slog.String("mode", string(res.Mode)))
	return &Outcome{
		Message:    fmt.Sprintf("Weekly newsletter sent to %d subscribers", len(emails)),
		Recipients: len(emails),
		Result:     res,
	}, nil
}

// PreviewWeekly renders the digest for the current week without sending it.
func (s *Service) PreviewWeekly(ctx context.Context) (*Digest, error) {
	now := s.now()
	articles, err := s.Articles.ListSince(ctx, now.Add(-DigestWindow), MaxDigestUpdates+1)
	if err != nil {
		return nil, fmt.Errorf("list recent articles: %w", err)
	}

	digest, err := s.Digest.Build(articles, s.writeIntro(ctx, articles), now)
	if err != nil {
		return nil, fmt.Errorf("PreviewWeekly: %w", err)
	}
	return digest, nil
}

// RecentSends lists the latest dispatch records, newest first.
func (s *Service) RecentSends(ctx context.Context, limit int) ([]*entity.SendLog, error) {
	if s.SendLogs == nil {
		return []*entity.SendLog{}, nil
	}
	if limit <= 0 {
		limit = defaultRecentSends
	}
	logs, err := s.SendLogs.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list send logs: %w", err)
	}
	return logs, nil
}

func (s *Service) dispatch(ctx context.Context, emails []string, subject, html string, sandbox bool) (*DispatchResult, error) {
	recipients := make([]Recipient, len(emails))
	for i, e := range emails {
		recipients[i] = s.personalize(e)
	}

	res, err := s.Dispatcher.Dispatch(ctx, Request{
		Recipients: recipients,
		Subject:    subject,
		HTML:       html,
		Sandbox:    sandbox,
	})
	s.recordSend(ctx, subject, sandbox, len(emails), res, err)
	if err != nil {
		return nil, fmt.Errorf("dispatch newsletter: %w", err)
	}
	return res, nil
}

// personalize attaches the recipient's unsubscribe link.
func (s *Service) personalize(email string) Recipient {
	token := ""
	if s.Tokens != nil {
		t, err := s.Tokens.IssueUnsubscribe(email)
		if err != nil {
			slog.Warn("failed to issue unsubscribe token",
				slog.String("email", email),
				slog.Any("error", err))
		} else {
			token = t
		}
	}
	return Recipient{
		Email: email,
		Substitutions: map[string]string{
			UnsubscribePlaceholder: s.Digest.UnsubscribeURL(email, token),
		},
	}
}

func (s *Service) writeIntro(ctx context.Context, articles []*entity.Article) string {
	if s.Intro == nil || len(articles) == 0 {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, introTimeout)
	defer cancel()

	intro, err := s.Intro.WriteIntro(ctx, articles)
	if err != nil {
		// イントロ生成失敗時は本文のみで送信する
		slog.Warn("failed to write digest intro", slog.Any("error", err))
		return ""
	}
	return intro
}

func (s *Service) recordSend(ctx context.Context, subject string, testMode bool, recipients int, res *DispatchResult, sendErr error) {
	log := &entity.SendLog{
		Subject:    subject,
		Mode:       entity.DispatchModeIndividual,
		TestMode:   testMode,
		Recipients: recipients,
		CreatedAt:  s.now(),
	}
	if res != nil {
		log.Mode = res.Mode
		log.Sent = res.Sent
		log.Failed = res.Failed
	}
	if sendErr != nil {
		log.Error = sendErr.Error()
		if res == nil {
			log.Failed = recipients
		}
	}
	if s.SendLogs != nil {
		if err := s.SendLogs.Create(ctx, log); err != nil {
			slog.Warn("failed to record send log", slog.Any("error", err))
		}
	}
	if s.Observer != nil {
		s.Observer.DispatchRecorded(ctx, log)
	}
}
