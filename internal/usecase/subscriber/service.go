package subscriber

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/repository"
)

// UnsubscribeVerifier resolves an unsubscribe token to the address it was issued for.
type UnsubscribeVerifier interface {
	VerifyUnsubscribe(token string) (string, error)
}

// Service provides subscriber management use cases.
type Service struct {
	Repo   repository.SubscriberRepository
	Tokens UnsubscribeVerifier
}

// SubscribeResult tells the caller whether a new row was created.
type SubscribeResult struct {
	Subscriber  *entity.Subscriber
	Reactivated bool
}

// Subscribe adds email to the list.
// Returns a ValidationError for malformed input and ErrAlreadySubscribed
// when the address is already active. A previously unsubscribed address
// is switched back to active.
func (s *Service) Subscribe(ctx context.Context, email string) (*SubscribeResult, error) {
	email = entity.NormalizeEmail(email)
	if err := entity.ValidateEmail(email); err != nil {
		return nil, err
	}

	sub := &entity.Subscriber{
		ID:        uuid.NewString(),
		Email:     email,
		Status:    entity.SubscriberStatusActive,
		CreatedAt: time.Now(),
	}
	err := s.Repo.Create(ctx, sub)
	if err == nil {
		return &SubscribeResult{Subscriber: sub}, nil
	}
	if !errors.Is(err, entity.ErrDuplicate) {
		return nil, fmt.Errorf("create subscriber: %w", err)
	}

	existing, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get subscriber by email: %w", err)
	}
	if existing == nil || existing.Status == entity.SubscriberStatusActive {
		return nil, ErrAlreadySubscribed
	}

	if err := s.Repo.UpdateStatus(ctx, existing.ID, entity.SubscriberStatusActive); err != nil {
		return nil, fmt.Errorf("reactivate subscriber: %w", err)
	}
	existing.Status = entity.SubscriberStatusActive
	return &SubscribeResult{Subscriber: existing, Reactivated: true}, nil
}

// Unsubscribe marks the address behind token as unsubscribed.
// When email is non-empty it must match the token subject.
func (s *Service) Unsubscribe(ctx context.Context, email, token string) error {
	if token == "" || s.Tokens == nil {
		return ErrInvalidUnsubscribeToken
	}
	subject, err := s.Tokens.VerifyUnsubscribe(token)
	if err != nil {
		return ErrInvalidUnsubscribeToken
	}
	if email != "" && entity.NormalizeEmail(email) != subject {
		return ErrInvalidUnsubscribeToken
	}

	sub, err := s.Repo.GetByEmail(ctx, subject)
	if err != nil {
		return fmt.Errorf("get subscriber by email: %w", err)
	}
	if sub == nil {
		return ErrSubscriberNotFound
	}
	if sub.Status == entity.SubscriberStatusUnsubscribed {
		return nil
	}
	if err := s.Repo.UpdateStatus(ctx, sub.ID, entity.SubscriberStatusUnsubscribed); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}

// List returns subscribers newest first. An empty status lists everyone.
func (s *Service) List(ctx context.Context, status string) ([]*entity.Subscriber, error) {
	var filter *entity.SubscriberStatus
	if status != "" {
		st := entity.SubscriberStatus(status)
		if !st.IsValid() {
			return nil, ErrInvalidStatus
		}
		filter = &st
	}
	subs, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return subs, nil
}

// ActiveEmails returns the addresses that receive newsletter issues.
func (s *Service) ActiveEmails(ctx context.Context) ([]string, error) {
	emails, err := s.Repo.ListActiveEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active emails: %w", err)
	}
	return emails, nil
}

// UpdateStatus changes the status of one subscriber.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*entity.Subscriber, error) {
	st := entity.SubscriberStatus(status)
	if !st.IsValid() {
		return nil, ErrInvalidStatus
	}
	if err := s.Repo.UpdateStatus(ctx, id, st); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("update subscriber status: %w", err)
	}
	sub, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	if sub == nil {
		return nil, ErrSubscriberNotFound
	}
	return sub, nil
}

// Delete removes a subscriber permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrSubscriberNotFound
		}
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return nil
}

// Counts returns subscriber totals per status for the admin dashboard.
func (s *Service) Counts(ctx context.Context) (map[entity.SubscriberStatus]int64, error) {
	counts, err := s.Repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}
	return counts, nil
}
