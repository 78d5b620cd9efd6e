package repository

import (
	"context"

	"byte-highlight/internal/domain/entity"
)

type SubscriberRepository interface {
	// List returns subscribers ordered by created_at DESC.
	// A nil status lists every subscriber.
	List(ctx context.Context, status *entity.SubscriberStatus) ([]*entity.Subscriber, error)
	// ListActiveEmails returns the addresses that should receive an issue.
	ListActiveEmails(ctx context.Context) ([]string, error)
	// Get returns (nil, nil) when the subscriber does not exist.
	Get(ctx context.Context, id string) (*entity.Subscriber, error)
	// GetByEmail returns (nil, nil) when the address is unknown.
	GetByEmail(ctx context.Context, email string) (*entity.Subscriber, error)
	// Create returns an error wrapping entity.ErrDuplicate when the address exists.
	Create(ctx context.Context, subscriber *entity.Subscriber) error
	// UpdateStatus returns entity.ErrNotFound when no row matched.
	UpdateStatus(ctx context.Context, id string, status entity.SubscriberStatus) error
	// Delete returns entity.ErrNotFound when no row matched.
	Delete(ctx context.Context, id string) error
	// CountByStatus returns the number of subscribers per status.
	CountByStatus(ctx context.Context) (map[entity.SubscriberStatus]int64, error)
}
