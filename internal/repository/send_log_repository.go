package repository

import (
	"context"

	"byte-highlight/internal/domain/entity"
)

// SendLogRepository records every newsletter dispatch for the admin history view.
type SendLogRepository interface {
	Create(ctx context.Context, log *entity.SendLog) error
	ListRecent(ctx context.Context, limit int) ([]*entity.SendLog, error)
}
