package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/infra/adapter/persistence/sqlite"
)

func newSubscriber(id, email string, status entity.SubscriberStatus, createdAt time.Time) *entity.Subscriber {
	return &entity.Subscriber{ID: id, Email: email, Status: status, CreatedAt: createdAt}
}

/* ──────────────────────────────── 1. Create ──────────────────────────────── */

func TestSubscriberRepo_Create_Duplicate(t *testing.T) {
	t.Parallel()
	repo := sqlite.NewSubscriberRepo(openTestDB(t))
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, newSubscriber("a", "reader@example.com", entity.SubscriberStatusActive, now)))

	err := repo.Create(ctx, newSubscriber("b", "reader@example.com", entity.SubscriberStatusActive, now))
	assert.True(t, errors.Is(err, entity.ErrDuplicate), "got %v", err)
}

/* ──────────────────────────────── 2. Read ──────────────────────────────── */

func TestSubscriberRepo_ListAndLookup(t *testing.T) {
	t.Parallel()
	repo := sqlite.NewSubscriberRepo(openTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newSubscriber("1", "one@example.com", entity.SubscriberStatusActive, base)))
	require.NoError(t, repo.Create(ctx, newSubscriber("2", "two@example.com", entity.SubscriberStatusUnsubscribed, base.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newSubscriber("3", "three@example.com", entity.SubscriberStatusActive, base.Add(2*time.Hour))))

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].ID, "newest first")

	active := entity.SubscriberStatusActive
	onlyActive, err := repo.List(ctx, &active)
	require.NoError(t, err)
	assert.Len(t, onlyActive, 2)

	emails, err := repo.ListActiveEmails(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"one@example.com", "three@example.com"}, emails)

	byEmail, err := repo.GetByEmail(ctx, "two@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, entity.SubscriberStatusUnsubscribed, byEmail.Status)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[entity.SubscriberStatus]int64{
		entity.SubscriberStatusActive:       2,
		entity.SubscriberStatusUnsubscribed: 1,
	}, counts)
}

/* ──────────────────────────────── 3. Update / Delete ──────────────────────────────── */

func TestSubscriberRepo_UpdateStatusAndDelete(t *testing.T) {
	t.Parallel()
	repo := sqlite.NewSubscriberRepo(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newSubscriber("1", "one@example.com", entity.SubscriberStatusActive, time.Now().UTC())))

	require.NoError(t, repo.UpdateStatus(ctx, "1", entity.SubscriberStatusUnsubscribed))
	got, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriberStatusUnsubscribed, got.Status)

	assert.True(t, errors.Is(repo.UpdateStatus(ctx, "missing", entity.SubscriberStatusActive), entity.ErrNotFound))

	require.NoError(t, repo.Delete(ctx, "1"))
	assert.True(t, errors.Is(repo.Delete(ctx, "1"), entity.ErrNotFound))
}
