package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/domain"
)

// fakeResetRepo keeps tokens in memory and applies the same deletion
// predicates as the SQL implementation.
type fakeResetRepo struct {
	tokens  map[string]*domain.PasswordResetToken
	failAll bool
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: make(map[string]*domain.PasswordResetToken)}
}

func (f *fakeResetRepo) Create(_ context.Context, token *domain.PasswordResetToken) error {
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeResetRepo) GetByToken(_ context.Context, value string) (*domain.PasswordResetToken, error) {
	for _, t := range f.tokens {
		if t.Token == value {
			return t, nil
		}
	}
	return nil, errors.New("no rows")
}

func (f *fakeResetRepo) Consume(_ context.Context, tokenID, _, _ string) error {
	now := time.Now()
	f.tokens[tokenID].UsedAt = &now
	return nil
}

func (f *fakeResetRepo) DeleteExpiredOrUsed(_ context.Context, now time.Time) (int64, error) {
	if f.failAll {
		return 0, errors.New("storage down")
	}
	var deleted int64
	for id, t := range f.tokens {
		if t.ExpiresAt.Before(now) || t.UsedAt != nil {
			delete(f.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeResetRepo) DeleteUsedCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	if f.failAll {
		return 0, errors.New("storage down")
	}
	var deleted int64
	for id, t := range f.tokens {
		if t.UsedAt != nil && t.CreatedAt.Before(cutoff) {
			delete(f.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func addToken(repo *fakeResetRepo, id string, expiresAt time.Time, usedAt *time.Time, createdAt time.Time) {
	repo.tokens[id] = &domain.PasswordResetToken{
		ID:        id,
		Token:     "tok-" + id,
		UserID:    "u-1",
		ExpiresAt: expiresAt,
		UsedAt:    usedAt,
		CreatedAt: createdAt,
	}
}

func testCleanupConfig() config.CleanupConfig {
	return config.CleanupConfig{Interval: time.Hour, UsedTokenRetention: 24 * time.Hour}
}

func TestSweep_DeletesExpiredAndUsed(t *testing.T) {
	t.Parallel()

	repo := newFakeResetRepo()
	now := time.Now()
	used := now.Add(-time.Minute)

	addToken(repo, "expired", now.Add(-time.Hour), nil, now.Add(-2*time.Hour))
	addToken(repo, "used", now.Add(time.Hour), &used, now.Add(-time.Hour))
	addToken(repo, "live", now.Add(time.Hour), nil, now)

	w := NewCleanupWorker(repo, testCleanupConfig(), zap.NewNop())
	deleted, err := w.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), deleted)
	assert.Len(t, repo.tokens, 1)
	assert.Contains(t, repo.tokens, "live")
}

func TestSweep_Idempotent(t *testing.T) {
	t.Parallel()

	repo := newFakeResetRepo()
	now := time.Now()
	addToken(repo, "expired", now.Add(-time.Hour), nil, now.Add(-2*time.Hour))
	addToken(repo, "live", now.Add(time.Hour), nil, now)

	w := NewCleanupWorker(repo, testCleanupConfig(), zap.NewNop())

	first, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second)
}

func TestSweep_UsedTokenRetention(t *testing.T) {
	t.Parallel()

	repo := newFakeResetRepo()
	now := time.Now()
	used := now.Add(-30 * time.Hour)

	// Used long before the retention cutoff and still unexpired: one sweep
	// removes it, whichever pass claims it first.
	w := NewCleanupWorker(repo, testCleanupConfig(), zap.NewNop())

	addToken(repo, "old-used", now.Add(time.Hour), &used, now.Add(-40*time.Hour))
	deleted, err := w.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Empty(t, repo.tokens)
}

func TestSweep_ErrorIsReturnedNotFatal(t *testing.T) {
	t.Parallel()

	repo := newFakeResetRepo()
	repo.failAll = true

	w := NewCleanupWorker(repo, testCleanupConfig(), zap.NewNop())
	_, err := w.Sweep(context.Background())
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	repo := newFakeResetRepo()
	cfg := config.CleanupConfig{Interval: 10 * time.Millisecond, UsedTokenRetention: time.Hour}
	w := NewCleanupWorker(repo, cfg, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
