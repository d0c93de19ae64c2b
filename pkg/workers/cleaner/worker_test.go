package cleaner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	submissionCutoff time.Time
	stagedCutoff     time.Time
	purgeErr         error
}

func (f *fakeRepo) PurgeSubmissions(ctx context.Context, cutoff time.Time) (int, error) {
	f.submissionCutoff = cutoff
	return 2, f.purgeErr
}

func (f *fakeRepo) PurgeStagedReports(ctx context.Context, cutoff time.Time) (int, error) {
	f.stagedCutoff = cutoff
	return 0, nil
}

func TestCleanupExpiredRecords(t *testing.T) {
	repo := &fakeRepo{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	worker := NewWorker(repo, 10*time.Minute, time.Hour, logger)

	before := time.Now()
	interval, err := worker.CleanupExpiredRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, interval)

	// cutoffs derive from retention and staged TTL
	assert.WithinDuration(t, before.Add(-10*time.Minute), repo.submissionCutoff, time.Second)
	assert.WithinDuration(t, before.Add(-time.Hour), repo.stagedCutoff, time.Second)
}

func TestCleanupRetriesSoonerOnFailure(t *testing.T) {
	repo := &fakeRepo{purgeErr: errors.New("boom")}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	worker := NewWorker(repo, 10*time.Minute, time.Hour, logger)

	interval, err := worker.CleanupExpiredRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, interval)
}
