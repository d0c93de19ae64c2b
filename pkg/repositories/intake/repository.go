package intake

import (
	"context"
	"sync"
	"time"

	"report-intake-gateway/pkg/models/private"
)

// All state is process memory; lifecycle is bound to the server process.
type repository struct {
	mu sync.RWMutex

	blacklisted    map[string]struct{}
	blacklistOrder []string

	submissions map[string]private.SubmissionRecord

	staged map[string]private.StagedReport
}

type Repository interface {
	IsBlacklisted(ctx context.Context, ip string) (bool, error)
	AddToBlacklist(ctx context.Context, ip string) error
	RemoveFromBlacklist(ctx context.Context, ip string) error
	ListBlacklist(ctx context.Context) ([]string, error)

	GetSubmission(ctx context.Context, id string) (*private.SubmissionRecord, error)
	SetSubmission(ctx context.Context, id string, record private.SubmissionRecord) error
	PurgeSubmissions(ctx context.Context, cutoff time.Time) (int, error)

	StageReport(ctx context.Context, id string, report private.StagedReport) error
	GetStagedReport(ctx context.Context, id string) (*private.StagedReport, error)
	ClearStagedReport(ctx context.Context, id string) error
	PurgeStagedReports(ctx context.Context, cutoff time.Time) (int, error)
}

func (r *repository) IsBlacklisted(ctx context.Context, ip string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.blacklisted[ip]
	return ok, nil
}

func (r *repository) AddToBlacklist(ctx context.Context, ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blacklisted[ip]; ok {
		return nil
	}

	r.blacklisted[ip] = struct{}{}
	r.blacklistOrder = append(r.blacklistOrder, ip)
	return nil
}

func (r *repository) RemoveFromBlacklist(ctx context.Context, ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.blacklisted[ip]; !ok {
		return nil
	}

	delete(r.blacklisted, ip)
	for i, v := range r.blacklistOrder {
		if v == ip {
			r.blacklistOrder = append(r.blacklistOrder[:i], r.blacklistOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (r *repository) ListBlacklist(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]string, len(r.blacklistOrder))
	copy(list, r.blacklistOrder)
	return list, nil
}

func (r *repository) GetSubmission(ctx context.Context, id string) (*private.SubmissionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.submissions[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (r *repository) SetSubmission(ctx context.Context, id string, record private.SubmissionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.submissions[id] = record
	return nil
}

func (r *repository) PurgeSubmissions(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, record := range r.submissions {
		if record.LastSubmission.Before(cutoff) {
			delete(r.submissions, id)
			removed++
		}
	}
	return removed, nil
}

func (r *repository) StageReport(ctx context.Context, id string, report private.StagedReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Last write wins within a client's slot.
	r.staged[id] = report
	return nil
}

func (r *repository) GetStagedReport(ctx context.Context, id string) (*private.StagedReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.staged[id]
	if !ok {
		return nil, nil
	}
	return &report, nil
}

func (r *repository) ClearStagedReport(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.staged, id)
	return nil
}

func (r *repository) PurgeStagedReports(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, report := range r.staged {
		if report.SubmittedAt.Before(cutoff) {
			delete(r.staged, id)
			removed++
		}
	}
	return removed, nil
}

func NewRepository() Repository {
	return &repository{
		blacklisted: make(map[string]struct{}),
		submissions: make(map[string]private.SubmissionRecord),
		staged:      make(map[string]private.StagedReport),
	}
}
