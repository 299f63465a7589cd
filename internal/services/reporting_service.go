package services

import (
	"context"
	"sync"

	"clockin/internal/domain"
	"clockin/internal/errors"
	"clockin/internal/history"
	"clockin/internal/logging"
	"clockin/internal/repository"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	owner string
	repo  repository.TimeEntryRepository

	mu       sync.Mutex
	lastGood []*domain.TimeEntry
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(owner string, repo repository.TimeEntryRepository) ReportingService {
	return &reportingServiceImpl{owner: owner, repo: repo}
}

// FetchEntries loads every entry of the owner. A failure is wrapped as a
// fetch error; the previous successful list is kept for History.
func (r *reportingServiceImpl) FetchEntries(ctx context.Context) ([]*domain.TimeEntry, error) {
	if r.repo == nil {
		return nil, errors.NewFetchError(r.owner, errors.NewInvalidStateError("load history", "no time-entry store is configured"))
	}

	entries, err := r.repo.ListTimeEntries(ctx, r.owner)
	if err != nil {
		return nil, errors.NewFetchError(r.owner, err)
	}
	for _, entry := range entries {
		history.Complete(entry)
	}

	r.mu.Lock()
	r.lastGood = entries
	r.mu.Unlock()
	return entries, nil
}

// BuildReport filters and totals entries
func (r *reportingServiceImpl) BuildReport(entries []*domain.TimeEntry, rng *domain.DateRange) *HistoryReport {
	summary := history.Summarize(entries, rng)
	return &HistoryReport{
		Summary: summary,
		Daily:   history.DailyTotals(summary.Entries),
	}
}

// History fetches and summarizes. On a fetch failure the report is built
// from the last good list, or an empty one, and the error is returned with it.
func (r *reportingServiceImpl) History(ctx context.Context, rng *domain.DateRange) (*HistoryReport, error) {
	entries, err := r.FetchEntries(ctx)
	if err == nil {
		return r.BuildReport(entries, rng), nil
	}

	logging.Debugf("reporting: fetch failed for %s: %v\n", r.owner, err)
	r.mu.Lock()
	stale := r.lastGood
	r.mu.Unlock()

	report := r.BuildReport(stale, rng)
	report.Stale = true
	return report, err
}
