// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickly-vote/models"
)

// Source is the store the auditor reads.
type Source interface {
	ElectionIDs(ctx context.Context) ([]string, error)
	TallyDrift(ctx context.Context, electionID string) ([]models.TallyDrift, error)
}

// Auditor compares cached tallies with vote record counts. It reports drift
// and never changes a tally.
type Auditor struct {
	src      Source
	interval time.Duration
	now      func() time.Time
}

func New(src Source, interval time.Duration) *Auditor {
	return &Auditor{src: src, interval: interval, now: time.Now}
}

// Check audits one election.
func (a *Auditor) Check(ctx context.Context, electionID string) (models.AuditResponse, error) {
	drift, err := a.src.TallyDrift(ctx, electionID)
	if err != nil {
		return models.AuditResponse{}, fmt.Errorf("failed to audit election %s: %w", electionID, err)
	}

	for _, d := range drift {
		slog.Error("tally drift detected",
			"alert", "page",
			"election_id", electionID,
			"candidate_id", d.CandidateID,
			"tally", d.Tally,
			"recorded", d.Recorded,
		)
	}

	return models.AuditResponse{
		ElectionID: electionID,
		CheckedAt:  a.now().UTC(),
		Healthy:    len(drift) == 0,
		Drift:      drift,
	}, nil
}

// CheckAll audits every election and returns the number with drift.
func (a *Auditor) CheckAll(ctx context.Context) (int, error) {
	ids, err := a.src.ElectionIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list elections: %w", err)
	}

	unhealthy := 0
	for _, id := range ids {
		report, err := a.Check(ctx, id)
		if err != nil {
			return unhealthy, err
		}
		if !report.Healthy {
			unhealthy++
		}
	}
	return unhealthy, nil
}

// Run audits every interval until ctx is done. A non-positive interval disables it.
func (a *Auditor) Run(ctx context.Context) error {
	if a.interval <= 0 {
		slog.Info("tally auditor disabled")
		return nil
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := a.CheckAll(ctx); err != nil {
				slog.Warn("tally audit failed", "error", err)
			}
		}
	}
}
