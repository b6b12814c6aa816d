package ports

import (
	"context"
	"elevator-sim/internal/domain"
)

// Contract for memoising reports of deterministic runs by scenario fingerprint.
type ReportCache interface {
	// Return the cached report, or ok=false on a miss.
	Get(ctx context.Context, fingerprint string) (report *domain.RunReport, ok bool, err error)
	Put(ctx context.Context, fingerprint string, report *domain.RunReport) error
}
