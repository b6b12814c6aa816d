package ports

import (
	"context"
	"elevator-sim/internal/domain"
)

// Port: a boundary for storing and listing finished run reports.
type ReportRepository interface {
	// Store a report and return the ID assigned to it.
	SaveReport(ctx context.Context, report *domain.RunReport) (int64, error)
	// Retrieve the most recent reports, newest first.
	ListReports(ctx context.Context, limit int) ([]*domain.RunReport, error)
}
