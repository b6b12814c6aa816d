package repositories

import (
	"database/sql"
	"elevator-sim/internal/domain"
	"fmt"
)

// Read elevator_reports rows (run_id first, then the report columns) and
// append each one to the run it belongs to. Rows must come ordered by slot.
func scanElevatorReports(rows *sql.Rows, runs []*domain.RunReport) error {
	byID := make(map[int64]*domain.RunReport, len(runs))
	for _, r := range runs {
		byID[r.ID] = r
	}

	for rows.Next() {
		var runID int64
		var er domain.ElevatorReport
		if err := rows.Scan(
			&runID,
			&er.Name,
			&er.Delivered,
			&er.FinalPosition,
			&er.FinalState,
			&er.MeanWait,
			&er.MeanRide,
		); err != nil {
			return fmt.Errorf("scan elevator report: %w", err)
		}

		run, ok := byID[runID]
		if !ok {
			continue
		}
		run.Elevators = append(run.Elevators, er)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("elevator report row iteration: %w", err)
	}
	return nil
}

func runIDs(runs []*domain.RunReport) []int64 {
	ids := make([]int64, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}
