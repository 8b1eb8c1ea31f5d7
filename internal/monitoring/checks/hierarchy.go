package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/assetmgr/assetmgr/internal/monitoring"
)

// SnapshotState describes the hierarchy snapshot currently served.
type SnapshotState struct {
	BuiltAt time.Time
	Nodes   int
	Cycles  int
}

// Hierarchy reports down until the first snapshot is built, and degraded when
// the snapshot is older than maxAge or had to cut parent cycles.
func Hierarchy(state func() SnapshotState, maxAge time.Duration) monitoring.Check {
	return monitoring.NewCheck("hierarchy", func(ctx context.Context) monitoring.ProbeResult {
		if state == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "hierarchy not configured"}
		}
		current := state()
		if current.BuiltAt.IsZero() {
			return monitoring.ProbeResult{Status: monitoring.StatusDown, Details: "hierarchy not built"}
		}

		age := time.Since(current.BuiltAt)
		switch {
		case maxAge > 0 && age > maxAge:
			return monitoring.ProbeResult{
				Status:  monitoring.StatusDegraded,
				Details: fmt.Sprintf("snapshot is %s old", age.Round(time.Second)),
			}
		case current.Cycles > 0:
			return monitoring.ProbeResult{
				Status:  monitoring.StatusDegraded,
				Details: fmt.Sprintf("%d parent cycles cut", current.Cycles),
			}
		}
		return monitoring.ProbeResult{
			Status:  monitoring.StatusUp,
			Details: fmt.Sprintf("%d nodes", current.Nodes),
		}
	})
}
