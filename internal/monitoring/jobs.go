package monitoring

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/assetmgr/assetmgr/pkg/metrics"
)

// Job results recorded by RecordRun.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// JobSummary is the point-in-time state of one scheduled job.
type JobSummary struct {
	Job                 string        `json:"job"`
	LastStatus          string        `json:"last_status"`
	LastRunAt           time.Time     `json:"last_run_at"`
	LastDuration        time.Duration `json:"last_duration"`
	LastError           string        `json:"last_error,omitempty"`
	LastSuccessAt       time.Time     `json:"last_success_at"`
	ConsecutiveFailures uint64        `json:"consecutive_failures"`
	TotalRuns           uint64        `json:"total_runs"`
}

// JobTracker keeps run statistics for scheduled maintenance jobs and mirrors
// every run into the maintenance run counter.
type JobTracker struct {
	mu   sync.RWMutex
	jobs map[string]*JobSummary
	now  func() time.Time
}

// NewJobTracker constructs an empty tracker.
func NewJobTracker() *JobTracker {
	return &JobTracker{jobs: map[string]*JobSummary{}, now: time.Now}
}

// Register makes a job visible before its first run so health checks can
// report it as pending.
func (t *JobTracker) Register(job string) {
	job = normalizeLabel(job)
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.jobs[job]; !ok {
		t.jobs[job] = &JobSummary{Job: job}
	}
}

// RecordRun records the completion of a job run.
func (t *JobTracker) RecordRun(job, result, message string, duration time.Duration) {
	job = normalizeLabel(job)
	result = normalizeLabel(result)
	if duration < 0 {
		duration = 0
	}
	metrics.MaintenanceRuns.WithLabelValues(job, result).Inc()

	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.jobs[job]
	if !ok {
		entry = &JobSummary{Job: job}
		t.jobs[job] = entry
	}
	entry.LastStatus = result
	entry.LastRunAt = now
	entry.LastDuration = duration
	entry.LastError = strings.TrimSpace(message)
	entry.TotalRuns++
	if result == ResultSuccess {
		entry.ConsecutiveFailures = 0
		entry.LastSuccessAt = now
	} else {
		entry.ConsecutiveFailures++
	}
}

// Snapshot returns a copy of every job's state ordered by job name.
func (t *JobTracker) Snapshot() []JobSummary {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]JobSummary, 0, len(t.jobs))
	for _, entry := range t.jobs {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Job < out[j].Job })
	return out
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
