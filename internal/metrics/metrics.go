package metrics

import (
	"fmt"
	"os"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// Snapshot is the exportable view of a run's counters
type Snapshot struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	ResourcesFetched  int       `json:"resources_fetched"`
	FetchFailures     int       `json:"fetch_failures"`
	Passed            int       `json:"passed"`
	Warned            int       `json:"warned"`
	Failed            int       `json:"failed"`
	TotalFetchTimeMs  int64     `json:"total_fetch_time_ms"`
	AvgFetchTimeMs    int64     `json:"avg_fetch_time_ms"`
	TerminationReason string    `json:"termination_reason"`
}

// Tracker holds and manages run counters. The crawl itself is sequential,
// but the progress logger reads the tracker from its own goroutine.
type Tracker struct {
	mu               sync.Mutex
	data             Snapshot
	totalFetchTimeMs int64
	fetchCount       int
}

// NewTracker creates a new counter tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: Snapshot{
			StartTime: time.Now(),
		},
	}
}

// IncrementResourcesFetched increments the successful fetch counter
func (t *Tracker) IncrementResourcesFetched() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.ResourcesFetched++
}

// IncrementFetchFailures increments the failed fetch counter
func (t *Tracker) IncrementFetchFailures() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.FetchFailures++
}

// IncrementPassed increments the Pass verdict counter
func (t *Tracker) IncrementPassed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.Passed++
}

// IncrementWarned increments the Warning verdict counter
func (t *Tracker) IncrementWarned() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.Warned++
}

// IncrementFailed increments the Fail verdict counter
func (t *Tracker) IncrementFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.Failed++
}

// RecordFetchTime records one fetch duration
func (t *Tracker) RecordFetchTime(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalFetchTimeMs += duration.Milliseconds()
	t.fetchCount++
}

// GetSnapshot returns a copy of the current counters
func (t *Tracker) GetSnapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.data
	snapshot.TotalFetchTimeMs = t.totalFetchTimeMs
	if t.fetchCount > 0 {
		snapshot.AvgFetchTimeMs = t.totalFetchTimeMs / int64(t.fetchCount)
	}

	return snapshot
}

// WriteToFile exports the counters to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason
	t.data.TotalFetchTimeMs = t.totalFetchTimeMs
	if t.fetchCount > 0 {
		t.data.AvgFetchTimeMs = t.totalFetchTimeMs / int64(t.fetchCount)
	}

	jsonData, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress formats the current counters for the periodic progress log
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Resources: %d fetched, %d failed | Verdicts: %d pass, %d warning, %d fail",
		t.data.ResourcesFetched,
		t.data.FetchFailures,
		t.data.Passed,
		t.data.Warned,
		t.data.Failed,
	)
}
