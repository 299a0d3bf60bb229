package storage

import "time"

// Run is one archived verification run
type Run struct {
	RunID      string
	Host       string
	StartedAt  time.Time
	FinishedAt time.Time
	Passed     int
	Failed     int
	Warned     int
}
