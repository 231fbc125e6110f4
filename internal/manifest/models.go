package manifest

import "time"

// Status is the terminal or in-flight state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one conversion of one input.
type Run struct {
	ID         int64
	RunID      string
	Input      string
	Product    string
	Date       string
	Hemisphere string
	Version    string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     Status
	Error      string
	// OutputDir is the absolute directory the run wrote into, once resolved.
	OutputDir string
	// Skipped counts candidates whose field variable was absent.
	Skipped int
	// Outputs is filled by ListRuns with the number of recorded outputs.
	Outputs int
}

// Output is one legacy binary file written by a run.
type Output struct {
	ID        int64
	RunID     string
	Path      string
	Satellite string
	Channel   string
	Variable  string
	Bytes     int64
	SHA256    string
	CreatedAt time.Time
}
