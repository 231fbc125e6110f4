package convert

import (
	"nc2bin/internal/extract"
	"nc2bin/internal/legacy"
)

// Output is one legacy binary file written by a run.
type Output struct {
	extract.Candidate
	Path   string
	Bytes  int
	SHA256 string
}

// Skip is a candidate that produced no output.
type Skip struct {
	extract.Candidate
	Reason string
}

// Report summarizes one run. It is returned even when the run fails so
// callers can see how far it got.
type Report struct {
	RunID     string
	Input     string
	Product   legacy.Descriptor
	Metadata  legacy.Metadata
	OutputDir string
	State     State
	Written   []Output
	Skipped   []Skip
}

// PlannedOutput is an output a run would write.
type PlannedOutput struct {
	extract.Candidate
	Path string
}

// Plan is the resolved product, metadata and output names for an input.
type Plan struct {
	Input     string
	Product   legacy.Descriptor
	Metadata  legacy.Metadata
	OutputDir string
	Outputs   []PlannedOutput
}
