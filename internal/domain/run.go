package domain

import (
	"context"
	"errors"
	"time"
)

// RunErrorKind is a high-level classification of stage execution failures.
type RunErrorKind string

const (
	RunErrorUnknown     RunErrorKind = "unknown"
	RunErrorTimeout     RunErrorKind = "timeout"
	RunErrorCanceled    RunErrorKind = "canceled"
	RunErrorCmdNotFound RunErrorKind = "command_not_found"
	RunErrorStart       RunErrorKind = "start"
	RunErrorExit        RunErrorKind = "exit"
)

// RunError represents a structured failure produced by a stage runner.
// Stage failures are data, not Go errors: the pipeline keeps going past a
// failed stage unless the caller asked for fail-fast.
type RunError struct {
	Kind    RunErrorKind
	Message string
}

// NewRunError classifies err into a RunError. Context errors map to
// timeout/canceled; runners attach more specific kinds themselves.
func NewRunError(err error) *RunError {
	if err == nil {
		return nil
	}
	kind := RunErrorUnknown
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = RunErrorTimeout
	case errors.Is(err, context.Canceled):
		kind = RunErrorCanceled
	}
	return &RunError{Kind: kind, Message: err.Error()}
}

// CheckResult is the output of a single post-stage check.
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// ExtractResult reports one stdout-extraction rule.
type ExtractResult struct {
	Name    string
	Success bool
	Message string
}

// OutputSnapshot stores a bounded view of a stage's captured streams.
type OutputSnapshot struct {
	Stdout          []byte
	Stderr          []byte
	StdoutTruncated bool
	StderrTruncated bool
}

// StageResult represents the result of executing a single stage.
type StageResult struct {
	Name    string
	Command string
	Args    []string

	ExitCode   int
	DurationMS int64

	Checks    []CheckResult
	Extracts  []ExtractResult
	Extracted Vars

	Output OutputSnapshot
	Error  *RunError
}

// RunResult represents one pipeline execution, persisted for reproducibility.
type RunResult struct {
	PipelineName string
	PipelinePath string
	ProfileName  string

	StartedAt time.Time
	EndedAt   time.Time

	Stages []StageResult
}
