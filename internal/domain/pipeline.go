package domain

// FileCheck asserts a property of an output file after a stage has run.
type FileCheck struct {
	// Path may contain {{var}} placeholders; it is resolved with the same
	// variable set as the stage itself.
	Path string

	// MinBytes is the minimum acceptable file size. Zero means "must exist".
	MinBytes int64
}

// JSONPathCheck defines a JSONPath-based check against a stage's stdout,
// for stages that print a JSON summary.
type JSONPathCheck struct {
	Exists  bool
	Eq      *string
	Matches *string
}

// ChecksSpec defines post-run checks for a stage.
type ChecksSpec struct {
	// ExitCode is the expected process exit code (optional).
	ExitCode *int

	// MaxDurationMS is a maximum allowed wall-clock duration in milliseconds (optional).
	MaxDurationMS *int

	// Files are output files that must exist (and optionally reach a size)
	// once the stage finishes (optional).
	Files []FileCheck

	// JSONPath contains JSONPath checks keyed by expression, evaluated
	// against the stage's stdout (optional).
	JSONPath map[string]JSONPathCheck
}

// ExtractSpec defines variable extraction from a stage's JSON stdout.
// Map: variableName -> jsonpathExpression
type ExtractSpec map[string]string

// StageSpec describes a single external-program invocation and its
// check/extraction rules.
type StageSpec struct {
	Name    string
	Command string
	Args    []string
	Env     map[string]string

	Checks  ChecksSpec
	Extract ExtractSpec
}

// Pipeline groups ordered stages under one logical unit (Git-friendly).
type Pipeline struct {
	Name string

	// Vars are default variables available to all stages in the pipeline.
	// These can be overridden by profile vars.
	Vars Vars

	Stages []StageSpec
}

// PipelineRef is a lightweight reference to a pipeline file on disk.
type PipelineRef struct {
	Name string
	Path string
}
