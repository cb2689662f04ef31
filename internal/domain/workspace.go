package domain

// WorkspaceSpec describes where a workspace should be initialized.
type WorkspaceSpec struct {
	Root string
}

// SubmitRequest describes one batch-scheduler submission wrapping a pipeline
// run. Budgets mirror what the scheduler enforces; the driver itself does not.
type SubmitRequest struct {
	JobName   string
	Partition string
	Time      string // scheduler walltime, e.g. "23:59:00"
	Memory    string // e.g. "48gb"
	CPUs      int
	LogPath   string

	// Argv is the full command line the allocation should execute.
	Argv []string
}
