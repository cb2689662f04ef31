// Package execrunner executes pipeline stages as local child processes.
package execrunner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/ports"
)

const defaultMaxOutputBytes = 256 * 1024 // 256KB per stream

type Runner struct {
	maxOutputBytes int
	resolver       *domain.VarResolver
	workDir        string
	verbose        bool
}

type Option func(*Runner)

func WithMaxOutputBytes(n int) Option {
	return func(r *Runner) { r.maxOutputBytes = n }
}

func WithResolver(vr *domain.VarResolver) Option {
	return func(r *Runner) { r.resolver = vr }
}

// WithWorkDir sets the working directory stages run in.
func WithWorkDir(dir string) Option {
	return func(r *Runner) { r.workDir = dir }
}

// WithVerbose tees stage stderr to the driver's stderr in real time, in
// addition to the bounded capture.
func WithVerbose(enabled bool) Option {
	return func(r *Runner) { r.verbose = enabled }
}

func New(opts ...Option) *Runner {
	r := &Runner{
		maxOutputBytes: defaultMaxOutputBytes,
		resolver:       domain.NewVarResolver(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ports.StageRunner = (*Runner)(nil)

// Run resolves the stage against vars and executes it. Process-level failures
// (command missing, non-zero exit, timeout) are reported inside the result;
// only unresolvable configuration returns an error.
func (r *Runner) Run(ctx context.Context, stage domain.StageSpec, vars domain.Vars) (domain.StageResult, error) {
	rt, err := r.resolver.NewRuntime(vars)
	if err != nil {
		return domain.StageResult{}, err
	}

	resolved, err := rt.ResolveStage(stage)
	if err != nil {
		// Config-level issue: missing var, invalid placeholder, etc.
		return domain.StageResult{}, err
	}

	result := domain.StageResult{
		Name:      resolved.Name,
		Command:   resolved.Command,
		Args:      resolved.Args,
		Extracted: domain.Vars{},
		Extracts:  []domain.ExtractResult{},
		Checks:    []domain.CheckResult{},
	}

	cmd := exec.CommandContext(ctx, resolved.Command, resolved.Args...)
	if r.workDir != "" {
		cmd.Dir = r.workDir
	}
	cmd.Env = mergedEnv(resolved.Env)

	stdout := newBoundedWriter(r.maxOutputBytes)
	stderr := newBoundedWriter(r.maxOutputBytes)
	cmd.Stdout = stdout
	if r.verbose {
		cmd.Stderr = io.MultiWriter(stderr, os.Stderr)
	} else {
		cmd.Stderr = stderr
	}

	start := time.Now()
	runErr := cmd.Run()
	result.DurationMS = time.Since(start).Milliseconds()

	result.Output = domain.OutputSnapshot{
		Stdout:          stdout.Bytes(),
		Stderr:          stderr.Bytes(),
		StdoutTruncated: stdout.Truncated(),
		StderrTruncated: stderr.Truncated(),
	}

	if runErr == nil {
		return result, nil
	}

	result.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}
	result.Error = classify(ctx, runErr)
	return result, nil
}

func classify(ctx context.Context, err error) *domain.RunError {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &domain.RunError{Kind: domain.RunErrorTimeout, Message: err.Error()}
	case errors.Is(ctx.Err(), context.Canceled):
		return &domain.RunError{Kind: domain.RunErrorCanceled, Message: err.Error()}
	case errors.Is(err, exec.ErrNotFound):
		return &domain.RunError{Kind: domain.RunErrorCmdNotFound, Message: err.Error()}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &domain.RunError{Kind: domain.RunErrorExit, Message: err.Error()}
	}
	return &domain.RunError{Kind: domain.RunErrorStart, Message: err.Error()}
}

// mergedEnv layers stage env on top of the driver's own environment, so tool
// wrappers keep PATH, HOME and the usual cluster vars.
func mergedEnv(stageEnv map[string]string) []string {
	if len(stageEnv) == 0 {
		return nil // inherit as-is
	}
	env := os.Environ()
	for k, v := range stageEnv {
		env = append(env, k+"="+v)
	}
	return env
}
