// Package slurm submits pipeline runs to a SLURM cluster via sbatch.
package slurm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/ports"
)

// Defaults mirror the batch headers the original submission scripts carried.
const (
	DefaultTime   = "23:59:00"
	DefaultMemory = "48gb"
	DefaultCPUs   = 1
)

var jobIDRe = regexp.MustCompile(`Submitted batch job (\d+)`)

type Submitter struct {
	sbatch string
}

type Option func(*Submitter)

// WithSbatch overrides the sbatch executable (useful for tests and for
// clusters where sbatch is not on PATH).
func WithSbatch(path string) Option {
	return func(s *Submitter) { s.sbatch = path }
}

func New(opts ...Option) *Submitter {
	s := &Submitter{sbatch: "sbatch"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.JobSubmitter = (*Submitter)(nil)

// Submit wraps req.Argv in an sbatch call and returns the job id parsed from
// sbatch's stdout.
func (s *Submitter) Submit(ctx context.Context, req domain.SubmitRequest) (string, error) {
	if len(req.Argv) == 0 {
		return "", &domain.OpError{
			Op:   "slurm.submit",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("empty command line"),
		}
	}

	args := BuildArgs(req)

	cmd := exec.CommandContext(ctx, s.sbatch, args...)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return "", &domain.OpError{
			Op:   "slurm.submit",
			Kind: domain.KindScheduler,
			Err:  fmt.Errorf("sbatch failed: %w: %s", err, strings.TrimSpace(errOut.String())),
		}
	}

	id := ParseJobID(out.String())
	if id == "" {
		return "", &domain.OpError{
			Op:   "slurm.submit",
			Kind: domain.KindScheduler,
			Err:  fmt.Errorf("cannot parse job id from sbatch output %q", strings.TrimSpace(out.String())),
		}
	}
	return id, nil
}

// BuildArgs translates a submit request into sbatch arguments. The wrapped
// command follows `--wrap` so the allocation runs the driver itself.
func BuildArgs(req domain.SubmitRequest) []string {
	jobName := req.JobName
	if jobName == "" {
		jobName = "coeqtl"
	}

	t := req.Time
	if t == "" {
		t = DefaultTime
	}
	mem := req.Memory
	if mem == "" {
		mem = DefaultMemory
	}
	cpus := req.CPUs
	if cpus <= 0 {
		cpus = DefaultCPUs
	}

	args := []string{
		"--job-name=" + jobName,
		"--time=" + t,
		"--mem=" + mem,
		"--cpus-per-task=" + strconv.Itoa(cpus),
		"--nodes=1",
	}
	if req.Partition != "" {
		args = append(args, "--partition="+req.Partition)
	}
	if req.LogPath != "" {
		args = append(args, "--output="+req.LogPath)
	}

	args = append(args, "--wrap="+shellJoin(req.Argv))
	return args
}

// ParseJobID extracts the numeric job id from sbatch output, or returns "".
func ParseJobID(out string) string {
	m := jobIDRe.FindStringSubmatch(out)
	if len(m) != 2 {
		return ""
	}
	return m[1]
}

// shellJoin quotes argv for sbatch --wrap, which hands the string to sh -c.
func shellJoin(argv []string) string {
	quoted := make([]string, 0, len(argv))
	for _, a := range argv {
		quoted = append(quoted, shellQuote(a))
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$&|;<>()*?[]#~%{}`") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
