package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/ports"
	uccheck "github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/usecase/check"
	ucextract "github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/usecase/extract"
)

type RunPipeline struct {
	pipelines ports.PipelineLoader
	profiles  ports.ProfileLoader
	runner    ports.StageRunner
	store     ports.ArtifactStore

	resolver *domain.VarResolver
	failFast bool
}

type RunOption func(*RunPipeline)

// WithFailFast aborts the run after the first failed stage. The default keeps
// going, matching the batch scripts this driver replaces: a broken branch
// still lets the other branch produce its files.
func WithFailFast(enabled bool) RunOption {
	return func(uc *RunPipeline) { uc.failFast = enabled }
}

func WithRunResolver(vr *domain.VarResolver) RunOption {
	return func(uc *RunPipeline) {
		if vr != nil {
			uc.resolver = vr
		}
	}
}

func NewRunPipeline(pl ports.PipelineLoader, prl ports.ProfileLoader, sr ports.StageRunner, store ports.ArtifactStore, opts ...RunOption) *RunPipeline {
	uc := &RunPipeline{
		pipelines: pl,
		profiles:  prl,
		runner:    sr,
		store:     store,
		resolver:  domain.NewVarResolver(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute runs every stage of the pipeline in declared order. Stage failures
// are recorded and execution continues unless fail-fast was requested. The
// returned id is empty when no store is configured.
func (uc *RunPipeline) Execute(ctx context.Context, pipelinePath string, profileNameOrPath string) (domain.RunResult, string, error) {
	pipe, err := uc.pipelines.LoadPipeline(pipelinePath)
	if err != nil {
		return domain.RunResult{}, "", err
	}

	profile, err := uc.profiles.LoadProfile(profileNameOrPath)
	if err != nil {
		return domain.RunResult{}, "", err
	}

	// pipeline vars < profile vars < extracted runtime vars (updated per stage)
	vars := mergeVars(pipe.Vars, profile.Vars)

	run := domain.RunResult{
		PipelineName: pipe.Name,
		PipelinePath: pipelinePath,
		ProfileName:  profile.Name,
		StartedAt:    time.Now(),
		Stages:       make([]domain.StageResult, 0, len(pipe.Stages)),
	}

	for _, stage := range pipe.Stages {
		if err := ctx.Err(); err != nil {
			run.EndedAt = time.Now()
			return run, "", err
		}

		sr, runErr := uc.runner.Run(ctx, stage, vars)
		if runErr != nil {
			// Runner error (config-level): record the stage as failed.
			run.Stages = append(run.Stages, domain.StageResult{
				Name:      stage.Name,
				Command:   stage.Command,
				Args:      stage.Args,
				Checks:    []domain.CheckResult{},
				Extracts:  []domain.ExtractResult{},
				Extracted: domain.Vars{},
				Error:     domain.NewRunError(runErr),
			})
			if uc.failFast {
				break
			}
			continue
		}

		// Checks (always evaluated, even if sr.Error != nil)
		checks, preFailures := uc.resolvedChecks(vars, stage.Checks)
		sr.Checks = append(preFailures, uccheck.Evaluate(checks, sr.ExitCode, sr.DurationMS, sr.Output.Stdout)...)

		extracted, extractResults := ucextract.Apply(sr.Output.Stdout, stage.Extract)
		sr.Extracts = extractResults
		sr.Extracted = extracted

		// Update runtime vars for later stages (a partial extract still
		// contributes the keys that succeeded).
		for k, v := range extracted {
			vars[k] = v
		}

		run.Stages = append(run.Stages, sr)

		if uc.failFast && stageFailed(sr) {
			break
		}
	}

	run.EndedAt = time.Now()

	if uc.store == nil {
		return run, "", nil
	}

	id, err := uc.store.SaveRun(run)
	if err != nil {
		return run, "", err
	}
	return run, id, nil
}

// resolvedChecks substitutes {{vars}} in file-check paths. Paths that cannot
// be resolved become failed check results instead of aborting the stage.
func (uc *RunPipeline) resolvedChecks(vars domain.Vars, spec domain.ChecksSpec) (domain.ChecksSpec, []domain.CheckResult) {
	if len(spec.Files) == 0 {
		return spec, nil
	}

	rt, err := uc.resolver.NewRuntime(vars)
	if err != nil {
		return spec, []domain.CheckResult{{
			Name:    "file",
			Passed:  false,
			Message: fmt.Sprintf("cannot resolve file checks: %v", err),
		}}
	}

	out := spec
	out.Files = make([]domain.FileCheck, 0, len(spec.Files))
	var failures []domain.CheckResult

	for _, fc := range spec.Files {
		p, rerr := rt.ResolveString(fc.Path)
		if rerr != nil {
			failures = append(failures, domain.CheckResult{
				Name:    "file",
				Passed:  false,
				Message: fmt.Sprintf("file check %q: %v", fc.Path, rerr),
			})
			continue
		}
		out.Files = append(out.Files, domain.FileCheck{Path: p, MinBytes: fc.MinBytes})
	}

	return out, failures
}

func stageFailed(sr domain.StageResult) bool {
	if sr.Error != nil {
		return true
	}
	for _, c := range sr.Checks {
		if !c.Passed {
			return true
		}
	}
	for _, e := range sr.Extracts {
		if !e.Success {
			return true
		}
	}
	return false
}

func mergeVars(pipelineVars domain.Vars, profileVars domain.Vars) domain.Vars {
	out := domain.Vars{}

	// pipeline first
	for k, v := range pipelineVars {
		out[k] = v
	}
	// profile overrides pipeline
	for k, v := range profileVars {
		out[k] = v
	}
	return out
}
