package usecase

import (
	"context"
	"fmt"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/ports"
)

// PlannedStage is one fully resolved invocation: what `run` would execute,
// without executing it.
type PlannedStage struct {
	Name string
	Argv []string
	Env  map[string]string
}

type PlanPipeline struct {
	pipelines ports.PipelineLoader
	profiles  ports.ProfileLoader
	resolver  *domain.VarResolver
}

func NewPlanPipeline(pl ports.PipelineLoader, prl ports.ProfileLoader) *PlanPipeline {
	return &PlanPipeline{
		pipelines: pl,
		profiles:  prl,
		resolver:  domain.NewVarResolver(),
	}
}

// Execute resolves every stage against the profile and returns the concrete
// command lines in execution order. Extract keys are assumed present for
// later stages, same as validation.
func (uc *PlanPipeline) Execute(ctx context.Context, pipelinePath string, profileNameOrPath string) (string, []PlannedStage, error) {
	pipe, err := uc.pipelines.LoadPipeline(pipelinePath)
	if err != nil {
		return "", nil, err
	}

	profile, err := uc.profiles.LoadProfile(profileNameOrPath)
	if err != nil {
		return "", nil, err
	}

	vars := mergeVars(pipe.Vars, profile.Vars)

	planned := make([]PlannedStage, 0, len(pipe.Stages))
	for _, stage := range pipe.Stages {
		if err := ctx.Err(); err != nil {
			return pipe.Name, nil, err
		}

		rt, err := uc.resolver.NewRuntime(vars)
		if err != nil {
			return pipe.Name, nil, err
		}

		resolved, err := rt.ResolveStage(stage)
		if err != nil {
			return pipe.Name, nil, fmt.Errorf("stage %q: %w", stage.Name, err)
		}

		argv := append([]string{resolved.Command}, resolved.Args...)
		planned = append(planned, PlannedStage{
			Name: resolved.Name,
			Argv: argv,
			Env:  resolved.Env,
		})

		for k := range stage.Extract {
			if _, ok := vars[k]; !ok {
				vars[k] = "x"
			}
		}
	}

	return pipe.Name, planned, nil
}
