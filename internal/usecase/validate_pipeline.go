package usecase

import (
	"context"
	"fmt"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/ports"
)

type ValidatePipeline struct {
	pipelines ports.PipelineLoader
	profiles  ports.ProfileLoader
	resolver  *domain.VarResolver
}

type ValidateOption func(*ValidatePipeline)

func WithVarResolver(vr *domain.VarResolver) ValidateOption {
	return func(uc *ValidatePipeline) {
		if vr != nil {
			uc.resolver = vr
		}
	}
}

func NewValidatePipeline(pl ports.PipelineLoader, prl ports.ProfileLoader, opts ...ValidateOption) *ValidatePipeline {
	uc := &ValidatePipeline{
		pipelines: pl,
		profiles:  prl,
		resolver:  domain.NewVarResolver(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute validates a pipeline + profile pair without executing anything.
// It resolves templated fields ({{vars}}) and performs a basic "static" check
// that variables referenced later can come from initial vars or earlier
// extract keys.
func (uc *ValidatePipeline) Execute(ctx context.Context, pipelinePath string, profileNameOrPath string) error {
	pipe, err := uc.pipelines.LoadPipeline(pipelinePath)
	if err != nil {
		return err
	}

	profile, err := uc.profiles.LoadProfile(profileNameOrPath)
	if err != nil {
		return err
	}

	// pipeline vars < profile vars < extracted vars
	vars := mergeVars(pipe.Vars, profile.Vars)

	for _, stage := range pipe.Stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		rt, err := uc.resolver.NewRuntime(vars)
		if err != nil {
			return err
		}

		if _, err := rt.ResolveStage(stage); err != nil {
			return fmt.Errorf("stage %q: %w", stage.Name, err)
		}

		// Assume extract keys become available for subsequent stages.
		for k := range stage.Extract {
			if _, ok := vars[k]; !ok {
				vars[k] = "x"
			}
		}
	}

	return nil
}
