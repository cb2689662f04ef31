package ports

import (
	"context"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
)

// StageRunner executes a single stage with a resolved variable set.
//
// Runtime failures of the external program are reported inside StageResult;
// the error return is reserved for config-level problems (missing variable,
// unresolvable placeholder) detected before the process starts.
type StageRunner interface {
	Run(ctx context.Context, stage domain.StageSpec, vars domain.Vars) (domain.StageResult, error)
}
