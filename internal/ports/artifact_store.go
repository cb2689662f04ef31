package ports

import "github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"

// ArtifactStore persists run artifacts for reproducibility.
type ArtifactStore interface {
	SaveRun(run domain.RunResult) (id string, err error)
}
