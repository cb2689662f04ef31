package ports

import "github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"

type WorkspaceInitializer interface {
	Init(spec domain.WorkspaceSpec, force bool) error
}

// WorkspaceLocator finds a workspace root starting from an arbitrary directory.
type WorkspaceLocator interface {
	FindRoot(startDir string) (string, error)
}
