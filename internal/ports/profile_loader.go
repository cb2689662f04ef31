package ports

import "github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"

// ProfileLoader loads profile variables from a source (e.g., filesystem).
type ProfileLoader interface {
	LoadProfile(nameOrPath string) (domain.Profile, error)
}

// ProfileCatalog enumerates the profiles available in a workspace.
type ProfileCatalog interface {
	ListProfiles(root string) ([]domain.ProfileRef, error)
}
