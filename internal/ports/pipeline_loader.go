package ports

import "github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"

// PipelineLoader loads pipeline manifests from a source (e.g., filesystem).
type PipelineLoader interface {
	LoadPipeline(path string) (domain.Pipeline, error)
	ListPipelines(root string) ([]domain.PipelineRef, error)
}
