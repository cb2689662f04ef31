package ports

import (
	"context"

	"github.com/sc-eQTLgen-consortium/gene-regulatory-networks/internal/domain"
)

// JobSubmitter hands a pipeline run to a batch scheduler and returns the
// scheduler-assigned job id.
type JobSubmitter interface {
	Submit(ctx context.Context, req domain.SubmitRequest) (jobID string, err error)
}
