package finetune

import (
	"context"

	"github.com/mtechzilla/sitetune/models"
)

// JobRecorder persists every observed job snapshot.
type JobRecorder interface {
	RecordJob(ctx context.Context, job models.JobRecord) error
}

type NullJobRecorder struct{}

var _ JobRecorder = NullJobRecorder{}

func (NullJobRecorder) RecordJob(ctx context.Context, job models.JobRecord) error {
	return nil
}
