// Package finetune drives a supervised fine-tuning job from dataset
// validation to a ready model.
package finetune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtechzilla/sitetune/models"
	"github.com/mtechzilla/sitetune/pkg/dataset"
)

// State is a step of the fine-tuning workflow.
type State string

const (
	StateValidating State = "validating"
	StateUploading  State = "uploading"
	StateJobCreated State = "job_created"
	StatePolling    State = "polling"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

func (s State) terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

var (
	ErrJobFailed    = errors.New("fine-tuning job failed")
	ErrJobCancelled = errors.New("fine-tuning job was cancelled")
)

// Validator checks a dataset file before it is uploaded.
type Validator interface {
	Validate(path string) (*dataset.Report, error)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Result describes a successful fine-tuning run.
type Result struct {
	FineTunedModel string
	JobID          string
	FileID         string
	ValidExamples  int
	SizeBytes      int64
	Polls          int
}

type Orchestrator struct {
	client       Client
	validator    Validator
	model        string
	pollInterval time.Duration
	sleep        Sleeper
	recorder     JobRecorder
	logger       *slog.Logger
	now          func() time.Time
}

func New(
	client Client,
	validator Validator,
	model string,
	pollInterval time.Duration,
	options ...func(*Orchestrator),
) *Orchestrator {
	o := &Orchestrator{
		client:       client,
		validator:    validator,
		model:        model,
		pollInterval: pollInterval,
		sleep:        sleep,
		recorder:     NullJobRecorder{},
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, option := range options {
		option(o)
	}
	return o
}

func WithSleeper(s Sleeper) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.sleep = s
	}
}

func WithRecorder(r JobRecorder) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

func WithLogger(l *slog.Logger) func(*Orchestrator) {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// run holds the mutable state of a single Run call.
type run struct {
	state  State
	path   string
	result Result
	job    *models.FineTuneJob
	err    error
}

// Run validates, uploads and trains on the dataset at path and polls the job
// until it reaches a terminal status. It returns an error wrapping
// ErrJobFailed or ErrJobCancelled when the job does not succeed.
func (o *Orchestrator) Run(ctx context.Context, path string) (*Result, error) {
	r := &run{state: StateValidating, path: path}

	for !r.state.terminal() {
		var next State
		switch r.state {
		case StateValidating:
			next = o.validate(r)
		case StateUploading:
			next = o.upload(ctx, r)
		case StateJobCreated:
			next = o.createJob(ctx, r)
		case StatePolling:
			next = o.poll(ctx, r)
		default:
			return nil, fmt.Errorf("unknown state %q", r.state)
		}
		if r.err != nil {
			return nil, r.err
		}
		o.logger.Debug("Fine-tuning state transition", "from", r.state, "to", next)
		r.state = next
	}

	if r.state != StateSucceeded {
		return nil, r.err
	}
	return &r.result, nil
}

func (o *Orchestrator) validate(r *run) State {
	o.logger.Info("Validating training data format", "path", r.path)
	report, err := o.validator.Validate(r.path)
	if err != nil {
		r.err = err
		return StateFailed
	}
	r.result.ValidExamples = report.ValidExamples
	r.result.SizeBytes = report.SizeBytes
	return StateUploading
}

func (o *Orchestrator) upload(ctx context.Context, r *run) State {
	o.logger.Info("Uploading training file", "path", r.path)
	fileID, err := o.client.UploadFile(ctx, r.path)
	if err != nil {
		r.err = err
		return StateFailed
	}
	o.logger.Info("Training file uploaded", "file_id", fileID)
	r.result.FileID = fileID
	return StateJobCreated
}

func (o *Orchestrator) createJob(ctx context.Context, r *run) State {
	o.logger.Info("Creating fine-tuning job", "model", o.model, "file_id", r.result.FileID)
	job, err := o.client.CreateJob(ctx, r.result.FileID, o.model)
	if err != nil {
		r.err = err
		return StateFailed
	}
	o.logger.Info("Fine-tuning job created", "job_id", job.ID)
	r.result.JobID = job.ID
	r.job = job
	o.record(ctx, r)
	return StatePolling
}

// poll fetches the job status once and sleeps when the job is still running.
func (o *Orchestrator) poll(ctx context.Context, r *run) State {
	job, err := o.client.GetJob(ctx, r.result.JobID)
	if err != nil {
		r.err = err
		return StateFailed
	}
	r.result.Polls++
	r.job = job
	o.logger.Info("Fine-tuning job status", "job_id", job.ID, "status", job.Status, "poll", r.result.Polls)
	o.record(ctx, r)

	if !job.Status.IsTerminal() {
		if err := o.sleep(ctx, o.pollInterval); err != nil {
			r.err = fmt.Errorf("waiting for fine-tuning job %s: %w", job.ID, err)
			return StateFailed
		}
		return StatePolling
	}

	switch job.Status {
	case models.JobStatusSucceeded:
		r.result.FineTunedModel = job.FineTunedModel
		o.logger.Info("Fine-tuning completed", "fine_tuned_model", job.FineTunedModel)
		return StateSucceeded
	case models.JobStatusFailed:
		r.err = withMessage(ErrJobFailed, job.Error)
		return StateFailed
	default:
		r.err = withMessage(ErrJobCancelled, job.Error)
		return StateCancelled
	}
}

// withMessage attaches the API's error message to err when there is one.
func withMessage(err error, msg string) error {
	if msg == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, msg)
}

func (o *Orchestrator) record(ctx context.Context, r *run) {
	now := o.now()
	rec := models.JobRecord{
		JobID:          r.job.ID,
		FileID:         r.result.FileID,
		BaseModel:      o.model,
		TrainingFile:   r.path,
		Status:         r.job.Status,
		FineTunedModel: r.job.FineTunedModel,
		Error:          r.job.Error,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := o.recorder.RecordJob(ctx, rec); err != nil {
		o.logger.Warn("Failed to record fine-tuning job", "job_id", rec.JobID, "error", err)
	}
}
