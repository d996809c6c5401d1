package finetune

import (
	"context"
	"fmt"
	"os"

	"github.com/mtechzilla/sitetune/models"
	"github.com/openai/openai-go"
)

// Client is the part of the fine-tuning API the orchestrator uses.
type Client interface {
	UploadFile(ctx context.Context, path string) (fileID string, err error)
	CreateJob(ctx context.Context, fileID, model string) (*models.FineTuneJob, error)
	GetJob(ctx context.Context, jobID string) (*models.FineTuneJob, error)
}

// OpenAIClient implements Client with the OpenAI files and fine-tuning APIs.
type OpenAIClient struct {
	client openai.Client
}

var _ Client = (*OpenAIClient)(nil)

func NewOpenAIClient(client openai.Client) *OpenAIClient {
	return &OpenAIClient{client: client}
}

func (c *OpenAIClient) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("uploading training file: %w", err)
	}
	defer f.Close()

	file, err := c.client.Files.New(ctx, openai.FileNewParams{
		File:    f,
		Purpose: openai.FilePurposeFineTune,
	})
	if err != nil {
		return "", fmt.Errorf("uploading training file: %w", err)
	}
	return file.ID, nil
}

func (c *OpenAIClient) CreateJob(ctx context.Context, fileID, model string) (*models.FineTuneJob, error) {
	job, err := c.client.FineTuning.Jobs.New(ctx, openai.FineTuningJobNewParams{
		Model:        openai.FineTuningJobNewParamsModel(model),
		TrainingFile: fileID,
		Method: openai.FineTuningJobNewParamsMethod{
			Type: "supervised",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating fine-tuning job: %w", err)
	}
	return toJob(job), nil
}

func (c *OpenAIClient) GetJob(ctx context.Context, jobID string) (*models.FineTuneJob, error) {
	job, err := c.client.FineTuning.Jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("retrieving fine-tuning job %s: %w", jobID, err)
	}
	return toJob(job), nil
}

func toJob(job *openai.FineTuningJob) *models.FineTuneJob {
	return &models.FineTuneJob{
		ID:             job.ID,
		Status:         models.JobStatus(job.Status),
		FineTunedModel: job.FineTunedModel,
		Error:          job.Error.Message,
	}
}
