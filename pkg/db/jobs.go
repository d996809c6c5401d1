package db

import (
	"context"
	"fmt"

	"github.com/mtechzilla/sitetune/models"
)

// RecordJob inserts a job or updates its latest state. created_at keeps the
// value of the first insert.
func (db *DB) RecordJob(ctx context.Context, job models.JobRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO fine_tune_jobs (job_id, file_id, base_model, training_file, status,
			fine_tuned_model, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			status = excluded.status,
			fine_tuned_model = excluded.fine_tuned_model,
			error = excluded.error,
			updated_at = excluded.updated_at
	`, job.JobID, job.FileID, job.BaseModel, job.TrainingFile, string(job.Status),
		job.FineTunedModel, job.Error, formatTime(job.CreatedAt), formatTime(job.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to record job %s: %w", job.JobID, err)
	}
	return nil
}

// ListJobs returns the most recently updated jobs first.
func (db *DB) ListJobs(limit int) ([]models.JobRecord, error) {
	rows, err := db.Query(`
		SELECT job_id, COALESCE(file_id, ''), base_model, COALESCE(training_file, ''), status,
			COALESCE(fine_tuned_model, ''), COALESCE(error, ''), created_at, updated_at
		FROM fine_tune_jobs
		ORDER BY updated_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.JobRecord
	for rows.Next() {
		var j models.JobRecord
		var status, created, updated string
		if err := rows.Scan(&j.JobID, &j.FileID, &j.BaseModel, &j.TrainingFile, &status,
			&j.FineTunedModel, &j.Error, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		j.Status = models.JobStatus(status)
		if j.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if j.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
