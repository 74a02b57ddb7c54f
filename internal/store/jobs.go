package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cgchiraggupta/kalakar/models"
)

// CreateTranscriptionJob inserts a pending transcription job row.
func (s *Store) CreateTranscriptionJob(job models.TranscriptionJob) (*models.TranscriptionJob, error) {
	body, _, err := s.db.From("transcription_jobs").
		Insert(job, false, "", "representation", "").
		Execute()
	if err != nil {
		s.log.Errorf("Error inserting transcription job: %v", err)
		return nil, fmt.Errorf("insert transcription job: %w", err)
	}

	var created []models.TranscriptionJob
	if err := json.Unmarshal(body, &created); err != nil || len(created) == 0 {
		s.log.Errorf("Error unmarshalling created transcription job: %v. Body: %s", err, string(body))
		return nil, fmt.Errorf("process transcription job insert response: %w", err)
	}
	return &created[0], nil
}

// GetTranscriptionJob fetches a transcription job owned by userID.
func (s *Store) GetTranscriptionJob(userID, jobID uuid.UUID) (*models.TranscriptionJob, error) {
	body, _, err := s.db.From("transcription_jobs").
		Select("*", "", false).
		Eq("id", jobID.String()).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error fetching transcription job %s: %v", jobID, err)
		return nil, fmt.Errorf("fetch transcription job: %w", err)
	}

	var jobs []models.TranscriptionJob
	if err := json.Unmarshal(body, &jobs); err != nil {
		s.log.Errorf("Error unmarshalling transcription job %s: %v", jobID, err)
		return nil, fmt.Errorf("process transcription job data: %w", err)
	}
	if len(jobs) == 0 {
		return nil, ErrNotFound
	}
	return &jobs[0], nil
}

// UpdateTranscriptionJob applies a field-level update to a job row.
// Job updates come from the worker, which already owns the row, so no
// user scoping here.
func (s *Store) UpdateTranscriptionJob(jobID uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()

	_, _, err := s.db.From("transcription_jobs").
		Update(fields, "minimal", "").
		Eq("id", jobID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error updating transcription job %s: %v", jobID, err)
		return fmt.Errorf("update transcription job: %w", err)
	}
	return nil
}

// CreateExportJob inserts a pending export job row.
func (s *Store) CreateExportJob(job models.ExportJob) (*models.ExportJob, error) {
	body, _, err := s.db.From("export_jobs").
		Insert(job, false, "", "representation", "").
		Execute()
	if err != nil {
		s.log.Errorf("Error inserting export job: %v", err)
		return nil, fmt.Errorf("insert export job: %w", err)
	}

	var created []models.ExportJob
	if err := json.Unmarshal(body, &created); err != nil || len(created) == 0 {
		s.log.Errorf("Error unmarshalling created export job: %v. Body: %s", err, string(body))
		return nil, fmt.Errorf("process export job insert response: %w", err)
	}
	return &created[0], nil
}

// GetExportJob fetches an export job owned by userID.
func (s *Store) GetExportJob(userID, jobID uuid.UUID) (*models.ExportJob, error) {
	body, _, err := s.db.From("export_jobs").
		Select("*", "", false).
		Eq("id", jobID.String()).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error fetching export job %s: %v", jobID, err)
		return nil, fmt.Errorf("fetch export job: %w", err)
	}

	var jobs []models.ExportJob
	if err := json.Unmarshal(body, &jobs); err != nil {
		s.log.Errorf("Error unmarshalling export job %s: %v", jobID, err)
		return nil, fmt.Errorf("process export job data: %w", err)
	}
	if len(jobs) == 0 {
		return nil, ErrNotFound
	}
	return &jobs[0], nil
}

// UpdateExportJob applies a field-level update to an export job row.
func (s *Store) UpdateExportJob(jobID uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()

	_, _, err := s.db.From("export_jobs").
		Update(fields, "minimal", "").
		Eq("id", jobID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error updating export job %s: %v", jobID, err)
		return fmt.Errorf("update export job: %w", err)
	}
	return nil
}

// DeleteExportJob removes a terminal export job owned by userID.
func (s *Store) DeleteExportJob(userID, jobID uuid.UUID) error {
	_, count, err := s.db.From("export_jobs").
		Delete("minimal", "exact").
		Eq("id", jobID.String()).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		s.log.Errorf("Error deleting export job %s: %v", jobID, err)
		return fmt.Errorf("delete export job: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
