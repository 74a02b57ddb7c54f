package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cgchiraggupta/kalakar/internal/worker"
	"github.com/cgchiraggupta/kalakar/models"
)

// Validation errors surfaced with specific messages; everything else
// flows through the job's failed state.
var (
	ErrNoVideoSelected = errors.New("no video selected")
	ErrVideoNotReady   = errors.New("video upload is not complete")
	ErrWaitTimeout     = errors.New("timed out waiting for transcription")
)

// JobStore is the slice of the data layer the orchestrator needs.
type JobStore interface {
	GetVideo(userID, videoID uuid.UUID) (*models.Video, error)
	DecrementCredits(userID uuid.UUID, amount int64) error
	CreateTranscriptionJob(job models.TranscriptionJob) (*models.TranscriptionJob, error)
	GetTranscriptionJob(userID, jobID uuid.UUID) (*models.TranscriptionJob, error)
	UpdateTranscriptionJob(jobID uuid.UUID, fields map[string]interface{}) error
}

// Dispatcher is the submit side of the worker pool.
type Dispatcher interface {
	Submit(job worker.Job) error
}

// Service bridges a "transcribe" request to the external tool: it
// validates input, spends credits, creates the job row and hands the
// actual subprocess run to the worker pool.
type Service struct {
	store      JobStore
	runner     Runner
	dispatcher Dispatcher
	log        *logrus.Logger
	tempDir    string

	// DefaultModel is the model size used when a request does not name
	// one. Configurable so operators can trade accuracy for speed.
	DefaultModel string

	// PollInterval and MaxWait bound WaitForCompletion. MaxWait keeps a
	// stuck job from holding the caller forever; expiry is reported as
	// a terminal failure, matching the job state machine's shape.
	PollInterval time.Duration
	MaxWait      time.Duration

	// extractAudio is swappable in tests to avoid shelling out.
	extractAudio func(ctx context.Context, videoPath, tempDir string) (string, error)
}

// NewService wires the transcription orchestrator.
func NewService(store JobStore, runner Runner, dispatcher Dispatcher, log *logrus.Logger, tempDir string) *Service {
	return &Service{
		store:        store,
		runner:       runner,
		dispatcher:   dispatcher,
		log:          log,
		tempDir:      tempDir,
		DefaultModel: "small",
		PollInterval: 2 * time.Second,
		MaxWait:      30 * time.Minute,
		extractAudio: ExtractAudio,
	}
}

// Start validates the request, atomically spends credits (one credit
// per second of video) and enqueues the transcription run. The upload
// must be complete before either external tool may read the file.
func (s *Service) Start(userID, videoID uuid.UUID, language, model string) (*models.TranscriptionJob, error) {
	if videoID == uuid.Nil {
		return nil, ErrNoVideoSelected
	}
	if model == "" {
		model = s.DefaultModel
	}
	if !SupportedModel(model) {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedModel, model)
	}

	video, err := s.store.GetVideo(userID, videoID)
	if err != nil {
		return nil, err
	}
	if video.Status != models.VideoStatusUploaded {
		return nil, ErrVideoNotReady
	}

	var credits int64 = 1
	if video.Duration != nil {
		credits = int64(math.Ceil(*video.Duration))
	}
	if err := s.store.DecrementCredits(userID, credits); err != nil {
		return nil, err
	}

	now := time.Now()
	job := models.TranscriptionJob{
		ID:        uuid.New(),
		VideoID:   videoID,
		UserID:    userID,
		Status:    models.JobStatusPending,
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if language != "" && language != "auto" {
		job.Language = &language
	}

	created, err := s.store.CreateTranscriptionJob(job)
	if err != nil {
		return nil, err
	}

	run := &transcribeRun{service: s, job: *created, videoPath: video.StoragePath}
	if err := s.dispatcher.Submit(run); err != nil {
		s.failJob(created.ID, fmt.Sprintf("could not queue transcription: %v", err))
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"job_id": created.ID, "video_id": videoID}).Info("Transcription job queued")
	return created, nil
}

// WaitForCompletion polls the job until it reaches a terminal state.
// onProgress fires on every observation in the processing state. Poll
// errors are retried up to three times with backoff before the wait is
// abandoned; MaxWait expiry yields ErrWaitTimeout.
func (s *Service) WaitForCompletion(ctx context.Context, userID, jobID uuid.UUID, onProgress func(progress float64)) ([]models.TranscriptSegment, error) {
	deadline := time.Now().Add(s.MaxWait)
	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	pollFailures := 0
	for {
		job, err := s.store.GetTranscriptionJob(userID, jobID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			pollFailures++
			if pollFailures > 3 {
				return nil, fmt.Errorf("giving up after %d failed status checks: %w", pollFailures-1, err)
			}
			// Transient poll failure: back off and try again.
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(pollFailures) * s.PollInterval):
			}
			continue
		}
		pollFailures = 0

		switch job.Status {
		case models.JobStatusProcessing:
			if onProgress != nil {
				var p float64
				if job.Progress != nil {
					p = *job.Progress
				}
				onProgress(p)
			}
		case models.JobStatusCompleted:
			var segments []models.TranscriptSegment
			if len(job.Segments) > 0 {
				if err := json.Unmarshal(job.Segments, &segments); err != nil {
					return nil, fmt.Errorf("corrupt segment payload on job %s: %w", jobID, err)
				}
			}
			return segments, nil
		case models.JobStatusFailed:
			msg := "transcription failed"
			if job.ErrorMessage != nil {
				msg = *job.ErrorMessage
			}
			return nil, errors.New(msg)
		}

		if time.Now().After(deadline) {
			return nil, ErrWaitTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) failJob(jobID uuid.UUID, message string) {
	now := time.Now()
	if err := s.store.UpdateTranscriptionJob(jobID, map[string]interface{}{
		"status":        models.JobStatusFailed,
		"error_message": message,
		"completed_at":  now,
	}); err != nil {
		s.log.Errorf("Error marking transcription job %s failed: %v", jobID, err)
	}
}

// transcribeRun is the worker-pool job for one transcription.
type transcribeRun struct {
	service   *Service
	job       models.TranscriptionJob
	videoPath string
}

func (r *transcribeRun) ID() string { return r.job.ID.String() }

// Execute runs the pipeline: extract audio, invoke the tool, store the
// segment collection. Progress checkpoints are coarse because the CLI
// gives no incremental feedback.
func (r *transcribeRun) Execute(ctx context.Context) error {
	s := r.service
	now := time.Now()
	if err := s.store.UpdateTranscriptionJob(r.job.ID, map[string]interface{}{
		"status":     models.JobStatusProcessing,
		"progress":   10.0,
		"started_at": now,
	}); err != nil {
		return err
	}

	audioPath, err := s.extractAudio(ctx, r.videoPath, s.tempDir)
	if err != nil {
		s.failJob(r.job.ID, err.Error())
		return err
	}
	defer os.Remove(audioPath)

	if err := s.store.UpdateTranscriptionJob(r.job.ID, map[string]interface{}{
		"progress": 40.0,
	}); err != nil {
		s.log.Errorf("Error recording progress for job %s: %v", r.job.ID, err)
	}

	language := ""
	if r.job.Language != nil {
		language = *r.job.Language
	}
	result, err := s.runner.Run(ctx, audioPath, r.job.Model, language)
	if err != nil {
		// The tool's error text is operator-controlled; keep it verbatim.
		s.failJob(r.job.ID, err.Error())
		return err
	}

	segments := make([]models.TranscriptSegment, 0, len(result.Segments))
	for _, seg := range result.Segments {
		words := make([]models.TranscriptWord, 0, len(seg.Words))
		for _, w := range seg.Words {
			words = append(words, models.TranscriptWord{
				Word:      w.Word,
				StartTime: w.Start,
				EndTime:   w.End,
			})
		}
		segments = append(segments, models.TranscriptSegment{
			Text:      seg.Text,
			StartTime: seg.Start,
			EndTime:   seg.End,
			Words:     words,
		})
	}
	payload, err := json.Marshal(segments)
	if err != nil {
		s.failJob(r.job.ID, fmt.Sprintf("could not encode segments: %v", err))
		return err
	}

	done := time.Now()
	return s.store.UpdateTranscriptionJob(r.job.ID, map[string]interface{}{
		"status":       models.JobStatusCompleted,
		"progress":     100.0,
		"language":     result.Language,
		"segments":     json.RawMessage(payload),
		"completed_at": done,
	})
}
