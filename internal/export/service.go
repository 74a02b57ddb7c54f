package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cgchiraggupta/kalakar/internal/ffmpeg"
	"github.com/cgchiraggupta/kalakar/internal/style"
	"github.com/cgchiraggupta/kalakar/internal/timeline"
	"github.com/cgchiraggupta/kalakar/internal/worker"
	"github.com/cgchiraggupta/kalakar/models"
)

// Fail-fast validation errors. These are raised before the external
// tool is contacted and before any job row exists.
var (
	ErrNoVideoSelected    = errors.New("no video selected")
	ErrNoCaptions         = errors.New("cannot export without captions")
	ErrVideoNotReady      = errors.New("video upload is not complete")
	ErrUnsupportedQuality = errors.New("unsupported quality")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrInvalidStyle       = errors.New("invalid caption style")
)

// Options selects the output encoding.
type Options struct {
	Quality string // low | medium | high
	Format  string // mp4 | webm | mov
}

// JobStore is the slice of the data layer the export orchestrator needs.
type JobStore interface {
	GetVideo(userID, videoID uuid.UUID) (*models.Video, error)
	CreateExportJob(job models.ExportJob) (*models.ExportJob, error)
	UpdateExportJob(jobID uuid.UUID, fields map[string]interface{}) error
}

// Dispatcher is the submit side of the worker pool.
type Dispatcher interface {
	Submit(job worker.Job) error
}

// Burner runs the caption burn-in. Swappable in tests.
type Burner func(ctx context.Context, inputFile, subtitleFile, outputFile, quality, format string) error

// Service bridges an export request to ffmpeg: validates everything up
// front, writes the subtitle script and hands the encode to the worker
// pool. Job status is the contract with the caller; the HTTP layer just
// polls the row.
type Service struct {
	store      JobStore
	dispatcher Dispatcher
	log        *logrus.Logger
	outputDir  string
	burn       Burner
}

// NewService wires the export orchestrator.
func NewService(store JobStore, dispatcher Dispatcher, log *logrus.Logger, outputDir string) *Service {
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		log:        log,
		outputDir:  outputDir,
		burn:       ffmpeg.BurnInCaptions,
	}
}

// Export validates and enqueues a burn-in run. An empty caption
// collection or a missing video fails immediately: no job row is
// created and ffmpeg is never invoked.
func (s *Service) Export(userID, videoID uuid.UUID, captions []timeline.Caption, cs models.CaptionStyle, opts Options) (*models.ExportJob, error) {
	if videoID == uuid.Nil {
		return nil, ErrNoVideoSelected
	}
	if len(captions) == 0 {
		return nil, ErrNoCaptions
	}
	if opts.Quality == "" {
		opts.Quality = "medium"
	}
	if opts.Format == "" {
		opts.Format = "mp4"
	}
	if !ffmpeg.SupportedQuality(opts.Quality) {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedQuality, opts.Quality)
	}
	if !ffmpeg.SupportedFormat(opts.Format) {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, opts.Format)
	}
	if err := style.Validate(cs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStyle, err)
	}

	video, err := s.store.GetVideo(userID, videoID)
	if err != nil {
		return nil, err
	}
	if video.Status != models.VideoStatusUploaded {
		return nil, ErrVideoNotReady
	}

	now := time.Now()
	job := models.ExportJob{
		ID:        uuid.New(),
		VideoID:   videoID,
		UserID:    userID,
		Status:    models.JobStatusPending,
		Quality:   opts.Quality,
		Format:    opts.Format,
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := s.store.CreateExportJob(job)
	if err != nil {
		return nil, err
	}

	run := &exportRun{
		service:   s,
		job:       *created,
		videoPath: video.StoragePath,
		captions:  captions,
		style:     cs,
	}
	if err := s.dispatcher.Submit(run); err != nil {
		s.failJob(created.ID, fmt.Sprintf("could not queue export: %v", err))
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"job_id": created.ID, "video_id": videoID}).Info("Export job queued")
	return created, nil
}

func (s *Service) failJob(jobID uuid.UUID, message string) {
	now := time.Now()
	if err := s.store.UpdateExportJob(jobID, map[string]interface{}{
		"status":        models.JobStatusFailed,
		"error_message": message,
		"completed_at":  now,
	}); err != nil {
		s.log.Errorf("Error marking export job %s failed: %v", jobID, err)
	}
}

// exportRun is the worker-pool job for one burn-in.
type exportRun struct {
	service   *Service
	job       models.ExportJob
	videoPath string
	captions  []timeline.Caption
	style     models.CaptionStyle
}

func (r *exportRun) ID() string { return r.job.ID.String() }

// Execute writes the ASS script and runs the encode. The ffmpeg error
// text is stored verbatim on failure; it comes from a tool we operate,
// not from user input.
func (r *exportRun) Execute(ctx context.Context) error {
	s := r.service
	now := time.Now()
	if err := s.store.UpdateExportJob(r.job.ID, map[string]interface{}{
		"status":     models.JobStatusProcessing,
		"progress":   10.0,
		"started_at": now,
	}); err != nil {
		return err
	}

	subtitlePath := filepath.Join(s.outputDir, fmt.Sprintf("captions_%s.ass", r.job.ID))
	if err := ffmpeg.WriteASS(subtitlePath, r.captions, r.style); err != nil {
		s.failJob(r.job.ID, fmt.Sprintf("could not write subtitle file: %v", err))
		return err
	}
	defer os.Remove(subtitlePath)

	if err := s.store.UpdateExportJob(r.job.ID, map[string]interface{}{
		"progress": 30.0,
	}); err != nil {
		s.log.Errorf("Error recording progress for export job %s: %v", r.job.ID, err)
	}

	outputPath := filepath.Join(s.outputDir, fmt.Sprintf("export_%s.%s", r.job.ID, r.job.Format))
	if err := s.burn(ctx, r.videoPath, subtitlePath, outputPath, r.job.Quality, r.job.Format); err != nil {
		s.failJob(r.job.ID, err.Error())
		return err
	}

	var size int64
	if info, err := os.Stat(outputPath); err == nil {
		size = info.Size()
	}

	done := time.Now()
	return s.store.UpdateExportJob(r.job.ID, map[string]interface{}{
		"status":       models.JobStatusCompleted,
		"progress":     100.0,
		"output_path":  outputPath,
		"output_size":  size,
		"completed_at": done,
	})
}

// HumanSize renders a byte count the way the download dialog shows it.
func HumanSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
