package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cgchiraggupta/kalakar/internal/style"
	"github.com/cgchiraggupta/kalakar/internal/timeline"
	"github.com/cgchiraggupta/kalakar/internal/worker"
	"github.com/cgchiraggupta/kalakar/models"
)

type fakeStore struct {
	video   *models.Video
	jobs    map[uuid.UUID]models.ExportJob
	updates []map[string]interface{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{jobs: make(map[uuid.UUID]models.ExportJob)}
}

func (f *fakeStore) GetVideo(userID, videoID uuid.UUID) (*models.Video, error) {
	if f.video == nil {
		return nil, errors.New("record not found")
	}
	return f.video, nil
}

func (f *fakeStore) CreateExportJob(job models.ExportJob) (*models.ExportJob, error) {
	f.jobs[job.ID] = job
	return &job, nil
}

func (f *fakeStore) UpdateExportJob(jobID uuid.UUID, fields map[string]interface{}) error {
	f.updates = append(f.updates, fields)
	return nil
}

type fakeDispatcher struct {
	jobs []worker.Job
}

func (f *fakeDispatcher) Submit(job worker.Job) error {
	f.jobs = append(f.jobs, job)
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func someCaptions() []timeline.Caption {
	return []timeline.Caption{
		{ID: uuid.New(), Text: "hello", StartTime: 0, EndTime: 2},
	}
}

func uploadedVideo() *models.Video {
	return &models.Video{ID: uuid.New(), Status: models.VideoStatusUploaded, StoragePath: "/tmp/in.mp4"}
}

func TestExportFailsFastOnEmptyCaptions(t *testing.T) {
	store := newFakeStore()
	store.video = uploadedVideo()
	disp := &fakeDispatcher{}
	svc := NewService(store, disp, quietLogger(), t.TempDir())

	_, err := svc.Export(uuid.New(), store.video.ID, nil, style.Default(), Options{})
	if !errors.Is(err, ErrNoCaptions) {
		t.Fatalf("err = %v, want ErrNoCaptions", err)
	}
	if len(store.jobs) != 0 {
		t.Error("no job row should be created")
	}
	if len(disp.jobs) != 0 {
		t.Error("nothing should reach the worker pool")
	}
}

func TestExportFailsFastOnMissingVideo(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeDispatcher{}, quietLogger(), t.TempDir())

	if _, err := svc.Export(uuid.New(), uuid.Nil, someCaptions(), style.Default(), Options{}); !errors.Is(err, ErrNoVideoSelected) {
		t.Fatalf("err = %v, want ErrNoVideoSelected", err)
	}

	// Video id given but no such row.
	if _, err := svc.Export(uuid.New(), uuid.New(), someCaptions(), style.Default(), Options{}); err == nil {
		t.Fatal("unknown video must fail before queueing")
	}
}

func TestExportRejectsBadOptions(t *testing.T) {
	store := newFakeStore()
	store.video = uploadedVideo()
	svc := NewService(store, &fakeDispatcher{}, quietLogger(), t.TempDir())

	if _, err := svc.Export(uuid.New(), store.video.ID, someCaptions(), style.Default(), Options{Quality: "ultra"}); !errors.Is(err, ErrUnsupportedQuality) {
		t.Errorf("err = %v, want ErrUnsupportedQuality", err)
	}
	if _, err := svc.Export(uuid.New(), store.video.ID, someCaptions(), style.Default(), Options{Format: "avi"}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}

	bad := style.Default()
	bad.Opacity = 3
	if _, err := svc.Export(uuid.New(), store.video.ID, someCaptions(), bad, Options{}); !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("err = %v, want ErrInvalidStyle", err)
	}
}

func TestExportQueuesJobWithDefaults(t *testing.T) {
	store := newFakeStore()
	store.video = uploadedVideo()
	disp := &fakeDispatcher{}
	svc := NewService(store, disp, quietLogger(), t.TempDir())

	job, err := svc.Export(uuid.New(), store.video.ID, someCaptions(), style.Default(), Options{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if job.Status != models.JobStatusPending {
		t.Errorf("status = %q, want pending", job.Status)
	}
	if job.Quality != "medium" || job.Format != "mp4" {
		t.Errorf("defaults not applied: quality=%q format=%q", job.Quality, job.Format)
	}
	if len(disp.jobs) != 1 {
		t.Fatalf("expected one queued run, got %d", len(disp.jobs))
	}
}

func TestExecuteCompletesAndRecordsArtifact(t *testing.T) {
	store := newFakeStore()
	store.video = uploadedVideo()
	disp := &fakeDispatcher{}
	dir := t.TempDir()
	svc := NewService(store, disp, quietLogger(), dir)

	var gotSubtitle string
	svc.burn = func(ctx context.Context, input, subs, output, quality, format string) error {
		gotSubtitle = subs
		// The subtitle script must exist when ffmpeg runs.
		data, err := os.ReadFile(subs)
		if err != nil {
			return err
		}
		if !strings.Contains(string(data), "[Events]") {
			return errors.New("subtitle file is not ASS")
		}
		return os.WriteFile(output, make([]byte, 2048), 0600)
	}

	if _, err := svc.Export(uuid.New(), store.video.ID, someCaptions(), style.Default(), Options{Quality: "high", Format: "mp4"}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if err := disp.jobs[0].Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	final := store.updates[len(store.updates)-1]
	if final["status"] != models.JobStatusCompleted {
		t.Fatalf("final status = %v, want completed", final["status"])
	}
	if final["output_size"] != int64(2048) {
		t.Errorf("output_size = %v, want 2048", final["output_size"])
	}
	out, _ := final["output_path"].(string)
	if filepath.Ext(out) != ".mp4" {
		t.Errorf("output path %q should carry the requested format", out)
	}
	if _, err := os.Stat(gotSubtitle); !os.IsNotExist(err) {
		t.Error("subtitle temp file should be cleaned up after the run")
	}
}

func TestExecuteFailureKeepsToolErrorVerbatim(t *testing.T) {
	store := newFakeStore()
	store.video = uploadedVideo()
	disp := &fakeDispatcher{}
	svc := NewService(store, disp, quietLogger(), t.TempDir())
	svc.burn = func(ctx context.Context, input, subs, output, quality, format string) error {
		return errors.New("ffmpeg burn-in failed: unknown encoder 'libx265'")
	}

	if _, err := svc.Export(uuid.New(), store.video.ID, someCaptions(), style.Default(), Options{}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if err := disp.jobs[0].Execute(context.Background()); err == nil {
		t.Fatal("Execute should propagate the burn error")
	}

	final := store.updates[len(store.updates)-1]
	if final["status"] != models.JobStatusFailed {
		t.Fatalf("final status = %v, want failed", final["status"])
	}
	if msg, _ := final["error_message"].(string); !strings.Contains(msg, "unknown encoder") {
		t.Errorf("error_message = %q, want the ffmpeg text verbatim", msg)
	}
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{1536 * 1024 * 1024, "1.5 GB"},
	}
	for _, tt := range tests {
		if got := HumanSize(tt.bytes); got != tt.want {
			t.Errorf("HumanSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
