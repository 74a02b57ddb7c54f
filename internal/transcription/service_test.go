package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cgchiraggupta/kalakar/internal/worker"
	"github.com/cgchiraggupta/kalakar/models"
)

// fakeStore implements JobStore in memory and records every mutation.
type fakeStore struct {
	mu       sync.Mutex
	video    *models.Video
	videoErr error
	credits  int64
	jobs     map[uuid.UUID]*models.TranscriptionJob
	updates  []map[string]interface{}

	// pollStates, when set, is consumed one entry per GetTranscriptionJob
	// call to script a status sequence for WaitForCompletion tests.
	pollStates []models.TranscriptionJob
	pollErrs   []error
	pollIdx    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{credits: 1000, jobs: make(map[uuid.UUID]*models.TranscriptionJob)}
}

func (f *fakeStore) GetVideo(userID, videoID uuid.UUID) (*models.Video, error) {
	if f.videoErr != nil {
		return nil, f.videoErr
	}
	return f.video, nil
}

func (f *fakeStore) DecrementCredits(userID uuid.UUID, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.credits < amount {
		return errors.New("insufficient credits")
	}
	f.credits -= amount
	return nil
}

func (f *fakeStore) CreateTranscriptionJob(job models.TranscriptionJob) (*models.TranscriptionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := job
	f.jobs[job.ID] = &stored
	return &stored, nil
}

func (f *fakeStore) GetTranscriptionJob(userID, jobID uuid.UUID) (*models.TranscriptionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollIdx < len(f.pollStates) || f.pollIdx < len(f.pollErrs) {
		i := f.pollIdx
		f.pollIdx++
		if i < len(f.pollErrs) && f.pollErrs[i] != nil {
			return nil, f.pollErrs[i]
		}
		st := f.pollStates[i]
		return &st, nil
	}
	if len(f.pollStates) > 0 {
		st := f.pollStates[len(f.pollStates)-1]
		return &st, nil
	}
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, errors.New("record not found")
	}
	return job, nil
}

func (f *fakeStore) UpdateTranscriptionJob(jobID uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, fields)
	return nil
}

// fakeDispatcher records submissions without running them.
type fakeDispatcher struct {
	jobs []worker.Job
	err  error
}

func (f *fakeDispatcher) Submit(job worker.Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

// fakeRunner returns a canned result or error.
type fakeRunner struct {
	result *Result
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, audioPath, model, language string) (*Result, error) {
	return f.result, f.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testService(store *fakeStore, runner Runner, disp *fakeDispatcher) *Service {
	s := NewService(store, runner, disp, quietLogger(), "/tmp")
	s.PollInterval = time.Millisecond
	s.MaxWait = time.Second
	s.extractAudio = func(ctx context.Context, videoPath, tempDir string) (string, error) {
		return "/tmp/fake-audio.wav", nil
	}
	return s
}

func uploadedVideo(duration float64) *models.Video {
	return &models.Video{
		ID:          uuid.New(),
		Status:      models.VideoStatusUploaded,
		StoragePath: "/tmp/video.mp4",
		Duration:    &duration,
	}
}

func TestStartRequiresVideo(t *testing.T) {
	store := newFakeStore()
	svc := testService(store, &fakeRunner{}, &fakeDispatcher{})

	_, err := svc.Start(uuid.New(), uuid.Nil, "", "small")
	if !errors.Is(err, ErrNoVideoSelected) {
		t.Fatalf("err = %v, want ErrNoVideoSelected", err)
	}
	if len(store.jobs) != 0 {
		t.Error("no job should be created for invalid input")
	}
	if store.credits != 1000 {
		t.Error("no credits should be spent for invalid input")
	}
}

func TestStartRequiresCompletedUpload(t *testing.T) {
	store := newFakeStore()
	store.video = uploadedVideo(10)
	store.video.Status = models.VideoStatusPendingUpload
	svc := testService(store, &fakeRunner{}, &fakeDispatcher{})

	if _, err := svc.Start(uuid.New(), store.video.ID, "", "small"); !errors.Is(err, ErrVideoNotReady) {
		t.Fatalf("err = %v, want ErrVideoNotReady", err)
	}
}

func TestStartSpendsCreditsAndQueues(t *testing.T) {
	store := newFakeStore()
	store.video = uploadedVideo(12.3)
	disp := &fakeDispatcher{}
	svc := testService(store, &fakeRunner{}, disp)

	job, err := svc.Start(uuid.New(), store.video.ID, "hi", "small")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if job.Status != models.JobStatusPending {
		t.Errorf("status = %q, want pending", job.Status)
	}
	if job.Language == nil || *job.Language != "hi" {
		t.Errorf("language not carried on the job: %+v", job.Language)
	}
	// One credit per second, rounded up.
	if store.credits != 1000-13 {
		t.Errorf("credits = %d, want %d", store.credits, 1000-13)
	}
	if len(disp.jobs) != 1 {
		t.Fatalf("expected one queued run, got %d", len(disp.jobs))
	}
}

func TestStartInsufficientCredits(t *testing.T) {
	store := newFakeStore()
	store.credits = 5
	store.video = uploadedVideo(60)
	svc := testService(store, &fakeRunner{}, &fakeDispatcher{})

	if _, err := svc.Start(uuid.New(), store.video.ID, "", "small"); err == nil {
		t.Fatal("expected credit error")
	}
	if len(store.jobs) != 0 {
		t.Error("no job row should exist when the decrement fails")
	}
}

func TestStartRejectsUnknownModel(t *testing.T) {
	store := newFakeStore()
	store.video = uploadedVideo(10)
	svc := testService(store, &fakeRunner{}, &fakeDispatcher{})

	_, err := svc.Start(uuid.New(), store.video.ID, "", "gigantic")
	if !errors.Is(err, ErrUnsupportedModel) {
		t.Fatalf("err = %v, want ErrUnsupportedModel", err)
	}
}

func TestStartUsesConfiguredDefaultModel(t *testing.T) {
	store := newFakeStore()
	store.video = uploadedVideo(10)
	svc := testService(store, &fakeRunner{}, &fakeDispatcher{})
	svc.DefaultModel = "base"

	job, err := svc.Start(uuid.New(), store.video.ID, "", "")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if job.Model != "base" {
		t.Errorf("model = %q, want the configured default", job.Model)
	}

	// An explicit model still wins over the default.
	job, err = svc.Start(uuid.New(), store.video.ID, "", "tiny")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if job.Model != "tiny" {
		t.Errorf("model = %q, want tiny", job.Model)
	}
}

func TestExecuteCompletesJob(t *testing.T) {
	store := newFakeStore()
	store.video = uploadedVideo(10)
	disp := &fakeDispatcher{}
	runner := &fakeRunner{result: &Result{
		Text:     "hello world",
		Language: "en",
		Segments: []Segment{
			{Start: 0, End: 2.5, Text: "hello", Words: []Word{{Word: "hello", Start: 0, End: 2.5}}},
			{Start: 2.5, End: 5, Text: "world"},
		},
	}}
	svc := testService(store, runner, disp)

	if _, err := svc.Start(uuid.New(), store.video.ID, "", "small"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := disp.jobs[0].Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	final := store.updates[len(store.updates)-1]
	if final["status"] != models.JobStatusCompleted {
		t.Fatalf("final status = %v, want completed", final["status"])
	}
	var segments []models.TranscriptSegment
	if err := json.Unmarshal(final["segments"].(json.RawMessage), &segments); err != nil {
		t.Fatalf("segments payload: %v", err)
	}
	if len(segments) != 2 || segments[0].Text != "hello" || segments[1].EndTime != 5 {
		t.Errorf("unexpected segments: %+v", segments)
	}
	if len(segments[0].Words) != 1 || segments[0].Words[0].Word != "hello" || segments[0].Words[0].EndTime != 2.5 {
		t.Errorf("word timestamps not stored: %+v", segments[0].Words)
	}
}

func TestExecuteSurfacesToolErrorVerbatim(t *testing.T) {
	store := newFakeStore()
	store.video = uploadedVideo(10)
	disp := &fakeDispatcher{}
	runner := &fakeRunner{err: errors.New("CUDA out of memory")}
	svc := testService(store, runner, disp)

	if _, err := svc.Start(uuid.New(), store.video.ID, "", "small"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := disp.jobs[0].Execute(context.Background()); err == nil {
		t.Fatal("Execute should propagate the tool error")
	}

	final := store.updates[len(store.updates)-1]
	if final["status"] != models.JobStatusFailed {
		t.Fatalf("final status = %v, want failed", final["status"])
	}
	if final["error_message"] != "CUDA out of memory" {
		t.Errorf("error_message = %v, want the tool's text verbatim", final["error_message"])
	}
}

func TestWaitForCompletionProgressSequence(t *testing.T) {
	store := newFakeStore()
	jobID := uuid.New()
	p40, p80 := 40.0, 80.0
	segs, _ := json.Marshal([]models.TranscriptSegment{{Text: "done", StartTime: 0, EndTime: 1}})
	store.pollStates = []models.TranscriptionJob{
		{ID: jobID, Status: models.JobStatusPending},
		{ID: jobID, Status: models.JobStatusProcessing, Progress: &p40},
		{ID: jobID, Status: models.JobStatusProcessing, Progress: &p80},
		{ID: jobID, Status: models.JobStatusCompleted, Segments: segs},
	}
	svc := testService(store, &fakeRunner{}, &fakeDispatcher{})

	var observed []float64
	got, err := svc.WaitForCompletion(context.Background(), uuid.New(), jobID, func(p float64) {
		observed = append(observed, p)
	})
	if err != nil {
		t.Fatalf("WaitForCompletion: %v", err)
	}
	if len(observed) != 2 || observed[0] != 40 || observed[1] != 80 {
		t.Errorf("progress observations = %v, want [40 80]", observed)
	}
	if len(got) != 1 || got[0].Text != "done" {
		t.Errorf("segments = %+v", got)
	}
}

func TestWaitForCompletionFailedJob(t *testing.T) {
	store := newFakeStore()
	jobID := uuid.New()
	msg := "whisper exploded"
	store.pollStates = []models.TranscriptionJob{
		{ID: jobID, Status: models.JobStatusFailed, ErrorMessage: &msg},
	}
	svc := testService(store, &fakeRunner{}, &fakeDispatcher{})

	_, err := svc.WaitForCompletion(context.Background(), uuid.New(), jobID, nil)
	if err == nil || err.Error() != msg {
		t.Fatalf("err = %v, want %q", err, msg)
	}
}

func TestWaitForCompletionRetriesThenGivesUp(t *testing.T) {
	store := newFakeStore()
	boom := errors.New("connection reset")
	store.pollErrs = []error{boom, boom, boom, boom, boom}
	store.pollStates = make([]models.TranscriptionJob, 5)
	svc := testService(store, &fakeRunner{}, &fakeDispatcher{})

	_, err := svc.WaitForCompletion(context.Background(), uuid.New(), uuid.New(), nil)
	if err == nil || !strings.Contains(err.Error(), "giving up") {
		t.Fatalf("err = %v, want bounded-retry failure", err)
	}
}

func TestWaitForCompletionTimeout(t *testing.T) {
	store := newFakeStore()
	jobID := uuid.New()
	store.pollStates = []models.TranscriptionJob{
		{ID: jobID, Status: models.JobStatusPending},
	}
	svc := testService(store, &fakeRunner{}, &fakeDispatcher{})
	svc.MaxWait = 5 * time.Millisecond

	_, err := svc.WaitForCompletion(context.Background(), uuid.New(), jobID, nil)
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("err = %v, want ErrWaitTimeout", err)
	}
}
