package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// whisperModels is the fixed set of model sizes the CLI accepts.
var whisperModels = map[string]bool{
	"tiny":   true,
	"base":   true,
	"small":  true,
	"medium": true,
	"large":  true,
}

// ErrUnsupportedModel is returned for model sizes the CLI does not know.
var ErrUnsupportedModel = errors.New("unsupported whisper model")

// SupportedModel reports whether name is a valid Whisper model size.
func SupportedModel(name string) bool {
	return whisperModels[name]
}

// Segment is one recognized speech segment from the transcription tool.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Word is a single word with its own timestamps, used by the editor
// for fine-grained caption splitting.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Result is the parsed output of one transcription run.
type Result struct {
	Text     string
	Language string
	Segments []Segment
}

// whisperOutput matches the JSON printed by the transcription script:
// a success flag, the full text, the detected language and per-segment
// timestamps. Failures carry success=false plus an error string.
type whisperOutput struct {
	Success  bool      `json:"success"`
	Error    string    `json:"error"`
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Runner runs the external speech-recognition tool.
type Runner interface {
	Run(ctx context.Context, audioPath, model, language string) (*Result, error)
}

// WhisperCLI invokes the locally installed Whisper transcription script
// as a subprocess. One invocation at a time: the model load is memory
// heavy and concurrent runs on the same host thrash.
type WhisperCLI struct {
	scriptPath string
	pythonCmd  string
	mu         sync.Mutex
}

// NewWhisperCLI creates a runner around the transcription script at
// scriptPath, executed with pythonCmd (default "python3").
func NewWhisperCLI(scriptPath, pythonCmd string) *WhisperCLI {
	if pythonCmd == "" {
		pythonCmd = "python3"
	}
	return &WhisperCLI{scriptPath: scriptPath, pythonCmd: pythonCmd}
}

// Run transcribes audioPath with the given model size. language is an
// optional code; empty or "auto" lets the tool detect it. Tool failure
// is reported through the JSON success flag or a non-zero exit; in
// both cases the tool's own error text is returned verbatim.
func (w *WhisperCLI) Run(ctx context.Context, audioPath, model, language string) (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !SupportedModel(model) {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedModel, model)
	}

	absPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve audio path: %v", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("audio file not found: %s", absPath)
	}

	args := []string{w.scriptPath, absPath, "--model", model}
	if language != "" && language != "auto" {
		args = append(args, "--language", language)
	}

	cmd := exec.CommandContext(ctx, w.pythonCmd, args...)
	output, runErr := cmd.Output()

	// The script prints its JSON payload on stdout even when it exits
	// non-zero, so parse first and fall back to the exec error.
	parsed, parseErr := ParseWhisperOutput(output)
	if parseErr != nil {
		if runErr != nil {
			return nil, fmt.Errorf("whisper transcription failed: %v\nOutput: %s", runErr, strings.TrimSpace(string(output)))
		}
		return nil, parseErr
	}
	return parsed, nil
}

// ParseWhisperOutput decodes the tool's JSON payload and converts a
// false success flag into an error carrying the tool's message.
func ParseWhisperOutput(output []byte) (*Result, error) {
	var out whisperOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return nil, fmt.Errorf("failed to parse whisper JSON: %v", err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "transcription tool reported failure without detail"
		}
		return nil, fmt.Errorf("%s", msg)
	}

	segments := make([]Segment, 0, len(out.Segments))
	for _, seg := range out.Segments {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Start < 0 || seg.End <= seg.Start {
			continue // drop segments that violate interval ordering
		}
		for i := range seg.Words {
			seg.Words[i].Word = strings.TrimSpace(seg.Words[i].Word)
		}
		segments = append(segments, seg)
	}

	return &Result{
		Text:     strings.TrimSpace(out.Text),
		Language: out.Language,
		Segments: segments,
	}, nil
}
