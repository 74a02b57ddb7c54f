package transcription

import (
	"strings"
	"testing"
)

func TestParseWhisperOutput(t *testing.T) {
	payload := []byte(`{
		"success": true,
		"text": " Hello there. General Kenobi. ",
		"language": "en",
		"segments": [
			{"start": 0.0, "end": 2.1, "text": " Hello there.",
			 "words": [
				{"word": " Hello", "start": 0.0, "end": 0.8},
				{"word": " there.", "start": 0.9, "end": 2.1}
			 ]},
			{"start": 2.1, "end": 4.0, "text": " General Kenobi."},
			{"start": 5.0, "end": 5.0, "text": "degenerate"},
			{"start": -1.0, "end": 2.0, "text": "negative"}
		]
	}`)

	got, err := ParseWhisperOutput(payload)
	if err != nil {
		t.Fatalf("ParseWhisperOutput: %v", err)
	}
	if got.Language != "en" {
		t.Errorf("language = %q, want en", got.Language)
	}
	if got.Text != "Hello there. General Kenobi." {
		t.Errorf("text not trimmed: %q", got.Text)
	}
	if len(got.Segments) != 2 {
		t.Fatalf("segments = %d, want 2 (invalid intervals dropped)", len(got.Segments))
	}
	if got.Segments[0].Text != "Hello there." {
		t.Errorf("segment text not trimmed: %q", got.Segments[0].Text)
	}
	words := got.Segments[0].Words
	if len(words) != 2 {
		t.Fatalf("words = %d, want 2", len(words))
	}
	if words[0].Word != "Hello" || words[0].Start != 0.0 || words[0].End != 0.8 {
		t.Errorf("word timestamps not preserved: %+v", words[0])
	}
}

func TestParseWhisperOutputFailureFlag(t *testing.T) {
	payload := []byte(`{"success": false, "error": "Whisper not installed. Run: pip install openai-whisper"}`)

	_, err := ParseWhisperOutput(payload)
	if err == nil {
		t.Fatal("success=false must yield an error")
	}
	if !strings.Contains(err.Error(), "Whisper not installed") {
		t.Errorf("tool error text should be preserved verbatim, got %v", err)
	}
}

func TestParseWhisperOutputGarbage(t *testing.T) {
	if _, err := ParseWhisperOutput([]byte("not json at all")); err == nil {
		t.Fatal("non-JSON output must be an error")
	}
}

func TestSupportedModel(t *testing.T) {
	for _, m := range []string{"tiny", "base", "small", "medium", "large"} {
		if !SupportedModel(m) {
			t.Errorf("model %q should be supported", m)
		}
	}
	if SupportedModel("turbo-xl") {
		t.Error("unknown model accepted")
	}
}
