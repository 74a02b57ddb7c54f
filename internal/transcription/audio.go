package transcription

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

// ExtractAudio pulls the audio track out of a video file as 16kHz mono
// WAV, the input format Whisper handles best. The caller owns the
// returned temp file and must remove it.
func ExtractAudio(ctx context.Context, videoPath, tempDir string) (string, error) {
	outputPath := filepath.Join(tempDir, fmt.Sprintf("audio_%s.wav", uuid.New().String()))

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vn",          // drop the video stream
		"-ar", "16000", // 16kHz sample rate
		"-ac", "1", // mono
		"-c:a", "pcm_s16le", // 16-bit PCM
		"-y",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg audio extraction failed: %v\nStderr: %s", err, stderr.String())
	}
	return outputPath, nil
}
