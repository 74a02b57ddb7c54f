package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// ProbeResult is the subset of ffprobe output the upload path records.
type ProbeResult struct {
	Duration float64
	Width    int
	Height   int
	Format   string
	Size     int64
}

// ffprobeOutput maps the JSON emitted by ffprobe -show_format -show_streams.
type ffprobeOutput struct {
	Format struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
		Size       string `json:"size"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// Probe runs ffprobe against filePath and returns duration, dimensions
// and container format.
func Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %v\nStderr: %s", err, stderr.String())
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probed); err != nil {
		return nil, fmt.Errorf("error unmarshalling ffprobe output: %v\nOutput: %s", err, out.String())
	}
	if probed.Format.Duration == "" {
		return nil, fmt.Errorf("could not retrieve duration from ffprobe output\nOutput: %s", out.String())
	}

	duration, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("error parsing duration string '%s': %v", probed.Format.Duration, err)
	}

	result := &ProbeResult{
		Duration: duration,
		Format:   probed.Format.FormatName,
	}
	if probed.Format.Size != "" {
		if size, err := strconv.ParseInt(probed.Format.Size, 10, 64); err == nil {
			result.Size = size
		}
	}
	for _, s := range probed.Streams {
		if s.CodecType == "video" {
			result.Width = s.Width
			result.Height = s.Height
			break
		}
	}
	return result, nil
}

// Encoding presets per requested quality. The caption filter forces a
// re-encode of the video stream either way, so quality only selects the
// rate-control tradeoff.
var qualityArgs = map[string][]string{
	"low":    {"-crf", "28", "-preset", "veryfast"},
	"medium": {"-crf", "23", "-preset", "medium"},
	"high":   {"-crf", "18", "-preset", "slow"},
}

// codecArgs maps the requested output format to codec flags.
var codecArgs = map[string][]string{
	"mp4":  {"-c:v", "libx264", "-c:a", "aac", "-movflags", "+faststart"},
	"webm": {"-c:v", "libvpx-vp9", "-c:a", "libopus"},
	"mov":  {"-c:v", "libx264", "-c:a", "aac"},
}

// SupportedQuality reports whether q is a known quality preset.
func SupportedQuality(q string) bool {
	_, ok := qualityArgs[q]
	return ok
}

// SupportedFormat reports whether f is a known output container.
func SupportedFormat(f string) bool {
	_, ok := codecArgs[f]
	return ok
}

// BurnInArgs builds the ffmpeg argument list for compositing the ASS
// subtitle file onto the source video. Split out from BurnInCaptions so
// the command line can be verified without running ffmpeg.
func BurnInArgs(inputFile, subtitleFile, outputFile, quality, format string) []string {
	args := []string{
		"-y",
		"-i", inputFile,
		"-vf", fmt.Sprintf("ass=%s", subtitleFile),
	}
	args = append(args, codecArgs[format]...)
	args = append(args, qualityArgs[quality]...)
	return append(args, outputFile)
}

// BurnInCaptions composites subtitleFile (ASS) permanently into the
// video pixels and writes the result to outputFile. The stderr tail is
// included in the error because ffmpeg reports its diagnostics there.
func BurnInCaptions(ctx context.Context, inputFile, subtitleFile, outputFile, quality, format string) error {
	if !SupportedQuality(quality) {
		return fmt.Errorf("unsupported quality %q", quality)
	}
	if !SupportedFormat(format) {
		return fmt.Errorf("unsupported format %q", format)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", BurnInArgs(inputFile, subtitleFile, outputFile, quality, format)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg burn-in failed: %v\nStderr: %s", err, tail(stderr.String(), 2000))
	}
	return nil
}

// tail returns at most the last n bytes of s.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
