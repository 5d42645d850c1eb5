package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Static errors for media operations.
var (
	// ErrFFprobeExecution is returned when the ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
)

const (
	// workingSampleRate matches what speech models and the edit engine expect.
	workingSampleRate = "16000"
	// denoiseFilter is ffmpeg's FFT denoiser with a moderate noise floor,
	// strong enough for room hum without smearing consonants.
	denoiseFilter = "afftdn=nf=-25"
	// mp3Bitrate is the delivery bitrate.
	mp3Bitrate = "192k"
)

// FFmpegProcessor implements Processor using the ffmpeg CLI.
type FFmpegProcessor struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
}

// NewFFmpegProcessor creates a new FFmpegProcessor.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegProcessor(ffmpegPath string) *FFmpegProcessor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegProcessor{ffmpegPath: ffmpegPath}
}

// ToWAV converts any ffmpeg-readable audio file into 16 kHz mono 16-bit
// PCM WAV.
func (p *FFmpegProcessor) ToWAV(ctx context.Context, src, dst string) error {
	args := []string{
		"-y",      // Overwrite output file without asking
		"-i", src, // Input file
		"-ar", workingSampleRate, // Resample
		"-ac", "1", // Downmix to mono
		"-c:a", "pcm_s16le", // 16-bit PCM
		dst,
	}
	return p.runFFmpeg(ctx, args)
}

// ReduceNoise applies the FFT denoiser to a WAV file, preserving the
// sample format.
func (p *FFmpegProcessor) ReduceNoise(ctx context.Context, src, dst string) error {
	args := []string{
		"-y",
		"-i", src,
		"-af", denoiseFilter,
		"-c:a", "pcm_s16le",
		dst,
	}
	return p.runFFmpeg(ctx, args)
}

// ToMP3 encodes a WAV file as MP3 for delivery.
func (p *FFmpegProcessor) ToMP3(ctx context.Context, src, dst string) error {
	args := []string{
		"-y",
		"-i", src,
		"-c:a", "libmp3lame",
		"-b:a", mp3Bitrate,
		dst,
	}
	return p.runFFmpeg(ctx, args)
}

// Duration returns the duration in seconds of a media file.
// It uses ffprobe to extract the duration metadata.
func (p *FFmpegProcessor) Duration(ctx context.Context, path string) (float64, error) {
	// #nosec G204 - path is provided by trusted internal code
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return 0, fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, stderr.String())
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(stdout.String()), "%f", &duration)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}

	return duration, nil
}

// runFFmpeg executes ffmpeg with the given arguments and returns an error
// containing stderr output if the command fails.
func (p *FFmpegProcessor) runFFmpeg(ctx context.Context, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		// Check if context was cancelled
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
