// Package media shells out to ffmpeg for the format work that happens
// before and after the sample-domain edit: normalizing arbitrary input
// into mono 16 kHz WAV, broadband noise reduction, and MP3 delivery.
package media

import "context"

// Processor defines the interface for audio format operations.
// Implementations should use ffmpeg or similar tools.
type Processor interface {
	// ToWAV converts any ffmpeg-readable audio file into 16 kHz mono
	// 16-bit PCM WAV, the working format for the rest of the pipeline.
	ToWAV(ctx context.Context, src, dst string) error

	// ReduceNoise applies broadband noise reduction to a WAV file.
	ReduceNoise(ctx context.Context, src, dst string) error

	// ToMP3 encodes a WAV file as MP3 for delivery.
	ToMP3(ctx context.Context, src, dst string) error

	// Duration returns the length of a media file in seconds.
	Duration(ctx context.Context, path string) (float64, error)
}
