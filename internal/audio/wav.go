package audio

import (
	"errors"
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Static errors for WAV decoding. Malformed sample data has no safe
// degraded mode, so these are fatal to the caller.
var (
	// ErrInvalidWAV is returned when the input is not a decodable WAV file.
	ErrInvalidWAV = errors.New("audio: invalid WAV file")
	// ErrUnsupportedBitDepth is returned for sample encodings the engine
	// cannot normalize.
	ErrUnsupportedBitDepth = errors.New("audio: unsupported bit depth")
)

// ReadWAV decodes a WAV file into normalized mono float samples in
// [-1, 1] plus the sample rate. Multi-channel input keeps the first
// channel only; the converter upstream produces mono anyway.
func ReadWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path) // #nosec G304 - path is provided by trusted caller
	if err != nil {
		return nil, 0, fmt.Errorf("open wav: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav: %w", err)
	}

	scale, err := fullScale(buf.SourceBitDepth)
	if err != nil {
		return nil, 0, err
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	samples := make([]float64, 0, len(buf.Data)/channels)
	for i := 0; i < len(buf.Data); i += channels {
		samples = append(samples, float64(buf.Data[i])/scale)
	}

	return samples, buf.Format.SampleRate, nil
}

// WriteWAV encodes mono float samples as a 16-bit PCM WAV file. Samples
// are clamped to [-1, 1] before quantization.
func WriteWAV(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path) // #nosec G304 - path is provided by trusted caller
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		}
		if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767)
	}

	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("close wav encoder: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close wav file: %w", err)
	}

	return nil
}

// fullScale returns the normalization divisor for a PCM bit depth.
func fullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case 8:
		return 128, nil
	case 16:
		return 32768, nil
	case 24:
		return 8388608, nil
	case 32:
		return 2147483648, nil
	default:
		return 0, fmt.Errorf("%w: %d bits", ErrUnsupportedBitDepth, bitDepth)
	}
}
