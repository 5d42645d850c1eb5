package job

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/tanush/cleanspeech/internal/audio"
	"github.com/tanush/cleanspeech/internal/media"
	"github.com/tanush/cleanspeech/internal/plan"
	"github.com/tanush/cleanspeech/internal/storage"
	"github.com/tanush/cleanspeech/internal/transcript"
)

// Transcriber produces word-level timestamps from WAV audio.
type Transcriber interface {
	Transcribe(ctx context.Context, wavData []byte) ([]transcript.Word, error)
}

// Planner builds an edit plan from a transcript.
type Planner interface {
	Build(ctx context.Context, words []transcript.Word) plan.Plan
}

// CleanInput contains the input parameters for one cleaning run.
type CleanInput struct {
	// InputPath is the source audio file, any ffmpeg-readable format.
	InputPath string
	// Denoise enables the noise reduction stage.
	Denoise bool
	// Upload pushes the result to S3 instead of leaving it on disk.
	Upload bool
}

// CleanOutput contains the result of one cleaning run.
type CleanOutput struct {
	// JobID is the unique identifier for the created job.
	JobID string
	// Status is the final job status.
	Status Status
	// OutputPath is the local path to the cleaned audio (if not uploaded).
	OutputPath string
	// OutputURL is the S3 URL of the cleaned audio (if uploaded).
	OutputURL string
	// Metrics summarizes the edits.
	Metrics Metrics
	// Error contains any error message if processing failed.
	Error string
}

// CleanService orchestrates the cleaning pipeline: format conversion,
// optional denoising, transcription, edit planning, sample-domain
// splicing and leveling, and final encoding.
type CleanService struct {
	repo        Repository
	processor   media.Processor
	transcriber Transcriber
	planner     Planner
	store       storage.Storage
	logger      *slog.Logger
}

// NewCleanService creates a new CleanService.
func NewCleanService(
	repo Repository,
	processor media.Processor,
	transcriber Transcriber,
	planner Planner,
	store storage.Storage,
	logger *slog.Logger,
) *CleanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanService{
		repo:        repo,
		processor:   processor,
		transcriber: transcriber,
		planner:     planner,
		store:       store,
		logger:      logger,
	}
}

// GetJob retrieves a job by ID.
func (s *CleanService) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// ListJobs returns all jobs.
func (s *CleanService) ListJobs(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx)
}

// CreateJob creates a new job in IN_QUEUE status and persists it.
// Processing is started separately via ProcessExistingJob.
func (s *CleanService) CreateJob(ctx context.Context, input CleanInput) (*Job, error) {
	j := New()
	j.InputPath = input.InputPath

	s.logger.Info("creating cleaning job",
		slog.String("job_id", j.ID),
		slog.String("input", input.InputPath),
		slog.Bool("denoise", input.Denoise),
		slog.Bool("upload", input.Upload),
	)

	if err := s.repo.Save(ctx, j); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}
	return j, nil
}

// Process runs the complete cleaning pipeline for one recording. The
// context is checked between stages; cancellation moves the job to
// CANCELLED, any other failure to FAILED. A terminal job is always
// persisted, so Process returns an output even on error.
func (s *CleanService) Process(ctx context.Context, input CleanInput) (*CleanOutput, error) {
	j, err := s.CreateJob(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.processJob(ctx, j, input)
}

// ProcessExistingJob runs the pipeline for a job previously created with
// CreateJob. Used by callers that create the job synchronously and
// process in the background.
func (s *CleanService) ProcessExistingJob(ctx context.Context, jobID string, input CleanInput) (*CleanOutput, error) {
	j, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return s.processJob(ctx, j, input)
}

func (s *CleanService) processJob(ctx context.Context, j *Job, input CleanInput) (*CleanOutput, error) {
	if err := j.Start(); err != nil {
		return nil, err
	}
	_ = s.repo.Save(ctx, j)

	runErr := s.run(ctx, j, input)
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			_ = j.Cancel()
		} else {
			_ = j.Fail(runErr.Error())
		}
		s.logger.Error("cleaning job ended early",
			slog.String("job_id", j.ID),
			slog.String("status", string(j.GetStatus())),
			slog.String("error", runErr.Error()),
		)
	} else {
		_ = j.Complete()
		s.logger.Info("cleaning job completed",
			slog.String("job_id", j.ID),
			slog.Int("words", j.Metrics.WordCount),
			slog.Int("removals", j.Metrics.FillerRemovals),
			slog.Int("pauses", j.Metrics.PauseCompressions),
			slog.Float64("seconds_saved", j.Metrics.SecondsSaved),
		)
	}

	// Persist the terminal state even when the run's context is gone.
	if err := s.repo.Save(context.WithoutCancel(ctx), j); err != nil {
		s.logger.Error("failed to persist terminal job state",
			slog.String("job_id", j.ID),
			slog.String("error", err.Error()),
		)
	}

	out := &CleanOutput{
		JobID:      j.ID,
		Status:     j.GetStatus(),
		OutputPath: j.OutputPath,
		OutputURL:  j.OutputURL,
		Metrics:    j.Metrics,
		Error:      j.Error,
	}
	return out, runErr
}

// run executes the pipeline stages against a RUNNING job.
func (s *CleanService) run(ctx context.Context, j *Job, input CleanInput) error {
	var temps []string
	defer func() {
		if err := s.store.CleanupTemp(context.WithoutCancel(ctx), temps); err != nil {
			s.logger.Warn("temp cleanup failed", slog.String("error", err.Error()))
		}
	}()

	// Convert input into the working format. The source duration is
	// probed first so the metrics report the original recording, not the
	// resampled working copy.
	if err := s.advance(ctx, j, StageConvert); err != nil {
		return err
	}
	inputDurationSec, err := s.processor.Duration(ctx, input.InputPath)
	if err != nil {
		return fmt.Errorf("probe input duration: %w", err)
	}
	workPath, err := s.tempPath(ctx, j.ID+"_work.wav")
	if err != nil {
		return err
	}
	temps = append(temps, workPath)
	if err := s.processor.ToWAV(ctx, input.InputPath, workPath); err != nil {
		return fmt.Errorf("convert to wav: %w", err)
	}

	// Optional broadband noise reduction.
	if input.Denoise {
		if err := s.advance(ctx, j, StageDenoise); err != nil {
			return err
		}
		denoisedPath, err := s.tempPath(ctx, j.ID+"_denoised.wav")
		if err != nil {
			return err
		}
		temps = append(temps, denoisedPath)
		if err := s.processor.ReduceNoise(ctx, workPath, denoisedPath); err != nil {
			return fmt.Errorf("reduce noise: %w", err)
		}
		workPath = denoisedPath
	}

	// Transcribe with word timestamps.
	if err := s.advance(ctx, j, StageTranscribe); err != nil {
		return err
	}
	wavData, err := s.readTemp(ctx, workPath)
	if err != nil {
		return err
	}
	words, err := s.transcriber.Transcribe(ctx, wavData)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}

	// Build the edit plan.
	if err := s.advance(ctx, j, StagePlan); err != nil {
		return err
	}
	p := s.planner.Build(ctx, words)

	// Execute the plan in the sample domain.
	if err := s.advance(ctx, j, StageSplice); err != nil {
		return err
	}
	samples, sampleRate, err := audio.ReadWAV(workPath)
	if err != nil {
		return err
	}
	rendered, err := audio.Render(samples, sampleRate, p)
	if err != nil {
		return err
	}

	editedPath, err := s.tempPath(ctx, j.ID+"_edited.wav")
	if err != nil {
		return err
	}
	temps = append(temps, editedPath)
	if err := audio.WriteWAV(editedPath, rendered, sampleRate); err != nil {
		return err
	}

	j.SetMetrics(Metrics{
		WordCount:         len(words),
		FillerRemovals:    len(p.Removals),
		PauseCompressions: len(p.Pauses),
		SecondsSaved:      p.TotalRemovalSec() + p.TotalPauseSavingsSec(),
		InputDurationSec:  inputDurationSec,
		OutputDurationSec: float64(len(rendered)) / float64(sampleRate),
	})

	// Encode and deliver.
	if err := s.advance(ctx, j, StageEncode); err != nil {
		return err
	}
	mp3Path, err := s.tempPath(ctx, j.ID+".mp3")
	if err != nil {
		return err
	}
	if err := s.processor.ToMP3(ctx, editedPath, mp3Path); err != nil {
		return fmt.Errorf("encode mp3: %w", err)
	}

	if input.Upload {
		temps = append(temps, mp3Path)
		url, err := s.upload(ctx, j.ID, mp3Path)
		if err != nil {
			return err
		}
		j.SetOutput("", url)
	} else {
		j.SetOutput(mp3Path, "")
	}

	return nil
}

// advance checks for cancellation and records the next pipeline stage.
func (s *CleanService) advance(ctx context.Context, j *Job, stage Stage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j.SetStage(stage)
	_ = s.repo.Save(ctx, j)
	s.logger.Debug("entering stage",
		slog.String("job_id", j.ID),
		slog.String("stage", string(stage)),
	)
	return nil
}

// tempPath reserves a temp file through the storage port and returns its
// path for ffmpeg and the WAV codec to write into.
func (s *CleanService) tempPath(ctx context.Context, name string) (string, error) {
	path, err := s.store.SaveTemp(ctx, name, strings.NewReader(""))
	if err != nil {
		return "", fmt.Errorf("reserve temp file: %w", err)
	}
	return path, nil
}

// readTemp loads an entire temp file into memory.
func (s *CleanService) readTemp(ctx context.Context, path string) ([]byte, error) {
	r, err := s.store.LoadTemp(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read temp file: %w", err)
	}
	return data, nil
}

// upload streams the encoded result to S3 under a key derived from the
// job ID and file name.
func (s *CleanService) upload(ctx context.Context, jobID, path string) (string, error) {
	r, err := s.store.LoadTemp(ctx, path)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read output for upload: %w", err)
	}

	key := fmt.Sprintf("cleaned/%s/%s", jobID, filepath.Base(path))
	url, err := s.store.UploadToS3(ctx, key, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("upload output: %w", err)
	}
	return url, nil
}
