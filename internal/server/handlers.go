package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/tanush/cleanspeech/internal/job"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service            *job.CleanService
	validator          *validator.Validate
	logger             *slog.Logger
	uploadDir          string
	enableAsyncProcess bool
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithAsyncProcessing enables or disables background processing.
// When disabled, CreateJob only creates the job and returns immediately
// without starting background processing.
func WithAsyncProcessing(enabled bool) HandlerOption {
	return func(h *Handlers) {
		h.enableAsyncProcess = enabled
	}
}

// WithUploadDir sets the directory where request audio is written
// before processing. Defaults to the OS temp directory.
func WithUploadDir(dir string) HandlerOption {
	return func(h *Handlers) {
		h.uploadDir = dir
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *job.CleanService, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:            service,
		validator:          validator.New(),
		logger:             logger,
		enableAsyncProcess: true, // Default to enabled
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateJob handles POST /jobs requests.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	inputPath, err := h.saveRequestAudio(req.AudioBase64)
	if err != nil {
		h.logger.Error("failed to save request audio",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to save audio", "AUDIO_SAVE_FAILED")
		return
	}

	input := job.CleanInput{
		InputPath: inputPath,
		Denoise:   req.Denoise,
		Upload:    req.Upload,
	}

	// Create job first (synchronously)
	createdJob, err := h.service.CreateJob(r.Context(), input)
	if err != nil {
		h.logger.Error("failed to create job",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to create job", "JOB_CREATION_FAILED")
		return
	}

	// Start processing in background with a detached context
	// Use context.WithoutCancel to prevent cancellation when the request ends
	if h.enableAsyncProcess {
		go func(ctx context.Context, jobID string, inp job.CleanInput) {
			defer func() { _ = os.Remove(inp.InputPath) }()
			_, processErr := h.service.ProcessExistingJob(ctx, jobID, inp)
			if processErr != nil {
				h.logger.Error("background processing failed",
					slog.String("job_id", jobID),
					slog.String("error", processErr.Error()),
				)
			}
		}(context.WithoutCancel(r.Context()), createdJob.ID, input)
	}

	h.logger.Info("job created",
		slog.String("job_id", createdJob.ID),
		slog.Bool("denoise", req.Denoise),
		slog.Bool("upload", req.Upload),
	)

	writeJSON(w, http.StatusAccepted, CreateJobResponse{
		ID:     createdJob.ID,
		Status: string(createdJob.Status),
	})
}

// GetJob handles GET /jobs/{id} requests.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	foundJob, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		}
		h.logger.Error("failed to get job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get job", "JOB_FETCH_FAILED")
		return
	}

	resp := JobResponse{
		ID:     foundJob.ID,
		Status: string(foundJob.Status),
		Stage:  string(foundJob.Stage),
		Error:  foundJob.Error,
	}

	// Include the cleaned audio once completed
	if foundJob.Status == job.StatusCompleted {
		resp.Metrics = &MetricsResponse{
			WordCount:         foundJob.Metrics.WordCount,
			FillerRemovals:    foundJob.Metrics.FillerRemovals,
			PauseCompressions: foundJob.Metrics.PauseCompressions,
			SecondsSaved:      foundJob.Metrics.SecondsSaved,
			InputDurationSec:  foundJob.Metrics.InputDurationSec,
			OutputDurationSec: foundJob.Metrics.OutputDurationSec,
		}

		if foundJob.OutputURL != "" {
			resp.AudioURL = foundJob.OutputURL
		} else if foundJob.OutputPath != "" {
			// Read the cleaned file and encode to base64
			audioData, err := os.ReadFile(foundJob.OutputPath)
			if err != nil {
				h.logger.Error("failed to read output audio",
					slog.String("job_id", jobID),
					slog.String("path", foundJob.OutputPath),
					slog.String("error", err.Error()),
				)
				// Don't fail the request, just log and omit the audio
			} else {
				resp.AudioBase64 = base64.StdEncoding.EncodeToString(audioData)
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// saveRequestAudio decodes base64 request audio into a file the pipeline
// can read.
func (h *Handlers) saveRequestAudio(audioB64 string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(audioB64)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp(h.uploadDir, "upload_*.audio")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
