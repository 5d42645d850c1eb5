// Package server provides the HTTP API for the cleaning pipeline.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// CreateJobRequest is the HTTP request body for creating a new cleaning job.
type CreateJobRequest struct {
	// AudioBase64 is the base64-encoded source audio, any common format.
	AudioBase64 string `json:"audio_base64" validate:"required,base64"`
	// Denoise enables the noise reduction stage.
	Denoise bool `json:"denoise"`
	// Upload pushes the cleaned audio to S3 instead of returning it inline.
	Upload bool `json:"upload"`
}

// CreateJobResponse is the HTTP response after creating a job.
type CreateJobResponse struct {
	// ID is the unique identifier for the created job.
	ID string `json:"id"`
	// Status is the initial job status.
	Status string `json:"status"`
}

// MetricsResponse summarizes the edits applied to a completed job.
type MetricsResponse struct {
	// WordCount is the number of transcript words.
	WordCount int `json:"word_count"`
	// FillerRemovals is the number of removal edits.
	FillerRemovals int `json:"filler_removals"`
	// PauseCompressions is the number of pause edits.
	PauseCompressions int `json:"pause_compressions"`
	// SecondsSaved is the total audio time cut.
	SecondsSaved float64 `json:"seconds_saved"`
	// InputDurationSec is the original duration.
	InputDurationSec float64 `json:"input_duration_sec"`
	// OutputDurationSec is the cleaned duration.
	OutputDurationSec float64 `json:"output_duration_sec"`
}

// JobResponse is the HTTP response for getting job details.
type JobResponse struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// Status is the current job status.
	Status string `json:"status"`
	// Stage is the pipeline step the job is in while running.
	Stage string `json:"stage,omitempty"`
	// Error contains any error message if the job failed.
	Error string `json:"error,omitempty"`
	// Metrics summarizes the edits (present once completed).
	Metrics *MetricsResponse `json:"metrics,omitempty"`
	// AudioBase64 is the base64-encoded cleaned audio (if upload=false and completed).
	AudioBase64 string `json:"audio_base64,omitempty"`
	// AudioURL is the S3 URL of the cleaned audio (if upload=true and completed).
	AudioURL string `json:"audio_url,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
