// Package job provides the Job aggregate for tracking audio cleaning runs.
// It includes the Job entity with state machine transitions, pipeline stage
// tracking, and repository interfaces for persistence.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/tanush/cleanspeech/internal/job/id"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusInQueue indicates the job is waiting to be processed.
	StatusInQueue Status = "IN_QUEUE"
	// StatusRunning indicates the job is being processed.
	StatusRunning Status = "RUNNING"
	// StatusCompleted indicates the job finished successfully.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the job encountered an error during execution.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the job was cancelled before finishing.
	StatusCancelled Status = "CANCELLED"
)

// Stage identifies the pipeline step a running job is in.
type Stage string

const (
	// StageConvert normalizes input audio into the working WAV format.
	StageConvert Stage = "CONVERT"
	// StageDenoise applies broadband noise reduction.
	StageDenoise Stage = "DENOISE"
	// StageTranscribe produces the word-level transcript.
	StageTranscribe Stage = "TRANSCRIBE"
	// StagePlan builds the edit plan from the transcript.
	StagePlan Stage = "PLAN"
	// StageSplice executes the plan against the sample buffer.
	StageSplice Stage = "SPLICE"
	// StageEncode encodes and delivers the final audio.
	StageEncode Stage = "ENCODE"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusInQueue:   {StatusRunning, StatusCancelled},
	StatusRunning:   {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Metrics summarizes what the cleaning run did to the recording.
type Metrics struct {
	// WordCount is the number of transcript words after sanitization.
	WordCount int
	// FillerRemovals is the number of removal segments executed.
	FillerRemovals int
	// PauseCompressions is the number of pause segments executed.
	PauseCompressions int
	// SecondsSaved is the total audio time cut from the recording.
	SecondsSaved float64
	// InputDurationSec is the working WAV length before editing.
	InputDurationSec float64
	// OutputDurationSec is the edited audio length.
	OutputDurationSec float64
}

// Job represents one audio cleaning run.
// It carries all state from input file to delivered output.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job.
	ID string
	// Status is the current job state.
	Status Status
	// Stage is the pipeline step the job is in while RUNNING.
	Stage Stage
	// Metrics summarizes the edits once the run completes.
	Metrics Metrics
	// Error contains any error message if the job failed.
	Error string
	// InputPath is the path to the source audio file.
	InputPath string
	// OutputPath is the local path to the cleaned audio.
	OutputPath string
	// OutputURL is the S3 URL if the result was uploaded.
	OutputURL string
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when processing started.
	StartedAt time.Time
	// CompletedAt is when processing finished.
	CompletedAt time.Time
}

// New creates a new Job with a generated ID and initial IN_QUEUE status.
func New() *Job {
	return NewWithID(id.Generate())
}

// NewWithID creates a new Job with the specified ID and initial IN_QUEUE status.
// Useful for testing or when the ID needs to be externally generated.
func NewWithID(jobID string) *Job {
	now := time.Now()
	return &Job{
		ID:        jobID,
		Status:    StatusInQueue,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	// Set timestamps based on state
	switch status {
	case StatusRunning:
		j.StartedAt = j.UpdatedAt
	case StatusCompleted, StatusFailed, StatusCancelled:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from IN_QUEUE to RUNNING.
// Returns ErrInvalidTransition if the job is not in IN_QUEUE state.
func (j *Job) Start() error {
	return j.TransitionTo(StatusRunning)
}

// Complete transitions the job to COMPLETED state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) Complete() error {
	return j.TransitionTo(StatusCompleted)
}

// Fail transitions the job to FAILED state with an error message.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// Cancel transitions the job to CANCELLED state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// SetStage records the pipeline step the job is working on.
func (j *Job) SetStage(stage Stage) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Stage = stage
	j.UpdatedAt = time.Now()
}

// SetMetrics records the edit summary for this run.
func (j *Job) SetMetrics(m Metrics) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Metrics = m
	j.UpdatedAt = time.Now()
}

// SetOutput sets the output audio path and optional S3 URL.
func (j *Job) SetOutput(path, url string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.OutputPath = path
	j.OutputURL = url
	j.UpdatedAt = time.Now()
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// GetStage returns the current pipeline stage (thread-safe).
func (j *Job) GetStage() Stage {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Stage
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusCompleted ||
		j.Status == StatusFailed ||
		j.Status == StatusCancelled
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return &Job{
		ID:          j.ID,
		Status:      j.Status,
		Stage:       j.Stage,
		Metrics:     j.Metrics,
		Error:       j.Error,
		InputPath:   j.InputPath,
		OutputPath:  j.OutputPath,
		OutputURL:   j.OutputURL,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}
