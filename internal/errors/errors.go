package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrQueueEmpty         = errors.New("queue is empty")
	ErrNoCurrentTrack     = errors.New("no current track")
	ErrPipelineState      = errors.New("pipeline state change failed")
	ErrSeekOutOfRange     = errors.New("seek position out of range")
	ErrUnsupportedFormat  = errors.New("unsupported audio format")
	ErrAudioUnavailable   = errors.New("audio output unavailable")
	ErrHistoryUnavailable = errors.New("play history unavailable")
	ErrNoTracks           = errors.New("no playable tracks found")
	ErrConfigNotFound     = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// ToneError wraps an error with a user-friendly suggestion.
type ToneError struct {
	Err        error
	Suggestion string
}

func (e *ToneError) Error() string {
	return e.Err.Error()
}

func (e *ToneError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &ToneError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var toneErr *ToneError
	if errors.As(err, &toneErr) && toneErr.Suggestion != "" {
		return toneErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrAudioUnavailable) || strings.Contains(errStr, "audio output") {
		return "Build with cgo enabled and make sure an audio device is available"
	}

	if errors.Is(err, ErrUnsupportedFormat) || strings.Contains(errStr, "unsupported audio format") {
		return "Supported formats are mp3, flac and wav"
	}

	if errors.Is(err, ErrNoTracks) {
		return "Pass audio files or a directory containing mp3, flac or wav files"
	}

	if errors.Is(err, ErrHistoryUnavailable) || strings.Contains(errStr, "database") {
		return "Check history.path in your config or disable history with history.enabled = false"
	}

	if errors.Is(err, ErrConfigNotFound) {
		return "Run 'tonearm config init' to create a configuration file"
	}

	if errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config") {
		return "Run 'tonearm config show' to inspect the loaded configuration"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// Err joins all collected errors, or returns nil.
func (p *PartialResult[T]) Err() error {
	return errors.Join(p.Errors...)
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
