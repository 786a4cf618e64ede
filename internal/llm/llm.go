package llm

import (
	"context"
	"errors"
	"strings"

	"cv-backend/internal/cvs"
)

// Config selects the provider and model for one extraction run.
type Config struct {
	Provider string
	Model    string
	APIKey   string
}

// Valid reports whether the config names a usable provider.
func (c Config) Valid() bool {
	return strings.TrimSpace(c.Provider) != "" && strings.TrimSpace(c.Model) != ""
}

// Extraction is a provider's structured reading of a CV.
type Extraction struct {
	Data       cvs.ExtractedData
	Confidence float64
	Provider   string
	Model      string
}

// Client abstracts LLM providers for CV extraction and summarization.
type Client interface {
	ExtractCV(ctx context.Context, text string, cfg Config) (Extraction, error)
	GenerateSummary(ctx context.Context, data cvs.ExtractedData, cfg Config) (string, error)
}

// ExtractionFailedError is returned when the provider responded but reported
// that it could not produce structured data. It is distinct from transport
// errors: both abort the pipeline run, but the persisted reason differs.
type ExtractionFailedError struct {
	Reason string
}

func (e *ExtractionFailedError) Error() string {
	if e.Reason == "" {
		return "llm extraction failed"
	}
	return "llm extraction failed: " + e.Reason
}

// IsExtractionFailed reports whether err carries a provider-stated
// extraction failure and returns its reason.
func IsExtractionFailed(err error) (string, bool) {
	var failed *ExtractionFailedError
	if errors.As(err, &failed) {
		return failed.Reason, true
	}
	return "", false
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// ExtractCV returns ErrNotImplemented.
func (PlaceholderClient) ExtractCV(ctx context.Context, text string, cfg Config) (Extraction, error) {
	_ = ctx
	_ = text
	_ = cfg
	return Extraction{}, ErrNotImplemented
}

// GenerateSummary returns ErrNotImplemented.
func (PlaceholderClient) GenerateSummary(ctx context.Context, data cvs.ExtractedData, cfg Config) (string, error) {
	_ = ctx
	_ = data
	_ = cfg
	return "", ErrNotImplemented
}
