package cvs

import (
	"context"
	"time"
)

// PhotoRef captures a stored profile photo reference.
type PhotoRef struct {
	URL      string
	PublicID string
	Width    int
	Height   int
}

// CompletionFields carries the metadata written when a run completes.
type CompletionFields struct {
	CompletedAt       time.Time
	LLMProvider       string
	LLMModel          string
	ExtractionVersion string
	ConfidenceScore   float64
	AISummary         string
}

// Repo defines persistence operations for CVs and their extracted data.
// The pipeline orchestrator is the only writer of the status column.
type Repo interface {
	Create(ctx context.Context, cv CV) error
	GetByID(ctx context.Context, cvID string) (CV, error)
	List(ctx context.Context, userID string, limit, offset int) ([]CV, error)

	// ClaimForProcessing atomically moves a PENDING CV to PROCESSING and
	// records the start timestamp. It returns ErrNotClaimable when the CV is
	// in any other state, which serializes concurrent runs for one CV id.
	ClaimForProcessing(ctx context.Context, cvID string, startedAt time.Time) (CV, error)

	UpdateChecksum(ctx context.Context, cvID, checksum string) error
	UpdateStoredFile(ctx context.Context, cvID, fileID, mimeType string) error
	UpdatePhoto(ctx context.Context, cvID string, photo PhotoRef) error
	MarkCompleted(ctx context.Context, cvID string, fields CompletionFields) error
	MarkFailed(ctx context.Context, cvID, message string, completedAt time.Time) error

	// ResetForReprocess atomically moves a FAILED CV back to PENDING and
	// clears the previous run's error and timestamps. Returns ErrNotFailed
	// for a CV in any other state.
	ResetForReprocess(ctx context.Context, cvID string) error

	CreateExtractedData(ctx context.Context, data ExtractedData) error
	GetExtractedData(ctx context.Context, cvID string) (ExtractedData, error)
	DeleteExtractedData(ctx context.Context, cvID string) error
}
