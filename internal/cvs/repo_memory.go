package cvs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores CVs in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu        sync.RWMutex
	byID      map[string]CV
	extracted map[string]ExtractedData // keyed by CV id
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:      make(map[string]CV),
		extracted: make(map[string]ExtractedData),
	}
}

// Create stores the CV.
func (r *MemoryRepo) Create(ctx context.Context, cv CV) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[cv.ID] = cv
	return nil
}

// GetByID returns a CV by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, cvID string) (CV, error) {
	if err := ctx.Err(); err != nil {
		return CV{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cv, ok := r.byID[cvID]
	if !ok {
		return CV{}, ErrNotFound
	}
	return cv, nil
}

// List returns CVs newest first, optionally filtered by user, with limit/offset.
func (r *MemoryRepo) List(ctx context.Context, userID string, limit, offset int) ([]CV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	all := make([]CV, 0, len(r.byID))
	for _, cv := range r.byID {
		if userID != "" && (cv.UserID == nil || *cv.UserID != userID) {
			continue
		}
		all = append(all, cv)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []CV{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// ClaimForProcessing moves a PENDING CV to PROCESSING.
func (r *MemoryRepo) ClaimForProcessing(ctx context.Context, cvID string, startedAt time.Time) (CV, error) {
	if err := ctx.Err(); err != nil {
		return CV{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cv, ok := r.byID[cvID]
	if !ok {
		return CV{}, ErrNotFound
	}
	if cv.Status != StatusPending {
		return CV{}, ErrNotClaimable
	}
	cv.Status = StatusProcessing
	cv.ProcessingStartedAt = &startedAt
	cv.ProcessingCompletedAt = nil
	cv.ProcessingError = ""
	cv.UpdatedAt = time.Now().UTC()
	r.byID[cvID] = cv
	return cv, nil
}

// UpdateChecksum records the content checksum.
func (r *MemoryRepo) UpdateChecksum(ctx context.Context, cvID, checksum string) error {
	return r.update(ctx, cvID, func(cv *CV) {
		cv.Checksum = checksum
	})
}

// UpdateStoredFile records the blob storage reference.
func (r *MemoryRepo) UpdateStoredFile(ctx context.Context, cvID, fileID, mimeType string) error {
	return r.update(ctx, cvID, func(cv *CV) {
		cv.StorageFileID = fileID
		cv.StorageMimeType = mimeType
	})
}

// UpdatePhoto records the extracted photo reference.
func (r *MemoryRepo) UpdatePhoto(ctx context.Context, cvID string, photo PhotoRef) error {
	return r.update(ctx, cvID, func(cv *CV) {
		cv.PhotoURL = photo.URL
		cv.PhotoPublicID = photo.PublicID
		cv.PhotoWidth = photo.Width
		cv.PhotoHeight = photo.Height
	})
}

// MarkCompleted finalizes a successful run.
func (r *MemoryRepo) MarkCompleted(ctx context.Context, cvID string, fields CompletionFields) error {
	return r.update(ctx, cvID, func(cv *CV) {
		cv.Status = StatusCompleted
		completedAt := fields.CompletedAt
		cv.ProcessingCompletedAt = &completedAt
		cv.ProcessingError = ""
		cv.LLMProvider = fields.LLMProvider
		cv.LLMModel = fields.LLMModel
		cv.ExtractionVersion = fields.ExtractionVersion
		score := fields.ConfidenceScore
		cv.ConfidenceScore = &score
		cv.AISummary = fields.AISummary
	})
}

// MarkFailed finalizes a failed run with the sanitized error message.
func (r *MemoryRepo) MarkFailed(ctx context.Context, cvID, message string, completedAt time.Time) error {
	return r.update(ctx, cvID, func(cv *CV) {
		cv.Status = StatusFailed
		cv.ProcessingCompletedAt = &completedAt
		cv.ProcessingError = message
	})
}

// ResetForReprocess moves a FAILED CV back to PENDING.
func (r *MemoryRepo) ResetForReprocess(ctx context.Context, cvID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cv, ok := r.byID[cvID]
	if !ok {
		return ErrNotFound
	}
	if cv.Status != StatusFailed {
		return ErrNotFailed
	}
	cv.Status = StatusPending
	cv.ProcessingStartedAt = nil
	cv.ProcessingCompletedAt = nil
	cv.ProcessingError = ""
	cv.UpdatedAt = time.Now().UTC()
	r.byID[cvID] = cv
	return nil
}

// CreateExtractedData stores the extraction result for a CV.
func (r *MemoryRepo) CreateExtractedData(ctx context.Context, data ExtractedData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extracted[data.CVID] = data
	return nil
}

// GetExtractedData returns the extraction result for a CV.
func (r *MemoryRepo) GetExtractedData(ctx context.Context, cvID string) (ExtractedData, error) {
	if err := ctx.Err(); err != nil {
		return ExtractedData{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.extracted[cvID]
	if !ok {
		return ExtractedData{}, ErrExtractedNotFound
	}
	return data, nil
}

// DeleteExtractedData removes the extraction result for a CV. Deleting when
// none exists is not an error.
func (r *MemoryRepo) DeleteExtractedData(ctx context.Context, cvID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.extracted, cvID)
	return nil
}

func (r *MemoryRepo) update(ctx context.Context, cvID string, apply func(*CV)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cv, ok := r.byID[cvID]
	if !ok {
		return ErrNotFound
	}
	apply(&cv)
	cv.UpdatedAt = time.Now().UTC()
	r.byID[cvID] = cv
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
