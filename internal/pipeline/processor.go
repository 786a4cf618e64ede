// Package pipeline owns the CV processing run: the asynchronous state machine
// that takes an uploaded file from PENDING to COMPLETED or FAILED.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"cv-backend/internal/cvs"
	"cv-backend/internal/extract"
	"cv-backend/internal/fallback"
	"cv-backend/internal/llm"
	"cv-backend/internal/photo"
	"cv-backend/internal/shared/metrics"
	"cv-backend/internal/shared/storage/object"
	"cv-backend/internal/shared/storage/photos"
	"cv-backend/internal/shared/telemetry"
	"cv-backend/internal/shared/util"
)

// FallbackProvider is recorded on CVs extracted without an LLM.
const (
	FallbackProvider = "basic"
	FallbackModel    = "regex-v1"
)

// Processor runs the ingestion pipeline. Store, Photos and LLM may be nil;
// the pipeline degrades gracefully around missing blob and photo storage and
// falls back to deterministic extraction without an LLM.
type Processor struct {
	Repo              cvs.Repo
	Store             object.ObjectStore
	Photos            photos.PhotoStore
	LLM               llm.Client
	LLMEnabled        bool
	LLMConfig         llm.Config
	ExtractionVersion string
	TempDir           string

	// now is swapped in tests; open-ended experience durations resolve
	// against it.
	now func() time.Time
}

// Result is the outcome of one processing run.
type Result struct {
	Success   bool
	CV        cvs.CV
	Extracted *cvs.ExtractedData
	Err       error
}

func (p *Processor) clock() time.Time {
	if p.now != nil {
		return p.now().UTC()
	}
	return time.Now().UTC()
}

// ProcessCV executes the full pipeline for one CV. filePath is a temp file
// exclusively owned by this run; it is removed on every exit path. The
// function never panics outward and never leaves a claimed CV in PROCESSING.
func (p *Processor) ProcessCV(ctx context.Context, cvID, filePath string) (result Result) {
	defer func() {
		if removeErr := os.Remove(filePath); removeErr != nil && !os.IsNotExist(removeErr) {
			telemetry.Warn("cv.tempfile_remove", map[string]any{"cv_id": cvID, "error": removeErr.Error()})
		}
	}()

	startedAt := p.clock()
	cv, err := p.Repo.ClaimForProcessing(ctx, cvID, startedAt)
	if err != nil {
		// Not claimable means another run owns the CV or it is terminal;
		// nothing was mutated, so there is nothing to fail.
		return Result{Success: false, Err: err}
	}
	metrics.IncCVStarted()
	telemetry.Info("cv.status", map[string]any{
		"cv_id":             cv.ID,
		"status":            cvs.StatusProcessing,
		"status_transition": "pending->processing",
	})

	defer func() {
		if r := recover(); r != nil {
			result = p.fail(cv, fmt.Errorf("panic: %v", r), startedAt)
		}
	}()

	checksum, err := util.ChecksumFile(filePath)
	if err != nil {
		return p.fail(cv, fmt.Errorf("checksum: %w", err), startedAt)
	}
	if err := p.Repo.UpdateChecksum(ctx, cv.ID, checksum); err != nil {
		return p.fail(cv, fmt.Errorf("persist checksum: %w", err), startedAt)
	}
	cv.Checksum = checksum

	p.uploadOriginal(ctx, &cv, filePath)

	extracted, err := extract.ExtractFile(ctx, filePath, cv.DocumentType)
	if err != nil {
		return p.fail(cv, fmt.Errorf("text extraction: %w", err), startedAt)
	}

	if verdict := Validate(extracted.Text, cv.DocumentType); !verdict.IsValid {
		return p.fail(cv, fmt.Errorf("text validation: %s", verdict.Reason), startedAt)
	}

	cleaned := extract.CleanText(extracted.Text)
	language := extract.DetectLanguage(cleaned)
	telemetry.Info("cv.text_extracted", map[string]any{
		"cv_id":    cv.ID,
		"language": language,
		"length":   len(cleaned),
		"pages":    extracted.PageCount,
	})

	photoDetected := p.attachPhoto(ctx, &cv, filePath)

	data, provider, model, confidence, err := p.extractStructured(ctx, cleaned)
	if err != nil {
		if reason, ok := llm.IsExtractionFailed(err); ok {
			return p.fail(cv, fmt.Errorf("LLM extraction failed: %s", reason), startedAt)
		}
		return p.fail(cv, fmt.Errorf("structured extraction: %w", err), startedAt)
	}

	data.ID = uuid.NewString()
	data.CVID = cv.ID
	data.HasPhoto = photoDetected
	data.RawText = cleaned
	data.CreatedAt = p.clock()

	summary, err := p.generateSummary(ctx, provider, data)
	if err != nil {
		return p.fail(cv, fmt.Errorf("summary generation: %w", err), startedAt)
	}

	if err := p.Repo.CreateExtractedData(ctx, data); err != nil {
		return p.fail(cv, fmt.Errorf("persist extracted data: %w", err), startedAt)
	}

	completedAt := p.clock()
	fields := cvs.CompletionFields{
		CompletedAt:       completedAt,
		LLMProvider:       provider,
		LLMModel:          model,
		ExtractionVersion: p.ExtractionVersion,
		ConfidenceScore:   confidence,
		AISummary:         summary,
	}
	if err := p.Repo.MarkCompleted(ctx, cv.ID, fields); err != nil {
		return p.fail(cv, fmt.Errorf("mark completed: %w", err), startedAt)
	}

	cv.Status = cvs.StatusCompleted
	cv.ProcessingStartedAt = &startedAt
	cv.ProcessingCompletedAt = &completedAt
	cv.LLMProvider = provider
	cv.LLMModel = model
	cv.ExtractionVersion = p.ExtractionVersion
	cv.ConfidenceScore = &confidence
	cv.AISummary = summary

	metrics.IncCVCompleted()
	metrics.ObserveProcessingDurationMs(durationMs(startedAt, completedAt))
	telemetry.Info("cv.status", map[string]any{
		"cv_id":             cv.ID,
		"status":            cvs.StatusCompleted,
		"status_transition": "processing->completed",
		"provider":          provider,
		"confidence":        confidence,
		"duration_ms":       durationMs(startedAt, completedAt),
	})
	return Result{Success: true, CV: cv, Extracted: &data}
}

// ProcessAsync runs ProcessCV on its own goroutine with a background context,
// detached from the caller's request lifetime.
func (p *Processor) ProcessAsync(cvID, filePath string) {
	go func() {
		p.ProcessCV(context.Background(), cvID, filePath)
	}()
}

// ReprocessAsync runs ReprocessCV detached from the caller. Precondition
// errors at this point are logged only; the HTTP layer validates them before
// handing off.
func (p *Processor) ReprocessAsync(cvID string) {
	go func() {
		if _, err := p.ReprocessCV(context.Background(), cvID); err != nil {
			telemetry.Warn("cv.reprocess_rejected", map[string]any{"cv_id": cvID, "error": err.Error()})
		}
	}()
}

// ProcessStored runs the pipeline for a CV whose original file already sits
// in blob storage, downloading it to a temp file first. Queue consumers use
// this path; the upload endpoint hands the pipeline a local temp file instead.
func (p *Processor) ProcessStored(ctx context.Context, cvID string) error {
	cv, err := p.Repo.GetByID(ctx, cvID)
	if err != nil {
		return err
	}
	if cv.StorageFileID == "" {
		return cvs.ErrNoStoredFile
	}
	if p.Store == nil {
		return errors.New("blob storage not configured")
	}

	tmpPath, err := p.downloadToTemp(ctx, cv)
	if err != nil {
		return fmt.Errorf("download stored file: %w", err)
	}

	res := p.ProcessCV(ctx, cvID, tmpPath)
	return res.Err
}

// ReprocessCV re-runs the pipeline for a previously failed CV from its stored
// blob. Precondition failures (unknown CV, no stored file, CV not FAILED) are
// returned before any state mutation.
func (p *Processor) ReprocessCV(ctx context.Context, cvID string) (Result, error) {
	cv, err := p.Repo.GetByID(ctx, cvID)
	if err != nil {
		return Result{}, err
	}
	if cv.StorageFileID == "" {
		return Result{}, cvs.ErrNoStoredFile
	}
	if p.Store == nil {
		return Result{}, errors.New("blob storage not configured")
	}

	tmpPath, err := p.downloadToTemp(ctx, cv)
	if err != nil {
		return Result{}, fmt.Errorf("download stored file: %w", err)
	}

	if err := p.Repo.ResetForReprocess(ctx, cvID); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !os.IsNotExist(removeErr) {
			telemetry.Warn("cv.tempfile_remove", map[string]any{"cv_id": cvID, "error": removeErr.Error()})
		}
		return Result{}, err
	}
	if err := p.Repo.DeleteExtractedData(ctx, cvID); err != nil && !errors.Is(err, cvs.ErrExtractedNotFound) {
		telemetry.Warn("cv.extracted_delete", map[string]any{"cv_id": cvID, "error": err.Error()})
	}

	metrics.IncCVReprocessed()
	telemetry.Info("cv.reprocess", map[string]any{"cv_id": cvID})
	return p.ProcessCV(ctx, cvID, tmpPath), nil
}

// uploadOriginal is best-effort: storage being down never aborts a run.
// A CV that already carries a storage key (the queue dispatcher uploads
// before enqueueing) keeps it instead of getting a second blob.
func (p *Processor) uploadOriginal(ctx context.Context, cv *cvs.CV, filePath string) {
	if cv.StorageFileID != "" {
		return
	}
	if p.Store == nil || !p.Store.Available(ctx) {
		telemetry.Warn("cv.blob_upload_skipped", map[string]any{"cv_id": cv.ID})
		return
	}
	f, err := os.Open(filePath)
	if err != nil {
		telemetry.Warn("cv.blob_upload", map[string]any{"cv_id": cv.ID, "error": err.Error()})
		return
	}
	defer f.Close()

	owner := cv.ID
	if cv.UserID != nil && *cv.UserID != "" {
		owner = *cv.UserID
	}
	key, _, mimeType, err := p.Store.Save(ctx, owner, cv.OriginalFileName, f)
	if err != nil {
		telemetry.Warn("cv.blob_upload", map[string]any{"cv_id": cv.ID, "error": err.Error()})
		return
	}
	if err := p.Repo.UpdateStoredFile(ctx, cv.ID, key, mimeType); err != nil {
		telemetry.Warn("cv.blob_ref_persist", map[string]any{"cv_id": cv.ID, "error": err.Error()})
		return
	}
	cv.StorageFileID = key
	cv.StorageMimeType = mimeType
}

// attachPhoto is best-effort and reports whether a photo was detected in the
// document, independent of whether the upload or the reference write worked.
func (p *Processor) attachPhoto(ctx context.Context, cv *cvs.CV, filePath string) bool {
	buf, err := photo.Extract(ctx, filePath, cv.DocumentType)
	if err != nil {
		telemetry.Warn("cv.photo_extract", map[string]any{"cv_id": cv.ID, "error": err.Error()})
		return false
	}
	if len(buf) == 0 {
		return false
	}
	if p.Photos == nil || !p.Photos.Available(ctx) {
		telemetry.Warn("cv.photo_upload_skipped", map[string]any{"cv_id": cv.ID})
		return true
	}
	upload, err := p.Photos.UploadProfilePhoto(ctx, buf, cv.ID)
	if err != nil {
		telemetry.Warn("cv.photo_upload", map[string]any{"cv_id": cv.ID, "error": err.Error()})
		return true
	}
	ref := cvs.PhotoRef{
		URL:      upload.SecureURL,
		PublicID: upload.PublicID,
		Width:    upload.Width,
		Height:   upload.Height,
	}
	if err := p.Repo.UpdatePhoto(ctx, cv.ID, ref); err != nil {
		telemetry.Warn("cv.photo_ref_persist", map[string]any{"cv_id": cv.ID, "error": err.Error()})
		return true
	}
	cv.PhotoURL = upload.SecureURL
	cv.PhotoPublicID = upload.PublicID
	cv.PhotoWidth = upload.Width
	cv.PhotoHeight = upload.Height
	return true
}

// extractStructured routes between the LLM adapter and the deterministic
// extractor. A provider-stated extraction failure propagates as a typed error.
func (p *Processor) extractStructured(ctx context.Context, text string) (cvs.ExtractedData, string, string, float64, error) {
	if p.LLMEnabled && p.LLM != nil && p.LLMConfig.Valid() {
		ext, err := p.LLM.ExtractCV(ctx, text, p.LLMConfig)
		if err != nil {
			return cvs.ExtractedData{}, "", "", 0, err
		}
		metrics.IncLLMExtraction()
		return ext.Data, ext.Provider, ext.Model, ext.Confidence, nil
	}
	res := fallback.Extract(text, p.clock().Year())
	metrics.IncBasicExtraction()
	return res.Data, FallbackProvider, FallbackModel, fallback.Confidence, nil
}

func (p *Processor) generateSummary(ctx context.Context, provider string, data cvs.ExtractedData) (string, error) {
	if provider != FallbackProvider && p.LLM != nil {
		return p.LLM.GenerateSummary(ctx, data, p.LLMConfig)
	}
	return fallback.Summarize(data), nil
}

// fail converges every fatal path: persist the sanitized message, flip the CV
// to FAILED, and record metrics. The background context keeps the write alive
// even when the run's context is already cancelled.
func (p *Processor) fail(cv cvs.CV, err error, startedAt time.Time) Result {
	msg := sanitizeError(err)
	completedAt := p.clock()
	if updateErr := p.Repo.MarkFailed(context.Background(), cv.ID, msg, completedAt); updateErr != nil {
		telemetry.Error("cv.mark_failed", map[string]any{"cv_id": cv.ID, "error": updateErr.Error(), "orig": msg})
	}
	cv.Status = cvs.StatusFailed
	cv.ProcessingError = msg
	cv.ProcessingCompletedAt = &completedAt

	code, retryable := classifyFailure(err)
	metrics.IncCVFailed()
	metrics.ObserveProcessingDurationMs(durationMs(startedAt, completedAt))
	telemetry.Info("cv.status", map[string]any{
		"cv_id":             cv.ID,
		"status":            cvs.StatusFailed,
		"status_transition": "processing->failed",
		"error":             msg,
		"error_code":        code,
		"retryable":         retryable,
		"duration_ms":       durationMs(startedAt, completedAt),
	})
	return Result{Success: false, CV: cv, Err: err}
}

func (p *Processor) downloadToTemp(ctx context.Context, cv cvs.CV) (string, error) {
	body, err := p.Store.Open(ctx, cv.StorageFileID)
	if err != nil {
		return "", err
	}
	defer body.Close()

	tmp, err := os.CreateTemp(p.TempDir, "cv-reprocess-*"+util.SafeExt(cv.OriginalFileName))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// Failure codes logged alongside the sanitized processing error.
const (
	ErrorCodeValidation    = "VALIDATION"
	ErrorCodeTextQuality   = "TEXT_QUALITY"
	ErrorCodeLLMTimeout    = "LLM_TIMEOUT"
	ErrorCodeLLMExtraction = "LLM_EXTRACTION"
	ErrorCodeStorage       = "STORAGE"
	ErrorCodeInternal      = "INTERNAL"
)

func classifyFailure(err error) (string, bool) {
	if err == nil {
		return ErrorCodeInternal, false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeLLMTimeout, true
	}
	if _, ok := llm.IsExtractionFailed(err); ok {
		return ErrorCodeLLMExtraction, false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "openai request timeout") {
		return ErrorCodeLLMTimeout, true
	}
	if strings.Contains(msg, "llm extraction failed") {
		return ErrorCodeLLMExtraction, false
	}
	if strings.Contains(msg, "text validation") {
		return ErrorCodeTextQuality, false
	}
	if strings.Contains(msg, "validation") {
		return ErrorCodeValidation, false
	}
	if strings.Contains(msg, "storage") || strings.Contains(msg, "checksum") ||
		strings.Contains(msg, "persist") || strings.Contains(msg, "mark completed") {
		return ErrorCodeStorage, true
	}
	return ErrorCodeInternal, false
}

func durationMs(startedAt, completedAt time.Time) float64 {
	return float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
