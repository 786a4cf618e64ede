package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"cv-backend/internal/cvs"
	"cv-backend/internal/queue"
	"cv-backend/internal/shared/metrics"
	"cv-backend/internal/shared/telemetry"
)

const messageVersion = 1

var (
	_ cvs.Runner = (*Dispatcher)(nil)
	_ cvs.Runner = (*Processor)(nil)
)

// Dispatcher hands processing runs to a queue when one is configured and runs
// them in-process otherwise. Queued runs require the original file in blob
// storage first, since the consumer may live on another host.
type Dispatcher struct {
	Queue queue.Client
	Local *Processor
}

// ProcessAsync uploads the temp file to blob storage and enqueues the run.
// Without a queue, or when the handoff fails, the run executes locally.
func (d *Dispatcher) ProcessAsync(cvID, filePath string) {
	if d.Queue == nil {
		d.Local.ProcessAsync(cvID, filePath)
		return
	}
	go func() {
		ctx := context.Background()
		if err := d.enqueueUpload(ctx, cvID, filePath); err != nil {
			telemetry.Warn("cv.queue_handoff", map[string]any{"cv_id": cvID, "error": err.Error()})
			d.Local.ProcessCV(ctx, cvID, filePath)
			return
		}
		if removeErr := os.Remove(filePath); removeErr != nil && !os.IsNotExist(removeErr) {
			telemetry.Warn("cv.tempfile_remove", map[string]any{"cv_id": cvID, "error": removeErr.Error()})
		}
	}()
}

// ReprocessAsync resets the CV and enqueues it, or reprocesses locally.
func (d *Dispatcher) ReprocessAsync(cvID string) {
	if d.Queue == nil {
		d.Local.ReprocessAsync(cvID)
		return
	}
	go func() {
		ctx := context.Background()
		if err := d.enqueueReprocess(ctx, cvID); err != nil {
			telemetry.Warn("cv.queue_handoff", map[string]any{"cv_id": cvID, "error": err.Error()})
		}
	}()
}

func (d *Dispatcher) enqueueUpload(ctx context.Context, cvID, filePath string) error {
	cv, err := d.Local.Repo.GetByID(ctx, cvID)
	if err != nil {
		return err
	}
	if d.Local.Store == nil || !d.Local.Store.Available(ctx) {
		return errors.New("blob storage unavailable")
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	defer f.Close()

	owner := cv.ID
	if cv.UserID != nil && *cv.UserID != "" {
		owner = *cv.UserID
	}
	key, _, mimeType, err := d.Local.Store.Save(ctx, owner, cv.OriginalFileName, f)
	if err != nil {
		return fmt.Errorf("upload original: %w", err)
	}
	if err := d.Local.Repo.UpdateStoredFile(ctx, cvID, key, mimeType); err != nil {
		return fmt.Errorf("persist blob ref: %w", err)
	}

	return d.send(ctx, cvID)
}

func (d *Dispatcher) enqueueReprocess(ctx context.Context, cvID string) error {
	cv, err := d.Local.Repo.GetByID(ctx, cvID)
	if err != nil {
		return err
	}
	if cv.StorageFileID == "" {
		return cvs.ErrNoStoredFile
	}
	if err := d.Local.Repo.ResetForReprocess(ctx, cvID); err != nil {
		return err
	}
	if err := d.Local.Repo.DeleteExtractedData(ctx, cvID); err != nil && !errors.Is(err, cvs.ErrExtractedNotFound) {
		telemetry.Warn("cv.extracted_delete", map[string]any{"cv_id": cvID, "error": err.Error()})
	}
	metrics.IncCVReprocessed()
	telemetry.Info("cv.reprocess", map[string]any{"cv_id": cvID})
	return d.send(ctx, cvID)
}

func (d *Dispatcher) send(ctx context.Context, cvID string) error {
	msg := queue.Message{
		CVID:       cvID,
		RequestID:  cvs.RequestIDFromContext(ctx),
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    messageVersion,
	}
	if err := d.Queue.Send(ctx, msg); err != nil {
		return fmt.Errorf("enqueue cv: %w", err)
	}
	telemetry.Info("cv.enqueued", map[string]any{"cv_id": cvID})
	return nil
}
