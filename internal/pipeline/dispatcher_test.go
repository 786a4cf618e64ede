package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cv-backend/internal/cvs"
	"cv-backend/internal/queue"
	localstore "cv-backend/internal/shared/storage/object/local"
)

type fakeQueue struct {
	sent []queue.Message
}

func (f *fakeQueue) Send(ctx context.Context, msg queue.Message) error {
	_ = ctx
	f.sent = append(f.sent, msg)
	return nil
}

func TestDispatcherEnqueueUpload(t *testing.T) {
	repo := cvs.NewMemoryRepo()
	store := localstore.New(t.TempDir())
	q := &fakeQueue{}
	d := &Dispatcher{Queue: q, Local: &Processor{Repo: repo, Store: store}}

	cv := cvs.CV{
		ID:               "cv-1",
		OriginalFileName: "resume.pdf",
		DocumentType:     cvs.DocumentPDF,
		Status:           cvs.StatusPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), cv); err != nil {
		t.Fatalf("create cv: %v", err)
	}

	tmp := filepath.Join(t.TempDir(), "upload.pdf")
	if err := os.WriteFile(tmp, []byte("%PDF-1.4 test"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	if err := d.enqueueUpload(context.Background(), "cv-1", tmp); err != nil {
		t.Fatalf("enqueue upload: %v", err)
	}

	if len(q.sent) != 1 || q.sent[0].CVID != "cv-1" {
		t.Fatalf("expected one message for cv-1, got %+v", q.sent)
	}
	if q.sent[0].Version != messageVersion {
		t.Fatalf("expected version %d, got %d", messageVersion, q.sent[0].Version)
	}

	stored, err := repo.GetByID(context.Background(), "cv-1")
	if err != nil {
		t.Fatalf("get cv: %v", err)
	}
	if stored.StorageFileID == "" {
		t.Fatal("expected blob reference persisted before enqueue")
	}
}

func TestDispatcherEnqueueReprocess(t *testing.T) {
	repo := cvs.NewMemoryRepo()
	q := &fakeQueue{}
	d := &Dispatcher{Queue: q, Local: &Processor{Repo: repo}}

	cv := cvs.CV{
		ID:            "cv-2",
		Status:        cvs.StatusFailed,
		StorageFileID: "blobs/cv-2.pdf",
		CreatedAt:     time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), cv); err != nil {
		t.Fatalf("create cv: %v", err)
	}

	if err := d.enqueueReprocess(context.Background(), "cv-2"); err != nil {
		t.Fatalf("enqueue reprocess: %v", err)
	}

	stored, err := repo.GetByID(context.Background(), "cv-2")
	if err != nil {
		t.Fatalf("get cv: %v", err)
	}
	if stored.Status != cvs.StatusPending {
		t.Fatalf("expected status %q, got %q", cvs.StatusPending, stored.Status)
	}
	if len(q.sent) != 1 || q.sent[0].CVID != "cv-2" {
		t.Fatalf("expected one message for cv-2, got %+v", q.sent)
	}
}

func TestDispatcherEnqueueReprocessRequiresStoredFile(t *testing.T) {
	repo := cvs.NewMemoryRepo()
	d := &Dispatcher{Queue: &fakeQueue{}, Local: &Processor{Repo: repo}}

	cv := cvs.CV{ID: "cv-3", Status: cvs.StatusFailed, CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), cv); err != nil {
		t.Fatalf("create cv: %v", err)
	}

	if err := d.enqueueReprocess(context.Background(), "cv-3"); err != cvs.ErrNoStoredFile {
		t.Fatalf("expected ErrNoStoredFile, got %v", err)
	}
}
