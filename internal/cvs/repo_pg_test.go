package cvs

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var cvRowColumns = []string{
	"id", "user_id", "original_file_name", "document_type", "file_size",
	"checksum", "storage_file_id", "storage_mime_type",
	"photo_url", "photo_public_id", "photo_width", "photo_height",
	"status", "processing_started_at", "processing_completed_at", "processing_error",
	"llm_provider", "llm_model", "extraction_version", "confidence_score", "ai_summary",
	"created_at", "updated_at",
}

func pendingCVRow(id string, created time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(cvRowColumns).AddRow(
		id, nil, "resume.pdf", "PDF", int64(1024),
		nil, nil, nil,
		nil, nil, nil, nil,
		StatusPending, nil, nil, nil,
		nil, nil, nil, nil, nil,
		created, created,
	)
}

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Now().UTC()
	cv := CV{
		ID:               "cv-1",
		OriginalFileName: "resume.pdf",
		DocumentType:     DocumentPDF,
		FileSize:         1024,
		Status:           StatusPending,
		CreatedAt:        created,
	}

	mock.ExpectExec("INSERT INTO cvs").
		WithArgs(
			cv.ID,
			nil, // user_id
			cv.OriginalFileName,
			"PDF",
			cv.FileSize,
			"", // checksum, nulled in SQL
			"", // storage_file_id
			"", // storage_mime_type
			cv.Status,
			created,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), cv); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoClaimForProcessing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	startedAt := time.Now().UTC()

	rows := sqlmock.NewRows(cvRowColumns).AddRow(
		"cv-1", nil, "resume.pdf", "PDF", int64(1024),
		nil, nil, nil,
		nil, nil, nil, nil,
		StatusProcessing, startedAt, nil, nil,
		nil, nil, nil, nil, nil,
		startedAt, startedAt,
	)
	mock.ExpectQuery("UPDATE cvs").
		WithArgs("cv-1", StatusProcessing, startedAt, StatusPending).
		WillReturnRows(rows)

	cv, err := repo.ClaimForProcessing(context.Background(), "cv-1", startedAt)
	if err != nil {
		t.Fatalf("ClaimForProcessing: %v", err)
	}
	if cv.Status != StatusProcessing {
		t.Fatalf("expected status %q, got %q", StatusProcessing, cv.Status)
	}
	if cv.ProcessingStartedAt == nil {
		t.Fatal("expected processing_started_at set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoClaimForProcessingLostRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	startedAt := time.Now().UTC()

	mock.ExpectQuery("UPDATE cvs").
		WithArgs("cv-1", StatusProcessing, startedAt, StatusPending).
		WillReturnRows(sqlmock.NewRows(cvRowColumns))
	mock.ExpectQuery("SELECT .+ FROM cvs WHERE id").
		WithArgs("cv-1").
		WillReturnRows(pendingCVRow("cv-1", startedAt))

	if _, err := repo.ClaimForProcessing(context.Background(), "cv-1", startedAt); err != ErrNotClaimable {
		t.Fatalf("expected ErrNotClaimable, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoResetForReprocessNotFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("UPDATE cvs").
		WithArgs("cv-1", StatusPending, StatusFailed).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT .+ FROM cvs WHERE id").
		WithArgs("cv-1").
		WillReturnRows(pendingCVRow("cv-1", time.Now().UTC()))

	if err := repo.ResetForReprocess(context.Background(), "cv-1"); err != ErrNotFailed {
		t.Fatalf("expected ErrNotFailed, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoMarkFailedMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	completedAt := time.Now().UTC()

	mock.ExpectExec("UPDATE cvs").
		WithArgs("missing", StatusFailed, completedAt, "boom").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.MarkFailed(context.Background(), "missing", "boom", completedAt); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateExtractedData(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Now().UTC()
	data := ExtractedData{
		ID:              "data-1",
		CVID:            "cv-1",
		FullName:        "John Smith",
		Email:           "john@example.com",
		TechnicalSkills: []string{"go", "postgresql"},
		SeniorityLevel:  "Mid Level",
		HasPhoto:        true,
		RawText:         "raw",
		CreatedAt:       created,
	}

	args := make([]driver.Value, 0, 26)
	args = append(args, "data-1", "cv-1", "John Smith", "john@example.com")
	for i := 0; i < 20; i++ {
		args = append(args, sqlmock.AnyArg())
	}
	args = append(args, "raw", created)

	mock.ExpectExec("INSERT INTO extracted_data").
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.CreateExtractedData(context.Background(), data); err != nil {
		t.Fatalf("CreateExtractedData: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
