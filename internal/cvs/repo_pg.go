package cvs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const cvColumns = `id, user_id, original_file_name, document_type, file_size,
	checksum, storage_file_id, storage_mime_type,
	photo_url, photo_public_id, photo_width, photo_height,
	status, processing_started_at, processing_completed_at, processing_error,
	llm_provider, llm_model, extraction_version, confidence_score, ai_summary,
	created_at, updated_at`

// Create inserts a new CV row.
func (r *PGRepo) Create(ctx context.Context, cv CV) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO cvs (id, user_id, original_file_name, document_type, file_size,
			checksum, storage_file_id, storage_mime_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10, $10)`,
		cv.ID, cv.UserID, cv.OriginalFileName, string(cv.DocumentType), cv.FileSize,
		cv.Checksum, cv.StorageFileID, cv.StorageMimeType, cv.Status, cv.CreatedAt,
	)
	return err
}

// GetByID returns a CV by id.
func (r *PGRepo) GetByID(ctx context.Context, cvID string) (CV, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+cvColumns+` FROM cvs WHERE id = $1`, cvID)
	return scanCV(row)
}

// List returns CVs newest first, optionally filtered by user.
func (r *PGRepo) List(ctx context.Context, userID string, limit, offset int) ([]CV, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + cvColumns + ` FROM cvs`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, userID, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CV{}
	for rows.Next() {
		cv, err := scanCV(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cv)
	}
	return out, rows.Err()
}

// ClaimForProcessing moves a PENDING CV to PROCESSING with a compare-and-swap
// on the status column.
func (r *PGRepo) ClaimForProcessing(ctx context.Context, cvID string, startedAt time.Time) (CV, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE cvs
		SET status = $2, processing_started_at = $3, processing_completed_at = NULL,
			processing_error = NULL, updated_at = now()
		WHERE id = $1 AND status = $4
		RETURNING `+cvColumns,
		cvID, StatusProcessing, startedAt, StatusPending,
	)
	cv, err := scanCV(row)
	if errors.Is(err, ErrNotFound) {
		// Distinguish a missing row from a lost claim race.
		if _, lookupErr := r.GetByID(ctx, cvID); lookupErr == nil {
			return CV{}, ErrNotClaimable
		}
		return CV{}, ErrNotFound
	}
	return cv, err
}

// UpdateChecksum records the content checksum.
func (r *PGRepo) UpdateChecksum(ctx context.Context, cvID, checksum string) error {
	return r.exec(ctx, `UPDATE cvs SET checksum = $2, updated_at = now() WHERE id = $1`, cvID, checksum)
}

// UpdateStoredFile records the blob storage reference.
func (r *PGRepo) UpdateStoredFile(ctx context.Context, cvID, fileID, mimeType string) error {
	return r.exec(ctx, `
		UPDATE cvs SET storage_file_id = $2, storage_mime_type = $3, updated_at = now()
		WHERE id = $1`, cvID, fileID, mimeType)
}

// UpdatePhoto records the extracted photo reference.
func (r *PGRepo) UpdatePhoto(ctx context.Context, cvID string, photo PhotoRef) error {
	return r.exec(ctx, `
		UPDATE cvs SET photo_url = $2, photo_public_id = $3, photo_width = $4,
			photo_height = $5, updated_at = now()
		WHERE id = $1`, cvID, photo.URL, photo.PublicID, photo.Width, photo.Height)
}

// MarkCompleted finalizes a successful run.
func (r *PGRepo) MarkCompleted(ctx context.Context, cvID string, fields CompletionFields) error {
	return r.exec(ctx, `
		UPDATE cvs SET status = $2, processing_completed_at = $3, processing_error = NULL,
			llm_provider = NULLIF($4, ''), llm_model = NULLIF($5, ''),
			extraction_version = NULLIF($6, ''), confidence_score = $7,
			ai_summary = NULLIF($8, ''), updated_at = now()
		WHERE id = $1`,
		cvID, StatusCompleted, fields.CompletedAt, fields.LLMProvider, fields.LLMModel,
		fields.ExtractionVersion, fields.ConfidenceScore, fields.AISummary)
}

// MarkFailed finalizes a failed run with the sanitized error message.
func (r *PGRepo) MarkFailed(ctx context.Context, cvID, message string, completedAt time.Time) error {
	return r.exec(ctx, `
		UPDATE cvs SET status = $2, processing_completed_at = $3, processing_error = $4,
			updated_at = now()
		WHERE id = $1`, cvID, StatusFailed, completedAt, message)
}

// ResetForReprocess moves a FAILED CV back to PENDING.
func (r *PGRepo) ResetForReprocess(ctx context.Context, cvID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE cvs SET status = $2, processing_started_at = NULL,
			processing_completed_at = NULL, processing_error = NULL, updated_at = now()
		WHERE id = $1 AND status = $3`,
		cvID, StatusPending, StatusFailed)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, lookupErr := r.GetByID(ctx, cvID); lookupErr != nil {
			return lookupErr
		}
		return ErrNotFailed
	}
	return nil
}

// CreateExtractedData inserts the extraction result for a CV.
func (r *PGRepo) CreateExtractedData(ctx context.Context, data ExtractedData) error {
	education, err := json.Marshal(orEmpty(data.Education))
	if err != nil {
		return fmt.Errorf("marshal education: %w", err)
	}
	experience, err := json.Marshal(orEmpty(data.Experience))
	if err != nil {
		return fmt.Errorf("marshal experience: %w", err)
	}
	certifications, err := json.Marshal(orEmpty(data.Certifications))
	if err != nil {
		return fmt.Errorf("marshal certifications: %w", err)
	}
	internships, err := json.Marshal(orEmpty(data.Internships))
	if err != nil {
		return fmt.Errorf("marshal internships: %w", err)
	}

	technical := marshalStrings(data.TechnicalSkills)
	soft := marshalStrings(data.SoftSkills)
	tools := marshalStrings(data.Tools)
	languages := marshalStrings(data.Languages)
	keywords := marshalStrings(data.Keywords)

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO extracted_data (id, cv_id, full_name, email, phone, location, city,
			country, age, gender, linkedin_url, education, experience, certifications,
			internships, technical_skills, soft_skills, tools, languages, keywords,
			total_experience_years, seniority_level, industry, has_photo, raw_text, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
			NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, 0), NULLIF($10, ''), NULLIF($11, ''),
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, NULLIF($22, ''),
			NULLIF($23, ''), $24, $25, $26)`,
		data.ID, data.CVID, data.FullName, data.Email, data.Phone, data.Location,
		data.City, data.Country, data.Age, data.Gender, data.LinkedInURL,
		education, experience, certifications, internships,
		technical, soft, tools, languages, keywords,
		data.TotalExperienceYears, data.SeniorityLevel, data.Industry, data.HasPhoto,
		data.RawText, data.CreatedAt,
	)
	return err
}

// GetExtractedData returns the extraction result for a CV.
func (r *PGRepo) GetExtractedData(ctx context.Context, cvID string) (ExtractedData, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, cv_id, COALESCE(full_name, ''), COALESCE(email, ''), COALESCE(phone, ''),
			COALESCE(location, ''), COALESCE(city, ''), COALESCE(country, ''),
			COALESCE(age, 0), COALESCE(gender, ''), COALESCE(linkedin_url, ''),
			education, experience, certifications, internships,
			technical_skills, soft_skills, tools, languages, keywords,
			total_experience_years, COALESCE(seniority_level, ''), COALESCE(industry, ''),
			has_photo, raw_text, created_at
		FROM extracted_data WHERE cv_id = $1`, cvID)

	var data ExtractedData
	var education, experience, certifications, internships []byte
	var technical, soft, tools, languages, keywords []byte
	err := row.Scan(&data.ID, &data.CVID, &data.FullName, &data.Email, &data.Phone,
		&data.Location, &data.City, &data.Country, &data.Age, &data.Gender, &data.LinkedInURL,
		&education, &experience, &certifications, &internships,
		&technical, &soft, &tools, &languages, &keywords,
		&data.TotalExperienceYears, &data.SeniorityLevel, &data.Industry,
		&data.HasPhoto, &data.RawText, &data.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ExtractedData{}, ErrExtractedNotFound
	}
	if err != nil {
		return ExtractedData{}, err
	}

	if err := json.Unmarshal(education, &data.Education); err != nil {
		return ExtractedData{}, fmt.Errorf("unmarshal education: %w", err)
	}
	if err := json.Unmarshal(experience, &data.Experience); err != nil {
		return ExtractedData{}, fmt.Errorf("unmarshal experience: %w", err)
	}
	if err := json.Unmarshal(certifications, &data.Certifications); err != nil {
		return ExtractedData{}, fmt.Errorf("unmarshal certifications: %w", err)
	}
	if err := json.Unmarshal(internships, &data.Internships); err != nil {
		return ExtractedData{}, fmt.Errorf("unmarshal internships: %w", err)
	}
	data.TechnicalSkills = unmarshalStrings(technical)
	data.SoftSkills = unmarshalStrings(soft)
	data.Tools = unmarshalStrings(tools)
	data.Languages = unmarshalStrings(languages)
	data.Keywords = unmarshalStrings(keywords)
	return data, nil
}

// DeleteExtractedData removes the extraction result for a CV.
func (r *PGRepo) DeleteExtractedData(ctx context.Context, cvID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM extracted_data WHERE cv_id = $1`, cvID)
	return err
}

func (r *PGRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCV(row rowScanner) (CV, error) {
	var cv CV
	var docType string
	var checksum, fileID, fileMime, photoURL, photoPublicID sql.NullString
	var photoWidth, photoHeight sql.NullInt64
	var processingError, llmProvider, llmModel, extractionVersion, aiSummary sql.NullString
	var confidence sql.NullFloat64
	var startedAt, completedAt sql.NullTime

	err := row.Scan(&cv.ID, &cv.UserID, &cv.OriginalFileName, &docType, &cv.FileSize,
		&checksum, &fileID, &fileMime,
		&photoURL, &photoPublicID, &photoWidth, &photoHeight,
		&cv.Status, &startedAt, &completedAt, &processingError,
		&llmProvider, &llmModel, &extractionVersion, &confidence, &aiSummary,
		&cv.CreatedAt, &cv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return CV{}, ErrNotFound
	}
	if err != nil {
		return CV{}, err
	}

	cv.DocumentType = DocumentType(docType)
	cv.Checksum = checksum.String
	cv.StorageFileID = fileID.String
	cv.StorageMimeType = fileMime.String
	cv.PhotoURL = photoURL.String
	cv.PhotoPublicID = photoPublicID.String
	cv.PhotoWidth = int(photoWidth.Int64)
	cv.PhotoHeight = int(photoHeight.Int64)
	cv.ProcessingError = processingError.String
	cv.LLMProvider = llmProvider.String
	cv.LLMModel = llmModel.String
	cv.ExtractionVersion = extractionVersion.String
	cv.AISummary = aiSummary.String
	if confidence.Valid {
		score := confidence.Float64
		cv.ConfidenceScore = &score
	}
	if startedAt.Valid {
		t := startedAt.Time
		cv.ProcessingStartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		cv.ProcessingCompletedAt = &t
	}
	return cv, nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func marshalStrings(items []string) []byte {
	payload, err := json.Marshal(orEmpty(items))
	if err != nil {
		return []byte("[]")
	}
	return payload
}

func unmarshalStrings(payload []byte) []string {
	var out []string
	if err := json.Unmarshal(payload, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

var _ Repo = (*PGRepo)(nil)
