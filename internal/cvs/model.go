package cvs

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// Processing statuses for a CV. Transitions are monotonic within one run:
// PENDING -> PROCESSING -> COMPLETED | FAILED. A FAILED CV returns to PENDING
// only through an explicit reprocess.
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// DocumentType identifies the uploaded file format.
type DocumentType string

const (
	DocumentPDF   DocumentType = "PDF"
	DocumentDOCX  DocumentType = "DOCX"
	DocumentImage DocumentType = "IMAGE"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ParseDocumentType maps a mime type (with file name as a tie-breaker) to a
// document type.
func ParseDocumentType(mimeType, fileName string) (DocumentType, error) {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch {
	case clean == mimePDF:
		return DocumentPDF, nil
	case clean == mimeDOCX || clean == "application/msword":
		return DocumentDOCX, nil
	case strings.HasPrefix(clean, "image/"):
		return DocumentImage, nil
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return DocumentPDF, nil
	case ".docx", ".doc":
		return DocumentDOCX, nil
	case ".png", ".jpg", ".jpeg", ".webp", ".tif", ".tiff":
		return DocumentImage, nil
	}
	return "", errors.New("unsupported document type: " + clean)
}

// MimeType returns the canonical mime type for the document type. Image CVs
// keep their uploaded mime type; jpeg is the conventional default.
func (d DocumentType) MimeType() string {
	switch d {
	case DocumentPDF:
		return mimePDF
	case DocumentDOCX:
		return mimeDOCX
	case DocumentImage:
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// CV is an uploaded candidate document plus its processing metadata.
type CV struct {
	ID                    string
	UserID                *string
	OriginalFileName      string
	DocumentType          DocumentType
	FileSize              int64
	Checksum              string
	StorageFileID         string
	StorageMimeType       string
	PhotoURL              string
	PhotoPublicID         string
	PhotoWidth            int
	PhotoHeight           int
	Status                string
	ProcessingStartedAt   *time.Time
	ProcessingCompletedAt *time.Time
	ProcessingError       string
	LLMProvider           string
	LLMModel              string
	ExtractionVersion     string
	ConfidenceScore       *float64
	AISummary             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NameNotExtracted is reported when no name-shaped line survives the
// extraction cascade. The extractor never guesses a name from contact info.
const NameNotExtracted = "Not extracted"

// EducationEntry is one schooling record in document order.
type EducationEntry struct {
	Degree       string `json:"degree"`
	Institution  string `json:"institution"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
}

// ExperienceEntry is one employment record in document order.
type ExperienceEntry struct {
	Position      string  `json:"position"`
	Company       string  `json:"company,omitempty"`
	Location      string  `json:"location,omitempty"`
	StartDate     string  `json:"start_date,omitempty"`
	EndDate       string  `json:"end_date,omitempty"`
	DurationYears float64 `json:"duration_years"`
}

// CertificationEntry is one certification record.
type CertificationEntry struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Year   string `json:"year,omitempty"`
}

// ExtractedData holds the structured fields derived from a CV's text.
// At most one record exists per CV; reprocessing destroys and recreates it
// wholesale.
type ExtractedData struct {
	ID                   string
	CVID                 string
	FullName             string
	Email                string
	Phone                string
	Location             string
	City                 string
	Country              string
	Age                  int
	Gender               string
	LinkedInURL          string
	Education            []EducationEntry
	Experience           []ExperienceEntry
	Certifications       []CertificationEntry
	Internships          []ExperienceEntry
	TechnicalSkills      []string
	SoftSkills           []string
	Tools                []string
	Languages            []string
	Keywords             []string
	TotalExperienceYears float64
	SeniorityLevel       string
	Industry             string
	HasPhoto             bool
	RawText              string
	CreatedAt            time.Time
}

// SeniorityFromYears maps total experience years to a categorical level.
func SeniorityFromYears(years float64) string {
	switch {
	case years <= 0:
		return "Entry Level"
	case years < 2:
		return "Junior"
	case years < 5:
		return "Mid Level"
	case years < 10:
		return "Senior"
	default:
		return "Lead/Principal"
	}
}
