package pipeline

import (
	"strings"

	"cv-backend/internal/cvs"
)

// Quality tiers are informational only; validity is what gates the run.
const (
	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"
)

// Validation is the text quality verdict for one extracted document.
type Validation struct {
	IsValid bool
	Reason  string
	Quality string
}

// Validate judges whether extracted text is substantial enough to process.
// Thresholds are document-type aware: OCR'd or scanned PDFs are noisier than
// native text, so PDFs get a lower bar, and a PDF with many lines relative to
// its content (a scanned-page signature) gets a lower bar still. Length and
// word count gate independently because poorly rendered sources fail one
// without the other: many short fragmented lines, or a few long tokens.
func Validate(text string, docType cvs.DocumentType) Validation {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Validation{IsValid: false, Reason: "no text extracted", Quality: QualityLow}
	}

	length := len(trimmed)
	words := meaningfulWordCount(trimmed)

	if docType == cvs.DocumentPDF {
		if length < 30 && words < 5 {
			lineCount := len(strings.Split(trimmed, "\n"))
			if lineCount > 20 && length >= 20 && words >= 3 {
				return Validation{IsValid: true, Quality: QualityMedium}
			}
			return Validation{
				IsValid: false,
				Reason:  "insufficient text extracted from PDF",
				Quality: QualityLow,
			}
		}
	} else if length < 50 && words < 8 {
		return Validation{
			IsValid: false,
			Reason:  "insufficient text extracted from document",
			Quality: QualityLow,
		}
	}

	switch {
	case length >= 500 && words >= 80:
		return Validation{IsValid: true, Quality: QualityHigh}
	case length >= 100 && words >= 15:
		return Validation{IsValid: true, Quality: QualityMedium}
	default:
		return Validation{IsValid: true, Quality: QualityLow}
	}
}

// meaningfulWordCount counts whitespace-delimited tokens longer than two
// characters.
func meaningfulWordCount(text string) int {
	count := 0
	for _, token := range strings.Fields(text) {
		if len(token) > 2 {
			count++
		}
	}
	return count
}
