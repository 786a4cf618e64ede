package photo

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"cv-backend/internal/cvs"
)

// Embedded photos below this size are almost always logos or icons.
const minPhotoBytes = 4 << 10

// Maximum bytes considered for a single embedded JPEG segment.
const maxPhotoBytes = 8 << 20

// Extract returns the most plausible embedded candidate photo from a CV file,
// or nil when none is found. Absence of a photo is never an error; only
// unreadable or malformed input fails.
func Extract(ctx context.Context, filePath string, docType cvs.DocumentType) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("photo read path=%s: %w", filePath, err)
	}

	switch docType {
	case cvs.DocumentImage:
		// The uploaded document is itself the photo.
		return data, nil
	case cvs.DocumentDOCX:
		return extractFromDocx(data)
	case cvs.DocumentPDF:
		return extractFromPDF(data), nil
	default:
		return nil, nil
	}
}

func extractFromDocx(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("photo docx open: %w", err)
	}

	var best []byte
	for _, f := range zr.File {
		name := strings.ToLower(strings.ReplaceAll(f.Name, "\\", "/"))
		if !strings.HasPrefix(name, "word/media/") {
			continue
		}
		switch path.Ext(name) {
		case ".jpg", ".jpeg", ".png":
		default:
			continue
		}
		if f.UncompressedSize64 < minPhotoBytes || f.UncompressedSize64 > maxPhotoBytes {
			continue
		}
		if best != nil && f.UncompressedSize64 <= uint64(len(best)) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		payload := make([]byte, 0, f.UncompressedSize64)
		buf := bytes.NewBuffer(payload)
		if _, err := buf.ReadFrom(rc); err != nil {
			rc.Close()
			continue
		}
		rc.Close()
		best = buf.Bytes()
	}
	return best, nil
}

var (
	jpegStart = []byte{0xFF, 0xD8, 0xFF}
	jpegEnd   = []byte{0xFF, 0xD9}
)

// extractFromPDF scans the raw PDF bytes for embedded JPEG streams
// (DCTDecode images are stored verbatim) and returns the largest plausible
// one. Best-effort: a PDF with no raster images yields nil.
func extractFromPDF(data []byte) []byte {
	var best []byte
	offset := 0
	for {
		start := bytes.Index(data[offset:], jpegStart)
		if start < 0 {
			break
		}
		start += offset
		end := bytes.Index(data[start:], jpegEnd)
		if end < 0 {
			break
		}
		end += start + len(jpegEnd)

		segment := data[start:end]
		if len(segment) >= minPhotoBytes && len(segment) <= maxPhotoBytes && len(segment) > len(best) {
			best = segment
		}
		offset = end
	}
	if best == nil {
		return nil
	}
	out := make([]byte, len(best))
	copy(out, best)
	return out
}
