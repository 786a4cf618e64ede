package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"

	"cv-backend/internal/cvs"
)

// ConfigureOCR sets the tesseract languages used for image extraction.
// language is the tesseract "+"-joined form, e.g. "eng+fra".
func ConfigureOCR(language string) {
	docconv.SetImageLanguages(ocrLanguages(language)...)
}

func ocrLanguages(language string) []string {
	var langs []string
	for _, l := range strings.Split(language, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		return []string{"eng"}
	}
	return langs
}

// Result carries extracted text plus format diagnostics.
type Result struct {
	Text      string
	PageCount int
}

// ExtractFile pulls raw text from a local file according to its document type.
// Libraries used: github.com/ledongthuc/pdf (PDF), archive/zip + encoding/xml
// (DOCX), code.sajari.com/docconv (image OCR).
func ExtractFile(ctx context.Context, path string, docType cvs.DocumentType) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("extract text path=%s type=%s: %w", path, docType, err)
	}

	res, err := ExtractBytes(ctx, data, docType)
	if err != nil {
		return Result{}, fmt.Errorf("extract text path=%s type=%s: %w", path, docType, err)
	}
	return res, nil
}

// ExtractBytes extracts text from an in-memory payload.
func ExtractBytes(ctx context.Context, data []byte, docType cvs.DocumentType) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	switch docType {
	case cvs.DocumentPDF:
		return extractPDF(data)
	case cvs.DocumentDOCX:
		return extractDOCX(data)
	case cvs.DocumentImage:
		return extractImageOCR(data)
	default:
		return Result{}, fmt.Errorf("unsupported document type: %s", docType)
	}
}

func extractPDF(data []byte) (Result, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("pdf open: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return Result{}, fmt.Errorf("pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return Result{}, fmt.Errorf("pdf read: %w", err)
	}
	return Result{Text: buf.String(), PageCount: pdfReader.NumPage()}, nil
}

func extractDOCX(data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, errors.New("empty docx data")
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return Result{}, fmt.Errorf("docx open: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return Result{}, errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return Result{}, fmt.Errorf("docx entry: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return Result{}, fmt.Errorf("docx read: %w", err)
	}

	return Result{Text: stripDocxXML(string(raw))}, nil
}

func extractImageOCR(data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, errors.New("empty image data")
	}
	res, err := docconv.Convert(bytes.NewReader(data), "image/jpeg", true)
	if err != nil {
		return Result{}, fmt.Errorf("image ocr: %w", err)
	}
	return Result{Text: res.Body}, nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if last := buf.Len(); last > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
