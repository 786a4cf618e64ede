package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"cv-backend/internal/cvs"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractBytesDocx(t *testing.T) {
	docXML := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Jane Smith</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Senior Developer</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	data := buildDocx(t, docXML)

	res, err := ExtractBytes(context.Background(), data, cvs.DocumentDOCX)
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if !strings.Contains(res.Text, "Jane Smith") {
		t.Fatalf("missing name in extracted text: %q", res.Text)
	}
	if !strings.Contains(res.Text, "\n") {
		t.Fatalf("expected paragraph break, got %q", res.Text)
	}
}

func TestExtractBytesDocxMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("word/other.xml"); err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if _, err := ExtractBytes(context.Background(), buf.Bytes(), cvs.DocumentDOCX); err == nil {
		t.Fatal("expected error for docx without document.xml")
	}
}

func TestExtractBytesGarbagePDF(t *testing.T) {
	if _, err := ExtractBytes(context.Background(), []byte("not a pdf"), cvs.DocumentPDF); err == nil {
		t.Fatal("expected error for malformed pdf")
	}
}

func TestExtractBytesUnsupportedType(t *testing.T) {
	if _, err := ExtractBytes(context.Background(), []byte("data"), cvs.DocumentType("TXT")); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestExtractBytesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ExtractBytes(ctx, []byte("data"), cvs.DocumentPDF); err == nil {
		t.Fatal("expected context error")
	}
}

func TestOCRLanguages(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"eng+fra", []string{"eng", "fra"}},
		{" eng + fra ", []string{"eng", "fra"}},
		{"fra", []string{"fra"}},
		{"", []string{"eng"}},
		{"++", []string{"eng"}},
	}
	for _, tt := range tests {
		got := ocrLanguages(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ocrLanguages(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
