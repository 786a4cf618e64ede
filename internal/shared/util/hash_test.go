package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashUserKey(t *testing.T) {
	id := "google:12345"
	got := HashUserKey(id)
	if got != HashUserKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestChecksumFileMatchesBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.pdf")
	payload := []byte("not really a pdf")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	fromFile, err := ChecksumFile(path)
	if err != nil {
		t.Fatalf("checksum file: %v", err)
	}
	if fromFile != ChecksumBytes(payload) {
		t.Fatalf("file and byte checksums differ: %s vs %s", fromFile, ChecksumBytes(payload))
	}
	if len(fromFile) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(fromFile))
	}
}

func TestChecksumFileMissing(t *testing.T) {
	if _, err := ChecksumFile(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
