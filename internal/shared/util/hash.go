package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashUserKey returns a filesystem-safe identifier for a user ID.
func HashUserKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ChecksumFile streams a file through SHA-256 and returns the hex digest.
func ChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("checksum open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum read: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ChecksumBytes returns the hex SHA-256 digest of an in-memory payload.
func ChecksumBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
