package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Sum returns the SHA-256 hex digest of a byte buffer.
func Sum(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}

// SumFile streams a file through SHA-256 so verification never needs the
// whole archive in memory.
func SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyFile recomputes the file digest and compares it to the expected hex
// string. A missing file is an error, not a mismatch.
func VerifyFile(path, expected string) (bool, error) {
	actual, err := SumFile(path)
	if err != nil {
		return false, err
	}
	return actual == expected, nil
}
