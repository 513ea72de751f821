package archive

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"logvault/internal/platform/compress"
	cryptoutil "logvault/internal/platform/crypto"
	"logvault/internal/platform/storage"
)

const testEncryptionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestPackager(t *testing.T, compression, key string) *Packager {
	t.Helper()
	st, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	crypto, err := cryptoutil.New(key)
	if err != nil {
		t.Fatalf("crypto: %v", err)
	}
	return NewPackager(st, crypto, compression, true)
}

func testExport() *ExportResult {
	return &ExportResult{
		Data: []map[string]any{
			{"id": 1, "user_id": "u1", "endpoint": "/a", "created_at": "2026-01-05T00:00:00Z"},
			{"id": 2, "user_id": "u2", "endpoint": "/b", "created_at": "2026-01-06T00:00:00Z"},
		},
		RecordCount: 2,
		Metadata: ExportMetadata{
			TableName:  "api_logs",
			Columns:    map[string]string{"id": "bigint", "user_id": "text"},
			Cutoff:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			ExportedAt: time.Date(2026, 2, 1, 3, 0, 0, 0, time.UTC),
		},
	}
}

func TestPackageUnpackageRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		compression string
		key         string
	}{
		{"plain", "none", ""},
		{"gzip", "gzip", ""},
		{"zstd", "zstd", ""},
		{"gzip encrypted", "gzip", testEncryptionKey},
		{"plain encrypted", "none", testEncryptionKey},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPackager(t, tc.compression, tc.key)

			file, err := p.Package(testExport())
			if err != nil {
				t.Fatalf("Package: %v", err)
			}
			if file.Size <= 0 || file.Checksum == "" {
				t.Fatalf("incomplete file descriptor: %+v", file)
			}

			record := Record{
				UUID:     "arc-1",
				FilePath: file.Path,
				Checksum: file.Checksum,
				Metadata: ExportMetadata{Compression: tc.compression, Encrypted: tc.key != ""},
			}
			out, err := p.Unpackage(record)
			if err != nil {
				t.Fatalf("Unpackage: %v", err)
			}
			if out.RecordCount != 2 || len(out.Data) != 2 {
				t.Fatalf("expected 2 rows back, got %d", out.RecordCount)
			}
			if out.Metadata.TableName != "api_logs" {
				t.Fatalf("metadata lost: %+v", out.Metadata)
			}
			if out.Metadata.Compression != tc.compression {
				t.Fatalf("compression not recorded in metadata: %+v", out.Metadata)
			}

			ok, err := p.Verify(record)
			if err != nil || !ok {
				t.Fatalf("Verify: ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestUnpackageDetectsTampering(t *testing.T) {
	p := newTestPackager(t, "gzip", "")

	file, err := p.Package(testExport())
	if err != nil {
		t.Fatalf("Package: %v", err)
	}

	raw, err := os.ReadFile(file.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	raw[len(raw)/2] ^= 0x01
	if err := os.WriteFile(file.Path, raw, 0o640); err != nil {
		t.Fatalf("write: %v", err)
	}

	record := Record{UUID: "arc-1", FilePath: file.Path, Checksum: file.Checksum, Metadata: ExportMetadata{Compression: "gzip"}}
	if _, err := p.Unpackage(record); !errors.Is(err, ErrCorrupted) {
		t.Fatalf("expected ErrCorrupted, got %v", err)
	}

	ok, err := p.Verify(record)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("tampered file must fail verification")
	}
}

func TestUnpackageMissingFile(t *testing.T) {
	p := newTestPackager(t, "gzip", "")
	record := Record{UUID: "arc-1", FilePath: p.Storage.Path("gone.json.gz"), Checksum: "00"}

	if _, err := p.Unpackage(record); !errors.Is(err, ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile on unpackage, got %v", err)
	}
	if _, err := p.Verify(record); !errors.Is(err, ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile on verify, got %v", err)
	}
}

func TestPackageRejectsReadOnlyCompression(t *testing.T) {
	p := newTestPackager(t, "bzip2", "")
	if _, err := p.Package(testExport()); !errors.Is(err, compress.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestPackageMarksEncryption(t *testing.T) {
	p := newTestPackager(t, "none", testEncryptionKey)

	export := testExport()
	file, err := p.Package(export)
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	if !export.Metadata.Encrypted {
		t.Fatal("metadata must record encryption")
	}

	raw, err := os.ReadFile(file.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bytes.Contains(raw, []byte("api_logs")) {
		t.Fatal("encrypted file must not expose plaintext metadata")
	}
}
