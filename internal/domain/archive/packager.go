package archive

import (
	"encoding/json"
	"fmt"

	"logvault/internal/platform/checksum"
	"logvault/internal/platform/compress"
	cryptoutil "logvault/internal/platform/crypto"
	"logvault/internal/platform/storage"
)

// envelope is the canonical on-disk form before compression/encryption.
// Metadata rides inside the file, not only in the registry, so an archive
// can be unpackaged even if the registry row disagrees or is gone.
type envelope struct {
	Metadata ExportMetadata   `json:"metadata"`
	Data     []map[string]any `json:"data"`
}

type Packager struct {
	Storage         *storage.Manager
	Crypto          *cryptoutil.Service
	Compression     string
	VerifyChecksums bool
}

func NewPackager(st *storage.Manager, crypto *cryptoutil.Service, compression string, verify bool) *Packager {
	if compression == "" {
		compression = compress.AlgoGzip
	}
	return &Packager{Storage: st, Crypto: crypto, Compression: compression, VerifyChecksums: verify}
}

// Package serializes an export, compresses it, encrypts it when a key is
// configured, writes the file, and checksums the final written bytes — so a
// single digest check later catches corruption regardless of which codecs
// were applied.
func (p *Packager) Package(result *ExportResult) (*File, error) {
	if !compress.Writable(p.Compression) {
		return nil, fmt.Errorf("%w: %q", compress.ErrUnsupported, p.Compression)
	}
	result.Metadata.Compression = p.Compression
	result.Metadata.Encrypted = p.Crypto.Configured()

	raw, err := json.Marshal(envelope{Metadata: result.Metadata, Data: result.Data})
	if err != nil {
		return nil, err
	}

	payload, err := compress.Compress(p.Compression, raw)
	if err != nil {
		return nil, err
	}

	if p.Crypto.Configured() {
		payload, err = p.Crypto.Encrypt(payload)
		if err != nil {
			return nil, err
		}
	}

	name := FileName(result.Metadata.TableName, result.Metadata.ExportedAt, p.Compression, result.Metadata.Encrypted)
	path := p.Storage.Path(name)
	if err := p.Storage.Write(path, payload); err != nil {
		return nil, err
	}

	return &File{
		Path:     path,
		Size:     int64(len(payload)),
		Checksum: checksum.Sum(payload),
	}, nil
}

// Unpackage reads an archive back into rows+metadata. Every integrity
// failure on the way is hard: checksum mismatch, decryption failure,
// unknown compression, and malformed payloads all abort.
func (p *Packager) Unpackage(record Record) (*ExportResult, error) {
	if !p.Storage.Exists(record.FilePath) {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, record.FilePath)
	}
	payload, err := p.Storage.Read(record.FilePath)
	if err != nil {
		return nil, err
	}

	if p.VerifyChecksums && record.Checksum != "" {
		if checksum.Sum(payload) != record.Checksum {
			return nil, fmt.Errorf("%w: %s", ErrCorrupted, record.UUID)
		}
	}

	if record.Metadata.Encrypted {
		payload, err = p.Crypto.Decrypt(payload)
		if err != nil {
			return nil, err
		}
	}

	payload, err = compress.Decompress(record.Metadata.Compression, payload)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return &ExportResult{
		Data:        env.Data,
		RecordCount: int64(len(env.Data)),
		Metadata:    env.Metadata,
	}, nil
}

// Verify re-reads the file and compares digests without unpacking.
func (p *Packager) Verify(record Record) (bool, error) {
	if !p.Storage.Exists(record.FilePath) {
		return false, fmt.Errorf("%w: %s", ErrMissingFile, record.FilePath)
	}
	if !p.VerifyChecksums {
		return true, nil
	}
	return checksum.VerifyFile(record.FilePath, record.Checksum)
}

// RemoveFile deletes the physical artifact, tolerating absence.
func (p *Packager) RemoveFile(record Record) error {
	return p.Storage.Remove(record.FilePath)
}
