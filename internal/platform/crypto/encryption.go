package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// Archive payloads are framed as IV(16) || AUTH_TAG(16) || CIPHERTEXT so a
// file is self-contained: no per-archive nonce bookkeeping in the registry.
const (
	ivSize  = 16
	tagSize = 16
)

var ErrDecryptFailed = errors.New("decryption failed: wrong key or corrupted data")

type Service struct {
	key []byte
}

// New builds a codec from a raw key (hex or base64, 32 bytes decoded).
// An empty key yields a pass-through codec.
func New(key string) (*Service, error) {
	if key == "" {
		return &Service{key: nil}, nil
	}
	decoded, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("ARCHIVE_ENCRYPTION_KEY must be 32 bytes after decoding")
	}
	return &Service{key: decoded}, nil
}

// NewFromPassphrase derives the 32-byte key with scrypt. The salt must stay
// stable across restarts or previously written archives become unreadable.
func NewFromPassphrase(passphrase, salt string) (*Service, error) {
	if passphrase == "" {
		return &Service{key: nil}, nil
	}
	if salt == "" {
		return nil, fmt.Errorf("a salt is required to derive the archive key")
	}
	key, err := scrypt.Key([]byte(passphrase), []byte(salt), 1<<15, 8, 1, 32)
	if err != nil {
		return nil, err
	}
	return &Service{key: key}, nil
}

func (s *Service) Configured() bool {
	return len(s.key) == 32
}

func (s *Service) Encrypt(plain []byte) ([]byte, error) {
	if !s.Configured() {
		return nil, errors.New("encryption key not configured")
	}
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, err
	}
	sealed := gcm.Seal(nil, iv, plain, nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	out := make([]byte, 0, ivSize+tagSize+len(ciphertext))
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, ciphertext...)
	return out, nil
}

func (s *Service) Decrypt(payload []byte) ([]byte, error) {
	if !s.Configured() {
		return nil, errors.New("encryption key not configured")
	}
	if len(payload) < ivSize+tagSize {
		return nil, ErrDecryptFailed
	}
	gcm, err := s.aead()
	if err != nil {
		return nil, err
	}
	iv := payload[:ivSize]
	tag := payload[ivSize : ivSize+tagSize]
	ciphertext := payload[ivSize+tagSize:]

	sealed := make([]byte, 0, len(ciphertext)+tagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plain, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}

func (s *Service) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, ivSize)
}

func decodeKey(raw string) ([]byte, error) {
	if len(raw) == 64 {
		decoded, err := hex.DecodeString(raw)
		if err == nil {
			return decoded, nil
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	return []byte(raw), nil
}
