package crypto

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !svc.Configured() {
		t.Fatal("expected configured codec")
	}

	plain := []byte("archived rows, compressed")
	sealed, err := svc.Encrypt(plain)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(sealed) != len(plain)+ivSize+tagSize {
		t.Fatalf("expected iv+tag framing overhead of %d bytes, got %d", ivSize+tagSize, len(sealed)-len(plain))
	}
	if bytes.Contains(sealed, plain) {
		t.Fatal("ciphertext must not contain the plaintext")
	}

	out, err := svc.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(out, plain) {
		t.Fatal("round trip mismatch")
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	other, err := New(strings.Repeat("ff", 32))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sealed, err := svc.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := other.Decrypt(sealed); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed, got %v", err)
	}
}

func TestDecryptTamperedPayload(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sealed, err := svc.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	sealed[len(sealed)-1] ^= 0x01
	if _, err := svc.Decrypt(sealed); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed, got %v", err)
	}
}

func TestDecryptShortPayload(t *testing.T) {
	svc, err := New(testKey)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := svc.Decrypt(make([]byte, ivSize+tagSize-1)); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed, got %v", err)
	}
}

func TestEmptyKeyIsPassThrough(t *testing.T) {
	svc, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if svc.Configured() {
		t.Fatal("empty key must not be configured")
	}
	if _, err := svc.Encrypt([]byte("x")); err == nil {
		t.Fatal("Encrypt without a key must error")
	}
}

func TestBadKeyLength(t *testing.T) {
	if _, err := New("too-short"); err == nil {
		t.Fatal("expected error for a key that is not 32 bytes")
	}
}

func TestPassphraseDerivationIsDeterministic(t *testing.T) {
	a, err := NewFromPassphrase("correct horse", "fixed-salt")
	if err != nil {
		t.Fatalf("NewFromPassphrase: %v", err)
	}
	b, err := NewFromPassphrase("correct horse", "fixed-salt")
	if err != nil {
		t.Fatalf("NewFromPassphrase: %v", err)
	}

	sealed, err := a.Encrypt([]byte("payload"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	out, err := b.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt with re-derived key: %v", err)
	}
	if string(out) != "payload" {
		t.Fatal("round trip mismatch across derivations")
	}
}

func TestPassphraseRequiresSalt(t *testing.T) {
	if _, err := NewFromPassphrase("secret", ""); err == nil {
		t.Fatal("expected error when salt is missing")
	}
}
