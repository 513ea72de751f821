package compress

import (
	"bytes"
	"errors"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("archive payload row "), 200)

	for _, algo := range []string{AlgoNone, AlgoGzip, AlgoZstd} {
		compressed, err := Compress(algo, payload)
		if err != nil {
			t.Fatalf("%s compress: %v", algo, err)
		}
		out, err := Decompress(algo, compressed)
		if err != nil {
			t.Fatalf("%s decompress: %v", algo, err)
		}
		if !bytes.Equal(out, payload) {
			t.Fatalf("%s round trip mismatch", algo)
		}
	}
}

func TestCompressShrinksRepetitiveData(t *testing.T) {
	payload := bytes.Repeat([]byte("aaaaaaaaaa"), 1000)
	for _, algo := range []string{AlgoGzip, AlgoZstd} {
		compressed, err := Compress(algo, payload)
		if err != nil {
			t.Fatalf("%s compress: %v", algo, err)
		}
		if len(compressed) >= len(payload) {
			t.Fatalf("%s did not shrink payload: %d >= %d", algo, len(compressed), len(payload))
		}
	}
}

func TestBzip2IsReadOnly(t *testing.T) {
	if _, err := Compress(AlgoBzip2, []byte("x")); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported for bzip2 write, got %v", err)
	}
	if Writable(AlgoBzip2) {
		t.Fatal("bzip2 must not be writable")
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	if _, err := Compress("lz4", []byte("x")); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported on compress, got %v", err)
	}
	if _, err := Decompress("lz4", []byte("x")); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported on decompress, got %v", err)
	}
}

func TestExt(t *testing.T) {
	tests := []struct {
		algo string
		want string
	}{
		{AlgoNone, ""},
		{AlgoGzip, ".gz"},
		{AlgoZstd, ".zst"},
		{AlgoBzip2, ".bz2"},
	}
	for _, tc := range tests {
		if got := Ext(tc.algo); got != tc.want {
			t.Fatalf("Ext(%s) = %q, want %q", tc.algo, got, tc.want)
		}
	}
}
