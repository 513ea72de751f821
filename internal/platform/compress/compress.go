package compress

import (
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	AlgoNone  = "none"
	AlgoGzip  = "gzip"
	AlgoZstd  = "zstd"
	AlgoBzip2 = "bzip2"
)

var ErrUnsupported = errors.New("unsupported compression algorithm")

// Compress squeezes a payload with the named algorithm. bzip2 is read-only
// legacy: there is no writer for it, so new archives must pick another algo.
func Compress(algo string, data []byte) ([]byte, error) {
	switch algo {
	case AlgoNone:
		return data, nil
	case AlgoGzip:
		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case AlgoZstd:
		w, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return nil, err
		}
		out := w.EncodeAll(data, nil)
		if err := w.Close(); err != nil {
			return nil, err
		}
		return out, nil
	case AlgoBzip2:
		return nil, fmt.Errorf("%w: bzip2 archives can be read but not written", ErrUnsupported)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, algo)
	}
}

// Decompress inverts Compress based on the algorithm recorded in archive
// metadata.
func Decompress(algo string, data []byte) ([]byte, error) {
	switch algo {
	case AlgoNone:
		return data, nil
	case AlgoGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case AlgoZstd:
		r, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return r.DecodeAll(data, nil)
	case AlgoBzip2:
		return io.ReadAll(bzip2.NewReader(bytes.NewReader(data)))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, algo)
	}
}

// Ext returns the filename extension fragment for an algorithm, empty for
// uncompressed archives.
func Ext(algo string) string {
	switch algo {
	case AlgoGzip:
		return ".gz"
	case AlgoZstd:
		return ".zst"
	case AlgoBzip2:
		return ".bz2"
	default:
		return ""
	}
}

// Writable reports whether new archives may use the algorithm.
func Writable(algo string) bool {
	switch algo {
	case AlgoNone, AlgoGzip, AlgoZstd:
		return true
	default:
		return false
	}
}
