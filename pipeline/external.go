package pipeline

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Ready-made external compressor pairs for CompressOptions. All three
// formats are self-framing, so their decompressors honor the zero
// originalSize contract of DecompressFunc: when the recorded size is
// unknown they recover the output length from the stream itself.

// DeflateCompressor returns a fallback pair backed by DEFLATE.
func DeflateCompressor() (CompressFunc, DecompressFunc) {
	compress := func(data []byte) ([]byte, error) {
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, err
		}
		if _, err = w.Write(data); err != nil {
			return nil, err
		}
		if err = w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	decompress := func(data []byte, originalSize uint64) ([]byte, error) {
		r := flate.NewReader(bytes.NewReader(data))
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return checkOriginalSize(out, originalSize)
	}
	return compress, decompress
}

// ZstdCompressor returns a fallback pair backed by Zstandard.
func ZstdCompressor() (CompressFunc, DecompressFunc) {
	compress := func(data []byte) ([]byte, error) {
		var buf bytes.Buffer
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err = enc.Write(data); err != nil {
			return nil, err
		}
		if err = enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	decompress := func(data []byte, originalSize uint64) ([]byte, error) {
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		out, err := io.ReadAll(dec)
		if err != nil {
			return nil, err
		}
		return checkOriginalSize(out, originalSize)
	}
	return compress, decompress
}

// LZ4Compressor returns a fallback pair backed by the LZ4 frame format.
func LZ4Compressor() (CompressFunc, DecompressFunc) {
	compress := func(data []byte) ([]byte, error) {
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	decompress := func(data []byte, originalSize uint64) ([]byte, error) {
		r := lz4.NewReader(bytes.NewReader(data))
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return checkOriginalSize(out, originalSize)
	}
	return compress, decompress
}

func checkOriginalSize(out []byte, originalSize uint64) ([]byte, error) {
	if originalSize != 0 && uint64(len(out)) != originalSize {
		return nil, fmt.Errorf("decompressed %d bytes, want %d", len(out), originalSize)
	}
	return out, nil
}
