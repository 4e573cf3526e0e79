package pipeline

import (
	"fmt"

	"github.com/zkfs-io/zkfs"
)

// Method identifies how a compressed-blob payload was encoded. Methods are
// protocol constants stored in the record (1 byte each).
type Method uint8

const (
	// MethodNone stores the plaintext verbatim.
	MethodNone Method = 0x00

	// MethodExternal stores the output of the external compressor applied
	// to the plaintext.
	MethodExternal Method = 0x01

	// MethodDictionary stores the dictionary compression of the plaintext.
	MethodDictionary Method = 0x02

	// MethodDictionaryExternal stores the external compression of the
	// dictionary output.
	MethodDictionaryExternal Method = 0x03
)

// String returns the human-readable name of a method.
func (m Method) String() string {
	switch m {
	case MethodNone:
		return "none"
	case MethodExternal:
		return "external"
	case MethodDictionary:
		return "dictionary"
	case MethodDictionaryExternal:
		return "dictionary+external"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// ContentType is the sniffed classification of a plaintext. It is
// persisted for observability but never consulted during decompression.
type ContentType uint8

const (
	ContentBinary ContentType = 0x00
	ContentJSON   ContentType = 0x01
	ContentText   ContentType = 0x02
)

// String returns the human-readable name of a content type.
func (c ContentType) String() string {
	switch c {
	case ContentBinary:
		return "binary"
	case ContentJSON:
		return "json"
	case ContentText:
		return "text"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// CompressFunc is an injected external compressor.
type CompressFunc func(data []byte) ([]byte, error)

// DecompressFunc is an injected external decompressor. originalSize is the
// recorded plaintext length; a zero size means the output length is not
// known to the caller and the function must recover it from its own
// framing.
type DecompressFunc func(data []byte, originalSize uint64) ([]byte, error)

// CompressOptions carries the optional collaborators of the blob pipeline.
// Any field may be nil; methods needing an absent collaborator are skipped
// on encode and fail with ErrMissingCollaborator on decode.
type CompressOptions struct {
	Dictionary         *Dictionary
	FallbackCompress   CompressFunc
	FallbackDecompress DecompressFunc
}

// SniffContentType classifies a plaintext. A leading '{' or '[' with no
// zero byte in the first 64 bytes is JSON; otherwise a window of up to 512
// bytes that is zero-free and more than 90% text-like (printable ASCII,
// tab, LF, CR, or any byte >= 0x80) is UTF-8 text; everything else,
// including the empty buffer, is binary.
func SniffContentType(data []byte) ContentType {
	if len(data) == 0 {
		return ContentBinary
	}

	if data[0] == '{' || data[0] == '[' {
		window := data
		if len(window) > 64 {
			window = window[:64]
		}
		if !containsZero(window) {
			return ContentJSON
		}
	}

	window := data
	if len(window) > 512 {
		window = window[:512]
	}
	if containsZero(window) {
		return ContentBinary
	}
	texty := 0
	for _, b := range window {
		if b >= 0x20 && b <= 0x7E || b == '\t' || b == '\n' || b == '\r' || b >= 0x80 {
			texty++
		}
	}
	if texty*10 > len(window)*9 {
		return ContentText
	}
	return ContentBinary
}

func containsZero(data []byte) bool {
	for _, b := range data {
		if b == 0 {
			return true
		}
	}
	return false
}

// CompressBlob tries the available encodings and frames the smallest as a
// compressed-blob record. Dictionary compression is only attempted on JSON
// or text plaintexts, and trial failures are discarded so a different
// method can still win. The framed payload never encodes more bytes than
// the plaintext: when no trial is strictly smaller the method falls back
// to none.
//
// Payload layout inside the envelope: method(1), content_type(1),
// original_size(varint), compressed_len(varint), data.
func CompressBlob(data []byte, opts CompressOptions) ([]byte, error) {
	ctype := SniffContentType(data)

	best := data
	method := MethodNone

	var dictOut []byte
	if opts.Dictionary != nil && (ctype == ContentJSON || ctype == ContentText) {
		out, err := opts.Dictionary.Compress(data)
		if err == nil {
			dictOut = out
			if len(out) < len(best) {
				best, method = out, MethodDictionary
			}
		}
	}
	if opts.FallbackCompress != nil {
		if out, err := opts.FallbackCompress(data); err == nil && len(out) < len(best) {
			best, method = out, MethodExternal
		}
		if dictOut != nil {
			if out, err := opts.FallbackCompress(dictOut); err == nil && len(out) < len(best) {
				best, method = out, MethodDictionaryExternal
			}
		}
	}
	if len(best) >= len(data) {
		best, method = data, MethodNone
	}

	payload := make([]byte, 0, 2+10+10+len(best))
	payload = append(payload, byte(method), byte(ctype))
	payload = zkfs.AppendUvarint(payload, uint64(len(data)))
	payload = zkfs.AppendUvarint(payload, uint64(len(best)))
	payload = append(payload, best...)
	return zkfs.WriteEnvelope(zkfs.TagCompressedBlob, payload), nil
}

// DecompressBlob reverses CompressBlob, dispatching on the recorded
// method. Methods needing an absent collaborator fail with
// ErrMissingCollaborator, unknown methods with ErrBadMethod, and a
// plaintext shorter or longer than the recorded original size with
// ErrLengthMismatch.
func DecompressBlob(buf []byte, opts CompressOptions) ([]byte, error) {
	tag, payload, err := zkfs.ReadEnvelope(buf)
	if err != nil {
		return nil, err
	}
	if tag != zkfs.TagCompressedBlob {
		return nil, fmt.Errorf("tag 0x%02x: %w", tag, zkfs.ErrBadTag)
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("blob payload of %d bytes: %w", len(payload), zkfs.ErrTruncated)
	}
	method := Method(payload[0])
	payload = payload[2:]

	originalSize, n, err := zkfs.ConsumeUvarint(payload)
	if err != nil {
		return nil, fmt.Errorf("original size: %w", err)
	}
	payload = payload[n:]
	compressedLen, n, err := zkfs.ConsumeUvarint(payload)
	if err != nil {
		return nil, fmt.Errorf("compressed length: %w", err)
	}
	payload = payload[n:]
	if compressedLen > uint64(len(payload)) {
		return nil, fmt.Errorf("compressed data of %d bytes in %d: %w", compressedLen, len(payload), zkfs.ErrTruncated)
	}
	if compressedLen < uint64(len(payload)) {
		return nil, fmt.Errorf("%d trailing bytes after compressed data: %w", uint64(len(payload))-compressedLen, zkfs.ErrMalformed)
	}

	var plain []byte
	switch method {
	case MethodNone:
		plain = append([]byte(nil), payload...)

	case MethodExternal:
		if opts.FallbackDecompress == nil {
			return nil, fmt.Errorf("method %s: %w", method, zkfs.ErrMissingCollaborator)
		}
		if plain, err = opts.FallbackDecompress(payload, originalSize); err != nil {
			return nil, fmt.Errorf("external decompression: %w", err)
		}

	case MethodDictionary:
		if opts.Dictionary == nil {
			return nil, fmt.Errorf("method %s: %w", method, zkfs.ErrMissingCollaborator)
		}
		if plain, err = opts.Dictionary.Decompress(payload, originalSize); err != nil {
			return nil, err
		}

	case MethodDictionaryExternal:
		if opts.FallbackDecompress == nil || opts.Dictionary == nil {
			return nil, fmt.Errorf("method %s: %w", method, zkfs.ErrMissingCollaborator)
		}
		// The intermediate dictionary output has no recorded size; the
		// external decompressor must recover it from its own framing.
		intermediate, err := opts.FallbackDecompress(payload, 0)
		if err != nil {
			return nil, fmt.Errorf("external decompression: %w", err)
		}
		if plain, err = opts.Dictionary.Decompress(intermediate, originalSize); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("method byte 0x%02x: %w", uint8(method), zkfs.ErrBadMethod)
	}

	if uint64(len(plain)) != originalSize {
		return nil, fmt.Errorf("plaintext of %d bytes, recorded %d: %w", len(plain), originalSize, zkfs.ErrLengthMismatch)
	}
	return plain, nil
}
