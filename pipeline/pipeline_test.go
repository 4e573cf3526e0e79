package pipeline

import (
	"bytes"
	"errors"
	"testing"

	"github.com/zkfs-io/zkfs"
)

// parseBlobPayload unwraps a compressed-blob record for inspection.
func parseBlobPayload(t *testing.T, buf []byte) (Method, ContentType, uint64, []byte) {
	t.Helper()
	tag, payload, err := zkfs.ReadEnvelope(buf)
	if err != nil {
		t.Fatalf("ReadEnvelope failed: %v", err)
	}
	if tag != zkfs.TagCompressedBlob {
		t.Fatalf("tag = 0x%02x, want 0x%02x", tag, zkfs.TagCompressedBlob)
	}
	method := Method(payload[0])
	ctype := ContentType(payload[1])
	payload = payload[2:]
	originalSize, n, err := zkfs.ConsumeUvarint(payload)
	if err != nil {
		t.Fatalf("original size: %v", err)
	}
	payload = payload[n:]
	compressedLen, n, err := zkfs.ConsumeUvarint(payload)
	if err != nil {
		t.Fatalf("compressed length: %v", err)
	}
	payload = payload[n:]
	if uint64(len(payload)) != compressedLen {
		t.Fatalf("payload is %d bytes, recorded %d", len(payload), compressedLen)
	}
	_ = originalSize
	return method, ctype, compressedLen, payload
}

func TestSniffContentType(t *testing.T) {
	cases := []struct {
		name     string
		data     []byte
		expected ContentType
	}{
		{"empty", nil, ContentBinary},
		{"json object", []byte(`{"key": "value"}`), ContentJSON},
		{"json array", []byte(`[1, 2, 3]`), ContentJSON},
		{"brace then zero", append([]byte{'{'}, 0x00), ContentBinary},
		{"plain text", []byte("hello, wire format\nline two\n"), ContentText},
		{"utf8 text", []byte("grüße aus dem dateisystem"), ContentText},
		{"binary", []byte{0x00, 0x01, 0x02, 0x03}, ContentBinary},
		{"control heavy", bytes.Repeat([]byte{0x01}, 100), ContentBinary},
	}

	for _, c := range cases {
		if got := SniffContentType(c.data); got != c.expected {
			t.Errorf("%s: SniffContentType = %s, want %s", c.name, got, c.expected)
		}
	}
}

func TestCompressBlobNoOptions(t *testing.T) {
	data := []byte("plain payload with no helpers at all")
	encoded, err := CompressBlob(data, CompressOptions{})
	if err != nil {
		t.Fatalf("CompressBlob failed: %v", err)
	}

	method, _, compressedLen, payload := parseBlobPayload(t, encoded)
	if method != MethodNone {
		t.Errorf("method = %s, want none", method)
	}
	if compressedLen != uint64(len(data)) || !bytes.Equal(payload, data) {
		t.Error("verbatim payload mismatch")
	}

	decoded, err := DecompressBlob(encoded, CompressOptions{})
	if err != nil {
		t.Fatalf("DecompressBlob failed: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Error("round trip mismatch")
	}
}

func TestCompressBlobIncompressibleStaysNone(t *testing.T) {
	// Pseudo-random bytes sniff as binary, so the dictionary is skipped
	// and the record must keep the plaintext verbatim.
	data := make([]byte, 50)
	state := uint32(0x2545F491)
	for i := range data {
		state = state*1664525 + 1013904223
		data[i] = byte(state >> 24)
	}
	data[0] = 0x00

	dict := TrainDictionary([][]byte{data})
	opts := CompressOptions{Dictionary: &dict}

	encoded, err := CompressBlob(data, opts)
	if err != nil {
		t.Fatalf("CompressBlob failed: %v", err)
	}
	method, _, compressedLen, _ := parseBlobPayload(t, encoded)
	if method != MethodNone {
		t.Errorf("method = %s, want none", method)
	}
	if compressedLen != 50 {
		t.Errorf("compressed length = %d, want 50", compressedLen)
	}
}

func TestCompressBlobDictionaryMethod(t *testing.T) {
	samples := trainingSamples()
	dict := TrainDictionary(samples)
	opts := CompressOptions{Dictionary: &dict}

	encoded, err := CompressBlob(samples[0], opts)
	if err != nil {
		t.Fatalf("CompressBlob failed: %v", err)
	}
	method, ctype, _, _ := parseBlobPayload(t, encoded)
	if method != MethodDictionary {
		t.Errorf("method = %s, want dictionary", method)
	}
	if ctype != ContentJSON {
		t.Errorf("content type = %s, want json", ctype)
	}

	decoded, err := DecompressBlob(encoded, opts)
	if err != nil {
		t.Fatalf("DecompressBlob failed: %v", err)
	}
	if !bytes.Equal(decoded, samples[0]) {
		t.Error("round trip mismatch")
	}
}

func TestCompressBlobExternalMethod(t *testing.T) {
	compress, decompress := DeflateCompressor()
	opts := CompressOptions{FallbackCompress: compress, FallbackDecompress: decompress}

	data := bytes.Repeat([]byte{0xAB, 0xCD, 0xEF, 0x00}, 200)
	encoded, err := CompressBlob(data, opts)
	if err != nil {
		t.Fatalf("CompressBlob failed: %v", err)
	}
	method, ctype, compressedLen, _ := parseBlobPayload(t, encoded)
	if method != MethodExternal {
		t.Errorf("method = %s, want external", method)
	}
	if ctype != ContentBinary {
		t.Errorf("content type = %s, want binary", ctype)
	}
	if compressedLen >= uint64(len(data)) {
		t.Errorf("external compression did not shrink: %d bytes", compressedLen)
	}

	decoded, err := DecompressBlob(encoded, opts)
	if err != nil {
		t.Fatalf("DecompressBlob failed: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Error("round trip mismatch")
	}
}

func TestCompressBlobDictionaryExternalMethod(t *testing.T) {
	// A large texty payload of repeated structure: the dictionary shrinks
	// it, and deflate shrinks the dictionary output further.
	var sample []byte
	for i := 0; i < 64; i++ {
		sample = append(sample, []byte(`{"entry":"filenode","role":"admin","state":"sealed"}`)...)
	}
	dict := TrainDictionary([][]byte{sample})

	compress, decompress := DeflateCompressor()
	opts := CompressOptions{
		Dictionary:         &dict,
		FallbackCompress:   compress,
		FallbackDecompress: decompress,
	}

	encoded, err := CompressBlob(sample, opts)
	if err != nil {
		t.Fatalf("CompressBlob failed: %v", err)
	}
	method, _, _, _ := parseBlobPayload(t, encoded)
	if method != MethodDictionaryExternal && method != MethodExternal && method != MethodDictionary {
		t.Fatalf("unexpected method %s", method)
	}

	decoded, err := DecompressBlob(encoded, opts)
	if err != nil {
		t.Fatalf("DecompressBlob failed: %v", err)
	}
	if !bytes.Equal(decoded, sample) {
		t.Error("round trip mismatch")
	}
}

func TestCompressBlobRoundTripAllAdapters(t *testing.T) {
	samples := trainingSamples()
	dict := TrainDictionary(samples)

	adapters := map[string]func() (CompressFunc, DecompressFunc){
		"deflate": DeflateCompressor,
		"zstd":    ZstdCompressor,
		"lz4":     LZ4Compressor,
	}
	payloads := [][]byte{
		nil,
		[]byte("x"),
		samples[0],
		bytes.Repeat([]byte("abcdefgh"), 100),
		{0x00, 0xFF, 0x00, 0xFF},
	}

	for name, adapter := range adapters {
		compress, decompress := adapter()
		opts := CompressOptions{
			Dictionary:         &dict,
			FallbackCompress:   compress,
			FallbackDecompress: decompress,
		}
		for i, data := range payloads {
			encoded, err := CompressBlob(data, opts)
			if err != nil {
				t.Fatalf("%s payload %d: CompressBlob failed: %v", name, i, err)
			}
			decoded, err := DecompressBlob(encoded, opts)
			if err != nil {
				t.Fatalf("%s payload %d: DecompressBlob failed: %v", name, i, err)
			}
			if !bytes.Equal(decoded, data) {
				t.Errorf("%s payload %d: round trip mismatch", name, i)
			}
		}
	}
}

func TestDecompressBlobMissingCollaborator(t *testing.T) {
	compress, decompress := DeflateCompressor()
	opts := CompressOptions{FallbackCompress: compress, FallbackDecompress: decompress}

	data := bytes.Repeat([]byte("compressible content "), 50)
	encoded, err := CompressBlob(data, opts)
	if err != nil {
		t.Fatalf("CompressBlob failed: %v", err)
	}
	method, _, _, _ := parseBlobPayload(t, encoded)
	if method == MethodNone {
		t.Skip("payload did not compress")
	}

	if _, err := DecompressBlob(encoded, CompressOptions{}); !errors.Is(err, zkfs.ErrMissingCollaborator) {
		t.Errorf("expected ErrMissingCollaborator, got %v", err)
	}
}

func TestDecompressBlobMissingDictionary(t *testing.T) {
	samples := trainingSamples()
	dict := TrainDictionary(samples)
	encoded, err := CompressBlob(samples[0], CompressOptions{Dictionary: &dict})
	if err != nil {
		t.Fatalf("CompressBlob failed: %v", err)
	}
	method, _, _, _ := parseBlobPayload(t, encoded)
	if method != MethodDictionary {
		t.Fatalf("method = %s, want dictionary", method)
	}

	if _, err := DecompressBlob(encoded, CompressOptions{}); !errors.Is(err, zkfs.ErrMissingCollaborator) {
		t.Errorf("expected ErrMissingCollaborator, got %v", err)
	}
}

func TestDecompressBlobBadMethod(t *testing.T) {
	payload := []byte{0x07, 0x00}
	payload = zkfs.AppendUvarint(payload, 0)
	payload = zkfs.AppendUvarint(payload, 0)
	buf := zkfs.WriteEnvelope(zkfs.TagCompressedBlob, payload)

	if _, err := DecompressBlob(buf, CompressOptions{}); !errors.Is(err, zkfs.ErrBadMethod) {
		t.Errorf("expected ErrBadMethod, got %v", err)
	}
}

func TestDecompressBlobWrongTag(t *testing.T) {
	buf := zkfs.WriteEnvelope(zkfs.TagGroup, []byte("not a blob"))
	if _, err := DecompressBlob(buf, CompressOptions{}); !errors.Is(err, zkfs.ErrBadTag) {
		t.Errorf("expected ErrBadTag, got %v", err)
	}
}

func TestDecompressBlobLengthMismatch(t *testing.T) {
	// A verbatim record whose recorded original size disagrees with the
	// stored payload.
	payload := []byte{byte(MethodNone), byte(ContentBinary)}
	payload = zkfs.AppendUvarint(payload, 10)
	payload = zkfs.AppendUvarint(payload, 3)
	payload = append(payload, 'a', 'b', 'c')
	buf := zkfs.WriteEnvelope(zkfs.TagCompressedBlob, payload)

	if _, err := DecompressBlob(buf, CompressOptions{}); !errors.Is(err, zkfs.ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}
