package zkfs

import (
	"bytes"
	"errors"
	"testing"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	payload := []byte("record payload bytes")
	buf := WriteEnvelope(TagGroup, payload)

	if len(buf) != len(payload)+8 {
		t.Errorf("envelope is %d bytes, want %d", len(buf), len(payload)+8)
	}

	tag, got, err := ReadEnvelope(buf)
	if err != nil {
		t.Fatalf("ReadEnvelope failed: %v", err)
	}
	if tag != TagGroup {
		t.Errorf("tag = 0x%02x, want 0x%02x", tag, TagGroup)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %x, want %x", got, payload)
	}
}

func TestEnvelopeEmptyPayload(t *testing.T) {
	buf := WriteEnvelope(TagFileNode, nil)
	tag, payload, err := ReadEnvelope(buf)
	if err != nil {
		t.Fatalf("ReadEnvelope failed: %v", err)
	}
	if tag != TagFileNode || len(payload) != 0 {
		t.Errorf("got tag 0x%02x with %d payload bytes", tag, len(payload))
	}
}

func TestEnvelopeHeader(t *testing.T) {
	buf := WriteEnvelope(TagSMT, []byte{0xAA})
	if buf[0] != 0x5A || buf[1] != 0x4B {
		t.Errorf("magic = %02x %02x, want 5A 4B", buf[0], buf[1])
	}
	if buf[2] != EnvelopeVersion {
		t.Errorf("version = %d, want %d", buf[2], EnvelopeVersion)
	}
	if buf[3] != TagSMT {
		t.Errorf("tag = 0x%02x, want 0x%02x", buf[3], TagSMT)
	}
}

func TestReadEnvelopeTooShort(t *testing.T) {
	if _, _, err := ReadEnvelope([]byte{0x5A, 0x4B, 0x01, 0x01, 0x00, 0x00, 0x00}); !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}

func TestReadEnvelopeBadMagic(t *testing.T) {
	buf := WriteEnvelope(TagGroup, []byte("x"))
	buf[1] = 0x00
	if _, _, err := ReadEnvelope(buf); !errors.Is(err, ErrBadMagic) {
		t.Errorf("expected ErrBadMagic, got %v", err)
	}
}

func TestReadEnvelopeBadVersion(t *testing.T) {
	buf := WriteEnvelope(TagGroup, []byte("x"))
	buf[2] = 0x02
	if _, _, err := ReadEnvelope(buf); !errors.Is(err, ErrBadVersion) {
		t.Errorf("expected ErrBadVersion, got %v", err)
	}
}

func TestReadEnvelopeBadCrc(t *testing.T) {
	buf := WriteEnvelope(TagGroup, []byte("group payload"))
	buf[5] ^= 0x01
	if _, _, err := ReadEnvelope(buf); !errors.Is(err, ErrBadCrc) {
		t.Errorf("expected ErrBadCrc, got %v", err)
	}
}

func TestHasMagic(t *testing.T) {
	if !HasMagic([]byte{0x5A, 0x4B}) {
		t.Error("magic prefix not recognized")
	}
	if HasMagic([]byte{0x5A}) {
		t.Error("single byte recognized as magic")
	}
	if HasMagic([]byte(`{"type":"file"}`)) {
		t.Error("legacy JSON recognized as magic")
	}
}
