package zkfs

import (
	"errors"
	"reflect"
	"testing"
)

func TestSMTRoundTrip(t *testing.T) {
	data := SMTData{
		Root: testHash(0x42),
		Entries: []SMTEntry{
			{BitLen: 3, PathBits: []byte{0b101_00000}, Value: testHash(0x01)},
			{BitLen: 8, PathBits: []byte{0xFF}, Value: testHash(0x02)},
			{BitLen: 12, PathBits: []byte{0xAB, 0xC0}, Value: testHash(0x03)},
		},
	}

	decoded, err := DecodeSMT(EncodeSMT(data))
	if err != nil {
		t.Fatalf("DecodeSMT failed: %v", err)
	}
	if !reflect.DeepEqual(decoded, data) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, data)
	}
}

func TestSMTZeroEntries(t *testing.T) {
	data := SMTData{Root: testHash(0x42)}
	decoded, err := DecodeSMT(EncodeSMT(data))
	if err != nil {
		t.Fatalf("DecodeSMT failed: %v", err)
	}
	if decoded.Root != data.Root || len(decoded.Entries) != 0 {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}

func TestSMTSingleBitPath(t *testing.T) {
	data := SMTData{
		Entries: []SMTEntry{{BitLen: 1, PathBits: []byte{0x80}, Value: testHash(0x09)}},
	}
	encoded := EncodeSMT(data)

	// root(32) + count(1) + bit_len(1) + path(1) + value(32) + envelope(8)
	if len(encoded) != 32+1+1+1+32+8 {
		t.Errorf("single-bit entry record is %d bytes", len(encoded))
	}

	decoded, err := DecodeSMT(encoded)
	if err != nil {
		t.Fatalf("DecodeSMT failed: %v", err)
	}
	if len(decoded.Entries[0].PathBits) != 1 {
		t.Errorf("single-bit path packed into %d bytes", len(decoded.Entries[0].PathBits))
	}
}

func TestSMTPaddingBitsIgnored(t *testing.T) {
	// Write an entry whose last path byte has garbage past the valid bits.
	data := SMTData{
		Entries: []SMTEntry{{BitLen: 3, PathBits: []byte{0b101_11111}, Value: testHash(0x01)}},
	}
	decoded, err := DecodeSMT(EncodeSMT(data))
	if err != nil {
		t.Fatalf("DecodeSMT failed: %v", err)
	}
	if decoded.Entries[0].PathBits[0] != 0b101_00000 {
		t.Errorf("padding bits survived decode: %08b", decoded.Entries[0].PathBits[0])
	}
}

func TestSMTEntryOrderPreserved(t *testing.T) {
	var data SMTData
	for i := 0; i < 16; i++ {
		data.Entries = append(data.Entries, SMTEntry{
			BitLen:   8,
			PathBits: []byte{byte(15 - i)},
			Value:    testHash(byte(i)),
		})
	}
	decoded, err := DecodeSMT(EncodeSMT(data))
	if err != nil {
		t.Fatalf("DecodeSMT failed: %v", err)
	}
	for i, e := range decoded.Entries {
		if e.PathBits[0] != byte(15-i) || e.Value != testHash(byte(i)) {
			t.Fatalf("entry %d out of order: %+v", i, e)
		}
	}
}

func TestSMTTruncatedEntry(t *testing.T) {
	data := SMTData{
		Entries: []SMTEntry{{BitLen: 16, PathBits: []byte{0x01, 0x02}, Value: testHash(0x01)}},
	}
	encoded := EncodeSMT(data)

	payload := encoded[4 : len(encoded)-4]
	buf := WriteEnvelope(TagSMT, payload[:len(payload)-20])
	if _, err := DecodeSMT(buf); !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

func TestDecodeSMTWrongTag(t *testing.T) {
	if _, err := DecodeSMT(EncodeGroup(Group{})); !errors.Is(err, ErrBadTag) {
		t.Errorf("expected ErrBadTag, got %v", err)
	}
}
