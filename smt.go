package zkfs

import "fmt"

// EncodeSMT serializes a sparse Merkle tree snapshot into a framed record.
//
// Payload layout: root(32), entry_count(varint), then each entry as
// bit_len(varint), path bits packed MSB-first into ceil(bit_len/8) bytes,
// value(32).
func EncodeSMT(s SMTData) []byte {
	payload := make([]byte, 0, 32+10+len(s.Entries)*(10+4+32))
	payload = append(payload, s.Root[:]...)
	payload = AppendUvarint(payload, uint64(len(s.Entries)))
	for _, e := range s.Entries {
		payload = AppendUvarint(payload, e.BitLen)
		payload = append(payload, e.PathBits...)
		payload = append(payload, e.Value[:]...)
	}
	return WriteEnvelope(TagSMT, payload)
}

// DecodeSMT reads a framed sparse Merkle tree record, failing with
// ErrBadTag when the envelope holds a different record kind. Entry order
// is preserved and trailing padding bits in each path are zeroed.
func DecodeSMT(buf []byte) (SMTData, error) {
	tag, payload, err := ReadEnvelope(buf)
	if err != nil {
		return SMTData{}, err
	}
	if tag != TagSMT {
		return SMTData{}, fmt.Errorf("tag 0x%02x: %w", tag, ErrBadTag)
	}
	return decodeSMTPayload(payload)
}

func decodeSMTPayload(payload []byte) (SMTData, error) {
	r := payloadReader{buf: payload}
	var s SMTData
	var err error

	if s.Root, err = r.hash(); err != nil {
		return SMTData{}, fmt.Errorf("smt root: %w", err)
	}

	count, err := r.uvarint()
	if err != nil {
		return SMTData{}, fmt.Errorf("entry count: %w", err)
	}
	for i := uint64(0); i < count; i++ {
		var e SMTEntry
		if e.BitLen, err = r.uvarint(); err != nil {
			return SMTData{}, fmt.Errorf("entry %d bit length: %w", i, err)
		}
		byteLen := (e.BitLen + 7) / 8
		if byteLen > uint64(r.remaining()) {
			return SMTData{}, fmt.Errorf("entry %d path of %d bytes: %w", i, byteLen, ErrTruncated)
		}
		bits, err := r.take(int(byteLen))
		if err != nil {
			return SMTData{}, fmt.Errorf("entry %d path: %w", i, err)
		}
		e.PathBits = append([]byte(nil), bits...)
		// Padding bits past BitLen are unspecified on the wire.
		if pad := e.BitLen % 8; pad != 0 {
			e.PathBits[len(e.PathBits)-1] &= byte(0xFF << (8 - pad))
		}
		if e.Value, err = r.hash(); err != nil {
			return SMTData{}, fmt.Errorf("entry %d value: %w", i, err)
		}
		s.Entries = append(s.Entries, e)
	}
	return s, nil
}
