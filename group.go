package zkfs

import "fmt"

// EncodeGroup serializes an access group into a framed record.
//
// Payload layout: id(32), member_count(varint), then each member as
// pubkey(32), dek_len(varint), encrypted_dek, role(1).
func EncodeGroup(g Group) []byte {
	payload := make([]byte, 0, 32+10+len(g.Members)*(32+10+1))
	payload = append(payload, g.ID[:]...)
	payload = AppendUvarint(payload, uint64(len(g.Members)))
	for _, m := range g.Members {
		payload = append(payload, m.PublicKey[:]...)
		payload = AppendUvarint(payload, uint64(len(m.EncryptedDEK)))
		payload = append(payload, m.EncryptedDEK...)
		payload = append(payload, byte(m.Role))
	}
	return WriteEnvelope(TagGroup, payload)
}

// DecodeGroup reads a framed group record, failing with ErrBadTag when the
// envelope holds a different record kind. Member order is preserved.
func DecodeGroup(buf []byte) (Group, error) {
	tag, payload, err := ReadEnvelope(buf)
	if err != nil {
		return Group{}, err
	}
	if tag != TagGroup {
		return Group{}, fmt.Errorf("tag 0x%02x: %w", tag, ErrBadTag)
	}
	return decodeGroupPayload(payload)
}

func decodeGroupPayload(payload []byte) (Group, error) {
	r := payloadReader{buf: payload}
	var g Group
	var err error

	if g.ID, err = r.hash(); err != nil {
		return Group{}, fmt.Errorf("group id: %w", err)
	}

	count, err := r.uvarint()
	if err != nil {
		return Group{}, fmt.Errorf("member count: %w", err)
	}
	for i := uint64(0); i < count; i++ {
		var m GroupMember
		if m.PublicKey, err = r.hash(); err != nil {
			return Group{}, fmt.Errorf("member %d public key: %w", i, err)
		}
		dekLen, err := r.uvarint()
		if err != nil {
			return Group{}, fmt.Errorf("member %d dek length: %w", i, err)
		}
		if dekLen > uint64(r.remaining()) {
			return Group{}, fmt.Errorf("member %d dek of %d bytes: %w", i, dekLen, ErrTruncated)
		}
		dek, err := r.take(int(dekLen))
		if err != nil {
			return Group{}, fmt.Errorf("member %d dek: %w", i, err)
		}
		m.EncryptedDEK = append([]byte(nil), dek...)

		roleByte, err := r.byte()
		if err != nil {
			return Group{}, fmt.Errorf("member %d role: %w", i, err)
		}
		m.Role = Role(roleByte)
		if !m.Role.valid() {
			return Group{}, fmt.Errorf("member %d role byte 0x%02x: %w", i, roleByte, ErrMalformed)
		}
		g.Members = append(g.Members, m)
	}
	return g, nil
}
