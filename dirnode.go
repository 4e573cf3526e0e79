package zkfs

import "fmt"

// EncodeDirNode serializes a directory node into a framed record.
//
// Payload layout: smt_root(32), has_group(1), group_id(32, only when
// has_group is 1), created(6 BE), modified(6 BE).
func EncodeDirNode(n DirNode) []byte {
	payload := make([]byte, 0, 32+1+32+6+6)
	payload = append(payload, n.SMTRoot[:]...)
	if n.GroupID != nil {
		payload = append(payload, 0x01)
		payload = append(payload, n.GroupID[:]...)
	} else {
		payload = append(payload, 0x00)
	}
	payload = appendTimestamp(payload, n.Created)
	payload = appendTimestamp(payload, n.Modified)
	return WriteEnvelope(TagDirNode, payload)
}

// DecodeDirNode reads a framed directory node record, failing with
// ErrBadTag when the envelope holds a different record kind.
func DecodeDirNode(buf []byte) (DirNode, error) {
	tag, payload, err := ReadEnvelope(buf)
	if err != nil {
		return DirNode{}, err
	}
	if tag != TagDirNode {
		return DirNode{}, fmt.Errorf("tag 0x%02x: %w", tag, ErrBadTag)
	}
	return decodeDirNodePayload(payload)
}

func decodeDirNodePayload(payload []byte) (DirNode, error) {
	r := payloadReader{buf: payload}
	var n DirNode
	var err error

	if n.SMTRoot, err = r.hash(); err != nil {
		return DirNode{}, fmt.Errorf("smt root: %w", err)
	}

	hasGroup, err := r.byte()
	if err != nil {
		return DirNode{}, fmt.Errorf("has-group flag: %w", err)
	}
	switch hasGroup {
	case 0x00:
	case 0x01:
		id, err := r.hash()
		if err != nil {
			return DirNode{}, fmt.Errorf("group id: %w", err)
		}
		n.GroupID = &id
	default:
		return DirNode{}, fmt.Errorf("has-group flag 0x%02x: %w", hasGroup, ErrMalformed)
	}

	if n.Created, err = r.timestamp(); err != nil {
		return DirNode{}, fmt.Errorf("created: %w", err)
	}
	if n.Modified, err = r.timestamp(); err != nil {
		return DirNode{}, fmt.Errorf("modified: %w", err)
	}
	return n, nil
}
