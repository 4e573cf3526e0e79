package zkfs

import (
	"encoding/json"
	"fmt"
)

// The predecessor system stored nodes as JSON and wrapped every byte array
// in a tagged object {"__uint8array": [..numbers..]}. This file decodes
// that form; nothing here is ever written back out.

// legacyBytes accepts the tagged byte-array convention.
type legacyBytes []byte

func (b *legacyBytes) UnmarshalJSON(data []byte) error {
	var wrapper struct {
		Values []int `json:"__uint8array"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	out := make([]byte, len(wrapper.Values))
	for i, v := range wrapper.Values {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte value %d out of range: %w", v, ErrMalformed)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

func (b legacyBytes) toHash(field string) (Hash, error) {
	var h Hash
	if len(b) != len(h) {
		return h, fmt.Errorf("%s is %d bytes, want %d: %w", field, len(b), len(h), ErrMalformed)
	}
	copy(h[:], b)
	return h, nil
}

func (b legacyBytes) toNonce(field string) (Nonce, error) {
	var n Nonce
	if len(b) != len(n) {
		return n, fmt.Errorf("%s is %d bytes, want %d: %w", field, len(b), len(n), ErrMalformed)
	}
	copy(n[:], b)
	return n, nil
}

type legacyChunk struct {
	Index       uint64      `json:"index"`
	Hash        legacyBytes `json:"hash"`
	BlobAddress legacyBytes `json:"blobAddress"`
	Nonce       legacyBytes `json:"nonce"`
}

type legacyNode struct {
	Type     string        `json:"type"`
	Hash     legacyBytes   `json:"hash"`
	Size     uint64        `json:"size"`
	Created  Timestamp     `json:"created"`
	Modified Timestamp     `json:"modified"`
	Chunks   []legacyChunk `json:"chunks"`
	SMTRoot  legacyBytes   `json:"smtRoot"`
	GroupID  *legacyBytes  `json:"groupId"`
}

func decodeLegacyNode(buf []byte) (Node, error) {
	var raw legacyNode
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("legacy node: %w", err)
	}

	switch raw.Type {
	case "file":
		n := FileNode{
			Size:     raw.Size,
			Created:  raw.Created,
			Modified: raw.Modified,
		}
		var err error
		if n.ContentHash, err = raw.Hash.toHash("hash"); err != nil {
			return nil, err
		}
		for i, c := range raw.Chunks {
			ref := ChunkRef{Index: c.Index}
			if ref.Hash, err = c.Hash.toHash(fmt.Sprintf("chunk %d hash", i)); err != nil {
				return nil, err
			}
			if ref.BlobAddress, err = c.BlobAddress.toHash(fmt.Sprintf("chunk %d blobAddress", i)); err != nil {
				return nil, err
			}
			if ref.Nonce, err = c.Nonce.toNonce(fmt.Sprintf("chunk %d nonce", i)); err != nil {
				return nil, err
			}
			n.Chunks = append(n.Chunks, ref)
		}
		return n, nil

	case "dir":
		n := DirNode{
			Created:  raw.Created,
			Modified: raw.Modified,
		}
		var err error
		if n.SMTRoot, err = raw.SMTRoot.toHash("smtRoot"); err != nil {
			return nil, err
		}
		if raw.GroupID != nil {
			id, err := raw.GroupID.toHash("groupId")
			if err != nil {
				return nil, err
			}
			n.GroupID = &id
		}
		return n, nil

	default:
		return nil, fmt.Errorf("legacy node type %q: %w", raw.Type, ErrMalformed)
	}
}
