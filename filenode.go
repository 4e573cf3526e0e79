package zkfs

import "fmt"

// EncodeFileNode serializes a file node into a framed record.
//
// Payload layout: content_hash(32), created(6 BE), modified(6 BE),
// size(varint), chunk_count(varint), then each chunk as index(varint),
// hash(32), blob_address(32), nonce(24).
func EncodeFileNode(n FileNode) []byte {
	payload := make([]byte, 0, 32+6+6+10+10+len(n.Chunks)*(10+32+32+24))
	payload = append(payload, n.ContentHash[:]...)
	payload = appendTimestamp(payload, n.Created)
	payload = appendTimestamp(payload, n.Modified)
	payload = AppendUvarint(payload, n.Size)
	payload = AppendUvarint(payload, uint64(len(n.Chunks)))
	for _, c := range n.Chunks {
		payload = AppendUvarint(payload, c.Index)
		payload = append(payload, c.Hash[:]...)
		payload = append(payload, c.BlobAddress[:]...)
		payload = append(payload, c.Nonce[:]...)
	}
	return WriteEnvelope(TagFileNode, payload)
}

// DecodeFileNode reads a framed file node record, failing with ErrBadTag
// when the envelope holds a different record kind.
func DecodeFileNode(buf []byte) (FileNode, error) {
	tag, payload, err := ReadEnvelope(buf)
	if err != nil {
		return FileNode{}, err
	}
	if tag != TagFileNode {
		return FileNode{}, fmt.Errorf("tag 0x%02x: %w", tag, ErrBadTag)
	}
	return decodeFileNodePayload(payload)
}

func decodeFileNodePayload(payload []byte) (FileNode, error) {
	r := payloadReader{buf: payload}
	var n FileNode
	var err error

	if n.ContentHash, err = r.hash(); err != nil {
		return FileNode{}, fmt.Errorf("content hash: %w", err)
	}
	if n.Created, err = r.timestamp(); err != nil {
		return FileNode{}, fmt.Errorf("created: %w", err)
	}
	if n.Modified, err = r.timestamp(); err != nil {
		return FileNode{}, fmt.Errorf("modified: %w", err)
	}
	if n.Size, err = r.uvarint(); err != nil {
		return FileNode{}, fmt.Errorf("size: %w", err)
	}

	count, err := r.uvarint()
	if err != nil {
		return FileNode{}, fmt.Errorf("chunk count: %w", err)
	}
	for i := uint64(0); i < count; i++ {
		var c ChunkRef
		if c.Index, err = r.uvarint(); err != nil {
			return FileNode{}, fmt.Errorf("chunk %d index: %w", i, err)
		}
		if c.Hash, err = r.hash(); err != nil {
			return FileNode{}, fmt.Errorf("chunk %d hash: %w", i, err)
		}
		if c.BlobAddress, err = r.hash(); err != nil {
			return FileNode{}, fmt.Errorf("chunk %d blob address: %w", i, err)
		}
		if c.Nonce, err = r.nonce(); err != nil {
			return FileNode{}, fmt.Errorf("chunk %d nonce: %w", i, err)
		}
		n.Chunks = append(n.Chunks, c)
	}
	return n, nil
}
