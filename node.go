package zkfs

import "fmt"

// EncodeNode serializes a file or directory node. The output is always the
// binary envelope form, never the legacy textual one.
func EncodeNode(n Node) ([]byte, error) {
	switch n := n.(type) {
	case FileNode:
		return EncodeFileNode(n), nil
	case DirNode:
		return EncodeDirNode(n), nil
	default:
		return nil, fmt.Errorf("node type %T: %w", n, ErrMalformed)
	}
}

// DecodeNode reads a file or directory node from either wire form. Buffers
// starting with the envelope magic are decoded as binary records; anything
// else is parsed as the legacy textual representation emitted by the
// predecessor system.
func DecodeNode(buf []byte) (Node, error) {
	if !HasMagic(buf) {
		return decodeLegacyNode(buf)
	}

	tag, payload, err := ReadEnvelope(buf)
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagFileNode:
		return decodeFileNodePayload(payload)
	case TagDirNode:
		return decodeDirNodePayload(payload)
	default:
		return nil, fmt.Errorf("tag 0x%02x is not a node: %w", tag, ErrBadTag)
	}
}
