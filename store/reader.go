package store

import (
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/zkfs-io/zkfs"
	"github.com/zkfs-io/zkfs/pipeline"
)

func (s *Store) get(prefix string, addr zkfs.Hash) ([]byte, error) {
	atomic.AddUint64(&s.readCounter, 1)

	var encoded []byte
	err := s.badgerDB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storeKey(prefix, addr))
		if err != nil {
			return err
		}
		encoded, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s%x: %w", prefix, addr, err)
	}
	return encoded, nil
}

// GetNode loads and decodes a node record. Records written by the
// predecessor system in the legacy textual form decode transparently.
func (s *Store) GetNode(addr zkfs.Hash) (zkfs.Node, error) {
	encoded, err := s.get(NodePrefix, addr)
	if err != nil {
		return nil, err
	}
	node, err := zkfs.DecodeNode(encoded)
	if err != nil {
		log.Errorf("Failed to decode node %x: %v", addr, err)
		return nil, fmt.Errorf("failed to decode node: %w", err)
	}
	return node, nil
}

// GetGroup loads and decodes a group record.
func (s *Store) GetGroup(addr zkfs.Hash) (zkfs.Group, error) {
	encoded, err := s.get(GroupPrefix, addr)
	if err != nil {
		return zkfs.Group{}, err
	}
	g, err := zkfs.DecodeGroup(encoded)
	if err != nil {
		return zkfs.Group{}, fmt.Errorf("failed to decode group: %w", err)
	}
	return g, nil
}

// GetSMT loads and decodes a sparse Merkle tree record.
func (s *Store) GetSMT(addr zkfs.Hash) (zkfs.SMTData, error) {
	encoded, err := s.get(SMTPrefix, addr)
	if err != nil {
		return zkfs.SMTData{}, err
	}
	t, err := zkfs.DecodeSMT(encoded)
	if err != nil {
		return zkfs.SMTData{}, fmt.Errorf("failed to decode smt: %w", err)
	}
	return t, nil
}

// GetBlob loads a blob record and decompresses it back to the plaintext.
// The options must carry the collaborators the stored method needs.
func (s *Store) GetBlob(addr zkfs.Hash, opts pipeline.CompressOptions) ([]byte, error) {
	encoded, err := s.get(BlobPrefix, addr)
	if err != nil {
		return nil, err
	}
	data, err := pipeline.DecompressBlob(encoded, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress blob: %w", err)
	}
	return data, nil
}
