package store

import (
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/zkfs-io/zkfs"
	"github.com/zkfs-io/zkfs/pipeline"
)

func (s *Store) put(prefix string, addr zkfs.Hash, encoded []byte) error {
	atomic.AddUint64(&s.writeCounter, 1)

	err := s.badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Set(storeKey(prefix, addr), encoded)
	})
	if err != nil {
		log.Errorf("Failed to store %s%x: %v", prefix, addr, err)
		return fmt.Errorf("failed to store record: %w", err)
	}

	log.Debugf("Stored %s%x (%d bytes)", prefix, addr, len(encoded))
	return nil
}

// PutNode encodes and stores a file or directory node, returning its
// content address.
func (s *Store) PutNode(n zkfs.Node) (zkfs.Hash, error) {
	encoded, err := zkfs.EncodeNode(n)
	if err != nil {
		return zkfs.Hash{}, fmt.Errorf("failed to encode node: %w", err)
	}
	addr := Address(encoded)
	return addr, s.put(NodePrefix, addr, encoded)
}

// PutGroup encodes and stores an access group, returning its content
// address.
func (s *Store) PutGroup(g zkfs.Group) (zkfs.Hash, error) {
	encoded := zkfs.EncodeGroup(g)
	addr := Address(encoded)
	return addr, s.put(GroupPrefix, addr, encoded)
}

// PutSMT encodes and stores a sparse Merkle tree snapshot, returning its
// content address.
func (s *Store) PutSMT(t zkfs.SMTData) (zkfs.Hash, error) {
	encoded := zkfs.EncodeSMT(t)
	addr := Address(encoded)
	return addr, s.put(SMTPrefix, addr, encoded)
}

// PutBlob runs data through the compression pipeline and stores the
// resulting record. The address is the BLAKE3 hash of the plaintext, so a
// blob keeps its address no matter which compression method wins.
func (s *Store) PutBlob(data []byte, opts pipeline.CompressOptions) (zkfs.Hash, error) {
	encoded, err := pipeline.CompressBlob(data, opts)
	if err != nil {
		return zkfs.Hash{}, fmt.Errorf("failed to compress blob: %w", err)
	}
	addr := Address(data)
	return addr, s.put(BlobPrefix, addr, encoded)
}
