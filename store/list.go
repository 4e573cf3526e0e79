package store

import (
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/zkfs-io/zkfs"
)

// List returns the addresses stored under the given key prefix.
func (s *Store) List(prefix string) ([]zkfs.Hash, error) {
	var addrs []zkfs.Hash
	err := s.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			key := it.Item().Key()
			raw, err := hex.DecodeString(string(key[len(p):]))
			if err != nil {
				return fmt.Errorf("malformed store key %q: %w", key, err)
			}
			var addr zkfs.Hash
			if len(raw) != len(addr) {
				return fmt.Errorf("store key %q holds a %d-byte address", key, len(raw))
			}
			copy(addr[:], raw)
			addrs = append(addrs, addr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", prefix, err)
	}
	return addrs, nil
}

// Delete removes the record stored under the given prefix and address.
func (s *Store) Delete(prefix string, addr zkfs.Hash) error {
	err := s.badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Delete(storeKey(prefix, addr))
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s%x: %w", prefix, addr, err)
	}
	log.Debugf("Deleted %s%x", prefix, addr)
	return nil
}

// StartTransactionCounter logs record operations per second until the
// store is closed.
func (s *Store) StartTransactionCounter() {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if s.badgerDB.IsClosed() {
				return
			}
			readOps := atomic.SwapUint64(&s.readCounter, 0)
			writeOps := atomic.SwapUint64(&s.writeCounter, 0)
			log.WithFields(map[string]interface{}{
				"read_ops":  readOps,
				"write_ops": writeOps,
			}).Info("Record operations per second")
		}
	}()
}
