// Package store persists encoded zkfs records in a content-addressed
// BadgerDB store. Records are stored as their framed wire bytes and
// addressed by the BLAKE3 hash of the encoded record; blobs run through
// the compression pipeline first and are addressed by their plaintext.
package store

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/blake3"

	"github.com/zkfs-io/zkfs"
	"github.com/zkfs-io/zkfs/pkg/spaceinfo"
)

var log *logrus.Logger

// Key prefixes for the record kinds in BadgerDB.
const (
	NodePrefix  = "node:"
	GroupPrefix = "group:"
	SMTPrefix   = "smt:"
	BlobPrefix  = "blob:"
)

// Config configures a Store.
type Config struct {
	Paths            []string // data directories; the first one backs BadgerDB
	MinimumFreeSpace int      // minimum free space in GB on the first path
	Logger           *logrus.Logger
}

func (c *Config) check() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("config must provide at least one path")
	}
	if c.MinimumFreeSpace < 0 {
		return fmt.Errorf("minimum free space must not be negative")
	}
	return nil
}

// Store is a content-addressed record store.
type Store struct {
	badgerDB     *badger.DB
	config       Config
	readCounter  uint64
	writeCounter uint64
}

// Init opens the store at the configured path. It validates the
// configuration, reports disk usage, and refuses to open when the volume
// has less free space than configured.
func Init(config *Config) (*Store, error) {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	log = config.Logger

	if err := config.check(); err != nil {
		return nil, fmt.Errorf("error checking config for store: %w", err)
	}

	if err := spaceinfo.DisplayDiskUsage(config.Paths, log); err != nil {
		return nil, err
	}
	free, err := spaceinfo.FreeSpace(config.Paths[0])
	if err != nil {
		return nil, err
	}
	if free < uint64(config.MinimumFreeSpace)*1e9 {
		return nil, fmt.Errorf("free space %d bytes below minimum of %d GB", free, config.MinimumFreeSpace)
	}

	opts := badger.DefaultOptions(config.Paths[0])
	opts.Logger = nil
	opts.ValueLogFileSize = 1024 * 1024 * 100 // 100MB value log files
	opts.SyncWrites = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", config.Paths[0], err)
	}

	return &Store{
		badgerDB: db,
		config:   *config,
	}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.badgerDB.Close()
}

// Address returns the store address of an encoded record.
func Address(encoded []byte) zkfs.Hash {
	return zkfs.Hash(blake3.Sum256(encoded))
}

func storeKey(prefix string, addr zkfs.Hash) []byte {
	return []byte(fmt.Sprintf("%s%x", prefix, addr))
}
