package store

import (
	"encoding/base64"
	"fmt"

	"github.com/zkfs-io/zkfs"
)

// ValidationResult captures the outcome of validating a single record.
type ValidationResult struct {
	Address       zkfs.Hash
	AddressBase64 string
	Err           error
}

// Passed reports whether the validation succeeded.
func (r ValidationResult) Passed() bool {
	return r.Err == nil
}

// ValidateRecord verifies that the record stored at addr still matches its
// content address and carries an intact envelope.
func (s *Store) ValidateRecord(prefix string, addr zkfs.Hash) error {
	encoded, err := s.get(prefix, addr)
	if err != nil {
		return fmt.Errorf("failed to read record for validation: %w", err)
	}

	// Blobs are addressed by plaintext, so only the envelope can be
	// checked without the decompression collaborators.
	if zkfs.HasMagic(encoded) {
		if _, _, err := zkfs.ReadEnvelope(encoded); err != nil {
			return fmt.Errorf("envelope check failed: %w", err)
		}
	}

	if prefix != BlobPrefix {
		computed := Address(encoded)
		if computed != addr {
			return fmt.Errorf("address mismatch: expected %x, got %x", addr, computed)
		}
	}
	return nil
}

// ValidateAll validates every record under the given prefix and returns
// per-record results.
func (s *Store) ValidateAll(prefix string) ([]ValidationResult, error) {
	addrs, err := s.List(prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for validation: %w", err)
	}

	results := make([]ValidationResult, 0, len(addrs))
	for _, addr := range addrs {
		res := ValidationResult{
			Address:       addr,
			AddressBase64: base64.StdEncoding.EncodeToString(addr[:]),
		}
		if err := s.ValidateRecord(prefix, addr); err != nil {
			res.Err = err
		}
		results = append(results, res)
	}

	return results, nil
}
