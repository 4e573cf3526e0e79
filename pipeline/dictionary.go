package pipeline

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/zkfs-io/zkfs"
)

const (
	// escapeByte introduces a substitution token or an escaped literal
	// zero in the substituted stream.
	escapeByte = 0x00

	maxStrings   = 255
	minStringLen = 2
	maxStringLen = 32

	dictionaryVersion = 0x01
)

// trainWindowSizes are the fixed window widths scanned during training.
var trainWindowSizes = []int{4, 8, 16, 32}

// Dictionary pairs a priority-ordered substitution table with a symbol
// tree trained over the post-substitution byte stream. Dictionaries are
// immutable after construction and safe for concurrent use.
type Dictionary struct {
	strings [][]byte
	tree    SymbolTree
}

// Strings returns the substitution table in priority order. The returned
// slices alias the dictionary and must not be modified.
func (d Dictionary) Strings() [][]byte {
	return d.strings
}

// Tree returns the dictionary's symbol tree.
func (d Dictionary) Tree() SymbolTree {
	return d.tree
}

// TrainDictionary builds a dictionary from sample payloads. Contiguous
// windows of the fixed training widths that occur at least twice across
// the samples are ranked by count x length and the top 255 become the
// substitution table; the symbol tree is then trained over the substituted
// samples. No samples yields an empty dictionary.
func TrainDictionary(samples [][]byte) Dictionary {
	var d Dictionary
	d.strings = trainStrings(samples)

	var freq [symbolCount]uint64
	for _, sample := range samples {
		for _, b := range d.substitute(sample) {
			freq[b]++
		}
	}
	d.tree = TrainSymbolTree(freq)
	return d
}

func trainStrings(samples [][]byte) [][]byte {
	counts := make(map[string]int)
	for _, size := range trainWindowSizes {
		for _, sample := range samples {
			for i := 0; i+size <= len(sample); i++ {
				counts[string(sample[i:i+size])]++
			}
		}
	}

	type candidate struct {
		str   string
		score int
	}
	candidates := make([]candidate, 0, len(counts))
	for str, count := range counts {
		if count < 2 {
			continue
		}
		candidates = append(candidates, candidate{str: str, score: count * len(str)})
	}
	// Ranking must be a pure function of the samples; break score ties by
	// length then by bytes.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if len(candidates[i].str) != len(candidates[j].str) {
			return len(candidates[i].str) > len(candidates[j].str)
		}
		return candidates[i].str < candidates[j].str
	})
	if len(candidates) > maxStrings {
		candidates = candidates[:maxStrings]
	}

	strings := make([][]byte, len(candidates))
	for i, c := range candidates {
		strings[i] = []byte(c.str)
	}
	return strings
}

// substitute rewrites data with escape tokens. At each position the table
// is scanned in priority order and the first match wins; longest-match is
// deliberately not performed, a trained table is ordered by priority and
// changing the rule would break bit compatibility with existing
// dictionaries.
func (d Dictionary) substitute(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for pos := 0; pos < len(data); {
		matched := false
		for idx, s := range d.strings {
			if bytes.HasPrefix(data[pos:], s) {
				out = append(out, escapeByte, byte(idx+1))
				pos += len(s)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if data[pos] == escapeByte {
			out = append(out, escapeByte, escapeByte)
		} else {
			out = append(out, data[pos])
		}
		pos++
	}
	return out
}

// unsubstitute reverses substitute.
func (d Dictionary) unsubstitute(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))
	for pos := 0; pos < len(data); pos++ {
		b := data[pos]
		if b != escapeByte {
			out = append(out, b)
			continue
		}
		pos++
		if pos >= len(data) {
			return nil, fmt.Errorf("escape at end of stream: %w", zkfs.ErrTruncated)
		}
		idx := data[pos]
		if idx == escapeByte {
			out = append(out, escapeByte)
			continue
		}
		if int(idx) > len(d.strings) {
			return nil, fmt.Errorf("substitution index %d of %d strings: %w", idx, len(d.strings), zkfs.ErrMalformed)
		}
		out = append(out, d.strings[idx-1]...)
	}
	return out, nil
}

// Compress substitutes data and encodes the result with the symbol tree.
// Output layout: substituted_len(varint), bit_count(varint), packed bits.
func (d Dictionary) Compress(data []byte) ([]byte, error) {
	substituted := d.substitute(data)
	bits, bitCount, err := d.tree.Encode(substituted)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 10+10+len(bits))
	out = zkfs.AppendUvarint(out, uint64(len(substituted)))
	out = zkfs.AppendUvarint(out, bitCount)
	return append(out, bits...), nil
}

// Decompress reverses Compress. The stored substituted length and bit
// count fully bound the decode, so originalSize is accepted only for
// interface symmetry with external decompressors.
func (d Dictionary) Decompress(buf []byte, originalSize uint64) ([]byte, error) {
	_ = originalSize

	substitutedLen, n, err := zkfs.ConsumeUvarint(buf)
	if err != nil {
		return nil, fmt.Errorf("substituted length: %w", err)
	}
	buf = buf[n:]
	bitCount, n, err := zkfs.ConsumeUvarint(buf)
	if err != nil {
		return nil, fmt.Errorf("bit count: %w", err)
	}
	buf = buf[n:]

	substituted, err := d.tree.Decode(buf, bitCount, int(substitutedLen))
	if err != nil {
		return nil, err
	}
	return d.unsubstitute(substituted)
}

// Serialize writes the dictionary as version(1), tree(256),
// string_count(varint), then each string as length(varint) plus bytes.
func (d Dictionary) Serialize() []byte {
	out := make([]byte, 0, 1+symbolCount+10)
	out = append(out, dictionaryVersion)
	out = append(out, d.tree.Serialize()...)
	out = zkfs.AppendUvarint(out, uint64(len(d.strings)))
	for _, s := range d.strings {
		out = zkfs.AppendUvarint(out, uint64(len(s)))
		out = append(out, s...)
	}
	return out
}

// DeserializeDictionary reads the form written by Serialize. Unknown
// versions fail with ErrBadVersion.
func DeserializeDictionary(buf []byte) (Dictionary, error) {
	if len(buf) == 0 {
		return Dictionary{}, fmt.Errorf("empty dictionary: %w", zkfs.ErrTruncated)
	}
	if buf[0] != dictionaryVersion {
		return Dictionary{}, fmt.Errorf("dictionary version %d: %w", buf[0], zkfs.ErrBadVersion)
	}
	buf = buf[1:]

	if len(buf) < symbolCount {
		return Dictionary{}, fmt.Errorf("tree of %d bytes: %w", len(buf), zkfs.ErrTruncated)
	}
	tree, err := SymbolTreeFromLengths(buf[:symbolCount])
	if err != nil {
		return Dictionary{}, err
	}
	buf = buf[symbolCount:]

	count, n, err := zkfs.ConsumeUvarint(buf)
	if err != nil {
		return Dictionary{}, fmt.Errorf("string count: %w", err)
	}
	buf = buf[n:]
	if count > maxStrings {
		return Dictionary{}, fmt.Errorf("%d substitution strings: %w", count, zkfs.ErrMalformed)
	}

	d := Dictionary{tree: tree}
	for i := uint64(0); i < count; i++ {
		strLen, n, err := zkfs.ConsumeUvarint(buf)
		if err != nil {
			return Dictionary{}, fmt.Errorf("string %d length: %w", i, err)
		}
		buf = buf[n:]
		if strLen < minStringLen || strLen > maxStringLen {
			return Dictionary{}, fmt.Errorf("string %d of %d bytes: %w", i, strLen, zkfs.ErrMalformed)
		}
		if strLen > uint64(len(buf)) {
			return Dictionary{}, fmt.Errorf("string %d of %d bytes: %w", i, strLen, zkfs.ErrTruncated)
		}
		d.strings = append(d.strings, append([]byte(nil), buf[:strLen]...))
		buf = buf[strLen:]
	}
	return d, nil
}
