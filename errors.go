package zkfs

import "errors"

// Decode failures are reported by wrapping one of these sentinels, so
// callers can discriminate with errors.Is while still getting positional
// context from the wrapped message.
var (
	// ErrTruncated means the buffer ended before a complete field.
	ErrTruncated = errors.New("truncated input")

	// ErrTooLarge means a varint would exceed 49 payload bits.
	ErrTooLarge = errors.New("varint too large")

	// ErrTooShort means the buffer is smaller than the minimal envelope.
	ErrTooShort = errors.New("buffer shorter than envelope")

	// ErrBadMagic means the buffer does not start with the envelope magic.
	ErrBadMagic = errors.New("bad envelope magic")

	// ErrBadVersion means an unsupported format version byte.
	ErrBadVersion = errors.New("unsupported format version")

	// ErrBadCrc means the envelope checksum does not match its content.
	ErrBadCrc = errors.New("envelope checksum mismatch")

	// ErrBadTag means the envelope carries an unexpected record tag.
	ErrBadTag = errors.New("unexpected record tag")

	// ErrMalformed means a field holds a value outside its closed set.
	ErrMalformed = errors.New("malformed record")

	// ErrUncodedSymbol means a byte has no code in the symbol tree.
	ErrUncodedSymbol = errors.New("symbol has no code")

	// ErrBadCode means a bit pattern that no code matches.
	ErrBadCode = errors.New("undecodable bit pattern")

	// ErrLengthMismatch means decoded output differs from the recorded size.
	ErrLengthMismatch = errors.New("decoded length mismatch")

	// ErrBadMethod means an unknown compression method byte.
	ErrBadMethod = errors.New("unknown compression method")

	// ErrMissingCollaborator means decoding needs a dictionary or external
	// decompressor that the caller did not supply.
	ErrMissingCollaborator = errors.New("missing decompression collaborator")
)
