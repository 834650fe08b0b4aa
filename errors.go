package blobcipher

import "errors"

// Sentinel errors returned by the cipher core. Callers should use
// errors.Is against these values rather than matching on message text.
var (
	// ErrKeyNotFound is returned on a cache miss. The caller is expected to
	// fetch the base key from the external key manager and admit it via
	// InsertExact before retrying.
	ErrKeyNotFound = errors.New("blobcipher: key not found")

	// ErrUpdateCipher is returned when an admission attempts to redefine an
	// existing (base_cipher_id, salt) pair with different key bytes.
	ErrUpdateCipher = errors.New("blobcipher: cannot update an already-admitted cipher key")

	// ErrHeaderMalformed is returned when header bytes fail structural
	// validation (bad size/version/mode, or a size mismatch).
	ErrHeaderMalformed = errors.New("blobcipher: malformed encryption header")

	// ErrKeyMismatch is returned when the keys supplied to a Decryptor do not
	// match the identity triples recorded in the header.
	ErrKeyMismatch = errors.New("blobcipher: supplied keys do not match header identity")

	// ErrAuthTokenMismatch is returned when an integrity check fails. It
	// never reveals which byte of the token differed.
	ErrAuthTokenMismatch = errors.New("blobcipher: authentication token mismatch")

	// ErrCryptoBackend is returned when the underlying crypto primitive
	// fails (e.g. bad key length, CSPRNG failure).
	ErrCryptoBackend = errors.New("blobcipher: crypto backend failure")

	// ErrBadKey is returned when a DER-encoded key fails to parse.
	ErrBadKey = errors.New("blobcipher: bad key encoding")
)
