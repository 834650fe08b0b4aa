package blobcipher

import (
	"encoding/binary"

	"github.com/southwinds-io/blobcipher/internal/digest"
)

// deriveCipher produces the 32-byte AES-256 working key for a given base
// key, encryption domain, and salt. It is a pure function: the same inputs
// always yield the same output, with no hidden state or randomness.
//
// Algorithm: HMAC-SHA-256 keyed with baseCipher, over the 16-byte message
// salt (8 bytes, little-endian) || domainID (8 bytes, little-endian,
// two's-complement). This matches BlobCipher.h's applyHmacSha256Derivation.
func deriveCipher(baseCipher []byte, domainID int64, salt uint64) [32]byte {
	var msg [16]byte
	binary.LittleEndian.PutUint64(msg[0:8], salt)
	binary.LittleEndian.PutUint64(msg[8:16], uint64(domainID))
	return digest.Sum(baseCipher, msg[:])
}
