// Package digest wraps HMAC-SHA-256 in the one-shot and streaming shapes the
// cipher core needs: a pure Sum function for derivation and auth-token
// computation, and a resettable Digest for call sites that keyed-hash the
// same data in more than one pass without reallocating.
//
// Grounded on the original BlobCipher.h's HmacSha256DigestGen, which keeps a
// single EVP_MAC_CTX alive across Addbytes/digest calls and resets it for
// reuse rather than allocating a fresh context per digest.
package digest

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"
)

// Size is the output length of HMAC-SHA-256 in bytes.
const Size = sha256.Size

// Sum computes HMAC-SHA-256(key, data) in one call.
func Sum(key, data []byte) [Size]byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	var out [Size]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// Digest is a reusable keyed-hash context. The zero value is not usable;
// construct one with New and call Reset to rekey it for a new message.
type Digest struct {
	key []byte
	h   hash.Hash
}

// New constructs a Digest keyed with a copy of key. Reset restores the
// same HMAC context in place, so the caller never re-supplies the key.
func New(key []byte) *Digest {
	d := &Digest{key: append([]byte(nil), key...)}
	d.h = hmac.New(sha256.New, d.key)
	return d
}

// Reset clears accumulated state, ready for a fresh Write/Sum sequence
// keyed with the same key supplied to New.
func (d *Digest) Reset() {
	d.h.Reset()
}

// Write feeds more message bytes into the digest.
func (d *Digest) Write(p []byte) (int, error) {
	return d.h.Write(p)
}

// Sum finalizes the digest and returns the 32-byte tag. It does not reset
// the underlying state; call Reset before reusing the Digest.
func (d *Digest) Sum() [Size]byte {
	var out [Size]byte
	copy(out[:], d.h.Sum(nil))
	return out
}
