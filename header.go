package blobcipher

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed, wire-compatible size of every EncryptHeader.
const HeaderSize = 104

// AuthTokenSize is the length in bytes of one truncated HMAC-SHA-256
// authentication tag.
const AuthTokenSize = 16

// EncryptMode identifies the bulk cipher used for a payload. This core only
// ever writes and accepts AES-256-CTR; the field exists for wire
// compatibility with a format that could, in principle, name others.
type EncryptMode uint8

// EncryptModeAES256CTR is the only EncryptMode this core supports.
const EncryptModeAES256CTR EncryptMode = 1

// HeaderVersion identifies the header layout. This core only ever writes
// and accepts version 1; any other value is rejected rather than
// best-effort parsed, per the strict-rejection policy this spec mandates
// for forward compatibility (see design notes).
type HeaderVersion uint8

// HeaderVersion1 is the only HeaderVersion this core supports.
const HeaderVersion1 HeaderVersion = 1

// AuthTokenMode selects how integrity is carried in a header.
type AuthTokenMode uint8

const (
	// AuthTokenModeNone carries no integrity token; the token region is
	// zeroed and never checked.
	AuthTokenModeNone AuthTokenMode = 0
	// AuthTokenModeSingle carries one combined token covering ciphertext
	// and header.
	AuthTokenModeSingle AuthTokenMode = 1
	// AuthTokenModeMulti carries two independent tokens: one over
	// ciphertext, one over the header, so the header can be verified
	// before the (possibly large) ciphertext is read.
	AuthTokenModeMulti AuthTokenMode = 2
)

// identityTriple names a CipherKey by (domain_id, base_cipher_id, salt), as
// recorded in an EncryptHeader for either the text key or the header key.
type identityTriple struct {
	domainID     int64
	baseCipherID uint64
	salt         uint64
}

// EncryptHeader is the fixed 104-byte, little-endian, packed header that
// precedes every ciphertext this core produces. Its layout is an external
// interface: a reader implementing this spec must accept headers written by
// any other conforming writer, and vice versa, so every field occupies the
// exact offset spec.md's data model table specifies.
type EncryptHeader struct {
	Size          uint8
	Version       HeaderVersion
	Mode          EncryptMode
	AuthTokenMode AuthTokenMode

	Text   identityTriple
	IV     [16]byte
	Header identityTriple

	// TextToken and HeaderToken are populated in Multi mode; SingleToken is
	// populated in Single mode. Unused token fields read back as zero.
	TextToken   [AuthTokenSize]byte
	HeaderToken [AuthTokenSize]byte
	SingleToken [AuthTokenSize]byte
}

// Pack encodes h into its 104-byte wire representation.
func (h *EncryptHeader) Pack() [HeaderSize]byte {
	var buf [HeaderSize]byte

	buf[0] = HeaderSize
	buf[1] = uint8(h.Version)
	buf[2] = uint8(h.Mode)
	buf[3] = uint8(h.AuthTokenMode)
	// bytes 4..8 are reserved, left zero

	binary.LittleEndian.PutUint64(buf[8:16], uint64(h.Text.domainID))
	binary.LittleEndian.PutUint64(buf[16:24], h.Text.baseCipherID)
	binary.LittleEndian.PutUint64(buf[24:32], h.Text.salt)
	copy(buf[32:48], h.IV[:])

	binary.LittleEndian.PutUint64(buf[48:56], uint64(h.Header.domainID))
	binary.LittleEndian.PutUint64(buf[56:64], h.Header.baseCipherID)
	binary.LittleEndian.PutUint64(buf[64:72], h.Header.salt)

	switch h.AuthTokenMode {
	case AuthTokenModeMulti:
		copy(buf[72:88], h.TextToken[:])
		copy(buf[88:104], h.HeaderToken[:])
	case AuthTokenModeSingle:
		copy(buf[72:88], h.SingleToken[:])
		// 88..104 left zero
	case AuthTokenModeNone:
		// 72..104 left zero
	}

	return buf
}

// UnpackHeader decodes and validates a 104-byte wire header. It fails
// ErrHeaderMalformed if the size, version, mode, or auth-token mode are not
// exactly the values this core writes; reserved bytes are ignored, not
// validated, to leave room for a future header version to repurpose them.
func UnpackHeader(buf []byte) (*EncryptHeader, error) {
	if len(buf) != HeaderSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrHeaderMalformed, HeaderSize, len(buf))
	}
	if buf[0] != HeaderSize {
		return nil, fmt.Errorf("%w: size field is %d, want %d", ErrHeaderMalformed, buf[0], HeaderSize)
	}
	if HeaderVersion(buf[1]) != HeaderVersion1 {
		return nil, fmt.Errorf("%w: unsupported header_version %d", ErrHeaderMalformed, buf[1])
	}
	if EncryptMode(buf[2]) != EncryptModeAES256CTR {
		return nil, fmt.Errorf("%w: unsupported encrypt_mode %d", ErrHeaderMalformed, buf[2])
	}
	mode := AuthTokenMode(buf[3])
	if mode != AuthTokenModeNone && mode != AuthTokenModeSingle && mode != AuthTokenModeMulti {
		return nil, fmt.Errorf("%w: unsupported auth_token_mode %d", ErrHeaderMalformed, buf[3])
	}

	h := &EncryptHeader{
		Size:          buf[0],
		Version:       HeaderVersion(buf[1]),
		Mode:          EncryptMode(buf[2]),
		AuthTokenMode: mode,
	}

	h.Text.domainID = int64(binary.LittleEndian.Uint64(buf[8:16]))
	h.Text.baseCipherID = binary.LittleEndian.Uint64(buf[16:24])
	h.Text.salt = binary.LittleEndian.Uint64(buf[24:32])
	copy(h.IV[:], buf[32:48])

	h.Header.domainID = int64(binary.LittleEndian.Uint64(buf[48:56]))
	h.Header.baseCipherID = binary.LittleEndian.Uint64(buf[56:64])
	h.Header.salt = binary.LittleEndian.Uint64(buf[64:72])

	switch mode {
	case AuthTokenModeMulti:
		copy(h.TextToken[:], buf[72:88])
		copy(h.HeaderToken[:], buf[88:104])
	case AuthTokenModeSingle:
		copy(h.SingleToken[:], buf[72:88])
	}

	return h, nil
}

// packedWithHeaderTokenZeroed returns the packed header with the
// HeaderToken slot (offset 88..104) forced to zero, regardless of its
// current value. Used to compute the header-token in Multi mode: the token
// covers the header including the already-set text-token, but not itself.
func (h *EncryptHeader) packedWithHeaderTokenZeroed() [HeaderSize]byte {
	buf := h.Pack()
	for i := 88; i < 104; i++ {
		buf[i] = 0
	}
	return buf
}

// packedWithSingleTokenZeroed returns the packed header with the
// single-token slot (offset 72..104) forced to zero. Used both to compute
// and to verify the Single-mode combined token, which must not cover
// itself.
func (h *EncryptHeader) packedWithSingleTokenZeroed() [HeaderSize]byte {
	buf := h.Pack()
	for i := 72; i < 104; i++ {
		buf[i] = 0
	}
	return buf
}
