package blobcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/southwinds-io/blobcipher/internal/digest"
)

// Encryptor performs one AES-256-CTR encryption using a fixed (text key,
// header key, IV) triple, emitting ciphertext plus a populated
// EncryptHeader. An Encryptor is single-use in spirit and must not be
// shared across goroutines — construct a new one per request, exactly as
// spec.md §5 requires for both Encryptor and Decryptor.
type Encryptor struct {
	textKey   *CipherKey
	headerKey *CipherKey
	iv        [16]byte
	mode      AuthTokenMode
}

// NewEncryptor constructs an Encryptor bound to textKey for the payload,
// headerKey for authenticating the header, a 16-byte IV, and an
// AuthTokenMode governing how (or whether) integrity tokens are emitted.
func NewEncryptor(textKey, headerKey *CipherKey, iv [16]byte, mode AuthTokenMode) *Encryptor {
	return &Encryptor{textKey: textKey, headerKey: headerKey, iv: iv, mode: mode}
}

// Encrypt runs AES-256-CTR over plaintext using the text key and IV, then
// populates and returns the accompanying header, including whatever
// authentication tokens the configured mode calls for.
//
// CTR mode is length-preserving: len(ciphertext) == len(plaintext) always.
// On any primitive failure, Encrypt returns ErrCryptoBackend and no partial
// ciphertext or header is returned to the caller.
func (e *Encryptor) Encrypt(plaintext []byte) (ciphertext []byte, header *EncryptHeader, err error) {
	textDerived, err := e.textKey.derivedCipher()
	if err != nil {
		return nil, nil, err
	}
	defer memguard.WipeBytes(textDerived[:])

	block, err := aes.NewCipher(textDerived[:])
	if err != nil {
		cryptoBackendLog.logf("blobcipher: aes.NewCipher failed: %v", err)
		return nil, nil, fmt.Errorf("%w: %v", ErrCryptoBackend, err)
	}

	ciphertext = make([]byte, len(plaintext))
	stream := cipher.NewCTR(block, e.iv[:])
	stream.XORKeyStream(ciphertext, plaintext)

	header = &EncryptHeader{
		Size:          HeaderSize,
		Version:       HeaderVersion1,
		Mode:          EncryptModeAES256CTR,
		AuthTokenMode: e.mode,
		Text: identityTriple{
			domainID:     e.textKey.DomainID(),
			baseCipherID: e.textKey.BaseCipherID(),
			salt:         e.textKey.Salt(),
		},
		Header: identityTriple{
			domainID:     e.headerKey.DomainID(),
			baseCipherID: e.headerKey.BaseCipherID(),
			salt:         e.headerKey.Salt(),
		},
		IV: e.iv,
	}

	if e.mode == AuthTokenModeNone {
		return ciphertext, header, nil
	}

	headerDerived, err := e.headerKey.derivedCipher()
	if err != nil {
		return nil, nil, err
	}
	defer memguard.WipeBytes(headerDerived[:])

	switch e.mode {
	case AuthTokenModeSingle:
		// The single token covers ciphertext followed by the header with
		// its own slot zeroed — it must not cover itself.
		zeroed := header.packedWithSingleTokenZeroed()
		msg := append(append([]byte(nil), ciphertext...), zeroed[:]...)
		tag := digest.Sum(headerDerived[:], msg)
		copy(header.SingleToken[:], tag[:AuthTokenSize])

	case AuthTokenModeMulti:
		// Text-token covers ciphertext only, computed first so the
		// header-token computation below can include it.
		textTag := digest.Sum(headerDerived[:], ciphertext)
		copy(header.TextToken[:], textTag[:AuthTokenSize])

		// Header-token covers the full header (with the just-set
		// text-token) and its own slot zeroed.
		zeroed := header.packedWithHeaderTokenZeroed()
		headerTag := digest.Sum(headerDerived[:], zeroed[:])
		copy(header.HeaderToken[:], headerTag[:AuthTokenSize])
	}

	return ciphertext, header, nil
}
