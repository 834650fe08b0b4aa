package blobcipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/southwinds-io/blobcipher/internal/digest"
)

// Decryptor reverses what a matching Encryptor produced: it verifies
// whatever authentication tokens the header's mode calls for, then runs
// AES-256-CTR to recover the plaintext. Like Encryptor, a Decryptor is
// constructed fresh per request and must not be shared across goroutines.
type Decryptor struct {
	textKey     *CipherKey
	headerKey   *CipherKey
	iv          [16]byte
	headerOK    bool
	verifiedFor *EncryptHeader
}

// NewDecryptor constructs a Decryptor bound to the text and header keys the
// caller believes apply, and the IV it expects the header to carry. The
// constructor IV is only a consistency check: decryption itself always uses
// the IV embedded in the header (see VerifyHeader/Decrypt).
func NewDecryptor(textKey, headerKey *CipherKey, iv [16]byte) *Decryptor {
	return &Decryptor{textKey: textKey, headerKey: headerKey, iv: iv}
}

// VerifyHeader checks header integrity without touching any ciphertext. In
// Multi mode it recomputes the header-token (with its own slot zeroed) and
// compares it, constant-time, to the stored value. It is a no-op in Single
// and None mode — those modes have nothing to check until the ciphertext is
// available. Callers may call this directly before reading a large payload
// (e.g. a backup file) to fail fast on a corrupted header.
func (d *Decryptor) VerifyHeader(header *EncryptHeader) error {
	if d.verifiedFor == header && d.headerOK {
		return nil
	}

	if header.Size != HeaderSize || header.Version != HeaderVersion1 || header.Mode != EncryptModeAES256CTR {
		return fmt.Errorf("%w: header fields outside accepted range", ErrHeaderMalformed)
	}

	if header.AuthTokenMode == AuthTokenModeMulti {
		headerDerived, err := d.headerKey.derivedCipher()
		if err != nil {
			return err
		}
		defer memguard.WipeBytes(headerDerived[:])

		zeroed := header.packedWithHeaderTokenZeroed()
		want := digest.Sum(headerDerived[:], zeroed[:])

		if subtle.ConstantTimeCompare(want[:AuthTokenSize], header.HeaderToken[:]) != 1 {
			return fmt.Errorf("%w: header token", ErrAuthTokenMismatch)
		}
	}

	d.headerOK = true
	d.verifiedFor = header
	return nil
}

// Decrypt verifies whatever tokens apply, checks key/IV consistency against
// the header, and runs AES-256-CTR to recover the plaintext.
//
// Verification order follows spec.md §4.8: VerifyHeader first (a no-op if
// already called and successful), then the ciphertext-covering check for
// Single or Multi mode, then the AES-256-CTR pass itself using the IV and
// identity triples recorded in header — not the ones supplied to
// NewDecryptor, which exist only so a mismatch can be caught as
// ErrHeaderMalformed / ErrKeyMismatch rather than silently decrypting with
// the wrong IV.
func (d *Decryptor) Decrypt(ciphertext []byte, header *EncryptHeader) ([]byte, error) {
	if err := d.VerifyHeader(header); err != nil {
		return nil, err
	}

	if header.IV != d.iv {
		return nil, fmt.Errorf("%w: constructor IV does not match header IV", ErrHeaderMalformed)
	}

	if d.textKey.DomainID() != header.Text.domainID ||
		d.textKey.BaseCipherID() != header.Text.baseCipherID ||
		d.textKey.Salt() != header.Text.salt {
		return nil, fmt.Errorf("%w: text key does not match header text identity", ErrKeyMismatch)
	}
	if d.headerKey.DomainID() != header.Header.domainID ||
		d.headerKey.BaseCipherID() != header.Header.baseCipherID ||
		d.headerKey.Salt() != header.Header.salt {
		return nil, fmt.Errorf("%w: header key does not match header identity", ErrKeyMismatch)
	}

	headerDerived, err := d.headerKey.derivedCipher()
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(headerDerived[:])

	switch header.AuthTokenMode {
	case AuthTokenModeSingle:
		zeroed := header.packedWithSingleTokenZeroed()
		msg := append(append([]byte(nil), ciphertext...), zeroed[:]...)
		want := digest.Sum(headerDerived[:], msg)
		if subtle.ConstantTimeCompare(want[:AuthTokenSize], header.SingleToken[:]) != 1 {
			return nil, fmt.Errorf("%w: single token", ErrAuthTokenMismatch)
		}

	case AuthTokenModeMulti:
		want := digest.Sum(headerDerived[:], ciphertext)
		if subtle.ConstantTimeCompare(want[:AuthTokenSize], header.TextToken[:]) != 1 {
			return nil, fmt.Errorf("%w: text token", ErrAuthTokenMismatch)
		}

	case AuthTokenModeNone:
		// no integrity check
	}

	textDerived, err := d.textKey.derivedCipher()
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(textDerived[:])

	block, err := aes.NewCipher(textDerived[:])
	if err != nil {
		cryptoBackendLog.logf("blobcipher: aes.NewCipher failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrCryptoBackend, err)
	}

	plaintext := make([]byte, len(ciphertext))
	stream := cipher.NewCTR(block, header.IV[:])
	stream.XORKeyStream(plaintext, ciphertext)

	return plaintext, nil
}
