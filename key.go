package blobcipher

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/awnumar/memguard"
)

// CipherKey is an immutable value object binding a base key, supplied by an
// external key manager, to a 32-byte AES-256 working key derived for one
// encryption domain and one salt. Once constructed, a CipherKey never
// changes; admitting the "same" key again (see DomainKeyIndex.InsertExact)
// is only ever a no-op or an error, never a mutation.
//
// Key material is held in memguard enclaves rather than plain byte slices so
// that Destroy leaves no plaintext key bytes behind for a core dump to
// capture, matching the teacher vault's handling of master key bytes.
type CipherKey struct {
	domainID     int64
	baseCipherID uint64
	baseCipher   *memguard.Enclave
	salt         uint64
	derived      *memguard.Enclave
	createdAt    uint64
}

// New constructs a CipherKey with a fresh, cryptographically random salt.
// Used on the write path, when a domain admits a base key for the first
// time and nothing upstream has fixed a salt yet.
func New(domainID int64, baseCipherID uint64, baseCipher []byte) (*CipherKey, error) {
	salt, err := randomSalt()
	if err != nil {
		return nil, fmt.Errorf("%w: generating salt: %v", ErrCryptoBackend, err)
	}
	return NewWithSalt(domainID, baseCipherID, baseCipher, salt)
}

// NewWithSalt constructs a CipherKey deterministically for a caller-supplied
// salt. Used when reconstructing the key referenced by an EncryptHeader, or
// when the external key manager has already assigned a salt.
func NewWithSalt(domainID int64, baseCipherID uint64, baseCipher []byte, salt uint64) (*CipherKey, error) {
	if len(baseCipher) < 16 {
		return nil, fmt.Errorf("%w: base cipher must be at least 16 bytes, got %d", ErrBadKey, len(baseCipher))
	}

	derived := deriveCipher(baseCipher, domainID, salt)
	baseCopy := append([]byte(nil), baseCipher...)

	k := &CipherKey{
		domainID:     domainID,
		baseCipherID: baseCipherID,
		baseCipher:   memguard.NewEnclave(baseCopy),
		salt:         salt,
		derived:      memguard.NewEnclave(derived[:]),
		createdAt:    uint64(time.Now().UnixNano()),
	}
	memguard.WipeBytes(baseCopy)
	memguard.WipeBytes(derived[:])

	return k, nil
}

func randomSalt() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// DomainID returns the encryption-domain boundary this key belongs to.
func (k *CipherKey) DomainID() int64 { return k.domainID }

// BaseCipherID returns the identifier of the externally supplied base key.
func (k *CipherKey) BaseCipherID() uint64 { return k.baseCipherID }

// Salt returns the salt bound into this key's derivation.
func (k *CipherKey) Salt() uint64 { return k.salt }

// CreatedAt returns the construction timestamp, in nanoseconds since epoch.
func (k *CipherKey) CreatedAt() uint64 { return k.createdAt }

// derivedCipher opens the enclave holding the 32-byte working key and
// returns a copy. Callers that only need it transiently should wipe the
// returned slice when done; the enclave itself remains sealed.
func (k *CipherKey) derivedCipher() ([32]byte, error) {
	buf, err := k.derived.Open()
	if err != nil {
		return [32]byte{}, fmt.Errorf("%w: opening derived-cipher enclave: %v", ErrCryptoBackend, err)
	}
	defer buf.Destroy()

	var out [32]byte
	copy(out[:], buf.Bytes())
	return out, nil
}

// baseCipherBytes opens the enclave holding the base key and returns a copy,
// for use by Equal's byte-compare. As with derivedCipher, the caller should
// treat the result as sensitive and not retain it.
func (k *CipherKey) baseCipherBytes() ([]byte, error) {
	buf, err := k.baseCipher.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening base-cipher enclave: %v", ErrCryptoBackend, err)
	}
	defer buf.Destroy()
	return append([]byte(nil), buf.Bytes()...), nil
}

// Equal reports whether k and other are identical by value: same identity
// triple (domain, base cipher ID, salt) AND byte-identical base cipher and
// derived cipher. This mirrors BlobCipherKey::isEqual in the original, which
// compares the full key material rather than only the identity triple.
func (k *CipherKey) Equal(other *CipherKey) bool {
	if k == other {
		return true
	}
	if k == nil || other == nil {
		return false
	}
	if k.domainID != other.domainID || k.baseCipherID != other.baseCipherID || k.salt != other.salt {
		return false
	}

	kBase, err := k.baseCipherBytes()
	if err != nil {
		return false
	}
	defer memguard.WipeBytes(kBase)
	oBase, err := other.baseCipherBytes()
	if err != nil {
		return false
	}
	defer memguard.WipeBytes(oBase)
	if !bytesEqual(kBase, oBase) {
		return false
	}

	kDerived, err := k.derivedCipher()
	if err != nil {
		return false
	}
	defer memguard.WipeBytes(kDerived[:])
	oDerived, err := other.derivedCipher()
	if err != nil {
		return false
	}
	defer memguard.WipeBytes(oDerived[:])

	return kDerived == oDerived
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Destroy releases the key's enclaves by dropping its references to them.
// Enclave contents are held encrypted, so no plaintext key bytes remain;
// the encrypted enclave buffers are not overwritten. After Destroy, the
// CipherKey must not be used again.
func (k *CipherKey) Destroy() {
	if k.baseCipher != nil {
		k.baseCipher = nil
	}
	if k.derived != nil {
		k.derived = nil
	}
}
