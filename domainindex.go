package blobcipher

import (
	"fmt"
	"sync"
)

type domainKeyEntry struct {
	baseCipherID uint64
	salt         uint64
}

// DomainKeyIndex holds every CipherKey admitted for one encryption domain,
// keyed by (base_cipher_id, salt), plus a pointer to whichever key was most
// recently admitted through the "latest" path. Reads (GetLatest, GetExact,
// All) may run concurrently with each other; writes (InsertLatest,
// InsertExact, Cleanup) are serialized with respect to both reads and other
// writes by a single RWMutex, matching the reader/writer discipline spec.md
// §5 requires.
type DomainKeyIndex struct {
	mu      sync.RWMutex
	entries map[domainKeyEntry]*CipherKey
	latest  *domainKeyEntry
}

// NewDomainKeyIndex constructs an empty index for one domain.
func NewDomainKeyIndex() *DomainKeyIndex {
	return &DomainKeyIndex{
		entries: make(map[domainKeyEntry]*CipherKey),
	}
}

// InsertLatest generates a fresh salt, derives a CipherKey from baseCipher,
// inserts it, and advances the "latest" pointer to it. If an entry already
// exists at the (baseCipherID, salt) pair this generates — astronomically
// unlikely but checked for completeness — and it is byte-identical, the
// insert is a no-op. A conflicting entry at that pair fails ErrUpdateCipher.
func (idx *DomainKeyIndex) InsertLatest(domainID int64, baseCipherID uint64, baseCipher []byte) (*CipherKey, error) {
	key, err := New(domainID, baseCipherID, baseCipher)
	if err != nil {
		return nil, err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	entry := domainKeyEntry{baseCipherID: baseCipherID, salt: key.Salt()}
	if err := idx.admitLocked(entry, key); err != nil {
		return nil, err
	}
	idx.latest = &entry

	return idx.entries[entry], nil
}

// InsertExact inserts a CipherKey at a caller-supplied salt, without
// touching the "latest" pointer. This is the path a key manager uses to
// re-admit a key referenced by an EncryptHeader it is reconstructing, where
// the salt is already fixed by the header rather than freshly generated.
func (idx *DomainKeyIndex) InsertExact(domainID int64, baseCipherID uint64, baseCipher []byte, salt uint64) (*CipherKey, error) {
	key, err := NewWithSalt(domainID, baseCipherID, baseCipher, salt)
	if err != nil {
		return nil, err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	entry := domainKeyEntry{baseCipherID: baseCipherID, salt: salt}
	if err := idx.admitLocked(entry, key); err != nil {
		return nil, err
	}

	return idx.entries[entry], nil
}

// admitLocked inserts key at entry under idx.mu already held for writing.
// An identical re-admission (byte-equal key) is a no-op that keeps the
// original entry; a conflicting re-admission fails ErrUpdateCipher. Neither
// path mutates an existing entry, preserving the invariant that an admitted
// key is never changed in place.
func (idx *DomainKeyIndex) admitLocked(entry domainKeyEntry, key *CipherKey) error {
	existing, ok := idx.entries[entry]
	if !ok {
		idx.entries[entry] = key
		return nil
	}
	if existing.Equal(key) {
		return nil
	}
	return fmt.Errorf("%w: base_cipher_id=%d salt=%d", ErrUpdateCipher, entry.baseCipherID, entry.salt)
}

// GetLatest returns the most recently admitted key via InsertLatest. Fails
// ErrKeyNotFound if no key has ever been admitted through that path.
func (idx *DomainKeyIndex) GetLatest() (*CipherKey, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.latest == nil {
		return nil, ErrKeyNotFound
	}
	key, ok := idx.entries[*idx.latest]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

// GetExact returns the key admitted at (baseCipherID, salt). Fails
// ErrKeyNotFound if absent.
func (idx *DomainKeyIndex) GetExact(baseCipherID uint64, salt uint64) (*CipherKey, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	key, ok := idx.entries[domainKeyEntry{baseCipherID: baseCipherID, salt: salt}]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

// All returns a snapshot slice of every key currently admitted.
func (idx *DomainKeyIndex) All() []*CipherKey {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*CipherKey, 0, len(idx.entries))
	for _, key := range idx.entries {
		out = append(out, key)
	}
	return out
}

// Cleanup destroys every key in the index and clears the latest pointer.
func (idx *DomainKeyIndex) Cleanup() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, key := range idx.entries {
		key.Destroy()
	}
	idx.entries = make(map[domainKeyEntry]*CipherKey)
	idx.latest = nil
}
