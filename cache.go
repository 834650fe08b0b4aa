package blobcipher

import (
	"sync"

	"github.com/southwinds-io/blobcipher/audit"
)

// KeyCache is a process-wide map from encryption domain to that domain's
// DomainKeyIndex. It is created lazily on first use and torn down with an
// explicit Cleanup, matching the lifecycle of BlobCipherKeyCache::getInstance
// in the original: no constructor runs at package init, and nothing happens
// until a caller actually reaches for a domain.
type KeyCache struct {
	mu      sync.RWMutex
	domains map[int64]*DomainKeyIndex
	logger  audit.Logger
}

var (
	instance     *KeyCache
	instanceOnce sync.Once
)

// Instance returns the process-wide KeyCache, constructing it on first call
// with a no-op audit logger. Use Configure before the first call to Instance
// if an audit backend other than no-op is desired.
func Instance() *KeyCache {
	instanceOnce.Do(func() {
		if instance == nil {
			instance = newKeyCache(nil)
		}
	})
	return instance
}

// Configure replaces the process-wide KeyCache with one wired to the given
// audit configuration. It must be called before any other KeyCache method
// observes the singleton — ordinarily once, at process start.
func Configure(auditConfig *audit.Config) (*KeyCache, error) {
	logger, err := audit.NewLogger(auditConfig)
	if err != nil {
		return nil, err
	}
	instance = newKeyCache(logger)
	return instance, nil
}

func newKeyCache(logger audit.Logger) *KeyCache {
	if logger == nil {
		logger = audit.NewNoOpLogger()
	}
	return &KeyCache{
		domains: make(map[int64]*DomainKeyIndex),
		logger:  logger,
	}
}

// domainIndex returns the DomainKeyIndex for domainID, creating it if this
// is the first time the domain has been touched.
func (c *KeyCache) domainIndex(domainID int64) *DomainKeyIndex {
	c.mu.RLock()
	idx, ok := c.domains[domainID]
	c.mu.RUnlock()
	if ok {
		return idx
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if idx, ok = c.domains[domainID]; ok {
		return idx
	}
	idx = NewDomainKeyIndex()
	c.domains[domainID] = idx
	return idx
}

// InsertLatest admits baseCipher under baseCipherID, generating a fresh
// salt, and makes it the newest key for domainID.
func (c *KeyCache) InsertLatest(domainID int64, baseCipherID uint64, baseCipher []byte) (*CipherKey, error) {
	key, err := c.domainIndex(domainID).InsertLatest(domainID, baseCipherID, baseCipher)
	c.logAdmission("KEY_INSERT_LATEST", domainID, baseCipherID, err)
	return key, err
}

// InsertExact admits baseCipher at a caller-supplied salt, without
// advancing the domain's "latest" pointer. This is the path used to satisfy
// a header-driven lookup miss: the caller fetches the base key from the
// external key manager and hands it back here at the salt the header named.
func (c *KeyCache) InsertExact(domainID int64, baseCipherID uint64, baseCipher []byte, salt uint64) (*CipherKey, error) {
	key, err := c.domainIndex(domainID).InsertExact(domainID, baseCipherID, baseCipher, salt)
	c.logAdmission("KEY_INSERT_EXACT", domainID, baseCipherID, err)
	return key, err
}

// GetLatest returns the most recently admitted key for domainID.
func (c *KeyCache) GetLatest(domainID int64) (*CipherKey, error) {
	return c.domainIndex(domainID).GetLatest()
}

// GetExact returns the key for domainID admitted at (baseCipherID, salt).
func (c *KeyCache) GetExact(domainID int64, baseCipherID uint64, salt uint64) (*CipherKey, error) {
	return c.domainIndex(domainID).GetExact(baseCipherID, salt)
}

// All returns a snapshot of every key currently admitted for domainID.
func (c *KeyCache) All(domainID int64) []*CipherKey {
	return c.domainIndex(domainID).All()
}

// ResetDomain destroys every key admitted for domainID and drops the domain
// entirely; a subsequent lookup recreates an empty index for it.
func (c *KeyCache) ResetDomain(domainID int64) {
	c.mu.Lock()
	idx, ok := c.domains[domainID]
	delete(c.domains, domainID)
	c.mu.Unlock()

	if ok {
		idx.Cleanup()
	}
	c.logger.Log("KEY_CLEANUP", true, map[string]interface{}{"domain_id": domainID})
}

// Cleanup destroys every key in every domain and empties the cache. Core
// dumps taken after Cleanup returns MUST NOT contain plaintext key bytes.
func (c *KeyCache) Cleanup() {
	c.mu.Lock()
	domains := c.domains
	c.domains = make(map[int64]*DomainKeyIndex)
	c.mu.Unlock()

	for _, idx := range domains {
		idx.Cleanup()
	}
	c.logger.Log("KEY_CLEANUP", true, map[string]interface{}{"scope": "all"})
}

// QueryAuditLog replays the cache's own audit trail (key admissions and
// cleanups), letting an operator answer "what happened to domain X's keys"
// without reaching past the cache into the audit backend directly.
func (c *KeyCache) QueryAuditLog(options audit.QueryOptions) (audit.QueryResult, error) {
	return c.logger.Query(options)
}

func (c *KeyCache) logAdmission(action string, domainID int64, baseCipherID uint64, err error) {
	meta := map[string]interface{}{
		"domain_id":      domainID,
		"base_cipher_id": baseCipherID,
	}
	if err != nil {
		meta["error"] = err.Error()
	}
	c.logger.Log(action, err == nil, meta)
}
