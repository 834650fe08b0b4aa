package blobcipher

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/southwinds-io/blobcipher/audit"
)

func newTestCache(t *testing.T) *KeyCache {
	t.Helper()
	c, err := Configure(&audit.Config{Enabled: false})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return c
}

func TestKeyCacheInsertAndGetExact(t *testing.T) {
	c := newTestCache(t)

	inserted, err := c.InsertExact(1, 100, []byte("0123456789abcdef"), 42)
	if err != nil {
		t.Fatalf("InsertExact: %v", err)
	}

	got, err := c.GetExact(1, 100, 42)
	if err != nil {
		t.Fatalf("GetExact: %v", err)
	}
	if !got.Equal(inserted) {
		t.Fatal("GetExact returned a different key than was inserted")
	}
}

func TestKeyCacheDomainsAreIsolated(t *testing.T) {
	c := newTestCache(t)

	if _, err := c.InsertExact(1, 100, []byte("0123456789abcdef"), 1); err != nil {
		t.Fatalf("InsertExact domain 1: %v", err)
	}
	if _, err := c.GetExact(2, 100, 1); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound for an unrelated domain, got %v", err)
	}
}

func TestKeyCacheResetDomain(t *testing.T) {
	c := newTestCache(t)

	if _, err := c.InsertLatest(1, 100, []byte("0123456789abcdef")); err != nil {
		t.Fatalf("InsertLatest: %v", err)
	}
	c.ResetDomain(1)

	if _, err := c.GetLatest(1); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after ResetDomain, got %v", err)
	}
}

func TestKeyCacheCleanupDropsAllDomains(t *testing.T) {
	c := newTestCache(t)

	if _, err := c.InsertLatest(1, 100, []byte("0123456789abcdef")); err != nil {
		t.Fatalf("InsertLatest domain 1: %v", err)
	}
	if _, err := c.InsertLatest(2, 200, []byte("fedcba9876543210")); err != nil {
		t.Fatalf("InsertLatest domain 2: %v", err)
	}

	c.Cleanup()

	if _, err := c.GetLatest(1); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound for domain 1, got %v", err)
	}
	if _, err := c.GetLatest(2); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound for domain 2, got %v", err)
	}
}

func TestKeyCacheQueryAuditLogFiltersByDomain(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.log")
	c, err := Configure(&audit.Config{
		Enabled: true,
		Type:    audit.FileAuditType,
		Options: map[string]interface{}{"file_path": logPath},
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if _, err := c.InsertLatest(1, 100, []byte("0123456789abcdef")); err != nil {
		t.Fatalf("InsertLatest domain 1: %v", err)
	}
	if _, err := c.InsertLatest(2, 200, []byte("fedcba9876543210")); err != nil {
		t.Fatalf("InsertLatest domain 2: %v", err)
	}

	domainID := int64(1)
	result, err := c.QueryAuditLog(audit.QueryOptions{DomainID: &domainID})
	if err != nil {
		t.Fatalf("QueryAuditLog: %v", err)
	}
	if len(result.Events) != 1 {
		t.Fatalf("expected 1 event for domain 1, got %d", len(result.Events))
	}
	if result.Events[0].DomainID != domainID {
		t.Fatalf("expected event for domain %d, got %d", domainID, result.Events[0].DomainID)
	}
}
