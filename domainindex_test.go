package blobcipher

import (
	"errors"
	"testing"
)

func TestDomainKeyIndexInsertExactIdempotent(t *testing.T) {
	idx := NewDomainKeyIndex()
	base := []byte("0123456789abcdef")

	if _, err := idx.InsertExact(1, 100, base, 555); err != nil {
		t.Fatalf("first InsertExact: %v", err)
	}
	if _, err := idx.InsertExact(1, 100, base, 555); err != nil {
		t.Fatalf("re-inserting the same key should be a no-op, got: %v", err)
	}
}

func TestDomainKeyIndexInsertExactConflict(t *testing.T) {
	idx := NewDomainKeyIndex()

	if _, err := idx.InsertExact(1, 100, []byte("0123456789abcdef"), 555); err != nil {
		t.Fatalf("first InsertExact: %v", err)
	}
	_, err := idx.InsertExact(1, 100, []byte("fedcba9876543210"), 555)
	if !errors.Is(err, ErrUpdateCipher) {
		t.Fatalf("expected ErrUpdateCipher, got %v", err)
	}
}

func TestDomainKeyIndexLatestSemantics(t *testing.T) {
	idx := NewDomainKeyIndex()

	k1, err := idx.InsertLatest(1, 100, []byte("0123456789abcdef"))
	if err != nil {
		t.Fatalf("InsertLatest k1: %v", err)
	}
	k2, err := idx.InsertLatest(1, 200, []byte("fedcba9876543210"))
	if err != nil {
		t.Fatalf("InsertLatest k2: %v", err)
	}

	latest, err := idx.GetLatest()
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if !latest.Equal(k2) {
		t.Fatal("GetLatest should return the second inserted key")
	}
	if latest.Equal(k1) {
		t.Fatal("GetLatest should not return the first inserted key")
	}
}

func TestDomainKeyIndexGetExactNotFound(t *testing.T) {
	idx := NewDomainKeyIndex()
	_, err := idx.GetExact(1, 1)
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestDomainKeyIndexGetLatestNotFound(t *testing.T) {
	idx := NewDomainKeyIndex()
	_, err := idx.GetLatest()
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestDomainKeyIndexAllSnapshot(t *testing.T) {
	idx := NewDomainKeyIndex()
	if _, err := idx.InsertExact(1, 100, []byte("0123456789abcdef"), 1); err != nil {
		t.Fatalf("InsertExact: %v", err)
	}
	if _, err := idx.InsertExact(1, 200, []byte("fedcba9876543210"), 2); err != nil {
		t.Fatalf("InsertExact: %v", err)
	}

	all := idx.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(all))
	}
}

func TestDomainKeyIndexCleanupEmptiesEverything(t *testing.T) {
	idx := NewDomainKeyIndex()
	if _, err := idx.InsertLatest(1, 100, []byte("0123456789abcdef")); err != nil {
		t.Fatalf("InsertLatest: %v", err)
	}

	idx.Cleanup()

	if len(idx.All()) != 0 {
		t.Fatal("expected empty index after Cleanup")
	}
	if _, err := idx.GetLatest(); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after Cleanup, got %v", err)
	}
}
