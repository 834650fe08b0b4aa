package blobcipher

import "testing"

func TestNewWithSaltRejectsShortBaseKey(t *testing.T) {
	_, err := NewWithSalt(1, 1, []byte("short"), 1)
	if err == nil {
		t.Fatal("expected an error for a base key under 16 bytes")
	}
}

func TestCipherKeyEqualSameInputs(t *testing.T) {
	base := []byte("0123456789abcdef")

	a, err := NewWithSalt(1, 100, base, 42)
	if err != nil {
		t.Fatalf("NewWithSalt: %v", err)
	}
	b, err := NewWithSalt(1, 100, base, 42)
	if err != nil {
		t.Fatalf("NewWithSalt: %v", err)
	}

	if !a.Equal(b) {
		t.Fatal("keys constructed from identical inputs should be equal")
	}
}

func TestCipherKeyEqualDiffersOnBaseKeyChange(t *testing.T) {
	a, err := NewWithSalt(1, 100, []byte("0123456789abcdef"), 42)
	if err != nil {
		t.Fatalf("NewWithSalt: %v", err)
	}
	b, err := NewWithSalt(1, 100, []byte("fedcba9876543210"), 42)
	if err != nil {
		t.Fatalf("NewWithSalt: %v", err)
	}

	if a.Equal(b) {
		t.Fatal("keys with different base cipher bytes must not be equal")
	}
}

func TestNewGeneratesRandomSalt(t *testing.T) {
	base := []byte("0123456789abcdef")

	a, err := New(1, 100, base)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(1, 100, base)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if a.Salt() == b.Salt() {
		t.Fatal("two calls to New should not produce the same salt (with overwhelming probability)")
	}
}
