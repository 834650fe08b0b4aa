package blobcipher

import "testing"

func TestHeaderPackSize(t *testing.T) {
	h := &EncryptHeader{Size: HeaderSize, Version: HeaderVersion1, Mode: EncryptModeAES256CTR, AuthTokenMode: AuthTokenModeSingle}
	packed := h.Pack()
	if len(packed) != HeaderSize {
		t.Fatalf("expected %d bytes, got %d", HeaderSize, len(packed))
	}
}

func TestHeaderPackUnpackRoundTrip(t *testing.T) {
	h := &EncryptHeader{
		Size:          HeaderSize,
		Version:       HeaderVersion1,
		Mode:          EncryptModeAES256CTR,
		AuthTokenMode: AuthTokenModeMulti,
		Text:          identityTriple{domainID: 42, baseCipherID: 7, salt: 0x1122334455667788},
		Header:        identityTriple{domainID: 42, baseCipherID: 8, salt: 0x99AABBCCDDEEFF00},
	}
	for i := range h.IV {
		h.IV[i] = byte(i)
	}
	for i := range h.TextToken {
		h.TextToken[i] = byte(0xA0 + i)
	}
	for i := range h.HeaderToken {
		h.HeaderToken[i] = byte(0xB0 + i)
	}

	packed := h.Pack()
	unpacked, err := UnpackHeader(packed[:])
	if err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}

	if *unpacked != *h {
		t.Fatalf("round-tripped header differs from original:\n got  %+v\n want %+v", unpacked, h)
	}
}

func TestUnpackHeaderRejectsWrongSize(t *testing.T) {
	if _, err := UnpackHeader(make([]byte, HeaderSize-1)); err == nil {
		t.Fatal("expected an error for a short buffer")
	}
}

func TestUnpackHeaderRejectsUnknownVersion(t *testing.T) {
	h := &EncryptHeader{Size: HeaderSize, Version: HeaderVersion1, Mode: EncryptModeAES256CTR, AuthTokenMode: AuthTokenModeNone}
	packed := h.Pack()
	packed[1] = 2 // S6: header_version=2 must fail HeaderMalformed

	if _, err := UnpackHeader(packed[:]); err == nil {
		t.Fatal("expected ErrHeaderMalformed for an unrecognized header_version")
	}
}

func TestUnpackHeaderRejectsUnknownMode(t *testing.T) {
	h := &EncryptHeader{Size: HeaderSize, Version: HeaderVersion1, Mode: EncryptModeAES256CTR, AuthTokenMode: AuthTokenModeNone}
	packed := h.Pack()
	packed[2] = 9

	if _, err := UnpackHeader(packed[:]); err == nil {
		t.Fatal("expected ErrHeaderMalformed for an unrecognized encrypt_mode")
	}
}

func TestUnpackHeaderIgnoresReservedBytes(t *testing.T) {
	h := &EncryptHeader{Size: HeaderSize, Version: HeaderVersion1, Mode: EncryptModeAES256CTR, AuthTokenMode: AuthTokenModeNone}
	packed := h.Pack()
	packed[4], packed[5], packed[6], packed[7] = 1, 2, 3, 4

	if _, err := UnpackHeader(packed[:]); err != nil {
		t.Fatalf("reserved bytes must be ignored on read, got: %v", err)
	}
}
