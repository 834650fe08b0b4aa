// Package tokensign provides ECDSA P-256 signing and verification for
// inter-process authentication tokens. It shares the cipher core's trust
// boundary and serialization discipline but is otherwise independent of
// the AES-256-CTR engine in the parent package — callers that only need
// signed tokens never touch a CipherKey or KeyCache.
//
// Grounded on fdbrpc/TokenSign.cpp (generateEcdsaKeyPair/signToken/
// verifyToken) and on turtacn-cbc's key_manager.go, which uses the same
// stdlib crypto/ecdsa + crypto/x509 DER encoding this package does; no
// third-party ECDSA library appears anywhere in the example corpus.
package tokensign

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/southwinds-io/blobcipher"
)

// tokenVersion prefixes every serialized AuthToken so a future revision of
// the wire format can be rejected by readers that don't understand it,
// mirroring the header's own version byte.
const tokenVersion byte = 1

// IPAddressKind discriminates the AuthToken.IPAddress variants.
type IPAddressKind uint8

const (
	IPAddressNone IPAddressKind = 0
	IPAddressV4   IPAddressKind = 1
	IPAddressV6   IPAddressKind = 2
)

// IPAddress is a tagged union over "no address", an IPv4 address, or an
// IPv6 address, matching the original AuthToken's ip_address field.
type IPAddress struct {
	Kind IPAddressKind
	V4   [4]byte
	V6   [16]byte
}

// AuthToken is the record an inter-process caller signs and a receiver
// verifies: an expiry, an optional client IP binding, and the tenants the
// token authorizes.
type AuthToken struct {
	ExpiresAt float64
	IPAddress IPAddress
	Tenants   [][]byte
}

// SignedAuthToken bundles a serialized AuthToken with its signature and the
// name of the key that produced it, so a verifier knows which public key to
// fetch.
type SignedAuthToken struct {
	TokenPayload []byte
	Signature    []byte
	KeyName      []byte
}

// GenerateKeyPair produces a fresh ECDSA P-256 (NIST prime256v1) key pair,
// exported as DER: SEC1 for the private key, PKIX for the public key.
func GenerateKeyPair() (privateDER, publicDER []byte, err error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: ecdsa key generation: %v", blobcipher.ErrCryptoBackend, err)
	}

	privateDER, err = x509.MarshalECPrivateKey(priv)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: marshal private key: %v", blobcipher.ErrCryptoBackend, err)
	}

	publicDER, err = x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: marshal public key: %v", blobcipher.ErrCryptoBackend, err)
	}

	return privateDER, publicDER, nil
}

// Serialize encodes token into the version-prefixed canonical byte form
// that gets signed and, later, re-derived for verification.
func (t *AuthToken) Serialize() []byte {
	buf := make([]byte, 0, 1+8+1+16+2+len(t.Tenants)*2)
	buf = append(buf, tokenVersion)

	var expires [8]byte
	binary.LittleEndian.PutUint64(expires[:], math.Float64bits(t.ExpiresAt))
	buf = append(buf, expires[:]...)

	buf = append(buf, byte(t.IPAddress.Kind))
	switch t.IPAddress.Kind {
	case IPAddressV4:
		buf = append(buf, t.IPAddress.V4[:]...)
	case IPAddressV6:
		buf = append(buf, t.IPAddress.V6[:]...)
	}

	var tenantCount [2]byte
	binary.LittleEndian.PutUint16(tenantCount[:], uint16(len(t.Tenants)))
	buf = append(buf, tenantCount[:]...)
	for _, tenant := range t.Tenants {
		var length [2]byte
		binary.LittleEndian.PutUint16(length[:], uint16(len(tenant)))
		buf = append(buf, length[:]...)
		buf = append(buf, tenant...)
	}

	return buf
}

// Sign serializes token, signs it with the ECDSA private key privateDER
// (SEC1 DER), and returns a SignedAuthToken embedding the serialized
// payload, the signature, and keyName so a verifier can locate the matching
// public key.
func Sign(token *AuthToken, keyName string, privateDER []byte) (*SignedAuthToken, error) {
	priv, err := x509.ParseECPrivateKey(privateDER)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", blobcipher.ErrBadKey, err)
	}

	payload := token.Serialize()
	digest := sha256.Sum256(payload)

	sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("%w: ecdsa sign: %v", blobcipher.ErrCryptoBackend, err)
	}

	return &SignedAuthToken{
		TokenPayload: payload,
		Signature:    sig,
		KeyName:      []byte(keyName),
	}, nil
}

// Verify re-derives the digest of signed.TokenPayload and checks it against
// signed.Signature using the ECDSA public key publicDER (PKIX DER). A
// signature mismatch returns (false, nil) — it is an expected, logged
// condition, not a hard failure. A malformed public key returns
// ErrBadKey.
func Verify(signed *SignedAuthToken, publicDER []byte) (bool, error) {
	key, err := x509.ParsePKIXPublicKey(publicDER)
	if err != nil {
		return false, fmt.Errorf("%w: parse public key: %v", blobcipher.ErrBadKey, err)
	}
	pub, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return false, fmt.Errorf("%w: public key is not ECDSA", blobcipher.ErrBadKey)
	}

	digest := sha256.Sum256(signed.TokenPayload)
	ok = ecdsa.VerifyASN1(pub, digest[:], signed.Signature)
	if !ok {
		verifyFailureLog.logf("blobcipher/tokensign: signature verification failed for key %q", string(signed.KeyName))
	}
	return ok, nil
}
