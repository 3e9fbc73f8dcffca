package sign

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Signer signs the raw SHA-256 digest of a receipt's canonical payload.
// Implementations differ only in key type and signature encoding.
type Signer interface {
	Sign(digest []byte) ([]byte, error)
	Algorithm() string
}

// ForKey picks the signer variant matching the device key type.
func ForKey(key crypto.Signer) (Signer, error) {
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return &rsaSigner{key: k}, nil
	case *ecdsa.PrivateKey:
		if k.Curve != elliptic.P256() {
			return nil, fmt.Errorf("unsupported EC curve: %s (expected P-256)", k.Curve.Params().Name)
		}
		return &ecSigner{key: k}, nil
	default:
		return nil, fmt.Errorf("unsupported private key type: %T (expected *rsa.PrivateKey or *ecdsa.PrivateKey)", key)
	}
}

type rsaSigner struct {
	key *rsa.PrivateKey
}

func (s *rsaSigner) Sign(digest []byte) ([]byte, error) {
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest)
	if err != nil {
		return nil, fmt.Errorf("rsa sign failed: %w", err)
	}
	return sig, nil
}

func (s *rsaSigner) Algorithm() string { return "SHA256withRSA" }

type ecSigner struct {
	key *ecdsa.PrivateKey
}

// Sign encodes the ECDSA signature as r‖s with each integer left-padded to a
// fixed 32 bytes, as the authority's verifier expects — not ASN.1 DER.
func (s *ecSigner) Sign(digest []byte) ([]byte, error) {
	r, sv, err := ecdsa.Sign(rand.Reader, s.key, digest)
	if err != nil {
		return nil, fmt.Errorf("ecdsa sign failed: %w", err)
	}
	sig := make([]byte, 64)
	r.FillBytes(sig[:32])
	sv.FillBytes(sig[32:])
	return sig, nil
}

func (s *ecSigner) Algorithm() string { return "SHA256withECDSA" }

// Placeholder returns a signer for devices with no key configured. Output is
// a fixed 64-byte marker so requests keep the right shape in tests and dry
// runs; the result must never be treated as trusted.
func Placeholder() Signer {
	log.WithField("component", "sign").Warn("no device key configured, signatures will be placeholders")
	return placeholderSigner{}
}

type placeholderSigner struct{}

func (placeholderSigner) Sign(_ []byte) ([]byte, error) {
	return []byte(strings.Repeat("UNTRUSTED!", 7))[:64], nil
}

func (placeholderSigner) Algorithm() string { return "none" }
