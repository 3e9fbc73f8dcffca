package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/youmark/pkcs8"
)

// LoadSignerFromFile reads a PEM file holding the device private key and
// returns it as a crypto.Signer. Plain PKCS#8, PKCS#1 RSA, SEC1 EC and
// password-protected PKCS#8 blocks are all accepted.
func LoadSignerFromFile(path string, password []byte) (crypto.Signer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return LoadSignerFromPEM(b, password)
}

// LoadSignerFromPEM loads the first usable private key block from pemBytes.
func LoadSignerFromPEM(pemBytes []byte, password []byte) (crypto.Signer, error) {
	for len(pemBytes) > 0 {
		var block *pem.Block
		block, pemBytes = pem.Decode(pemBytes)
		if block == nil {
			break
		}

		switch block.Type {
		case "PRIVATE KEY":
			keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("parse PKCS#8 private key: %w", err)
			}
			return asSigner(keyAny)

		case "RSA PRIVATE KEY":
			key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("parse PKCS#1 RSA private key: %w", err)
			}
			return key, nil

		case "EC PRIVATE KEY":
			key, err := x509.ParseECPrivateKey(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("parse EC private key: %w", err)
			}
			return key, nil

		case "ENCRYPTED PRIVATE KEY":
			if len(password) == 0 {
				return nil, errors.New("password is required for ENCRYPTED PRIVATE KEY")
			}
			keyAny, err := pkcs8.ParsePKCS8PrivateKey(block.Bytes, password)
			if err != nil {
				return nil, fmt.Errorf("decrypt PKCS#8 encrypted private key: %w", err)
			}
			return asSigner(keyAny)
		}
	}

	return nil, errors.New("no private key block found in PEM")
}

func asSigner(keyAny any) (crypto.Signer, error) {
	switch k := keyAny.(type) {
	case *rsa.PrivateKey:
		return k, nil
	case *ecdsa.PrivateKey:
		return k, nil
	default:
		return nil, fmt.Errorf("unsupported key type: %T (expected RSA or ECDSA)", keyAny)
	}
}
