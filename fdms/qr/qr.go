package qr

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Receipt verification material: the authority publishes a lookup page where
// a buyer keys in (or scans) the device id, the receipt date, the global
// receipt number and a short fingerprint of the device signature hash.

// Payload builds the scannable QR content for one accepted receipt:
// device id zero-padded to 10, date as ddMMyyyy, global number zero-padded to
// 10, then the first 16 uppercase hex characters of the receipt hash.
func Payload(deviceID int, date time.Time, globalNo int64, hashB64 string) (string, error) {
	fp, err := hashFingerprint(hashB64)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%010d%s%010d%s", deviceID, date.Format("02012006"), globalNo, fp), nil
}

// VerificationLink builds the human-clickable form of the same payload:
// {base}/receipt/{deviceID}/{ddMMyyyy}/{globalNo}/{fingerprint}
func VerificationLink(base string, deviceID int, date time.Time, globalNo int64, hashB64 string) (string, error) {
	if strings.TrimSpace(base) == "" {
		return "", fmt.Errorf("base URL is empty")
	}

	fp, err := hashFingerprint(hashB64)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/receipt/%d/%s/%d/%s",
		strings.TrimRight(base, "/"), deviceID, date.Format("02012006"), globalNo, fp), nil
}

// hashFingerprint is the first 8 bytes of the receipt hash as uppercase hex.
func hashFingerprint(hashB64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(hashB64)
	if err != nil {
		return "", fmt.Errorf("receipt hash is not valid base64: %w", err)
	}
	if len(raw) < 8 {
		return "", fmt.Errorf("receipt hash too short: %d bytes", len(raw))
	}
	return strings.ToUpper(hex.EncodeToString(raw[:8])), nil
}
