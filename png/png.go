package png

import "github.com/skip2/go-qrcode"

// Qr renders content as a 300x300 PNG with medium error correction, enough
// redundancy for thermal-printed receipt codes.
func Qr(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, 300)
}
