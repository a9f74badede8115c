package utils

import qrcode "github.com/skip2/go-qrcode"

// GenerateLoyaltyQR encode l'identifiant client en QR code PNG,
// imprimé sur la carte fidélité et scanné en caisse
func GenerateLoyaltyQR(customerID string) ([]byte, error) {
	return qrcode.Encode("moka:customer:"+customerID, qrcode.Medium, 256)
}
