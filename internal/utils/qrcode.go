package utils

import (
	"encoding/base64"

	"github.com/skip2/go-qrcode"
)

const qrCodeSize = 256

// GenerateLinkQR encode un lien (page "mes commandes") en PNG
func GenerateLinkQR(link string) ([]byte, error) {
	return qrcode.Encode(link, qrcode.Medium, qrCodeSize)
}

// QRDataURI renvoie le PNG en base64 prêt à mettre dans <img src="...">
func QRDataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
