package service

import (
	"image/color"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize edge length of generated QR images in pixels
const DefaultQRSize = 256

var (
	qrForeground = color.Black
	qrBackground = color.White
)

// GenerateQRImage encodes publicURL as a PNG QR code with a quiet zone. The output
// depends only on its arguments.
func GenerateQRImage(publicURL string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	q, err := qrcode.New(publicURL, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	q.ForegroundColor = qrForeground
	q.BackgroundColor = qrBackground
	q.DisableBorder = false
	return q.PNG(size)
}
