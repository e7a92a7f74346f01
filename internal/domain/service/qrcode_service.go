package service

// QRCodeService generates QR codes for shareable catchment query links.
type QRCodeService interface {
	// GenerateShareQR renders the share URL as a PNG image.
	GenerateShareQR(shareURL string) ([]byte, error)
}
