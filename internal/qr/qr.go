// Package qr renders table QR codes and builds the URLs they point at.
package qr

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/skip2/go-qrcode"
)

// Encoder turns a text payload into a PNG image.
type Encoder interface {
	Encode(payload string, size int) ([]byte, error)
}

// pngEncoder implements Encoder with go-qrcode at medium error correction.
type pngEncoder struct{}

// NewEncoder creates a PNG QR encoder.
func NewEncoder() Encoder {
	return pngEncoder{}
}

// Encode renders payload as a size x size PNG.
func (pngEncoder) Encode(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, errors.New("empty QR payload")
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}

// TableURL returns base with menuId and tableId added to its query,
// keeping any query parameters base already has.
func TableURL(base string, menuID int64, tableID int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid callback base URL: %w", err)
	}

	q := u.Query()
	q.Set("menuId", strconv.FormatInt(menuID, 10))
	q.Set("tableId", strconv.Itoa(tableID))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// FileName names the QR image object of one table.
func FileName(menuID int64, tableID int) string {
	return fmt.Sprintf("menu-%d-table-%d.png", menuID, tableID)
}
