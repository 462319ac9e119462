// Package qr renders payment links as scannable QR images.
package qr

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/yeqown/go-qrcode"
)

// ContentType is the MIME type of images produced by Encode.
const ContentType = "image/jpeg"

// ErrEmpty is returned when there is nothing to encode.
var ErrEmpty = errors.New("qr: empty payload")

// Encode writes a JPEG QR code for text to w.
// PRE: text is non-empty
// POST: w holds a complete JPEG image, or an error is returned and w may hold a partial image
func Encode(text string, w io.Writer) error {
	if text == "" {
		return ErrEmpty
	}
	code, err := qrcode.New(text)
	if err != nil {
		return fmt.Errorf("qr encode: %w", err)
	}
	if err := code.SaveTo(w); err != nil {
		return fmt.Errorf("qr write: %w", err)
	}
	return nil
}

// EncodeBytes is Encode into memory, so handlers can fail before writing headers.
func EncodeBytes(text string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(text, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
