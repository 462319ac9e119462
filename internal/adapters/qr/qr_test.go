package qr

import (
	"bytes"
	"errors"
	"testing"
)

// TestEncodeBytes_JPEG verifies output starts with the JPEG SOI marker.
func TestEncodeBytes_JPEG(t *testing.T) {
	img, err := EncodeBytes("upi://pay?pa=dribbleground@upi&pn=DribbleGround&am=4500&cu=INR")
	if err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}
	if len(img) < 100 || !bytes.HasPrefix(img, []byte{0xFF, 0xD8}) {
		t.Errorf("not a JPEG: % x", img[:min(8, len(img))])
	}
}

// TestEncode_Empty verifies empty payloads are rejected.
func TestEncode_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode("", &buf); !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
	if buf.Len() != 0 {
		t.Error("wrote bytes for empty payload")
	}
}
