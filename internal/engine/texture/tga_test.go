package texture

import (
	"image"
	"image/color"
	"testing"
)

func tgaHeader(kind byte, w, h int, bpp byte, descriptor byte) []byte {
	hdr := make([]byte, tgaHeaderSize)
	hdr[2] = kind
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	hdr[17] = descriptor
	return hdr
}

func TestDecodeTGAUncompressedBottomUp(t *testing.T) {
	data := tgaHeader(TGATypeUncompressed, 2, 2, 24, 0)
	// Rows are stored bottom row first, pixels as BGR.
	data = append(data,
		0, 0, 255, 0, 255, 0, // bottom: red, green
		255, 0, 0, 255, 255, 255, // top: blue, white
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	nrgba := img.(*image.NRGBA)

	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{0, 1, color.NRGBA{R: 255, A: 255}},
		{1, 1, color.NRGBA{G: 255, A: 255}},
		{0, 0, color.NRGBA{B: 255, A: 255}},
		{1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
	}
	for _, tt := range tests {
		if got := nrgba.NRGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDecodeTGARLE(t *testing.T) {
	data := tgaHeader(TGATypeRLE, 3, 1, 32, 0x20)
	data = append(data,
		0x81, 10, 20, 30, 128, // run of 2
		0x00, 1, 2, 3, 4, // raw packet of 1
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA: %v", err)
	}
	nrgba := img.(*image.NRGBA)
	run := color.NRGBA{R: 30, G: 20, B: 10, A: 128}
	if nrgba.NRGBAAt(0, 0) != run || nrgba.NRGBAAt(1, 0) != run {
		t.Errorf("run pixels = %v %v, want %v", nrgba.NRGBAAt(0, 0), nrgba.NRGBAAt(1, 0), run)
	}
	if got := nrgba.NRGBAAt(2, 0); got != (color.NRGBA{R: 3, G: 2, B: 1, A: 4}) {
		t.Errorf("raw pixel = %v", got)
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"color mapped", append([]byte{0, 1}, make([]byte, 16)...)},
		{"bad type", tgaHeader(3, 1, 1, 24, 0)},
		{"bad depth", tgaHeader(TGATypeUncompressed, 1, 1, 16, 0)},
		{"truncated raw", tgaHeader(TGATypeUncompressed, 2, 2, 24, 0)},
		{"truncated rle", tgaHeader(TGATypeRLE, 2, 2, 24, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
