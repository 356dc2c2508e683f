package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

var errTGATruncated = errors.New("tga: pixel data truncated")

// DecodeTGA decodes an uncompressed or RLE true-color TGA with 24 or 32 bits per pixel.
// Alpha is straight, so the result is an *image.NRGBA.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, errors.New("tga: header too short")
	}

	idLength := int(data[0])
	if data[1] != 0 {
		return nil, errors.New("tga: color-mapped images not supported")
	}
	kind := int(data[2])
	if kind != TGATypeUncompressed && kind != TGATypeRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", kind)
	}
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	depth := int(data[16]) / 8
	if depth != 3 && depth != 4 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", data[16])
	}
	topDown := data[17]&0x20 != 0

	body := tgaHeaderSize + idLength
	if body > len(data) {
		return nil, errTGATruncated
	}
	src := data[body:]

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	total := width * height
	n := 0
	put := func(px []byte) {
		x, y := n%width, n/width
		if !topDown {
			y = height - 1 - y
		}
		a := uint8(255)
		if depth == 4 {
			a = px[3]
		}
		img.SetNRGBA(x, y, color.NRGBA{R: px[2], G: px[1], B: px[0], A: a})
		n++
	}

	if kind == TGATypeUncompressed {
		if len(src) < total*depth {
			return nil, errTGATruncated
		}
		for n < total {
			put(src[n*depth:])
		}
		return img, nil
	}

	for n < total {
		if len(src) == 0 {
			return nil, errTGATruncated
		}
		header := src[0]
		src = src[1:]
		count := int(header&0x7f) + 1
		if header&0x80 != 0 {
			if len(src) < depth {
				return nil, errTGATruncated
			}
			for i := 0; i < count && n < total; i++ {
				put(src)
			}
			src = src[depth:]
			continue
		}
		if len(src) < count*depth {
			return nil, errTGATruncated
		}
		for i := 0; i < count && n < total; i++ {
			put(src[i*depth:])
		}
		src = src[count*depth:]
	}
	return img, nil
}
