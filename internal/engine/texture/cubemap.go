package texture

import (
	"errors"
	"fmt"
	"image"
)

// ErrCubeLayout is returned when an environment image is not a recognised cube layout.
var ErrCubeLayout = errors.New("image is not a cube map layout")

// CubeFaces is the number of faces in a cube map, ordered +X, -X, +Y, -Y, +Z, -Z.
const CubeFaces = 6

// crossCells maps each face to its cell in a 4x3 horizontal cross.
var crossCells = [CubeFaces]image.Point{
	{2, 1}, // +X
	{0, 1}, // -X
	{1, 0}, // +Y
	{1, 2}, // -Y
	{1, 1}, // +Z
	{3, 1}, // -Z
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// SplitCube cuts an environment image into its six square faces.
// Accepted layouts are a vertical strip (w x 6w), a horizontal strip (6h x h)
// and a 4x3 horizontal cross.
func SplitCube(img image.Image) ([]image.Image, error) {
	src, ok := img.(subImager)
	if !ok {
		src = ToNRGBA(img)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var cells [CubeFaces]image.Point
	var size int
	switch {
	case w > 0 && h == w*CubeFaces:
		size = w
		for i := range cells {
			cells[i] = image.Pt(0, i)
		}
	case h > 0 && w == h*CubeFaces:
		size = h
		for i := range cells {
			cells[i] = image.Pt(i, 0)
		}
	case w > 0 && w%4 == 0 && h*4 == w*3:
		size = w / 4
		cells = crossCells
	default:
		return nil, fmt.Errorf("%dx%d: %w", w, h, ErrCubeLayout)
	}

	faces := make([]image.Image, CubeFaces)
	for i, c := range cells {
		min := b.Min.Add(c.Mul(size))
		faces[i] = src.SubImage(image.Rectangle{Min: min, Max: min.Add(image.Pt(size, size))})
	}
	return faces, nil
}
