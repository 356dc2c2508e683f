package asset

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/renderer"
	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
	"github.com/Faultbox/midgard-pbr/internal/logger"
)

// CubeUploader copies six cube faces to the GPU and returns the mip count.
type CubeUploader func(faces []image.Image, mips bool) (texture.Handle, int, error)

// faceNames are the per-face file stems accepted in an environment directory,
// in +X, -X, +Y, -Y, +Z, -Z order.
var faceNames = [texture.CubeFaces][]string{
	{"px", "posx", "right"},
	{"nx", "negx", "left"},
	{"py", "posy", "top"},
	{"ny", "negy", "bottom"},
	{"pz", "posz", "front"},
	{"nz", "negz", "back"},
}

// LoadEnvironment loads the irradiance cube map with a full mip chain. path is
// either a single image in strip or cross layout, or a directory holding one
// image per face. A nil upload uses texture.UploadCube.
func LoadEnvironment(path string, upload CubeUploader) (renderer.Environment, error) {
	if upload == nil {
		upload = texture.UploadCube
	}

	faces, err := ReadCubeFaces(path)
	if err != nil {
		return renderer.Environment{}, err
	}
	h, levels, err := upload(faces, true)
	if err != nil {
		return renderer.Environment{}, fmt.Errorf("upload environment %s: %w", path, err)
	}

	logger.Info("environment loaded",
		zap.String("path", path),
		zap.Int("face_size", faces[0].Bounds().Dx()),
		zap.Int("levels", levels),
	)
	return renderer.Environment{Handle: h, Levels: levels}, nil
}

// NeutralColor is the uniform irradiance used when no environment is given.
var NeutralColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// NeutralEnvironment uploads a 1x1 gray cube map. A nil upload uses
// texture.UploadCube.
func NeutralEnvironment(upload CubeUploader) (renderer.Environment, error) {
	if upload == nil {
		upload = texture.UploadCube
	}
	faces := make([]image.Image, texture.CubeFaces)
	for i := range faces {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, NeutralColor)
		faces[i] = img
	}
	h, levels, err := upload(faces, true)
	if err != nil {
		return renderer.Environment{}, fmt.Errorf("upload neutral environment: %w", err)
	}
	return renderer.Environment{Handle: h, Levels: levels}, nil
}

// ReadCubeFaces decodes the six faces of a cube map.
func ReadCubeFaces(path string) ([]image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if info.IsDir() {
		return readFaceDir(path)
	}

	img, err := readImage(path)
	if err != nil {
		return nil, err
	}
	faces, err := texture.SplitCube(img)
	if err != nil {
		return nil, fmt.Errorf("environment %s: %w", path, err)
	}
	return faces, nil
}

func readFaceDir(dir string) ([]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	byStem := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stem := strings.ToLower(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		byStem[stem] = filepath.Join(dir, e.Name())
	}

	faces := make([]image.Image, texture.CubeFaces)
	for i, names := range faceNames {
		var file string
		for _, n := range names {
			if f, ok := byStem[n]; ok {
				file = f
				break
			}
		}
		if file == "" {
			return nil, fmt.Errorf("environment %s: missing face %s", dir, names[0])
		}
		img, err := readImage(file)
		if err != nil {
			return nil, err
		}
		faces[i] = img
	}
	return faces, nil
}

func readImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	img, err := texture.Decode(data, path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
