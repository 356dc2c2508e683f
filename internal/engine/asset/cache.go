package asset

import (
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/material"
	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
	"github.com/Faultbox/midgard-pbr/internal/logger"
)

// Uploader copies a decoded image to the GPU.
type Uploader func(img image.Image, mips bool) texture.Handle

type cacheKey struct {
	source string
	mips   bool
}

// TextureCache loads each texture image once per mip setting and owns the
// resulting GPU handles. It implements material.Loader.
type TextureCache struct {
	upload  Uploader
	release func(texture.Handle)

	entries map[cacheKey]texture.Handle
	mu      sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewTextureCache creates a cache uploading through texture.Upload2D.
func NewTextureCache() *TextureCache {
	return NewTextureCacheWith(texture.Upload2D, texture.Delete)
}

// NewTextureCacheWith creates a cache with custom upload and release
// functions.
func NewTextureCacheWith(upload Uploader, release func(texture.Handle)) *TextureCache {
	return &TextureCache{
		upload:  upload,
		release: release,
		entries: make(map[cacheKey]texture.Handle),
	}
}

// Load implements material.Loader. Normal maps are uploaded without mips.
func (c *TextureCache) Load(ref material.Ref, role texture.Role) (texture.Handle, error) {
	key := cacheKey{source: ref.Key, mips: role.WantsMips()}
	if key.source == "" {
		key.source = ref.Name
	}

	c.mu.RLock()
	h, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return h, nil
	}

	if ref.Read == nil {
		return 0, fmt.Errorf("texture %s: no data source", ref.Name)
	}
	data, err := ref.Read()
	if err != nil {
		return 0, fmt.Errorf("read texture %s: %w", ref.Name, err)
	}
	img, err := texture.Decode(data, ref.Name)
	if err != nil {
		return 0, fmt.Errorf("decode texture %s: %w", ref.Name, err)
	}
	h = c.upload(img, key.mips)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++
	if prev, ok := c.entries[key]; ok {
		// Lost a race with another loader of the same image.
		c.release(h)
		return prev, nil
	}
	c.entries[key] = h

	logger.Debug("texture loaded",
		zap.String("name", ref.Name),
		zap.Stringer("role", role),
		zap.Bool("mips", key.mips),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
	)
	return h, nil
}

// Clear releases every cached texture.
func (c *TextureCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range c.entries {
		c.release(h)
	}
	c.entries = make(map[cacheKey]texture.Handle)
	c.hits = 0
	c.misses = 0
}

// Len returns the number of cached textures.
func (c *TextureCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *TextureCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
