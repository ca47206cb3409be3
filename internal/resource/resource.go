// Package resource decodes textures, sprites and maps on demand and keeps
// the results. Concurrent requests for the same file share one decode.
package resource

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"runtime"
	"sync"

	"gitgub.com/cam-per/cultures/cultures/bmd"
	"gitgub.com/cam-per/cultures/cultures/errs"
	"gitgub.com/cam-per/cultures/cultures/mapfile"
	"gitgub.com/cam-per/cultures/cultures/pal"
	"gitgub.com/cam-per/cultures/cultures/pcx"
	"gitgub.com/cam-per/cultures/internal/archive"
	"gitgub.com/cam-per/cultures/internal/registry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/encoding/charmap"
)

// Sprite holds the decoded frames of a landscape's sprite file and, when
// the landscape declares one, of its shadow file.
type Sprite struct {
	Frames  []bmd.Frame
	Images  []*image.NRGBA
	Shadows []*image.NRGBA
}

type Manager struct {
	fsys     fs.FS
	registry *registry.Registry
	encoding *charmap.Charmap
	logger   *slog.Logger

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]any
}

// New returns a manager reading from fsys. A nil logger logs to
// slog.Default().
func New(fsys fs.FS, reg *registry.Registry, encoding *charmap.Charmap, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		fsys:     fsys,
		registry: reg,
		encoding: encoding,
		logger:   logger,
		cache:    make(map[string]any),
	}
}

func (manager *Manager) cached(key string) (any, bool) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	v, ok := manager.cache[key]
	return v, ok
}

// load returns the cached value for key or runs fn once for all concurrent
// callers. Failures are not cached.
func load[T any](manager *Manager, key string, fn func() (T, error)) (T, error) {
	if v, ok := manager.cached(key); ok {
		manager.logger.Debug("cache hit", "key", key)
		return v.(T), nil
	}
	v, err, shared := manager.group.Do(key, func() (any, error) {
		if v, ok := manager.cached(key); ok {
			return v, nil
		}
		manager.logger.Debug("cache miss", "key", key)
		v, err := fn()
		if err != nil {
			return nil, err
		}
		manager.mu.Lock()
		manager.cache[key] = v
		manager.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if shared {
		manager.logger.Debug("shared decode", "key", key)
	}
	return v.(T), nil
}

func (manager *Manager) read(name string) ([]byte, error) {
	data, err := fs.ReadFile(manager.fsys, archive.Key(name))
	if err != nil {
		return nil, fmt.Errorf("resource: %w", err)
	}
	return data, nil
}

// Palette decodes the image file a palette definition names and returns its
// colors.
func (manager *Manager) Palette(name string) (pal.Palette, error) {
	def, err := manager.registry.Palette(name)
	if err != nil {
		return nil, err
	}
	return load(manager, "palette:"+archive.Key(def.GfxFile), func() (pal.Palette, error) {
		data, err := manager.read(def.GfxFile)
		if err != nil {
			return nil, err
		}
		palette, err := pcx.DecodePalette(data)
		if err != nil {
			return nil, fmt.Errorf("palette %s: %w", name, err)
		}
		return palette, nil
	})
}

// Pattern decodes a terrain texture.
func (manager *Manager) Pattern(name string) (*image.NRGBA, error) {
	def, err := manager.registry.Pattern(name)
	if err != nil {
		return nil, err
	}
	return manager.texture(def.GfxTexture, "")
}

// Transition decodes a transition texture with the alpha taken from its
// mask file, if any.
func (manager *Manager) Transition(name string) (*image.NRGBA, error) {
	def, err := manager.registry.Transition(name)
	if err != nil {
		return nil, err
	}
	return manager.texture(def.GfxTexture, def.GfxTextureAlpha)
}

func (manager *Manager) texture(path, mask string) (*image.NRGBA, error) {
	key := "texture:" + archive.Key(path)
	if mask != "" {
		key += "+" + archive.Key(mask)
	}
	return load(manager, key, func() (*image.NRGBA, error) {
		data, err := manager.read(path)
		if err != nil {
			return nil, err
		}
		var alpha []byte
		if mask != "" {
			if alpha, err = manager.read(mask); err != nil {
				return nil, err
			}
		}
		img, err := pcx.Decode(data, alpha)
		if err != nil {
			return nil, fmt.Errorf("texture %s: %w", path, err)
		}
		return img, nil
	})
}

// Landscape decodes every frame of a landscape's sprite file with the
// landscape's first palette. Frames are decoded in parallel.
func (manager *Manager) Landscape(ctx context.Context, name string, mode bmd.AlphaMode) (*Sprite, error) {
	def, err := manager.registry.Landscape(name)
	if err != nil {
		return nil, err
	}
	if len(def.GfxPalette) == 0 {
		return nil, &errs.MissingError{What: "landscape " + name, Names: []string{"GfxPalette"}}
	}
	key := fmt.Sprintf("sprite:%s:%s:%d", archive.Key(def.GfxBobLibs.BMD), def.GfxPalette[0], mode)
	return load(manager, key, func() (*Sprite, error) {
		palette, err := manager.Palette(def.GfxPalette[0])
		if err != nil {
			return nil, err
		}
		frames, images, err := manager.frames(ctx, def.GfxBobLibs.BMD, palette, mode)
		if err != nil {
			return nil, err
		}
		sprite := &Sprite{Frames: frames, Images: images}
		if def.GfxBobLibs.Shadow != "" {
			if _, sprite.Shadows, err = manager.frames(ctx, def.GfxBobLibs.Shadow, palette, mode); err != nil {
				return nil, err
			}
		}
		return sprite, nil
	})
}

func (manager *Manager) frames(ctx context.Context, path string, palette pal.Palette, mode bmd.AlphaMode) ([]bmd.Frame, []*image.NRGBA, error) {
	data, err := manager.read(path)
	if err != nil {
		return nil, nil, err
	}
	decoder, err := bmd.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("sprite %s: %w", path, err)
	}

	frames := decoder.Frames()
	images := make([]*image.NRGBA, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := decoder.Frame(i, palette, mode)
			if err != nil {
				return fmt.Errorf("sprite %s: %w", path, err)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return frames, images, nil
}

// Map decodes a map file.
func (manager *Manager) Map(path string) (*mapfile.MapData, error) {
	return load(manager, "map:"+archive.Key(path), func() (*mapfile.MapData, error) {
		data, err := manager.read(path)
		if err != nil {
			return nil, err
		}
		decoder, err := mapfile.NewDecoder(bytes.NewReader(data), manager.encoding)
		if err != nil {
			return nil, fmt.Errorf("map %s: %w", path, err)
		}
		m, err := decoder.MapData()
		if err != nil {
			return nil, fmt.Errorf("map %s: %w", path, err)
		}
		return m, nil
	})
}
