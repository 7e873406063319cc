package raineffect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"runtime"
	"slices"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrDecodeTexture is returned when an image file cannot be decoded.
	ErrDecodeTexture = errors.New("raineffect: cannot decode texture")
	// ErrMalformedManifest is returned for manifests that are not a JSON
	// object of strings or that name unknown images.
	ErrMalformedManifest = errors.New("raineffect: malformed texture manifest")
)

const (
	keyDropAlpha = "dropAlpha"
	keyDropColor = "dropColor"

	layerForeground = "Fg"
	layerBackground = "Bg"
)

func manifestKey(w Weather, layer string) string {
	return w.String() + layer
}

// ManifestKeys lists every key a complete manifest must define.
func ManifestKeys() []string {
	keys := []string{keyDropAlpha, keyDropColor}
	for _, w := range Weathers() {
		keys = append(keys, manifestKey(w, layerForeground), manifestKey(w, layerBackground))
	}
	return keys
}

// Manifest maps image keys ("dropAlpha", "dropColor", "rainFg", "rainBg",
// "stormFg", ...) to file paths.
type Manifest map[string]string

// ParseManifest reads a manifest from a JSON object of key to path.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedManifest, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: empty manifest", ErrMalformedManifest)
	}
	return m, m.Validate()
}

// Validate reports unknown keys and empty paths. Missing keys are reported at
// load time as ErrMissingTexture.
func (m Manifest) Validate() error {
	known := ManifestKeys()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if !slices.Contains(known, k) {
			if s := suggest(k, known); s != "" {
				return fmt.Errorf("%w: unknown key %q (did you mean %q?)", ErrMalformedManifest, k, s)
			}
			return fmt.Errorf("%w: unknown key %q", ErrMalformedManifest, k)
		}
		if m[k] == "" {
			return fmt.Errorf("%w: empty path for %q", ErrMalformedManifest, k)
		}
	}
	return nil
}

// ManifestProvider loads the images named by a manifest from a file system.
// Images are decoded concurrently; PNG, JPEG, GIF, WebP and BMP are
// supported.
type ManifestProvider struct {
	FS       fs.FS
	Manifest Manifest
}

// LoadTextures decodes every image and validates the result. The first
// failure cancels the remaining decodes.
func (p ManifestProvider) LoadTextures(ctx context.Context) (*Textures, error) {
	if p.FS == nil {
		return nil, fmt.Errorf("%w: no file system", ErrMissingTexture)
	}
	if err := p.Manifest.Validate(); err != nil {
		return nil, err
	}

	keys := ManifestKeys()
	for _, key := range keys {
		if _, ok := p.Manifest[key]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTexture, key)
		}
	}

	loaded := make([]*Texture, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, key := range keys {
		path := p.Manifest[key]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tex, err := decodeTexture(p.FS, key, path)
			if err != nil {
				return err
			}
			loaded[i] = tex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t := &Textures{Maps: DropletMaps{Alpha: loaded[0], Color: loaded[1]}}
	for i, w := range Weathers() {
		t.Sets[w] = TextureSet{Foreground: loaded[2+2*i], Background: loaded[3+2*i]}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeTexture(fsys fs.FS, key, path string) (*Texture, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMissingTexture, key, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s): %w", ErrDecodeTexture, key, path, err)
	}
	return NewTextureFromImage(img), nil
}
