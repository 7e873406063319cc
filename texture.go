package raineffect

import (
	"context"
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

var (
	// ErrMissingTexture is returned when a required image is absent.
	ErrMissingTexture = errors.New("raineffect: missing texture")
	// ErrResolutionMismatch is returned when images that must share a size
	// do not.
	ErrResolutionMismatch = errors.New("raineffect: texture resolution mismatch")
)

// Texture is an immutable straight-alpha RGBA pixel grid. Pix holds
// Width*Height*4 bytes, row-major, with no padding between rows.
type Texture struct {
	Width, Height int
	Pix           []byte
}

// NewTexture allocates a transparent texture of the given size.
func NewTexture(w, h int) *Texture {
	w, h = max(w, 0), max(h, 0)
	return &Texture{Width: w, Height: h, Pix: make([]byte, w*h*4)}
}

// NewTextureFromImage converts any image to a straight-alpha texture. The
// image bounds are translated so the texture starts at (0, 0).
func NewTextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && n.Stride == b.Dx()*4 {
		pix := make([]byte, b.Dx()*b.Dy()*4)
		copy(pix, n.Pix)
		return &Texture{Width: b.Dx(), Height: b.Dy(), Pix: pix}
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Texture{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}

// Image returns an *image.NRGBA view sharing the texture's pixels.
func (t *Texture) Image() *image.NRGBA {
	return &image.NRGBA{Pix: t.Pix, Stride: t.Width * 4, Rect: image.Rect(0, 0, t.Width, t.Height)}
}

// Scale returns a bilinear resample of t at the given size.
func (t *Texture) Scale(w, h int) *Texture {
	src := t.Image()
	dst := image.NewNRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return &Texture{Width: dst.Rect.Dx(), Height: dst.Rect.Dy(), Pix: dst.Pix}
}

func (t *Texture) valid() bool {
	return t != nil && t.Width > 0 && t.Height > 0 && len(t.Pix) >= t.Width*t.Height*4
}

func (t *Texture) sameSize(o *Texture) bool {
	return t.Width == o.Width && t.Height == o.Height
}

// TextureSet is the image pair for one weather.
type TextureSet struct {
	Foreground *Texture
	Background *Texture
}

// DropletMaps holds the shared droplet images. Alpha's alpha channel is the
// droplet coverage; Color's red and green channels encode the refraction
// offset, with 128 meaning no displacement.
type DropletMaps struct {
	Alpha *Texture
	Color *Texture
}

// TextureProvider supplies fully decoded textures before the engine starts.
type TextureProvider interface {
	LoadTextures(ctx context.Context) (*Textures, error)
}

// Textures is the complete texture bundle: one TextureSet per weather and the
// shared droplet maps. A Textures value is itself a TextureProvider.
type Textures struct {
	Sets [weatherCount]TextureSet
	Maps DropletMaps
}

// Set returns the texture set for w.
func (t *Textures) Set(w Weather) *TextureSet {
	return &t.Sets[w]
}

// LoadTextures validates t and returns it.
func (t *Textures) LoadTextures(ctx context.Context) (*Textures, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that every image is present, that all weather images
// share one resolution, and that the droplet maps match each other.
func (t *Textures) Validate() error {
	var ref *Texture
	for i := range t.Sets {
		w := Weather(i)
		s := &t.Sets[i]
		for _, l := range []struct {
			name string
			tex  *Texture
		}{
			{manifestKey(w, layerForeground), s.Foreground},
			{manifestKey(w, layerBackground), s.Background},
		} {
			if !l.tex.valid() {
				return fmt.Errorf("%w: %s", ErrMissingTexture, l.name)
			}
			if ref == nil {
				ref = l.tex
			} else if !l.tex.sameSize(ref) {
				return fmt.Errorf("%w: %s is %dx%d, want %dx%d", ErrResolutionMismatch,
					l.name, l.tex.Width, l.tex.Height, ref.Width, ref.Height)
			}
		}
	}
	if !t.Maps.Alpha.valid() {
		return fmt.Errorf("%w: %s", ErrMissingTexture, keyDropAlpha)
	}
	if !t.Maps.Color.valid() {
		return fmt.Errorf("%w: %s", ErrMissingTexture, keyDropColor)
	}
	if !t.Maps.Alpha.sameSize(t.Maps.Color) {
		return fmt.Errorf("%w: %s is %dx%d, %s is %dx%d", ErrResolutionMismatch,
			keyDropAlpha, t.Maps.Alpha.Width, t.Maps.Alpha.Height,
			keyDropColor, t.Maps.Color.Width, t.Maps.Color.Height)
	}
	return nil
}
