package raineffect

import (
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrFrameSize is returned by Surface.Present when the frame does not match
// the surface size.
var ErrFrameSize = errors.New("raineffect: frame does not match surface size")

// Surface is the output the engine draws into. Present receives a
// straight-alpha RGBA frame of Size() pixels and must not retain it.
type Surface interface {
	Size() (w, h int)
	Present(pix []byte) error
}

// ImageSurface is an in-memory Surface backed by an *image.NRGBA.
type ImageSurface struct {
	Image *image.NRGBA
}

// NewImageSurface allocates a w×h image surface.
func NewImageSurface(w, h int) *ImageSurface {
	return &ImageSurface{Image: image.NewNRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))}
}

// Size returns the image size.
func (s *ImageSurface) Size() (int, int) {
	if s == nil || s.Image == nil {
		return 0, 0
	}
	b := s.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Present copies the frame into the image.
func (s *ImageSurface) Present(pix []byte) error {
	w, h := s.Size()
	if len(pix) != w*h*4 {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(pix), w*h*4)
	}
	for y := range h {
		row := s.Image.Pix[y*s.Image.Stride : y*s.Image.Stride+w*4]
		copy(row, pix[y*w*4:(y+1)*w*4])
	}
	return nil
}

// EbitenSurface uploads frames to an ebiten image. Ebiten expects
// premultiplied alpha, so frames are converted on the way in.
type EbitenSurface struct {
	Image *ebiten.Image
	buf   []byte
}

// NewEbitenSurface wraps img.
func NewEbitenSurface(img *ebiten.Image) *EbitenSurface {
	return &EbitenSurface{Image: img}
}

// Size returns the image bounds size.
func (s *EbitenSurface) Size() (int, int) {
	if s == nil || s.Image == nil {
		return 0, 0
	}
	b := s.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Present premultiplies the frame and writes it to the image.
func (s *EbitenSurface) Present(pix []byte) error {
	w, h := s.Size()
	if len(pix) != w*h*4 {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(pix), w*h*4)
	}
	if len(s.buf) != len(pix) {
		s.buf = make([]byte, len(pix))
	}
	premultiply(s.buf, pix)
	s.Image.WritePixels(s.buf)
	return nil
}

// premultiply converts straight-alpha RGBA in src to premultiplied RGBA in
// dst.
func premultiply(dst, src []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		a := int(src[i+3])
		switch a {
		case 255:
			copy(dst[i:i+4], src[i:i+4])
		case 0:
			dst[i], dst[i+1], dst[i+2], dst[i+3] = 0, 0, 0, 0
		default:
			dst[i] = uint8((int(src[i])*a + 127) / 255)
			dst[i+1] = uint8((int(src[i+1])*a + 127) / 255)
			dst[i+2] = uint8((int(src[i+2])*a + 127) / 255)
			dst[i+3] = uint8(a)
		}
	}
}
