package raineffect

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Screenshot queues a labeled capture of the next presented frame. The PNG is
// written to Config.ScreenshotDir with a timestamped file name at the end of
// the next Draw.
func (e *Engine) Screenshot(label string) {
	e.mustLive("Screenshot")
	e.screenshotQueue = append(e.screenshotQueue, label)
}

// flushScreenshots writes the frame once for every queued label.
func (e *Engine) flushScreenshots(frame []byte) {
	if len(e.screenshotQueue) == 0 {
		return
	}
	defer func() { e.screenshotQueue = e.screenshotQueue[:0] }()

	dir := e.cfg.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[raineffect] screenshot: mkdir %s: %v\n", dir, err)
		return
	}

	w, h := e.comp.Size()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, frame)

	stamp := e.cfg.Now().Format("20060102_150405")
	for _, label := range e.screenshotQueue {
		name := fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label))
		if err := writePNG(filepath.Join(dir, name), img); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "[raineffect] screenshot: %v\n", err)
		}
	}
}

// WritePNG encodes a straight-alpha RGBA frame of the given size to path.
func WritePNG(path string, w, h int, frame []byte) error {
	if len(frame) != w*h*4 {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(frame), w*h*4)
	}
	img := &image.NRGBA{Pix: frame, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	return writePNG(path, img)
}

func writePNG(path string, img *image.NRGBA) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// sanitizeLabel maps a screenshot label to a file-name fragment: ASCII
// letters, digits, '-' and '.' survive, anything else becomes '_'.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.') {
			return r
		}
		return '_'
	}, label)
}
