package raineffect

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"
	"testing/fstest"
)

func encodePNG(t *testing.T, tex *Texture) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, tex.Image()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

// testAssets returns a file system holding a complete texture set and the
// manifest describing it.
func testAssets(t *testing.T) (fstest.MapFS, Manifest) {
	t.Helper()
	tex := GenerateTextures(8, 6, 4, 1)
	fsys := fstest.MapFS{}
	m := Manifest{}
	add := func(key string, tx *Texture) {
		path := "img/" + key + ".png"
		fsys[path] = &fstest.MapFile{Data: encodePNG(t, tx)}
		m[key] = path
	}
	add("dropAlpha", tex.Maps.Alpha)
	add("dropColor", tex.Maps.Color)
	for _, w := range Weathers() {
		add(w.String()+"Fg", tex.Set(w).Foreground)
		add(w.String()+"Bg", tex.Set(w).Background)
	}
	return fsys, m
}

func TestManifestKeys(t *testing.T) {
	keys := ManifestKeys()
	if len(keys) != 12 {
		t.Fatalf("len = %d, want 12", len(keys))
	}
	for _, want := range []string{"dropAlpha", "dropColor", "rainFg", "stormBg", "sunFg", "drizzleBg", "falloutFg"} {
		found := false
		for _, k := range keys {
			if k == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing key %q", want)
		}
	}
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`{"dropAlpha": "img/drop-alpha.png", "rainFg": "img/rain-fg.png"}`))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if m["dropAlpha"] != "img/drop-alpha.png" {
		t.Errorf("dropAlpha = %q", m["dropAlpha"])
	}
}

func TestParseManifestErrors(t *testing.T) {
	tests := []struct {
		name, data, substr string
	}{
		{"not json", `not json`, ""},
		{"not an object", `["a"]`, ""},
		{"null", `null`, "empty"},
		{"unknown key", `{"stromFg": "a.png"}`, `did you mean "stormFg"`},
		{"empty path", `{"rainBg": ""}`, "empty path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.data))
			if !errors.Is(err, ErrMalformedManifest) {
				t.Fatalf("err = %v, want ErrMalformedManifest", err)
			}
			if tt.substr != "" && !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("err = %q, want it to contain %q", err, tt.substr)
			}
		})
	}
}

func TestManifestProviderLoads(t *testing.T) {
	fsys, m := testAssets(t)
	tex, err := ManifestProvider{FS: fsys, Manifest: m}.LoadTextures(context.Background())
	if err != nil {
		t.Fatalf("LoadTextures: %v", err)
	}
	want := GenerateTextures(8, 6, 4, 1)
	for _, w := range Weathers() {
		if !bytes.Equal(tex.Set(w).Background.Pix, want.Set(w).Background.Pix) {
			t.Errorf("%v background differs after decode", w)
		}
	}
	if tex.Maps.Alpha.Width != 4 || tex.Maps.Color.Height != 4 {
		t.Errorf("droplet maps = %dx%d, want 4x4", tex.Maps.Alpha.Width, tex.Maps.Color.Height)
	}
}

func TestManifestProviderErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		fsys, m := testAssets(t)
		delete(m, "stormBg")
		_, err := ManifestProvider{FS: fsys, Manifest: m}.LoadTextures(context.Background())
		if !errors.Is(err, ErrMissingTexture) || !strings.Contains(err.Error(), "stormBg") {
			t.Errorf("err = %v, want ErrMissingTexture naming stormBg", err)
		}
	})
	t.Run("missing file", func(t *testing.T) {
		fsys, m := testAssets(t)
		delete(fsys, m["rainFg"])
		_, err := ManifestProvider{FS: fsys, Manifest: m}.LoadTextures(context.Background())
		if !errors.Is(err, ErrMissingTexture) {
			t.Errorf("err = %v, want ErrMissingTexture", err)
		}
	})
	t.Run("undecodable", func(t *testing.T) {
		fsys, m := testAssets(t)
		fsys[m["dropColor"]] = &fstest.MapFile{Data: []byte("not an image")}
		_, err := ManifestProvider{FS: fsys, Manifest: m}.LoadTextures(context.Background())
		if !errors.Is(err, ErrDecodeTexture) {
			t.Errorf("err = %v, want ErrDecodeTexture", err)
		}
	})
	t.Run("resolution mismatch", func(t *testing.T) {
		fsys, m := testAssets(t)
		fsys[m["sunBg"]] = &fstest.MapFile{Data: encodePNG(t, NewTexture(3, 3))}
		_, err := ManifestProvider{FS: fsys, Manifest: m}.LoadTextures(context.Background())
		if !errors.Is(err, ErrResolutionMismatch) {
			t.Errorf("err = %v, want ErrResolutionMismatch", err)
		}
	})
	t.Run("no file system", func(t *testing.T) {
		_, m := testAssets(t)
		_, err := ManifestProvider{Manifest: m}.LoadTextures(context.Background())
		if !errors.Is(err, ErrMissingTexture) {
			t.Errorf("err = %v, want ErrMissingTexture", err)
		}
	})
	t.Run("cancelled", func(t *testing.T) {
		fsys, m := testAssets(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ManifestProvider{FS: fsys, Manifest: m}.LoadTextures(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}
