package raineffect

import (
	"math"
	"math/rand/v2"
)

type gradient struct {
	top, bottom [3]float64
	overlay     [4]float64 // foreground tint with straight alpha
}

var weatherGradients = [weatherCount]gradient{
	Rain:    {top: [3]float64{70, 90, 120}, bottom: [3]float64{30, 40, 60}, overlay: [4]float64{20, 30, 45, 40}},
	Storm:   {top: [3]float64{40, 45, 60}, bottom: [3]float64{10, 12, 20}, overlay: [4]float64{235, 240, 255, 200}},
	Drizzle: {top: [3]float64{150, 160, 170}, bottom: [3]float64{90, 100, 110}, overlay: [4]float64{200, 205, 210, 30}},
	Fallout: {top: [3]float64{120, 140, 60}, bottom: [3]float64{60, 70, 30}, overlay: [4]float64{90, 110, 20, 50}},
	Sun:     {top: [3]float64{250, 200, 120}, bottom: [3]float64{120, 170, 220}, overlay: [4]float64{255, 240, 200, 20}},
}

// GenerateTextures builds a complete procedural texture bundle: a noisy
// vertical gradient background and a vignette foreground for every weather,
// plus round droplet maps of dropSize pixels. The storm foreground is a pale
// sheet that reads as lightning when its opacity flickers.
func GenerateTextures(w, h, dropSize int, seed uint64) *Textures {
	w, h = max(w, 1), max(h, 1)
	dropSize = max(dropSize, 2)
	rng := rand.New(rand.NewPCG(seed, 0))

	t := &Textures{Maps: generateDropletMaps(dropSize)}
	for _, weather := range Weathers() {
		g := weatherGradients[weather]
		t.Sets[weather] = TextureSet{
			Foreground: generateForeground(w, h, g, weather == Storm),
			Background: generateBackground(w, h, g, rng),
		}
	}
	return t
}

func generateBackground(w, h int, g gradient, rng *rand.Rand) *Texture {
	tex := NewTexture(w, h)
	for y := range h {
		v := float64(y) / float64(max(h-1, 1))
		for x := range w {
			n := (rng.Float64() - 0.5) * 16
			i := (y*w + x) * 4
			for c := range 3 {
				tex.Pix[i+c] = toByte(lerp(g.top[c], g.bottom[c], v) + n)
			}
			tex.Pix[i+3] = 255
		}
	}
	return tex
}

func generateForeground(w, h int, g gradient, uniform bool) *Texture {
	tex := NewTexture(w, h)
	cx, cy := float64(w)/2, float64(h)/2
	maxDist := math.Hypot(cx, cy)
	for y := range h {
		for x := range w {
			a := g.overlay[3]
			if !uniform {
				d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) / maxDist
				a *= d * d
			}
			i := (y*w + x) * 4
			tex.Pix[i] = toByte(g.overlay[0])
			tex.Pix[i+1] = toByte(g.overlay[1])
			tex.Pix[i+2] = toByte(g.overlay[2])
			tex.Pix[i+3] = toByte(a)
		}
	}
	return tex
}

// generateDropletMaps draws a disc with a soft rim. The color map points
// every pixel back through the center so the refracted background appears
// flipped, as it does through a real lens.
func generateDropletMaps(size int) DropletMaps {
	alpha := NewTexture(size, size)
	color := NewTexture(size, size)
	r := float64(size) / 2
	for y := range size {
		for x := range size {
			lx := (float64(x) + 0.5 - r) / r
			ly := (float64(y) + 0.5 - r) / r
			d := math.Hypot(lx, ly)
			i := (y*size + x) * 4

			cov := clamp01((1 - d) * 4)
			alpha.Pix[i], alpha.Pix[i+1], alpha.Pix[i+2] = 255, 255, 255
			alpha.Pix[i+3] = toByte(cov * 255)

			color.Pix[i] = toByte(128 - lx*127)
			color.Pix[i+1] = toByte(128 - ly*127)
			color.Pix[i+2] = 128
			color.Pix[i+3] = 255
		}
	}
	return DropletMaps{Alpha: alpha, Color: color}
}

// toByte rounds v to the nearest byte, clamping to [0, 255].
func toByte(v float64) byte {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v + 0.5)
}
