package raineffect

import "math"

// CompositorOptions tune the droplet rendering. A zero value selects
// DefaultCompositorOptions.
type CompositorOptions struct {
	// RefractionStrength scales the color-map offset, in droplet radii.
	RefractionStrength float64
	// Brightness multiplies the refracted background sample.
	Brightness float64
	// AlphaMultiply and AlphaSubtract reshape the mask coverage before it is
	// clamped: a' = mask*AlphaMultiply - AlphaSubtract. Larger values give
	// droplets harder rims.
	AlphaMultiply float64
	AlphaSubtract float64
}

// DefaultCompositorOptions returns the standard render options.
func DefaultCompositorOptions() CompositorOptions {
	return CompositorOptions{
		RefractionStrength: 0.35,
		Brightness:         1,
		AlphaMultiply:      1,
		AlphaSubtract:      0,
	}
}

func (o CompositorOptions) withDefaults() CompositorOptions {
	if o == (CompositorOptions{}) {
		return DefaultCompositorOptions()
	}
	return o
}

// Frame is everything the compositor needs besides the droplets.
type Frame struct {
	// Current is the committed weather's textures. Required.
	Current *TextureSet
	// Target is the weather being blended toward, or nil.
	Target *TextureSet
	// Blend is the weight of Target in [0, 1].
	Blend float64
	Maps  DropletMaps
	// ForegroundOpacity scales the alpha of the current and target
	// foregrounds. Lightning flicker lives here.
	ForegroundOpacity [2]float64
}

// resampleTable maps output pixels to source byte offsets for nearest
// neighbour sampling.
type resampleTable struct {
	srcW, srcH int
	xs         []int // byte offset within a source row per output column
	ys         []int // byte offset of the source row per output row
}

// Compositor renders frames into an internal straight-alpha RGBA buffer of a
// fixed size. Buffers are allocated once; Render does not allocate after the
// first frame. A Compositor is not safe for concurrent use.
type Compositor struct {
	w, h   int
	opts   CompositorOptions
	base   []byte // blended, resampled background
	out    []byte
	tables []resampleTable
}

// NewCompositor creates a compositor for a w×h output.
func NewCompositor(w, h int, opts CompositorOptions) *Compositor {
	w, h = max(w, 1), max(h, 1)
	return &Compositor{
		w:    w,
		h:    h,
		opts: opts.withDefaults(),
		base: make([]byte, w*h*4),
		out:  make([]byte, w*h*4),
	}
}

// Size returns the output size in pixels.
func (c *Compositor) Size() (int, int) {
	return c.w, c.h
}

// Options returns the render options in use.
func (c *Compositor) Options() CompositorOptions {
	return c.opts
}

// Frame returns the most recently rendered buffer.
func (c *Compositor) Frame() []byte {
	return c.out
}

// Render composites the background, every visible droplet in ascending id
// order, and the foreground. The result depends only on the frame and the
// pool contents, so identical inputs yield identical bytes. The returned
// slice is owned by the compositor and overwritten by the next Render.
func (c *Compositor) Render(f Frame, pool *Pool) []byte {
	if f.Current == nil || !f.Current.Background.valid() {
		clear(c.out)
		return c.out
	}
	blend := clamp01(f.Blend)
	target := f.Target
	if target != nil && (blend <= 0 || !target.Background.valid()) {
		target = nil
	}

	c.renderBase(f.Current.Background, target, blend)
	copy(c.out, c.base)
	if pool != nil && f.Maps.Alpha.valid() && f.Maps.Color.valid() {
		for _, d := range pool.All() {
			c.renderDroplet(d, f.Maps)
		}
	}
	c.renderForeground(f, target, blend)
	return c.out
}

// table returns the resample table for a source size, building it on first
// use.
func (c *Compositor) table(sw, sh int) *resampleTable {
	for i := range c.tables {
		if c.tables[i].srcW == sw && c.tables[i].srcH == sh {
			return &c.tables[i]
		}
	}
	t := resampleTable{srcW: sw, srcH: sh, xs: make([]int, c.w), ys: make([]int, c.h)}
	for x := range c.w {
		t.xs[x] = min((2*x+1)*sw/(2*c.w), sw-1) * 4
	}
	for y := range c.h {
		t.ys[y] = min((2*y+1)*sh/(2*c.h), sh-1) * sw * 4
	}
	c.tables = append(c.tables, t)
	return &c.tables[len(c.tables)-1]
}

// renderBase writes the background, cross-faded toward target by blend, at
// output resolution.
func (c *Compositor) renderBase(cur *Texture, target *TextureSet, blend float64) {
	ct := c.table(cur.Width, cur.Height)
	var tt *resampleTable
	var tp []byte
	if target != nil {
		tt = c.table(target.Background.Width, target.Background.Height)
		tp = target.Background.Pix
	}
	wt := int(blend*256 + 0.5)

	i := 0
	for y := range c.h {
		for x := range c.w {
			s := ct.ys[y] + ct.xs[x]
			if tt == nil {
				copy(c.base[i:i+4], cur.Pix[s:s+4])
			} else {
				u := tt.ys[y] + tt.xs[x]
				for ch := range 4 {
					a, b := int(cur.Pix[s+ch]), int(tp[u+ch])
					c.base[i+ch] = byte((a*(256-wt) + b*wt) >> 8)
				}
			}
			i += 4
		}
	}
}

// renderDroplet refracts the base through one droplet into the output.
func (c *Compositor) renderDroplet(d *Droplet, maps DropletMaps) {
	opacity := d.Opacity()
	r := d.Radius
	if opacity <= 0 || !(r > 0) {
		return
	}
	box := d.Bounds()
	if !box.Overlaps(Rect{Width: float64(c.w), Height: float64(c.h)}) {
		return
	}
	left, top := box.X, box.Y
	x0, y0, x1, y1 := box.pixelSpan(c.w, c.h)

	mw, mh := maps.Alpha.Width, maps.Alpha.Height
	cw, ch := maps.Color.Width, maps.Color.Height
	diam := box.Width
	disp := c.opts.RefractionStrength * r
	o := c.opts

	for py := y0; py < y1; py++ {
		v := (float64(py) + 0.5 - top) / diam
		my := clampInt(int(v*float64(mh)), 0, mh-1)
		cy := clampInt(int(v*float64(ch)), 0, ch-1)
		for px := x0; px < x1; px++ {
			u := (float64(px) + 0.5 - left) / diam
			mx := clampInt(int(u*float64(mw)), 0, mw-1)
			mask := float64(maps.Alpha.Pix[(my*mw+mx)*4+3]) / 255
			a := clamp01(mask*o.AlphaMultiply-o.AlphaSubtract) * opacity
			if a <= 0 {
				continue
			}

			cx := clampInt(int(u*float64(cw)), 0, cw-1)
			ci := (cy*cw + cx) * 4
			ox := float64(maps.Color.Pix[ci])/255*2 - 1
			oy := float64(maps.Color.Pix[ci+1])/255*2 - 1
			sx := clampInt(int(math.Round(float64(px)+ox*disp)), 0, c.w-1)
			sy := clampInt(int(math.Round(float64(py)+oy*disp)), 0, c.h-1)

			si := (sy*c.w + sx) * 4
			di := (py*c.w + px) * 4
			for k := range 3 {
				s := float64(c.base[si+k]) * o.Brightness
				c.out[di+k] = toByte(float64(c.out[di+k])*(1-a) + s*a)
			}
			da := float64(c.out[di+3])
			c.out[di+3] = toByte(da + (255-da)*a)
		}
	}
}

// renderForeground composites the foreground layer with straight alpha over
// the output. The two foregrounds are cross-faded in premultiplied space so a
// transparent side does not tint the other.
func (c *Compositor) renderForeground(f Frame, target *TextureSet, blend float64) {
	cur := f.Current.Foreground
	if !cur.valid() {
		return
	}
	op0 := clamp01(f.ForegroundOpacity[0])
	op1 := clamp01(f.ForegroundOpacity[1])
	ct := c.table(cur.Width, cur.Height)
	var tgt *Texture
	var tt *resampleTable
	if target != nil && target.Foreground.valid() {
		tgt = target.Foreground
		tt = c.table(tgt.Width, tgt.Height)
	} else {
		blend = 0
	}
	if op0 <= 0 && (tgt == nil || op1 <= 0) {
		return
	}

	i := 0
	for y := range c.h {
		for x := range c.w {
			s := ct.ys[y] + ct.xs[x]
			fa := float64(cur.Pix[s+3]) / 255 * op0
			pr := float64(cur.Pix[s]) * fa
			pg := float64(cur.Pix[s+1]) * fa
			pb := float64(cur.Pix[s+2]) * fa
			if tgt != nil {
				u := tt.ys[y] + tt.xs[x]
				ta := float64(tgt.Pix[u+3]) / 255 * op1
				pr = lerp(pr, float64(tgt.Pix[u])*ta, blend)
				pg = lerp(pg, float64(tgt.Pix[u+1])*ta, blend)
				pb = lerp(pb, float64(tgt.Pix[u+2])*ta, blend)
				fa = lerp(fa, ta, blend)
			}
			if fa > 0 {
				c.out[i] = toByte(float64(c.out[i])*(1-fa) + pr)
				c.out[i+1] = toByte(float64(c.out[i+1])*(1-fa) + pg)
				c.out[i+2] = toByte(float64(c.out[i+2])*(1-fa) + pb)
				da := float64(c.out[i+3])
				c.out[i+3] = toByte(da + (255-da)*fa)
			}
			i += 4
		}
	}
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
