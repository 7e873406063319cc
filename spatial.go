package raineffect

import "math"

// minBucketSize keeps the grid from exploding when only tiny droplets exist.
const minBucketSize = 4.0

// bucketGrid is a uniform grid over the surface used to find merge
// candidates. It is rebuilt every step with a counting sort into flat slices,
// so after warmup a rebuild does not allocate. Positions outside the surface
// are clamped into the edge cells; queries compare true distances, so
// clamping only adds candidates.
type bucketGrid struct {
	cell       float64
	cols, rows int
	start      []int32 // prefix offsets into items, len cols*rows+1
	cursor     []int32 // fill cursor per cell
	items      []DropletID
	cellOf     []int32 // cell index per pool slot, -1 when not bucketed
}

// rebuild sizes the grid for the given surface and cell size and buckets
// every live, non-evaporating droplet in the pool. Each cell lists its ids in
// ascending order.
func (g *bucketGrid) rebuild(p *Pool, w, h, cell float64) {
	if !(cell >= minBucketSize) {
		cell = minBucketSize
	}
	g.cell = cell
	g.cols = max(1, int(math.Ceil(w/cell)))
	g.rows = max(1, int(math.Ceil(h/cell)))
	n := g.cols * g.rows

	g.start = resizeInt32(g.start, n+1)
	clear(g.start)
	g.cursor = resizeInt32(g.cursor, n)
	g.cellOf = resizeInt32(g.cellOf, p.Cap())
	for i := range g.cellOf {
		g.cellOf[i] = -1
	}

	count := 0
	for id, d := range p.All() {
		if d.State == Evaporating {
			continue
		}
		c := int32(g.index(d.Pos))
		g.cellOf[id] = c
		g.start[c+1]++
		count++
	}
	for i := 1; i <= n; i++ {
		g.start[i] += g.start[i-1]
	}

	if cap(g.items) < count {
		g.items = make([]DropletID, count)
	}
	g.items = g.items[:count]
	copy(g.cursor, g.start[:n])
	for id, c := range g.cellOf {
		if c < 0 {
			continue
		}
		g.items[g.cursor[c]] = DropletID(id)
		g.cursor[c]++
	}
}

// cellCoords returns the clamped cell column and row containing pos.
func (g *bucketGrid) cellCoords(pos Vec2) (int, int) {
	cx := int(math.Floor(pos.X / g.cell))
	cy := int(math.Floor(pos.Y / g.cell))
	return min(max(cx, 0), g.cols-1), min(max(cy, 0), g.rows-1)
}

func (g *bucketGrid) index(pos Vec2) int {
	cx, cy := g.cellCoords(pos)
	return cy*g.cols + cx
}

// neighbors calls fn for every bucketed id in the 3x3 block of cells around
// pos until fn returns false.
func (g *bucketGrid) neighbors(pos Vec2, fn func(DropletID) bool) {
	cx, cy := g.cellCoords(pos)
	for y := max(cy-1, 0); y <= min(cy+1, g.rows-1); y++ {
		for x := max(cx-1, 0); x <= min(cx+1, g.cols-1); x++ {
			c := y*g.cols + x
			for _, id := range g.items[g.start[c]:g.start[c+1]] {
				if !fn(id) {
					return
				}
			}
		}
	}
}

// resizeInt32 returns s with length n, reusing its backing array when large
// enough.
func resizeInt32(s []int32, n int) []int32 {
	if cap(s) < n {
		return make([]int32, n)
	}
	return s[:n]
}
