// Package voxel renders features as blocks on an integer grid.
package voxel

import (
	"math"
	"sort"
)

// Air is the pattern used to carve holes.
const Air = "air"

// Pos is a block position; Y points up.
type Pos struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

// At floors a projected position and elevation into a block position.
func At(x, y, elevation float64) Pos {
	return Pos{X: int(math.Floor(x)), Y: int(math.Floor(elevation)), Z: int(math.Floor(y))}
}

// Region is a polygon on the horizontal plane spanning MinY..MaxY inclusive.
type Region struct {
	Points []Pos
	MinY   int
	MaxY   int
}

// Session is the block editing surface. Counts report changed blocks.
type Session interface {
	SetBlock(pos Pos, pattern string) bool
	DrawLine(pattern string, points []Pos, radius float64, filled bool) int
	MakeSphere(center Pos, pattern string, radius float64, filled bool) int
	SetBlocks(region Region, pattern string) int
}

// Buffer is an in-memory Session that records every block and the bounds
// of everything written.
type Buffer struct {
	blocks   map[Pos]string
	min, max Pos
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{blocks: make(map[Pos]string)}
}

// Len returns the number of buffered blocks, air included.
func (b *Buffer) Len() int {
	return len(b.blocks)
}

// Bounds returns the inclusive bounding box. ok is false when empty.
func (b *Buffer) Bounds() (lo, hi Pos, ok bool) {
	return b.min, b.max, len(b.blocks) > 0
}

// Get returns the pattern at pos.
func (b *Buffer) Get(pos Pos) (string, bool) {
	p, ok := b.blocks[pos]
	return p, ok
}

// Positions lists buffered positions ordered by Y, then Z, then X.
func (b *Buffer) Positions() []Pos {
	out := make([]Pos, 0, len(b.blocks))
	for p := range b.blocks {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		if out[i].Z != out[j].Z {
			return out[i].Z < out[j].Z
		}
		return out[i].X < out[j].X
	})
	return out
}

func (b *Buffer) include(p Pos) {
	if len(b.blocks) == 0 {
		b.min, b.max = p, p
		return
	}
	b.min = Pos{min(b.min.X, p.X), min(b.min.Y, p.Y), min(b.min.Z, p.Z)}
	b.max = Pos{max(b.max.X, p.X), max(b.max.Y, p.Y), max(b.max.Z, p.Z)}
}

// SetBlock implements Session.
func (b *Buffer) SetBlock(pos Pos, pattern string) bool {
	b.include(pos)
	b.blocks[pos] = pattern
	return true
}

// DrawLine implements Session. Consecutive points are joined with a 3D
// digital line; a positive radius thickens it into spheres, hollow unless
// filled.
func (b *Buffer) DrawLine(pattern string, points []Pos, radius float64, filled bool) int {
	set := make(map[Pos]struct{})
	for i := range points {
		if i == 0 {
			set[points[0]] = struct{}{}
			continue
		}
		for _, p := range segment(points[i-1], points[i]) {
			set[p] = struct{}{}
		}
	}
	if radius > 0 {
		set = balloon(set, radius)
		if !filled {
			set = hollow(set)
		}
	}
	return b.apply(set, pattern)
}

// MakeSphere implements Session.
func (b *Buffer) MakeSphere(center Pos, pattern string, radius float64, filled bool) int {
	set := balloon(map[Pos]struct{}{center: {}}, radius)
	if !filled {
		set = hollow(set)
	}
	return b.apply(set, pattern)
}

// SetBlocks implements Session.
func (b *Buffer) SetBlocks(region Region, pattern string) int {
	if len(region.Points) < 3 {
		return 0
	}
	minX, maxX := region.Points[0].X, region.Points[0].X
	minZ, maxZ := region.Points[0].Z, region.Points[0].Z
	for _, p := range region.Points[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minZ, maxZ = min(minZ, p.Z), max(maxZ, p.Z)
	}

	n := 0
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			if !region.contains(x, z) {
				continue
			}
			for y := region.MinY; y <= region.MaxY; y++ {
				b.SetBlock(Pos{x, y, z}, pattern)
				n++
			}
		}
	}
	return n
}

func (b *Buffer) apply(set map[Pos]struct{}, pattern string) int {
	for p := range set {
		b.SetBlock(p, pattern)
	}
	return len(set)
}

// contains is an even-odd test on X/Z with boundary points included.
func (r Region) contains(x, z int) bool {
	inside := false
	n := len(r.Points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, zi := r.Points[i].X, r.Points[i].Z
		xj, zj := r.Points[j].X, r.Points[j].Z

		if onSegment(x, z, xi, zi, xj, zj) {
			return true
		}
		if (zi > z) != (zj > z) {
			cross := float64(xj-xi)*float64(z-zi)/float64(zj-zi) + float64(xi)
			if float64(x) < cross {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(x, z, x1, z1, x2, z2 int) bool {
	if (x-x1)*(z2-z1) != (z-z1)*(x2-x1) {
		return false
	}
	return x >= min(x1, x2) && x <= max(x1, x2) && z >= min(z1, z2) && z <= max(z1, z2)
}

// segment steps along the dominant axis from a to b, both ends included.
func segment(a, b Pos) []Pos {
	dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	steps := max(abs(dx), abs(dy), abs(dz))
	if steps == 0 {
		return []Pos{a}
	}
	out := make([]Pos, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		out = append(out, Pos{
			X: a.X + int(math.Round(float64(dx)*t)),
			Y: a.Y + int(math.Round(float64(dy)*t)),
			Z: a.Z + int(math.Round(float64(dz)*t)),
		})
	}
	return out
}

func balloon(set map[Pos]struct{}, radius float64) map[Pos]struct{} {
	r := int(math.Ceil(radius))
	var offsets []Pos
	for x := -r; x <= r; x++ {
		for y := -r; y <= r; y++ {
			for z := -r; z <= r; z++ {
				if math.Sqrt(float64(x*x+y*y+z*z)) <= radius {
					offsets = append(offsets, Pos{x, y, z})
				}
			}
		}
	}

	out := make(map[Pos]struct{}, len(set)*len(offsets))
	for p := range set {
		for _, o := range offsets {
			out[Pos{p.X + o.X, p.Y + o.Y, p.Z + o.Z}] = struct{}{}
		}
	}
	return out
}

var neighbours = []Pos{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}

// hollow keeps the blocks that touch the outside.
func hollow(set map[Pos]struct{}) map[Pos]struct{} {
	out := make(map[Pos]struct{})
	for p := range set {
		for _, n := range neighbours {
			if _, ok := set[Pos{p.X + n.X, p.Y + n.Y, p.Z + n.Z}]; !ok {
				out[p] = struct{}{}
				break
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
