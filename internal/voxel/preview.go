package voxel

import (
	"hash/fnv"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"

	"github.com/woozymasta/geoconv/internal/geo"
)

// DefaultPreviewSize is the longest side of a preview in pixels.
const DefaultPreviewSize = 512

// Preview renders a top down view of the highest solid block of every column
// and encodes it as lossless WebP. Columns are binned into at most size pixels
// per side before scaling.
func Preview(w io.Writer, b *Buffer, size int) error {
	if size <= 0 {
		size = DefaultPreviewSize
	}

	lo, hi, ok := b.Bounds()
	if !ok {
		lo, hi = Pos{}, Pos{}
	}
	width, depth := hi.X-lo.X+1, hi.Z-lo.Z+1

	side := max(width, depth)
	dw, dh := max(1, width*size/side), max(1, depth*size/side)
	sw, sh := min(width, dw), min(depth, dh)

	src := image.NewNRGBA(image.Rect(0, 0, sw, sh))
	top := make([]int, sw*sh)
	for i := range top {
		top[i] = math.MinInt
	}
	for _, p := range b.Positions() {
		pattern, _ := b.Get(p)
		if pattern == Air {
			continue
		}
		px, pz := (p.X-lo.X)*sw/width, (p.Z-lo.Z)*sh/depth
		i := pz*sw + px
		if top[i] > p.Y {
			continue
		}
		top[i] = p.Y
		src.SetNRGBA(px, pz, shade(pattern, p.Y, lo.Y, hi.Y))
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	if err := webp.Encode(w, dst, &webp.Options{Lossless: true}); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "encode preview", err)
	}
	return nil
}

// shade derives a stable color from the pattern name, brighter when higher.
func shade(pattern string, y, lo, hi int) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(pattern))
	sum := h.Sum32()

	light := 1.0
	if hi > lo {
		light = 0.6 + 0.4*float64(y-lo)/float64(hi-lo)
	}
	return color.NRGBA{
		R: uint8(float64(sum>>16&0xff) * light),
		G: uint8(float64(sum>>8&0xff) * light),
		B: uint8(float64(sum&0xff) * light),
		A: 0xff,
	}
}
