// Package fill implements tolerance-based flood fill on an RGBA surface,
// optionally confined by a clip test.
package fill

import (
	"image"
	"image/color"

	"github.com/Maoric2018/painting/internal/raster"
)

// DefaultTolerance is the per-channel color-match threshold. It is tuned to
// swallow anti-aliasing fringes around previously drawn strokes and is
// deliberately coarse; callers can override it via Options.
const DefaultTolerance = 30

// Options configures a flood fill.
type Options struct {
	// Tolerance is the per-channel absolute difference allowed when matching
	// the seed color. Zero means exact match only.
	Tolerance uint8
	// Clip, when non-nil, confines the fill: pixels for which it returns
	// false are never read into the region nor modified.
	Clip raster.ClipFunc
}

// Match reports whether two colors are equal within a per-channel absolute
// tolerance across R, G, B and A.
func Match(a, b color.RGBA, tolerance uint8) bool {
	return absDiff(a.R, b.R) <= tolerance &&
		absDiff(a.G, b.G) <= tolerance &&
		absDiff(a.B, b.B) <= tolerance &&
		absDiff(a.A, b.A) <= tolerance
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// Flood grows a region outward from seed, replacing every 4-connected pixel
// that matches the seed's color within the tolerance. Writes go to a working
// copy that is committed to dst in one pass at the end. It reports whether
// any pixel changed; filling a region that already is the fill color is a
// no-op.
func Flood(dst *image.RGBA, seed image.Point, col color.RGBA, opts Options) bool {
	b := dst.Bounds()
	if !seed.In(b) {
		return false
	}
	if opts.Clip != nil && !opts.Clip(seed.X, seed.Y) {
		return false
	}
	// The tolerance applies here too: if it did not, a fill color within
	// tolerance of the target would re-match freshly filled pixels and BFS
	// would never terminate.
	target := dst.RGBAAt(seed.X, seed.Y)
	if Match(target, col, opts.Tolerance) {
		return false
	}

	work := raster.Clone(dst)
	queue := []image.Point{seed}
	changed := false
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if !p.In(b) {
			continue
		}
		if opts.Clip != nil && !opts.Clip(p.X, p.Y) {
			continue
		}
		cur := work.RGBAAt(p.X, p.Y)
		if !Match(cur, target, opts.Tolerance) {
			continue
		}
		work.SetRGBA(p.X, p.Y, col)
		changed = true
		queue = append(queue,
			image.Pt(p.X+1, p.Y),
			image.Pt(p.X-1, p.Y),
			image.Pt(p.X, p.Y+1),
			image.Pt(p.X, p.Y-1),
		)
	}
	if changed {
		copy(dst.Pix, work.Pix)
	}
	return changed
}
