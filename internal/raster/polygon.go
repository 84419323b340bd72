package raster

import (
	"image"
	"image/color"
	"image/draw"
)

var (
	alphaOpaque = color.Alpha{A: 255}
	rgbaZero    color.RGBA
)

// Polygon is a closed path of integer points. The last point is implicitly
// connected back to the first.
type Polygon []image.Point

// Bounds returns the axis-aligned bounding box of the polygon.
func (p Polygon) Bounds() image.Rectangle {
	if len(p) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: p[0], Max: p[0].Add(image.Pt(1, 1))}
	for _, pt := range p[1:] {
		if pt.X < r.Min.X {
			r.Min.X = pt.X
		}
		if pt.Y < r.Min.Y {
			r.Min.Y = pt.Y
		}
		if pt.X+1 > r.Max.X {
			r.Max.X = pt.X + 1
		}
		if pt.Y+1 > r.Max.Y {
			r.Max.Y = pt.Y + 1
		}
	}
	return r
}

// Translate returns a copy of the polygon shifted by d.
func (p Polygon) Translate(d image.Point) Polygon {
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[i] = pt.Add(d)
	}
	return out
}

// Contains reports whether pt lies inside the polygon using the ray-casting
// rule. Points on an edge may fall on either side.
func (p Polygon) Contains(pt image.Point) bool {
	if len(p) < 3 {
		return false
	}
	inside := false
	j := len(p) - 1
	x := float64(pt.X) + 0.5
	y := float64(pt.Y) + 0.5
	for i := 0; i < len(p); i++ {
		xi, yi := float64(p[i].X), float64(p[i].Y)
		xj, yj := float64(p[j].X), float64(p[j].Y)
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Mask rasterizes the polygon into an alpha mask covering rect. Pixels whose
// centers fall inside the polygon are opaque. The polygon's coordinates are
// interpreted in the same space as rect.
func (p Polygon) Mask(rect image.Rectangle) *image.Alpha {
	mask := image.NewAlpha(rect)
	if len(p) < 3 {
		return mask
	}
	xs := make([]float64, 0, len(p))
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		cy := float64(y) + 0.5
		xs = xs[:0]
		j := len(p) - 1
		for i := 0; i < len(p); i++ {
			yi := float64(p[i].Y)
			yj := float64(p[j].Y)
			if (yi > cy) != (yj > cy) {
				xi := float64(p[i].X)
				xj := float64(p[j].X)
				xs = append(xs, (xj-xi)*(cy-yi)/(yj-yi)+xi)
			}
			j = i
		}
		// Even-odd fill between sorted crossing pairs.
		sortFloats(xs)
		for k := 0; k+1 < len(xs); k += 2 {
			x0 := int(xs[k] + 0.5)
			x1 := int(xs[k+1] + 0.5)
			if x0 < rect.Min.X {
				x0 = rect.Min.X
			}
			if x1 > rect.Max.X {
				x1 = rect.Max.X
			}
			for x := x0; x < x1; x++ {
				mask.SetAlpha(x, y, alphaOpaque)
			}
		}
	}
	return mask
}

// LiftMasked copies the pixels of src that fall under mask into a new surface
// of the mask's size, rebased to a zero origin.
func LiftMasked(src *image.RGBA, mask *image.Alpha) *image.RGBA {
	b := mask.Bounds()
	dst := New(b.Dx(), b.Dy())
	draw.DrawMask(dst, dst.Bounds(), src, b.Min, mask, b.Min, draw.Src)
	return dst
}

// ClearMasked resets to transparent every pixel of dst that is opaque in
// mask. The mask's bounds select the affected area of dst.
func ClearMasked(dst *image.RGBA, mask *image.Alpha) {
	b := mask.Bounds().Intersect(dst.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.AlphaAt(x, y).A > 0 {
				dst.SetRGBA(x, y, rgbaZero)
			}
		}
	}
}

func sortFloats(xs []float64) {
	// Insertion sort; crossing counts per scanline are tiny.
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
