// Package raster provides the pixel-surface primitives the editor core is
// built on: surface allocation and cloning, thick line strokes with optional
// erase semantics and clipping, and image blits at arbitrary offsets.
package raster

import (
	"image"
	"image/color"
	"image/draw"
)

// ClipFunc reports whether a pixel may be modified. Coordinates are in the
// destination surface's space. A nil ClipFunc allows every pixel.
type ClipFunc func(x, y int) bool

// New allocates a fully transparent surface with zero-based bounds.
func New(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// Clone returns an independent copy of src.
func Clone(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// Clear resets every pixel of dst to transparent.
func Clear(dst *image.RGBA) {
	for i := range dst.Pix {
		dst.Pix[i] = 0
	}
}

// Restore overwrites dst with the contents of src. Both surfaces must share
// the same dimensions; extra area in dst, if any, is left untouched.
func Restore(dst, src *image.RGBA) {
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
}

// DrawOver composites src onto dst with its top-left corner at "at".
func DrawOver(dst *image.RGBA, src *image.RGBA, at image.Point) {
	r := src.Bounds().Sub(src.Bounds().Min).Add(at)
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Over)
}

// ResizeTopLeft returns a w×h surface holding src's content anchored at the
// top-left corner. Pixels outside the new bounds are cropped; new area is
// transparent.
func ResizeTopLeft(src *image.RGBA, w, h int) *image.RGBA {
	dst := New(w, h)
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

func setThickPixel(img *image.RGBA, x, y, thick int, col color.RGBA, erase bool, clip ClipFunc) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if !image.Pt(px, py).In(img.Bounds()) {
				continue
			}
			if clip != nil && !clip(px, py) {
				continue
			}
			if erase {
				img.SetRGBA(px, py, color.RGBA{})
				continue
			}
			img.SetRGBA(px, py, col)
		}
	}
}

// StrokeLine draws a line segment from (x0,y0) to (x1,y1) with the given
// thickness. With erase set, touched pixels are cleared to transparent
// instead of painted. A non-nil clip confines the stroke.
func StrokeLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA, thick int, erase bool, clip ClipFunc) {
	if thick < 1 {
		thick = 1
	}
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col, erase, clip)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}
