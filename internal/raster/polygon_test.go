package raster

import (
	"image"
	"image/color"
	"testing"
)

func square(x0, y0, x1, y1 int) Polygon {
	return Polygon{image.Pt(x0, y0), image.Pt(x1, y0), image.Pt(x1, y1), image.Pt(x0, y1)}
}

func TestPolygonBounds(t *testing.T) {
	p := Polygon{image.Pt(2, 3), image.Pt(8, 3), image.Pt(5, 9)}
	want := image.Rect(2, 3, 9, 10)
	if got := p.Bounds(); !got.Eq(want) {
		t.Fatalf("bounds %v, want %v", got, want)
	}
	if got := (Polygon{}).Bounds(); !got.Empty() {
		t.Fatalf("empty polygon bounds %v, want empty", got)
	}
}

func TestPolygonContains(t *testing.T) {
	p := square(0, 0, 10, 10)
	cases := []struct {
		pt   image.Point
		want bool
	}{
		{image.Pt(5, 5), true},
		{image.Pt(0, 0), true},
		{image.Pt(9, 9), true},
		{image.Pt(10, 5), false},
		{image.Pt(-1, 5), false},
		{image.Pt(5, 12), false},
	}
	for _, tc := range cases {
		if got := p.Contains(tc.pt); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.pt, got, tc.want)
		}
	}
	if (Polygon{image.Pt(0, 0), image.Pt(4, 4)}).Contains(image.Pt(1, 1)) {
		t.Fatal("degenerate polygon must contain nothing")
	}
}

func TestPolygonMaskSquare(t *testing.T) {
	p := square(0, 0, 4, 4)
	mask := p.Mask(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if mask.AlphaAt(x, y).A != 255 {
				t.Fatalf("pixel (%d,%d) not covered", x, y)
			}
		}
	}
}

func TestPolygonMaskTriangleExcludesCorner(t *testing.T) {
	p := Polygon{image.Pt(0, 0), image.Pt(10, 0), image.Pt(0, 10)}
	mask := p.Mask(image.Rect(0, 0, 10, 10))
	if mask.AlphaAt(1, 1).A == 0 {
		t.Fatal("interior pixel not covered")
	}
	if mask.AlphaAt(9, 9).A != 0 {
		t.Fatal("corner outside the triangle was covered")
	}
}

func TestLiftAndClearMasked(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	src := New(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.SetRGBA(x, y, red)
		}
	}
	p := square(2, 2, 6, 6)
	mask := p.Mask(p.Bounds())

	region := LiftMasked(src, mask)
	if !region.Bounds().Eq(image.Rect(0, 0, 5, 5)) {
		t.Fatalf("region bounds %v, want zero-based 5x5", region.Bounds())
	}
	if got := region.RGBAAt(1, 1); got != red {
		t.Fatalf("lifted pixel %+v, want %+v", got, red)
	}

	ClearMasked(src, mask)
	if got := src.RGBAAt(3, 3); got != (color.RGBA{}) {
		t.Fatalf("masked pixel not cleared: %+v", got)
	}
	if got := src.RGBAAt(0, 0); got != red {
		t.Fatalf("pixel outside mask changed: %+v", got)
	}
}

func TestPolygonTranslate(t *testing.T) {
	p := Polygon{image.Pt(1, 1), image.Pt(3, 1), image.Pt(2, 4)}
	moved := p.Translate(image.Pt(5, -1))
	if moved[0] != image.Pt(6, 0) || moved[2] != image.Pt(7, 3) {
		t.Fatalf("unexpected translation: %v", moved)
	}
	if p[0] != image.Pt(1, 1) {
		t.Fatal("translate mutated the receiver")
	}
}
