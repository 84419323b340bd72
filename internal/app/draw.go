package app

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"golang.org/x/exp/shiny/screen"

	"github.com/Maoric2018/painting/internal/editor"
	"github.com/Maoric2018/painting/internal/theme"
)

const (
	layerBarHeight = 24
	bottomHeight   = 24

	// antsDash is the dash length of the lasso outline in device pixels.
	antsDash = 4
)

var toolbarWidth = 56

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var messageFace font.Face

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Fatalf("parse font: %v", err)
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 32, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Fatalf("font face: %v", err)
	}
}

var (
	palette = []color.RGBA{
		{0, 0, 0, 255},
		{255, 255, 255, 255},
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 0, 255},
		{0, 255, 255, 255},
		{255, 0, 255, 255},
		{128, 0, 0, 255},
		{0, 128, 0, 255},
		{0, 0, 128, 255},
		{128, 128, 0, 255},
		{0, 128, 128, 255},
		{128, 0, 128, 255},
		{192, 192, 192, 255},
		{128, 128, 128, 255},
	}
	brushWidths = []int{1, 2, 4, 6, 8}
)

var toolButtons []*CacheButton
var layerButtons []LayerButton
var shortcutRects []Shortcut
var paletteRects []image.Rectangle
var widthRects []image.Rectangle

var hoverTool = -1
var hoverLayer = -1
var hoverPalette = -1
var hoverWidth = -1
var hoverShortcut = -1

// backdropCache holds a cached checkerboard backdrop.
var backdropCache *image.RGBA

// layerEntry is the per-layer info the frame needs for the layer strip.
type layerEntry struct {
	name    string
	visible bool
	active  bool
}

type frameState struct {
	width, height int
	th            *theme.Theme
	title         string

	comp        *image.RGBA
	dstRect     image.Rectangle
	outline     []image.Point
	outlineOpen bool

	tool     editor.Tool
	colorIdx int
	widthIdx int
	layers   []layerEntry
	zoom     float64
	floating bool

	message        string
	messageUntil   time.Time
	handleShortcut func(string)
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the
// given colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// drawBackdrop fills dst with a cached checkerboard pattern.
func drawBackdrop(dst *image.RGBA, th *theme.Theme) {
	b := dst.Bounds()
	if backdropCache == nil || backdropCache.Bounds() != b {
		backdropCache = image.NewRGBA(b)
		drawCheckerboard(backdropCache, backdropCache.Bounds(), 8, th.CheckerLight, th.CheckerDark)
	}
	draw.Draw(dst, b, backdropCache, image.Point{}, draw.Src)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// antsLine walks a segment with Bresenham, alternating the two outline
// colors every antsDash pixels. step carries the dash phase across
// segments so corners do not reset the pattern.
func antsLine(img *image.RGBA, x0, y0, x1, y1 int, step *int, light, dark color.RGBA) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
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
		col := dark
		if (*step/antsDash)%2 == 0 {
			col = light
		}
		if image.Pt(x0, y0).In(img.Bounds()) {
			img.SetRGBA(x0, y0, col)
		}
		*step++
		if x0 == x1 && y0 == y1 {
			return
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

// drawOutline renders the lasso outline through the device-space points.
// The loop is closed unless the path is still being drawn.
func drawOutline(dst *image.RGBA, pts []image.Point, open bool, th *theme.Theme) {
	if len(pts) < 2 {
		return
	}
	step := 0
	for i := 1; i < len(pts); i++ {
		antsLine(dst, pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, &step, th.SelectionLight, th.SelectionDark)
	}
	if !open {
		last := pts[len(pts)-1]
		antsLine(dst, last.X, last.Y, pts[0].X, pts[0].Y, &step, th.SelectionLight, th.SelectionDark)
	}
}

func drawLayerBar(dst *image.RGBA, st frameState, selectLayer func(int)) {
	th := st.th
	draw.Draw(dst, image.Rect(0, 0, dst.Bounds().Dx(), layerBarHeight),
		&image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)

	title := &font.Drawer{Dst: dst, Src: image.NewUniform(th.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(4, 16)}
	title.DrawString(st.title)

	layerButtons = layerButtons[:0]
	x := toolbarWidth
	for i, le := range st.layers {
		idx := i
		lb := LayerButton{label: le.name, visible: le.visible, th: th,
			onSelect: func() { selectLayer(idx) }}
		lb.SetRect(image.Rect(x, 0, x+96, layerBarHeight))
		state := StateDefault
		if le.active {
			state = StatePressed
		} else if i == hoverLayer {
			state = StateHover
		}
		lb.Draw(dst, state)
		layerButtons = append(layerButtons, lb)
		x += 96
	}
}

func drawToolbar(dst *image.RGBA, st frameState) {
	th := st.th
	draw.Draw(dst, image.Rect(0, layerBarHeight, toolbarWidth, dst.Bounds().Dy()),
		&image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)

	y := layerBarHeight
	for i, cb := range toolButtons {
		r := image.Rect(0, y, toolbarWidth, y+24)
		cb.SetRect(r)
		tb := cb.Button.(*ToolButton)
		state := StateDefault
		if tb.tool == st.tool {
			state = StatePressed
		} else if i == hoverTool {
			state = StateHover
		}
		cb.Draw(dst, state)
		y += 24
	}

	// color swatches below the tools
	y += 4
	x := 4
	paletteRects = paletteRects[:0]
	for i, p := range palette {
		rect := image.Rect(x, y, x+16, y+16)
		draw.Draw(dst, rect, &image.Uniform{p}, image.Point{}, draw.Src)
		if i == hoverPalette {
			draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 80}}, image.Point{}, draw.Over)
		}
		if i == st.colorIdx {
			outlineRect(dst, rect, th.SelectionLight)
		}
		paletteRects = append(paletteRects, rect)
		x += 18
		if x+16 > toolbarWidth {
			x = 4
			y += 18
		}
	}

	if st.tool == editor.ToolBrush || st.tool == editor.ToolEraser {
		y += 4
		col := palette[st.colorIdx]
		if st.tool == editor.ToolEraser {
			col = th.ButtonText
		}
		widthRects = widthRects[:0]
		for i, w := range brushWidths {
			rect := image.Rect(0, y, toolbarWidth, y+16)
			c := th.ButtonBackground
			if i == st.widthIdx {
				c = th.ButtonBackgroundPress
			} else if i == hoverWidth {
				c = th.ButtonBackgroundHover
			}
			draw.Draw(dst, rect, &image.Uniform{c}, image.Point{}, draw.Src)
			d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.ButtonText), Face: basicfont.Face7x13, Dot: fixed.P(4, y+12)}
			d.DrawString(fmt.Sprintf("%d", w))
			previewLine(dst, 24, toolbarWidth-4, y+8, col, w)
			widthRects = append(widthRects, rect)
			y += 16
		}
	}
}

// outlineRect draws a one-pixel border just inside rect.
func outlineRect(dst *image.RGBA, rect image.Rectangle, col color.RGBA) {
	for x := rect.Min.X; x < rect.Max.X; x++ {
		dst.SetRGBA(x, rect.Min.Y, col)
		dst.SetRGBA(x, rect.Max.Y-1, col)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		dst.SetRGBA(rect.Min.X, y, col)
		dst.SetRGBA(rect.Max.X-1, y, col)
	}
}

// previewLine draws a horizontal stroke sample of the given width.
func previewLine(dst *image.RGBA, x0, x1, y int, col color.RGBA, width int) {
	r := width / 2
	for x := x0; x <= x1; x++ {
		for dy := -r; dy <= r; dy++ {
			if image.Pt(x, y+dy).In(dst.Bounds()) {
				dst.SetRGBA(x, y+dy, col)
			}
		}
	}
}

func drawShortcuts(dst *image.RGBA, st frameState) {
	th := st.th
	width, height := st.width, st.height
	rect := image.Rect(0, height-bottomHeight, width, height)
	draw.Draw(dst, rect, &image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)
	shortcutRects = shortcutRects[:0]
	zoomStr := fmt.Sprintf("+/-:zoom (%.0f%%)", st.zoom*100)
	trigger := st.handleShortcut
	shortcuts := []Shortcut{
		{label: "^Z:undo", th: th, action: func() { trigger("undo") }},
		{label: "^Y:redo", th: th, action: func() { trigger("redo") }},
		{label: "^C:copy", th: th, action: func() { trigger("copy") }},
		{label: "^V:paste", th: th, action: func() { trigger("paste") }},
		{label: "^N:layer", th: th, action: func() { trigger("newlayer") }},
		{label: "^D:del layer", th: th, action: func() { trigger("dellayer") }},
		{label: zoomStr, th: th, action: nil},
		{label: "Q:quit", th: th, action: func() { trigger("quit") }},
	}
	if st.floating {
		shortcuts = append(shortcuts,
			Shortcut{label: "Enter:merge", th: th, action: func() { trigger("merge") }},
			Shortcut{label: "Del:clear", th: th, action: func() { trigger("clearsel") }},
		)
	}
	x := toolbarWidth + 4
	y := height - bottomHeight + 16
	meas := &font.Drawer{Face: basicfont.Face7x13}
	for i := range shortcuts {
		sc := &shortcuts[i]
		w := meas.MeasureString(sc.label).Ceil()
		sc.SetRect(image.Rect(x-2, y-14, x+w+2, y+4))
		state := StateDefault
		if i == hoverShortcut {
			state = StateHover
		}
		sc.Draw(dst, state)
		shortcutRects = append(shortcutRects, *sc)
		x = sc.rect.Max.X + 8
	}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st frameState, selectLayer func(int)) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	drawBackdrop(b.RGBA(), st.th)
	if ctx.Err() != nil {
		return
	}

	xdraw.NearestNeighbor.Scale(b.RGBA(), st.dstRect, st.comp, st.comp.Bounds(), draw.Over, nil)
	if ctx.Err() != nil {
		return
	}

	drawOutline(b.RGBA(), st.outline, st.outlineOpen, st.th)
	if ctx.Err() != nil {
		return
	}

	drawLayerBar(b.RGBA(), st, selectLayer)
	drawToolbar(b.RGBA(), st)
	drawShortcuts(b.RGBA(), st)

	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		d := &font.Drawer{Dst: b.RGBA(), Src: image.NewUniform(st.th.Foreground), Face: messageFace}
		wmsg := d.MeasureString(st.message).Ceil()
		ascent := messageFace.Metrics().Ascent.Ceil()
		descent := messageFace.Metrics().Descent.Ceil()
		px := (st.width - wmsg) / 2
		py := (st.height-ascent-descent)/2 + ascent
		rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
		draw.Draw(b.RGBA(), rect, &image.Uniform{st.th.Background}, image.Point{}, draw.Over)
		outlineRect(b.RGBA(), rect, st.th.Foreground)
		d.Dot = fixed.P(px, py)
		d.DrawString(st.message)
	}

	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
