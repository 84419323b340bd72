package app

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/Maoric2018/painting/internal/editor"
	"github.com/Maoric2018/painting/internal/theme"
)

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) Rect() image.Rectangle { return cb.Button.Rect() }

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

func (cb *CacheButton) Activate() { cb.Button.Activate() }

func stateFill(th *theme.Theme, state ButtonState) color.RGBA {
	switch state {
	case StateHover:
		return th.ButtonBackgroundHover
	case StatePressed:
		return th.ButtonBackgroundPress
	default:
		return th.ButtonBackground
	}
}

// ToolButton selects an editing tool from the toolbar.
type ToolButton struct {
	label string
	tool  editor.Tool
	th    *theme.Theme
	rect  image.Rectangle
	// onSelect is called when the button is activated.
	onSelect func()
}

func (tb *ToolButton) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, tb.rect, &image.Uniform{stateFill(tb.th, state)}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(tb.th.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(tb.rect.Min.X+4, tb.rect.Min.Y+16)}
	d.DrawString(tb.label)
}

func (tb *ToolButton) Rect() image.Rectangle { return tb.rect }

func (tb *ToolButton) SetRect(r image.Rectangle) {
	if r != tb.rect {
		tb.rect = r
	}
}

func (tb *ToolButton) Activate() {
	if tb.onSelect != nil {
		tb.onSelect()
	}
}

// LayerButton shows one layer in the strip above the canvas. Hidden layers
// render their name in the hover color so they read as dimmed.
type LayerButton struct {
	label    string
	visible  bool
	th       *theme.Theme
	rect     image.Rectangle
	onSelect func()
}

func (lb *LayerButton) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, lb.rect, &image.Uniform{stateFill(lb.th, state)}, image.Point{}, draw.Src)
	src := image.NewUniform(lb.th.ButtonText)
	if !lb.visible {
		src = image.NewUniform(lb.th.ButtonBackgroundHover)
	}
	d := &font.Drawer{Dst: dst, Src: src, Face: basicfont.Face7x13,
		Dot: fixed.P(lb.rect.Min.X+4, lb.rect.Min.Y+16)}
	d.DrawString(lb.label)
}

func (lb *LayerButton) Rect() image.Rectangle { return lb.rect }

func (lb *LayerButton) SetRect(r image.Rectangle) {
	if r != lb.rect {
		lb.rect = r
	}
}

func (lb *LayerButton) Activate() {
	if lb.onSelect != nil {
		lb.onSelect()
	}
}

// Shortcut is a clickable label in the bottom bar mirroring a keyboard
// action.
type Shortcut struct {
	label  string
	action func()
	th     *theme.Theme
	rect   image.Rectangle
}

func (s *Shortcut) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, s.rect, &image.Uniform{stateFill(s.th, state)}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(s.th.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(s.rect.Min.X+2, s.rect.Min.Y+14)}
	d.DrawString(s.label)
}

func (s *Shortcut) Rect() image.Rectangle { return s.rect }

func (s *Shortcut) SetRect(r image.Rectangle) {
	if r != s.rect {
		s.rect = r
	}
}

func (s *Shortcut) Activate() {
	if s.action != nil {
		s.action()
	}
}
