// Package layer implements the ordered stack of paintable layers and its
// composite operation. Index 0 is the topmost layer in render order.
package layer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/Maoric2018/painting/internal/raster"
)

// ErrLastLayer reports an attempt to delete the only remaining layer.
var ErrLastLayer = errors.New("layer: cannot delete the last remaining layer")

// ID identifies a layer for its whole lifetime. IDs are never reused within
// a stack.
type ID int64

// Layer is one paintable surface in the stack. The stack exclusively owns
// Surface; callers paint on it through the editor session, never replace it.
type Layer struct {
	id      ID
	Name    string
	Surface *image.RGBA
	Visible bool
	Opacity float64
}

// ID returns the layer's identifier.
func (l *Layer) ID() ID { return l.id }

// Stack is the ordered collection of layers plus the active-layer pointer.
type Stack struct {
	layers   []*Layer // index 0 renders topmost
	active   ID
	nextID   ID
	nextName int
	width    int
	height   int
	onActive []func(ID)
}

// NewStack creates an empty stack for a canvas of the given size. Callers
// normally Add the first layer immediately.
func NewStack(width, height int) *Stack {
	return &Stack{nextID: 1, nextName: 1, width: width, height: height}
}

// OnActiveChange registers fn to be called once per actual active-layer
// change. Redundant SetActive calls do not fire it.
func (s *Stack) OnActiveChange(fn func(ID)) {
	s.onActive = append(s.onActive, fn)
}

// Size returns the canvas dimensions shared by all layers.
func (s *Stack) Size() (w, h int) { return s.width, s.height }

// Len returns the number of layers.
func (s *Stack) Len() int { return len(s.layers) }

// Layers returns the layers in render order, topmost first. The returned
// slice is a copy; the layers are shared.
func (s *Stack) Layers() []*Layer {
	out := make([]*Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Get returns the layer with the given id, or nil if it does not exist.
func (s *Stack) Get(id ID) *Layer {
	for _, l := range s.layers {
		if l.id == id {
			return l
		}
	}
	return nil
}

// Active returns the active layer, or nil for an empty stack.
func (s *Stack) Active() *Layer { return s.Get(s.active) }

// ActiveID returns the active layer's id.
func (s *Stack) ActiveID() ID { return s.active }

// Add allocates a new blank, fully transparent layer, inserts it at the top
// of the stack and makes it active.
func (s *Stack) Add() *Layer {
	l := &Layer{
		id:      s.nextID,
		Name:    fmt.Sprintf("Layer %d", s.nextName),
		Surface: raster.New(s.width, s.height),
		Visible: true,
		Opacity: 1,
	}
	s.nextID++
	s.nextName++
	s.layers = append([]*Layer{l}, s.layers...)
	s.SetActive(l.id)
	return l
}

// DeleteActive removes the active layer and returns it. Deleting the last
// remaining layer fails with ErrLastLayer and performs no mutation. The
// layer now occupying the removed index becomes active, or the previous
// index when the removed layer was at the bottom.
func (s *Stack) DeleteActive() (*Layer, error) {
	if len(s.layers) <= 1 {
		return nil, ErrLastLayer
	}
	idx := s.indexOf(s.active)
	if idx < 0 {
		return nil, fmt.Errorf("layer: no active layer to delete")
	}
	removed := s.layers[idx]
	s.layers = append(s.layers[:idx], s.layers[idx+1:]...)
	if idx >= len(s.layers) {
		idx = len(s.layers) - 1
	}
	s.SetActive(s.layers[idx].id)
	return removed, nil
}

// SetActive switches the active layer. A redundant call, or an unknown id,
// is a no-op and notifies nobody.
func (s *Stack) SetActive(id ID) {
	if id == s.active || s.Get(id) == nil {
		return
	}
	s.active = id
	for _, fn := range s.onActive {
		fn(id)
	}
}

// ToggleVisibility flips the layer's visibility.
func (s *Stack) ToggleVisibility(id ID) {
	if l := s.Get(id); l != nil {
		l.Visible = !l.Visible
	}
}

// SetOpacity sets the layer's opacity, clamped to [0,1].
func (s *Stack) SetOpacity(id ID, v float64) {
	l := s.Get(id)
	if l == nil {
		return
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	l.Opacity = v
}

// Composite clears dst and blends every visible layer onto it from the
// bottom of the stack to the top, applying each layer's opacity.
func (s *Stack) Composite(dst *image.RGBA) {
	raster.Clear(dst)
	for i := len(s.layers) - 1; i >= 0; i-- {
		l := s.layers[i]
		if !l.Visible || l.Opacity <= 0 {
			continue
		}
		r := l.Surface.Bounds().Sub(l.Surface.Bounds().Min).Add(dst.Bounds().Min)
		if l.Opacity >= 1 {
			draw.Draw(dst, r, l.Surface, l.Surface.Bounds().Min, draw.Over)
			continue
		}
		a := uint8(l.Opacity*255 + 0.5)
		mask := image.NewUniform(color.Alpha{A: a})
		draw.DrawMask(dst, r, l.Surface, l.Surface.Bounds().Min, mask, image.Point{}, draw.Over)
	}
}

// ResizeAll resizes every layer surface to the new canvas size, preserving
// content anchored at the top-left corner.
func (s *Stack) ResizeAll(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	s.width = w
	s.height = h
	for _, l := range s.layers {
		l.Surface = raster.ResizeTopLeft(l.Surface, w, h)
	}
}

// Reorder moves the source layer next to the target layer: directly below it
// when insertBelow is set, directly above it otherwise. Unknown ids or a
// self-target leave the order unchanged.
func (s *Stack) Reorder(source, target ID, insertBelow bool) {
	if source == target {
		return
	}
	si := s.indexOf(source)
	if si < 0 || s.indexOf(target) < 0 {
		return
	}
	moved := s.layers[si]
	s.layers = append(s.layers[:si], s.layers[si+1:]...)
	ti := s.indexOf(target)
	// Index 0 is topmost, so "below" means after the target.
	if insertBelow {
		ti++
	}
	s.layers = append(s.layers, nil)
	copy(s.layers[ti+1:], s.layers[ti:])
	s.layers[ti] = moved
}

func (s *Stack) indexOf(id ID) int {
	for i, l := range s.layers {
		if l.id == id {
			return i
		}
	}
	return -1
}
