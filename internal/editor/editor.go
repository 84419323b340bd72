// Package editor owns the application session: the layer stack, the layer
// history, the selection engine and the viewport transform. It is the
// single entry point input handlers talk to; every operation runs to
// completion and leaves the session consistent before the render tick can
// observe it.
package editor

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/Maoric2018/painting/internal/fill"
	"github.com/Maoric2018/painting/internal/history"
	"github.com/Maoric2018/painting/internal/layer"
	"github.com/Maoric2018/painting/internal/raster"
	"github.com/Maoric2018/painting/internal/selection"
	"github.com/Maoric2018/painting/internal/viewport"
)

// Tool selects the behavior of pointer gestures on the canvas.
type Tool int

const (
	ToolBrush Tool = iota
	ToolEraser
	ToolFill
	ToolLasso
	ToolMove
)

// Session holds all mutable editor state for one open document.
type Session struct {
	Layers    *layer.Stack
	Hist      *history.Manager
	Selection *selection.Engine
	View      *viewport.Transform

	tolerance uint8
	histLimit int
	redrawCh  chan struct{}
}

// Option modifies a Session during creation.
type Option func(*Session)

// WithHistoryLimit overrides the undo retention bound.
func WithHistoryLimit(limit int) Option {
	return func(s *Session) {
		if limit > 0 {
			s.histLimit = limit
		}
	}
}

// WithFillTolerance overrides the flood-fill color-match threshold.
func WithFillTolerance(tol uint8) Option {
	return func(s *Session) { s.tolerance = tol }
}

// WithViewport replaces the default viewport transform.
func WithViewport(v *viewport.Transform) Option {
	return func(s *Session) { s.View = v }
}

// NewSession creates a session with one blank layer of the given canvas
// size.
func NewSession(width, height int, opts ...Option) *Session {
	s := &Session{
		Layers:    layer.NewStack(width, height),
		View:      viewport.New(),
		tolerance: fill.DefaultTolerance,
		histLimit: history.DefaultLimit,
		redrawCh:  make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(s)
	}
	s.Hist = history.NewManager(s.histLimit)
	s.Selection = selection.NewEngine(s.Layers, s.Hist, s.histLimit, s.tolerance)
	s.AddLayer()
	return s
}

// Redraw returns a channel that receives a signal whenever the session's
// visible state changed and the host should recomposite.
func (s *Session) Redraw() <-chan struct{} { return s.redrawCh }

// RequestRedraw signals the render path without blocking.
func (s *Session) RequestRedraw() {
	select {
	case s.redrawCh <- struct{}{}:
	default:
	}
}

// AddLayer creates a new topmost blank layer, makes it active and
// initializes its history with a baseline snapshot.
func (s *Session) AddLayer() *layer.Layer {
	l := s.Layers.Add()
	if err := s.Hist.Initialize(history.EntityID(l.ID()), history.Capture(l.Surface, image.Point{})); err != nil {
		// IDs are never reused, so a collision is a wiring bug.
		panic(err)
	}
	s.RequestRedraw()
	return l
}

// DeleteActiveLayer removes the active layer and destroys its history. A
// floating selection lifted from that layer loses its provenance and is
// force-cleared. Deleting the last layer fails with layer.ErrLastLayer.
func (s *Session) DeleteActiveLayer() error {
	id := s.Layers.ActiveID()
	if s.Selection.State() == selection.StateFloating && s.Selection.Origin() == id {
		s.Selection.ForceIdle()
	}
	removed, err := s.Layers.DeleteActive()
	if err != nil {
		return err
	}
	s.Hist.Destroy(history.EntityID(removed.ID()))
	s.RequestRedraw()
	return nil
}

// Stroke paints one segment of a brush or eraser gesture in model
// coordinates. While a selection floats the stroke is confined to the lasso
// clip on the region; otherwise it lands on the active layer. The caller
// finishes the gesture with EndStroke.
func (s *Session) Stroke(from, to image.Point, tool Tool, col color.RGBA, width int) {
	erase := tool == ToolEraser
	if s.Selection.State() == selection.StateFloating {
		s.Selection.DrawWithinClip(from, to, col, width, erase)
		s.RequestRedraw()
		return
	}
	l := s.Layers.Active()
	if l == nil {
		return
	}
	raster.StrokeLine(l.Surface, from.X, from.Y, to.X, to.Y, col, width, erase, nil)
	s.RequestRedraw()
}

// EndStroke records the finished gesture as a history checkpoint: a
// sub-history entry while floating, a layer entry otherwise. Pointer-leave
// cancellation goes through the same path as pointer-up.
func (s *Session) EndStroke() {
	if s.Selection.State() == selection.StateFloating {
		s.Selection.SaveEdit()
		return
	}
	l := s.Layers.Active()
	if l == nil {
		return
	}
	s.Hist.Save(history.EntityID(l.ID()), history.Capture(l.Surface, image.Point{}))
}

// Fill flood-fills at the model-space point. While floating it is confined
// to the lasso clip on the region; otherwise it fills the active layer. A
// fill that changes nothing pushes no history.
func (s *Session) Fill(x, y int, col color.RGBA) {
	if s.Selection.State() == selection.StateFloating {
		s.Selection.FillWithinClip(x, y, col)
		s.RequestRedraw()
		return
	}
	l := s.Layers.Active()
	if l == nil {
		return
	}
	if fill.Flood(l.Surface, image.Pt(x, y), col, fill.Options{Tolerance: s.tolerance}) {
		s.Hist.Save(history.EntityID(l.ID()), history.Capture(l.Surface, image.Point{}))
		s.RequestRedraw()
	}
}

// Undo steps back one state: the floating selection's sub-history while a
// region floats, the active layer's history otherwise. Undoing a layer that
// a floating region was lifted from would strand the region on a stale cut,
// so the selection is cleared first in that case.
func (s *Session) Undo() {
	if s.Selection.State() == selection.StateFloating {
		s.Selection.UndoEdit()
		s.RequestRedraw()
		return
	}
	s.undoLayer(s.Layers.ActiveID())
}

// Redo reverses the most recent Undo, routed the same way.
func (s *Session) Redo() {
	if s.Selection.State() == selection.StateFloating {
		s.Selection.RedoEdit()
		s.RequestRedraw()
		return
	}
	l := s.Layers.Active()
	if l == nil {
		return
	}
	if snap, ok := s.Hist.Redo(history.EntityID(l.ID())); ok {
		raster.Restore(l.Surface, snap.Pix)
		s.RequestRedraw()
	}
}

func (s *Session) undoLayer(id layer.ID) {
	l := s.Layers.Get(id)
	if l == nil {
		return
	}
	if s.Selection.State() == selection.StateFloating && s.Selection.Origin() == id {
		s.Selection.ForceIdle()
	}
	if snap, ok := s.Hist.Undo(history.EntityID(id)); ok {
		raster.Restore(l.Surface, snap.Pix)
		s.RequestRedraw()
	}
}

// CanUndo and CanRedo drive enabled/disabled affordances in the host UI.
func (s *Session) CanUndo() bool {
	if s.Selection.State() == selection.StateFloating {
		return s.Selection.EditLen() > 1
	}
	return s.Hist.Len(history.EntityID(s.Layers.ActiveID())) > 1
}

func (s *Session) CanRedo() bool {
	if s.Selection.State() == selection.StateFloating {
		return s.Selection.EditRedoLen() > 0
	}
	return s.Hist.RedoLen(history.EntityID(s.Layers.ActiveID())) > 0
}

// LassoStart begins a selection path at the model-space point, implicitly
// committing any floating region.
func (s *Session) LassoStart(x, y int) {
	s.Selection.StartPath(x, y)
	s.RequestRedraw()
}

// LassoAdd extends the in-progress selection path.
func (s *Session) LassoAdd(x, y int) {
	s.Selection.AddPoint(x, y)
	s.RequestRedraw()
}

// LassoFinish closes the path and lifts the region from the active layer.
func (s *Session) LassoFinish() {
	s.Selection.Finalize(s.Layers.ActiveID())
	s.RequestRedraw()
}

// MoveSelection shifts a floating region; EndSelectionMove records the
// finished drag as one sub-history entry.
func (s *Session) MoveSelection(dx, dy int) {
	s.Selection.Move(dx, dy)
	s.RequestRedraw()
}

func (s *Session) EndSelectionMove() {
	s.Selection.SaveEdit()
}

// CommitSelection merges a floating region back into its origin layer.
func (s *Session) CommitSelection() {
	if _, ok := s.Selection.Commit(); ok {
		s.RequestRedraw()
	}
}

// DeleteSelectionContents clears the floating region within its lasso
// shape.
func (s *Session) DeleteSelectionContents() {
	s.Selection.DeleteContents()
	s.RequestRedraw()
}

// Composite renders the layer stack bottom-to-top into dst and overlays the
// floating region, if any, at its current position. The lasso outline is
// returned for the host to draw in screen space.
func (s *Session) Composite(dst *image.RGBA) (raster.Polygon, bool) {
	s.Layers.Composite(dst)
	ov, ok := s.Selection.Overlay()
	if !ok {
		return nil, false
	}
	if ov.Region != nil {
		r := ov.Region.Bounds().Sub(ov.Region.Bounds().Min).Add(ov.Pos)
		draw.Draw(dst, r, ov.Region, ov.Region.Bounds().Min, draw.Over)
	}
	return ov.Path, true
}

// PasteImage adds a new topmost layer holding img anchored at the top-left
// corner and records the paste as that layer's first edit.
func (s *Session) PasteImage(img image.Image) *layer.Layer {
	l := s.AddLayer()
	draw.Draw(l.Surface, l.Surface.Bounds(), img, img.Bounds().Min, draw.Over)
	s.Hist.Save(history.EntityID(l.ID()), history.Capture(l.Surface, image.Point{}))
	s.RequestRedraw()
	return l
}

// ResizeCanvas resizes every layer, preserving content anchored top-left.
func (s *Session) ResizeCanvas(w, h int) {
	s.Layers.ResizeAll(w, h)
	s.RequestRedraw()
}
