// Package selection implements the lasso floating-selection state machine:
// path capture, region lift and cut, independent editing of the lifted
// region with its own sub-history, and the commit protocol that merges the
// sub-history back into the origin layer's history without losing undo
// granularity.
package selection

import (
	"image"
	"image/color"

	"github.com/Maoric2018/painting/internal/fill"
	"github.com/Maoric2018/painting/internal/history"
	"github.com/Maoric2018/painting/internal/layer"
	"github.com/Maoric2018/painting/internal/raster"
)

// State enumerates the selection lifecycle.
type State int

const (
	// StateIdle means no selection exists.
	StateIdle State = iota
	// StateDrawingPath means a lasso path is being captured.
	StateDrawingPath
	// StateFloating means a lifted region is being edited in place.
	StateFloating
)

// regionEntity is the sub-history's single entity id. Each floating
// selection gets a fresh Manager, so the id never collides with anything.
const regionEntity history.EntityID = 1

// LayerSource resolves layer ids to live layers. It returns nil for a layer
// that no longer exists.
type LayerSource interface {
	Get(id layer.ID) *layer.Layer
}

// Overlay is a read-only snapshot of the selection for rendering: the lasso
// outline in model space and, while floating, the region bitmap and its
// position.
type Overlay struct {
	State  State
	Path   raster.Polygon
	Region *image.RGBA
	Pos    image.Point
}

// Engine drives the selection state machine. All coordinates are
// model-space pixels.
type Engine struct {
	layers    LayerSource
	layerHist *history.Manager
	histLimit int
	tolerance uint8

	state State

	// DrawingPath: path holds model-space points.
	// Floating: path is normalized to the region's local origin.
	path raster.Polygon

	origin  layer.ID
	region  *image.RGBA
	mask    *image.Alpha // lasso clip in region-local space
	pos     image.Point  // model-space position of the region's top-left
	subHist *history.Manager
}

// NewEngine creates a selection engine operating on the given layer source
// and layer history. histLimit bounds the sub-history; tolerance is the
// flood-fill color-match threshold used by FillWithinClip.
func NewEngine(layers LayerSource, layerHist *history.Manager, histLimit int, tolerance uint8) *Engine {
	return &Engine{
		layers:    layers,
		layerHist: layerHist,
		histLimit: histLimit,
		tolerance: tolerance,
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Origin returns the id of the layer a floating region was lifted from.
// Only meaningful while floating.
func (e *Engine) Origin() layer.ID { return e.origin }

// Pos returns the floating region's model-space position.
func (e *Engine) Pos() image.Point { return e.pos }

// StartPath begins capturing a new lasso path at (x,y). An existing floating
// selection is committed first: starting a new selection implicitly
// finalizes the prior one.
func (e *Engine) StartPath(x, y int) {
	if e.state == StateFloating {
		e.Commit()
	}
	e.state = StateDrawingPath
	e.path = raster.Polygon{image.Pt(x, y)}
}

// AddPoint extends the lasso path. Valid only while drawing.
func (e *Engine) AddPoint(x, y int) {
	if e.state != StateDrawingPath {
		return
	}
	e.path = append(e.path, image.Pt(x, y))
}

// Finalize closes the lasso path and lifts the bounded region out of the
// origin layer. A path with fewer than three points or a degenerate bounding
// box is silently discarded and the engine returns to Idle. The cut left in
// the origin layer is recorded as a checkpoint in its history; that
// checkpoint is later replaced by Commit's merge.
func (e *Engine) Finalize(origin layer.ID) {
	if e.state != StateDrawingPath {
		return
	}
	path := e.path
	e.path = nil
	e.state = StateIdle

	if len(path) < 3 {
		return
	}
	box := path.Bounds()
	if box.Dx() <= 1 || box.Dy() <= 1 {
		return
	}
	l := e.layers.Get(origin)
	if l == nil {
		return
	}

	normalized := path.Translate(image.Point{}.Sub(box.Min))
	local := image.Rect(0, 0, box.Dx(), box.Dy())
	e.mask = normalized.Mask(local)

	// Lift the region, then cut the same shape out of the origin layer.
	layerMask := path.Mask(box)
	e.region = raster.LiftMasked(l.Surface, layerMask)
	raster.ClearMasked(l.Surface, layerMask)

	// The hole checkpoint. Commit replaces it; it never survives as a
	// standalone undo step.
	e.layerHist.Save(history.EntityID(origin), history.Capture(l.Surface, image.Point{}))

	e.subHist = history.NewManager(e.histLimit)
	if err := e.subHist.Initialize(regionEntity, history.Capture(e.region, box.Min)); err != nil {
		// Fresh manager; cannot happen.
		panic(err)
	}

	e.origin = origin
	e.pos = box.Min
	e.path = normalized
	e.state = StateFloating
}

// Commit merges the floating region back into its origin layer and returns
// to Idle. With no floating edits the region is simply painted at its
// current position as a single history step. Otherwise each sub-history
// entry is replayed on top of the hole checkpoint to produce one full-layer
// checkpoint per edit, and those replace the hole via
// ReplaceTopWithSequence, preserving undo granularity as if the user had
// drawn directly on the layer. It returns the origin layer id and whether a
// merge happened.
func (e *Engine) Commit() (layer.ID, bool) {
	if e.state != StateFloating {
		return 0, false
	}
	origin := e.origin
	l := e.layers.Get(origin)
	if l == nil {
		// Origin layer is gone; nothing to merge into.
		e.reset()
		return origin, false
	}

	// A move since the last saved edit is still an edit; record it so the
	// merge below sees the final position.
	if top, ok := e.subHist.Top(regionEntity); ok && (top.Origin != e.pos && e.subHist.Len(regionEntity) > 1) {
		e.SaveEdit()
	}

	entries := e.subHist.Snapshots(regionEntity)
	if len(entries) <= 1 {
		// Simple path: no edits while floating. Paint the region at its
		// current position and fold the hole checkpoint into the result.
		raster.DrawOver(l.Surface, e.region, e.pos)
		e.layerHist.ReplaceTopWithSequence(history.EntityID(origin), []history.Snapshot{
			history.Capture(l.Surface, image.Point{}),
		})
		e.reset()
		return origin, true
	}

	hole, ok := e.layerHist.Top(history.EntityID(origin))
	if !ok {
		e.reset()
		return origin, false
	}
	seq := make([]history.Snapshot, 0, len(entries)-1)
	for _, entry := range entries[1:] {
		recon := raster.Clone(hole.Pix)
		raster.DrawOver(recon, entry.Pix, entry.Origin)
		seq = append(seq, history.Snapshot{Pix: recon})
	}
	raster.Restore(l.Surface, seq[len(seq)-1].Pix)
	e.layerHist.ReplaceTopWithSequence(history.EntityID(origin), seq)
	e.reset()
	return origin, true
}

// DeleteContents clears the region within the lasso clip and records a
// sub-history entry. Pixels of the bounding box outside the lasso shape are
// untouched. Valid only while floating.
func (e *Engine) DeleteContents() {
	if e.state != StateFloating {
		return
	}
	raster.ClearMasked(e.region, e.mask)
	e.SaveEdit()
}

// Move shifts the floating region. It mutates position only; the caller
// records the gesture with SaveEdit on release.
func (e *Engine) Move(dx, dy int) {
	if e.state != StateFloating {
		return
	}
	e.pos = e.pos.Add(image.Pt(dx, dy))
}

// DrawWithinClip paints a stroke segment onto the floating region, confined
// to the lasso shape. Coordinates are model-space; erase selects eraser
// semantics. The caller records the finished gesture with SaveEdit.
func (e *Engine) DrawWithinClip(from, to image.Point, col color.RGBA, width int, erase bool) {
	if e.state != StateFloating {
		return
	}
	f := from.Sub(e.pos)
	t := to.Sub(e.pos)
	raster.StrokeLine(e.region, f.X, f.Y, t.X, t.Y, col, width, erase, e.clip)
}

// FillWithinClip flood-fills the floating region starting at the model-space
// point (x,y), confined to the lasso shape. A seed outside the clip, or a
// fill that changes nothing, is a no-op and records no history.
func (e *Engine) FillWithinClip(x, y int, col color.RGBA) {
	if e.state != StateFloating {
		return
	}
	seed := image.Pt(x, y).Sub(e.pos)
	if !e.clip(seed.X, seed.Y) {
		return
	}
	opts := fill.Options{Tolerance: e.tolerance, Clip: e.clip}
	if fill.Flood(e.region, seed, col, opts) {
		e.SaveEdit()
	}
}

// SaveEdit records the region's current pixels and position as a
// sub-history entry. Input handlers call it at the end of a stroke or drag
// gesture.
func (e *Engine) SaveEdit() {
	if e.state != StateFloating {
		return
	}
	e.subHist.Save(regionEntity, history.Capture(e.region, e.pos))
}

// UndoEdit steps the floating region back one sub-history entry, restoring
// both pixels and position.
func (e *Engine) UndoEdit() {
	if e.state != StateFloating {
		return
	}
	if snap, ok := e.subHist.Undo(regionEntity); ok {
		e.applySnapshot(snap)
	}
}

// RedoEdit reverses the most recent UndoEdit.
func (e *Engine) RedoEdit() {
	if e.state != StateFloating {
		return
	}
	if snap, ok := e.subHist.Redo(regionEntity); ok {
		e.applySnapshot(snap)
	}
}

// EditLen returns the number of sub-history entries, zero when not floating.
func (e *Engine) EditLen() int {
	if e.state != StateFloating {
		return 0
	}
	return e.subHist.Len(regionEntity)
}

// EditRedoLen returns the number of redoable sub-history entries.
func (e *Engine) EditRedoLen() int {
	if e.state != StateFloating {
		return 0
	}
	return e.subHist.RedoLen(regionEntity)
}

// HitTest reports whether the model-space point (x,y) lies inside the
// floating region's lasso shape at its current position.
func (e *Engine) HitTest(x, y int) bool {
	if e.state != StateFloating {
		return false
	}
	return e.path.Contains(image.Pt(x, y).Sub(e.pos))
}

// ForceIdle discards the selection without merging. The editor session
// invokes it when the origin layer is undone or deleted while a region
// floats: the cut the region came from no longer exists in that form, so
// the region's provenance is stale.
func (e *Engine) ForceIdle() {
	e.reset()
}

// Overlay returns the data the render path needs to draw the lasso outline
// and, while floating, the region bitmap. The second return is false when
// there is nothing to draw.
func (e *Engine) Overlay() (Overlay, bool) {
	switch e.state {
	case StateDrawingPath:
		return Overlay{State: e.state, Path: append(raster.Polygon(nil), e.path...)}, true
	case StateFloating:
		return Overlay{
			State:  e.state,
			Path:   e.path.Translate(e.pos),
			Region: e.region,
			Pos:    e.pos,
		}, true
	default:
		return Overlay{}, false
	}
}

func (e *Engine) clip(x, y int) bool {
	return e.mask.AlphaAt(x, y).A > 0
}

func (e *Engine) applySnapshot(snap history.Snapshot) {
	raster.Restore(e.region, snap.Pix)
	e.pos = snap.Origin
}

func (e *Engine) reset() {
	if e.subHist != nil {
		e.subHist.Destroy(regionEntity)
	}
	e.state = StateIdle
	e.path = nil
	e.origin = 0
	e.region = nil
	e.mask = nil
	e.pos = image.Point{}
	e.subHist = nil
}
