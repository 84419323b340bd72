package selection

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/Maoric2018/painting/internal/history"
	"github.com/Maoric2018/painting/internal/layer"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

// newFixture builds a 20x20 canvas with one solid red layer, its initialized
// history and an engine on top of both.
func newFixture(t *testing.T) (*layer.Stack, *layer.Layer, *history.Manager, *Engine) {
	t.Helper()
	stack := layer.NewStack(20, 20)
	l := stack.Add()
	draw.Draw(l.Surface, l.Surface.Bounds(), image.NewUniform(red), image.Point{}, draw.Src)
	hist := history.NewManager(30)
	if err := hist.Initialize(history.EntityID(l.ID()), history.Capture(l.Surface, image.Point{})); err != nil {
		t.Fatalf("initialize history: %v", err)
	}
	return stack, l, hist, NewEngine(stack, hist, 30, 30)
}

// lassoSquare selects the square with corners (2,2) and (12,12); the lifted
// region floats at position (2,2).
func lassoSquare(e *Engine, origin layer.ID) {
	e.StartPath(2, 2)
	e.AddPoint(12, 2)
	e.AddPoint(12, 12)
	e.AddPoint(2, 12)
	e.Finalize(origin)
}

func TestLifecycle(t *testing.T) {
	_, l, _, e := newFixture(t)
	if e.State() != StateIdle {
		t.Fatalf("initial state = %v", e.State())
	}
	e.StartPath(2, 2)
	if e.State() != StateDrawingPath {
		t.Fatalf("state after StartPath = %v", e.State())
	}
	e.AddPoint(12, 2)
	e.AddPoint(12, 12)
	e.AddPoint(2, 12)
	e.Finalize(l.ID())
	if e.State() != StateFloating {
		t.Fatalf("state after Finalize = %v", e.State())
	}
	if e.Pos() != image.Pt(2, 2) {
		t.Fatalf("pos = %v, want (2,2)", e.Pos())
	}
	if _, ok := e.Commit(); !ok {
		t.Fatal("commit reported no merge")
	}
	if e.State() != StateIdle {
		t.Fatalf("state after Commit = %v", e.State())
	}
}

func TestFinalizeDiscardsDegeneratePaths(t *testing.T) {
	_, l, hist, e := newFixture(t)

	// Two points only.
	e.StartPath(2, 2)
	e.AddPoint(12, 12)
	e.Finalize(l.ID())
	if e.State() != StateIdle {
		t.Fatalf("state = %v, want Idle", e.State())
	}

	// Three points with a flat bounding box.
	e.StartPath(2, 2)
	e.AddPoint(12, 2)
	e.AddPoint(7, 2)
	e.Finalize(l.ID())
	if e.State() != StateIdle {
		t.Fatalf("state = %v, want Idle", e.State())
	}

	if got := hist.Len(history.EntityID(l.ID())); got != 1 {
		t.Fatalf("discarded paths touched history: len = %d", got)
	}
	if got := l.Surface.RGBAAt(5, 5); got != red {
		t.Fatalf("discarded path modified the layer: %v", got)
	}
}

func TestFinalizeCutsHole(t *testing.T) {
	_, l, hist, e := newFixture(t)
	lassoSquare(e, l.ID())

	if got := l.Surface.RGBAAt(5, 5); (got != color.RGBA{}) {
		t.Fatalf("inside cut = %v, want transparent", got)
	}
	if got := l.Surface.RGBAAt(0, 0); got != red {
		t.Fatalf("outside cut = %v, want red", got)
	}
	if got := hist.Len(history.EntityID(l.ID())); got != 2 {
		t.Fatalf("history len = %d, want baseline + hole", got)
	}
	ov, ok := e.Overlay()
	if !ok || ov.Region == nil {
		t.Fatal("no overlay while floating")
	}
	if got := ov.Region.RGBAAt(3, 3); got != red {
		t.Fatalf("lifted pixel = %v, want red", got)
	}
}

func TestCommitWithoutEditsRestoresPixels(t *testing.T) {
	_, l, hist, e := newFixture(t)
	lassoSquare(e, l.ID())
	if _, ok := e.Commit(); !ok {
		t.Fatal("commit reported no merge")
	}
	if got := l.Surface.RGBAAt(5, 5); got != red {
		t.Fatalf("pixel after commit = %v, want red", got)
	}
	// The hole checkpoint was folded into the merged result, not kept.
	if got := hist.Len(history.EntityID(l.ID())); got != 2 {
		t.Fatalf("history len = %d, want 2", got)
	}
}

func TestCommitMergePreservesUndoGranularity(t *testing.T) {
	_, l, hist, e := newFixture(t)
	id := history.EntityID(l.ID())
	lassoSquare(e, l.ID())

	e.DrawWithinClip(image.Pt(5, 5), image.Pt(5, 5), blue, 1, false)
	e.SaveEdit()
	e.Move(3, 0)
	e.SaveEdit()
	if got := e.EditLen(); got != 3 {
		t.Fatalf("edit len = %d, want 3", got)
	}

	if _, ok := e.Commit(); !ok {
		t.Fatal("commit reported no merge")
	}
	// One layer checkpoint per floating edit, on top of the baseline.
	if got := hist.Len(id); got != 3 {
		t.Fatalf("history len = %d, want 3", got)
	}
	// The blue dot moved with the region.
	if got := l.Surface.RGBAAt(8, 5); got != blue {
		t.Fatalf("moved dot = %v, want blue", got)
	}
	// The vacated strip stays a hole.
	if got := l.Surface.RGBAAt(3, 5); (got != color.RGBA{}) {
		t.Fatalf("vacated pixel = %v, want transparent", got)
	}

	// Undoing steps back through the replayed edits one at a time.
	snap, ok := hist.Undo(id)
	if !ok {
		t.Fatal("undo failed")
	}
	if got := snap.Pix.RGBAAt(5, 5); got != blue {
		t.Fatalf("pre-move state dot = %v, want blue", got)
	}
	if got := snap.Pix.RGBAAt(8, 5); got == blue {
		t.Fatal("pre-move state already shows the moved dot")
	}
	snap, ok = hist.Undo(id)
	if !ok {
		t.Fatal("second undo failed")
	}
	if got := snap.Pix.RGBAAt(5, 5); got != red {
		t.Fatalf("baseline dot = %v, want red", got)
	}
}

func TestCommitAfterUnsavedMove(t *testing.T) {
	_, l, hist, e := newFixture(t)
	lassoSquare(e, l.ID())
	e.Move(3, 0)
	if _, ok := e.Commit(); !ok {
		t.Fatal("commit reported no merge")
	}
	// The region lands at its moved position even without an explicit save.
	if got := l.Surface.RGBAAt(13, 5); got != red {
		t.Fatalf("moved region pixel = %v, want red", got)
	}
	if got := l.Surface.RGBAAt(3, 5); (got != color.RGBA{}) {
		t.Fatalf("vacated pixel = %v, want transparent", got)
	}
	if got := hist.Len(history.EntityID(l.ID())); got != 2 {
		t.Fatalf("history len = %d, want 2", got)
	}
}

func TestStartPathCommitsPriorSelection(t *testing.T) {
	_, l, hist, e := newFixture(t)
	lassoSquare(e, l.ID())
	e.StartPath(15, 15)
	if e.State() != StateDrawingPath {
		t.Fatalf("state = %v, want DrawingPath", e.State())
	}
	if got := l.Surface.RGBAAt(5, 5); got != red {
		t.Fatalf("prior selection not merged: %v", got)
	}
	if got := hist.Len(history.EntityID(l.ID())); got != 2 {
		t.Fatalf("history len = %d, want 2", got)
	}
}

func TestDeleteContents(t *testing.T) {
	_, l, _, e := newFixture(t)
	lassoSquare(e, l.ID())
	e.DeleteContents()
	if got := e.EditLen(); got != 2 {
		t.Fatalf("edit len = %d, want 2", got)
	}
	e.Commit()
	if got := l.Surface.RGBAAt(5, 5); (got != color.RGBA{}) {
		t.Fatalf("deleted pixel = %v, want transparent", got)
	}
	if got := l.Surface.RGBAAt(0, 0); got != red {
		t.Fatalf("outside pixel = %v, want red", got)
	}
}

func TestUndoRedoEditRestoresPosition(t *testing.T) {
	_, l, _, e := newFixture(t)
	lassoSquare(e, l.ID())
	e.Move(3, 0)
	e.SaveEdit()
	if e.Pos() != image.Pt(5, 2) {
		t.Fatalf("pos = %v, want (5,2)", e.Pos())
	}
	e.UndoEdit()
	if e.Pos() != image.Pt(2, 2) {
		t.Fatalf("pos after undo = %v, want (2,2)", e.Pos())
	}
	e.RedoEdit()
	if e.Pos() != image.Pt(5, 2) {
		t.Fatalf("pos after redo = %v, want (5,2)", e.Pos())
	}
}

func TestHitTestTracksPosition(t *testing.T) {
	_, l, _, e := newFixture(t)
	lassoSquare(e, l.ID())
	if !e.HitTest(5, 5) {
		t.Fatal("point inside selection missed")
	}
	if e.HitTest(0, 0) {
		t.Fatal("point outside selection hit")
	}
	e.Move(3, 0)
	if e.HitTest(4, 5) {
		t.Fatal("vacated point still hit after move")
	}
	if !e.HitTest(14, 5) {
		t.Fatal("moved selection missed")
	}
}

func TestFillWithinClip(t *testing.T) {
	_, l, _, e := newFixture(t)
	lassoSquare(e, l.ID())

	// A seed outside the lasso shape records nothing.
	e.FillWithinClip(0, 0, blue)
	if got := e.EditLen(); got != 1 {
		t.Fatalf("edit len after outside seed = %d, want 1", got)
	}

	e.FillWithinClip(5, 5, blue)
	if got := e.EditLen(); got != 2 {
		t.Fatalf("edit len after fill = %d, want 2", got)
	}
	ov, _ := e.Overlay()
	if got := ov.Region.RGBAAt(3, 3); got != blue {
		t.Fatalf("filled pixel = %v, want blue", got)
	}
}

func TestForceIdleDiscardsSelection(t *testing.T) {
	_, l, _, e := newFixture(t)
	lassoSquare(e, l.ID())
	e.ForceIdle()
	if e.State() != StateIdle {
		t.Fatalf("state = %v, want Idle", e.State())
	}
	if _, ok := e.Overlay(); ok {
		t.Fatal("overlay still present after ForceIdle")
	}
	// The cut stays; discarding does not merge.
	if got := l.Surface.RGBAAt(5, 5); (got != color.RGBA{}) {
		t.Fatalf("pixel = %v, want transparent", got)
	}
}

func TestOverlayWhileDrawing(t *testing.T) {
	_, _, _, e := newFixture(t)
	e.StartPath(2, 2)
	e.AddPoint(8, 2)
	ov, ok := e.Overlay()
	if !ok || ov.State != StateDrawingPath {
		t.Fatalf("overlay = (%+v, %v)", ov, ok)
	}
	if len(ov.Path) != 2 || ov.Path[1] != image.Pt(8, 2) {
		t.Fatalf("overlay path = %v", ov.Path)
	}
}
