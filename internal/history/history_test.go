package history

import (
	"errors"
	"image"
	"testing"

	"github.com/Maoric2018/painting/internal/raster"
)

// snap produces a distinguishable snapshot: pixel (0,0) carries v in the red
// channel.
func snap(v uint8) Snapshot {
	img := raster.New(2, 2)
	img.Pix[0] = v
	img.Pix[3] = 255
	return Snapshot{Pix: img}
}

func snapValue(s Snapshot) uint8 { return s.Pix.Pix[0] }

func TestInitializeTwiceFails(t *testing.T) {
	m := NewManager(0)
	if err := m.Initialize(1, snap(0)); err != nil {
		t.Fatalf("first initialize: %v", err)
	}
	if err := m.Initialize(1, snap(1)); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second initialize err = %v, want ErrAlreadyInitialized", err)
	}
}

func TestUndoRedo(t *testing.T) {
	m := NewManager(10)
	if err := m.Initialize(1, snap(0)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	m.Save(1, snap(1))
	m.Save(1, snap(2))

	s, ok := m.Undo(1)
	if !ok || snapValue(s) != 1 {
		t.Fatalf("first undo = (%d,%v), want (1,true)", snapValue(s), ok)
	}
	s, ok = m.Undo(1)
	if !ok || snapValue(s) != 0 {
		t.Fatalf("second undo = (%d,%v), want (0,true)", snapValue(s), ok)
	}
	// At the baseline nothing changes.
	s, ok = m.Undo(1)
	if ok || snapValue(s) != 0 {
		t.Fatalf("undo past baseline = (%d,%v), want (0,false)", snapValue(s), ok)
	}

	s, ok = m.Redo(1)
	if !ok || snapValue(s) != 1 {
		t.Fatalf("first redo = (%d,%v), want (1,true)", snapValue(s), ok)
	}
	s, ok = m.Redo(1)
	if !ok || snapValue(s) != 2 {
		t.Fatalf("second redo = (%d,%v), want (2,true)", snapValue(s), ok)
	}
	if _, ok := m.Redo(1); ok {
		t.Fatal("redo on empty stack reported ok")
	}
}

func TestSaveClearsRedo(t *testing.T) {
	m := NewManager(10)
	if err := m.Initialize(1, snap(0)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	m.Save(1, snap(1))
	m.Save(1, snap(2))
	if _, ok := m.Undo(1); !ok {
		t.Fatal("undo failed")
	}
	m.Save(1, snap(3))
	if got := m.RedoLen(1); got != 0 {
		t.Fatalf("redo stack after save = %d, want 0", got)
	}
	if s, ok := m.Undo(1); !ok || snapValue(s) != 1 {
		t.Fatalf("undo after branch = (%d,%v), want (1,true)", snapValue(s), ok)
	}
}

func TestRetentionEvictsOldest(t *testing.T) {
	m := NewManager(5)
	if err := m.Initialize(1, snap(0)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	for v := uint8(1); v <= 10; v++ {
		m.Save(1, snap(v))
	}
	if got := m.Len(1); got != 5 {
		t.Fatalf("len = %d, want 5", got)
	}
	// Undo down to the floor; the oldest retained entry is 6.
	var last Snapshot
	for {
		s, ok := m.Undo(1)
		last = s
		if !ok {
			break
		}
	}
	if snapValue(last) != 6 {
		t.Fatalf("floor entry = %d, want 6", snapValue(last))
	}
	if got := m.Len(1); got != 1 {
		t.Fatalf("len at floor = %d, want 1", got)
	}
}

func TestSaveUnregisteredIgnored(t *testing.T) {
	m := NewManager(5)
	m.Save(42, snap(1))
	if got := m.Len(42); got != 0 {
		t.Fatalf("unregistered save created history of len %d", got)
	}
}

func TestReplaceTopWithSequence(t *testing.T) {
	m := NewManager(10)
	if err := m.Initialize(1, snap(0)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	m.Save(1, snap(1))
	m.Save(1, snap(2)) // coarse entry to be replaced
	m.Save(1, snap(3))
	if _, ok := m.Undo(1); !ok {
		t.Fatal("undo failed")
	}

	m.ReplaceTopWithSequence(1, []Snapshot{snap(10), snap(11), snap(12)})
	if got := m.Len(1); got != 5 {
		t.Fatalf("len after replace = %d, want 5", got)
	}
	if got := m.RedoLen(1); got != 0 {
		t.Fatalf("redo not cleared by replace: %d", got)
	}
	top, ok := m.Top(1)
	if !ok || snapValue(top) != 12 {
		t.Fatalf("top = (%d,%v), want (12,true)", snapValue(top), ok)
	}
	if s, ok := m.Undo(1); !ok || snapValue(s) != 11 {
		t.Fatalf("undo into sequence = (%d,%v), want (11,true)", snapValue(s), ok)
	}
	if s, ok := m.Undo(1); !ok || snapValue(s) != 10 {
		t.Fatalf("second undo = (%d,%v), want (10,true)", snapValue(s), ok)
	}
	// Below the sequence sits the untouched earlier entry.
	if s, ok := m.Undo(1); !ok || snapValue(s) != 1 {
		t.Fatalf("third undo = (%d,%v), want (1,true)", snapValue(s), ok)
	}
}

func TestReplaceTopWithSequenceEvicts(t *testing.T) {
	m := NewManager(3)
	if err := m.Initialize(1, snap(0)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	m.Save(1, snap(1))
	m.ReplaceTopWithSequence(1, []Snapshot{snap(10), snap(11), snap(12)})
	if got := m.Len(1); got != 3 {
		t.Fatalf("len = %d, want limit 3", got)
	}
	snaps := m.Snapshots(1)
	if snapValue(snaps[0]) != 10 || snapValue(snaps[2]) != 12 {
		t.Fatalf("unexpected retained sequence: %d..%d", snapValue(snaps[0]), snapValue(snaps[2]))
	}
}

func TestCaptureClones(t *testing.T) {
	img := raster.New(2, 2)
	img.Pix[0] = 7
	s := Capture(img, image.Pt(3, 4))
	img.Pix[0] = 99
	if snapValue(s) != 7 {
		t.Fatalf("snapshot shares pixels with source: %d", snapValue(s))
	}
	if s.Origin != image.Pt(3, 4) {
		t.Fatalf("origin %v, want (3,4)", s.Origin)
	}
}

func TestDestroy(t *testing.T) {
	m := NewManager(5)
	if err := m.Initialize(1, snap(0)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	m.Save(1, snap(1))
	m.Undo(1)
	m.Destroy(1)
	if m.Len(1) != 0 || m.RedoLen(1) != 0 {
		t.Fatal("destroy left stacks behind")
	}
	// The id can be registered again after destruction.
	if err := m.Initialize(1, snap(2)); err != nil {
		t.Fatalf("re-initialize after destroy: %v", err)
	}
}
