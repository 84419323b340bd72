// Package app hosts the editor in a shiny window: it owns the event loop,
// translates pointer and keyboard input into editor operations and runs
// the frame pipeline.
package app

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/Maoric2018/painting/internal/clipboard"
	"github.com/Maoric2018/painting/internal/editor"
	"github.com/Maoric2018/painting/internal/notify"
	"github.com/Maoric2018/painting/internal/selection"
	"github.com/Maoric2018/painting/internal/theme"
)

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Code      key.Code
	Modifiers key.Modifiers
}

// App wires an editor session to a window.
type App struct {
	session  *editor.Session
	th       *theme.Theme
	notifier *notify.Notifier
	title    string

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an App during creation.
type Option func(*App)

// WithTheme sets the UI color scheme.
func WithTheme(th *theme.Theme) Option { return func(a *App) { a.th = th } }

// WithNotifier sets the desktop notification sink for clipboard events.
func WithNotifier(n *notify.Notifier) Option { return func(a *App) { a.notifier = n } }

// WithTitle sets the window title text.
func WithTitle(title string) Option { return func(a *App) { a.title = title } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *App) { a.onClose = fn } }

// New creates an App around the given session.
func New(sess *editor.Session, opts ...Option) *App {
	a := &App{
		session: sess,
		th:      theme.Default(),
		title:   "Painting",
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *App) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *App) Run() { driver.Main(a.Main) }

func (a *App) Main(s screen.Screen) {
	sess := a.session
	th := a.th

	// Ensure the toolbar is wide enough to fit the title and all tool
	// button labels so the UI contents are not clipped on start up.
	d := &font.Drawer{Face: basicfont.Face7x13}
	max := d.MeasureString(a.title).Ceil() + 8
	toolLabels := []string{"B:Brush", "E:Erase", "F:Fill", "S:Lasso", "M:Move"}
	for _, lbl := range toolLabels {
		if w := d.MeasureString(lbl).Ceil() + 8; w > max {
			max = w
		}
	}
	if max > toolbarWidth {
		toolbarWidth = max
	}

	canvasW, canvasH := sess.Layers.Size()
	width := canvasW + toolbarWidth
	height := canvasH + layerBarHeight + bottomHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.title})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer a.notifyClose()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sess.Redraw():
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	tool := editor.ToolBrush
	colorIdx := 0
	widthIdx := 1

	var strokeActive bool
	var lassoActive bool
	var movingSel bool
	var lastModel image.Point
	var message string
	var messageUntil time.Time
	var confirmDelete bool

	showMessage := func(msg string) {
		message = msg
		log.Print(msg)
		messageUntil = time.Now().Add(2 * time.Second)
	}

	// Pointer-up and pointer-leave finish an in-progress gesture through
	// the same path.
	endGestures := func() {
		if strokeActive {
			strokeActive = false
			sess.EndStroke()
		}
		if lassoActive {
			lassoActive = false
			sess.LassoFinish()
		}
		if movingSel {
			movingSel = false
			sess.EndSelectionMove()
		}
		if sess.View.Panning() {
			sess.View.EndPan()
		}
	}

	toolButtons = []*CacheButton{
		{Button: &ToolButton{label: "B:Brush", tool: editor.ToolBrush, th: th}},
		{Button: &ToolButton{label: "E:Erase", tool: editor.ToolEraser, th: th}},
		{Button: &ToolButton{label: "F:Fill", tool: editor.ToolFill, th: th}},
		{Button: &ToolButton{label: "S:Lasso", tool: editor.ToolLasso, th: th}},
		{Button: &ToolButton{label: "M:Move", tool: editor.ToolMove, th: th}},
	}
	for _, cb := range toolButtons {
		tb := cb.Button.(*ToolButton)
		t := tb
		tb.onSelect = func() {
			endGestures()
			tool = t.tool
		}
	}

	selectLayer := func(i int) {
		ls := sess.Layers.Layers()
		if i >= 0 && i < len(ls) {
			sess.Layers.SetActive(ls[i].ID())
			w.Send(paint.Event{})
		}
	}

	composite := func() *image.RGBA {
		cw, ch := sess.Layers.Size()
		comp := image.NewRGBA(image.Rect(0, 0, cw, ch))
		sess.Composite(comp)
		return comp
	}

	keyboardAction := map[KeyShortcut]string{}
	actions := map[string]func(){}
	register := func(name string, keys []KeyShortcut, fn func()) {
		actions[name] = fn
		for _, sc := range keys {
			keyboardAction[sc] = name
		}
	}

	register("undo", []KeyShortcut{{Code: key.CodeZ, Modifiers: key.ModControl}}, func() {
		sess.Undo()
	})
	register("redo", []KeyShortcut{{Code: key.CodeY, Modifiers: key.ModControl}}, func() {
		sess.Redo()
	})
	register("copy", []KeyShortcut{{Code: key.CodeC, Modifiers: key.ModControl}}, func() {
		comp := composite()
		if err := clipboard.WriteImage(comp); err != nil {
			log.Printf("copy: %v", err)
			return
		}
		if a.notifier != nil {
			a.notifier.Copy("canvas copied to clipboard", comp)
		}
		showMessage("copied to clipboard")
	})
	register("paste", []KeyShortcut{{Code: key.CodeV, Modifiers: key.ModControl}}, func() {
		img, err := clipboard.ReadImage()
		if err != nil {
			log.Printf("paste: %v", err)
			return
		}
		l := sess.PasteImage(img)
		if a.notifier != nil {
			a.notifier.Paste(fmt.Sprintf("pasted as %s", l.Name))
		}
		showMessage(fmt.Sprintf("pasted as %s", l.Name))
	})
	register("newlayer", []KeyShortcut{{Code: key.CodeN, Modifiers: key.ModControl}}, func() {
		l := sess.AddLayer()
		showMessage(fmt.Sprintf("added %s", l.Name))
	})
	register("dellayer", []KeyShortcut{{Code: key.CodeD, Modifiers: key.ModControl}}, func() {
		if err := sess.DeleteActiveLayer(); err != nil {
			showMessage("cannot delete the last layer")
		}
	})
	register("merge", []KeyShortcut{{Code: key.CodeReturnEnter}, {Code: key.CodeEscape}}, func() {
		endGestures()
		sess.CommitSelection()
	})
	register("clearsel", []KeyShortcut{{Code: key.CodeDeleteForward}, {Code: key.CodeDeleteBackspace}}, func() {
		sess.DeleteSelectionContents()
	})
	register("quit", nil, func() {
		w.Send(lifecycle.Event{To: lifecycle.StageDead})
	})

	handleShortcut := func(action string) {
		if fn, ok := actions[action]; ok {
			fn()
		}
		w.Send(paint.Event{})
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan frameState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st, selectLayer)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
		}
	}()

	// Canvas-area coordinates start just right of the toolbar and below
	// the layer strip; the viewport transform works in that space.
	canvasPos := func(x, y float32) (float64, float64) {
		return float64(x) - float64(toolbarWidth), float64(y) - layerBarHeight
	}

	canvasRect := func() image.Rectangle {
		x0, y0 := sess.View.ModelToDevice(0, 0)
		cw, ch := sess.Layers.Size()
		x1, y1 := sess.View.ModelToDevice(float64(cw), float64(ch))
		return image.Rect(
			toolbarWidth+int(x0), layerBarHeight+int(y0),
			toolbarWidth+int(x1), layerBarHeight+int(y1),
		)
	}

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil {
				if dropCount < frameDropThreshold {
					paintCancel()
					dropCount++
				}
			}
			paintMu.Unlock()

			comp := composite()
			var outline []image.Point
			var outlineOpen bool
			if ov, ok := sess.Selection.Overlay(); ok {
				outlineOpen = ov.State == selection.StateDrawingPath
				outline = make([]image.Point, 0, len(ov.Path))
				for _, p := range ov.Path {
					sx, sy := sess.View.ModelToDevice(float64(p.X), float64(p.Y))
					outline = append(outline, image.Pt(toolbarWidth+int(sx), layerBarHeight+int(sy)))
				}
			}
			layers := sess.Layers.Layers()
			entries := make([]layerEntry, len(layers))
			activeID := sess.Layers.ActiveID()
			for i, l := range layers {
				entries[i] = layerEntry{name: l.Name, visible: l.Visible, active: l.ID() == activeID}
			}
			st := frameState{
				width:          width,
				height:         height,
				th:             th,
				title:          a.title,
				comp:           comp,
				dstRect:        canvasRect(),
				outline:        outline,
				outlineOpen:    outlineOpen,
				tool:           tool,
				colorIdx:       colorIdx,
				widthIdx:       widthIdx,
				layers:         entries,
				zoom:           sess.View.Zoom(),
				floating:       sess.Selection.State() == selection.StateFloating,
				message:        message,
				messageUntil:   messageUntil,
				handleShortcut: handleShortcut,
			}
			select {
			case paintCh <- st:
			default:
				// Replace the stale queued frame with the fresh one.
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if message != "" && time.Now().Before(messageUntil) && e.Direction == mouse.DirPress {
				messageUntil = time.Time{}
				w.Send(paint.Event{})
				continue
			}
			if int(e.Y) >= height-bottomHeight {
				endGestures()
				p := image.Point{int(e.X), int(e.Y)}
				hoverShortcut = -1
				for i, sc := range shortcutRects {
					if p.In(sc.rect) {
						hoverShortcut = i
						if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
							sc.Activate()
						}
						break
					}
				}
				if e.Direction == mouse.DirNone {
					w.Send(paint.Event{})
				}
				continue
			}
			if int(e.Y) < layerBarHeight {
				endGestures()
				hoverLayer = -1
				p := image.Point{int(e.X), int(e.Y)}
				for i, lb := range layerButtons {
					if p.In(lb.rect) {
						hoverLayer = i
						if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
							lb.Activate()
						}
						break
					}
				}
				if e.Direction == mouse.DirNone {
					w.Send(paint.Event{})
				}
				continue
			}
			if int(e.X) < toolbarWidth {
				endGestures()
				pos := int(e.Y) - layerBarHeight
				idx := pos / 24
				if idx < len(toolButtons) {
					if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
						toolButtons[idx].Activate()
						w.Send(paint.Event{})
					}
					hoverTool = idx
					if e.Direction == mouse.DirNone {
						w.Send(paint.Event{})
					}
					continue
				}
				pos -= len(toolButtons) * 24
				pos -= 4
				paletteCols := toolbarWidth / 18
				rows := (len(palette) + paletteCols - 1) / paletteCols
				paletteHeight := rows * 18
				if pos >= 0 && pos < paletteHeight {
					colX := (int(e.X) - 4) / 18
					colY := pos / 18
					cidx := colY*paletteCols + colX
					if cidx >= 0 && cidx < len(palette) {
						if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
							colorIdx = cidx
						}
						hoverPalette = cidx
						if e.Direction != mouse.DirRelease {
							w.Send(paint.Event{})
						}
						continue
					}
				}
				pos -= paletteHeight
				pos -= 4
				if (tool == editor.ToolBrush || tool == editor.ToolEraser) && pos >= 0 {
					widx := pos / 16
					if widx >= 0 && widx < len(brushWidths) {
						if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
							widthIdx = widx
						}
						hoverWidth = widx
						if e.Direction != mouse.DirRelease {
							w.Send(paint.Event{})
						}
						continue
					}
				}
				if e.Direction == mouse.DirNone {
					hoverTool = -1
					hoverPalette = -1
					hoverWidth = -1
					w.Send(paint.Event{})
				}
				continue
			}

			cx, cy := canvasPos(e.X, e.Y)
			mx, my := sess.View.DeviceToModel(cx, cy)
			model := image.Pt(int(mx), int(my))

			if e.Button == mouse.ButtonWheelUp || e.Button == mouse.ButtonWheelDown {
				if e.Direction != mouse.DirRelease {
					dir := 1
					if e.Button == mouse.ButtonWheelDown {
						dir = -1
					}
					sess.View.ZoomAt(cx, cy, dir)
					w.Send(paint.Event{})
				}
				continue
			}

			if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
				confirmDelete = false
				switch tool {
				case editor.ToolBrush, editor.ToolEraser:
					strokeActive = true
					lastModel = model
					sess.Stroke(model, model, tool, palette[colorIdx], brushWidths[widthIdx])
				case editor.ToolFill:
					sess.Fill(model.X, model.Y, palette[colorIdx])
				case editor.ToolLasso:
					lassoActive = true
					sess.LassoStart(model.X, model.Y)
				case editor.ToolMove:
					if sess.Selection.HitTest(model.X, model.Y) {
						movingSel = true
						lastModel = model
					} else {
						sess.View.BeginPan(cx, cy)
					}
				}
				continue
			}
			if e.Direction == mouse.DirNone {
				switch {
				case strokeActive:
					sess.Stroke(lastModel, model, tool, palette[colorIdx], brushWidths[widthIdx])
					lastModel = model
				case lassoActive:
					sess.LassoAdd(model.X, model.Y)
				case movingSel:
					sess.MoveSelection(model.X-lastModel.X, model.Y-lastModel.Y)
					lastModel = model
				case sess.View.Panning():
					sess.View.UpdatePan(cx, cy)
					w.Send(paint.Event{})
				}
				continue
			}
			if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease {
				endGestures()
				w.Send(paint.Event{})
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			ks := KeyShortcut{Code: e.Code, Modifiers: e.Modifiers}
			if action, ok := keyboardAction[ks]; ok {
				if action == "dellayer" {
					if !confirmDelete {
						confirmDelete = true
						showMessage("press ^D again to delete the layer")
						w.Send(paint.Event{})
						continue
					}
					confirmDelete = false
				} else {
					confirmDelete = false
				}
				handleShortcut(action)
				continue
			}
			confirmDelete = false
			switch e.Rune {
			case 'b', 'B':
				endGestures()
				tool = editor.ToolBrush
				w.Send(paint.Event{})
			case 'e', 'E':
				endGestures()
				tool = editor.ToolEraser
				w.Send(paint.Event{})
			case 'f', 'F':
				endGestures()
				tool = editor.ToolFill
				w.Send(paint.Event{})
			case 's', 'S':
				endGestures()
				tool = editor.ToolLasso
				w.Send(paint.Event{})
			case 'm', 'M':
				endGestures()
				tool = editor.ToolMove
				w.Send(paint.Event{})
			case 'v', 'V':
				sess.Layers.ToggleVisibility(sess.Layers.ActiveID())
				sess.RequestRedraw()
			case 'q', 'Q':
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			case '+', '=':
				cw, ch := sess.Layers.Size()
				sx, sy := sess.View.ModelToDevice(float64(cw)/2, float64(ch)/2)
				sess.View.ZoomAt(sx, sy, 1)
				w.Send(paint.Event{})
			case '-':
				cw, ch := sess.Layers.Size()
				sx, sy := sess.View.ModelToDevice(float64(cw)/2, float64(ch)/2)
				sess.View.ZoomAt(sx, sy, -1)
				w.Send(paint.Event{})
			case -1:
				switch e.Code {
				case key.CodeTab:
					ls := sess.Layers.Layers()
					for i, l := range ls {
						if l.ID() == sess.Layers.ActiveID() {
							sess.Layers.SetActive(ls[(i+1)%len(ls)].ID())
							break
						}
					}
					w.Send(paint.Event{})
				case key.CodeLeftArrow:
					sess.View.PanBy(16, 0)
					w.Send(paint.Event{})
				case key.CodeRightArrow:
					sess.View.PanBy(-16, 0)
					w.Send(paint.Event{})
				case key.CodeUpArrow:
					sess.View.PanBy(0, 16)
					w.Send(paint.Event{})
				case key.CodeDownArrow:
					sess.View.PanBy(0, -16)
					w.Send(paint.Event{})
				}
			}
		}
	}
}
