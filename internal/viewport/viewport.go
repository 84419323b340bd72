// Package viewport maps between device (window) coordinates and model
// (canvas) coordinates under pan and zoom.
package viewport

// Zoom defaults and hard bounds.
const (
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 20.0

	// wheelFactor is applied once per zoom step.
	wheelFactor = 1.1
)

// Transform holds the pan/zoom state of the canvas view. The zero value is
// not usable; construct with New.
type Transform struct {
	zoom    float64
	panX    float64
	panY    float64
	scale   float64 // device pixel ratio
	minZoom float64
	maxZoom float64

	panning bool
	anchorX float64
	anchorY float64
}

// Option modifies a Transform during creation.
type Option func(*Transform)

// WithZoomBounds overrides the zoom clamp range.
func WithZoomBounds(min, max float64) Option {
	return func(t *Transform) {
		if min > 0 {
			t.minZoom = min
		}
		if max >= t.minZoom {
			t.maxZoom = max
		}
	}
}

// WithDeviceScale sets the device-pixel-ratio scale factor.
func WithDeviceScale(scale float64) Option {
	return func(t *Transform) {
		if scale > 0 {
			t.scale = scale
		}
	}
}

// New returns a Transform at zoom 1 with no pan offset.
func New(opts ...Option) *Transform {
	t := &Transform{
		zoom:    1,
		scale:   1,
		minZoom: DefaultMinZoom,
		maxZoom: DefaultMaxZoom,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Zoom returns the current zoom factor.
func (t *Transform) Zoom() float64 { return t.zoom }

// Pan returns the current pan offset in device pixels.
func (t *Transform) Pan() (x, y float64) { return t.panX, t.panY }

// SetDeviceScale updates the device-pixel-ratio scale factor.
func (t *Transform) SetDeviceScale(scale float64) {
	if scale > 0 {
		t.scale = scale
	}
}

// DeviceToModel converts window coordinates to model coordinates by scaling
// out the device pixel ratio and inverting the pan/zoom transform.
func (t *Transform) DeviceToModel(sx, sy float64) (mx, my float64) {
	mx = (sx*t.scale - t.panX) / t.zoom
	my = (sy*t.scale - t.panY) / t.zoom
	return mx, my
}

// ModelToDevice is the exact inverse of DeviceToModel.
func (t *Transform) ModelToDevice(mx, my float64) (sx, sy float64) {
	sx = (mx*t.zoom + t.panX) / t.scale
	sy = (my*t.zoom + t.panY) / t.scale
	return sx, sy
}

// ZoomAt applies one zoom step at the given window position. A positive
// direction zooms in. The model point under the cursor stays fixed on
// screen.
func (t *Transform) ZoomAt(sx, sy float64, direction int) {
	mx, my := t.DeviceToModel(sx, sy)

	z := t.zoom
	if direction > 0 {
		z *= wheelFactor
	} else {
		z /= wheelFactor
	}
	if z < t.minZoom {
		z = t.minZoom
	}
	if z > t.maxZoom {
		z = t.maxZoom
	}
	t.zoom = z

	// Re-anchor the pan offset so (mx,my) maps back to (sx,sy).
	t.panX = sx*t.scale - mx*t.zoom
	t.panY = sy*t.scale - my*t.zoom
}

// BeginPan starts a pan gesture at the given window position.
func (t *Transform) BeginPan(sx, sy float64) {
	t.panning = true
	t.anchorX = sx
	t.anchorY = sy
}

// UpdatePan moves the view by the delta since the previous anchor point and
// rebases the anchor. No-op unless a pan gesture is active.
func (t *Transform) UpdatePan(sx, sy float64) {
	if !t.panning {
		return
	}
	t.panX += (sx - t.anchorX) * t.scale
	t.panY += (sy - t.anchorY) * t.scale
	t.anchorX = sx
	t.anchorY = sy
}

// PanBy shifts the view by a delta in device pixels, independent of any
// pan gesture.
func (t *Transform) PanBy(dx, dy float64) {
	t.panX += dx * t.scale
	t.panY += dy * t.scale
}

// EndPan finishes a pan gesture. Safe to call when no gesture is active.
func (t *Transform) EndPan() {
	t.panning = false
}

// Panning reports whether a pan gesture is in progress.
func (t *Transform) Panning() bool { return t.panning }
