package config

import (
	"image/color"
	"strings"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if cfg.Canvas.Width != 800 || cfg.Canvas.Height != 600 {
		t.Fatalf("canvas defaults = %dx%d", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.HistoryLimit != 30 || cfg.FillTolerance != 30 {
		t.Fatalf("history=%d tolerance=%d", cfg.HistoryLimit, cfg.FillTolerance)
	}
	if cfg.Notify.Copy || cfg.Notify.Paste {
		t.Fatal("notifications enabled by default")
	}
}

func TestParseSections(t *testing.T) {
	input := `
# comment
theme = dark
history_limit = 50
fill_tolerance = 12

[canvas]
width = 1024
height = 768

[viewport]
min_zoom = 0.25
max_zoom = 8

[notify]
copy = true
paste = true
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Theme != "dark" {
		t.Fatalf("theme = %q", cfg.Theme)
	}
	if cfg.HistoryLimit != 50 || cfg.FillTolerance != 12 {
		t.Fatalf("history=%d tolerance=%d", cfg.HistoryLimit, cfg.FillTolerance)
	}
	if cfg.Canvas.Width != 1024 || cfg.Canvas.Height != 768 {
		t.Fatalf("canvas = %dx%d", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.Viewport.MinZoom != 0.25 || cfg.Viewport.MaxZoom != 8 {
		t.Fatalf("viewport = %v..%v", cfg.Viewport.MinZoom, cfg.Viewport.MaxZoom)
	}
	if !cfg.Notify.Copy || !cfg.Notify.Paste {
		t.Fatalf("notify = %+v", cfg.Notify)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	for _, input := range []string{
		"history_limit = many",
		"[canvas]\nwidth = wide",
		"[viewport]\nmin_zoom = tiny",
		"[notify]\ncopy = sometimes",
		"[theme.x]\nBackground: #GGHHII",
	} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("no error for %q", input)
		}
	}
}

func TestParseIgnoresOutOfRangeValues(t *testing.T) {
	input := `
history_limit = -5
fill_tolerance = 300

[canvas]
width = 0
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.HistoryLimit != 30 || cfg.FillTolerance != 30 || cfg.Canvas.Width != 800 {
		t.Fatalf("out-of-range values applied: %+v", cfg)
	}
}

func TestParseThemeSection(t *testing.T) {
	input := `
[theme.night]
Background: #101010
SelectionLight: #FFFFFF
SelectionDark: #00000080
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	th, ok := cfg.Themes["night"]
	if !ok {
		t.Fatal("theme section missing from Themes map")
	}
	if th.Name != "night" {
		t.Fatalf("theme name = %q", th.Name)
	}
	if (th.Background != color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 255}) {
		t.Fatalf("background = %v", th.Background)
	}
	if (th.SelectionDark != color.RGBA{A: 0x80}) {
		t.Fatalf("selection dark = %v", th.SelectionDark)
	}
	// Unset keys keep their defaults.
	if th.ButtonText == (color.RGBA{}) {
		t.Fatal("unset theme key lost its default")
	}
}

func TestStringRoundTrip(t *testing.T) {
	orig := New()
	orig.Theme = "dark"
	orig.HistoryLimit = 40
	orig.FillTolerance = 16
	orig.Canvas = Canvas{Width: 640, Height: 480}
	orig.Viewport = Viewport{MinZoom: 0.5, MaxZoom: 4}
	orig.Notify = Notify{Copy: true}

	cfg, err := Parse(strings.NewReader(orig.String()))
	if err != nil {
		t.Fatalf("parse serialized config: %v", err)
	}
	if cfg.Theme != orig.Theme ||
		cfg.HistoryLimit != orig.HistoryLimit ||
		cfg.FillTolerance != orig.FillTolerance ||
		cfg.Canvas != orig.Canvas ||
		cfg.Viewport != orig.Viewport ||
		cfg.Notify != orig.Notify {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", cfg, orig)
	}
}
