package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/Maoric2018/painting/internal/fill"
	"github.com/Maoric2018/painting/internal/history"
	"github.com/Maoric2018/painting/internal/theme"
	"github.com/Maoric2018/painting/internal/viewport"
)

// Canvas holds the initial document dimensions.
type Canvas struct {
	Width  int
	Height int
}

// Viewport holds the zoom clamp range.
type Viewport struct {
	MinZoom float64
	MaxZoom float64
}

// Notify holds notification settings.
type Notify struct {
	Copy  bool
	Paste bool
}

// Config holds the application configuration. HistoryLimit and
// FillTolerance are tuned constants, not derived values; they are exposed
// here so products can adjust them.
type Config struct {
	Theme         string
	HistoryLimit  int
	FillTolerance int
	Canvas        Canvas
	Viewport      Viewport
	Notify        Notify
	Themes        map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme:         "", // Default to empty to allow fallback to Env/Default
		HistoryLimit:  history.DefaultLimit,
		FillTolerance: fill.DefaultTolerance,
		Canvas:        Canvas{Width: 800, Height: 600},
		Viewport:      Viewport{MinZoom: viewport.DefaultMinZoom, MaxZoom: viewport.DefaultMaxZoom},
		Notify:        Notify{Copy: false, Paste: false},
		Themes:        make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	fmt.Fprintf(&sb, "history_limit = %d\n", c.HistoryLimit)
	fmt.Fprintf(&sb, "fill_tolerance = %d\n", c.FillTolerance)
	sb.WriteString("\n")

	sb.WriteString("[canvas]\n")
	fmt.Fprintf(&sb, "width = %d\n", c.Canvas.Width)
	fmt.Fprintf(&sb, "height = %d\n", c.Canvas.Height)
	sb.WriteString("\n")

	sb.WriteString("[viewport]\n")
	fmt.Fprintf(&sb, "min_zoom = %g\n", c.Viewport.MinZoom)
	fmt.Fprintf(&sb, "max_zoom = %g\n", c.Viewport.MaxZoom)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "paste = %v\n", c.Notify.Paste)
	sb.WriteString("\n")

	// Themes sections; sort keys for deterministic output.
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		fmt.Fprintf(&sb, "Background: %s\n", toHex(t.Background))
		fmt.Fprintf(&sb, "Foreground: %s\n", toHex(t.Foreground))
		fmt.Fprintf(&sb, "ToolbarBackground: %s\n", toHex(t.ToolbarBackground))
		fmt.Fprintf(&sb, "ButtonBackground: %s\n", toHex(t.ButtonBackground))
		fmt.Fprintf(&sb, "ButtonBackgroundHover: %s\n", toHex(t.ButtonBackgroundHover))
		fmt.Fprintf(&sb, "ButtonBackgroundPress: %s\n", toHex(t.ButtonBackgroundPress))
		fmt.Fprintf(&sb, "ButtonText: %s\n", toHex(t.ButtonText))
		fmt.Fprintf(&sb, "CheckerLight: %s\n", toHex(t.CheckerLight))
		fmt.Fprintf(&sb, "CheckerDark: %s\n", toHex(t.CheckerDark))
		fmt.Fprintf(&sb, "SelectionLight: %s\n", toHex(t.SelectionLight))
		fmt.Fprintf(&sb, "SelectionDark: %s\n", toHex(t.SelectionDark))
		sb.WriteString("\n")
	}

	return sb.String()
}

func toHex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
