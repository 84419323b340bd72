package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Maoric2018/painting/internal/app"
	"github.com/Maoric2018/painting/internal/config"
	"github.com/Maoric2018/painting/internal/editor"
	"github.com/Maoric2018/painting/internal/notify"
	"github.com/Maoric2018/painting/internal/theme"
	"github.com/Maoric2018/painting/internal/viewport"
)

var (
	version            = "dev"
	configPathOverride = ""
)

func main() {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	fs := flag.NewFlagSet("painting", flag.ExitOnError)
	width := fs.Int("width", cfg.Canvas.Width, "canvas width in pixels")
	height := fs.Int("height", cfg.Canvas.Height, "canvas height in pixels")
	copyAlerts := fs.Bool("notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	pasteAlerts := fs.Bool("notify-paste", cfg.Notify.Paste, "show a desktop notification after pasting from the clipboard")
	// Precedence: CLI > Env > Config > Default; fallback logic runs below
	// when the flag stays empty.
	themeName := fs.String("theme", "", "color theme to use (default, dark)")
	showVersion := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if *showVersion {
		fmt.Printf("painting %s\n", version)
		return
	}
	if *width < 1 || *height < 1 {
		fmt.Fprintln(os.Stderr, "canvas dimensions must be positive")
		os.Exit(2)
	}

	notifier := notify.New(prefs)
	notifier.Enable(notify.EventCopy, *copyAlerts)
	notifier.Enable(notify.EventPaste, *pasteAlerts)

	name := *themeName
	if name == "" {
		name = os.Getenv("PAINTING_THEME")
	}
	if name == "" {
		name = cfg.Theme
	}

	var t *theme.Theme
	if cfgTheme, ok := cfg.Themes[name]; ok {
		t = cfgTheme
	} else {
		var loadErr error
		t, loadErr = theme.NewLoader().Load(name)
		if loadErr != nil {
			if name != "" && name != "default" {
				fmt.Fprintf(os.Stderr, "warning: failed to load theme %q: %v. using default.\n", name, loadErr)
			}
			t = theme.Default()
		}
	}

	view := viewport.New(viewport.WithZoomBounds(cfg.Viewport.MinZoom, cfg.Viewport.MaxZoom))
	sess := editor.NewSession(*width, *height,
		editor.WithHistoryLimit(cfg.HistoryLimit),
		editor.WithFillTolerance(uint8(cfg.FillTolerance)),
		editor.WithViewport(view),
	)

	a := app.New(sess,
		app.WithTheme(t),
		app.WithNotifier(notifier),
		app.WithTitle("Painting"),
	)
	a.Run()
}
