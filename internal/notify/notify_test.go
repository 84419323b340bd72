package notify

import "testing"

func TestLoadPreferencesEnvOverrides(t *testing.T) {
	t.Setenv("PAINTING_NOTIFY_TITLE", "My Editor")
	t.Setenv("PAINTING_NOTIFY_COPY_TEXT", "copied %s")
	t.Setenv("PAINTING_NOTIFY_PASTE_TEXT", "")

	prefs := LoadPreferences()
	if prefs.Title != "My Editor" {
		t.Fatalf("title = %q", prefs.Title)
	}
	if got := prefs.Events[EventCopy].Template; got != "copied %s" {
		t.Fatalf("copy template = %q", got)
	}
	// Empty env values fall back to the default.
	if got := prefs.Events[EventPaste].Template; got != DefaultPreferences().Events[EventPaste].Template {
		t.Fatalf("paste template = %q", got)
	}
}

func TestNotifierDisabledByDefault(t *testing.T) {
	n := New(DefaultPreferences())
	if n.enabledFor(EventCopy) || n.enabledFor(EventPaste) {
		t.Fatal("events enabled without Enable")
	}
	n.Enable(EventCopy, true)
	if !n.enabledFor(EventCopy) {
		t.Fatal("enable did not take")
	}
	n.Enable(EventCopy, false)
	if n.enabledFor(EventCopy) {
		t.Fatal("disable did not take")
	}
}

func TestNewClonesPreferences(t *testing.T) {
	prefs := DefaultPreferences()
	n := New(prefs)
	prefs.Events[EventCopy] = EventPreference{Template: "mutated %s"}
	if got := n.template(EventCopy); got == "mutated %s" {
		t.Fatal("notifier shares the caller's event map")
	}
}
