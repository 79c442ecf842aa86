// Package tray renders the menu-bar surface: a dynamic title, a
// rebuilt-per-refresh dropdown menu, and a template icon matching the
// configured style.
package tray

import (
	"embed"
	"sync"

	"github.com/energye/systray"

	"github.com/dualtemp/dualtemp/internal/settings"
	"github.com/dualtemp/dualtemp/internal/weather"
)

//go:embed icons/*.png
var iconsFS embed.FS

// IconBytes returns the embedded template icon for the given style,
// falling back to the thermometer when the style is unrecognized.
func IconBytes(style string) []byte {
	data, err := iconsFS.ReadFile("icons/" + style + ".png")
	if err != nil {
		data, _ = iconsFS.ReadFile("icons/thermometer.png")
	}
	return data
}

// Callbacks are the user actions reachable from the dropdown menu.
type Callbacks struct {
	Refresh         func()
	OpenPreferences func()
	Quit            func()
}

// Tray binds rendered menu lines to the live systray. It must only be
// used after systray.Run has invoked its onReady callback.
type Tray struct {
	cb Callbacks
	mu sync.Mutex
}

// New creates a Tray with the given action callbacks.
func New(cb Callbacks) *Tray {
	return &Tray{cb: cb}
}

// Apply sets the tray title and rebuilds the dropdown menu from the
// current state. Called after every refresh cycle and on settings save.
func (t *Tray) Apply(snap *weather.Snapshot, online bool, st settings.Settings) {
	t.mu.Lock()
	defer t.mu.Unlock()

	systray.SetTitle(FormatTitle(snap, st.TempOrder))
	systray.ResetMenu()

	for _, line := range BuildMenu(snap, online, st) {
		switch line.Kind {
		case LineSeparator:
			systray.AddSeparator()
		case LineInfo:
			item := systray.AddMenuItem(line.Label, "")
			item.Disable()
		case LineAction:
			item := systray.AddMenuItem(line.Label, "")
			switch line.Action {
			case ActionRefresh:
				item.Click(t.cb.Refresh)
			case ActionPreferences:
				item.Click(t.cb.OpenPreferences)
			case ActionQuit:
				item.Click(t.cb.Quit)
			}
		}
	}
}

// ApplyIcon swaps the tray icon to the given style's template image.
// Triggered by a settings save, not by every refresh.
func (t *Tray) ApplyIcon(style string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data := IconBytes(style)
	systray.SetTemplateIcon(data, data)
}
