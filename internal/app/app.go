// Package app wires the settings store, refresher, scheduler, and tray
// presenter together and owns the side effects of a settings save.
package app

import (
	"context"
	"log"
	"os/exec"
	"runtime"

	"github.com/dualtemp/dualtemp/internal/loginitem"
	"github.com/dualtemp/dualtemp/internal/refresher"
	"github.com/dualtemp/dualtemp/internal/settings"
	"github.com/dualtemp/dualtemp/internal/weather"
)

// Presenter renders the tray surface.
type Presenter interface {
	Apply(snap *weather.Snapshot, online bool, st settings.Settings)
	ApplyIcon(style string)
}

// Timer drives the repeating refresh job.
type Timer interface {
	Start(minutes int) error
	Restart(minutes int) error
	Stop()
}

// App is the controller owning process-lifetime state and the
// orchestration between components.
type App struct {
	store     *settings.Store
	refresher *refresher.Refresher
	timer     Timer
	presenter Presenter
	prefsURL  string

	// Indirections for tests.
	setLogin func(bool) error
	refresh  func()
}

// New builds the controller. The refresher notifies the presenter after
// every cycle with the settings current at render time.
func New(store *settings.Store, api refresher.API, timer Timer, presenter Presenter, prefsURL string) *App {
	a := &App{
		store:     store,
		timer:     timer,
		presenter: presenter,
		prefsURL:  prefsURL,
		setLogin:  loginitem.Set,
	}

	a.refresher = refresher.New(store, api, func(snap *weather.Snapshot, online bool) {
		presenter.Apply(snap, online, store.Settings())
	})
	a.refresh = func() {
		go a.refresher.Refresh(context.Background())
	}

	return a
}

// Start renders the placeholder state, kicks off the initial refresh,
// and starts the poll timer. Called once the tray is ready.
func (a *App) Start() error {
	st := a.store.Settings()

	a.presenter.ApplyIcon(st.IconStyle)

	// Show the placeholder immediately, then fetch async.
	a.presenter.Apply(nil, false, st)
	a.refresh()

	return a.timer.Start(st.RefreshInterval)
}

// Settings returns the current user preferences.
func (a *App) Settings() settings.Settings {
	return a.store.Settings()
}

// SaveSettings persists new preferences and applies their side effects:
// login-item registration, icon refresh, timer restart with the new
// period, and exactly one immediate refresh cycle.
func (a *App) SaveSettings(st settings.Settings) error {
	if err := a.store.Save(st); err != nil {
		return err
	}
	a.applySideEffects(st)
	return nil
}

// RefreshNow triggers one out-of-band refresh cycle.
func (a *App) RefreshNow() {
	a.refresh()
}

// OpenPreferences opens the local preferences page in the default
// browser.
func (a *App) OpenPreferences() {
	if err := openBrowser(a.prefsURL); err != nil {
		log.Printf("app: open preferences failed: %v", err)
	}
}

func (a *App) applySideEffects(st settings.Settings) {
	if err := a.setLogin(st.LaunchAtLogin); err != nil {
		log.Printf("app: update login item failed: %v", err)
	}
	a.presenter.ApplyIcon(st.IconStyle)
	if err := a.timer.Restart(st.RefreshInterval); err != nil {
		log.Printf("app: restart refresh timer failed: %v", err)
	}
	a.refresh()
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
