package app

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dualtemp/dualtemp/internal/settings"
	"github.com/dualtemp/dualtemp/internal/weather"
)

type stubTimer struct {
	started   []int
	restarted []int
	stops     int
}

func (s *stubTimer) Start(minutes int) error {
	s.started = append(s.started, minutes)
	return nil
}

func (s *stubTimer) Restart(minutes int) error {
	s.restarted = append(s.restarted, minutes)
	return nil
}

func (s *stubTimer) Stop() {
	s.stops++
}

type stubPresenter struct {
	applies    int
	lastSnap   *weather.Snapshot
	lastOnline bool
	icons      []string
}

func (p *stubPresenter) Apply(snap *weather.Snapshot, online bool, st settings.Settings) {
	p.applies++
	p.lastSnap = snap
	p.lastOnline = online
}

func (p *stubPresenter) ApplyIcon(style string) {
	p.icons = append(p.icons, style)
}

type noopAPI struct{}

func (noopAPI) DetectLocation(ctx context.Context) (weather.Location, error) {
	return weather.Location{City: "Berlin"}, nil
}

func (noopAPI) GeocodeCity(ctx context.Context, name string) (weather.Location, error) {
	return weather.Location{City: name}, nil
}

func (noopAPI) FetchWeather(ctx context.Context, lat, lon float64) (weather.Snapshot, error) {
	temp := 20.0
	return weather.Snapshot{TempC: &temp}, nil
}

func newTestApp(t *testing.T) (*App, *stubTimer, *stubPresenter, *atomic.Int32) {
	t.Helper()

	store, err := settings.Open(filepath.Join(t.TempDir(), "settings.toml"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	timer := &stubTimer{}
	presenter := &stubPresenter{}
	a := New(store, noopAPI{}, timer, presenter, "http://127.0.0.1:8790/")

	var refreshes atomic.Int32
	a.refresh = func() { refreshes.Add(1) }
	a.setLogin = func(bool) error { return nil }

	return a, timer, presenter, &refreshes
}

func TestStart(t *testing.T) {
	a, timer, presenter, refreshes := newTestApp(t)

	if err := a.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Placeholder render first, async fetch after.
	if presenter.applies != 1 || presenter.lastSnap != nil || presenter.lastOnline {
		t.Errorf("expected one placeholder render, got applies=%d snap=%v online=%v",
			presenter.applies, presenter.lastSnap, presenter.lastOnline)
	}
	if got := refreshes.Load(); got != 1 {
		t.Errorf("expected one initial refresh, got %d", got)
	}
	if len(timer.started) != 1 || timer.started[0] != 10 {
		t.Errorf("expected timer started with default interval, got %v", timer.started)
	}
	if len(presenter.icons) != 1 || presenter.icons[0] != "thermometer" {
		t.Errorf("expected default icon applied, got %v", presenter.icons)
	}
}

func TestSaveSettingsSideEffects(t *testing.T) {
	a, timer, presenter, refreshes := newTestApp(t)

	var loginStates []bool
	a.setLogin = func(enabled bool) error {
		loginStates = append(loginStates, enabled)
		return nil
	}

	st := settings.Defaults()
	st.RefreshInterval = 5
	st.IconStyle = "gauge"
	st.LaunchAtLogin = true

	if err := a.SaveSettings(st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Changing the interval from 10 to 5 restarts the timer with the
	// new period and triggers exactly one immediate refresh.
	if len(timer.restarted) != 1 || timer.restarted[0] != 5 {
		t.Errorf("expected timer restarted with 5, got %v", timer.restarted)
	}
	if got := refreshes.Load(); got != 1 {
		t.Errorf("expected exactly one immediate refresh, got %d", got)
	}
	if len(presenter.icons) != 1 || presenter.icons[0] != "gauge" {
		t.Errorf("expected gauge icon applied, got %v", presenter.icons)
	}
	if len(loginStates) != 1 || !loginStates[0] {
		t.Errorf("expected login item enabled, got %v", loginStates)
	}

	if got := a.Settings(); got != st {
		t.Errorf("settings = %+v, want %+v", got, st)
	}
}

func TestSaveSettingsRejectsInvalid(t *testing.T) {
	a, timer, _, refreshes := newTestApp(t)

	st := settings.Defaults()
	st.RefreshInterval = 42

	if err := a.SaveSettings(st); err == nil {
		t.Fatal("expected validation error")
	}
	// No side effects on a rejected save.
	if len(timer.restarted) != 0 {
		t.Errorf("timer should not restart, got %v", timer.restarted)
	}
	if got := refreshes.Load(); got != 0 {
		t.Errorf("no refresh should trigger, got %d", got)
	}
}

func TestWatchSettingsAppliesExternalEdit(t *testing.T) {
	a, timer, _, refreshes := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.WatchSettings(ctx); err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	external := `
[settings]
refresh_interval = 30
temp_order = "FC"
manual_city = ""
icon_style = "sun-cloud"
show_tomorrow = false
launch_at_login = false
`
	if err := os.WriteFile(a.store.Path(), []byte(external), 0o644); err != nil {
		t.Fatalf("write settings file: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for refreshes.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("watcher did not apply the external edit in time")
		case <-time.After(20 * time.Millisecond):
		}
	}

	if len(timer.restarted) == 0 || timer.restarted[0] != 30 {
		t.Errorf("expected timer restarted with 30, got %v", timer.restarted)
	}
	if got := a.Settings().IconStyle; got != "sun-cloud" {
		t.Errorf("icon style = %q, want sun-cloud", got)
	}
}
