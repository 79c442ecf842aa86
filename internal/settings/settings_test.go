package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dualtemp/dualtemp/internal/weather"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "settings.toml")
}

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	store, err := Open(tempStorePath(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := store.Settings()
	want := Defaults()
	if got != want {
		t.Errorf("expected defaults %+v, got %+v", want, got)
	}

	if _, err := store.LastSnapshot(); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := tempStorePath(t)

	store, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved := Settings{
		RefreshInterval: 30,
		TempOrder:       "FC",
		ManualCity:      "Oslo",
		IconStyle:       "gauge",
		ShowTomorrow:    true,
		LaunchAtLogin:   true,
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Every field must read back identically, both in memory and from
	// a fresh load of the file.
	if got := store.Settings(); got != saved {
		t.Errorf("in-memory settings = %+v, want %+v", got, saved)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if got := reopened.Settings(); got != saved {
		t.Errorf("reloaded settings = %+v, want %+v", got, saved)
	}
}

func TestSaveRejectsInvalidValues(t *testing.T) {
	store, err := Open(tempStorePath(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"interval outside option set", func(s *Settings) { s.RefreshInterval = 7 }},
		{"unknown temp order", func(s *Settings) { s.TempOrder = "KF" }},
		{"unknown icon style", func(s *Settings) { s.IconStyle = "flames" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Defaults()
			tt.mutate(&st)
			if err := store.Save(st); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestOpenCoercesInvalidValues(t *testing.T) {
	path := tempStorePath(t)
	content := `
[settings]
refresh_interval = 42
temp_order = "FC"
manual_city = "Paris"
icon_style = "flames"
show_tomorrow = true
launch_at_login = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := store.Settings()
	if got.RefreshInterval != 10 {
		t.Errorf("invalid interval should coerce to 10, got %d", got.RefreshInterval)
	}
	if got.IconStyle != "thermometer" {
		t.Errorf("invalid icon style should coerce to thermometer, got %q", got.IconStyle)
	}
	// Valid fields survive coercion untouched.
	if got.TempOrder != "FC" || got.ManualCity != "Paris" || !got.ShowTomorrow {
		t.Errorf("valid fields were not preserved: %+v", got)
	}
}

func TestOpenCorruptFileDegradesToDefaults(t *testing.T) {
	path := tempStorePath(t)
	if err := os.WriteFile(path, []byte("{{{not toml"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Settings(); got != Defaults() {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := tempStorePath(t)

	store, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	temp := 20.0
	updated := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	snap := weather.Snapshot{
		TempC:     &temp,
		Condition: "Clear sky",
		City:      "Madrid",
		UpdatedAt: updated,
	}
	if err := store.SaveSnapshot(snap); err != nil {
		t.Fatalf("save snapshot failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	cached, err := reopened.LastSnapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached.TempC == nil || *cached.TempC != 20.0 {
		t.Errorf("unexpected TempC: %v", cached.TempC)
	}
	if cached.City != "Madrid" || cached.Condition != "Clear sky" {
		t.Errorf("unexpected snapshot: %+v", cached)
	}
	if !cached.UpdatedAt.Equal(updated) {
		t.Errorf("UpdatedAt = %v, want %v", cached.UpdatedAt, updated)
	}
}

func TestReloadDetectsExternalChange(t *testing.T) {
	path := tempStorePath(t)

	store, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Save(Defaults()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Reload with no diff reports no change.
	if _, changed, err := store.Reload(); err != nil || changed {
		t.Errorf("expected no change, got changed=%v err=%v", changed, err)
	}

	external := `
[settings]
refresh_interval = 5
temp_order = "CF"
manual_city = ""
icon_style = "sun-cloud"
show_tomorrow = false
launch_at_login = false
`
	if err := os.WriteFile(path, []byte(external), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	st, changed, err := store.Reload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatal("expected change to be detected")
	}
	if st.RefreshInterval != 5 || st.IconStyle != "sun-cloud" {
		t.Errorf("unexpected reloaded settings: %+v", st)
	}
}
