// Package settings persists user preferences and the last successful
// weather snapshot in a single TOML document.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/dualtemp/dualtemp/internal/weather"
)

// Settings is the fixed schema of user preferences.
type Settings struct {
	// RefreshInterval is the poll period in minutes.
	RefreshInterval int    `toml:"refresh_interval" json:"refreshInterval" validate:"oneof=5 10 30"`
	TempOrder       string `toml:"temp_order" json:"tempOrder" validate:"oneof=CF FC"`
	// ManualCity overrides IP-based location detection when non-empty.
	ManualCity    string `toml:"manual_city" json:"manualCity"`
	IconStyle     string `toml:"icon_style" json:"iconStyle" validate:"oneof=thermometer sun-cloud text-only gauge"`
	ShowTomorrow  bool   `toml:"show_tomorrow" json:"showTomorrow"`
	LaunchAtLogin bool   `toml:"launch_at_login" json:"launchAtLogin"`
}

// Defaults returns the schema defaults applied on first run and used to
// coerce invalid persisted values.
func Defaults() Settings {
	return Settings{
		RefreshInterval: 10,
		TempOrder:       "CF",
		ManualCity:      "",
		IconStyle:       "thermometer",
		ShowTomorrow:    false,
		LaunchAtLogin:   false,
	}
}

var validate = validator.New()

// Validate checks the settings against the enumerated option sets.
func (s Settings) Validate() error {
	return validate.Struct(s)
}

// coerce resets any field that fails validation to its default. Used
// when loading from disk, where a hand-edited file must not brick the
// app.
func (s Settings) coerce() Settings {
	err := validate.Struct(s)
	if err == nil {
		return s
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Defaults()
	}
	def := Defaults()
	for _, fe := range verrs {
		switch fe.StructField() {
		case "RefreshInterval":
			s.RefreshInterval = def.RefreshInterval
		case "TempOrder":
			s.TempOrder = def.TempOrder
		case "IconStyle":
			s.IconStyle = def.IconStyle
		}
	}
	return s
}

// document is the on-disk layout of the settings file.
type document struct {
	Settings    Settings          `toml:"settings"`
	LastWeather *weather.Snapshot `toml:"last_weather,omitempty"`
}

// ErrNoSnapshot is returned when no cached weather snapshot has been
// persisted yet.
var ErrNoSnapshot = errors.New("no cached weather snapshot")

// Store owns the settings file. Single writer; reads and writes are
// serialized behind one mutex.
type Store struct {
	mu   sync.Mutex
	path string
	doc  document
}

// Open loads the settings file at path, falling back to defaults when
// it is missing or unreadable. Invalid field values are coerced to
// their defaults.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		doc:  document{Settings: Defaults()},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		// A corrupt file degrades to defaults rather than failing
		// startup.
		return s, nil
	}

	doc.Settings = doc.Settings.coerce()
	s.doc = doc
	return s, nil
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Settings returns the current user preferences.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Settings
}

// Save validates and persists new preferences. Invalid values are
// rejected, not coerced.
func (s *Store) Save(newSettings Settings) error {
	if err := newSettings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Settings = newSettings
	return s.persist()
}

// LastSnapshot returns the last persisted weather snapshot.
func (s *Store) LastSnapshot() (weather.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.LastWeather == nil {
		return weather.Snapshot{}, ErrNoSnapshot
	}
	return *s.doc.LastWeather, nil
}

// SaveSnapshot persists a successful weather reading as the last known
// good snapshot. It is only ever called after a successful fetch; a
// failed refresh never clears it.
func (s *Store) SaveSnapshot(snap weather.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.LastWeather = &snap
	return s.persist()
}

// Reload re-reads the settings file and adopts its preferences if they
// differ from the in-memory copy. It reports whether anything changed.
// Used by the file watcher to pick up external edits.
func (s *Store) Reload() (Settings, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return s.Settings(), false, err
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return s.Settings(), false, err
	}
	loaded := doc.Settings.coerce()

	s.mu.Lock()
	defer s.mu.Unlock()
	if reflect.DeepEqual(loaded, s.doc.Settings) {
		return s.doc.Settings, false, nil
	}
	s.doc.Settings = loaded
	return loaded, true, nil
}

// persist writes the document to disk. Caller holds s.mu.
func (s *Store) persist() error {
	data, err := toml.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
