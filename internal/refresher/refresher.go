// Package refresher drives the poll cycle: resolve a location, fetch
// weather, and on failure fall back to the last cached snapshot. It is
// the sole recovery point for upstream failures; nothing below it
// catches them and nothing above it sees them.
package refresher

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dualtemp/dualtemp/internal/settings"
	"github.com/dualtemp/dualtemp/internal/weather"
)

// API is the slice of the weather client the refresher depends on.
type API interface {
	DetectLocation(ctx context.Context) (weather.Location, error)
	GeocodeCity(ctx context.Context, name string) (weather.Location, error)
	FetchWeather(ctx context.Context, lat, lon float64) (weather.Snapshot, error)
}

// Listener is notified after every refresh cycle, successful or not,
// with the snapshot to display and the online flag.
type Listener func(snap *weather.Snapshot, online bool)

// Refresher owns the process-lifetime display state: the current
// snapshot and the online flag. State is recreated fresh on each start;
// the persisted snapshot is only consulted as a fallback after a failed
// fetch, never as initial display state.
type Refresher struct {
	store  *settings.Store
	api    API
	notify Listener
	now    func() time.Time

	mu       sync.RWMutex
	snapshot *weather.Snapshot
	online   bool

	inFlight atomic.Bool
}

// New creates a Refresher. notify may be nil.
func New(store *settings.Store, api API, notify Listener) *Refresher {
	return &Refresher{
		store:  store,
		api:    api,
		notify: notify,
		now:    time.Now,
	}
}

// State returns the snapshot currently on display and the online flag.
func (r *Refresher) State() (*weather.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot, r.online
}

// Refresh runs one poll cycle and notifies the listener with the
// (possibly unchanged) result. Concurrent triggers are coalesced: a
// call arriving while a cycle is in flight returns immediately.
func (r *Refresher) Refresh(ctx context.Context) {
	if !r.inFlight.CompareAndSwap(false, true) {
		log.Println("refresher: refresh already in flight; skipping")
		return
	}
	defer r.inFlight.Store(false)

	snap, err := r.fetch(ctx)
	if err != nil {
		log.Printf("refresher: weather fetch failed: %v", err)

		r.mu.Lock()
		if cached, cacheErr := r.store.LastSnapshot(); cacheErr == nil && cached.HasTemp() {
			// Adopt the last known good reading, keeping its
			// original UpdatedAt.
			r.snapshot = &cached
		}
		r.online = false
		r.mu.Unlock()
	} else {
		r.mu.Lock()
		r.snapshot = &snap
		r.online = true
		r.mu.Unlock()

		if err := r.store.SaveSnapshot(snap); err != nil {
			log.Printf("refresher: persist snapshot failed: %v", err)
		}
	}

	current, online := r.State()
	if r.notify != nil {
		r.notify(current, online)
	}
}

// fetch resolves the location per current settings and fetches weather
// for it. The manual city, when set, takes precedence over IP-based
// detection.
func (r *Refresher) fetch(ctx context.Context) (weather.Snapshot, error) {
	st := r.store.Settings()

	var (
		loc weather.Location
		err error
	)
	if st.ManualCity != "" {
		loc, err = r.api.GeocodeCity(ctx, st.ManualCity)
	} else {
		loc, err = r.api.DetectLocation(ctx)
	}
	if err != nil {
		return weather.Snapshot{}, err
	}

	snap, err := r.api.FetchWeather(ctx, loc.Lat, loc.Lon)
	if err != nil {
		return weather.Snapshot{}, err
	}

	snap.City = loc.City
	snap.UpdatedAt = r.now()
	return snap, nil
}
