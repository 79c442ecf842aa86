package app

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchSettings watches the settings file for external edits and
// applies changed preferences as if they had been saved through the
// preferences UI. The app's own saves produce no preference diff on
// reload and are ignored.
func (a *App) WatchSettings(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory: editors and our own atomic-ish writes
	// replace the file, which drops a watch placed on the file itself.
	path := filepath.Clean(a.store.Path())
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}

				st, changed, err := a.store.Reload()
				if err != nil {
					log.Printf("app: reload settings failed: %v", err)
					continue
				}
				if !changed {
					continue
				}

				log.Println("app: settings file changed externally; applying")
				a.applySideEffects(st)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("app: settings watcher error: %v", err)
			}
		}
	}()

	return nil
}
