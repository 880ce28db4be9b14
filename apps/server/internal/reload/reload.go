// Package reload watches the content files and hands freshly parsed
// catalogs and rosters to a callback.
package reload

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"npcsim/content"
	"npcsim/utility"
)

const defaultDebounce = 150 * time.Millisecond

// Paths names the files to watch. Either may be empty.
type Paths struct {
	Catalog  string
	Personas string
}

// ApplyFunc receives whatever was reloaded; the other argument is nil.
type ApplyFunc func(catalog *utility.Catalog, personas *content.PersonaRegistry)

type Watcher struct {
	paths    Paths
	apply    ApplyFunc
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// New watches the parent directory of each path, since editors often save by
// renaming a temp file over the original.
func New(paths Paths, apply ApplyFunc) (*Watcher, error) {
	if paths.Catalog == "" && paths.Personas == "" {
		return nil, fmt.Errorf("reload: nothing to watch")
	}
	if apply == nil {
		return nil, fmt.Errorf("reload: apply func is required")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{paths: paths, apply: apply, watcher: fw, debounce: defaultDebounce}
	dirs := map[string]bool{}
	for _, p := range []string{paths.Catalog, paths.Personas} {
		if p == "" {
			continue
		}
		dir := filepath.Dir(filepath.Clean(p))
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("reload: watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

// Load reads every configured file once and applies the result.
func (w *Watcher) Load() error {
	cat, err := w.loadCatalog()
	if err != nil {
		return err
	}
	reg, err := w.loadPersonas()
	if err != nil {
		return err
	}
	if cat != nil || reg != nil {
		w.apply(cat, reg)
	}
	return nil
}

// Run handles file events until ctx is done. Bursts of events within the
// debounce window collapse into one reload per file.
func (w *Watcher) Run(ctx context.Context) {
	var (
		timer          *time.Timer
		fire           <-chan time.Time
		dirtyCatalog   bool
		dirtyPersonas  bool
		catalogPath    = filepath.Clean(w.paths.Catalog)
		personasPath   = filepath.Clean(w.paths.Personas)
		interestingOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&interestingOps == 0 {
				continue
			}
			name := filepath.Clean(event.Name)
			switch {
			case w.paths.Catalog != "" && name == catalogPath:
				dirtyCatalog = true
			case w.paths.Personas != "" && name == personasPath:
				dirtyPersonas = true
			default:
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload(dirtyCatalog, dirtyPersonas)
			dirtyCatalog, dirtyPersonas = false, false
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[Reload] watch error: %v", err)
		}
	}
}

func (w *Watcher) reload(catalog, personas bool) {
	var (
		cat *utility.Catalog
		reg *content.PersonaRegistry
		err error
	)
	if catalog {
		if cat, err = w.loadCatalog(); err != nil {
			log.Printf("[Reload] keeping previous catalog: %v", err)
			cat = nil
		}
	}
	if personas {
		if reg, err = w.loadPersonas(); err != nil {
			log.Printf("[Reload] keeping previous personas: %v", err)
			reg = nil
		}
	}
	if cat == nil && reg == nil {
		return
	}
	if cat != nil {
		log.Printf("[Reload] catalog reloaded from %s (%d actions)", w.paths.Catalog, cat.Len())
	}
	if reg != nil {
		log.Printf("[Reload] personas reloaded from %s (%d personas)", w.paths.Personas, reg.Count())
	}
	w.apply(cat, reg)
}

func (w *Watcher) loadCatalog() (*utility.Catalog, error) {
	if w.paths.Catalog == "" {
		return nil, nil
	}
	return content.LoadCatalog(w.paths.Catalog)
}

func (w *Watcher) loadPersonas() (*content.PersonaRegistry, error) {
	if w.paths.Personas == "" {
		return nil, nil
	}
	reg := content.NewRegistry()
	if err := reg.LoadFromFile(w.paths.Personas); err != nil {
		return nil, err
	}
	return reg, nil
}

func (w *Watcher) Close() error { return w.watcher.Close() }
