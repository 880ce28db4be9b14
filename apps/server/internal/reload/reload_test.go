package reload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"npcsim/content"
	"npcsim/utility"
)

const oneAction = `actions:
  - id: nap
    name: Nap
    pool: utility
    weight: 1
    considerations:
      - {kind: constant, value: 0.5}
`

const twoPersonas = `- {id: solo, name: Solo, personality: ISFP-T}
- {id: duo, name: Duo, personality: ENTJ-A}
`

type applied struct {
	catalog  *utility.Catalog
	personas *content.PersonaRegistry
}

func setup(t *testing.T) (Paths, chan applied) {
	t.Helper()
	dir := t.TempDir()
	paths := Paths{
		Catalog:  filepath.Join(dir, "actions.yaml"),
		Personas: filepath.Join(dir, "personas.yaml"),
	}
	writeFile(t, paths.Catalog, string(content.DefaultCatalogYAML()))
	writeFile(t, paths.Personas, twoPersonas)
	return paths, make(chan applied, 8)
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func start(t *testing.T, paths Paths, got chan applied) *Watcher {
	t.Helper()
	w, err := New(paths, func(c *utility.Catalog, p *content.PersonaRegistry) {
		got <- applied{catalog: c, personas: p}
	})
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	w.debounce = 20 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	t.Cleanup(func() {
		cancel()
		w.Close()
	})
	return w
}

func wait(t *testing.T, got chan applied) applied {
	t.Helper()
	select {
	case a := <-got:
		return a
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for reload")
	}
	return applied{}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Paths{}, func(*utility.Catalog, *content.PersonaRegistry) {}); err == nil {
		t.Fatalf("expected error with no paths")
	}
	if _, err := New(Paths{Catalog: filepath.Join(t.TempDir(), "a.yaml")}, nil); err == nil {
		t.Fatalf("expected error with nil apply")
	}
	if _, err := New(Paths{Catalog: "/does/not/exist/a.yaml"}, func(*utility.Catalog, *content.PersonaRegistry) {}); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestWatcher_LoadAppliesBoth(t *testing.T) {
	paths, got := setup(t)
	w := start(t, paths, got)
	if err := w.Load(); err != nil {
		t.Fatalf("Load err: %v", err)
	}
	a := wait(t, got)
	if a.catalog == nil || a.catalog.Len() != content.DefaultCatalog().Len() {
		t.Fatalf("catalog = %v", a.catalog)
	}
	if a.personas == nil || a.personas.Count() != 2 {
		t.Fatalf("personas = %v", a.personas)
	}
}

func TestWatcher_ReloadsChangedCatalog(t *testing.T) {
	paths, got := setup(t)
	start(t, paths, got)

	writeFile(t, paths.Catalog, oneAction)
	a := wait(t, got)
	if a.catalog == nil || a.catalog.Len() != 1 {
		t.Fatalf("catalog = %v", a.catalog)
	}
	if a.personas != nil {
		t.Fatalf("personas reloaded without a change")
	}
}

func TestWatcher_KeepsPreviousOnBadFile(t *testing.T) {
	paths, got := setup(t)
	start(t, paths, got)

	writeFile(t, paths.Catalog, "actions: [ {id: broken, considerations: [{kind: nope}]} ]")
	select {
	case a := <-got:
		t.Fatalf("bad catalog applied: %+v", a)
	case <-time.After(300 * time.Millisecond):
	}

	writeFile(t, paths.Personas, "- {id: solo, name: Solo, personality: ISFP-T}\n")
	a := wait(t, got)
	if a.catalog != nil || a.personas == nil || a.personas.Count() != 1 {
		t.Fatalf("applied = %+v", a)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	paths, got := setup(t)
	start(t, paths, got)

	writeFile(t, filepath.Join(filepath.Dir(paths.Catalog), "notes.txt"), "hello")
	select {
	case a := <-got:
		t.Fatalf("unrelated file triggered reload: %+v", a)
	case <-time.After(300 * time.Millisecond):
	}
}
