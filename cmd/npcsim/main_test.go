package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"npcsim/scenario"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestClassify(t *testing.T) {
	out, err := execute(t, "classify", "0.9", "0.8", "0.7")
	if err != nil {
		t.Fatalf("classify err: %v", err)
	}
	if !strings.Contains(out, "joy") {
		t.Fatalf("out = %q", out)
	}
	if _, err := execute(t, "classify", "x", "0", "0"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestPresets(t *testing.T) {
	out, err := execute(t, "presets")
	if err != nil {
		t.Fatalf("presets err: %v", err)
	}
	if !strings.Contains(out, "hug_warm") || !strings.Contains(out, "quiet_presence") {
		t.Fatalf("out = %q", out)
	}

	out, err = execute(t, "presets", "--json")
	if err != nil {
		t.Fatalf("presets --json err: %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("Unmarshal err: %v", err)
	}
	if len(rows) < 40 {
		t.Fatalf("rows = %d", len(rows))
	}
}

func TestPersona(t *testing.T) {
	out, err := execute(t, "persona", "ENFP-T", "--with", "ISTJ-A")
	if err != nil {
		t.Fatalf("persona err: %v", err)
	}
	for _, want := range []string{"ENFP-T baseline", "compatibility with ISTJ-A", "hug", "kiss_quick"} {
		if !strings.Contains(out, want) {
			t.Fatalf("out missing %q:\n%s", want, out)
		}
	}
	if _, err := execute(t, "persona", "NOPE"); err == nil {
		t.Fatalf("expected error for bad code")
	}
}

func TestActionsAndRoster(t *testing.T) {
	out, err := execute(t, "actions")
	if err != nil {
		t.Fatalf("actions err: %v", err)
	}
	if strings.Count(out, "\n") != 15 || !strings.Contains(out, "drop_off_resource") {
		t.Fatalf("actions out:\n%s", out)
	}
	out, err = execute(t, "roster")
	if err != nil {
		t.Fatalf("roster err: %v", err)
	}
	if !strings.HasPrefix(out, "ilse") || !strings.Contains(out, "ENFJ-A") {
		t.Fatalf("roster out:\n%s", out)
	}
}

func TestRun(t *testing.T) {
	spec := scenario.Spec{
		Name:   "cli",
		Ticks:  50,
		Agents: []scenario.AgentSpec{{Persona: "mara"}, {Persona: "rook"}},
		Stimuli: []scenario.StimulusSpec{
			{Tick: 2, Agent: "rook", Action: "confront"},
		},
	}
	data, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("Marshal err: %v", err)
	}
	path := filepath.Join(t.TempDir(), "scenario.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile err: %v", err)
	}

	out, err := execute(t, "run", path)
	if err != nil {
		t.Fatalf("run err: %v", err)
	}
	if !strings.HasPrefix(out, "cli: 50 ticks x 100ms") || !strings.Contains(out, "rook") {
		t.Fatalf("summary:\n%s", out)
	}

	out, err = execute(t, "run", path, "--wire")
	if err != nil {
		t.Fatalf("run --wire err: %v", err)
	}
	var wire scenario.WireTape
	if err := json.Unmarshal([]byte(out), &wire); err != nil {
		t.Fatalf("Unmarshal err: %v", err)
	}
	if wire.Ticks != 50 || len(wire.Frames) == 0 {
		t.Fatalf("wire = %+v", wire)
	}

	if _, err := execute(t, "run", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
