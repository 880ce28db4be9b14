//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"npcsim/content"
	"npcsim/scenario"
)

type runRequest struct {
	Spec scenario.Spec `json:"spec"`
	// Catalog optionally replaces the built-in actions (YAML or JSON).
	Catalog string `json:"catalog,omitempty"`
}

type runResponse struct {
	OK    bool               `json:"ok"`
	Tape  *scenario.WireTape `json:"tape,omitempty"`
	Error *scenario.Error    `json:"error,omitempty"`
}

func main() {
	js.Global().Set("__npcsimRun", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return mustJSON(runResponse{
				Error: &scenario.Error{Step: -1, Reason: "invalid_request", Message: "missing request payload"},
			})
		}
		return mustJSON(handleRun(args[0].String()))
	}))

	select {}
}

func handleRun(raw string) runResponse {
	var req runRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return runResponse{Error: &scenario.Error{Step: -1, Reason: "invalid_json", Message: err.Error()}}
	}

	catalog := content.DefaultCatalog()
	if req.Catalog != "" {
		c, err := content.ParseCatalog([]byte(req.Catalog))
		if err != nil {
			return runResponse{Error: &scenario.Error{Step: -1, Reason: "invalid_catalog", Message: err.Error()}}
		}
		catalog = c
	}

	tape, err := scenario.Run(req.Spec, catalog)
	if err != nil {
		var se *scenario.Error
		if errors.As(err, &se) {
			return runResponse{Error: se}
		}
		return runResponse{Error: &scenario.Error{Step: -1, Reason: "run_failed", Message: err.Error()}}
	}
	wire, err := scenario.ToWire(tape)
	if err != nil {
		return runResponse{Error: &scenario.Error{Step: -1, Reason: "encode_failed", Message: err.Error()}}
	}
	return runResponse{OK: true, Tape: wire}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		fallback := runResponse{
			Error: &scenario.Error{Step: -1, Reason: "marshal_failed", Message: err.Error()},
		}
		b2, _ := json.Marshal(fallback)
		return string(b2)
	}
	return string(b)
}
