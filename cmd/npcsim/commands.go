package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"npcsim/content"
	"npcsim/emotion"
	"npcsim/personality"
	"npcsim/scenario"
	"npcsim/utility"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "npcsim",
		Short:         "NPC utility AI and emotion simulator",
		Long:          `Run scripted scenarios against utility-scoring NPCs with PAD emotions and inspect the built-in content.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("catalog", "", "Action catalog file (YAML or JSON); built-in when empty")
	root.PersistentFlags().String("personas", "", "Persona roster file (YAML or JSON); built-in when empty")

	root.AddCommand(
		newRunCmd(),
		newPresetsCmd(),
		newClassifyCmd(),
		newPersonaCmd(),
		newActionsCmd(),
		newRosterCmd(),
	)
	return root
}

func loadCatalog(cmd *cobra.Command) (*utility.Catalog, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		return content.DefaultCatalog(), nil
	}
	return content.LoadCatalog(path)
}

func loadPersonas(cmd *cobra.Command) (*content.PersonaRegistry, error) {
	path, _ := cmd.Flags().GetString("personas")
	if path == "" {
		return content.DefaultPersonas(), nil
	}
	r := content.NewRegistry()
	if err := r.LoadFromFile(path); err != nil {
		return nil, err
	}
	return r, nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.json>",
		Short: "Run a scenario and print its tape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read scenario: %w", err)
			}
			var spec scenario.Spec
			if err := json.Unmarshal(data, &spec); err != nil {
				return fmt.Errorf("failed to parse scenario: %w", err)
			}
			catalog, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			personas, err := loadPersonas(cmd)
			if err != nil {
				return err
			}
			tape, err := scenario.RunWith(spec, catalog, personas)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			wire, _ := cmd.Flags().GetBool("wire")
			asJSON, _ := cmd.Flags().GetBool("json")
			switch {
			case wire:
				w, err := scenario.ToWire(tape)
				if err != nil {
					return err
				}
				return writeJSON(out, w)
			case asJSON:
				return writeJSON(out, tape)
			}
			printSummary(out, tape)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the full tape as JSON")
	cmd.Flags().Bool("wire", false, "Print the camelCase wire tape")
	return cmd
}

func printSummary(out io.Writer, tape *scenario.Tape) {
	name := tape.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(out, "%s: %d ticks x %dms, %d frames\n", name, tape.Ticks, tape.TickMs, len(tape.Frames))

	type tally struct{ decisions, reactions, effects int }
	counts := make(map[string]*tally, len(tape.Agents))
	for _, id := range tape.Agents {
		counts[id] = &tally{}
	}
	final := make(map[string]string, len(tape.Agents))
	for _, f := range tape.Frames {
		c := counts[f.Agent]
		if c == nil {
			continue
		}
		switch f.Type {
		case scenario.FrameDecision:
			c.decisions++
		case scenario.FrameReaction:
			c.reactions++
		case scenario.FrameEffectDone:
			c.effects++
		case scenario.FrameStatus:
			final[f.Agent] = f.Status.String()
		}
	}
	for _, id := range tape.Agents {
		c := counts[id]
		fmt.Fprintf(out, "  %-10s decisions=%d reactions=%d effects=%d\n", id, c.decisions, c.reactions, c.effects)
		if s, ok := final[id]; ok {
			fmt.Fprintf(out, "    %s\n", s)
		}
	}
}

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List personality bias presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				type row struct {
					Name    string                `json:"name"`
					Family  string                `json:"family"`
					Entries personality.BiasTable `json:"entries"`
				}
				var rows []row
				for _, p := range personality.Presets() {
					rows = append(rows, row{Name: p.String(), Family: p.Family(), Entries: personality.PresetEntries(p)})
				}
				return writeJSON(out, rows)
			}
			for _, p := range personality.Presets() {
				var parts []string
				for _, e := range personality.PresetEntries(p) {
					parts = append(parts, fmt.Sprintf("%s %.2f/%.2f", e.Axis, e.Pos, e.Neg))
				}
				fmt.Fprintf(out, "%-26s %-16s %s\n", p, p.Family(), strings.Join(parts, ", "))
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <P> <A> <D>",
		Short: "Name the emotion octant of a PAD point",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v [3]float64
			for i, s := range args {
				f, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("invalid PAD value %q: %w", s, err)
				}
				v[i] = f
			}
			pad := emotion.PAD{P: v[0], A: v[1], D: v[2]}.Clamp()
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", pad, emotion.Classify(pad))
			return nil
		},
	}
}

func newPersonaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "persona <CODE>",
		Short: "Show the baseline and action biases of a personality code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prof, err := personality.ParseCode(args[0])
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			b := prof.Baseline()
			base := emotion.PAD{P: b.P, A: b.A, D: b.D}
			fmt.Fprintf(out, "%s baseline %s (%s)\n", prof.Code(), base, emotion.Classify(base))

			if other, _ := cmd.Flags().GetString("with"); other != "" {
				op, err := personality.ParseCode(other)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "compatibility with %s: %.2f\n", op.Code(), personality.Compatibility(prof, op))
			}

			type row struct {
				id   string
				bias float64
			}
			var rows []row
			for _, i := range catalog.Pool(utility.PoolEmotional) {
				d := catalog.At(i)
				rows = append(rows, row{id: d.ID, bias: d.BiasTable().Eval(prof)})
			}
			sort.SliceStable(rows, func(i, j int) bool { return rows[i].bias > rows[j].bias })
			for _, r := range rows {
				fmt.Fprintf(out, "  %-22s x%.3f\n", r.id, r.bias)
			}
			return nil
		},
	}
	cmd.Flags().String("with", "", "Second code to score compatibility against")
	return cmd
}

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the action catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i := 0; i < catalog.Len(); i++ {
				d := catalog.At(i)
				target := d.Target
				if target == "" {
					target = "-"
				}
				var names []string
				for _, c := range d.Considerations {
					names = append(names, c.Name)
				}
				fmt.Fprintf(out, "%-22s %-9s w=%.2f cd=%-4s target=%-8s [%s]\n",
					d.ID, d.Pool, d.Weight, d.Cooldown, target, strings.Join(names, " "))
			}
			return nil
		},
	}
}

func newRosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "List the persona roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			personas, err := loadPersonas(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range personas.All() {
				fmt.Fprintf(out, "%-8s %-8s %-7s %s\n", p.ID, p.Name, p.Personality, p.Tagline)
			}
			return nil
		},
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
