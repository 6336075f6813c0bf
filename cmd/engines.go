/*
Copyright © 2025 The termtran Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/termtran/termtran/internal/engine"
	"github.com/termtran/termtran/internal/orchestrator"
	"github.com/termtran/termtran/internal/store"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Inspect and select translation engines",
}

var enginesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured engines in priority order",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, db, err := sessionOrchestrator()
		if err != nil {
			return err
		}
		defer db.Close()

		return printEngines(orch.ListEngines())
	},
}

var enginesProbeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe every engine's availability now",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, db, err := sessionOrchestrator()
		if err != nil {
			return err
		}
		defer db.Close()

		orch.RefreshAvailability()
		return printEngines(orch.ProbeAll(context.Background()))
	},
}

var enginesUseCmd = &cobra.Command{
	Use:   "use <engine-id>",
	Short: "Select the engine used by default and persist the choice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, db, err := sessionOrchestrator()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := orch.SetActiveEngine(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Active engine: %s\n", args[0])
		return nil
	},
}

func sessionOrchestrator() (*orchestrator.Orchestrator, *store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	o, err := buildOrchestrator(cfg, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return o, db, nil
}

func printEngines(descs []engine.Descriptor) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCAPABILITY\tMODEL\tLOCAL\tAVAILABILITY")
	for _, d := range descs {
		model := d.Model
		if model == "" {
			model = "(default)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", d.ID, d.Capability, model, d.Local, d.Availability)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(enginesCmd)
	enginesCmd.AddCommand(enginesListCmd)
	enginesCmd.AddCommand(enginesProbeCmd)
	enginesCmd.AddCommand(enginesUseCmd)
}
