package main

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/stratus/ral-core/internal/model"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [api|resources|waiters]",
	Short: "Print JSON Schema for the definition file formats",
	Long: `Prints a JSON Schema describing one of the definition file formats,
for editor completion and validation of hand-written definitions.
Without an argument all three schemas print as one keyed document.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"api", "resources", "waiters"},
	RunE:      runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	schemas := map[string]*jsonschema.Schema{
		"api":       jsonschema.Reflect(&model.APIFile{}),
		"resources": jsonschema.Reflect(&model.ResourcesFile{}),
		"waiters":   jsonschema.Reflect(&model.WaitersFile{}),
	}

	var out any
	if len(args) == 1 {
		schema, ok := schemas[args[0]]
		if !ok {
			return fmt.Errorf("unknown definition type %q (want api, resources or waiters)", args[0])
		}
		out = schema
	} else {
		out = schemas
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
