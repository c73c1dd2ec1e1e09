package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// listCmd prints the modeled services and their resource types
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List services with resource definitions",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	loader := newLoader()
	targets, err := targetServices(loader)
	if err != nil {
		return err
	}

	for _, service := range targets {
		sctx, err := buildContext(loader, service)
		if err != nil {
			return err
		}
		display := sctx.Service.Metadata().ServiceName
		if display == "" {
			display = service
		}
		resources := sctx.ResourceNames()
		line := fmt.Sprintf("%-12s %-28s resources: %s",
			service, display, strings.Join(resources, ", "))
		if len(resources) == 0 {
			line = fmt.Sprintf("%-12s %-28s (no resource types)", service, display)
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
