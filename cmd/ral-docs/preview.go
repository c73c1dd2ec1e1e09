package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var previewRaw bool

// previewCmd renders one page to the terminal
var previewCmd = &cobra.Command{
	Use:   "preview <service> [resource]",
	Short: "Render one page to the terminal",
	Long: `Renders a service's index page, or a named resource type's page,
styled for the terminal. Use --raw for plain markdown.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().BoolVar(&previewRaw, "raw", false, "Print plain markdown without terminal styling")
}

func runPreview(cmd *cobra.Command, args []string) error {
	service := args[0]
	page := "index.md"
	if len(args) == 2 {
		page = args[1] + ".md"
	}

	pages, err := renderService(newLoader(), service)
	if err != nil {
		return err
	}
	content, ok := pages[page]
	if !ok {
		names := make([]string, 0, len(pages))
		for name := range pages {
			names = append(names, name)
		}
		return fmt.Errorf("service %s has no page %s (have %v)", service, page, names)
	}

	if previewRaw {
		fmt.Fprint(cmd.OutOrStdout(), string(content))
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// No styling available, plain markdown still previews.
		fmt.Fprint(cmd.OutOrStdout(), string(content))
		return nil
	}
	styled, err := renderer.Render(string(content))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), styled)
	return nil
}
