package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stratus/ral-core/internal/defs"
)

// generateCmd renders every page into the output directory
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render reference pages for all (or selected) services",
	Long: `Renders index.md plus one markdown page per resource type for each
service into <out>/<service>/. Services render in parallel.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	loader := newLoader()
	targets, err := targetServices(loader)
	if err != nil {
		return err
	}

	eg, _ := errgroup.WithContext(cmd.Context())
	for _, service := range targets {
		eg.Go(func() error {
			n, err := generateService(loader, service)
			if err != nil {
				return fmt.Errorf("generate %s: %w", service, err)
			}
			logger.Info("generated service docs",
				zap.String("service", service),
				zap.Int("pages", n),
				zap.String("dir", filepath.Join(outDir, service)))
			return nil
		})
	}
	return eg.Wait()
}

// generateService renders one service's pages to disk and reports how
// many it wrote.
func generateService(loader *defs.Loader, service string) (int, error) {
	pages, err := renderService(loader, service)
	if err != nil {
		return 0, err
	}
	dir := filepath.Join(outDir, service)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
			return 0, err
		}
	}
	return len(pages), nil
}
