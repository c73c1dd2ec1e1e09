// Command ral-docs renders API reference documentation from service
// definition files and publishes the result.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stratus/ral-core/internal/defs"
	"github.com/stratus/ral-core/internal/docs"
	"github.com/stratus/ral-core/internal/model"
)

var (
	// Global flags
	verbose    bool
	configPath string
	outDir     string
	defsDirs   []string
	services   []string

	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ral-docs",
	Short: "Generate and publish API reference documentation",
	Long: `ral-docs renders markdown reference pages for every service with
resource definitions: an index covering the client, the service resource
and the waiters, plus one page per resource type.

Definitions resolve from --defs directories layered over the bundled
tree (and RAL_DATA_PATH, like the library itself). Settings can also
come from a .ral-docs.yaml config file; flags win over the file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogger(); err != nil {
			return err
		}
		return loadConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func initLogger() error {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	built, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = built
	return nil
}

// newLoader resolves definitions from --defs directories layered over
// the bundled tree.
func newLoader() *defs.Loader {
	opts := make([]defs.LoaderOption, 0, len(defsDirs))
	for _, dir := range defsDirs {
		opts = append(opts, defs.WithSearchPath(dir))
	}
	return defs.NewLoader(opts...)
}

// buildContext loads one service's definitions. Waiters are optional.
func buildContext(loader *defs.Loader, service string) (*model.ServiceContext, error) {
	api, err := loader.LoadAPI(service, "")
	if err != nil {
		return nil, err
	}
	resources, err := loader.LoadResources(service, "")
	if err != nil {
		return nil, err
	}
	sctx := &model.ServiceContext{
		ServiceName:  service,
		Service:      api,
		ResourceDefs: resources,
	}
	if loader.Has(service, "", defs.DefWaiters) {
		waiters, err := loader.LoadWaiters(service, "")
		if err != nil {
			return nil, err
		}
		sctx.Waiters = waiters
	}
	return sctx, nil
}

// targetServices resolves the services to operate on: the --service
// selection when given, otherwise every service with resource
// definitions.
func targetServices(loader *defs.Loader) ([]string, error) {
	if len(services) > 0 {
		for _, service := range services {
			if !loader.Has(service, "", defs.DefResources) {
				return nil, fmt.Errorf("service %q has no resource definitions", service)
			}
		}
		return services, nil
	}
	found, err := loader.ListServices(defs.DefResources)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("no services with resource definitions found")
	}
	return found, nil
}

func renderService(loader *defs.Loader, service string) (map[string][]byte, error) {
	sctx, err := buildContext(loader, service)
	if err != nil {
		return nil, err
	}
	return docs.Generate(sctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default .ral-docs.yaml if present)")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "build/docs", "Output directory for generated pages")
	rootCmd.PersistentFlags().StringSliceVar(&defsDirs, "defs", nil, "Additional definition directories (repeatable)")
	rootCmd.PersistentFlags().StringSliceVarP(&services, "service", "s", nil, "Limit to named services (repeatable)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(publishCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
