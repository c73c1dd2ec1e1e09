package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// defaultConfigFile is picked up from the working directory when
// --config is not given.
const defaultConfigFile = ".ral-docs.yaml"

// fileConfig is the .ral-docs.yaml layout. Flags win over file values.
type fileConfig struct {
	Out      string   `yaml:"out"`
	Services []string `yaml:"services"`
	Defs     []string `yaml:"defs"`
	Publish  struct {
		Bucket string `yaml:"bucket"`
		Prefix string `yaml:"prefix"`
		Prune  bool   `yaml:"prune"`
	} `yaml:"publish"`
}

var cfg fileConfig

// loadConfig reads the config file and fills in settings the user did
// not set on the command line.
func loadConfig(cmd *cobra.Command) error {
	path := configPath
	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	flags := cmd.Root().PersistentFlags()
	if cfg.Out != "" && !flags.Changed("out") {
		outDir = cfg.Out
	}
	if len(cfg.Services) > 0 && !flags.Changed("service") {
		services = cfg.Services
	}
	if len(cfg.Defs) > 0 && !flags.Changed("defs") {
		defsDirs = append(defsDirs, cfg.Defs...)
	}
	return nil
}
