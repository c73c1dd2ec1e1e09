package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stratus/ral-core/internal/publish"
)

var (
	publishDir    string
	publishBucket string
	publishPrefix string
	publishPrune  bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload generated documentation to the configured store",
	Long: `Uploads a generated documentation tree to the store configured
through RAL_PUBLISH_* environment variables. Without an S3 endpoint the
pages land in a local directory store, which is useful for dry runs.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishDir, "dir", "", "Directory to upload (defaults to --out)")
	publishCmd.Flags().StringVar(&publishBucket, "bucket", "", "Target bucket (defaults to RAL_PUBLISH_BUCKET)")
	publishCmd.Flags().StringVar(&publishPrefix, "prefix", "", "Key prefix (defaults to RAL_PUBLISH_PREFIX)")
	publishCmd.Flags().BoolVar(&publishPrune, "prune", false, "Delete stale keys under the prefix after upload")
}

func runPublish(cmd *cobra.Command, args []string) error {
	dir := publishDir
	if dir == "" {
		dir = outDir
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("nothing to publish: %w (run generate first)", err)
	}

	pubCfg := publish.FromEnv()
	if cfg.Publish.Bucket != "" {
		pubCfg.Bucket = cfg.Publish.Bucket
	}
	if cfg.Publish.Prefix != "" {
		pubCfg.Prefix = cfg.Publish.Prefix
	}
	if publishBucket != "" {
		pubCfg.Bucket = publishBucket
	}
	if publishPrefix != "" {
		pubCfg.Prefix = publishPrefix
	}
	prune := cfg.Publish.Prune
	if cmd.Flags().Changed("prune") {
		prune = publishPrune
	}

	store, err := pubCfg.OpenStore()
	if err != nil {
		return err
	}
	if err := store.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}

	p := publish.NewPublisher(store, pubCfg.Bucket, pubCfg.Prefix)
	p.SetLogger(logger)
	p.Prune = prune

	written, err := p.PublishDir(cmd.Context(), dir)
	if err != nil {
		return err
	}
	logger.Info("published documentation",
		zap.String("dir", dir),
		zap.String("bucket", pubCfg.Bucket),
		zap.String("prefix", pubCfg.Prefix),
		zap.Int("pages", len(written)))
	return nil
}
