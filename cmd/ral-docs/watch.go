package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchDebounce batches rapid saves into one regeneration.
const watchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate documentation whenever definition files change",
	Long: `Watches the directories given with --defs and regenerates all
documentation whenever a definition file changes. Embedded definitions
never change, so at least one --defs directory is required.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if len(defsDirs) == 0 {
		return fmt.Errorf("watch needs at least one --defs directory (embedded definitions do not change)")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher); err != nil {
		return err
	}
	logger.Info("watching definition directories", zap.Strings("dirs", watcher.WatchList()))

	if err := regenerateAll(); err != nil {
		logger.Warn("initial generation failed", zap.Error(err))
	}

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var pending bool
	var lastEvent time.Time
	debounce := time.NewTicker(100 * time.Millisecond)
	defer debounce.Stop()

	for {
		select {
		case sig := <-sigCh:
			logger.Info("stopping watch", zap.String("signal", sig.String()))
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				// fsnotify does not recurse; new service or version
				// directories need their own watch.
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := watcher.Add(event.Name); addErr != nil {
						logger.Warn("cannot watch new directory", zap.String("dir", event.Name), zap.Error(addErr))
					}
					continue
				}
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("definition changed",
				zap.String("file", event.Name),
				zap.String("op", event.Op.String()))
			pending = true
			lastEvent = time.Now()

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(watchErr))

		case <-debounce.C:
			if !pending || time.Since(lastEvent) < watchDebounce {
				continue
			}
			pending = false
			if err := regenerateAll(); err != nil {
				logger.Warn("generation failed", zap.Error(err))
			}
		}
	}
}

// addWatchDirs registers each --defs directory and every directory below
// it, since definition files live in service/version subdirectories.
func addWatchDirs(watcher *fsnotify.Watcher) error {
	for _, dir := range defsDirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return nil
}

func regenerateAll() error {
	loader := newLoader()
	names, err := targetServices(loader)
	if err != nil {
		return err
	}
	for _, service := range names {
		count, err := generateService(loader, service)
		if err != nil {
			return fmt.Errorf("generate %s: %w", service, err)
		}
		logger.Info("regenerated service docs",
			zap.String("service", service),
			zap.Int("pages", count),
			zap.String("dir", filepath.Join(outDir, service)))
	}
	return nil
}
