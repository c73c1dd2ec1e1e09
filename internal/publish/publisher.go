package publish

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Publisher uploads rendered documentation to a store under a fixed
// bucket and key prefix.
type Publisher struct {
	store  Store
	bucket string
	prefix string
	logger *zap.Logger

	// Prune deletes keys under the written scope that this run did not
	// produce, so removed pages disappear from the published set.
	Prune bool
}

// NewPublisher wires a publisher over a store.
func NewPublisher(store Store, bucket, prefix string) *Publisher {
	return &Publisher{
		store:  store,
		bucket: bucket,
		prefix: prefix,
		logger: zap.NewNop(),
	}
}

// SetLogger replaces the no-op default.
func (p *Publisher) SetLogger(logger *zap.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// Publish uploads one service's pages, keyed by file name. It returns
// the object keys written, sorted.
func (p *Publisher) Publish(ctx context.Context, service string, pages map[string][]byte) ([]string, error) {
	if service == "" {
		return nil, fmt.Errorf("service name is required")
	}
	if err := p.store.EnsureBucket(ctx, p.bucket); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(pages))
	for name := range pages {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		key := joinKey(p.prefix, service, name)
		if err := p.store.Put(ctx, p.bucket, key, pages[name], contentTypeFor(name)); err != nil {
			return written, fmt.Errorf("publish %s: %w", key, err)
		}
		p.logger.Debug("published page",
			zap.String("bucket", p.bucket),
			zap.String("key", key),
			zap.Int("bytes", len(pages[name])))
		written = append(written, key)
	}

	if p.Prune {
		if err := p.pruneExcept(ctx, joinKey(p.prefix, service), written); err != nil {
			return written, err
		}
	}
	return written, nil
}

// PublishDir uploads every file under root, keyed by its path relative
// to root. It returns the object keys written, sorted.
func (p *Publisher) PublishDir(ctx context.Context, root string) ([]string, error) {
	if err := p.store.EnsureBucket(ctx, p.bucket); err != nil {
		return nil, err
	}

	var written []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		key := joinKey(p.prefix, filepath.ToSlash(rel))
		if err := p.store.Put(ctx, p.bucket, key, data, contentTypeFor(rel)); err != nil {
			return fmt.Errorf("publish %s: %w", key, err)
		}
		p.logger.Debug("published file",
			zap.String("bucket", p.bucket),
			zap.String("key", key),
			zap.Int("bytes", len(data)))
		written = append(written, key)
		return nil
	})
	if err != nil {
		return written, err
	}
	sort.Strings(written)

	if p.Prune {
		if err := p.pruneExcept(ctx, p.prefix, written); err != nil {
			return written, err
		}
	}
	return written, nil
}

func (p *Publisher) pruneExcept(ctx context.Context, scope string, keep []string) error {
	kept := make(map[string]bool, len(keep))
	for _, key := range keep {
		kept[key] = true
	}
	keys, err := p.store.ListPrefix(ctx, p.bucket, scope)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if kept[key] {
			continue
		}
		if err := p.store.Delete(ctx, p.bucket, key); err != nil {
			return err
		}
		p.logger.Debug("pruned stale page",
			zap.String("bucket", p.bucket),
			zap.String("key", key))
	}
	return nil
}

func joinKey(parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Trim(strings.Join(kept, "/"), "/")
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".css":
		return "text/css"
	default:
		return "application/octet-stream"
	}
}
