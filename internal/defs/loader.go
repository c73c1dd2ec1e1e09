package defs

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stratus/ral-core/internal/model"
)

// DefinitionType selects one of the three definition files of a service.
type DefinitionType string

const (
	DefAPI       DefinitionType = "api"
	DefResources DefinitionType = "resources"
	DefWaiters   DefinitionType = "waiters"
)

func (t DefinitionType) fileName() string { return string(t) + ".json" }

// EnvDataPath names additional definition directories, separated like PATH.
const EnvDataPath = "RAL_DATA_PATH"

// Loader resolves definition files across sources, in precedence order:
// registered sources, explicit search paths, RAL_DATA_PATH entries, then
// the embedded tree. The first source carrying a file wins.
type Loader struct {
	sources []fs.FS
}

// LoaderOption customizes loader construction.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	searchPaths []string
	registry    *Registry
	noEmbedded  bool
}

// WithSearchPath prepends a directory of definition trees.
func WithSearchPath(dir string) LoaderOption {
	return func(o *loaderOptions) {
		o.searchPaths = append(o.searchPaths, dir)
	}
}

// WithRegistry overrides the default definition-source registry.
func WithRegistry(r *Registry) LoaderOption {
	return func(o *loaderOptions) { o.registry = r }
}

// WithoutEmbedded drops the bundled definitions, leaving only explicit
// sources. Used by tests that must control everything the loader sees.
func WithoutEmbedded() LoaderOption {
	return func(o *loaderOptions) { o.noEmbedded = true }
}

// NewLoader builds a loader over the configured sources.
func NewLoader(opts ...LoaderOption) *Loader {
	o := &loaderOptions{registry: DefaultRegistry()}
	for _, opt := range opts {
		opt(o)
	}

	l := &Loader{}
	l.sources = append(l.sources, o.registry.ordered()...)
	for _, dir := range o.searchPaths {
		l.sources = append(l.sources, os.DirFS(dir))
	}
	if env := os.Getenv(EnvDataPath); env != "" {
		for _, dir := range filepath.SplitList(env) {
			if dir != "" {
				l.sources = append(l.sources, os.DirFS(dir))
			}
		}
	}
	if !o.noEmbedded {
		l.sources = append(l.sources, EmbeddedFS())
	}
	return l
}

// ListServices returns the services offering the given definition type in
// their latest API version, sorted.
func (l *Loader) ListServices(defType DefinitionType) ([]string, error) {
	seen := make(map[string]bool)
	for _, src := range l.sources {
		entries, err := fs.ReadDir(src, ".")
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			seen[entry.Name()] = true
		}
	}

	services := []string{}
	for service := range seen {
		version, err := l.LatestVersion(service)
		if err != nil {
			continue
		}
		if _, err := l.Raw(service, version, defType); err == nil {
			services = append(services, service)
		}
	}
	sort.Strings(services)
	return services, nil
}

// LatestVersion resolves a service's newest API version across all sources.
// Versions are dated strings, so lexicographic max is newest.
func (l *Loader) LatestVersion(service string) (string, error) {
	latest := ""
	for _, src := range l.sources {
		entries, err := fs.ReadDir(src, service)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() && entry.Name() > latest {
				latest = entry.Name()
			}
		}
	}
	if latest == "" {
		return "", fmt.Errorf("unknown service %q", service)
	}
	return latest, nil
}

// Raw reads one definition file. An empty version means the latest.
func (l *Loader) Raw(service, version string, defType DefinitionType) ([]byte, error) {
	if version == "" {
		resolved, err := l.LatestVersion(service)
		if err != nil {
			return nil, err
		}
		version = resolved
	}
	name := path.Join(service, version, defType.fileName())
	for _, src := range l.sources {
		data, err := fs.ReadFile(src, name)
		if err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("no %s definition for service %s version %s", defType, service, version)
}

// Has reports whether a definition file exists without loading it.
func (l *Loader) Has(service, version string, defType DefinitionType) bool {
	_, err := l.Raw(service, version, defType)
	return err == nil
}

// LoadAPI loads and parses a service's api.json.
func (l *Loader) LoadAPI(service, version string) (*model.ServiceModel, error) {
	data, err := l.Raw(service, version, DefAPI)
	if err != nil {
		return nil, err
	}
	m, err := model.ParseAPI(data)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", service, err)
	}
	return m, nil
}

// LoadResources loads and parses a service's resources.json.
func (l *Loader) LoadResources(service, version string) (*model.ResourcesFile, error) {
	data, err := l.Raw(service, version, DefResources)
	if err != nil {
		return nil, err
	}
	file, err := model.ParseResources(data)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", service, err)
	}
	return file, nil
}

// LoadWaiters loads and parses a service's waiters.json.
func (l *Loader) LoadWaiters(service, version string) (*model.WaiterModel, error) {
	data, err := l.Raw(service, version, DefWaiters)
	if err != nil {
		return nil, err
	}
	m, err := model.ParseWaiters(data)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", service, err)
	}
	return m, nil
}
