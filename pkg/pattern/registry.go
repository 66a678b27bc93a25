package pattern

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/becas/pkg/logging"
)

//go:embed catalogs/*.yaml
var catalogFS embed.FS

// DefaultCatalogID is the catalog shipped with the binary.
const DefaultCatalogID = "convocatoria-general"

// Registry manages a collection of pattern catalogs.
type Registry interface {
	// Register adds a catalog to the registry
	Register(catalog *Catalog) error

	// Unregister removes a catalog from the registry
	Unregister(catalogID string) error

	// Get returns a catalog by its ID
	Get(catalogID string) (*Catalog, bool)

	// List returns all registered catalogs ordered by ID
	List() []*Catalog

	// Reload reloads all catalogs from the configured directory
	Reload() error

	// Watch starts watching the catalog directory for changes
	Watch() error

	// StopWatch stops watching the catalog directory
	StopWatch()

	// LoadDirectory loads all catalogs from a directory
	LoadDirectory(dir string) error

	// LoadFile loads a single catalog file
	LoadFile(path string) error
}

// DefaultRegistry is the default implementation of the catalog Registry.
type DefaultRegistry struct {
	mu       sync.RWMutex
	catalogs map[string]*Catalog
	files    map[string]string // file path -> catalog ID
	dir      string
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	onChange func(event string, catalog *Catalog)
	log      *logging.Logger
}

// NewRegistry creates a new catalog registry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		catalogs: make(map[string]*Catalog),
		files:    make(map[string]string),
		log:      logging.Nop(),
	}
}

// NewRegistryWithDirectory creates a new registry and loads catalogs from the directory.
func NewRegistryWithDirectory(dir string) (*DefaultRegistry, error) {
	r := NewRegistry()
	r.dir = dir

	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}

	return r, nil
}

// SetLogger sets the logger used for watch events and reload failures.
func (r *DefaultRegistry) SetLogger(log *logging.Logger) {
	r.log = logging.OrNop(log).WithComponent("catalog-registry")
}

// Register adds a catalog to the registry.
func (r *DefaultRegistry) Register(catalog *Catalog) error {
	if catalog == nil {
		return fmt.Errorf("catalog cannot be nil")
	}

	if err := catalog.Validate(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}

	if !catalog.IsCompiled() {
		if err := catalog.Compile(); err != nil {
			return fmt.Errorf("compiling catalog %q: %w", catalog.CatalogID, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Allow update only when the version changes
	if existing, ok := r.catalogs[catalog.CatalogID]; ok && existing.Version == catalog.Version {
		return fmt.Errorf("catalog %q version %s already registered", catalog.CatalogID, catalog.Version)
	}

	r.catalogs[catalog.CatalogID] = catalog
	return nil
}

// Unregister removes a catalog from the registry.
func (r *DefaultRegistry) Unregister(catalogID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.catalogs[catalogID]; !ok {
		return fmt.Errorf("catalog %q not found", catalogID)
	}

	delete(r.catalogs, catalogID)
	return nil
}

// Get returns a catalog by its ID.
func (r *DefaultRegistry) Get(catalogID string) (*Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog, ok := r.catalogs[catalogID]
	return catalog, ok
}

// List returns all registered catalogs ordered by ID.
func (r *DefaultRegistry) List() []*Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalogs := make([]*Catalog, 0, len(r.catalogs))
	for _, c := range r.catalogs {
		catalogs = append(catalogs, c)
	}
	sort.Slice(catalogs, func(i, j int) bool {
		return catalogs[i].CatalogID < catalogs[j].CatalogID
	})
	return catalogs
}

// Count returns the number of registered catalogs.
func (r *DefaultRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.catalogs)
}

// LoadEmbedded registers the catalogs shipped with the binary.
func (r *DefaultRegistry) LoadEmbedded() error {
	entries, err := fs.ReadDir(catalogFS, "catalogs")
	if err != nil {
		return fmt.Errorf("reading embedded catalogs: %w", err)
	}
	for _, entry := range entries {
		data, err := catalogFS.ReadFile(path.Join("catalogs", entry.Name()))
		if err != nil {
			return fmt.Errorf("reading embedded catalog %s: %w", entry.Name(), err)
		}
		catalog, err := Parse(data)
		if err != nil {
			return fmt.Errorf("embedded catalog %s: %w", entry.Name(), err)
		}
		if err := r.Register(catalog); err != nil {
			return fmt.Errorf("embedded catalog %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// LoadDirectory loads all YAML catalog files from a directory.
func (r *DefaultRegistry) LoadDirectory(dir string) error {
	r.dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// Directory doesn't exist, nothing to load
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		if err := r.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading catalogs: %s", strings.Join(loadErrors, "; "))
	}

	return nil
}

// LoadFile loads a single catalog file.
func (r *DefaultRegistry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	catalog, err := Parse(data)
	if err != nil {
		return err
	}

	// Edits to an already loaded file replace its catalog whatever the version.
	r.mu.Lock()
	if r.files[path] == catalog.CatalogID {
		delete(r.catalogs, catalog.CatalogID)
	}
	r.mu.Unlock()

	if err := r.Register(catalog); err != nil {
		return fmt.Errorf("registering catalog: %w", err)
	}

	r.mu.Lock()
	r.files[path] = catalog.CatalogID
	r.mu.Unlock()

	return nil
}

// Parse decodes and compiles a catalog without registering it.
func Parse(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if errs := ValidateSchema(&catalog); len(errs) > 0 {
		return nil, errs
	}
	if err := catalog.Compile(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Reload reloads all catalogs from the configured directory.
func (r *DefaultRegistry) Reload() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for reload")
	}

	r.mu.Lock()
	r.catalogs = make(map[string]*Catalog)
	r.files = make(map[string]string)
	r.mu.Unlock()

	return r.LoadDirectory(r.dir)
}

// SetOnChange sets a callback function that is called when catalogs change.
func (r *DefaultRegistry) SetOnChange(fn func(event string, catalog *Catalog)) {
	r.onChange = fn
}

// Watch starts watching the catalog directory for changes.
func (r *DefaultRegistry) Watch() error {
	if r.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})

	go r.watchLoop()

	if err := watcher.Add(r.dir); err != nil {
		r.watcher.Close()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}

	return nil
}

// watchLoop handles file system events.
func (r *DefaultRegistry) watchLoop() {
	for {
		select {
		case <-r.stopChan:
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}

			if !isYAML(event.Name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				r.handleFileChange(event.Name, "create")

			case event.Op&fsnotify.Write == fsnotify.Write:
				r.handleFileChange(event.Name, "modify")

			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleFileRemove(event.Name)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.log.Error().Err(err).Msg("catalog watcher error")
		}
	}
}

// handleFileChange handles file creation or modification.
func (r *DefaultRegistry) handleFileChange(path string, eventType string) {
	if err := r.LoadFile(path); err != nil {
		r.log.Warn().Err(err).Str("file", path).Msg("catalog reload failed")
		return
	}

	r.mu.RLock()
	id := r.files[path]
	r.mu.RUnlock()

	catalog, ok := r.Get(id)
	if !ok {
		return
	}
	r.log.Info().Str("catalog", id).Str("version", catalog.Version).Str("event", eventType).Msg("catalog loaded")
	if r.onChange != nil {
		r.onChange(eventType, catalog)
	}
}

// handleFileRemove drops the catalog that was loaded from path.
func (r *DefaultRegistry) handleFileRemove(path string) {
	r.mu.Lock()
	id, ok := r.files[path]
	if ok {
		delete(r.files, path)
		delete(r.catalogs, id)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	r.log.Info().Str("catalog", id).Msg("catalog removed")
	if r.onChange != nil {
		r.onChange("remove", nil)
	}
}

// StopWatch stops watching the catalog directory.
func (r *DefaultRegistry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}

// Clear removes all catalogs from the registry.
func (r *DefaultRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalogs = make(map[string]*Catalog)
	r.files = make(map[string]string)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded default catalog. It panics if the embedded
// catalog is invalid, which tests guard against.
func Default() *Catalog {
	defaultOnce.Do(func() {
		r := NewRegistry()
		if err := r.LoadEmbedded(); err != nil {
			panic(err)
		}
		c, ok := r.Get(DefaultCatalogID)
		if !ok {
			panic(fmt.Sprintf("embedded catalog %q missing", DefaultCatalogID))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
