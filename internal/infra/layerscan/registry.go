package layerscan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aalvaropc/vkconfig/internal/domain"
	"github.com/aalvaropc/vkconfig/internal/infra/logger"
	"github.com/aalvaropc/vkconfig/internal/ports"
)

const defaultDebounce = 200 * time.Millisecond

// Registry holds the catalog of installed layers. Readers see an immutable
// catalog snapshot; Refresh swaps in a new one.
type Registry struct {
	scanner ports.LayerScanner

	mu      sync.RWMutex
	catalog *domain.Catalog

	watchDirs []string
	debounce  time.Duration
	log       *slog.Logger
}

type RegistryOption func(*Registry)

// WithWatchDirs sets the directories Watch listens on.
func WithWatchDirs(dirs ...string) RegistryOption {
	return func(r *Registry) { r.watchDirs = append([]string(nil), dirs...) }
}

// WithDebounce sets how long Watch waits for events to settle before refreshing.
func WithDebounce(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.debounce = d
		}
	}
}

func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRegistry returns an empty registry; call Refresh to populate it.
func NewRegistry(scanner ports.LayerScanner, opts ...RegistryOption) *Registry {
	r := &Registry{
		scanner:  scanner,
		catalog:  domain.NewCatalog(nil),
		debounce: defaultDebounce,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	_ ports.LayerRegistry = (*Registry)(nil)
	_ domain.PathLookup   = (*Registry)(nil)
)

// Refresh rescans and replaces the catalog. On error the previous catalog is kept.
func (r *Registry) Refresh(ctx context.Context) error {
	layers, err := r.scanner.Scan(ctx)
	if err != nil {
		return &domain.OpError{Op: "registry.refresh", Kind: domain.KindExecution, Err: err}
	}

	next := domain.NewCatalog(layers)

	r.mu.Lock()
	r.catalog = next
	r.mu.Unlock()

	r.log.Info("registry.refreshed", "layers", next.Len())
	return nil
}

func (r *Registry) snapshot() *domain.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog
}

func (r *Registry) FindLayer(name string) *domain.Layer {
	return r.snapshot().FindLayer(name)
}

func (r *Registry) FindLayerAt(name, path string) *domain.Layer {
	return r.snapshot().FindLayerAt(name, path)
}

func (r *Registry) AvailableLayers() []domain.Layer {
	return r.snapshot().Layers()
}

// Watch refreshes the registry whenever a manifest changes in one of the
// watch directories and reports each refresh to onRefresh. Directories that
// do not exist are skipped. It blocks until ctx is done.
func (r *Registry) Watch(ctx context.Context, onRefresh func([]domain.Layer, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return &domain.OpError{Op: "registry.watch", Kind: domain.KindExecution, Err: err}
	}
	defer w.Close()

	watched := 0
	for _, dir := range r.watchDirs {
		if err := w.Add(dir); err != nil {
			r.log.Debug("registry.watch_skip", "dir", dir, "err", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		return &domain.OpError{
			Op:   "registry.watch",
			Kind: domain.KindNotFound,
			Err:  fmt.Errorf("none of %d search paths exist: %w", len(r.watchDirs), domain.ErrNotFound),
		}
	}
	r.log.Info("registry.watching", "dirs", watched)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isManifestEvent(ev) {
				continue
			}
			r.log.Debug("registry.event", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(r.debounce)
			} else {
				timer.Reset(r.debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("registry.watch_error", "err", err)

		case <-fire:
			fire = nil
			err := r.Refresh(ctx)
			if onRefresh != nil {
				if err != nil {
					onRefresh(nil, err)
				} else {
					onRefresh(r.AvailableLayers(), nil)
				}
			}
		}
	}
}

func isManifestEvent(ev fsnotify.Event) bool {
	if !strings.EqualFold(filepath.Ext(ev.Name), ".json") {
		return false
	}
	return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
