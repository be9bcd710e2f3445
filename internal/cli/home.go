package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aalvaropc/vkconfig/internal/domain"
	"github.com/aalvaropc/vkconfig/internal/infra/configstore"
	"github.com/aalvaropc/vkconfig/internal/infra/homefinder"
	"github.com/aalvaropc/vkconfig/internal/infra/layerscan"
	"github.com/aalvaropc/vkconfig/internal/infra/logger"
	"github.com/aalvaropc/vkconfig/internal/ports"
)

type homeCtx struct {
	root string
	cfg  domain.Config
	log  *slog.Logger

	scanner  *layerscan.Scanner
	registry *layerscan.Registry
	store    ports.ConfigurationStore

	cleanup func() error
}

func (h *homeCtx) Close() {
	if h.cleanup != nil {
		_ = h.cleanup()
	}
}

// loadHome resolves the home directory, reads vkconfig.yaml (defaults apply
// when it does not exist yet), starts file logging and scans the layer
// search paths. A home that does not exist yet is not created.
func loadHome(ctx context.Context, flags *rootFlags) (*homeCtx, error) {
	root, err := homefinder.NewResolver().Resolve(flags.home)
	if err != nil {
		return nil, err
	}

	cfg, err := homefinder.LoadConfig(root)
	if err != nil && !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}

	cleanup := setupLogging(root, cfg, flags.debug)
	log := logger.L()

	paths := layerscan.SearchPaths(cfg, root, nil)
	scanner := layerscan.NewScanner(paths, layerscan.WithScanLogger(log))
	registry := layerscan.NewRegistry(scanner,
		layerscan.WithWatchDirs(scanner.Dirs()...),
		layerscan.WithRegistryLogger(log),
	)

	h := &homeCtx{
		root:     root,
		cfg:      cfg,
		log:      log,
		scanner:  scanner,
		registry: registry,
		store:    configstore.NewJSONStore(root, cfg),
		cleanup:  cleanup,
	}

	if err := registry.Refresh(ctx); err != nil {
		h.Close()
		return nil, fmt.Errorf("scan layers: %w", err)
	}

	log.Info("home.loaded", "root", root, "search_paths", len(paths), "layers", len(registry.AvailableLayers()))
	return h, nil
}

// setupLogging starts the file logger under the home's logs dir. Nothing is
// written, and the process logger keeps discarding, until the home exists.
func setupLogging(root string, cfg domain.Config, debug bool) func() error {
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return nil
	}

	logsDir := cfg.Paths.LogsDir
	if !filepath.IsAbs(logsDir) {
		logsDir = filepath.Join(root, logsDir)
	}
	cleanup, err := logger.Setup(logger.Config{Dir: logsDir, Debug: debug})
	if err != nil {
		return nil
	}
	return cleanup
}
