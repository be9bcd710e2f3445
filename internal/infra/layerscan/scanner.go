package layerscan

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/vkconfig/internal/domain"
	"github.com/aalvaropc/vkconfig/internal/infra/layerjson"
	"github.com/aalvaropc/vkconfig/internal/infra/logger"
	"github.com/aalvaropc/vkconfig/internal/ports"
)

// LoaderFactory returns the manifest loader used for a search path kind.
type LoaderFactory func(domain.LayerType) ports.LayerLoader

// Scanner reads every *.json manifest of its search paths, in order.
// A layer name found in several directories is kept once per directory.
type Scanner struct {
	paths     []SearchPath
	newLoader LoaderFactory
	log       *slog.Logger
}

type ScannerOption func(*Scanner)

func WithLoaderFactory(f LoaderFactory) ScannerOption {
	return func(s *Scanner) {
		if f != nil {
			s.newLoader = f
		}
	}
}

func WithScanLogger(l *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		if l != nil {
			s.log = l
		}
	}
}

func NewScanner(paths []SearchPath, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		paths: append([]SearchPath(nil), paths...),
		newLoader: func(t domain.LayerType) ports.LayerLoader {
			return layerjson.NewLoader(layerjson.WithLayerType(t))
		},
		log: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.LayerScanner = (*Scanner)(nil)

// Dirs returns the scanned directories in order.
func (s *Scanner) Dirs() []string {
	out := make([]string, 0, len(s.paths))
	for _, p := range s.paths {
		out = append(out, p.Dir)
	}
	return out
}

// Scan never fails on a bad manifest or a missing directory; those are logged
// and skipped. It only returns an error when ctx is done.
func (s *Scanner) Scan(ctx context.Context) ([]domain.Layer, error) {
	var out []domain.Layer

	for _, sp := range s.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entries, err := os.ReadDir(sp.Dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				s.log.Debug("scan.skip_dir", "dir", sp.Dir, "reason", "missing")
			} else {
				s.log.Warn("scan.skip_dir", "dir", sp.Dir, "err", err)
			}
			continue
		}

		loader := s.newLoader(sp.Type)
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
				continue
			}

			path := filepath.Join(sp.Dir, e.Name())
			layers, err := loader.LoadLayers(path)
			if err != nil {
				s.log.Warn("scan.skip_manifest", "path", path, "err", err)
				continue
			}
			out = append(out, layers...)
		}
	}

	s.log.Debug("scan.done", "dirs", len(s.paths), "layers", len(out))
	return out, nil
}
