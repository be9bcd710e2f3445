package fshome

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/vkconfig/internal/domain"
	"github.com/aalvaropc/vkconfig/internal/ports"
)

// Initializer lays out a vkconfig home: vkconfig.yaml, the built-in
// configurations and the logs and layers directories.
type Initializer struct{}

func NewInitializer() *Initializer {
	return &Initializer{}
}

var _ ports.HomeInitializer = (*Initializer)(nil)

// Init writes every template missing from spec.Root. Existing files are left
// alone unless force is set.
func (i *Initializer) Init(spec domain.HomeSpec, force bool) error {
	root := filepath.Clean(spec.Root)
	defaults := domain.DefaultConfig()

	dirs := []string{
		filepath.Join(root, defaults.Paths.ConfigurationsDir),
		filepath.Join(root, defaults.Paths.LogsDir),
	}
	for _, p := range defaults.Paths.LayerPaths {
		dirs = append(dirs, filepath.Join(root, p))
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return &domain.OpError{Op: "fshome.mkdir", Kind: domain.KindExecution, Path: d, Err: err}
		}
	}

	return fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(p, "templates/")
		dst := filepath.Join(root, filepath.FromSlash(rel))

		if !force {
			if _, statErr := os.Stat(dst); statErr == nil {
				return nil
			}
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}

		b, err := fs.ReadFile(templatesFS, p)
		if err != nil {
			return err
		}

		if err := os.WriteFile(dst, b, 0o644); err != nil {
			return &domain.OpError{Op: "fshome.write", Kind: domain.KindExecution, Path: dst, Err: err}
		}
		return nil
	})
}

// Templates lists the files Init writes, relative to the home root.
func Templates() []string {
	var out []string
	_ = fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			out = append(out, strings.TrimPrefix(p, "templates/"))
		}
		return nil
	})
	return out
}
