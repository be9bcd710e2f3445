package homefinder

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/vkconfig/internal/domain"
)

// EnvHome overrides home discovery when set.
const EnvHome = "VKCONFIG_HOME"

// Resolver picks the home directory: an explicit path, then $VKCONFIG_HOME,
// then the nearest ancestor of the working directory holding vkconfig.yaml,
// then <user config dir>/vkconfig.
type Resolver struct {
	finder        *Finder
	getenv        func(string) string
	getwd         func() (string, error)
	userConfigDir func() (string, error)
}

type ResolverOption func(*Resolver)

func WithGetenv(f func(string) string) ResolverOption {
	return func(r *Resolver) { r.getenv = f }
}

func WithGetwd(f func() (string, error)) ResolverOption {
	return func(r *Resolver) { r.getwd = f }
}

func WithUserConfigDir(f func() (string, error)) ResolverOption {
	return func(r *Resolver) { r.userConfigDir = f }
}

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		finder:        NewFinder(),
		getenv:        os.Getenv,
		getwd:         os.Getwd,
		userConfigDir: os.UserConfigDir,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns an absolute home directory. The directory need not exist.
func (r *Resolver) Resolve(explicit string) (string, error) {
	if p := strings.TrimSpace(explicit); p != "" {
		return abs(p)
	}
	if p := strings.TrimSpace(r.getenv(EnvHome)); p != "" {
		return abs(p)
	}

	if wd, err := r.getwd(); err == nil {
		if root, err := r.finder.FindRoot(wd); err == nil {
			return root, nil
		}
	}

	base, err := r.userConfigDir()
	if err != nil {
		return "", &domain.OpError{
			Op:   "homefinder.resolve",
			Kind: domain.KindNotFound,
			Err:  err,
		}
	}
	return filepath.Join(base, "vkconfig"), nil
}

func abs(p string) (string, error) {
	a, err := filepath.Abs(p)
	if err != nil {
		return "", &domain.OpError{
			Op:   "homefinder.resolve",
			Kind: domain.KindExecution,
			Path: p,
			Err:  err,
		}
	}
	return a, nil
}
