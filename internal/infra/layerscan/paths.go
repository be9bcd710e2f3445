package layerscan

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/aalvaropc/vkconfig/internal/domain"
)

// SearchPath is a directory holding layer manifests.
type SearchPath struct {
	Dir  string
	Type domain.LayerType
}

// SearchPaths builds the ordered list of directories to scan: the user paths
// from cfg (relative to home), then VK_LAYER_PATH and VK_ADD_LAYER_PATH, then
// the platform system directories. Duplicate directories keep their first
// position. getenv defaults to os.Getenv.
func SearchPaths(cfg domain.Config, home string, getenv func(string) string) []SearchPath {
	if getenv == nil {
		getenv = os.Getenv
	}

	var out []SearchPath
	seen := map[string]bool{}
	add := func(dir string, t domain.LayerType) {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return
		}
		dir = filepath.Clean(dir)
		if seen[dir] {
			return
		}
		seen[dir] = true
		out = append(out, SearchPath{Dir: dir, Type: t})
	}

	for _, p := range cfg.Paths.LayerPaths {
		if p == "" {
			continue
		}
		if !filepath.IsAbs(p) && home != "" {
			p = filepath.Join(home, p)
		}
		add(p, domain.LayerTypeCustom)
	}

	if cfg.Discovery.Environment {
		for _, key := range []string{"VK_LAYER_PATH", "VK_ADD_LAYER_PATH"} {
			for _, p := range filepath.SplitList(getenv(key)) {
				add(p, domain.LayerTypeExplicit)
			}
		}
	}

	if cfg.Discovery.SystemPaths {
		for _, base := range systemBases(getenv) {
			add(filepath.Join(base, "explicit_layer.d"), domain.LayerTypeExplicit)
			add(filepath.Join(base, "implicit_layer.d"), domain.LayerTypeImplicit)
		}
	}

	return out
}

// systemBases lists the vulkan data directories the loader consults on
// Unix-like systems. Windows discovers layers through the registry, which is
// not scanned.
func systemBases(getenv func(string) string) []string {
	if runtime.GOOS == "windows" {
		return nil
	}

	var bases []string

	configHome := getenv("XDG_CONFIG_HOME")
	dataHome := getenv("XDG_DATA_HOME")
	if userHome := getenv("HOME"); userHome != "" {
		if configHome == "" {
			configHome = filepath.Join(userHome, ".config")
		}
		if dataHome == "" {
			dataHome = filepath.Join(userHome, ".local", "share")
		}
	}

	if configHome != "" {
		bases = append(bases, filepath.Join(configHome, "vulkan"))
	}
	bases = append(bases, xdgDirs(getenv("XDG_CONFIG_DIRS"), "/etc/xdg")...)
	bases = append(bases, "/usr/local/etc/vulkan", "/etc/vulkan")

	if dataHome != "" {
		bases = append(bases, filepath.Join(dataHome, "vulkan"))
	}
	bases = append(bases, xdgDirs(getenv("XDG_DATA_DIRS"), "/usr/local/share:/usr/share")...)

	return bases
}

func xdgDirs(value, fallback string) []string {
	if strings.TrimSpace(value) == "" {
		value = fallback
	}
	var out []string
	for _, d := range filepath.SplitList(value) {
		if d != "" {
			out = append(out, filepath.Join(d, "vulkan"))
		}
	}
	return out
}
