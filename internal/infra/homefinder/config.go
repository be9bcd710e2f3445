package homefinder

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aalvaropc/vkconfig/internal/domain"
)

// LoadConfig loads vkconfig.yaml from the home root and applies defaults.
// When the file is missing the defaults are returned with a KindNotFound error;
// any other read failure is KindExecution.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, ConfigFile)
	b, err := os.ReadFile(path)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, fs.ErrNotExist) {
			kind = domain.KindNotFound
		}
		return cfg, &domain.OpError{
			Op:   "homefinder.loadconfig",
			Kind: kind,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "homefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	// Apply parsed values on top of defaults.
	v := y.VKConfig
	if v.Defaults.Configuration != "" {
		cfg.Defaults.Configuration = v.Defaults.Configuration
	}
	if v.Paths.ConfigurationsDir != "" {
		cfg.Paths.ConfigurationsDir = v.Paths.ConfigurationsDir
	}
	if v.Paths.LogsDir != "" {
		cfg.Paths.LogsDir = v.Paths.LogsDir
	}
	if v.Paths.LayerPaths != nil {
		cfg.Paths.LayerPaths = append([]string(nil), *v.Paths.LayerPaths...)
	}
	if v.Discovery.SystemPaths != nil {
		cfg.Discovery.SystemPaths = *v.Discovery.SystemPaths
	}
	if v.Discovery.Environment != nil {
		cfg.Discovery.Environment = *v.Discovery.Environment
	}

	return cfg, nil
}

type yamlConfig struct {
	VKConfig struct {
		Defaults struct {
			Configuration string `yaml:"configuration"`
		} `yaml:"defaults"`

		Paths struct {
			ConfigurationsDir string `yaml:"configurations_dir"`
			LogsDir           string `yaml:"logs_dir"`

			// Pointer so that an explicit empty list clears the default.
			LayerPaths *[]string `yaml:"layer_paths"`
		} `yaml:"paths"`

		Discovery struct {
			SystemPaths *bool `yaml:"system_paths"`
			Environment *bool `yaml:"environment"`
		} `yaml:"discovery"`
	} `yaml:"vkconfig"`
}
