package domain

// Config represents the vkconfig settings loaded from vkconfig.yaml.
type Config struct {
	Defaults  DefaultsConfig
	Paths     PathsConfig
	Discovery DiscoveryConfig
}

type DefaultsConfig struct {
	Configuration string
}

type PathsConfig struct {
	ConfigurationsDir string
	LogsDir           string

	// LayerPaths are extra layer search directories, relative to the home
	// directory unless absolute. They are scanned before the system paths.
	LayerPaths []string
}

type DiscoveryConfig struct {
	SystemPaths bool // scan the platform's explicit/implicit layer directories
	Environment bool // honour VK_LAYER_PATH
}

// HomeSpec describes a vkconfig home directory to initialize.
type HomeSpec struct {
	Root string
}

// DefaultConfig provides sane defaults if vkconfig.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Defaults: DefaultsConfig{
			Configuration: "Validation",
		},
		Paths: PathsConfig{
			ConfigurationsDir: "configurations",
			LogsDir:           "logs",
			LayerPaths:        []string{"layers"},
		},
		Discovery: DiscoveryConfig{
			SystemPaths: true,
			Environment: true,
		},
	}
}
