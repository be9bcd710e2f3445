package ports

import "github.com/aalvaropc/vkconfig/internal/domain"

// ConfigurationStore persists configurations.
//
// LoadConfiguration hydrates layer entries through lookup so that loaded
// layers carry their installed settings; unresolved layers are kept as bare
// entries rather than failing the load.
type ConfigurationStore interface {
	SaveConfiguration(cfg *domain.Configuration) (path string, err error)
	LoadConfiguration(name string, lookup domain.LayerLookup) (*domain.Configuration, error)
	ListConfigurations() ([]domain.ConfigurationRef, error)
	DeleteConfiguration(name string) error
	ConfigurationExists(name string) bool
}
