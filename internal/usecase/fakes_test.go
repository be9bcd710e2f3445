package usecase

import (
	"fmt"
	"sort"

	"github.com/aalvaropc/vkconfig/internal/domain"
)

type fakeRegistry struct {
	*domain.Catalog
}

func (r fakeRegistry) AvailableLayers() []domain.Layer { return r.Layers() }

func newRegistry(layers ...domain.Layer) fakeRegistry {
	return fakeRegistry{domain.NewCatalog(layers)}
}

func validationLayer() domain.Layer {
	return domain.Layer{
		Name:      domain.ValidationLayerName,
		LayerPath: "/usr/share/vulkan/explicit_layer.d",
		Settings: domain.Settings{
			{Key: "enables", Type: domain.SettingFlags},
			{Key: "disables", Type: domain.SettingFlags},
			{Key: "duplicate_message_limit", Type: domain.SettingInt, Default: "10", Value: "10"},
		},
	}
}

func apiDumpLayer() domain.Layer {
	return domain.Layer{Name: "VK_LAYER_LUNARG_api_dump", LayerPath: "/usr/share/vulkan/explicit_layer.d"}
}

// memStore keeps copies so tests observe only what was saved.
type memStore struct {
	saved   map[string]*domain.Configuration
	saveErr error
	saves   int
}

func newMemStore(cfgs ...*domain.Configuration) *memStore {
	s := &memStore{saved: map[string]*domain.Configuration{}}
	for _, c := range cfgs {
		s.saved[c.Name] = c.Duplicate()
	}
	return s
}

func (s *memStore) SaveConfiguration(cfg *domain.Configuration) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	for _, l := range cfg.OverriddenLayers {
		if l.State != domain.LayerStateOverridden {
			return "", fmt.Errorf("uncollapsed %s: %w", l.Name, domain.ErrInvalidConfig)
		}
	}
	s.saves++
	cfg.File = cfg.Name + ".json"
	s.saved[cfg.Name] = cfg.Duplicate()
	return "/mem/" + cfg.File, nil
}

func (s *memStore) LoadConfiguration(name string, _ domain.LayerLookup) (*domain.Configuration, error) {
	c, ok := s.saved[name]
	if !ok {
		return nil, &domain.OpError{Op: "mem.load", Kind: domain.KindNotFound, Err: domain.ErrNotFound}
	}
	return c.Duplicate(), nil
}

func (s *memStore) ListConfigurations() ([]domain.ConfigurationRef, error) {
	var out []domain.ConfigurationRef
	for name := range s.saved {
		out = append(out, domain.ConfigurationRef{Name: name, Path: "/mem/" + name + ".json"})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) DeleteConfiguration(name string) error {
	delete(s.saved, name)
	return nil
}

func (s *memStore) ConfigurationExists(name string) bool {
	_, ok := s.saved[name]
	return ok
}

func collapsed(name string, overridden []domain.Layer, excluded ...string) *domain.Configuration {
	c := domain.NewConfiguration(name)
	for _, l := range overridden {
		c.CreateOverriddenLayer(l).State = domain.LayerStateOverridden
	}
	c.Collapse()
	c.ExcludedLayers = append(c.ExcludedLayers, excluded...)
	return c
}
