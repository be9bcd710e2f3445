package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/aalvaropc/vkconfig/internal/domain"
	"github.com/aalvaropc/vkconfig/internal/ports"
)

type CreateRequest struct {
	Name        string
	Description string
	Preset      domain.Preset
	Overridden  []string // in rank order
	Excluded    []string
}

type CreateConfiguration struct {
	common
	store    ports.ConfigurationStore
	registry ports.LayerRegistry
}

func NewCreateConfiguration(store ports.ConfigurationStore, registry ports.LayerRegistry, opts ...Option) *CreateConfiguration {
	return &CreateConfiguration{
		common:   newCommon(opts),
		store:    store,
		registry: registry,
	}
}

// Execute builds a configuration from installed layers and saves it.
// Every named layer must be installed; an existing configuration is never
// overwritten.
func (uc *CreateConfiguration) Execute(ctx context.Context, req CreateRequest) (*domain.Configuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := domain.ValidateName(req.Name); err != nil {
		return nil, invalid("create.validate", err)
	}
	if uc.store.ConfigurationExists(req.Name) {
		return nil, invalid("create.validate", fmt.Errorf("configuration %q already exists", req.Name))
	}
	if !req.Preset.Valid() {
		return nil, invalid("create.validate", fmt.Errorf("unknown preset %d", req.Preset))
	}

	overridden := map[string]bool{}
	for _, n := range req.Overridden {
		overridden[n] = true
	}
	for _, n := range req.Excluded {
		if overridden[n] {
			return nil, invalid("create.validate", fmt.Errorf("layer %s cannot be both overridden and excluded", n))
		}
	}

	cfg := domain.NewConfiguration(req.Name)
	cfg.Description = req.Description
	cfg.Preset = req.Preset

	var missing []string
	add := func(name string, state domain.LayerState) {
		src := uc.registry.FindLayer(name)
		if src == nil {
			missing = append(missing, name)
			return
		}
		cfg.CreateOverriddenLayer(*src).State = state
	}
	for _, n := range req.Overridden {
		add(n, domain.LayerStateOverridden)
	}
	for _, n := range req.Excluded {
		add(n, domain.LayerStateExcluded)
	}
	if len(missing) > 0 {
		return nil, lookupMiss("create.resolve", missing)
	}

	if cfg.Preset != domain.PresetUserDefined && !cfg.ApplyPreset() {
		uc.log.Warn("create.preset_skipped", "name", req.Name, "preset", cfg.Preset.String(), "reason", "validation layer not overridden")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg.Collapse()
	path, err := uc.store.SaveConfiguration(cfg)
	if err != nil {
		return nil, err
	}

	uc.log.Info("configuration.created", "name", cfg.Name, "path", path,
		"overridden", len(cfg.OverriddenLayers), "excluded", len(cfg.ExcludedLayers))
	return cfg, nil
}

func invalid(op string, err error) error {
	return &domain.OpError{
		Op:   op,
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%v: %w", err, domain.ErrInvalidConfig),
	}
}

func lookupMiss(op string, names []string) error {
	return &domain.OpError{
		Op:   op,
		Kind: domain.KindLookupMiss,
		Err:  fmt.Errorf("%s: %w", strings.Join(names, ", "), domain.ErrLayerMissing),
	}
}
