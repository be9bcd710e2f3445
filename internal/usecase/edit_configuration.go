package usecase

import (
	"context"
	"fmt"

	"github.com/aalvaropc/vkconfig/internal/domain"
	"github.com/aalvaropc/vkconfig/internal/ports"
)

// LayerChange moves a layer to State. Layers not yet in the configuration are
// taken from the registry.
type LayerChange struct {
	Layer string
	State domain.LayerState
}

// SettingChange sets one setting of an overridden layer.
type SettingChange struct {
	Layer string
	Key   string
	Value string
}

// Edit is applied in field order: layer states, then the preset, then the
// individual settings, so explicit settings win over the preset bundle.
type Edit struct {
	Description *string
	Layers      []LayerChange
	Preset      *domain.Preset
	Settings    []SettingChange
}

type EditConfiguration struct {
	common
	store    ports.ConfigurationStore
	registry ports.LayerRegistry
}

func NewEditConfiguration(store ports.ConfigurationStore, registry ports.LayerRegistry, opts ...Option) *EditConfiguration {
	return &EditConfiguration{
		common:   newCommon(opts),
		store:    store,
		registry: registry,
	}
}

func (uc *EditConfiguration) Execute(ctx context.Context, name string, edit Edit) (*domain.Configuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, err := uc.store.LoadConfiguration(name, uc.registry)
	if err != nil {
		return nil, err
	}
	cfg.Expand(uc.registry)

	if edit.Description != nil {
		cfg.Description = *edit.Description
	}

	var missing []string
	for _, ch := range edit.Layers {
		if !ch.State.Valid() {
			return nil, invalid("edit.layers", fmt.Errorf("layer %s: unknown state %d", ch.Layer, ch.State))
		}
		if cfg.SetLayerState(ch.Layer, ch.State) {
			continue
		}
		if ch.State == domain.LayerStateApplicationControlled {
			continue
		}
		src := uc.registry.FindLayer(ch.Layer)
		if src == nil {
			missing = append(missing, ch.Layer)
			continue
		}
		cfg.CreateOverriddenLayer(*src).State = ch.State
	}
	if len(missing) > 0 {
		return nil, lookupMiss("edit.layers", missing)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if edit.Preset != nil {
		if !edit.Preset.Valid() {
			return nil, invalid("edit.preset", fmt.Errorf("unknown preset %d", *edit.Preset))
		}
		cfg.Preset = *edit.Preset
		if cfg.Preset != domain.PresetUserDefined && !cfg.ApplyPreset() {
			uc.log.Warn("edit.preset_skipped", "name", name, "preset", cfg.Preset.String(), "reason", "validation layer not overridden")
		}
	}

	for _, ch := range edit.Settings {
		l := cfg.FindOverriddenLayer(ch.Layer)
		if l == nil || l.State != domain.LayerStateOverridden {
			return nil, invalid("edit.settings", fmt.Errorf("layer %s is not overridden", ch.Layer))
		}
		s := l.Settings.Find(ch.Key)
		if s == nil {
			return nil, invalid("edit.settings", fmt.Errorf("layer %s has no setting %q", ch.Layer, ch.Key))
		}
		if err := s.SetValue(ch.Value); err != nil {
			return nil, invalid("edit.settings", fmt.Errorf("layer %s: %w", ch.Layer, err))
		}
	}
	if len(edit.Settings) > 0 && edit.Preset == nil {
		// Hand-edited settings no longer match a bundle.
		cfg.Preset = domain.PresetUserDefined
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg.Collapse()
	path, err := uc.store.SaveConfiguration(cfg)
	if err != nil {
		return nil, err
	}

	uc.log.Info("configuration.edited", "name", cfg.Name, "path", path,
		"layer_changes", len(edit.Layers), "setting_changes", len(edit.Settings))
	return cfg, nil
}
