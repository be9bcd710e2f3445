package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Configuration is a named set of layer overrides and exclusions.
//
// While editing, OverriddenLayers may hold entries in any LayerState and
// ranks may be stale. Collapse is the explicit normalization boundary: after
// it runs, every entry is overridden, ranks are 0..k-1 in sequence order and
// no name is both overridden and excluded. Callers must collapse before
// persisting or activating a configuration.
type Configuration struct {
	Name        string // display name, also the default file stem
	File        string // file name without directory, e.g. "Validation.json"
	Description string

	// SettingTreeState is opaque editor state; it round-trips byte for byte.
	SettingTreeState []byte

	Preset Preset

	OverriddenLayers []Layer
	ExcludedLayers   []string
}

// ConfigurationRef is a lightweight reference to a persisted configuration.
type ConfigurationRef struct {
	Name string
	Path string
}

// NewConfiguration returns an empty, user defined configuration.
func NewConfiguration(name string) *Configuration {
	return &Configuration{Name: name, Preset: PresetUserDefined}
}

// CreateOverriddenLayer appends a deep copy of src and returns a pointer to it.
// The pointer is valid until the next append or removal on OverriddenLayers.
// Duplicates are not rejected; use IsOverriddenLayerAvailable first.
func (c *Configuration) CreateOverriddenLayer(src Layer) *Layer {
	c.OverriddenLayers = append(c.OverriddenLayers, src.Clone())
	return &c.OverriddenLayers[len(c.OverriddenLayers)-1]
}

// IsOverriddenLayerAvailable reports whether the installation (name, fullPath)
// is already in the override list.
func (c *Configuration) IsOverriddenLayerAvailable(name, fullPath string) bool {
	return FindLayerAt(c.OverriddenLayers, name, fullPath) != nil
}

// FindOverriddenLayer returns the first entry named name regardless of its
// path, or nil.
func (c *Configuration) FindOverriddenLayer(name string) *Layer {
	return FindLayer(c.OverriddenLayers, name)
}

// SetLayerState sets the state of the first entry named name.
// It returns false when no entry has that name.
func (c *Configuration) SetLayerState(name string, state LayerState) bool {
	l := c.FindOverriddenLayer(name)
	if l == nil {
		return false
	}
	l.State = state
	return true
}

// Duplicate returns a deep copy sharing no mutable state with c.
func (c *Configuration) Duplicate() *Configuration {
	out := &Configuration{
		Name:        c.Name,
		File:        c.File,
		Description: c.Description,
		Preset:      c.Preset,
	}
	if c.SettingTreeState != nil {
		out.SettingTreeState = make([]byte, len(c.SettingTreeState))
		copy(out.SettingTreeState, c.SettingTreeState)
	}
	if c.ExcludedLayers != nil {
		out.ExcludedLayers = make([]string, len(c.ExcludedLayers))
		copy(out.ExcludedLayers, c.ExcludedLayers)
	}
	if c.OverriddenLayers != nil {
		out.OverriddenLayers = make([]Layer, len(c.OverriddenLayers))
		for i, l := range c.OverriddenLayers {
			out.OverriddenLayers[i] = l.Clone()
		}
	}
	return out
}

// Collapse rebuilds the override and exclusion lists from the layer states.
//
// Excluded entries move to ExcludedLayers, overridden entries are kept and
// re-ranked in sequence order, application controlled entries are dropped.
// A name that has an entry is decided by its entries alone: a previous
// exclusion of that name is discarded unless an entry is still excluded.
// Names without an entry keep standing, so Collapse is idempotent.
//
// Exclusion wins when one name has both an overridden and an excluded
// entry (two installations of the same layer), so no name ends up in both
// lists.
func (c *Configuration) Collapse() {
	hasEntry := make(map[string]bool, len(c.OverriddenLayers))
	excludedSet := map[string]bool{}
	for _, l := range c.OverriddenLayers {
		hasEntry[l.Name] = true
		if l.State == LayerStateExcluded {
			excludedSet[l.Name] = true
		}
	}

	excluded := make([]string, 0, len(c.ExcludedLayers)+len(excludedSet))
	listed := map[string]bool{}
	add := func(name string) {
		if !listed[name] {
			listed[name] = true
			excluded = append(excluded, name)
		}
	}
	for _, name := range c.ExcludedLayers {
		if !hasEntry[name] {
			add(name)
		}
	}

	collapsed := make([]Layer, 0, len(c.OverriddenLayers))
	rank := 0
	for _, l := range c.OverriddenLayers {
		switch l.State {
		case LayerStateExcluded:
			add(l.Name)
		case LayerStateOverridden:
			if excludedSet[l.Name] {
				continue
			}
			l.Rank = rank
			rank++
			collapsed = append(collapsed, l)
		case LayerStateApplicationControlled:
		default:
			// Out-of-range states never load; treat them like application controlled.
		}
	}

	c.OverriddenLayers = collapsed
	c.ExcludedLayers = excluded
}

// Expand reopens a collapsed configuration for editing: every excluded name
// becomes an excluded entry of OverriddenLayers, copied from lookup when the
// layer is installed, and ExcludedLayers is cleared. Collapse undoes it.
func (c *Configuration) Expand(lookup LayerLookup) {
	for _, name := range c.ExcludedLayers {
		if existing := c.FindOverriddenLayer(name); existing != nil {
			existing.State = LayerStateExcluded
			continue
		}

		var l *Layer
		if lookup != nil {
			l = lookup.FindLayer(name)
		}
		if l == nil {
			l = &Layer{Name: name}
		}
		added := c.CreateOverriddenLayer(*l)
		added.State = LayerStateExcluded
		added.Rank = 0
	}
	c.ExcludedLayers = nil
}

// SortByRank orders OverriddenLayers by rank, keeping sequence order for ties.
func (c *Configuration) SortByRank() {
	sort.SliceStable(c.OverriddenLayers, func(i, j int) bool {
		return c.OverriddenLayers[i].Rank < c.OverriddenLayers[j].Rank
	})
}

// HasOverride reports whether the configuration touches any layer.
func (c *Configuration) HasOverride() bool {
	return len(c.OverriddenLayers) > 0 || len(c.ExcludedLayers) > 0
}

// MissingLayers returns the names lookup cannot resolve, overridden first,
// each in list order.
func (c *Configuration) MissingLayers(lookup LayerLookup) []string {
	var missing []string
	for _, l := range c.OverriddenLayers {
		if lookup == nil || lookup.FindLayer(l.Name) == nil {
			missing = append(missing, l.Name)
		}
	}
	for _, name := range c.ExcludedLayers {
		if lookup == nil || lookup.FindLayer(name) == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// IsValid reports whether the configuration touches at least one layer and
// every layer it names is installed. Invalid configurations remain editable;
// only activation should be refused.
func (c *Configuration) IsValid(lookup LayerLookup) bool {
	return c.Check(lookup) == nil
}

// Check is IsValid with a reason: a KindDegenerate or KindLookupMiss error.
func (c *Configuration) Check(lookup LayerLookup) error {
	if !c.HasOverride() {
		return &OpError{
			Op:   "configuration.check",
			Kind: KindDegenerate,
			Err:  fmt.Errorf("%q: %w", c.Name, ErrDegenerateConfiguration),
		}
	}

	if missing := c.MissingLayers(lookup); len(missing) > 0 {
		return &OpError{
			Op:   "configuration.check",
			Kind: KindLookupMiss,
			Err:  fmt.Errorf("%q: %s: %w", c.Name, strings.Join(missing, ", "), ErrLayerMissing),
		}
	}
	return nil
}

// ApplyPreset writes the preset bundle onto the overridden validation layer.
// Settings missing from the layer are added as flags settings. It returns
// false for the user defined preset or when the validation layer is not
// overridden.
func (c *Configuration) ApplyPreset() bool {
	bundle, ok := presetBundles[c.Preset]
	if !ok {
		return false
	}

	l := c.FindOverriddenLayer(ValidationLayerName)
	if l == nil {
		return false
	}

	for _, pv := range bundle {
		if s := l.Settings.Find(pv.key); s != nil {
			s.Value = pv.value
			continue
		}
		l.Settings = append(l.Settings, Setting{Key: pv.key, Type: SettingFlags, Value: pv.value})
	}
	return true
}

// ValidateName rejects names that cannot double as a file stem.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("configuration name is required")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("configuration name %q cannot be used as a file name", name)
	}
	return nil
}
