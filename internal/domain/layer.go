package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// LayerState is the per-configuration state of a layer.
// The numeric values are persisted and must not change.
type LayerState int

const (
	// LayerStateApplicationControlled lets the Vulkan application decide.
	LayerStateApplicationControlled LayerState = 0
	// LayerStateOverridden forces the layer on regardless of the application.
	LayerStateOverridden LayerState = 1
	// LayerStateExcluded forces the layer off regardless of the application.
	LayerStateExcluded LayerState = 2
)

func (s LayerState) String() string {
	switch s {
	case LayerStateApplicationControlled:
		return "application_controlled"
	case LayerStateOverridden:
		return "overridden"
	case LayerStateExcluded:
		return "excluded"
	default:
		return fmt.Sprintf("layer_state(%d)", int(s))
	}
}

// Valid reports whether s is one of the three defined states.
func (s LayerState) Valid() bool {
	return s >= LayerStateApplicationControlled && s <= LayerStateExcluded
}

// ParseLayerState accepts the String() tokens plus short aliases
// ("app", "default", "on", "off").
func ParseLayerState(s string) (LayerState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "application_controlled", "application-controlled", "app", "default":
		return LayerStateApplicationControlled, nil
	case "overridden", "override", "on":
		return LayerStateOverridden, nil
	case "excluded", "exclude", "off":
		return LayerStateExcluded, nil
	}
	return LayerStateApplicationControlled, fmt.Errorf("unknown layer state %q: %w", s, ErrInvalidConfig)
}

// LayerType tells where a layer was found.
type LayerType int

const (
	LayerTypeExplicit LayerType = iota
	LayerTypeImplicit
	LayerTypeCustom
)

func (t LayerType) String() string {
	switch t {
	case LayerTypeExplicit:
		return "explicit"
	case LayerTypeImplicit:
		return "implicit"
	case LayerTypeCustom:
		return "custom"
	default:
		return fmt.Sprintf("layer_type(%d)", int(t))
	}
}

// Layer describes one discoverable Vulkan layer.
//
// Identity fields come from the manifest and do not change after loading.
// State and Rank are edited by Configuration logic; Rank is meaningful only
// when State is LayerStateOverridden (0 loads first).
type Layer struct {
	FileFormatVersion     string
	Name                  string
	Type                  string // manifest "type", e.g. GLOBAL or INSTANCE
	LibraryPath           string // relative, straight out of the manifest
	APIVersion            Version
	ImplementationVersion string
	Description           string

	// LayerPath is the absolute directory containing the manifest. Two layers
	// with the same name from different paths are distinct installations.
	LayerPath string
	LayerType LayerType

	Settings Settings

	State LayerState
	Rank  int
}

// Clone returns a copy whose settings are independently owned.
func (l Layer) Clone() Layer {
	out := l
	out.Settings = l.Settings.Clone()
	return out
}

// IsValid reports whether l satisfies what a successfully loaded layer must:
// a name and an absolute manifest directory.
func (l Layer) IsValid() bool {
	return strings.TrimSpace(l.Name) != "" && l.LayerPath != "" && filepath.IsAbs(l.LayerPath)
}

// SameInstallation compares the (name, layer path) identity.
func (l Layer) SameInstallation(o Layer) bool {
	return l.Name == o.Name && l.LayerPath == o.LayerPath
}

// FindLayer returns the first layer named name, ignoring its path.
func FindLayer(layers []Layer, name string) *Layer {
	for i := range layers {
		if layers[i].Name == name {
			return &layers[i]
		}
	}
	return nil
}

// FindLayerAt returns the layer matching both name and path.
func FindLayerAt(layers []Layer, name, path string) *Layer {
	for i := range layers {
		if layers[i].Name == name && layers[i].LayerPath == path {
			return &layers[i]
		}
	}
	return nil
}
