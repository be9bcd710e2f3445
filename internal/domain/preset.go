package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationLayerName is the Khronos validation layer the presets configure.
const ValidationLayerName = "VK_LAYER_KHRONOS_validation"

// Preset selects a canned bundle of validation layer settings.
// The numeric values are persisted and must not change.
type Preset int

const (
	PresetUserDefined     Preset = 0
	PresetNone                   = PresetUserDefined
	PresetStandard        Preset = 1
	PresetGPUAssisted     Preset = 2
	PresetShaderPrintf    Preset = 3
	PresetReducedOverhead Preset = 4
	PresetBestPractices   Preset = 5
	PresetSynchronization Preset = 6
)

var presetTokens = [...]string{
	PresetUserDefined:     "user_defined",
	PresetStandard:        "standard",
	PresetGPUAssisted:     "gpu_assisted",
	PresetShaderPrintf:    "shader_printf",
	PresetReducedOverhead: "reduced_overhead",
	PresetBestPractices:   "best_practices",
	PresetSynchronization: "synchronization",
}

var presetLabels = [...]string{
	PresetUserDefined:     "User Defined",
	PresetStandard:        "Standard",
	PresetGPUAssisted:     "GPU-Assisted",
	PresetShaderPrintf:    "Shader Printf",
	PresetReducedOverhead: "Reduced-Overhead",
	PresetBestPractices:   "Best Practices",
	PresetSynchronization: "Synchronization",
}

// Presets lists every preset in index order.
func Presets() []Preset {
	out := make([]Preset, 0, len(presetTokens))
	for i := range presetTokens {
		out = append(out, Preset(i))
	}
	return out
}

func (p Preset) Valid() bool {
	return p >= PresetUserDefined && p <= PresetSynchronization
}

func (p Preset) String() string {
	if !p.Valid() {
		return fmt.Sprintf("preset(%d)", int(p))
	}
	return presetTokens[p]
}

// Label is the human readable preset name.
func (p Preset) Label() string {
	if !p.Valid() {
		return p.String()
	}
	return presetLabels[p]
}

// ParsePreset accepts a token ("best_practices"), a label ("Best Practices")
// or the persisted index ("5"). "none" maps to the user defined preset.
func ParsePreset(s string) (Preset, error) {
	in := strings.TrimSpace(s)
	if in == "" || strings.EqualFold(in, "none") {
		return PresetUserDefined, nil
	}
	if n, err := strconv.Atoi(in); err == nil {
		if p := Preset(n); p.Valid() {
			return p, nil
		}
		return PresetUserDefined, fmt.Errorf("preset index %d out of range: %w", n, ErrInvalidConfig)
	}

	norm := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(in))
	for i, tok := range presetTokens {
		if tok == norm {
			return Preset(i), nil
		}
	}
	return PresetUserDefined, fmt.Errorf("unknown preset %q: %w", s, ErrInvalidConfig)
}

type presetValue struct {
	key   string
	value string
}

const (
	disableThreadSafety   = "VK_VALIDATION_FEATURE_DISABLE_THREAD_SAFETY_EXT"
	disableAPIParameters  = "VK_VALIDATION_FEATURE_DISABLE_API_PARAMETERS_EXT"
	disableObjectLifetime = "VK_VALIDATION_FEATURE_DISABLE_OBJECT_LIFETIMES_EXT"
	disableCoreChecks     = "VK_VALIDATION_FEATURE_DISABLE_CORE_CHECKS_EXT"
	disableUniqueHandles  = "VK_VALIDATION_FEATURE_DISABLE_UNIQUE_HANDLES_EXT"
)

var disableAllButUniqueHandles = strings.Join([]string{
	disableThreadSafety, disableAPIParameters, disableObjectLifetime, disableCoreChecks,
}, ",")

var presetBundles = map[Preset][]presetValue{
	PresetStandard: {
		{"enables", ""},
		{"disables", disableUniqueHandles},
	},
	PresetGPUAssisted: {
		{"enables", "VK_VALIDATION_FEATURE_ENABLE_GPU_ASSISTED_EXT,VK_VALIDATION_FEATURE_ENABLE_GPU_ASSISTED_RESERVE_BINDING_SLOT_EXT"},
		{"disables", disableUniqueHandles},
	},
	PresetShaderPrintf: {
		{"enables", "VK_VALIDATION_FEATURE_ENABLE_DEBUG_PRINTF_EXT"},
		{"disables", disableAllButUniqueHandles + "," + disableUniqueHandles},
	},
	PresetReducedOverhead: {
		{"enables", ""},
		{"disables", strings.Join([]string{disableThreadSafety, disableObjectLifetime, disableUniqueHandles}, ",")},
	},
	PresetBestPractices: {
		{"enables", "VK_VALIDATION_FEATURE_ENABLE_BEST_PRACTICES_EXT"},
		{"disables", disableAllButUniqueHandles + "," + disableUniqueHandles},
	},
	PresetSynchronization: {
		{"enables", "VK_VALIDATION_FEATURE_ENABLE_SYNCHRONIZATION_VALIDATION_EXT"},
		{"disables", disableAllButUniqueHandles + "," + disableUniqueHandles},
	},
}

// PresetValues returns the setting values a preset writes onto the
// validation layer. The user defined preset has none.
func PresetValues(p Preset) map[string]string {
	out := map[string]string{}
	for _, pv := range presetBundles[p] {
		out[pv.key] = pv.value
	}
	return out
}
