package layerjson

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/aalvaropc/vkconfig/internal/domain"
	"github.com/aalvaropc/vkconfig/internal/ports"
)

// Loader reads Vulkan layer manifests (the JSON files found in
// explicit_layer.d / implicit_layer.d directories).
//
// Settings are read in document order. They may be declared as an array under
// layer.features.settings or layer.settings, or as an object keyed by setting
// key under layer.settings. Nested "settings" arrays (setting groups) are
// flattened after their parent.
type Loader struct {
	layerType domain.LayerType
}

type Option func(*Loader)

// WithLayerType tags every loaded layer with t.
func WithLayerType(t domain.LayerType) Option {
	return func(l *Loader) { l.layerType = t }
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{layerType: domain.LayerTypeExplicit}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.LayerLoader = (*Loader)(nil)

func (l *Loader) LoadLayers(path string) ([]domain.Layer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "layerjson.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}
	return Parse(path, b, l.layerType)
}

// Parse decodes manifest bytes as if read from path. The manifest directory
// becomes each layer's LayerPath.
func Parse(path string, b []byte, layerType domain.LayerType) ([]domain.Layer, error) {
	if !gjson.ValidBytes(b) {
		return nil, &domain.OpError{
			Op:   "layerjson.parse",
			Kind: domain.KindParse,
			Path: path,
			Err:  domain.ErrParse,
		}
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, &domain.OpError{
			Op:   "layerjson.parse",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	doc := gjson.ParseBytes(b)
	formatVersion := doc.Get("file_format_version").String()

	var nodes []gjson.Result
	var prefixes []string
	if single := doc.Get("layer"); single.IsObject() {
		nodes = append(nodes, single)
		prefixes = append(prefixes, "layer")
	}
	doc.Get("layers").ForEach(func(k, v gjson.Result) bool {
		nodes = append(nodes, v)
		prefixes = append(prefixes, fmt.Sprintf("layers[%d]", k.Int()))
		return true
	})

	if len(nodes) == 0 {
		return nil, missingField(path, "layer")
	}

	layers := make([]domain.Layer, 0, len(nodes))
	for i, node := range nodes {
		layer, err := mapLayer(path, prefixes[i], node)
		if err != nil {
			return nil, err
		}
		layer.FileFormatVersion = formatVersion
		layer.LayerPath = dir
		layer.LayerType = layerType
		layers = append(layers, layer)
	}
	return layers, nil
}

func mapLayer(path, prefix string, node gjson.Result) (domain.Layer, error) {
	name := strings.TrimSpace(node.Get("name").String())
	if name == "" {
		return domain.Layer{}, missingField(path, prefix+".name")
	}
	libraryPath := strings.TrimSpace(node.Get("library_path").String())
	if libraryPath == "" {
		return domain.Layer{}, missingField(path, prefix+".library_path")
	}
	rawAPI := node.Get("api_version").String()
	if strings.TrimSpace(rawAPI) == "" {
		return domain.Layer{}, missingField(path, prefix+".api_version")
	}
	apiVersion, err := domain.ParseVersion(rawAPI)
	if err != nil {
		return domain.Layer{}, invalidField(path, prefix+".api_version", err.Error())
	}

	layer := domain.Layer{
		Name:                  name,
		Type:                  node.Get("type").String(),
		LibraryPath:           libraryPath,
		APIVersion:            apiVersion,
		ImplementationVersion: node.Get("implementation_version").String(),
		Description:           node.Get("description").String(),
		State:                 domain.LayerStateApplicationControlled,
	}

	settingsNode := node.Get("features.settings")
	if !settingsNode.Exists() {
		settingsNode = node.Get("settings")
	}

	settings, err := mapSettings(path, prefix+".settings", settingsNode)
	if err != nil {
		return domain.Layer{}, err
	}
	layer.Settings = settings
	return layer, nil
}

func mapSettings(path, field string, node gjson.Result) (domain.Settings, error) {
	var out domain.Settings
	seen := map[string]bool{}

	var walk func(field string, node gjson.Result) error
	walk = func(field string, node gjson.Result) error {
		var werr error
		node.ForEach(func(k, v gjson.Result) bool {
			entryField := fmt.Sprintf("%s[%s]", field, k.String())

			key := v.Get("key").String()
			if node.IsObject() && key == "" {
				key = k.String()
			}

			if t, err := domain.ParseSettingType(v.Get("type").String()); err == nil {
				if strings.TrimSpace(key) == "" {
					werr = missingField(path, entryField+".key")
					return false
				}
				if seen[key] {
					werr = invalidField(path, entryField+".key", fmt.Sprintf("duplicate setting key %q", key))
					return false
				}
				seen[key] = true
				out = append(out, mapSetting(key, t, v))
			}

			if children := v.Get("settings"); children.IsArray() || children.IsObject() {
				if err := walk(entryField+".settings", children); err != nil {
					werr = err
					return false
				}
			}
			return true
		})
		return werr
	}

	if err := walk(field, node); err != nil {
		return nil, err
	}
	return out, nil
}

func mapSetting(key string, t domain.SettingType, v gjson.Result) domain.Setting {
	label := v.Get("label").String()
	if label == "" {
		label = v.Get("name").String()
	}

	s := domain.Setting{
		Key:         key,
		Label:       label,
		Description: v.Get("description").String(),
		Type:        t,
		Options:     mapOptions(v),
		Default:     defaultValue(t, v.Get("default")),
	}
	s.Value = s.Default
	return s
}

// mapOptions reads enum/flags choices from "flags" or "options", either as an
// array of {key,label,description} objects or as a key -> label object.
func mapOptions(v gjson.Result) []domain.SettingOption {
	node := v.Get("flags")
	if !node.Exists() {
		node = v.Get("options")
	}
	if !node.Exists() {
		return nil
	}

	var out []domain.SettingOption
	node.ForEach(func(k, o gjson.Result) bool {
		if node.IsObject() {
			out = append(out, domain.SettingOption{Key: k.String(), Label: o.String()})
			return true
		}
		out = append(out, domain.SettingOption{
			Key:         o.Get("key").String(),
			Label:       o.Get("label").String(),
			Description: o.Get("description").String(),
		})
		return true
	})
	return out
}

func defaultValue(t domain.SettingType, d gjson.Result) string {
	switch {
	case !d.Exists():
		return ""
	case d.IsArray():
		var parts []string
		d.ForEach(func(_, item gjson.Result) bool {
			if k := item.Get("key"); k.Exists() {
				parts = append(parts, k.String())
			} else {
				parts = append(parts, item.String())
			}
			return true
		})
		return strings.Join(parts, ",")
	case d.Type == gjson.True || d.Type == gjson.False:
		if t == domain.SettingBoolNumeric {
			if d.Bool() {
				return "1"
			}
			return "0"
		}
		if d.Bool() {
			return "TRUE"
		}
		return "FALSE"
	case d.Type == gjson.Number:
		return d.Raw
	default:
		return d.String()
	}
}

func missingField(path, field string) error {
	return &domain.OpError{
		Op:   "layerjson.map",
		Kind: domain.KindMissingField,
		Path: path,
		Err:  fmt.Errorf("field %s: %w", field, domain.ErrMissingField),
	}
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "layerjson.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
