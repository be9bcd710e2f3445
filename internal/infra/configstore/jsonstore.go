package configstore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/aalvaropc/vkconfig/internal/domain"
	"github.com/aalvaropc/vkconfig/internal/ports"
)

const (
	defaultConfigurationsDir = "configurations"

	// FormatVersion is written to every saved configuration. Files with a
	// different major version are rejected on load.
	FormatVersion = "2.0.0"
)

// JSONStore keeps one JSON document per configuration in a directory.
type JSONStore struct {
	dir    string
	indent bool
}

type Option func(*JSONStore)

// WithIndent controls whether saved documents are pretty printed (default true).
func WithIndent(enabled bool) Option {
	return func(s *JSONStore) { s.indent = enabled }
}

// NewJSONStore stores configurations under cfg.Paths.ConfigurationsDir,
// resolved against root unless absolute.
func NewJSONStore(root string, cfg domain.Config, opts ...Option) *JSONStore {
	dir := cfg.Paths.ConfigurationsDir
	if strings.TrimSpace(dir) == "" {
		dir = defaultConfigurationsDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}

	s := &JSONStore{dir: dir, indent: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ConfigurationStore = (*JSONStore)(nil)

// Dir returns the directory holding the configuration files.
func (s *JSONStore) Dir() string { return s.dir }

func (s *JSONStore) pathFor(stem string) string {
	return filepath.Join(s.dir, stem+".json")
}

func fileStem(cfg *domain.Configuration) string {
	if f := strings.TrimSpace(cfg.File); f != "" {
		return strings.TrimSuffix(f, filepath.Ext(f))
	}
	return cfg.Name
}

// SaveConfiguration writes cfg and sets cfg.File. Only collapsed
// configurations are accepted: every entry must be overridden.
func (s *JSONStore) SaveConfiguration(cfg *domain.Configuration) (string, error) {
	if cfg == nil {
		return "", &domain.OpError{Op: "configstore.save", Kind: domain.KindInvalidConfig, Err: domain.ErrInvalidConfig}
	}

	stem := fileStem(cfg)
	if err := domain.ValidateName(stem); err != nil {
		return "", &domain.OpError{
			Op:   "configstore.save",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%v: %w", err, domain.ErrInvalidConfig),
		}
	}
	path := s.pathFor(stem)

	for _, l := range cfg.OverriddenLayers {
		if l.State != domain.LayerStateOverridden {
			return "", &domain.OpError{
				Op:   "configstore.save",
				Kind: domain.KindInvalidConfig,
				Path: path,
				Err:  fmt.Errorf("layer %s is %s; collapse before saving: %w", l.Name, l.State, domain.ErrInvalidConfig),
			}
		}
	}
	for _, name := range cfg.ExcludedLayers {
		if cfg.FindOverriddenLayer(name) != nil {
			return "", &domain.OpError{
				Op:   "configstore.save",
				Kind: domain.KindInvalidConfig,
				Path: path,
				Err:  fmt.Errorf("layer %s is both overridden and excluded: %w", name, domain.ErrInvalidConfig),
			}
		}
	}

	b, err := encode(cfg)
	if err != nil {
		return "", &domain.OpError{
			Op:   "configstore.encode",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}
	if s.indent {
		b = pretty.Pretty(b)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "configstore.mkdir",
			Kind: domain.KindExecution,
			Path: s.dir,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return "", &domain.OpError{
			Op:   "configstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "configstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	cfg.File = stem + ".json"
	return path, nil
}

// encode builds the document key by key so that layer and setting order is
// preserved exactly as in cfg.
func encode(cfg *domain.Configuration) ([]byte, error) {
	doc := []byte(`{}`)
	var err error

	set := func(path string, v any) {
		if err == nil {
			doc, err = sjson.SetBytes(doc, path, v)
		}
	}
	setRaw := func(path, raw string) {
		if err == nil {
			doc, err = sjson.SetRawBytes(doc, path, []byte(raw))
		}
	}

	set("file_format_version", FormatVersion)
	set("configuration.name", cfg.Name)
	set("configuration.description", cfg.Description)
	set("configuration.preset", int(cfg.Preset))
	set("configuration.editor_state", base64.StdEncoding.EncodeToString(cfg.SettingTreeState))

	setRaw("configuration.layers", `[]`)
	for i, l := range cfg.OverriddenLayers {
		base := "configuration.layers." + strconv.Itoa(i)
		setRaw("configuration.layers.-1", `{}`)
		set(base+".name", l.Name)
		set(base+".rank", l.Rank)
		set(base+".layer_path", l.LayerPath)
		setRaw(base+".settings", `{}`)
		for _, st := range l.Settings {
			set(base+".settings."+escapeKey(st.Key), st.Value)
		}
	}

	setRaw("configuration.excluded_layers", `[]`)
	for _, name := range cfg.ExcludedLayers {
		set("configuration.excluded_layers.-1", name)
	}

	return doc, err
}

// escapeKey escapes the characters sjson treats as path syntax.
func escapeKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LoadConfiguration reads the configuration stored under name and hydrates
// each layer entry through lookup: the installation at the persisted path
// when lookup can resolve paths, otherwise the first layer with that name.
// Unresolved layers are kept as bare entries carrying the persisted values.
func (s *JSONStore) LoadConfiguration(name string, lookup domain.LayerLookup) (*domain.Configuration, error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, &domain.OpError{
			Op:   "configstore.load",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%v: %w", err, domain.ErrInvalidConfig),
		}
	}

	path := s.pathFor(name)
	b, err := os.ReadFile(path)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, fs.ErrNotExist) {
			kind = domain.KindNotFound
			err = fmt.Errorf("configuration %q: %w", name, domain.ErrNotFound)
		}
		return nil, &domain.OpError{Op: "configstore.load", Kind: kind, Path: path, Err: err}
	}

	cfg, err := decode(path, b, lookup)
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	cfg.File = name + ".json"
	return cfg, nil
}

func decode(path string, b []byte, lookup domain.LayerLookup) (*domain.Configuration, error) {
	if !gjson.ValidBytes(b) {
		return nil, &domain.OpError{Op: "configstore.decode", Kind: domain.KindParse, Path: path, Err: domain.ErrParse}
	}
	doc := gjson.ParseBytes(b)

	rawVersion := doc.Get("file_format_version").String()
	if rawVersion == "" {
		return nil, missingField(path, "file_format_version")
	}
	v, err := domain.ParseVersion(rawVersion)
	if err != nil || v.Major != 2 {
		return nil, &domain.OpError{
			Op:   "configstore.decode",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("unsupported file_format_version %q: %w", rawVersion, domain.ErrInvalidConfig),
		}
	}

	node := doc.Get("configuration")
	if !node.IsObject() {
		return nil, missingField(path, "configuration")
	}

	cfg := &domain.Configuration{
		Name:        node.Get("name").String(),
		Description: node.Get("description").String(),
	}

	preset := domain.Preset(node.Get("preset").Int())
	if !preset.Valid() {
		return nil, &domain.OpError{
			Op:   "configstore.decode",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("unknown preset %d: %w", preset, domain.ErrInvalidConfig),
		}
	}
	cfg.Preset = preset

	if enc := node.Get("editor_state").String(); enc != "" {
		state, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, &domain.OpError{
				Op:   "configstore.decode",
				Kind: domain.KindParse,
				Path: path,
				Err:  fmt.Errorf("editor_state: %v: %w", err, domain.ErrParse),
			}
		}
		cfg.SettingTreeState = state
	}

	var derr error
	node.Get("layers").ForEach(func(k, entry gjson.Result) bool {
		name := entry.Get("name").String()
		if name == "" {
			derr = missingField(path, fmt.Sprintf("configuration.layers[%d].name", k.Int()))
			return false
		}
		l := hydrate(name, entry.Get("layer_path").String(), lookup)
		l.State = domain.LayerStateOverridden
		l.Rank = int(entry.Get("rank").Int())

		entry.Get("settings").ForEach(func(key, value gjson.Result) bool {
			if st := l.Settings.Find(key.String()); st != nil {
				st.Value = value.String()
				return true
			}
			l.Settings = append(l.Settings, domain.Setting{
				Key:   key.String(),
				Type:  domain.SettingString,
				Value: value.String(),
			})
			return true
		})

		cfg.OverriddenLayers = append(cfg.OverriddenLayers, l)
		return true
	})
	if derr != nil {
		return nil, derr
	}
	cfg.SortByRank()

	node.Get("excluded_layers").ForEach(func(_, v gjson.Result) bool {
		if name := v.String(); name != "" {
			cfg.ExcludedLayers = append(cfg.ExcludedLayers, name)
		}
		return true
	})

	return cfg, nil
}

func hydrate(name, layerPath string, lookup domain.LayerLookup) domain.Layer {
	if lookup != nil {
		if pl, ok := lookup.(domain.PathLookup); ok && layerPath != "" {
			if l := pl.FindLayerAt(name, layerPath); l != nil {
				return *l
			}
		}
		if l := lookup.FindLayer(name); l != nil {
			return *l
		}
	}
	return domain.Layer{Name: name, LayerPath: layerPath}
}

// ListConfigurations returns the stored configurations in file name order.
// Ref names are file stems, the names LoadConfiguration accepts. A missing
// directory yields an empty list.
func (s *JSONStore) ListConfigurations() ([]domain.ConfigurationRef, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &domain.OpError{Op: "configstore.list", Kind: domain.KindExecution, Path: s.dir, Err: err}
	}

	var out []domain.ConfigurationRef
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		out = append(out, domain.ConfigurationRef{
			Name: strings.TrimSuffix(e.Name(), ".json"),
			Path: filepath.Join(s.dir, e.Name()),
		})
	}
	return out, nil
}

func (s *JSONStore) DeleteConfiguration(name string) error {
	if err := domain.ValidateName(name); err != nil {
		return &domain.OpError{
			Op:   "configstore.delete",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%v: %w", err, domain.ErrInvalidConfig),
		}
	}

	path := s.pathFor(name)
	if err := os.Remove(path); err != nil {
		kind := domain.KindExecution
		if errors.Is(err, fs.ErrNotExist) {
			kind = domain.KindNotFound
			err = fmt.Errorf("configuration %q: %w", name, domain.ErrNotFound)
		}
		return &domain.OpError{Op: "configstore.delete", Kind: kind, Path: path, Err: err}
	}
	return nil
}

func (s *JSONStore) ConfigurationExists(name string) bool {
	if domain.ValidateName(name) != nil {
		return false
	}
	info, err := os.Stat(s.pathFor(name))
	return err == nil && !info.IsDir()
}

func missingField(path, field string) error {
	return &domain.OpError{
		Op:   "configstore.decode",
		Kind: domain.KindMissingField,
		Path: path,
		Err:  fmt.Errorf("field %s: %w", field, domain.ErrMissingField),
	}
}
