package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SettingType is the value type of a layer setting.
type SettingType string

const (
	SettingBool        SettingType = "bool"
	SettingBoolNumeric SettingType = "bool_numeric"
	SettingInt         SettingType = "int"
	SettingIntRange    SettingType = "int_range"
	SettingEnum        SettingType = "enum"
	SettingFlags       SettingType = "flags"
	SettingString      SettingType = "string"
	SettingList        SettingType = "list"
	SettingSaveFile    SettingType = "save_file"
	SettingLoadFile    SettingType = "load_file"
	SettingSaveFolder  SettingType = "save_folder"
)

// ParseSettingType maps a manifest type token onto a SettingType.
// Matching is case-insensitive; "multi_enum" and "vuid_exclude" are accepted
// as aliases used by older manifests.
func ParseSettingType(s string) (SettingType, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	switch SettingType(t) {
	case SettingBool, SettingBoolNumeric, SettingInt, SettingIntRange,
		SettingEnum, SettingFlags, SettingString, SettingList,
		SettingSaveFile, SettingLoadFile, SettingSaveFolder:
		return SettingType(t), nil
	}

	switch t {
	case "multi_enum":
		return SettingFlags, nil
	case "vuid_exclude":
		return SettingList, nil
	}
	return "", fmt.Errorf("unsupported setting type %q: %w", s, ErrInvalidConfig)
}

// IsPath reports whether the setting holds a filesystem path.
func (t SettingType) IsPath() bool {
	return t == SettingSaveFile || t == SettingLoadFile || t == SettingSaveFolder
}

// SettingOption is one choice of an enum or flags setting.
type SettingOption struct {
	Key         string
	Label       string
	Description string
}

// Setting is a typed, named configurable value owned by a single Layer.
// Flags and list values are comma-delimited.
type Setting struct {
	Key         string
	Label       string
	Description string
	Type        SettingType
	Options     []SettingOption

	Default string
	Value   string
}

// Clone returns a copy that shares no memory with s.
func (s Setting) Clone() Setting {
	out := s
	if s.Options != nil {
		out.Options = make([]SettingOption, len(s.Options))
		copy(out.Options, s.Options)
	}
	return out
}

// HasOption reports whether key names one of the setting's options.
func (s Setting) HasOption(key string) bool {
	for _, o := range s.Options {
		if o.Key == key {
			return true
		}
	}
	return false
}

// IsDefault reports whether the current value equals the default.
func (s Setting) IsDefault() bool {
	return s.Value == s.Default
}

// Reset restores the default value.
func (s *Setting) Reset() {
	s.Value = s.Default
}

// SetValue validates v against the setting type and stores the normalised value.
func (s *Setting) SetValue(v string) error {
	norm, err := s.normalize(v)
	if err != nil {
		return fmt.Errorf("setting %s: %w", s.Key, err)
	}
	s.Value = norm
	return nil
}

// Flags returns the individual entries of a delimited value.
func (s Setting) Flags() []string {
	return splitDelimited(s.Value)
}

// AddFlag appends flag to the delimited value unless already present.
func (s *Setting) AddFlag(flag string) {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return
	}
	flags := splitDelimited(s.Value)
	for _, f := range flags {
		if f == flag {
			return
		}
	}
	s.Value = strings.Join(append(flags, flag), ",")
}

// RemoveFlag drops every occurrence of flag from the delimited value.
func (s *Setting) RemoveFlag(flag string) {
	flag = strings.TrimSpace(flag)
	flags := splitDelimited(s.Value)
	kept := flags[:0]
	for _, f := range flags {
		if f != flag {
			kept = append(kept, f)
		}
	}
	s.Value = strings.Join(kept, ",")
}

func (s Setting) normalize(v string) (string, error) {
	in := strings.TrimSpace(v)

	switch s.Type {
	case SettingBool:
		switch strings.ToUpper(in) {
		case "TRUE", "1", "ON":
			return "TRUE", nil
		case "FALSE", "0", "OFF":
			return "FALSE", nil
		}
		return "", fmt.Errorf("%q is not a boolean: %w", v, ErrInvalidConfig)

	case SettingBoolNumeric:
		switch strings.ToUpper(in) {
		case "1", "TRUE":
			return "1", nil
		case "0", "FALSE":
			return "0", nil
		}
		return "", fmt.Errorf("%q is not 0 or 1: %w", v, ErrInvalidConfig)

	case SettingInt:
		if _, err := strconv.Atoi(in); err != nil {
			return "", fmt.Errorf("%q is not an integer: %w", v, ErrInvalidConfig)
		}
		return in, nil

	case SettingIntRange:
		if err := validateRange(in); err != nil {
			return "", err
		}
		return in, nil

	case SettingEnum:
		if !s.HasOption(in) {
			return "", fmt.Errorf("%q is not a valid choice: %w", v, ErrInvalidConfig)
		}
		return in, nil

	case SettingFlags:
		flags := splitDelimited(in)
		for _, f := range flags {
			if !s.HasOption(f) {
				return "", fmt.Errorf("%q is not a valid flag: %w", f, ErrInvalidConfig)
			}
		}
		return strings.Join(flags, ","), nil

	case SettingList:
		return strings.Join(splitDelimited(in), ","), nil

	case SettingString, SettingSaveFile, SettingLoadFile, SettingSaveFolder:
		return v, nil
	}

	return "", fmt.Errorf("unknown setting type %q: %w", s.Type, ErrInvalidConfig)
}

// validateRange accepts "N" or "N-M" with N <= M. Empty means unbounded.
func validateRange(in string) error {
	if in == "" {
		return nil
	}

	lo, hi, found := strings.Cut(in, "-")
	a, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return fmt.Errorf("%q is not a range: %w", in, ErrInvalidConfig)
	}
	if !found {
		return nil
	}
	b, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return fmt.Errorf("%q is not a range: %w", in, ErrInvalidConfig)
	}
	if a > b {
		return fmt.Errorf("range %q is reversed: %w", in, ErrInvalidConfig)
	}
	return nil
}

func splitDelimited(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Settings is the ordered settings list of a layer.
type Settings []Setting

// Find returns the setting with the given key, or nil.
func (ss Settings) Find(key string) *Setting {
	for i := range ss {
		if ss[i].Key == key {
			return &ss[i]
		}
	}
	return nil
}

// Clone deep copies every setting.
func (ss Settings) Clone() Settings {
	if ss == nil {
		return nil
	}
	out := make(Settings, len(ss))
	for i, s := range ss {
		out[i] = s.Clone()
	}
	return out
}

// Values returns key -> current value.
func (ss Settings) Values() map[string]string {
	out := make(map[string]string, len(ss))
	for _, s := range ss {
		out[s.Key] = s.Value
	}
	return out
}
