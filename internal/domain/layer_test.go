package domain

import (
	"errors"
	"testing"
)

func TestLayerStateValuesArePinned(t *testing.T) {
	if LayerStateApplicationControlled != 0 || LayerStateOverridden != 1 || LayerStateExcluded != 2 {
		t.Fatalf("persisted layer state values changed")
	}

	var zero LayerState
	if zero != LayerStateApplicationControlled {
		t.Fatalf("expected application controlled to be the initial state")
	}
	if LayerState(3).Valid() || !LayerStateExcluded.Valid() {
		t.Fatalf("unexpected Valid result")
	}
}

func TestParseLayerState(t *testing.T) {
	cases := []struct {
		in   string
		want LayerState
	}{
		{"overridden", LayerStateOverridden},
		{"ON", LayerStateOverridden},
		{"excluded", LayerStateExcluded},
		{"off", LayerStateExcluded},
		{"application_controlled", LayerStateApplicationControlled},
		{"default", LayerStateApplicationControlled},
	}
	for _, c := range cases {
		got, err := ParseLayerState(c.in)
		if err != nil {
			t.Errorf("ParseLayerState(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseLayerState(%q) = %s, want %s", c.in, got, c.want)
		}
		if back, _ := ParseLayerState(got.String()); back != got {
			t.Errorf("String() of %s does not parse back", got)
		}
	}

	if _, err := ParseLayerState("maybe"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLayerCloneOwnsSettings(t *testing.T) {
	l := Layer{
		Name:      "VK_LAYER_KHRONOS_validation",
		LayerPath: "/usr/share/vulkan/explicit_layer.d",
		Settings:  Settings{{Key: "debug_action", Value: "log"}},
	}

	cp := l.Clone()
	cp.Settings[0].Value = "break"

	if l.Settings[0].Value != "log" {
		t.Fatalf("expected original settings untouched")
	}
	if !l.SameInstallation(cp) {
		t.Fatalf("expected same installation")
	}
}

func TestLayerIsValid(t *testing.T) {
	cases := []struct {
		name  string
		layer Layer
		want  bool
	}{
		{"valid", Layer{Name: "L", LayerPath: "/etc/vulkan"}, true},
		{"no name", Layer{LayerPath: "/etc/vulkan"}, false},
		{"relative path", Layer{Name: "L", LayerPath: "etc/vulkan"}, false},
		{"no path", Layer{Name: "L"}, false},
	}
	for _, c := range cases {
		if got := c.layer.IsValid(); got != c.want {
			t.Errorf("%s: IsValid() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestSameInstallationDistinguishesPaths(t *testing.T) {
	a := Layer{Name: "L", LayerPath: "/a"}
	b := Layer{Name: "L", LayerPath: "/b"}
	if a.SameInstallation(b) {
		t.Fatalf("expected different installations")
	}
}

func TestCatalogLookups(t *testing.T) {
	src := []Layer{
		{Name: "L", LayerPath: "/a", Settings: Settings{{Key: "k", Value: "v"}}},
		{Name: "L", LayerPath: "/b"},
		{Name: "M", LayerPath: "/a"},
	}
	c := NewCatalog(src)

	src[0].Settings[0].Value = "mutated"

	got := c.FindLayer("L")
	if got == nil || got.LayerPath != "/a" {
		t.Fatalf("expected first L, got %+v", got)
	}
	if got.Settings[0].Value != "v" {
		t.Fatalf("expected catalog isolated from its input")
	}

	got.Settings[0].Value = "edited"
	if c.FindLayer("L").Settings[0].Value != "v" {
		t.Fatalf("expected lookups to return copies")
	}

	if at := c.FindLayerAt("L", "/b"); at == nil || at.LayerPath != "/b" {
		t.Fatalf("expected L at /b, got %+v", at)
	}
	if c.FindLayerAt("M", "/b") != nil || c.FindLayer("N") != nil {
		t.Fatalf("expected misses")
	}
	if c.Len() != 3 || len(c.Layers()) != 3 {
		t.Fatalf("expected 3 layers")
	}

	var nilCatalog *Catalog
	if nilCatalog.FindLayer("L") != nil || nilCatalog.Len() != 0 {
		t.Fatalf("expected nil catalog to be empty")
	}
}
