package layerscan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aalvaropc/vkconfig/internal/domain"
)

func writeManifest(t *testing.T, dir, file, name string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body := `{"file_format_version":"1.2.0","layer":{"name":"` + name +
		`","type":"GLOBAL","library_path":"lib.so","api_version":"1.3.0","implementation_version":"1","description":"test"}}`
	if err := os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func TestSearchPaths_Order(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Paths.LayerPaths = []string{"layers", "/opt/sdk/layers", "layers"}

	env := map[string]string{
		"VK_LAYER_PATH":   "/env/a" + string(os.PathListSeparator) + "/env/b",
		"HOME":            "/home/u",
		"XDG_DATA_DIRS":   "/usr/share",
		"XDG_CONFIG_DIRS": "/etc/xdg",
	}
	paths := SearchPaths(cfg, "/home/u/.vk", func(k string) string { return env[k] })

	if len(paths) < 4 {
		t.Fatalf("expected at least 4 paths, got=%d", len(paths))
	}
	want := []SearchPath{
		{Dir: "/home/u/.vk/layers", Type: domain.LayerTypeCustom},
		{Dir: "/opt/sdk/layers", Type: domain.LayerTypeCustom},
		{Dir: "/env/a", Type: domain.LayerTypeExplicit},
		{Dir: "/env/b", Type: domain.LayerTypeExplicit},
	}
	for i, w := range want {
		if paths[i] != w {
			t.Fatalf("path %d: expected %+v, got=%+v", i, w, paths[i])
		}
	}
}

func TestSearchPaths_DiscoveryToggles(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Discovery.SystemPaths = false
	cfg.Discovery.Environment = false

	paths := SearchPaths(cfg, "/h", func(string) string { return "/ignored" })
	if len(paths) != 1 || paths[0].Dir != "/h/layers" {
		t.Fatalf("expected only the user path, got=%+v", paths)
	}
}

func TestScan_KeepsSameNameAtDifferentPaths(t *testing.T) {
	tmp := t.TempDir()
	first := filepath.Join(tmp, "first")
	second := filepath.Join(tmp, "second")

	writeManifest(t, first, "validation.json", "VK_LAYER_KHRONOS_validation")
	writeManifest(t, first, "api_dump.json", "VK_LAYER_LUNARG_api_dump")
	writeManifest(t, second, "validation.json", "VK_LAYER_KHRONOS_validation")

	if err := os.WriteFile(filepath.Join(first, "broken.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write broken: %v", err)
	}
	if err := os.WriteFile(filepath.Join(first, "README.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}

	s := NewScanner([]SearchPath{
		{Dir: first, Type: domain.LayerTypeCustom},
		{Dir: filepath.Join(tmp, "missing"), Type: domain.LayerTypeExplicit},
		{Dir: second, Type: domain.LayerTypeImplicit},
	})

	layers, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(layers) != 3 {
		t.Fatalf("expected 3 layers, got=%d", len(layers))
	}

	// ReadDir sorts entries, so api_dump.json precedes validation.json.
	if layers[0].Name != "VK_LAYER_LUNARG_api_dump" || layers[1].LayerPath != first {
		t.Fatalf("unexpected order: %+v", layers)
	}
	if layers[2].LayerPath != second || layers[2].LayerType != domain.LayerTypeImplicit {
		t.Fatalf("expected second validation layer from implicit path, got=%+v", layers[2])
	}

	cat := domain.NewCatalog(layers)
	if cat.FindLayer("VK_LAYER_KHRONOS_validation").LayerPath != first {
		t.Fatalf("expected first search path to win name lookups")
	}
	if cat.FindLayerAt("VK_LAYER_KHRONOS_validation", second) == nil {
		t.Fatalf("expected the second installation to stay addressable")
	}

	dirs := s.Dirs()
	if len(dirs) != 3 || dirs[0] != first {
		t.Fatalf("unexpected dirs: %v", dirs)
	}
}

func TestScan_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScanner([]SearchPath{{Dir: t.TempDir()}})
	if _, err := s.Scan(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
