package domain

import (
	"reflect"
	"testing"
)

func testLayer(name, path string, state LayerState) Layer {
	return Layer{
		Name:        name,
		LibraryPath: "./lib" + name + ".so",
		APIVersion:  Version{1, 2, 145},
		LayerPath:   path,
		Settings: Settings{
			{Key: "log_level", Type: SettingEnum, Options: []SettingOption{{Key: "info"}, {Key: "error"}}, Default: "info", Value: "info"},
		},
		State: state,
	}
}

func ranks(layers []Layer) []int {
	out := make([]int, len(layers))
	for i, l := range layers {
		out[i] = l.Rank
	}
	return out
}

func names(layers []Layer) []string {
	out := make([]string, len(layers))
	for i, l := range layers {
		out[i] = l.Name
	}
	return out
}

func TestCollapseScenario(t *testing.T) {
	c := NewConfiguration("scenario")
	c.CreateOverriddenLayer(testLayer("A", "/layers", LayerStateOverridden))
	c.CreateOverriddenLayer(testLayer("B", "/layers", LayerStateExcluded))
	c.CreateOverriddenLayer(testLayer("C", "/layers", LayerStateApplicationControlled))

	c.Collapse()

	if got := names(c.OverriddenLayers); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("expected overridden [A], got %v", got)
	}
	if c.OverriddenLayers[0].Rank != 0 {
		t.Fatalf("expected rank 0, got %d", c.OverriddenLayers[0].Rank)
	}
	if !reflect.DeepEqual(c.ExcludedLayers, []string{"B"}) {
		t.Fatalf("expected excluded [B], got %v", c.ExcludedLayers)
	}
	if c.FindOverriddenLayer("C") != nil {
		t.Fatalf("expected C to be dropped")
	}
}

func TestCollapseRanksFollowSequenceOrder(t *testing.T) {
	c := NewConfiguration("ranks")
	for i, name := range []string{"A", "B", "C", "D"} {
		l := c.CreateOverriddenLayer(testLayer(name, "/layers", LayerStateOverridden))
		l.Rank = 10 - i
	}
	c.OverriddenLayers[1].State = LayerStateExcluded

	c.Collapse()

	if got := names(c.OverriddenLayers); !reflect.DeepEqual(got, []string{"A", "C", "D"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if got := ranks(c.OverriddenLayers); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Fatalf("expected contiguous ranks, got %v", got)
	}
}

func TestCollapseRecomputesExclusions(t *testing.T) {
	c := NewConfiguration("recompute")
	c.ExcludedLayers = []string{"X", "Y", "standing"}
	c.CreateOverriddenLayer(testLayer("X", "/layers", LayerStateOverridden))
	c.CreateOverriddenLayer(testLayer("Y", "/layers", LayerStateApplicationControlled))
	c.CreateOverriddenLayer(testLayer("Z", "/layers", LayerStateExcluded))

	c.Collapse()

	if !reflect.DeepEqual(c.ExcludedLayers, []string{"standing", "Z"}) {
		t.Fatalf("expected entry states to replace previous exclusions, got %v", c.ExcludedLayers)
	}
	if got := names(c.OverriddenLayers); !reflect.DeepEqual(got, []string{"X"}) {
		t.Fatalf("expected overridden [X], got %v", got)
	}
}

func TestCollapseSameNameOverriddenAndExcluded(t *testing.T) {
	c := NewConfiguration("installations")
	c.CreateOverriddenLayer(testLayer("A", "/p1", LayerStateOverridden))
	c.CreateOverriddenLayer(testLayer("B", "/p1", LayerStateOverridden))
	c.CreateOverriddenLayer(testLayer("A", "/p2", LayerStateExcluded))
	c.CreateOverriddenLayer(testLayer("A", "/p3", LayerStateExcluded))

	c.Collapse()

	if got := names(c.OverriddenLayers); !reflect.DeepEqual(got, []string{"B"}) {
		t.Fatalf("expected exclusion to win over A, got overridden %v", got)
	}
	if got := ranks(c.OverriddenLayers); !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("expected contiguous ranks, got %v", got)
	}
	if !reflect.DeepEqual(c.ExcludedLayers, []string{"A"}) {
		t.Fatalf("expected A excluded once, got %v", c.ExcludedLayers)
	}
}

func TestCollapseInvariantsAndIdempotence(t *testing.T) {
	states := []LayerState{
		LayerStateOverridden, LayerStateExcluded, LayerStateApplicationControlled,
		LayerStateOverridden, LayerStateOverridden, LayerStateExcluded,
	}

	c := NewConfiguration("props")
	for i, s := range states {
		l := c.CreateOverriddenLayer(testLayer(string(rune('A'+i)), "/layers", s))
		l.Rank = 42
	}
	// Second installations of A and B in the opposite state.
	c.CreateOverriddenLayer(testLayer("A", "/other", LayerStateExcluded))
	c.CreateOverriddenLayer(testLayer("B", "/other", LayerStateOverridden))

	c.Collapse()

	excluded := map[string]bool{}
	for _, n := range c.ExcludedLayers {
		excluded[n] = true
	}
	seen := map[int]bool{}
	for _, l := range c.OverriddenLayers {
		if excluded[l.Name] {
			t.Fatalf("%s is both overridden and excluded", l.Name)
		}
		if l.State != LayerStateOverridden {
			t.Fatalf("%s has state %s after collapse", l.Name, l.State)
		}
		if l.Rank < 0 || l.Rank >= len(c.OverriddenLayers) || seen[l.Rank] {
			t.Fatalf("ranks are not a permutation of [0,%d): %v", len(c.OverriddenLayers), ranks(c.OverriddenLayers))
		}
		seen[l.Rank] = true
	}

	once := c.Duplicate()
	c.Collapse()
	if !reflect.DeepEqual(once, c) {
		t.Fatalf("collapse is not idempotent:\nonce=%+v\ntwice=%+v", once, c)
	}
}

func TestDuplicateIsDeepAndEqual(t *testing.T) {
	c := NewConfiguration("orig")
	c.File = "orig.json"
	c.Description = "description"
	c.Preset = PresetBestPractices
	c.SettingTreeState = []byte{0x01, 0x02}
	c.ExcludedLayers = []string{"VK_LAYER_LUNARG_api_dump"}
	c.CreateOverriddenLayer(testLayer(ValidationLayerName, "/layers", LayerStateOverridden))

	dup := c.Duplicate()
	if !reflect.DeepEqual(c, dup) {
		t.Fatalf("expected duplicate equal to source:\n%+v\n%+v", c, dup)
	}

	dup.OverriddenLayers[0].Settings[0].Value = "error"
	dup.OverriddenLayers[0].Settings[0].Options[0].Key = "changed"
	dup.ExcludedLayers[0] = "changed"
	dup.SettingTreeState[0] = 0xff

	if c.OverriddenLayers[0].Settings[0].Value != "info" {
		t.Fatalf("duplicate setting edit leaked into source")
	}
	if c.OverriddenLayers[0].Settings[0].Options[0].Key != "info" {
		t.Fatalf("duplicate option edit leaked into source")
	}
	if c.ExcludedLayers[0] != "VK_LAYER_LUNARG_api_dump" {
		t.Fatalf("duplicate exclusion edit leaked into source")
	}
	if c.SettingTreeState[0] != 0x01 {
		t.Fatalf("duplicate editor state edit leaked into source")
	}
}

func TestCreateOverriddenLayerCopiesSource(t *testing.T) {
	src := testLayer("A", "/layers", LayerStateApplicationControlled)
	c := NewConfiguration("copy")

	l := c.CreateOverriddenLayer(src)
	l.Settings[0].Value = "error"
	l.State = LayerStateOverridden

	if src.Settings[0].Value != "info" || src.State != LayerStateApplicationControlled {
		t.Fatalf("expected source layer untouched")
	}
}

func TestCreateOverriddenLayerAllowsDuplicates(t *testing.T) {
	src := testLayer("A", "/opt/layers", LayerStateOverridden)
	c := NewConfiguration("dups")

	if c.IsOverriddenLayerAvailable("A", "/opt/layers") {
		t.Fatalf("expected layer absent before first insert")
	}
	c.CreateOverriddenLayer(src)
	if !c.IsOverriddenLayerAvailable("A", "/opt/layers") {
		t.Fatalf("expected layer available before second insert")
	}
	c.CreateOverriddenLayer(src)

	if len(c.OverriddenLayers) != 2 {
		t.Fatalf("expected duplicates to be kept, got %d", len(c.OverriddenLayers))
	}
	if !c.OverriddenLayers[0].SameInstallation(c.OverriddenLayers[1]) {
		t.Fatalf("expected identical identity fields")
	}
	if c.IsOverriddenLayerAvailable("A", "/usr/layers") {
		t.Fatalf("expected path to be part of the match")
	}
}

func TestFindOverriddenLayerIgnoresPath(t *testing.T) {
	c := NewConfiguration("find")
	c.CreateOverriddenLayer(testLayer("X", "/first", LayerStateOverridden))
	c.CreateOverriddenLayer(testLayer("X", "/second", LayerStateOverridden))

	got := c.FindOverriddenLayer("X")
	if got == nil || got.LayerPath != "/first" {
		t.Fatalf("expected earliest match, got %+v", got)
	}
	if c.FindOverriddenLayer("Y") != nil {
		t.Fatalf("expected nil for absent layer")
	}
}

func TestIsValid(t *testing.T) {
	catalog := NewCatalog([]Layer{
		testLayer("A", "/layers", LayerStateApplicationControlled),
		testLayer("B", "/layers", LayerStateApplicationControlled),
	})

	empty := NewConfiguration("empty")
	if empty.IsValid(catalog) {
		t.Fatalf("expected empty configuration to be invalid")
	}
	if err := empty.Check(catalog); !IsKind(err, KindDegenerate) {
		t.Fatalf("expected degenerate, got %v", err)
	}

	ok := NewConfiguration("ok")
	ok.CreateOverriddenLayer(testLayer("A", "/layers", LayerStateOverridden))
	ok.ExcludedLayers = []string{"B"}
	if !ok.IsValid(catalog) {
		t.Fatalf("expected configuration to be valid: %v", ok.Check(catalog))
	}

	missing := ok.Duplicate()
	missing.CreateOverriddenLayer(testLayer("Z", "/layers", LayerStateOverridden))
	if missing.IsValid(catalog) {
		t.Fatalf("expected unknown overridden layer to invalidate")
	}
	if err := missing.Check(catalog); !IsKind(err, KindLookupMiss) {
		t.Fatalf("expected lookup miss, got %v", err)
	}

	excludedMissing := ok.Duplicate()
	excludedMissing.ExcludedLayers = append(excludedMissing.ExcludedLayers, "gone")
	if excludedMissing.IsValid(catalog) {
		t.Fatalf("expected unknown excluded layer to invalidate")
	}

	onlyExcluded := NewConfiguration("only-excluded")
	onlyExcluded.ExcludedLayers = []string{"A"}
	if !onlyExcluded.IsValid(catalog) {
		t.Fatalf("expected exclusion-only configuration to be valid")
	}
}

func TestMissingLayersOrder(t *testing.T) {
	catalog := NewCatalog([]Layer{testLayer("A", "/layers", LayerStateApplicationControlled)})

	c := NewConfiguration("missing")
	c.CreateOverriddenLayer(testLayer("Q", "/layers", LayerStateOverridden))
	c.CreateOverriddenLayer(testLayer("A", "/layers", LayerStateOverridden))
	c.ExcludedLayers = []string{"R"}

	got := c.MissingLayers(catalog)
	if !reflect.DeepEqual(got, []string{"Q", "R"}) {
		t.Fatalf("unexpected missing layers %v", got)
	}
}

func TestExpandThenCollapseRoundTrips(t *testing.T) {
	catalog := NewCatalog([]Layer{
		testLayer("A", "/layers", LayerStateApplicationControlled),
		testLayer("B", "/layers", LayerStateApplicationControlled),
	})

	c := NewConfiguration("edit")
	c.CreateOverriddenLayer(testLayer("A", "/layers", LayerStateOverridden))
	c.CreateOverriddenLayer(testLayer("B", "/layers", LayerStateExcluded))
	c.CreateOverriddenLayer(Layer{Name: "uninstalled", State: LayerStateExcluded})
	c.Collapse()
	if !reflect.DeepEqual(c.ExcludedLayers, []string{"B", "uninstalled"}) {
		t.Fatalf("unexpected exclusions %v", c.ExcludedLayers)
	}
	want := c.Duplicate()

	c.Expand(catalog)
	if len(c.ExcludedLayers) != 0 {
		t.Fatalf("expected exclusions moved into the layer list")
	}
	b := c.FindOverriddenLayer("B")
	if b == nil || b.State != LayerStateExcluded || b.LayerPath != "/layers" {
		t.Fatalf("expected B hydrated from catalog, got %+v", b)
	}
	if u := c.FindOverriddenLayer("uninstalled"); u == nil || u.State != LayerStateExcluded {
		t.Fatalf("expected bare entry for uninstalled layer, got %+v", u)
	}

	c.Collapse()
	if !reflect.DeepEqual(want, c) {
		t.Fatalf("expand+collapse changed the configuration:\nwant=%+v\ngot=%+v", want, c)
	}
}

func TestSetLayerStateAndSortByRank(t *testing.T) {
	c := NewConfiguration("sort")
	a := c.CreateOverriddenLayer(testLayer("A", "/layers", LayerStateOverridden))
	a.Rank = 1
	b := c.CreateOverriddenLayer(testLayer("B", "/layers", LayerStateOverridden))
	b.Rank = 0

	c.SortByRank()
	if got := names(c.OverriddenLayers); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Fatalf("unexpected order %v", got)
	}

	if !c.SetLayerState("A", LayerStateExcluded) {
		t.Fatalf("expected A to be found")
	}
	if c.SetLayerState("missing", LayerStateExcluded) {
		t.Fatalf("expected missing layer to report false")
	}
	if c.FindOverriddenLayer("A").State != LayerStateExcluded {
		t.Fatalf("expected state change")
	}
}

func TestApplyPreset(t *testing.T) {
	c := NewConfiguration("preset")
	if c.ApplyPreset() {
		t.Fatalf("expected user defined preset to be a no-op")
	}

	c.Preset = PresetBestPractices
	if c.ApplyPreset() {
		t.Fatalf("expected no-op without the validation layer")
	}

	c.CreateOverriddenLayer(testLayer(ValidationLayerName, "/layers", LayerStateOverridden))
	if !c.ApplyPreset() {
		t.Fatalf("expected preset applied")
	}

	vl := c.FindOverriddenLayer(ValidationLayerName)
	enables := vl.Settings.Find("enables")
	if enables == nil || enables.Value != PresetValues(PresetBestPractices)["enables"] {
		t.Fatalf("expected enables set, got %+v", enables)
	}
	if vl.Settings.Find("disables") == nil {
		t.Fatalf("expected disables setting added")
	}
}

func TestValidateName(t *testing.T) {
	for _, ok := range []string{"Validation", "Best Practices - 2"} {
		if err := ValidateName(ok); err != nil {
			t.Errorf("ValidateName(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "  ", "a/b", `a\b`, ".."} {
		if err := ValidateName(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
