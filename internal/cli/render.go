package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/aalvaropc/vkconfig/internal/domain"
	"github.com/aalvaropc/vkconfig/internal/usecase"
)

// renderConfiguration prints the settings tree of cfg: overridden layers in
// rank order with their settings, then the installed excluded layers.
func renderConfiguration(w io.Writer, th theme, cfg *domain.Configuration, lookup domain.LayerLookup) {
	title := cfg.Name
	if cfg.Preset != domain.PresetUserDefined {
		title += " [" + cfg.Preset.Label() + "]"
	}
	fmt.Fprintln(w, th.Title.Render(title))
	if cfg.Description != "" {
		fmt.Fprintln(w, th.Faint.Render(cfg.Description))
	}
	fmt.Fprintln(w)

	if !cfg.HasOverride() {
		fmt.Fprintln(w, th.Section.Render("No overridden or excluded layer"))
		return
	}

	overridden := 0
	for _, l := range cfg.OverriddenLayers {
		if l.State == domain.LayerStateOverridden {
			overridden++
		}
	}

	if overridden > 1 {
		fmt.Fprintln(w, th.Section.Render("Vulkan Applications"))
	}

	for _, l := range cfg.OverriddenLayers {
		if l.State != domain.LayerStateOverridden {
			continue
		}

		if lookup == nil || lookup.FindLayer(l.Name) == nil {
			fmt.Fprintf(w, "%s %s\n", th.Layer.Render(l.Name), th.Missing.Render("(Missing)"))
			continue
		}
		fmt.Fprintln(w, th.Layer.Render(l.Name))

		if len(l.Settings) == 0 {
			fmt.Fprintln(w, "    No User Settings")
			continue
		}
		for _, s := range l.Settings {
			label := s.Label
			if label == "" {
				label = s.Key
			}
			value := s.Value
			if value == "" {
				value = th.Faint.Render("(empty)")
			}
			fmt.Fprintf(w, "    %s: %s\n", label, value)
		}
	}

	if overridden > 1 {
		fmt.Fprintln(w, th.Section.Render("Vulkan Drivers"))
	}

	var installed []string
	for _, name := range cfg.ExcludedLayers {
		if lookup != nil && lookup.FindLayer(name) != nil {
			installed = append(installed, name)
		}
	}
	if len(installed) > 0 {
		fmt.Fprintln(w, th.Section.Render("Excluded Layers:"))
		for _, name := range installed {
			fmt.Fprintf(w, "    %s\n", th.Layer.Render(name))
		}
	}
}

func renderLayerList(w io.Writer, th theme, layers []domain.Layer) {
	if len(layers) == 0 {
		fmt.Fprintln(w, "(no layers found)")
		return
	}
	for _, l := range layers {
		fmt.Fprintf(w, "- %s  %s  %s  %s\n",
			th.Layer.Render(l.Name),
			l.APIVersion,
			l.LayerType,
			th.Faint.Render(l.LayerPath),
		)
	}
}

func renderLayer(w io.Writer, th theme, l domain.Layer) {
	fmt.Fprintln(w, th.Title.Render(l.Name))
	if l.Description != "" {
		fmt.Fprintln(w, th.Faint.Render(l.Description))
	}
	fmt.Fprintf(w, "API version:     %s\n", l.APIVersion)
	fmt.Fprintf(w, "Implementation:  %s\n", l.ImplementationVersion)
	fmt.Fprintf(w, "Library:         %s\n", l.LibraryPath)
	fmt.Fprintf(w, "Location:        %s (%s)\n", l.LayerPath, l.LayerType)

	if len(l.Settings) == 0 {
		fmt.Fprintln(w, "\nNo User Settings")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, th.Section.Render("Settings:"))
	for _, s := range l.Settings {
		fmt.Fprintf(w, "    %s (%s) default=%q\n", s.Key, s.Type, s.Default)
		if len(s.Options) > 0 {
			keys := make([]string, 0, len(s.Options))
			for _, o := range s.Options {
				keys = append(keys, o.Key)
			}
			fmt.Fprintf(w, "        options: %s\n", strings.Join(keys, ", "))
		}
	}
}

func renderReports(w io.Writer, th theme, reports []usecase.ValidationReport) (invalid int) {
	for _, r := range reports {
		switch {
		case r.Valid:
			fmt.Fprintf(w, "%s  %s\n", th.OK.Render("OK  "), r.Name)
		case r.Degenerate:
			invalid++
			fmt.Fprintf(w, "%s  %s: no overridden or excluded layer\n", th.Fail.Render("FAIL"), r.Name)
		default:
			invalid++
			fmt.Fprintf(w, "%s  %s: missing %s\n", th.Fail.Render("FAIL"), r.Name, strings.Join(r.Missing, ", "))
		}
	}
	return invalid
}
