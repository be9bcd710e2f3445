package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/vkconfig/internal/domain"
	"github.com/aalvaropc/vkconfig/internal/usecase"
)

func configsCmd(flags *rootFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "configs",
		Short: "Manage layer configurations",
	}

	c.AddCommand(
		configsListCmd(flags),
		configsShowCmd(flags),
		configsValidateCmd(flags),
		configsCreateCmd(flags),
		configsEditCmd(flags),
		configsDuplicateCmd(flags),
		configsDeleteCmd(flags),
	)
	return c
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func configsListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored configurations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := loadHome(commandContext(cmd), flags)
			if err != nil {
				return err
			}
			defer h.Close()

			refs, err := h.store.ListConfigurations()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(refs) == 0 {
				fmt.Fprintln(out, "(no configurations found; run `vkconfig init`)")
				return nil
			}

			fmt.Fprintf(out, "Home: %s\n\n", h.root)
			for _, r := range refs {
				rel, _ := filepath.Rel(h.root, r.Path)
				marker := " "
				if r.Name == h.cfg.Defaults.Configuration {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s  (%s)\n", marker, r.Name, rel)
			}
			return nil
		},
	}
}

func configsShowCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show the layers and settings of a configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHome(commandContext(cmd), flags)
			if err != nil {
				return err
			}
			defer h.Close()

			name := h.cfg.Defaults.Configuration
			if len(args) == 1 {
				name = args[0]
			}

			cfg, err := h.store.LoadConfiguration(name, h.registry)
			if err != nil {
				return err
			}

			renderConfiguration(cmd.OutOrStdout(), defaultTheme(), cfg, h.registry)
			return nil
		},
	}
}

func configsValidateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [name]",
		Short: "Check that configurations only reference installed layers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			h, err := loadHome(ctx, flags)
			if err != nil {
				return err
			}
			defer h.Close()

			uc := usecase.NewValidateConfiguration(h.store, h.registry, usecase.WithLogger(h.log))

			var reports []usecase.ValidationReport
			if len(args) == 1 {
				r, err := uc.Execute(ctx, args[0])
				if err != nil {
					return err
				}
				reports = append(reports, r)
			} else {
				reports, err = uc.ExecuteAll(ctx)
				if err != nil {
					return err
				}
			}

			if n := renderReports(cmd.OutOrStdout(), defaultTheme(), reports); n > 0 {
				return fmt.Errorf("%d of %d configurations cannot be activated", n, len(reports))
			}
			return nil
		},
	}
}

func configsCreateCmd(flags *rootFlags) *cobra.Command {
	var (
		overridden  []string
		excluded    []string
		preset      string
		description string
	)

	c := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a configuration from installed layers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := domain.ParsePreset(preset)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			h, err := loadHome(ctx, flags)
			if err != nil {
				return err
			}
			defer h.Close()

			uc := usecase.NewCreateConfiguration(h.store, h.registry, usecase.WithLogger(h.log))
			cfg, err := uc.Execute(ctx, usecase.CreateRequest{
				Name:        args[0],
				Description: description,
				Preset:      p,
				Overridden:  overridden,
				Excluded:    excluded,
			})
			if err != nil {
				return err
			}

			renderConfiguration(cmd.OutOrStdout(), defaultTheme(), cfg, h.registry)
			return nil
		},
	}

	c.Flags().StringSliceVarP(&overridden, "override", "o", nil, "Layer to force on, in load order (repeatable)")
	c.Flags().StringSliceVarP(&excluded, "exclude", "x", nil, "Layer to force off (repeatable)")
	c.Flags().StringVar(&preset, "preset", "", "Validation preset (standard, gpu_assisted, shader_printf, reduced_overhead, best_practices, synchronization)")
	c.Flags().StringVarP(&description, "description", "d", "", "Configuration description")
	return c
}

func configsEditCmd(flags *rootFlags) *cobra.Command {
	var (
		overridden []string
		excluded   []string
		reset      []string
		sets       []string
		preset     string
		desc       string
	)

	c := &cobra.Command{
		Use:   "edit <name>",
		Short: "Change layer states and settings of a configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edit, err := buildEdit(overridden, excluded, reset, sets)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("preset") {
				p, err := domain.ParsePreset(preset)
				if err != nil {
					return err
				}
				edit.Preset = &p
			}
			if cmd.Flags().Changed("description") {
				edit.Description = &desc
			}

			ctx := commandContext(cmd)
			h, err := loadHome(ctx, flags)
			if err != nil {
				return err
			}
			defer h.Close()

			uc := usecase.NewEditConfiguration(h.store, h.registry, usecase.WithLogger(h.log))
			cfg, err := uc.Execute(ctx, args[0], edit)
			if err != nil {
				return err
			}

			renderConfiguration(cmd.OutOrStdout(), defaultTheme(), cfg, h.registry)
			return nil
		},
	}

	c.Flags().StringSliceVarP(&overridden, "override", "o", nil, "Layer to force on (repeatable)")
	c.Flags().StringSliceVarP(&excluded, "exclude", "x", nil, "Layer to force off (repeatable)")
	c.Flags().StringSliceVar(&reset, "reset", nil, "Layer to hand back to the application (repeatable)")
	c.Flags().StringArrayVarP(&sets, "set", "s", nil, "Setting as LAYER:KEY=VALUE (repeatable)")
	c.Flags().StringVar(&preset, "preset", "", "Validation preset to apply")
	c.Flags().StringVarP(&desc, "description", "d", "", "New description")
	return c
}

// buildEdit turns edit flags into a usecase.Edit. Layer changes keep flag
// group order: overrides, exclusions, resets.
func buildEdit(overridden, excluded, reset, sets []string) (usecase.Edit, error) {
	var edit usecase.Edit

	for _, group := range []struct {
		names []string
		state domain.LayerState
	}{
		{overridden, domain.LayerStateOverridden},
		{excluded, domain.LayerStateExcluded},
		{reset, domain.LayerStateApplicationControlled},
	} {
		for _, n := range group.names {
			edit.Layers = append(edit.Layers, usecase.LayerChange{Layer: n, State: group.state})
		}
	}

	for _, s := range sets {
		ch, err := parseSettingArg(s)
		if err != nil {
			return usecase.Edit{}, err
		}
		edit.Settings = append(edit.Settings, ch)
	}
	return edit, nil
}

// parseSettingArg parses LAYER:KEY=VALUE. VALUE may be empty or contain '='.
func parseSettingArg(s string) (usecase.SettingChange, error) {
	layer, rest, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(layer) == "" {
		return usecase.SettingChange{}, fmt.Errorf("invalid --set %q (want LAYER:KEY=VALUE)", s)
	}
	key, value, ok := strings.Cut(rest, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return usecase.SettingChange{}, fmt.Errorf("invalid --set %q (want LAYER:KEY=VALUE)", s)
	}
	return usecase.SettingChange{
		Layer: strings.TrimSpace(layer),
		Key:   strings.TrimSpace(key),
		Value: value,
	}, nil
}

func configsDuplicateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <source> <target>",
		Short: "Copy a configuration under a new name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			h, err := loadHome(ctx, flags)
			if err != nil {
				return err
			}
			defer h.Close()

			uc := usecase.NewDuplicateConfiguration(h.store, h.registry, usecase.WithLogger(h.log))
			if _, err := uc.Execute(ctx, args[0], args[1]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Duplicated %s as %s\n", args[0], args[1])
			return nil
		},
	}
}

func configsDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHome(commandContext(cmd), flags)
			if err != nil {
				return err
			}
			defer h.Close()

			if err := h.store.DeleteConfiguration(args[0]); err != nil {
				return err
			}
			h.log.Info("configuration.deleted", "name", args[0])

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
