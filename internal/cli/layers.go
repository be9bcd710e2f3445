package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/vkconfig/internal/domain"
)

func layersCmd(flags *rootFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "layers",
		Short: "Inspect installed Vulkan layers",
	}

	c.AddCommand(layersListCmd(flags), layersShowCmd(flags))
	return c
}

func layersListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List layers found on the search paths",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := loadHome(commandContext(cmd), flags)
			if err != nil {
				return err
			}
			defer h.Close()

			renderLayerList(cmd.OutOrStdout(), defaultTheme(), h.registry.AvailableLayers())
			return nil
		},
	}
}

func layersShowCmd(flags *rootFlags) *cobra.Command {
	var path string

	c := &cobra.Command{
		Use:   "show <layer>",
		Short: "Show a layer and its settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHome(commandContext(cmd), flags)
			if err != nil {
				return err
			}
			defer h.Close()

			var l *domain.Layer
			if path != "" {
				l = h.registry.FindLayerAt(args[0], path)
			} else {
				l = h.registry.FindLayer(args[0])
			}
			if l == nil {
				return fmt.Errorf("layer %s: %w", args[0], domain.ErrLayerMissing)
			}

			renderLayer(cmd.OutOrStdout(), defaultTheme(), *l)
			return nil
		},
	}

	c.Flags().StringVar(&path, "path", "", "Manifest directory, when the layer is installed more than once")
	return c
}
