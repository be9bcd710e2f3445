package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/vkconfig/internal/infra/fshome"
	"github.com/aalvaropc/vkconfig/internal/infra/homefinder"
	"github.com/aalvaropc/vkconfig/internal/usecase"
)

func initCmd(flags *rootFlags) *cobra.Command {
	var path string
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Create a vkconfig home with the built-in configurations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := path
			if target == "" {
				target = flags.home
			}
			root, err := homefinder.NewResolver().Resolve(target)
			if err != nil {
				return err
			}

			if err := usecase.NewInitHome(fshome.NewInitializer()).Execute(root, force); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized vkconfig home at %s\n", root)
			return nil
		},
	}

	c.Flags().StringVarP(&path, "path", "p", "", "Directory to initialize (defaults to the resolved home)")
	c.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files with the templates")
	return c
}
