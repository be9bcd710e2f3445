package cli

import (
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	home  string
	debug bool
}

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:          "vkconfig",
		Short:        "Manage Vulkan layer configurations",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.home, "home", "", "vkconfig home directory (default: $VKCONFIG_HOME, nearest vkconfig.yaml, or the user config dir)")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable verbose logging to <home>/logs/vkconfig.log")

	cmd.AddCommand(
		initCmd(flags),
		versionCmd(),
		layersCmd(flags),
		configsCmd(flags),
		watchCmd(flags),
	)
	return cmd
}
