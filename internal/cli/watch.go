package cli

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/vkconfig/internal/domain"
)

func watchCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rescan layers whenever a manifest changes, until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
			defer stop()

			h, err := loadHome(ctx, flags)
			if err != nil {
				return err
			}
			defer h.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %d search paths (%d layers). Press Ctrl+C to stop.\n",
				len(h.scanner.Dirs()), len(h.registry.AvailableLayers()))

			return h.registry.Watch(ctx, func(layers []domain.Layer, err error) {
				ts := time.Now().Format(time.TimeOnly)
				if err != nil {
					fmt.Fprintf(out, "%s  refresh failed: %v\n", ts, err)
					return
				}
				fmt.Fprintf(out, "%s  %d layers\n", ts, len(layers))
			})
		},
	}
}
