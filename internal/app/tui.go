package app

import (
	"github.com/spf13/cobra"

	"github.com/portlist/nu_plugin_port_list/internal/pipeline"
	"github.com/portlist/nu_plugin_port_list/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	var flags pipeline.Flags
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the port list interactively",
		Long:  "Browse a port list snapshot. Press r to take a new one; the switch letters toggle the matching flag.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, _, err := newPortList(cmd, opts)
			if err != nil {
				return err
			}
			return tui.Start(cmd.Context(), list, flags, version)
		},
	}
	bindSwitches(cmd, &flags)
	return cmd
}
