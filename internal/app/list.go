package app

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/portlist/nu_plugin_port_list/internal/output"
	"github.com/portlist/nu_plugin_port_list/internal/pipeline"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		flags   pipeline.Flags
		asJSON  bool
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the port list rows without a shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, _, err := newPortList(cmd, opts)
			if err != nil {
				return err
			}
			rows, err := list.Run(cmd.Context(), flags)
			if err != nil {
				return err
			}

			if asJSON {
				out, err := output.ToJSON(rows)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			color := !noColor && os.Getenv("NO_COLOR") == "" && isTerminal(cmd)
			fmt.Fprintln(cmd.OutOrStdout(), output.Table(rows, color))
			return nil
		},
	}
	bindSwitches(cmd, &flags)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rows as a JSON array")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors")
	return cmd
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
