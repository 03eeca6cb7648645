package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/portlist/nu_plugin_port_list/internal/nuplugin"
	"github.com/portlist/nu_plugin_port_list/internal/pipeline"
	"github.com/portlist/nu_plugin_port_list/pkg/model"
)

const (
	commandName        = "port list"
	commandCategory    = "Network"
	commandDescription = "Like netstat this command will return every open connection on the network interface"
)

// attachPluginMode makes the root command serve the plugin protocol when
// nushell launches it with --stdio.
func attachPluginMode(root *cobra.Command, opts *rootOptions) {
	var (
		stdio    bool
		encoding string
	)
	root.Flags().BoolVar(&stdio, "stdio", false, "serve the nushell plugin protocol on stdin/stdout")
	root.Flags().StringVar(&encoding, "encoding", string(nuplugin.EncodingMsgpack), "plugin protocol encoding (msgpack, json)")
	root.RunE = func(cmd *cobra.Command, _ []string) error {
		if !stdio {
			return cmd.Help()
		}
		enc, err := nuplugin.ParseEncoding(encoding)
		if err != nil {
			return err
		}
		list, log, err := newPortList(cmd, opts)
		if err != nil {
			return err
		}
		return nuplugin.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), nuplugin.Options{
			Version:  version,
			Encoding: enc,
			Log:      log,
			Commands: []nuplugin.Command{portListCommand(list)},
		})
	}
}

// portListCommand registers the pipeline under its shell signature.
func portListCommand(list *pipeline.PortList) nuplugin.Command {
	switches := make([]nuplugin.Flag, 0, len(pipeline.Switches))
	for _, sw := range pipeline.Switches {
		switches = append(switches, nuplugin.Flag{Long: sw.Long, Short: sw.Short, Desc: sw.Desc})
	}
	return nuplugin.Command{
		Signature: nuplugin.Signature{
			Name:        commandName,
			Description: commandDescription,
			Category:    commandCategory,
			SearchTerms: []string{"netstat", "socket", "tcp", "udp", "connections"},
			Switches:    switches,
		},
		Run: func(ctx context.Context, call *nuplugin.Call) (model.Value, error) {
			rows, err := list.Run(ctx, pipeline.FlagsFrom(call.HasFlag))
			if err != nil {
				return model.Value{}, err
			}
			vals := make([]model.Value, 0, len(rows))
			for _, r := range rows {
				vals = append(vals, model.RecordValue(r))
			}
			return model.List(vals...), nil
		},
	}
}
