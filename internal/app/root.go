package app

import (
	"io"
	"os"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/portlist/nu_plugin_port_list/internal/pipeline"
	"github.com/portlist/nu_plugin_port_list/internal/proc"
)

var (
	version   = "0.1.0"
	commit    = ""
	buildDate = ""
)

// SetVersionBuildCommitString records the values injected at link time.
func SetVersionBuildCommitString(v, c, d string) {
	if v != "" {
		version = v
	}
	commit = c
	buildDate = d
}

type rootOptions struct {
	logLevel string
	backend  string
}

func Execute() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "nu_plugin_port_list",
		Short: "nushell plugin listing open TCP and UDP sockets",
		Long: "Registers the `port list` command with nushell. Like netstat it returns every open\n" +
			"connection on the network interfaces, optionally with the owning process.\n\n" +
			"Register it with `plugin add`; nushell starts it with --stdio.",
		SilenceUsage: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.backend, "backend", string(proc.BackendAuto), "socket table backend on linux (auto, netlink, procfs)")

	attachPluginMode(root, opts)
	root.AddCommand(
		newListCmd(opts),
		newTUICmd(opts),
		newVersionCmd(),
	)
	return root
}

func newLogger(w io.Writer, level string) (slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return slog.Logger{}, xerrors.Errorf("unknown log level %q", level)
	}
	return slog.Make(sloghuman.Sink(w)).Leveled(lvl), nil
}

// newPortList wires the pipeline to the OS-backed enumerator and process
// snapshot.
func newPortList(cmd *cobra.Command, opts *rootOptions) (*pipeline.PortList, slog.Logger, error) {
	log, err := newLogger(cmd.ErrOrStderr(), opts.logLevel)
	if err != nil {
		return nil, slog.Logger{}, err
	}
	backend, err := proc.ParseBackend(opts.backend)
	if err != nil {
		return nil, slog.Logger{}, err
	}
	return &pipeline.PortList{
		Sockets:   proc.NewEnumerator(log, backend),
		Processes: proc.NewSnapshotter(log),
		Log:       log.Named("port_list"),
	}, log, nil
}

// bindSwitches declares the port list switches on a flag set.
func bindSwitches(cmd *cobra.Command, flags *pipeline.Flags) {
	for _, sw := range pipeline.Switches {
		cmd.Flags().BoolVarP(flags.Ref(sw.Long), sw.Long, string(sw.Short), false, sw.Desc)
	}
}
