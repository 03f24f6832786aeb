// Package cli is the scrollwin command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// BuildInfo identifies the binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("scrollwin %s (commit: %s, built: %s)", b.Version, b.Commit, b.Date)
}

// Run executes the scrollwin CLI. It returns a process exit code.
func Run(args []string, info BuildInfo) int {
	root := buildRootCommand(info, runViewer)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "scrollwin:", err)
		return 1
	}
	return 0
}

// viewerFunc runs the viewer; replaced in tests.
type viewerFunc func(cmd *cobra.Command, args []string, opts *options) error

func buildRootCommand(info BuildInfo, run viewerFunc) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "scrollwin [file]",
		Short: "Follow a growing log in the terminal",
		Long: `scrollwin - follow a file, a command or stdin without slowing down

Examples:
  scrollwin /var/log/syslog       Follow a file, tail -F style
  scrollwin --cmd "make test"     Follow a command's output
  journalctl -f | scrollwin       Follow stdin`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}
	root.Version = info.Version
	root.SetVersionTemplate(info.String() + "\n")
	root.SetHelpCommand(&cobra.Command{Hidden: true})
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.Flags()
	flags.StringVarP(&opts.command, "cmd", "c", "", "run a shell command and follow its output")
	flags.IntVar(&opts.visible, "visible", 0, "lines kept materialized in the window")
	flags.IntVar(&opts.expand, "expand", 0, "distance from a window edge, in row units, that grows the window")
	flags.IntVar(&opts.maxLines, "max-lines", 0, "lines retained before the oldest are trimmed")
	flags.BoolVar(&opts.noFollow, "no-follow", false, "start at the top instead of following the tail")
	flags.Int64Var(&opts.tailBytes, "tail-bytes", 0, "bytes of an existing file to show on start (-1 for all)")
	flags.BoolVar(&opts.debug, "debug", false, "log at debug level")

	root.AddCommand(buildVersionCommand(info))
	root.AddCommand(buildConfigCommand())
	return root
}

func buildVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
		},
	}
}

func buildConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := cfg.Effective()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
