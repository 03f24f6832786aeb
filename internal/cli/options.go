package cli

import (
	"errors"
	"io"

	"github.com/spf13/pflag"

	"github.com/andyrewlee/scrollwin/internal/config"
	"github.com/andyrewlee/scrollwin/internal/source"
)

var (
	errFileAndCommand = errors.New("give either a file or --cmd, not both")
	errNoInput        = errors.New("nothing to follow: pass a file, --cmd, or pipe into stdin")
)

// options holds the root command's flags.
type options struct {
	command   string
	visible   int
	expand    int
	maxLines  int
	noFollow  bool
	tailBytes int64
	debug     bool
}

// apply overrides config values with flags the user actually set.
func (o *options) apply(cfg *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("visible") {
		cfg.Window.VisibleCount = o.visible
	}
	if flags.Changed("expand") {
		cfg.Window.ExpandDistance = o.expand
	}
	if flags.Changed("max-lines") {
		cfg.History.MaxLines = o.maxLines
	}
	if o.noFollow {
		cfg.Window.Follow = false
	}
	if flags.Changed("tail-bytes") {
		cfg.TailBytes = o.tailBytes
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
}

// newSource picks the line source for the invocation. stdin is used only
// when it is not a terminal.
func (o *options) newSource(cfg *config.Config, args []string, stdin io.Reader, stdinIsTTY bool) (source.Source, error) {
	readerCfg := source.DefaultReaderConfig()
	readerCfg.FrameInterval = cfg.FrameInterval

	switch {
	case o.command != "" && len(args) > 0:
		return nil, errFileAndCommand
	case o.command != "":
		return source.NewCommand(o.command, "", nil, readerCfg), nil
	case len(args) == 1:
		return source.NewFile(args[0], cfg.TailBytes, readerCfg), nil
	case !stdinIsTTY && stdin != nil:
		return source.NewReader("stdin", stdin, readerCfg), nil
	default:
		return nil, errNoInput
	}
}
