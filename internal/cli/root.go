// Package cli wires configuration, the server client and the TUI into the
// qindex command.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"question-index/internal/cache"
	"question-index/internal/config"
	"question-index/internal/infra/logx"
	"question-index/internal/mb"
)

// Version is set at build time.
var Version = "0.1.0"

// debugLogFile receives logs when --debug or DEBUG is set.
const debugLogFile = "debug.log"

type options struct {
	cfgPath string
	debug   bool
	verbose bool
	start   string

	// clientOpts are appended to every client, used by tests.
	clientOpts []mb.Option
}

// NewRootCmd returns the qindex command tree. Running it without a
// subcommand starts the TUI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "qindex",
		Short: "Browse saved questions and collections in the terminal",
		Long: `qindex lists the collections and saved questions on an analytics server.

Without a subcommand it opens an interactive index: collections first,
then every question that is not in a collection.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, o)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.cfgPath, "config", "", "rc file (default ~/"+config.FileName+")")
	pf.String("host", "", "server base URL")
	pf.String("session", "", "session token")
	pf.String("cache-dir", "", "directory for cached responses")
	pf.String("log-level", "", "debug|info|warn|error")
	pf.BoolVar(&o.debug, "debug", false, "write debug logs to "+debugLogFile)
	pf.BoolVar(&o.verbose, "verbose", false, "log large messages without truncation")
	root.Flags().StringVar(&o.start, "start", "/questions", "location to open first")

	root.AddCommand(newListCmd(o), newLoginCmd(o), newCacheCmd(o), newVersionCmd())
	return root
}

func (o *options) path() string {
	if o.cfgPath != "" {
		return o.cfgPath
	}
	return config.DefaultPath()
}

func loadConfig(cmd *cobra.Command, o *options) (config.Config, error) {
	return config.LoadWithFlags(o.path(), cmd.Root().PersistentFlags())
}

// setupLogging routes logs to debug.log in debug mode and to w otherwise.
// On success the closer is never nil.
func setupLogging(o *options, cfg config.Config, w io.Writer) (io.Closer, error) {
	logx.SetVerbose(o.verbose)
	if o.debug || os.Getenv("DEBUG") != "" {
		return logx.ToFile(debugLogFile, logx.LevelDebug)
	}
	logx.SetOutput(w)
	logx.SetMinLevel(logx.ParseLevel(cfg.LogLevel))
	return nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newClient builds a server client with the response cache attached. A
// cache that cannot be opened is logged and skipped.
func newClient(cfg config.Config, o *options) *mb.Client {
	var opts []mb.Option
	if cfg.CacheDir != "" {
		if c, err := cache.Open(cfg.CacheDir); err != nil {
			logx.Warnw("response cache disabled", "dir", cfg.CacheDir, "err", err)
		} else {
			opts = append(opts, mb.WithCache(c))
		}
	}
	if cfg.Session != "" {
		logx.RegisterSecret(cfg.Session)
	}
	opts = append(opts, o.clientOpts...)
	return mb.New(cfg.Host, cfg.Session, opts...)
}
