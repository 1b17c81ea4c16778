package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/crewsheet/internal/app"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/server"
)

var version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
	output     string // table | json | csv
	remote     string
	timeout    time.Duration
}

// cli carries what PersistentPreRunE set up through the command tree.
type cli struct {
	opts   rootOptions
	cfg    *common.Config
	stdout io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	c := &cli{stdout: stdout}

	cmd := &cobra.Command{
		Use:     "crewsheet",
		Short:   "Extract crew contacts from call sheets and crew lists",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := common.LoadConfigFile(c.opts.configPath)
			if err != nil {
				return err
			}
			if c.opts.logLevel != "" {
				cfg.Log.Level = c.opts.logLevel
			}
			switch c.opts.output {
			case "table", "json", "csv":
			default:
				return fmt.Errorf("unknown output format %q", c.opts.output)
			}
			c.cfg = cfg
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&c.opts.configPath, "config", "c", "", "YAML config file (env vars still override)")
	pf.StringVar(&c.opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&c.opts.output, "output", "o", "table", "output format: table|json|csv")
	pf.StringVar(&c.opts.remote, "server", "", "crewsheetd address; run locally when empty")
	pf.DurationVar(&c.opts.timeout, "timeout", 2*time.Minute, "overall command timeout")

	cmd.AddCommand(
		newExtractCommand(c),
		newBatchCommand(c),
		newExportCommand(c),
		newClassifyCommand(c),
		newRunsCommand(c),
	)
	return cmd
}

func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, _ := common.EnsureRequestID(cmd.Context())
	return context.WithTimeout(ctx, c.opts.timeout)
}

// local builds the in-process stack; logs go to stderr so stdout stays clean.
func (c *cli) local(ctx context.Context, opts app.Options) (*app.App, error) {
	logger := common.NewLogger(c.cfg.Log, os.Stderr)
	return app.Build(ctx, c.cfg, logger, opts)
}

// client dials --server; the returned func closes the connection.
func (c *cli) client() (*server.Client, func(), error) {
	conn, err := server.Dial(c.opts.remote)
	if err != nil {
		return nil, nil, err
	}
	return server.NewClient(conn), func() { _ = conn.Close() }, nil
}
