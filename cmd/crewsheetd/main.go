package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/crewsheet/internal/app"
	"github.com/joseph-ayodele/crewsheet/internal/async"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/ingest"
	"github.com/joseph-ayodele/crewsheet/internal/metrics"
	"github.com/joseph-ayodele/crewsheet/internal/pipeline"
	"github.com/joseph-ayodele/crewsheet/internal/server"
)

func main() {
	var (
		configPath string
		pdftotext  string
	)
	cmd := &cobra.Command{
		Use:   "crewsheetd",
		Short: "Contact extraction daemon: gRPC API, inbox watcher and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := common.LoadConfigFile(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, pdftotext)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", os.Getenv("CREWSHEET_CONFIG"), "YAML config file")
	cmd.Flags().StringVar(&pdftotext, "pdftotext", "", "pdftotext binary used when a PDF has no text layer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, pdftotext string) error {
	logger := common.NewLogger(cfg.Log, os.Stdout)
	m := metrics.New()

	a, err := app.Build(ctx, cfg, logger, app.Options{Metrics: m, Pdftotext: pdftotext})
	if err != nil {
		logger.Error("crewsheetd.build.failed", "err", err)
		return err
	}
	defer a.Close()

	queueOpts := append(async.FromConfig(cfg.Queue), async.WithResultHandler(func(_ async.Job, _ pipeline.Outcome, err error) {
		m.ObserveJob(err)
	}))
	queue := async.NewExtractionQueue(a.Processor, logger, queueOpts...)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("crewsheetd.listen.failed", "addr", cfg.Server.GRPCAddr, "err", err)
		return err
	}
	srv := server.New(server.NewContactsServer(a.Processor, a.Extractor, a.Runs, a.Exporter, logger), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx, lis) })
	if cfg.Server.MetricsAddr != "" {
		g.Go(func() error { return m.Serve(gctx, cfg.Server.MetricsAddr, logger) })
	}
	if len(cfg.Watch.Dirs) > 0 {
		ing := ingest.NewIngestor(queue, entity.Options{}, logger)
		g.Go(func() error {
			err := ing.Run(gctx, ingest.WatchConfig{
				Roots:       cfg.Watch.Dirs,
				InitialScan: true,
				Debounce:    cfg.Watch.Debounce,
				SkipHidden:  true,
			})
			if gctx.Err() != nil {
				return nil
			}
			return err
		})
	}

	logger.Info("crewsheetd.started",
		"grpc", cfg.Server.GRPCAddr,
		"metrics", cfg.Server.MetricsAddr,
		"db", cfg.Database.Driver,
		"cache", cfg.Cache.Backend,
		"ai", cfg.LLMEnabled(),
		"watch", cfg.Watch.Dirs,
	)
	err = g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	logger.Info("crewsheetd.stopped")
	return err
}
