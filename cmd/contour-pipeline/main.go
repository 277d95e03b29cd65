package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/contour-pipeline/internal/batch"
	"github.com/ironsheep/contour-pipeline/internal/config"
	"github.com/ironsheep/contour-pipeline/internal/contour"
	"github.com/ironsheep/contour-pipeline/internal/logging"
	"github.com/ironsheep/contour-pipeline/internal/pipeline"
	"github.com/ironsheep/contour-pipeline/internal/render"
	"github.com/ironsheep/contour-pipeline/internal/server"
	"github.com/ironsheep/contour-pipeline/internal/telemetry"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	envFiles   []string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:   "contour-pipeline",
		Short: "Extract and render region contours from images",
		Long: "Binarize images relative to their brightest pixel, extract region contours,\n" +
			"and write annotated copies plus diagnostic composites.\n\n" +
			"Contour backends: " + strings.Join(contour.Backends(), ", "),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "configuration file (default "+config.DefaultPath+" if present)")
	root.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil, "dotenv files to load before reading configuration (default .env)")

	root.AddCommand(newRunCmd(&flags), newServeCmd(&flags), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "contour-pipeline %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	var (
		workers  int
		dryRun   bool
		jsonOut  bool
		outDir   string
		noFigure bool
	)

	cmd := &cobra.Command{
		Use:   "run [image...]",
		Short: "Process the configured images and any given on the command line",
		Long: `Process every image named by the configuration's scan and images
sections, plus any paths given as arguments (processed with the default
parameters). Each image yields an annotated copy and, unless disabled, a
diagnostic composite. A failing image is reported and the run continues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer env.close()

			cfg := env.cfg
			for _, a := range args {
				cfg.Images = append(cfg.Images, config.ImageConfig{Path: a})
			}
			jobs, err := cfg.Jobs()
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				return fmt.Errorf("no images to process: configure scan or images, or pass paths")
			}

			opts := cfg.BatchOptions()
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}
			if cmd.Flags().Changed("out-dir") {
				opts.OutputDir = outDir
			}
			opts.DryRun = dryRun
			if noFigure {
				opts.WriteFigure = false
			}

			runner := batch.NewRunner(env.pipeline, nil, logging.Component(env.logger, "batch"), opts)
			report := runner.Run(env.ctx, jobs)

			out := cmd.OutOrStdout()
			if jsonOut {
				err = report.WriteJSON(out)
			} else {
				err = report.WriteText(out)
			}
			if err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d images failed", report.Failed, len(report.Outcomes))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "images processed concurrently (overrides batch.workers)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "process without writing any output files")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the run report as JSON")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "write outputs here instead of next to each image")
	cmd.Flags().BoolVar(&noFigure, "no-figure", false, "skip the diagnostic composite")
	return cmd
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer env.close()

			srv := server.New(
				server.WithPipeline(env.pipeline),
				server.WithDefaults(env.cfg.Defaults),
				server.WithBatchOptions(env.cfg.BatchOptions()),
				server.WithLogger(logging.Component(env.logger, "server")),
				server.WithVersion(Version),
			)
			return srv.Run(env.ctx)
		},
	}
}

// environment is the state shared by run and serve.
type environment struct {
	ctx      context.Context
	cfg      *config.Config
	logger   zerolog.Logger
	pipeline *pipeline.Pipeline
	close    func()
}

func setup(parent context.Context, flags *rootFlags) (*environment, error) {
	if parent == nil {
		parent = context.Background()
	}
	if err := config.LoadEnvFiles(flags.envFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	// Logs go to stderr; stdout carries reports and protocol traffic.
	logger, err := logging.New(cfg.LoggingOptions())
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("version", Version).Str("commit", GitCommit).Msg("starting")

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	closers := []func(){stop}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Tracing.Enabled {
		shutdown, err := telemetry.InitTracer(cfg.Tracing.ServiceName, os.Stderr, logging.Component(logger, "telemetry"))
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("initializing tracing: %w", err)
		}
		closers = append(closers, func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				logger.Warn().Err(err).Msg("tracer shutdown failed")
			}
		})
	}

	finder, err := contour.Lookup(cfg.Batch.Backend)
	if err != nil {
		closeAll()
		return nil, err
	}
	stroke, err := render.ParseColor(cfg.Output.StrokeColor)
	if err != nil {
		closeAll()
		return nil, err
	}

	p := pipeline.New(
		pipeline.WithFinder(finder),
		pipeline.WithStroke(stroke),
		pipeline.WithStrokeWidth(cfg.Output.StrokeWidth),
	)

	return &environment{
		ctx:      ctx,
		cfg:      cfg,
		logger:   logger,
		pipeline: p,
		close:    closeAll,
	}, nil
}
