package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"gatorlibrary/catalog"
	"gatorlibrary/internal/command"
	"gatorlibrary/internal/config"
)

type rootFlags struct {
	configPath  string
	output      string
	logLevel    string
	metricsFile string
	trace       string
	verify      bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:   "gatorlibrary [flags] <input-file>",
		Short: "Run a library command file against an in-memory catalogue",
		Long: `gatorlibrary reads one command per line from the input file (InsertBook,
BorrowBook, ReturnBook, DeleteBook, PrintBook, PrintBooks, FindClosestBook,
ColorFlipCount, Quit) and writes the results next to it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return run(cmd, cfg, args[0], flags.output)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	f.StringVarP(&flags.output, "output", "o", "", "report path (default: input path with the configured suffix)")
	f.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when the run ends")
	f.StringVar(&flags.trace, "trace", "", "span exporter: none or stdout")
	f.BoolVar(&flags.verify, "verify", false, "check tree invariants after every mutation")
	return cmd
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command, flags rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if f.Changed("metrics-file") {
		cfg.MetricsFile = flags.metricsFile
	}
	if f.Changed("trace") {
		cfg.Tracing.Exporter = flags.trace
	}
	if f.Changed("verify") {
		cfg.VerifyInvariants = flags.verify
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, cfg config.Config, inputPath, outputPath string) (err error) {
	runID := uuid.NewString()
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log).With(slog.String("run_id", runID))
	if outputPath == "" {
		outputPath = reportPath(inputPath, cfg.OutputSuffix)
	}

	tp, err := newTracerProvider(cfg.Tracing, cmd.OutOrStdout(), runID)
	if err != nil {
		return err
	}
	execOpts := []command.Option{
		command.WithLogger(logger),
		command.WithVerify(cfg.VerifyInvariants),
	}
	if tp != nil {
		defer func() {
			// Shutdown flushes the batcher; the run may already be cancelled.
			if serr := tp.Shutdown(context.WithoutCancel(cmd.Context())); serr != nil {
				logger.Error("failed to flush spans", slog.String("error", serr.Error()))
			}
		}()
		execOpts = append(execOpts, command.WithTracerProvider(tp))
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open the input file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create the report file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close the report file: %w", cerr)
		}
	}()

	reg := prometheus.NewRegistry()
	cat := catalog.New(
		catalog.WithWaitlistCapacity(cfg.WaitlistCapacity),
		catalog.WithMetrics(catalog.NewMetrics(reg)),
		catalog.WithLogger(logger),
	)
	exec := command.NewExecutor(cat, out, execOpts...)

	logger.Info("run started",
		slog.String("input", inputPath),
		slog.String("output", outputPath),
		slog.Int("waitlist_capacity", cfg.WaitlistCapacity),
	)
	start := time.Now()
	runErr := exec.Run(cmd.Context(), in)

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			logger.Error("failed to write metrics", slog.String("path", cfg.MetricsFile), slog.String("error", err.Error()))
		}
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("run finished",
		slog.Int("books", cat.Len()),
		slog.Int("color_flips", cat.FlipCount()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// reportPath swaps the input file's extension for suffix.
func reportPath(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
