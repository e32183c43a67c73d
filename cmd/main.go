package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/coordcheck/internal/adapters/host"
	app "github.com/okian/coordcheck/internal/app"
	"github.com/okian/coordcheck/pkg/logger"
	"github.com/okian/coordcheck/pkg/metrics"
)

// Default file names, matching what the host drops in the working directory.
const (
	defaultConfigPath     = "params.json"
	defaultReferencesPath = "coordinates.csv"
	defaultExtractedPath  = "extracted.json"
	defaultResultPath     = "result.json"
)

type flags struct {
	configPath     string
	referencesPath string
	extractedPath  string
	resultPath     string
	metricsPath    string
	metricsNS      string
	metricsLabels  map[string]string
	logFormat      string
}

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "coordcheck",
		Short: "Validate a model's base and survey points against known-correct coordinates",
		Long: `coordcheck compares the project base point and survey point extracted from a
building model with the reference coordinates recorded for that model, writes
a result artifact, and opens an issue in the construction issue tracker when
the points are further apart than the configured tolerance.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", defaultConfigPath, "run parameters (JSON or YAML)")
	fs.StringVar(&f.referencesPath, "references", defaultReferencesPath, "reference coordinates table (.csv or .xlsx)")
	fs.StringVar(&f.extractedPath, "extracted", defaultExtractedPath, "coordinates extracted by the host (JSON)")
	fs.StringVar(&f.resultPath, "output", defaultResultPath, "result artifact to write")
	fs.StringVar(&f.metricsPath, "metrics-file", "", "write Prometheus metrics to this textfile")
	fs.StringVar(&f.metricsNS, "metrics-namespace", "coordcheck", "namespace prefixed to every metric name")
	fs.StringToStringVar(&f.metricsLabels, "metrics-label", nil, "constant label added to every metric, e.g. site=north (repeatable)")
	fs.StringVar(&f.logFormat, "log-format", string(logger.FormatText), "log output format: text or json")

	return cmd
}

func run(ctx context.Context, f *flags) error {
	format, err := logger.ParseFormat(f.logFormat)
	if err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return err
	}
	if err := logger.Init(logger.WithFormat(format)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return err
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logging: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	extracted, err := host.LoadExtracted(ctx, f.extractedPath)
	if err != nil {
		log.Error(ctx, "failed to read extracted coordinates", logger.String("path", f.extractedPath), logger.Error(err))
		return err
	}

	m := metrics.NewManager(
		metrics.WithNamespace(f.metricsNS),
		metrics.WithConstLabels(f.metricsLabels),
	)
	runner := app.New(app.WithLogger(log), app.WithMetrics(m))
	out, runErr := runner.Run(ctx, app.Inputs{
		ConfigPath:     f.configPath,
		ReferencesPath: f.referencesPath,
		ResultPath:     f.resultPath,
		Extracted:      extracted,
	})

	if f.metricsPath != "" {
		if err := m.WriteTextfile(f.metricsPath); err != nil {
			log.Warn(ctx, "failed to write metrics", logger.String("path", f.metricsPath), logger.Error(err))
		}
	}

	if runErr != nil {
		return runErr
	}

	fields := []logger.Field{
		logger.String("run_id", out.RunID),
		logger.Bool("matched", out.Match.Found),
		logger.Bool("issue_reported", out.IssueReported),
		logger.Int("recovered_errors", len(out.Errors)),
	}
	if out.Comparison != nil {
		fields = append(fields, logger.Bool("mismatch", out.Comparison.Mismatch))
	}
	log.Info(ctx, "run completed", fields...)
	return nil
}
