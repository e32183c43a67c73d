// Package app runs one coordinate validation pass: load the params and the
// reference table, find the applicable record, compare, report a discrepancy
// to the issue tracker, and write the result artifact.
//
// Stages return errors to a single handler. Any loader error, including a
// cancelled context or a recovered panic, aborts the run before any output;
// every later error is logged and the run still writes its result.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/coordcheck/internal/adapters/issues"
	"github.com/okian/coordcheck/internal/adapters/reference"
	"github.com/okian/coordcheck/internal/adapters/result"
	"github.com/okian/coordcheck/internal/config"
	"github.com/okian/coordcheck/internal/domain/evaluation"
	"github.com/okian/coordcheck/internal/domain/matching"
	"github.com/okian/coordcheck/internal/domain/model"
	"github.com/okian/coordcheck/internal/domain/types"
	"github.com/okian/coordcheck/pkg/logger"
	"github.com/okian/coordcheck/pkg/metrics"
)

// IssueReporter creates an issue in the tracker.
type IssueReporter interface {
	Report(ctx context.Context, issue issues.Issue) (issues.Receipt, error)
}

// Inputs are everything a run needs from its caller.
type Inputs struct {
	ConfigPath     string
	ReferencesPath string
	ResultPath     string
	Extracted      model.ExtractedCoordinates
}

// Outcome summarises a run for callers and tests.
type Outcome struct {
	RunID      string
	Config     *config.Config
	References []model.ReferenceRecord
	Match      matching.Result
	Comparison *model.ComparisonResult

	IssueReported bool
	Receipt       issues.Receipt

	Artifact      result.Artifact
	ResultWritten bool

	// Errors holds the recovered, non-fatal stage errors.
	Errors []*StageError
}

// Runner executes validation runs.
type Runner struct {
	logger   logger.Logger
	metrics  *metrics.Manager
	reporter IssueReporter
	runID    func() string
	now      func() time.Time
}

// New constructs a Runner with default configuration. Without WithLogger it
// logs through the global logger, falling back to slog.Default when
// logger.Init has not run.
func New(opts ...Option) *Runner {
	r := &Runner{
		runID: uuid.NewString,
		now:   time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logger.Default()
	}
	if r.metrics == nil {
		r.metrics = metrics.Default()
	}
	return r
}

// Run executes one pass over in. The returned error is non-nil only when the
// run was aborted or its result could not be written; Outcome is always
// returned and describes how far the run got.
func (r *Runner) Run(ctx context.Context, in Inputs) (*Outcome, error) {
	out := &Outcome{RunID: r.runID()}
	log := r.logger.With(logger.String("run_id", out.RunID))

	log.Info(ctx, "Project base point acquired!", logger.String("base_point", in.Extracted.BasePoint.String()))
	log.Info(ctx, "Survey point acquired!", logger.String("survey_point", in.Extracted.SurveyPoint.String()))
	log.Info(ctx, "True north angle acquired!", logger.Float64("true_north_angle", in.Extracted.TrueNorthAngle))

	// Loaders: fatal on failure.
	if err := r.stage(ctx, log, out, types.StageLoadConfig, func(ctx context.Context) error {
		cfg, err := config.Load(ctx, in.ConfigPath)
		if err != nil {
			return err
		}
		out.Config = cfg
		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			log.Warn(ctx, "invalid logLevel; keeping current level", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		}
		log.Info(ctx, "Parameters acquired!",
			logger.String("file_name", cfg.FileName),
			logger.Float64("tolerance", cfg.Tolerance),
			logger.String("project_id", cfg.ProjectID),
		)
		return nil
	}); err != nil {
		return out, err
	}

	if err := r.stage(ctx, log, out, types.StageLoadReferences, func(ctx context.Context) error {
		records, err := reference.Load(ctx, in.ReferencesPath)
		if err != nil {
			return err
		}
		out.References = records
		r.metrics.SetReferenceRecords(len(records))
		log.Info(ctx, "Coordinates acquired!", logger.Int("records", len(records)))
		return nil
	}); err != nil {
		return out, err
	}

	// From here on nothing aborts the run; errors are recorded in out.Errors.
	_ = r.stage(ctx, log, out, types.StageMatch, func(ctx context.Context) error {
		out.Match = matching.Match(out.References, out.Config.FileName)
		r.recordMatch(ctx, log, out.Config.FileName, out.Match)
		return nil
	})

	if out.Match.Found {
		_ = r.stage(ctx, log, out, types.StageEvaluate, func(ctx context.Context) error {
			cmp := evaluation.Evaluate(out.Match.Record, in.Extracted, out.Config.Tolerance)
			out.Comparison = &cmp
			r.metrics.SetPointDistance(metrics.PointBase, cmp.BasePointDistance)
			r.metrics.SetPointDistance(metrics.PointSurvey, cmp.SurveyPointDistance)
			log.Info(ctx, "Coordinates compared",
				logger.String("code", cmp.Record.Code),
				logger.Float64("base_point_distance", cmp.BasePointDistance),
				logger.Float64("survey_point_distance", cmp.SurveyPointDistance),
				logger.Bool("mismatch", cmp.Mismatch),
			)
			return nil
		})
	}

	if out.Comparison != nil && out.Comparison.Mismatch {
		r.metrics.RecordMismatch()
		_ = r.stage(ctx, log, out, types.StageReportIssue, func(ctx context.Context) error {
			return r.report(ctx, log, out, in.Extracted)
		})
	}

	var matched *model.ReferenceRecord
	if out.Match.Found {
		matched = &out.Match.Record
	}
	out.Artifact = result.NewArtifact(in.Extracted, matched)

	if err := r.stage(ctx, log, out, types.StageWriteResult, func(ctx context.Context) error {
		if err := result.Write(ctx, in.ResultPath, out.Artifact); err != nil {
			return err
		}
		out.ResultWritten = true
		r.metrics.MarkCompleted(r.now())
		log.Info(ctx, "Result written", logger.String("path", in.ResultPath))
		return nil
	}); err != nil {
		return out, err
	}
	if !out.ResultWritten {
		return out, out.Errors[len(out.Errors)-1]
	}
	return out, nil
}

// report sends the discrepancy to the tracker.
func (r *Runner) report(ctx context.Context, log logger.Logger, out *Outcome, extracted model.ExtractedCoordinates) error {
	cfg := out.Config
	rep := r.reporter
	if rep == nil {
		rep = issues.New(
			issues.WithBaseURL(cfg.TrackerBaseURL),
			issues.WithTimeout(cfg.TrackerTimeout),
			issues.WithLogger(log.Named("issues")),
		)
	}

	receipt, err := rep.Report(ctx, issues.Issue{
		FileName:       cfg.FileName,
		VersionURN:     cfg.VersionURN,
		ProjectID:      cfg.ProjectID,
		IssueSubTypeID: cfg.IssueSubTypeID,
		AssigneeID:     cfg.UserID,
		Token:          cfg.Token,
		RequestID:      out.RunID,
		Extracted:      extracted,
		Correct:        out.Match.Record,
	})
	out.Receipt = receipt
	if err != nil {
		r.metrics.RecordIssueReport(metrics.ReportFailed)
		return err
	}

	out.IssueReported = true
	r.metrics.RecordIssueReport(metrics.ReportCreated)
	log.Info(ctx, "Issue created!", logger.Int("status", receipt.StatusCode))
	return nil
}

func (r *Runner) recordMatch(ctx context.Context, log logger.Logger, fileName string, m matching.Result) {
	switch {
	case !m.Found:
		r.metrics.RecordMatch(metrics.MatchNone)
		log.Warn(ctx, "no reference record matches file; skipping comparison", logger.String("file_name", fileName))
		return
	case m.Ambiguous():
		r.metrics.RecordMatch(metrics.MatchAmbiguous)
		log.Warn(ctx, "several reference codes match file; using the first in table order",
			logger.String("file_name", fileName),
			logger.String("code", m.Record.Code),
			logger.Any("shadowed", m.Shadowed),
		)
	default:
		r.metrics.RecordMatch(metrics.MatchFound)
	}
	log.Info(ctx, "Correct coordinates acquired!",
		logger.String("code", m.Record.Code),
		logger.Int("row", m.Index+1),
	)
}

// stage runs fn, times it and hands any error to the run's error policy.
// It returns a *StageError only when the error must abort the run.
func (r *Runner) stage(ctx context.Context, log logger.Logger, out *Outcome, stage types.Stage, fn func(context.Context) error) (serr error) {
	start := r.now()
	defer func() {
		r.metrics.ObserveStage(stage.String(), r.now().Sub(start))
	}()

	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		return fn(ctx)
	}()
	if err == nil {
		return nil
	}
	return r.handle(ctx, log, out, &StageError{Stage: stage, Err: err})
}

// handle is the single place that decides between aborting and carrying on.
func (r *Runner) handle(ctx context.Context, log logger.Logger, out *Outcome, serr *StageError) error {
	fatal := serr.Fatal()
	r.metrics.RecordStageError(serr.Stage.String(), fatal)

	if fatal {
		log.Error(ctx, "run aborted", logger.String("stage", serr.Stage.String()), logger.Error(serr.Err))
		return serr
	}

	log.Error(ctx, "stage failed; continuing", logger.String("stage", serr.Stage.String()), logger.Error(serr.Err))
	out.Errors = append(out.Errors, serr)
	return nil
}
