package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xrank/lib/infra"
	"github.com/benz9527/xrank/lib/wordfreq"
	"github.com/benz9527/xrank/observability"
	"github.com/benz9527/xrank/xlog"
)

const ctxKeyCommand xlog.ContextKey = "command"

// reportTask prints one view of the counted words.
type reportTask func(w io.Writer, format wordfreq.Format, r *wordfreq.Report) error

type runTask struct {
	files  []string
	render reportTask
}

type ioStreams struct {
	out    io.Writer
	errOut io.Writer
}

func newXLogger(lc fx.Lifecycle, cfg *config) (xlog.XLogger, error) {
	enc, err := xlog.LogEncoderOf(cfg.LogEncoder)
	if err != nil {
		return nil, err
	}
	logger := xlog.NewXLogger(
		xlog.WithXLoggerWriter(xlog.StdErr),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerLevel(xlog.LogLevelOf(cfg.LogLevel)),
		xlog.WithXLoggerContextFieldExtract(string(ctxKeyCommand)),
	)
	lc.Append(fx.StopHook(func() {
		_ = logger.Sync()
	}))
	return logger, nil
}

func newFxLogger(logger xlog.XLogger) fxevent.Logger {
	return xlog.NewFxXLogger(logger)
}

// metricsEnabled is resolved before any instrument is created, so the
// tree stats bind to the stdout meter provider.
type metricsEnabled bool

func newMetrics(lc fx.Lifecycle, cfg *config, streams ioStreams) (metricsEnabled, error) {
	if !cfg.Metrics {
		return false, nil
	}
	shutdown, err := observability.NewConsoleMetricsExporter(streams.errOut, time.Minute, 5*time.Second)
	if err != nil {
		return false, err
	}
	if err = observability.InitAppStats("xrank"); err != nil {
		return false, err
	}
	lc.Append(fx.StopHook(func(ctx context.Context) error {
		return shutdown(ctx)
	}))
	return true, nil
}

func newCounter(cfg *config, logger xlog.XLogger, metrics metricsEnabled) (*wordfreq.Counter, error) {
	opts := []wordfreq.CounterOption{
		wordfreq.WithCounterRoot(cfg.Root),
		wordfreq.WithCounterMinLen(cfg.MinLen),
		wordfreq.WithCounterLogger(logger),
	}
	if cfg.Workers > 0 {
		opts = append(opts, wordfreq.WithCounterWorkers(cfg.Workers))
	}
	if metrics {
		opts = append(opts, wordfreq.WithCounterStats("words"))
	}
	return wordfreq.NewCounter(opts...)
}

func adjustMaxProcs(lc fx.Lifecycle, logger xlog.XLogger) error {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.DebugLevel, format, args...)
	}))
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "set GOMAXPROCS")
	}
	lc.Append(fx.StopHook(undo))
	return nil
}

type runParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config
	Logger    xlog.XLogger
	Counter   *wordfreq.Counter
	Streams   ioStreams
	Task      runTask
}

func registerRun(p runParams) {
	p.Lifecycle.Append(fx.StartHook(func(ctx context.Context) error {
		format, err := wordfreq.FormatOf(p.Config.Format)
		if err != nil {
			return err
		}

		begin := time.Now()
		if err = p.Counter.CountFiles(ctx, p.Task.files...); err != nil {
			return err
		}
		report := wordfreq.NewReport(p.Counter.Words().Snapshot())
		p.Logger.InfoContext(ctx, "counted",
			zap.Int64("inputs", p.Counter.Inputs()),
			zap.Int64("distinct", report.Distinct()),
			zap.Int64("total", report.Total()),
			zap.Duration("cost", time.Since(begin)),
		)

		if p.Config.Verify {
			if err = report.Validate(); err != nil {
				p.Logger.ErrorStackContext(ctx, err, "verify failed")
				return err
			}
			p.Logger.InfoContext(ctx, "verified")
		}
		return p.Task.render(p.Streams.out, format, report)
	}))
}

// runApp counts the files in the fx start phase and prints the view
// by task, then stops the app to flush the logger and the metrics.
func runApp(cmd *cobra.Command, cfg *config, files []string, task reportTask) error {
	streams := ioStreams{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	app := fx.New(
		fx.Supply(cfg, streams, runTask{files: files, render: task}),
		fx.Provide(
			newXLogger,
			newMetrics,
			newCounter,
		),
		fx.WithLogger(newFxLogger),
		fx.Invoke(adjustMaxProcs, registerRun),
	)
	if err := app.Err(); err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx := context.WithValue(parent, ctxKeyCommand, cmd.Name())
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := app.Start(ctx); err != nil {
		return err
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	return app.Stop(stopCtx)
}
