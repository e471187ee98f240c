package xlog

import (
	"context"
	"errors"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func TestFxXLogger(t *testing.T) {
	out := withMemOut(t)
	logger := NewXLogger(
		WithXLoggerWriter(testMemAsOut),
		WithXLoggerLevel(LogLevelDebug),
	)

	type words struct{ n int }
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return NewFxXLogger(logger)
		}),
		fx.Provide(func() *words { return &words{n: 3} }),
		fx.Invoke(func(lc fx.Lifecycle, w *words) {
			lc.Append(fx.StartHook(func() error {
				require.Equal(t, 3, w.n)
				return nil
			}))
		}),
	)
	require.NoError(t, app.Err())
	require.NoError(t, app.Start(context.Background()))
	require.NoError(t, app.Stop(context.Background()))

	lines := out.lines()
	require.NotEmpty(t, lines)
	for _, line := range lines {
		res := decodeLine(t, line)
		require.Equal(t, "Fx", res["component"])
		require.Nil(t, res["callAt"])
	}

	var nilLogger *FxXLogger
	nilLogger.LogEvent(&fxevent.Started{})
	(&FxXLogger{}).LogEvent(&fxevent.Started{})
	require.Empty(t, out.lines())
}

func TestFxXLogger_Errors(t *testing.T) {
	out := withMemOut(t)
	fxLogger := NewFxXLogger(NewXLogger(WithXLoggerWriter(testMemAsOut)))

	failed := errors.New("boom")
	fxLogger.LogEvent(&fxevent.OnStartExecuted{FunctionName: "count", Err: failed})
	fxLogger.LogEvent(&fxevent.Invoked{FunctionName: "report", Err: failed})
	fxLogger.LogEvent(&fxevent.Invoked{FunctionName: "report"})
	fxLogger.LogEvent(&fxevent.RollingBack{StartErr: failed})

	lines := out.lines()
	require.Len(t, lines, 3)
	for _, line := range lines {
		res := decodeLine(t, line)
		require.Equal(t, "ERROR", res["lvl"])
		require.Equal(t, "boom", res["error"])
	}
}

func TestAntsXLogger(t *testing.T) {
	out := withMemOut(t)
	antsLogger := NewAntsXLogger(NewXLogger(WithXLoggerWriter(testMemAsOut)))

	pool, err := ants.NewPool(1, ants.WithLogger(antsLogger))
	require.NoError(t, err)
	defer pool.Release()

	done := make(chan struct{})
	require.NoError(t, pool.Submit(func() {
		defer close(done)
		antsLogger.Printf("worker %s exits with panic: %v", "w-1", "nil map")
	}))
	<-done

	lines := out.lines()
	require.Len(t, lines, 1)
	res := decodeLine(t, lines[0])
	require.Equal(t, "Ants", res["component"])
	require.Equal(t, "ERROR", res["lvl"])
	require.Equal(t, "worker w-1 exits with panic: nil map", res["msg"])

	var nilLogger *AntsXLogger
	nilLogger.Printf("ignored")
}
