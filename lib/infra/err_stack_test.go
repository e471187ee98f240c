package infra

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFrameFormat(t *testing.T) {
	frame := callers(2)[0]

	testcases := []struct {
		format string
		check  func(t *testing.T, res string)
	}{
		{
			"%s",
			func(t *testing.T, res string) {
				require.Equal(t, "err_stack_test.go", res)
			},
		},
		{
			"%n",
			func(t *testing.T, res string) {
				require.Equal(t, "TestFrameFormat", res)
			},
		},
		{
			"%+s",
			func(t *testing.T, res string) {
				require.True(t, strings.HasPrefix(res, "github.com/benz9527/xrank/lib/infra.TestFrameFormat\n\t"))
				require.True(t, strings.HasSuffix(res, "/lib/infra/err_stack_test.go"))
			},
		},
		{
			"%v",
			func(t *testing.T, res string) {
				require.Regexp(t, `^err_stack_test\.go:\d+$`, res)
			},
		},
		{
			"%+v",
			func(t *testing.T, res string) {
				require.Regexp(t, `/lib/infra/err_stack_test\.go:\d+$`, res)
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.format, func(tt *testing.T) {
			tc.check(tt, fmt.Sprintf(tc.format, frame))
		})
	}
}

func TestUnknownFrame(t *testing.T) {
	require.Equal(t, "unknownFile", fmt.Sprintf("%s", Frame(0)))
	require.Equal(t, "unknownFunc", fmt.Sprintf("%n", Frame(0)))
	require.Equal(t, "0", fmt.Sprintf("%d", Frame(0)))

	text, err := Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(text))

	js, err := json.Marshal(Frame(0))
	require.NoError(t, err)
	require.Equal(t, `"unknownFrame"`, string(js))
}

func TestNewErrorStack(t *testing.T) {
	err := NewErrorStack("bad word")
	require.EqualError(t, err, "bad word")
	require.Nil(t, errors.Unwrap(err))

	var es ErrorStack
	require.True(t, errors.As(err, &es))
	require.NotEmpty(t, es.Frames())
	require.Equal(t, "TestNewErrorStack", fmt.Sprintf("%n", es.Frames()[0]))

	verbose := fmt.Sprintf("%+v", err)
	require.True(t, strings.HasPrefix(verbose, "bad word\n"))
	require.Contains(t, verbose, "lib/infra.TestNewErrorStack")
	require.Equal(t, "bad word", fmt.Sprintf("%v", err))
	require.Equal(t, `"bad word"`, fmt.Sprintf("%q", err))
}

func TestWrapErrorStack(t *testing.T) {
	require.NoError(t, WrapErrorStack(nil))
	require.NoError(t, WrapErrorStackWithMessage(nil, "nothing"))

	err := WrapErrorStack(fs.ErrNotExist)
	require.EqualError(t, err, fs.ErrNotExist.Error())
	require.ErrorIs(t, err, fs.ErrNotExist)

	// Wrapping twice keeps the innermost frames.
	again := WrapErrorStack(err)
	require.Same(t, err, again)

	withMsg := WrapErrorStackWithMessage(err, "open words.txt")
	require.EqualError(t, withMsg, "open words.txt: "+fs.ErrNotExist.Error())
	require.ErrorIs(t, withMsg, fs.ErrNotExist)
	var inner, outer ErrorStack
	require.True(t, errors.As(err, &inner))
	require.True(t, errors.As(withMsg, &outer))
	require.Equal(t, inner.Frames(), outer.Frames())
}

func TestErrorStackZapInline(t *testing.T) {
	enc := zapcore.NewMapObjectEncoder()
	err := WrapErrorStackWithMessage(fs.ErrPermission, "read words")
	var es ErrorStack
	require.True(t, errors.As(err, &es))
	zap.Inline(es).AddTo(enc)

	require.Equal(t, "read words: "+fs.ErrPermission.Error(), enc.Fields["error"])
	stack, ok := enc.Fields["errorStack"].([]any)
	require.True(t, ok)
	require.Len(t, stack, len(es.Frames()))
	require.Contains(t, stack[0], "lib/infra.TestErrorStackZapInline")
}
