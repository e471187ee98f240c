package wordfreq

import (
	"context"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/safeopen"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xrank/lib/infra"
	"github.com/benz9527/xrank/lib/tree"
	"github.com/benz9527/xrank/xlog"
)

// Counter counts the words of many inputs into one ordered map.
// Each input is counted into its own OrderedMap first, then merged
// under the lock of the shared map.
type Counter struct {
	root    string
	minLen  int
	workers int
	logger  xlog.XLogger
	mapOpts []tree.OrderedMapOption[string, int64]
	words   *tree.SyncOrderedMap[string, int64]
	total   atomic.Int64
	inputs  atomic.Int64
}

type CounterOption func(*Counter) error

// WithCounterRoot sets the directory the input files must stay beneath.
func WithCounterRoot(root string) CounterOption {
	return func(c *Counter) error {
		if root == "" {
			return infra.NewErrorStack("[wordfreq] empty counter root")
		}
		c.root = root
		return nil
	}
}

// WithCounterMinLen skips the words shorter than n runes.
func WithCounterMinLen(n int) CounterOption {
	return func(c *Counter) error {
		if n < 0 {
			return infra.NewErrorStack("[wordfreq] negative word min length")
		}
		c.minLen = n
		return nil
	}
}

func WithCounterWorkers(n int) CounterOption {
	return func(c *Counter) error {
		if n <= 0 {
			return infra.NewErrorStack("[wordfreq] non-positive counter workers")
		}
		c.workers = n
		return nil
	}
}

func WithCounterLogger(logger xlog.XLogger) CounterOption {
	return func(c *Counter) error {
		c.logger = logger
		return nil
	}
}

// WithCounterStats records the word map metrics under the meter
// xrank/omap/<name>.
func WithCounterStats(name string) CounterOption {
	return func(c *Counter) error {
		c.mapOpts = append(c.mapOpts, tree.WithOrderedMapStats[string, int64](name))
		return nil
	}
}

func NewCounter(opts ...CounterOption) (*Counter, error) {
	c := &Counter{
		root:    ".",
		minLen:  1,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(c); err != nil {
			return nil, err
		}
	}
	if c.logger == nil {
		c.logger = xlog.NewXLogger(
			xlog.WithXLoggerWriter(xlog.StdErr),
			xlog.WithXLoggerLevel(xlog.LogLevelError),
		)
	}
	c.words = tree.NewSyncOrderedMap[string, int64](c.mapOpts...)
	return c, nil
}

// Total is the number of counted words, duplicates included.
func (c *Counter) Total() int64 {
	return c.total.Load()
}

func (c *Counter) Distinct() int64 {
	return c.words.Len()
}

func (c *Counter) Inputs() int64 {
	return c.inputs.Load()
}

// Words is the live word map, shared with the running counts.
func (c *Counter) Words() *tree.SyncOrderedMap[string, int64] {
	return c.words
}

func (c *Counter) CountReader(ctx context.Context, r io.Reader) error {
	local := tree.NewOrderedMap[string, int64]()
	n := int64(0)
	err := Tokenize(r, c.minLen, func(word string) bool {
		if ctx.Err() != nil {
			return false
		}
		if ref := local.Search(word); ref != nil {
			*ref++
		} else {
			local.Insert(word, 1)
		}
		n++
		return true
	})
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return infra.WrapErrorStack(err)
	}

	for word, cnt := range local.InOrder() {
		c.words.Update(word, func(old int64, _ bool) int64 {
			return old + cnt
		})
	}
	c.total.Add(n)
	c.inputs.Add(1)
	return nil
}

func (c *Counter) countFile(ctx context.Context, name string) error {
	f, err := safeopen.OpenBeneath(c.root, name)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "open "+name)
	}
	defer func() {
		_ = f.Close()
	}()
	if err = c.CountReader(ctx, f); err != nil {
		return infra.WrapErrorStackWithMessage(err, "count "+name)
	}
	return nil
}

// CountFiles counts the files on an ants pool. The files are relative
// to the counter root. Every failed file is logged and combined into
// the returned error, the others are still counted.
func (c *Counter) CountFiles(ctx context.Context, files ...string) error {
	if len(files) == 0 {
		return infra.NewErrorStack("[wordfreq] no input files")
	}

	var (
		wg   sync.WaitGroup
		lock sync.Mutex
		merr error
	)
	appendErr := func(err error) {
		lock.Lock()
		defer lock.Unlock()
		merr = multierr.Append(merr, err)
	}

	pool, err := ants.NewPool(
		min(c.workers, len(files)),
		ants.WithLogger(xlog.NewAntsXLogger(c.logger)),
	)
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "create counter pool")
	}
	defer pool.Release()

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			appendErr(infra.WrapErrorStack(err))
			break
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer func() {
				// Recovered here, wg.Wait must not return before the error is recorded.
				if p := recover(); p != nil {
					c.logger.Error(nil, "count panic", zap.String("file", name), zap.Any("panic", p))
					appendErr(infra.NewErrorStack("[wordfreq] count panic on " + name))
				}
				wg.Done()
			}()
			c.logger.DebugContext(ctx, "counting", zap.String("file", name))
			if err := c.countFile(ctx, name); err != nil {
				c.logger.ErrorStackContext(ctx, err, "count failed", zap.String("file", name))
				appendErr(err)
			}
		}); err != nil {
			wg.Done()
			appendErr(infra.WrapErrorStackWithMessage(err, "submit "+name))
		}
	}
	wg.Wait()
	return merr
}
