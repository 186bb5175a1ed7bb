package action

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/cybergodev/logjson"
)

// Runner processes batches of messages concurrently. Each pool goroutine
// borrows one of a fixed set of workers for the duration of a message, so a
// parser state is never used by two goroutines at once.
type Runner struct {
	action  *Action
	pool    *ants.PoolWithFunc
	workers chan *Worker
	globals *Globals
}

type processParam struct {
	ctx  context.Context
	msg  *Message
	errs []error
	idx  int
	wg   *sync.WaitGroup
}

func (p *processParam) reset() {
	p.ctx = nil
	p.msg = nil
	p.errs = nil
	p.idx = 0
	p.wg = nil
}

var processParamPool = &sync.Pool{
	New: func() any { return new(processParam) },
}

// NewRunner creates a runner with size workers. A size of zero or less uses
// the action's configured worker count.
func NewRunner(a *Action, size int) (*Runner, error) {
	if size <= 0 {
		size = a.cfg.Workers
	}
	r := &Runner{
		action:  a,
		workers: make(chan *Worker, size),
		globals: NewGlobals(),
	}
	for i := 0; i < size; i++ {
		r.workers <- a.NewWorker()
	}

	pool, err := ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*processParam)
		if !ok {
			panic("logjson runner pool args type error")
		}
		wg := param.wg
		defer func() {
			wg.Done()
			param.reset()
			processParamPool.Put(param)
		}()
		w := <-r.workers
		defer func() { r.workers <- w }()
		param.errs[param.idx] = w.Process(param.ctx, param.msg)
	})
	if err != nil {
		return nil, fmt.Errorf("create runner pool: %w: %v", logjson.ErrResourceExhausted, err)
	}
	r.pool = pool
	return r, nil
}

// Globals returns the global variable tree shared by the runner's messages.
func (r *Runner) Globals() *Globals { return r.globals }

// ProcessAll processes msgs and waits for them to finish. Messages without a
// global tree get the runner's. Submission stops when ctx is done; the
// returned error then wraps ctx.Err(). Attachment errors of individual
// messages are joined.
func (r *Runner) ProcessAll(ctx context.Context, msgs []*Message) error {
	errs := make([]error, len(msgs))
	var wg sync.WaitGroup

	var submitErr error
	for i, msg := range msgs {
		if err := ctx.Err(); err != nil {
			submitErr = fmt.Errorf("processing interrupted after %d of %d messages: %w", i, len(msgs), err)
			break
		}
		if msg.globals == nil {
			msg.globals = r.globals
		}
		param := processParamPool.Get().(*processParam)
		param.ctx = ctx
		param.msg = msg
		param.errs = errs
		param.idx = i
		param.wg = &wg

		wg.Add(1)
		if err := r.pool.Invoke(param); err != nil {
			wg.Done()
			param.reset()
			processParamPool.Put(param)
			submitErr = fmt.Errorf("submit message %d: %w: %v", i, logjson.ErrResourceExhausted, err)
			break
		}
	}
	wg.Wait()

	if submitErr != nil {
		return submitErr
	}
	return errors.Join(errs...)
}

// Close releases the pool. The runner cannot be used afterwards.
func (r *Runner) Close() {
	r.pool.Release()
}
