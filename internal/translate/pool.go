// Package translate runs translation calls off the connection-handling
// path. The Pool is the process-wide bound on concurrent engine calls;
// decorators add metrics recording and redis result caching.
package translate

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"crosstalk/pkg/interfaces"
)

// Pool executes translation calls on a fixed set of workers. Submissions
// beyond capacity queue; callers block on their own context, they never get
// a capacity error. Cancellation is advisory: a queued task whose context is
// already done is skipped, a running task finishes and its result is
// discarded by the departed caller.
type Pool struct {
	next  interfaces.Translator
	tasks chan *task
	stop  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

type task struct {
	ctx        context.Context
	text       string
	sourceLang string
	targetLang string
	result     chan outcome
}

type outcome struct {
	text string
	err  error
}

// NewPool starts workers goroutines that execute calls against next.
func NewPool(next interfaces.Translator, workers, queueSize int) *Pool {
	p := &Pool{
		next:  next,
		tasks: make(chan *task, queueSize),
		stop:  make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(n int) {
	defer p.wg.Done()
	for {
		select {
		case t := <-p.tasks:
			// Skip work the caller no longer wants.
			if t.ctx.Err() != nil {
				t.result <- outcome{err: t.ctx.Err()}
				continue
			}
			text, err := p.next.Translate(t.ctx, t.text, t.sourceLang, t.targetLang)
			t.result <- outcome{text: text, err: err}

		case <-p.stop:
			log.Debug().Str("module", "translate").Int("worker", n).Msg("worker stopped")
			return
		}
	}
}

// Translate submits a call to the pool and awaits its result. It implements
// interfaces.Translator, so sessions see the pool as the translation port.
func (p *Pool) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	t := &task{
		ctx:        ctx,
		text:       text,
		sourceLang: sourceLang,
		targetLang: targetLang,
		// Buffered so a worker never blocks on a caller that gave up.
		result: make(chan outcome, 1),
	}

	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-p.stop:
		return "", ErrPoolClosed
	}

	select {
	case out := <-t.result:
		return out.text, out.err
	case <-ctx.Done():
		// The worker may still run the task; its result lands in the
		// buffered channel and is discarded.
		return "", ctx.Err()
	}
}

// Close stops the workers. In-flight calls run to completion; queued tasks
// are abandoned.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.stop)
		p.wg.Wait()
	})
}
