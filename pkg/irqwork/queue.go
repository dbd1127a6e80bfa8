package irqwork

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/udd-framework/udd-go/pkg/log"
)

// DefaultDepth is the work queue capacity used when none is given.
const DefaultDepth = 64

// LineController masks and unmasks interrupt lines at the controller.
// Both calls run in the relaxed domain only.
type LineController interface {
	EnableLine(line int32) error
	DisableLine(line int32) error
}

// item is a single-shot toggle request. It is a plain value so posting
// copies it into the channel buffer without heap allocation.
type item struct {
	line   int32
	enable bool
}

// Queue hands interrupt-line toggles from the real-time domain to a
// relaxed-domain runner.
type Queue struct {
	ctrl   LineController
	logger log.Logger

	items chan item
	done  chan struct{}
	wg    sync.WaitGroup

	started atomic.Bool
	dropped atomic.Uint64
}

// NewQueue creates a queue of the given depth in front of ctrl.
// A depth <= 0 selects DefaultDepth. logger may be nil.
func NewQueue(ctrl LineController, depth int, logger log.Logger) *Queue {
	if depth <= 0 {
		depth = DefaultDepth
	}
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Queue{
		ctrl:   ctrl,
		logger: logger,
		items:  make(chan item, depth),
	}
}

// Start launches the relaxed-domain runner. A stopped queue may be started
// again; items posted in between stay queued.
func (q *Queue) Start() {
	if q.started.Swap(true) {
		return
	}
	q.done = make(chan struct{})
	q.wg.Add(1)
	go q.run()
}

// Stop terminates the runner and waits for it to finish. Items still queued
// stay buffered and run only if the queue is started again.
func (q *Queue) Stop() {
	if !q.started.Swap(false) {
		return
	}
	close(q.done)
	q.wg.Wait()
}

// PostEnable requests an unmask of line. Callable from the real-time domain;
// never blocks.
func (q *Queue) PostEnable(line int32) {
	q.post(item{line: line, enable: true})
}

// PostDisable requests a mask of line. Callable from the real-time domain;
// never blocks.
func (q *Queue) PostDisable(line int32) {
	q.post(item{line: line, enable: false})
}

// Dropped returns how many toggles were lost to a full queue.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

func (q *Queue) post(it item) {
	select {
	case q.items <- it:
	default:
		q.dropped.Add(1)
		q.logger.Log(log.Event{
			Timestamp: time.Now(),
			Category:  log.CategoryIRQ,
			Op:        "post",
			IRQ:       &log.IRQEvent{Line: it.line, Action: "dropped"},
		})
	}
}

func (q *Queue) run() {
	defer q.wg.Done()

	for {
		select {
		case <-q.done:
			return
		case it := <-q.items:
			q.perform(it)
		}
	}
}

// perform runs in the relaxed domain, where flipping the line state at the
// controller is legal.
func (q *Queue) perform(it item) {
	var err error
	action := "disable"
	if it.enable {
		action = "enable"
		err = q.ctrl.EnableLine(it.line)
	} else {
		err = q.ctrl.DisableLine(it.line)
	}

	// A line unregistered while the item was queued is not an error; the
	// toggle simply has nothing left to act on.
	if err != nil {
		q.logger.Log(log.Event{
			Timestamp: time.Now(),
			Category:  log.CategoryIRQ,
			Op:        "toggle",
			IRQ:       &log.IRQEvent{Line: it.line, Action: action},
			Error:     &log.ErrorEvent{Message: err.Error()},
		})
	}
}
