// Package process provides the cooperative-process scheduler the flood simulation
// runs on.
//
// A Process is a function running on its own goroutine, but only one process
// executes at any instant: the Environment hands control to a process and waits
// until it suspends (Delay, Yield, Await) or returns. Suspended processes are kept
// in a priority queue keyed by (resume time, enqueue sequence), so processes
// resuming at the same virtual time run in FIFO order and every run is
// reproducible.
package process

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrInvalidSchedule is returned when a process is scheduled while no event loop is
// active, or when Run is called on a running or closed Environment.
var ErrInvalidSchedule = errors.New("invalid schedule")

// ErrHalted is stored on processes that were still suspended when their
// Environment stopped early (context cancellation).
var ErrHalted = errors.New("process halted before completion")

// Func is the body of a process. It receives its own Process handle, through which
// it reads the clock, suspends, and spawns children.
type Func func(p *Process)

// Environment owns the virtual clock and the resume queue.
//
// Thread-safety: Run must be called from a single goroutine. Process bodies may only
// touch the Environment through their *Process while they hold control.
type Environment struct {
	clock   int64
	queue   resumeQueue
	nextSeq int64
	nextID  uint64

	running bool
	closed  bool

	// yield is signalled by the running process when it suspends or finishes.
	yield chan struct{}
	// halt is closed when a run stops with processes still parked.
	halt chan struct{}
	wg   sync.WaitGroup

	current *Process
}

// NewEnvironment creates an idle Environment with its clock at zero.
func NewEnvironment() *Environment {
	return &Environment{
		queue: make(resumeQueue, 0),
		yield: make(chan struct{}),
	}
}

// Now returns the current virtual time.
func (e *Environment) Now() int64 {
	return e.clock
}

// Pending returns the number of processes waiting in the resume queue.
func (e *Environment) Pending() int {
	return e.queue.Len()
}

// Running reports whether the event loop is currently active.
func (e *Environment) Running() bool {
	return e.running
}

// Close stops the Environment from accepting further Run calls. It does not
// interrupt a run in progress.
func (e *Environment) Close() {
	e.closed = true
}

// Schedule creates a process that starts at the current virtual time, after every
// process already queued for that time. It is only legal while the loop is active.
func (e *Environment) Schedule(name string, fn Func) (*Process, error) {
	if !e.running {
		return nil, fmt.Errorf("schedule %q: %w: event loop is not active", name, ErrInvalidSchedule)
	}
	return e.spawn(name, fn), nil
}

// Run seeds a root process and executes events until the queue is empty.
// Cancelling ctx stops the loop between events; processes still suspended at that
// point are terminated with ErrHalted and Run returns the context error.
func (e *Environment) Run(ctx context.Context, name string, fn Func) error {
	if e.closed {
		return fmt.Errorf("run %q: %w: environment closed", name, ErrInvalidSchedule)
	}
	if e.running {
		return fmt.Errorf("run %q: %w: event loop already active", name, ErrInvalidSchedule)
	}
	e.running = true
	e.halt = make(chan struct{})
	defer func() {
		e.running = false
	}()

	root := e.spawn(name, fn)
	logrus.Debugf("[tick %07d] Event loop started with root process %s", e.clock, root)

	var runErr error
	for e.queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("event loop stopped at tick %d: %w", e.clock, err)
			break
		}
		entry := heap.Pop(&e.queue).(resumeEntry)
		if entry.at < e.clock {
			panic(fmt.Sprintf("clock went backwards: %d < %d", entry.at, e.clock))
		}
		e.clock = entry.at
		e.step(entry.proc)
	}

	if runErr != nil {
		e.queue = e.queue[:0]
	}
	// Anything still parked (cancelled run, or a process awaiting a child that can
	// never finish) is released so its goroutine exits.
	close(e.halt)
	e.wg.Wait()

	logrus.Debugf("[tick %07d] Event loop idle", e.clock)
	return runErr
}

// spawn allocates a process and queues its first activation at the current time.
func (e *Environment) spawn(name string, fn Func) *Process {
	e.nextID++
	p := &Process{
		env:    e,
		id:     e.nextID,
		name:   name,
		body:   fn,
		resume: make(chan struct{}),
	}
	e.push(e.clock, p)
	return p
}

func (e *Environment) push(at int64, p *Process) {
	e.nextSeq++
	heap.Push(&e.queue, resumeEntry{at: at, seqID: e.nextSeq, proc: p})
}

// step hands control to p and blocks until p suspends or finishes.
func (e *Environment) step(p *Process) {
	e.current = p
	if !p.started {
		p.started = true
		e.wg.Add(1)
		go p.run(e.halt)
	} else {
		p.resume <- struct{}{}
	}
	<-e.yield
	e.current = nil
}
