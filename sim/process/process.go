package process

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Process is one logical unit of simulated activity. It is created by
// Environment.Schedule, Environment.Run or Process.Spawn and is resumed only by its
// Environment.
type Process struct {
	env  *Environment
	id   uint64
	name string
	body Func

	resume chan struct{}
	halt   <-chan struct{}

	started bool
	done    bool
	halted  bool
	err     error

	// waiters are the processes suspended in Await on this process, in
	// registration order.
	waiters []*Process
}

// ID returns the process identifier, unique within its Environment.
func (p *Process) ID() uint64 { return p.id }

// Name returns the name the process was created with.
func (p *Process) Name() string { return p.name }

// Done reports whether the process body has returned (or was halted).
func (p *Process) Done() bool { return p.done }

// Err returns the recovered panic of the process body, ErrHalted if the process was
// terminated by a stopped run, or nil.
func (p *Process) Err() error { return p.err }

// Now returns the current virtual time of the process's Environment.
func (p *Process) Now() int64 { return p.env.clock }

func (p *Process) String() string {
	return fmt.Sprintf("%s#%d", p.name, p.id)
}

// Delay suspends the process for d ticks. Delay(0) is a pure yield point: every
// process already queued for the current time runs before this one resumes.
func (p *Process) Delay(d int64) {
	if d < 0 {
		panic(fmt.Sprintf("process %s: negative delay %d", p, d))
	}
	p.mustBeCurrent("Delay")
	p.env.push(p.env.clock+d, p)
	p.suspend()
}

// Yield is Delay(0).
func (p *Process) Yield() {
	p.Delay(0)
}

// Spawn creates a child process starting at the current time. The child does not run
// until the caller suspends.
func (p *Process) Spawn(name string, fn Func) *Process {
	p.mustBeCurrent("Spawn")
	return p.env.spawn(name, fn)
}

// Await suspends the process until child has completed. If child already completed,
// Await returns immediately without yielding.
func (p *Process) Await(child *Process) {
	if child == p {
		panic(fmt.Sprintf("process %s cannot await itself", p))
	}
	p.mustBeCurrent("Await")
	if child.done {
		return
	}
	child.waiters = append(child.waiters, p)
	p.suspend()
}

// Call spawns a child process and awaits its completion.
func (p *Process) Call(name string, fn Func) *Process {
	child := p.Spawn(name, fn)
	p.Await(child)
	return child
}

func (p *Process) mustBeCurrent(op string) {
	if p.env.current != p {
		panic(fmt.Sprintf("process %s called %s while not running", p, op))
	}
}

// suspend hands control back to the event loop and parks until resumed.
func (p *Process) suspend() {
	if p.halted {
		return
	}
	p.env.yield <- struct{}{}
	select {
	case <-p.resume:
	case <-p.halt:
		p.halted = true
		p.done = true
		p.err = ErrHalted
		runtime.Goexit()
	}
}

// run is the goroutine entry point of the process.
func (p *Process) run(halt <-chan struct{}) {
	p.halt = halt
	defer p.env.wg.Done()
	defer func() {
		if p.halted {
			return
		}
		if r := recover(); r != nil {
			p.err = fmt.Errorf("process %s panicked: %v", p, r)
			logrus.Errorf("[tick %07d] %v", p.env.clock, p.err)
		}
		p.finish()
		p.env.yield <- struct{}{}
	}()
	p.body(p)
}

// finish marks the process complete and requeues its waiters at the current time.
func (p *Process) finish() {
	p.done = true
	for _, w := range p.waiters {
		p.env.push(p.env.clock, w)
	}
	p.waiters = nil
}
