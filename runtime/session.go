package runtime

import (
	"context"
	"sync"

	"github.com/sergev/pseudo/lang"
	"github.com/sergev/pseudo/parser"
)

// EventKind identifies what a running program is reporting.
type EventKind int

const (
	EventDisplay EventKind = iota
	EventInfo
	EventPaused
	EventInputRequested
	EventDone
)

var eventNames = map[EventKind]string{
	EventDisplay:        "display",
	EventInfo:           "info",
	EventPaused:         "paused",
	EventInputRequested: "input",
	EventDone:           "done",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is one notification from a running session.
type Event struct {
	Kind     EventKind
	Value    lang.Value    // EventDisplay
	Snapshot lang.Snapshot // EventInfo
	Resume   *Resumer      // EventPaused, EventInputRequested
	Err      error         // EventDone
}

// Resumer releases one suspended pause or input wait. Only the first call to
// Resume has any effect.
type Resumer struct {
	once sync.Once
	ch   chan string
}

func newResumer() *Resumer {
	return &Resumer{ch: make(chan string, 1)}
}

// Resume releases the wait with text and reports whether this call did so.
func (r *Resumer) Resume(text string) bool {
	resumed := false
	r.once.Do(func() {
		r.ch <- text
		resumed = true
	})
	return resumed
}

// Runner owns an interpreter whose globals persist from one session to the
// next. Only one session may run at a time.
type Runner struct {
	in   *lang.Interpreter
	host *sessionHost
}

// NewRunner constructs a runner with the standard builtins installed.
func NewRunner(opts ...lang.Option) *Runner {
	host := &sessionHost{}
	return &Runner{
		in:   NewInterpreter(host, opts...),
		host: host,
	}
}

// Interpreter exposes the runner's interpreter.
func (r *Runner) Interpreter() *lang.Interpreter {
	return r.in
}

// Session is a program running on its own goroutine. The caller must drain
// Events until it is closed; the last event is always EventDone.
type Session struct {
	in     *lang.Interpreter
	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	mu      sync.Mutex
	pending *Resumer
	kind    EventKind
}

// Start runs stmts on a fresh runner.
func Start(ctx context.Context, stmts []parser.Stmt, opts ...lang.Option) *Session {
	return NewRunner(opts...).Start(ctx, stmts)
}

// Start runs stmts on a new goroutine and returns immediately.
func (r *Runner) Start(ctx context.Context, stmts []parser.Stmt) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		in:     r.in,
		events: make(chan Event, 16),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.host.session = s
	go s.run(stmts)
	return s
}

func (s *Session) run(stmts []parser.Stmt) {
	err := s.in.Interpret(s.ctx, stmts)
	s.cancel()
	s.err = err
	close(s.done)
	s.events <- Event{Kind: EventDone, Err: err}
	close(s.events)
}

// Events delivers the session's notifications in order.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Advance releases a pending step pause.
func (s *Session) Advance() bool {
	return s.release(EventPaused, "")
}

// ProvideInput answers a pending input request.
func (s *Session) ProvideInput(text string) bool {
	return s.release(EventInputRequested, text)
}

// SetStep toggles single-step mode on the running program.
func (s *Session) SetStep(on bool) {
	s.in.SetStep(on)
}

// Cancel stops the program. A pending input request is answered with empty
// text and a pending pause is released; the session then finishes with
// lang.ErrCancelled.
func (s *Session) Cancel() {
	s.in.Cancel()
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	if pending != nil {
		pending.Resume("")
	}
	s.cancel()
}

// Wait blocks until the program finishes and returns its result.
func (s *Session) Wait() error {
	<-s.done
	return s.err
}

func (s *Session) release(kind EventKind, text string) bool {
	s.mu.Lock()
	pending := s.pending
	if pending == nil || s.kind != kind {
		s.mu.Unlock()
		return false
	}
	s.pending = nil
	s.mu.Unlock()
	return pending.Resume(text)
}

func (s *Session) suspend(kind EventKind) *Resumer {
	r := newResumer()
	s.mu.Lock()
	s.pending = r
	s.kind = kind
	s.mu.Unlock()
	return r
}

func (s *Session) send(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) await(ctx context.Context, kind EventKind) (string, error) {
	r := s.suspend(kind)
	if err := s.send(ctx, Event{Kind: kind, Resume: r}); err != nil {
		return "", err
	}
	select {
	case text := <-r.ch:
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// sessionHost adapts the interpreter's callbacks to the current session's
// event stream.
type sessionHost struct {
	session *Session
}

func (h *sessionHost) Display(ctx context.Context, v lang.Value) error {
	return h.session.send(ctx, Event{Kind: EventDisplay, Value: v})
}

func (h *sessionHost) WaitForInput(ctx context.Context) (string, error) {
	return h.session.await(ctx, EventInputRequested)
}

func (h *sessionHost) StepPause(ctx context.Context) error {
	_, err := h.session.await(ctx, EventPaused)
	return err
}

func (h *sessionHost) Info(snap lang.Snapshot) {
	s := h.session
	_ = s.send(s.ctx, Event{Kind: EventInfo, Snapshot: snap})
}
