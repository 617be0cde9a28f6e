package lang

// Env holds the global bindings and at most one active frame of locals.
type Env struct {
	globals map[string]Value
	locals  map[string]Value
}

// NewEnv creates an empty environment with no active frame.
func NewEnv() *Env {
	return &Env{globals: make(map[string]Value)}
}

// Define binds name to value in the globals.
func (e *Env) Define(name string, val Value) {
	e.globals[name] = val
}

// Get retrieves a binding, looking at the locals first.
func (e *Env) Get(name string) (Value, bool) {
	if e.locals != nil {
		if val, ok := e.locals[name]; ok {
			return val, true
		}
	}
	val, ok := e.globals[name]
	return val, ok
}

// Set assigns name. Outside a frame it writes the globals. Inside a frame an
// existing local wins, then an existing global, else a new local is created.
func (e *Env) Set(name string, val Value) {
	if e.locals == nil {
		e.globals[name] = val
		return
	}
	if _, ok := e.locals[name]; ok {
		e.locals[name] = val
		return
	}
	if _, ok := e.globals[name]; ok {
		e.globals[name] = val
		return
	}
	e.locals[name] = val
}

// InFrame reports whether a locals frame is active.
func (e *Env) InFrame() bool {
	return e.locals != nil
}

// enter activates frame and returns the frame it replaced.
func (e *Env) enter(frame map[string]Value) map[string]Value {
	prev := e.locals
	e.locals = frame
	return prev
}

func (e *Env) leave(prev map[string]Value) {
	e.locals = prev
}

// Globals returns deep copies of the global bindings.
func (e *Env) Globals() map[string]Value {
	return copyBindings(e.globals)
}

// Locals returns deep copies of the active frame, or nil when none is active.
func (e *Env) Locals() map[string]Value {
	if e.locals == nil {
		return nil
	}
	return copyBindings(e.locals)
}

func copyBindings(src map[string]Value) map[string]Value {
	out := make(map[string]Value, len(src))
	seen := make(map[*List]*List)
	for name, val := range src {
		out[name] = val.copyWith(seen)
	}
	return out
}
