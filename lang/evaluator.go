package lang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/sergev/pseudo/parser"
)

// maxCallDepth bounds nested user procedure calls.
const maxCallDepth = 10000

// Host receives everything a run produces and supplies what it consumes. All
// methods are called on the goroutine running Interpret. Display and
// StepPause block until the host acknowledges; WaitForInput blocks until the
// host supplies text.
type Host interface {
	Display(ctx context.Context, v Value) error
	WaitForInput(ctx context.Context) (string, error)
	StepPause(ctx context.Context) error
	Info(snap Snapshot)
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger directs interpreter tracing to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// WithStep starts the interpreter in single-step mode.
func WithStep(step bool) Option {
	return func(in *Interpreter) {
		in.step.Store(step)
	}
}

// Interpreter executes parsed programs one statement at a time. Globals
// persist across calls to Interpret.
type Interpreter struct {
	host   Host
	env    *Env
	logger *slog.Logger

	step   atomic.Bool
	cancel atomic.Bool

	program     []parser.Stmt
	current     parser.Stmt
	annotations map[parser.NodeID]Annotation
	depth       int
	aborted     bool
}

// flow is the outcome of a statement: it either completed normally or
// returned from the enclosing procedure with value.
type flow struct {
	returned bool
	value    Value
}

// NewInterpreter constructs an interpreter with an empty global environment.
func NewInterpreter(host Host, opts ...Option) *Interpreter {
	in := &Interpreter{
		host:        host,
		env:         NewEnv(),
		logger:      slog.Default(),
		annotations: make(map[parser.NodeID]Annotation),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Define installs a builtin under name.
func (in *Interpreter) Define(name string, fn Primitive) {
	in.env.Define(name, BuiltinValue(name, fn))
}

// Env exposes the interpreter's bindings.
func (in *Interpreter) Env() *Env {
	return in.env
}

// Globals returns a deep copy of the global bindings. Call it between runs or
// from a Host method.
func (in *Interpreter) Globals() map[string]Value {
	return in.env.Globals()
}

// Logger returns the logger the interpreter traces to.
func (in *Interpreter) Logger() *slog.Logger {
	return in.logger
}

// SetStep toggles single-step mode. It is safe to call from any goroutine.
func (in *Interpreter) SetStep(on bool) {
	in.step.Store(on)
}

// Stepping reports whether single-step mode is on.
func (in *Interpreter) Stepping() bool {
	return in.step.Load()
}

// Cancel asks the running program to stop at the next statement or
// expression. It is safe to call from any goroutine. A host that is blocked
// in WaitForInput or StepPause must also release that wait.
func (in *Interpreter) Cancel() {
	in.cancel.Store(true)
}

// Interpret runs stmts as the top-level block. It returns nil on completion,
// ErrCancelled when stopped by Cancel or ctx, and a *RuntimeError otherwise.
func (in *Interpreter) Interpret(ctx context.Context, stmts []parser.Stmt) error {
	in.program = stmts
	in.current = nil
	in.annotations = make(map[parser.NodeID]Annotation)
	in.depth = 0
	in.aborted = false
	in.logger.Debug("interpret", slog.Int("statements", len(stmts)))
	_, err := in.runBlock(ctx, stmts)
	if err != nil {
		in.logger.Debug("interpret stopped", slog.Any("error", err))
	}
	return err
}

// Evaluate computes a single expression against the current bindings.
func (in *Interpreter) Evaluate(ctx context.Context, expr parser.Expr) (Value, error) {
	in.aborted = false
	return in.evaluate(ctx, expr)
}

func (in *Interpreter) checkCancel(ctx context.Context) error {
	if in.aborted {
		return ErrCancelled
	}
	if in.cancel.Swap(false) || ctx.Err() != nil {
		in.aborted = true
		return ErrCancelled
	}
	return nil
}

func (in *Interpreter) hostError(err error) error {
	if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		in.aborted = true
		return ErrCancelled
	}
	return err
}

func (in *Interpreter) broadcast() {
	if in.aborted || in.cancel.Load() {
		return
	}
	in.host.Info(in.snapshot())
}

func (in *Interpreter) pause(ctx context.Context) error {
	if !in.step.Load() {
		return nil
	}
	if err := in.host.StepPause(ctx); err != nil {
		return in.hostError(err)
	}
	return in.checkCancel(ctx)
}

// Display forwards an independent copy of v to the host.
func (in *Interpreter) Display(ctx context.Context, v Value) error {
	if err := in.checkCancel(ctx); err != nil {
		return err
	}
	if err := in.host.Display(ctx, v.Copy()); err != nil {
		return in.hostError(err)
	}
	return in.checkCancel(ctx)
}

// WaitForInput blocks until the host supplies a line of text.
func (in *Interpreter) WaitForInput(ctx context.Context) (string, error) {
	if err := in.checkCancel(ctx); err != nil {
		return "", err
	}
	text, err := in.host.WaitForInput(ctx)
	if err != nil {
		return "", in.hostError(err)
	}
	if err := in.checkCancel(ctx); err != nil {
		return "", err
	}
	return text, nil
}

// Errorf attributes a failure to node, lets the host render it, and returns
// the error that aborts the run.
func (in *Interpreter) Errorf(node parser.Node, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	in.annotate(node, func(a *Annotation) { a.Error = msg })
	in.broadcast()
	pos := node.Pos()
	in.logger.Debug("runtime error", slog.Int("line", pos.Line), slog.Int("col", pos.Column), slog.String("message", msg))
	return &RuntimeError{Node: node, Pos: pos, Message: msg}
}

// Expect fails on node unless v has type t.
func (in *Interpreter) Expect(node parser.Node, v Value, t ValueType) error {
	if v.Type == t {
		return nil
	}
	return in.Errorf(node, "must be a %s", t)
}

// CheckArity fails on call unless exactly want arguments were passed.
func (in *Interpreter) CheckArity(call *parser.CallExpr, name string, args []Value, want int) error {
	if len(args) == want {
		return nil
	}
	switch want {
	case 0:
		return in.Errorf(call, "%s takes no arguments", name)
	case 1:
		return in.Errorf(call, "%s takes 1 argument", name)
	default:
		return in.Errorf(call, "%s takes %d arguments", name, want)
	}
}

// CheckIndex validates a 1-based index against limit and returns the 0-based
// position. A malformed index is reported on indexNode, one past the limit on
// listNode.
func (in *Interpreter) CheckIndex(indexNode, listNode parser.Node, index float64, limit int) (int, error) {
	if !isInteger(index) {
		return 0, in.Errorf(indexNode, "must be an integer")
	}
	if index < 1 {
		return 0, in.Errorf(indexNode, "must be >= 1")
	}
	if index > float64(limit) {
		return 0, in.Errorf(listNode, "index bigger than list length")
	}
	return int(index) - 1, nil
}

func isInteger(f float64) bool {
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

// runBlock runs block and restores the enclosing statement as current when
// it leaves, so a loop or call site is current again once its body is done.
func (in *Interpreter) runBlock(ctx context.Context, block []parser.Stmt) (flow, error) {
	outer := in.current
	defer func() { in.current = outer }()
	for _, stmt := range block {
		if err := in.checkCancel(ctx); err != nil {
			return flow{}, err
		}
		in.annotate(stmt, func(a *Annotation) { a.Running = true })
		in.current = stmt
		in.broadcast()
		if err := in.pause(ctx); err != nil {
			return flow{}, err
		}
		result, err := in.run(ctx, stmt)
		in.annotate(stmt, func(a *Annotation) { a.Running = false })
		if err != nil || result.returned {
			return result, err
		}
	}
	in.current = nil
	in.broadcast()
	return flow{}, nil
}

func (in *Interpreter) run(ctx context.Context, stmt parser.Stmt) (flow, error) {
	if err := in.checkCancel(ctx); err != nil {
		return flow{}, err
	}
	in.logger.Debug("run statement", slog.Int("id", int(stmt.ID())), slog.Int("line", stmt.Pos().Line))

	switch s := stmt.(type) {
	case *parser.AssignStmt:
		val, err := in.evaluate(ctx, s.Value)
		if err != nil {
			return flow{}, err
		}
		return flow{}, in.assign(ctx, s.Target, val)

	case *parser.IfStmt:
		cond, err := in.evaluateBool(ctx, s.Cond)
		if err != nil {
			return flow{}, err
		}
		if cond {
			return in.runBlock(ctx, s.Then)
		}
		if s.HasElse() {
			return in.runBlock(ctx, s.Else)
		}
		return flow{}, nil

	case *parser.RepeatTimesStmt:
		count, err := in.evaluateNumber(ctx, s.Count)
		if err != nil {
			return flow{}, err
		}
		if !isInteger(count) {
			return flow{}, in.Errorf(s.Count, "must be an integer")
		}
		if count < 0 {
			return flow{}, in.Errorf(s.Count, "must not be negative")
		}
		for i := 0.0; i < count; i++ {
			result, err := in.runBlock(ctx, s.Body)
			if err != nil || result.returned {
				return result, err
			}
		}
		return flow{}, nil

	case *parser.RepeatUntilStmt:
		for first := true; ; first = false {
			if !first {
				in.broadcast()
				if err := in.pause(ctx); err != nil {
					return flow{}, err
				}
			}
			done, err := in.evaluateBool(ctx, s.Cond)
			if err != nil {
				return flow{}, err
			}
			if done {
				return flow{}, nil
			}
			result, err := in.runBlock(ctx, s.Body)
			if err != nil || result.returned {
				return result, err
			}
		}

	case *parser.ForEachStmt:
		list, err := in.evaluateList(ctx, s.List)
		if err != nil {
			return flow{}, err
		}
		// The length is re-read every iteration so that changes made by the
		// body are observed.
		for i := 0; i < len(list.Items); i++ {
			if err := in.assign(ctx, s.Var, list.Items[i]); err != nil {
				return flow{}, err
			}
			result, err := in.runBlock(ctx, s.Body)
			if err != nil || result.returned {
				return result, err
			}
		}
		return flow{}, nil

	case *parser.ProcedureStmt:
		in.env.Set(s.Name, ProcedureValue(s))
		return flow{}, nil

	case *parser.ReturnStmt:
		if in.depth == 0 {
			return flow{}, in.Errorf(s, "cannot return outside a procedure")
		}
		if s.Value == nil {
			return flow{returned: true, value: Void}, nil
		}
		val, err := in.evaluate(ctx, s.Value)
		if err != nil {
			return flow{}, err
		}
		return flow{returned: true, value: val}, nil

	case *parser.BreakpointStmt:
		in.logger.Debug("breakpoint", slog.Int("line", s.Pos().Line))
		in.step.Store(true)
		return flow{}, nil

	case *parser.ExprStmt:
		_, err := in.evaluate(ctx, s.Expr)
		return flow{}, err
	}
	return flow{}, in.Errorf(stmt, "can't handle this statement")
}

func (in *Interpreter) assign(ctx context.Context, target parser.Expr, val Value) error {
	switch t := target.(type) {
	case *parser.VariableExpr:
		in.env.Set(t.Name, val)
	case *parser.SubscriptExpr:
		index, err := in.evaluateNumber(ctx, t.Index)
		if err != nil {
			return err
		}
		list, err := in.evaluateList(ctx, t.List)
		if err != nil {
			return err
		}
		i, err := in.CheckIndex(t.Index, t.List, index, len(list.Items))
		if err != nil {
			return err
		}
		list.Items[i] = val
	default:
		return in.Errorf(target, "cannot assign to this expression")
	}
	in.annotate(target, func(a *Annotation) {
		a.Value = val
		a.Evaluated = true
	})
	return nil
}

func (in *Interpreter) evaluate(ctx context.Context, expr parser.Expr) (Value, error) {
	if err := in.checkCancel(ctx); err != nil {
		return Value{}, err
	}
	val, err := in.evaluateNode(ctx, expr)
	if err != nil {
		return Value{}, err
	}
	in.annotate(expr, func(a *Annotation) {
		a.Value = val
		a.Evaluated = true
	})
	return val, nil
}

func (in *Interpreter) evaluateAs(ctx context.Context, expr parser.Expr, t ValueType) (Value, error) {
	val, err := in.evaluate(ctx, expr)
	if err != nil {
		return Value{}, err
	}
	if err := in.Expect(expr, val, t); err != nil {
		return Value{}, err
	}
	return val, nil
}

func (in *Interpreter) evaluateNumber(ctx context.Context, expr parser.Expr) (float64, error) {
	val, err := in.evaluateAs(ctx, expr, TypeNumber)
	return val.Num(), err
}

func (in *Interpreter) evaluateBool(ctx context.Context, expr parser.Expr) (bool, error) {
	val, err := in.evaluateAs(ctx, expr, TypeBool)
	return val.Bool(), err
}

func (in *Interpreter) evaluateList(ctx context.Context, expr parser.Expr) (*List, error) {
	val, err := in.evaluateAs(ctx, expr, TypeList)
	if err != nil {
		return nil, err
	}
	return val.List(), nil
}

func (in *Interpreter) evaluateNode(ctx context.Context, expr parser.Expr) (Value, error) {
	switch e := expr.(type) {
	case *parser.NumberLit:
		return NumberValue(e.Value), nil
	case *parser.StringLit:
		return StringValue(e.Value), nil
	case *parser.BoolLit:
		return BoolValue(e.Value), nil
	case *parser.VariableExpr:
		val, ok := in.env.Get(e.Name)
		if !ok {
			return Value{}, in.Errorf(e, "unknown name %s", e.Name)
		}
		return val, nil
	case *parser.BinaryExpr:
		return in.evaluateBinary(ctx, e)
	case *parser.NotExpr:
		b, err := in.evaluateBool(ctx, e.Expr)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(!b), nil
	case *parser.NegateExpr:
		n, err := in.evaluateNumber(ctx, e.Expr)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(-n), nil
	case *parser.ListExpr:
		items := make([]Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			val, err := in.evaluate(ctx, el)
			if err != nil {
				return Value{}, err
			}
			items = append(items, val)
		}
		return ListValue(items...), nil
	case *parser.SubscriptExpr:
		index, err := in.evaluateNumber(ctx, e.Index)
		if err != nil {
			return Value{}, err
		}
		list, err := in.evaluateList(ctx, e.List)
		if err != nil {
			return Value{}, err
		}
		i, err := in.CheckIndex(e.Index, e.List, index, len(list.Items))
		if err != nil {
			return Value{}, err
		}
		return list.Items[i], nil
	case *parser.CallExpr:
		return in.call(ctx, e)
	}
	return Value{}, in.Errorf(expr, "can't handle this expression")
}

func (in *Interpreter) evaluateBinary(ctx context.Context, e *parser.BinaryExpr) (Value, error) {
	switch e.Op {
	case parser.OpEqual, parser.OpNotEqual:
		a, err := in.evaluate(ctx, e.Left)
		if err != nil {
			return Value{}, err
		}
		b, err := in.evaluate(ctx, e.Right)
		if err != nil {
			return Value{}, err
		}
		eq := Equal(a, b)
		if e.Op == parser.OpNotEqual {
			eq = !eq
		}
		return BoolValue(eq), nil
	case parser.OpAnd, parser.OpOr:
		// Both operands are always evaluated.
		a, err := in.evaluateBool(ctx, e.Left)
		if err != nil {
			return Value{}, err
		}
		b, err := in.evaluateBool(ctx, e.Right)
		if err != nil {
			return Value{}, err
		}
		if e.Op == parser.OpAnd {
			return BoolValue(a && b), nil
		}
		return BoolValue(a || b), nil
	}

	a, err := in.evaluateNumber(ctx, e.Left)
	if err != nil {
		return Value{}, err
	}
	b, err := in.evaluateNumber(ctx, e.Right)
	if err != nil {
		return Value{}, err
	}
	switch e.Op {
	case parser.OpAdd:
		return NumberValue(a + b), nil
	case parser.OpSub:
		return NumberValue(a - b), nil
	case parser.OpMul:
		return NumberValue(a * b), nil
	case parser.OpDiv:
		return NumberValue(a / b), nil
	case parser.OpMod:
		return NumberValue(math.Mod(a, b)), nil
	case parser.OpGreater:
		return BoolValue(a > b), nil
	case parser.OpLess:
		return BoolValue(a < b), nil
	case parser.OpGreaterEqual:
		return BoolValue(a >= b), nil
	case parser.OpLessEqual:
		return BoolValue(a <= b), nil
	}
	return Value{}, in.Errorf(e, "unknown operator %s", e.Op)
}

func (in *Interpreter) call(ctx context.Context, e *parser.CallExpr) (Value, error) {
	callee, err := in.evaluateAs(ctx, e.Callee, TypeProcedure)
	if err != nil {
		return Value{}, err
	}
	args := make([]Value, 0, len(e.Args))
	for _, arg := range e.Args {
		val, err := in.evaluate(ctx, arg)
		if err != nil {
			return Value{}, err
		}
		args = append(args, val)
	}
	proc := callee.Procedure()
	if proc == nil {
		return Value{}, in.Errorf(e.Callee, "must be a procedure")
	}
	if proc.Builtin != nil {
		return proc.Builtin.Fn(ctx, in, e, args)
	}
	return in.invoke(ctx, e, proc.Decl, args)
}

// invoke runs a user procedure in a fresh locals frame. The previous frame is
// restored however the body exits, and a return is absorbed here.
func (in *Interpreter) invoke(ctx context.Context, call *parser.CallExpr, decl *parser.ProcedureStmt, args []Value) (Value, error) {
	if err := in.CheckArity(call, decl.Name, args, len(decl.Params)); err != nil {
		return Value{}, err
	}
	if in.depth >= maxCallDepth {
		return Value{}, in.Errorf(call, "too many nested procedure calls")
	}
	frame := make(map[string]Value, len(args))
	for i, name := range decl.Params {
		frame[name] = args[i]
	}
	prev := in.env.enter(frame)
	in.depth++
	defer func() {
		in.depth--
		in.env.leave(prev)
	}()
	in.logger.Debug("push stack frame", slog.String("procedure", decl.Name), slog.Int("depth", in.depth))

	result, err := in.runBlock(ctx, decl.Body)
	if err != nil {
		return Value{}, err
	}
	if result.returned {
		return result.value, nil
	}
	return Void, nil
}
