package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/peterh/liner"

	"github.com/sergev/pseudo/lang"
	"github.com/sergev/pseudo/parser"
	"github.com/sergev/pseudo/runtime"
)

const maxValueWidth = 60

// source is the text of one parsed input; its nodes are numbered from first.
type source struct {
	first parser.NodeID
	lines []string
}

// console drives sessions on a terminal or a pair of streams.
type console struct {
	reader *bufio.Reader
	line   *liner.State // nil when stdin is not a terminal
	out    io.Writer
	errOut io.Writer
	format *runtime.Formatter
	runner *runtime.Runner
	trace  bool

	sources []source
	nextID  parser.NodeID
}

func (c *console) addSource(first parser.NodeID, src string) {
	c.sources = append(c.sources, source{first: first, lines: strings.Split(src, "\n")})
}

// sourceLine returns the text of the line stmt starts on.
func (c *console) sourceLine(stmt parser.Stmt) string {
	for i := len(c.sources) - 1; i >= 0; i-- {
		s := c.sources[i]
		if stmt.ID() < s.first {
			continue
		}
		if n := stmt.Pos().Line; n >= 1 && n <= len(s.lines) {
			return strings.TrimRight(s.lines[n-1], " \t\r")
		}
		return ""
	}
	return ""
}

func (c *console) readLine(prompt string) (string, error) {
	if c.line != nil {
		return c.line.Prompt(prompt)
	}
	text, err := c.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && text != "") {
		return "", err
	}
	return strings.TrimRight(text, "\r\n"), nil
}

// execute runs stmts to completion, answering the session's requests from
// the console. It returns the last snapshot seen.
func (c *console) execute(ctx context.Context, stmts []parser.Stmt) (lang.Snapshot, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	s := c.runner.Start(ctx, stmts)
	var last lang.Snapshot
	for ev := range s.Events() {
		switch ev.Kind {
		case runtime.EventDisplay:
			fmt.Fprintln(c.out, c.format.Display(ev.Value))
		case runtime.EventInfo:
			last = ev.Snapshot
			if c.trace {
				c.printTrace(last)
			}
		case runtime.EventPaused:
			c.stepPrompt(s, last)
		case runtime.EventInputRequested:
			text, err := c.readLine("? ")
			if err != nil {
				s.Cancel()
				continue
			}
			s.ProvideInput(text)
		}
	}
	return last, s.Wait()
}

func (c *console) printTrace(snap lang.Snapshot) {
	out, err := runtime.TraceYAML(snap, c.format)
	if err != nil {
		fmt.Fprintf(c.errOut, "trace: %v\n", err)
		return
	}
	fmt.Fprintf(c.errOut, "---\n%s", out)
}

func (c *console) stepPrompt(s *runtime.Session, snap lang.Snapshot) {
	if snap.Current != nil {
		fmt.Fprintf(c.out, "%4d | %s\n", snap.Current.Pos().Line, c.sourceLine(snap.Current))
	}
	for {
		cmd, err := c.readLine("step> ")
		if err != nil {
			s.Cancel()
			return
		}
		switch strings.TrimSpace(cmd) {
		case "", "s", "step":
			s.Advance()
			return
		case "c", "continue":
			s.SetStep(false)
			s.Advance()
			return
		case "v", "vars":
			c.printVariables(snap)
		case "q", "quit":
			s.Cancel()
			return
		default:
			fmt.Fprintln(c.out, "commands: s(tep), c(ontinue), v(ars), q(uit)")
		}
	}
}

func (c *console) printVariables(snap lang.Snapshot) {
	c.printTable("globals", snap.Globals)
	if snap.Locals != nil {
		c.printTable("locals", snap.Locals)
	}
}

// printTable lists vars in two aligned columns. Long values are cut to
// maxValueWidth terminal cells.
func (c *console) printTable(title string, vars map[string]lang.Value) {
	fmt.Fprintf(c.out, "%s:\n", title)
	names := runtime.UserVariables(vars)
	if len(names) == 0 {
		fmt.Fprintln(c.out, "  (none)")
		return
	}
	width := 0
	for _, name := range names {
		if w := runewidth.StringWidth(name); w > width {
			width = w
		}
	}
	for _, name := range names {
		value := runewidth.Truncate(c.format.Format(vars[name]), maxValueWidth, "...")
		fmt.Fprintf(c.out, "  %s  %s\n", runewidth.FillRight(name, width), value)
	}
}

// runInput runs one REPL entry. A lone expression has its value printed.
func (c *console) runInput(src string, stmts []parser.Stmt) {
	first := c.nextID
	c.nextID = parser.Renumber(stmts, first)
	c.addSource(first, src)

	snap, err := c.execute(context.Background(), stmts)
	if err != nil {
		if lang.IsCancelled(err) {
			fmt.Fprintln(c.errOut, "cancelled")
		} else {
			fmt.Fprintf(c.errOut, "error: %v\n", err)
		}
		return
	}
	c.printResult(snap, stmts)
}

// printResult prints the value of a program that is a single non-void
// expression.
func (c *console) printResult(snap lang.Snapshot, stmts []parser.Stmt) {
	if len(stmts) != 1 {
		return
	}
	es, ok := stmts[0].(*parser.ExprStmt)
	if !ok {
		return
	}
	if a, ok := snap.Annotation(es.Expr); ok && a.Evaluated && a.Value.Type != lang.TypeVoid {
		fmt.Fprintln(c.out, c.format.Format(a.Value))
	}
}
