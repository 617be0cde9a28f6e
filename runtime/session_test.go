package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sergev/pseudo/lang"
	"github.com/sergev/pseudo/parser"
)

func mustParse(t *testing.T, src string) []parser.Stmt {
	t.Helper()
	stmts, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return stmts
}

// nextEvent fails the test instead of hanging when the session stalls.
func nextEvent(t *testing.T, s *Session) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		return ev, ok
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for an event")
		return Event{}, false
	}
}

// drain collects the remaining events up to and including EventDone.
func drain(t *testing.T, s *Session) []Event {
	t.Helper()
	var events []Event
	for {
		ev, ok := nextEvent(t, s)
		if !ok {
			return events
		}
		events = append(events, ev)
	}
}

func kinds(events []Event, skipInfo bool) []EventKind {
	var out []EventKind
	for _, ev := range events {
		if skipInfo && ev.Kind == EventInfo {
			continue
		}
		out = append(out, ev.Kind)
	}
	return out
}

func TestSessionRunsToCompletion(t *testing.T) {
	s := Start(context.Background(), mustParse(t, "x <- 2\nDISPLAY(x)\nDISPLAY(x+1)"))
	events := drain(t, s)
	var shown []float64
	for _, ev := range events {
		if ev.Kind == EventDisplay {
			shown = append(shown, ev.Value.Num())
		}
	}
	if len(shown) != 2 || shown[0] != 2 || shown[1] != 3 {
		t.Fatalf("expected displays 2 and 3, got %v", shown)
	}
	last := events[len(events)-1]
	if last.Kind != EventDone || last.Err != nil {
		t.Fatalf("expected a clean done event, got %v %v", last.Kind, last.Err)
	}
	if err := s.Wait(); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
}

func TestSessionStepsOnAdvance(t *testing.T) {
	s := Start(context.Background(), mustParse(t, "DISPLAY(1)\nDISPLAY(2)"), lang.WithStep(true))
	var order []EventKind
	for {
		ev, ok := nextEvent(t, s)
		if !ok {
			break
		}
		switch ev.Kind {
		case EventInfo:
			continue
		case EventPaused:
			if !s.Advance() {
				t.Fatalf("expected Advance to release the pause")
			}
			if s.Advance() {
				t.Fatalf("expected a second Advance to be a no-op")
			}
		}
		order = append(order, ev.Kind)
	}
	want := []EventKind{EventPaused, EventDisplay, EventPaused, EventDisplay, EventDone}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestResumerIsSingleUse(t *testing.T) {
	r := newResumer()
	if !r.Resume("a") {
		t.Fatalf("expected first Resume to succeed")
	}
	if r.Resume("b") {
		t.Fatalf("expected second Resume to be ignored")
	}
	if got := <-r.ch; got != "a" {
		t.Fatalf("expected the first answer, got %q", got)
	}
}

func TestSessionProvidesInput(t *testing.T) {
	s := Start(context.Background(), mustParse(t, "x <- INPUT()\nDISPLAY(x * 2)"))
	var shown []lang.Value
	for {
		ev, ok := nextEvent(t, s)
		if !ok {
			break
		}
		switch ev.Kind {
		case EventInputRequested:
			if s.Advance() {
				t.Fatalf("expected Advance not to answer an input request")
			}
			if !s.ProvideInput("21") {
				t.Fatalf("expected ProvideInput to answer the request")
			}
		case EventDisplay:
			shown = append(shown, ev.Value)
		}
	}
	if len(shown) != 1 || shown[0].Num() != 42 {
		t.Fatalf("expected 42, got %v", shown)
	}
}

func TestSessionCancelDuringInput(t *testing.T) {
	s := Start(context.Background(), mustParse(t, "x <- INPUT()\nDISPLAY(x)"))
	for {
		ev, _ := nextEvent(t, s)
		if ev.Kind == EventInputRequested {
			break
		}
	}
	s.Cancel()
	rest := drain(t, s)
	if got := kinds(rest, false); len(got) != 1 || got[0] != EventDone {
		t.Fatalf("expected only the done event after cancel, got %v", got)
	}
	if !errors.Is(rest[0].Err, lang.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", rest[0].Err)
	}
	if !errors.Is(s.Wait(), lang.ErrCancelled) {
		t.Fatalf("expected Wait to report cancellation")
	}
}

func TestSessionCancelDuringPause(t *testing.T) {
	s := Start(context.Background(), mustParse(t, "DISPLAY(1)\nDISPLAY(2)"), lang.WithStep(true))
	for {
		ev, _ := nextEvent(t, s)
		if ev.Kind == EventPaused {
			break
		}
	}
	s.Cancel()
	rest := drain(t, s)
	if got := kinds(rest, false); len(got) != 1 || got[0] != EventDone {
		t.Fatalf("expected only the done event after cancel, got %v", got)
	}
	if !lang.IsCancelled(rest[0].Err) {
		t.Fatalf("expected cancellation, got %v", rest[0].Err)
	}
}

func TestSessionSetStepAndRuntimeError(t *testing.T) {
	s := Start(context.Background(), mustParse(t, "x <- 1\nDISPLAY(x)\ny <- missing"), lang.WithStep(true))
	for {
		ev, ok := nextEvent(t, s)
		if !ok {
			break
		}
		if ev.Kind == EventPaused {
			s.SetStep(false)
			s.Advance()
		}
	}
	var rerr *lang.RuntimeError
	if err := s.Wait(); !errors.As(err, &rerr) || rerr.Message != "unknown name missing" {
		t.Fatalf("expected unknown name error, got %v", err)
	}
}

func TestRunnerKeepsGlobals(t *testing.T) {
	r := NewRunner()
	drain(t, r.Start(context.Background(), mustParse(t, "x <- 20")))
	s := r.Start(context.Background(), mustParse(t, "x <- x + 1"))
	drain(t, s)
	if err := s.Wait(); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if got := r.Interpreter().Globals()["x"].Num(); got != 21 {
		t.Fatalf("expected x = 21, got %v", got)
	}
}

func TestEventKindString(t *testing.T) {
	if EventPaused.String() != "paused" || EventKind(99).String() != "unknown" {
		t.Fatalf("unexpected event names")
	}
}
