package lang

import "github.com/sergev/pseudo/parser"

// Annotation is the live execution state of one node.
type Annotation struct {
	Value     Value  // last value, for expressions
	Evaluated bool   // Value is meaningful
	Running   bool   // the statement is executing
	Error     string // failure attributed to the node
}

// Snapshot is an immutable view of a run handed to the host. Values are deep
// copies, so a host may keep a snapshot while the program goes on mutating
// its lists.
type Snapshot struct {
	Program     []parser.Stmt
	Current     parser.Stmt // statement about to run, nil at the end of a block
	Annotations map[parser.NodeID]Annotation
	Globals     map[string]Value
	Locals      map[string]Value // nil outside a procedure call
}

// Annotation returns the state recorded for node.
func (s Snapshot) Annotation(node parser.Node) (Annotation, bool) {
	a, ok := s.Annotations[node.ID()]
	return a, ok
}

// Running returns the IDs of the statements currently executing, in no
// particular order. Nested blocks leave their enclosing statements marked.
func (s Snapshot) Running() []parser.NodeID {
	var ids []parser.NodeID
	for id, a := range s.Annotations {
		if a.Running {
			ids = append(ids, id)
		}
	}
	return ids
}

func (in *Interpreter) annotate(node parser.Node, update func(*Annotation)) {
	a := in.annotations[node.ID()]
	update(&a)
	in.annotations[node.ID()] = a
}

func (in *Interpreter) snapshot() Snapshot {
	anns := make(map[parser.NodeID]Annotation, len(in.annotations))
	seen := make(map[*List]*List)
	for id, a := range in.annotations {
		if a.Evaluated {
			a.Value = a.Value.copyWith(seen)
		}
		anns[id] = a
	}
	return Snapshot{
		Program:     in.program,
		Current:     in.current,
		Annotations: anns,
		Globals:     in.env.Globals(),
		Locals:      in.env.Locals(),
	}
}
