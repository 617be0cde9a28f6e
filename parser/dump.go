package parser

import (
	"bytes"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DumpYAML renders the tree as a YAML sequence of nodes. Each node carries its
// id, kind and position so an external renderer can match it against
// interpreter snapshots.
func DumpYAML(stmts []Stmt) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.SequenceNode}
	for _, s := range stmts {
		root.Content = append(root.Content, nodeYAML(s))
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type yamlMap struct {
	node *yaml.Node
}

func newYAMLMap() yamlMap {
	return yamlMap{node: &yaml.Node{Kind: yaml.MappingNode}}
}

func (m yamlMap) set(key string, value *yaml.Node) {
	m.node.Content = append(m.node.Content, scalar(key, "!!str"), value)
}

func (m yamlMap) str(key, value string) {
	m.set(key, scalar(value, "!!str"))
}

func scalar(value, tag string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func intScalar(v int) *yaml.Node {
	return scalar(strconv.Itoa(v), "!!int")
}

func blockYAML(block Block) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, s := range block {
		seq.Content = append(seq.Content, nodeYAML(s))
	}
	return seq
}

func exprsYAML(exprs []Expr) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, e := range exprs {
		seq.Content = append(seq.Content, nodeYAML(e))
	}
	if len(exprs) > 0 {
		seq.Style = 0
	}
	return seq
}

func nodeYAML(node Node) *yaml.Node {
	m := newYAMLMap()
	m.set("id", intScalar(int(node.ID())))
	kind := func(k string) { m.str("kind", k) }
	switch n := node.(type) {
	case *NumberLit:
		kind("number")
		m.set("value", scalar(FormatNumber(n.Value), ""))
	case *StringLit:
		kind("string")
		m.str("value", n.Value)
	case *BoolLit:
		kind("boolean")
		m.set("value", scalar(strconv.FormatBool(n.Value), ""))
	case *VariableExpr:
		kind("variable")
		m.str("name", n.Name)
	case *BinaryExpr:
		kind("operator")
		m.str("operator", string(n.Op))
		m.set("lhs", nodeYAML(n.Left))
		m.set("rhs", nodeYAML(n.Right))
	case *NotExpr:
		kind("not")
		m.set("value", nodeYAML(n.Expr))
	case *NegateExpr:
		kind("negate")
		m.set("value", nodeYAML(n.Expr))
	case *ListExpr:
		kind("list")
		m.set("items", exprsYAML(n.Elements))
	case *SubscriptExpr:
		kind("subscript")
		m.set("list", nodeYAML(n.List))
		m.set("index", nodeYAML(n.Index))
	case *CallExpr:
		kind("call")
		m.set("procedure", nodeYAML(n.Callee))
		m.set("parameters", exprsYAML(n.Args))
	case *AssignStmt:
		kind("assign")
		m.set("lhs", nodeYAML(n.Target))
		m.set("rhs", nodeYAML(n.Value))
	case *IfStmt:
		if n.HasElse() {
			kind("ifelse")
		} else {
			kind("if")
		}
		m.set("condition", nodeYAML(n.Cond))
		m.set("iftrue", blockYAML(n.Then))
		if n.HasElse() {
			m.set("iffalse", blockYAML(n.Else))
		}
	case *RepeatTimesStmt:
		kind("repeattimes")
		m.set("times", nodeYAML(n.Count))
		m.set("block", blockYAML(n.Body))
	case *RepeatUntilStmt:
		kind("repeatuntil")
		m.set("condition", nodeYAML(n.Cond))
		m.set("block", blockYAML(n.Body))
	case *ForEachStmt:
		kind("foreach")
		m.set("itemvar", nodeYAML(n.Var))
		m.set("list", nodeYAML(n.List))
		m.set("block", blockYAML(n.Body))
	case *ProcedureStmt:
		kind("procedure")
		m.str("name", n.Name)
		params := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, p := range n.Params {
			params.Content = append(params.Content, scalar(p, "!!str"))
		}
		m.set("parameters", params)
		m.set("block", blockYAML(n.Body))
	case *ReturnStmt:
		if n.Value == nil {
			kind("returnvoid")
			break
		}
		kind("return")
		m.set("value", nodeYAML(n.Value))
	case *BreakpointStmt:
		kind("breakpoint")
	case *ExprStmt:
		kind("exprstat")
		m.set("expr", nodeYAML(n.Expr))
	}
	pos := node.Pos()
	m.set("line", intScalar(pos.Line))
	m.set("col", intScalar(pos.Column))
	return m.node
}
