package pysrc

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Assignment is a single-target assignment or annotated declaration in a
// class body, e.g. `resistance = L.p_field(units=P.ohm)` or `p1: F.Electrical`.
type Assignment struct {
	Target     string
	Annotation string // compacted annotation text, "" when absent
	Value      string // compacted right-hand text, "" for bare annotations
	Line       int
	// Description is the stripped string literal of the statement directly
	// after the assignment, when there is one.
	Description string

	value *sitter.Node
	file  *File
}

// Assignments returns the simple assignments of the class body in order.
// Tuple, attribute and chained targets are skipped.
func (c *Class) Assignments() []*Assignment {
	stmts := c.Statements()
	var out []*Assignment
	for i, stmt := range stmts {
		a := c.file.assignment(stmt)
		if a == nil {
			continue
		}
		if i+1 < len(stmts) {
			if s, ok := c.file.StatementString(stmts[i+1]); ok {
				a.Description = strings.TrimSpace(s)
			}
		}
		out = append(out, a)
	}
	return out
}

func (f *File) assignment(stmt *sitter.Node) *Assignment {
	if stmt.Type() != "expression_statement" {
		return nil
	}
	children := namedChildren(stmt)
	if len(children) != 1 || children[0].Type() != "assignment" {
		return nil
	}
	n := children[0]

	left := n.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return nil
	}
	right := n.ChildByFieldName("right")
	if right != nil && right.Type() == "assignment" {
		return nil
	}

	a := &Assignment{
		Target: f.Text(left),
		Line:   Line(n),
		value:  right,
		file:   f,
	}
	if t := n.ChildByFieldName("type"); t != nil {
		a.Annotation = Compact(f.Text(t))
	}
	if right != nil {
		a.Value = Compact(f.Text(right))
	}
	return a
}

// KeywordArg returns the value node of the first keyword argument named
// name in any call inside the assignment's right-hand side.
func (a *Assignment) KeywordArg(name string) (*sitter.Node, bool) {
	if a.value == nil {
		return nil, false
	}
	var found *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for _, child := range namedChildren(n) {
			if found != nil {
				return
			}
			if child.Type() == "keyword_argument" && a.file.Text(child.ChildByFieldName("name")) == name {
				found = child.ChildByFieldName("value")
				return
			}
			walk(child)
		}
	}
	walk(a.value)
	return found, found != nil
}

// File returns the file the assignment was found in.
func (a *Assignment) File() *File {
	return a.file
}
