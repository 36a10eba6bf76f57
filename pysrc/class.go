package pysrc

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Class is a class definition found in a File.
type Class struct {
	Name      string
	Bases     []string // every identifier named in the superclass list
	Docstring string
	Line      int
	Body      *sitter.Node

	file *File
}

// Classes returns every class definition in the file, outermost first,
// in source order.
func (f *File) Classes() []*Class {
	var classes []*Class
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for _, child := range namedChildren(n) {
			if child.Type() == "class_definition" {
				classes = append(classes, f.newClass(child))
			}
			walk(child)
		}
	}
	walk(f.Root)
	return classes
}

// TopLevelClasses returns the classes defined at module level, decorated
// ones included.
func (f *File) TopLevelClasses() []*Class {
	var classes []*Class
	for _, child := range namedChildren(f.Root) {
		def := child
		if def.Type() == "decorated_definition" {
			def = def.ChildByFieldName("definition")
		}
		if def != nil && def.Type() == "class_definition" {
			classes = append(classes, f.newClass(def))
		}
	}
	return classes
}

// FindClass returns the first class definition named name.
func (f *File) FindClass(name string) (*Class, bool) {
	for _, c := range f.Classes() {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (f *File) newClass(n *sitter.Node) *Class {
	c := &Class{
		Name: f.Text(n.ChildByFieldName("name")),
		Line: Line(n),
		Body: n.ChildByFieldName("body"),
		file: f,
	}
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for _, arg := range namedChildren(supers) {
			// metaclass=... and other keywords are not bases
			if arg.Type() == "keyword_argument" {
				continue
			}
			c.Bases = append(c.Bases, f.identifiers(arg)...)
		}
	}
	c.Docstring = f.Docstring(c.Body)
	return c
}

// Statements returns the statements of the class body, comments excluded.
func (c *Class) Statements() []*sitter.Node {
	return namedChildren(c.Body)
}

// File returns the file the class was found in.
func (c *Class) File() *File {
	return c.file
}

// identifiers collects identifier leaves under n in source order.
func (f *File) identifiers(n *sitter.Node) []string {
	if n.Type() == "identifier" {
		return []string{f.Text(n)}
	}
	var out []string
	for _, child := range namedChildren(n) {
		out = append(out, f.identifiers(child)...)
	}
	return out
}

// Docstring returns the cleaned docstring of a block: its first statement
// when that statement is a string literal.
func (f *File) Docstring(block *sitter.Node) string {
	stmts := namedChildren(block)
	if len(stmts) == 0 {
		return ""
	}
	s, ok := f.StatementString(stmts[0])
	if !ok {
		return ""
	}
	return CleanDoc(s)
}

// StatementString reports whether stmt is an expression statement holding
// only a string literal, and returns the literal's value.
func (f *File) StatementString(stmt *sitter.Node) (string, bool) {
	if stmt == nil || stmt.Type() != "expression_statement" {
		return "", false
	}
	children := namedChildren(stmt)
	if len(children) != 1 {
		return "", false
	}
	return f.StringValue(children[0])
}

// StringValue decodes a string or concatenated_string node.
func (f *File) StringValue(n *sitter.Node) (string, bool) {
	switch n.Type() {
	case "string":
		return DecodeString(f.Text(n)), true
	case "concatenated_string":
		var out string
		for _, part := range namedChildren(n) {
			s, ok := f.StringValue(part)
			if !ok {
				return "", false
			}
			out += s
		}
		return out, true
	}
	return "", false
}
