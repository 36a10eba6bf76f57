package pysrc

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Function is a method defined in a class body.
type Function struct {
	Name       string
	Decorators []string // decorator names in source order, call arguments dropped
	Docstring  string
	ReturnType string
	Line       int

	node *sitter.Node // function_definition
	file *File
}

// Param is one function parameter.
type Param struct {
	Name    string
	Type    string
	Default string
}

// Methods returns the functions defined directly in the class body,
// decorated or not, in source order.
func (c *Class) Methods() []*Function {
	var out []*Function
	for _, stmt := range c.Statements() {
		if fn := c.file.function(stmt); fn != nil {
			out = append(out, fn)
		}
	}
	return out
}

func (f *File) function(stmt *sitter.Node) *Function {
	var decorators []string
	def := stmt
	if stmt.Type() == "decorated_definition" {
		for _, child := range namedChildren(stmt) {
			if child.Type() == "decorator" {
				if exprs := namedChildren(child); len(exprs) > 0 {
					decorators = append(decorators, f.decoratorName(exprs[0]))
				}
			}
		}
		def = stmt.ChildByFieldName("definition")
	}
	if def == nil || def.Type() != "function_definition" {
		return nil
	}

	fn := &Function{
		Name:       f.Text(def.ChildByFieldName("name")),
		Decorators: decorators,
		Line:       Line(def),
		node:       def,
		file:       f,
	}
	fn.Docstring = f.Docstring(def.ChildByFieldName("body"))
	if rt := def.ChildByFieldName("return_type"); rt != nil {
		fn.ReturnType = Compact(f.Text(rt))
	}
	return fn
}

// decoratorName renders a decorator expression: `property`, `L.rt_field`,
// `x.setter`. Calls are reduced to the called name.
func (f *File) decoratorName(expr *sitter.Node) string {
	if expr.Type() == "call" {
		return f.decoratorName(expr.ChildByFieldName("function"))
	}
	return Compact(f.Text(expr))
}

// PrimaryDecorator returns the first decorator, or "".
func (fn *Function) PrimaryDecorator() string {
	if len(fn.Decorators) == 0 {
		return ""
	}
	return fn.Decorators[0]
}

// Returns returns the whitespace-normalised expression of every return
// statement in the body, including nested blocks. Bare returns are skipped.
func (fn *Function) Returns() []string {
	var out []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for _, child := range namedChildren(n) {
			if child.Type() == "return_statement" {
				if exprs := namedChildren(child); len(exprs) > 0 {
					out = append(out, Compact(fn.file.Text(exprs[0])))
				}
				continue
			}
			walk(child)
		}
	}
	walk(fn.node.ChildByFieldName("body"))
	return out
}

// Params returns named parameters in order. *args, **kwargs and the
// bare * and / separators are left out.
func (fn *Function) Params() []Param {
	var out []Param
	for _, p := range namedChildren(fn.node.ChildByFieldName("parameters")) {
		f := fn.file
		switch p.Type() {
		case "identifier":
			out = append(out, Param{Name: f.Text(p)})
		case "typed_parameter":
			children := namedChildren(p)
			if len(children) == 0 || children[0].Type() != "identifier" {
				continue
			}
			out = append(out, Param{
				Name: f.Text(children[0]),
				Type: Compact(f.Text(p.ChildByFieldName("type"))),
			})
		case "default_parameter":
			out = append(out, Param{
				Name:    f.Text(p.ChildByFieldName("name")),
				Default: Compact(f.Text(p.ChildByFieldName("value"))),
			})
		case "typed_default_parameter":
			out = append(out, Param{
				Name:    f.Text(p.ChildByFieldName("name")),
				Type:    Compact(f.Text(p.ChildByFieldName("type"))),
				Default: Compact(f.Text(p.ChildByFieldName("value"))),
			})
		}
	}
	return out
}

// IsDunder reports whether the method name starts with a double underscore.
func (fn *Function) IsDunder() bool {
	return strings.HasPrefix(fn.Name, "__")
}
