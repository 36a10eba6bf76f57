package pysrc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/libref/errors"
)

const resistorSrc = `import faebryk.library._F as F
from faebryk.libs.library import L


class Resistor(F.Module, metaclass=Meta):
    """
    A resistor.

        Indented detail.
    """

    unnamed = L.list_field(2, F.Electrical)
    resistance = L.p_field(
        units=P.ohm,
        likely_constrained=True,
    )
    """Resistance of the part."""
    # a comment between statements
    max_power = L.p_field(units=P.W)
    p1: F.Electrical
    a, b = 1, 2

    def __init__(self, value: "Quantity" = None, *args, strict: bool = False, **kwargs):
        super().__init__()

    @L.rt_field
    def pickable(self):
        if self.x:
            return F.is_pickable_by_type(
                F.is_pickable_by_type.Type.Resistor,
            )
        return None

    @property
    def total(self) -> F.Electrical:
        """Both ends."""
        return self.unnamed

    @total.setter
    def total(self, value: str):
        pass

    class Inner(F.Trait):
        pass
`

func parse(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse(context.Background(), "Resistor.py", []byte(src))
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func TestParseRejectsSyntaxErrors(t *testing.T) {
	_, err := Parse(context.Background(), "Broken.py", []byte("class Broken(:\n    x = (\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrParse))
	assert.Contains(t, err.Error(), "Broken.py")
}

func TestClasses(t *testing.T) {
	f := parse(t, resistorSrc)

	classes := f.Classes()
	require.Len(t, classes, 2)
	assert.Equal(t, "Resistor", classes[0].Name)
	assert.Equal(t, []string{"F", "Module"}, classes[0].Bases)
	assert.Equal(t, 5, classes[0].Line)
	assert.Equal(t, "A resistor.\n\n    Indented detail.", classes[0].Docstring)

	inner, ok := f.FindClass("Inner")
	require.True(t, ok)
	assert.Equal(t, []string{"F", "Trait"}, inner.Bases)
	assert.Empty(t, inner.Docstring)

	_, ok = f.FindClass("Capacitor")
	assert.False(t, ok)
}

func TestAssignments(t *testing.T) {
	f := parse(t, resistorSrc)
	c, _ := f.FindClass("Resistor")

	assigns := c.Assignments()
	require.Len(t, assigns, 4)

	assert.Equal(t, "unnamed", assigns[0].Target)
	assert.Equal(t, "L.list_field(2, F.Electrical)", assigns[0].Value)
	assert.Empty(t, assigns[0].Description)

	assert.Equal(t, "resistance", assigns[1].Target)
	assert.Equal(t, "L.p_field(units=P.ohm, likely_constrained=True,)", assigns[1].Value)
	assert.Equal(t, "Resistance of the part.", assigns[1].Description)

	// comments are not statements
	assert.Equal(t, "max_power", assigns[2].Target)
	assert.Empty(t, assigns[2].Description)

	assert.Equal(t, "p1", assigns[3].Target)
	assert.Equal(t, "F.Electrical", assigns[3].Annotation)
	assert.Empty(t, assigns[3].Value)
}

func TestMethods(t *testing.T) {
	f := parse(t, resistorSrc)
	c, _ := f.FindClass("Resistor")

	methods := c.Methods()
	require.Len(t, methods, 4)

	init := methods[0]
	assert.True(t, init.IsDunder())
	assert.Equal(t, []Param{
		{Name: "self"},
		{Name: "value", Type: `"Quantity"`, Default: "None"},
		{Name: "strict", Type: "bool", Default: "False"},
	}, init.Params())

	pickable := methods[1]
	assert.Equal(t, "L.rt_field", pickable.PrimaryDecorator())
	assert.Equal(t, []string{
		"F.is_pickable_by_type(F.is_pickable_by_type.Type.Resistor,)",
		"None",
	}, pickable.Returns())

	total := methods[2]
	assert.Equal(t, "property", total.PrimaryDecorator())
	assert.Equal(t, "Both ends.", total.Docstring)
	assert.Equal(t, "F.Electrical", total.ReturnType)

	setter := methods[3]
	assert.Equal(t, "total.setter", setter.PrimaryDecorator())
	assert.Equal(t, "str", setter.Params()[1].Type)
}

func TestKeywordArg(t *testing.T) {
	f := parse(t, `class Demo(Module):
    usage_example = L.f_field(F.has_usage_example)(
        example="""
        import Demo
        """,
        language=F.has_usage_example.Language.ato,
    )
`)
	c, _ := f.FindClass("Demo")
	a := c.Assignments()[0]

	example, ok := a.KeywordArg("example")
	require.True(t, ok)
	s, ok := f.StringValue(example)
	require.True(t, ok)
	assert.Equal(t, "\n        import Demo\n        ", s)

	lang, ok := a.KeywordArg("language")
	require.True(t, ok)
	assert.Equal(t, "F.has_usage_example.Language.ato", f.Text(lang))

	_, ok = a.KeywordArg("missing")
	assert.False(t, ok)
}

func TestCompact(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a  =\n  b", "a = b"},
		{"foo(\n    x,\n    y\n)", "foo(x, y)"},
		{"super( ).__init__( )", "super().__init__()"},
		{"self.x [ 0 ]", "self.x [0]"},
		{"  leading and trailing  ", "leading and trailing"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Compact(tc.in), "Compact(%q)", tc.in)
	}
}

func TestDecodeString(t *testing.T) {
	cases := []struct{ in, want string }{
		{`"plain"`, "plain"},
		{`'single'`, "single"},
		{`"""tri\nple"""`, "tri\nple"},
		{`r"raw\n"`, `raw\n`},
		{`"esc\"aped\t"`, "esc\"aped\t"},
		{`"keep \d unknown"`, `keep \d unknown`},
		{"'''a\\\ncontinued'''", "acontinued"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DecodeString(tc.in), "DecodeString(%q)", tc.in)
	}
}

func TestCleanDocAndDedent(t *testing.T) {
	assert.Equal(t, "Title\n\nBody\n  nested", CleanDoc("  Title\n\n    Body\n      nested\n    "))
	assert.Equal(t, "one line", CleanDoc("one line"))
	assert.Equal(t, "a\n  b\n\nc", Dedent("    a\n      b\n\n    c"))
}
