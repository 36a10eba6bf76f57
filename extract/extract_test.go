package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/teranos/libref/errors"
)

// unpack writes a txtar archive from testdata into a temp dir.
func unpack(t *testing.T, name string) string {
	t.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	dir := t.TempDir()
	for _, f := range ar.Files {
		path := filepath.Join(dir, f.Name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, f.Data, 0o644))
	}
	return dir
}

type docMap map[string]string

func (d docMap) Docstring(class string) (string, bool) {
	doc, ok := d[class]
	return doc, ok
}

func extractFixture(t *testing.T, opts Options, class string) *ClassRecord {
	t.Helper()
	dir := unpack(t, "library.txtar")
	e := New(opts, docMap{"can_bridge": "Can be placed in series between two interfaces."})
	rec, err := e.ExtractFile(context.Background(), filepath.Join(dir, class+".py"), class)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

func fieldNamed(t *testing.T, rec *ClassRecord, name string) FieldRecord {
	t.Helper()
	for _, f := range rec.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %s not found in %v", name, rec.Fields)
	return FieldRecord{}
}

func TestParameterDescriptionIsNextStringLiteral(t *testing.T) {
	rec := extractFixture(t, DefaultOptions(), "Resistor")

	resistance := fieldNamed(t, rec, "resistance")
	assert.Equal(t, KindParameter, resistance.Kind)
	assert.Equal(t, "ohm", resistance.Type)
	assert.Equal(t, "Nominal resistance.", resistance.Description)

	maxPower := fieldNamed(t, rec, "max_power")
	assert.Equal(t, "W", maxPower.Type)
	assert.Empty(t, maxPower.Description)

	tolerance := fieldNamed(t, rec, "tolerance")
	assert.Empty(t, tolerance.Type)

	for _, f := range rec.Fields {
		assert.NotEqual(t, "x", f.Name, "plain assignments are not fields")
	}
}

func TestInterfaces(t *testing.T) {
	rec := extractFixture(t, DefaultOptions(), "Resistor")
	unnamed := fieldNamed(t, rec, "unnamed")
	assert.Equal(t, KindInterface, unnamed.Kind)
	assert.Equal(t, "Electrical", unnamed.Type)
	assert.Equal(t, 2, unnamed.Multiplicity)

	power := extractFixture(t, DefaultOptions(), "ElectricPower")
	ifaces := power.FieldsOf(KindInterface)
	require.Len(t, ifaces, 2)
	assert.Equal(t, "hv", ifaces[0].Name)
	assert.Equal(t, "Electrical", ifaces[0].Type)
	assert.Equal(t, 1, ifaces[0].Multiplicity)
}

func TestDeclaredTraits(t *testing.T) {
	rec := extractFixture(t, DefaultOptions(), "Resistor")

	traits := rec.FieldsOf(KindTrait)
	require.Len(t, traits, 3)

	assert.Equal(t, "can_bridge", traits[0].Name)
	assert.Equal(t, "can_bridge", traits[0].Type)
	assert.Equal(t, "Can be placed in series between two interfaces.", traits[0].Description)

	assert.Equal(t, "pickable", traits[1].Name)
	assert.Equal(t, "is_pickable", traits[1].Type)

	// declared even though the return shape has no trait prefix
	assert.Equal(t, "has_simple_value_representation", traits[2].Type)
}

func TestTraitHeuristics(t *testing.T) {
	opts := DefaultOptions()
	opts.DeclaredTraits = nil
	rec := extractFixture(t, opts, "ElectricPower")

	traits := rec.FieldsOf(KindTrait)
	names := make([]string, 0, len(traits))
	for _, tr := range traits {
		names = append(names, tr.Name+"="+tr.Type)
	}

	// bridge_parent returns a super() call; surge_protected has a return
	// with an index expression, which denies it despite the other return.
	assert.Equal(t, []string{
		"single_electric_reference=has_single_electric_reference",
		"can_bridge_by_name=can_bridge_by_name",
	}, names)
}

func TestHeuristicsDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.DeclaredTraits = map[string]string{"pickable": "is_pickable"}
	opts.TraitHeuristics = false
	rec := extractFixture(t, opts, "Resistor")

	traits := rec.FieldsOf(KindTrait)
	require.Len(t, traits, 1)
	assert.Equal(t, "is_pickable", traits[0].Type)
}

func TestPropertiesAndInitArgs(t *testing.T) {
	rec := extractFixture(t, DefaultOptions(), "ElectricPower")

	props := rec.FieldsOf(KindProperty)
	require.Len(t, props, 1)
	assert.Equal(t, "rails", props[0].Name)
	assert.Equal(t, "Electrical", props[0].Type)
	assert.Equal(t, "Both rails.", props[0].Description)

	assert.Equal(t, []InitArg{
		{Name: "voltage", Type: `"Quantity | None"`, Default: "None"},
		{Name: "reference", Type: "bool", Default: "False"},
	}, rec.InitArgs)
}

func TestUsageExample(t *testing.T) {
	rec := extractFixture(t, DefaultOptions(), "Resistor")

	require.Len(t, rec.Examples, 1)
	assert.Equal(t, "ato", rec.Examples[0].Language)
	assert.Equal(t, "import Resistor\n\nmodule UsageExample:\n    r = new Resistor\n    r.resistance = 10kohm +/- 5%", rec.Examples[0].Code)
}

func TestFieldsInSourceOrder(t *testing.T) {
	rec := extractFixture(t, DefaultOptions(), "Resistor")
	for i := 1; i < len(rec.Fields); i++ {
		assert.Less(t, rec.Fields[i-1].Line, rec.Fields[i].Line)
	}
	assert.Equal(t, "unnamed", rec.Fields[0].Name)
	assert.Equal(t, "A two-terminal passive component.", rec.Docstring)
	assert.Equal(t, []string{"Module"}, rec.Bases)
}

func TestEmptyClass(t *testing.T) {
	rec := extractFixture(t, DefaultOptions(), "Empty")
	assert.True(t, rec.IsEmpty())
	assert.Equal(t, "Nothing to see.", rec.Docstring)
}

func TestFailuresYieldNoRecord(t *testing.T) {
	e := New(DefaultOptions(), nil)
	ctx := context.Background()

	rec, err := e.Extract(ctx, "Broken.py", "Broken", []byte("class Broken(Module:\n    x = L.p_field(\n"))
	assert.Nil(t, rec)
	assert.True(t, errors.Is(err, errors.ErrParse))

	rec, err = e.Extract(ctx, "Other.py", "Missing", []byte("class Other:\n    pass\n"))
	assert.Nil(t, rec)
	assert.True(t, errors.Is(err, errors.ErrClassNotFound))

	rec, err = e.ExtractFile(ctx, filepath.Join(t.TempDir(), "Nope.py"), "Nope")
	assert.Nil(t, rec)
	assert.Error(t, err)
}

func TestExtractGlobals(t *testing.T) {
	dir := unpack(t, "library.txtar")
	e := New(DefaultOptions(), nil)

	globals, err := e.ExtractGlobals(context.Background(), filepath.Join(dir, "attributes.py"), "GlobalAttributes")
	require.NoError(t, err)

	assert.Equal(t, "Attributes every component accepts.", globals.Docstring)
	require.Len(t, globals.Attributes, 3)
	assert.Equal(t, "lcsc_id", globals.Attributes[0].Name)
	assert.Equal(t, "str", globals.Attributes[0].Type)
	assert.Equal(t, "LCSC part number.", globals.Attributes[0].Description)
	assert.Equal(t, "package", globals.Attributes[1].Name)
	assert.Equal(t, `"SMDSize"`, globals.Attributes[1].Type)
	assert.Equal(t, "manufacturer", globals.Attributes[2].Name)
	assert.Equal(t, "string", globals.Attributes[2].Type, "no setter")

	_, err = e.ExtractGlobals(context.Background(), filepath.Join(dir, "attributes.py"), "Nope")
	assert.True(t, errors.Is(err, errors.ErrClassNotFound))
}

func TestDescribeTraitsFollowsLookup(t *testing.T) {
	e := New(DefaultOptions(), docMap{"is_pickable": "  Pickable by type.  "})
	rec := &ClassRecord{Fields: []FieldRecord{
		{Name: "pickable", Kind: KindTrait, Type: "is_pickable", Description: "old"},
		{Name: "other", Kind: KindTrait, Type: "has_x", Description: "kept"},
		{Name: "is_pickable", Kind: KindParameter, Description: "param"},
	}}

	e.DescribeTraits(rec)
	assert.Equal(t, "Pickable by type.", rec.Fields[0].Description)
	assert.Equal(t, "kept", rec.Fields[1].Description)
	assert.Equal(t, "param", rec.Fields[2].Description)
}

func TestFingerprintTracksOptions(t *testing.T) {
	a := New(DefaultOptions(), nil).Fingerprint()
	assert.Equal(t, a, New(DefaultOptions(), docMap{}).Fingerprint())

	opts := DefaultOptions()
	opts.TraitHeuristics = false
	assert.NotEqual(t, a, New(opts, nil).Fingerprint())
}
