package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/logger"
	"github.com/teranos/libref/pysrc"
)

// Version changes whenever extraction output for the same input changes.
const Version = "1"

// DocLookup resolves the docstring of a library class by name.
// The library index implements it; traits are described with it.
type DocLookup interface {
	Docstring(class string) (string, bool)
}

// Extractor builds ClassRecords from Python source.
type Extractor struct {
	opts   Options
	traits *TraitClassifier
	docs   DocLookup
	logger *zap.SugaredLogger

	unitRe      *regexp.Regexp
	typeRe      *regexp.Regexp
	countRes    []*regexp.Regexp
	interfaceRe *regexp.Regexp
}

// New creates an Extractor. docs may be nil.
func New(opts Options, docs DocLookup) *Extractor {
	q := regexp.QuoteMeta(opts.Namespace)
	e := &Extractor{
		opts:        opts,
		traits:      NewTraitClassifier(opts.Namespace, opts.DeclaredTraits, opts.TraitHeuristics),
		docs:        docs,
		logger:      logger.ComponentLogger("extract"),
		unitRe:      regexp.MustCompile(`units\s*=\s*P\.(\w+)`),
		typeRe:      regexp.MustCompile(q + `\.(\w+)`),
		interfaceRe: regexp.MustCompile(`^` + q + `\.([A-Z]\w*)$`),
	}
	for _, f := range opts.ListFactories {
		e.countRes = append(e.countRes, regexp.MustCompile(regexp.QuoteMeta(f)+`\(\s*(\d+)`))
	}
	return e
}

// ExtractFile reads path and extracts the class called name.
func (e *Extractor) ExtractFile(ctx context.Context, path, name string) (*ClassRecord, error) {
	f, err := pysrc.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return e.fromFile(f, name)
}

// Extract parses src (labelled path in errors) and extracts the class
// called name. On any error no record is returned.
func (e *Extractor) Extract(ctx context.Context, path, name string, src []byte) (*ClassRecord, error) {
	f, err := pysrc.Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return e.fromFile(f, name)
}

func (e *Extractor) fromFile(f *pysrc.File, name string) (*ClassRecord, error) {
	c, ok := f.FindClass(name)
	if !ok {
		return nil, errors.Wrapf(errors.ErrClassNotFound, "%s in %s", name, f.Path)
	}
	return e.FromClass(c), nil
}

// FromClass extracts a record from an already parsed class.
func (e *Extractor) FromClass(c *pysrc.Class) *ClassRecord {
	rec := &ClassRecord{
		Name:       c.Name,
		Docstring:  c.Docstring,
		Bases:      c.Bases,
		SourceFile: c.File().Path,
		Line:       c.Line,
	}

	for _, a := range c.Assignments() {
		if field, ok := e.classifyAssignment(a); ok {
			rec.Fields = append(rec.Fields, field)
			continue
		}
		if ex, ok := e.usageExample(a); ok {
			rec.Examples = append(rec.Examples, ex)
		}
	}

	for _, fn := range c.Methods() {
		if fn.Name == "__init__" {
			rec.InitArgs = initArgs(fn)
			continue
		}
		if fn.IsDunder() {
			continue
		}
		if field, ok := e.classifyMethod(fn); ok {
			rec.Fields = append(rec.Fields, field)
		}
	}

	sort.SliceStable(rec.Fields, func(i, j int) bool {
		return rec.Fields[i].Line < rec.Fields[j].Line
	})
	e.DescribeTraits(rec)

	e.logger.Debugw("Extracted class",
		logger.FieldClass, rec.Name,
		logger.FieldFile, rec.SourceFile,
		logger.FieldCount, len(rec.Fields),
	)
	return rec
}

func (e *Extractor) classifyAssignment(a *pysrc.Assignment) (FieldRecord, bool) {
	field := FieldRecord{
		Name:         a.Target,
		Description:  a.Description,
		Multiplicity: 1,
		Line:         a.Line,
	}

	switch {
	case containsAny(a.Value, e.opts.ParameterFactories):
		field.Kind = KindParameter
		if m := e.unitRe.FindStringSubmatch(a.Value); m != nil {
			field.Type = m[1]
		}
		return field, true

	case containsAny(a.Value, e.opts.ListFactories):
		field.Kind = KindInterface
		field.Type = "Unknown"
		for _, re := range e.countRes {
			if m := re.FindStringSubmatch(a.Value); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
					field.Multiplicity = n
				}
				break
			}
		}
		if m := e.typeRe.FindStringSubmatch(a.Value); m != nil {
			field.Type = m[1]
		}
		return field, true

	case containsAny(a.Value, e.opts.TraitFieldFactories):
		// trait instances are not fields; usage examples are picked up separately
		return FieldRecord{}, false

	case a.Value == "" && a.Annotation != "":
		if m := e.interfaceRe.FindStringSubmatch(a.Annotation); m != nil {
			field.Kind = KindInterface
			field.Type = m[1]
			return field, true
		}
	}
	return FieldRecord{}, false
}

func (e *Extractor) usageExample(a *pysrc.Assignment) (UsageExample, bool) {
	if !containsAny(a.Value, e.opts.TraitFieldFactories) || !strings.Contains(a.Value, "has_usage_example") {
		return UsageExample{}, false
	}
	node, ok := a.KeywordArg("example")
	if !ok {
		return UsageExample{}, false
	}
	code, ok := a.File().StringValue(node)
	if !ok {
		return UsageExample{}, false
	}

	ex := UsageExample{Language: "ato", Code: strings.TrimSpace(pysrc.Dedent(code))}
	if lang, ok := a.KeywordArg("language"); ok {
		text := a.File().Text(lang)
		ex.Language = text[strings.LastIndex(text, ".")+1:]
	}
	return ex, true
}

func (e *Extractor) classifyMethod(fn *pysrc.Function) (FieldRecord, bool) {
	decorator := fn.PrimaryDecorator()

	switch {
	case slices.Contains(e.opts.PropertyDecorators, decorator):
		return FieldRecord{
			Name:         fn.Name,
			Kind:         KindProperty,
			Type:         lastIdentifier(fn.ReturnType),
			Description:  fn.Docstring,
			Multiplicity: 1,
			Line:         fn.Line,
		}, true

	case slices.Contains(e.opts.RuntimeFieldDecorators, decorator):
		class, ok := e.traits.Classify(fn.Name, fn.Returns())
		if !ok {
			e.logger.Debugw("Runtime field is not a trait", "method", fn.Name, logger.FieldLine, fn.Line)
			return FieldRecord{}, false
		}
		return FieldRecord{
			Name:         fn.Name,
			Kind:         KindTrait,
			Type:         class,
			Description:  fn.Docstring,
			Multiplicity: 1,
			Line:         fn.Line,
		}, true
	}
	return FieldRecord{}, false
}

// DescribeTraits sets each trait field's description to the docstring of
// its trait class, when the DocLookup knows the class. Cached records are
// passed through it again so descriptions follow the current library.
func (e *Extractor) DescribeTraits(rec *ClassRecord) {
	if e.docs == nil {
		return
	}
	for i, f := range rec.Fields {
		if f.Kind != KindTrait {
			continue
		}
		if doc, found := e.docs.Docstring(f.Type); found && strings.TrimSpace(doc) != "" {
			rec.Fields[i].Description = strings.TrimSpace(doc)
		}
	}
}

// Fingerprint identifies the options and extractor revision, for cache keys.
func (e *Extractor) Fingerprint() string {
	data, _ := json.Marshal(e.opts)
	sum := sha256.Sum256(append([]byte(Version+"\n"), data...))
	return hex.EncodeToString(sum[:8])
}

func initArgs(fn *pysrc.Function) []InitArg {
	var args []InitArg
	for i, p := range fn.Params() {
		if i == 0 && (p.Name == "self" || p.Name == "cls") {
			continue
		}
		args = append(args, InitArg{Name: p.Name, Type: p.Type, Default: p.Default})
	}
	return args
}

// lastIdentifier reduces a type expression to its final name:
// `F.Electrical` -> Electrical, `"F.ElectricPower"` -> ElectricPower.
func lastIdentifier(expr string) string {
	expr = strings.Trim(expr, `"' `)
	if i := strings.LastIndex(expr, "."); i >= 0 {
		return expr[i+1:]
	}
	return expr
}

// String renders a short summary, used in debug output.
func (r *ClassRecord) String() string {
	return fmt.Sprintf("%s (%s, %d fields)", r.Name, r.SourceFile, len(r.Fields))
}
