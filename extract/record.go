// Package extract turns Python class definitions into ClassRecords: the
// parameters, interfaces, properties and traits a reference page lists.
package extract

// Kind classifies a field.
type Kind string

const (
	KindParameter Kind = "parameter"
	KindInterface Kind = "interface"
	KindProperty  Kind = "property"
	KindTrait     Kind = "trait"
)

// FieldRecord is one documented field of a class.
type FieldRecord struct {
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`
	// Type is the unit of a parameter, the type of an interface or
	// property, or the trait class of a trait.
	Type         string `json:"type,omitempty" yaml:"type,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Multiplicity int    `json:"multiplicity" yaml:"multiplicity"`
	Line         int    `json:"line" yaml:"line"`
}

// InitArg is a constructor argument.
type InitArg struct {
	Name    string `json:"name" yaml:"name"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Default string `json:"default,omitempty" yaml:"default,omitempty"`
}

// UsageExample is a code sample attached through has_usage_example.
type UsageExample struct {
	Language string `json:"language" yaml:"language"`
	Code     string `json:"code" yaml:"code"`
}

// ClassRecord is everything extracted from one class.
type ClassRecord struct {
	Name       string         `json:"name" yaml:"name"`
	Docstring  string         `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Category   string         `json:"category,omitempty" yaml:"category,omitempty"`
	Bases      []string       `json:"bases,omitempty" yaml:"bases,omitempty"`
	Fields     []FieldRecord  `json:"fields,omitempty" yaml:"fields,omitempty"`
	InitArgs   []InitArg      `json:"init_args,omitempty" yaml:"init_args,omitempty"`
	Examples   []UsageExample `json:"examples,omitempty" yaml:"examples,omitempty"`
	SourceFile string         `json:"source_file" yaml:"source_file"`
	Line       int            `json:"line" yaml:"line"`
}

// FieldsOf returns the fields of one kind in source order.
func (r *ClassRecord) FieldsOf(kind Kind) []FieldRecord {
	var out []FieldRecord
	for _, f := range r.Fields {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// IsEmpty reports whether the record has nothing to document beyond its name.
func (r *ClassRecord) IsEmpty() bool {
	return len(r.Fields) == 0 && len(r.InitArgs) == 0 && len(r.Examples) == 0
}

// GlobalAttributes are the properties shared by every component and
// interface, documented once from a well-known class.
type GlobalAttributes struct {
	Docstring  string        `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Attributes []FieldRecord `json:"attributes" yaml:"attributes"`
}
