package extract

import (
	"context"
	"slices"
	"strings"

	"github.com/teranos/libref/errors"
	"github.com/teranos/libref/logger"
	"github.com/teranos/libref/pysrc"
)

// ExtractGlobals reads the attributes shared by all components from the
// class className in path: every public property, typed by the value
// parameter of its setter.
func (e *Extractor) ExtractGlobals(ctx context.Context, path, className string) (*GlobalAttributes, error) {
	f, err := pysrc.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, ok := f.FindClass(className)
	if !ok {
		return nil, errors.Wrapf(errors.ErrClassNotFound, "%s in %s", className, path)
	}

	methods := c.Methods()
	setterTypes := map[string]string{}
	for _, fn := range methods {
		name, ok := strings.CutSuffix(fn.PrimaryDecorator(), ".setter")
		if !ok {
			continue
		}
		if params := fn.Params(); len(params) > 1 {
			setterTypes[name] = params[1].Type
		}
	}

	globals := &GlobalAttributes{Docstring: c.Docstring}
	for _, fn := range methods {
		if strings.HasPrefix(fn.Name, "_") || !slices.Contains(e.opts.PropertyDecorators, fn.PrimaryDecorator()) {
			continue
		}
		typ := setterTypes[fn.Name]
		if typ == "" {
			typ = "string"
		}
		globals.Attributes = append(globals.Attributes, FieldRecord{
			Name:         fn.Name,
			Kind:         KindProperty,
			Type:         typ,
			Description:  fn.Docstring,
			Multiplicity: 1,
			Line:         fn.Line,
		})
	}

	e.logger.Debugw("Extracted global attributes",
		logger.FieldClass, className,
		logger.FieldCount, len(globals.Attributes),
	)
	return globals, nil
}
