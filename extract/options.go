package extract

import (
	"strings"

	"github.com/teranos/libref/config"
)

// Options names the conventions the extractor recognises.
type Options struct {
	// Namespace is the library alias, "F" in `F.Electrical`.
	Namespace              string
	ParameterFactories     []string
	ListFactories          []string
	TraitFieldFactories    []string
	PropertyDecorators     []string
	RuntimeFieldDecorators []string
	TraitHeuristics        bool
	DeclaredTraits         map[string]string
}

// OptionsFromConfig builds Options from the extract and library config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Namespace:              cfg.Library.Namespace,
		ParameterFactories:     cfg.Extract.ParameterFactories,
		ListFactories:          cfg.Extract.ListFactories,
		TraitFieldFactories:    cfg.Extract.TraitFieldFactories,
		PropertyDecorators:     cfg.Extract.PropertyDecorators,
		RuntimeFieldDecorators: cfg.Extract.RuntimeFieldDecorators,
		TraitHeuristics:        cfg.Extract.TraitHeuristics,
		DeclaredTraits:         cfg.Extract.DeclaredTraits,
	}
}

// DefaultOptions matches the faebryk library conventions.
func DefaultOptions() Options {
	return Options{
		Namespace:              "F",
		ParameterFactories:     []string{"L.p_field"},
		ListFactories:          []string{"L.list_field"},
		TraitFieldFactories:    []string{"L.f_field"},
		PropertyDecorators:     []string{"property"},
		RuntimeFieldDecorators: []string{"L.rt_field"},
		TraitHeuristics:        true,
		DeclaredTraits:         config.DefaultDeclaredTraits(),
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
