package extract

import (
	"fmt"
	"regexp"
)

// TraitClassifier decides whether a runtime-field method provides a trait.
//
// Declared names are authoritative. Otherwise, when heuristics are on,
// return expressions are matched against naming conventions, with the
// deny-list checked first: one denied return means "not a trait".
type TraitClassifier struct {
	declared   map[string]string
	heuristics bool
	deny       []*regexp.Regexp
	patterns   []*regexp.Regexp
	className  *regexp.Regexp
}

// NewTraitClassifier builds a classifier for library namespace ns.
func NewTraitClassifier(ns string, declared map[string]string, heuristics bool) *TraitClassifier {
	q := regexp.QuoteMeta(ns)
	return &TraitClassifier{
		declared:   declared,
		heuristics: heuristics,
		deny: compile(
			`^times\s*\(`,
			fmt.Sprintf(`^%s\.(ElectricLogic|ElectricPower|Electrical|I2C|SPI|UART|PWM|ADC|DAC)\b`, q),
			`^.*\.get\s*\(`,
			`^.*\.set\s*\(`,
			`^.*\[\s*\d+\s*\]`,
			`^range\s*\(`,
			`^list\s*\(`,
			`^dict\s*\(`,
			`^super\s*\(`,
			`^self\.\w+\s*\(`,
		),
		patterns: compile(
			fmt.Sprintf(`^%s\.(has|is|can|requires|implements)_\w+(_defined|_impl)?\s*\(`, q),
			`^.*_defined\s*\(`,
			`^.*_impl\s*\(`,
		),
		className: regexp.MustCompile(
			fmt.Sprintf(`^(?:%s\.)?((?:has|is|can|requires|implements)_\w+?)(?:_defined|_impl)?\s*\(`, q),
		),
	}
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// Classify returns the trait class provided by method, given the
// expressions of its return statements.
func (c *TraitClassifier) Classify(method string, returns []string) (string, bool) {
	if class, ok := c.declared[method]; ok && class != "" {
		return class, true
	}
	if !c.heuristics {
		return "", false
	}

	for _, expr := range returns {
		if c.Denied(expr) {
			return "", false
		}
	}
	for _, expr := range returns {
		if c.Matches(expr) {
			return c.traitClass(method, expr), true
		}
	}
	return "", false
}

// Denied reports whether expr has a shape that is never a trait.
func (c *TraitClassifier) Denied(expr string) bool {
	for _, re := range c.deny {
		if re.MatchString(expr) {
			return true
		}
	}
	return false
}

// Matches reports whether expr follows a trait naming convention.
func (c *TraitClassifier) Matches(expr string) bool {
	for _, re := range c.patterns {
		if re.MatchString(expr) {
			return true
		}
	}
	return false
}

// traitClass names the base trait behind expr: F.can_bridge_defined(...)
// provides can_bridge. Falls back to the method name.
func (c *TraitClassifier) traitClass(method, expr string) string {
	if m := c.className.FindStringSubmatch(expr); m != nil {
		return m[1]
	}
	return method
}
