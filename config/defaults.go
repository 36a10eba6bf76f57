package config

import (
	"github.com/spf13/viper"
)

const (
	// ProjectConfigName is searched for from the working directory upwards.
	ProjectConfigName = "libref.toml"

	DefaultDirPermissions  = 0o755
	DefaultFilePermissions = 0o644
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("library.source", "../atopile/src/faebryk/library")
	v.SetDefault("library.subdir", "")
	v.SetDefault("library.namespace", "F")
	v.SetDefault("library.attributes_file", "../atopile/src/atopile/attributes.py")
	v.SetDefault("library.attributes_class", "GlobalAttributes")
	v.SetDefault("library.repo_url", "")
	v.SetDefault("library.pyproject", "")
	v.SetDefault("library.version_constraint", "")

	v.SetDefault("output.dir", "atopile/api-reference")
	v.SetDefault("output.clear", true)

	v.SetDefault("manifest.path", "docs.json")
	v.SetDefault("manifest.tab", "atopile")
	v.SetDefault("manifest.group", "Library Reference")
	v.SetDefault("manifest.page_prefix", "atopile/api-reference")

	v.SetDefault("categories.component.dir", "components")
	v.SetDefault("categories.component.group", "Components")
	v.SetDefault("categories.component.icon", "microchip")
	v.SetDefault("categories.component.base", "Module")
	v.SetDefault("categories.interface.dir", "interfaces")
	v.SetDefault("categories.interface.group", "Interfaces")
	v.SetDefault("categories.interface.icon", "right-left")
	v.SetDefault("categories.interface.base", "ModuleInterface")
	v.SetDefault("categories.trait.dir", "traits")
	v.SetDefault("categories.trait.group", "Traits")
	v.SetDefault("categories.trait.icon", "right-left")
	v.SetDefault("categories.trait.base", "Trait")

	v.SetDefault("extract.parameter_factories", []string{"L.p_field"})
	v.SetDefault("extract.list_factories", []string{"L.list_field"})
	v.SetDefault("extract.trait_field_factories", []string{"L.f_field"})
	v.SetDefault("extract.property_decorators", []string{"property"})
	v.SetDefault("extract.runtime_field_decorators", []string{"L.rt_field"})
	v.SetDefault("extract.trait_heuristics", true)
	v.SetDefault("extract.declared_traits", DefaultDeclaredTraits())

	v.SetDefault("render.excluded_attributes", []string{
		"datasheet_url",
		"designator_prefix",
		"footprint",
		"suggest_net_name",
	})
	v.SetDefault("render.functional_traits", []string{
		"can_bridge",
		"can_bridge_by_name",
		"has_single_electric_reference",
		"is_pickable",
		"requires_pulls",
	})
	v.SetDefault("render.icon_title_limit", 20)
	v.SetDefault("render.default_parameter_type", "string")
	v.SetDefault("render.source_links", false)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", ".libref/cache.db")
	v.SetDefault("cache.max_age_days", 30)

	v.SetDefault("hooks.post_generate", []string{})
	v.SetDefault("hooks.timeout_seconds", 120)

	v.SetDefault("watch.debounce_ms", 500)

	v.SetDefault("preview.addr", "127.0.0.1:3001")
}

// DefaultDeclaredTraits maps runtime-field method names used across the
// faebryk library to the trait class they provide.
func DefaultDeclaredTraits() map[string]string {
	return map[string]string{
		"pickable":                         "is_pickable",
		"can_bridge":                       "can_bridge",
		"simple_value_representation":      "has_simple_value_representation",
		"single_electric_reference":        "has_single_electric_reference",
		"requires_pulls":                   "requires_pulls",
		"can_be_decoupled":                 "can_be_decoupled",
		"can_be_surge_protected":           "can_be_surge_protected",
		"has_datasheet":                    "has_datasheet",
		"has_footprint":                    "has_footprint",
		"has_designator":                   "has_designator",
		"has_designator_prefix":            "has_designator_prefix",
		"has_reference":                    "has_reference",
		"is_optional":                      "is_optional",
		"requires_external_usage":          "requires_external_usage",
		"has_pcb_position":                 "has_pcb_position",
		"has_pcb_layout":                   "has_pcb_layout",
		"has_esphome_config":               "has_esphome_config",
		"can_specialize":                   "can_specialize",
		"can_switch_power":                 "can_switch_power",
		"has_overriden_name":               "has_overriden_name",
		"has_descriptive_properties":       "has_descriptive_properties",
		"is_surge_protected":               "is_surge_protected",
		"is_decoupled":                     "is_decoupled",
		"is_representable_by_single_value": "is_representable_by_single_value",
		"is_esphome_bus":                   "is_esphome_bus",
		"has_linked_pad":                   "has_linked_pad",
		"has_single_connection":            "has_single_connection",
		"has_symbol_layout":                "has_symbol_layout",
	}
}
