// Package config reads and represents the project configuration file
// (tach.toml): modules, interfaces, layers, source roots, and the various
// project-wide policy switches spec.md §3/§6 describe.
package config

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/gauge-sh/tach/internal/modtree"
)

// DependencyEntry is one entry of a module's depends_on/cannot_depend_on
// list. In TOML it may be written either as a bare string ("path.to.mod")
// or as a table ({path = "...", deprecated = true}); UnmarshalTOML below
// accepts both.
type DependencyEntry struct {
	Path       string `toml:"path"`
	Deprecated bool   `toml:"deprecated"`
}

// UnmarshalTOML implements toml.Unmarshaler so a bare string dependency
// entry and a {path, deprecated} table both decode into the same type, as
// spec.md §3 requires ("ordered list of {path, deprecated: bool}" — fields
// that are commonly also written as bare strings in practice).
func (d *DependencyEntry) UnmarshalTOML(value interface{}) error {
	switch v := value.(type) {
	case string:
		d.Path = v
		d.Deprecated = false
		return nil
	case map[string]interface{}:
		if p, ok := v["path"].(string); ok {
			d.Path = p
		}
		if dep, ok := v["deprecated"].(bool); ok {
			d.Deprecated = dep
		}
		return nil
	default:
		return fmt.Errorf("depends_on entry must be a string or a table, got %T", value)
	}
}

// Module is the TOML representation of modtree.ModuleConfig.
type Module struct {
	Path                   string             `toml:"path"`
	DependsOn              []DependencyEntry  `toml:"depends_on"`
	CannotDependOn         []string           `toml:"cannot_depend_on"`
	DependsOnExternal      []string           `toml:"depends_on_external"`
	CannotDependOnExternal []string           `toml:"cannot_depend_on_external"`
	Visibility             []string           `toml:"visibility"`
	Layer                  string             `toml:"layer"`
	Strict                 bool               `toml:"strict"`
	Utility                bool               `toml:"utility"`
	Unchecked              bool               `toml:"unchecked"`

	dependsOnSet         bool
	dependsOnExternalSet bool
}

// Interface is the TOML representation of modtree.InterfaceConfig.
type Interface struct {
	Expose     []string `toml:"expose"`
	From       []string `toml:"from"`
	Visibility []string `toml:"visibility"`
	DataTypes  string   `toml:"data_types"`
}

// CacheConfig configures the computation cache (C6).
type CacheConfig struct {
	Dir              string   `toml:"dir"`
	FileDependencies []string `toml:"file_dependencies"`
	EnvDependencies  []string `toml:"env_dependencies"`
}

// ExternalConfig configures how external (third-party) imports resolve.
type ExternalConfig struct {
	Exclude  []string          `toml:"exclude"`
	Rename   map[string]string `toml:"rename"`
	Manifest string            `toml:"manifest"`
}

// RulesConfig groups the configurable severities of non-fatal rules.
type RulesConfig struct {
	UnusedIgnoreDirectives      string `toml:"unused_ignore_directives"`
	RequireIgnoreDirectiveReasons string `toml:"require_ignore_directive_reasons"`
}

// ProjectConfig is the top-level shape of tach.toml.
type ProjectConfig struct {
	Modules    []Module    `toml:"modules"`
	Interfaces []Interface `toml:"interfaces"`
	Layers     []string    `toml:"layers"`

	SourceRoots []string `toml:"source_roots"`
	Exclude     []string `toml:"exclude"`

	Rules RulesConfig `toml:"rules"`

	RootModuleTreatment       string `toml:"root_module_treatment"`
	ForbidCircularDependencies bool  `toml:"forbid_circular_dependencies"`
	IgnoreTypeCheckingImports bool   `toml:"ignore_type_checking_imports"`
	IncludeStringImports      bool   `toml:"include_string_imports"`
	RespectGitignore          bool   `toml:"respect_gitignore"`

	Cache    CacheConfig    `toml:"cache"`
	External ExternalConfig `toml:"external"`
}

// knownTopLevelKeys mirrors ProjectConfig's toml tags, used to detect and
// warn about (never error on) unrecognized top-level keys per spec.md §6.
var knownTopLevelKeys = map[string]bool{
	"modules": true, "interfaces": true, "layers": true,
	"source_roots": true, "exclude": true, "rules": true,
	"root_module_treatment": true, "forbid_circular_dependencies": true,
	"ignore_type_checking_imports": true, "include_string_imports": true,
	"respect_gitignore": true, "cache": true, "external": true,
}

// Load reads and parses the project configuration file at path.
//
// Unknown top-level keys are returned in unknownKeys rather than as an
// error, so the caller can surface them as Configuration warnings (severity
// Warning, never Error, per spec.md §6).
func Load(path string) (cfg *ProjectConfig, unknownKeys []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading config %s", path)
	}

	cfg = &ProjectConfig{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, nil, errors.Wrapf(err, "parsing config %s", path)
	}
	applyDependsOnPresence(cfg, data)

	raw := map[string]interface{}{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		// cfg already parsed successfully above; a failure here only
		// disables unknown-key detection, it is not fatal.
		return cfg, nil, nil
	}
	for k := range raw {
		if !knownTopLevelKeys[k] {
			unknownKeys = append(unknownKeys, k)
		}
	}

	return cfg, unknownKeys, nil
}

// applyDependsOnPresence records, per module, whether depends_on was
// present in the source document at all (vs. simply empty), since
// modtree.ModuleConfig.DependsOnSet distinguishes "None: unchecked" from
// "[]: allow nothing" — a distinction go-toml's zero-valued slice cannot
// make on its own. We re-decode each module table generically to check key
// presence.
func applyDependsOnPresence(cfg *ProjectConfig, data []byte) {
	var probe struct {
		Modules []map[string]interface{} `toml:"modules"`
	}
	if err := toml.Unmarshal(data, &probe); err != nil {
		return
	}
	for i, m := range probe.Modules {
		if i >= len(cfg.Modules) {
			break
		}
		_, hasDeps := m["depends_on"]
		cfg.Modules[i].dependsOnSet = hasDeps
		_, hasExt := m["depends_on_external"]
		cfg.Modules[i].dependsOnExternalSet = hasExt
	}
}

// ToModuleConfig converts the TOML module representation into the runtime
// modtree.ModuleConfig.
func (m Module) ToModuleConfig() *modtree.ModuleConfig {
	mc := &modtree.ModuleConfig{
		Path:                   modtree.DottedPath(m.Path),
		CannotDependOn:         toDottedPaths(m.CannotDependOn),
		DependsOnExternal:      m.DependsOnExternal,
		DependsOnExternalSet:   m.dependsOnExternalSet,
		CannotDependOnExternal: m.CannotDependOnExternal,
		Visibility:             m.Visibility,
		Layer:                  m.Layer,
		Strict:                 m.Strict,
		Utility:                m.Utility,
		Unchecked:              m.Unchecked,
		DependsOnSet:           m.dependsOnSet,
	}
	for _, d := range m.DependsOn {
		mc.DependsOn = append(mc.DependsOn, modtree.Dependency{
			Path:       modtree.DottedPath(d.Path),
			Deprecated: d.Deprecated,
		})
	}
	return mc
}

func toDottedPaths(ss []string) []modtree.DottedPath {
	out := make([]modtree.DottedPath, len(ss))
	for i, s := range ss {
		out[i] = modtree.DottedPath(s)
	}
	return out
}

// ToInterfaceConfig converts the TOML interface representation.
func (i Interface) ToInterfaceConfig() modtree.InterfaceConfig {
	return modtree.InterfaceConfig{
		Expose:      i.Expose,
		FromModules: toDottedPaths(i.From),
		Visibility:  i.Visibility,
		DataTypes:   i.DataTypes,
	}
}

// Save writes cfg back to path as TOML, used by `sync` to persist the
// depends_on edits it computes. The marshaled document is regenerated from
// cfg in full rather than patched textually, so any hand formatting or
// comments in the original file are not preserved — acceptable for a
// machine-driven edit command, per spec.md §6's sync description.
func Save(path string, cfg *ProjectConfig) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling configuration")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "writing %s", path)
}

// AddDependsOn records that module path depends on target, returning false
// if dep was already present. It is a no-op on modules whose depends_on was
// never declared (unchecked modules aren't made checked by sync).
func (c *ProjectConfig) AddDependsOn(path, target string) bool {
	for i := range c.Modules {
		m := &c.Modules[i]
		if m.Path != path || !m.dependsOnSet {
			continue
		}
		for _, d := range m.DependsOn {
			if d.Path == target {
				return false
			}
		}
		m.DependsOn = append(m.DependsOn, DependencyEntry{Path: target})
		return true
	}
	return false
}

// RemoveDependsOn drops target from path's depends_on list, returning false
// if it was not present.
func (c *ProjectConfig) RemoveDependsOn(path, target string) bool {
	for i := range c.Modules {
		m := &c.Modules[i]
		if m.Path != path {
			continue
		}
		for j, d := range m.DependsOn {
			if d.Path == target {
				m.DependsOn = append(m.DependsOn[:j], m.DependsOn[j+1:]...)
				return true
			}
		}
	}
	return false
}
