package modtree

// Dependency names a module an importer is permitted to depend on.
type Dependency struct {
	Path       DottedPath
	Deprecated bool
}

// ModuleConfig is the declared configuration for one module.
type ModuleConfig struct {
	Path DottedPath

	// DependsOn lists the declared dependencies. DependsOnSet tells the
	// unchecked case (false: allow anything) from an explicit empty list
	// (true with no entries: the module may depend on nothing); DependsOn
	// itself may be nil in both cases.
	DependsOn        []Dependency
	DependsOnSet     bool
	CannotDependOn   []DottedPath

	DependsOnExternal      []string
	DependsOnExternalSet   bool
	CannotDependOnExternal []string

	// Visibility lists dotted-path glob patterns naming modules permitted to
	// import this one. A nil slice means everyone may.
	Visibility []string

	Layer string

	Strict    bool
	Utility   bool
	Unchecked bool
}

// HasDependsOn reports whether an explicit depends_on list (possibly empty)
// was declared, as opposed to the "unchecked" None/absent case.
func (m *ModuleConfig) HasDependsOn() bool { return m.DependsOnSet }

// DependsOnPath reports whether m declares a non-deprecated or deprecated
// dependency on target, and if so whether it is deprecated.
func (m *ModuleConfig) DependsOnPath(target DottedPath) (found, deprecated bool) {
	for _, d := range m.DependsOn {
		if d.Path == target {
			return true, d.Deprecated
		}
	}
	return false, false
}

// Forbids reports whether m's cannot_depend_on list names target.
func (m *ModuleConfig) Forbids(target DottedPath) bool {
	for _, p := range m.CannotDependOn {
		if p == target {
			return true
		}
	}
	return false
}

// InterfaceConfig declares a set of symbol-name patterns a group of modules
// exposes to the rest of the project.
type InterfaceConfig struct {
	Expose      []string
	FromModules []DottedPath
	Visibility  []string
	DataTypes   string // "all" | "primitive"
}

// RootModuleTreatment controls how imports into undeclared ("root") code are
// handled.
type RootModuleTreatment string

const (
	RootAllow            RootModuleTreatment = "allow"
	RootIgnore           RootModuleTreatment = "ignore"
	RootDependenciesOnly RootModuleTreatment = "dependencies_only"
	RootForbid           RootModuleTreatment = "forbid"
)
