// Package engine wires C1-C6 together: it loads the project configuration,
// builds the module resolver, discovers source files, scans and checks them
// across a worker pool, and returns the sorted diagnostic set.
package engine

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"

	"github.com/gauge-sh/tach/internal/boundary"
	"github.com/gauge-sh/tach/internal/cache"
	"github.com/gauge-sh/tach/internal/config"
	"github.com/gauge-sh/tach/internal/discover"
	"github.com/gauge-sh/tach/internal/importscan"
	"github.com/gauge-sh/tach/internal/modtree"
	"github.com/gauge-sh/tach/internal/pathmatch"
)

// Project is everything a run needs, built once from tach.toml.
type Project struct {
	Root   string
	Config *config.ProjectConfig

	Tree     *modtree.ModuleTree
	Resolver *modtree.Resolver
	Modules  []*modtree.ModuleConfig

	Matcher *pathmatch.Matcher

	UnknownConfigKeys []string
}

const defaultConfigName = "tach.toml"

// Load reads tach.toml under root and builds the module tree, resolver, and
// path matcher. Configuration errors are the caller's cue to exit with code
// 2 (spec.md §6).
func Load(root string) (*Project, error) {
	cfg, unknown, err := config.Load(filepath.Join(root, defaultConfigName))
	if err != nil {
		return nil, err
	}

	tree := modtree.NewModuleTree()
	var modules []*modtree.ModuleConfig
	for _, m := range cfg.Modules {
		mc := m.ToModuleConfig()
		tree.Insert(mc.Path, mc)
		modules = append(modules, mc)
	}

	var interfaces []modtree.InterfaceConfig
	for _, i := range cfg.Interfaces {
		interfaces = append(interfaces, i.ToInterfaceConfig())
	}

	var manifests []string
	if cfg.External.Manifest != "" {
		manifests = append(manifests, filepath.Join(root, cfg.External.Manifest))
	}
	externals := modtree.BuildExternalIndex(manifests)

	resolver := modtree.NewResolver(tree, externals, cfg.External.Rename, interfaces)

	matcher, err := pathmatch.New(cfg.Exclude, false)
	if err != nil {
		return nil, errors.Wrap(err, "compiling exclude patterns")
	}
	if cfg.RespectGitignore {
		if err := matcher.LoadGitignore(root); err != nil {
			return nil, err
		}
	}

	return &Project{
		Root:              root,
		Config:            cfg,
		Tree:              tree,
		Resolver:          resolver,
		Modules:           modules,
		Matcher:           matcher,
		UnknownConfigKeys: unknown,
	}, nil
}

func (p *Project) rootTreatment() modtree.RootModuleTreatment {
	switch p.Config.RootModuleTreatment {
	case string(modtree.RootIgnore):
		return modtree.RootIgnore
	case string(modtree.RootDependenciesOnly):
		return modtree.RootDependenciesOnly
	case string(modtree.RootForbid):
		return modtree.RootForbid
	default:
		return modtree.RootAllow
	}
}

func (p *Project) unusedIgnoreSeverity() boundary.Severity {
	switch p.Config.Rules.UnusedIgnoreDirectives {
	case "error":
		return boundary.SeverityError
	case "off":
		return boundary.SeverityOff
	default:
		return boundary.SeverityWarning
	}
}

// toScanSeverity translates boundary's Severity into importscan's copy of
// the same three-valued scale, the one place the two layers meet (importscan
// can't import boundary, since boundary imports importscan).
func toScanSeverity(s boundary.Severity) importscan.Severity {
	switch s {
	case boundary.SeverityOff:
		return importscan.SeverityOff
	case boundary.SeverityWarning:
		return importscan.SeverityWarning
	default:
		return importscan.SeverityError
	}
}

func toBoundarySeverity(s importscan.Severity) boundary.Severity {
	switch s {
	case importscan.SeverityOff:
		return boundary.SeverityOff
	case importscan.SeverityWarning:
		return boundary.SeverityWarning
	default:
		return boundary.SeverityError
	}
}

// CheckOptions controls which rule families a Check run applies (the
// `check` command's flags, spec.md §6).
type CheckOptions struct {
	CheckDependencies bool
	CheckInterfaces   bool
	Exact             bool

	// Exclude is extra one-off exclude globs layered on top of the
	// project's configured exclude list (`check --exclude PATH,...`).
	Exclude []string
}

// Check runs the full C2-C5 pipeline and returns the sorted, deduplicated
// diagnostic set together with the resolved internal edges the run
// observed (used by `report` to answer "who depends on this module").
func (p *Project) Check(ctx context.Context, opts CheckOptions) ([]boundary.Diagnostic, []boundary.Edge, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	matcher := p.Matcher
	if len(opts.Exclude) > 0 {
		matcher = matcher.Clone()
		if err := matcher.AddPatterns(opts.Exclude); err != nil {
			return nil, nil, err
		}
	}

	files, err := discover.Walk(p.Root, p.Config.SourceRoots, matcher)
	if err != nil {
		return nil, nil, err
	}

	checker := boundary.NewChecker(boundary.Options{
		Resolver:             p.Resolver,
		Layers:               p.Config.Layers,
		RootTreatment:        p.rootTreatment(),
		ExternalExclude:      p.Config.External.Exclude,
		UnusedIgnoreSeverity: p.unusedIgnoreSeverity(),
		SkipDependencies:     !opts.CheckDependencies,
		SkipInterfaces:       !opts.CheckInterfaces,
	})

	scanOpts := importscan.Options{
		IgnoreTypeCheckingImports:     p.Config.IgnoreTypeCheckingImports,
		IncludeStringImports:          p.Config.IncludeStringImports,
		RequireIgnoreDirectiveReasons: p.Config.Rules.RequireIgnoreDirectiveReasons,
		UnusedIgnoreDirectiveSeverity: toScanSeverity(p.unusedIgnoreSeverity()),
	}

	var fileImports []boundary.FileImports
	var diags []boundary.Diagnostic

	for _, f := range files {
		select {
		case <-ctx.Done():
			return boundary.Sort(diags), nil, ctx.Err()
		default:
		}

		src, err := os.ReadFile(f.AbsPath)
		if err != nil {
			diags = append(diags, boundary.Diagnostic{
				File: f.AbsPath, Kind: boundary.KindConfiguration, Severity: boundary.SeverityError,
				Message: errors.Wrapf(err, "reading %s", f.AbsPath).Error(),
			})
			continue
		}

		dotted, isPackage := importscan.FileDottedPath(f.RelPath)
		result := importscan.Scan(src, dotted, isPackage, scanOpts)

		for _, d := range result.Diagnostics {
			diags = append(diags, boundary.Diagnostic{
				File: f.AbsPath, Line: d.Line, Kind: boundary.KindConfiguration,
				Severity: toBoundarySeverity(d.Severity), Message: d.Message,
			})
		}

		cfg, _, _ := p.Tree.NearestAncestor(dotted)
		fileImports = append(fileImports, boundary.FileImports{
			File:         f.AbsPath,
			ImporterCfg:  cfg,
			ImporterPath: dotted,
			Imports:      result.Imports,
		})
	}

	ruleDiags, edges, err := checker.CheckAll(ctx, fileImports)
	if err != nil {
		return boundary.Sort(diags), nil, err
	}
	diags = append(diags, ruleDiags...)

	if p.Config.ForbidCircularDependencies {
		diags = append(diags, boundary.DetectCycles(edges)...)
	}
	if opts.Exact {
		diags = append(diags, boundary.DetectUnusedDependencies(p.Modules, edges)...)
	}

	return boundary.Sort(diags), edges, nil
}

// SyncResult tallies what Sync changed.
type SyncResult struct {
	Added   []boundary.Edge
	Removed []boundary.Edge
}

// Sync implements the supplemented `sync --add` command: it runs the
// dependency checks, adds every missing-but-not-forbidden depends_on edge a
// Dependency diagnostic would otherwise report, and removes every declared
// edge check --exact would flag as Unused. A second Sync run over an
// unchanged tree is a no-op, since by then every edge check actually
// observed is already declared and every declared edge is actually used.
func (p *Project) Sync(ctx context.Context) (SyncResult, error) {
	var result SyncResult

	_, edges, err := p.Check(ctx, CheckOptions{CheckDependencies: true, CheckInterfaces: false, Exact: true})
	if err != nil {
		return result, err
	}

	byPath := make(map[modtree.DottedPath]*modtree.ModuleConfig, len(p.Modules))
	for _, m := range p.Modules {
		byPath[m.Path] = m
	}

	used := make(map[[2]modtree.DottedPath]bool, len(edges))
	for _, e := range edges {
		used[[2]modtree.DottedPath{e.From, e.To}] = true

		I := byPath[e.From]
		if I == nil || !I.HasDependsOn() || I.Forbids(e.To) {
			continue
		}
		if found, _ := I.DependsOnPath(e.To); found {
			continue
		}
		if p.Config.AddDependsOn(string(e.From), string(e.To)) {
			I.DependsOn = append(I.DependsOn, modtree.Dependency{Path: e.To})
			result.Added = append(result.Added, e)
		}
	}

	for _, m := range p.Modules {
		if !m.HasDependsOn() {
			continue
		}
		for _, dep := range append([]modtree.Dependency{}, m.DependsOn...) {
			if used[[2]modtree.DottedPath{m.Path, dep.Path}] {
				continue
			}
			if p.Config.RemoveDependsOn(string(m.Path), string(dep.Path)) {
				result.Removed = append(result.Removed, boundary.Edge{From: m.Path, To: dep.Path, Deprecated: dep.Deprecated})
			}
		}
	}

	if len(result.Added) == 0 && len(result.Removed) == 0 {
		return result, nil
	}
	return result, errors.Wrap(config.Save(filepath.Join(p.Root, defaultConfigName), p.Config), "writing synced configuration")
}

// CacheRoot resolves the configured cache directory, honoring the
// <TOOL>_CACHE_DIR environment override named in spec.md §6.
func (p *Project) CacheRoot() string {
	if dir := os.Getenv("TACH_CACHE_DIR"); dir != "" {
		return dir
	}
	if p.Config.Cache.Dir != "" {
		return filepath.Join(p.Root, p.Config.Cache.Dir)
	}
	return filepath.Join(p.Root, ".tach")
}

// BuildFingerprintInputs hashes every discovered source file under the
// project's source roots for use as C6's fingerprint Files section.
func (p *Project) BuildFingerprintInputs(action string, interpreterVersion string, pins map[string]string) (cache.Inputs, error) {
	files, err := discover.Walk(p.Root, p.Config.SourceRoots, p.Matcher)
	if err != nil {
		return cache.Inputs{}, err
	}

	in := cache.Inputs{
		InterpreterVersion: interpreterVersion,
		DependencyPins:     pins,
		Action:             action,
		EnvDependencies:    make(map[string]string, len(p.Config.Cache.EnvDependencies)),
	}
	for _, f := range files {
		fh, err := cache.HashFile(f.AbsPath)
		if err != nil {
			return cache.Inputs{}, err
		}
		fh.Path = filepath.Join(f.SourceRoot, f.RelPath)
		in.Files = append(in.Files, fh)
	}
	for _, name := range p.Config.Cache.EnvDependencies {
		in.EnvDependencies[name] = os.Getenv(name)
	}
	if len(p.Config.Cache.FileDependencies) > 0 {
		in.FileDependencies = make(map[string][]byte)
		for _, pattern := range p.Config.Cache.FileDependencies {
			matches, _ := filepath.Glob(filepath.Join(p.Root, pattern))
			for _, m := range matches {
				b, err := os.ReadFile(m)
				if err != nil {
					continue
				}
				in.FileDependencies[m] = b
			}
		}
	}
	return in, nil
}
