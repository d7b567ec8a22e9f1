package typegraph

import (
	"context"
	"fmt"
	"go/types"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/tools/go/packages"
)

// loadMode is what the explorer needs from go/packages: type information for
// the package and everything it depends on, so result types can be followed,
// plus the file list so the package directory can be watched.
const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedTypes |
	packages.NeedImports |
	packages.NeedDeps

// PackagesSource resolves queries by type-checking packages with go/packages.
// It is safe for concurrent use.
type PackagesSource struct {
	dir        string
	buildFlags []string
	timeout    time.Duration
	opts       Options
	logger     *slog.Logger

	mu    sync.Mutex
	cache map[string]*loadedPackage
	group singleflight.Group
}

type loadedPackage struct {
	types *types.Package
	dir   string
}

// PackagesOption configures a PackagesSource.
type PackagesOption func(*PackagesSource)

// WithDir sets the directory packages are resolved from.
func WithDir(dir string) PackagesOption {
	return func(s *PackagesSource) {
		s.dir = dir
	}
}

// WithBuildFlags passes extra flags to the go command.
func WithBuildFlags(flags []string) PackagesOption {
	return func(s *PackagesSource) {
		s.buildFlags = flags
	}
}

// WithLoadTimeout bounds each package load. Zero means no bound.
func WithLoadTimeout(d time.Duration) PackagesOption {
	return func(s *PackagesSource) {
		s.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) PackagesOption {
	return func(s *PackagesSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewPackagesSource creates a source backed by go/packages.
func NewPackagesSource(opts Options, options ...PackagesOption) *PackagesSource {
	s := &PackagesSource{
		opts:   opts,
		logger: slog.Default(),
		cache:  make(map[string]*loadedPackage),
	}
	for _, o := range options {
		o(s)
	}
	s.logger = s.logger.With("component", "typegraph")
	return s
}

// Lookup loads the query's package (once) and returns the named type.
func (s *PackagesSource) Lookup(ctx context.Context, query string) (Type, error) {
	q, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}
	pkg, err := s.load(ctx, q.PkgPath)
	if err != nil {
		return nil, err
	}
	obj, ok := pkg.Scope().Lookup(q.Name).(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, q)
	}
	return newGoType(obj.Type(), s.opts), nil
}

// Invalidate drops the cached package so the next lookup reloads it.
func (s *PackagesSource) Invalidate(pkgPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, pkgPath)
}

// Reset drops every cached package.
func (s *PackagesSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.cache)
}

// Dir returns the directory packages are resolved from.
func (s *PackagesSource) Dir() string {
	return s.dir
}

// PackageDir returns the source directory of an already loaded package.
func (s *PackagesSource) PackageDir(pkgPath string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.cache[pkgPath]
	if !ok || p.dir == "" {
		return "", false
	}
	return p.dir, true
}

func (s *PackagesSource) load(ctx context.Context, pkgPath string) (*types.Package, error) {
	s.mu.Lock()
	p, ok := s.cache[pkgPath]
	s.mu.Unlock()
	if ok {
		return p.types, nil
	}

	// Concurrent lookups in one package share a single load.
	v, err, _ := s.group.Do(pkgPath, func() (any, error) {
		return s.loadUncached(ctx, pkgPath)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Package), nil
}

func (s *PackagesSource) loadUncached(ctx context.Context, pkgPath string) (*types.Package, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	cfg := &packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        s.dir,
		BuildFlags: s.buildFlags,
	}
	pkgs, err := packages.Load(cfg, pkgPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPackageLoad, pkgPath, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w: %s: no packages", ErrPackageLoad, pkgPath)
	}
	p := pkgs[0]
	if p.Types == nil || len(p.Errors) > 0 {
		msgs := make([]string, 0, len(p.Errors))
		for _, e := range p.Errors {
			msgs = append(msgs, e.Error())
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrPackageLoad, pkgPath, strings.Join(msgs, "; "))
	}

	s.logger.Debug("package loaded", "package", pkgPath, "duration", time.Since(start))
	loaded := &loadedPackage{types: p.Types}
	if len(p.GoFiles) > 0 {
		loaded.dir = filepath.Dir(p.GoFiles[0])
	}

	s.mu.Lock()
	s.cache[pkgPath] = loaded
	s.mu.Unlock()
	return p.Types, nil
}

// goType adapts a go/types type to Type.
type goType struct {
	t    types.Type
	opts Options
}

func newGoType(t types.Type, opts Options) goType {
	return goType{t: t, opts: opts}
}

func (g goType) Name() string {
	return types.TypeString(g.t, nil)
}

func (g goType) Methods() ([]Method, error) {
	ms := methodSet(g.t)
	methods := make([]Method, 0, ms.Len())
	for i := 0; i < ms.Len(); i++ {
		fn, ok := ms.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}
		if g.opts.ExportedOnly && !fn.Exported() {
			continue
		}
		sig, ok := fn.Type().(*types.Signature)
		if !ok {
			continue
		}
		methods = append(methods, g.method(fn.Name(), sig))
	}
	return methods, nil
}

func (g goType) method(name string, sig *types.Signature) Method {
	m := Method{Name: name, Variadic: sig.Variadic()}

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		v := params.At(i)
		typ := types.TypeString(v.Type(), shortQualifier)
		if m.Variadic && i == params.Len()-1 {
			if s, ok := v.Type().(*types.Slice); ok {
				typ = "..." + types.TypeString(s.Elem(), shortQualifier)
			}
		}
		pname := v.Name()
		if pname == "" || pname == "_" {
			pname = fmt.Sprintf("p%d", i)
		}
		m.Params = append(m.Params, Param{Name: pname, Type: typ})
	}

	results := sig.Results()
	for i := 0; i < results.Len(); i++ {
		m.Results = append(m.Results, types.TypeString(results.At(i).Type(), shortQualifier))
	}
	if next := g.next(results); next != nil {
		m.Next = newGoType(next, g.opts)
	}
	return m
}

// next picks the first result whose type, pointers stripped, has methods.
func (g goType) next(results *types.Tuple) types.Type {
	for i := 0; i < results.Len(); i++ {
		t := results.At(i).Type()
		if g.opts.SkipError && types.Identical(t, errorType) {
			continue
		}
		base := deref(t)
		switch base.(type) {
		case *types.Named, *types.Interface:
		default:
			continue
		}
		if g.countMethods(base) > 0 {
			return base
		}
	}
	return nil
}

func (g goType) countMethods(t types.Type) int {
	ms := methodSet(t)
	if !g.opts.ExportedOnly {
		return ms.Len()
	}
	n := 0
	for i := 0; i < ms.Len(); i++ {
		if ms.At(i).Obj().Exported() {
			n++
		}
	}
	return n
}

var errorType = types.Universe.Lookup("error").Type()

// methodSet returns the method set of *T for concrete T so pointer-receiver
// methods are listed too.
func methodSet(t types.Type) *types.MethodSet {
	if types.IsInterface(t) {
		return types.NewMethodSet(t)
	}
	if _, ok := t.Underlying().(*types.Pointer); ok {
		return types.NewMethodSet(t)
	}
	return types.NewMethodSet(types.NewPointer(t))
}

func deref(t types.Type) types.Type {
	for {
		t = types.Unalias(t)
		p, ok := t.(*types.Pointer)
		if !ok {
			return t
		}
		t = p.Elem()
	}
}

func shortQualifier(p *types.Package) string {
	return p.Name()
}
