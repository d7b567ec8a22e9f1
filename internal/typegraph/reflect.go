package typegraph

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"slices"
	"strings"
	"time"
)

// builtinTypes are the runtime types the reflect source knows without
// registration.
var builtinTypes = []reflect.Type{
	reflect.TypeFor[bytes.Buffer](),
	reflect.TypeFor[strings.Builder](),
	reflect.TypeFor[strings.Reader](),
	reflect.TypeFor[bufio.Reader](),
	reflect.TypeFor[time.Time](),
	reflect.TypeFor[time.Duration](),
	reflect.TypeFor[url.URL](),
	reflect.TypeFor[http.Client](),
	reflect.TypeFor[http.Request](),
	reflect.TypeFor[os.File](),
	reflect.TypeFor[reflect.Value](),
}

var reflectErrorType = reflect.TypeFor[error]()

// ReflectSource resolves queries against a registry of runtime types using
// the reflect package. It needs no go toolchain, but parameter names are not
// available at run time and are reported as p0, p1, ...
type ReflectSource struct {
	opts     Options
	registry map[string]reflect.Type
}

// NewReflectSource creates a source preloaded with the built-in types plus
// any extra types.
func NewReflectSource(opts Options, extra ...reflect.Type) *ReflectSource {
	s := &ReflectSource{
		opts:     opts,
		registry: make(map[string]reflect.Type),
	}
	for _, t := range builtinTypes {
		s.Register(t)
	}
	for _, t := range extra {
		s.Register(t)
	}
	return s
}

// Register makes t available under "pkg/path.Name". Pointer types register
// their element type. Register is not safe to call concurrently with Lookup.
func (s *ReflectSource) Register(t reflect.Type) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return
	}
	s.registry[qualifiedName(t)] = t
}

// Names lists the registered queries in sorted order.
func (s *ReflectSource) Names() []string {
	names := make([]string, 0, len(s.registry))
	for name := range s.registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the registered type for query.
func (s *ReflectSource) Lookup(_ context.Context, query string) (Type, error) {
	q, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}
	t, ok := s.registry[q.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, q)
	}
	return reflectType{t: t, opts: s.opts}, nil
}

func qualifiedName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// reflectType adapts a reflect.Type to Type.
type reflectType struct {
	t    reflect.Type
	opts Options
}

func (r reflectType) Name() string {
	return r.t.String()
}

func (r reflectType) Methods() ([]Method, error) {
	mt := methodCarrier(r.t)
	methods := make([]Method, 0, mt.NumMethod())
	for i := 0; i < mt.NumMethod(); i++ {
		m := mt.Method(i)
		if r.opts.ExportedOnly && !m.IsExported() {
			continue
		}
		methods = append(methods, r.method(m))
	}
	return methods, nil
}

func (r reflectType) method(m reflect.Method) Method {
	ft := m.Type
	// Methods of concrete types carry the receiver as the first input.
	first := 0
	if r.t.Kind() != reflect.Interface {
		first = 1
	}

	out := Method{Name: m.Name, Variadic: ft.IsVariadic()}
	for i := first; i < ft.NumIn(); i++ {
		in := ft.In(i)
		typ := in.String()
		if out.Variadic && i == ft.NumIn()-1 {
			typ = "..." + in.Elem().String()
		}
		out.Params = append(out.Params, Param{Name: fmt.Sprintf("p%d", i-first), Type: typ})
	}
	for i := 0; i < ft.NumOut(); i++ {
		out.Results = append(out.Results, ft.Out(i).String())
	}
	if next := r.next(ft); next != nil {
		out.Next = reflectType{t: next, opts: r.opts}
	}
	return out
}

func (r reflectType) next(ft reflect.Type) reflect.Type {
	for i := 0; i < ft.NumOut(); i++ {
		t := ft.Out(i)
		if r.opts.SkipError && t == reflectErrorType {
			continue
		}
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Name() == "" && t.Kind() != reflect.Interface {
			continue
		}
		if methodCarrier(t).NumMethod() > 0 {
			return t
		}
	}
	return nil
}

// methodCarrier returns *T for concrete T so pointer-receiver methods are
// included.
func methodCarrier(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer {
		return t
	}
	return reflect.PointerTo(t)
}
