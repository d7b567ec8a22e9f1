// Package typegraph walks the method graph of Go types and turns it into
// lazily populated tree nodes: a type's node lists its methods, and a method
// whose result is itself a type with methods leads to that type's methods.
package typegraph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrTypeNotFound is returned when a query names no known type.
	ErrTypeNotFound = errors.New("type not found")
	// ErrPackageLoad is returned when a package cannot be loaded or type-checked.
	ErrPackageLoad = errors.New("package load failed")
	// ErrInvalidQuery is returned for malformed type queries.
	ErrInvalidQuery = errors.New("invalid type query")
)

// Param is one method parameter.
type Param struct {
	Name string
	Type string
}

// Method describes one entry of a type's method set.
type Method struct {
	Name     string
	Params   []Param
	Variadic bool
	Results  []string
	// Next is the type the method leads to, or nil when no result has methods.
	Next Type
}

// Type is a node of the method graph.
type Type interface {
	// Name is the display name of the type.
	Name() string
	// Methods lists the method set of the type, including methods declared
	// on its pointer type.
	Methods() ([]Method, error)
}

// Source resolves type queries to graph entry points. Implementations must be
// safe for concurrent use.
type Source interface {
	Lookup(ctx context.Context, query string) (Type, error)
}

// Options control which methods and results a source reports.
type Options struct {
	// ExportedOnly drops unexported methods.
	ExportedOnly bool `yaml:"exported_only" mapstructure:"exported_only"`
	// SkipError stops the built-in error type from being a Next type.
	SkipError bool `yaml:"skip_error" mapstructure:"skip_error"`
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{ExportedOnly: true, SkipError: true}
}

// Query is a parsed type reference such as "net/http.Client".
type Query struct {
	PkgPath string
	Name    string
}

// String returns the canonical form "pkg/path.Name".
func (q Query) String() string {
	return q.PkgPath + "." + q.Name
}

// ParseQuery parses "pkg/path.Name". A leading "*" is accepted and ignored
// since pointer methods are always listed.
func ParseQuery(s string) (Query, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "*"))
	slash := strings.LastIndex(s, "/")
	dot := strings.LastIndex(s, ".")
	if dot <= slash || dot == len(s)-1 || dot == 0 {
		return Query{}, fmt.Errorf("%w: %q (want pkg/path.Name)", ErrInvalidQuery, s)
	}
	return Query{PkgPath: s[:dot], Name: s[dot+1:]}, nil
}

// Roots looks up every query concurrently and returns the types in query
// order. The first failure cancels the remaining lookups.
func Roots(ctx context.Context, src Source, queries ...string) ([]Type, error) {
	types := make([]Type, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			t, err := src.Lookup(ctx, q)
			if err != nil {
				return fmt.Errorf("lookup %s: %w", q, err)
			}
			types[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return types, nil
}
