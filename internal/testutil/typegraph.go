package testutil

import (
	"context"
	"errors"
	"fmt"

	"github.com/npratt/typetree/internal/typegraph"
)

// ErrBoom is the population error returned by demo.Broken.
var ErrBoom = errors.New("boom")

// FakeType is an in-memory typegraph.Type. Calls counts Methods invocations.
type FakeType struct {
	TypeName string
	List     []typegraph.Method
	Err      error
	Calls    int
}

// Name implements typegraph.Type.
func (f *FakeType) Name() string { return f.TypeName }

// Methods implements typegraph.Type.
func (f *FakeType) Methods() ([]typegraph.Method, error) {
	f.Calls++
	return f.List, f.Err
}

// FakeSource resolves queries from a fixed map.
type FakeSource map[string]typegraph.Type

// Lookup implements typegraph.Source.
func (s FakeSource) Lookup(_ context.Context, query string) (typegraph.Type, error) {
	t, ok := s[query]
	if !ok {
		return nil, fmt.Errorf("%w: %s", typegraph.ErrTypeNotFound, query)
	}
	return t, nil
}

// DemoSource serves demo.Outer, whose methods are Broken (fails to expand
// with ErrBoom), Inner (leads to demo.Inner with one leaf method, Size) and
// Len (a leaf).
func DemoSource() FakeSource {
	inner := &FakeType{TypeName: "demo.Inner", List: []typegraph.Method{
		{Name: "Size", Results: []string{"int"}},
	}}
	broken := &FakeType{TypeName: "demo.Broken", Err: ErrBoom}
	outer := &FakeType{TypeName: "demo.Outer", List: []typegraph.Method{
		{Name: "Broken", Results: []string{"*Broken"}, Next: broken},
		{Name: "Inner", Results: []string{"*Inner"}, Next: inner},
		{Name: "Len", Results: []string{"int"}},
	}}
	return FakeSource{"demo.Outer": outer}
}

// SelfSource serves demo.Self, whose Clone method returns demo.Self again,
// so its method graph is cyclic.
func SelfSource() FakeSource {
	self := &FakeType{TypeName: "demo.Self"}
	self.List = []typegraph.Method{
		{Name: "Clone", Results: []string{"*Self"}, Next: self},
		{Name: "Len", Results: []string{"int"}},
	}
	return FakeSource{"demo.Self": self}
}
