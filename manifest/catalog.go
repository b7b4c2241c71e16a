package manifest

import (
	"fmt"
	"sort"

	"github.com/sghaida/svctable/di"
)

// Catalog maps manifest names to closed types and generic definitions.
// Enumerable and ManyEnumerable are predeclared.
//
// A Catalog is not safe for concurrent mutation; populate it first, then
// share it read-only.
type Catalog struct {
	types    map[string]di.Type
	generics map[string]*di.Generic
}

// NewCatalog returns a catalog holding only the collection definitions.
func NewCatalog() *Catalog {
	c := &Catalog{
		types:    map[string]di.Type{},
		generics: map[string]*di.Generic{},
	}
	return c.ProvideGeneric(di.Enumerable).ProvideGeneric(di.ManyEnumerable)
}

// Provide stores a type under name and returns the catalog for chaining.
func (c *Catalog) Provide(name string, t di.Type) *Catalog {
	c.types[name] = t
	return c
}

// ProvideGeneric stores a definition under its own name and returns the
// catalog for chaining.
func (c *Catalog) ProvideGeneric(g *di.Generic) *Catalog {
	c.generics[g.Name()] = g
	return c
}

// Lookup returns the closed type registered under name.
func (c *Catalog) Lookup(name string) (di.Type, bool) {
	t, ok := c.types[name]
	return t, ok
}

// LookupGeneric returns the definition registered under name.
func (c *Catalog) LookupGeneric(name string) (*di.Generic, bool) {
	g, ok := c.generics[name]
	return g, ok
}

// MustGet returns the closed type or panics with a helpful message.
// Useful in examples/tests where missing names should fail fast.
func (c *Catalog) MustGet(name string) di.Type {
	t, ok := c.types[name]
	if !ok {
		panic(fmt.Errorf("manifest: catalog missing type %q", name))
	}
	return t
}

// MustGeneric is MustGet for definitions.
func (c *Catalog) MustGeneric(name string) *di.Generic {
	g, ok := c.generics[name]
	if !ok {
		panic(fmt.Errorf("manifest: catalog missing generic %q", name))
	}
	return g
}

// Names returns every declared name, types and generics, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.types)+len(c.generics))
	for n := range c.types {
		out = append(out, n)
	}
	for n := range c.generics {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// has reports whether name is taken by either kind.
func (c *Catalog) has(name string) bool {
	_, t := c.types[name]
	_, g := c.generics[name]
	return t || g
}
