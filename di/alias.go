package di

import (
	"reflect"
	"sync"
)

var (
	realized  sync.Map // reflect.Type -> Type
	realizing sync.Map // Type -> reflect.Type

	// publishMu orders alias declarations against the first TypeFor of a Go
	// type, so each reflect.Type maps to exactly one Type.
	publishMu sync.Mutex
)

// Alias declares the compiled Go type T as the realization of the closed
// instantiation t. Afterwards TypeOf[T]() returns t, and t.Reflect() returns
// T's reflect.Type:
//
//	RepositoryDef := di.Define("Repository", 1, di.AsInterface())
//	di.MustAlias[Repository[User]](RepositoryDef.Of(di.TypeOf[User]()))
//
// Aliases must be declared before T is first seen through TypeOf, typically
// from an init function. Alias is safe to call concurrently with TypeOf; if
// TypeOf[T] wins the race the alias fails with ErrConflictingAlias.
// Re-declaring the same pair is a no-op; any other overlap returns
// ErrConflictingAlias.
func Alias[T any](t Type) (Type, error) {
	return AliasFor(reflect.TypeFor[T](), t)
}

// MustAlias is Alias that panics on error.
func MustAlias[T any](t Type) Type {
	out, err := Alias[T](t)
	if err != nil {
		panic(err)
	}
	return out
}

// AliasFor is the reflect.Type form of Alias.
func AliasFor(rt reflect.Type, t Type) (Type, error) {
	if rt == nil {
		panic(ErrNilType)
	}
	t.must()
	if t.IsOpen() {
		return Type{}, ErrOpenAlias
	}
	if t.n.rt != nil {
		if t.n.rt == rt {
			return t, nil
		}
		return Type{}, ErrConflictingAlias
	}

	publishMu.Lock()
	defer publishMu.Unlock()

	// Idempotent re-declaration.
	if v, ok := realized.Load(rt); ok {
		if v.(Type) == t {
			return t, nil
		}
		return Type{}, ErrConflictingAlias
	}
	if _, seen := byReflect.Load(rt); seen {
		return Type{}, ErrConflictingAlias
	}

	if v, loaded := realizing.LoadOrStore(t, rt); loaded && v.(reflect.Type) != rt {
		return Type{}, ErrConflictingAlias
	}
	if v, loaded := realized.LoadOrStore(rt, t); loaded && v.(Type) != t {
		return Type{}, ErrConflictingAlias
	}
	return t, nil
}
