package di

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Type identifies a contract or implementation type known to the table.
//
// Types are interned: two Type values are == exactly when they denote the same
// type, so Type is safe to use as a map key. A Type is one of:
//
//   - a Go type (TypeOf / TypeFor)
//   - a synthetic closed type (Named / NamedInterface)
//   - an instantiation of a generic definition (Generic.Of), open when any
//     argument is a parameter
//   - a positional type parameter (Param)
//
// The zero Type means "no type". Public table queries panic with ErrNilType
// when handed one.
type Type struct{ n *typeNode }

// typeNode is immutable once published through intern.
type typeNode struct {
	id    uint64
	name  string
	rt    reflect.Type
	def   *Generic
	args  []Type
	param int
	iface bool
	open  bool
}

var (
	nextID    atomic.Uint64
	byReflect sync.Map // reflect.Type -> *typeNode
	byKey     sync.Map // string -> *typeNode
)

// intern publishes n under key unless another goroutine got there first.
func intern(key string, build func() *typeNode) Type {
	if v, ok := byKey.Load(key); ok {
		return Type{n: v.(*typeNode)}
	}
	n := build()
	n.id = nextID.Add(1)
	v, _ := byKey.LoadOrStore(key, n)
	return Type{n: v.(*typeNode)}
}

// TypeOf returns the Type of the Go type T.
func TypeOf[T any]() Type {
	return TypeFor(reflect.TypeFor[T]())
}

// TypeFor returns the Type for a reflect.Type. If rt was declared as the
// realization of a generic instantiation (see Alias), that instantiation is
// returned instead of a plain Go type.
func TypeFor(rt reflect.Type) Type {
	if rt == nil {
		panic(ErrNilType)
	}
	if v, ok := realized.Load(rt); ok {
		return v.(Type)
	}
	if v, ok := byReflect.Load(rt); ok {
		return Type{n: v.(*typeNode)}
	}

	publishMu.Lock()
	defer publishMu.Unlock()
	if v, ok := realized.Load(rt); ok {
		return v.(Type)
	}
	n := &typeNode{
		id:    nextID.Add(1),
		name:  rt.String(),
		rt:    rt,
		param: -1,
		iface: rt.Kind() == reflect.Interface,
	}
	v, _ := byReflect.LoadOrStore(rt, n)
	return Type{n: v.(*typeNode)}
}

// Named returns a synthetic closed, non-interface type. Calls with the same
// name return the same Type.
func Named(name string) Type {
	return named(name, false)
}

// NamedInterface is Named for interface-shaped contracts.
func NamedInterface(name string) Type {
	return named(name, true)
}

func named(name string, iface bool) Type {
	if name == "" {
		panic(ErrEmptyName)
	}
	key := "n:c:" + name
	if iface {
		key = "n:i:" + name
	}
	return intern(key, func() *typeNode {
		return &typeNode{name: name, param: -1, iface: iface}
	})
}

// Param returns the positional type parameter i. Parameters only appear
// inside open generic types.
func Param(i int) Type {
	if i < 0 {
		panic(ErrInvalidParam)
	}
	return intern("p:"+strconv.Itoa(i), func() *typeNode {
		return &typeNode{name: "$" + strconv.Itoa(i), param: i, open: true}
	})
}

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool { return t.n == nil }

// String returns a display form such as "Repository[main.User]".
func (t Type) String() string {
	if t.n == nil {
		return "<nil>"
	}
	return t.n.name
}

// ID returns a process-unique identifier for t. Zero for the zero Type.
func (t Type) ID() uint64 {
	if t.n == nil {
		return 0
	}
	return t.n.id
}

// Reflect returns the Go type behind t, if any: the type passed to TypeFor,
// or the type declared through Alias for an instantiation.
func (t Type) Reflect() reflect.Type {
	if t.n == nil {
		return nil
	}
	if t.n.rt != nil {
		return t.n.rt
	}
	if v, ok := realizing.Load(t); ok {
		return v.(reflect.Type)
	}
	return nil
}

// IsInterface reports whether t is interface-shaped. Proxy generation uses
// this to pick between interface and class proxies.
func (t Type) IsInterface() bool { return t.n != nil && t.n.iface }

// IsGeneric reports whether t is an instantiation of a generic definition.
func (t Type) IsGeneric() bool { return t.n != nil && t.n.def != nil }

// IsOpen reports whether t still contains unbound type parameters.
func (t Type) IsOpen() bool { return t.n != nil && t.n.open }

// Definition returns the generic definition of t, or nil.
func (t Type) Definition() *Generic {
	if t.n == nil {
		return nil
	}
	return t.n.def
}

// Args returns a copy of the type arguments of a generic instantiation.
func (t Type) Args() []Type {
	if t.n == nil || len(t.n.args) == 0 {
		return nil
	}
	out := make([]Type, len(t.n.args))
	copy(out, t.n.args)
	return out
}

// ParamIndex returns the position of a type parameter.
func (t Type) ParamIndex() (int, bool) {
	if t.n == nil || t.n.param < 0 {
		return 0, false
	}
	return t.n.param, true
}

// must enforces the non-zero precondition of public queries.
func (t Type) must() {
	if t.n == nil {
		panic(ErrNilType)
	}
}

// Bind substitutes the type parameters of t positionally with args.
// Closed types are returned unchanged. Binding fails with UnboundParamError
// when t refers to a parameter that args does not supply, and with
// ConstraintError when a generic definition rejects the resulting arguments.
func (t Type) Bind(args []Type) (Type, error) {
	t.must()
	if !t.n.open {
		return t, nil
	}
	if i := t.n.param; i >= 0 {
		if i >= len(args) || args[i].IsZero() {
			return Type{}, UnboundParamError{Index: i, Type: t.String()}
		}
		return args[i], nil
	}
	bound := make([]Type, len(t.n.args))
	for i, a := range t.n.args {
		b, err := a.Bind(args)
		if err != nil {
			return Type{}, err
		}
		bound[i] = b
	}
	return t.n.def.Close(bound...)
}

// Match unifies pattern, which may be open, with t and returns the positional
// bindings of the pattern's parameters. Positions that the pattern never
// mentions are left as zero Types.
func Match(pattern, t Type) ([]Type, bool) {
	pattern.must()
	t.must()
	var bound []Type
	if !unify(pattern, t, &bound) {
		return nil, false
	}
	return bound, true
}

func unify(p, t Type, bound *[]Type) bool {
	if !p.n.open {
		return p == t
	}
	if i := p.n.param; i >= 0 {
		for len(*bound) <= i {
			*bound = append(*bound, Type{})
		}
		if prev := (*bound)[i]; !prev.IsZero() {
			return prev == t
		}
		(*bound)[i] = t
		return true
	}
	if t.n.def != p.n.def {
		return false
	}
	for i := range p.n.args {
		if !unify(p.n.args[i], t.n.args[i], bound) {
			return false
		}
	}
	return true
}

// Generic is an open generic definition such as Repository[T].
//
// Definitions are identified by pointer: two calls to Define with the same
// name produce distinct definitions.
type Generic struct {
	id    uint64
	name  string
	arity int
	iface bool
	check func(args []Type) error
}

// GenericOption customizes a definition created by Define.
type GenericOption func(*Generic)

// AsInterface marks instantiations of the definition as interface-shaped.
func AsInterface() GenericOption {
	return func(g *Generic) { g.iface = true }
}

// WithConstraint installs a check run whenever the definition is closed
// over concrete arguments during specialization. A non-nil error rejects the
// arguments.
func WithConstraint(check func(args []Type) error) GenericOption {
	return func(g *Generic) { g.check = check }
}

// Define creates a generic definition with the given number of type
// parameters.
func Define(name string, arity int, opts ...GenericOption) *Generic {
	if name == "" {
		panic(ErrEmptyName)
	}
	if arity < 1 {
		panic(ArityError{Generic: name, Want: 1, Got: arity})
	}
	g := &Generic{id: nextID.Add(1), name: name, arity: arity}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Name returns the definition name.
func (g *Generic) Name() string { return g.name }

// Arity returns the number of type parameters.
func (g *Generic) Arity() int { return g.arity }

// IsInterface reports whether instantiations are interface-shaped.
func (g *Generic) IsInterface() bool { return g.iface }

// String renders the definition with empty brackets, e.g. "Pair[,]".
func (g *Generic) String() string {
	return g.name + "[" + strings.Repeat(",", g.arity-1) + "]"
}

// Of instantiates the definition. It panics with ArityError when the number
// of arguments is wrong. Constraints are not checked: Of is meant for
// declarations, Close for derived types.
func (g *Generic) Of(args ...Type) Type {
	t, err := g.instantiate(args)
	if err != nil {
		panic(err)
	}
	return t
}

// Open returns the definition instantiated over its own parameters,
// e.g. Repository[$0].
func (g *Generic) Open() Type {
	args := make([]Type, g.arity)
	for i := range args {
		args[i] = Param(i)
	}
	return g.Of(args...)
}

// Close instantiates the definition and, when every argument is closed, runs
// the definition's constraint.
func (g *Generic) Close(args ...Type) (Type, error) {
	t, err := g.instantiate(args)
	if err != nil {
		return Type{}, err
	}
	if g.check != nil && !t.n.open {
		if err := g.check(t.n.args); err != nil {
			return Type{}, ConstraintError{Type: t.String(), Err: err}
		}
	}
	return t, nil
}

func (g *Generic) instantiate(args []Type) (Type, error) {
	if len(args) != g.arity {
		return Type{}, ArityError{Generic: g.name, Want: g.arity, Got: len(args)}
	}
	var key, name strings.Builder
	key.WriteString("g:" + strconv.FormatUint(g.id, 10) + "[")
	name.WriteString(g.name + "[")
	open := false
	for i, a := range args {
		a.must()
		if i > 0 {
			key.WriteByte(',')
			name.WriteByte(',')
		}
		key.WriteString(strconv.FormatUint(a.n.id, 10))
		name.WriteString(a.n.name)
		open = open || a.n.open
	}
	key.WriteByte(']')
	name.WriteByte(']')
	return intern(key.String(), func() *typeNode {
		own := make([]Type, len(args))
		copy(own, args)
		return &typeNode{
			name:  name.String(),
			def:   g,
			args:  own,
			param: -1,
			iface: g.iface,
			open:  open,
		}
	}), nil
}

// Collection shapes recognized by the table.
var (
	// Enumerable is the "sequence of T" shape.
	Enumerable = Define("Enumerable", 1, AsInterface())
	// ManyEnumerable is the "all implementations of T" shape.
	ManyEnumerable = Define("ManyEnumerable", 1, AsInterface())
)

// EnumerableOf returns Enumerable[elem].
func EnumerableOf(elem Type) Type { return Enumerable.Of(elem) }

// ManyEnumerableOf returns ManyEnumerable[elem].
func ManyEnumerableOf(elem Type) Type { return ManyEnumerable.Of(elem) }

// IsCollection reports whether t is one of the collection shapes, open or
// closed.
func IsCollection(t Type) bool {
	def := t.Definition()
	return def != nil && (def == Enumerable || def == ManyEnumerable)
}
