package di

import (
	"reflect"
	"strconv"
	"strings"
)

// Origin discriminates the variants of a Descriptor.
type Origin uint8

const (
	// OriginInstance is a pre-built value.
	OriginInstance Origin = iota + 1
	// OriginDelegate is a factory function.
	OriginDelegate
	// OriginType is an implementation type the container constructs.
	OriginType
	// OriginProxy wraps another descriptor with a generated proxy type.
	OriginProxy
	// OriginEnumerable aggregates every registration of an element type.
	OriginEnumerable
	// OriginManyEnumerable is OriginEnumerable for the "all implementations"
	// shape.
	OriginManyEnumerable
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginInstance:
		return "instance"
	case OriginDelegate:
		return "delegate"
	case OriginType:
		return "type"
	case OriginProxy:
		return "proxy"
	case OriginEnumerable:
		return "enumerable"
	case OriginManyEnumerable:
		return "many-enumerable"
	default:
		return "unknown"
	}
}

// Resolver is implemented by the hosting container and handed to factories
// so they can obtain their own dependencies.
type Resolver interface {
	Resolve(t Type) (any, error)
}

// Factory builds an instance for a Delegate registration.
type Factory func(r Resolver) (any, error)

// Descriptor describes how to obtain an implementation for a contract type.
//
// Descriptors are immutable. Which accessors are meaningful depends on
// Origin:
//
//	Instance          Instance, ImplementationType (dynamic type of the value)
//	Delegate          Factory
//	Type              ImplementationType
//	Proxy             Inner, ProxyType, ImplementationType (= ProxyType)
//	(Many)Enumerable  ElementType, Elements
type Descriptor struct {
	origin      Origin
	serviceType Type
	lifetime    Lifetime

	instance any
	factory  Factory
	implType Type

	inner     *Descriptor
	proxyType Type

	elemType Type
	elems    []*Descriptor
}

// NewInstance registers a pre-built value. Instances are singletons.
func NewInstance(contract Type, value any) *Descriptor {
	mustContract(contract)
	d := &Descriptor{
		origin:      OriginInstance,
		serviceType: contract,
		lifetime:    Singleton,
		instance:    value,
	}
	if value != nil {
		d.implType = TypeFor(reflect.TypeOf(value))
	}
	return d
}

// NewDelegate registers a factory function.
func NewDelegate(contract Type, lifetime Lifetime, f Factory) *Descriptor {
	mustContract(contract)
	if f == nil {
		panic(ErrNilFactory)
	}
	return &Descriptor{
		origin:      OriginDelegate,
		serviceType: contract,
		lifetime:    lifetime,
		factory:     f,
	}
}

// NewType registers an implementation type. For open generic contracts impl
// refers to the contract's parameters, e.g. Repository[$0] => SqlRepository[$0].
func NewType(contract, impl Type, lifetime Lifetime) *Descriptor {
	mustContract(contract)
	impl.must()
	return &Descriptor{
		origin:      OriginType,
		serviceType: contract,
		lifetime:    lifetime,
		implType:    impl,
	}
}

// NewProxy wraps inner with a generated proxy type. The proxy keeps the
// contract and lifetime of inner.
func NewProxy(inner *Descriptor, proxyType Type) *Descriptor {
	if inner == nil {
		panic(ErrNilDescriptor)
	}
	proxyType.must()
	return &Descriptor{
		origin:      OriginProxy,
		serviceType: inner.serviceType,
		lifetime:    inner.lifetime,
		inner:       inner,
		proxyType:   proxyType,
	}
}

// newCollection builds an aggregate. Only the table creates these.
func newCollection(contract Type, elems []*Descriptor) *Descriptor {
	origin := OriginEnumerable
	if contract.Definition() == ManyEnumerable {
		origin = OriginManyEnumerable
	}
	return &Descriptor{
		origin:      origin,
		serviceType: contract,
		lifetime:    Transient,
		elemType:    contract.n.args[0],
		elems:       elems,
	}
}

func mustContract(t Type) {
	t.must()
	if _, ok := t.ParamIndex(); ok {
		panic(ErrParamContract)
	}
}

// Origin returns the variant of d.
func (d *Descriptor) Origin() Origin { return d.origin }

// ServiceType returns the contract type.
func (d *Descriptor) ServiceType() Type { return d.serviceType }

// Lifetime returns the declared lifetime.
func (d *Descriptor) Lifetime() Lifetime { return d.lifetime }

// Instance returns the value of an Instance registration.
func (d *Descriptor) Instance() any { return d.instance }

// Factory returns the factory of a Delegate registration.
func (d *Descriptor) Factory() Factory { return d.factory }

// ImplementationType returns the concrete type behind d, or the zero Type
// when it is not known statically (delegates, collections, nil instances).
func (d *Descriptor) ImplementationType() Type {
	if d.origin == OriginProxy {
		return d.proxyType
	}
	return d.implType
}

// Inner returns the descriptor wrapped by a Proxy.
func (d *Descriptor) Inner() *Descriptor { return d.inner }

// ProxyType returns the generated proxy type of a Proxy.
func (d *Descriptor) ProxyType() Type { return d.proxyType }

// ElementType returns the element type of a collection.
func (d *Descriptor) ElementType() Type { return d.elemType }

// Elements returns a copy of the ordered element descriptors of a collection.
func (d *Descriptor) Elements() []*Descriptor {
	if len(d.elems) == 0 {
		return nil
	}
	out := make([]*Descriptor, len(d.elems))
	copy(out, d.elems)
	return out
}

// Unwrap follows Proxy descriptors down to the declared registration.
func (d *Descriptor) Unwrap() *Descriptor {
	for d != nil && d.origin == OriginProxy {
		d = d.inner
	}
	return d
}

// Equivalent reports whether d and o describe the same registration. Values
// are compared with == when comparable and with reflect.DeepEqual otherwise.
// Factories are compared by code pointer only, so closures over different
// captured state are Equivalent.
// Descriptors produced by concurrent lookups are Equivalent but not
// necessarily identical.
func (d *Descriptor) Equivalent(o *Descriptor) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil {
		return false
	}
	if d.origin != o.origin || d.serviceType != o.serviceType || d.lifetime != o.lifetime {
		return false
	}
	switch d.origin {
	case OriginInstance:
		return sameValue(d.instance, o.instance)
	case OriginDelegate:
		return reflect.ValueOf(d.factory).Pointer() == reflect.ValueOf(o.factory).Pointer()
	case OriginType:
		return d.implType == o.implType
	case OriginProxy:
		return d.proxyType == o.proxyType && d.inner.Equivalent(o.inner)
	case OriginEnumerable, OriginManyEnumerable:
		if d.elemType != o.elemType || len(d.elems) != len(o.elems) {
			return false
		}
		for i := range d.elems {
			if !d.elems[i].Equivalent(o.elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func sameValue(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	// Value.Comparable also looks inside interface fields, which the
	// type-level check does not.
	if reflect.ValueOf(a).Comparable() && reflect.ValueOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// String renders d for diagnostics, e.g.
// "type(Repository[User] => SqlRepository[User], transient)".
func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(d.origin.String())
	b.WriteByte('(')
	b.WriteString(d.serviceType.String())
	switch d.origin {
	case OriginInstance, OriginType:
		if !d.implType.IsZero() {
			b.WriteString(" => ")
			b.WriteString(d.implType.String())
		}
	case OriginProxy:
		b.WriteString(" => ")
		b.WriteString(d.proxyType.String())
		b.WriteString(" over ")
		b.WriteString(d.inner.String())
	case OriginEnumerable, OriginManyEnumerable:
		b.WriteString(", ")
		b.WriteString(strconv.Itoa(len(d.elems)))
		b.WriteString(" elements")
	}
	b.WriteString(", ")
	b.WriteString(d.lifetime.String())
	b.WriteByte(')')
	return b.String()
}

// specialize closes an open generic registration over the closed contract t.
// Only Type registrations can be specialized.
func (d *Descriptor) specialize(t Type) (*Descriptor, error) {
	args, ok := Match(d.serviceType, t)
	if !ok {
		return nil, ErrTypeMismatch
	}
	if d.origin != OriginType {
		return nil, ErrNotSpecializable
	}
	impl, err := d.implType.Bind(args)
	if err != nil {
		return nil, err
	}
	return &Descriptor{
		origin:      OriginType,
		serviceType: t,
		lifetime:    d.lifetime,
		implType:    impl,
	}, nil
}
