// Package proxy supplies di.ProxyFactory implementations.
//
// Factory names proxy types after their inputs without emitting code; it is
// enough for tools that inspect a table and for tests. Memoize wraps any
// factory with a bounded cache so each (contract, implementation) pair is
// generated once, even under concurrent specialization.
package proxy

import (
	"errors"

	"github.com/sghaida/svctable/di"
)

// ErrNilFactory is returned by Memoize when there is nothing to wrap.
var ErrNilFactory = errors.New("proxy: nil proxy factory")

// ErrInterfaceImplementation is returned when a class proxy is requested for
// an interface-shaped implementation. Class proxies derive from the
// implementation, which must be concrete.
var ErrInterfaceImplementation = errors.New("proxy: class proxy over interface implementation")

// Factory produces synthetic proxy types.
//
//	class proxy:      ClassProxy<SystemClock>
//	interface proxy:  InterfaceProxy<Repository[User],SqlRepository[User]>
type Factory struct{}

var _ di.ProxyFactory = Factory{}

// CreateClassProxyType implements di.ProxyFactory.
func (Factory) CreateClassProxyType(contract, impl di.Type) (di.Type, error) {
	if contract.IsZero() || impl.IsZero() {
		return di.Type{}, di.ErrNilType
	}
	if impl.IsInterface() {
		return di.Type{}, ErrInterfaceImplementation
	}
	return di.Named("ClassProxy<" + impl.String() + ">"), nil
}

// CreateInterfaceProxyType implements di.ProxyFactory.
func (Factory) CreateInterfaceProxyType(contract, impl di.Type) (di.Type, error) {
	if contract.IsZero() || impl.IsZero() {
		return di.Type{}, di.ErrNilType
	}
	return di.Named("InterfaceProxy<" + contract.String() + "," + impl.String() + ">"), nil
}
