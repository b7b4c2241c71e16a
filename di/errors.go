package di

import (
	"errors"
	"strconv"
)

var (
	// ErrNilType is the panic value for a zero Type passed where a type is
	// required.
	ErrNilType = errors.New("di: nil service type")

	// ErrNilDescriptor is the panic value for a nil descriptor handed to the
	// table.
	ErrNilDescriptor = errors.New("di: nil service descriptor")

	// ErrNilFactory is the panic value for a delegate registration without a
	// factory.
	ErrNilFactory = errors.New("di: nil factory")

	// ErrEmptyName is the panic value for an unnamed synthetic type or
	// definition.
	ErrEmptyName = errors.New("di: empty type name")

	// ErrInvalidParam is the panic value for a negative parameter position.
	ErrInvalidParam = errors.New("di: invalid type parameter position")

	// ErrParamContract is the panic value for a descriptor whose contract is a
	// bare type parameter.
	ErrParamContract = errors.New("di: type parameter cannot be a service contract")

	// ErrMissingProxyFactory is the panic value for a table configured with a
	// Validator but no ProxyFactory.
	ErrMissingProxyFactory = errors.New("di: validator configured without proxy factory")

	// ErrConflictingAlias is returned when a Go type or an instantiation is
	// already bound to something else.
	ErrConflictingAlias = errors.New("di: conflicting type alias")

	// ErrOpenAlias is returned when aliasing an open generic type.
	ErrOpenAlias = errors.New("di: cannot alias an open generic type")

	// ErrTypeMismatch is returned when a closed type does not fit the contract
	// of an open generic registration.
	ErrTypeMismatch = errors.New("di: type does not match generic registration")

	// ErrNotSpecializable is returned when a registration's origin cannot be
	// closed over type arguments (instances and delegates).
	ErrNotSpecializable = errors.New("di: registration cannot be specialized")
)

// ArityError is returned when a generic definition receives the wrong number
// of type arguments.
type ArityError struct {
	Generic string
	Want    int
	Got     int
}

// Error implements the error interface.
func (e ArityError) Error() string {
	// Example: di: generic "Pair" expects 2 type arguments, got 1
	return "di: generic " + strconv.Quote(e.Generic) + " expects " + strconv.Itoa(e.Want) +
		" type arguments, got " + strconv.Itoa(e.Got)
}

// UnboundParamError is returned when binding refers to a parameter position
// that was not supplied.
type UnboundParamError struct {
	Index int
	Type  string
}

// Error implements the error interface.
func (e UnboundParamError) Error() string {
	// Example: di: type parameter $1 of "Pair[$0,$1]" is not bound
	return "di: type parameter $" + strconv.Itoa(e.Index) + " of " + strconv.Quote(e.Type) + " is not bound"
}

// ConstraintError is returned when a generic definition's constraint rejects
// the type arguments it is closed over.
type ConstraintError struct {
	Type string
	Err  error
}

// Error implements the error interface.
func (e ConstraintError) Error() string {
	return "di: type arguments rejected for " + strconv.Quote(e.Type) + ": " + errString(e.Err)
}

// Unwrap returns the constraint's error.
func (e ConstraintError) Unwrap() error { return e.Err }

// InterceptionError wraps a failure of the Validator or ProxyFactory while
// processing a registration for Contract.
type InterceptionError struct {
	Contract string
	Err      error
}

// Error implements the error interface.
func (e InterceptionError) Error() string {
	return "di: interception failed for " + strconv.Quote(e.Contract) + ": " + errString(e.Err)
}

// Unwrap returns the collaborator's error.
func (e InterceptionError) Unwrap() error { return e.Err }

// LifetimeError is returned when parsing an unknown lifetime name.
type LifetimeError struct{ Value string }

// Error implements the error interface.
func (e LifetimeError) Error() string {
	return "di: unknown lifetime " + strconv.Quote(e.Value)
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
