package di_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/svctable/di"
)

//
// -----------------------------------------------------------------------------
// Interning
// -----------------------------------------------------------------------------

// TestTypeOf_Interned verifies that TypeOf returns the same Type for the same Go type.
func TestTypeOf_Interned(t *testing.T) {
	t.Parallel()

	a := di.TypeOf[User]()
	b := di.TypeFor(reflect.TypeOf(User{}))

	assert.Equal(t, a, b)
	assert.True(t, a == b)
	assert.NotEqual(t, a, di.TypeOf[Order]())
	assert.Equal(t, reflect.TypeOf(User{}), a.Reflect())
	assert.NotZero(t, a.ID())
	assert.False(t, a.IsGeneric())
	assert.False(t, a.IsOpen())
}

// TestTypeOf_InterfaceShape verifies that interface shape follows the Go kind.
func TestTypeOf_InterfaceShape(t *testing.T) {
	t.Parallel()

	assert.True(t, di.TypeOf[Logger]().IsInterface())
	assert.False(t, di.TypeOf[*consoleLogger]().IsInterface())
}

// TestNamed verifies interning and shape of synthetic types.
func TestNamed(t *testing.T) {
	t.Parallel()

	c := di.Named("Widget")
	assert.Equal(t, c, di.Named("Widget"))
	assert.Equal(t, "Widget", c.String())
	assert.False(t, c.IsInterface())
	assert.Nil(t, c.Reflect())

	i := di.NamedInterface("Widget")
	assert.NotEqual(t, c, i, "interface and class of the same name are distinct")
	assert.True(t, i.IsInterface())

	require.PanicsWithError(t, "di: empty type name", func() { _ = di.Named("") })
}

// TestZeroType verifies that the zero Type is inert.
func TestZeroType(t *testing.T) {
	t.Parallel()

	var z di.Type
	assert.True(t, z.IsZero())
	assert.Equal(t, "<nil>", z.String())
	assert.Zero(t, z.ID())
	assert.Nil(t, z.Reflect())
	assert.Nil(t, z.Definition())
	assert.Nil(t, z.Args())
	assert.False(t, z.IsInterface())

	require.PanicsWithError(t, "di: nil service type", func() { _ = di.TypeFor(nil) })
}

// TestParam verifies type parameter identity and bounds.
func TestParam(t *testing.T) {
	t.Parallel()

	p := di.Param(1)
	assert.Equal(t, p, di.Param(1))
	assert.Equal(t, "$1", p.String())
	assert.True(t, p.IsOpen())

	i, ok := p.ParamIndex()
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = di.TypeOf[User]().ParamIndex()
	assert.False(t, ok)

	require.PanicsWithError(t, "di: invalid type parameter position", func() { _ = di.Param(-1) })
}

//
// -----------------------------------------------------------------------------
// Generic definitions
// -----------------------------------------------------------------------------

// TestDefine verifies generic definitions and their identity.
func TestDefine(t *testing.T) {
	t.Parallel()

	pair := di.Define("Pair", 2)
	assert.Equal(t, "Pair", pair.Name())
	assert.Equal(t, 2, pair.Arity())
	assert.Equal(t, "Pair[,]", pair.String())
	assert.False(t, pair.IsInterface())

	other := di.Define("Pair", 2)
	assert.NotEqual(t, pair.Of(di.TypeOf[int](), di.TypeOf[int]()), other.Of(di.TypeOf[int](), di.TypeOf[int]()),
		"definitions are identified by pointer, not name")

	require.PanicsWithError(t, "di: empty type name", func() { _ = di.Define("", 1) })
	require.PanicsWithError(t, `di: generic "Nothing" expects 1 type arguments, got 0`, func() {
		_ = di.Define("Nothing", 0)
	})
}

// TestGeneric_OfAndOpen verifies closed and open instantiations.
func TestGeneric_OfAndOpen(t *testing.T) {
	t.Parallel()

	repo := di.Define("Repository", 1, di.AsInterface())
	user := di.TypeOf[User]()

	closed := repo.Of(user)
	assert.Equal(t, closed, repo.Of(user))
	assert.Equal(t, "Repository[di_test.User]", closed.String())
	assert.True(t, closed.IsGeneric())
	assert.False(t, closed.IsOpen())
	assert.True(t, closed.IsInterface())
	assert.Same(t, repo, closed.Definition())
	assert.Equal(t, []di.Type{user}, closed.Args())

	open := repo.Open()
	assert.True(t, open.IsOpen())
	assert.Equal(t, "Repository[$0]", open.String())
	assert.Equal(t, []di.Type{di.Param(0)}, open.Args())

	require.PanicsWithError(t, `di: generic "Repository" expects 1 type arguments, got 2`, func() {
		_ = repo.Of(user, user)
	})
}

// TestGeneric_Close_RunsConstraint verifies that Close applies the definition's constraint.
func TestGeneric_Close_RunsConstraint(t *testing.T) {
	t.Parallel()

	errNotNumeric := errors.New("not numeric")
	numeric := di.Define("Numeric", 1, di.WithConstraint(func(args []di.Type) error {
		switch args[0] {
		case di.TypeOf[int](), di.TypeOf[float64]():
			return nil
		}
		return errNotNumeric
	}))

	got, err := numeric.Close(di.TypeOf[int]())
	require.NoError(t, err)
	assert.Equal(t, numeric.Of(di.TypeOf[int]()), got)

	_, err = numeric.Close(di.TypeOf[string]())
	var ce di.ConstraintError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Numeric[string]", ce.Type)
	assert.ErrorIs(t, err, errNotNumeric)

	// Open instantiations are never checked.
	_, err = numeric.Close(di.Param(0))
	require.NoError(t, err)

	// Of never checks.
	assert.NotPanics(t, func() { _ = numeric.Of(di.TypeOf[string]()) })

	_, err = numeric.Close()
	var ae di.ArityError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, 1, ae.Want)
	assert.Equal(t, 0, ae.Got)
}

// TestIsCollection verifies collection detection.
func TestIsCollection(t *testing.T) {
	t.Parallel()

	user := di.TypeOf[User]()
	assert.True(t, di.IsCollection(di.EnumerableOf(user)))
	assert.True(t, di.IsCollection(di.ManyEnumerableOf(user)))
	assert.True(t, di.IsCollection(di.Enumerable.Open()))
	assert.False(t, di.IsCollection(user))
	assert.False(t, di.IsCollection(di.Type{}))
	assert.True(t, di.EnumerableOf(user).IsInterface())
}

//
// -----------------------------------------------------------------------------
// Bind and Match
// -----------------------------------------------------------------------------

// TestBind verifies substitution of type parameters.
func TestBind(t *testing.T) {
	t.Parallel()

	pair := di.Define("Pair", 2)
	list := di.Define("List", 1)
	user, order := di.TypeOf[User](), di.TypeOf[Order]()

	// Pair[$1, List[$0]] with [User, Order] => Pair[Order, List[User]]
	pattern := pair.Of(di.Param(1), list.Of(di.Param(0)))
	got, err := pattern.Bind([]di.Type{user, order})
	require.NoError(t, err)
	assert.Equal(t, pair.Of(order, list.Of(user)), got)
	assert.False(t, got.IsOpen())

	same, err := user.Bind(nil)
	require.NoError(t, err)
	assert.Equal(t, user, same)

	_, err = pattern.Bind([]di.Type{user})
	var ue di.UnboundParamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 1, ue.Index)
	assert.Equal(t, `di: type parameter $1 of "$1" is not bound`, err.Error())
}

// TestMatch verifies unification of patterns against closed types.
func TestMatch(t *testing.T) {
	t.Parallel()

	pair := di.Define("Pair", 2)
	list := di.Define("List", 1)
	user, order := di.TypeOf[User](), di.TypeOf[Order]()

	cases := []struct {
		name    string
		pattern di.Type
		typ     di.Type
		want    []di.Type
		ok      bool
	}{
		{"closed equal", user, user, nil, true},
		{"closed differ", user, order, nil, false},
		{"open definition", pair.Open(), pair.Of(user, order), []di.Type{user, order}, true},
		{"nested", pair.Of(di.Param(0), list.Of(di.Param(1))), pair.Of(user, list.Of(order)), []di.Type{user, order}, true},
		{"repeated param agrees", pair.Of(di.Param(0), di.Param(0)), pair.Of(user, user), []di.Type{user}, true},
		{"repeated param conflicts", pair.Of(di.Param(0), di.Param(0)), pair.Of(user, order), nil, false},
		{"fixed argument", pair.Of(di.Param(0), order), pair.Of(user, order), []di.Type{user}, true},
		{"fixed argument differs", pair.Of(di.Param(0), order), pair.Of(user, user), nil, false},
		{"other definition", pair.Open(), list.Of(user), nil, false},
		{"unused low position", pair.Of(di.Param(1), order), pair.Of(user, order), []di.Type{{}, user}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := di.Match(tc.pattern, tc.typ)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

//
// -----------------------------------------------------------------------------
// Alias
// -----------------------------------------------------------------------------

type aliasedRepo struct{}

type conflictingRepo struct{}

type seenBeforeAlias struct{}

// TestAlias_BridgesGoTypes verifies that an alias ties a Go type to a table type both ways.
func TestAlias_BridgesGoTypes(t *testing.T) {
	t.Parallel()

	repo := di.Define("AliasedRepository", 1)
	inst := repo.Of(di.TypeOf[User]())

	got, err := di.Alias[aliasedRepo](inst)
	require.NoError(t, err)
	assert.Equal(t, inst, got)
	assert.Equal(t, inst, di.TypeOf[aliasedRepo]())
	assert.Equal(t, reflect.TypeOf(aliasedRepo{}), inst.Reflect())

	again, err := di.Alias[aliasedRepo](inst)
	require.NoError(t, err, "re-declaring the same alias is a no-op")
	assert.Equal(t, inst, again)

	_, err = di.Alias[conflictingRepo](inst)
	assert.ErrorIs(t, err, di.ErrConflictingAlias)
}

// TestAlias_Rejections verifies that open, late and conflicting aliases are rejected.
func TestAlias_Rejections(t *testing.T) {
	t.Parallel()

	repo := di.Define("RejectedRepository", 1)

	_, err := di.Alias[struct{ open bool }](repo.Open())
	assert.ErrorIs(t, err, di.ErrOpenAlias)

	_ = di.TypeOf[seenBeforeAlias]()
	_, err = di.Alias[seenBeforeAlias](repo.Of(di.TypeOf[Order]()))
	assert.ErrorIs(t, err, di.ErrConflictingAlias)

	_, err = di.Alias[Order](di.TypeOf[User]())
	assert.ErrorIs(t, err, di.ErrConflictingAlias, "Go types cannot be re-pointed")

	require.PanicsWithError(t, "di: conflicting type alias", func() {
		_ = di.MustAlias[Order](repo.Of(di.TypeOf[User]()))
	})
}
