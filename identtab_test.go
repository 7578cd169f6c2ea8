package ruc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentTabGlobalDisplacementDecreases(t *testing.T) {
	idents := newIdentTab(8)
	a, err := idents.Declare(1, LInt, KindVar, 1)
	require.NoError(t, err)
	b, err := idents.Declare(2, LInt, KindVar, 1)
	require.NoError(t, err)

	assert.Equal(t, 0, idents.Entry(a).Displacement)
	assert.Equal(t, -1, idents.Entry(b).Displacement)
	assert.Equal(t, 2, idents.GlobalWords())
}

func TestIdentTabRedeclarationInSameScopeFails(t *testing.T) {
	idents := newIdentTab(8)
	_, err := idents.Declare(1, LInt, KindVar, 1)
	require.NoError(t, err)
	_, err = idents.Declare(1, LFloat, KindVar, 2)
	assert.ErrorIs(t, err, ErrRedeclared)
}

func TestIdentTabShadowingInNestedScopeAllowed(t *testing.T) {
	idents := newIdentTab(8)
	outer, err := idents.Declare(1, LInt, KindVar, 1)
	require.NoError(t, err)

	idents.EnterScope()
	inner, err := idents.Declare(1, LFloat, KindVar, 2)
	require.NoError(t, err)

	resolved, ok := idents.Resolve(1)
	require.True(t, ok)
	assert.Equal(t, inner, resolved)

	idents.LeaveScope()
	resolved, ok = idents.Resolve(1)
	require.True(t, ok)
	assert.Equal(t, outer, resolved)
}

func TestIdentTabLocalDisplacementResetsPerFunction(t *testing.T) {
	idents := newIdentTab(8)
	idents.BeginFunction()
	idents.EnterScope()
	_, err := idents.Declare(1, LInt, KindVar, 1)
	require.NoError(t, err)
	_, err = idents.Declare(2, LFloat, KindVar, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, idents.MaxDisplacement())
	idents.LeaveScope()

	idents.BeginFunction()
	idents.EnterScope()
	third, err := idents.Declare(3, LInt, KindVar, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, idents.Entry(third).Displacement, "a fresh function frame starts back at 0")
	idents.LeaveScope()
}

func TestIdentTabUndeclaredResolveFails(t *testing.T) {
	idents := newIdentTab(8)
	_, ok := idents.Resolve(99)
	assert.False(t, ok)
}
