package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cclang/typecheck/internal/ast"
	"github.com/cclang/typecheck/internal/registry"
	"github.com/cclang/typecheck/internal/srcloc"
	"github.com/cclang/typecheck/internal/types"
)

func TestAssignTypesForPatternWildcardAndBinder(t *testing.T) {
	adts := registry.NewDefaultADTRegistry()

	_, bindings, diag := AssignTypesForPattern(adts, types.Uint128(), &ast.WildcardPattern{})
	require.Nil(t, diag)
	assert.Empty(t, bindings)

	_, bindings, diag = AssignTypesForPattern(adts, types.Uint128(), &ast.BinderPattern{Name: "x"})
	require.Nil(t, diag)
	require.Len(t, bindings, 1)
	assert.Equal(t, "x", bindings[0].Name)
	assert.True(t, bindings[0].Type.Equals(types.Uint128()))
}

func TestAssignTypesForPatternConstructorArityMismatch(t *testing.T) {
	adts := registry.NewDefaultADTRegistry()
	scrutinee := &types.ADT{Name: "Option", Args: []types.Type{types.Uint128()}}
	pat := &ast.ConstructorPattern{Name: "Some", Args: []ast.Pattern{&ast.BinderPattern{Name: "x"}, &ast.BinderPattern{Name: "y"}}}

	_, _, diag := AssignTypesForPattern(adts, scrutinee, pat)
	require.NotNil(t, diag)
}

// assignArgPatterns recurses tail-first but must still produce
// bindings in left-to-right document order.
func TestBindingOrderIsLeftToRightDespiteRightToLeftRecursion(t *testing.T) {
	adts := registry.NewDefaultADTRegistry()
	scrutinee := &types.ADT{Name: "Pair", Args: []types.Type{types.ByStr20(), types.Uint128()}}
	pat := &ast.ConstructorPattern{
		Name: "Pair",
		Args: []ast.Pattern{
			&ast.BinderPattern{Name: "first"},
			&ast.BinderPattern{Name: "second"},
		},
	}

	_, bindings, diag := AssignTypesForPattern(adts, scrutinee, pat)
	require.Nil(t, diag)
	require.Len(t, bindings, 2)
	assert.Equal(t, "first", bindings[0].Name)
	assert.True(t, bindings[0].Type.Equals(types.ByStr20()))
	assert.Equal(t, "second", bindings[1].Name)
	assert.True(t, bindings[1].Type.Equals(types.Uint128()))
}

func TestAssignTypesForPatternNestedConstructor(t *testing.T) {
	adts := registry.NewDefaultADTRegistry()
	listOfBool := &types.ADT{Name: "List", Args: []types.Type{&types.ADT{Name: "Bool"}}}
	scrutinee := listOfBool
	pat := &ast.ConstructorPattern{
		Name: "Cons",
		Args: []ast.Pattern{
			&ast.BinderPattern{Name: "head"},
			&ast.BinderPattern{Name: "tail"},
		},
	}
	_, bindings, diag := AssignTypesForPattern(adts, scrutinee, pat)
	require.Nil(t, diag)
	require.Len(t, bindings, 2)
	assert.Equal(t, "head", bindings[0].Name)
	assert.True(t, bindings[0].Type.Equals(&types.ADT{Name: "Bool"}))
	assert.Equal(t, "tail", bindings[1].Name)
	assert.True(t, bindings[1].Type.Equals(listOfBool))
}

func loc(line int) srcloc.Loc { return srcloc.Loc{File: "t.ccl", Line: line} }

// TestPatternDiagnosticCarriesSourceLocation checks that a failing
// pattern reports the pattern's own position, not a zero location.
func TestPatternDiagnosticCarriesSourceLocation(t *testing.T) {
	adts := registry.NewDefaultADTRegistry()
	pat := &ast.ConstructorPattern{Name: "Cons", Args: []ast.Pattern{&ast.BinderPattern{Name: "x"}}}
	pat.SetPosition(loc(12))

	scrutinee := &types.ADT{Name: "Option", Args: []types.Type{types.Uint128()}}
	_, _, diag := AssignTypesForPattern(adts, scrutinee, pat)
	require.NotNil(t, diag)
	assert.Equal(t, loc(12), diag.Loc)
}
