package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cclang/typecheck/internal/ast"
	"github.com/cclang/typecheck/internal/diagnostics"
	"github.com/cclang/typecheck/internal/types"
)

func optionOf(t types.Type) *types.ADT {
	return &types.ADT{Name: "Option", Args: []types.Type{t}}
}

func noneOf(t types.Type) *ast.Constr {
	return &ast.Constr{Name: "None", TypeArgs: []types.Type{t}, Args: nil}
}

// puzzleGameModule is a puzzle-reward contract with no type errors
// anywhere — params, fields, and every transition must type clean.
func puzzleGameModule() *ast.Module {
	return &ast.Module{
		Params: []ast.Param{
			{Name: "owner", Type: types.ByStr20()},
			{Name: "player_a", Type: types.ByStr20()},
			{Name: "player_b", Type: types.ByStr20()},
			{Name: "puzzle", Type: types.ByStrN(32)},
		},
		Fields: []ast.FieldDecl{
			{Name: "player_a_hash", Type: optionOf(types.ByStrN(32)), Init: noneOf(types.ByStrN(32))},
			{Name: "player_b_hash", Type: optionOf(types.ByStrN(32)), Init: noneOf(types.ByStrN(32))},
			{Name: "timer", Type: optionOf(types.BNum()), Init: noneOf(types.BNum())},
		},
		Transitions: []ast.Transition{
			{
				Name:   "Play",
				Params: []ast.Param{{Name: "guess", Type: types.ByStrN(32)}},
				Body:   []ast.Stmt{&ast.Load{Name: "pah", Field: "player_a_hash"}},
			},
			{
				Name:   "ClaimReward",
				Params: []ast.Param{{Name: "solution", Type: types.Int(128)}},
				Body:   []ast.Stmt{&ast.Load{Name: "timer_val", Field: "timer"}},
			},
			{
				Name:   "Withdraw",
				Params: nil,
				Body:   []ast.Stmt{&ast.AcceptPayment{}},
			},
		},
	}
}

func TestTypeModuleCleanContractHasNoDiagnostics(t *testing.T) {
	deps := testDeps()
	mod, diags := TypeModule(deps, puzzleGameModule())
	require.Empty(t, diags)
	require.NotNil(t, mod)
	assert.Len(t, mod.Transitions, 3)
	assert.Len(t, mod.Fields, 4) // 3 declared + implicit _balance
}

// errorResilientLibraryModule exercises blacklist propagation: "bad"
// fails to type, and "later" (which references "bad") is silently
// dropped without generating a second diagnostic, while "good"
// survives.
func errorResilientLibraryModule() *ast.Module {
	return &ast.Module{
		ContractLib: &ast.Library{
			Name: "ContractLib",
			Entries: []ast.LibEntry{
				&ast.LibVar{Name: "good", Expr: intLit(128, "1")},
				&ast.LibVar{Name: "bad", Expr: &ast.Builtin{
					Op:   "+",
					Args: []ast.Expr{&ast.Literal{Kind: ast.LitString, Value: "\"x\""}, intLit(128, "1")},
				}},
				&ast.LibVar{Name: "later", Expr: &ast.Builtin{
					Op:   "+",
					Args: []ast.Expr{&ast.Var{Name: "bad"}, intLit(128, "1")},
				}},
			},
		},
	}
}

func TestTypeModuleErrorResilientLibrary(t *testing.T) {
	deps := testDeps()
	mod, diags := TypeModule(deps, errorResilientLibraryModule())
	require.NotNil(t, mod)
	require.Len(t, diags, 1, "only \"bad\" itself should produce a diagnostic")
	assert.Equal(t, diagnostics.UnknownBuiltin, diags[0].Code)

	require.NotNil(t, mod.ContractLib)
	names := make([]string, len(mod.ContractLib.Entries))
	for i, e := range mod.ContractLib.Entries {
		names[i] = e.EntryName()
	}
	assert.Equal(t, []string{"good"}, names)
}

func TestTypeModuleRejectsTypeDeclInRecPrims(t *testing.T) {
	deps := testDeps()
	m := &ast.Module{
		RecPrims: []ast.LibEntry{
			&ast.LibTyp{Name: "Sneaky", Ctors: []ast.CtorDecl{{Name: "S"}}},
		},
	}
	mod, diags := TypeModule(deps, m)
	assert.Nil(t, mod)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.RecPrimsTypeDecl, diags[0].Code)
}

func TestTypeModuleRecPrimsVisibleToLibraries(t *testing.T) {
	deps := testDeps()
	m := &ast.Module{
		RecPrims: []ast.LibEntry{
			&ast.LibVar{Name: "one", Expr: intLit(128, "1")},
		},
		ContractLib: &ast.Library{
			Name: "ContractLib",
			Entries: []ast.LibEntry{
				&ast.LibVar{Name: "two", Expr: &ast.Builtin{
					Op:   "+",
					Args: []ast.Expr{&ast.Var{Name: "one"}, intLit(128, "1")},
				}},
			},
		},
	}
	mod, diags := TypeModule(deps, m)
	require.Empty(t, diags)
	require.NotNil(t, mod.ContractLib)
	require.Len(t, mod.ContractLib.Entries, 1)
	assert.Equal(t, "two", mod.ContractLib.Entries[0].EntryName())
}

// A field whose declared type cannot be stored produces a NonStorable
// diagnostic but does not stop the rest of the module from being
// typed.
func TestTypeModuleNonStorableFieldIsAccumulated(t *testing.T) {
	deps := testDeps()
	fnTy := &types.FunType{Arg: types.Uint128(), Result: types.Uint128()}
	m := &ast.Module{
		Fields: []ast.FieldDecl{
			{
				Name: "handler",
				Type: fnTy,
				Init: &ast.Fun{Param: "x", ParamType: types.Uint128(), Body: &ast.Var{Name: "x"}},
			},
			{Name: "greeting", Type: types.StringT(), Init: &ast.Literal{Kind: ast.LitString, Value: "\"hi\""}},
		},
		Transitions: []ast.Transition{
			{Name: "Noop", Body: []ast.Stmt{&ast.AcceptPayment{}}},
		},
	}
	mod, diags := TypeModule(deps, m)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.NonStorable, diags[0].Code)

	names := make([]string, len(mod.Fields))
	for i, f := range mod.Fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"greeting", "_balance"}, names)
	assert.Len(t, mod.Transitions, 1)
}

// A transition with a non-serializable parameter is dropped with a
// diagnostic; its siblings still type.
func TestTypeModuleNonSerializableTransitionParamIsAccumulated(t *testing.T) {
	deps := testDeps()
	mapTy := &types.MapType{Key: types.ByStr20(), Value: types.Uint128()}
	m := &ast.Module{
		Transitions: []ast.Transition{
			{Name: "BadOne", Params: []ast.Param{{Name: "m", Type: mapTy}}},
			{Name: "GoodOne", Body: []ast.Stmt{&ast.AcceptPayment{}}},
		},
	}
	mod, diags := TypeModule(deps, m)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.NonSerializable, diags[0].Code)
	require.Len(t, mod.Transitions, 1)
	assert.Equal(t, "GoodOne", mod.Transitions[0].Name)
}

func TestTypeModuleRejectsNonSerializableContractParam(t *testing.T) {
	deps := testDeps()
	mapTy := &types.MapType{Key: types.ByStr20(), Value: types.Uint128()}
	m := &ast.Module{
		Params: []ast.Param{{Name: "m", Type: mapTy}},
	}
	mod, diags := TypeModule(deps, m)
	assert.Nil(t, mod)
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.NonSerializable, diags[0].Code)
}

// Checking the same module twice yields the same diagnostics, in the
// same order, with the same messages.
func TestTypeModuleDiagnosticsAreDeterministic(t *testing.T) {
	deps := testDeps()
	run := func() []*diagnostics.Diagnostic {
		_, diags := TypeModule(deps, errorResilientLibraryModule())
		return diags
	}
	first := run()
	second := run()
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Code, second[i].Code)
		assert.Equal(t, first[i].Message, second[i].Message)
		assert.Equal(t, first[i].Loc, second[i].Loc)
	}
}

// Running transitions concurrently must produce the same typed module
// and the same sorted diagnostics as the sequential driver.
func TestTypeModuleConcurrentMatchesSequential(t *testing.T) {
	deps := testDeps()
	seqMod, seqDiags := TypeModule(deps, puzzleGameModule())
	concMod, concDiags := TypeModuleConcurrent(deps, puzzleGameModule())

	require.Len(t, concDiags, len(seqDiags))
	require.Len(t, concMod.Transitions, len(seqMod.Transitions))

	seqNames := make([]string, len(seqMod.Transitions))
	for i, tr := range seqMod.Transitions {
		seqNames[i] = tr.Name
	}
	concNames := make([]string, len(concMod.Transitions))
	for i, tr := range concMod.Transitions {
		concNames[i] = tr.Name
	}
	assert.ElementsMatch(t, seqNames, concNames)
}
