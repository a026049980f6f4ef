package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cclang/typecheck/internal/diagnostics"
	"github.com/cclang/typecheck/internal/srcloc"
)

// fakeADTRegistry is a minimal types.ADTRegistry for exercising TypeOps
// without depending on internal/registry (which imports this package).
type fakeADTRegistry struct {
	adts  map[string]ADTInfo
	ctors map[string]CtorInfo
}

func newFakeADTRegistry() *fakeADTRegistry {
	r := &fakeADTRegistry{adts: map[string]ADTInfo{}, ctors: map[string]CtorInfo{}}
	r.adts["Option"] = ADTInfo{Name: "Option", TypeParams: []string{"T"}}
	r.ctors["Some"] = CtorInfo{ADTName: "Option", TypeParams: []string{"T"}, ArgTypes: []Type{&TypeVar{Name: "T"}}}
	r.ctors["None"] = CtorInfo{ADTName: "Option", TypeParams: []string{"T"}}
	r.adts["Pair"] = ADTInfo{Name: "Pair", TypeParams: []string{"A", "B"}}
	r.ctors["Pair"] = CtorInfo{ADTName: "Pair", TypeParams: []string{"A", "B"}, ArgTypes: []Type{&TypeVar{Name: "A"}, &TypeVar{Name: "B"}}}
	return r
}

func (r *fakeADTRegistry) LookupConstructor(name string) (CtorInfo, bool) {
	c, ok := r.ctors[name]
	return c, ok
}
func (r *fakeADTRegistry) LookupADT(name string) (ADTInfo, bool) { a, ok := r.adts[name]; return a, ok }

func TestAssertTypeEquivMismatch(t *testing.T) {
	diag := AssertTypeEquiv(Uint128(), Int(128), srcloc.Loc{})
	require.NotNil(t, diag)
	assert.Contains(t, diag.Message, "Uint128")
	assert.Contains(t, diag.Message, "Int128")
}

func TestFunTypeAppliesArity(t *testing.T) {
	fty := &FunType{Arg: Uint128(), Result: &FunType{Arg: StringT(), Result: ByStr20()}}
	res, diag := FunTypeApplies(fty, []Type{Uint128(), StringT()}, "test", srcloc.Loc{})
	require.Nil(t, diag)
	assert.True(t, res.Equals(ByStr20()))

	_, diag = FunTypeApplies(fty, []Type{Uint128(), StringT(), Uint128()}, "test", srcloc.Loc{})
	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.Arity, diag.Code)
}

func TestFunTypeAppliesMismatch(t *testing.T) {
	fty := &FunType{Arg: Uint128(), Result: ByStr20()}
	_, diag := FunTypeApplies(fty, []Type{StringT()}, "test", srcloc.Loc{})
	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.TypeMismatch, diag.Code)
}

func TestElabConstrTypeSome(t *testing.T) {
	adts := newFakeADTRegistry()
	fty, diag := ElabConstrType(adts, "Some", []Type{ByStrN(32)}, srcloc.Loc{})
	require.Nil(t, diag)
	fn, ok := fty.(*FunType)
	require.True(t, ok)
	assert.True(t, fn.Arg.Equals(ByStrN(32)))
	adt, ok := fn.Result.(*ADT)
	require.True(t, ok)
	assert.Equal(t, "Option", adt.Name)
	assert.True(t, adt.Args[0].Equals(ByStrN(32)))
}

func TestElabConstrTypeArityMismatch(t *testing.T) {
	adts := newFakeADTRegistry()
	_, diag := ElabConstrType(adts, "Some", nil, srcloc.Loc{})
	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.Arity, diag.Code)
}

func TestConstrPatternArgTypesSubstitutes(t *testing.T) {
	adts := newFakeADTRegistry()
	scrutinee := &ADT{Name: "Pair", Args: []Type{ByStr20(), Uint128()}}
	argTys, diag := ConstrPatternArgTypes(adts, scrutinee, "Pair", srcloc.Loc{})
	require.Nil(t, diag)
	require.Len(t, argTys, 2)
	assert.True(t, argTys[0].Equals(ByStr20()))
	assert.True(t, argTys[1].Equals(Uint128()))
}

func TestIsWfTypeRejectsUnknownADT(t *testing.T) {
	adts := newFakeADTRegistry()
	env := Mk()
	diag := IsWfType(env, adts, &ADT{Name: "Nonexistent"}, srcloc.Loc{})
	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.NotWellFormed, diag.Code)
}

func TestIsWfTypeRejectsFreeTypeVarOutOfScope(t *testing.T) {
	adts := newFakeADTRegistry()
	env := Mk()
	diag := IsWfType(env, adts, &TypeVar{Name: "T"}, srcloc.Loc{})
	require.NotNil(t, diag)
}

func TestIsWfTypeAcceptsInScopeTypeVar(t *testing.T) {
	adts := newFakeADTRegistry()
	env := Mk().AddV("T")
	diag := IsWfType(env, adts, &TypeVar{Name: "T"}, srcloc.Loc{})
	assert.Nil(t, diag)
}

func TestGetMsgEvntTypeEvent(t *testing.T) {
	kind, diag := GetMsgEvntType([]string{"_eventname", "status"}, map[string]Type{"_tag": StringT()}, srcloc.Loc{})
	require.Nil(t, diag)
	assert.Equal(t, KindEvent, kind)
}

func TestGetMsgEvntTypeMissingMandatoryField(t *testing.T) {
	mandatory := map[string]Type{"_tag": StringT(), "_recipient": ByStr20(), "_amount": Uint128()}
	kind, diag := GetMsgEvntType([]string{"_tag", "_amount"}, mandatory, srcloc.Loc{})
	assert.Equal(t, KindMessage, kind)
	require.NotNil(t, diag)
	assert.Equal(t, diagnostics.BadMessageField, diag.Code)
}
