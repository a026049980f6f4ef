package typedast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cclang/typecheck/internal/srcloc"
	"github.com/cclang/typecheck/internal/types"
)

func TestNewNodeIDIsUniquePerNode(t *testing.T) {
	a := NewTypedVar(srcloc.Loc{}, types.Plainly(types.Uint(128)), "x")
	b := NewTypedVar(srcloc.Loc{}, types.Plainly(types.Uint(128)), "x")
	assert.NotEqual(t, a.GetNodeID(), b.GetNodeID())
}

func TestTypedVarCarriesTypeAndLoc(t *testing.T) {
	loc := srcloc.Loc{File: "c.ccl", Line: 3, Column: 1}
	ty := types.Plainly(types.ByStr20())
	v := NewTypedVar(loc, ty, "owner")

	assert.Equal(t, "owner", v.Name)
	assert.Equal(t, loc, v.GetLoc())
	assert.True(t, ty.Equals(v.GetType()))

	var _ TypedExpr = v
	var _ TypedNode = v
}

func TestTypedAppString(t *testing.T) {
	fn := NewTypedVar(srcloc.Loc{}, types.Plainly(&types.FunType{Arg: types.Uint(128), Result: types.Uint(128)}), "double")
	arg := NewTypedLiteral(srcloc.Loc{}, types.Plainly(types.Uint(128)), "5")
	app := &TypedApp{
		Meta: NewMeta(srcloc.Loc{}, types.Plainly(types.Uint(128))),
		Fn:   fn,
		Args: []TypedExpr{arg},
	}
	require.Contains(t, app.String(), "double")
	require.Contains(t, app.String(), "5")
}

func TestTypedMessageFieldOrderPreserved(t *testing.T) {
	msg := &TypedMessage{
		Meta: NewMeta(srcloc.Loc{}, types.Plainly(types.MessageT())),
		Kind: TypedKindMessage,
		Fields: []TypedMessageField{
			{Name: "_tag", Value: NewTypedLiteral(srcloc.Loc{}, types.Plainly(types.StringT()), "\"Transfer\"")},
			{Name: "_amount", Value: NewTypedVar(srcloc.Loc{}, types.Plainly(types.Uint128()), "amt")},
		},
	}
	require.Len(t, msg.Fields, 2)
	assert.Equal(t, "_tag", msg.Fields[0].Name)
	assert.Equal(t, "_amount", msg.Fields[1].Name)
}

// TestTypedParamSliceLayoutMatches compares two typed parameter lists
// built here with a structural diff rather than a field-by-field
// assertion, checking that cmp can walk TypedParam and the
// types.Type values it holds and reports any difference as a
// readable diff.
func TestTypedParamSliceLayoutMatches(t *testing.T) {
	got := []TypedParam{
		{Name: "owner", Type: types.ByStr20()},
		{Name: "amount", Type: types.Uint128()},
	}
	want := []TypedParam{
		{Name: "owner", Type: types.ByStr20()},
		{Name: "amount", Type: types.Uint128()},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("param layout mismatch (-want +got):\n%s", diff)
	}
}

func TestTypedModuleStructureHoldsAllPhases(t *testing.T) {
	mod := &TypedModule{
		Meta: NewMeta(srcloc.Loc{}, types.Plainly(&types.Absent{Label: "<module>"})),
		RecPrims: []TypedLibEntry{
			&TypedLibVar{Meta: NewMeta(srcloc.Loc{}, types.Plainly(types.Uint(128))), Name: "zero"},
		},
		Params: []TypedParam{{Name: "_this_address", Type: types.ByStr20()}},
		Fields: []TypedFieldDecl{{Name: "_balance", Type: types.Uint128()}},
	}
	require.Len(t, mod.RecPrims, 1)
	assert.Equal(t, "zero", mod.RecPrims[0].EntryName())
	assert.Equal(t, "_this_address", mod.Params[0].Name)
	assert.Equal(t, "_balance", mod.Fields[0].Name)
}
