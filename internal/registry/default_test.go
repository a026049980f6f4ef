package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cclang/typecheck/internal/types"
)

func TestDefaultADTRegistryBootstrapsStandardADTs(t *testing.T) {
	adts := NewDefaultADTRegistry()
	for _, name := range []string{"Bool", "Option", "List", "Nat", "Pair"} {
		_, ok := adts.LookupADT(name)
		assert.True(t, ok, "expected %s to be registered", name)
	}

	ctor, ok := adts.LookupConstructor("Cons")
	require.True(t, ok)
	assert.Equal(t, "List", ctor.ADTName)
	assert.Len(t, ctor.ArgTypes, 2)
}

func TestDefaultBuiltinDictionaryArithmetic(t *testing.T) {
	d := NewDefaultBuiltinDictionary()
	params, result, ok := d.FindBuiltinOp("+", []types.Type{types.Uint128(), types.Uint128()})
	require.True(t, ok)
	assert.Len(t, params, 2)
	assert.True(t, result.Equals(types.Uint128()))
}

func TestDefaultBuiltinDictionaryUnknownOp(t *testing.T) {
	d := NewDefaultBuiltinDictionary()
	_, _, ok := d.FindBuiltinOp("frobnicate", []types.Type{types.Uint128()})
	assert.False(t, ok)
}

func TestDefaultBuiltinDictionaryRejectsWrongArity(t *testing.T) {
	d := NewDefaultBuiltinDictionary()
	_, _, ok := d.FindBuiltinOp("+", []types.Type{types.Uint128()})
	assert.False(t, ok)
}

func TestDefaultPolicyHeaders(t *testing.T) {
	p := NewDefaultPolicy()
	msg := p.MandatoryMessageFields()
	assert.True(t, msg["_tag"].Equals(types.StringT()))
	assert.True(t, msg["_recipient"].Equals(types.ByStr20()))
	assert.True(t, msg["_amount"].Equals(types.Uint128()))

	evt := p.MandatoryEventFields()
	assert.True(t, evt["_eventname"].Equals(types.StringT()))
}

func TestDefaultPolicyStorabilityExclusions(t *testing.T) {
	p := NewDefaultPolicy()
	assert.True(t, p.IsStorableKind(types.PUint))
	assert.False(t, p.IsStorableKind(types.PMessage))
	assert.False(t, p.IsStorableKind(types.PEvent))
	assert.True(t, p.ExcludesMapFromPayloads())
}

func TestDefaultPolicyNoStoreField(t *testing.T) {
	p := NewDefaultPolicy("extra_field")
	assert.True(t, p.IsNoStoreField("_balance"))
	assert.True(t, p.IsNoStoreField("extra_field"))
	assert.False(t, p.IsNoStoreField("owner"))
}

func TestDefaultImplicitParams(t *testing.T) {
	ip := NewDefaultImplicitParams()
	assert.NotEmpty(t, ip.ContractParams())
	assert.NotEmpty(t, ip.TransitionParams())
	assert.Equal(t, "_balance", ip.BalanceField().Name)
	assert.True(t, ip.BalanceField().Type.Equals(types.Uint128()))
}

func TestDefaultBlockchainRegistry(t *testing.T) {
	bc := NewDefaultBlockchainRegistry()
	ty, ok := bc.Lookup("BLOCKNUMBER")
	require.True(t, ok)
	assert.True(t, ty.Equals(types.BNum()))
	_, ok = bc.Lookup("NOT_A_FIELD")
	assert.False(t, ok)
}
