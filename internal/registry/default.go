package registry

import "github.com/cclang/typecheck/internal/types"

// defaultADTRegistry is a mutable in-memory ADT registry, seeded with
// the standard library ADTs the recursion-primitives phase bootstraps:
// Bool, Option, List, Nat, Pair.
type defaultADTRegistry struct {
	adts  map[string]ADTInfo
	ctors map[string]CtorInfo
}

// NewDefaultADTRegistry returns a registry pre-populated with the
// standard ADTs a contract language's recursion primitives need.
func NewDefaultADTRegistry() ADTRegistry {
	r := &defaultADTRegistry{adts: map[string]ADTInfo{}, ctors: map[string]CtorInfo{}}

	r.Register(ADTInfo{Name: "Bool", Ctors: []string{"True", "False"}}, map[string]CtorInfo{
		"True":  {ADTName: "Bool"},
		"False": {ADTName: "Bool"},
	})

	r.Register(ADTInfo{Name: "Option", TypeParams: []string{"T"}, Ctors: []string{"Some", "None"}}, map[string]CtorInfo{
		"Some": {ADTName: "Option", TypeParams: []string{"T"}, ArgTypes: []types.Type{&types.TypeVar{Name: "T"}}},
		"None": {ADTName: "Option", TypeParams: []string{"T"}},
	})

	r.Register(ADTInfo{Name: "List", TypeParams: []string{"T"}, Ctors: []string{"Cons", "Nil"}}, map[string]CtorInfo{
		"Cons": {ADTName: "List", TypeParams: []string{"T"}, ArgTypes: []types.Type{
			&types.TypeVar{Name: "T"},
			&types.ADT{Name: "List", Args: []types.Type{&types.TypeVar{Name: "T"}}},
		}},
		"Nil": {ADTName: "List", TypeParams: []string{"T"}},
	})

	r.Register(ADTInfo{Name: "Nat", Ctors: []string{"Zero", "Succ"}}, map[string]CtorInfo{
		"Zero": {ADTName: "Nat"},
		"Succ": {ADTName: "Nat", ArgTypes: []types.Type{&types.ADT{Name: "Nat"}}},
	})

	r.Register(ADTInfo{Name: "Pair", TypeParams: []string{"A", "B"}, Ctors: []string{"Pair"}}, map[string]CtorInfo{
		"Pair": {ADTName: "Pair", TypeParams: []string{"A", "B"}, ArgTypes: []types.Type{
			&types.TypeVar{Name: "A"}, &types.TypeVar{Name: "B"},
		}},
	})

	return r
}

func (r *defaultADTRegistry) LookupConstructor(name string) (CtorInfo, bool) {
	c, ok := r.ctors[name]
	return c, ok
}

func (r *defaultADTRegistry) LookupADT(name string) (ADTInfo, bool) {
	a, ok := r.adts[name]
	return a, ok
}

func (r *defaultADTRegistry) Register(adt ADTInfo, ctors map[string]CtorInfo) {
	r.adts[adt.Name] = adt
	for name, info := range ctors {
		r.ctors[name] = info
	}
}

// builtinSig is one overload of a builtin operator.
type builtinSig struct {
	params []types.Type
	result types.Type
}

type defaultBuiltins struct {
	ops map[string][]builtinSig
}

// NewDefaultBuiltinDictionary returns the arithmetic, comparison,
// string, and hashing operators a contract language's expression
// layer needs, keyed by (name, argument-type signature).
func NewDefaultBuiltinDictionary() BuiltinDictionary {
	d := &defaultBuiltins{ops: map[string][]builtinSig{}}
	for _, w := range []int{32, 64, 128, 256} {
		u, i := types.Uint(w), types.Int(w)
		for _, t := range []types.Type{u, i} {
			d.add("+", []types.Type{t, t}, t)
			d.add("-", []types.Type{t, t}, t)
			d.add("*", []types.Type{t, t}, t)
			d.add("/", []types.Type{t, t}, t)
			d.add("%", []types.Type{t, t}, t)
			d.add("<", []types.Type{t, t}, boolADT())
			d.add("<=", []types.Type{t, t}, boolADT())
			d.add("=", []types.Type{t, t}, boolADT())
		}
	}
	d.add("eq", []types.Type{types.StringT(), types.StringT()}, boolADT())
	d.add("concat", []types.Type{types.StringT(), types.StringT()}, types.StringT())
	d.add("substr", []types.Type{types.StringT(), types.Uint(32), types.Uint(32)}, types.StringT())
	d.add("to_string", []types.Type{types.Uint128()}, types.StringT())
	d.add("sha256hash", []types.Type{types.StringT()}, types.ByStrN(32))
	d.add("blt", []types.Type{types.BNum(), types.BNum()}, boolADT())
	d.add("eq", []types.Type{types.ByStr20(), types.ByStr20()}, boolADT())
	return d
}

func boolADT() types.Type { return &types.ADT{Name: "Bool"} }

func (d *defaultBuiltins) add(op string, params []types.Type, result types.Type) {
	d.ops[op] = append(d.ops[op], builtinSig{params: params, result: result})
}

func (d *defaultBuiltins) FindBuiltinOp(op string, argTys []types.Type) ([]types.Type, types.Type, bool) {
	for _, sig := range d.ops[op] {
		if len(sig.params) != len(argTys) {
			continue
		}
		match := true
		for i := range sig.params {
			if !sig.params[i].Equals(argTys[i]) {
				match = false
				break
			}
		}
		if match {
			return sig.params, sig.result, true
		}
	}
	return nil, nil, false
}

type defaultBlockchain struct{ fields map[string]types.Type }

// NewDefaultBlockchainRegistry resolves the well-known read-only
// blockchain fields.
func NewDefaultBlockchainRegistry() BlockchainRegistry {
	return &defaultBlockchain{fields: map[string]types.Type{
		"BLOCKNUMBER": types.BNum(),
		"TIMESTAMP":   types.Uint(64),
	}}
}

func (b *defaultBlockchain) Lookup(name string) (types.Type, bool) {
	t, ok := b.fields[name]
	return t, ok
}

type defaultImplicitParams struct{}

// NewDefaultImplicitParams returns the host's standard implicit
// bindings: _this_address and _creation_block on every contract,
// _sender and _amount on every transition, and the _balance field.
func NewDefaultImplicitParams() ImplicitParams { return defaultImplicitParams{} }

func (defaultImplicitParams) ContractParams() []NamedParam {
	return []NamedParam{
		{Name: "_this_address", Type: types.ByStr20()},
		{Name: "_creation_block", Type: types.BNum()},
	}
}

func (defaultImplicitParams) TransitionParams() []NamedParam {
	return []NamedParam{
		{Name: "_sender", Type: types.ByStr20()},
		{Name: "_amount", Type: types.Uint128()},
	}
}

func (defaultImplicitParams) BalanceField() NamedParam {
	return NamedParam{Name: "_balance", Type: types.Uint128()}
}

type defaultPolicy struct {
	noStore map[string]bool
}

// NewDefaultPolicy returns the standard mandatory-header table and
// no-store field list (`_balance` plus any host additions).
func NewDefaultPolicy(extraNoStore ...string) Policy {
	p := &defaultPolicy{noStore: map[string]bool{"_balance": true}}
	for _, f := range extraNoStore {
		p.noStore[f] = true
	}
	return p
}

func (p *defaultPolicy) MandatoryMessageFields() map[string]types.Type {
	return map[string]types.Type{
		"_tag":       types.StringT(),
		"_recipient": types.ByStr20(),
		"_amount":    types.Uint128(),
	}
}

func (p *defaultPolicy) MandatoryEventFields() map[string]types.Type {
	return map[string]types.Type{
		"_eventname": types.StringT(),
	}
}

func (p *defaultPolicy) IsNoStoreField(name string) bool { return p.noStore[name] }

// IsStorableKind implements types.Policy: every primitive kind is
// storable except Message and Event.
func (p *defaultPolicy) IsStorableKind(k types.PrimKind) bool {
	return k != types.PMessage && k != types.PEvent
}

// ExcludesMapFromPayloads implements types.Policy: this host excludes
// Map values from message/event payloads and transition parameters.
func (p *defaultPolicy) ExcludesMapFromPayloads() bool { return true }
