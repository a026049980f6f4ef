// Package registry declares the checker's external collaborators —
// the ADT registry, the builtin-operator dictionary, the
// blockchain-field registry, and the implicit-param provider — and
// supplies a default, configurable implementation of each so the
// checker is runnable out of the box.
package registry

import "github.com/cclang/typecheck/internal/types"

// CtorInfo and ADTInfo are aliased from package types, which declares
// them so internal/types/ops.go (TypeOps) can depend on ADTRegistry
// without importing this package — see types/registry.go for why.
type CtorInfo = types.CtorInfo
type ADTInfo = types.ADTInfo

// ADTRegistry resolves constructor and ADT names and additionally
// allows registration, which the type operations never need — it
// embeds the read-only types.ADTRegistry they depend on and adds the
// mutator the bootstrapping phase and any host-defined LibTyp
// processing use to populate it.
type ADTRegistry interface {
	types.ADTRegistry
	Register(adt ADTInfo, ctors map[string]CtorInfo)
}

// BuiltinDictionary is aliased from package types for the same reason
// as CtorInfo/ADTInfo above.
type BuiltinDictionary = types.BuiltinDictionary

// BlockchainRegistry resolves well-known read-only identifiers such
// as BLOCKNUMBER.
type BlockchainRegistry interface {
	Lookup(name string) (types.Type, bool)
}

// ImplicitParams supplies the host-injected bindings every contract
// and every transition receives.
type ImplicitParams interface {
	ContractParams() []NamedParam
	TransitionParams() []NamedParam
	BalanceField() NamedParam
}

// NamedParam is a (name, type) pair for implicit parameter injection.
type NamedParam struct {
	Name string
	Type types.Type
}

// Policy externalizes the host-dependent registries: the mandatory
// message/event header shape, the set of fields writes may never
// target, and (via the embedded types.Policy) the storability/
// serializability exclusions, all injected rather than hard-coded.
type Policy interface {
	types.Policy
	MandatoryMessageFields() map[string]types.Type
	MandatoryEventFields() map[string]types.Type
	IsNoStoreField(name string) bool
}
