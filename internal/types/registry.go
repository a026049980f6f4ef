package types

// This file declares the ADT-registry and builtin-operator-dictionary
// interfaces the type operations depend on. They live in package types
// — not in internal/registry — because internal/registry implements
// them and therefore must import types; putting the interfaces here
// avoids a cycle while keeping them next to the Type grammar they
// describe.

// CtorInfo describes one ADT constructor: its parent ADT's name, the
// positional type-parameter names of that ADT, and the constructor's
// own argument-type schemas (written in terms of those parameters).
type CtorInfo struct {
	ADTName    string
	TypeParams []string
	ArgTypes   []Type
}

// ADTInfo describes one algebraic data type.
type ADTInfo struct {
	Name       string
	TypeParams []string
	Ctors      []string
}

// ADTRegistry resolves constructor and ADT names: lookups, arity,
// argument types.
type ADTRegistry interface {
	LookupConstructor(name string) (CtorInfo, bool)
	LookupADT(name string) (ADTInfo, bool)
}

// BuiltinDictionary resolves an operator name plus argument types to
// the operator's parameter types and result type.
type BuiltinDictionary interface {
	FindBuiltinOp(op string, argTys []Type) (paramTys []Type, resultTy Type, ok bool)
}

// Policy externalizes the storability/serializability exclusions so
// they are consulted from an injected host policy rather than
// hard-coded into IsStorableType/IsSerializableType: which primitive
// kinds can never be stored, and whether a Map value is excluded from
// message payloads. It lives in package types — not internal/registry
// — for the same import-cycle reason as ADTRegistry/BuiltinDictionary
// above.
type Policy interface {
	IsStorableKind(k PrimKind) bool
	ExcludesMapFromPayloads() bool
}

// Absent is a placeholder Type used only to describe "no value was
// supplied" in a diagnostic (e.g. a missing mandatory message field).
// It never appears in a real annotation.
type Absent struct{ Label string }

func (a *Absent) String() string                  { return a.Label }
func (a *Absent) Equals(Type) bool                { return false }
func (a *Absent) Substitute(map[string]Type) Type { return a }
func (a *Absent) FreeVars(map[string]bool)        {}
