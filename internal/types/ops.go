package types

import (
	"sort"

	"github.com/cclang/typecheck/internal/diagnostics"
	"github.com/cclang/typecheck/internal/srcloc"
)

// AssertTypeEquiv checks nominal equivalence modulo PolyFun alpha-
// renaming. On mismatch it returns a TypeMismatch diagnostic.
func AssertTypeEquiv(expected, got Type, loc srcloc.Loc) *diagnostics.Diagnostic {
	if expected.Equals(got) {
		return nil
	}
	return diagnostics.NewTypeMismatch(expected, got, loc)
}

// IsWfType checks that every free type variable in ty is in scope and
// every named ADT resolves in the registry.
func IsWfType(env *TypeEnv, adts ADTRegistry, ty Type, loc srcloc.Loc) *diagnostics.Diagnostic {
	free := map[string]bool{}
	ty.FreeVars(free)
	for v := range free {
		if !env.HasTVar(v) {
			return diagnostics.NewNotWellFormed(ty, loc)
		}
	}
	if !wfADTNames(adts, ty) {
		return diagnostics.NewNotWellFormed(ty, loc)
	}
	return nil
}

func wfADTNames(adts ADTRegistry, ty Type) bool {
	switch t := ty.(type) {
	case *ADT:
		info, ok := adts.LookupADT(t.Name)
		if !ok || len(info.TypeParams) != len(t.Args) {
			return false
		}
		for _, a := range t.Args {
			if !wfADTNames(adts, a) {
				return false
			}
		}
		return true
	case *MapType:
		return wfADTNames(adts, t.Key) && wfADTNames(adts, t.Value)
	case *FunType:
		return wfADTNames(adts, t.Arg) && wfADTNames(adts, t.Result)
	case *PolyFun:
		return wfADTNames(adts, t.Body)
	default:
		return true
	}
}

// FunTypeApplies walks arrows, checking each actual argument type
// against the current arrow's domain, and returns the final codomain.
func FunTypeApplies(fty Type, argTys []Type, context string, loc srcloc.Loc) (Type, *diagnostics.Diagnostic) {
	cur := fty
	for i, arg := range argTys {
		fn, ok := cur.(*FunType)
		if !ok {
			return nil, diagnostics.NewArity(i, len(argTys), context, loc)
		}
		if !fn.Arg.Equals(arg) {
			return nil, diagnostics.NewTypeMismatch(fn.Arg, arg, loc)
		}
		cur = fn.Result
	}
	return cur, nil
}

// ElabTFunWithArgs instantiates nested PolyFun binders in order.
func ElabTFunWithArgs(pfty Type, tyArgs []Type, loc srcloc.Loc) (Type, *diagnostics.Diagnostic) {
	cur := pfty
	for i, arg := range tyArgs {
		pf, ok := cur.(*PolyFun)
		if !ok {
			return nil, diagnostics.NewArity(i, len(tyArgs), "type application", loc)
		}
		cur = pf.Body.Substitute(map[string]Type{pf.TVar: arg})
	}
	return cur, nil
}

// ElabConstrType looks up a constructor's declaring ADT, substitutes
// the supplied type arguments into its declared argument-type
// schemas, and returns the constructor-as-function type
// a1 -> ... -> an -> ADT(name, typeArgs).
func ElabConstrType(adts ADTRegistry, cname string, typeArgs []Type, loc srcloc.Loc) (Type, *diagnostics.Diagnostic) {
	info, ok := adts.LookupConstructor(cname)
	if !ok {
		return nil, diagnostics.NewNotWellFormed(&ADT{Name: cname}, loc)
	}
	if len(info.TypeParams) != len(typeArgs) {
		return nil, diagnostics.NewArity(len(info.TypeParams), len(typeArgs), "constructor type arguments for "+cname, loc)
	}
	subs := make(map[string]Type, len(info.TypeParams))
	for i, p := range info.TypeParams {
		subs[p] = typeArgs[i]
	}
	result := Type(&ADT{Name: info.ADTName, Args: typeArgs})
	fty := result
	for i := len(info.ArgTypes) - 1; i >= 0; i-- {
		fty = &FunType{Arg: info.ArgTypes[i].Substitute(subs), Result: fty}
	}
	return fty, nil
}

// ConstrPatternArgTypes is the dual of ElabConstrType: given a known
// ADT instantiation and a constructor name, it returns the
// constructor's argument types substituted for that instantiation's
// type arguments, so patterns destructure with concrete types.
func ConstrPatternArgTypes(adts ADTRegistry, scrutinee Type, cname string, loc srcloc.Loc) ([]Type, *diagnostics.Diagnostic) {
	adt, ok := scrutinee.(*ADT)
	if !ok {
		return nil, diagnostics.NewTypeMismatch(&ADT{Name: "<adt>"}, scrutinee, loc)
	}
	info, ok := adts.LookupConstructor(cname)
	if !ok || info.ADTName != adt.Name {
		return nil, diagnostics.NewNotWellFormed(&ADT{Name: cname}, loc)
	}
	subs := make(map[string]Type, len(info.TypeParams))
	for i, p := range info.TypeParams {
		if i < len(adt.Args) {
			subs[p] = adt.Args[i]
		}
	}
	out := make([]Type, len(info.ArgTypes))
	for i, t := range info.ArgTypes {
		out[i] = t.Substitute(subs)
	}
	return out, nil
}

// IsStorableType reports whether ty may appear as a contract field's
// declared type: FunType, PolyFun and TypeVar never are; which primitive kinds
// (Message, Event) are excluded is delegated to policy rather than
// hard-coded here; everything else is storable if every type
// parameter is storable.
func IsStorableType(ty Type, policy Policy) bool {
	switch t := ty.(type) {
	case *PrimType:
		return policy.IsStorableKind(t.Kind)
	case *FunType:
		return false
	case *PolyFun:
		return false
	case *MapType:
		return IsStorableType(t.Key, policy) && IsStorableType(t.Value, policy)
	case *ADT:
		for _, a := range t.Args {
			if !IsStorableType(a, policy) {
				return false
			}
		}
		return true
	case *TypeVar:
		return false
	default:
		return false
	}
}

// IsSerializableType reports whether ty may be a transition parameter
// or a message-payload value: a strict subset of storable that
// additionally excludes Map when the host policy says so, rather than
// hard-coding that exclusion.
func IsSerializableType(ty Type, policy Policy) bool {
	if _, isMap := ty.(*MapType); isMap && policy.ExcludesMapFromPayloads() {
		return false
	}
	return IsStorableType(ty, policy)
}

// MsgEvntKind distinguishes a Message literal from an Event literal.
type MsgEvntKind int

const (
	KindMessage MsgEvntKind = iota
	KindEvent
)

// GetMsgEvntType inspects the set of field names present on a
// Message/Event literal to decide which of the two it is, and
// validates that the field set matches one of the two mandatory
// headers. mandatoryMsgFields is the
// caller's policy-resolved Message header (name -> declared type);
// GetMsgEvntType takes it as a plain map rather than a registry.Policy
// so that package types never needs to import internal/registry.
func GetMsgEvntType(fields []string, mandatoryMsgFields map[string]Type, loc srcloc.Loc) (MsgEvntKind, *diagnostics.Diagnostic) {
	has := map[string]bool{}
	for _, f := range fields {
		has[f] = true
	}
	if has["_eventname"] {
		return KindEvent, nil
	}
	names := make([]string, 0, len(mandatoryMsgFields))
	for f := range mandatoryMsgFields {
		names = append(names, f)
	}
	sort.Strings(names)
	for _, f := range names {
		if !has[f] {
			return KindMessage, diagnostics.NewBadMessageField(f, mandatoryMsgFields[f], &Absent{Label: "<missing>"}, loc)
		}
	}
	return KindMessage, nil
}
