// Package types implements the object-language type grammar the
// checker reconstructs: primitive types, maps, arrows, algebraic data
// types, and one-variable-at-a-time polymorphism. Every binder in the
// source language carries an explicit type, so there is no
// unification, no row polymorphism, and no type classes — typing is a
// structural walk over a closed grammar.
package types

import (
	"fmt"
	"strings"
)

// Type is any object-language type. Substitute and FreeVars only ever
// touch TypeVar leaves — a TypeVar is free exclusively inside a
// surrounding PolyFun.
type Type interface {
	String() string
	Equals(other Type) bool
	Substitute(subs map[string]Type) Type
	FreeVars(out map[string]bool)
}

// PrimKind enumerates the fixed set of primitive type constructors.
type PrimKind int

const (
	PByStr20 PrimKind = iota
	PByStrN           // sized byte-string; Width carries N
	PUint             // sized unsigned int; Width in {32,64,128,256}
	PInt              // sized signed int; Width in {32,64,128,256}
	PBNum
	PString
	PMessage
	PEvent
)

// PrimType is one of the fixed primitive types.
type PrimType struct {
	Kind  PrimKind
	Width int // meaningful only for PByStrN, PUint, PInt
}

func (t *PrimType) String() string {
	switch t.Kind {
	case PByStr20:
		return "ByStr20"
	case PByStrN:
		return fmt.Sprintf("ByStr%d", t.Width)
	case PUint:
		return fmt.Sprintf("Uint%d", t.Width)
	case PInt:
		return fmt.Sprintf("Int%d", t.Width)
	case PBNum:
		return "BNum"
	case PString:
		return "String"
	case PMessage:
		return "Message"
	case PEvent:
		return "Event"
	default:
		return "<bad-prim>"
	}
}

func (t *PrimType) Equals(other Type) bool {
	o, ok := other.(*PrimType)
	if !ok {
		return false
	}
	return t.Kind == o.Kind && t.Width == o.Width
}

func (t *PrimType) Substitute(map[string]Type) Type { return t }
func (t *PrimType) FreeVars(map[string]bool)        {}

// Common primitive constructors.
func ByStr20() *PrimType     { return &PrimType{Kind: PByStr20} }
func ByStrN(n int) *PrimType { return &PrimType{Kind: PByStrN, Width: n} }
func Uint(w int) *PrimType   { return &PrimType{Kind: PUint, Width: w} }
func Int(w int) *PrimType    { return &PrimType{Kind: PInt, Width: w} }
func BNum() *PrimType        { return &PrimType{Kind: PBNum} }
func StringT() *PrimType     { return &PrimType{Kind: PString} }
func MessageT() *PrimType    { return &PrimType{Kind: PMessage} }
func EventT() *PrimType      { return &PrimType{Kind: PEvent} }

// Uint128 is used pervasively (amounts, the implicit _balance field).
func Uint128() *PrimType { return Uint(128) }

// MapType is a key/value map; the key must be primitive (invariant 6).
type MapType struct {
	Key   Type
	Value Type
}

func (t *MapType) String() string {
	return fmt.Sprintf("Map %s %s", t.Key.String(), t.Value.String())
}

func (t *MapType) Equals(other Type) bool {
	o, ok := other.(*MapType)
	if !ok {
		return false
	}
	return t.Key.Equals(o.Key) && t.Value.Equals(o.Value)
}

func (t *MapType) Substitute(subs map[string]Type) Type {
	return &MapType{Key: t.Key.Substitute(subs), Value: t.Value.Substitute(subs)}
}

func (t *MapType) FreeVars(out map[string]bool) {
	t.Key.FreeVars(out)
	t.Value.FreeVars(out)
}

// FunType is a monomorphic arrow.
type FunType struct {
	Arg    Type
	Result Type
}

func (t *FunType) String() string {
	return fmt.Sprintf("(%s -> %s)", t.Arg.String(), t.Result.String())
}

func (t *FunType) Equals(other Type) bool {
	o, ok := other.(*FunType)
	if !ok {
		return false
	}
	return t.Arg.Equals(o.Arg) && t.Result.Equals(o.Result)
}

func (t *FunType) Substitute(subs map[string]Type) Type {
	return &FunType{Arg: t.Arg.Substitute(subs), Result: t.Result.Substitute(subs)}
}

func (t *FunType) FreeVars(out map[string]bool) {
	t.Arg.FreeVars(out)
	t.Result.FreeVars(out)
}

// ADT is a named algebraic type applied to positional type arguments,
// e.g. ADT{"Option", [ByStr32]} for `Option ByStr32`.
type ADT struct {
	Name string
	Args []Type
}

func (t *ADT) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s %s", t.Name, strings.Join(parts, " "))
}

func (t *ADT) Equals(other Type) bool {
	o, ok := other.(*ADT)
	if !ok || t.Name != o.Name || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equals(o.Args[i]) {
			return false
		}
	}
	return true
}

func (t *ADT) Substitute(subs map[string]Type) Type {
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Substitute(subs)
	}
	return &ADT{Name: t.Name, Args: args}
}

func (t *ADT) FreeVars(out map[string]bool) {
	for _, a := range t.Args {
		a.FreeVars(out)
	}
}

// PolyFun is universal quantification over one type variable at a
// time; `forall A B. T` is PolyFun{A, PolyFun{B, T}}.
type PolyFun struct {
	TVar string
	Body Type
}

func (t *PolyFun) String() string {
	return fmt.Sprintf("forall %s. %s", t.TVar, t.Body.String())
}

// Equals is alpha-aware: bound-variable names don't matter, only
// structure.
func (t *PolyFun) Equals(other Type) bool {
	o, ok := other.(*PolyFun)
	if !ok {
		return false
	}
	if t.TVar == o.TVar {
		return t.Body.Equals(o.Body)
	}
	fresh := "%alpha/" + t.TVar + "=" + o.TVar
	subs1 := map[string]Type{t.TVar: &TypeVar{Name: fresh}}
	subs2 := map[string]Type{o.TVar: &TypeVar{Name: fresh}}
	return t.Body.Substitute(subs1).Equals(o.Body.Substitute(subs2))
}

func (t *PolyFun) Substitute(subs map[string]Type) Type {
	inner := make(map[string]Type, len(subs))
	for k, v := range subs {
		if k != t.TVar {
			inner[k] = v
		}
	}
	return &PolyFun{TVar: t.TVar, Body: t.Body.Substitute(inner)}
}

func (t *PolyFun) FreeVars(out map[string]bool) {
	inner := map[string]bool{}
	t.Body.FreeVars(inner)
	delete(inner, t.TVar)
	for k := range inner {
		out[k] = true
	}
}

// TypeVar is free only inside a surrounding PolyFun.
type TypeVar struct {
	Name string
}

func (t *TypeVar) String() string { return t.Name }

func (t *TypeVar) Equals(other Type) bool {
	o, ok := other.(*TypeVar)
	return ok && t.Name == o.Name
}

func (t *TypeVar) Substitute(subs map[string]Type) Type {
	if sub, ok := subs[t.Name]; ok {
		return sub
	}
	return t
}

func (t *TypeVar) FreeVars(out map[string]bool) { out[t.Name] = true }

// Qualification is reserved for future refinements; every leaf today
// produces Plain.
type Qualification int

const Plain Qualification = 0

// Qualified pairs a Type with its (currently trivial) qualification
// metadata. Every annotation the checker produces is a Qualified.
type Qualified struct {
	Type Type
	Qual Qualification
}

func Plainly(t Type) Qualified { return Qualified{Type: t, Qual: Plain} }

func (q Qualified) String() string { return q.Type.String() }

func (q Qualified) Equals(o Qualified) bool {
	return q.Qual == o.Qual && q.Type.Equals(o.Type)
}
