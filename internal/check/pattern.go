// Package check implements the typing engine: the pattern typer, the
// expression typer, the statement typer over the dual pure/fields
// environment, and the whole-module driver that threads environments
// through recursion primitives, libraries, fields, and transitions
// while accumulating errors.
//
// Every binder in the source language already carries an explicit
// type, so typing is a structural walk, not a Hindley-Milner solve.
package check

import (
	"github.com/cclang/typecheck/internal/ast"
	"github.com/cclang/typecheck/internal/diagnostics"
	"github.com/cclang/typecheck/internal/typedast"
	"github.com/cclang/typecheck/internal/types"
)

// Binding is one (name, type) pair a pattern introduces.
type Binding struct {
	Name string
	Type types.Type
}

// AssignTypesForPattern types pat against a known scrutinee type,
// returning the decorated pattern and the bindings it introduces.
// Constructor patterns recurse right-to-left over their
// subpatterns but assemble the returned binding list left-to-right,
// so a binder's position in the list always matches its position in
// the source text regardless of recursion order.
func AssignTypesForPattern(adts types.ADTRegistry, scrutineeTy types.Type, pat ast.Pattern) (typedast.TypedPattern, []Binding, *diagnostics.Diagnostic) {
	loc := pat.Position()
	qt := types.Plainly(scrutineeTy)
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return &typedast.TypedWildcardPattern{Meta: typedast.NewMeta(loc, qt)}, nil, nil

	case *ast.BinderPattern:
		tp := &typedast.TypedBinderPattern{Meta: typedast.NewMeta(loc, qt), Name: p.Name}
		return tp, []Binding{{Name: p.Name, Type: scrutineeTy}}, nil

	case *ast.ConstructorPattern:
		argTys, diag := types.ConstrPatternArgTypes(adts, scrutineeTy, p.Name, loc)
		if diag != nil {
			return nil, nil, diag.WithContext("typechecking", loc)
		}
		if len(argTys) != len(p.Args) {
			return nil, nil, diagnostics.NewArity(len(argTys), len(p.Args), "constructor pattern "+p.Name, loc).WithContext("typechecking", loc)
		}
		typedArgs, bindings, diag := assignArgPatterns(adts, argTys, p.Args)
		if diag != nil {
			return nil, nil, diag
		}
		tp := &typedast.TypedConstructorPattern{Meta: typedast.NewMeta(loc, qt), Name: p.Name, Args: typedArgs}
		return tp, bindings, nil

	default:
		panic("check: unhandled pattern form")
	}
}

// assignArgPatterns recurses on the tail before the head, but conses
// the head's result back onto the front, so the final slice and
// binding list both read left to right. Downstream consumers rely on
// that order when building environments.
func assignArgPatterns(adts types.ADTRegistry, argTys []types.Type, pats []ast.Pattern) ([]typedast.TypedPattern, []Binding, *diagnostics.Diagnostic) {
	if len(pats) == 0 {
		return nil, nil, nil
	}
	restTyped, restBindings, diag := assignArgPatterns(adts, argTys[1:], pats[1:])
	if diag != nil {
		return nil, nil, diag
	}
	headTyped, headBindings, diag := AssignTypesForPattern(adts, argTys[0], pats[0])
	if diag != nil {
		return nil, nil, diag
	}
	typed := make([]typedast.TypedPattern, 0, len(pats))
	typed = append(typed, headTyped)
	typed = append(typed, restTyped...)
	bindings := make([]Binding, 0, len(headBindings)+len(restBindings))
	bindings = append(bindings, headBindings...)
	bindings = append(bindings, restBindings...)
	return typed, bindings, nil
}

// bindingsToNamedTypes adapts pattern bindings to the TypeEnv.AddTs
// shape, all Plain-qualified.
func bindingsToNamedTypes(bindings []Binding) []types.NamedType {
	out := make([]types.NamedType, len(bindings))
	for i, b := range bindings {
		out[i] = types.NamedType{Name: b.Name, Type: types.Plainly(b.Type)}
	}
	return out
}
