package check

import (
	"sync"

	"go.uber.org/zap"

	"github.com/cclang/typecheck/internal/ast"
	"github.com/cclang/typecheck/internal/diagnostics"
	"github.com/cclang/typecheck/internal/typedast"
	"github.com/cclang/typecheck/internal/types"
)

// moduleBase is everything the first four checking phases produce: the typed
// recursion primitives and libraries, the typed contract parameters,
// the typed fields, and the two residual environments (pure-with-
// params, post-field fields) that phase 5 extends per transition.
// TypeModule and TypeModuleConcurrent share this, diverging only on
// how they run phase 5.
type moduleBase struct {
	typedRecPrims     []typedast.TypedLibEntry
	typedExternalLibs []*typedast.TypedLibrary
	typedContractLib  *typedast.TypedLibrary
	typedParams       []typedast.TypedParam
	typedFields       []typedast.TypedFieldDecl
	pureWithParams    *types.TypeEnv
	fieldsEnv         *types.TypeEnv
	col               diagnostics.Collector
}

func typeModuleBase(deps *Deps, m *ast.Module) (*moduleBase, *diagnostics.Diagnostic) {
	log := deps.logger()
	var b moduleBase

	log.Info("phase start", zap.String("phase", "rec-prims"), zap.Int("count", len(m.RecPrims)))
	typedRecPrims, pureBase, diag := typeRecPrims(deps, m.RecPrims)
	if diag != nil {
		log.Warn("phase aborted", zap.String("phase", "rec-prims"), zap.Error(diag))
		return nil, diag
	}
	log.Info("phase done", zap.String("phase", "rec-prims"), zap.Bool("ok", true))
	b.typedRecPrims = typedRecPrims

	blacklist := map[string]bool{}
	libEnv := pureBase
	b.typedExternalLibs = make([]*typedast.TypedLibrary, 0, len(m.ExternalLibs))
	for _, lib := range m.ExternalLibs {
		log.Info("phase start", zap.String("phase", "library"), zap.String("name", lib.Name))
		var typedLib *typedast.TypedLibrary
		typedLib, libEnv = typeLibrary(libEnv, deps, lib, blacklist, &b.col)
		b.typedExternalLibs = append(b.typedExternalLibs, typedLib)
	}
	if m.ContractLib != nil {
		log.Info("phase start", zap.String("phase", "library"), zap.String("name", m.ContractLib.Name))
		b.typedContractLib, libEnv = typeLibrary(libEnv, deps, m.ContractLib, blacklist, &b.col)
	}

	pureWithParams := libEnv
	b.typedParams = make([]typedast.TypedParam, 0, len(deps.Implicit.ContractParams())+len(m.Params))
	for _, ip := range deps.Implicit.ContractParams() {
		b.typedParams = append(b.typedParams, typedast.TypedParam{Name: ip.Name, Type: ip.Type})
		pureWithParams = pureWithParams.AddT(ip.Name, types.Plainly(ip.Type))
	}
	for _, p := range m.Params {
		if diag := types.IsWfType(pureWithParams, deps.ADTs, p.Type, m.Position()); diag != nil {
			return nil, diag
		}
		if !types.IsSerializableType(p.Type, deps.Policy) {
			return nil, diagnostics.NewNonSerializable(p.Type, m.Position())
		}
		b.typedParams = append(b.typedParams, typedast.TypedParam{Name: p.Name, Type: p.Type})
		pureWithParams = pureWithParams.AddT(p.Name, types.Plainly(p.Type))
	}
	b.pureWithParams = pureWithParams

	fieldsEnv := types.Mk()
	b.typedFields = make([]typedast.TypedFieldDecl, 0, len(m.Fields)+1)
	for _, f := range m.Fields {
		typedInit, initQt, diag := TypeExpr(pureWithParams, deps, f.Init)
		ok := diag == nil
		if ok {
			if diag = types.AssertTypeEquiv(f.Type, initQt.Type, f.Init.Position()); diag != nil {
				ok = false
			}
		}
		if ok && !types.IsStorableType(f.Type, deps.Policy) {
			diag = diagnostics.NewNonStorable(f.Type, f.Init.Position())
			ok = false
		}
		log.Info("field typed", zap.String("phase", "field"), zap.String("name", f.Name), zap.Bool("ok", ok))
		if !ok {
			b.col.Add(diag)
			continue
		}
		b.typedFields = append(b.typedFields, typedast.TypedFieldDecl{Name: f.Name, Type: f.Type, Init: typedInit})
		fieldsEnv = fieldsEnv.AddT(f.Name, types.Plainly(f.Type))
	}
	balance := deps.Implicit.BalanceField()
	b.typedFields = append(b.typedFields, typedast.TypedFieldDecl{Name: balance.Name, Type: balance.Type})
	fieldsEnv = fieldsEnv.AddT(balance.Name, types.Plainly(balance.Type))
	b.fieldsEnv = fieldsEnv

	return &b, nil
}

func (b *moduleBase) build(m *ast.Module, typedTransitions []typedast.TypedTransition) (*typedast.TypedModule, []*diagnostics.Diagnostic) {
	mod := &typedast.TypedModule{
		Meta:         typedast.NewMeta(m.Position(), unitQualified()),
		RecPrims:     b.typedRecPrims,
		ExternalLibs: b.typedExternalLibs,
		ContractLib:  b.typedContractLib,
		Params:       b.typedParams,
		Fields:       b.typedFields,
		Transitions:  typedTransitions,
	}
	return mod, b.col.Sorted()
}

// TypeModule runs the five ordered checking phases over a whole module:
// recursion primitives, libraries, contract parameters, fields, and
// transitions. Recursion primitives and contract parameters establish
// the base environment every later phase builds on, so a failure
// there aborts the whole run; libraries, fields, and transitions are
// error-resilient — each entry is typed independently and every
// failure is accumulated rather than aborting the phase.
func TypeModule(deps *Deps, m *ast.Module) (*typedast.TypedModule, []*diagnostics.Diagnostic) {
	log := deps.logger()
	b, diag := typeModuleBase(deps, m)
	if diag != nil {
		return nil, []*diagnostics.Diagnostic{diag}
	}

	typedTransitions := make([]typedast.TypedTransition, 0, len(m.Transitions))
	for _, tr := range m.Transitions {
		tt, diag := typeTransition(b.pureWithParams, b.fieldsEnv, deps, tr)
		log.Info("transition typed", zap.String("phase", "transition"), zap.String("name", tr.Name), zap.Bool("ok", diag == nil))
		if diag != nil {
			b.col.Add(diag)
			continue
		}
		typedTransitions = append(typedTransitions, *tt)
	}

	return b.build(m, typedTransitions)
}

// TypeModuleConcurrent types the transition phase with one goroutine
// per transition instead of a sequential loop: each goroutine
// receives its own pureWithParams/fieldsEnv snapshot (safe to share
// read-only, since extending a TypeEnv never mutates it — see
// internal/types/env.go), and the merged diagnostic list is sorted
// into source order before returning, so its observable result is
// identical to TypeModule's.
func TypeModuleConcurrent(deps *Deps, m *ast.Module) (*typedast.TypedModule, []*diagnostics.Diagnostic) {
	b, diag := typeModuleBase(deps, m)
	if diag != nil {
		return nil, []*diagnostics.Diagnostic{diag}
	}

	log := deps.logger()
	results := make([]*typedast.TypedTransition, len(m.Transitions))
	diags := make([]*diagnostics.Diagnostic, len(m.Transitions))
	var wg sync.WaitGroup
	for i, tr := range m.Transitions {
		wg.Add(1)
		go func(i int, tr ast.Transition) {
			defer wg.Done()
			tt, diag := typeTransition(b.pureWithParams, b.fieldsEnv, deps, tr)
			log.Info("transition typed", zap.String("phase", "transition"), zap.String("name", tr.Name), zap.Bool("ok", diag == nil))
			results[i] = tt
			diags[i] = diag
		}(i, tr)
	}
	wg.Wait()

	typedTransitions := make([]typedast.TypedTransition, 0, len(m.Transitions))
	for i, tt := range results {
		if diags[i] != nil {
			b.col.Add(diags[i])
			continue
		}
		typedTransitions = append(typedTransitions, *tt)
	}

	return b.build(m, typedTransitions)
}

// typeRecPrims types the recursion-primitives phase: an ordered sequence of LibVar
// entries, each visible to every later one, building the base pure
// environment every other phase extends. A LibTyp entry here is
// rejected outright — recursion primitives never declare types.
func typeRecPrims(deps *Deps, entries []ast.LibEntry) ([]typedast.TypedLibEntry, *types.TypeEnv, *diagnostics.Diagnostic) {
	env := types.Mk()
	typed := make([]typedast.TypedLibEntry, 0, len(entries))
	for _, entry := range entries {
		switch e := entry.(type) {
		case *ast.LibTyp:
			return nil, nil, diagnostics.NewRecPrimsTypeDecl(e.Name, e.Position())
		case *ast.LibVar:
			typedExpr, qt, diag := TypeExpr(env, deps, e.Expr)
			if diag != nil {
				return nil, nil, diag
			}
			tv := &typedast.TypedLibVar{Meta: typedast.NewMeta(e.Position(), qt), Name: e.Name, Expr: typedExpr}
			typed = append(typed, tv)
			env = env.AddT(e.Name, qt)
		default:
			panic("check: unhandled rec-prim entry")
		}
	}
	return typed, env, nil
}

// typeLibrary types one library's entries in declaration order,
// threading env forward and recording every failure in col
// instead of aborting; a skipped or failed LibVar is not bound, so a
// later entry referencing it lands in the blacklist branch below
// rather than failing on an unbound-variable diagnostic of its own.
func typeLibrary(env *types.TypeEnv, deps *Deps, lib *ast.Library, blacklist map[string]bool, col *diagnostics.Collector) (*typedast.TypedLibrary, *types.TypeEnv) {
	typedEntries := make([]typedast.TypedLibEntry, 0, len(lib.Entries))
	for _, entry := range lib.Entries {
		te, newEnv, ok := typeLibEntry(env, deps, entry, blacklist, col)
		deps.logger().Info("library entry typed", zap.String("phase", "library"), zap.String("name", entry.EntryName()), zap.Bool("ok", ok))
		env = newEnv
		if ok {
			typedEntries = append(typedEntries, te)
		}
	}
	typedLib := &typedast.TypedLibrary{
		Meta:    typedast.NewMeta(lib.Position(), unitQualified()),
		Name:    lib.Name,
		Entries: typedEntries,
	}
	return typedLib, env
}

func typeLibEntry(env *types.TypeEnv, deps *Deps, entry ast.LibEntry, blacklist map[string]bool, col *diagnostics.Collector) (typedast.TypedLibEntry, *types.TypeEnv, bool) {
	switch e := entry.(type) {
	case *ast.LibTyp:
		for _, c := range e.Ctors {
			for _, at := range c.ArgTypes {
				if diag := types.IsWfType(env, deps.ADTs, at, e.Position()); diag != nil {
					col.Add(diag)
					return nil, env, false
				}
			}
		}
		typedCtors := make([]typedast.TypedCtorDecl, len(e.Ctors))
		for i, c := range e.Ctors {
			typedCtors[i] = typedast.TypedCtorDecl{Name: c.Name, ArgTypes: c.ArgTypes}
		}
		tl := &typedast.TypedLibTyp{Meta: typedast.NewMeta(e.Position(), unitQualified()), Name: e.Name, Ctors: typedCtors}
		return tl, env, true

	case *ast.LibVar:
		for name := range FreeVars(e.Expr) {
			if blacklist[name] {
				blacklist[e.Name] = true
				return nil, env, false
			}
		}
		typedExpr, qt, diag := TypeExpr(env, deps, e.Expr)
		if diag != nil {
			col.Add(diag)
			blacklist[e.Name] = true
			return nil, env, false
		}
		tv := &typedast.TypedLibVar{Meta: typedast.NewMeta(e.Position(), qt), Name: e.Name, Expr: typedExpr}
		return tv, env.AddT(e.Name, qt), true

	default:
		panic("check: unhandled library entry")
	}
}

// typeTransition types one transition under its own copy of the
// post-field pure and fields environments: two
// transitions never observe each other's implicit or declared
// parameter bindings, even though both descend from the same base
// envs, because extending a TypeEnv never mutates the parent.
func typeTransition(pureBase, fieldsBase *types.TypeEnv, deps *Deps, tr ast.Transition) (*typedast.TypedTransition, *diagnostics.Diagnostic) {
	trPure := pureBase.Copy()
	trFields := fieldsBase.Copy()

	typedParams := make([]typedast.TypedParam, 0, len(deps.Implicit.TransitionParams())+len(tr.Params))
	for _, ip := range deps.Implicit.TransitionParams() {
		typedParams = append(typedParams, typedast.TypedParam{Name: ip.Name, Type: ip.Type})
		trPure = trPure.AddT(ip.Name, types.Plainly(ip.Type))
	}
	for _, p := range tr.Params {
		if diag := types.IsWfType(trPure, deps.ADTs, p.Type, tr.Position()); diag != nil {
			return nil, diag
		}
		if !types.IsSerializableType(p.Type, deps.Policy) {
			return nil, diagnostics.NewNonSerializable(p.Type, tr.Position())
		}
		typedParams = append(typedParams, typedast.TypedParam{Name: p.Name, Type: p.Type})
		trPure = trPure.AddT(p.Name, types.Plainly(p.Type))
	}

	stmtEnv := StmtEnv{Pure: trPure, Fields: trFields}
	typedBody, _, diag := TypeStmts(stmtEnv, deps, tr.Body)
	if diag != nil {
		return nil, diag
	}

	return &typedast.TypedTransition{
		Meta:   typedast.NewMeta(tr.Position(), unitQualified()),
		Name:   tr.Name,
		Params: typedParams,
		Body:   typedBody,
	}, nil
}
