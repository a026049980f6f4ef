package check

import (
	"github.com/cclang/typecheck/internal/ast"
	"github.com/cclang/typecheck/internal/diagnostics"
	"github.com/cclang/typecheck/internal/srcloc"
	"github.com/cclang/typecheck/internal/typedast"
	"github.com/cclang/typecheck/internal/types"
)

// StmtEnv is the dual environment statement typing runs under:
// pure holds ordinary value bindings, fields holds the contract's
// mutable storage. Both halves are TypeEnv, so branching either is
// already O(1) under its persistent-map representation.
type StmtEnv struct {
	Pure   *types.TypeEnv
	Fields *types.TypeEnv
}

// unitQualified stands in for the "no useful value" result of a
// statement that only has an effect (Store, AcceptPayment, SendMsgs,
// CreateEvnt, MatchStmt itself).
func unitQualified() types.Qualified {
	return types.Plainly(&types.Absent{Label: "<unit>"})
}

// TypeStmts types a statement block in order, threading the extended
// environment from each statement to the next; bindings introduced by
// Load/Bind/MapGet/ReadFromBC are visible to every later statement in
// this same list but go no further than it.
func TypeStmts(env StmtEnv, deps *Deps, stmts []ast.Stmt) ([]typedast.TypedStmt, StmtEnv, *diagnostics.Diagnostic) {
	typed := make([]typedast.TypedStmt, 0, len(stmts))
	cur := env
	for _, s := range stmts {
		ts, next, diag := typeStmt(cur, deps, s)
		if diag != nil {
			return nil, StmtEnv{}, diag.WithContext("typechecking", s.Position())
		}
		typed = append(typed, ts)
		cur = next
	}
	return typed, cur, nil
}

func typeStmt(env StmtEnv, deps *Deps, s ast.Stmt) (typedast.TypedStmt, StmtEnv, *diagnostics.Diagnostic) {
	loc := s.Position()
	switch n := s.(type) {

	case *ast.Load:
		fieldQt, ok := env.Fields.ResolveT(n.Field)
		if !ok {
			return nil, env, diagnostics.NewUnbound(n.Field, loc)
		}
		ts := &typedast.TypedLoad{Meta: typedast.NewMeta(loc, fieldQt), Name: n.Name, Field: n.Field}
		next := StmtEnv{Pure: env.Pure.AddT(n.Name, fieldQt), Fields: env.Fields}
		return ts, next, nil

	case *ast.Store:
		if deps.Policy.IsNoStoreField(n.Field) {
			return nil, env, diagnostics.NewWriteToReadOnly(n.Field, loc)
		}
		fieldQt, ok := env.Fields.ResolveT(n.Field)
		if !ok {
			return nil, env, diagnostics.NewUnbound(n.Field, loc)
		}
		valQt, ok := env.Pure.ResolveT(n.Value)
		if !ok {
			return nil, env, diagnostics.NewUnbound(n.Value, loc)
		}
		if diag := types.AssertTypeEquiv(fieldQt.Type, valQt.Type, loc); diag != nil {
			return nil, env, diag
		}
		ts := &typedast.TypedStore{Meta: typedast.NewMeta(loc, unitQualified()), Field: n.Field, Value: n.Value}
		return ts, env, nil

	case *ast.Bind:
		typedExpr, qt, diag := TypeExpr(env.Pure, deps, n.Expr)
		if diag != nil {
			return nil, env, diag
		}
		ts := &typedast.TypedBind{Meta: typedast.NewMeta(loc, qt), Name: n.Name, Expr: typedExpr}
		next := StmtEnv{Pure: env.Pure.AddT(n.Name, qt), Fields: env.Fields}
		return ts, next, nil

	case *ast.MapUpdate:
		fieldQt, ok := env.Fields.ResolveT(n.Map)
		if !ok {
			return nil, env, diagnostics.NewUnbound(n.Map, loc)
		}
		valueTy, diag := resolveMapChain(env.Pure, fieldQt.Type, n.Keys, loc)
		if diag != nil {
			return nil, env, diag
		}
		var valPtr *string
		if n.Value != nil {
			valQt, ok := env.Pure.ResolveT(*n.Value)
			if !ok {
				return nil, env, diagnostics.NewUnbound(*n.Value, loc)
			}
			if diag := types.AssertTypeEquiv(valueTy, valQt.Type, loc); diag != nil {
				return nil, env, diag
			}
			valPtr = n.Value
		} else if _, stillMap := valueTy.(*types.MapType); stillMap {
			// A delete requires exact arity match to the map's depth:
			// leaving an intermediate submap type means n.Keys didn't
			// fully unwrap the MapType chain.
			return nil, env, diagnostics.NewArity(mapDepth(fieldQt.Type), len(n.Keys), "map delete", loc)
		}
		ts := &typedast.TypedMapUpdate{Meta: typedast.NewMeta(loc, unitQualified()), Map: n.Map, Keys: n.Keys, Value: valPtr}
		return ts, env, nil

	case *ast.MapGet:
		fieldQt, ok := env.Fields.ResolveT(n.Map)
		if !ok {
			return nil, env, diagnostics.NewUnbound(n.Map, loc)
		}
		valueTy, diag := resolveMapChain(env.Pure, fieldQt.Type, n.Keys, loc)
		if diag != nil {
			return nil, env, diag
		}
		var bindTy types.Type
		if n.Fetch {
			bindTy = &types.ADT{Name: "Option", Args: []types.Type{valueTy}}
		} else {
			bindTy = &types.ADT{Name: "Bool"}
		}
		qt := types.Plainly(bindTy)
		ts := &typedast.TypedMapGet{Meta: typedast.NewMeta(loc, qt), Name: n.Name, Map: n.Map, Keys: n.Keys, Fetch: n.Fetch}
		next := StmtEnv{Pure: env.Pure.AddT(n.Name, qt), Fields: env.Fields}
		return ts, next, nil

	case *ast.ReadFromBC:
		ty, ok := deps.Blockchain.Lookup(n.Field)
		if !ok {
			return nil, env, diagnostics.NewUnknownBCField(n.Field, loc)
		}
		qt := types.Plainly(ty)
		ts := &typedast.TypedReadFromBC{Meta: typedast.NewMeta(loc, qt), Name: n.Name, Field: n.Field}
		next := StmtEnv{Pure: env.Pure.AddT(n.Name, qt), Fields: env.Fields}
		return ts, next, nil

	case *ast.MatchStmt:
		scrutQt, ok := env.Pure.ResolveT(n.Scrutinee)
		if !ok {
			return nil, env, diagnostics.NewUnbound(n.Scrutinee, loc)
		}
		typedArms := make([]typedast.TypedMatchArmStmt, len(n.Arms))
		for i, arm := range n.Arms {
			typedPat, bindings, diag := AssignTypesForPattern(deps.ADTs, scrutQt.Type, arm.Pattern)
			if diag != nil {
				return nil, env, diag
			}
			armEnv := StmtEnv{Pure: env.Pure.AddTs(bindingsToNamedTypes(bindings)), Fields: env.Fields}
			typedBody, _, diag := TypeStmts(armEnv, deps, arm.Body)
			if diag != nil {
				return nil, env, diag
			}
			typedArms[i] = typedast.TypedMatchArmStmt{Pattern: typedPat, Body: typedBody}
		}
		// Branch bindings and any field writes inside arm bodies never
		// escape to env: the statement after the match resumes from the
		// environment as it stood before the match.
		ts := &typedast.TypedMatchStmt{Meta: typedast.NewMeta(loc, unitQualified()), Scrutinee: n.Scrutinee, Arms: typedArms}
		return ts, env, nil

	case *ast.AcceptPayment:
		ts := &typedast.TypedAcceptPayment{Meta: typedast.NewMeta(loc, unitQualified())}
		return ts, env, nil

	case *ast.SendMsgs:
		valQt, ok := env.Pure.ResolveT(n.Value)
		if !ok {
			return nil, env, diagnostics.NewUnbound(n.Value, loc)
		}
		if !isMessageList(valQt.Type) {
			want := &types.ADT{Name: "List", Args: []types.Type{types.MessageT()}}
			return nil, env, diagnostics.NewTypeMismatch(want, valQt.Type, loc)
		}
		ts := &typedast.TypedSendMsgs{Meta: typedast.NewMeta(loc, unitQualified()), Value: n.Value}
		return ts, env, nil

	case *ast.CreateEvnt:
		valQt, ok := env.Pure.ResolveT(n.Value)
		if !ok {
			return nil, env, diagnostics.NewUnbound(n.Value, loc)
		}
		if !valQt.Type.Equals(types.EventT()) {
			return nil, env, diagnostics.NewTypeMismatch(types.EventT(), valQt.Type, loc)
		}
		ts := &typedast.TypedCreateEvnt{Meta: typedast.NewMeta(loc, unitQualified()), Value: n.Value}
		return ts, env, nil

	case *ast.Throw:
		return nil, env, diagnostics.NewNotImplemented("throw", loc)

	default:
		panic("check: unhandled statement form")
	}
}

// resolveMapChain walks a field's (possibly nested) MapType one key at
// a time, checking each key identifier's pure-bound type against the
// current layer's key type, and returns the type left once every key
// has been consumed.
func resolveMapChain(pure *types.TypeEnv, mapTy types.Type, keys []string, loc srcloc.Loc) (types.Type, *diagnostics.Diagnostic) {
	cur := mapTy
	for _, k := range keys {
		mt, ok := cur.(*types.MapType)
		if !ok {
			want := &types.MapType{Key: &types.Absent{Label: "<key>"}, Value: &types.Absent{Label: "<value>"}}
			return nil, diagnostics.NewTypeMismatch(want, cur, loc)
		}
		kQt, ok := pure.ResolveT(k)
		if !ok {
			return nil, diagnostics.NewUnbound(k, loc)
		}
		if diag := types.AssertTypeEquiv(mt.Key, kQt.Type, loc); diag != nil {
			return nil, diag
		}
		cur = mt.Value
	}
	return cur, nil
}

// mapDepth counts the nested MapType layers in ty, for reporting the
// expected key count of a MapUpdate delete.
func mapDepth(ty types.Type) int {
	depth := 0
	for {
		mt, ok := ty.(*types.MapType)
		if !ok {
			return depth
		}
		depth++
		ty = mt.Value
	}
}

func isMessageList(ty types.Type) bool {
	adt, ok := ty.(*types.ADT)
	return ok && adt.Name == "List" && len(adt.Args) == 1 && adt.Args[0].Equals(types.MessageT())
}
