package check

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cclang/typecheck/internal/ast"
	"github.com/cclang/typecheck/internal/diagnostics"
	"github.com/cclang/typecheck/internal/registry"
	"github.com/cclang/typecheck/internal/srcloc"
	"github.com/cclang/typecheck/internal/typedast"
	"github.com/cclang/typecheck/internal/types"
)

// Deps bundles the checker's injected collaborators: the ADT
// registry, the builtin dictionary, the blockchain field registry,
// the message/event header policy, and the implicit-parameter
// provider. The expression, statement and module typers take a *Deps
// instead of each collaborator individually so adding a new injected
// dependency never changes every call site; AssignTypesForPattern
// takes only the ADT registry.
//
// Logger is a structured, leveled sink for the module driver's phase
// transitions. Nil is treated as zap.NewNop() so Deps built by hand
// (e.g. in tests) never need to wire one up.
type Deps struct {
	ADTs       registry.ADTRegistry
	Builtins   registry.BuiltinDictionary
	Blockchain registry.BlockchainRegistry
	Policy     registry.Policy
	Implicit   registry.ImplicitParams
	Logger     *zap.Logger
}

// logger returns d.Logger, or a no-op logger if none was set.
func (d *Deps) logger() *zap.Logger {
	if d == nil || d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// LiteralType maps a syntactic literal to its primitive type.
func LiteralType(lit *ast.Literal) types.Type {
	switch lit.Kind {
	case ast.LitInt:
		if lit.Signed {
			return types.Int(lit.Width)
		}
		return types.Uint(lit.Width)
	case ast.LitByStr:
		if lit.Width == 20 {
			return types.ByStr20()
		}
		return types.ByStrN(lit.Width)
	case ast.LitBNum:
		return types.BNum()
	case ast.LitString:
		return types.StringT()
	default:
		panic("check: unhandled literal kind")
	}
}

// TypeExpr types e under env and returns its decorated form plus
// inferred qualified type. The first failure inside e short-circuits
// and is wrapped with the "typechecking" context and e's own
// location.
func TypeExpr(env *types.TypeEnv, deps *Deps, e ast.Expr) (typedast.TypedExpr, types.Qualified, *diagnostics.Diagnostic) {
	te, qt, diag := typeExpr(env, deps, e)
	if diag != nil {
		return nil, types.Qualified{}, diag.WithContext("typechecking", e.Position())
	}
	return te, qt, nil
}

func typeExpr(env *types.TypeEnv, deps *Deps, e ast.Expr) (typedast.TypedExpr, types.Qualified, *diagnostics.Diagnostic) {
	loc := e.Position()
	switch n := e.(type) {

	case *ast.Literal:
		ty := LiteralType(n)
		return typedast.NewTypedLiteral(loc, types.Plainly(ty), n.Value), types.Plainly(ty), nil

	case *ast.Var:
		qt, ok := env.ResolveT(n.Name)
		if !ok {
			return nil, types.Qualified{}, diagnostics.NewUnbound(n.Name, loc)
		}
		return typedast.NewTypedVar(loc, qt, n.Name), qt, nil

	case *ast.Fun:
		if diag := types.IsWfType(env, deps.ADTs, n.ParamType, loc); diag != nil {
			return nil, types.Qualified{}, diag
		}
		bodyEnv := env.AddT(n.Param, types.Plainly(n.ParamType))
		typedBody, bodyQt, diag := TypeExpr(bodyEnv, deps, n.Body)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		fty := &types.FunType{Arg: n.ParamType, Result: bodyQt.Type}
		fqt := types.Plainly(fty)
		tf := &typedast.TypedFun{Meta: typedast.NewMeta(loc, fqt), Param: n.Param, ParamType: n.ParamType, Body: typedBody}
		return tf, fqt, nil

	case *ast.App:
		typedFn, fnQt, diag := TypeExpr(env, deps, n.Fn)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		typedArgs, argTys, diag := typeExprList(env, deps, n.Args)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		resultTy, diag := types.FunTypeApplies(fnQt.Type, argTys, "function application", loc)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		aqt := types.Plainly(resultTy)
		ta := &typedast.TypedApp{Meta: typedast.NewMeta(loc, aqt), Fn: typedFn, Args: typedArgs}
		return ta, aqt, nil

	case *ast.Builtin:
		typedArgs, argTys, diag := typeExprList(env, deps, n.Args)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		_, resultTy, ok := deps.Builtins.FindBuiltinOp(n.Op, argTys)
		if !ok {
			return nil, types.Qualified{}, diagnostics.NewUnknownBuiltin(n.Op, toFmtStringers(argTys), loc)
		}
		bqt := types.Plainly(resultTy)
		tb := &typedast.TypedBuiltin{Meta: typedast.NewMeta(loc, bqt), Op: n.Op, Args: typedArgs}
		return tb, bqt, nil

	case *ast.Let:
		typedLhs, lhsQt, diag := TypeExpr(env, deps, n.Value)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		if n.AnnType != nil {
			if diag := types.AssertTypeEquiv(n.AnnType, lhsQt.Type, loc); diag != nil {
				return nil, types.Qualified{}, diag
			}
		}
		bodyEnv := env.AddT(n.Name, lhsQt)
		typedRhs, rhsQt, diag := TypeExpr(bodyEnv, deps, n.Body)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		tl := &typedast.TypedLet{Meta: typedast.NewMeta(loc, rhsQt), Name: n.Name, Value: typedLhs, Body: typedRhs}
		return tl, rhsQt, nil

	case *ast.Constr:
		for _, ta := range n.TypeArgs {
			if diag := types.IsWfType(env, deps.ADTs, ta, loc); diag != nil {
				return nil, types.Qualified{}, diag
			}
		}
		fty, diag := types.ElabConstrType(deps.ADTs, n.Name, n.TypeArgs, loc)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		typedArgs, argTys, diag := typeExprList(env, deps, n.Args)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		resultTy, diag := types.FunTypeApplies(fty, argTys, "constructor "+n.Name, loc)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		cqt := types.Plainly(resultTy)
		tc := &typedast.TypedConstr{Meta: typedast.NewMeta(loc, cqt), Name: n.Name, TypeArgs: n.TypeArgs, Args: typedArgs}
		return tc, cqt, nil

	case *ast.MatchExpr:
		return typeMatchExpr(env, deps, n, loc)

	case *ast.Fixpoint:
		bodyEnv := env.AddT(n.Name, types.Plainly(n.DeclType))
		typedBody, bodyQt, diag := TypeExpr(bodyEnv, deps, n.Body)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		if diag := types.AssertTypeEquiv(n.DeclType, bodyQt.Type, loc); diag != nil {
			return nil, types.Qualified{}, diag
		}
		fxqt := types.Plainly(n.DeclType)
		tf := &typedast.TypedFixpoint{Meta: typedast.NewMeta(loc, fxqt), Name: n.Name, Body: typedBody}
		return tf, fxqt, nil

	case *ast.TFun:
		bodyEnv := env.AddV(n.TyVar)
		typedBody, bodyQt, diag := TypeExpr(bodyEnv, deps, n.Body)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		pf := &types.PolyFun{TVar: n.TyVar, Body: bodyQt.Type}
		pqt := types.Plainly(pf)
		tt := &typedast.TypedTFun{Meta: typedast.NewMeta(loc, pqt), TyVar: n.TyVar, Body: typedBody}
		return tt, pqt, nil

	case *ast.TApp:
		typedFn, fnQt, diag := TypeExpr(env, deps, n.Fn)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		for _, ta := range n.TypeArgs {
			if diag := types.IsWfType(env, deps.ADTs, ta, loc); diag != nil {
				return nil, types.Qualified{}, diag
			}
		}
		resultTy, diag := types.ElabTFunWithArgs(fnQt.Type, n.TypeArgs, loc)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		taqt := types.Plainly(resultTy)
		ta := &typedast.TypedTApp{Meta: typedast.NewMeta(loc, taqt), Fn: typedFn, TypeArgs: n.TypeArgs}
		return ta, taqt, nil

	case *ast.Message:
		return typeMessage(env, deps, n, loc)

	default:
		panic("check: unhandled expression form")
	}
}

func typeExprList(env *types.TypeEnv, deps *Deps, exprs []ast.Expr) ([]typedast.TypedExpr, []types.Type, *diagnostics.Diagnostic) {
	typed := make([]typedast.TypedExpr, len(exprs))
	tys := make([]types.Type, len(exprs))
	for i, e := range exprs {
		te, qt, diag := TypeExpr(env, deps, e)
		if diag != nil {
			return nil, nil, diag
		}
		typed[i] = te
		tys[i] = qt.Type
	}
	return typed, tys, nil
}

// toFmtStringers adapts a []types.Type to the []fmt.Stringer the
// diagnostics constructors expect; types.Type already has String().
func toFmtStringers(tys []types.Type) []fmt.Stringer {
	out := make([]fmt.Stringer, len(tys))
	for i, t := range tys {
		out[i] = t
	}
	return out
}

func typeMatchExpr(env *types.TypeEnv, deps *Deps, n *ast.MatchExpr, loc srcloc.Loc) (typedast.TypedExpr, types.Qualified, *diagnostics.Diagnostic) {
	if len(n.Arms) == 0 {
		return nil, types.Qualified{}, diagnostics.NewEmptyMatch(loc)
	}
	scrutQt, ok := env.ResolveT(n.Scrutinee)
	if !ok {
		return nil, types.Qualified{}, diagnostics.NewUnbound(n.Scrutinee, loc)
	}
	typedArms := make([]typedast.TypedMatchArm, len(n.Arms))
	var commonQt types.Qualified
	for i, arm := range n.Arms {
		typedPat, bindings, diag := AssignTypesForPattern(deps.ADTs, scrutQt.Type, arm.Pattern)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		armEnv := env.AddTs(bindingsToNamedTypes(bindings))
		typedBody, bodyQt, diag := TypeExpr(armEnv, deps, arm.Body)
		if diag != nil {
			return nil, types.Qualified{}, diag
		}
		if i == 0 {
			commonQt = bodyQt
		} else if diag := types.AssertTypeEquiv(commonQt.Type, bodyQt.Type, loc); diag != nil {
			return nil, types.Qualified{}, diag
		}
		typedArms[i] = typedast.TypedMatchArm{Pattern: typedPat, Body: typedBody}
	}
	tm := &typedast.TypedMatchExpr{Meta: typedast.NewMeta(loc, commonQt), Scrutinee: n.Scrutinee, Arms: typedArms}
	return tm, commonQt, nil
}

// typeMessage types a Message/Event literal. It first
// decides which of the two the field set describes and validates that
// the mandatory header fields are present, then walks each field,
// enforcing the header's exact type on mandatory fields and
// serializability on everything else.
func typeMessage(env *types.TypeEnv, deps *Deps, n *ast.Message, loc srcloc.Loc) (typedast.TypedExpr, types.Qualified, *diagnostics.Diagnostic) {
	names := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		names[i] = f.Name
	}
	kind, diag := types.GetMsgEvntType(names, deps.Policy.MandatoryMessageFields(), loc)
	if diag != nil {
		return nil, types.Qualified{}, diag
	}

	var header map[string]types.Type
	var tKind typedast.TypedMessageKind
	if kind == types.KindEvent {
		header = deps.Policy.MandatoryEventFields()
		tKind = typedast.TypedKindEvent
	} else {
		header = deps.Policy.MandatoryMessageFields()
		tKind = typedast.TypedKindMessage
	}

	typedFields := make([]typedast.TypedMessageField, len(n.Fields))
	for i, f := range n.Fields {
		var payload typedast.TypedExpr
		var payloadTy types.Type
		switch f.Kind {
		case ast.PayloadTag:
			payloadTy = types.StringT()
			payload = typedast.NewTypedLiteral(loc, types.Plainly(payloadTy), f.Tag)
		case ast.PayloadLit:
			payloadTy = LiteralType(f.Lit)
			payload = typedast.NewTypedLiteral(f.Lit.Position(), types.Plainly(payloadTy), f.Lit.Value)
		case ast.PayloadVar:
			qt, ok := env.ResolveT(f.VarName)
			if !ok {
				return nil, types.Qualified{}, diagnostics.NewUnbound(f.VarName, loc)
			}
			payloadTy = qt.Type
			payload = typedast.NewTypedVar(loc, qt, f.VarName)
		default:
			panic("check: unhandled message payload kind")
		}

		if want, mandatory := header[f.Name]; mandatory {
			if !want.Equals(payloadTy) {
				return nil, types.Qualified{}, diagnostics.NewBadMessageField(f.Name, want, payloadTy, loc)
			}
		} else if !types.IsSerializableType(payloadTy, deps.Policy) {
			return nil, types.Qualified{}, diagnostics.NewNonSerializable(payloadTy, loc)
		}

		typedFields[i] = typedast.TypedMessageField{Name: f.Name, Value: payload}
	}

	resultTy := types.Type(types.MessageT())
	if kind == types.KindEvent {
		resultTy = types.EventT()
	}
	mqt := types.Plainly(resultTy)
	tm := &typedast.TypedMessage{Meta: typedast.NewMeta(loc, mqt), Kind: tKind, Fields: typedFields}
	return tm, mqt, nil
}
