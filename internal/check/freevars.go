package check

import "github.com/cclang/typecheck/internal/ast"

// FreeVars collects every identifier e references that is not bound
// somewhere inside e itself. The library phase uses this to decide
// whether a later library entry depends on one that already failed,
// so it can be skipped without a duplicate diagnostic instead of
// re-typechecking against a now-missing binding.
func FreeVars(e ast.Expr) map[string]bool {
	out := map[string]bool{}
	freeVarsExpr(e, map[string]bool{}, out)
	return out
}

func freeVarsExpr(e ast.Expr, bound, out map[string]bool) {
	switch n := e.(type) {
	case *ast.Literal:
		// no identifiers

	case *ast.Var:
		if !bound[n.Name] {
			out[n.Name] = true
		}

	case *ast.Fun:
		inner := extend(bound, n.Param)
		freeVarsExpr(n.Body, inner, out)

	case *ast.App:
		freeVarsExpr(n.Fn, bound, out)
		for _, a := range n.Args {
			freeVarsExpr(a, bound, out)
		}

	case *ast.Builtin:
		for _, a := range n.Args {
			freeVarsExpr(a, bound, out)
		}

	case *ast.Let:
		freeVarsExpr(n.Value, bound, out)
		inner := extend(bound, n.Name)
		freeVarsExpr(n.Body, inner, out)

	case *ast.Constr:
		for _, a := range n.Args {
			freeVarsExpr(a, bound, out)
		}

	case *ast.MatchExpr:
		if !bound[n.Scrutinee] {
			out[n.Scrutinee] = true
		}
		for _, arm := range n.Arms {
			inner := cloneSet(bound)
			addPatternBinders(arm.Pattern, inner)
			freeVarsExpr(arm.Body, inner, out)
		}

	case *ast.Fixpoint:
		inner := extend(bound, n.Name)
		freeVarsExpr(n.Body, inner, out)

	case *ast.TFun:
		freeVarsExpr(n.Body, bound, out)

	case *ast.TApp:
		freeVarsExpr(n.Fn, bound, out)

	case *ast.Message:
		for _, f := range n.Fields {
			if f.Kind == ast.PayloadVar && !bound[f.VarName] {
				out[f.VarName] = true
			}
		}

	default:
		panic("check: unhandled expression form in FreeVars")
	}
}

func addPatternBinders(p ast.Pattern, bound map[string]bool) {
	switch pp := p.(type) {
	case *ast.WildcardPattern:
	case *ast.BinderPattern:
		bound[pp.Name] = true
	case *ast.ConstructorPattern:
		for _, a := range pp.Args {
			addPatternBinders(a, bound)
		}
	default:
		panic("check: unhandled pattern form in FreeVars")
	}
}

func cloneSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m)+1)
	for k := range m {
		out[k] = true
	}
	return out
}

func extend(m map[string]bool, name string) map[string]bool {
	out := cloneSet(m)
	out[name] = true
	return out
}
