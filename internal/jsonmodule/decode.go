// Package jsonmodule decodes a JSON rendering of a module, its extra
// ADT declarations, and a source-location-free AST into the
// internal/ast and internal/types trees the checker consumes. This is
// the CLI's input boundary only — internal/check never imports this
// package. The checker treats its parser as an external collaborator;
// jsonmodule plays that collaborator's role for the one concrete wire
// format the CLI accepts.
package jsonmodule

import (
	"encoding/json"
	"fmt"

	"github.com/cclang/typecheck/internal/ast"
	"github.com/cclang/typecheck/internal/registry"
	"github.com/cclang/typecheck/internal/types"
)

// Input is the top-level shape the CLI reads: a module plus any extra
// ADTs the module's libraries rely on beyond the bootstrapped standard
// set (Bool/Option/List/Nat/Pair already live in
// registry.NewDefaultADTRegistry()). Builtins, the blockchain field
// set, and policy are never carried over JSON — they encode Go-level
// operator semantics and host policy, not contract data, so the CLI
// always typechecks against registry's default instances of those
// three; only the ADT registry and the module itself are realistically
// data a caller would want to vary per invocation.
type Input struct {
	ExtraADTs []adtJSON  `json:"adt_registry"`
	Module    moduleJSON `json:"module"`
}

type adtJSON struct {
	Name       string     `json:"name"`
	TypeParams []string   `json:"type_params"`
	Ctors      []ctorJSON `json:"ctors"`
}

type ctorJSON struct {
	Name       string     `json:"name"`
	TypeParams []string   `json:"type_params"`
	ArgTypes   []typeJSON `json:"arg_types"`
}

// Decode parses raw JSON into a module and an ADT registry seeded with
// the standard bootstrap ADTs plus every extra ADT the input declares.
func Decode(raw []byte) (*ast.Module, registry.ADTRegistry, error) {
	var in Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, nil, fmt.Errorf("jsonmodule: %w", err)
	}

	adts := registry.NewDefaultADTRegistry()
	for _, a := range in.ExtraADTs {
		ctorNames := make([]string, len(a.Ctors))
		ctors := make(map[string]registry.CtorInfo, len(a.Ctors))
		for i, c := range a.Ctors {
			argTys, err := decodeTypes(c.ArgTypes)
			if err != nil {
				return nil, nil, err
			}
			ctorNames[i] = c.Name
			ctors[c.Name] = registry.CtorInfo{ADTName: a.Name, TypeParams: c.TypeParams, ArgTypes: argTys}
		}
		adts.Register(registry.ADTInfo{Name: a.Name, TypeParams: a.TypeParams, Ctors: ctorNames}, ctors)
	}

	mod, err := decodeModule(in.Module)
	if err != nil {
		return nil, nil, err
	}
	return mod, adts, nil
}

// ---- types.Type ----

type typeJSON struct {
	Kind   string     `json:"kind"`
	Name   string     `json:"name,omitempty"`
	Width  int        `json:"width,omitempty"`
	Key    *typeJSON  `json:"key,omitempty"`
	Value  *typeJSON  `json:"value,omitempty"`
	Arg    *typeJSON  `json:"arg,omitempty"`
	Result *typeJSON  `json:"result,omitempty"`
	Args   []typeJSON `json:"args,omitempty"`
	TVar   string     `json:"tvar,omitempty"`
	Body   *typeJSON  `json:"body,omitempty"`
}

func decodeType(t typeJSON) (types.Type, error) {
	switch t.Kind {
	case "bystr20":
		return types.ByStr20(), nil
	case "bystrn":
		return types.ByStrN(t.Width), nil
	case "uint":
		return types.Uint(t.Width), nil
	case "int":
		return types.Int(t.Width), nil
	case "bnum":
		return types.BNum(), nil
	case "string":
		return types.StringT(), nil
	case "message":
		return types.MessageT(), nil
	case "event":
		return types.EventT(), nil
	case "map":
		if t.Key == nil || t.Value == nil {
			return nil, fmt.Errorf("jsonmodule: map type requires key and value")
		}
		k, err := decodeType(*t.Key)
		if err != nil {
			return nil, err
		}
		v, err := decodeType(*t.Value)
		if err != nil {
			return nil, err
		}
		return &types.MapType{Key: k, Value: v}, nil
	case "fun":
		if t.Arg == nil || t.Result == nil {
			return nil, fmt.Errorf("jsonmodule: fun type requires arg and result")
		}
		a, err := decodeType(*t.Arg)
		if err != nil {
			return nil, err
		}
		r, err := decodeType(*t.Result)
		if err != nil {
			return nil, err
		}
		return &types.FunType{Arg: a, Result: r}, nil
	case "adt":
		args, err := decodeTypes(t.Args)
		if err != nil {
			return nil, err
		}
		return &types.ADT{Name: t.Name, Args: args}, nil
	case "forall":
		if t.Body == nil {
			return nil, fmt.Errorf("jsonmodule: forall type requires body")
		}
		b, err := decodeType(*t.Body)
		if err != nil {
			return nil, err
		}
		return &types.PolyFun{TVar: t.TVar, Body: b}, nil
	case "tvar":
		return &types.TypeVar{Name: t.Name}, nil
	default:
		return nil, fmt.Errorf("jsonmodule: unknown type kind %q", t.Kind)
	}
}

func decodeTypes(ts []typeJSON) ([]types.Type, error) {
	out := make([]types.Type, len(ts))
	for i, t := range ts {
		dt, err := decodeType(t)
		if err != nil {
			return nil, err
		}
		out[i] = dt
	}
	return out, nil
}

// ---- ast.Pattern ----

type patternJSON struct {
	Kind string        `json:"kind"`
	Name string        `json:"name,omitempty"`
	Args []patternJSON `json:"args,omitempty"`
}

func decodePattern(p patternJSON) (ast.Pattern, error) {
	switch p.Kind {
	case "wildcard":
		return &ast.WildcardPattern{}, nil
	case "binder":
		return &ast.BinderPattern{Name: p.Name}, nil
	case "constructor":
		args := make([]ast.Pattern, len(p.Args))
		for i, a := range p.Args {
			da, err := decodePattern(a)
			if err != nil {
				return nil, err
			}
			args[i] = da
		}
		return &ast.ConstructorPattern{Name: p.Name, Args: args}, nil
	default:
		return nil, fmt.Errorf("jsonmodule: unknown pattern kind %q", p.Kind)
	}
}

// ---- ast.Expr ----

type exprJSON struct {
	Kind string `json:"kind"`

	// Literal
	LitKind string `json:"lit_kind,omitempty"`
	Value   string `json:"value,omitempty"`
	Width   int    `json:"width,omitempty"`
	Signed  bool   `json:"signed,omitempty"`

	// Var
	Name string `json:"name,omitempty"`

	// Fun
	Param     string    `json:"param,omitempty"`
	ParamType *typeJSON `json:"param_type,omitempty"`
	Body      *exprJSON `json:"body,omitempty"`

	// App / Builtin
	Fn   *exprJSON  `json:"fn,omitempty"`
	Args []exprJSON `json:"args,omitempty"`
	Op   string     `json:"op,omitempty"`

	// Let
	AnnType *typeJSON `json:"ann_type,omitempty"`
	Value_  *exprJSON `json:"value_expr,omitempty"`

	// Constr / TApp
	TypeArgs []typeJSON `json:"type_args,omitempty"`

	// MatchExpr
	Scrutinee string         `json:"scrutinee,omitempty"`
	Arms      []matchArmJSON `json:"arms,omitempty"`

	// Fixpoint
	DeclType *typeJSON `json:"decl_type,omitempty"`

	// TFun
	TyVar string `json:"ty_var,omitempty"`

	// Message
	Fields []messageFieldJSON `json:"fields,omitempty"`
}

type matchArmJSON struct {
	Pattern patternJSON `json:"pattern"`
	Body    exprJSON    `json:"body"`
}

type messageFieldJSON struct {
	Name    string    `json:"name"`
	Kind    string    `json:"kind"` // "tag" | "lit" | "var"
	Tag     string    `json:"tag,omitempty"`
	Lit     *exprJSON `json:"lit,omitempty"`
	VarName string    `json:"var_name,omitempty"`
}

func decodeExpr(e exprJSON) (ast.Expr, error) {
	switch e.Kind {
	case "lit":
		kind, err := decodeLitKind(e.LitKind)
		if err != nil {
			return nil, err
		}
		return &ast.Literal{Kind: kind, Value: e.Value, Width: e.Width, Signed: e.Signed}, nil

	case "var":
		return &ast.Var{Name: e.Name}, nil

	case "fun":
		if e.ParamType == nil || e.Body == nil {
			return nil, fmt.Errorf("jsonmodule: fun requires param_type and body")
		}
		pt, err := decodeType(*e.ParamType)
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(*e.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Fun{Param: e.Param, ParamType: pt, Body: body}, nil

	case "app":
		if e.Fn == nil {
			return nil, fmt.Errorf("jsonmodule: app requires fn")
		}
		fn, err := decodeExpr(*e.Fn)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(e.Args)
		if err != nil {
			return nil, err
		}
		return &ast.App{Fn: fn, Args: args}, nil

	case "builtin":
		args, err := decodeExprs(e.Args)
		if err != nil {
			return nil, err
		}
		return &ast.Builtin{Op: e.Op, Args: args}, nil

	case "let":
		if e.Value_ == nil || e.Body == nil {
			return nil, fmt.Errorf("jsonmodule: let requires value_expr and body")
		}
		var annTy types.Type
		if e.AnnType != nil {
			var err error
			annTy, err = decodeType(*e.AnnType)
			if err != nil {
				return nil, err
			}
		}
		val, err := decodeExpr(*e.Value_)
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(*e.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Let{Name: e.Name, AnnType: annTy, Value: val, Body: body}, nil

	case "constr":
		typeArgs, err := decodeTypes(e.TypeArgs)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(e.Args)
		if err != nil {
			return nil, err
		}
		return &ast.Constr{Name: e.Name, TypeArgs: typeArgs, Args: args}, nil

	case "match":
		arms := make([]ast.MatchArm, len(e.Arms))
		for i, a := range e.Arms {
			pat, err := decodePattern(a.Pattern)
			if err != nil {
				return nil, err
			}
			body, err := decodeExpr(a.Body)
			if err != nil {
				return nil, err
			}
			arms[i] = ast.MatchArm{Pattern: pat, Body: body}
		}
		return &ast.MatchExpr{Scrutinee: e.Scrutinee, Arms: arms}, nil

	case "fixpoint":
		if e.DeclType == nil || e.Body == nil {
			return nil, fmt.Errorf("jsonmodule: fixpoint requires decl_type and body")
		}
		dt, err := decodeType(*e.DeclType)
		if err != nil {
			return nil, err
		}
		body, err := decodeExpr(*e.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Fixpoint{Name: e.Name, DeclType: dt, Body: body}, nil

	case "tfun":
		if e.Body == nil {
			return nil, fmt.Errorf("jsonmodule: tfun requires body")
		}
		body, err := decodeExpr(*e.Body)
		if err != nil {
			return nil, err
		}
		return &ast.TFun{TyVar: e.TyVar, Body: body}, nil

	case "tapp":
		if e.Fn == nil {
			return nil, fmt.Errorf("jsonmodule: tapp requires fn")
		}
		fn, err := decodeExpr(*e.Fn)
		if err != nil {
			return nil, err
		}
		typeArgs, err := decodeTypes(e.TypeArgs)
		if err != nil {
			return nil, err
		}
		return &ast.TApp{Fn: fn, TypeArgs: typeArgs}, nil

	case "message":
		fields := make([]ast.MessageField, len(e.Fields))
		for i, f := range e.Fields {
			mf, err := decodeMessageField(f)
			if err != nil {
				return nil, err
			}
			fields[i] = mf
		}
		return &ast.Message{Fields: fields}, nil

	default:
		return nil, fmt.Errorf("jsonmodule: unknown expr kind %q", e.Kind)
	}
}

func decodeMessageField(f messageFieldJSON) (ast.MessageField, error) {
	switch f.Kind {
	case "tag":
		return ast.MessageField{Name: f.Name, Kind: ast.PayloadTag, Tag: f.Tag}, nil
	case "var":
		return ast.MessageField{Name: f.Name, Kind: ast.PayloadVar, VarName: f.VarName}, nil
	case "lit":
		if f.Lit == nil {
			return ast.MessageField{}, fmt.Errorf("jsonmodule: message field %q of kind lit requires lit", f.Name)
		}
		litExpr, err := decodeExpr(*f.Lit)
		if err != nil {
			return ast.MessageField{}, err
		}
		lit, ok := litExpr.(*ast.Literal)
		if !ok {
			return ast.MessageField{}, fmt.Errorf("jsonmodule: message field %q lit must decode to a literal", f.Name)
		}
		return ast.MessageField{Name: f.Name, Kind: ast.PayloadLit, Lit: lit}, nil
	default:
		return ast.MessageField{}, fmt.Errorf("jsonmodule: unknown message field kind %q", f.Kind)
	}
}

func decodeExprs(es []exprJSON) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(es))
	for i, e := range es {
		de, err := decodeExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = de
	}
	return out, nil
}

func decodeLitKind(s string) (ast.LitKind, error) {
	switch s {
	case "int":
		return ast.LitInt, nil
	case "bystr":
		return ast.LitByStr, nil
	case "bnum":
		return ast.LitBNum, nil
	case "string":
		return ast.LitString, nil
	default:
		return 0, fmt.Errorf("jsonmodule: unknown literal kind %q", s)
	}
}

// ---- ast.Stmt ----

type stmtJSON struct {
	Kind string `json:"kind"`

	Name  string `json:"name,omitempty"`
	Field string `json:"field,omitempty"`

	// Store
	Value *string `json:"value,omitempty"`

	// Bind
	Expr *exprJSON `json:"expr,omitempty"`

	// MapUpdate / MapGet
	Map   string   `json:"map,omitempty"`
	Keys  []string `json:"keys,omitempty"`
	Fetch bool     `json:"fetch,omitempty"`

	// MatchStmt
	Scrutinee string             `json:"scrutinee,omitempty"`
	Arms      []matchArmStmtJSON `json:"arms,omitempty"`
}

type matchArmStmtJSON struct {
	Pattern patternJSON `json:"pattern"`
	Body    []stmtJSON  `json:"body"`
}

func decodeStmt(s stmtJSON) (ast.Stmt, error) {
	switch s.Kind {
	case "load":
		return &ast.Load{Name: s.Name, Field: s.Field}, nil
	case "store":
		if s.Value == nil {
			return nil, fmt.Errorf("jsonmodule: store requires value")
		}
		return &ast.Store{Field: s.Field, Value: *s.Value}, nil
	case "bind":
		if s.Expr == nil {
			return nil, fmt.Errorf("jsonmodule: bind requires expr")
		}
		e, err := decodeExpr(*s.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.Bind{Name: s.Name, Expr: e}, nil
	case "map_update":
		return &ast.MapUpdate{Map: s.Map, Keys: s.Keys, Value: s.Value}, nil
	case "map_get":
		return &ast.MapGet{Name: s.Name, Map: s.Map, Keys: s.Keys, Fetch: s.Fetch}, nil
	case "read_from_bc":
		return &ast.ReadFromBC{Name: s.Name, Field: s.Field}, nil
	case "match":
		arms := make([]ast.MatchArmStmt, len(s.Arms))
		for i, a := range s.Arms {
			pat, err := decodePattern(a.Pattern)
			if err != nil {
				return nil, err
			}
			body, err := decodeStmts(a.Body)
			if err != nil {
				return nil, err
			}
			arms[i] = ast.MatchArmStmt{Pattern: pat, Body: body}
		}
		return &ast.MatchStmt{Scrutinee: s.Scrutinee, Arms: arms}, nil
	case "accept_payment":
		return &ast.AcceptPayment{}, nil
	case "send_msgs":
		if s.Value == nil {
			return nil, fmt.Errorf("jsonmodule: send_msgs requires value")
		}
		return &ast.SendMsgs{Value: *s.Value}, nil
	case "create_evnt":
		if s.Value == nil {
			return nil, fmt.Errorf("jsonmodule: create_evnt requires value")
		}
		return &ast.CreateEvnt{Value: *s.Value}, nil
	case "throw":
		return &ast.Throw{}, nil
	default:
		return nil, fmt.Errorf("jsonmodule: unknown stmt kind %q", s.Kind)
	}
}

func decodeStmts(ss []stmtJSON) ([]ast.Stmt, error) {
	out := make([]ast.Stmt, len(ss))
	for i, s := range ss {
		ds, err := decodeStmt(s)
		if err != nil {
			return nil, err
		}
		out[i] = ds
	}
	return out, nil
}

// ---- module structure ----

type paramJSON struct {
	Name string   `json:"name"`
	Type typeJSON `json:"type"`
}

type libEntryJSON struct {
	Kind  string     `json:"kind"` // "var" | "typ"
	Name  string     `json:"name"`
	Expr  *exprJSON  `json:"expr,omitempty"`
	Ctors []ctorJSON `json:"ctors,omitempty"`
}

type libraryJSON struct {
	Name    string         `json:"name"`
	Entries []libEntryJSON `json:"entries"`
}

type fieldDeclJSON struct {
	Name string   `json:"name"`
	Type typeJSON `json:"type"`
	Init exprJSON `json:"init"`
}

type transitionJSON struct {
	Name   string      `json:"name"`
	Params []paramJSON `json:"params"`
	Body   []stmtJSON  `json:"body"`
}

type moduleJSON struct {
	RecPrims     []libEntryJSON   `json:"rec_prims"`
	ExternalLibs []libraryJSON    `json:"external_libs"`
	ContractLib  *libraryJSON     `json:"contract_lib,omitempty"`
	Params       []paramJSON      `json:"params"`
	Fields       []fieldDeclJSON  `json:"fields"`
	Transitions  []transitionJSON `json:"transitions"`
}

func decodeLibEntry(e libEntryJSON) (ast.LibEntry, error) {
	switch e.Kind {
	case "var":
		if e.Expr == nil {
			return nil, fmt.Errorf("jsonmodule: library var %q requires expr", e.Name)
		}
		expr, err := decodeExpr(*e.Expr)
		if err != nil {
			return nil, err
		}
		return &ast.LibVar{Name: e.Name, Expr: expr}, nil
	case "typ":
		ctors := make([]ast.CtorDecl, len(e.Ctors))
		for i, c := range e.Ctors {
			argTys, err := decodeTypes(c.ArgTypes)
			if err != nil {
				return nil, err
			}
			ctors[i] = ast.CtorDecl{Name: c.Name, ArgTypes: argTys}
		}
		return &ast.LibTyp{Name: e.Name, Ctors: ctors}, nil
	default:
		return nil, fmt.Errorf("jsonmodule: unknown library entry kind %q", e.Kind)
	}
}

func decodeLibEntries(es []libEntryJSON) ([]ast.LibEntry, error) {
	out := make([]ast.LibEntry, len(es))
	for i, e := range es {
		de, err := decodeLibEntry(e)
		if err != nil {
			return nil, err
		}
		out[i] = de
	}
	return out, nil
}

func decodeLibrary(l libraryJSON) (*ast.Library, error) {
	entries, err := decodeLibEntries(l.Entries)
	if err != nil {
		return nil, err
	}
	return &ast.Library{Name: l.Name, Entries: entries}, nil
}

func decodeParams(ps []paramJSON) ([]ast.Param, error) {
	out := make([]ast.Param, len(ps))
	for i, p := range ps {
		ty, err := decodeType(p.Type)
		if err != nil {
			return nil, err
		}
		out[i] = ast.Param{Name: p.Name, Type: ty}
	}
	return out, nil
}

func decodeModule(m moduleJSON) (*ast.Module, error) {
	recPrims, err := decodeLibEntries(m.RecPrims)
	if err != nil {
		return nil, err
	}

	externalLibs := make([]*ast.Library, len(m.ExternalLibs))
	for i, l := range m.ExternalLibs {
		dl, err := decodeLibrary(l)
		if err != nil {
			return nil, err
		}
		externalLibs[i] = dl
	}

	var contractLib *ast.Library
	if m.ContractLib != nil {
		contractLib, err = decodeLibrary(*m.ContractLib)
		if err != nil {
			return nil, err
		}
	}

	params, err := decodeParams(m.Params)
	if err != nil {
		return nil, err
	}

	fields := make([]ast.FieldDecl, len(m.Fields))
	for i, f := range m.Fields {
		ty, err := decodeType(f.Type)
		if err != nil {
			return nil, err
		}
		init, err := decodeExpr(f.Init)
		if err != nil {
			return nil, err
		}
		fields[i] = ast.FieldDecl{Name: f.Name, Type: ty, Init: init}
	}

	transitions := make([]ast.Transition, len(m.Transitions))
	for i, tr := range m.Transitions {
		trParams, err := decodeParams(tr.Params)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(tr.Body)
		if err != nil {
			return nil, err
		}
		transitions[i] = ast.Transition{Name: tr.Name, Params: trParams, Body: body}
	}

	return &ast.Module{
		RecPrims:     recPrims,
		ExternalLibs: externalLibs,
		ContractLib:  contractLib,
		Params:       params,
		Fields:       fields,
		Transitions:  transitions,
	}, nil
}
