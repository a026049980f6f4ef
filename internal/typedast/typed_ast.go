// Package typedast defines the decorated tree the checker produces:
// one node per ast node, each carrying its resolved qualified type,
// its source location, and a fresh NodeID.
//
// NodeIDs come from github.com/google/uuid rather than a package
// counter so checking transitions on independent goroutines never
// races on shared state.
package typedast

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cclang/typecheck/internal/srcloc"
	"github.com/cclang/typecheck/internal/types"
)

// NodeID identifies one decorated node, minted once per node at
// decoration time and never reused or recomputed.
type NodeID = uuid.UUID

// NewNodeID mints a fresh NodeID.
func NewNodeID() NodeID { return uuid.New() }

// Meta carries the three fields every decorated node has in common.
// It is exported so callers outside this package can build decorated
// nodes directly via composite literals using NewMeta.
type Meta struct {
	ID  NodeID
	Loc srcloc.Loc
	Typ types.Qualified
}

func (b Meta) GetNodeID() NodeID        { return b.ID }
func (b Meta) GetLoc() srcloc.Loc       { return b.Loc }
func (b Meta) GetType() types.Qualified { return b.Typ }

// TypedNode is the interface every decorated expression, pattern, and
// statement satisfies.
type TypedNode interface {
	GetNodeID() NodeID
	GetLoc() srcloc.Loc
	GetType() types.Qualified
	String() string
}

// NewMeta mints a Meta with a fresh NodeID.
func NewMeta(loc srcloc.Loc, ty types.Qualified) Meta {
	return Meta{ID: NewNodeID(), Loc: loc, Typ: ty}
}

// ---- Typed expressions ----

// TypedExpr is the interface for decorated pure expressions.
type TypedExpr interface {
	TypedNode
	typedExprNode()
}

type TypedLiteral struct {
	Meta
	Value string
}

func NewTypedLiteral(loc srcloc.Loc, ty types.Qualified, value string) *TypedLiteral {
	return &TypedLiteral{Meta: NewMeta(loc, ty), Value: value}
}
func (*TypedLiteral) typedExprNode() {}
func (t *TypedLiteral) String() string {
	return fmt.Sprintf("%s : %s", t.Value, t.Typ.String())
}

type TypedVar struct {
	Meta
	Name string
}

func NewTypedVar(loc srcloc.Loc, ty types.Qualified, name string) *TypedVar {
	return &TypedVar{Meta: NewMeta(loc, ty), Name: name}
}
func (*TypedVar) typedExprNode() {}
func (t *TypedVar) String() string {
	return fmt.Sprintf("%s : %s", t.Name, t.Typ.String())
}

type TypedFun struct {
	Meta
	Param     string
	ParamType types.Type
	Body      TypedExpr
}

func (*TypedFun) typedExprNode() {}
func (t *TypedFun) String() string {
	return fmt.Sprintf("fun (%s : %s) => %s : %s", t.Param, t.ParamType, t.Body, t.Typ.String())
}

type TypedApp struct {
	Meta
	Fn   TypedExpr
	Args []TypedExpr
}

func (*TypedApp) typedExprNode() {}
func (t *TypedApp) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s) : %s", t.Fn, strings.Join(parts, ", "), t.Typ.String())
}

type TypedBuiltin struct {
	Meta
	Op   string
	Args []TypedExpr
}

func (*TypedBuiltin) typedExprNode() {}
func (t *TypedBuiltin) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s) : %s", t.Op, strings.Join(parts, ", "), t.Typ.String())
}

type TypedLet struct {
	Meta
	Name  string
	Value TypedExpr
	Body  TypedExpr
}

func (*TypedLet) typedExprNode() {}
func (t *TypedLet) String() string {
	return fmt.Sprintf("let %s = %s in %s : %s", t.Name, t.Value, t.Body, t.Typ.String())
}

type TypedConstr struct {
	Meta
	Name     string
	TypeArgs []types.Type
	Args     []TypedExpr
}

func (*TypedConstr) typedExprNode() {}
func (t *TypedConstr) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s) : %s", t.Name, strings.Join(parts, ", "), t.Typ.String())
}

type TypedMatchArm struct {
	Pattern TypedPattern
	Body    TypedExpr
}

type TypedMatchExpr struct {
	Meta
	Scrutinee string
	Arms      []TypedMatchArm
}

func (*TypedMatchExpr) typedExprNode() {}
func (t *TypedMatchExpr) String() string {
	return fmt.Sprintf("match %s with ... : %s", t.Scrutinee, t.Typ.String())
}

type TypedFixpoint struct {
	Meta
	Name string
	Body TypedExpr
}

func (*TypedFixpoint) typedExprNode() {}
func (t *TypedFixpoint) String() string {
	return fmt.Sprintf("fixpoint %s = %s : %s", t.Name, t.Body, t.Typ.String())
}

type TypedTFun struct {
	Meta
	TyVar string
	Body  TypedExpr
}

func (*TypedTFun) typedExprNode() {}
func (t *TypedTFun) String() string {
	return fmt.Sprintf("tfun %s => %s : %s", t.TyVar, t.Body, t.Typ.String())
}

type TypedTApp struct {
	Meta
	Fn       TypedExpr
	TypeArgs []types.Type
}

func (*TypedTApp) typedExprNode() {}
func (t *TypedTApp) String() string {
	return fmt.Sprintf("%s@<...> : %s", t.Fn, t.Typ.String())
}

// TypedMessageKind distinguishes the Message/Event outcome of
// deciding a TypedMessage's field set (mirrors types.MsgEvntKind so
// typedast never needs a checker-internal import).
type TypedMessageKind int

const (
	TypedKindMessage TypedMessageKind = iota
	TypedKindEvent
)

type TypedMessageField struct {
	Name  string
	Value TypedExpr
}

type TypedMessage struct {
	Meta
	Kind   TypedMessageKind
	Fields []TypedMessageField
}

func (*TypedMessage) typedExprNode() {}
func (t *TypedMessage) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Value)
	}
	return fmt.Sprintf("{%s} : %s", strings.Join(parts, "; "), t.Typ.String())
}

// ---- Typed patterns ----

type TypedPattern interface {
	TypedNode
	typedPatternNode()
}

type TypedWildcardPattern struct{ Meta }

func (*TypedWildcardPattern) typedPatternNode() {}
func (t *TypedWildcardPattern) String() string  { return "_ : " + t.Typ.String() }

type TypedBinderPattern struct {
	Meta
	Name string
}

func (*TypedBinderPattern) typedPatternNode() {}
func (t *TypedBinderPattern) String() string {
	return fmt.Sprintf("%s : %s", t.Name, t.Typ.String())
}

type TypedConstructorPattern struct {
	Meta
	Name string
	Args []TypedPattern
}

func (*TypedConstructorPattern) typedPatternNode() {}
func (t *TypedConstructorPattern) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s) : %s", t.Name, strings.Join(parts, ", "), t.Typ.String())
}

// ---- Typed statements ----

type TypedStmt interface {
	TypedNode
	typedStmtNode()
}

type TypedLoad struct {
	Meta
	Name  string
	Field string
}

func (*TypedLoad) typedStmtNode() {}
func (t *TypedLoad) String() string {
	return fmt.Sprintf("%s <- &%s : %s", t.Name, t.Field, t.Typ.String())
}

type TypedStore struct {
	Meta
	Field string
	Value string
}

func (*TypedStore) typedStmtNode() {}
func (t *TypedStore) String() string {
	return fmt.Sprintf("&%s := %s", t.Field, t.Value)
}

type TypedBind struct {
	Meta
	Name string
	Expr TypedExpr
}

func (*TypedBind) typedStmtNode() {}
func (t *TypedBind) String() string {
	return fmt.Sprintf("%s = %s", t.Name, t.Expr)
}

type TypedMapUpdate struct {
	Meta
	Map   string
	Keys  []string
	Value *string
}

func (*TypedMapUpdate) typedStmtNode() {}
func (t *TypedMapUpdate) String() string {
	if t.Value == nil {
		return fmt.Sprintf("delete %s[%s]", t.Map, strings.Join(t.Keys, "]["))
	}
	return fmt.Sprintf("%s[%s] := %s", t.Map, strings.Join(t.Keys, "]["), *t.Value)
}

type TypedMapGet struct {
	Meta
	Name  string
	Map   string
	Keys  []string
	Fetch bool
}

func (*TypedMapGet) typedStmtNode() {}
func (t *TypedMapGet) String() string {
	return fmt.Sprintf("%s <- %s[%s] : %s", t.Name, t.Map, strings.Join(t.Keys, "]["), t.Typ.String())
}

type TypedReadFromBC struct {
	Meta
	Name  string
	Field string
}

func (*TypedReadFromBC) typedStmtNode() {}
func (t *TypedReadFromBC) String() string {
	return fmt.Sprintf("%s <- & BLOCKCHAIN %s : %s", t.Name, t.Field, t.Typ.String())
}

type TypedMatchArmStmt struct {
	Pattern TypedPattern
	Body    []TypedStmt
}

type TypedMatchStmt struct {
	Meta
	Scrutinee string
	Arms      []TypedMatchArmStmt
}

func (*TypedMatchStmt) typedStmtNode() {}
func (t *TypedMatchStmt) String() string {
	return fmt.Sprintf("match %s with ...", t.Scrutinee)
}

type TypedAcceptPayment struct{ Meta }

func (*TypedAcceptPayment) typedStmtNode()   {}
func (t *TypedAcceptPayment) String() string { return "accept" }

type TypedSendMsgs struct {
	Meta
	Value string
}

func (*TypedSendMsgs) typedStmtNode()   {}
func (t *TypedSendMsgs) String() string { return fmt.Sprintf("send %s", t.Value) }

type TypedCreateEvnt struct {
	Meta
	Value string
}

func (*TypedCreateEvnt) typedStmtNode()   {}
func (t *TypedCreateEvnt) String() string { return fmt.Sprintf("event %s", t.Value) }

// ---- Typed module structure ----

type TypedParam struct {
	Name string
	Type types.Type
}

type TypedLibEntry interface {
	GetNodeID() NodeID
	EntryName() string
	String() string
}

type TypedLibVar struct {
	Meta
	Name string
	Expr TypedExpr
}

func (l *TypedLibVar) EntryName() string { return l.Name }
func (l *TypedLibVar) String() string {
	return fmt.Sprintf("%s = %s", l.Name, l.Expr)
}

type TypedCtorDecl struct {
	Name     string
	ArgTypes []types.Type
}

type TypedLibTyp struct {
	Meta
	Name  string
	Ctors []TypedCtorDecl
}

func (l *TypedLibTyp) EntryName() string { return l.Name }
func (l *TypedLibTyp) String() string    { return "type " + l.Name }

type TypedLibrary struct {
	Meta
	Name    string
	Entries []TypedLibEntry
}

type TypedFieldDecl struct {
	Name string
	Type types.Type
	Init TypedExpr
}

type TypedTransition struct {
	Meta
	Name   string
	Params []TypedParam
	Body   []TypedStmt
}

// TypedModule is the fully decorated module: every entry of
// every phase carries its resolved type, ready for a downstream
// consumer (elaboration, code generation, a linter) to walk without
// re-deriving anything the checker already established.
type TypedModule struct {
	Meta
	RecPrims     []TypedLibEntry
	ExternalLibs []*TypedLibrary
	ContractLib  *TypedLibrary
	Params       []TypedParam
	Fields       []TypedFieldDecl
	Transitions  []TypedTransition
}
