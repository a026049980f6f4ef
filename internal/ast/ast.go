// Package ast defines the untyped abstract syntax tree the checker
// consumes. The parser that produces this tree, and the ADT/builtin
// registries a module is checked against, live outside this module;
// ast only fixes the shape both sides agree on.
package ast

import (
	"github.com/cclang/typecheck/internal/srcloc"
	"github.com/cclang/typecheck/internal/types"
)

// Loc is the position representation nodes carry; the checker never
// interprets it, only threads it onto diagnostics and typed nodes.
type Loc = srcloc.Loc

// Node is the base of every AST node.
type Node interface {
	Position() Loc
}

// Expr is a pure expression.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a (possibly stateful) statement.
type Stmt interface {
	Node
	stmtNode()
}

// Pattern is a match pattern, untyped.
type Pattern interface {
	Node
	patternNode()
}

// base embeds a Loc and satisfies Position() for every concrete node.
type base struct{ Loc Loc }

func (b base) Position() Loc { return b.Loc }

// SetPosition attaches a source location after construction; the
// parser producing this tree is the intended caller.
func (b *base) SetPosition(l Loc) { b.Loc = l }

// ---- Literals ----

// LitKind tags the syntactic form of a literal so literal_type can
// dispatch without re-parsing the raw text.
type LitKind int

const (
	LitInt LitKind = iota
	LitByStr
	LitBNum
	LitString
)

// Literal is a literal value. For LitInt, Width carries the bit width
// and Signed distinguishes Int/Uint; for LitByStr, Width carries the
// byte-string length (20 selects the dedicated ByStr20 type).
type Literal struct {
	base
	Kind   LitKind
	Value  string
	Width  int
	Signed bool
}

func (*Literal) exprNode() {}

// ---- Expressions ----

// Var is an identifier use-site.
type Var struct {
	base
	Name string
}

func (*Var) exprNode() {}

// Fun is a one-argument lambda. The checker never infers parameter
// types, so Param always carries one. The parser resolves all named
// types against the ADT registry before handing the tree to the
// checker, so binder annotations already arrive as types.Type rather
// than raw syntax.
type Fun struct {
	base
	Param     string
	ParamType types.Type
	Body      Expr
}

func (*Fun) exprNode() {}

// App is function application to one or more arguments.
type App struct {
	base
	Fn   Expr
	Args []Expr
}

func (*App) exprNode() {}

// Builtin invokes a named operator resolved through the builtin
// dictionary (e.g. "+", "substr", "blt").
type Builtin struct {
	base
	Op   string
	Args []Expr
}

func (*Builtin) exprNode() {}

// Let is a non-recursive binding, with an optional declared type that
// must agree with the inferred type of Value.
type Let struct {
	base
	Name    string
	AnnType types.Type // nil if omitted
	Value   Expr
	Body    Expr
}

func (*Let) exprNode() {}

// Constr applies a named ADT constructor to explicit type arguments
// and value arguments.
type Constr struct {
	base
	Name     string
	TypeArgs []types.Type
	Args     []Expr
}

func (*Constr) exprNode() {}

// MatchArm pairs a pattern with the expression typed under its
// bindings.
type MatchArm struct {
	Pattern Pattern
	Body    Expr
}

// MatchExpr is expression-level pattern matching.
type MatchExpr struct {
	base
	Scrutinee string // the matched identifier, already bound in scope
	Arms      []MatchArm
}

func (*MatchExpr) exprNode() {}

// Fixpoint types a self-referential value: `Name` is bound to the
// declared type `DeclType` while checking `Body`.
type Fixpoint struct {
	base
	Name     string
	DeclType types.Type
	Body     Expr
}

func (*Fixpoint) exprNode() {}

// TFun is type abstraction: `TyVar` is added to the in-scope type
// variable set while checking Body.
type TFun struct {
	base
	TyVar string
	Body  Expr
}

func (*TFun) exprNode() {}

// TApp instantiates a polymorphic value at explicit type arguments.
type TApp struct {
	base
	Fn       Expr
	TypeArgs []types.Type
}

func (*TApp) exprNode() {}

// MessagePayloadKind tags how a message/event field's value was
// written.
type MessagePayloadKind int

const (
	PayloadTag MessagePayloadKind = iota
	PayloadLit
	PayloadVar
)

// MessageField is one `field : payload` entry of a Message/Event
// literal.
type MessageField struct {
	Name    string
	Kind    MessagePayloadKind
	Tag     string   // PayloadTag
	Lit     *Literal // PayloadLit
	VarName string   // PayloadVar
}

// Message constructs either a Message or an Event value; which one is
// decided by inspecting the field names.
type Message struct {
	base
	Fields []MessageField
}

func (*Message) exprNode() {}

// ---- Patterns ----

type WildcardPattern struct{ base }

func (*WildcardPattern) patternNode() {}

type BinderPattern struct {
	base
	Name string
}

func (*BinderPattern) patternNode() {}

type ConstructorPattern struct {
	base
	Name string
	Args []Pattern
}

func (*ConstructorPattern) patternNode() {}

// ---- Statements ----

type Load struct {
	base
	Name  string // bound in `pure` for the suffix
	Field string // resolved in `fields`
}

func (*Load) stmtNode() {}

type Store struct {
	base
	Field string
	Value string // identifier resolved in `pure`
}

func (*Store) stmtNode() {}

type Bind struct {
	base
	Name string
	Expr Expr
}

func (*Bind) stmtNode() {}

// MapUpdate writes (Value != nil) or deletes (Value == nil) at a
// chain of keys into a nested map field.
type MapUpdate struct {
	base
	Map   string
	Keys  []string
	Value *string // identifier resolved in `pure`, nil = delete
}

func (*MapUpdate) stmtNode() {}

// MapGet reads a nested map field. Fetch=true binds an Option of the
// value type; Fetch=false binds a Bool existence check.
type MapGet struct {
	base
	Name  string
	Map   string
	Keys  []string
	Fetch bool
}

func (*MapGet) stmtNode() {}

type ReadFromBC struct {
	base
	Name  string
	Field string
}

func (*ReadFromBC) stmtNode() {}

type MatchArmStmt struct {
	Pattern Pattern
	Body    []Stmt
}

// MatchStmt matches over statement bodies; bindings introduced inside
// a branch do not escape to the suffix.
type MatchStmt struct {
	base
	Scrutinee string
	Arms      []MatchArmStmt
}

func (*MatchStmt) stmtNode() {}

type AcceptPayment struct{ base }

func (*AcceptPayment) stmtNode() {}

type SendMsgs struct {
	base
	Value string // identifier resolved in `pure`, must type List(Message)
}

func (*SendMsgs) stmtNode() {}

type CreateEvnt struct {
	base
	Value string // identifier resolved in `pure`, must type Event
}

func (*CreateEvnt) stmtNode() {}

// Throw is syntactically accepted but never typed.
type Throw struct{ base }

func (*Throw) stmtNode() {}

// ---- Module structure ----

// Param is a name/type pair: contract parameters, transition
// parameters, and lambda/fixpoint binders all reduce to this shape.
type Param struct {
	Name string
	Type types.Type
}

// LibEntry is one declaration inside a library, either a value or a
// type (ADT) declaration.
type LibEntry interface {
	Node
	libEntryNode()
	EntryName() string
}

// LibVar is `name = expr`.
type LibVar struct {
	base
	Name string
	Expr Expr
}

func (*LibVar) libEntryNode()       {}
func (l *LibVar) EntryName() string { return l.Name }

// CtorDecl is one constructor of a LibTyp's algebraic type.
type CtorDecl struct {
	Name     string
	ArgTypes []types.Type
}

// LibTyp is a user ADT declaration; registering it with the ADT
// registry is the external collaborator's job, but the checker still
// must confirm every constructor argument type is well-formed.
type LibTyp struct {
	base
	Name  string
	Ctors []CtorDecl
}

func (*LibTyp) libEntryNode()       {}
func (l *LibTyp) EntryName() string { return l.Name }

// Library is an ordered sequence of entries (external libraries and
// the contract's own library are both this shape — ModuleDriver tells
// them apart by phase, not by type; recursion primitives are a bare
// []LibEntry on Module).
type Library struct {
	base
	Name    string
	Entries []LibEntry
}

// FieldDecl is one mutable contract field.
type FieldDecl struct {
	Name string
	Type types.Type
	Init Expr
}

// Transition is one contract entry point.
type Transition struct {
	base
	Name   string
	Params []Param
	Body   []Stmt
}

// Module is a whole contract: recursion primitives, any number of
// external libraries, an optional own library, declared parameters,
// mutable fields, and transitions — one slot per checking phase.
type Module struct {
	base
	RecPrims     []LibEntry
	ExternalLibs []*Library
	ContractLib  *Library // nil if the contract declares no library
	Params       []Param
	Fields       []FieldDecl
	Transitions  []Transition
}
