// Package diagnostics implements the checker's error-kind taxonomy:
// one stable code per kind, a Diagnostic carrying the code plus
// source location and structured data, and a Collector that
// accumulates diagnostics across library entries, fields, and
// transitions and returns them in deterministic source order.
// Rendering diagnostics (JSON, terminal color) is a consumer's
// concern, not this package's.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cclang/typecheck/internal/srcloc"
)

// Code is one of the checker's stable error kinds.
type Code string

const (
	Unbound          Code = "TC-UNBOUND"
	TypeMismatch     Code = "TC-MISMATCH"
	Arity            Code = "TC-ARITY"
	NotWellFormed    Code = "TC-NOTWF"
	UnknownBuiltin   Code = "TC-UNKBUILTIN"
	NonStorable      Code = "TC-NONSTORABLE"
	NonSerializable  Code = "TC-NONSERIALIZABLE"
	EmptyMatch       Code = "TC-EMPTYMATCH"
	BadMessageField  Code = "TC-BADMSGFIELD"
	WriteToReadOnly  Code = "TC-WRITERO"
	RecPrimsTypeDecl Code = "TC-RECPRIMSTYPE"
	UnknownBCField   Code = "TC-UNKBCFIELD"
	NotImplemented   Code = "TC-NOTIMPL"
)

// Diagnostic is one user-visible type error.
type Diagnostic struct {
	Code    Code
	Message string
	Loc     srcloc.Loc
	Context string // e.g. "typechecking", set when wrapping
	Data    map[string]string
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	if d.Context != "" {
		fmt.Fprintf(&b, "%s: ", d.Context)
	}
	fmt.Fprintf(&b, "%s: %s: %s", d.Loc, d.Code, d.Message)
	return b.String()
}

// WithContext wraps a diagnostic with a surrounding phase label and,
// if the diagnostic has no location yet, a location. The first
// failure inside an expression short-circuits and is wrapped this way
// with the expression's own position.
func (d *Diagnostic) WithContext(context string, loc srcloc.Loc) *Diagnostic {
	cp := *d
	if cp.Context == "" {
		cp.Context = context
	}
	if (cp.Loc == srcloc.Loc{}) {
		cp.Loc = loc
	}
	return &cp
}

func NewUnbound(name string, loc srcloc.Loc) *Diagnostic {
	return &Diagnostic{Code: Unbound, Message: fmt.Sprintf("unbound variable %q", name), Loc: loc}
}

func NewTypeMismatch(expected, got fmt.Stringer, loc srcloc.Loc) *Diagnostic {
	return &Diagnostic{
		Code:    TypeMismatch,
		Message: fmt.Sprintf("expected %s, got %s", expected.String(), got.String()),
		Loc:     loc,
		Data:    map[string]string{"expected": expected.String(), "got": got.String()},
	}
}

func NewArity(expected, got int, context string, loc srcloc.Loc) *Diagnostic {
	return &Diagnostic{
		Code:    Arity,
		Message: fmt.Sprintf("%s: expected %d argument(s), got %d", context, expected, got),
		Loc:     loc,
	}
}

func NewNotWellFormed(ty fmt.Stringer, loc srcloc.Loc) *Diagnostic {
	return &Diagnostic{Code: NotWellFormed, Message: fmt.Sprintf("type %s is not well-formed", ty.String()), Loc: loc}
}

func NewUnknownBuiltin(op string, argTys []fmt.Stringer, loc srcloc.Loc) *Diagnostic {
	parts := make([]string, len(argTys))
	for i, t := range argTys {
		parts[i] = t.String()
	}
	return &Diagnostic{
		Code:    UnknownBuiltin,
		Message: fmt.Sprintf("no builtin %q for argument types (%s)", op, strings.Join(parts, ", ")),
		Loc:     loc,
	}
}

func NewNonStorable(ty fmt.Stringer, loc srcloc.Loc) *Diagnostic {
	return &Diagnostic{Code: NonStorable, Message: fmt.Sprintf("type %s is not storable", ty.String()), Loc: loc}
}

func NewNonSerializable(ty fmt.Stringer, loc srcloc.Loc) *Diagnostic {
	return &Diagnostic{Code: NonSerializable, Message: fmt.Sprintf("type %s is not serializable", ty.String()), Loc: loc}
}

func NewEmptyMatch(loc srcloc.Loc) *Diagnostic {
	return &Diagnostic{Code: EmptyMatch, Message: "match expression has no branches", Loc: loc}
}

func NewBadMessageField(field string, expected, got fmt.Stringer, loc srcloc.Loc) *Diagnostic {
	return &Diagnostic{
		Code:    BadMessageField,
		Message: fmt.Sprintf("field %q: expected %s, got %s", field, expected.String(), got.String()),
		Loc:     loc,
		Data:    map[string]string{"field": field, "expected": expected.String(), "got": got.String()},
	}
}

func NewWriteToReadOnly(field string, loc srcloc.Loc) *Diagnostic {
	return &Diagnostic{Code: WriteToReadOnly, Message: fmt.Sprintf("field %q is read-only", field), Loc: loc}
}

func NewRecPrimsTypeDecl(name string, loc srcloc.Loc) *Diagnostic {
	return &Diagnostic{Code: RecPrimsTypeDecl, Message: fmt.Sprintf("recursion primitive %q declares a type", name), Loc: loc}
}

func NewUnknownBCField(name string, loc srcloc.Loc) *Diagnostic {
	return &Diagnostic{Code: UnknownBCField, Message: fmt.Sprintf("unknown blockchain field %q", name), Loc: loc}
}

func NewNotImplemented(what string, loc srcloc.Loc) *Diagnostic {
	return &Diagnostic{Code: NotImplemented, Message: fmt.Sprintf("%s is not supported", what), Loc: loc}
}

// Collector accumulates diagnostics across phases that must not abort
// on the first failure (library entries, field initializers,
// transitions).
type Collector struct {
	diags []*Diagnostic
}

func (c *Collector) Add(d *Diagnostic) {
	if d != nil {
		c.diags = append(c.diags, d)
	}
}

func (c *Collector) Empty() bool { return len(c.diags) == 0 }

// Sorted returns the accumulated diagnostics ordered by source
// location, so the same input always reports in the same order.
func (c *Collector) Sorted() []*Diagnostic {
	out := make([]*Diagnostic, len(c.diags))
	copy(out, c.diags)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Loc.Less(out[j].Loc) })
	return out
}
