package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cclang/typecheck/internal/srcloc"
)

type stringerStub string

func (s stringerStub) String() string { return string(s) }

func TestCollectorSortsBySourceLocation(t *testing.T) {
	var c Collector
	c.Add(NewUnbound("c", srcloc.Loc{File: "a.ccl", Line: 10}))
	c.Add(NewUnbound("a", srcloc.Loc{File: "a.ccl", Line: 1}))
	c.Add(NewUnbound("b", srcloc.Loc{File: "a.ccl", Line: 5}))

	sorted := c.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, 1, sorted[0].Loc.Line)
	assert.Equal(t, 5, sorted[1].Loc.Line)
	assert.Equal(t, 10, sorted[2].Loc.Line)
}

func TestCollectorIgnoresNilDiagnostic(t *testing.T) {
	var c Collector
	c.Add(nil)
	assert.True(t, c.Empty())
}

func TestCollectorSortIsStableAcrossRepeatedRuns(t *testing.T) {
	// Same input, multiple Sorted() calls: identical output each time.
	var c Collector
	c.Add(NewUnbound("x", srcloc.Loc{File: "m.ccl", Line: 3}))
	c.Add(NewArity(1, 2, "ctx", srcloc.Loc{File: "m.ccl", Line: 1}))

	first := c.Sorted()
	second := c.Sorted()
	require.Len(t, first, len(second))
	for i := range first {
		assert.Equal(t, first[i].Code, second[i].Code)
		assert.Equal(t, first[i].Loc, second[i].Loc)
	}
}

func TestWithContextSetsContextAndLocOnlyIfAbsent(t *testing.T) {
	d := NewUnbound("x", srcloc.Loc{})
	wrapped := d.WithContext("typechecking", srcloc.Loc{File: "m.ccl", Line: 7})
	assert.Equal(t, "typechecking", wrapped.Context)
	assert.Equal(t, 7, wrapped.Loc.Line)

	// A diagnostic that already has a location keeps it.
	d2 := NewUnbound("y", srcloc.Loc{File: "m.ccl", Line: 2})
	wrapped2 := d2.WithContext("typechecking", srcloc.Loc{File: "m.ccl", Line: 99})
	assert.Equal(t, 2, wrapped2.Loc.Line)
}

func TestNewBadMessageFieldCarriesStructuredData(t *testing.T) {
	d := NewBadMessageField("_amount", stringerStub("Uint128"), stringerStub("Int32"), srcloc.Loc{})
	assert.Equal(t, BadMessageField, d.Code)
	assert.Equal(t, "_amount", d.Data["field"])
	assert.Equal(t, "Uint128", d.Data["expected"])
	assert.Equal(t, "Int32", d.Data["got"])
}

func TestDiagnosticErrorIncludesCodeAndLocation(t *testing.T) {
	d := NewEmptyMatch(srcloc.Loc{File: "m.ccl", Line: 4, Column: 2})
	msg := d.Error()
	assert.Contains(t, msg, string(EmptyMatch))
	assert.Contains(t, msg, "m.ccl:4:2")
}
