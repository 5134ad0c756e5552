package layout

import (
	"strings"
	"testing"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"

	"github.com/termproto/pbedit/internal/wire"
)

// TestScenarioS1SimpleScalarRendersExactRow is S1 from spec.md §8: a
// single int32 field at width 30 renders as one fixed-width row with
// the field name right-aligned, the value, and a right-aligned type tag.
func TestScenarioS1SimpleScalarRendersExactRow(t *testing.T) {
	s := mustSchema(t, `message M { int32 i1 = 1; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{
		Fields: []wire.FieldValue{{FieldNumber: 1, Scalar: &wire.ScalarValue{Int: 1}}},
	}}
	cfg := DefaultConfig()
	list := NewLayoutList(doc, cfg, 30, 25)

	require.EqualValues(t, len(list.Records()), 1)
	frame := list.VisibleFrame()
	require.EqualValues(t, len(frame), 25, "the rendered frame always fills the requested height")
	require.EqualValues(t, len(frame[0].Cells), 30, "every row is fixed to the frame width")
	require.EqualValues(t, frame[0].String(), " i1: 1                  int32 ")
}

// TestScenarioS2NestedTreeEagerlyExpandsToTwelveRows is S2: the eager
// lazy-expansion budget (ensureLoaded) has ample room in a 25-line
// viewport, so every collapsed message placeholder materializes down to
// the scalar leaves, and every row is fixed to the 50-column width.
func TestScenarioS2NestedTreeEagerlyExpandsToTwelveRows(t *testing.T) {
	doc, cfg := treeSchemaAndValue(t)
	list := NewLayoutList(doc, cfg, 50, 25)

	require.EqualValues(t, len(list.Records()), 12)
	for i, r := range list.Records() {
		require.EqualValues(t, r.Layout.Kind() != KindCollapsed, true, "row %d must have been eagerly expanded", i)
	}

	frame := list.VisibleFrame()
	for i := 0; i < 12; i++ {
		require.EqualValues(t, len(frame[i].Cells), 50)
	}
	// f4 (field 4) is absent: its default-value row is tagged '-int32'.
	found := false
	for i := 0; i < 12; i++ {
		line := frame[i].String()
		if strings.Contains(line, "-int32") {
			found = true
		}
	}
	assert.True(t, found, "the absent f4 field must render with a '-'-prefixed type tag")
}

// TestScenarioS3BytesScrollThenDeleteDropsFirstOctet is S3.
func TestScenarioS3BytesScrollThenDeleteDropsFirstOctet(t *testing.T) {
	doc, path := bytesDoc(t, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	cfg := DefaultConfig()
	list := NewLayoutList(doc, cfg, 30, 25)
	require.EqualValues(t, len(list.Records()), 1)

	rec := &list.records[0]
	bl, ok := rec.Layout.(*BytesLayout)
	require.True(t, ok)
	require.EqualValues(t, rec.Height, 2, "8 bytes at width 30 pack 6 then 2 octets")
	require.EqualValues(t, bl.bytesPerLine, 6)

	router := NewCommandRouter(list, cfg)
	list.sel = Selection{LayoutIndex: 0, X: 0, Y: 0}

	result := router.Dispatch(UserCommand{Kind: CmdScrollHorizontally, Delta: 1})
	require.EqualValues(t, result.Kind, ResultRedraw)
	require.EqualValues(t, list.sel.X, 1)

	result = router.Dispatch(UserCommand{Kind: CmdDeleteData})
	require.EqualValues(t, result.Kind, ResultRedraw)

	fv, ok := doc.Field(path)
	require.True(t, ok)
	require.EqualValues(t, fv.Scalar.Bytes, []byte{2, 3, 4, 5, 6, 7, 8})

	frame := list.VisibleFrame()
	require.EqualValues(t, frame[0].String(), " f1: 02 03 04 05 06 07  bytes ")
	require.EqualValues(t, frame[1].String(), "  6: 08                       ")
}

// TestScenarioS4ScrollBoundsAreIdempotent is S4, exercised directly
// through the CommandRouter rather than LayoutList.MoveVertically.
func TestScenarioS4ScrollBoundsAreIdempotent(t *testing.T) {
	doc, cfg := treeSchemaAndValue(t)
	list := NewLayoutList(doc, cfg, 50, 3)
	router := NewCommandRouter(list, cfg)

	for i := 0; i < 100; i++ {
		router.Dispatch(UserCommand{Kind: CmdScrollVertically, Count: 1})
	}
	last := list.Selection().LayoutIndex
	router.Dispatch(UserCommand{Kind: CmdScrollVertically, Count: 1})
	require.EqualValues(t, list.Selection().LayoutIndex, last, "scrolling past the end is idempotent")

	for i := 0; i < 100; i++ {
		router.Dispatch(UserCommand{Kind: CmdScrollVertically, Count: 1, Up: true})
	}
	require.EqualValues(t, list.Selection().LayoutIndex, 0, "scrolling up 100 times lands on the first record")
	router.Dispatch(UserCommand{Kind: CmdScrollVertically, Count: 1, Up: true})
	require.EqualValues(t, list.Selection().LayoutIndex, 0, "scrolling above the start is idempotent")
}

// TestScenarioS5CollapseTogglePreservesAndRestoresRowCount is S5: from
// the already-eagerly-expanded S2 tree, collapsing m3 drops its own
// header plus 8 descendant rows (f5, 2 m6 headers, 4 leaves, f7) down to
// a single summarized placeholder, and toggling again restores exactly
// the original 12 rows.
func TestScenarioS5CollapseTogglePreservesAndRestoresRowCount(t *testing.T) {
	doc, cfg := treeSchemaAndValue(t)
	list := NewLayoutList(doc, cfg, 50, 25)
	router := NewCommandRouter(list, cfg)
	before := len(list.Records())
	require.EqualValues(t, before, 12)

	m3Idx := -1
	for i, r := range list.Records() {
		if r.Path.Equal(wire.Path{{FieldNumber: 3, Index: 0}}) {
			m3Idx = i
		}
	}
	require.True(t, m3Idx >= 0)
	list.sel = Selection{LayoutIndex: m3Idx}

	result := router.Dispatch(UserCommand{Kind: CmdCollapsedToggle})
	require.EqualValues(t, result.Kind, ResultRedraw)
	require.EqualValues(t, len(list.Records()), before-8, "collapsing m3 drops its header+8 descendant rows down to one placeholder")

	// The number in the placeholder's "... N" summary is the
	// submessage's own direct field count: m3 holds f5, m6, m6, f7.
	line := list.VisibleFrame()[m3Idx].String()
	assert.True(t, strings.Contains(line, "... 4"), "the collapsed placeholder summarizes m3's direct field count")

	list.sel = Selection{LayoutIndex: m3Idx}
	result = router.Dispatch(UserCommand{Kind: CmdCollapsedToggle})
	require.EqualValues(t, result.Kind, ResultRedraw)
	require.EqualValues(t, len(list.Records()), before, "the second toggle restores the original 12 rows")

	// The restored header is the expanded MessageLayout's own row: name
	// and type only, never a "... N" child-count suffix (that summary is
	// CollapsedLayout's alone).
	expanded := list.VisibleFrame()[m3Idx].String()
	assert.False(t, strings.Contains(expanded, "..."), "an expanded message header carries no child-count summary")
	assert.True(t, strings.Contains(expanded, "m3"), "the expanded header still names the field")
}

// TestScenarioS6FieldOrderCyclingPermutesRootChildren is S6, dispatched
// through CmdChangeFieldOrder rather than calling SortedFields directly.
func TestScenarioS6FieldOrderCyclingPermutesRootChildren(t *testing.T) {
	s := mustSchema(t, `message M { int32 x = 2; int32 y = 1; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{
		Fields: []wire.FieldValue{{FieldNumber: 1, Scalar: &wire.ScalarValue{Int: 3}}},
	}}
	cfg := DefaultConfig() // OrderProto
	list := NewLayoutList(doc, cfg, 50, 25)
	router := NewCommandRouter(list, cfg)

	names := func() []string {
		var out []string
		for _, r := range list.Records() {
			fd, _ := doc.FieldDescriptor(r.Path)
			out = append(out, fd.Name)
		}
		return out
	}

	require.EqualValues(t, names(), []string{"x", "y"}, "Proto order is declaration order")

	router.Dispatch(UserCommand{Kind: CmdChangeFieldOrder, Forward: true})
	require.EqualValues(t, names(), []string{"y"}, "Wire order shows only fields actually present on the wire")

	router.Dispatch(UserCommand{Kind: CmdChangeFieldOrder, Forward: true})
	require.EqualValues(t, names(), []string{"x", "y"}, "ByName order is alphabetical")

	router.Dispatch(UserCommand{Kind: CmdChangeFieldOrder, Forward: true})
	require.EqualValues(t, names(), []string{"y", "x"}, "ById order is ascending field number")
}
