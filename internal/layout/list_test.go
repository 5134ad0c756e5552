package layout

import (
	"testing"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"

	"github.com/termproto/pbedit/internal/wire"
)

// TestUpdateIndexesSiblingSweepsBothDirections is the regression test
// for Open Question (a): a prior port of this bookkeeping only swept
// forward from the edit point, leaving every earlier sibling's
// SiblingCount stale after an insert or delete. Both directions must
// update here.
func TestUpdateIndexesSiblingSweepsBothDirections(t *testing.T) {
	l := &LayoutList{records: []Record{
		{SiblingIndex: 0, SiblingCount: 3},
		{SiblingIndex: 1, SiblingCount: 3},
		{SiblingIndex: 2, SiblingCount: 3},
	}}

	// Simulate inserting a 4th sibling at position 1: the group grows
	// to size 4, and everyone (before and after the edit point) must
	// see the new count.
	l.updateIndexesSibling(0, 3, 1, 4)

	require.EqualValues(t, l.records[0].SiblingCount, 4, "an earlier sibling must see the refreshed count")
	require.EqualValues(t, l.records[0].SiblingIndex, 0, "an earlier sibling's own index is unaffected")
	require.EqualValues(t, l.records[1].SiblingCount, 4)
	require.EqualValues(t, l.records[1].SiblingIndex, 1)
	require.EqualValues(t, l.records[2].SiblingCount, 4)
	require.EqualValues(t, l.records[2].SiblingIndex, 2)
}

func TestUpdateIndexesSiblingHandlesEditAtGroupStart(t *testing.T) {
	l := &LayoutList{records: []Record{
		{SiblingIndex: 0, SiblingCount: 2},
		{SiblingIndex: 1, SiblingCount: 2},
	}}
	// Deleting the first sibling of a 2-member group: no earlier
	// siblings exist, so only the forward sweep has anything to do.
	l.updateIndexesSibling(0, 1, 0, 1)
	require.EqualValues(t, l.records[0].SiblingCount, 1)
	require.EqualValues(t, l.records[0].SiblingIndex, 0)
}

func treeSchemaAndValue(t *testing.T) (*Document, *Config) {
	t.Helper()
	s := mustSchema(t, `
message M { int32 f1 = 1; repeated int32 f2 = 2; M3 m3 = 3; int32 f4 = 4; }
message M3 { int32 f5 = 5; repeated M6 m6 = 6; int32 f7 = 7; }
message M6 { int32 f8 = 8; int32 f9 = 9; }
`)
	root := mustRoot(t, s, "M")
	m6a := &wire.MessageValue{TypeName: "M6", Fields: []wire.FieldValue{
		{FieldNumber: 8, Scalar: &wire.ScalarValue{Int: 8}},
		{FieldNumber: 9, Scalar: &wire.ScalarValue{Int: 9}},
	}}
	m6b := &wire.MessageValue{TypeName: "M6", Fields: []wire.FieldValue{
		{FieldNumber: 8, Scalar: &wire.ScalarValue{Int: 10}},
		{FieldNumber: 9, Scalar: &wire.ScalarValue{Int: 11}},
	}}
	m3 := &wire.MessageValue{TypeName: "M3", Fields: []wire.FieldValue{
		{FieldNumber: 5, Scalar: &wire.ScalarValue{Int: 5}},
		{FieldNumber: 6, Message: m6a},
		{FieldNumber: 6, Message: m6b},
		{FieldNumber: 7, Scalar: &wire.ScalarValue{Int: 7}},
	}}
	root_ := &wire.MessageValue{TypeName: "M", Fields: []wire.FieldValue{
		{FieldNumber: 1, Scalar: &wire.ScalarValue{Int: 1}},
		{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: 20}},
		{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: 21}},
		{FieldNumber: 3, Message: m3},
	}}
	doc := &Document{Schema: s, RootDesc: root, Root: root_}
	return doc, DefaultConfig()
}

// These four tests construct the list with a viewport (height 3)
// smaller than the 4 unexpanded top-level rows, so ensureLoaded's
// eager-expansion budget pass has no room to auto-expand m3 and they
// start from the same all-collapsed state the manual expand/collapse
// calls below expect.

func TestLayoutListBuildsOneRowPerTopLevelField(t *testing.T) {
	doc, cfg := treeSchemaAndValue(t)
	list := NewLayoutList(doc, cfg, 50, 3)
	// f1, f2 (aggregated), m3 (collapsed), f4 (absent) = 4 direct records.
	require.EqualValues(t, len(list.Records()), 4)
	for _, r := range list.Records() {
		require.EqualValues(t, r.SiblingCount, 4)
	}
}

func TestLayoutListExpandThenCollapseRestoresRowCount(t *testing.T) {
	doc, cfg := treeSchemaAndValue(t)
	list := NewLayoutList(doc, cfg, 50, 3)
	before := len(list.Records())

	m3Path := wire.Path{{FieldNumber: 3, Index: 0}}
	require.True(t, list.expandCollapsed(m3Path))
	expanded := len(list.Records())
	assert.True(t, expanded > before, "expanding m3 must add its own field rows")

	require.True(t, list.collapseExpanded(m3Path))
	require.EqualValues(t, len(list.Records()), before, "collapsing must restore the original row count exactly")
}

func TestLayoutListExpandIsIdempotentWhenAlreadyExpanded(t *testing.T) {
	doc, cfg := treeSchemaAndValue(t)
	list := NewLayoutList(doc, cfg, 50, 3)
	m3Path := wire.Path{{FieldNumber: 3, Index: 0}}
	require.True(t, list.expandCollapsed(m3Path))
	assert.False(t, list.expandCollapsed(m3Path), "expanding an already-expanded record is a no-op")
}

func TestLayoutListDeepExpansionExpandsRepeatedMessageOccurrence(t *testing.T) {
	doc, cfg := treeSchemaAndValue(t)
	list := NewLayoutList(doc, cfg, 50, 3)
	m3Path := wire.Path{{FieldNumber: 3, Index: 0}}
	require.True(t, list.expandCollapsed(m3Path))

	m6Path := wire.Path{{FieldNumber: 3, Index: 0}, {FieldNumber: 6, Index: 0}}
	require.True(t, list.expandCollapsed(m6Path))

	found := false
	for _, r := range list.Records() {
		if r.Path.Equal(wire.Path{{FieldNumber: 3, Index: 0}, {FieldNumber: 6, Index: 0}, {FieldNumber: 8, Index: 0}}) {
			found = true
		}
	}
	assert.True(t, found, "expanding m6[0] must surface its own f8 field row")
}

func TestLayoutListFieldOrderPermutesRootChildren(t *testing.T) {
	s := mustSchema(t, `message M { int32 x = 2; int32 y = 1; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{
		Fields: []wire.FieldValue{{FieldNumber: 1, Scalar: &wire.ScalarValue{Int: 3}}},
	}}

	byName := SortedFields(doc.Root, root, OrderByName)
	require.EqualValues(t, byName[0].Desc.Name, "x")
	require.EqualValues(t, byName[1].Desc.Name, "y")

	byID := SortedFields(doc.Root, root, OrderByID)
	require.EqualValues(t, byID[0].Desc.Name, "y")
	require.EqualValues(t, byID[1].Desc.Name, "x")

	wire_ := SortedFields(doc.Root, root, OrderWire)
	require.EqualValues(t, len(wire_), 1, "x is absent from the wire and is dropped entirely in Wire order")
	require.EqualValues(t, wire_[0].Desc.Name, "y")
	require.EqualValues(t, wire_[0].Amount, 1)

	proto := SortedFields(doc.Root, root, OrderProto)
	require.EqualValues(t, proto[0].Desc.Name, "x")
	require.EqualValues(t, proto[1].Desc.Name, "y")
}

// TestLayoutListScrollsIntoRecordTallerThanViewport is the regression
// test for a record (here a wrapped bytes field) whose own Height
// exceeds the viewport: moving the cursor down its rows must advance
// scrollLine a line at a time via firstVisibleLine's skipLines, rather
// than getting stuck once scrollLine reaches the record's own index.
func TestLayoutListScrollsIntoRecordTallerThanViewport(t *testing.T) {
	data := make([]byte, 30)
	for i := range data {
		data[i] = byte(i + 1)
	}
	doc, path := bytesDoc(t, data)
	cfg := DefaultConfig()
	list := NewLayoutList(doc, cfg, 30, 2)

	require.EqualValues(t, len(list.Records()), 1)
	rec := &list.records[0]
	require.True(t, rec.Height > list.height, "the single record must be taller than the 2-line viewport to exercise the regression")

	bl, ok := rec.Layout.(*BytesLayout)
	require.True(t, ok)
	require.EqualValues(t, bl.bytesPerLine, 6)

	list.sel = Selection{LayoutIndex: 0, X: 0, Y: 0}
	list.ensureSelectionVisible()
	require.EqualValues(t, list.scrollLine, 0, "the cursor starts on the record's own first row, no scroll needed")

	for y := 1; y < rec.Height; y++ {
		list.MoveVertically(1)
		require.EqualValues(t, list.sel.Y, y)
		if y >= list.height {
			require.True(t, list.scrollLine > 0, "scrolling past the viewport's own height must advance scrollLine, not stay stuck at 0")
		}

		idx, _ := list.firstVisibleLine()
		require.EqualValues(t, idx, 0, "the only record is still the one being scrolled through")
		frame := list.VisibleFrame()
		require.EqualValues(t, len(frame), list.height, "the frame always fills the requested height")
	}

	// The last row the cursor reaches must actually be drawn on screen,
	// proving skipLines let VisibleFrame reach past the first viewport's
	// worth of the record's own rows.
	frame := list.VisibleFrame()
	rows := bl.GetScreen(doc, path, list.width, 0, cfg, list.sel.X, list.sel.Y, true)
	require.EqualValues(t, frame[len(frame)-1].String(), rows[len(rows)-1].String())
}

func TestLayoutListScrollToBottomThenUpIsBounded(t *testing.T) {
	doc, cfg := treeSchemaAndValue(t)
	list := NewLayoutList(doc, cfg, 50, 3)

	for i := 0; i < 100; i++ {
		list.MoveVertically(1)
	}
	last := list.sel.LayoutIndex
	list.MoveVertically(1)
	assert.EqualValues(t, list.sel.LayoutIndex, last, "scrolling past the last record is idempotent")

	for i := 0; i < 100; i++ {
		list.MoveVertically(-1)
	}
	first := list.sel.LayoutIndex
	assert.EqualValues(t, first, 0, "scrolling up 100 times from anywhere lands on the first record")
	list.MoveVertically(-1)
	assert.EqualValues(t, list.sel.LayoutIndex, 0, "scrolling above the first record is idempotent")
}
