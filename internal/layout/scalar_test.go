package layout

import (
	"testing"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"

	"github.com/termproto/pbedit/internal/wire"
)

func TestScalarLayoutCalcSizesSingleValueOneRow(t *testing.T) {
	s := mustSchema(t, `message M { int32 i1 = 1; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{
		Fields: []wire.FieldValue{{FieldNumber: 1, Scalar: &wire.ScalarValue{Int: 1}}},
	}}

	sl := NewScalarLayout(1)
	neg := NewIndentNegotiator()
	height := sl.CalcSizes(doc, wire.Path{{FieldNumber: 1, Index: 0}}, DefaultConfig(), 30, neg)
	require.EqualValues(t, height, 1, "a single scalar value fits on one row")
}

func TestScalarLayoutGetScreenRendersFieldNameAndValue(t *testing.T) {
	s := mustSchema(t, `message M { int32 i1 = 1; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{
		Fields: []wire.FieldValue{{FieldNumber: 1, Scalar: &wire.ScalarValue{Int: 1}}},
	}}

	path := wire.Path{{FieldNumber: 1, Index: 0}}
	sl := NewScalarLayout(1)
	neg := NewIndentNegotiator()
	sl.CalcSizes(doc, path, DefaultConfig(), 30, neg)
	indent := neg.Levels()[0]

	lines := sl.GetScreen(doc, path, 30, indent, DefaultConfig(), -1, -1, false)
	require.EqualValues(t, len(lines), 1)
	rendered := lines[0].String()
	assert.True(t, len(rendered) == 30, "every rendered row must be padded to the frame width")
}

func TestScalarLayoutAbsentFieldShowsDefaultPlaceholder(t *testing.T) {
	s := mustSchema(t, `message M { int32 i1 = 1; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{}}

	path := wire.Path{{FieldNumber: 1, Index: 0}}
	sl := NewScalarLayout(0)
	neg := NewIndentNegotiator()
	height := sl.CalcSizes(doc, path, DefaultConfig(), 30, neg)
	require.EqualValues(t, height, 1)

	indent := neg.Levels()[0]
	lines := sl.GetScreen(doc, path, 30, indent, DefaultConfig(), -1, -1, false)
	require.EqualValues(t, len(lines), 1)
}

func TestScalarLayoutWrapsRepeatedValuesAcrossRows(t *testing.T) {
	s := mustSchema(t, `message M { repeated int32 f2 = 2; }`)
	root := mustRoot(t, s, "M")
	fields := make([]wire.FieldValue, 0, 20)
	for i := 0; i < 20; i++ {
		fields = append(fields, wire.FieldValue{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: int64(1000 + i)}})
	}
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{Fields: fields}}

	path := wire.Path{{FieldNumber: 2, Index: 0}}
	sl := NewScalarLayout(20)
	neg := NewIndentNegotiator()
	height := sl.CalcSizes(doc, path, DefaultConfig(), 20, neg)
	assert.True(t, height > 1, "20 four-digit values can't fit on one 20-column row")
}

func TestScalarLayoutDeleteDataTargetsCursorOccurrence(t *testing.T) {
	s := mustSchema(t, `message M { repeated int32 f2 = 2; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{Fields: []wire.FieldValue{
		{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: 10}},
		{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: 20}},
		{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: 30}},
	}}}

	path := wire.Path{{FieldNumber: 2, Index: 0}}
	sl := NewScalarLayout(3)
	neg := NewIndentNegotiator()
	sl.CalcSizes(doc, path, DefaultConfig(), 30, neg)

	cx, cy := 2, 0 // cursor on the 2nd value (index 1)
	result := sl.OnCommand(doc, path, UserCommand{Kind: CmdDeleteData}, DefaultConfig(), 30, 0, &cx, &cy)
	require.EqualValues(t, result.Kind, ResultChangeData)
	require.EqualValues(t, result.Change.Action, ActionDelete)
	require.EqualValues(t, result.Change.Path[len(result.Change.Path)-1].Index, 1)
}
