package layout

import (
	"testing"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"

	"github.com/termproto/pbedit/internal/wire"
)

func bytesDoc(t *testing.T, data []byte) (*Document, wire.Path) {
	t.Helper()
	s := mustSchema(t, `message M { bytes f1 = 1; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{
		Fields: []wire.FieldValue{{FieldNumber: 1, Scalar: &wire.ScalarValue{Bytes: data}}},
	}}
	return doc, wire.Path{{FieldNumber: 1, Index: 0}}
}

func TestBytesLayoutCalcSizesFitsWithinRowBudget(t *testing.T) {
	doc, path := bytesDoc(t, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	bl := NewBytesLayout(true)
	neg := NewIndentNegotiator()
	height := bl.CalcSizes(doc, path, DefaultConfig(), 30, neg)
	assert.True(t, height >= 1, "at least one row is produced")
	assert.True(t, bl.bytesPerLine >= 1, "at least one byte must pack per row regardless of width")
	assert.True(t, height*bl.bytesPerLine >= 8, "the packed rows must cover every byte")
}

func TestBytesLayoutWrapsWhenDataExceedsOneRow(t *testing.T) {
	data := make([]byte, 8)
	for i := range data {
		data[i] = byte(i + 1)
	}
	doc, path := bytesDoc(t, data)
	bl := NewBytesLayout(true)
	neg := NewIndentNegotiator()
	height := bl.CalcSizes(doc, path, DefaultConfig(), 30, neg)
	assert.True(t, height >= 1)

	lines := bl.GetScreen(doc, path, 30, neg.Levels()[0], DefaultConfig(), -1, -1, false)
	require.EqualValues(t, len(lines), height)
}

func TestBytesLayoutDeleteDataRemovesSelectedByte(t *testing.T) {
	doc, path := bytesDoc(t, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	bl := NewBytesLayout(true)
	neg := NewIndentNegotiator()
	bl.CalcSizes(doc, path, DefaultConfig(), 30, neg)

	cx, cy := 1, 0 // cursor on the first byte
	result := bl.OnCommand(doc, path, UserCommand{Kind: CmdDeleteData}, DefaultConfig(), 30, 0, &cx, &cy)
	require.EqualValues(t, result.Kind, ResultChangeData)
	require.EqualValues(t, result.Change.Action, ActionOverwrite)
	require.EqualValues(t, len(result.Change.Value.Scalar.Bytes), 7)
	require.EqualValues(t, result.Change.Value.Scalar.Bytes[0], byte(2))
}

func TestBytesLayoutInsertDataGrowsBySingleZeroByte(t *testing.T) {
	doc, path := bytesDoc(t, []byte{1, 2, 3})
	bl := NewBytesLayout(true)
	neg := NewIndentNegotiator()
	bl.CalcSizes(doc, path, DefaultConfig(), 30, neg)

	cx, cy := 1, 0
	result := bl.OnCommand(doc, path, UserCommand{Kind: CmdInsertData}, DefaultConfig(), 30, 0, &cx, &cy)
	require.EqualValues(t, result.Kind, ResultChangeData)
	require.EqualValues(t, len(result.Change.Value.Scalar.Bytes), 4)
}
