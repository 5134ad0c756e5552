package layout

import (
	"strings"
	"testing"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"

	"github.com/termproto/pbedit/internal/wire"
)

func TestTakeGraphemesNeverSplitsACluster(t *testing.T) {
	flag := "🇯🇵"
	prefix, rest := takeGraphemes(flag, 1)
	require.EqualValues(t, prefix, flag, "a maxWidth smaller than one cluster's width must still emit the whole cluster")
	require.EqualValues(t, rest, "")
}

func TestTakeGraphemesSplitsAtWidthBoundary(t *testing.T) {
	prefix, rest := takeGraphemes("abcdef", 3)
	require.EqualValues(t, prefix, "abc")
	require.EqualValues(t, rest, "def")
}

func TestStringLayoutShortValueSingleRow(t *testing.T) {
	s := mustSchema(t, `message M { string name = 1; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{
		Fields: []wire.FieldValue{{FieldNumber: 1, Scalar: &wire.ScalarValue{Str: "hi"}}},
	}}

	path := wire.Path{{FieldNumber: 1, Index: 0}}
	sv := NewStringLayout(true)
	neg := NewIndentNegotiator()
	height := sv.CalcSizes(doc, path, DefaultConfig(), 30, neg)
	require.EqualValues(t, height, 1)

	lines := sv.GetScreen(doc, path, 30, neg.Levels()[0], DefaultConfig(), -1, -1, false)
	require.EqualValues(t, len(lines), 1)
	assert.True(t, strings.Contains(lines[0].String(), "hi"), "the short value itself should appear quoted on the single row")
}

func TestStringLayoutLongValueWrapsAcrossRows(t *testing.T) {
	s := mustSchema(t, `message M { string body = 1; }`)
	root := mustRoot(t, s, "M")
	long := strings.Repeat("word ", 40)
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{
		Fields: []wire.FieldValue{{FieldNumber: 1, Scalar: &wire.ScalarValue{Str: long}}},
	}}

	path := wire.Path{{FieldNumber: 1, Index: 0}}
	sv := NewStringLayout(true)
	neg := NewIndentNegotiator()
	height := sv.CalcSizes(doc, path, DefaultConfig(), 30, neg)
	assert.True(t, height > 1, "a 200-byte value in a 30-column frame must wrap")

	lines := sv.GetScreen(doc, path, 30, neg.Levels()[0], DefaultConfig(), -1, -1, false)
	require.EqualValues(t, len(lines), height)
	for _, l := range lines {
		assert.True(t, len(l.Cells) == 30, "every wrapped row is fixed to the frame width")
	}
}

func TestStringLayoutPreservesEmbeddedNewlines(t *testing.T) {
	s := mustSchema(t, `message M { string body = 1; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root}

	sv := NewStringLayout(true)
	chunks := sv.getLinesFormatted(30, 3, false, "line one\nline two")
	assert.True(t, len(chunks) >= 2, "an embedded newline must start a fresh chunk")
	assert.True(t, chunks[0].lineStart1)
	_ = doc
}
