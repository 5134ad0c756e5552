package layout

import (
	"testing"

	"github.com/teleivo/assertive/require"

	"github.com/termproto/pbedit/internal/wire"
)

func TestApplyDeleteRemovesTheAddressedOccurrence(t *testing.T) {
	s := mustSchema(t, `message M { repeated int32 f2 = 2; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{Fields: []wire.FieldValue{
		{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: 10}},
		{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: 20}},
		{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: 30}},
	}}}

	err := Apply(doc, Change{Path: wire.Path{{FieldNumber: 2, Index: 1}}, Action: ActionDelete})
	require.NoError(t, err)
	require.EqualValues(t, len(doc.Root.Fields), 2)
	require.EqualValues(t, doc.Root.Fields[0].Scalar.Int, 10)
	require.EqualValues(t, doc.Root.Fields[1].Scalar.Int, 30)
}

func TestApplyInsertPlacesNewOccurrenceAtIndex(t *testing.T) {
	s := mustSchema(t, `message M { repeated int32 f2 = 2; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{Fields: []wire.FieldValue{
		{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: 10}},
		{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: 30}},
	}}}

	err := Apply(doc, Change{
		Path:   wire.Path{{FieldNumber: 2, Index: 1}},
		Action: ActionInsert,
		Value:  wire.FieldValue{Scalar: &wire.ScalarValue{Int: 20}},
	})
	require.NoError(t, err)
	require.EqualValues(t, len(doc.Root.Fields), 3)
	require.EqualValues(t, doc.Root.Fields[1].Scalar.Int, 20)
}

// TestApplyInsertThenDeleteRoundTrips is the commutativity invariant
// from spec.md §8: inserting then deleting at the same occurrence index
// must leave the message bit-identical.
func TestApplyInsertThenDeleteRoundTrips(t *testing.T) {
	s := mustSchema(t, `message M { repeated int32 f2 = 2; }`)
	root := mustRoot(t, s, "M")
	original := []wire.FieldValue{
		{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: 10}},
		{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: 30}},
	}
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{Fields: append([]wire.FieldValue{}, original...)}}

	require.NoError(t, Apply(doc, Change{
		Path:   wire.Path{{FieldNumber: 2, Index: 1}},
		Action: ActionInsert,
		Value:  wire.FieldValue{Scalar: &wire.ScalarValue{Int: 999}},
	}))
	require.NoError(t, Apply(doc, Change{
		Path:   wire.Path{{FieldNumber: 2, Index: 1}},
		Action: ActionDelete,
	}))

	require.EqualValues(t, len(doc.Root.Fields), len(original))
	for i := range original {
		require.EqualValues(t, doc.Root.Fields[i].Scalar.Int, original[i].Scalar.Int)
	}
}

func TestApplyOverwriteReplacesInPlace(t *testing.T) {
	s := mustSchema(t, `message M { bytes f1 = 1; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{Fields: []wire.FieldValue{
		{FieldNumber: 1, Scalar: &wire.ScalarValue{Bytes: []byte{1, 2, 3}}},
	}}}

	err := Apply(doc, Change{
		Path:   wire.Path{{FieldNumber: 1, Index: 0}},
		Action: ActionOverwrite,
		Value:  wire.FieldValue{Scalar: &wire.ScalarValue{Bytes: []byte{9, 9}}},
	})
	require.NoError(t, err)
	require.EqualValues(t, len(doc.Root.Fields), 1)
	require.EqualValues(t, doc.Root.Fields[0].Scalar.Bytes, []byte{9, 9})
}

func TestApplyOverwriteOnAbsentFieldAppendsIt(t *testing.T) {
	s := mustSchema(t, `message M { M3 m3 = 3; } message M3 { int32 f5 = 5; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{}}

	err := Apply(doc, Change{
		Path:   wire.Path{{FieldNumber: 3, Index: 0}},
		Action: ActionOverwrite,
		Value:  wire.FieldValue{Message: &wire.MessageValue{TypeName: "M3"}},
	})
	require.NoError(t, err)
	require.EqualValues(t, len(doc.Root.Fields), 1)
	require.NotNil(t, doc.Root.Fields[0].Message)
}

func TestApplyRejectsRootPath(t *testing.T) {
	s := mustSchema(t, `message M { int32 f1 = 1; }`)
	root := mustRoot(t, s, "M")
	doc := &Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{}}

	err := Apply(doc, Change{Path: nil, Action: ActionDelete})
	require.NotNil(t, err)
}
