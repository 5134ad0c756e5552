package layout

import (
	"fmt"

	"github.com/termproto/pbedit/internal/wire"
)

// Apply is C5: it mutates doc's MessageValue tree per change.Action,
// locating the parent message by change.Path's parent and the specific
// occurrence by its last element's (FieldNumber, Index). Grounded on
// original_source/src/proto.rs's change-application routines.
func Apply(doc *Document, change Change) error {
	if len(change.Path) == 0 {
		return fmt.Errorf("layout: cannot apply change to the root path")
	}
	parent, ok := doc.containerFor(change.Path)
	if !ok {
		return fmt.Errorf("layout: change path %s does not resolve", change.Path)
	}
	last := change.Path[len(change.Path)-1]
	positions := occurrencePositions(parent, last.FieldNumber)

	switch change.Action {
	case ActionDelete:
		if last.Index < 0 || last.Index >= len(positions) {
			return fmt.Errorf("layout: delete index %d out of range (%d occurrences)", last.Index, len(positions))
		}
		pos := positions[last.Index]
		parent.Fields = append(parent.Fields[:pos], parent.Fields[pos+1:]...)
		return nil

	case ActionInsert:
		fv := change.Value
		fv.FieldNumber = last.FieldNumber
		var pos int
		switch {
		case len(positions) == 0:
			pos = len(parent.Fields)
		case last.Index <= 0:
			pos = positions[0]
		case last.Index >= len(positions):
			pos = positions[len(positions)-1] + 1
		default:
			pos = positions[last.Index]
		}
		tail := append([]wire.FieldValue{}, parent.Fields[pos:]...)
		parent.Fields = append(parent.Fields[:pos], fv)
		parent.Fields = append(parent.Fields, tail...)
		return nil

	case ActionOverwrite:
		fv := change.Value
		fv.FieldNumber = last.FieldNumber
		if last.Index >= 0 && last.Index < len(positions) {
			parent.Fields[positions[last.Index]] = fv
			return nil
		}
		parent.Fields = append(parent.Fields, fv)
		return nil

	default:
		return fmt.Errorf("layout: unknown change action %d", change.Action)
	}
}

func occurrencePositions(msg *wire.MessageValue, fieldNumber int32) []int {
	var out []int
	for i, f := range msg.Fields {
		if f.FieldNumber == fieldNumber {
			out = append(out, i)
		}
	}
	return out
}
