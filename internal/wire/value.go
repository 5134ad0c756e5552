// Package wire decodes and re-encodes Protocol Buffers binary payloads
// into/from the in-memory MessageValue tree that internal/layout renders
// and edits, directed by an internal/schema.Schema.
package wire

import "fmt"

// PathElem identifies one step from a message down into one occurrence
// of one of its fields, per spec.md §3: Path = ordered (field_id, index)
// pairs.
type PathElem struct {
	FieldNumber int32
	Index       int // occurrence index among repeated/unknown occurrences sharing FieldNumber
}

// Path addresses a single FieldValue occurrence from the document root.
type Path []PathElem

func (p Path) String() string {
	s := ""
	for _, e := range p {
		s += fmt.Sprintf("/%d[%d]", e.FieldNumber, e.Index)
	}
	return s
}

// Equal reports structural equality, used by tests and by change
// application to locate the mutated node.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Parent returns the path with its last element removed, and ok=false
// for the root path.
func (p Path) Parent() (Path, bool) {
	if len(p) == 0 {
		return nil, false
	}
	return p[:len(p)-1], true
}

// ScalarValue holds one decoded primitive value. Exactly one field is
// meaningful, selected by Kind (schema.ScalarKind).
type ScalarValue struct {
	Bool   bool
	Int    int64   // int32/int64/sint32/sint64/enum
	Uint   uint64  // uint32/uint64/fixed32/fixed64
	Float  float64 // float/double, widened
	Str    string
	Bytes  []byte
}

// FieldValue is one occurrence of a field within a MessageValue: either
// a scalar leaf or a nested message.
type FieldValue struct {
	FieldNumber int32
	Scalar      *ScalarValue  // non-nil for scalar occurrences
	Message     *MessageValue // non-nil for message occurrences
	RawUnknown  []byte        // set when the field number is absent from the schema; preserves the raw LEN/varint/fixed payload verbatim
	WireType    int           // protowire.Type of RawUnknown, meaningful only when RawUnknown != nil
}

// MessageValue is a decoded message: a flat, wire-order list of field
// occurrences. Repeated fields contribute multiple
// FieldValue entries sharing FieldNumber; map fields are represented as
// repeated occurrences of the synthesized entry message exactly like any
// other repeated message field.
type MessageValue struct {
	TypeName string
	Fields   []FieldValue
}

// FieldCount returns how many occurrences of fieldNumber are present,
// used by LayoutList to compute sibling_count.
func (m *MessageValue) FieldCount(fieldNumber int32) int {
	n := 0
	for _, f := range m.Fields {
		if f.FieldNumber == fieldNumber {
			n++
		}
	}
	return n
}

// NthOccurrence returns the index-th occurrence (0-based, in storage
// order) of fieldNumber, or nil if out of range.
func (m *MessageValue) NthOccurrence(fieldNumber int32, index int) *FieldValue {
	seen := 0
	for i := range m.Fields {
		if m.Fields[i].FieldNumber == fieldNumber {
			if seen == index {
				return &m.Fields[i]
			}
			seen++
		}
	}
	return nil
}

// Resolve walks path from root and returns the addressed FieldValue.
func Resolve(root *MessageValue, path Path) (*FieldValue, *MessageValue, bool) {
	if len(path) == 0 {
		return nil, root, true
	}
	cur := root
	var fv *FieldValue
	for i, elem := range path {
		fv = cur.NthOccurrence(elem.FieldNumber, elem.Index)
		if fv == nil {
			return nil, nil, false
		}
		if i < len(path)-1 {
			if fv.Message == nil {
				return nil, nil, false
			}
			cur = fv.Message
		}
	}
	return fv, cur, true
}
