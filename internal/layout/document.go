package layout

import (
	"github.com/termproto/pbedit/internal/schema"
	"github.com/termproto/pbedit/internal/wire"
)

// Document couples a decoded MessageValue tree to the Schema that
// describes it, giving FieldLayout implementations the combined
// data+descriptor lookups the original's MessageData provided (it kept
// a reference to the owning ProtoData alongside the decoded bytes).
type Document struct {
	Schema   *schema.Schema
	RootDesc *schema.MessageDescriptor
	Root     *wire.MessageValue
}

// FieldPos names one field slot within a message: its wire number and
// how many occurrences are present (0 for a declared-but-absent field,
// which still gets a one-row placeholder showing the default value).
type FieldPos struct {
	Desc   *schema.FieldDescriptor
	Amount int
}

// descriptorFor resolves the MessageDescriptor that owns path's last
// element by walking every preceding element's declared message type.
func (d *Document) descriptorFor(path wire.Path) (*schema.MessageDescriptor, bool) {
	desc := d.RootDesc
	for i := 0; i < len(path)-1; i++ {
		fd := desc.FieldByNumber(path[i].FieldNumber)
		if fd == nil || !fd.IsMessage {
			return nil, false
		}
		nested, ok := d.Schema.Message(fd.TypeName)
		if !ok {
			return nil, false
		}
		desc = nested
	}
	return desc, true
}

// FieldDescriptor returns the schema declaration for the field path
// addresses (ignoring the occurrence index), or false if path's field
// number is not declared (an unknown/raw occurrence).
func (d *Document) FieldDescriptor(path wire.Path) (*schema.FieldDescriptor, bool) {
	if len(path) == 0 {
		return nil, false
	}
	owner, ok := d.descriptorFor(path)
	if !ok {
		return nil, false
	}
	fd := owner.FieldByNumber(path[len(path)-1].FieldNumber)
	if fd == nil {
		return nil, false
	}
	return fd, true
}

// Field resolves the FieldValue occurrence path addresses.
func (d *Document) Field(path wire.Path) (*wire.FieldValue, bool) {
	fv, _, ok := wire.Resolve(d.Root, path)
	return fv, ok && fv != nil
}

// Submessage returns the MessageValue path addresses (path must resolve
// to a message-typed occurrence).
func (d *Document) Submessage(path wire.Path) (*wire.MessageValue, bool) {
	fv, ok := d.Field(path)
	if !ok || fv.Message == nil {
		return nil, false
	}
	return fv.Message, true
}

// containerFor returns the MessageValue that directly contains path's
// last element (path[:len(path)-1] resolved), or the document root for
// a top-level path.
func (d *Document) containerFor(path wire.Path) (*wire.MessageValue, bool) {
	if len(path) <= 1 {
		return d.Root, true
	}
	return d.Submessage(path[:len(path)-1])
}

// SortedFields enumerates msgDesc's declared fields, grouped by field
// number and ordered per order; raw/unknown field numbers present in msg
// but absent from the schema are not listed. Each entry carries how many
// occurrences msg actually holds.
func SortedFields(msg *wire.MessageValue, msgDesc *schema.MessageDescriptor, order FieldOrder) []FieldPos {
	declared := msgDesc.Fields
	out := make([]FieldPos, 0, len(declared))
	for i := range declared {
		fd := &declared[i]
		out = append(out, FieldPos{Desc: fd, Amount: msg.FieldCount(fd.Number)})
	}

	switch order {
	case OrderByName:
		sortFieldPos(out, func(a, b FieldPos) bool { return a.Desc.Name < b.Desc.Name })
	case OrderByID:
		sortFieldPos(out, func(a, b FieldPos) bool { return a.Desc.Number < b.Desc.Number })
	case OrderWire:
		firstSeen := map[int32]int{}
		for i, f := range msg.Fields {
			if _, ok := firstSeen[f.FieldNumber]; !ok {
				firstSeen[f.FieldNumber] = i
			}
		}
		// Fields never encountered on the wire are dropped entirely in
		// this order (spec.md §8 S6): Wire ordering reflects what the
		// message actually contains, not the schema's full field set.
		present := out[:0]
		for _, fp := range out {
			if fp.Amount > 0 {
				present = append(present, fp)
			}
		}
		out = present
		pos := func(fp FieldPos) int { return firstSeen[fp.Desc.Number] }
		sortFieldPos(out, func(a, b FieldPos) bool { return pos(a) < pos(b) })
	case OrderProto:
		// declaration order, already the slice order
	}
	return out
}

func sortFieldPos(s []FieldPos, less func(a, b FieldPos) bool) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
