// Package schema parses the textual proto-IDL interface-definition
// files that describe a binary payload's structure, and exposes the
// resulting messages/enums/fields through the descriptor types the wire
// and layout packages consume.
package schema

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// ScalarKind enumerates the primitive wire-level value kinds a field can
// carry, matching spec.md §3's ScalarValue variants.
type ScalarKind int

const (
	ScalarInvalid ScalarKind = iota
	ScalarBool
	ScalarInt32
	ScalarInt64
	ScalarUint32
	ScalarUint64
	ScalarSint32
	ScalarSint64
	ScalarFixed32
	ScalarFixed64
	ScalarSfixed32
	ScalarSfixed64
	ScalarFloat
	ScalarDouble
	ScalarString
	ScalarBytes
	ScalarEnum // typename resolves via Schema.Enum
)

var scalarNames = map[string]ScalarKind{
	"bool":     ScalarBool,
	"int32":    ScalarInt32,
	"int64":    ScalarInt64,
	"uint32":   ScalarUint32,
	"uint64":   ScalarUint64,
	"sint32":   ScalarSint32,
	"sint64":   ScalarSint64,
	"fixed32":  ScalarFixed32,
	"fixed64":  ScalarFixed64,
	"sfixed32": ScalarSfixed32,
	"sfixed64": ScalarSfixed64,
	"float":    ScalarFloat,
	"double":   ScalarDouble,
	"string":   ScalarString,
	"bytes":    ScalarBytes,
}

func (k ScalarKind) String() string {
	for name, kind := range scalarNames {
		if kind == k {
			return name
		}
	}
	if k == ScalarEnum {
		return "enum"
	}
	return "invalid"
}

// IsVarint reports whether the scalar is wire-encoded as a varint,
// relevant to internal/wire's decode dispatch.
func (k ScalarKind) IsVarint() bool {
	switch k {
	case ScalarBool, ScalarInt32, ScalarInt64, ScalarUint32, ScalarUint64,
		ScalarSint32, ScalarSint64, ScalarEnum:
		return true
	default:
		return false
	}
}

func (k ScalarKind) Is32Fixed() bool { return k == ScalarFixed32 || k == ScalarSfixed32 || k == ScalarFloat }
func (k ScalarKind) Is64Fixed() bool { return k == ScalarFixed64 || k == ScalarSfixed64 || k == ScalarDouble }
func (k ScalarKind) IsLengthDelimited() bool {
	return k == ScalarString || k == ScalarBytes
}

// ScalarValue is a typed field value, addressed by whichever member
// applies to the field's ScalarKind. Defined independently of
// internal/wire's identically-shaped ScalarValue: wire already imports
// schema, so schema cannot import wire back without a cycle, and a
// declared field default belongs to the schema, not the wire data.
type ScalarValue struct {
	Bool  bool
	Int   int64  // int32/int64/sint32/sint64/enum
	Uint  uint64 // uint32/uint64/fixed32/fixed64
	Float float64
	Str   string
	Bytes []byte
}

// FieldDescriptor describes one declared field of a message, in
// declaration order.
type FieldDescriptor struct {
	Name         string
	Number       int32
	Repeated     bool
	Scalar       ScalarKind // set when TypeName refers to a scalar
	TypeName     string     // message/enum typename, or the scalar keyword
	IsMessage    bool
	IsMap        bool        // field was declared as map<K,V>; TypeName names the synthesized entry message
	OneofName    string      // non-empty if the field belongs to a oneof group
	Comment      string
	DefaultValue ScalarValue // explicit `[default = ...]`, or the type's zero value otherwise (an enum's first listed variant)

	mapKeyType string // set only while IsMap is true and TypeName has not yet been synthesized
	mapValType string

	// defaultEnumName holds an identifier default (`[default = RED]`)
	// seen while the field's typename could still be an enum or a
	// message; resolveEnumFields resolves it to DefaultValue.Int once
	// the field is confirmed to be an enum, or discards it otherwise.
	defaultEnumName string
}

// EnumDescriptor describes a declared enum type.
type EnumDescriptor struct {
	Name     string
	Variants []EnumVariant
	Comment  string
}

// EnumVariant is one name=number pair of an enum.
type EnumVariant struct {
	Name    string
	Number  int32
	Comment string
}

// NameFor returns the variant name for a wire value, or a synthesized
// "UNKNOWN(n)" label if no variant matches.
func (e *EnumDescriptor) NameFor(v int32) string {
	for _, variant := range e.Variants {
		if variant.Number == v {
			return variant.Name
		}
	}
	return fmt.Sprintf("UNKNOWN(%d)", v)
}

// MessageDescriptor describes a declared message type.
type MessageDescriptor struct {
	Name      string
	Fields    []FieldDescriptor
	Comment   string
	synthetic bool // map-entry messages synthesized during desugaring
}

// FieldByNumber returns the field declared with the given wire field
// number, or nil (which the caller treats as an unknown field to
// preserve verbatim).
func (m *MessageDescriptor) FieldByNumber(n int32) *FieldDescriptor {
	for i := range m.Fields {
		if m.Fields[i].Number == n {
			return &m.Fields[i]
		}
	}
	return nil
}

// Schema is the fully parsed, import-merged set of message and enum
// declarations for one editing session.
type Schema struct {
	messages map[string]*MessageDescriptor
	enums    map[string]*EnumDescriptor
	order    []string // message names, sorted by name after parsing, for stable iteration
}

func newSchema() *Schema {
	return &Schema{messages: map[string]*MessageDescriptor{}, enums: map[string]*EnumDescriptor{}}
}

// Message looks up a message descriptor by name.
func (s *Schema) Message(name string) (*MessageDescriptor, bool) {
	m, ok := s.messages[name]
	return m, ok
}

// Enum looks up an enum descriptor by name.
func (s *Schema) Enum(name string) (*EnumDescriptor, bool) {
	e, ok := s.enums[name]
	return e, ok
}

// Messages returns all non-synthetic message descriptors, sorted by
// name.
func (s *Schema) Messages() []*MessageDescriptor {
	out := make([]*MessageDescriptor, 0, len(s.order))
	for _, name := range s.order {
		if m := s.messages[name]; !m.synthetic {
			out = append(out, m)
		}
	}
	return out
}

// AutoDetectRootMessage implements the original tool's rule: the unique
// message never referenced as another message's field typename (other
// than itself, and excluding synthesized map-entry messages) is the
// root. Returns false if zero or more than one candidate exists.
func (s *Schema) AutoDetectRootMessage() (*MessageDescriptor, bool) {
	allNames := lo.Filter(s.order, func(name string, _ int) bool {
		return !s.messages[name].synthetic
	})
	used := map[string]bool{}
	for _, name := range allNames {
		m := s.messages[name]
		for _, f := range m.Fields {
			if f.IsMessage && f.TypeName != m.Name {
				used[f.TypeName] = true
			}
		}
	}
	candidates := lo.Filter(allNames, func(name string, _ int) bool { return !used[name] })
	if len(candidates) != 1 {
		return nil, false
	}
	return s.messages[candidates[0]], true
}

// GetMessage is the named lookup used when the CLI is given an explicit
// root_message argument; it returns false if the name is unknown
// (including a deliberately unknown synthetic map-entry name).
func (s *Schema) GetMessage(name string) (*MessageDescriptor, bool) {
	m, ok := s.messages[name]
	if ok && m.synthetic {
		return nil, false
	}
	return m, ok
}

func (s *Schema) addMessage(m *MessageDescriptor) {
	if _, exists := s.messages[m.Name]; !exists {
		s.order = append(s.order, m.Name)
	}
	s.messages[m.Name] = m
}

func (s *Schema) addEnum(e *EnumDescriptor) {
	s.enums[e.Name] = e
}

func (s *Schema) sortStable() {
	sort.Strings(s.order)
}

// resolveEnumFields reclassifies fields the parser provisionally marked
// IsMessage whose TypeName actually names an enum rather than a message
// (the parser cannot tell the two apart with one token of lookahead,
// since both are bare identifiers at the field-type position).
func (s *Schema) resolveEnumFields() {
	for _, name := range s.order {
		m := s.messages[name]
		for i := range m.Fields {
			f := &m.Fields[i]
			if !f.IsMessage {
				continue
			}
			e, ok := s.enums[f.TypeName]
			if !ok {
				continue
			}
			f.IsMessage = false
			f.Scalar = ScalarEnum
			// An explicit `[default = NAME]` resolves to that variant's
			// number; absent one, proto2 semantics default an enum to
			// its first listed variant.
			if f.defaultEnumName != "" {
				for _, v := range e.Variants {
					if v.Name == f.defaultEnumName {
						f.DefaultValue.Int = int64(v.Number)
						break
					}
				}
			} else if len(e.Variants) > 0 {
				f.DefaultValue.Int = int64(e.Variants[0].Number)
			}
			f.defaultEnumName = ""
		}
	}
}

// mapEntryName synthesizes the name of the two-field message generated
// for a `map<K,V>` field declaration, following spec.md §6's comma
// convention (also used by AutoDetectRootMessage to recognize and skip
// them).
func mapEntryName(owner, field string) string {
	return owner + "," + field
}
