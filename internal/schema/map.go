package schema

import "github.com/samber/lo"

// desugarMaps rewrites every `map<K,V>` field recorded by the parser
// (marked IsMap with mapKeyType/mapValType set and TypeName empty) into a
// reference to a synthesized two-field message named "<Owner>,<field>",
// per spec.md §6. The comma in the synthesized name can never collide
// with a user-declared identifier (proto identifiers cannot contain a
// comma). The synthesized messages are flagged synthetic, which is what
// AutoDetectRootMessage and GetMessage use to skip them.
func desugarMaps(s *Schema) error {
	owners := lo.Filter(s.order, func(name string, _ int) bool { return !s.messages[name].synthetic })
	for _, ownerName := range owners {
		owner := s.messages[ownerName]
		for i := range owner.Fields {
			f := &owner.Fields[i]
			if !f.IsMap || f.TypeName != "" {
				continue
			}
			entryName := mapEntryName(owner.Name, f.Name)
			entry := &MessageDescriptor{Name: entryName, synthetic: true}
			keyField := FieldDescriptor{Name: "key", Number: 1}
			if kind, ok := scalarNames[f.mapKeyType]; ok {
				keyField.Scalar = kind
				keyField.TypeName = f.mapKeyType
			} else {
				keyField.TypeName = f.mapKeyType
				keyField.IsMessage = true
			}
			valField := FieldDescriptor{Name: "value", Number: 2}
			if kind, ok := scalarNames[f.mapValType]; ok {
				valField.Scalar = kind
				valField.TypeName = f.mapValType
			} else {
				valField.TypeName = f.mapValType
				valField.IsMessage = true
			}
			entry.Fields = []FieldDescriptor{keyField, valField}
			s.addMessage(entry)
			f.TypeName = entryName
		}
	}
	return nil
}
