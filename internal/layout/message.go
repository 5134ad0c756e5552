package layout

import (
	"github.com/termproto/pbedit/internal/wire"
)

// MessageLayout is the expanded header row for a message-typed field:
// a single line naming the field and its message type, with the
// field's own fields following as further Records in the list.
// Grounded on view.rs's MessageLayout.
type MessageLayout struct {
	hasValue bool
}

func NewMessageLayout(hasValue bool) *MessageLayout { return &MessageLayout{hasValue: hasValue} }

func (m *MessageLayout) Kind() LayoutKind { return KindMessage }
func (m *MessageLayout) Amount() int {
	if m.hasValue {
		return 1
	}
	return 0
}

func (m *MessageLayout) CalcSizes(doc *Document, path wire.Path, cfg *Config, width int, neg *IndentNegotiator) int {
	fd, ok := doc.FieldDescriptor(path)
	if ok {
		neg.Add(len(fd.Name), len(path))
	}
	return 1
}

func (m *MessageLayout) GetScreen(doc *Document, path wire.Path, width, indent int, cfg *Config, cursorX, cursorY int, hasCursor bool) []ScreenLine {
	line := NewScreenLine()
	fd, ok := doc.FieldDescriptor(path)
	if !ok {
		return []ScreenLine{*line}
	}
	line.AddFieldName(fd.Name, indent, cursorX, cursorY, hasCursor)
	line.AddTypename(fd.TypeName, fd.Repeated, !m.hasValue, width)
	line.FixLength(width)
	return []ScreenLine{*line}
}

func (m *MessageLayout) OnCommand(doc *Document, path wire.Path, cmd UserCommand, cfg *Config, width, indent int, cursorX, cursorY *int) CommandResult {
	switch cmd.Kind {
	case CmdCollapsedToggle:
		return CommandResult{Kind: ResultCollapse}
	case CmdDeleteData:
		return CommandResult{Kind: ResultChangeData, Change: Change{Path: path, Action: ActionDelete}}
	case CmdInsertData:
		fd, _ := doc.FieldDescriptor(path)
		return CommandResult{Kind: ResultChangeData, Change: Change{Path: path, Action: ActionOverwrite, Value: defaultFieldValue(fd)}}
	default:
		return CommandResult{Kind: ResultNone}
	}
}

// ConsumedFields is empty: a MessageLayout renders only its own field's
// header row, its children appear as their own sibling Records.
func (m *MessageLayout) ConsumedFields(doc *Document, path wire.Path, cfg *Config) map[int32]bool { return nil }

func (m *MessageLayout) StatusText(cursorX, cursorY int) string { return "" }
