package layout

import (
	"github.com/termproto/pbedit/internal/wire"
)

// CollapsedLayout is the placeholder row LayoutList uses for a
// message-typed field it hasn't expanded yet: one line, no child
// Records materialized, until a CmdCollapsedToggle/Enter command
// replaces it in place with a MessageLayout header plus its children.
// Grounded on view.rs's CollapsedLayout and the lazy-expansion model
// described for C3.
type CollapsedLayout struct {
	hasValue bool
}

func NewCollapsedLayout(hasValue bool) *CollapsedLayout { return &CollapsedLayout{hasValue: hasValue} }

func (c *CollapsedLayout) Kind() LayoutKind { return KindCollapsed }
func (c *CollapsedLayout) Amount() int {
	if c.hasValue {
		return 1
	}
	return 0
}

func (c *CollapsedLayout) CalcSizes(doc *Document, path wire.Path, cfg *Config, width int, neg *IndentNegotiator) int {
	fd, ok := doc.FieldDescriptor(path)
	if ok {
		neg.Add(len(fd.Name), len(path))
	}
	return 1
}

func (c *CollapsedLayout) GetScreen(doc *Document, path wire.Path, width, indent int, cfg *Config, cursorX, cursorY int, hasCursor bool) []ScreenLine {
	line := NewScreenLine()
	fd, ok := doc.FieldDescriptor(path)
	if !ok {
		return []ScreenLine{*line}
	}
	line.AddFieldName(fd.Name, indent, cursorX, cursorY, hasCursor)

	if c.hasValue {
		if sub, ok := doc.Submessage(path); ok {
			line.AddFieldSize(len(sub.Fields))
		}
	}
	line.AddTypename(fd.TypeName, fd.Repeated, !c.hasValue, width)
	line.FixLength(width)
	return []ScreenLine{*line}
}

func (c *CollapsedLayout) OnCommand(doc *Document, path wire.Path, cmd UserCommand, cfg *Config, width, indent int, cursorX, cursorY *int) CommandResult {
	switch cmd.Kind {
	case CmdCollapsedToggle:
		if !c.hasValue {
			return CommandResult{Kind: ResultNone}
		}
		return CommandResult{Kind: ResultExpand}
	case CmdDeleteData:
		return CommandResult{Kind: ResultChangeData, Change: Change{Path: path, Action: ActionDelete}}
	case CmdInsertData:
		fd, _ := doc.FieldDescriptor(path)
		return CommandResult{Kind: ResultChangeData, Change: Change{Path: path, Action: ActionOverwrite, Value: defaultFieldValue(fd)}}
	default:
		return CommandResult{Kind: ResultNone}
	}
}

func (c *CollapsedLayout) ConsumedFields(doc *Document, path wire.Path, cfg *Config) map[int32]bool { return nil }

func (c *CollapsedLayout) StatusText(cursorX, cursorY int) string { return "" }
