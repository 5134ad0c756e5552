package layout

import (
	"github.com/termproto/pbedit/internal/wire"
)

// TableLayout is the documented extension point from Open Question (c):
// a future alternate rendering of a repeated message field as a grid of
// columns, one row per occurrence. It is not wired into LayoutList's
// construction yet (no field type currently selects it), but the
// variant exists so a future "tabular view" command has somewhere to
// land without changing the FieldLayout interface. Until then it
// behaves exactly like a collapsed MessageLayout: height 1, same
// header rendering.
type TableLayout struct {
	hasValue bool
}

func NewTableLayout(hasValue bool) *TableLayout { return &TableLayout{hasValue: hasValue} }

func (t *TableLayout) Kind() LayoutKind { return KindTable }
func (t *TableLayout) Amount() int {
	if t.hasValue {
		return 1
	}
	return 0
}

func (t *TableLayout) CalcSizes(doc *Document, path wire.Path, cfg *Config, width int, neg *IndentNegotiator) int {
	fd, ok := doc.FieldDescriptor(path)
	if ok {
		neg.Add(len(fd.Name), len(path))
	}
	return 1
}

func (t *TableLayout) GetScreen(doc *Document, path wire.Path, width, indent int, cfg *Config, cursorX, cursorY int, hasCursor bool) []ScreenLine {
	line := NewScreenLine()
	fd, ok := doc.FieldDescriptor(path)
	if !ok {
		return []ScreenLine{*line}
	}
	line.AddFieldName(fd.Name, indent, cursorX, cursorY, hasCursor)
	line.AddTypename(fd.TypeName, fd.Repeated, !t.hasValue, width)
	line.FixLength(width)
	return []ScreenLine{*line}
}

func (t *TableLayout) OnCommand(doc *Document, path wire.Path, cmd UserCommand, cfg *Config, width, indent int, cursorX, cursorY *int) CommandResult {
	return CommandResult{Kind: ResultNone}
}

func (t *TableLayout) ConsumedFields(doc *Document, path wire.Path, cfg *Config) map[int32]bool { return nil }

func (t *TableLayout) StatusText(cursorX, cursorY int) string { return "" }
