package layout

import (
	"fmt"

	"github.com/termproto/pbedit/internal/wire"
)

// BytesLayout renders one bytes field occurrence as a hex dump, packing
// as many 8-byte blocks per row as the terminal width allows (or, when
// not even one block fits, as many single bytes as fit). Grounded
// on view.rs's BytesLayout.calc_sizes_internal.
type BytesLayout struct {
	hasValue    bool
	bytesPerLine int
	dataSize    int
}

func NewBytesLayout(hasValue bool) *BytesLayout { return &BytesLayout{hasValue: hasValue} }

func (b *BytesLayout) Kind() LayoutKind { return KindBytes }
func (b *BytesLayout) Amount() int {
	if b.hasValue {
		return 1
	}
	return 0
}

// calcSizesInternal returns (rowCount, bytesPerLine) for a dump of
// b.dataSize bytes given the available width.
func (b *BytesLayout) calcSizesInternal(width, indent int, repeated bool) (int, int) {
	free := width
	free -= indent + 1 // field name column + ':'
	free -= 5           // len("bytes")
	if !b.hasValue {
		free--
	}
	if repeated {
		free--
	}
	if free < 1 {
		free = 1
	}

	blocks := free / (8*3 + 1)
	if blocks > 0 {
		free -= blocks - 1
		blocks = free / (8*3 + 1)
	}

	var bytesOnLine int
	switch {
	case blocks == 0:
		bytesOnLine = (free - 1) / 3
	default:
		if b.dataSize > blocks*8 {
			oneLineLen := blocks*(8*3+1) + 1 + (b.dataSize-blocks*8)*3
			if oneLineLen <= free {
				bytesOnLine = b.dataSize
			} else {
				bytesOnLine = blocks * 8
			}
		} else {
			bytesOnLine = blocks * 8
		}
	}
	if bytesOnLine < 1 {
		bytesOnLine = 1
	}

	height := b.dataSize / bytesOnLine
	if b.dataSize != height*bytesOnLine {
		height++
	}
	if height < 1 {
		height = 1
	}
	return height, bytesOnLine
}

func (b *BytesLayout) dataIndexFromCursor(cursorX, cursorY int) (int, bool) {
	if cursorX == 0 {
		return 0, false
	}
	return cursorX + b.bytesPerLine*cursorY - 1, true
}

func (b *BytesLayout) cursorFromDataIndex(index int) (int, int) {
	y := index / b.bytesPerLine
	x := index % b.bytesPerLine
	return x + 1, y
}

func (b *BytesLayout) CalcSizes(doc *Document, path wire.Path, cfg *Config, width int, neg *IndentNegotiator) int {
	fd, ok := doc.FieldDescriptor(path)
	if !ok {
		return 1
	}
	b.dataSize = 0
	nameLen := len(fd.Name)
	addrLen := 0
	if fv, hasVal := doc.Field(path); hasVal && fv.Scalar != nil {
		b.dataSize = len(fv.Scalar.Bytes)
		addrLen = len(fmt.Sprintf("%x", b.dataSize))
	}
	width1 := nameLen
	if addrLen > width1 {
		width1 = addrLen
	}
	indent := neg.Add(width1, len(path))
	height, bpl := b.calcSizesInternal(width, indent, fd.Repeated)
	b.bytesPerLine = bpl
	return height
}

func (b *BytesLayout) GetScreen(doc *Document, path wire.Path, width, indent int, cfg *Config, cursorX, cursorY int, hasCursor bool) []ScreenLine {
	var lines []ScreenLine
	line := NewScreenLine()

	fd, ok := doc.FieldDescriptor(path)
	if !ok {
		return []ScreenLine{*line}
	}
	line.AddFieldName(fd.Name, indent, cursorX, cursorY, hasCursor)

	selected := -1
	if hasCursor {
		if idx, ok := b.dataIndexFromCursor(cursorX, cursorY); ok {
			selected = idx
		}
	}

	if fv, hasVal := doc.Field(path); hasVal && fv.Scalar != nil {
		data := fv.Scalar.Bytes
		rowIdx := 0
		for i, by := range data {
			if i != 0 {
				if b.bytesPerLine > 0 && i%b.bytesPerLine == 0 {
					line.FixLength(width)
					lines = append(lines, *line)
					rowIdx++
					line = NewScreenLine()
					line.AddValueAddress(fmt.Sprintf("%X", i), indent, cursorX, cursorY, rowIdx, hasCursor)
				} else if b.bytesPerLine > 8 && i&7 == 0 {
					line.AddString(" ", StyleValue)
				}
			}
			style := StyleValue
			if selected == i {
				style = StyleSelectedValue
			}
			line.Cells = append(line.Cells, Cell{Ch: ' ', Style: StyleDivider})
			line.AddString(fmt.Sprintf("%02X", by), style)
		}
	}
	line.FixLength(width)
	lines = append(lines, *line)
	lines[0].AddTypename("bytes", fd.Repeated, !b.hasValue, width)
	return lines
}

func (b *BytesLayout) OnCommand(doc *Document, path wire.Path, cmd UserCommand, cfg *Config, width, indent int, cursorX, cursorY *int) CommandResult {
	fv, hasVal := doc.Field(path)
	switch cmd.Kind {
	case CmdDeleteData:
		if !hasVal || fv.Scalar == nil {
			return CommandResult{Kind: ResultNone}
		}
		index, ok := b.dataIndexFromCursor(*cursorX, *cursorY)
		if !ok || index >= len(fv.Scalar.Bytes) {
			return CommandResult{Kind: ResultNone}
		}
		newBytes := append(append([]byte(nil), fv.Scalar.Bytes[:index]...), fv.Scalar.Bytes[index+1:]...)
		b.dataSize = len(newBytes)
		if b.dataSize > 0 {
			idx := index
			if idx > b.dataSize-1 {
				idx = b.dataSize - 1
			}
			*cursorX, *cursorY = b.cursorFromDataIndex(idx)
		} else {
			*cursorX = 0
		}
		return CommandResult{Kind: ResultChangeData, Change: Change{Path: path, Action: ActionOverwrite, Value: wire.FieldValue{Scalar: &wire.ScalarValue{Bytes: newBytes}}}}
	case CmdInsertData:
		if !hasVal || fv.Scalar == nil {
			return CommandResult{Kind: ResultNone}
		}
		index, ok := b.dataIndexFromCursor(*cursorX, *cursorY)
		if !ok {
			index = -1
		}
		pos := index + 1
		newBytes := make([]byte, 0, len(fv.Scalar.Bytes)+1)
		newBytes = append(newBytes, fv.Scalar.Bytes[:pos]...)
		newBytes = append(newBytes, 0)
		newBytes = append(newBytes, fv.Scalar.Bytes[pos:]...)
		*cursorX, *cursorY = b.cursorFromDataIndex(pos)
		return CommandResult{Kind: ResultChangeData, Change: Change{Path: path, Action: ActionOverwrite, Value: wire.FieldValue{Scalar: &wire.ScalarValue{Bytes: newBytes}}}}
	case CmdScrollHorizontally:
		if cmd.Delta > 0 {
			*cursorX = min(*cursorX+cmd.Delta, b.bytesPerLine)
			if *cursorX+*cursorY*b.bytesPerLine > b.dataSize {
				*cursorX = b.dataSize % b.bytesPerLine
			}
		} else {
			d := min(-cmd.Delta, *cursorX)
			*cursorX -= d
		}
		return CommandResult{Kind: ResultRedraw}
	case CmdHome:
		if *cursorX == 1 {
			*cursorX = 0
		} else {
			*cursorX = 1
		}
		return CommandResult{Kind: ResultRedraw}
	case CmdEnd:
		*cursorX = b.bytesPerLine
		idx, _ := b.dataIndexFromCursor(max(*cursorX, 1), *cursorY)
		if b.dataSize > 0 {
			if idx > b.dataSize-1 {
				idx = b.dataSize - 1
			}
			*cursorX, *cursorY = b.cursorFromDataIndex(idx)
		}
		return CommandResult{Kind: ResultRedraw}
	default:
		return CommandResult{Kind: ResultNone}
	}
}

func (b *BytesLayout) ConsumedFields(doc *Document, path wire.Path, cfg *Config) map[int32]bool { return nil }

func (b *BytesLayout) StatusText(cursorX, cursorY int) string {
	if idx, ok := b.dataIndexFromCursor(cursorX, cursorY); ok {
		return fmt.Sprintf("%d/%d", idx, b.dataSize)
	}
	return ""
}
