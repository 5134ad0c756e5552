package layout

import (
	"fmt"
	"math"

	"github.com/mattn/go-runewidth"

	"github.com/termproto/pbedit/internal/schema"
	"github.com/termproto/pbedit/internal/wire"
)

// ScalarLayout renders one or more occurrences of a non-string,
// non-bytes scalar field (bool/int/enum/float/...), word-wrapping
// values across continuation rows when they don't fit on one line.
// Grounded on view.rs's ScalarLayout.
type ScalarLayout struct {
	amount   int
	lineLens []int // how many values are packed onto each screen row
}

func NewScalarLayout(amount int) *ScalarLayout { return &ScalarLayout{amount: amount} }

func (s *ScalarLayout) Kind() LayoutKind { return KindScalar }
func (s *ScalarLayout) Amount() int      { return s.amount }

const scalarMargin = marginLeft + marginRight

func scalarToString(sv *wire.ScalarValue, fd *schema.FieldDescriptor, doc *Document) string {
	if fd.Scalar == schema.ScalarEnum {
		if e, ok := doc.Schema.Enum(fd.TypeName); ok {
			return e.NameFor(int32(sv.Int))
		}
		return fmt.Sprintf("?%d", sv.Int)
	}
	switch fd.Scalar {
	case schema.ScalarBool:
		if sv.Bool {
			return "true"
		}
		return "false"
	case schema.ScalarFloat, schema.ScalarDouble:
		if sv.Float == math.Trunc(sv.Float) && !math.IsInf(sv.Float, 0) {
			return fmt.Sprintf("%.1f", sv.Float)
		}
		return fmt.Sprintf("%g", sv.Float)
	case schema.ScalarUint32, schema.ScalarUint64, schema.ScalarFixed32, schema.ScalarFixed64:
		return fmt.Sprintf("%d", sv.Uint)
	default:
		return fmt.Sprintf("%d", sv.Int)
	}
}

func (s *ScalarLayout) getLineLens(width int, fd *schema.FieldDescriptor, container *wire.MessageValue, doc *Document) []int {
	avail := width - scalarMargin
	if fd.Repeated {
		avail--
	}
	avail -= runewidth.StringWidth(fd.TypeName)

	var lens []int
	curLen := 0
	count := 0
	for i := 0; i < s.amount; i++ {
		fv := container.NthOccurrence(fd.Number, i)
		if fv == nil || fv.Scalar == nil {
			continue
		}
		str := scalarToString(fv.Scalar, fd, doc)
		l := runewidth.StringWidth(str) + 1
		curLen += l
		count++
		if curLen >= avail {
			lens = append(lens, count-1)
			count = 1
			curLen = l
			avail = width - scalarMargin
		}
	}
	if count > 0 {
		lens = append(lens, count)
	}
	if len(lens) == 0 {
		lens = []int{0}
	}
	return lens
}

func (s *ScalarLayout) CalcSizes(doc *Document, path wire.Path, cfg *Config, width int, neg *IndentNegotiator) int {
	fd, ok := doc.FieldDescriptor(path)
	if !ok {
		return 1
	}
	indent := neg.Add(len(fd.Name), len(path))

	lineCount := 1
	if s.amount > 0 {
		container, ok := doc.containerFor(path)
		if ok {
			s.lineLens = s.getLineLens(width-indent, fd, container, doc)
			lineCount = len(s.lineLens)
		}
	}
	if lineCount < 1 {
		lineCount = 1
	}
	return lineCount
}

func (s *ScalarLayout) dataIndexAtCursor(cursorX, cursorY int) int {
	if cursorX == 0 {
		return -1
	}
	sum := 0
	for i := 0; i < cursorY && i < len(s.lineLens); i++ {
		sum += s.lineLens[i]
	}
	return sum + cursorX - 1
}

func (s *ScalarLayout) cursorAtDataIndex(index int) (int, int) {
	sum := 0
	for i, l := range s.lineLens {
		if sum+l > index {
			return index - sum + 1, i
		}
		sum += l
	}
	return 0, len(s.lineLens)
}

func (s *ScalarLayout) GetScreen(doc *Document, path wire.Path, width, indent int, cfg *Config, cursorX, cursorY int, hasCursor bool) []ScreenLine {
	var lines []ScreenLine
	line := NewScreenLine()

	fd, ok := doc.FieldDescriptor(path)
	if !ok {
		return []ScreenLine{*line}
	}
	line.AddFieldName(fd.Name, indent, cursorX, cursorY, hasCursor)

	selected := -1
	if hasCursor {
		selected = s.dataIndexAtCursor(cursorX, cursorY)
	}

	if s.amount == 0 {
		line.Cells = append(line.Cells, Cell{Ch: ' ', Style: StyleDivider})
		style := StyleDefaultValue
		if selected == 0 {
			style = StyleSelectedValue
		}
		line.AddString(scalarToString(defaultScalarValue(fd), fd, doc), style)
	} else {
		container, _ := doc.containerFor(path)
		curLen := 0
		avail := width - indent - scalarMargin
		if fd.Repeated {
			avail--
		}
		avail -= runewidth.StringWidth(fd.TypeName)
		rowIdx := 0
		for i := 0; i < s.amount; i++ {
			fv := container.NthOccurrence(fd.Number, i)
			if fv == nil || fv.Scalar == nil {
				continue
			}
			str := scalarToString(fv.Scalar, fd, doc)
			l := runewidth.StringWidth(str) + 1
			curLen += l
			if curLen >= avail && len(line.Cells) > 0 && i > 0 && rowIdx < len(s.lineLens)-1 {
				lines = append(lines, *line)
				rowIdx++
				line = NewScreenLine()
				line.AddValueAddress(fmt.Sprintf("%d", i), indent, cursorX, cursorY, rowIdx, hasCursor)
				curLen = l
				avail = width - indent - scalarMargin
			}
			style := StyleValue
			if selected == i {
				style = StyleSelectedValue
			}
			line.Cells = append(line.Cells, Cell{Ch: ' ', Style: StyleDivider})
			line.AddString(str, style)
		}
	}

	line.AddTypename(fd.TypeName, fd.Repeated, s.amount == 0, width)
	line.FixLength(width)
	lines = append(lines, *line)
	return lines
}

func (s *ScalarLayout) OnCommand(doc *Document, path wire.Path, cmd UserCommand, cfg *Config, width, indent int, cursorX, cursorY *int) CommandResult {
	switch cmd.Kind {
	case CmdDeleteData:
		index := s.dataIndexAtCursor(*cursorX, *cursorY)
		if index < 0 {
			return CommandResult{Kind: ResultNone}
		}
		if s.amount > 0 && index > 0 && index == s.amount-1 {
			*cursorX, *cursorY = s.cursorAtDataIndex(index - 1)
		}
		last := path[len(path)-1]
		target := append(append(wire.Path{}, path[:len(path)-1]...), wire.PathElem{FieldNumber: last.FieldNumber, Index: last.Index + index})
		s.lineLens = nil
		return CommandResult{Kind: ResultChangeData, Change: Change{Path: target, Action: ActionDelete}}
	case CmdInsertData:
		index := s.dataIndexAtCursor(*cursorX, *cursorY)
		if index < 0 {
			index = -1
		}
		last := path[len(path)-1]
		target := append(append(wire.Path{}, path[:len(path)-1]...), wire.PathElem{FieldNumber: last.FieldNumber, Index: last.Index + index + 1})
		*cursorX, *cursorY = s.cursorAtDataIndex(index + 1)
		s.lineLens = nil
		fd, _ := doc.FieldDescriptor(path)
		return CommandResult{Kind: ResultChangeData, Change: Change{Path: target, Action: ActionInsert, Value: defaultFieldValue(fd)}}
	case CmdScrollHorizontally:
		if *cursorY < len(s.lineLens) {
			l := s.lineLens[*cursorY]
			if cmd.Delta > 0 {
				*cursorX = min(*cursorX+cmd.Delta, l)
			} else {
				d := min(-cmd.Delta, *cursorX)
				*cursorX -= d
			}
			return CommandResult{Kind: ResultRedraw}
		}
		return CommandResult{Kind: ResultNone}
	case CmdHome:
		if *cursorX == 1 {
			*cursorX = 0
		} else {
			*cursorX = 1
		}
		return CommandResult{Kind: ResultRedraw}
	case CmdEnd:
		if *cursorY < len(s.lineLens) {
			*cursorX = s.lineLens[*cursorY]
		}
		return CommandResult{Kind: ResultRedraw}
	default:
		return CommandResult{Kind: ResultNone}
	}
}

func (s *ScalarLayout) ConsumedFields(doc *Document, path wire.Path, cfg *Config) map[int32]bool { return nil }

func (s *ScalarLayout) StatusText(cursorX, cursorY int) string {
	if idx := s.dataIndexAtCursor(cursorX, cursorY); idx >= 0 {
		return fmt.Sprintf("%d/%d", idx, s.amount)
	}
	return fmt.Sprintf("/%d", s.amount)
}

func defaultFieldValue(fd *schema.FieldDescriptor) wire.FieldValue {
	if fd == nil {
		return wire.FieldValue{}
	}
	if fd.IsMessage {
		return wire.FieldValue{Message: &wire.MessageValue{TypeName: fd.TypeName}}
	}
	return wire.FieldValue{Scalar: defaultScalarValue(fd)}
}

// defaultScalarValue converts a field's declared schema.ScalarValue
// default into the identically-shaped wire.ScalarValue the rest of
// this package renders and inserts, bridging the two packages' default
// value representations (schema cannot import wire; see ScalarValue's
// doc comment in schema.go).
func defaultScalarValue(fd *schema.FieldDescriptor) *wire.ScalarValue {
	if fd == nil {
		return &wire.ScalarValue{}
	}
	d := fd.DefaultValue
	return &wire.ScalarValue{Bool: d.Bool, Int: d.Int, Uint: d.Uint, Float: d.Float, Str: d.Str, Bytes: d.Bytes}
}
