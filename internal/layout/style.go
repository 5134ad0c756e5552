package layout

import (
	"strings"
)

// TextStyle tags one character cell with the semantic role the Renderer
// maps to a terminal color/attribute, per spec.md §4.6. Kept as a closed
// enum rather than a raw color so internal/render owns the actual
// lipgloss.Style choices and this package stays terminal-agnostic.
type TextStyle int

const (
	StyleComment TextStyle = iota
	StyleBinary
	StyleFilename
	StyleFieldName
	StyleSelectedFieldName
	StyleFieldIndex
	StyleSelectedFieldIndex
	StyleValue
	StyleSelectedValue
	StyleDefaultValue
	StyleDataSize
	StyleTypename
	StyleSelectedTypename
	StyleDivider
	StyleTopLine
	StyleUnknown
)

// marginLeft/marginRight are the fixed single-column gutters either side
// of the first ("field name"/"address") column, named identically to
// the constants in the original source.
const (
	marginLeft  = 1
	marginRight = 1
)

// Cell is one rendered character together with its style tag.
type Cell struct {
	Ch    rune
	Style TextStyle
}

// ScreenLine is one row of styled cells, built up field by field and
// finally padded/truncated to the frame width with FixLength.
type ScreenLine struct {
	Cells []Cell
}

func NewScreenLine() *ScreenLine { return &ScreenLine{} }

func (l *ScreenLine) AddString(text string, style TextStyle) {
	for _, r := range text {
		l.Cells = append(l.Cells, Cell{Ch: r, Style: style})
	}
}

// AddFieldName renders the first column: the field's declared name,
// right-aligned to indent, highlighted when the cursor sits on it
// (cursorX == 0 and cursorY == cursorPos).
func (l *ScreenLine) AddFieldName(name string, indent int, cursorX, cursorY int, hasCursor bool) {
	l.addFirstColumnItem([2]TextStyle{StyleFieldName, StyleSelectedFieldName}, name, indent, cursorX, cursorY, 0, hasCursor)
}

// AddValueAddress renders the first column of a continuation row: a
// repeated-value index or a wrapped-string line number.
func (l *ScreenLine) AddValueAddress(text string, indent, cursorX, cursorY, thisRow int, hasCursor bool) {
	l.addFirstColumnItem([2]TextStyle{StyleFieldIndex, StyleSelectedFieldIndex}, text, indent, cursorX, cursorY, thisRow, hasCursor)
}

func (l *ScreenLine) addFirstColumnItem(styles [2]TextStyle, text string, indent, cursorX, cursorY, thisRow int, hasCursor bool) {
	selected := hasCursor && cursorX == 0 && cursorY == thisRow
	if selected {
		pad := indent - len([]rune(text))
		for i := 1; i < pad; i++ {
			l.Cells = append(l.Cells, Cell{Ch: ' ', Style: styles[0]})
		}
		l.Cells = append(l.Cells, Cell{Ch: ' ', Style: styles[1]})
		l.AddString(text, styles[1])
		l.Cells = append(l.Cells, Cell{Ch: ':', Style: styles[1]})
	} else {
		padded := rightAlign(text, indent)
		l.AddString(padded, styles[0])
		l.Cells = append(l.Cells, Cell{Ch: ':', Style: StyleDivider})
	}
}

func rightAlign(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

// AddFieldSize appends the "... N" decoration used on a collapsed
// message row showing how many bytes/fields it holds.
func (l *ScreenLine) AddFieldSize(value int) {
	l.AddString(" ... ", StyleDataSize)
	l.AddString(itoa(value), StyleDataSize)
}

// AddTypename right-aligns the scalar/message type name against the
// available width, dimming it (prefixing '-') when the field carries no
// data and appending '*' when the field is repeated.
func (l *ScreenLine) AddTypename(typeName string, repeated, empty bool, screenWidth int) {
	text := typeName
	if repeated {
		text += "*"
	}
	if empty {
		text = "-" + text
	}
	maxAllowed := screenWidth - marginRight - len([]rune(text))
	if len(l.Cells) > maxAllowed && maxAllowed >= 0 {
		l.Cells = l.Cells[:maxAllowed]
	}
	width := screenWidth - marginRight - len(l.Cells)
	l.AddString(rightAlign(text, width), StyleTypename)
	for i := 0; i < marginRight; i++ {
		l.Cells = append(l.Cells, Cell{Ch: ' ', Style: StyleTypename})
	}
}

// FixLength pads with divider spaces or truncates to exactly width
// cells, so every row in a frame is the same length for the renderer.
func (l *ScreenLine) FixLength(width int) {
	switch {
	case len(l.Cells) < width:
		for len(l.Cells) < width {
			l.Cells = append(l.Cells, Cell{Ch: ' ', Style: StyleDivider})
		}
	case len(l.Cells) > width:
		l.Cells = l.Cells[:width]
	}
}

func (l *ScreenLine) String() string {
	var sb strings.Builder
	for _, c := range l.Cells {
		sb.WriteRune(c.Ch)
	}
	return sb.String()
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf []byte
	for v > 0 {
		buf = append([]byte{byte('0' + v%10)}, buf...)
		v /= 10
	}
	if neg {
		buf = append([]byte{'-'}, buf...)
	}
	return string(buf)
}

// CommentVisibility controls whether/how a field's schema-level doc
// comment is shown, cycled by the CommentsVisibility command (hotkey F6).
type CommentVisibility int

const (
	CommentsHidden CommentVisibility = iota
	CommentsInline
	CommentsMultiline
)

func (c CommentVisibility) Next() CommentVisibility {
	switch c {
	case CommentsHidden:
		return CommentsInline
	case CommentsInline:
		return CommentsMultiline
	default:
		return CommentsHidden
	}
}

// FieldOrder selects how sibling fields of a message are sequenced for
// display, cycled forward with F4 and backward with Shift+F4.
type FieldOrder int

const (
	OrderProto FieldOrder = iota // declaration order (default)
	OrderWire                    // order fields first appear on the wire
	OrderByName
	OrderByID
)

func (f FieldOrder) Next() FieldOrder {
	switch f {
	case OrderProto:
		return OrderWire
	case OrderWire:
		return OrderByName
	case OrderByName:
		return OrderByID
	default:
		return OrderProto
	}
}

func (f FieldOrder) Prev() FieldOrder {
	switch f {
	case OrderProto:
		return OrderByID
	case OrderWire:
		return OrderProto
	case OrderByName:
		return OrderWire
	default:
		return OrderByName
	}
}

func (f FieldOrder) Letter() rune {
	switch f {
	case OrderProto:
		return 'P'
	case OrderWire:
		return 'W'
	case OrderByName:
		return 'N'
	default:
		return 'I'
	}
}
