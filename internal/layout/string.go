package layout

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/termproto/pbedit/internal/wire"
)

// StringLayout renders a single string field occurrence, word-wrapping
// (actually grapheme-wrapping: never splitting inside a multi-rune
// cluster) across continuation rows. Grounded on view.rs's StringLayout;
// the wrap boundary itself is computed with rivo/uniseg rather than raw
// byte slicing so multi-byte runes are never split mid-codepoint.
type StringLayout struct {
	hasValue bool
}

func NewStringLayout(hasValue bool) *StringLayout { return &StringLayout{hasValue: hasValue} }

func (s *StringLayout) Kind() LayoutKind { return KindString }
func (s *StringLayout) Amount() int {
	if s.hasValue {
		return 1
	}
	return 0
}

// stringFirstRowMargin/stringContinuationMargin resolve spec.md §4.2.2's
// Open Question (b): the first screen row reserves 8+left+right columns
// for the "typename" decoration that trails it, continuation rows only
// reserve a 3-column gutter for the wrapped-line marker.
const (
	stringFirstRowMargin     = 8 + marginLeft + marginRight
	stringContinuationMargin = 3
)

type stringChunk struct {
	text       string
	lineStart1 bool // true for the first chunk of a newline-delimited source line
}

func (s *StringLayout) getLinesFormatted(width, indent int, repeated bool, text string) []stringChunk {
	var out []stringChunk
	avail := width - indent - stringFirstRowMargin
	if repeated {
		avail--
	}
	if !s.hasValue {
		avail--
	}

	for _, srcLine := range strings.Split(text, "\n") {
		remaining := srcLine
		first := true
		for {
			chunk, rest := takeGraphemes(remaining, avail)
			out = append(out, stringChunk{text: chunk, lineStart1: first})
			avail = width - indent - stringContinuationMargin
			if rest == "" {
				break
			}
			remaining = rest
			first = false
		}
	}
	if len(out) == 0 {
		out = append(out, stringChunk{text: "", lineStart1: true})
	}
	return out
}

// takeGraphemes splits s into a prefix whose display width fits within
// maxWidth (never splitting a grapheme cluster) and the remainder.
func takeGraphemes(s string, maxWidth int) (string, string) {
	if maxWidth <= 0 {
		return "", s
	}
	var b strings.Builder
	width := 0
	rest := s
	state := -1
	for len(rest) > 0 {
		cluster, remainder, w, newState := uniseg.FirstGraphemeClusterInString(rest, state)
		if width+w > maxWidth && b.Len() > 0 {
			return b.String(), rest
		}
		b.WriteString(cluster)
		width += w
		rest = remainder
		state = newState
	}
	return b.String(), ""
}

func (s *StringLayout) CalcSizes(doc *Document, path wire.Path, cfg *Config, width int, neg *IndentNegotiator) int {
	fd, ok := doc.FieldDescriptor(path)
	if !ok {
		return 1
	}
	indent := neg.Add(len(fd.Name), len(path))

	lineCount := 1
	fv, hasVal := doc.Field(path)
	if hasVal && fv.Scalar != nil {
		chunks := s.getLinesFormatted(width, indent, fd.Repeated, fv.Scalar.Str)
		lineCount = len(chunks)

		addrLen := len(fmt.Sprintf("%d", lineCount))
		if addrLen > indent {
			indent = neg.Add(addrLen, len(path))
			chunks = s.getLinesFormatted(width, indent, fd.Repeated, fv.Scalar.Str)
			lineCount = len(chunks)
		}
	}
	if lineCount < 1 {
		lineCount = 1
	}
	return lineCount
}

func (s *StringLayout) GetScreen(doc *Document, path wire.Path, width, indent int, cfg *Config, cursorX, cursorY int, hasCursor bool) []ScreenLine {
	var lines []ScreenLine
	line := NewScreenLine()

	fd, ok := doc.FieldDescriptor(path)
	if !ok {
		return []ScreenLine{*line}
	}
	line.AddFieldName(fd.Name, indent, cursorX, cursorY, hasCursor)

	fv, hasVal := doc.Field(path)
	if hasVal && fv.Scalar != nil {
		chunks := s.getLinesFormatted(width, indent, fd.Repeated, fv.Scalar.Str)
		if len(chunks) <= 1 {
			line.Cells = append(line.Cells, Cell{Ch: ' ', Style: StyleDivider}, Cell{Ch: '\'', Style: StyleDivider})
			line.AddString(fv.Scalar.Str, StyleValue)
			line.Cells = append(line.Cells, Cell{Ch: '\'', Style: StyleDivider})
			line.FixLength(width)
		} else {
			rowIdx := 0
			for _, c := range chunks {
				if rowIdx > 0 {
					lines = append(lines, *line)
					line = NewScreenLine()
					addr := ""
					if c.lineStart1 {
						addr = fmt.Sprintf("%d", rowIdx+1)
					}
					line.AddValueAddress(addr, indent, cursorX, cursorY, rowIdx, hasCursor)
				}
				line.Cells = append(line.Cells, Cell{Ch: ' ', Style: StyleDivider})
				line.AddString(c.text, StyleValue)
				line.FixLength(width)
				rowIdx++
			}
		}
	} else {
		line.Cells = append(line.Cells, Cell{Ch: ' ', Style: StyleDivider}, Cell{Ch: '\'', Style: StyleDivider}, Cell{Ch: '\'', Style: StyleDivider})
	}
	lines = append(lines, *line)
	lines[0].AddTypename(fd.TypeName, fd.Repeated, !s.hasValue, width)
	return lines
}

func (s *StringLayout) OnCommand(doc *Document, path wire.Path, cmd UserCommand, cfg *Config, width, indent int, cursorX, cursorY *int) CommandResult {
	return CommandResult{Kind: ResultNone}
}

func (s *StringLayout) ConsumedFields(doc *Document, path wire.Path, cfg *Config) map[int32]bool { return nil }

func (s *StringLayout) StatusText(cursorX, cursorY int) string { return "" }
