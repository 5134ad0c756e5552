// Package render is C6: it turns a layout.LayoutList's ScreenLines into
// a single terminal frame, coalescing runs of identically-styled cells
// into lipgloss-rendered spans and prepending the one-line status bar.
// Grounded on cmd/nnav/tui.go's View/renderLine (the coalesce-and-join
// shape) and original_source/src/view.rs's print_top_line (the
// filename/status/order proportional layout).
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/termproto/pbedit/internal/layout"
)

// TopLineHeight is the fixed number of rows the status bar occupies
// above the record frame (spec.md §8's TOP_LINE=1).
const TopLineHeight = 1

// styles maps layout.TextStyle to a terminal rendition. Selected
// variants invert background/foreground; everything else is a plain
// foreground color, matching the muted/cursor split cmd/nnav/tui.go
// draws with lipgloss.NewStyle().Foreground/.Reverse.
var styles = map[layout.TextStyle]lipgloss.Style{
	layout.StyleComment:            lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	layout.StyleBinary:             lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	layout.StyleFilename:           lipgloss.NewStyle().Bold(true),
	layout.StyleFieldName:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	layout.StyleSelectedFieldName:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Reverse(true),
	layout.StyleFieldIndex:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	layout.StyleSelectedFieldIndex: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Reverse(true),
	layout.StyleValue:              lipgloss.NewStyle(),
	layout.StyleSelectedValue:      lipgloss.NewStyle().Reverse(true),
	layout.StyleDefaultValue:       lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	layout.StyleDataSize:           lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	layout.StyleTypename:           lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	layout.StyleSelectedTypename:   lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Reverse(true),
	layout.StyleDivider:            lipgloss.NewStyle(),
	layout.StyleTopLine:            lipgloss.NewStyle().Bold(true).Reverse(true),
	layout.StyleUnknown:            lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
}

// Renderer draws one LayoutList frame plus its status line. It holds no
// document/list state of its own: every Render call is handed the
// current list, so a resize or field-order change needs nothing more
// than a fresh call.
type Renderer struct {
	FileName string
}

func New(fileName string) *Renderer {
	return &Renderer{FileName: fileName}
}

// Render produces the full frame: the status line followed by exactly
// list's VisibleFrame rows, each coalesced into one lipgloss-styled
// string. width is the terminal column count the status line itself
// must fit (list rows are already padded to it by FixLength).
func (r *Renderer) Render(list *layout.LayoutList, cfg *layout.Config, width int) string {
	var b strings.Builder
	b.WriteString(r.topLine(list, cfg, width))
	b.WriteByte('\n')
	for _, line := range list.VisibleFrame() {
		b.WriteString(coalesce(line))
		b.WriteByte('\n')
	}
	return b.String()
}

// topLine lays out three segments — filename, the selected record's
// status text, and "sibling/count letter" — proportionally across
// width, dropping the lowest-priority segment (status text) first when
// they don't all fit. Grounded on view.rs's print_top_line.
func (r *Renderer) topLine(list *layout.LayoutList, cfg *layout.Config, width int) string {
	left := r.FileName
	mid := ""
	right := string(cfg.FieldOrder.Letter())
	if rec, ok := list.Selected(); ok {
		sel := list.Selection()
		mid = rec.Layout.StatusText(sel.X, sel.Y)
		right = itoa(rec.SiblingIndex+1) + "/" + itoa(rec.SiblingCount) + " " + right
	}

	line := joinSegments(left, mid, right, width)
	if runewidth.StringWidth(line) > width {
		line = joinSegments(left, "", right, width)
	}
	return styles[layout.StyleTopLine].Render(padTo(line, width))
}

// joinSegments spaces left/mid/right apart, putting left flush at the
// start and right flush at the end with mid centered in the remainder.
func joinSegments(left, mid, right string, width int) string {
	if mid == "" {
		gap := width - runewidth.StringWidth(left) - runewidth.StringWidth(right)
		if gap < 1 {
			gap = 1
		}
		return left + strings.Repeat(" ", gap) + right
	}
	used := runewidth.StringWidth(left) + runewidth.StringWidth(mid) + runewidth.StringWidth(right)
	gap := width - used
	if gap < 2 {
		return left + " " + mid + " " + right
	}
	leftGap := gap / 2
	rightGap := gap - leftGap
	return left + strings.Repeat(" ", leftGap) + mid + strings.Repeat(" ", rightGap) + right
}

func padTo(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return runewidth.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}

// coalesce merges consecutive cells sharing a TextStyle into one
// lipgloss-rendered span, exactly the "drop into reverse video, write
// the cursor's line, drop out" shape cmd/nnav/tui.go does once per
// whole line; here it happens per style-run since a single record row
// mixes many styles (field name, value, typename).
func coalesce(line layout.ScreenLine) string {
	var b strings.Builder
	var run strings.Builder
	cur := layout.TextStyle(-1)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		style, ok := styles[cur]
		if !ok {
			style = lipgloss.NewStyle()
		}
		b.WriteString(style.Render(run.String()))
		run.Reset()
	}
	for _, c := range line.Cells {
		if c.Style != cur {
			flush()
			cur = c.Style
		}
		run.WriteRune(c.Ch)
	}
	flush()
	return b.String()
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
