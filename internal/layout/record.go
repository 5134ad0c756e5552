package layout

import "github.com/termproto/pbedit/internal/wire"

// LayoutKind identifies which FieldLayout variant a Record wraps
// (spec.md §4.2's closed set: Scalar, String, Bytes, Message, Collapsed,
// Table).
type LayoutKind int

const (
	KindScalar LayoutKind = iota
	KindString
	KindBytes
	KindMessage
	KindTable
	KindCollapsed
)

// FieldLayout is C2: the per-occurrence strategy that knows how tall its
// field is on screen, how to render it, and how to interpret a command
// while the cursor sits on it. Grounded on view.rs's ViewLayout trait.
type FieldLayout interface {
	Kind() LayoutKind

	// Amount is the occurrence count this layout was built for (0 for
	// an absent field still shown with its default value).
	Amount() int

	// CalcSizes negotiates this record's first-column width against neg
	// and returns how many screen rows the record occupies.
	CalcSizes(doc *Document, path wire.Path, cfg *Config, width int, neg *IndentNegotiator) int

	// GetScreen renders the record's rows at the given indent. cursor,
	// when hasCursor is true, is the (x, y) position local to this
	// record.
	GetScreen(doc *Document, path wire.Path, width, indent int, cfg *Config, cursorX, cursorY int, hasCursor bool) []ScreenLine

	// OnCommand interprets a command while the cursor is on this
	// record, mutating cursorX/cursorY in place and returning the
	// outcome.
	OnCommand(doc *Document, path wire.Path, cmd UserCommand, cfg *Config, width, indent int, cursorX, cursorY *int) CommandResult

	// ConsumedFields names the field numbers of the owning message this
	// record's screen already accounts for. Every variant in this
	// package returns nil, and LayoutList does not consult it.
	ConsumedFields(doc *Document, path wire.Path, cfg *Config) map[int32]bool

	// StatusText is the short "3/17"-style fragment the top status line
	// shows for the field under the cursor.
	StatusText(cursorX, cursorY int) string
}

// Record is C3's FieldLayoutRecord: one visible row-group in the
// LayoutList, addressing one field occurrence by Path and knowing how
// many screen rows (Height) it currently occupies plus its position
// among its rendered siblings.
type Record struct {
	Height       int
	Path         wire.Path
	Layout       FieldLayout
	SiblingIndex int
	SiblingCount int
}

// Level is the path depth (root fields are level 1), used to look up
// this record's committed indent in LayoutList.indents.
func (r *Record) Level() int { return len(r.Path) }

func (r *Record) CalcSizes(doc *Document, cfg *Config, width int, neg *IndentNegotiator) {
	r.Height = r.Layout.CalcSizes(doc, r.Path, cfg, width, neg)
}
