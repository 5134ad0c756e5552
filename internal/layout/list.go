package layout

import (
	"strings"

	"github.com/termproto/pbedit/internal/schema"
	"github.com/termproto/pbedit/internal/wire"
)

// LayoutList is C3: the flat, depth-first sequence of Records currently
// visible for one Document, plus the cursor/scroll bookkeeping needed to
// turn it into one rendered frame. Grounded on original_source/src/view.rs's
// Layouts.
type LayoutList struct {
	doc    *Document
	cfg    *Config
	width  int
	height int

	records []Record
	indents []int

	// expanded tracks which message-occurrence paths (by Path.String())
	// have been replaced with their children, surviving across rebuilds
	// triggered by field-order/visibility changes.
	expanded map[string]bool

	// collapsedByUser tracks paths the user deliberately collapsed via
	// CollapsedToggle, so a later rebuild's ensureLoaded pass does not
	// silently re-expand them just because the viewport has room.
	collapsedByUser map[string]bool

	// scrollLine is a cumulative line offset into the flattened record
	// list, not a record index: the viewport can start partway through a
	// record taller than itself. Grounded on original_source/src/main.rs's
	// Layouts.scroll/first_visible_line/calc_scroll_pos.
	scrollLine int
	sel        Selection
}

// Selection is the cursor's position: which Record it sits on and the
// (x, y) position local to that Record's own GetScreen/OnCommand.
type Selection struct {
	LayoutIndex int
	X, Y        int
}

// NewLayoutList builds the top-level record list for doc's root message.
func NewLayoutList(doc *Document, cfg *Config, width, height int) *LayoutList {
	l := &LayoutList{doc: doc, cfg: cfg, width: width, height: height,
		expanded:        map[string]bool{},
		collapsedByUser: map[string]bool{},
	}
	l.rebuild()
	return l
}

func clonePath(p wire.Path) wire.Path {
	cp := make(wire.Path, len(p))
	copy(cp, p)
	return cp
}

func appendPath(p wire.Path, fieldNumber int32, index int) wire.Path {
	return append(clonePath(p), wire.PathElem{FieldNumber: fieldNumber, Index: index})
}

// buildRecords enumerates msgDesc's fields (in cfg.FieldOrder) as one
// flat, depth-first slice: scalar/string/bytes fields contribute exactly
// one Record each. A numeric/enum/bool Record packs every occurrence; a
// string or bytes Record addresses occurrence 0 only, so later
// occurrences of a repeated string/bytes field are not shown. Message
// fields contribute one
// Record per occurrence (CollapsedLayout, or MessageLayout immediately
// followed by its own children when that occurrence's path is marked
// expanded). Every Record directly produced here shares one sibling
// group: SiblingCount is the group size and SiblingIndex its position.
func buildRecords(doc *Document, cfg *Config, path wire.Path, msgDesc *schema.MessageDescriptor, msg *wire.MessageValue, expanded map[string]bool) []Record {
	fields := SortedFields(msg, msgDesc, cfg.FieldOrder)

	groupSize := 0
	for _, fp := range fields {
		if fp.Desc.IsMessage && fp.Amount > 0 {
			groupSize += fp.Amount
		} else {
			groupSize++
		}
	}

	var out []Record
	direct := 0
	addDirect := func(p wire.Path, fl FieldLayout) {
		out = append(out, Record{Path: p, Layout: fl, SiblingIndex: direct, SiblingCount: groupSize})
		direct++
	}

	for _, fp := range fields {
		fd := fp.Desc
		switch {
		case fd.IsMessage:
			if fp.Amount == 0 {
				addDirect(appendPath(path, fd.Number, 0), NewCollapsedLayout(false))
				continue
			}
			for i := 0; i < fp.Amount; i++ {
				p := appendPath(path, fd.Number, i)
				if expanded[p.String()] {
					addDirect(p, NewMessageLayout(true))
					if sub, ok := doc.Submessage(p); ok {
						if subDesc, ok2 := doc.Schema.Message(fd.TypeName); ok2 {
							out = append(out, buildRecords(doc, cfg, p, subDesc, sub, expanded)...)
						}
					}
				} else {
					addDirect(p, NewCollapsedLayout(true))
				}
			}
		case fd.Scalar == schema.ScalarString:
			addDirect(appendPath(path, fd.Number, 0), NewStringLayout(fp.Amount > 0))
		case fd.Scalar == schema.ScalarBytes:
			addDirect(appendPath(path, fd.Number, 0), NewBytesLayout(fp.Amount > 0))
		default:
			addDirect(appendPath(path, fd.Number, 0), NewScalarLayout(fp.Amount))
		}
	}
	return out
}

func (l *LayoutList) rebuild() {
	l.records = buildRecords(l.doc, l.cfg, nil, l.doc.RootDesc, l.doc.Root, l.expanded)
	l.recalcSizes()
	l.ensureLoaded()
	l.adjustScroll()
}

// ensureLoaded implements the lazy-expansion budget from spec.md §4.3:
// placeholders are materialized outward from the top of the list while
// the visible-line budget (l.height) still has room, skipping any path
// the user deliberately collapsed. Grounded on view.rs's ensure_loaded,
// simplified to a single top-down pass rather than bidirectional
// expansion around an arbitrary anchor.
func (l *LayoutList) ensureLoaded() {
	for l.totalHeight() < l.height {
		idx := -1
		for i := range l.records {
			r := &l.records[i]
			if r.Layout.Kind() == KindCollapsed && r.Layout.Amount() > 0 && !l.collapsedByUser[r.Path.String()] {
				idx = i
				break
			}
		}
		if idx < 0 {
			return
		}
		if !l.expandCollapsed(l.records[idx].Path) {
			return
		}
	}
}

func (l *LayoutList) totalHeight() int {
	total := 0
	for i := range l.records {
		total += l.records[i].Height
	}
	return total
}

// recalcSizes re-runs the indent negotiation and per-Record CalcSizes
// pass over the whole list, per C1's two-pass contract.
func (l *LayoutList) recalcSizes() {
	neg := NewIndentNegotiator()
	for i := range l.records {
		l.records[i].CalcSizes(l.doc, l.cfg, l.width, neg)
	}
	l.indents = neg.Levels()
}

func (l *LayoutList) Records() []Record { return l.records }
func (l *LayoutList) Indents() []int    { return l.indents }

// Resize applies a new viewport size (a terminal Resize event), then
// re-runs sizing, the lazy-expansion budget, and scroll clamping so the
// list is immediately consistent with the new dimensions.
func (l *LayoutList) Resize(width, height int) {
	l.width, l.height = width, height
	l.recalcSizes()
	l.ensureLoaded()
	l.adjustScroll()
	l.ensureSelectionVisible()
}

func (l *LayoutList) indentFor(r *Record) int {
	lvl := r.Level() - 1
	if lvl < 0 || lvl >= len(l.indents) {
		return marginLeft
	}
	return l.indents[lvl]
}

func (l *LayoutList) findRecordIndex(path wire.Path) int {
	for i := range l.records {
		if l.records[i].Path.Equal(path) {
			return i
		}
	}
	return -1
}

func isDescendantOf(child, parent wire.Path) bool {
	if len(child) <= len(parent) {
		return false
	}
	return child[:len(parent)].Equal(parent)
}

// expandCollapsed replaces the CollapsedLayout record at path with a
// MessageLayout header followed by that submessage's own Records.
func (l *LayoutList) expandCollapsed(path wire.Path) bool {
	i := l.findRecordIndex(path)
	if i < 0 || l.records[i].Layout.Kind() != KindCollapsed {
		return false
	}
	fd, ok := l.doc.FieldDescriptor(path)
	if !ok || !fd.IsMessage {
		return false
	}
	sub, ok := l.doc.Submessage(path)
	if !ok {
		return false
	}
	subDesc, ok := l.doc.Schema.Message(fd.TypeName)
	if !ok {
		return false
	}

	key := path.String()
	l.expanded[key] = true
	delete(l.collapsedByUser, key)
	header := Record{Path: path, Layout: NewMessageLayout(true), SiblingIndex: l.records[i].SiblingIndex, SiblingCount: l.records[i].SiblingCount}
	children := buildRecords(l.doc, l.cfg, path, subDesc, sub, l.expanded)

	replacement := make([]Record, 0, 1+len(children))
	replacement = append(replacement, header)
	replacement = append(replacement, children...)
	l.splice(i, i+1, replacement)

	l.recalcSizes()
	l.adjustScroll()
	return true
}

// collapseExpanded drops a previously-expanded submessage's children
// back to a single CollapsedLayout placeholder.
func (l *LayoutList) collapseExpanded(path wire.Path) bool {
	i := l.findRecordIndex(path)
	if i < 0 {
		return false
	}
	key := path.String()
	if !l.expanded[key] {
		return false
	}
	end := i + 1
	for end < len(l.records) && isDescendantOf(l.records[end].Path, path) {
		end++
	}
	delete(l.expanded, key)
	l.collapsedByUser[key] = true
	for k := range l.expanded {
		if strings.HasPrefix(k, key+"/") {
			delete(l.expanded, k)
		}
	}
	placeholder := Record{Path: path, Layout: NewCollapsedLayout(true), SiblingIndex: l.records[i].SiblingIndex, SiblingCount: l.records[i].SiblingCount}
	l.splice(i, end, []Record{placeholder})

	l.recalcSizes()
	l.adjustScroll()
	return true
}

func (l *LayoutList) splice(from, to int, replacement []Record) {
	tail := append([]Record{}, l.records[to:]...)
	l.records = append(l.records[:from], replacement...)
	l.records = append(l.records, tail...)
}

// updateIndexesSibling renumbers the SiblingIndex/SiblingCount bookkeeping
// for one sibling group (the records[groupStart:groupEnd) window) after a
// member has been inserted or removed at records[pos], given the group's
// refreshed size newCount.
//
// It sweeps in both directions from pos: forward, pos and every later
// sibling gets a freshly derived SiblingIndex and the new SiblingCount;
// backward, every earlier sibling only needs SiblingCount refreshed since
// its own SiblingIndex didn't move. A prior port of this routine wrote
// the backward sweep as a descending range that never iterated, so
// siblings before the edit point kept a stale count; both loops here
// actually run.
func (l *LayoutList) updateIndexesSibling(groupStart, groupEnd, pos, newCount int) {
	for i := pos - 1; i >= groupStart; i-- {
		l.records[i].SiblingCount = newCount
	}
	for i := pos; i < groupEnd; i++ {
		l.records[i].SiblingIndex = i - groupStart
		l.records[i].SiblingCount = newCount
	}
}

func (l *LayoutList) adjustScroll() {
	if total := l.totalHeight(); l.scrollLine > total {
		l.scrollLine = total
	}
	if l.scrollLine < 0 {
		l.scrollLine = 0
	}
	if l.sel.LayoutIndex >= len(l.records) {
		l.sel = Selection{LayoutIndex: len(l.records) - 1}
	}
	if l.sel.LayoutIndex < 0 {
		l.sel = Selection{}
	}
}

// firstVisibleLine resolves scrollLine to the record it falls within and
// how many of that record's own rows to skip, per
// original_source/src/main.rs's first_visible_line. This is what lets a
// record taller than the viewport be scrolled through line by line
// instead of always being drawn starting at its own first row.
func (l *LayoutList) firstVisibleLine() (index, skipLines int) {
	skip := l.scrollLine
	for i := range l.records {
		h := l.records[i].Height
		if h > skip {
			return i, skip
		}
		skip -= h
	}
	if len(l.records) == 0 {
		return 0, 0
	}
	last := len(l.records) - 1
	return last, l.records[last].Height - 1
}

// cumulativeLineOffset returns the total line height of every record
// before idx.
func (l *LayoutList) cumulativeLineOffset(idx int) int {
	sum := 0
	for i := 0; i < idx && i < len(l.records); i++ {
		sum += l.records[i].Height
	}
	return sum
}

// Selected returns the Record currently under the cursor.
func (l *LayoutList) Selected() (*Record, bool) {
	if l.sel.LayoutIndex < 0 || l.sel.LayoutIndex >= len(l.records) {
		return nil, false
	}
	return &l.records[l.sel.LayoutIndex], true
}

func (l *LayoutList) Selection() Selection { return l.sel }

// MoveVertically moves the cursor delta rows up/down, crossing record
// boundaries and resetting the local (x, y) as it enters a new record.
func (l *LayoutList) MoveVertically(delta int) {
	if len(l.records) == 0 {
		return
	}
	y := l.sel.Y + delta
	idx := l.sel.LayoutIndex
	for y < 0 && idx > 0 {
		idx--
		y += l.records[idx].Height
	}
	for idx < len(l.records) && y >= l.records[idx].Height {
		y -= l.records[idx].Height
		idx++
	}
	if idx >= len(l.records) {
		idx = len(l.records) - 1
		y = l.records[idx].Height - 1
	}
	if y < 0 {
		y = 0
	}
	l.sel = Selection{LayoutIndex: idx, X: 0, Y: y}
	l.adjustScroll()
	l.ensureSelectionVisible()
}

// MoveSibling jumps the cursor forward/backward by delta siblings within
// the current record's sibling group (CmdScrollSibling), clamped to the
// group's first and last member, landing on the first row of the target
// record.
func (l *LayoutList) MoveSibling(delta int) {
	rec, ok := l.Selected()
	if !ok {
		return
	}
	target := rec.SiblingIndex + delta
	if target < 0 {
		target = 0
	}
	if target >= rec.SiblingCount {
		target = rec.SiblingCount - 1
	}
	groupStart := l.sel.LayoutIndex - rec.SiblingIndex
	i := groupStart
	for i < len(l.records) && i-groupStart != target {
		i++
		for i < len(l.records) && l.records[i].Level() != rec.Level() {
			i++
		}
	}
	if i >= len(l.records) {
		return
	}
	l.sel = Selection{LayoutIndex: i}
	l.ensureSelectionVisible()
}

// ensureSelectionVisible corrects scrollLine if the cursor's own line
// (its record's cumulative offset plus its local Y) has scrolled above
// or below the viewport, per main.rs's calc_scroll_pos. Using the
// cursor's line rather than its record means a cursor sitting deep
// inside a record taller than the viewport still pulls the scroll
// position along with it, instead of getting stuck off-screen.
func (l *LayoutList) ensureSelectionVisible() {
	if l.sel.LayoutIndex < 0 || l.sel.LayoutIndex >= len(l.records) {
		return
	}
	selectedLine := l.cumulativeLineOffset(l.sel.LayoutIndex) + l.sel.Y
	if selectedLine+1 >= l.scrollLine+l.height {
		l.scrollLine = selectedLine + 1 - l.height
		return
	}
	if selectedLine < l.scrollLine {
		l.scrollLine = selectedLine
	}
}

// ScrollToTop jumps the cursor and scroll position to the very first
// record, the CmdHome-with-ctrl counterpart to ScrollToBottom.
func (l *LayoutList) ScrollToTop() {
	if len(l.records) == 0 {
		return
	}
	l.sel = Selection{LayoutIndex: 0}
	l.scrollLine = 0
}

func (l *LayoutList) ScrollToBottom() {
	if len(l.records) == 0 {
		return
	}
	l.sel = Selection{LayoutIndex: len(l.records) - 1}
	l.scrollLine = l.totalHeight() - l.height
	if l.scrollLine < 0 {
		l.scrollLine = 0
	}
}

// updateAfterDataChanged repairs the record list after change has
// already been applied to the document: it drops and recreates the
// owning message's descendant block (or does a full root rebuild when
// change touched a root-level message field), per spec.md's
// layout-repair rule; a scalar/string/bytes field's Record is refreshed
// in place instead.
func (l *LayoutList) updateAfterDataChanged(change Change) {
	parentPath, hasParent := change.Path.Parent()
	if !hasParent {
		l.rebuild()
		return
	}

	fd, ok := l.doc.FieldDescriptor(change.Path)
	if ok && !fd.IsMessage {
		// Scalar/string/bytes fields always occupy exactly one Record
		// regardless of occurrence count: refresh that Record's Layout
		// in place instead of rebuilding the whole sibling group.
		last := change.Path[len(change.Path)-1]
		aggPath := appendPath(parentPath, last.FieldNumber, 0)
		if idx := l.findRecordIndex(aggPath); idx >= 0 {
			container, ok := l.doc.containerFor(aggPath)
			amount := 0
			if ok {
				amount = container.FieldCount(last.FieldNumber)
			}
			switch fd.Scalar {
			case schema.ScalarString:
				l.records[idx].Layout = NewStringLayout(amount > 0)
			case schema.ScalarBytes:
				l.records[idx].Layout = NewBytesLayout(amount > 0)
			default:
				l.records[idx].Layout = NewScalarLayout(amount)
			}
			l.recalcSizes()
			l.adjustScroll()
			return
		}
	}

	if len(parentPath) == 0 {
		l.rebuild()
		return
	}
	l.rebuildGroup(parentPath)
}

// rebuildGroup regenerates parentPath's message's entire direct-children
// block in place, preserving every other part of the tree (and the
// cursor, best-effort, by clamping back onto the list afterward).
func (l *LayoutList) rebuildGroup(parentPath wire.Path) {
	i := l.findRecordIndex(parentPath)
	if i < 0 {
		l.rebuild()
		return
	}
	end := i + 1
	for end < len(l.records) && isDescendantOf(l.records[end].Path, parentPath) {
		end++
	}
	fd, ok := l.doc.FieldDescriptor(parentPath)
	if !ok || !fd.IsMessage {
		l.rebuild()
		return
	}
	sub, ok := l.doc.Submessage(parentPath)
	if !ok {
		l.rebuild()
		return
	}
	subDesc, ok := l.doc.Schema.Message(fd.TypeName)
	if !ok {
		l.rebuild()
		return
	}
	children := buildRecords(l.doc, l.cfg, parentPath, subDesc, sub, l.expanded)
	l.splice(i+1, end, children)
	l.recalcSizes()
	l.adjustScroll()
}

// VisibleFrame renders exactly height ScreenLines, starting at
// scrollLine's resolved (record, skipLines) position and stitched
// together by C6's Renderer. The first record contributes only its
// rows from skipLines onward, so a record taller than the viewport can
// be scrolled through a line at a time rather than jumping whole
// records.
func (l *LayoutList) VisibleFrame() []ScreenLine {
	var out []ScreenLine
	rowsUsed := 0
	startIdx, skipLines := l.firstVisibleLine()
	for i := startIdx; i < len(l.records) && rowsUsed < l.height; i++ {
		r := &l.records[i]
		hasCursor := i == l.sel.LayoutIndex
		cx, cy := 0, 0
		if hasCursor {
			cx, cy = l.sel.X, l.sel.Y
		}
		rows := r.Layout.GetScreen(l.doc, r.Path, l.width, l.indentFor(r), l.cfg, cx, cy, hasCursor)
		skip := 0
		if i == startIdx {
			skip = skipLines
		}
		for _, row := range rows[min(skip, len(rows)):] {
			if rowsUsed >= l.height {
				break
			}
			out = append(out, row)
			rowsUsed++
		}
	}
	for rowsUsed < l.height {
		blank := NewScreenLine()
		blank.FixLength(l.width)
		out = append(out, *blank)
		rowsUsed++
	}
	return out
}
