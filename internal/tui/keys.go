package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/termproto/pbedit/internal/layout"
)

// keyMap declares every key binding as a key.Binding value, the idiom
// adopted from sokmontrey-navi over nnav's ad hoc
// switch-on-msg.String() — this editor's command surface is large
// enough that a declared table (plus key.Matches dispatch in Update)
// stays readable where a long string switch would not.
type keyMap struct {
	FieldOrderNext key.Binding
	FieldOrderPrev key.Binding
	CollapseToggle key.Binding
	Comments       key.Binding
	BinaryVis      key.Binding
	DataTypeVis    key.Binding
	Quit           key.Binding
	Up             key.Binding
	Down           key.Binding
	Left           key.Binding
	Right          key.Binding
	SiblingUp      key.Binding
	SiblingDown    key.Binding
	PageUp         key.Binding
	PageDown       key.Binding
	Home           key.Binding
	End            key.Binding
	DocTop         key.Binding
	DocBottom      key.Binding
	Delete         key.Binding
	Insert         key.Binding
	Refresh        key.Binding
}

// defaultKeys is the canonical binding table for the terminal collaborator.
// BinaryVis/DataTypeVis have no key named in the canonical worked scenarios
// (their commands exist in layout.UserCommandKind, but the worked
// end-to-end walkthroughs never exercise a key for them) — F7/F8 are a
// natural, low-risk extension of the F4-F6/F10 function-key row already
// in use.
var defaultKeys = keyMap{
	FieldOrderNext: key.NewBinding(key.WithKeys("f4"), key.WithHelp("f4", "next field order")),
	FieldOrderPrev: key.NewBinding(key.WithKeys("shift+f4"), key.WithHelp("shift+f4", "prev field order")),
	CollapseToggle: key.NewBinding(key.WithKeys("f5", "enter"), key.WithHelp("f5/enter", "expand/collapse")),
	Comments:       key.NewBinding(key.WithKeys("f6"), key.WithHelp("f6", "cycle comments")),
	BinaryVis:      key.NewBinding(key.WithKeys("f7"), key.WithHelp("f7", "toggle raw bytes")),
	DataTypeVis:    key.NewBinding(key.WithKeys("f8"), key.WithHelp("f8", "toggle type column")),
	Quit:           key.NewBinding(key.WithKeys("f10", "esc"), key.WithHelp("f10/esc", "quit")),
	Up:             key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "scroll up")),
	Down:           key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "scroll down")),
	Left:           key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "scroll left")),
	Right:          key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "scroll right")),
	SiblingUp:      key.NewBinding(key.WithKeys("ctrl+up"), key.WithHelp("ctrl+↑", "prev sibling")),
	SiblingDown:    key.NewBinding(key.WithKeys("ctrl+down"), key.WithHelp("ctrl+↓", "next sibling")),
	PageUp:         key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
	PageDown:       key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "page down")),
	Home:           key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "row start")),
	End:            key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "row end")),
	DocTop:         key.NewBinding(key.WithKeys("ctrl+home"), key.WithHelp("ctrl+home", "document top")),
	DocBottom:      key.NewBinding(key.WithKeys("ctrl+end"), key.WithHelp("ctrl+end", "document bottom")),
	Delete:         key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "delete")),
	Insert:         key.NewBinding(key.WithKeys("insert"), key.WithHelp("ins", "insert")),
	Refresh:        key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
}

// translateKey maps one tea.KeyMsg to the layout.UserCommand it stands
// for, per defaultKeys. Returns ok=false for any key not bound to
// anything (e.g. plain letters while no text-entry mode exists).
func translateKey(msg tea.KeyMsg) (layout.UserCommand, bool) {
	switch {
	case key.Matches(msg, defaultKeys.Quit):
		return layout.UserCommand{Kind: layout.CmdQuit}, true
	case key.Matches(msg, defaultKeys.FieldOrderNext):
		return layout.UserCommand{Kind: layout.CmdChangeFieldOrder, Forward: true}, true
	case key.Matches(msg, defaultKeys.FieldOrderPrev):
		return layout.UserCommand{Kind: layout.CmdChangeFieldOrder, Forward: false}, true
	case key.Matches(msg, defaultKeys.CollapseToggle):
		return layout.UserCommand{Kind: layout.CmdCollapsedToggle}, true
	case key.Matches(msg, defaultKeys.Comments):
		return layout.UserCommand{Kind: layout.CmdCommentsVisibility}, true
	case key.Matches(msg, defaultKeys.BinaryVis):
		return layout.UserCommand{Kind: layout.CmdBinaryVisibility}, true
	case key.Matches(msg, defaultKeys.DataTypeVis):
		return layout.UserCommand{Kind: layout.CmdDataTypeVisibility}, true
	case key.Matches(msg, defaultKeys.SiblingUp):
		return layout.UserCommand{Kind: layout.CmdScrollSibling, Delta: -1}, true
	case key.Matches(msg, defaultKeys.SiblingDown):
		return layout.UserCommand{Kind: layout.CmdScrollSibling, Delta: 1}, true
	case key.Matches(msg, defaultKeys.Up):
		return layout.UserCommand{Kind: layout.CmdScrollVertically, Count: 1, Up: true}, true
	case key.Matches(msg, defaultKeys.Down):
		return layout.UserCommand{Kind: layout.CmdScrollVertically, Count: 1}, true
	case key.Matches(msg, defaultKeys.Left):
		return layout.UserCommand{Kind: layout.CmdScrollHorizontally, Delta: -1}, true
	case key.Matches(msg, defaultKeys.Right):
		return layout.UserCommand{Kind: layout.CmdScrollHorizontally, Delta: 1}, true
	case key.Matches(msg, defaultKeys.PageUp):
		return layout.UserCommand{Kind: layout.CmdScrollVertically, Count: pageSize, Up: true}, true
	case key.Matches(msg, defaultKeys.PageDown):
		return layout.UserCommand{Kind: layout.CmdScrollVertically, Count: pageSize}, true
	case key.Matches(msg, defaultKeys.DocTop):
		return layout.UserCommand{Kind: layout.CmdScrollToTop}, true
	case key.Matches(msg, defaultKeys.DocBottom):
		return layout.UserCommand{Kind: layout.CmdScrollToBottom}, true
	case key.Matches(msg, defaultKeys.Home):
		return layout.UserCommand{Kind: layout.CmdHome}, true
	case key.Matches(msg, defaultKeys.End):
		return layout.UserCommand{Kind: layout.CmdEnd}, true
	case key.Matches(msg, defaultKeys.Delete):
		return layout.UserCommand{Kind: layout.CmdDeleteData}, true
	case key.Matches(msg, defaultKeys.Insert):
		return layout.UserCommand{Kind: layout.CmdInsertData}, true
	case key.Matches(msg, defaultKeys.Refresh):
		return layout.UserCommand{Kind: layout.CmdRefresh}, true
	}
	return layout.UserCommand{}, false
}

// pageSize is the PgUp/PgDn scroll amount in rows; the original's
// paging used the viewport height itself, but translateKey has no
// access to the current list height, so a fixed, generous page is used
// instead (MoveVertically clamps at either end regardless).
const pageSize = 20
