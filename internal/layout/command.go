package layout

import "github.com/termproto/pbedit/internal/wire"

// UserCommandKind enumerates the closed set of user-triggered commands
// CommandRouter dispatches (spec.md §4.4), grounded on
// original_source/src/view.rs's UserCommand enum.
type UserCommandKind int

const (
	CmdRefresh UserCommandKind = iota
	CmdScrollVertically                // Count = line count, Up = direction
	CmdScrollSibling                   // Delta = sibling steps, signed
	CmdScrollToBottom
	CmdScrollToTop
	CmdScrollHorizontally // Delta = columns, signed
	CmdHome
	CmdEnd
	CmdCommentsVisibility
	CmdBinaryVisibility
	CmdDataTypeVisibility
	CmdCollapsedToggle
	CmdChangeFieldOrder // Forward = next FieldOrder, !Forward = previous
	CmdDeleteData
	CmdInsertData
	CmdQuit
)

// UserCommand is one dispatchable command instance. Not every field is
// meaningful for every Kind; see the Kind's doc comment above.
type UserCommand struct {
	Kind    UserCommandKind
	Count   int
	Up      bool
	Delta   int
	Forward bool
}

// CommandResultKind enumerates what a command produced, mirroring
// CommandResult in the original source.
type CommandResultKind int

const (
	ResultNone CommandResultKind = iota
	ResultRedraw
	ResultChangeData
	ResultShowMessage
	ResultShowError
	ResultExpand   // a CollapsedLayout row should be replaced by its expanded children
	ResultCollapse // an expanded message's children should be dropped back to a placeholder
	ResultQuit
)

// CommandResult is the outcome of dispatching one UserCommand.
type CommandResult struct {
	Kind    CommandResultKind
	Change  Change
	Message string
}

// Change describes a single mutation to apply to the document, per
// spec.md §4.5. Exactly one of Insert/Delete/Overwrite is meaningful,
// selected by Action.
type Change struct {
	Path   wire.Path
	Action ChangeAction
	Value  wire.FieldValue // meaningful for ActionInsert/ActionOverwrite
}

type ChangeAction int

const (
	ActionInsert ChangeAction = iota
	ActionDelete
	ActionOverwrite
)
