package layout

// CommandRouter is C4: it decides whether a UserCommand is handled
// globally (scrolling the whole list, toggling a display preference,
// quitting) or forwarded to the Record under the cursor, and
// post-processes whatever CommandResult comes back — applying a data
// change, expanding/collapsing a message, or simply asking for a
// redraw. Grounded on original_source/src/main.rs's command dispatch
// loop.
type CommandRouter struct {
	List *LayoutList
	Cfg  *Config
}

func NewCommandRouter(list *LayoutList, cfg *Config) *CommandRouter {
	return &CommandRouter{List: list, Cfg: cfg}
}

// Dispatch routes and fully resolves one command, including any
// consequent data-change application and layout repair. The returned
// CommandResult reflects the final outcome the caller (internal/tui)
// should act on: ResultChangeData is never returned here since the
// change has already been applied by the time Dispatch returns;
// callers see ResultNone/ResultRedraw/ResultShowMessage/ResultShowError/
// ResultQuit.
func (r *CommandRouter) Dispatch(cmd UserCommand) CommandResult {
	switch cmd.Kind {
	case CmdRefresh:
		return CommandResult{Kind: ResultRedraw}
	case CmdScrollVertically:
		delta := cmd.Count
		if cmd.Up {
			delta = -delta
		}
		r.List.MoveVertically(delta)
		return CommandResult{Kind: ResultRedraw}
	case CmdScrollSibling:
		r.List.MoveSibling(cmd.Delta)
		return CommandResult{Kind: ResultRedraw}
	case CmdScrollToBottom:
		r.List.ScrollToBottom()
		return CommandResult{Kind: ResultRedraw}
	case CmdScrollToTop:
		r.List.ScrollToTop()
		return CommandResult{Kind: ResultRedraw}
	case CmdCommentsVisibility:
		r.Cfg.ShowComments = r.Cfg.ShowComments.Next()
		return CommandResult{Kind: ResultRedraw}
	case CmdBinaryVisibility:
		r.Cfg.ShowBinary = !r.Cfg.ShowBinary
		return CommandResult{Kind: ResultRedraw}
	case CmdDataTypeVisibility:
		r.Cfg.ShowDataTypes = !r.Cfg.ShowDataTypes
		return CommandResult{Kind: ResultRedraw}
	case CmdChangeFieldOrder:
		if cmd.Forward {
			r.Cfg.FieldOrder = r.Cfg.FieldOrder.Next()
		} else {
			r.Cfg.FieldOrder = r.Cfg.FieldOrder.Prev()
		}
		r.List.rebuild()
		return CommandResult{Kind: ResultRedraw}
	case CmdQuit:
		return CommandResult{Kind: ResultQuit}
	}

	return r.dispatchField(cmd)
}

// dispatchField forwards a field-local command to the Record under the
// cursor and resolves whatever it asks for.
func (r *CommandRouter) dispatchField(cmd UserCommand) CommandResult {
	sel := r.List.sel
	rec, ok := r.List.Selected()
	if !ok {
		return CommandResult{Kind: ResultNone}
	}
	indent := r.List.indentFor(rec)
	result := rec.Layout.OnCommand(r.List.doc, rec.Path, cmd, r.Cfg, r.List.width, indent, &sel.X, &sel.Y)
	r.List.sel = sel

	switch result.Kind {
	case ResultChangeData:
		if err := Apply(r.List.doc, result.Change); err != nil {
			return CommandResult{Kind: ResultShowError, Message: err.Error()}
		}
		r.List.updateAfterDataChanged(result.Change)
		return CommandResult{Kind: ResultRedraw}
	case ResultExpand:
		r.List.expandCollapsed(rec.Path)
		return CommandResult{Kind: ResultRedraw}
	case ResultCollapse:
		if !r.List.collapseExpanded(rec.Path) {
			// Already collapsed (or never expanded): toggling again
			// means "expand".
			r.List.expandCollapsed(rec.Path)
		}
		return CommandResult{Kind: ResultRedraw}
	default:
		return result
	}
}
