// Package tui is the bubbletea binding around C1-C6: it translates
// terminal events into layout.UserCommand values, hands them to a
// layout.CommandRouter, and asks internal/render to draw the result.
// Grounded on cmd/nnav/tui.go's Init/Update/View model shape; the
// editor/ExecProcess handoff nnav uses to open $EDITOR has no analogue
// here (pbedit edits in place rather than shelling out) and is not
// carried over.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/termproto/pbedit/internal/layout"
	"github.com/termproto/pbedit/internal/render"
)

// Model is the bubbletea.Model wrapping one open document. The core
// (List/Router) never touches the terminal directly; Model is the only
// thing that does, matching spec.md §5's "terminal owned exclusively by
// C6" by routing every draw through renderer.
type Model struct {
	doc      *layout.Document
	cfg      *layout.Config
	list     *layout.LayoutList
	router   *layout.CommandRouter
	renderer *render.Renderer

	width, height int
	status        string
	errMsg        string
	quitting      bool
	dirty         bool
}

// New builds a Model ready to run. height is the full terminal height;
// the LayoutList's own viewport is height minus the status line
// (render.TopLineHeight), since that row is drawn unconditionally.
func New(doc *layout.Document, cfg *layout.Config, fileName string, width, height int) Model {
	listHeight := height - render.TopLineHeight
	if listHeight < 1 {
		listHeight = 1
	}
	list := layout.NewLayoutList(doc, cfg, width, listHeight)
	return Model{
		doc:      doc,
		cfg:      cfg,
		list:     list,
		router:   layout.NewCommandRouter(list, cfg),
		renderer: render.New(fileName),
		width:    width,
		height:   height,
	}
}

// Dirty reports whether any command this session applied a data
// change, so the caller (cmd/pbedit) knows whether a re-encode is
// needed once the program exits.
func (m Model) Dirty() bool { return m.dirty }

// Document exposes the live tree for the caller to re-serialize after
// the bubbletea program returns.
func (m Model) Document() *layout.Document { return m.doc }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, ok := translateKey(msg)
		if !ok {
			return m, nil
		}
		result := m.router.Dispatch(cmd)
		if result.Kind == layout.ResultRedraw && (cmd.Kind == layout.CmdDeleteData || cmd.Kind == layout.CmdInsertData) {
			m.dirty = true
		}
		return m.applyResult(result)

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonWheelUp {
			return m.applyResult(m.router.Dispatch(layout.UserCommand{Kind: layout.CmdScrollVertically, Count: 3, Up: true}))
		}
		if msg.Button == tea.MouseButtonWheelDown {
			return m.applyResult(m.router.Dispatch(layout.UserCommand{Kind: layout.CmdScrollVertically, Count: 3}))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		listHeight := m.height - render.TopLineHeight
		if listHeight < 1 {
			listHeight = 1
		}
		m.list.Resize(m.width, listHeight)
		return m, nil

	case tea.FocusMsg, tea.BlurMsg:
		return m, nil
	}
	return m, nil
}

// applyResult folds a CommandResult into the Model's visible state,
// per spec.md §4.4's CommandResult variants.
func (m Model) applyResult(result layout.CommandResult) (tea.Model, tea.Cmd) {
	switch result.Kind {
	case layout.ResultQuit:
		m.quitting = true
		return m, tea.Quit
	case layout.ResultShowMessage:
		m.status = result.Message
		m.errMsg = ""
	case layout.ResultShowError:
		m.errMsg = result.Message
	case layout.ResultRedraw:
		m.errMsg = ""
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	frame := m.renderer.Render(m.list, m.cfg, m.width)
	if m.errMsg != "" {
		return frame + "error: " + m.errMsg + "\n"
	}
	if m.status != "" {
		return frame + m.status + "\n"
	}
	return frame
}
