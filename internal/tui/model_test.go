package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/teleivo/assertive/require"

	"github.com/termproto/pbedit/internal/layout"
	"github.com/termproto/pbedit/internal/schema"
	"github.com/termproto/pbedit/internal/wire"
)

func mustSchema(t *testing.T, contents string) *schema.Schema {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "m.proto")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	s, err := schema.Parse(path, nil)
	require.NoError(t, err)
	return s
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	s := mustSchema(t, `message M { int32 i1 = 1; int32 i2 = 2; }`)
	root, ok := s.Message("M")
	require.True(t, ok)
	doc := &layout.Document{Schema: s, RootDesc: root, Root: &wire.MessageValue{
		Fields: []wire.FieldValue{
			{FieldNumber: 1, Scalar: &wire.ScalarValue{Int: 1}},
			{FieldNumber: 2, Scalar: &wire.ScalarValue{Int: 2}},
		},
	}}
	return New(doc, layout.DefaultConfig(), "m.bin", 30, 10)
}

func TestTranslateKeyMapsKnownBindings(t *testing.T) {
	cases := []struct {
		name string
		msg  tea.KeyMsg
		want layout.UserCommandKind
	}{
		{"up", tea.KeyMsg{Type: tea.KeyUp}, layout.CmdScrollVertically},
		{"down", tea.KeyMsg{Type: tea.KeyDown}, layout.CmdScrollVertically},
		{"left", tea.KeyMsg{Type: tea.KeyLeft}, layout.CmdScrollHorizontally},
		{"right", tea.KeyMsg{Type: tea.KeyRight}, layout.CmdScrollHorizontally},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, layout.CmdCollapsedToggle},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, layout.CmdQuit},
		{"delete", tea.KeyMsg{Type: tea.KeyDelete}, layout.CmdDeleteData},
		{"pgup", tea.KeyMsg{Type: tea.KeyPgUp}, layout.CmdScrollVertically},
		{"pgdown", tea.KeyMsg{Type: tea.KeyPgDown}, layout.CmdScrollVertically},
		{"home", tea.KeyMsg{Type: tea.KeyHome}, layout.CmdHome},
		{"end", tea.KeyMsg{Type: tea.KeyEnd}, layout.CmdEnd},
	}
	for _, c := range cases {
		cmd, ok := translateKey(c.msg)
		require.True(t, ok, c.name+" should be a bound key")
		require.EqualValues(t, cmd.Kind, c.want, c.name+" maps to the expected command kind")
	}
}

func TestTranslateKeyRejectsUnboundRune(t *testing.T) {
	_, ok := translateKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
	require.False(t, ok, "a plain letter with no binding should not translate")
}

func TestUpdateQuitReturnsTeaQuitCmd(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.True(t, cmd != nil, "quitting should return a non-nil tea.Cmd")
}

func TestUpdateWindowSizeResizesTheList(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 50, Height: 20})
	resized := next.(Model)
	require.EqualValues(t, resized.width, 50)
	require.EqualValues(t, resized.height, 20)
}

func TestViewShowsStatusAndErrorMessages(t *testing.T) {
	m := newTestModel(t)

	withStatus, _ := m.applyResult(layout.CommandResult{Kind: layout.ResultShowMessage, Message: "saved"})
	require.True(t, strings.Contains(withStatus.(Model).View(), "saved"), "a ResultShowMessage should surface in View")

	withErr, _ := m.applyResult(layout.CommandResult{Kind: layout.ResultShowError, Message: "boom"})
	require.True(t, strings.Contains(withErr.(Model).View(), "boom"), "a ResultShowError should surface in View")
}
