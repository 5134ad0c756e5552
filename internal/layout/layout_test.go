package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/teleivo/assertive/require"

	"github.com/termproto/pbedit/internal/schema"
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

func mustRoot(t *testing.T, s *schema.Schema, name string) *schema.MessageDescriptor {
	t.Helper()
	m, ok := s.GetMessage(name)
	require.True(t, ok)
	return m
}
