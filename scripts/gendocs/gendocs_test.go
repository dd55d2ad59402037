package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCLIDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateCLIDocs(dir))

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "# CLI Reference")
	assert.Contains(t, string(index), "XMIRLINT_STATE_PATH")

	lint, err := os.ReadFile(filepath.Join(dir, "lint.md"))
	require.NoError(t, err)
	assert.Contains(t, string(lint), "xmirlint lint [path...]")
	assert.Contains(t, string(lint), "`--severity`")
}

func TestGenerateRuleDocs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generateRuleDocs(context.Background(), dir))

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "**8 rules**")

	for _, group := range []string{"critical", "errors", "metas", "comments", "misc"} {
		page, err := os.ReadFile(filepath.Join(dir, group+".md"))
		require.NoError(t, err, group)
		assert.Contains(t, string(page), "DO NOT EDIT", group)
	}

	errorsPage, err := os.ReadFile(filepath.Join(dir, "errors.md"))
	require.NoError(t, err)
	assert.Contains(t, string(errorsPage), "## alias-too-long")
	assert.Contains(t, string(errorsPage), "`max_parts`")
}

func TestDemoteHeaders(t *testing.T) {
	assert.Equal(t, "### Why\ntext", demoteHeaders("# Why\ntext"))
}
