package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/xmirlint/internal/testutil"
)

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteFile(t, dir, "a.xmir", testutil.CleanProgram)
	c := testutil.WriteFile(t, dir, "sub/c.xmir", testutil.CleanProgram)
	txt := testutil.WriteFile(t, dir, "b.txt", "plain")

	files, err := Discover([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{a, c}, files)

	// explicit files are taken regardless of extension, duplicates dropped
	files, err = Discover([]string{txt, dir, a})
	require.NoError(t, err)
	assert.Equal(t, []string{txt, a, c}, files)
}

func TestDiscover_Missing(t *testing.T) {
	_, err := Discover([]string{filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}
