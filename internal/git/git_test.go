package git

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gitInit(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	cmd := exec.Command("git", "init", "-q")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())
	return dir
}

func TestCheckOutsideRepo(t *testing.T) {
	dir := t.TempDir()
	e := Check(filepath.Join(dir, "vault.db"))
	assert.False(t, e.IsRepo)
	assert.False(t, e.Exposed())
	assert.Empty(t, e.Advice("vault.db"))
}

func TestCheckUnignored(t *testing.T) {
	dir := gitInit(t)
	path := filepath.Join(dir, "vault.db")

	e := Check(path)
	assert.True(t, e.IsRepo)
	assert.False(t, e.Tracked)
	assert.True(t, e.Exposed())
	assert.Contains(t, e.Advice(path), ".gitignore")
}

func TestCheckIgnored(t *testing.T) {
	dir := gitInit(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.db\n"), 0600))

	e := Check(filepath.Join(dir, "vault.db"))
	assert.True(t, e.IsRepo)
	assert.True(t, e.Ignored)
	assert.False(t, e.Exposed())
}

func TestCheckEmptyPath(t *testing.T) {
	assert.Equal(t, Exposure{}, Check(""))
}
