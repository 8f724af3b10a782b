package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illarion/seedvault/cmd"
	"github.com/illarion/seedvault/internal/config"
	"github.com/illarion/seedvault/internal/core"
)

const (
	testMnemonic   = "abandon ability able about above absent absorb abstract absurd abuse access accident"
	testPassphrase = "Tr0ub4dor&3"
)

type harness struct {
	t       *testing.T
	dir     string
	out     bytes.Buffer
	secrets []string
	loaded  config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv(cmd.PassphraseEnv, "")
	t.Chdir(dir)
	return &harness{t: t, dir: dir}
}

func (h *harness) run(args []string, secrets ...string) error {
	h.t.Helper()
	h.out.Reset()
	h.secrets = secrets

	root := newRootCmd(func(c config.Config) *cmd.Env {
		h.loaded = c
		env := cmd.NewEnv(c)
		env.In = strings.NewReader("")
		env.Out = &h.out
		env.Err = &h.out
		env.ReadSecret = func(prompt string) ([]byte, error) {
			if len(h.secrets) == 0 {
				return nil, fmt.Errorf("unexpected prompt %q", prompt)
			}
			s := h.secrets[0]
			h.secrets = h.secrets[1:]
			return []byte(s), nil
		}
		return env
	})
	root.SetArgs(args)
	root.SetOut(&h.out)
	root.SetErr(&h.out)
	return root.ExecuteContext(context.Background())
}

func TestEndToEnd(t *testing.T) {
	h := newHarness(t)
	db := []string{"--path", filepath.Join(h.dir, "vault.db")}

	require.NoError(t, h.run(append(db, "encrypt", "--save", "My Ledger"), testMnemonic, testPassphrase, testPassphrase))
	blob := strings.SplitN(h.out.String(), "\n", 2)[0]
	assert.True(t, strings.HasPrefix(blob, "AAAAAAAAAAAAAAAA"))

	require.NoError(t, h.run(append(db, "ls")))
	assert.Contains(t, h.out.String(), "My Ledger")

	require.NoError(t, h.run(append(db, "show", "My Ledger"), testPassphrase))
	assert.Equal(t, testMnemonic+"\n", h.out.String())

	err := h.run(append(db, "show", "My Ledger"), "wrong-pass")
	assert.ErrorIs(t, err, core.ErrDecryptionFailure)

	require.NoError(t, h.run(append(db, "decrypt", blob), testPassphrase))
	assert.Equal(t, testMnemonic+"\n", h.out.String())

	require.NoError(t, h.run(append(db, "rm", "My Ledger")))
	require.NoError(t, h.run(append(db, "list")))
	assert.Contains(t, h.out.String(), "No saved mnemonics")
}

func TestFlagsOverrideConfig(t *testing.T) {
	h := newHarness(t)
	sqlitePath := filepath.Join(h.dir, "vault.sqlite")

	require.NoError(t, h.run([]string{"--backend", "sqlite", "--path", sqlitePath, "--log-level", "debug", "ls"}))
	assert.Equal(t, "sqlite", h.loaded.Storage.Backend)
	assert.Equal(t, sqlitePath, h.loaded.Storage.Path)
	assert.Equal(t, "debug", h.loaded.Log.Level)

	_, err := os.Stat(sqlitePath)
	assert.NoError(t, err)
}

func TestInitThenLoad(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(h.dir, "custom.yaml")
	dbPath := filepath.Join(h.dir, "data", "vault.db")

	require.NoError(t, h.run([]string{"--config", file, "--path", dbPath, "init"}))
	assert.FileExists(t, file)

	require.NoError(t, h.run([]string{"--config", file, "ls"}))
	assert.Equal(t, dbPath, h.loaded.Storage.Path)

	err := h.run([]string{"--config", file, "init"})
	assert.ErrorIs(t, err, cmd.ErrConfigExists)
}

func TestMissingConfigFile(t *testing.T) {
	h := newHarness(t)
	err := h.run([]string{"--config", filepath.Join(h.dir, "nope.yaml"), "ls"})
	assert.Error(t, err)
}

func TestArgumentValidation(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.run([]string{"show"}))
	assert.Error(t, h.run([]string{"save", "only-name"}))
	assert.Error(t, h.run([]string{"rm"}))
	assert.Error(t, h.run([]string{"--log-level", "loud", "ls"}))
}
