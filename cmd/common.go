package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/illarion/seedvault/internal/config"
	"github.com/illarion/seedvault/internal/core"
	"github.com/illarion/seedvault/internal/crypto"
	"github.com/illarion/seedvault/internal/keyring"
	"github.com/illarion/seedvault/internal/storage"
)

// BackendKeyring stores the record document in the OS keychain.
const BackendKeyring = "keyring"

var ErrAmbiguous = errors.New("matches more than one record")

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Env is what every command runs against.
type Env struct {
	Config config.Config
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	// ReadSecret reads one line without echo.
	ReadSecret func(prompt string) ([]byte, error)
	// Copy puts text on the clipboard.
	Copy func(text string) error

	lines     *bufio.Reader
	linesFrom io.Reader
}

// NewEnv returns an Env bound to the process streams and terminal.
func NewEnv(c config.Config) *Env {
	env := &Env{
		Config: c,
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
		Copy:   copyToClipboard,
	}
	env.ReadSecret = env.ReadPassword
	return env
}

func (e *Env) ok(format string, args ...any) {
	fmt.Fprintln(e.Out, okStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

func (e *Env) warn(format string, args ...any) {
	fmt.Fprintln(e.Err, warnStyle.Render("warning: "+fmt.Sprintf(format, args...)))
}

// OpenBackend opens the preference backend named by the storage config.
func OpenBackend(c config.Storage) (storage.Backend, error) {
	if c.Backend == BackendKeyring {
		return keyring.New(""), nil
	}
	return storage.OpenBackend(c.Backend, c.Path)
}

// OpenVault opens the configured backend and wraps it in a Vault. The
// backend is returned as well for commands that need backend specifics.
func OpenVault(ctx context.Context, env *Env) (*core.Vault, storage.Backend, error) {
	backend, err := OpenBackend(env.Config.Storage)
	if err != nil {
		return nil, nil, err
	}

	engine, err := crypto.NewEngine(crypto.Scheme(env.Config.Cipher.Scheme),
		crypto.WithIterations(env.Config.Cipher.Iterations))
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	store := storage.NewStore(backend, storage.WithStrict(env.Config.Storage.Strict))
	vault, err := core.New(ctx, engine, store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return vault, backend, nil
}

// resolve finds the single record matching an ID prefix or a name.
func resolve(v *core.Vault, ref string) (storage.Record, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return storage.Record{}, fmt.Errorf("%w: empty record reference", core.ErrInvalidInput)
	}

	matches := v.Find(ref)
	switch len(matches) {
	case 0:
		return storage.Record{}, fmt.Errorf("%w: %s", core.ErrRecordNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return storage.Record{}, fmt.Errorf("%q %w", ref, ErrAmbiguous)
	}
}

// Message turns an error into the text shown to the user.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrAmbiguous):
		return fmt.Sprintf("Error: %s\nUse a longer id prefix", err)
	case errors.Is(err, ErrConfigExists):
		return fmt.Sprintf("Error: %s\nUse 'seedvault init --force' to overwrite it", err)
	case errors.Is(err, ErrPassphraseMismatch):
		return "Error: passphrases do not match"
	case errors.Is(err, storage.ErrUnknownBackend), errors.Is(err, crypto.ErrUnknownScheme):
		return fmt.Sprintf("Error: %s\nCheck your seedvault.yaml", err)
	}

	switch core.KindOf(err) {
	case core.KindDecryptionFailure:
		return "Error: wrong passphrase or damaged ciphertext"
	case core.KindEncryptionFailure:
		return fmt.Sprintf("Error: encryption failed: %s", err)
	case core.KindInvalidInput:
		return fmt.Sprintf("Error: %s", err)
	case core.KindNotFound:
		return fmt.Sprintf("Error: %s\nUse 'seedvault ls' to see stored records", err)
	case core.KindStorageCorrupt:
		return "Error: stored records are unreadable and strict mode is on\n" +
			"Nothing was changed; turn off storage.strict to start a new record list"
	default:
		return fmt.Sprintf("Error: %s", err)
	}
}

// HandleError prints err and exits with status 1.
func HandleError(err error) {
	fmt.Fprintln(os.Stderr, Message(err))
	os.Exit(1)
}
