package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/illarion/seedvault/internal/crypto"
)

// PassphraseEnv overrides the passphrase prompt when set.
const PassphraseEnv = "SEEDVAULT_PASSPHRASE"

var ErrPassphraseMismatch = errors.New("passphrases do not match")

// ReadPassword reads a line from the terminal without echoing. When stdin
// is not a terminal it falls back to ReadLine.
func (e *Env) ReadPassword(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if e.In != os.Stdin || !term.IsTerminal(fd) {
		return e.ReadLine()
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return secret, nil
}

// ReadLine reads one line from env.In without the line ending. Every
// caller shares one buffer over env.In.
func (e *Env) ReadLine() ([]byte, error) {
	if e.lines == nil || e.linesFrom != e.In {
		e.lines = bufio.NewReader(e.In)
		e.linesFrom = e.In
	}
	line, err := e.lines.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

// GetPassphrase returns the passphrase from SEEDVAULT_PASSPHRASE or prompts
// for it. With confirm set, a prompted passphrase must be typed twice.
// The caller should crypto.ClearBytes the result.
func GetPassphrase(env *Env, prompt string, confirm bool) ([]byte, error) {
	if p := os.Getenv(PassphraseEnv); p != "" {
		return []byte(p), nil
	}

	if !confirm {
		return env.ReadSecret(prompt)
	}
	return ReadConfirmed(env, prompt)
}

// ReadConfirmed prompts for a secret twice and compares the entries in
// constant time. The environment override is not consulted.
func ReadConfirmed(env *Env, prompt string) ([]byte, error) {
	first, err := env.ReadSecret(prompt)
	if err != nil {
		return nil, err
	}

	second, err := env.ReadSecret("Confirm passphrase: ")
	if err != nil {
		crypto.ClearBytes(first)
		return nil, err
	}
	defer crypto.ClearBytes(second)

	if !crypto.ConstantTimeCompare(first, second) {
		crypto.ClearBytes(first)
		return nil, ErrPassphraseMismatch
	}
	return first, nil
}

func copyToClipboard(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard is not available")
	}
	return clipboard.WriteAll(text)
}
