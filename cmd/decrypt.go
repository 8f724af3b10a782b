package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/illarion/seedvault/internal/core"
	"github.com/illarion/seedvault/internal/crypto"
)

// Decrypt decrypts a blob given as argument or read from stdin. Nothing is
// stored or touched.
func Decrypt(ctx context.Context, env *Env, blob string) error {
	if blob == "" {
		line, err := env.ReadLine()
		if err != nil {
			return fmt.Errorf("%w: no ciphertext given", core.ErrInvalidInput)
		}
		blob = string(line)
	}
	blob = strings.TrimSpace(blob)

	vault, _, err := OpenVault(ctx, env)
	if err != nil {
		return err
	}
	defer vault.Close()

	passphrase, err := GetPassphrase(env, "Enter passphrase: ", false)
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(passphrase)

	mnemonic, err := vault.Decrypt(blob, string(passphrase))
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Out, mnemonic)
	return nil
}

// Show decrypts a stored record and updates its last access time. With
// toClipboard set the mnemonic is copied instead of printed.
func Show(ctx context.Context, env *Env, ref string, toClipboard bool) error {
	vault, _, err := OpenVault(ctx, env)
	if err != nil {
		return err
	}
	defer vault.Close()

	record, err := resolve(vault, ref)
	if err != nil {
		return err
	}

	passphrase, err := GetPassphrase(env, fmt.Sprintf("Passphrase for %q: ", record.Name), false)
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(passphrase)

	mnemonic, err := vault.DecryptRecord(ctx, record.ID, string(passphrase))
	if err != nil {
		return err
	}

	if toClipboard {
		if err := env.Copy(mnemonic); err != nil {
			return err
		}
		env.ok("Copied %q to clipboard", record.Name)
		return nil
	}
	fmt.Fprintln(env.Out, mnemonic)
	return nil
}
