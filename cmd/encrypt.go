package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/seedvault/internal/crypto"
)

// Encrypt reads a mnemonic and passphrase, prints the resulting blob and,
// when name is set, stores it as a new record.
func Encrypt(ctx context.Context, env *Env, name string) error {
	vault, _, err := OpenVault(ctx, env)
	if err != nil {
		return err
	}
	defer vault.Close()

	mnemonic, err := env.ReadSecret("Enter mnemonic: ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(mnemonic)

	passphrase, err := GetPassphrase(env, "Enter passphrase: ", true)
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(passphrase)

	if len(passphrase) == 0 {
		env.warn("empty passphrase")
	}

	blob, err := vault.Encrypt(string(mnemonic), string(passphrase))
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Out, blob)

	if name == "" {
		return nil
	}
	record, err := vault.SavePending(ctx, name)
	if err != nil {
		return err
	}
	env.ok("Saved %q as %s", record.Name, record.ID)
	return nil
}
