package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/seedvault/internal/crypto"
)

// Rekey re-encrypts one record under a new passphrase. Both passphrases
// are always prompted for.
func Rekey(ctx context.Context, env *Env, ref string) error {
	vault, _, err := OpenVault(ctx, env)
	if err != nil {
		return err
	}
	defer vault.Close()

	record, err := resolve(vault, ref)
	if err != nil {
		return err
	}

	current, err := env.ReadSecret(fmt.Sprintf("Current passphrase for %q: ", record.Name))
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(current)

	next, err := ReadConfirmed(env, "New passphrase: ")
	if err != nil {
		return err
	}
	defer crypto.ClearBytes(next)

	if err := vault.Rekey(ctx, record.ID, string(current), string(next)); err != nil {
		return err
	}
	env.ok("Passphrase changed for %q", record.Name)
	return nil
}
