package cmd

import (
	"context"
	"strings"
)

// Save stores an existing blob under name without decrypting it.
func Save(ctx context.Context, env *Env, name, blob string) error {
	vault, _, err := OpenVault(ctx, env)
	if err != nil {
		return err
	}
	defer vault.Close()

	record, err := vault.Save(ctx, name, strings.TrimSpace(blob))
	if err != nil {
		return err
	}
	env.ok("Saved %q as %s", record.Name, record.ID)
	return nil
}
