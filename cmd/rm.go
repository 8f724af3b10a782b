package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/seedvault/internal/core"
	"github.com/illarion/seedvault/internal/storage"
)

// Remove deletes records by id prefix or name. All references are resolved
// before anything is deleted.
func Remove(ctx context.Context, env *Env, refs []string) error {
	if len(refs) == 0 {
		return fmt.Errorf("%w: rm requires at least one record", core.ErrInvalidInput)
	}

	vault, backend, err := OpenVault(ctx, env)
	if err != nil {
		return err
	}
	defer vault.Close()

	targets := make([]storage.Record, 0, len(refs))
	for _, ref := range refs {
		record, err := resolve(vault, ref)
		if err != nil {
			return err
		}
		targets = append(targets, record)
	}

	for _, record := range targets {
		if err := vault.Delete(ctx, record.ID); err != nil {
			return err
		}
		env.ok("Removed %q (%s)", record.Name, record.ID.String()[:shortIDLen])
	}

	// Reclaim the space held by the old document
	if bolt, ok := backend.(*storage.Bolt); ok {
		if err := bolt.Compact(); err != nil {
			env.warn("compaction failed: %s", err)
		}
	}
	return nil
}
