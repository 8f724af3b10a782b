package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/seedvault/internal/storage"
)

// Compact rewrites the bolt file to reclaim unused space.
func Compact(ctx context.Context, env *Env) error {
	vault, backend, err := OpenVault(ctx, env)
	if err != nil {
		return err
	}
	defer vault.Close()

	bolt, ok := backend.(*storage.Bolt)
	if !ok {
		fmt.Fprintf(env.Out, "Nothing to compact for the %s backend\n", env.Config.Storage.Backend)
		return nil
	}

	info, err := os.Stat(bolt.Path())
	if err != nil {
		return err
	}
	sizeBefore := info.Size()

	if err := bolt.Compact(); err != nil {
		return err
	}

	info, err = os.Stat(bolt.Path())
	if err != nil {
		return err
	}
	sizeAfter := info.Size()

	fmt.Fprintf(env.Out, "Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
	return nil
}
