package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/seedvault/internal/config"
	"github.com/illarion/seedvault/internal/git"
	"github.com/illarion/seedvault/internal/storage"
)

var ErrConfigExists = errors.New("config file already exists")

// Init writes the current configuration to path (or the default location)
// so it can be edited. An existing file is kept unless force is set.
func Init(env *Env, path string, force bool) error {
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	c := env.Config
	written, err := config.WriteConfigFile(&c, path)
	if err != nil {
		return err
	}

	env.ok("Wrote %s", written)
	fmt.Fprintf(env.Out, "  backend: %s (%s)\n", c.Storage.Backend, c.Storage.Path)
	fmt.Fprintf(env.Out, "  cipher:  %s\n", c.Cipher.Scheme)

	switch c.Storage.Backend {
	case storage.BackendBolt, storage.BackendSQLite, "":
		if advice := git.Check(c.Storage.Path).Advice(c.Storage.Path); advice != "" {
			env.warn("%s", advice)
		}
	}
	return nil
}
