package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/illarion/seedvault/cmd"
	"github.com/illarion/seedvault/internal/config"
	"github.com/illarion/seedvault/internal/logging"
)

var version = "dev" // set by the linker

// optionalConfig marks commands that may run before --config exists.
const optionalConfig = "optional-config"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cmd.NewEnv).ExecuteContext(ctx); err != nil {
		cmd.HandleError(err)
	}
}

// newRootCmd builds the command tree. newEnv turns the resolved config into
// the environment commands run against; tests substitute their own streams.
func newRootCmd(newEnv func(config.Config) *cmd.Env) *cobra.Command {
	var (
		cfgFile string
		env     *cmd.Env
	)

	root := &cobra.Command{
		Use:   "seedvault",
		Short: "Encrypted storage for wallet recovery phrases",
		Long: `seedvault encrypts mnemonic recovery phrases under a passphrase with
AES-256-GCM and keeps the ciphertext in a local preference store.

The passphrase is never stored. Set SEEDVAULT_PASSPHRASE to skip the prompt.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			file := cfgFile
			if _, optional := c.Annotations[optionalConfig]; optional {
				if _, err := os.Stat(file); err != nil {
					file = ""
				}
			}
			conf, err := config.Load(c, file)
			if err != nil {
				return err
			}
			env = newEnv(conf)
			return logging.Setup(env.Err, conf.Log.Level)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <user config dir>/seedvault/seedvault.yaml)")
	root.PersistentFlags().String("backend", "", "storage backend: bolt, sqlite, keyring or memory")
	root.PersistentFlags().String("path", "", "database file for the bolt and sqlite backends")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the current settings",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			optionalConfig: "true",
		},
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Init(env, cfgFile, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	var saveAs string
	encryptCmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a mnemonic and print the ciphertext",
		Long: `Reads a mnemonic and a passphrase (typed twice) and prints the
ciphertext. With --save the ciphertext is also stored under NAME.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Encrypt(c.Context(), env, saveAs)
		},
	}
	encryptCmd.Flags().StringVar(&saveAs, "save", "", "store the ciphertext under `NAME`")

	decryptCmd := &cobra.Command{
		Use:   "decrypt [BLOB]",
		Short: "Decrypt a ciphertext given as argument or on stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var blob string
			if len(args) == 1 {
				blob = args[0]
			}
			return cmd.Decrypt(c.Context(), env, blob)
		},
	}

	var copyOut bool
	showCmd := &cobra.Command{
		Use:   "show ID|NAME",
		Short: "Decrypt a stored mnemonic",
		Long: `Decrypts a stored record, found by id prefix or exact name, and
updates its last access time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Show(c.Context(), env, args[0], copyOut)
		},
	}
	showCmd.Flags().BoolVarP(&copyOut, "copy", "c", false, "copy to the clipboard instead of printing")

	saveCmd := &cobra.Command{
		Use:   "save NAME BLOB",
		Short: "Store an existing ciphertext",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Save(c.Context(), env, args[0], args[1])
		},
	}

	listCmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List stored mnemonics",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.List(c.Context(), env)
		},
	}

	rmCmd := &cobra.Command{
		Use:     "rm ID|NAME...",
		Aliases: []string{"remove"},
		Short:   "Delete stored mnemonics",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Remove(c.Context(), env, args)
		},
	}

	rekeyCmd := &cobra.Command{
		Use:   "rekey ID|NAME",
		Short: "Change the passphrase of a stored mnemonic",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Rekey(c.Context(), env, args[0])
		},
	}

	compactCmd := &cobra.Command{
		Use:   "compact",
		Short: "Compact the bolt database to reclaim disk space",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Compact(c.Context(), env)
		},
	}

	root.AddCommand(initCmd, encryptCmd, decryptCmd, showCmd, saveCmd, listCmd, rmCmd, rekeyCmd, compactCmd)
	return root
}
