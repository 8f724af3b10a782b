package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/illarion/seedvault/internal/logging"
	"github.com/illarion/seedvault/internal/storage"
)

const (
	shortIDLen = 8
	timeLayout = "2006-01-02 15:04"
)

// List prints the stored records in insertion order. No passphrase is
// needed.
func List(ctx context.Context, env *Env) error {
	vault, backend, err := OpenVault(ctx, env)
	if err != nil {
		return err
	}
	defer vault.Close()

	records := vault.Records()
	if len(records) == 0 {
		fmt.Fprintln(env.Out, "No saved mnemonics")
		fmt.Fprintln(env.Out, "Run 'seedvault encrypt --save NAME' to add one")
		return nil
	}

	w := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tLAST ACCESSED")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.ID.String()[:shortIDLen],
			r.Name,
			formatTime(r.CreatedAt.Time),
			formatTime(r.LastAccessed.Time),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if bolt, ok := backend.(*storage.Bolt); ok {
		printBoltInfo(env, bolt)
	}
	return nil
}

// printBoltInfo prints when the database was created and last written.
// Missing metadata is logged, not fatal.
func printBoltInfo(env *Env, bolt *storage.Bolt) {
	created, err := bolt.Created()
	if err != nil {
		logging.Warnf("failed to read database creation time: %v", err)
		return
	}
	modified, err := bolt.Modified()
	if err != nil {
		logging.Warnf("failed to read database modification time: %v", err)
		return
	}
	fmt.Fprintf(env.Out, "\n%s: created %s, last modified %s\n",
		bolt.Path(), formatTime(created), formatTime(modified))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
