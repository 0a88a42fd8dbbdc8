package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/illarion/stash/internal/git"
	"github.com/illarion/stash/internal/vault"
)

// Status shows the current state of the vault. No passkey required.
func Status(ctx context.Context) {
	if _, err := os.Stat(vault.StashFile); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No .stash file found in current directory")
			fmt.Println("Run 'stash init' to create one")
			return
		}
		Log.Errorf("%s", err)
		os.Exit(1)
	}

	v := OpenVaultOrExit()
	defer v.Close()

	status, err := v.Status(ctx)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Records: %d\n", status.RecordCount)
	for _, info := range status.Records {
		name := info.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("  %s  %s\n", info.ID, name)
	}

	if !status.LastModified.IsZero() {
		fmt.Printf("Last modified: %s\n", status.LastModified.Format(time.RFC1123))
	}
	fmt.Printf("Vault size: %s\n", formatSize(status.FileSize))
	fmt.Printf("Encryption: %s, PBKDF2 %d iterations\n", status.Algorithm, status.KDFIterations)

	if status.Lockout != nil {
		now := time.Now()
		if status.Lockout.LockedAt(now) {
			fmt.Printf("Lockout: active, %s remaining\n", status.Lockout.Remaining(now).Round(time.Second))
		} else if status.Lockout.FailedAttempts > 0 {
			fmt.Printf("Lockout: %d failed attempt(s) recorded\n", status.Lockout.FailedAttempts)
		}
	}

	if advice := git.Format(status.GitStatus); advice != "" {
		fmt.Print(advice)
	}
}

// formatSize renders a byte count in human units
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
