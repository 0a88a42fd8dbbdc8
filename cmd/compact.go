package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/stash/internal/vault"
)

// Compact compacts the vault database to reclaim unused space
func Compact() {
	v := OpenVaultOrExit()
	defer v.Close()

	info, err := os.Stat(vault.StashFile)
	if err != nil {
		Log.Errorf("%s", err)
		os.Exit(1)
	}
	sizeBefore := info.Size()

	if err := v.Compact(); err != nil {
		HandleError(err)
	}

	info, err = os.Stat(vault.StashFile)
	if err != nil {
		Log.Errorf("%s", err)
		os.Exit(1)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}
