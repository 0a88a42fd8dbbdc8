package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/illarion/stash/internal/crypto"
	"github.com/illarion/stash/internal/keyring"
)

// Put seals data under a passkey and stores it as a new record.
// Data comes from file, or stdin when file is empty. With saveKeyring the
// passkey is also remembered in the OS keyring for this record.
func Put(ctx context.Context, name, file string, saveKeyring bool) {
	v := OpenVaultOrExit()
	defer v.Close()

	var data []byte
	var err error
	if file != "" {
		data, err = os.ReadFile(file)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		Log.Errorf("failed to read data: %s", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(data)

	if len(data) == 0 {
		Log.Errorf("nothing to store")
		os.Exit(1)
	}

	cfg := LoadConfigOrExit()
	passkey := GetPasskeyForStore(cfg.MinPasskeyLength)
	defer crypto.ClearBytes(passkey)

	id, err := v.Store(ctx, data, passkey, name)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("stored: %s", id)
	if name != "" {
		fmt.Printf(" (%s)", name)
	}
	fmt.Println()

	if saveKeyring {
		vaultID, err := v.VaultID()
		if err != nil {
			Log.Warnf("failed to read vault id: %s", err)
			return
		}
		if err := keyring.SavePasskey(vaultID, id, string(passkey)); err != nil {
			Log.Warnf("failed to save passkey to keyring: %s", err)
			return
		}
		fmt.Println("passkey saved to OS keyring")
	}
}
