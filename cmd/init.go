package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/stash/internal/config"
	"github.com/illarion/stash/internal/crypto"
	"github.com/illarion/stash/internal/vault"
)

// Init creates a new vault in the current directory and, unless one is
// already configured, records the master secret digest in the deployment
// config. The secret itself is never stored anywhere.
func Init() {
	if err := vault.Create("."); err != nil {
		HandleError(err)
	}
	fmt.Printf("Initialized empty stash vault in %s\n", vault.StashFile)

	cfgPath, err := config.DefaultPath()
	if err != nil {
		Log.Errorf("%s", err)
		os.Exit(1)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		Log.Errorf("%s", err)
		os.Exit(1)
	}
	if cfg.HasMasterSecret() {
		Log.Infof("master secret already configured in %s", cfgPath)
		return
	}

	secret, err := GetMasterSecret()
	if err != nil {
		Log.Errorf("%s", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(secret)

	if len(secret) == 0 {
		Log.Warnf("no master secret configured; 'stash reset-lockout' will be unavailable")
		return
	}

	cfg.SetMasterSecret(secret)
	if err := config.Save(cfg, cfgPath); err != nil {
		Log.Errorf("%s", err)
		os.Exit(1)
	}
	fmt.Printf("Master secret configured in %s\n", cfgPath)
}
