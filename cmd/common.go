package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/stash/internal/config"
	logger "github.com/illarion/stash/internal/logging"
	"github.com/illarion/stash/internal/vault"
)

// EnvMasterSecret supplies the master secret non-interactively.
const EnvMasterSecret = "STASH_MASTER_SECRET"

// Log is the shared command-layer logger. Verbose is set from the -v flag.
var Log = logger.Logger{}

// GetPasskey retrieves a passkey from the environment or prompts the user.
// The caller is responsible for calling crypto.ClearBytes on the result.
func GetPasskey(prompt string) ([]byte, error) {
	if passkey := vault.PasskeyFromEnv(); passkey != nil {
		return passkey, nil
	}

	passkey, err := vault.ReadPasskey(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to read passkey: %w", err)
	}
	return passkey, nil
}

// GetPasskeyOrExit is like GetPasskey but exits on error
func GetPasskeyOrExit(prompt string) []byte {
	passkey, err := GetPasskey(prompt)
	if err != nil {
		Log.Errorf("%s", err)
		os.Exit(1)
	}
	return passkey
}

// GetPasskeyForStore retrieves a new passkey for a record: environment
// variable first, otherwise a prompt with confirmation. Passkeys shorter
// than minLength are allowed but warned about.
func GetPasskeyForStore(minLength int) []byte {
	passkey := vault.PasskeyFromEnv()
	if passkey == nil {
		var err error
		passkey, err = vault.ReadPasskeyConfirm()
		if err != nil {
			Log.Errorf("%s", err)
			os.Exit(1)
		}
	}

	if len(passkey) == 0 {
		Log.Errorf("passkey must not be empty")
		os.Exit(1)
	}
	if len(passkey) < minLength {
		Log.Warnf("passkey is shorter than %d characters; a longer one is recommended", minLength)
	}
	return passkey
}

// GetMasterSecret retrieves the master secret from the environment or
// prompts for it without echo.
func GetMasterSecret() ([]byte, error) {
	if secret := os.Getenv(EnvMasterSecret); secret != "" {
		return []byte(secret), nil
	}
	return vault.ReadPasskey("Enter master secret: ")
}

// LoadConfigOrExit loads the deployment config, exiting on parse errors
func LoadConfigOrExit() *config.Config {
	path, err := config.DefaultPath()
	if err != nil {
		Log.Errorf("%s", err)
		os.Exit(1)
	}
	cfg, err := config.Load(path)
	if err != nil {
		Log.Errorf("%s", err)
		os.Exit(1)
	}
	return cfg
}

// OpenVaultOrExit opens the vault in the current directory with the
// deployment config
func OpenVaultOrExit() *vault.Vault {
	v, err := vault.Open(".", LoadConfigOrExit())
	if err != nil {
		HandleError(err)
	}
	return v
}

// HandleError reports an error to the user and exits
func HandleError(err error) {
	switch {
	case errors.Is(err, vault.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: stash not initialized\n")
		fmt.Fprintf(os.Stderr, "Run 'stash init' first\n")
	case errors.Is(err, vault.ErrAlreadyExists):
		fmt.Fprintf(os.Stderr, "Error: .stash already exists in this directory\n")
		fmt.Fprintf(os.Stderr, "Use 'stash status' to see current state\n")
	case errors.Is(err, vault.ErrLockedOut):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'stash reset-lockout' with the master secret to clear it\n")
	case errors.Is(err, vault.ErrWrongPasskey):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, vault.ErrNotFound):
		fmt.Fprintf(os.Stderr, "Error: record not found\n")
		fmt.Fprintf(os.Stderr, "Use 'stash ls' to see stored records\n")
	case errors.Is(err, vault.ErrNoMasterSecret):
		fmt.Fprintf(os.Stderr, "Error: master secret not configured\n")
		fmt.Fprintf(os.Stderr, "Set it during 'stash init' or in the config file\n")
	case errors.Is(err, vault.ErrBadMasterSecret):
		fmt.Fprintf(os.Stderr, "Error: authentication failed\n")
	case errors.Is(err, vault.ErrEmptyPasskey):
		fmt.Fprintf(os.Stderr, "Error: passkey must not be empty\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}
