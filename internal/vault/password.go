package vault

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/illarion/stash/internal/crypto"
)

// EnvPasskey supplies the passkey non-interactively, for scripts and tests.
const EnvPasskey = "STASH_PASSKEY"

// ReadPasskey reads a passkey from the terminal without echoing
func ReadPasskey(prompt string) ([]byte, error) {
	fmt.Print(prompt)

	passkey, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // New line after passkey

	if err != nil {
		return nil, fmt.Errorf("failed to read passkey: %w", err)
	}

	return passkey, nil
}

// ReadPasskeyConfirm reads a passkey twice and ensures they match
func ReadPasskeyConfirm() ([]byte, error) {
	passkey1, err := ReadPasskey("Enter passkey: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(passkey1)

	passkey2, err := ReadPasskey("Confirm passkey: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(passkey2)

	if !crypto.ConstantTimeCompare(passkey1, passkey2) {
		return nil, fmt.Errorf("passkeys do not match")
	}

	result := make([]byte, len(passkey1))
	copy(result, passkey1)
	return result, nil
}

// PasskeyFromEnv reads the passkey from the STASH_PASSKEY environment
// variable, or nil if unset.
func PasskeyFromEnv() []byte {
	passkey := os.Getenv(EnvPasskey)
	if passkey == "" {
		return nil
	}
	// Return a copy to avoid issues when clearing the bytes
	result := make([]byte, len(passkey))
	copy(result, []byte(passkey))
	return result
}
