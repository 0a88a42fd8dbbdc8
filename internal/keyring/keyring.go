// Package keyring stores record passkeys in the OS keyring, keyed by
// vault id and record id, so frequently used records can be opened
// without prompting. Purely a convenience: the vault itself never
// depends on the keyring.
package keyring

import (
	"github.com/zalando/go-keyring"
)

const serviceName = "stash"

func account(vaultID, recordID string) string {
	return vaultID + "/" + recordID
}

// SavePasskey stores a record's passkey in the OS keyring
func SavePasskey(vaultID, recordID, passkey string) error {
	return keyring.Set(serviceName, account(vaultID, recordID), passkey)
}

// GetPasskey retrieves a record's passkey from the OS keyring
func GetPasskey(vaultID, recordID string) (string, error) {
	return keyring.Get(serviceName, account(vaultID, recordID))
}

// DeletePasskey removes a record's passkey from the OS keyring
func DeletePasskey(vaultID, recordID string) error {
	return keyring.Delete(serviceName, account(vaultID, recordID))
}

// HasPasskey checks if a passkey is stored for the record
func HasPasskey(vaultID, recordID string) bool {
	_, err := keyring.Get(serviceName, account(vaultID, recordID))
	return err == nil
}
