package vault

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/illarion/stash/internal/crypto"
	"github.com/illarion/stash/internal/git"
	"github.com/illarion/stash/internal/storage"
)

// StatusInfo describes the vault without touching any passkey or plaintext.
type StatusInfo struct {
	RecordCount   int
	Records       []storage.RecordInfo
	LastModified  time.Time
	FileSize      int64
	Algorithm     string
	KDFIterations int
	Lockout       *storage.LockoutState
	GitStatus     *git.Status
}

// Status reports record metadata, vault parameters, the lockout state for
// the default principal, and git advice for the vault file. No passkey is
// required.
func (v *Vault) Status(ctx context.Context) (*StatusInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := v.db.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	status := &StatusInfo{
		RecordCount:   len(records),
		Records:       records,
		Algorithm:     "AES-256-GCM",
		KDFIterations: crypto.DefaultIters,
	}

	if modified, err := v.db.GetModified(); err == nil {
		status.LastModified = modified
	}
	if info, err := os.Stat(v.path); err == nil {
		status.FileSize = info.Size()
	}
	if state, err := v.guard.Status(DefaultPrincipal); err == nil {
		status.Lockout = state
	}

	// Git advice: the vault file holds only ciphertext and is safe to
	// commit; warn when it is neither tracked nor ignored
	status.GitStatus = git.Check(v.path)

	return status, nil
}
