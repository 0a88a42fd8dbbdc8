package vault

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/illarion/stash/internal/crypto"
)

const (
	binarySampleSize   = 8192 // Bytes to sample for text/binary detection
	binaryThresholdPct = 10   // Max % non-printable chars for text content
)

// Diff decrypts the record and returns a unified diff between its
// plaintext and localData. An empty string means the contents match.
// Decryption goes through Retrieve, so a diff counts as a retrieve for
// the lockout policy.
func (v *Vault) Diff(ctx context.Context, id string, passkey []byte, label string, localData []byte, principal string) (string, error) {
	plaintext, err := v.Retrieve(ctx, id, passkey, principal)
	if err != nil {
		return "", err
	}
	defer crypto.ClearBytes(plaintext)

	return unifiedDiff(label, plaintext, localData)
}

// unifiedDiff renders a git-style diff between the stored and local
// content, falling back to a one-line notice for binary data.
func unifiedDiff(label string, stored, local []byte) (string, error) {
	if sameContent(stored, local) {
		return "", nil
	}

	if !looksLikeText(stored) || !looksLikeText(local) {
		return fmt.Sprintf("Binary content of %s has changed\n", label), nil
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff for better output
	storedStr, localStr := string(stored), string(local)
	a, b, lineArray := dmp.DiffLinesToChars(storedStr, localStr)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	patches := dmp.PatchMake(storedStr, diffs)
	if len(patches) == 0 {
		return "", nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("--- a/%s\n", label))
	result.WriteString(fmt.Sprintf("+++ b/%s\n", label))
	result.WriteString(dmp.PatchToText(patches))

	return result.String(), nil
}

func sameContent(a, b []byte) bool {
	aHash := sha256.Sum256(a)
	bHash := sha256.Sum256(b)
	return bytes.Equal(aHash[:], bHash[:])
}

// looksLikeText reports whether data is likely text rather than binary.
func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	// Null bytes are a strong indicator of binary
	if bytes.IndexByte(data, 0) != -1 {
		return false
	}

	sampleSize := binarySampleSize
	if len(data) < sampleSize {
		sampleSize = len(data)
	}
	sample := data[:sampleSize]

	if !utf8.Valid(sample) {
		return false
	}

	nonPrintable := 0
	for _, b := range sample {
		// Allow common whitespace: tab, newline, carriage return
		if b < 32 && b != 9 && b != 10 && b != 13 {
			nonPrintable++
		}
		if b == 127 {
			nonPrintable++
		}
	}

	threshold := len(sample) * binaryThresholdPct / 100
	return nonPrintable <= threshold
}
