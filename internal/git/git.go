// Package git inspects how the vault file relates to the surrounding git
// repository, if any. The vault holds only ciphertext and metadata, so it
// is safe to commit; status surfaces advice either way.
package git

import (
	"os/exec"
	"path/filepath"
	"strings"
)

// Status describes the vault file's git situation.
type Status struct {
	IsRepo  bool
	Tracked bool
	Ignored bool
}

// IsGitRepo checks if the directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	return cmd.Run() == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	// git check-ignore returns exit code 0 if the file is ignored
	return cmd.Run() == nil
}

// Check inspects the git status of the vault file at vaultPath.
func Check(vaultPath string) *Status {
	workDir := filepath.Dir(vaultPath)
	name := filepath.Base(vaultPath)

	status := &Status{}
	if !IsGitRepo(workDir) {
		return status
	}
	status.IsRepo = true
	status.Tracked = IsTracked(workDir, name)
	status.Ignored = IsIgnored(workDir, name)
	return status
}

// Format renders git advice for display, or "" outside a repository.
func Format(status *Status) string {
	if status == nil || !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit:\n")
	switch {
	case status.Tracked:
		result.WriteString("   ok: vault file is tracked by git (ciphertext only)\n")
	case status.Ignored:
		result.WriteString("   ok: vault file is in .gitignore\n")
	default:
		result.WriteString("   warning: vault file neither tracked nor ignored (git add or .gitignore it)\n")
	}
	return result.String()
}
