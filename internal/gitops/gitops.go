// Package gitops records ledger changes as git commits.
package gitops

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNothingToCommit is returned when the staged paths have no changes.
var ErrNothingToCommit = errors.New("nothing to commit")

// Author identifies who commits ledger updates.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if _, err := git(dir, "init", "--quiet"); err != nil {
		return err
	}
	return nil
}

// IsRepo reports whether dir is inside a git work tree.
func IsRepo(dir string) bool {
	out, err := git(dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// CommitPaths stages paths and commits them with message. It returns the
// short commit hash, or ErrNothingToCommit when the paths are unchanged.
func CommitPaths(dir, message string, author Author, paths ...string) (string, error) {
	if len(paths) == 0 {
		return "", ErrNothingToCommit
	}

	if _, err := git(dir, append([]string{"add", "--"}, paths...)...); err != nil {
		return "", err
	}

	// diff --cached --quiet exits 1 when something is staged. Other staged
	// files stay out of the commit.
	if _, err := git(dir, append([]string{"diff", "--cached", "--quiet", "--"}, paths...)...); err == nil {
		return "", ErrNothingToCommit
	}

	commit := []string{"commit", "--quiet", "-m", message, "--author", author.String(), "--"}
	if _, err := git(dir, append(commit, paths...)...); err != nil {
		return "", err
	}
	return git(dir, "rev-parse", "--short", "HEAD")
}

func git(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(string(out)), nil
}
