// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package gitcmd is the sole place in this module that spawns a git child
// process. Every other package drives git through the functions here.
package gitcmd

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/apple-llvm-infra/automerger/executil"
)

// GitError is returned when a git invocation exits non-zero and the caller
// did not ask to ignore the error. It carries enough detail for callers to
// build a "fatal:" message or a more specific typed error on top.
type GitError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *GitError) Error() string {
	return fmt.Sprintf("git %s: exit status %d: %s", strings.Join(e.Args, " "), e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Options configures a single git invocation.
type Options struct {
	// Dir is the working directory git runs in. Empty means the caller's cwd.
	Dir string
	// Stdin is piped to the process, if non-empty.
	Stdin string
	// Timeout bounds the invocation. Zero means no timeout.
	Timeout time.Duration
	// IgnoreError makes a non-zero exit return ("", nil) instead of a *GitError.
	IgnoreError bool
	// NoStrip disables trimming trailing whitespace from stdout.
	NoStrip bool
}

// Run executes "git <args...>" per opts and returns captured stdout.
func Run(args []string, opts Options) (string, error) {
	cmd := executil.Dir(opts.Dir, "git", args...)
	if opts.Stdin != "" {
		cmd.Stdin = strings.NewReader(opts.Stdin)
	}
	var cancel func()
	if opts.Timeout > 0 {
		cmd, cancel = executil.WithTimeout(cmd, opts.Timeout)
		defer cancel()
	}

	log.Printf("$ git %s\n", strings.Join(args, " "))
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	out := stdout.String()
	if !opts.NoStrip {
		out = strings.TrimSpace(out)
	}
	if err == nil {
		for _, line := range strings.Split(strings.TrimRight(stderr.String(), "\n"), "\n") {
			if line != "" {
				log.Printf("git stderr: %s\n", line)
			}
		}
		return out, nil
	}

	exitCode := -1
	if ee, ok := err.(*exec.ExitError); ok {
		exitCode = ee.ExitCode()
	}
	for _, line := range strings.Split(strings.TrimRight(stderr.String(), "\n"), "\n") {
		if line != "" {
			if opts.IgnoreError {
				log.Printf("git stderr (ignored): %s\n", line)
			} else {
				log.Printf("git stderr: %s\n", line)
			}
		}
	}
	if opts.IgnoreError {
		return "", nil
	}
	return out, &GitError{Args: args, ExitCode: exitCode, Stdout: out, Stderr: stderr.String()}
}

// RevParse runs "git rev-parse <rev>" in dir and returns the resolved value.
func RevParse(dir, rev string) (string, error) {
	return Run([]string{"rev-parse", rev}, Options{Dir: dir})
}

// CommitExists reports whether hash names a commit present in the local
// object database, mirroring the original tool's commit_exists check.
func CommitExists(dir, hash string) bool {
	out, err := Run([]string{"rev-parse", "--verify", "--quiet", hash + "^{commit}"}, Options{Dir: dir, IgnoreError: true})
	return err == nil && out == hash
}

// Show runs "git show <spec>" and returns its content.
func Show(dir, rev string) (string, error) {
	return Run([]string{"show", rev}, Options{Dir: dir, NoStrip: true})
}

// ShowFileOrEmpty returns the content of path at rev, or "" if git cannot
// show it. Every git failure (a missing path or an unresolvable rev alike)
// yields ("", nil); the causes are not told apart.
func ShowFileOrEmpty(dir, rev, path string) (string, error) {
	out, err := Run([]string{"show", rev + ":" + path}, Options{Dir: dir, IgnoreError: true, NoStrip: true})
	if err != nil {
		return "", err
	}
	return out, nil
}

// CurrentCheckoutDirectory returns the top-level directory of the repository
// containing the caller's cwd, or "" if not inside a repository.
func CurrentCheckoutDirectory() (string, error) {
	return Run([]string{"rev-parse", "--show-toplevel"}, Options{IgnoreError: true})
}

// FetchRefspec runs "git fetch <remote> <refspec>" in dir.
func FetchRefspec(dir, remote, refspec string) error {
	_, err := Run([]string{"fetch", remote, refspec}, Options{Dir: dir})
	return err
}

// ForEachRef runs "git for-each-ref --format=<format> <pattern>" and returns
// the raw (un-split) output, one line per ref.
func ForEachRef(dir, format, pattern string) (string, error) {
	return Run([]string{"for-each-ref", "--format=" + format, pattern}, Options{Dir: dir})
}

// UpdateRefDelete runs "git update-ref -d <ref>", tolerating a missing ref.
func UpdateRefDelete(dir, ref string) error {
	_, err := Run([]string{"update-ref", "-d", ref}, Options{Dir: dir, IgnoreError: true})
	return err
}

// BranchForceCheckpoint creates or force-moves a local branch to point at rev.
func BranchForceCheckpoint(dir, branch, rev string) error {
	_, err := Run([]string{"branch", "-f", branch, rev}, Options{Dir: dir})
	return err
}

// WorktreeAdd adds a detached or new-branch worktree at path pointing at rev.
// If branch is non-empty, the worktree gets a new branch with that name.
func WorktreeAdd(dir, path, rev, branch string, force bool) error {
	args := []string{"worktree", "add"}
	if force {
		args = append(args, "-f")
	}
	if branch != "" {
		args = append(args, "-b", branch)
	}
	args = append(args, path, rev)
	_, err := Run(args, Options{Dir: dir})
	return err
}

// WorktreeRemove force-removes the worktree at path, ignoring errors, then
// deletes the directory itself in case "git worktree remove" failed (e.g.
// because git's metadata about it is stale).
func WorktreeRemove(dir, path string) {
	_, _ = Run([]string{"worktree", "remove", "--force", path}, Options{Dir: dir, IgnoreError: true})
	_ = os.RemoveAll(path)
}

// BranchDelete force-deletes a local branch, ignoring errors.
func BranchDelete(dir, branch string) {
	_, _ = Run([]string{"branch", "-D", branch}, Options{Dir: dir, IgnoreError: true})
}

// NewTempGitRepo creates a git repo (plain, non-bare "git init") in a fresh
// temp directory.
// Callers should defer AttemptDelete.
func NewTempGitRepo(prefix string) (string, error) {
	dir, err := os.MkdirTemp("", prefix+"-*")
	if err != nil {
		return "", err
	}
	if _, err := Run([]string{"init", dir}, Options{}); err != nil {
		return "", err
	}
	log.Printf("Created temp git repo at %q.\n", dir)
	return dir, nil
}

// AttemptDelete tries to delete dir (expected to be a temp directory). A
// failure is logged but not fatal; the OS will reclaim temp dirs eventually.
func AttemptDelete(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Printf("Unable to clean up directory %q: %v\n", dir, err)
	}
}
