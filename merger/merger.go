// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package merger lands a regrafted commit graph onto the top of a split
// repository's destination branch, using a disposable worktree.
package merger

import (
	"fmt"
	"path/filepath"

	"github.com/apple-llvm-infra/automerger/gitcmd"
)

// Strategy selects how the graph is landed on top of the destination
// branch.
type Strategy string

const (
	// FastForwardOnly requires the destination branch to already be an
	// ancestor of the regrafted graph; no new merge commit is created.
	FastForwardOnly Strategy = "ff_only"
	// Rebase replays the regrafted commits on top of the destination
	// branch, rewriting their hashes. Refused when the graph has_merges.
	Rebase Strategy = "rebase"
	// RebaseOrMerge rebases when the graph is linear and otherwise
	// performs a real merge so the graph's own merge commits survive.
	RebaseOrMerge Strategy = "rebase_or_merge"
)

// ImpossibleMergeError means the requested strategy could not land the
// graph: a fast-forward was required but the branches have diverged, a
// rebase was refused on a graph with merges, or a rebase/merge hit a
// conflict.
type ImpossibleMergeError struct {
	Strategy Strategy
	Reason   string
}

func (e *ImpossibleMergeError) Error() string {
	return fmt.Sprintf("cannot merge with strategy %q: %s", e.Strategy, e.Reason)
}

// worktreeName and tempBranchName are fixed per split dir so repeated runs
// reuse (and clean) the same disposable checkout and branch.
func worktreeName(splitDir string) string {
	return ".git/apple-llvm-push-checkout-" + splitDir
}

func tempBranchName(splitDir string) string {
	return "temp-apple-llvm-push-merged-" + splitDir
}

// resetWorktree aborts any in-progress operation and restores the worktree
// to a clean state, mirroring the teacher's submodule reset idiom.
func resetWorktree(dir string) {
	_, _ = gitcmd.Run([]string{"am", "--abort"}, gitcmd.Options{Dir: dir, IgnoreError: true})
	_, _ = gitcmd.Run([]string{"rebase", "--abort"}, gitcmd.Options{Dir: dir, IgnoreError: true})
	_, _ = gitcmd.Run([]string{"merge", "--abort"}, gitcmd.Options{Dir: dir, IgnoreError: true})
	_, _ = gitcmd.Run([]string{"reset", "--hard"}, gitcmd.Options{Dir: dir, IgnoreError: true})
	_, _ = gitcmd.Run([]string{"clean", "-df"}, gitcmd.Options{Dir: dir, IgnoreError: true})
}

// Checkout is a disposable worktree, checked out on a fixed temp branch at
// the destination split branch's tip, used to land one split directory's
// regrafted graph on top of it.
type Checkout struct {
	RepoDir    string
	Path       string
	SplitDir   string
	TempBranch string
}

// NewCheckout removes any stale worktree and temp branch for splitDir, then
// creates a fresh worktree on a new temp branch rooted at destBranch.
func NewCheckout(repoDir, splitDir, destBranch string) (*Checkout, error) {
	path := filepath.Join(repoDir, worktreeName(splitDir))
	branch := tempBranchName(splitDir)

	gitcmd.WorktreeRemove(repoDir, path)
	gitcmd.BranchDelete(repoDir, branch)
	if err := gitcmd.WorktreeAdd(repoDir, path, destBranch, branch, true); err != nil {
		return nil, err
	}
	return &Checkout{RepoDir: repoDir, Path: path, SplitDir: splitDir, TempBranch: branch}, nil
}

// Close removes the disposable worktree and its temp branch.
func (c *Checkout) Close() {
	gitcmd.WorktreeRemove(c.RepoDir, c.Path)
	gitcmd.BranchDelete(c.RepoDir, c.TempBranch)
}

// MergeCommitGraphOntoBranch lands source (the regrafted graph's branch)
// onto the checkout's temp branch per strategy, and returns the resulting
// commit.
//
// Grounded on the original tool's merge_commit_graph_with_top_of_branch:
// ff-only is always attempted first, and its failure is tolerated unless
// strategy is FastForwardOnly. Whether or not the ff-only attempt landed
// anything, every other strategy still runs its own check afterward: rebase
// is refused outright when the graph has_merges (a rebase cannot replay a
// merge commit), and rebase_or_merge falls back to a real merge in that case
// so the graph's own merge commits survive. A ff-only success never skips
// that check for Rebase.
func (c *Checkout) MergeCommitGraphOntoBranch(strategy Strategy, source string, hasMerges bool) (string, error) {
	_, ffErr := gitcmd.Run([]string{"merge", "--ff-only", source}, gitcmd.Options{Dir: c.Path})
	if ffErr != nil && strategy == FastForwardOnly {
		resetWorktree(c.Path)
		return "", &ImpossibleMergeError{Strategy: strategy, Reason: "destination branch is not an ancestor of the regrafted graph"}
	}

	switch strategy {
	case FastForwardOnly:
		// ffErr == nil here; already landed.

	case Rebase:
		if hasMerges {
			return "", &ImpossibleMergeError{Strategy: strategy, Reason: "graph contains a merge commit and cannot be rebased"}
		}
		if err := c.rebaseOnto(source); err != nil {
			return "", err
		}

	case RebaseOrMerge:
		if hasMerges {
			if err := c.merge(source); err != nil {
				return "", err
			}
		} else if err := c.rebaseOnto(source); err != nil {
			return "", err
		}

	default:
		return "", fmt.Errorf("unknown merge strategy %q", strategy)
	}

	return gitcmd.Run([]string{"rev-parse", "HEAD"}, gitcmd.Options{Dir: c.Path})
}

// rebaseOnto replays the commits unique to source onto the checkout's temp
// branch, equivalent to "rebase --onto <temp-branch> <temp-branch> <source>"
// run while the temp branch is checked out.
func (c *Checkout) rebaseOnto(source string) error {
	_, err := gitcmd.Run(
		[]string{"rebase", "--onto", c.TempBranch, c.TempBranch, source},
		gitcmd.Options{Dir: c.Path},
	)
	if err != nil {
		resetWorktree(c.Path)
		return &ImpossibleMergeError{Strategy: Rebase, Reason: "rebase hit a conflict"}
	}
	if out, serr := gitcmd.Run([]string{"status", "--porcelain"}, gitcmd.Options{Dir: c.Path}); serr == nil && out != "" {
		resetWorktree(c.Path)
		return &ImpossibleMergeError{Strategy: Rebase, Reason: "rebase left the worktree dirty"}
	}
	// rebase --onto checks out source and replays it there; return to the
	// temp branch so HEAD reflects the landed result.
	_, err = gitcmd.Run([]string{"checkout", c.TempBranch}, gitcmd.Options{Dir: c.Path})
	if err != nil {
		return err
	}
	_, err = gitcmd.Run([]string{"merge", "--ff-only", source}, gitcmd.Options{Dir: c.Path})
	return err
}

// merge creates a real merge commit landing source onto the temp branch,
// used when the graph being landed itself contains merge commits.
func (c *Checkout) merge(source string) error {
	if _, err := gitcmd.Run([]string{"merge", "--no-ff", source}, gitcmd.Options{Dir: c.Path}); err != nil {
		resetWorktree(c.Path)
		return &ImpossibleMergeError{Strategy: RebaseOrMerge, Reason: "merge of graph containing merge commits failed"}
	}
	if out, err := gitcmd.Run([]string{"status", "--porcelain"}, gitcmd.Options{Dir: c.Path}); err == nil && out != "" {
		resetWorktree(c.Path)
		return &ImpossibleMergeError{Strategy: RebaseOrMerge, Reason: "merge left the worktree dirty"}
	}
	return nil
}
