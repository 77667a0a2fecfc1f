// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package regraft rewrites a monorepo commit graph into a split-repo
// commit graph by replacing boundary roots with their recorded split-commit
// anchors and restricting tree content to one split directory.
package regraft

import (
	"fmt"
	"strings"

	"github.com/apple-llvm-infra/automerger/commitgraph"
	"github.com/apple-llvm-infra/automerger/gitcmd"
	"github.com/apple-llvm-infra/automerger/splitdir"
)

// SplitCommitTrailer and SplitDirTrailer are the bit-exact trailer keys the
// regraft anchor is recorded under.
const (
	SplitCommitTrailer = "apple-llvm-split-commit"
	SplitDirTrailer    = "apple-llvm-split-dir"
)

// NoSplitRootError means no commit in root's first-parent history carries a
// split-dir trailer naming the split directory being regrafted.
type NoSplitRootError struct {
	Root string
}

func (e *NoSplitRootError) Error() string {
	return fmt.Sprintf("no split-commit trailer found for root %s", e.Root)
}

// MissingSplitRootError means a split-dir trailer was found, but the split
// commit it names is not present in the local object database.
type MissingSplitRootError struct {
	Root        string
	SplitCommit string
}

func (e *MissingSplitRootError) Error() string {
	return fmt.Sprintf("split commit %s (recorded for root %s) is not present locally", e.SplitCommit, e.Root)
}

// findBaseSplitCommit scans root's first-parent history for the most
// recent commit whose message contains "apple-llvm-split-dir: <dir>/", then
// extracts its apple-llvm-split-commit trailer.
func findBaseSplitCommit(dir, root, splitDir string) (string, error) {
	grepPattern := fmt.Sprintf("^%s: %s/", SplitDirTrailer, splitDir)
	out, err := gitcmd.Run([]string{
		"log", "--first-parent", "--grep=" + grepPattern, "--format=%H", "-1", root,
	}, gitcmd.Options{Dir: dir})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", &NoSplitRootError{Root: root}
	}
	anchorCommit := strings.Split(out, "\n")[0]

	trailers, err := gitcmd.Run([]string{
		"log", "-1", "--format=%(trailers:only,key=" + SplitCommitTrailer + ",valueonly)", anchorCommit,
	}, gitcmd.Options{Dir: dir})
	if err != nil {
		return "", err
	}
	splitCommit := strings.TrimSpace(trailers)
	if splitCommit == "" {
		return "", &NoSplitRootError{Root: root}
	}
	if !gitcmd.CommitExists(dir, splitCommit) {
		return "", &MissingSplitRootError{Root: root, SplitCommit: splitCommit}
	}
	return splitCommit, nil
}

// Result is the outcome of a successful regraft: the rewritten graph, or
// nil if nothing needed rewriting.
type Result struct {
	Graph  *commitgraph.Graph
	Branch string
}

// Regraft rewrites g onto splitDir, producing a new commit graph rooted on
// the split repo's own history instead of the monorepo's.
//
// Steps (spec.md 4.10): resolve a base split commit per root, build a work
// branch, rewrite history with a tree filter (restrict to splitDir, or
// strip all known components for the root split dir) and a parent filter
// (replace monorepo roots with their base split commits), then recompute
// the graph and verify the changed-path invariant.
func Regraft(dir string, g *commitgraph.Graph, splitDir string) (*Result, error) {
	baseSplitCommits := make(map[string]string, len(g.Roots))
	for _, root := range g.Roots {
		sc, err := findBaseSplitCommit(dir, root, splitDir)
		if err != nil {
			return nil, err
		}
		baseSplitCommits[root] = sc
	}

	branch := "temp-apple-llvm-push-" + splitDir
	gitcmd.BranchDelete(dir, branch)
	if err := gitcmd.BranchForceCheckpoint(dir, branch, g.Commits[0]); err != nil {
		return nil, err
	}

	treeFilter := buildTreeFilter(splitDir)
	parentFilter := buildParentFilter(baseSplitCommits)

	notArgs := make([]string, 0, len(g.Roots))
	for _, r := range g.Roots {
		notArgs = append(notArgs, r)
	}

	args := []string{
		"filter-branch", "-f", "--prune-empty",
		"--tree-filter", treeFilter,
		"--parent-filter", parentFilter,
		branch, "--not",
	}
	args = append(args, notArgs...)

	_, err := gitcmd.Run(args, gitcmd.Options{Dir: dir, IgnoreError: true})
	// "nothing to rewrite" is not a real failure: it means every commit in
	// the range was pruned empty (no changes under splitDir at all).
	if err != nil {
		if out, rerr := gitcmd.Run([]string{"rev-parse", branch}, gitcmd.Options{Dir: dir, IgnoreError: true}); rerr != nil || out == "" {
			return nil, err
		}
	}

	baseSplitRefs := make([]string, 0, len(baseSplitCommits))
	for _, sc := range baseSplitCommits {
		baseSplitRefs = append(baseSplitRefs, sc)
	}
	newGraph, err := commitgraph.Compute(dir, branch, baseSplitRefs)
	if err != nil {
		return nil, err
	}
	if newGraph == nil {
		return &Result{Graph: nil, Branch: branch}, nil
	}

	if err := verifyChangedPaths(dir, g, newGraph, splitDir); err != nil {
		return nil, err
	}
	return &Result{Graph: newGraph, Branch: branch}, nil
}

// buildTreeFilter returns the shell snippet filter-branch runs against
// every rewritten commit's index.
func buildTreeFilter(splitDir string) string {
	if splitDir == splitdir.Root {
		return "git rm -r --cached --ignore-unmatch " + strings.Join(splitdir.All(), " ")
	}
	return fmt.Sprintf(
		"git read-tree \"$(git rev-parse \"$GIT_COMMIT:%s\")\" && git checkout-index -a -f && git clean -fdx",
		splitDir,
	)
}

// buildParentFilter returns the shell snippet filter-branch runs to rewrite
// each commit's parent list, substituting every monorepo root hash for its
// resolved split-repo base commit.
func buildParentFilter(baseSplitCommits map[string]string) string {
	var sb strings.Builder
	sb.WriteString("cat")
	for root, splitCommit := range baseSplitCommits {
		fmt.Fprintf(&sb, " | sed 's/%s/%s/g'", root, splitCommit)
	}
	return sb.String()
}

// verifyChangedPaths enforces spec.md 4.10's verification invariant: the
// changed paths of the regrafted range must equal the changed paths of the
// source range restricted to splitDir, with the "splitDir/" prefix
// stripped (no stripping when splitDir is the root sentinel).
func verifyChangedPaths(dir string, source, regrafted *commitgraph.Graph, splitDir string) error {
	sourceFiles, err := commitgraph.ChangedFiles(dir, source)
	if err != nil {
		return err
	}
	expected := map[string]bool{}
	for f := range sourceFiles {
		if splitdir.Classify(f) != splitDir {
			continue
		}
		if splitDir == splitdir.Root {
			expected[f] = true
		} else {
			expected[splitdir.StripPrefix(splitDir, f)] = true
		}
	}

	actual, err := commitgraph.ChangedFiles(dir, regrafted)
	if err != nil {
		return err
	}

	for f := range expected {
		if !actual[f] {
			return fmt.Errorf("regraft verification failed: expected changed path %q missing from regrafted graph", f)
		}
	}
	for f := range actual {
		if !expected[f] {
			return fmt.Errorf("regraft verification failed: unexpected changed path %q in regrafted graph", f)
		}
	}
	return nil
}
