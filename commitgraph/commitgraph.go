// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package commitgraph computes the set of commits and boundary roots
// between a source commit and the known tracking branches it has not yet
// been merged into, for use by the push engine.
package commitgraph

import (
	"sort"
	"strings"

	"github.com/apple-llvm-infra/automerger/gitcmd"
	"github.com/apple-llvm-infra/automerger/splitdir"
)

// knownTrackingPrefixes is the set of first-path-segments that mark a
// remote branch as one of the tool's known upstream/downstream trees.
var knownTrackingPrefixes = map[string]bool{
	"llvm":     true,
	"apple":    true,
	"internal": true,
	"swift":    true,
}

// IsKnownTrackingBranch reports whether ref (e.g. "origin/internal/master")
// names a branch under remote whose first path segment after the remote
// name is one of the known prefixes.
func IsKnownTrackingBranch(remote, ref string) bool {
	name := strings.TrimPrefix(ref, remote+"/")
	if name == ref {
		return false
	}
	first, _, _ := strings.Cut(name, "/")
	return knownTrackingPrefixes[first]
}

// KnownTrackingBranches lists every known tracking branch under remote.
func KnownTrackingBranches(dir, remote string) ([]string, error) {
	out, err := gitcmd.ForEachRef(dir, "%(refname:short)", "refs/remotes/"+remote+"/*")
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		if IsKnownTrackingBranch(remote, line) {
			branches = append(branches, line)
		}
	}
	return branches, nil
}

// Graph is the set of commits and boundary roots between a source commit
// and a "not" set of known tracking branches.
type Graph struct {
	// Commits is in HEAD-to-tail order (newest first), matching rev-list.
	Commits []string
	// Roots are the boundary commits: parents of Commits that are outside
	// the range, i.e. already reachable from the "not" set.
	Roots []string
}

// Compute runs "git rev-list --boundary <source> --not <notRefs...>" and
// splits the output into commits and boundary roots. Returns a nil *Graph
// (not an error) if either side is empty.
func Compute(dir, source string, notRefs []string) (*Graph, error) {
	args := []string{"rev-list", "--boundary", source, "--not"}
	args = append(args, notRefs...)
	out, err := gitcmd.Run(args, gitcmd.Options{Dir: dir})
	if err != nil {
		return nil, err
	}

	var g Graph
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "-") {
			g.Roots = append(g.Roots, strings.TrimPrefix(line, "-"))
		} else {
			g.Commits = append(g.Commits, line)
		}
	}
	if len(g.Commits) == 0 || len(g.Roots) == 0 {
		return nil, nil
	}
	return &g, nil
}

// HasMerges reports whether any commit in the range has 2 or more parents.
func (g *Graph) HasMerges(dir string) (bool, error) {
	if len(g.Commits) == 0 {
		return false, nil
	}
	args := []string{"rev-list", "--min-parents=2", g.Commits[0]}
	for _, r := range g.Roots {
		args = append(args, "--not", r)
	}
	out, err := gitcmd.Run(args, gitcmd.Options{Dir: dir})
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// ChangedFiles returns the distinct set of file paths changed across the
// range (commits not reachable from roots).
func ChangedFiles(dir string, g *Graph) (map[string]bool, error) {
	if len(g.Commits) == 0 {
		return nil, nil
	}
	args := []string{"log", "--format=", "--name-only", g.Commits[0]}
	for _, r := range g.Roots {
		args = append(args, "--not", r)
	}
	out, err := gitcmd.Run(args, gitcmd.Options{Dir: dir})
	if err != nil {
		return nil, err
	}
	files := map[string]bool{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			files[line] = true
		}
	}
	return files, nil
}

// ChangedSplitDirs returns the sorted, deduplicated set of split
// directories touched by files, via splitdir.Classify.
func ChangedSplitDirs(files map[string]bool) []string {
	set := map[string]bool{}
	for f := range files {
		set[splitdir.Classify(f)] = true
	}
	dirs := make([]string, 0, len(set))
	for d := range set {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}
