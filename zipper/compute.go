// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package zipper

import (
	"fmt"
	"strings"

	"github.com/apple-llvm-infra/automerger/gitcmd"
)

// unmergedCommits returns the commits reachable from upstreamRef but not
// from targetRef, first-parent only, oldest-first (the reverse of git
// rev-list's default HEAD-first order).
func unmergedCommits(dir, upstreamRef, targetRef string) ([]string, error) {
	out, err := gitcmd.Run([]string{
		"rev-list", "--first-parent", "--reverse", targetRef + ".." + upstreamRef,
	}, gitcmd.Options{Dir: dir})
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func mergeBase(dir, a, b string) (string, error) {
	return gitcmd.Run([]string{"merge-base", a, b}, gitcmd.Options{Dir: dir})
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// buildIterator fetches, for one upstream side, its unmerged commits and
// per-commit merge bases against the common ancestor, capped at MaxCommits.
func buildIterator(dir, remote, sideUpstream, targetRef, commonAncestorRef string) (*BranchIterator, error) {
	commits, err := unmergedCommits(dir, remote+"/"+sideUpstream, targetRef)
	if err != nil {
		return nil, err
	}
	if len(commits) > MaxCommits {
		commits = commits[:MaxCommits]
	}

	bases := make([]string, len(commits))
	for i, c := range commits {
		b, err := mergeBase(dir, c, commonAncestorRef)
		if err != nil {
			return nil, fmt.Errorf("merge-base of %s and %s: %w", c, commonAncestorRef, err)
		}
		bases[i] = b
	}

	var initial string
	if len(commits) > 0 {
		initial, err = mergeBase(dir, commits[0]+"^", commonAncestorRef)
		if err != nil {
			return nil, fmt.Errorf("merge-base of %s^ and %s: %w", commits[0], commonAncestorRef, err)
		}
	} else {
		initial, err = mergeBase(dir, remote+"/"+sideUpstream, commonAncestorRef)
		if err != nil {
			return nil, fmt.Errorf("merge-base of %s and %s: %w", sideUpstream, commonAncestorRef, err)
		}
	}

	return &BranchIterator{Commits: commits, MergeBases: bases, InitialMergeBase: initial}, nil
}

// ComputeZipperedMerges builds both sides' iterators against target and
// commonAncestor and runs the planner. It returns nil if both sides already
// have no unmerged commits (the target is fully rejoined).
func ComputeZipperedMerges(dir, remote, upstream, secondaryUpstream, target, commonAncestor string) ([]MergePlan, error) {
	targetRef := remote + "/" + target
	commonAncestorRef := remote + "/" + commonAncestor

	left, err := buildIterator(dir, remote, upstream, targetRef, commonAncestorRef)
	if err != nil {
		return nil, err
	}
	right, err := buildIterator(dir, remote, secondaryUpstream, targetRef, commonAncestorRef)
	if err != nil {
		return nil, err
	}
	if len(left.Commits) == 0 && len(right.Commits) == 0 {
		return nil, nil
	}
	return ComputeMergeCommits(left, right), nil
}
