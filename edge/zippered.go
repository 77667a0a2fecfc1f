// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package edge

import (
	"strings"

	"github.com/apple-llvm-infra/automerger/gitcmd"
	"github.com/apple-llvm-infra/automerger/zipper"
)

// SecondaryBlockedByPrimary reports whether the secondary upstream's next
// unmerged commit is blocked by the primary edge: its merge base with the
// common ancestor is not yet contained in the target branch, meaning the
// primary edge needs to catch up before the zippered planner can make
// progress.
//
// Grounded on the original tool's
// is_secondary_edge_commit_blocked_by_primary_edge, restored here per
// SPEC_FULL.md's supplemented-features list.
func SecondaryBlockedByPrimary(dir, remote, secondaryCommit, commonAncestor, target string) (bool, error) {
	base, err := gitcmd.Run([]string{"merge-base", secondaryCommit, remote + "/" + commonAncestor}, gitcmd.Options{Dir: dir})
	if err != nil {
		return false, err
	}
	targetRef := remote + "/" + target
	out, err := gitcmd.Run([]string{
		"branch", "-r", targetRef, "--contains", base, "--format=%(refname)",
	}, gitcmd.Options{Dir: dir, IgnoreError: true})
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

// ComputeZipperedEdges computes the pair of edges (left=primary upstream,
// right=secondary upstream) for a zippered config. If merges is non-empty
// (there is at least one pending zippered merge plan step), both edges
// report Working: the rejoin is already underway and per-commit states
// don't apply until it lands.
func ComputeZipperedEdges(dir, remote, upstream, secondaryUpstream, target, commonAncestor string, merges []zipper.MergePlan) (left, right Edge, err error) {
	left = Edge{Upstream: upstream, Target: target, State: Clear, Constraint: true}
	right = Edge{Upstream: secondaryUpstream, Target: target, State: Clear, Constraint: false}

	if len(merges) > 0 {
		left.State = Working
		right.State = Working
		return left, right, nil
	}

	leftCommits, err := headFirstUnmerged(dir, remote+"/"+upstream, remote+"/"+target)
	if err != nil {
		return left, right, err
	}
	if len(leftCommits) > 0 {
		left.State = Waiting
	}

	rightCommits, err := headFirstUnmerged(dir, remote+"/"+secondaryUpstream, remote+"/"+target)
	if err != nil {
		return left, right, err
	}
	if len(rightCommits) > 0 {
		blocked, err := SecondaryBlockedByPrimary(dir, remote, rightCommits[0], commonAncestor, target)
		if err != nil {
			return left, right, err
		}
		if blocked {
			right.State = Waiting
		}
	}
	return left, right, nil
}
