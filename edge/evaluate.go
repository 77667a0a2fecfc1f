// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package edge

import (
	"context"
	"strings"

	"github.com/apple-llvm-infra/automerger/gitcmd"
	"github.com/apple-llvm-infra/automerger/inflight"
	"github.com/apple-llvm-infra/automerger/oracle"
)

// Options controls how Evaluate resolves a per-commit state.
type Options struct {
	// QueryCI asks the CI Oracle for a verdict before falling back to a
	// conflict probe and the in-flight registry.
	QueryCI bool
	Oracle  *oracle.Oracle
}

// Evaluate computes the status of the plain edge upstream -> target: the
// list of unmerged commits (HEAD-first) and the reduced edge State.
func Evaluate(ctx context.Context, dir, remote, upstream, target string, merges inflight.Merges, opts Options) (Edge, []string, error) {
	e := Edge{Upstream: upstream, Target: target, State: Clear, Constraint: true}

	targetRef := remote + "/" + target
	unmerged, err := headFirstUnmerged(dir, remote+"/"+upstream, targetRef)
	if err != nil {
		return e, nil, err
	}
	if len(unmerged) == 0 {
		return e, unmerged, nil
	}

	probeHead := true
	for _, commit := range unmerged {
		state, stop := commitState(ctx, dir, commit, target, targetRef, merges, probeHead, opts)
		probeHead = false // the conflict probe only ever runs on HEAD
		e.State = Max(e.State, state)
		if stop {
			break
		}
	}
	return e, unmerged, nil
}

// commitState resolves the edge-state contribution of one commit, per
// spec.md 4.5: CI oracle first (if enabled), then a conflict probe
// (HEAD-only), then in-flight membership, else clear. It returns (state,
// true) when the reduction should short-circuit (a blocked verdict).
func commitState(ctx context.Context, dir, commit, target, targetRef string, merges inflight.Merges, probeHead bool, opts Options) (State, bool) {
	if opts.QueryCI && opts.Oracle != nil {
		if ciState, err := opts.Oracle.GetCIStatus(ctx, commit, target); err == nil && ciState != "" {
			if s, ok := FromCommitState(ciState); ok {
				return s, s == Blocked
			}
		}
	}
	if probeHead {
		if conflict, err := ProbeConflict(dir, commit, targetRef); err == nil && conflict {
			return Blocked, true
		}
	}
	if merges.Contains(target, commit) {
		return Working, false
	}
	return Clear, false
}

// headFirstUnmerged returns commits reachable from upstreamRef but not from
// targetRef, first-parent only, HEAD-first (git rev-list's natural order).
func headFirstUnmerged(dir, upstreamRef, targetRef string) ([]string, error) {
	out, err := gitcmd.Run([]string{
		"rev-list", "--first-parent", targetRef + ".." + upstreamRef,
	}, gitcmd.Options{Dir: dir})
	if err != nil {
		return nil, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}
