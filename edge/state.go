// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package edge implements the automerger status engine: computing the
// backlog of unmerged commits for an edge, reducing per-commit states into
// an aggregate edge health, and probing for merge conflicts.
package edge

import "github.com/apple-llvm-infra/automerger/oracle"

// State is the aggregate health of one automerger edge.
type State string

const (
	Clear   State = "clear"
	Waiting State = "waiting"
	Working State = "working"
	Blocked State = "blocked"
)

// rank gives the partial order used for reduction: Blocked > Working >
// Waiting > Clear.
var rank = map[State]int{
	Clear:   0,
	Waiting: 1,
	Working: 2,
	Blocked: 3,
}

// Max returns whichever of a, b ranks higher in the reduction order.
func Max(a, b State) State {
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// FromCommitState maps one commit's CI verdict to the edge state it
// contributes, per the spec's data model mapping. NEW contributes nothing
// ("", false): callers should fall through to other checks.
func FromCommitState(s oracle.CommitState) (State, bool) {
	switch s {
	case oracle.Passed:
		return Clear, true
	case oracle.Pending, oracle.Started:
		return Working, true
	case oracle.Conflict, oracle.Failed, oracle.KnownFailed:
		return Blocked, true
	default: // oracle.New, or anything unrecognized
		return "", false
	}
}

// Edge is the status of one upstream -> target relationship.
type Edge struct {
	Upstream   string
	Target     string
	State      State
	URL        string
	// Constraint is a presentation hint for graph rendering: false marks
	// the secondary edge of a zippered pair. It carries no semantic weight.
	Constraint bool
}
