// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package edge

import (
	"testing"

	"github.com/apple-llvm-infra/automerger/oracle"
)

func TestFromCommitState(t *testing.T) {
	tests := []struct {
		in      oracle.CommitState
		want    State
		wantOK  bool
	}{
		{oracle.Passed, Clear, true},
		{oracle.Pending, Working, true},
		{oracle.Started, Working, true},
		{oracle.Conflict, Blocked, true},
		{oracle.Failed, Blocked, true},
		{oracle.KnownFailed, Blocked, true},
		{oracle.New, "", false},
	}
	for _, tt := range tests {
		got, ok := FromCommitState(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("FromCommitState(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

// TestReductionMonotonicity is the property from spec.md 8: if any
// per-commit state is Blocked, the reduction is Blocked regardless of the
// order blocked/working/clear states appear in.
func TestReductionMonotonicity(t *testing.T) {
	orderings := [][]State{
		{Blocked, Working, Clear},
		{Clear, Working, Blocked},
		{Working, Blocked, Clear},
		{Clear, Clear, Blocked},
	}
	for _, states := range orderings {
		got := Clear
		for _, s := range states {
			got = Max(got, s)
		}
		if got != Blocked {
			t.Errorf("reduction of %v = %v, want Blocked", states, got)
		}
	}
}

func TestReductionWorkingWithoutBlocked(t *testing.T) {
	got := Max(Max(Clear, Working), Clear)
	if got != Working {
		t.Errorf("got %v, want Working", got)
	}
}

func TestReductionAllClear(t *testing.T) {
	got := Max(Max(Clear, Clear), Clear)
	if got != Clear {
		t.Errorf("got %v, want Clear", got)
	}
}
