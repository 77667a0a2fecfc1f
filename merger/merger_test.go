// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package merger

import "testing"

func TestWorktreeNameIncludesSplitDir(t *testing.T) {
	got := worktreeName("clang")
	if got != ".git/apple-llvm-push-checkout-clang" {
		t.Errorf("got %q", got)
	}
}

func TestTempBranchNameIncludesSplitDir(t *testing.T) {
	got := tempBranchName("clang")
	if got != "temp-apple-llvm-push-merged-clang" {
		t.Errorf("got %q", got)
	}
}

func TestImpossibleMergeErrorMessage(t *testing.T) {
	err := &ImpossibleMergeError{Strategy: FastForwardOnly, Reason: "diverged"}
	want := `cannot merge with strategy "ff_only": diverged`
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestStrategyConstants(t *testing.T) {
	if FastForwardOnly != "ff_only" || Rebase != "rebase" || RebaseOrMerge != "rebase_or_merge" {
		t.Errorf("unexpected strategy constant values: %q %q %q", FastForwardOnly, Rebase, RebaseOrMerge)
	}
}
