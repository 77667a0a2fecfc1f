// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package regraft

import (
	"strings"
	"testing"

	"github.com/apple-llvm-infra/automerger/splitdir"
)

func TestBuildTreeFilterRoot(t *testing.T) {
	got := buildTreeFilter(splitdir.Root)
	if got == "" {
		t.Fatal("expected non-empty tree filter for root split dir")
	}
	for _, d := range splitdir.All() {
		if !strings.Contains(got, d) {
			t.Errorf("root tree filter %q missing component %q", got, d)
		}
	}
}

func TestBuildTreeFilterComponent(t *testing.T) {
	got := buildTreeFilter("clang")
	if !strings.Contains(got, "GIT_COMMIT:clang") {
		t.Errorf("component tree filter %q does not reference the split subtree", got)
	}
}

func TestBuildParentFilter(t *testing.T) {
	got := buildParentFilter(map[string]string{"root1": "split1"})
	if !strings.Contains(got, "root1") || !strings.Contains(got, "split1") {
		t.Errorf("parent filter %q does not reference both root and split commit", got)
	}
}

func TestNoSplitRootErrorMessage(t *testing.T) {
	err := &NoSplitRootError{Root: "deadbeef"}
	if !strings.Contains(err.Error(), "deadbeef") {
		t.Errorf("error message %q does not mention root", err.Error())
	}
}

func TestMissingSplitRootErrorMessage(t *testing.T) {
	err := &MissingSplitRootError{Root: "deadbeef", SplitCommit: "cafef00d"}
	if !strings.Contains(err.Error(), "deadbeef") || !strings.Contains(err.Error(), "cafef00d") {
		t.Errorf("error message %q does not mention both commits", err.Error())
	}
}
