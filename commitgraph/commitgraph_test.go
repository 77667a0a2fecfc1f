// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package commitgraph

import "testing"

func TestIsKnownTrackingBranch(t *testing.T) {
	tests := []struct {
		remote, ref string
		want        bool
	}{
		{"origin", "origin/llvm.org/master", false},
		{"origin", "origin/apple/stable/20240101", true},
		{"origin", "origin/internal/master", true},
		{"origin", "origin/swift/main", true},
		{"origin", "origin/random/branch", false},
		{"origin", "upstream/llvm.org/master", false},
	}
	for _, tt := range tests {
		if got := IsKnownTrackingBranch(tt.remote, tt.ref); got != tt.want {
			t.Errorf("IsKnownTrackingBranch(%q, %q) = %v, want %v", tt.remote, tt.ref, got, tt.want)
		}
	}
}

func TestChangedSplitDirs(t *testing.T) {
	files := map[string]bool{
		"clang/lib/Foo.cpp":    true,
		"clang/lib/Bar.cpp":    true,
		"llvm/lib/IR/Core.cpp": true,
		"README.md":            true,
	}
	got := ChangedSplitDirs(files)
	want := []string{"-", "clang", "llvm"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
