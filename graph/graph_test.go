// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package graph

import (
	"strings"
	"testing"

	"github.com/apple-llvm-infra/automerger/edge"
)

func TestClassifyBranch(t *testing.T) {
	tests := []struct {
		branch string
		want   string
	}{
		{"llvm.org/master", ClusterLLVM},
		{"internal/master", ClusterInternal},
		{"swift/internal/foo", ClusterInternal},
		{"apple/master", ClusterApple},
		{"next", ClusterApple},
		{"stable/20240101", ClusterApple},
		{"swift/main", ClusterApple},
	}
	for _, tt := range tests {
		got, err := ClassifyBranch(tt.branch)
		if err != nil {
			t.Fatalf("ClassifyBranch(%q) error: %v", tt.branch, err)
		}
		if got != tt.want {
			t.Errorf("ClassifyBranch(%q) = %q, want %q", tt.branch, got, tt.want)
		}
	}
}

func TestClassifyBranchUnknown(t *testing.T) {
	if _, err := ClassifyBranch("some-random-branch"); err == nil {
		t.Fatal("expected error for unknown branch")
	}
}

func TestRenderIncludesEdgeAndClusters(t *testing.T) {
	edges := []edge.Edge{
		{Upstream: "llvm.org/master", Target: "internal/master", State: edge.Clear, Constraint: true},
	}
	out, err := Render(edges)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	for _, want := range []string{"llvm.org/master", "internal/master", "cluster_" + ClusterLLVM, "cluster_" + ClusterInternal, "green3"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered DOT missing %q:\n%s", want, out)
		}
	}
}
