// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package amconfig

import (
	"testing"

	"github.com/go-test/deep"
)

func TestEdgeConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       EdgeConfig
		wantErr bool
	}{
		{"plain edge", EdgeConfig{Target: "master", Upstream: "upstream"}, false},
		{"zippered edge", EdgeConfig{Target: "master", Upstream: "l", SecondaryUpstream: "r", CommonAncestor: "c"}, false},
		{"secondary without common ancestor", EdgeConfig{Target: "master", Upstream: "l", SecondaryUpstream: "r"}, true},
		{"missing target", EdgeConfig{Upstream: "u"}, true},
		{"missing upstream", EdgeConfig{Target: "t"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestByTargetDetectsDuplicates(t *testing.T) {
	configs := []EdgeConfig{
		{Target: "master", Upstream: "a"},
		{Target: "master", Upstream: "b"},
	}
	if _, err := ByTarget(configs); err == nil {
		t.Error("expected duplicate target error")
	}
}

func TestByTarget(t *testing.T) {
	configs := []EdgeConfig{
		{Target: "master", Upstream: "a"},
		{Target: "release", Upstream: "b"},
	}
	got, err := ByTarget(configs)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]EdgeConfig{
		"master":  {Target: "master", Upstream: "a"},
		"release": {Target: "release", Upstream: "b"},
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}

func TestPushConfigSplitBranch(t *testing.T) {
	c := &PushConfig{
		BranchToDestBranchMapping: map[string]string{
			"internal/master:clang": "stable/clang",
			"internal/master:*":     "stable/default",
		},
	}
	if b, ok := c.SplitBranch("internal/master", "clang"); !ok || b != "stable/clang" {
		t.Errorf("exact match failed: %v %v", b, ok)
	}
	if b, ok := c.SplitBranch("internal/master", "llvm"); !ok || b != "stable/default" {
		t.Errorf("wildcard fallback failed: %v %v", b, ok)
	}
	if _, ok := c.SplitBranch("other", "llvm"); ok {
		t.Error("expected no match for unmapped branch")
	}
}

func TestPushConfigCanPushToSplitDir(t *testing.T) {
	c := &PushConfig{RepoMapping: map[string]string{"clang": "https://example.com/clang.git"}}
	if !c.CanPushToSplitDir("clang") {
		t.Error("expected clang to be pushable")
	}
	if c.CanPushToSplitDir("lld") {
		t.Error("expected lld not to be pushable")
	}
}
