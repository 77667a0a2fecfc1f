// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package amconfig loads the automerger edge configuration and the
// per-branch push configuration from JSON blobs stored in tracked git refs.
package amconfig

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apple-llvm-infra/automerger/gitcmd"
)

// AMConfigPath is the path, relative to the config ref, of the edge
// configuration blob.
const AMConfigPath = "apple-llvm-config/am/am-config.json"

// EdgeConfig declares one automerger edge upstream -> target, optionally
// zippered with a secondary upstream gated by a common ancestor.
type EdgeConfig struct {
	Target               string `json:"target"`
	Upstream             string `json:"upstream"`
	SecondaryUpstream    string `json:"secondary-upstream,omitempty"`
	CommonAncestor       string `json:"common-ancestor,omitempty"`
	TestCommand          string `json:"test-command,omitempty"`
	TestCommitsInBundle  bool   `json:"test_commits_in_bundle,omitempty"`
}

// Zippered reports whether this edge is a zippered (two-upstream) edge.
func (c EdgeConfig) Zippered() bool {
	return c.SecondaryUpstream != ""
}

// Validate checks the invariants in the data model: a secondary upstream
// requires a common ancestor, and target/upstream must be set.
func (c EdgeConfig) Validate() error {
	if c.Target == "" {
		return fmt.Errorf("edge config missing required field %q", "target")
	}
	if c.Upstream == "" {
		return fmt.Errorf("edge config missing required field %q", "upstream")
	}
	if c.SecondaryUpstream != "" && c.CommonAncestor == "" {
		return fmt.Errorf("edge %q: secondary-upstream %q set without common-ancestor", c.Target, c.SecondaryUpstream)
	}
	return nil
}

// Load reads and parses the edge configuration at <remote>/repo/apple-llvm-config/am
// in dir. Returns an empty slice (not an error) if the blob is missing or
// empty, matching the tool's tolerant discovery behavior.
func Load(dir, remote string) ([]EdgeConfig, error) {
	ref := remote + "/repo/apple-llvm-config/am"
	blob, err := gitcmd.ShowFileOrEmpty(dir, ref, AMConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s:%s: %w", ref, AMConfigPath, err)
	}
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return nil, nil
	}
	var configs []EdgeConfig
	if err := json.Unmarshal([]byte(blob), &configs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", AMConfigPath, err)
	}
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	return configs, nil
}

// ByTarget indexes configs by target branch name, failing if any target
// value is duplicated.
func ByTarget(configs []EdgeConfig) (map[string]EdgeConfig, error) {
	byTarget := make(map[string]EdgeConfig, len(configs))
	for _, c := range configs {
		if _, exists := byTarget[c.Target]; exists {
			return nil, fmt.Errorf("duplicate target branch in automerger config: %q", c.Target)
		}
		byTarget[c.Target] = c
	}
	return byTarget, nil
}

// PushConfig describes how a pushed source ref maps to destination split
// branches and split-repo remotes for one destination branch.
type PushConfig struct {
	Name                      string            `json:"name"`
	BranchToDestBranchMapping map[string]string `json:"branch_to_dest_branch_mapping"`
	RepoMapping               map[string]string `json:"repo_mapping"`
}

// pushConfigPath returns the config path for a destination branch, with "/"
// replaced by "-" as the on-disk sanitization the tool uses.
func pushConfigPath(destBranch string) string {
	sanitized := strings.ReplaceAll(destBranch, "/", "-")
	return fmt.Sprintf("apple-llvm-config/push/%s.json", sanitized)
}

// LoadPushConfig reads the push configuration for destBranch from sourceRef.
// Returns (nil, nil) if no such config exists, meaning the branch is not
// pushable.
func LoadPushConfig(dir, sourceRef, destBranch string) (*PushConfig, error) {
	path := pushConfigPath(destBranch)
	blob, err := gitcmd.ShowFileOrEmpty(dir, sourceRef, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s:%s: %w", sourceRef, path, err)
	}
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return nil, nil
	}
	var cfg PushConfig
	if err := json.Unmarshal([]byte(blob), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// SplitBranch returns the split-repo branch that branch:splitDir maps to,
// falling back to the "*" wildcard default. Returns "", false if neither is
// mapped.
func (c *PushConfig) SplitBranch(branch, splitDir string) (string, bool) {
	if b, ok := c.BranchToDestBranchMapping[branch+":"+splitDir]; ok {
		return b, true
	}
	if b, ok := c.BranchToDestBranchMapping[branch+":*"]; ok {
		return b, true
	}
	return "", false
}

// CanPushToSplitDir reports whether the push config permits pushing to the
// given split directory's remote.
func (c *PushConfig) CanPushToSplitDir(splitDir string) bool {
	_, ok := c.RepoMapping[splitDir]
	return ok
}

// SplitRepoURL returns the remote URL configured for splitDir, or "", false
// if none is mapped.
func (c *PushConfig) SplitRepoURL(splitDir string) (string, bool) {
	url, ok := c.RepoMapping[splitDir]
	return url, ok
}
