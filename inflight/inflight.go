// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package inflight tracks automerger jobs that are currently being merged,
// by mirroring the remote's "refs/am/changes/*" refs to a local shadow
// namespace and parsing the mirrored ref names.
package inflight

import (
	"strings"

	"github.com/apple-llvm-infra/automerger/gitcmd"
)

const (
	// RemotePrefix is the ref namespace the remote publishes in-flight merge
	// refs under. Each ref name is "<commit>_<dest-branch>".
	RemotePrefix = "refs/am/changes/"
	// LocalPrefix is the local shadow namespace refs are mirrored into.
	LocalPrefix = "refs/am-status/changes/"
)

// Merges maps a destination branch to the set of commit hashes currently
// in flight for it.
type Merges map[string]map[string]bool

// Contains reports whether commit is in flight for target.
func (m Merges) Contains(target, commit string) bool {
	return m[target][commit]
}

// Find mirrors refs/am/changes/* from remote into the local shadow
// namespace and parses the result into a Merges map. It first deletes any
// existing shadow refs, so the result always reflects the remote's current
// state and tolerates force-pushes on the remote side.
func Find(dir, remote string) (Merges, error) {
	if err := deleteLocalShadowRefs(dir); err != nil {
		return nil, err
	}
	refspec := RemotePrefix + "*:" + LocalPrefix + "*"
	if err := gitcmd.FetchRefspec(dir, remote, refspec); err != nil {
		return nil, err
	}

	out, err := gitcmd.ForEachRef(dir, "%(refname)", LocalPrefix+"*")
	if err != nil {
		return nil, err
	}

	merges := Merges{}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name := strings.TrimPrefix(line, LocalPrefix)
		commit, target, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		if merges[target] == nil {
			merges[target] = map[string]bool{}
		}
		merges[target][commit] = true
	}
	return merges, nil
}

// Count returns the number of commits currently in flight for target.
func Count(merges Merges, target string) int {
	return len(merges[target])
}

func deleteLocalShadowRefs(dir string) error {
	out, err := gitcmd.ForEachRef(dir, "%(refname)", LocalPrefix+"*")
	if err != nil {
		return err
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := gitcmd.UpdateRefDelete(dir, line); err != nil {
			return err
		}
	}
	return nil
}
