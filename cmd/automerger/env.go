// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/apple-llvm-infra/automerger/gitcmd"
)

// flagArgs returns the non-flag arguments left over after a verb's own
// flag.Parse call, i.e. the subcommand's positional arguments.
func flagArgs() []string {
	return flag.Args()
}

// defaultRemote is used whenever a verb's --remote flag is left unset.
const defaultRemote = "origin"

// repoDir resolves the checkout directory every verb operates in:
// GIT_APPLE_LLVM_CONFIG_DIR if set, otherwise the current checkout's top
// level.
func repoDir() (string, error) {
	if v := os.Getenv("GIT_APPLE_LLVM_CONFIG_DIR"); v != "" {
		return v, nil
	}
	dir, err := gitcmd.CurrentCheckoutDirectory()
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", fmt.Errorf("not inside a git checkout; run from a clone or set GIT_APPLE_LLVM_CONFIG_DIR")
	}
	return dir, nil
}

// splitMergeID resolves the merge_id positional argument shared by the
// result and url subcommands. MERGE_ID from the environment takes
// precedence, in which case every element of args is left over for the
// subcommand's remaining positional args; otherwise args[0] is consumed as
// merge_id.
func splitMergeID(args []string) (mergeID string, rest []string, err error) {
	if v := os.Getenv("MERGE_ID"); v != "" {
		return v, args, nil
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("merge_id required: pass it as an argument or set MERGE_ID")
	}
	return args[0], args[1:], nil
}

// remoteList collects one or more repeated "--remote" flag values, falling
// back to defaultRemote when none are given.
type remoteList []string

func (r *remoteList) String() string {
	return strings.Join(*r, ",")
}

func (r *remoteList) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func (r remoteList) orDefault() []string {
	if len(r) == 0 {
		return []string{defaultRemote}
	}
	return r
}

// githubPATFlag registers the "-github-pat" flag shared by every pr
// subcommand, falling back to GITHUB_PAT from the environment.
func githubPATFlag() *string {
	return flag.String("github-pat", os.Getenv("GITHUB_PAT"), "GitHub personal access token. Defaults to $GITHUB_PAT.")
}

// repoFlag registers the "-repo" flag shared by every pr subcommand.
func repoFlag() *string {
	return flag.String("repo", "", `[Required] GitHub repo the PR lives in, in "owner/repo" form.`)
}

// parseRepoFlag splits a "-repo" value into owner and repo name.
func parseRepoFlag(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf(`invalid -repo %q: expected "owner/repo"`, repo)
	}
	return owner, name, nil
}
