// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package pushcoord orchestrates the monorepo-to-split-repo push: resolving
// the refspec, computing the commit graph, and fanning out a regraft +
// merge + push per affected split directory.
package pushcoord

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/apple-llvm-infra/automerger/amconfig"
	"github.com/apple-llvm-infra/automerger/commitgraph"
	"github.com/apple-llvm-infra/automerger/gitcmd"
	"github.com/apple-llvm-infra/automerger/merger"
	"github.com/apple-llvm-infra/automerger/regraft"
)

// PinBranch is the local branch split clones fetch back from the outer
// repository via its "mono" remote.
const PinBranch = "this-branch-shall-be-git-apple-llvm-pushed"

// DefaultPushLimit is the maximum number of commits a single push may
// contain; 0 disables the check.
const DefaultPushLimit = 50

// InvalidRefspecError means the "<src>:<dest>" argument to push did not
// parse: both sides are required.
type InvalidRefspecError struct {
	Refspec string
}

func (e *InvalidRefspecError) Error() string {
	return fmt.Sprintf("invalid push refspec %q: expected <src>:<dest>", e.Refspec)
}

// PushLimitExceededError carries the exact remediation hint spec.md
// requires: --push-limit set to one more than the actual commit count.
type PushLimitExceededError struct {
	Count int
	Limit int
}

func (e *PushLimitExceededError) Error() string {
	return fmt.Sprintf(
		"refusing to push %d commits (limit %d); pass --push-limit=%d to override",
		e.Count, e.Limit, e.Count+1,
	)
}

// AlreadyMappedError means a commit being pushed already has a regraft
// anchor present in the destination split remote.
type AlreadyMappedError struct {
	Commit      string
	SplitCommit string
}

func (e *AlreadyMappedError) Error() string {
	return fmt.Sprintf("one or more commits is already present in the split repo (commit %s maps to %s)", e.Commit, e.SplitCommit)
}

// NotPushableError means no push configuration exists for the destination
// branch.
type NotPushableError struct {
	DestBranch string
}

func (e *NotPushableError) Error() string {
	return fmt.Sprintf("branch %q has no push configuration; it is not pushable", e.DestBranch)
}

// Options configures one push invocation.
type Options struct {
	Refspec       string
	Remote        string
	Strategy      merger.Strategy
	PushLimit     int
	DryRun        bool
	Verbose       bool
}

// ParseRefspec splits a "<src>:<dest>" argument.
func ParseRefspec(refspec string) (src, dest string, err error) {
	src, dest, ok := strings.Cut(refspec, ":")
	if !ok || src == "" || dest == "" {
		return "", "", &InvalidRefspecError{Refspec: refspec}
	}
	return src, dest, nil
}

// ComponentResult is the outcome of landing one split directory's regrafted
// graph.
type ComponentResult struct {
	SplitDir   string
	HeadCommit string
	RemoteURL  string
	CloneDir   string
}

// Run executes the full push flow against the checkout at dir.
func Run(ctx context.Context, dir string, opts Options) ([]ComponentResult, error) {
	src, dest, err := ParseRefspec(opts.Refspec)
	if err != nil {
		return nil, err
	}

	srcCommit, err := gitcmd.RevParse(dir, src)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source ref %q: %w", src, err)
	}
	if _, err := gitcmd.RevParse(dir, opts.Remote+"/"+dest); err != nil {
		return nil, fmt.Errorf("failed to resolve destination branch %q on remote %q: %w", dest, opts.Remote, err)
	}

	if err := gitcmd.BranchForceCheckpoint(dir, PinBranch, srcCommit); err != nil {
		return nil, err
	}

	cfg, err := amconfig.LoadPushConfig(dir, src, dest)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, &NotPushableError{DestBranch: dest}
	}

	notRefs, err := commitgraph.KnownTrackingBranches(dir, opts.Remote)
	if err != nil {
		return nil, err
	}

	graph, err := commitgraph.Compute(dir, srcCommit, notRefs)
	if err != nil {
		return nil, err
	}
	if graph == nil {
		log.Printf("0 commits to push; %s is up to date.\n", dest)
		return nil, nil
	}

	limit := opts.PushLimit
	if limit > 0 && len(graph.Commits) >= limit {
		return nil, &PushLimitExceededError{Count: len(graph.Commits), Limit: limit}
	}

	if err := rejectAlreadyMapped(dir, opts.Remote, graph, dest); err != nil {
		return nil, err
	}

	files, err := commitgraph.ChangedFiles(dir, graph)
	if err != nil {
		return nil, err
	}
	splitDirs := commitgraph.ChangedSplitDirs(files)
	for _, sd := range splitDirs {
		if !cfg.CanPushToSplitDir(sd) {
			return nil, fmt.Errorf("push config %q does not permit pushing to split directory %q", cfg.Name, sd)
		}
	}
	sort.Strings(splitDirs)

	hasMerges, err := graph.HasMerges(dir)
	if err != nil {
		return nil, err
	}

	results := make([]ComponentResult, len(splitDirs))
	var eg errgroup.Group
	for i, sd := range splitDirs {
		i, sd := i, sd
		eg.Go(func() error {
			res, err := landComponent(dir, graph, sd, dest, cfg, opts.Strategy, hasMerges)
			if err != nil {
				return fmt.Errorf("split dir %q: %w", sd, err)
			}
			results[i] = *res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if opts.DryRun {
		log.Printf("dry-run: skipping push of %d components\n", len(results))
		return results, nil
	}
	for _, res := range results {
		if err := pushComponent(res, dest); err != nil {
			return results, err
		}
	}
	return results, nil
}

// rejectAlreadyMapped fails if any commit in the graph's regraft anchor
// (apple-llvm-split-commit trailer) is already present in the destination
// branch's split remote. Per the adopted resolution, this only checks the
// split remote currently configured for dest, not every split remote ever
// produced.
func rejectAlreadyMapped(dir, remote string, g *commitgraph.Graph, dest string) error {
	destRef := remote + "/" + dest
	for _, c := range g.Commits {
		out, err := gitcmd.Run([]string{
			"log", "-1", "--format=%(trailers:only,key=" + regraft.SplitCommitTrailer + ",valueonly)", c,
		}, gitcmd.Options{Dir: dir})
		if err != nil {
			return err
		}
		splitCommit := strings.TrimSpace(out)
		if splitCommit == "" {
			continue
		}
		if contained, err := gitcmd.Run([]string{
			"branch", "-r", destRef, "--contains", splitCommit, "--format=%(refname)",
		}, gitcmd.Options{Dir: dir, IgnoreError: true}); err == nil && strings.TrimSpace(contained) != "" {
			return &AlreadyMappedError{Commit: c, SplitCommit: splitCommit}
		}
	}
	return nil
}

// landComponent performs the bare-clone, fetch, regraft, and merge steps
// for one split directory, returning the landed head commit.
func landComponent(
	dir string, g *commitgraph.Graph, splitDir, dest string,
	cfg *amconfig.PushConfig, strategy merger.Strategy, hasMerges bool,
) (*ComponentResult, error) {
	remoteURL, ok := cfg.SplitRepoURL(splitDir)
	if !ok {
		return nil, fmt.Errorf("no remote configured for split directory %q", splitDir)
	}

	cloneDir := filepath.Join(dir, ".git", "apple-llvm-split-"+splitDir+".git")
	gitcmd.AttemptDelete(cloneDir)
	if _, err := gitcmd.Run([]string{"clone", "--bare", dir, cloneDir}, gitcmd.Options{}); err != nil {
		return nil, err
	}
	if _, err := gitcmd.Run([]string{"remote", "add", "origin", remoteURL}, gitcmd.Options{Dir: cloneDir}); err != nil {
		return nil, err
	}
	if _, err := gitcmd.Run([]string{"remote", "add", "mono", dir}, gitcmd.Options{Dir: cloneDir}); err != nil {
		return nil, err
	}
	if err := gitcmd.FetchRefspec(cloneDir, "origin", dest); err != nil {
		return nil, err
	}
	if err := gitcmd.FetchRefspec(cloneDir, "mono", PinBranch); err != nil {
		return nil, err
	}

	res, err := regraft.Regraft(cloneDir, g, splitDir)
	if err != nil {
		return nil, err
	}
	if res == nil || res.Graph == nil {
		return nil, fmt.Errorf("regraft of split directory %q produced no commits", splitDir)
	}

	destBranch, ok := cfg.SplitBranch(dest, splitDir)
	if !ok {
		destBranch = dest
	}

	checkout, err := merger.NewCheckout(cloneDir, splitDir, "origin/"+destBranch)
	if err != nil {
		return nil, err
	}
	defer checkout.Close()

	head, err := checkout.MergeCommitGraphOntoBranch(strategy, res.Branch, hasMerges)
	if err != nil {
		return nil, err
	}
	return &ComponentResult{SplitDir: splitDir, HeadCommit: head, RemoteURL: remoteURL, CloneDir: cloneDir}, nil
}

// pushComponent pushes the component's landed head to its split remote.
func pushComponent(res ComponentResult, destBranch string) error {
	_, err := gitcmd.Run(
		[]string{"push", "origin", res.HeadCommit + ":" + destBranch},
		gitcmd.Options{Dir: res.CloneDir},
	)
	return err
}
