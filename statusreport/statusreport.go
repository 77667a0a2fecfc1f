// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package statusreport prints human-readable edge status, matching the
// original tool's print_edge_status / print_status wording.
package statusreport

import (
	"fmt"
	"io"
	"strings"

	"github.com/apple-llvm-infra/automerger/amconfig"
	"github.com/apple-llvm-infra/automerger/gitcmd"
	"github.com/apple-llvm-infra/automerger/inflight"
)

// CommitLine describes one unmerged commit for display.
type CommitLine struct {
	Hash     string
	InFlight bool
}

// EdgeReport is the fully-evaluated, display-ready state of one edge.
type EdgeReport struct {
	Upstream string
	Target   string
	Commits  []CommitLine
}

// unmergedWithDates mirrors print_edge_status's commit_log_output: first-
// parent commits reachable from upstream but not target, HEAD-first.
func unmergedWithDates(dir, remote, upstream, target string) ([]string, error) {
	out, err := gitcmd.Run([]string{
		"log", "--first-parent", "--pretty=format:%H", "--no-patch",
		remote + "/" + target + ".." + remote + "/" + upstream,
	}, gitcmd.Options{Dir: dir})
	if err != nil {
		return nil, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// BuildEdgeReport gathers the commit list and in-flight annotations for one
// upstream -> target edge.
func BuildEdgeReport(dir, remote, upstream, target string, merges inflight.Merges) (*EdgeReport, error) {
	commits, err := unmergedWithDates(dir, remote, upstream, target)
	if err != nil {
		return nil, err
	}
	r := &EdgeReport{Upstream: upstream, Target: target}
	for _, c := range commits {
		r.Commits = append(r.Commits, CommitLine{Hash: c, InFlight: merges.Contains(target, c)})
	}
	return r, nil
}

// PrintEdgeStatus writes r to w, following the original tool's wording
// (with spec.md's simplified up-to-date phrasing) and truncating the
// middle of long backlogs unless listCommits is set.
func PrintEdgeStatus(w io.Writer, r *EdgeReport, listCommits bool, conflictHint func(CommitLine) bool) {
	fmt.Fprintf(w, "[%s -> %s]\n", r.Upstream, r.Target)
	if len(r.Commits) == 0 {
		fmt.Fprintf(w, "- 0 unmerged commits. %s is up to date.\n", r.Target)
		return
	}

	inflightCount := 0
	for i, c := range r.Commits {
		if c.InFlight {
			inflightCount = len(r.Commits) - i
			break
		}
	}
	fmt.Fprintf(w, "- %d unmerged commits. %d commits are currently being merged/built/tested.\n", len(r.Commits), inflightCount)
	fmt.Fprintln(w, "- Unmerged commits:")

	printLine := func(c CommitLine) {
		switch {
		case conflictHint != nil && conflictHint(c):
			fmt.Fprintf(w, "  * %s: Conflict\n", c.Hash)
		case c.InFlight:
			fmt.Fprintf(w, "  * %s: Auto merge in progress\n", c.Hash)
		default:
			fmt.Fprintf(w, "  * %s\n", c.Hash)
		}
	}

	printLine(r.Commits[0])
	if listCommits {
		for _, c := range r.Commits[1:] {
			printLine(c)
		}
		return
	}
	if len(r.Commits) > 2 {
		fmt.Fprintf(w, "    ... %d commits in-between ...\n", len(r.Commits)-2)
	}
	if len(r.Commits) > 1 {
		printLine(r.Commits[len(r.Commits)-1])
	}
}

// PrintZipperedWaiting prints the "blocked on merge-base" message for a
// zippered edge whose planner could not find a matching merge base.
func PrintZipperedWaiting(w io.Writer, commonAncestor string) {
	fmt.Fprintf(w, "The automerger is waiting for unmerged commits to share a merge-base from %s\n", commonAncestor)
}

// PrintConfigured prints every configured edge's status, zippered edges
// printing both their primary and secondary upstream lines.
func PrintConfigured(w io.Writer, configs []amconfig.EdgeConfig, reports map[string]*EdgeReport) {
	printed := false
	for _, cfg := range configs {
		if printed {
			fmt.Fprintln(w)
		}
		if r, ok := reports[cfg.Upstream+"->"+cfg.Target]; ok {
			PrintEdgeStatus(w, r, false, nil)
		}
		if cfg.Zippered() {
			if r, ok := reports[cfg.SecondaryUpstream+"->"+cfg.Target]; ok {
				fmt.Fprintln(w)
				PrintEdgeStatus(w, r, false, nil)
			}
		}
		printed = true
	}
}

// EdgeKey builds the lookup key used by PrintConfigured's reports map.
func EdgeKey(upstream, target string) string {
	return upstream + "->" + target
}
