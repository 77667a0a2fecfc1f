// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/apple-llvm-infra/automerger/amconfig"
	"github.com/apple-llvm-infra/automerger/edge"
	"github.com/apple-llvm-infra/automerger/gitcmd"
	"github.com/apple-llvm-infra/automerger/graph"
	"github.com/apple-llvm-infra/automerger/inflight"
	"github.com/apple-llvm-infra/automerger/oracle"
	"github.com/apple-llvm-infra/automerger/statusreport"
	"github.com/apple-llvm-infra/automerger/subcmd"
	"github.com/apple-llvm-infra/automerger/zipper"
)

func init() {
	subcommands = append(subcommands, &option{
		name:    "status",
		summary: "Report the status of every configured automerger edge.",
		description: "\n" +
			"Prints the unmerged-commit backlog, in-flight count, and (optionally) the\n" +
			"CI verdict for each configured upstream -> target edge.\n",
		handle: runStatus,
	})
}

func runStatus(p subcmd.ParseFunc) error {
	var target string
	var allCommits, noFetch, ciStatus, showGraph bool
	var graphFormat string
	var remotes remoteList
	flag.StringVar(&target, "target", "", "Only report the edge(s) targeting this branch.")
	flag.BoolVar(&allCommits, "all-commits", false, "List every unmerged commit instead of truncating the backlog.")
	flag.Var(&remotes, "remote", `Remote to query (repeatable). Defaults to "origin".`)
	flag.BoolVar(&noFetch, "no-fetch", false, "Skip fetching from the remote(s) before reporting.")
	flag.BoolVar(&ciStatus, "ci-status", false, "Consult the CI Oracle for each commit's verdict.")
	flag.BoolVar(&showGraph, "graph", false, "Also render the edge graph to am.<graph-format>.")
	flag.StringVar(&graphFormat, "graph-format", "pdf", "Output format used by --graph.")
	if err := p(); err != nil {
		return err
	}

	dir, err := repoDir()
	if err != nil {
		return err
	}

	var oc *oracle.Oracle
	if ciStatus {
		oc, err = oracle.New()
		if err != nil {
			return err
		}
	}
	opts := edge.Options{QueryCI: ciStatus, Oracle: oc}

	ctx := context.Background()
	var edges []edge.Edge
	for _, remote := range remotes.orDefault() {
		if !noFetch {
			if _, err := gitcmd.Run([]string{"fetch", remote}, gitcmd.Options{Dir: dir}); err != nil {
				return err
			}
		}

		configs, err := amconfig.Load(dir, remote)
		if err != nil {
			return err
		}
		merges, err := inflight.Find(dir, remote)
		if err != nil {
			return err
		}

		printed := false
		for _, cfg := range configs {
			if target != "" && cfg.Target != target {
				continue
			}
			if printed {
				fmt.Println()
			}
			printed = true

			if cfg.Zippered() {
				e, err := printZipperedEdge(ctx, dir, remote, cfg, merges, allCommits, opts)
				if err != nil {
					return err
				}
				edges = append(edges, e...)
				continue
			}

			e, err := printPlainEdge(ctx, dir, remote, cfg.Upstream, cfg.Target, merges, allCommits, opts)
			if err != nil {
				return err
			}
			edges = append(edges, e)
		}
	}

	if showGraph {
		if err := graph.RenderToFile(edges, "am.dot", "am."+graphFormat, graphFormat); err != nil {
			return err
		}
	}
	return nil
}

// printPlainEdge evaluates and prints one upstream -> target edge, returning
// the evaluated edge.Edge for graph rendering.
func printPlainEdge(ctx context.Context, dir, remote, upstream, target string, merges inflight.Merges, allCommits bool, opts edge.Options) (edge.Edge, error) {
	e, _, err := edge.Evaluate(ctx, dir, remote, upstream, target, merges, opts)
	if err != nil {
		return e, err
	}
	report, err := statusreport.BuildEdgeReport(dir, remote, upstream, target, merges)
	if err != nil {
		return e, err
	}

	var headConflict string
	if len(report.Commits) > 0 && e.State == edge.Blocked {
		headConflict = report.Commits[0].Hash
	}
	statusreport.PrintEdgeStatus(os.Stdout, report, allCommits, func(c statusreport.CommitLine) bool {
		return c.Hash == headConflict
	})
	return e, nil
}

// printZipperedEdge prints both sides of a zippered config, following it
// with the "waiting for a merge-base" message when the planner found no
// progress to make. It returns both evaluated edges for graph rendering.
func printZipperedEdge(ctx context.Context, dir, remote string, cfg amconfig.EdgeConfig, merges inflight.Merges, allCommits bool, opts edge.Options) ([]edge.Edge, error) {
	plans, err := zipper.ComputeZipperedMerges(dir, remote, cfg.Upstream, cfg.SecondaryUpstream, cfg.Target, cfg.CommonAncestor)
	if err != nil {
		return nil, err
	}
	left, right, err := edge.ComputeZipperedEdges(dir, remote, cfg.Upstream, cfg.SecondaryUpstream, cfg.Target, cfg.CommonAncestor, plans)
	if err != nil {
		return nil, err
	}

	leftReport, err := statusreport.BuildEdgeReport(dir, remote, cfg.Upstream, cfg.Target, merges)
	if err != nil {
		return nil, err
	}
	statusreport.PrintEdgeStatus(os.Stdout, leftReport, allCommits, nil)

	rightReport, err := statusreport.BuildEdgeReport(dir, remote, cfg.SecondaryUpstream, cfg.Target, merges)
	if err != nil {
		return nil, err
	}
	fmt.Println()
	statusreport.PrintEdgeStatus(os.Stdout, rightReport, allCommits, nil)

	if len(plans) == 0 && len(leftReport.Commits) > 0 && len(rightReport.Commits) > 0 {
		statusreport.PrintZipperedWaiting(os.Stdout, cfg.CommonAncestor)
	}
	return []edge.Edge{left, right}, nil
}
