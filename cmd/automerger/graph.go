// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"context"
	"flag"

	"github.com/apple-llvm-infra/automerger/amconfig"
	"github.com/apple-llvm-infra/automerger/edge"
	"github.com/apple-llvm-infra/automerger/gitcmd"
	"github.com/apple-llvm-infra/automerger/graph"
	"github.com/apple-llvm-infra/automerger/inflight"
	"github.com/apple-llvm-infra/automerger/subcmd"
	"github.com/apple-llvm-infra/automerger/zipper"
)

func init() {
	subcommands = append(subcommands, &option{
		name:        "graph",
		summary:     "Render the automerger edge graph as a DOT/image file.",
		description: "\nRenders every configured edge to am.dot and, if Graphviz is installed, am.<format>.\n",
		handle:      runGraph,
	})
}

func runGraph(p subcmd.ParseFunc) error {
	var noFetch bool
	var format string
	var remotes remoteList
	flag.BoolVar(&noFetch, "no-fetch", false, "Skip fetching from the remote(s) before rendering.")
	flag.StringVar(&format, "format", "pdf", "Output format Graphviz's \"dot\" should render.")
	flag.Var(&remotes, "remote", `Remote to query (repeatable). Defaults to "origin".`)
	if err := p(); err != nil {
		return err
	}

	dir, err := repoDir()
	if err != nil {
		return err
	}
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

		for _, cfg := range configs {
			if cfg.Zippered() {
				plans, err := zipper.ComputeZipperedMerges(dir, remote, cfg.Upstream, cfg.SecondaryUpstream, cfg.Target, cfg.CommonAncestor)
				if err != nil {
					return err
				}
				left, right, err := edge.ComputeZipperedEdges(dir, remote, cfg.Upstream, cfg.SecondaryUpstream, cfg.Target, cfg.CommonAncestor, plans)
				if err != nil {
					return err
				}
				edges = append(edges, left, right)
				continue
			}

			e, _, err := edge.Evaluate(ctx, dir, remote, cfg.Upstream, cfg.Target, merges, edge.Options{})
			if err != nil {
				return err
			}
			edges = append(edges, e)
		}
	}

	return graph.RenderToFile(edges, "am.dot", "am."+format, format)
}
