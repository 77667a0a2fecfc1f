// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/apple-llvm-infra/automerger/merger"
	"github.com/apple-llvm-infra/automerger/pushcoord"
	"github.com/apple-llvm-infra/automerger/subcmd"
)

func init() {
	subcommands = append(subcommands, &option{
		name:        "push",
		summary:     "Push a monorepo commit range out to its split repositories.",
		description: "\nRegrafts and lands each affected split directory, then pushes all of them.\n",
		argsSummary: "<src>:<dest>",
		handle:      runPush,
	})
}

// parseMergeStrategy maps the CLI's hyphenated flag values to the
// underlying merger.Strategy constants, which keep the original tool's
// underscored names.
func parseMergeStrategy(s string) (merger.Strategy, error) {
	switch s {
	case "ff-only":
		return merger.FastForwardOnly, nil
	case "rebase":
		return merger.Rebase, nil
	case "rebase-or-merge":
		return merger.RebaseOrMerge, nil
	default:
		return "", fmt.Errorf("invalid --merge-strategy %q: expected ff-only, rebase, or rebase-or-merge", s)
	}
}

func runPush(p subcmd.ParseFunc) error {
	var dryRun, verbose bool
	var strategyFlag, remote string
	var pushLimit int
	flag.BoolVar(&dryRun, "dry-run", false, "Land every component but skip the final push.")
	flag.BoolVar(&verbose, "verbose", false, "Print extra detail while landing each component.")
	flag.StringVar(&strategyFlag, "merge-strategy", "rebase-or-merge", "One of ff-only, rebase, rebase-or-merge.")
	flag.StringVar(&remote, "remote", defaultRemote, "Remote the split repos and monorepo destination live on.")
	flag.IntVar(&pushLimit, "push-limit", pushcoord.DefaultPushLimit, "Refuse to push this many commits or more (0 disables the check).")
	if err := p(); err != nil {
		return err
	}

	args := flagArgs()
	if len(args) != 1 {
		return fmt.Errorf("push requires exactly one <src>:<dest> refspec argument")
	}

	strategy, err := parseMergeStrategy(strategyFlag)
	if err != nil {
		return err
	}

	dir, err := repoDir()
	if err != nil {
		return err
	}

	results, err := pushcoord.Run(context.Background(), dir, pushcoord.Options{
		Refspec:   args[0],
		Remote:    remote,
		Strategy:  strategy,
		PushLimit: pushLimit,
		DryRun:    dryRun,
		Verbose:   verbose,
	})
	if err != nil {
		return err
	}

	for _, res := range results {
		if verbose {
			fmt.Printf("landed %s: %s\n", res.SplitDir, res.HeadCommit)
		}
	}
	return nil
}
