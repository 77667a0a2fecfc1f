// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"context"
	"fmt"

	"github.com/apple-llvm-infra/automerger/oracle"
	"github.com/apple-llvm-infra/automerger/subcmd"
)

func init() {
	subcommands = append(subcommands, &option{
		name:    "url",
		summary: "Read or write a merge's recorded build URL.",
		description: "\n" +
			"  url seturl <merge_id> <url>   Record the build URL for a merge.\n" +
			"  url geturl <merge_id>          Print the recorded build URL, if any.\n",
		argsSummary: "seturl|geturl <merge_id> [url]",
		handle:      runURL,
	})
}

func runURL(p subcmd.ParseFunc) error {
	if err := p(); err != nil {
		return err
	}
	args := flagArgs()
	if len(args) == 0 {
		return fmt.Errorf("url requires a sub-action: \"seturl\" or \"geturl\"")
	}

	oc, err := oracle.New()
	if err != nil {
		return err
	}
	ctx := context.Background()

	switch args[0] {
	case "seturl":
		mergeID, rest, err := splitMergeID(args[1:])
		if err != nil {
			return err
		}
		if len(rest) < 1 {
			return fmt.Errorf("url seturl requires <merge_id> <url>")
		}
		return oc.SetBuildURL(ctx, mergeID, rest[0])
	case "geturl":
		mergeID, _, err := splitMergeID(args[1:])
		if err != nil {
			return err
		}
		v, err := oc.GetBuildURL(ctx, mergeID)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	default:
		return fmt.Errorf("url: unknown sub-action %q", args[0])
	}
}
