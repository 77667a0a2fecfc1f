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
		name:    "result",
		summary: "Read or write a merge's recorded CI verdict.",
		description: "\n" +
			"  result set <merge_id> <status>   Record a verdict (one of " + validStatesList() + ").\n" +
			"  result get <merge_id>             Print the recorded verdict, if any.\n",
		argsSummary: "set|get <merge_id> [status]",
		handle:      runResult,
	})
}

func validStatesList() string {
	s := ""
	for i, st := range oracle.All {
		if i > 0 {
			s += ", "
		}
		s += string(st)
	}
	return s
}

func runResult(p subcmd.ParseFunc) error {
	if err := p(); err != nil {
		return err
	}
	args := flagArgs()
	if len(args) == 0 {
		return fmt.Errorf("result requires a sub-action: \"set\" or \"get\"")
	}

	oc, err := oracle.New()
	if err != nil {
		return err
	}
	ctx := context.Background()

	switch args[0] {
	case "set":
		mergeID, rest, err := splitMergeID(args[1:])
		if err != nil {
			return err
		}
		if len(rest) < 1 {
			return fmt.Errorf("result set requires <merge_id> <status>")
		}
		status := rest[0]
		if !oracle.Valid(status) {
			return fmt.Errorf("invalid CI state %q: must be one of %s", status, validStatesList())
		}
		// mergeID doubles as the commit hash; the target branch half of the
		// oracle's composite key is carried in merge_id itself by
		// convention (<commit>_<target>), matching SetCIStatus's key shape.
		return oc.SetState(ctx, mergeID, status)
	case "get":
		mergeID, _, err := splitMergeID(args[1:])
		if err != nil {
			return err
		}
		v, err := oc.GetState(ctx, mergeID)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	default:
		return fmt.Errorf("result: unknown sub-action %q", args[0])
	}
}
