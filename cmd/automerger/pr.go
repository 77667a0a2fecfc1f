// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/apple-llvm-infra/automerger/prtool"
	"github.com/apple-llvm-infra/automerger/subcmd"
)

func init() {
	subcommands = append(subcommands, &option{
		name:    "pr",
		summary: "List, test, or create pull requests.",
		description: "\n" +
			"  pr list [--target <b>]                       List open PRs, optionally filtered by target branch.\n" +
			"  pr test <#N | branch> [--test <plan>]         Trigger CI for a pull request.\n" +
			"  pr create -m <title> -h <head> -b <base>      Open a new pull request.\n",
		argsSummary: "list|test|create [...]",
		handle:      runPR,
	})
}

func newGitHubTool(ctx context.Context, pat, repo string) (*prtool.GitHubTool, error) {
	owner, name, err := parseRepoFlag(repo)
	if err != nil {
		return nil, err
	}
	return prtool.NewGitHubTool(ctx, pat, owner, name)
}

// runPR dispatches to one of pr's own sub-actions (list, test, create),
// each of which registers its own flags and reuses p to parse them. Since p
// parses starting at os.Args[2:], and the sub-action name itself occupies
// that slot, os.Args is temporarily shifted so the sub-action's flags parse
// the same way any other verb's do.
func runPR(p subcmd.ParseFunc) error {
	if len(os.Args) < 3 {
		return fmt.Errorf(`pr requires a sub-action: "list", "test", or "create"`)
	}
	action := os.Args[2]

	original := os.Args
	os.Args = append([]string{original[0], original[1]}, original[3:]...)
	defer func() { os.Args = original }()

	switch action {
	case "list":
		return runPRList(p)
	case "test":
		return runPRTest(p)
	case "create":
		return runPRCreate(p)
	default:
		return fmt.Errorf("pr: unknown sub-action %q", action)
	}
}

func runPRList(p subcmd.ParseFunc) error {
	pat := githubPATFlag()
	repo := repoFlag()
	var target string
	flag.StringVar(&target, "target", "", "Only list PRs targeting this branch.")
	if err := p(); err != nil {
		return err
	}
	ctx := context.Background()
	tool, err := newGitHubTool(ctx, *pat, *repo)
	if err != nil {
		return err
	}
	prs, err := tool.List(ctx, target)
	if err != nil {
		return err
	}
	for _, pr := range prs {
		fmt.Printf("#%d %s: %s -> %s\n", pr.Number, pr.Title, pr.Head, pr.Base)
	}
	return nil
}

func runPRTest(p subcmd.ParseFunc) error {
	pat := githubPATFlag()
	repo := repoFlag()
	var plan string
	flag.StringVar(&plan, "test", "", "Test plan name to pass to TriggerTest.")
	if err := p(); err != nil {
		return err
	}

	args := flagArgs()
	if len(args) < 1 {
		return fmt.Errorf("pr test requires a <#N | branch> argument")
	}

	ctx := context.Background()
	tool, err := newGitHubTool(ctx, *pat, *repo)
	if err != nil {
		return err
	}
	info, err := resolvePR(ctx, tool, args[0])
	if err != nil {
		return err
	}
	return tool.TriggerTest(ctx, info.Number, plan)
}

func resolvePR(ctx context.Context, tool prtool.Tool, arg string) (*prtool.Info, error) {
	if n, ok := prtool.ParsePRNumber(arg); ok {
		return tool.GetByNumber(ctx, n)
	}
	prs, err := tool.List(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range prs {
		if prs[i].Head == arg {
			return &prs[i], nil
		}
	}
	return nil, fmt.Errorf("no open pull request found for branch %q", arg)
}

func runPRCreate(p subcmd.ParseFunc) error {
	pat := githubPATFlag()
	repo := repoFlag()
	var title, head, base string
	var dryRun bool
	flag.StringVar(&title, "m", "", "[Required] Pull request title.")
	flag.StringVar(&head, "h", "", "[Required] Head branch.")
	flag.StringVar(&base, "b", "", "[Required] Base branch.")
	flag.BoolVar(&dryRun, "dry-run", false, "Print what would be created instead of calling the API.")
	if err := p(); err != nil {
		return err
	}
	if title == "" || head == "" || base == "" {
		return fmt.Errorf("pr create requires -m, -h, and -b")
	}

	ctx := context.Background()
	tool, err := newGitHubTool(ctx, *pat, *repo)
	if err != nil {
		return err
	}
	info, err := tool.Create(ctx, title, head, base, dryRun)
	if err != nil {
		return err
	}
	if info.URL != "" {
		fmt.Println(info.URL)
	}
	return nil
}
