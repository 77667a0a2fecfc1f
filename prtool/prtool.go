// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package prtool is a capability-set abstraction over pull-request
// backends, replacing the original tool's PRTool/PullRequest class
// hierarchy with a single interface plus a concrete GitHub implementation.
package prtool

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-github/v65/github"

	"github.com/apple-llvm-infra/automerger/githubutil"
)

// Info is the backend-neutral view of a pull request.
type Info struct {
	Number int
	Title  string
	Head   string
	Base   string
	URL    string
	Open   bool
}

// Tool is the capability set every PR backend exposes: list, get-by-number,
// create, comment, and trigger-test. Concrete backends (github, a test
// mock) implement it directly instead of subclassing an abstract base.
type Tool interface {
	List(ctx context.Context, targetBranch string) ([]Info, error)
	GetByNumber(ctx context.Context, number int) (*Info, error)
	Create(ctx context.Context, title, head, base string, dryRun bool) (*Info, error)
	AddComment(ctx context.Context, number int, body string) error
	TriggerTest(ctx context.Context, number int, plan string) error
}

// ParsePRNumber parses a "#N" or bare "N" argument into a pull request
// number, mirroring the original tool's PullRequestParamType.
func ParsePRNumber(s string) (int, bool) {
	s = strings.TrimPrefix(s, "#")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GitHubTool is a Tool backed by the GitHub pull request API.
type GitHubTool struct {
	Client *github.Client
	Owner  string
	Repo   string
}

// NewGitHubTool builds a GitHubTool from a personal access token.
func NewGitHubTool(ctx context.Context, pat, owner, repo string) (*GitHubTool, error) {
	client, err := githubutil.NewClient(ctx, pat)
	if err != nil {
		return nil, err
	}
	return &GitHubTool{Client: client, Owner: owner, Repo: repo}, nil
}

func toInfo(pr *github.PullRequest) *Info {
	return &Info{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		Head:   pr.GetHead().GetRef(),
		Base:   pr.GetBase().GetRef(),
		URL:    pr.GetHTMLURL(),
		Open:   pr.GetState() == "open",
	}
}

// List returns every open pull request targeting targetBranch.
func (t *GitHubTool) List(ctx context.Context, targetBranch string) ([]Info, error) {
	opts := &github.PullRequestListOptions{Base: targetBranch, State: "open"}
	var infos []Info
	if err := githubutil.FetchEachPage(func(lo github.ListOptions) (*github.Response, error) {
		opts.ListOptions = lo
		prs, resp, err := t.Client.PullRequests.List(ctx, t.Owner, t.Repo, opts)
		if err != nil {
			return nil, err
		}
		for _, pr := range prs {
			infos = append(infos, *toInfo(pr))
		}
		return resp, nil
	}); err != nil {
		return nil, err
	}
	return infos, nil
}

// GetByNumber fetches one pull request by number.
func (t *GitHubTool) GetByNumber(ctx context.Context, number int) (*Info, error) {
	pr, _, err := t.Client.PullRequests.Get(ctx, t.Owner, t.Repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get PR #%d: %w", number, err)
	}
	return toInfo(pr), nil
}

// Create opens a new pull request, or prints what would be created when
// dryRun is set.
func (t *GitHubTool) Create(ctx context.Context, title, head, base string, dryRun bool) (*Info, error) {
	if dryRun {
		fmt.Printf("dry-run: would create PR %q: %s -> %s\n", title, head, base)
		return &Info{Title: title, Head: head, Base: base, Open: true}, nil
	}
	pr, _, err := t.Client.PullRequests.Create(ctx, t.Owner, t.Repo, &github.NewPullRequest{
		Title: &title,
		Head:  &head,
		Base:  &base,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PR %q: %w", title, err)
	}
	return toInfo(pr), nil
}

// AddComment posts a comment onto an existing pull request's issue thread.
func (t *GitHubTool) AddComment(ctx context.Context, number int, body string) error {
	_, _, err := t.Client.Issues.CreateComment(ctx, t.Owner, t.Repo, number, &github.IssueComment{Body: &body})
	return err
}

// TriggerTest posts the conventional "/test <plan>" comment CI bots watch
// for, since GitHub itself has no native "run this test plan" API.
func (t *GitHubTool) TriggerTest(ctx context.Context, number int, plan string) error {
	body := "/test"
	if plan != "" {
		body += " " + plan
	}
	return t.AddComment(ctx, number, body)
}
