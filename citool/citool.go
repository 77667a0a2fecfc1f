// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package citool dispatches CI test plan runs to an external build system.
// The original tool's CI-type enum discriminator becomes a tagged variant
// over concrete Backend implementations.
package citool

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Backend dispatches one CI test plan run and returns the build URL the
// caller should poll or record.
type Backend interface {
	Dispatch(commit, targetBranch, plan string) (buildURL string, err error)
}

// DispatchError carries the HTTP-level detail a caller needs to surface a
// CI dispatch failure: the request URL, the response status, and body text.
type DispatchError struct {
	URL    string
	Status int
	Body   string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("CI dispatch to %s failed: status %d: %s", e.URL, e.Status, e.Body)
}

// JenkinsBackend dispatches via Jenkins's buildWithParameters endpoint.
type JenkinsBackend struct {
	BaseURL string
	Token   string
	Job     string
	Client  *http.Client
}

// Dispatch POSTs to <base>/job/<job>/buildWithParameters with the token,
// cause, commit, and target-branch parameters the Jenkins job expects.
func (b *JenkinsBackend) Dispatch(commit, targetBranch, plan string) (string, error) {
	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	q := url.Values{}
	q.Set("token", b.Token)
	q.Set("cause", "automerger")
	q.Set("COMMIT", commit)
	q.Set("TARGET_BRANCH", targetBranch)
	if plan != "" {
		q.Set("TEST_PLAN", plan)
	}

	reqURL := strings.TrimSuffix(b.BaseURL, "/") + "/job/" + b.Job + "/buildWithParameters?" + q.Encode()
	resp, err := client.Post(reqURL, "", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", &DispatchError{URL: reqURL, Status: resp.StatusCode, Body: string(body)}
	}
	return resp.Header.Get("Location"), nil
}

// SwiftCIBackend dispatches via the swift.org CI bot's comment-trigger
// convention rather than a direct build API; Dispatch returns the comment
// body the caller should post to the pull request.
type SwiftCIBackend struct {
	Job string
}

// Dispatch returns the "@swift-ci" trigger phrase for this backend's job,
// to be posted as a pull request comment by the caller.
func (b *SwiftCIBackend) Dispatch(commit, targetBranch, plan string) (string, error) {
	trigger := "@swift-ci please test"
	if b.Job != "" {
		trigger = "@swift-ci please test " + b.Job
	}
	return trigger, nil
}
