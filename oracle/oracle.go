// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package oracle is the CI Oracle: a key/value abstraction, backed by
// Redis, used to look up per-commit CI verdicts and build URLs and to
// write verdicts back.
package oracle

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// CommitState is a per-commit CI verdict, as written by the external CI
// system.
type CommitState string

const (
	New         CommitState = "NEW"
	Conflict    CommitState = "CONFLICT"
	Pending     CommitState = "PENDING"
	Started     CommitState = "STARTED"
	Passed      CommitState = "PASSED"
	Failed      CommitState = "FAILED"
	KnownFailed CommitState = "KNOWN_FAILED"
)

// All lists every valid CommitState value, in the order the original tool
// declares them.
var All = []CommitState{New, Conflict, Pending, Started, Passed, Failed, KnownFailed}

// Valid reports whether s is one of the known CommitState values.
func Valid(s string) bool {
	for _, v := range All {
		if string(v) == s {
			return true
		}
	}
	return false
}

// Oracle is the key/value store the automerger consults for CI verdicts
// and build URLs.
type Oracle struct {
	client *redis.Client
}

// credentials holds the connection parameters read from the environment,
// matching the original tool's REDIS_HOST/REDIS_PORT/REDIS_DB/REDIS_PASSWORD.
type credentials struct {
	host     string
	port     int
	db       int
	password string
}

func getCredentials() (credentials, error) {
	password := os.Getenv("REDIS_PASSWORD")
	if password == "" {
		return credentials{}, fmt.Errorf("REDIS_PASSWORD environment variable is required but not set")
	}
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "<unknown>"
	}
	port := 6379
	if p := os.Getenv("REDIS_PORT"); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil {
			return credentials{}, fmt.Errorf("invalid REDIS_PORT %q: %w", p, err)
		}
		port = v
	}
	db := 8
	if d := os.Getenv("REDIS_DB"); d != "" {
		v, err := strconv.Atoi(d)
		if err != nil {
			return credentials{}, fmt.Errorf("invalid REDIS_DB %q: %w", d, err)
		}
		db = v
	}
	return credentials{host: host, port: port, db: db, password: password}, nil
}

// New connects to the Redis instance described by the environment
// (REDIS_HOST, REDIS_PORT, REDIS_DB, REDIS_PASSWORD).
func New() (*Oracle, error) {
	creds, err := getCredentials()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", creds.host, creds.port),
		Password: creds.password,
		DB:       creds.db,
	})
	return &Oracle{client: client}, nil
}

// GetState returns the raw value stored at key, or "" if unset.
func (o *Oracle) GetState(ctx context.Context, key string) (string, error) {
	v, err := o.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

// SetState stores value at key.
func (o *Oracle) SetState(ctx context.Context, key, value string) error {
	return o.client.Set(ctx, key, value, 0).Err()
}

// ClearState deletes key.
func (o *Oracle) ClearState(ctx context.Context, key string) error {
	return o.client.Del(ctx, key).Err()
}

// ciStatusKey matches the original tool's "<commit>_<target>" key shape.
func ciStatusKey(commit, targetBranch string) string {
	return commit + "_" + targetBranch
}

// GetCIStatus returns the CI verdict for commit against targetBranch, or
// ("", nil) if no verdict has been recorded yet.
func (o *Oracle) GetCIStatus(ctx context.Context, commit, targetBranch string) (CommitState, error) {
	v, err := o.GetState(ctx, ciStatusKey(commit, targetBranch))
	if err != nil || v == "" {
		return "", err
	}
	if !Valid(v) {
		return "", fmt.Errorf("unexpected CI state %q for %s/%s", v, commit, targetBranch)
	}
	return CommitState(v), nil
}

// SetCIStatus records a CI verdict for commit against targetBranch.
func (o *Oracle) SetCIStatus(ctx context.Context, commit, targetBranch string, state CommitState) error {
	if !Valid(string(state)) {
		return fmt.Errorf("invalid CI state %q", state)
	}
	return o.SetState(ctx, ciStatusKey(commit, targetBranch), string(state))
}

func buildURLKey(mergeID string) string {
	return mergeID + ".build_url"
}

// GetBuildURL returns the recorded build URL for mergeID, or "" if unset.
func (o *Oracle) GetBuildURL(ctx context.Context, mergeID string) (string, error) {
	return o.GetState(ctx, buildURLKey(mergeID))
}

// SetBuildURL records the build URL for mergeID.
func (o *Oracle) SetBuildURL(ctx context.Context, mergeID, url string) error {
	return o.SetState(ctx, buildURLKey(mergeID), url)
}
