// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package pushcoord

import "testing"

func TestParseRefspec(t *testing.T) {
	tests := []struct {
		in       string
		src      string
		dest     string
		wantErr  bool
	}{
		{"HEAD:internal/master", "HEAD", "internal/master", false},
		{"abc123:llvm.org/master", "abc123", "llvm.org/master", false},
		{"no-colon-here", "", "", true},
		{":missing-src", "", "", true},
		{"missing-dest:", "", "", true},
	}
	for _, tt := range tests {
		src, dest, err := ParseRefspec(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRefspec(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && (src != tt.src || dest != tt.dest) {
			t.Errorf("ParseRefspec(%q) = (%q, %q), want (%q, %q)", tt.in, src, dest, tt.src, tt.dest)
		}
	}
}

func TestPushLimitExceededErrorHint(t *testing.T) {
	err := &PushLimitExceededError{Count: 50, Limit: 50}
	want := "refusing to push 50 commits (limit 50); pass --push-limit=51 to override"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestAlreadyMappedErrorMessage(t *testing.T) {
	err := &AlreadyMappedError{Commit: "abc", SplitCommit: "def"}
	if err.Error() == "" {
		t.Fatal("expected non-empty error message")
	}
}

func TestNotPushableErrorMessage(t *testing.T) {
	err := &NotPushableError{DestBranch: "internal/master"}
	if err.Error() == "" {
		t.Fatal("expected non-empty error message")
	}
}
