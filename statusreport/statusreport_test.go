// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package statusreport

import (
	"bytes"
	"strings"
	"testing"
)

// TestPrintEdgeStatusUpToDate is scenario 1 from spec.md: an edge with no
// unmerged commits prints the exact up-to-date line and nothing else.
func TestPrintEdgeStatusUpToDate(t *testing.T) {
	var buf bytes.Buffer
	r := &EdgeReport{Upstream: "upstream", Target: "master"}
	PrintEdgeStatus(&buf, r, false, nil)
	want := "[upstream -> master]\n- 0 unmerged commits. master is up to date.\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

// TestPrintEdgeStatusConflictAtHead is scenario 2: the HEAD commit is
// annotated as a conflict when the caller's conflictHint reports it as one.
func TestPrintEdgeStatusConflictAtHead(t *testing.T) {
	var buf bytes.Buffer
	r := &EdgeReport{
		Upstream: "upstream",
		Target:   "master",
		Commits:  []CommitLine{{Hash: "abc123"}},
	}
	PrintEdgeStatus(&buf, r, false, func(c CommitLine) bool { return c.Hash == "abc123" })
	if !strings.Contains(buf.String(), "Conflict") {
		t.Errorf("expected Conflict substring, got %q", buf.String())
	}
}

func TestPrintEdgeStatusTruncatesMiddle(t *testing.T) {
	var buf bytes.Buffer
	r := &EdgeReport{
		Upstream: "u",
		Target:   "t",
		Commits: []CommitLine{
			{Hash: "c1"}, {Hash: "c2"}, {Hash: "c3"}, {Hash: "c4"},
		},
	}
	PrintEdgeStatus(&buf, r, false, nil)
	out := buf.String()
	if !strings.Contains(out, "in-between") {
		t.Errorf("expected truncation marker, got %q", out)
	}
	if strings.Contains(out, "c2") || strings.Contains(out, "c3") {
		t.Errorf("expected middle commits omitted, got %q", out)
	}
	if !strings.Contains(out, "c1") || !strings.Contains(out, "c4") {
		t.Errorf("expected head and tail commits present, got %q", out)
	}
}

func TestPrintZipperedWaiting(t *testing.T) {
	var buf bytes.Buffer
	PrintZipperedWaiting(&buf, "llvm.org/master")
	want := "The automerger is waiting for unmerged commits to share a merge-base from llvm.org/master\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
