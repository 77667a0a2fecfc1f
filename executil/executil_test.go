// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package executil

import (
	"testing"
	"time"
)

func TestDirSetsWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	c := Dir(dir, "true")
	if c.Dir != dir {
		t.Errorf("Dir = %q, want %q", c.Dir, dir)
	}
}

func TestWithTimeoutZeroIsNoop(t *testing.T) {
	c := Dir("", "true")
	nc, cancel := WithTimeout(c, 0)
	defer cancel()
	if nc != c {
		t.Error("expected zero timeout to return the same *exec.Cmd")
	}
}

func TestWithTimeoutWrapsCommand(t *testing.T) {
	c := Dir("", "sleep", "5")
	nc, cancel := WithTimeout(c, 10*time.Millisecond)
	defer cancel()
	start := time.Now()
	_ = nc.Run()
	if time.Since(start) > 2*time.Second {
		t.Error("expected command to be killed by timeout well before 2s")
	}
}
