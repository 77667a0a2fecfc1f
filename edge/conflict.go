// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package edge

import (
	"path/filepath"

	"github.com/apple-llvm-infra/automerger/gitcmd"
)

// tempWorktreeName is the well-known path the conflict probe uses, relative
// to the repository's .git directory.
const tempWorktreeName = "temp-worktree"

// ProbeConflict determines whether commit would conflict with targetRef
// (typically "<remote>/<target>") using a disposable detached worktree.
// The worktree is always removed, whether the probe succeeds or fails.
func ProbeConflict(dir, commit, targetRef string) (conflict bool, err error) {
	gitDir, err := gitcmd.Run([]string{"rev-parse", "--git-dir"}, gitcmd.Options{Dir: dir})
	if err != nil {
		return false, err
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(dir, gitDir)
	}
	worktreePath := filepath.Join(gitDir, tempWorktreeName)

	gitcmd.WorktreeRemove(dir, worktreePath)
	defer gitcmd.WorktreeRemove(dir, worktreePath)

	if err := gitcmd.WorktreeAdd(dir, worktreePath, targetRef, "", true); err != nil {
		return false, err
	}

	_, mergeErr := gitcmd.Run([]string{"merge", "--no-commit", commit}, gitcmd.Options{Dir: worktreePath})
	// merge --no-commit leaves the worktree mid-merge on both success and
	// conflict; it is discarded unconditionally by the deferred removal
	// above, so there's no need to abort it explicitly. A failed merge here
	// means a conflict, not a tool error, so it isn't propagated as err.
	return mergeErr != nil, nil
}
