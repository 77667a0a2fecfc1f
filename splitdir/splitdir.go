// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package splitdir classifies monorepo file paths into the split
// repository ("split directory") they belong to.
package splitdir

import "strings"

// Root is the reserved split directory name for files that live at the
// monorepo root, not under any known component directory.
const Root = "-"

// known is the fixed set of monorepo component directories that each have
// their own split repository.
var known = map[string]bool{
	"clang":               true,
	"clang-tools-extra":   true,
	"compiler-rt":         true,
	"debuginfo-tests":     true,
	"libclc":              true,
	"libcxx":              true,
	"libcxxabi":           true,
	"libunwind":           true,
	"lld":                 true,
	"lldb":                true,
	"llgo":                true,
	"llvm":                true,
	"openmp":              true,
	"parallel-libs":       true,
	"polly":               true,
	"pstl":                true,
}

// All returns the fixed set of known split directory names, not including
// Root.
func All() []string {
	dirs := make([]string, 0, len(known))
	for d := range known {
		dirs = append(dirs, d)
	}
	return dirs
}

// IsKnown reports whether dir (not Root) is one of the fixed component
// names.
func IsKnown(dir string) bool {
	return known[dir]
}

// Classify returns the split directory that path belongs to: the path
// segment before the first "/" if it names a known component, otherwise
// Root.
func Classify(path string) string {
	first, _, _ := strings.Cut(path, "/")
	if known[first] {
		return first
	}
	return Root
}

// StripPrefix removes the "<dir>/" prefix from path for a non-root split
// dir. It is the caller's responsibility to only call this when
// Classify(path) == dir and dir != Root.
func StripPrefix(dir, path string) string {
	return strings.TrimPrefix(path, dir+"/")
}
