// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package graph renders the automerger edge graph as DOT, clustering
// branches into the github.com/llvm, github.com/apple, and Internal
// groupings the original tool used for Graphviz subgraphs.
package graph

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/apple-llvm-infra/automerger/edge"
)

// Cluster names, matching the original tool's Graphviz subgraph labels.
const (
	ClusterLLVM     = "github.com/llvm"
	ClusterApple    = "github.com/apple"
	ClusterInternal = "Internal"
)

// ClassifyBranch buckets a branch name into one of the three clusters.
// Internal is checked before Apple, matching the original's ordering note.
func ClassifyBranch(branch string) (string, error) {
	switch {
	case strings.HasPrefix(branch, "llvm"):
		return ClusterLLVM, nil
	case strings.HasPrefix(branch, "internal"), strings.HasPrefix(branch, "swift/internal"):
		return ClusterInternal, nil
	case branch == "next",
		strings.HasPrefix(branch, "swift"),
		strings.HasPrefix(branch, "apple"),
		strings.HasPrefix(branch, "stable"):
		return ClusterApple, nil
	default:
		return "", fmt.Errorf("unknown branch %q", branch)
	}
}

// edgeColor mirrors EdgeStates.get_color: clear=green, waiting=blue,
// working=yellow, blocked=red.
func edgeColor(s edge.State) string {
	switch s {
	case edge.Clear:
		return "green3"
	case edge.Waiting:
		return "blue3"
	case edge.Working:
		return "gold3"
	case edge.Blocked:
		return "red3"
	default:
		return "black"
	}
}

const dotTemplate = `digraph Automergers {
  rankdir=LR;
  nodesep=1;
  ranksep=1;
  splines=ortho;
  node [shape=record style=filled color=lightgray fontname=helvetica fixedsize=true width=4 height=0.8];
{{- range $name, $nodes := .Clusters }}
  subgraph "cluster_{{ $name }}" {
    label = "{{ $name }}";
{{- range $nodes }}
    "{{ . }}" [label="{{ trunc 40 . }}"];
{{- end }}
  }
{{- end }}
{{- range .Edges }}
  "{{ .Upstream }}" -> "{{ .Target }}" [color={{ .Color }}, penwidth=2, constraint={{ .Constraint }}{{ if .URL }}, URL="{{ .URL }}"{{ end }}];
{{- end }}
}
`

var dotTmpl = template.Must(template.New("dot").Funcs(sprig.TxtFuncMap()).Parse(dotTemplate))

// branchCollator orders branch names for display within a cluster. A
// collator (rather than sort.Strings) matches how the original tool's
// Graphviz subgraphs ultimately got their node order from Python's locale-
// aware sort.
var branchCollator = collate.New(language.Und)

type dotEdge struct {
	Upstream, Target, Color, Constraint, URL string
}

type dotData struct {
	Clusters map[string][]string
	Edges    []dotEdge
}

// Render builds the DOT source for edges, clustering every branch name that
// appears (upstream or target) into its classification.
func Render(edges []edge.Edge) (string, error) {
	clusters := map[string][]string{ClusterLLVM: nil, ClusterApple: nil, ClusterInternal: nil}
	seen := map[string]bool{}
	addBranch := func(b string) error {
		if seen[b] {
			return nil
		}
		seen[b] = true
		cluster, err := ClassifyBranch(b)
		if err != nil {
			return err
		}
		clusters[cluster] = append(clusters[cluster], b)
		return nil
	}

	data := dotData{Clusters: clusters}
	for _, e := range edges {
		if err := addBranch(e.Upstream); err != nil {
			return "", err
		}
		if err := addBranch(e.Target); err != nil {
			return "", err
		}
		constraint := "true"
		if !e.Constraint {
			constraint = "false"
		}
		data.Edges = append(data.Edges, dotEdge{
			Upstream:   e.Upstream,
			Target:     e.Target,
			Color:      edgeColor(e.State),
			Constraint: constraint,
			URL:        e.URL,
		})
	}
	for name := range data.Clusters {
		branchCollator.SortStrings(data.Clusters[name])
	}

	var buf bytes.Buffer
	if err := dotTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToFile writes the rendered DOT source to dotPath and, if the "dot"
// binary is available, invokes it to produce outPath in the requested
// format. When "dot" is unavailable, it prints a hint and returns nil: a
// missing Graphviz install degrades gracefully rather than failing the
// command, matching the original tool's ImportError handling.
func RenderToFile(edges []edge.Edge, dotPath, outPath, format string) error {
	src, err := Render(edges)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dotPath, []byte(src), 0o644); err != nil {
		return err
	}

	if _, err := exec.LookPath("dot"); err != nil {
		fmt.Println(`Generating the automerger graph requires the "dot" binary (Graphviz); install it to render ` + outPath + ".")
		return nil
	}

	cmd := exec.Command("dot", "-T"+format, "-o", outPath, dotPath)
	return cmd.Run()
}
