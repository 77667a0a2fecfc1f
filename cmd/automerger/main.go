// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Command automerger is the CLI surface for the automerger status & graph
// engine, zippered-merge planner, and monorepo-to-split-repo push engine.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/apple-llvm-infra/automerger/subcmd"
)

const description = `
automerger reports the health of configured merge edges between upstream and target
branches, renders the edge graph, records CI verdicts, and pushes a monorepo commit
graph out to per-component split repositories.
`

var subcommands []subcmd.Option

// option is a concrete subcmd.Option built from plain fields and a closure,
// so each verb file can register itself with a short literal. It also
// implements subcmd.OptionArgTaker unconditionally, since every verb here
// that needs positional args (result, url, push, pr) shares this type with
// the ones that don't; accepting unused trailing args on those is harmless.
type option struct {
	name, summary, description, argsSummary string
	handle                                  func(subcmd.ParseFunc) error
}

func (o *option) Name() string                    { return o.name }
func (o *option) Summary() string                 { return o.summary }
func (o *option) Description() string             { return o.description }
func (o *option) ArgsSummary() string             { return o.argsSummary }
func (o *option) Handle(p subcmd.ParseFunc) error { return o.handle(p) }

func main() {
	if err := setupLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	if err := subcmd.Run("automerger", description, subcommands); err != nil {
		log.Printf("fatal: %v\n", err)
		os.Exit(1)
	}
}
