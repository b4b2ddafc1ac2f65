// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/nutrictl/internal/command"
	"github.com/staranto/nutrictl/internal/config"
	mylog "github.com/staranto/nutrictl/internal/log"
	"github.com/staranto/nutrictl/internal/version"
)

var ctx = context.Background()

// commands are the first-level subcommands. Anything else in arg[1] that is
// not a flag is taken as the start of a food name.
var commands = []string{"lookup", "suggest", "query", "cache", "completion", "help"}

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No food or command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments makes lookup the default command and expands an @set into
// the flags stored under <command>.<set> in the config file. Without an @set
// the <command>.defaults list, if any, is expanded.
func mangleArguments(args []string) []string {
	out := []string{args[0]}
	rest := args[1:]
	if !slices.Contains(commands, rest[0]) && !strings.HasPrefix(rest[0], "-") {
		out = append(out, "lookup")
	} else {
		out = append(out, rest[0])
		rest = rest[1:]
	}

	// Short-circuit for --help/-h.
	for _, a := range rest {
		if a == "--help" || a == "-h" {
			return append(out, "--help")
		}
	}

	// cache has its own subcommands, which stay ahead of any expansion.
	if out[1] == "cache" && len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
		out = append(out, rest[0])
		rest = rest[1:]
	}

	set := "defaults"
	idx := 0
	for i, a := range rest {
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			idx = i
			rest = append(rest[:i:i], rest[i+1:]...)
			break
		}
	}

	setArgs, err := config.GetStringSlice(out[1] + "." + set)
	if err != nil && set != "defaults" {
		log.WithError(err).Warnf("no @%s for %s", set, out[1])
	}

	var expanded []string
	for _, arg := range setArgs {
		expanded = append(expanded, strings.Fields(arg)...)
	}

	out = append(out, rest[:idx]...)
	out = append(out, expanded...)
	out = append(out, rest[idx:]...)

	log.Debugf("set=%s, args=%v", set, out)
	return out
}
