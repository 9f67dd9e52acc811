// Command tmux-salat prints the next prayer in a form suited to a tmux
// status line. It accepts the same flags as `salat next`.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/smokyabdulrahman/salat/internal/cli"
	"github.com/smokyabdulrahman/salat/internal/log"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(version)
	rootCmd.Use = "tmux-salat"
	rootCmd.SetArgs(tmuxArgs(os.Args[1:]))

	err := rootCmd.Execute()
	log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// tmuxArgs rewrites the command line to run `next`. Version, help and
// --list-methods keep their usual meaning.
func tmuxArgs(args []string) []string {
	for _, a := range args {
		switch a {
		case "--version", "-v", "--help", "-h":
			return args
		case "--list-methods":
			return []string{"methods"}
		}
	}

	out := append([]string{"next"}, args...)
	if !hasFlag(args, "format") {
		out = append(out, "--format", prayer.FormatNameAndTime)
	}
	return out
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == "--"+name || strings.HasPrefix(a, "--"+name+"=") {
			return true
		}
	}
	return false
}
