package main

import (
	"fmt"
	"os"

	"github.com/smokyabdulrahman/salat/internal/cli"
	"github.com/smokyabdulrahman/salat/internal/log"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(version)
	err := rootCmd.Execute()
	log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
