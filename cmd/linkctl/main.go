package main

import (
	"os"

	"github.com/dmitrijs2005/securelinks/internal/linkctl"
)

func main() {
	cli := &linkctl.CLI{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	os.Exit(cli.Run(os.Args[1:]))
}
