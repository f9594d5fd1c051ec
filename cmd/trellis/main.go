package main

import (
	"fmt"
	"os"

	"github.com/eleven-am/trellis/internal/cli"
	"github.com/eleven-am/trellis/pkg/trellis"
)

// Populated at build time:
//
//	go build -ldflags "-X main.gitCommit=$(git rev-parse HEAD) -X main.buildDate=$(date -u +%Y-%m-%d)"
var (
	gitCommit string
	buildDate string
)

func main() {
	trellis.SetBuildInfo(gitCommit, buildDate, "")
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
