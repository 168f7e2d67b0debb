package main

import (
	"fmt"
	"os"

	"github.com/vidframe/frameserver/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
