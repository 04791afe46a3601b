package main

import (
	"fmt"
	"os"

	"github.com/rybkr/dircache/internal/repo"
)

func runInit(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "usage: dircache init")
		return 1
	}
	if err := repo.Init(repo.DefaultRepoDir); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}
	return 0
}
