package main

import (
	"fmt"
	"os"

	"github.com/rybkr/dircache/internal/stage"
)

func runUpdateCache(idx *stage.Index, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: dircache update-cache <path>...")
		return 1
	}

	ok := true
	for _, path := range args {
		if err := stage.ValidatePath(path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", path, err)
			continue
		}
		if err := idx.StageFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			ok = false
		}
	}
	if !ok {
		return 128
	}

	if err := idx.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}
	return 0
}
