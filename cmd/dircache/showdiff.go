package main

import (
	"fmt"
	"os"

	"github.com/rybkr/dircache/internal/objstore"
	"github.com/rybkr/dircache/internal/stage"
	"github.com/rybkr/dircache/internal/termcolor"
	"github.com/rybkr/dircache/internal/worktree"
)

func runShowDiff(idx *stage.Index, args []string, cw *termcolor.Writer) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "usage: dircache show-diff")
		return 1
	}

	store := objstore.NewStore(objstore.ResolveObjectRoot())

	ok := true
	for _, e := range idx.Entries() {
		mask, err := worktree.Compare(".", e)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			ok = false
			continue
		}
		if mask == 0 {
			continue
		}
		fmt.Printf("%s %s\n", cw.Yellow(mask.String()), e.Name)
		if err := worktree.WriteDiff(os.Stdout, store, ".", e); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			ok = false
		}
	}

	if !ok {
		return 128
	}
	return 0
}
