package main

import (
	"fmt"
	"os"

	"github.com/rybkr/dircache/internal/objcodec"
	"github.com/rybkr/dircache/internal/objstore"
	"github.com/rybkr/dircache/internal/termcolor"
)

func runReadTree(args []string, cw *termcolor.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: dircache read-tree <tree-hex>")
		return 1
	}

	digest, err := objstore.FromHex(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	store := objstore.NewStore(objstore.ResolveObjectRoot())

	objType, _, _, err := store.Read(digest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}
	if objType != "tree" {
		fmt.Fprintf(os.Stderr, "fatal: expected a 'tree' node\n")
		return 128
	}

	entries, err := objcodec.DecodeTree(store, digest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	for _, e := range entries {
		fmt.Print(cw.Cyan(objcodec.FormatTreeEntry(e)))
	}
	return 0
}
