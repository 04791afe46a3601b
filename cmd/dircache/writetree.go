package main

import (
	"fmt"
	"os"

	"github.com/rybkr/dircache/internal/objcodec"
	"github.com/rybkr/dircache/internal/objstore"
	"github.com/rybkr/dircache/internal/stage"
)

func runWriteTree(idx *stage.Index, args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "usage: dircache write-tree")
		return 1
	}

	store := objstore.NewStore(objstore.ResolveObjectRoot())

	entries := idx.Entries()
	treeEntries := make([]objcodec.TreeEntry, len(entries))
	for i, e := range entries {
		treeEntries[i] = objcodec.TreeEntry{Mode: e.Mode, Name: e.Name, Digest: e.Hash}
	}

	digest, err := objcodec.EncodeTree(store, treeEntries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	fmt.Println(digest.ToHex())
	return 0
}
