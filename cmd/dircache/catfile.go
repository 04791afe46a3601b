package main

import (
	"fmt"
	"os"

	"github.com/rybkr/dircache/internal/objstore"
)

func runCatFile(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: dircache cat-file <hex>")
		return 1
	}

	digest, err := objstore.FromHex(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	store := objstore.NewStore(objstore.ResolveObjectRoot())
	objType, _, payload, err := store.Read(digest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	tmp, err := os.CreateTemp("", "dircache-catfile-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}
	defer tmp.Close()

	n, writeErr := tmp.Write(payload)
	// Treat a short write as a hard failure rather than silently
	// reporting success with a "bad" type tag.
	if writeErr != nil || n != len(payload) {
		fmt.Printf("%s: bad\n", tmp.Name())
		return 128
	}

	fmt.Printf("%s: %s\n", tmp.Name(), objType)
	return 0
}
