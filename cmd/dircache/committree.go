package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rybkr/dircache/internal/identity"
	"github.com/rybkr/dircache/internal/objcodec"
	"github.com/rybkr/dircache/internal/objstore"
)

func runCommitTree(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: dircache commit-tree <tree-hex> [-p <parent-hex>]...")
		return 1
	}

	treeDigest, err := objstore.FromHex(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	var parents []objstore.Digest
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		if rest[i] != "-p" {
			fmt.Fprintf(os.Stderr, "fatal: unrecognized argument %q\n", rest[i])
			return 128
		}
		if i+1 >= len(rest) {
			fmt.Fprintln(os.Stderr, "fatal: -p requires a parent hex digest")
			return 128
		}
		parentDigest, err := objstore.FromHex(rest[i+1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			return 128
		}
		parents = append(parents, parentDigest)
		i++
	}

	message, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: reading commit message: %v\n", err)
		return 128
	}

	sig, err := identity.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	store := objstore.NewStore(objstore.ResolveObjectRoot())
	digest, err := objcodec.EncodeCommit(store, objcodec.CommitInfo{
		Tree:      treeDigest,
		Parents:   parents,
		Author:    sig,
		Committer: sig,
		Message:   message,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}

	fmt.Println(digest.ToHex())
	return 0
}
