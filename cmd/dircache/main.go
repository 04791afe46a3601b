package main

import (
	"fmt"
	"os"

	"github.com/rybkr/dircache/internal/cli"
	"github.com/rybkr/dircache/internal/objstore"
	"github.com/rybkr/dircache/internal/repo"
	"github.com/rybkr/dircache/internal/stage"
	"github.com/rybkr/dircache/internal/termcolor"
)

// Build-time variables set via -ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	gf, args := parseGlobalFlags(os.Args[1:])

	for _, a := range args {
		if a == "--version" {
			printVersion()
			os.Exit(0)
		}
	}

	cw := termcolor.NewWriter(os.Stdout, gf.colorMode)

	app := cli.NewApp("dircache", version)
	app.Stderr = os.Stderr

	// idx is populated lazily by openIndex, once we know the matched
	// command needs one; closures below capture the pointer variable.
	var idx *stage.Index

	app.Register(&cli.Command{
		Name:    "init",
		Summary: "Create the repository and object store",
		Usage:   "dircache init",
		Run:     func(args []string) int { return runInit(args) },
	})

	app.Register(&cli.Command{
		Name:     "update-cache",
		Summary:  "Stage or unstage the given paths",
		Usage:    "dircache update-cache <path>...",
		Examples: []string{"dircache update-cache Makefile README"},
		Run:      func(args []string) int { return runUpdateCache(idx, args) },
	})

	app.Register(&cli.Command{
		Name:    "write-tree",
		Summary: "Write a tree object from the current index",
		Usage:   "dircache write-tree",
		Run:     func(args []string) int { return runWriteTree(idx, args) },
	})

	app.Register(&cli.Command{
		Name:     "read-tree",
		Summary:  "List the entries of a tree object",
		Usage:    "dircache read-tree <tree-hex>",
		Examples: []string{"dircache read-tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904"},
		Run:      func(args []string) int { return runReadTree(args, cw) },
	})

	app.Register(&cli.Command{
		Name:     "cat-file",
		Summary:  "Extract an object's payload to a tempfile",
		Usage:    "dircache cat-file <hex>",
		Examples: []string{"dircache cat-file 557db03de997c86a4a028e1ebd3a1ceb225be238"},
		Run:      func(args []string) int { return runCatFile(args) },
	})

	app.Register(&cli.Command{
		Name:    "show-diff",
		Summary: "Show working-tree changes against the index",
		Usage:   "dircache show-diff",
		Run:     func(args []string) int { return runShowDiff(idx, args, cw) },
	})

	app.Register(&cli.Command{
		Name:     "commit-tree",
		Summary:  "Create a commit object from a tree and message on stdin",
		Usage:    "dircache commit-tree <tree-hex> [-p <parent-hex>]...",
		Examples: []string{"dircache commit-tree <tree> -p <parent> < message.txt"},
		Run:      func(args []string) int { return runCommitTree(args) },
	})

	app.Register(&cli.Command{
		Name:     "watch",
		Summary:  "Continuously re-stage changed paths",
		Usage:    "dircache watch [dir]",
		Examples: []string{"dircache watch", "dircache watch src"},
		Run:      func(args []string) int { return runWatch(idx, args) },
	})

	app.Register(&cli.Command{
		Name:    "version",
		Summary: "Show version information",
		Usage:   "dircache version",
		Run:     func([]string) int { printVersion(); return 0 },
	})

	needsIndex := map[string]bool{
		"update-cache": true,
		"write-tree":   true,
		"show-diff":    true,
		"watch":        true,
	}

	if len(args) > 0 {
		if cmd := app.Lookup(args[0]); cmd != nil && needsIndex[cmd.Name] {
			loaded, err := openIndex()
			if err != nil {
				fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
				os.Exit(128)
			}
			idx = loaded
		}
	}

	os.Exit(app.Run(args, cw))
}

// openIndex constructs and loads the index rooted at the default repo
// directory, resolving the object root the same way every other
// component does (objstore.ResolveObjectRoot).
func openIndex() (*stage.Index, error) {
	store := objstore.NewStore(objstore.ResolveObjectRoot())
	idx := stage.New(repo.DefaultRepoDir, ".", store)
	if _, err := idx.Load(); err != nil {
		return nil, fmt.Errorf("loading index: %w", err)
	}
	return idx, nil
}

func printVersion() {
	fmt.Printf("dircache %s\n", version)
	fmt.Printf("  commit:     %s\n", commit)
	fmt.Printf("  built:      %s\n", buildDate)
}
