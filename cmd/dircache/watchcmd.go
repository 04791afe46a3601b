package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rybkr/dircache/internal/stage"
	"github.com/rybkr/dircache/internal/watch"
)

func runWatch(idx *stage.Index, args []string) int {
	workDir := "."
	if len(args) > 0 {
		workDir = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := watch.Run(ctx, idx, workDir); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}
	return 0
}
