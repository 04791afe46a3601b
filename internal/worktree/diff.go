package worktree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/rybkr/dircache/internal/objcodec"
	"github.com/rybkr/dircache/internal/objstore"
	"github.com/rybkr/dircache/internal/stage"
)

// WriteDiff pipes the staged blob for e (read via store) as stdin to
// "diff -u - <workDir/e.Name>", writing the external diff's combined
// output to out. diff's exit status 1 ("differences found") is not
// treated as an error; only a genuine launch/wait failure is.
func WriteDiff(out io.Writer, store *objstore.Store, workDir string, e stage.Entry) error {
	payload, err := objcodec.DecodeBlob(store, e.Hash)
	if err != nil {
		return fmt.Errorf("worktree: reading staged blob for %s: %w", e.Name, err)
	}

	cmd := exec.Command("diff", "-u", "-", joinWorkPath(workDir, e.Name))
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return fmt.Errorf("worktree: running diff for %s: %w", e.Name, err)
	}
	return nil
}
