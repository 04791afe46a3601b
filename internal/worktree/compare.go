// Package worktree implements the working-tree comparator: it compares
// a staged entry's cached metadata against the on-disk file and, if
// anything differs, pipes the staged blob and the working copy to an
// external diff utility.
package worktree

import (
	"fmt"
	"os"

	"github.com/rybkr/dircache/internal/objstore"
	"github.com/rybkr/dircache/internal/stage"
)

// ChangeMask is a bitmask of the six dimensions an entry can diverge on.
type ChangeMask uint8

const (
	MaskMtime ChangeMask = 1 << iota
	MaskCtime
	MaskOwner
	MaskMode
	MaskInode
	MaskData
)

// String renders the set bits as a short label list, e.g. "mtime,data".
func (m ChangeMask) String() string {
	if m == 0 {
		return "ok"
	}
	labels := []struct {
		bit   ChangeMask
		label string
	}{
		{MaskMtime, "mtime"},
		{MaskCtime, "ctime"},
		{MaskOwner, "owner"},
		{MaskMode, "mode"},
		{MaskInode, "inode"},
		{MaskData, "data"},
	}
	out := ""
	for _, l := range labels {
		if m&l.bit != 0 {
			if out != "" {
				out += ","
			}
			out += l.label
		}
	}
	return out
}

// Compare stats the working-tree file backing e (resolved under workDir)
// and returns the mask of dimensions that differ from the cached entry.
// A missing working-tree file reports MaskInode|MaskData, matching "file
// replaced"/"content gone" semantics; any other stat failure is an error.
func Compare(workDir string, e stage.Entry) (ChangeMask, error) {
	info, err := os.Stat(joinWorkPath(workDir, e.Name))
	if err != nil {
		if os.IsNotExist(err) {
			return MaskInode | MaskData, nil
		}
		return 0, fmt.Errorf("worktree: stat %s: %w", e.Name, err)
	}

	ctimeSec, ctimeNsec, dev, ino, uid, gid := statFields(info)

	var mask ChangeMask
	mtimeSec := uint32(info.ModTime().Unix())       //nolint:gosec // matches on-disk field width
	mtimeNsec := uint32(info.ModTime().Nanosecond()) //nolint:gosec // matches on-disk field width
	if mtimeSec != e.MtimeSec || mtimeNsec != e.MtimeNsec {
		mask |= MaskMtime
	}
	if ctimeSec != e.CtimeSec || ctimeNsec != e.CtimeNsec {
		mask |= MaskCtime
	}
	if uid != e.UID || gid != e.GID {
		mask |= MaskOwner
	}
	if rawMode(info) != e.Mode {
		mask |= MaskMode
	}
	if dev != e.Dev || ino != e.Ino {
		mask |= MaskInode
	}
	if uint32(info.Size()) != e.Size { //nolint:gosec // matches on-disk field width
		mask |= MaskData
	}
	return mask, nil
}

// StagedDigest returns the blob digest for the staged copy of e, for
// callers that need to fetch it to pipe into an external diff.
func StagedDigest(e stage.Entry) objstore.Digest {
	return e.Hash
}
