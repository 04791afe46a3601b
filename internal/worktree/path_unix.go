//go:build unix

package worktree

import (
	"os"
	"path/filepath"
	"syscall"
)

func joinWorkPath(workDir, name string) string {
	return filepath.Join(workDir, name)
}

// statFields extracts the ctime, device, and inode fields the comparator
// needs beyond what os.FileInfo exposes portably, mirroring
// internal/stage's own stat_unix.go extraction.
func statFields(info os.FileInfo) (ctimeSec, ctimeNsec, dev, ino, uid, gid uint32) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, 0, 0, 0, 0
	}
	//nolint:gosec // truncation accepted, matches the on-disk field width
	return uint32(st.Ctim.Sec), uint32(st.Ctim.Nsec), uint32(st.Dev), uint32(st.Ino), st.Uid, st.Gid
}

// rawMode mirrors internal/stage's rawMode: the classic Unix st_mode
// word (type bits + permission bits), not Go's os.FileMode layout.
func rawMode(info os.FileInfo) uint32 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return uint32(info.Mode().Perm()) //nolint:gosec // fallback for non-syscall FileInfo
	}
	return uint32(st.Mode) //nolint:gosec // truncation accepted, matches on-disk field width
}
