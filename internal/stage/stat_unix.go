//go:build unix

package stage

import (
	"os"
	"syscall"
)

// statFields extracts the ctime, device, inode, uid, and gid fields the
// index records alongside mtime and size, none of which are exposed by
// the portable os.FileInfo interface. This mirrors how any Unix-native
// index implementation reaches into the raw stat buffer; dircache makes
// no claim to Windows portability.
func statFields(info os.FileInfo) (ctimeSec, ctimeNsec, dev, ino, uid, gid uint32) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, 0, 0, 0, 0
	}
	//nolint:gosec // truncation accepted, matches the on-disk field width
	return uint32(st.Ctim.Sec), uint32(st.Ctim.Nsec), uint32(st.Dev), uint32(st.Ino), st.Uid, st.Gid
}

// rawMode returns the raw st_mode value (type bits plus permission
// bits), e.g. 0100644 for a regular rw-r--r-- file. This is the octal
// mode a tree entry's mode field records — the classic Unix st_mode
// word, not Go's reinterpreted os.FileMode bit layout.
func rawMode(info os.FileInfo) uint32 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return uint32(info.Mode().Perm()) //nolint:gosec // fallback for non-syscall FileInfo
	}
	return uint32(st.Mode) //nolint:gosec // truncation accepted, matches on-disk field width
}
