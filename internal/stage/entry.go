// Package stage implements the on-disk staging index: a binary,
// hash-verified file enumerating cached file metadata plus the blob
// digest of each staged file, kept sorted by path.
package stage

import "github.com/rybkr/dircache/internal/objstore"

// Entry is one staged file: cached stat metadata plus the digest of the
// blob object holding its content.
type Entry struct {
	CtimeSec, CtimeNsec uint32
	MtimeSec, MtimeNsec uint32
	Dev, Ino, Mode, UID, GID, Size uint32
	Hash                           objstore.Digest
	Name                           string
}

// fixedEntrySize is the byte length of an entry's fixed-width fields
// (everything before the variable-length name):
// 4 ctime.sec + 4 ctime.nsec + 4 mtime.sec + 4 mtime.nsec + 4 dev +
// 4 ino + 4 mode + 4 uid + 4 gid + 4 size + 20 sha1 + 2 namelen = 62.
const fixedEntrySize = 62

// entryAlignment is the boundary every entry's total on-disk length must
// be a multiple of.
const entryAlignment = 8

// paddedEntrySize returns round_up_multiple_of_8(fixedEntrySize + len(name) + 1),
// one entry's total on-disk length (the "+1" guarantees at least one
// padding/NUL byte).
func paddedEntrySize(nameLen int) int {
	raw := fixedEntrySize + nameLen + 1
	return (raw + entryAlignment - 1) &^ (entryAlignment - 1)
}

// less implements the index's sort order: byte-wise lexicographic, ties
// broken by length (shorter first). This is exactly how Go's native string
// comparison already behaves — if one name is a prefix of the other,
// the shorter one compares less — so no custom comparator is needed
// beyond the builtin operator.
func less(a, b string) bool {
	return a < b
}
