package stage

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // the index header hash is defined as SHA-1, not a cryptographic choice
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/rybkr/dircache/internal/objcodec"
	"github.com/rybkr/dircache/internal/objstore"
)

// indexSignature is the literal 4-byte ASCII magic that opens every
// index file. It is compared byte-for-byte rather than as a
// native-endian integer, which sidesteps the "DIRC" vs "CRID"
// byte-order ambiguity inherent in reading a fixed magic as an integer:
// a byte comparison is correct regardless of host endianness.
var indexSignature = [4]byte{'D', 'I', 'R', 'C'}

// indexVersion is the only supported on-disk index format version.
const indexVersion = 1

// headerPrefixSize is the portion of the header hashed into the
// trailing sha1: signature(4) + version(4) + entry count(4).
const headerPrefixSize = 4 + 4 + 4

// headerSize is the full on-disk header: headerPrefixSize + a 20-byte
// sha1 trailer.
const headerSize = headerPrefixSize + objstore.DigestSize

var (
	// ErrMoreThanOneCachefile is returned by Load when called more than
	// once against the same Index.
	ErrMoreThanOneCachefile = errors.New("stage: more than one cachefile")
	// ErrBadHeaderSHA1 is returned by Load when the header-recorded
	// digest does not match the recomputed digest of the header prefix
	// plus entries.
	ErrBadHeaderSHA1 = errors.New("stage: bad header sha1")
	// ErrLockExists is returned by Save when <repo>/index.lock already
	// exists.
	ErrLockExists = errors.New("stage: unable to create new cachefile")
)

// Index is the in-memory form of the staging area: an ordered list of
// entries kept sorted by name, backed by <repo>/index on disk.
type Index struct {
	repoDir string
	workDir string
	store   *objstore.Store
	entries []Entry
	loaded  bool
}

// New returns an Index rooted at repoDir (typically the default
// ".dircache" directory), backed by the given object store. Staged
// paths are resolved relative to workDir (typically the working
// directory the command was invoked from); entry names themselves are
// always stored workDir-relative, never absolute, matching the
// classic update-cache contract of taking paths relative to the
// repository root.
func New(repoDir, workDir string, store *objstore.Store) *Index {
	return &Index{repoDir: repoDir, workDir: workDir, store: store}
}

func (idx *Index) indexPath() string { return filepath.Join(idx.repoDir, "index") }
func (idx *Index) lockPath() string  { return filepath.Join(idx.repoDir, "index.lock") }

// Entries returns the current entries in sorted-name order. The caller must not
// retain or mutate the returned slice's backing array across further
// Index calls.
func (idx *Index) Entries() []Entry {
	return idx.entries
}

// Load reads <repo>/index into memory, returning the entry count. A
// missing index file is not an error: the in-memory index is simply
// empty. Load may only be called once per Index.
func (idx *Index) Load() (int, error) {
	if idx.loaded {
		return 0, ErrMoreThanOneCachefile
	}
	idx.loaded = true

	if err := checkExecutable(idx.store.Root); err != nil {
		return 0, fmt.Errorf("stage: %w", err)
	}

	f, err := os.Open(idx.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("stage: opening index: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stage: stat index: %w", err)
	}
	if info.Size() == 0 {
		return 0, nil
	}
	if info.Size() < headerSize {
		return 0, fmt.Errorf("stage: index file too short (%d bytes)", info.Size())
	}

	mapped, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return 0, fmt.Errorf("stage: mmap index: %w", err)
	}
	defer mapped.Unmap()

	data := []byte(mapped)

	var sig [4]byte
	copy(sig[:], data[0:4])
	if sig != indexSignature {
		return 0, fmt.Errorf("stage: bad index signature %q", sig)
	}
	version := binary.NativeEndian.Uint32(data[4:8])
	if version != indexVersion {
		return 0, fmt.Errorf("stage: unsupported index version %d", version)
	}
	count := binary.NativeEndian.Uint32(data[8:12])

	var storedHash [objstore.DigestSize]byte
	copy(storedHash[:], data[headerPrefixSize:headerSize])

	entriesRegion := data[headerSize:]
	sum := sha1.Sum(append(append([]byte{}, data[:headerPrefixSize]...), entriesRegion...)) //nolint:gosec // see package-level note
	if sum != storedHash {
		return 0, ErrBadHeaderSHA1
	}

	entries, err := parseEntries(entriesRegion, int(count))
	if err != nil {
		return 0, fmt.Errorf("stage: %w", err)
	}
	idx.entries = entries

	return len(idx.entries), nil
}

// checkExecutable requires the execute bit on path as a liveness check
// before touching the index.
func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("object root %s is not accessible: %w", path, err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		return fmt.Errorf("object root %s is not executable", path)
	}
	return nil
}

func parseEntries(data []byte, count int) ([]Entry, error) {
	entries := make([]Entry, 0, count)
	offset := 0
	for i := 0; i < count; i++ {
		if offset+fixedEntrySize > len(data) {
			return nil, fmt.Errorf("entry %d: truncated fixed fields", i)
		}
		p := data[offset:]

		e := Entry{
			CtimeSec:  binary.NativeEndian.Uint32(p[0:4]),
			CtimeNsec: binary.NativeEndian.Uint32(p[4:8]),
			MtimeSec:  binary.NativeEndian.Uint32(p[8:12]),
			MtimeNsec: binary.NativeEndian.Uint32(p[12:16]),
			Dev:       binary.NativeEndian.Uint32(p[16:20]),
			Ino:       binary.NativeEndian.Uint32(p[20:24]),
			Mode:      binary.NativeEndian.Uint32(p[24:28]),
			UID:       binary.NativeEndian.Uint32(p[28:32]),
			GID:       binary.NativeEndian.Uint32(p[32:36]),
			Size:      binary.NativeEndian.Uint32(p[36:40]),
		}
		copy(e.Hash[:], p[40:60])
		nameLen := int(binary.NativeEndian.Uint16(p[60:62]))

		if offset+fixedEntrySize+nameLen > len(data) {
			return nil, fmt.Errorf("entry %d: truncated name", i)
		}
		e.Name = string(data[offset+fixedEntrySize : offset+fixedEntrySize+nameLen])

		entries = append(entries, e)
		offset += paddedEntrySize(nameLen)
	}
	return entries, nil
}

// Lookup performs a binary search for name under sorted-name ordering, returning
// the position at which it either was found (found == true) or should
// be inserted (found == false).
func (idx *Index) Lookup(name string) (pos int, found bool) {
	lo, hi := 0, len(idx.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case idx.entries[mid].Name == name:
			return mid, true
		case less(idx.entries[mid].Name, name):
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false
}

// AddEntry inserts e in sorted position, replacing any existing entry
// with the same name.
func (idx *Index) AddEntry(e Entry) {
	pos, found := idx.Lookup(e.Name)
	if found {
		idx.entries[pos] = e
		return
	}
	idx.entries = append(idx.entries, Entry{})
	copy(idx.entries[pos+1:], idx.entries[pos:])
	idx.entries[pos] = e
}

// RemoveEntry deletes the entry named name, if present. It is a no-op
// if name is not staged.
func (idx *Index) RemoveEntry(name string) {
	pos, found := idx.Lookup(name)
	if !found {
		return
	}
	idx.entries = append(idx.entries[:pos], idx.entries[pos+1:]...)
}

// StageFile stages the working-tree file named by the repo-relative
// path name: it records the file's cached stat metadata and writes its
// content as a blob object, or — if the file no longer exists —
// removes any existing entry for it.
func (idx *Index) StageFile(name string) error {
	if err := ValidatePath(name); err != nil {
		return fmt.Errorf("stage: %w", err)
	}

	fullPath := filepath.Join(idx.workDir, name)
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			idx.RemoveEntry(name)
			return nil
		}
		return fmt.Errorf("stage: opening %s: %w", fullPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stage: stat %s: %w", fullPath, err)
	}

	content, err := readAll(f, info.Size())
	if err != nil {
		return fmt.Errorf("stage: reading %s: %w", fullPath, err)
	}

	digest, err := objcodec.EncodeBlob(idx.store, content)
	if err != nil {
		return fmt.Errorf("stage: encoding blob for %s: %w", fullPath, err)
	}

	ctimeSec, ctimeNsec, devNo, inoNo, uidNo, gidNo := statFields(info)

	idx.AddEntry(Entry{
		CtimeSec:  ctimeSec,
		CtimeNsec: ctimeNsec,
		MtimeSec:  uint32(info.ModTime().Unix()),       //nolint:gosec // truncation accepted, matches on-disk field width
		MtimeNsec: uint32(info.ModTime().Nanosecond()), //nolint:gosec // see above
		Dev:       devNo,
		Ino:       inoNo,
		Mode:      rawMode(info),
		UID:       uidNo,
		GID:       gidNo,
		Size:      uint32(info.Size()), //nolint:gosec // see above
		Hash:      digest,
		Name:      name,
	})
	return nil
}

// readAll reads the whole of f into memory, given its expected size.
// This is the staging read path's in-memory counterpart of
// objstore.Store.Read's mmap-based read; a plain read is sufficient
// here since the bytes are immediately fed to EncodeBlob rather than
// kept mapped.
func readAll(f *os.File, size int64) ([]byte, error) {
	buf := make([]byte, size)
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			if total == len(buf) {
				break
			}
			return nil, err
		}
	}
	return buf[:total], nil
}

// Save serializes the index to <repo>/index.lock and atomically renames
// it onto <repo>/index. The lock file's exclusive creation makes
// concurrent Save calls across processes safe: the loser gets
// ErrLockExists.
func (idx *Index) Save() error {
	lockPath := idx.lockPath()

	lock, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return ErrLockExists
		}
		return fmt.Errorf("stage: creating lock file: %w", err)
	}

	if err := idx.writeTo(lock); err != nil {
		lock.Close()
		_ = os.Remove(lockPath)
		return fmt.Errorf("stage: writing index: %w", err)
	}
	if err := lock.Close(); err != nil {
		_ = os.Remove(lockPath)
		return fmt.Errorf("stage: closing index: %w", err)
	}

	if err := os.Rename(lockPath, idx.indexPath()); err != nil {
		_ = os.Remove(lockPath)
		return fmt.Errorf("stage: publishing index: %w", err)
	}
	return nil
}

func (idx *Index) writeTo(f *os.File) error {
	var entriesBuf bytes.Buffer
	for _, e := range idx.entries {
		writeEntry(&entriesBuf, e)
	}

	var headerPrefix [headerPrefixSize]byte
	copy(headerPrefix[0:4], indexSignature[:])
	binary.NativeEndian.PutUint32(headerPrefix[4:8], indexVersion)
	binary.NativeEndian.PutUint32(headerPrefix[8:12], uint32(len(idx.entries))) //nolint:gosec // entry counts fit uint32 in any real repo

	hashInput := append(append([]byte{}, headerPrefix[:]...), entriesBuf.Bytes()...)
	sum := sha1.Sum(hashInput) //nolint:gosec // see package-level note

	if _, err := f.Write(headerPrefix[:]); err != nil {
		return err
	}
	if _, err := f.Write(sum[:]); err != nil {
		return err
	}
	if _, err := f.Write(entriesBuf.Bytes()); err != nil {
		return err
	}
	return nil
}

func writeEntry(buf *bytes.Buffer, e Entry) {
	var fixed [fixedEntrySize]byte
	binary.NativeEndian.PutUint32(fixed[0:4], e.CtimeSec)
	binary.NativeEndian.PutUint32(fixed[4:8], e.CtimeNsec)
	binary.NativeEndian.PutUint32(fixed[8:12], e.MtimeSec)
	binary.NativeEndian.PutUint32(fixed[12:16], e.MtimeNsec)
	binary.NativeEndian.PutUint32(fixed[16:20], e.Dev)
	binary.NativeEndian.PutUint32(fixed[20:24], e.Ino)
	binary.NativeEndian.PutUint32(fixed[24:28], e.Mode)
	binary.NativeEndian.PutUint32(fixed[28:32], e.UID)
	binary.NativeEndian.PutUint32(fixed[32:36], e.GID)
	binary.NativeEndian.PutUint32(fixed[36:40], e.Size)
	copy(fixed[40:60], e.Hash[:])
	binary.NativeEndian.PutUint16(fixed[60:62], uint16(len(e.Name))) //nolint:gosec // path names fit uint16 in any real repo

	buf.Write(fixed[:])
	buf.WriteString(e.Name)

	padded := paddedEntrySize(len(e.Name))
	pad := padded - (fixedEntrySize + len(e.Name))
	for i := 0; i < pad; i++ {
		buf.WriteByte(0)
	}
}
