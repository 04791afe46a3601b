package objstore

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"crypto/sha1" //nolint:gosec // object digests are defined as SHA-1, not a cryptographic choice
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	mmap "github.com/edsrzf/mmap-go"
)

// headerScratchSize bounds the buffer used to scan for the object
// header's NUL terminator before the payload size is known.
const headerScratchSize = 8 * 1024

// maxHeaderTypeLen is the longest object type token ("commit" is the
// longest of blob/tree/commit) plus slack.
const maxHeaderTypeLen = 10

// Store is a content-addressed, compressed object repository rooted at
// Root. The zero value is not usable; construct with NewStore.
type Store struct {
	Root string
}

// NewStore returns a Store rooted at root.
func NewStore(root string) *Store {
	return &Store{Root: root}
}

// Write deflates payload at maximum compression, computes the digest of
// the compressed bytes, and publishes them under that digest's object
// path. payload must already carry its "<type> <size>\0" framing
// (internal/objcodec builds that framing); Write itself is agnostic to
// the type tag.
//
// Writing a digest that already exists on disk is treated as success:
// content addressing guarantees identical compressed bytes can only
// come from identical input, so the existing file is already correct.
func (s *Store) Write(payload []byte) (Digest, error) {
	var compressed bytes.Buffer
	zw, err := zlib.NewWriterLevel(&compressed, zlib.BestCompression)
	if err != nil {
		return Digest{}, fmt.Errorf("objstore: creating zlib writer: %w", err)
	}
	if _, err := zw.Write(payload); err != nil {
		return Digest{}, fmt.Errorf("objstore: deflating object: %w", err)
	}
	if err := zw.Close(); err != nil {
		return Digest{}, fmt.Errorf("objstore: finishing deflate: %w", err)
	}

	sum := sha1.Sum(compressed.Bytes()) //nolint:gosec // see package-level note
	digest := Digest(sum)

	path := ObjectPath(s.Root, digest)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Digest{}, fmt.Errorf("objstore: creating fan-out directory for %s: %w", digest, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o400)
	if err != nil {
		if os.IsExist(err) {
			return digest, nil
		}
		return Digest{}, fmt.Errorf("objstore: creating object file %s: %w", path, err)
	}
	defer f.Close()

	n, err := f.Write(compressed.Bytes())
	if err != nil {
		_ = os.Remove(path)
		return Digest{}, fmt.Errorf("objstore: writing object file %s: %w", path, err)
	}
	if n != compressed.Len() {
		_ = os.Remove(path)
		return Digest{}, fmt.Errorf("objstore: short write to %s: wrote %d of %d bytes", path, n, compressed.Len())
	}

	return digest, nil
}

// Read opens, memory-maps, and inflates the object named by digest,
// returning its type tag, declared payload size, and payload bytes.
//
// The header is parsed from a bounded scratch read (so the payload size
// need not be known up front); the remainder of the inflate stream is
// then read directly into a payload buffer sized exactly to the
// declared size.
func (s *Store) Read(digest Digest) (objType string, size int, payload []byte, err error) {
	path := ObjectPath(s.Root, digest)

	f, err := os.Open(path)
	if err != nil {
		return "", 0, nil, fmt.Errorf("objstore: opening object %s (%s): %w", digest, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", 0, nil, fmt.Errorf("objstore: stat object %s: %w", digest, err)
	}
	if info.Size() == 0 {
		return "", 0, nil, fmt.Errorf("objstore: object %s is empty", digest)
	}

	mapped, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return "", 0, nil, fmt.Errorf("objstore: mmap object %s: %w", digest, err)
	}
	defer mapped.Unmap()

	zr, err := zlib.NewReader(bytes.NewReader(mapped))
	if err != nil {
		return "", 0, nil, fmt.Errorf("objstore: opening zlib stream for %s: %w", digest, err)
	}
	defer zr.Close()

	scratch := bufio.NewReaderSize(zr, headerScratchSize)

	typeTok, err := scratch.ReadString(' ')
	if err != nil {
		return "", 0, nil, fmt.Errorf("objstore: object %s: malformed header (no type): %w", digest, err)
	}
	typeTok = typeTok[:len(typeTok)-1]
	if len(typeTok) == 0 || len(typeTok) > maxHeaderTypeLen {
		return "", 0, nil, fmt.Errorf("objstore: object %s: malformed header type %q", digest, typeTok)
	}

	sizeTok, err := scratch.ReadString(0)
	if err != nil {
		return "", 0, nil, fmt.Errorf("objstore: object %s: malformed header (no size): %w", digest, err)
	}
	sizeTok = sizeTok[:len(sizeTok)-1] // drop the NUL
	declaredSize, err := strconv.Atoi(sizeTok)
	if err != nil || declaredSize < 0 {
		return "", 0, nil, fmt.Errorf("objstore: object %s: malformed header size %q", digest, sizeTok)
	}

	buf := make([]byte, declaredSize)
	if _, err := io.ReadFull(scratch, buf); err != nil {
		return "", 0, nil, fmt.Errorf("objstore: object %s: reading %d-byte payload: %w", digest, declaredSize, err)
	}

	return typeTok, declaredSize, buf, nil
}
