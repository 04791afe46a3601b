package objcodec

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/rybkr/dircache/internal/objstore"
)

// TreeEntry is one entry of a tree object: a mode, a pathname, and the
// digest of the blob or sub-tree it names.
type TreeEntry struct {
	Mode   uint32
	Name   string
	Digest objstore.Digest
}

// EncodeTree builds a tree payload from entries, in the order given.
// Callers are responsible for handing entries to EncodeTree in sorted
// index order; EncodeTree does not re-sort, since tree digest
// determinism depends on preserving caller order.
func EncodeTree(s *objstore.Store, entries []TreeEntry) (objstore.Digest, error) {
	var body bytes.Buffer
	for _, e := range entries {
		if bytes.IndexByte([]byte(e.Name), 0) != -1 {
			return objstore.Digest{}, fmt.Errorf("objcodec: tree entry name %q contains NUL", e.Name)
		}
		fmt.Fprintf(&body, "%o %s\x00", e.Mode, e.Name)
		body.Write(e.Digest[:])
	}

	digest, err := s.Write(frame("tree", body.Bytes()))
	if err != nil {
		return objstore.Digest{}, fmt.Errorf("objcodec: encoding tree: %w", err)
	}
	return digest, nil
}

// DecodeTree reads a tree object back from s and returns its entries in
// on-disk order.
func DecodeTree(s *objstore.Store, digest objstore.Digest) ([]TreeEntry, error) {
	objType, _, payload, err := s.Read(digest)
	if err != nil {
		return nil, fmt.Errorf("objcodec: decoding tree %s: %w", digest, err)
	}
	if objType != "tree" {
		return nil, fmt.Errorf("objcodec: object %s is a %q, not a tree", digest, objType)
	}
	return parseTreeBody(payload)
}

// parseTreeBody walks a tree payload entry by entry: mode up to the
// first space, name up to the first NUL, then exactly 20 raw digest
// bytes, repeating until the payload is exhausted.
func parseTreeBody(payload []byte) ([]TreeEntry, error) {
	r := bytes.NewReader(payload)
	var entries []TreeEntry

	for {
		modeTok, err := readUntil(r, ' ')
		if err == io.EOF && modeTok == "" {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("objcodec: malformed tree entry mode: %w", err)
		}
		mode, err := strconv.ParseUint(modeTok, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("objcodec: malformed tree entry mode %q: %w", modeTok, err)
		}

		name, err := readUntil(r, 0)
		if err != nil {
			return nil, fmt.Errorf("objcodec: malformed tree entry name: %w", err)
		}

		var digest objstore.Digest
		if _, err := io.ReadFull(r, digest[:]); err != nil {
			return nil, fmt.Errorf("objcodec: malformed tree entry digest: %w", err)
		}

		entries = append(entries, TreeEntry{Mode: uint32(mode), Name: name, Digest: digest})
	}

	return entries, nil
}

// readUntil reads bytes from r up to (and consuming) the first
// occurrence of delim, returning the bytes before it as a string. If r
// runs out before delim, the bytes read so far are returned with the
// error.
func readUntil(r *bytes.Reader, delim byte) (string, error) {
	var buf bytes.Buffer
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && buf.Len() == 0 {
				return "", io.EOF
			}
			return buf.String(), err
		}
		if b == delim {
			return buf.String(), nil
		}
		buf.WriteByte(b)
	}
}

// FormatTreeEntry renders a tree entry in the read-tree presentation
// form: "<octal-mode> <name> (<hex-digest>)\n".
func FormatTreeEntry(e TreeEntry) string {
	return fmt.Sprintf("%o %s (%s)\n", e.Mode, e.Name, e.Digest.ToHex())
}
