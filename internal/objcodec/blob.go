// Package objcodec implements the framing and structural layout of
// blob, tree, and commit objects on top of internal/objstore.
package objcodec

import (
	"fmt"

	"github.com/rybkr/dircache/internal/objstore"
)

// EncodeBlob frames data as "blob <size>\0<data>" and writes it to s,
// returning the resulting digest.
func EncodeBlob(s *objstore.Store, data []byte) (objstore.Digest, error) {
	payload := frame("blob", data)
	digest, err := s.Write(payload)
	if err != nil {
		return objstore.Digest{}, fmt.Errorf("objcodec: encoding blob: %w", err)
	}
	return digest, nil
}

// DecodeBlob reads a blob object back from s and returns its raw bytes.
func DecodeBlob(s *objstore.Store, digest objstore.Digest) ([]byte, error) {
	objType, _, payload, err := s.Read(digest)
	if err != nil {
		return nil, fmt.Errorf("objcodec: decoding blob %s: %w", digest, err)
	}
	if objType != "blob" {
		return nil, fmt.Errorf("objcodec: object %s is a %q, not a blob", digest, objType)
	}
	return payload, nil
}

// frame builds the "<type> <size>\0<body>" header used by every object
// kind before it is handed to the object store for compression.
func frame(objType string, body []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", objType, len(body))
	buf := make([]byte, 0, len(header)+len(body))
	buf = append(buf, header...)
	buf = append(buf, body...)
	return buf
}
