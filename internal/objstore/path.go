package objstore

import (
	"os"
	"path/filepath"
)

// DefaultObjectRoot is used when SHA1_FILE_DIRECTORY is unset.
const DefaultObjectRoot = ".dircache/objects"

// objectRootEnvVar is the environment variable that overrides the
// object root.
const objectRootEnvVar = "SHA1_FILE_DIRECTORY"

// ResolveObjectRoot returns the object root: SHA1_FILE_DIRECTORY if set,
// otherwise the default. This is the one function object-path mapping
// and the staging index share, so every command agrees on where the
// store lives regardless of whether that directory happens to exist
// yet. Whether to additionally require the override to already exist is
// a decision for callers that create the tree (see repo.Init), not for
// this lookup.
func ResolveObjectRoot() string {
	if dir := os.Getenv(objectRootEnvVar); dir != "" {
		return dir
	}
	return DefaultObjectRoot
}

// ObjectPath computes the on-disk location of the object named by d
// under root: <root>/<xx>/<remaining-38-hex>.
func ObjectPath(root string, d Digest) string {
	hexDigest := d.ToHex()
	return filepath.Join(root, hexDigest[:2], hexDigest[2:])
}
