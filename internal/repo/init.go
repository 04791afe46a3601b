// Package repo creates and locates the repository's on-disk control
// directory and object store layout.
package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rybkr/dircache/internal/objstore"
)

// DefaultRepoDir is the default control directory, analogous to
// git's ".git" but named for this tool's own ancestry.
const DefaultRepoDir = ".dircache"

// hexDigits is used to enumerate the 256 two-character fan-out prefixes.
const hexDigits = "0123456789abcdef"

// objectRootEnvVar mirrors objstore's own env var name; repeated here
// because the existence check below is specific to Init and must not
// leak into objstore.ResolveObjectRoot, which every other command also
// calls and which must honor the override unconditionally.
const objectRootEnvVar = "SHA1_FILE_DIRECTORY"

// Init creates repoDir, failing if it already exists. If
// SHA1_FILE_DIRECTORY names an existing directory, that directory is
// assumed to already be a populated object store and is left untouched
// (sharing a store across branches, as the original init tool allowed).
// Otherwise the default object root is created along with all 256
// hex-prefix fan-out subdirectories at mode 0700.
func Init(repoDir string) error {
	if _, err := os.Stat(repoDir); err == nil {
		return fmt.Errorf("repo: %s already exists", repoDir)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("repo: checking %s: %w", repoDir, err)
	}

	if err := os.Mkdir(repoDir, 0o700); err != nil {
		return fmt.Errorf("repo: creating %s: %w", repoDir, err)
	}

	if dir := os.Getenv(objectRootEnvVar); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return nil
		}
	}

	objectRoot := objstore.DefaultObjectRoot
	if err := os.MkdirAll(objectRoot, 0o700); err != nil {
		return fmt.Errorf("repo: creating object root %s: %w", objectRoot, err)
	}

	for _, hi := range hexDigits {
		for _, lo := range hexDigits {
			dir := filepath.Join(objectRoot, string(hi)+string(lo))
			if err := os.Mkdir(dir, 0o700); err != nil && !os.IsExist(err) {
				return fmt.Errorf("repo: creating fan-out dir %s: %w", dir, err)
			}
		}
	}

	return nil
}
