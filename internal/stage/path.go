package stage

import (
	"fmt"
	"strings"
)

// ValidatePath rejects any path with a segment that is empty, equal to
// ".", or begins with "." after a "/" or at the start — banning "..",
// dotfiles, and double slashes. Rejected paths are meant to be logged
// and skipped by the caller, not treated as fatal.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			return fmt.Errorf("path %q contains an empty segment", path)
		}
		if seg == "." || strings.HasPrefix(seg, ".") {
			return fmt.Errorf("path %q contains a dot segment %q", path, seg)
		}
	}
	return nil
}
