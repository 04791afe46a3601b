package stage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rybkr/dircache/internal/objstore"
)

func newTestIndex(t *testing.T) (*Index, string) {
	t.Helper()
	repoDir := t.TempDir()
	workDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(repoDir, "objects"), 0o700); err != nil {
		t.Fatal(err)
	}
	store := objstore.NewStore(filepath.Join(repoDir, "objects"))
	return New(repoDir, workDir, store), workDir
}

func TestLoadEmptyRepoIsNotAnError(t *testing.T) {
	idx, _ := newTestIndex(t)
	count, err := idx.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("Load() count = %d, want 0", count)
	}
}

func TestLoadTwiceFails(t *testing.T) {
	idx, _ := newTestIndex(t)
	if _, err := idx.Load(); err != nil {
		t.Fatal(err)
	}
	if _, err := idx.Load(); err != ErrMoreThanOneCachefile {
		t.Fatalf("second Load() error = %v, want %v", err, ErrMoreThanOneCachefile)
	}
}

func TestStageFileThenSaveThenLoadRoundTrip(t *testing.T) {
	idx, workDir := newTestIndex(t)
	if _, err := idx.Load(); err != nil {
		t.Fatal(err)
	}

	writeWorkingFile(t, workDir, "Makefile", "CFLAGS=-g\n")
	writeWorkingFile(t, workDir, "README", "# readme\n")

	if err := idx.StageFile("Makefile"); err != nil {
		t.Fatal(err)
	}
	if err := idx.StageFile("README"); err != nil {
		t.Fatal(err)
	}

	if err := idx.Save(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(idx.repoDir, "index.lock")); !os.IsNotExist(err) {
		t.Fatalf("index.lock should not survive a successful Save(), stat err = %v", err)
	}

	store := objstore.NewStore(filepath.Join(idx.repoDir, "objects"))
	reloaded := New(idx.repoDir, workDir, store)
	count, err := reloaded.Load()
	if err != nil {
		t.Fatalf("reload Load() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("reload Load() count = %d, want 2", count)
	}

	entries := reloaded.Entries()
	if entries[0].Name >= entries[1].Name {
		t.Fatalf("entries not in sorted order: %q, %q", entries[0].Name, entries[1].Name)
	}
}

func TestIndexOrderingNoDuplicates(t *testing.T) {
	idx, workDir := newTestIndex(t)
	if _, err := idx.Load(); err != nil {
		t.Fatal(err)
	}

	names := []string{"zeta", "alpha", "mid", "alp", "alpha"} // "alpha" staged twice
	for _, n := range names {
		writeWorkingFile(t, workDir, n, "content-"+n)
		if err := idx.StageFile(n); err != nil {
			t.Fatal(err)
		}
	}

	entries := idx.Entries()
	seen := make(map[string]bool)
	for i, e := range entries {
		if seen[e.Name] {
			t.Fatalf("duplicate entry for %q", e.Name)
		}
		seen[e.Name] = true
		if i > 0 && entries[i-1].Name >= e.Name {
			t.Fatalf("entries out of order at %d: %q >= %q", i, entries[i-1].Name, e.Name)
		}
	}
	if len(entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4 (duplicate re-stage should replace, not duplicate)", len(entries))
	}
}

func TestRemoveEntryOnDeletedFile(t *testing.T) {
	idx, workDir := newTestIndex(t)
	if _, err := idx.Load(); err != nil {
		t.Fatal(err)
	}

	writeWorkingFile(t, workDir, "gone", "bye")
	if err := idx.StageFile("gone"); err != nil {
		t.Fatal(err)
	}
	if _, found := idx.Lookup("gone"); !found {
		t.Fatal("expected entry to be present after staging")
	}

	if err := os.Remove(filepath.Join(workDir, "gone")); err != nil {
		t.Fatal(err)
	}
	if err := idx.StageFile("gone"); err != nil {
		t.Fatalf("StageFile on a vanished file should not error, got %v", err)
	}
	if _, found := idx.Lookup("gone"); found {
		t.Fatal("expected entry to be removed after the file vanished")
	}
}

func TestBadHeaderSHA1Detected(t *testing.T) {
	idx, workDir := newTestIndex(t)
	if _, err := idx.Load(); err != nil {
		t.Fatal(err)
	}
	writeWorkingFile(t, workDir, "f", "content")
	if err := idx.StageFile("f"); err != nil {
		t.Fatal(err)
	}
	if err := idx.Save(); err != nil {
		t.Fatal(err)
	}

	indexPath := filepath.Join(idx.repoDir, "index")
	data, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatal(err)
	}
	// Flip a single bit inside the stored sha1 trailer.
	data[headerPrefixSize] ^= 0x01
	if err := os.WriteFile(indexPath, data, 0o600); err != nil {
		t.Fatal(err)
	}

	store := objstore.NewStore(filepath.Join(idx.repoDir, "objects"))
	reloaded := New(idx.repoDir, workDir, store)
	if _, err := reloaded.Load(); err != ErrBadHeaderSHA1 {
		t.Fatalf("Load() error = %v, want %v", err, ErrBadHeaderSHA1)
	}
}

func TestLoadTruncatedFileFailsCleanly(t *testing.T) {
	repoDir := t.TempDir()
	workDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(repoDir, "objects"), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(repoDir, "index"), []byte("DIR"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := objstore.NewStore(filepath.Join(repoDir, "objects"))
	idx := New(repoDir, workDir, store)
	if _, err := idx.Load(); err == nil {
		t.Fatal("Load() on truncated index succeeded, want error")
	}
}

func TestValidatePathRejectsDotSegments(t *testing.T) {
	bad := []string{"./Makefile", "a//b", ".hidden", "..", "a/../b", ""}
	for _, p := range bad {
		if err := ValidatePath(p); err == nil {
			t.Errorf("ValidatePath(%q) succeeded, want error", p)
		}
	}
	good := []string{"Makefile", "src/main.go", "a/b/c"}
	for _, p := range good {
		if err := ValidatePath(p); err != nil {
			t.Errorf("ValidatePath(%q) error = %v, want nil", p, err)
		}
	}
}

func writeWorkingFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
