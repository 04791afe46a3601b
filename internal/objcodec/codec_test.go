package objcodec

import (
	"strings"
	"testing"
	"time"

	"github.com/rybkr/dircache/internal/objstore"
)

func newTestStore(t *testing.T) *objstore.Store {
	t.Helper()
	return objstore.NewStore(t.TempDir())
}

func digestOf(t *testing.T, s *objstore.Store, content string) objstore.Digest {
	t.Helper()
	d, err := EncodeBlob(s, []byte(content))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestBlobRoundTrip(t *testing.T) {
	s := newTestStore(t)
	d, err := EncodeBlob(s, []byte("hello world\n"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeBlob(s, d)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world\n" {
		t.Errorf("DecodeBlob() = %q, want %q", got, "hello world\n")
	}
}

func TestBlobDeterministic(t *testing.T) {
	s := newTestStore(t)
	d1, _ := EncodeBlob(s, []byte("same"))
	d2, _ := EncodeBlob(s, []byte("same"))
	if d1 != d2 {
		t.Fatalf("EncodeBlob not deterministic: %s != %s", d1, d2)
	}
}

func TestTreeRoundTripAndLiteralLayout(t *testing.T) {
	s := newTestStore(t)
	dm := digestOf(t, s, "CFLAGS=-g\n")
	dr := digestOf(t, s, "# readme\n")

	entries := []TreeEntry{
		{Mode: 0o100644, Name: "Makefile", Digest: dm},
		{Mode: 0o100644, Name: "README", Digest: dr},
	}

	d, err := EncodeTree(s, entries)
	if err != nil {
		t.Fatal(err)
	}

	_, _, payload, err := s.Read(d)
	if err != nil {
		t.Fatal(err)
	}
	wantPayload := "100644 Makefile\x00" + string(dm[:]) + "100644 README\x00" + string(dr[:])
	if string(payload) != wantPayload {
		t.Errorf("tree payload = %q, want %q", payload, wantPayload)
	}

	got, err := DecodeTree(s, d)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("DecodeTree() returned %d entries, want 2", len(got))
	}
	if got[0].Name != "Makefile" || got[0].Digest != dm {
		t.Errorf("entry 0 = %+v", got[0])
	}
	if got[1].Name != "README" || got[1].Digest != dr {
		t.Errorf("entry 1 = %+v", got[1])
	}
}

func TestTreeEntryOrderAffectsDigest(t *testing.T) {
	s := newTestStore(t)
	da := digestOf(t, s, "a")
	db := digestOf(t, s, "b")

	d1, _ := EncodeTree(s, []TreeEntry{{Mode: 0o100644, Name: "a", Digest: da}, {Mode: 0o100644, Name: "b", Digest: db}})
	d2, _ := EncodeTree(s, []TreeEntry{{Mode: 0o100644, Name: "b", Digest: db}, {Mode: 0o100644, Name: "a", Digest: da}})

	if d1 == d2 {
		t.Fatal("EncodeTree produced the same digest for differently-ordered entries")
	}
}

func TestCommitRoundTripAndParentOrderSensitivity(t *testing.T) {
	s := newTestStore(t)
	tree := digestOf(t, s, "tree-ish")
	p1 := digestOf(t, s, "parent-1")
	p2 := digestOf(t, s, "parent-2")

	when := time.Unix(1700000000, 0).UTC()
	sig := Signature{Name: "Ada Lovelace", Email: "ada@example.com", When: when}

	info1 := CommitInfo{Tree: tree, Parents: []objstore.Digest{p1, p2}, Author: sig, Committer: sig, Message: []byte("First!\n")}
	info2 := CommitInfo{Tree: tree, Parents: []objstore.Digest{p2, p1}, Author: sig, Committer: sig, Message: []byte("First!\n")}

	d1, err := EncodeCommit(s, info1)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := EncodeCommit(s, info2)
	if err != nil {
		t.Fatal(err)
	}
	if d1 == d2 {
		t.Fatal("EncodeCommit produced the same digest for permuted parents")
	}

	got, err := DecodeCommit(s, d1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Tree != tree {
		t.Errorf("Tree = %s, want %s", got.Tree, tree)
	}
	if len(got.Parents) != 2 || got.Parents[0] != p1 || got.Parents[1] != p2 {
		t.Errorf("Parents = %v, want [%s %s]", got.Parents, p1, p2)
	}
	if got.Author.Name != "Ada Lovelace" || got.Author.Email != "ada@example.com" {
		t.Errorf("Author = %+v", got.Author)
	}
	if string(got.Message) != "First!" {
		t.Errorf("Message = %q, want %q", got.Message, "First!")
	}
}

func TestSignatureSanitizesForbiddenChars(t *testing.T) {
	sig := Signature{Name: "Weird <Name>\nHere", Email: "a@b.com", When: time.Unix(0, 0).UTC()}
	line := sig.Line()
	if want := "Weird NameHere"; !strings.Contains(line, want) {
		t.Errorf("Line() = %q, want it to contain sanitized name %q", line, want)
	}
}
