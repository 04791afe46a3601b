package objstore

import (
	"fmt"
	"testing"
)

func TestStoreWriteReadRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	payload := []byte("blob 10\x00CFLAGS=-g\n")
	digest, err := s.Write(payload)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	gotType, gotSize, gotPayload, err := s.Read(digest)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if gotType != "blob" {
		t.Errorf("Read() type = %q, want %q", gotType, "blob")
	}
	if gotSize != 10 {
		t.Errorf("Read() size = %d, want 10", gotSize)
	}
	if string(gotPayload) != "CFLAGS=-g\n" {
		t.Errorf("Read() payload = %q, want %q", gotPayload, "CFLAGS=-g\n")
	}
}

func TestStoreWriteIsDeterministic(t *testing.T) {
	s := NewStore(t.TempDir())
	payload := []byte("blob 3\x00abc")

	d1, err := s.Write(payload)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := s.Write(payload)
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Fatalf("Write() not deterministic: %s != %s", d1, d2)
	}
}

func TestStoreReadMissingObject(t *testing.T) {
	s := NewStore(t.TempDir())
	var d Digest
	if _, _, _, err := s.Read(d); err == nil {
		t.Fatal("Read() of missing object succeeded, want error")
	}
}

func TestStoreWriteManyDigestsDistinct(t *testing.T) {
	s := NewStore(t.TempDir())
	seen := make(map[Digest]bool)
	for i := 0; i < 20; i++ {
		payload := []byte(fmt.Sprintf("blob %d\x00%d", i, i))
		d, err := s.Write(payload)
		if err != nil {
			t.Fatal(err)
		}
		if seen[d] {
			t.Fatalf("digest collision for payload %d", i)
		}
		seen[d] = true
	}
}
