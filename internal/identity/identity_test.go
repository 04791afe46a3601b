package identity

import "testing"

func TestResolveUsesEnvironmentOverrides(t *testing.T) {
	t.Setenv("COMMITTER_NAME", "Ada Lovelace")
	t.Setenv("COMMITTER_EMAIL", "ada@example.com")
	t.Setenv("COMMITTER_DATE", "1136239445 -0700")

	sig, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if sig.Name != "Ada Lovelace" {
		t.Errorf("Name = %q, want %q", sig.Name, "Ada Lovelace")
	}
	if sig.Email != "ada@example.com" {
		t.Errorf("Email = %q, want %q", sig.Email, "ada@example.com")
	}
	if sig.When.Unix() != 1136239445 {
		t.Errorf("When.Unix() = %d, want %d", sig.When.Unix(), 1136239445)
	}
}

func TestResolveRejectsMalformedDate(t *testing.T) {
	t.Setenv("COMMITTER_NAME", "Ada Lovelace")
	t.Setenv("COMMITTER_EMAIL", "ada@example.com")
	t.Setenv("COMMITTER_DATE", "not-a-date")

	if _, err := Resolve(); err == nil {
		t.Fatal("Resolve() with malformed COMMITTER_DATE succeeded, want error")
	}
}
