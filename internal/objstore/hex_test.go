package objstore

import "testing"

func TestHexRoundTrip(t *testing.T) {
	var d Digest
	for i := range d {
		d[i] = byte(i * 7)
	}

	hexStr := d.ToHex()
	if len(hexStr) != 40 {
		t.Fatalf("ToHex() length = %d, want 40", len(hexStr))
	}

	got, err := FromHex(hexStr)
	if err != nil {
		t.Fatalf("FromHex(%q) error = %v", hexStr, err)
	}
	if got != d {
		t.Fatalf("FromHex(ToHex(d)) = %v, want %v", got, d)
	}
}

func TestFromHexRejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"abc",
		"zz00000000000000000000000000000000000000",  // 40 chars, non-hex
		"00000000000000000000000000000000000000000", // 41 chars, too long
	}

	for _, s := range cases {
		if _, err := FromHex(s); err == nil {
			t.Errorf("FromHex(%q) succeeded, want error", s)
		}
	}
}

func TestFromHexUppercase(t *testing.T) {
	if _, err := FromHex("ABCDEF0123456789ABCDEF0123456789ABCDEF01"); err != nil {
		t.Fatalf("FromHex with uppercase hex failed: %v", err)
	}
}
