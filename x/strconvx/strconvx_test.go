package strconvx

import "testing"

func TestItoaAtoi(t *testing.T) {
	for _, v := range []int{0, 7, -1, 42, -99999} {
		got, err := Atoi(Itoa(v))
		if err != nil || got != v {
			t.Fatalf("round trip %d: got %d, %v", v, got, err)
		}
	}
	if _, err := Atoi("12a"); err == nil {
		t.Fatal("Atoi accepted 12a")
	}
}

func TestFormatUint(t *testing.T) {
	for _, c := range []struct {
		u    uint64
		base int
		want string
	}{
		{0, 10, "0"},
		{0x08, 16, "8"},
		{255, 16, "ff"},
		{5, 2, "101"},
	} {
		if got := FormatUint(c.u, c.base); got != c.want {
			t.Fatalf("FormatUint(%d, %d) = %q, want %q", c.u, c.base, got, c.want)
		}
	}
}

func TestParseUint(t *testing.T) {
	for _, c := range []struct {
		s    string
		base int
		bits int
		want uint64
	}{
		{"16", 0, 8, 16},
		{"0x10", 0, 8, 16},
		{"255", 10, 8, 255},
		{"FF", 16, 8, 255},
	} {
		got, err := ParseUint(c.s, c.base, c.bits)
		if err != nil || got != c.want {
			t.Fatalf("ParseUint(%q) = %d, %v", c.s, got, err)
		}
	}
	for _, s := range []string{"", "256", "-1", "0x"} {
		if _, err := ParseUint(s, 0, 8); err == nil {
			t.Fatalf("ParseUint(%q) accepted", s)
		}
	}
}
