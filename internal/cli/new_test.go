package cli

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Cantera 2.4.0":         "cantera-2-4-0",
		"  Mixed  CASE title  ": "mixed-case-title",
		"hello":                 "hello",
		"!!!":                   "",
	}
	for title, want := range cases {
		if got := slugify(title); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", title, got, want)
		}
	}
}
