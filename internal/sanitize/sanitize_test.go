package sanitize

import "testing"

func TestClean(t *testing.T) {
	s := New()

	cases := []struct {
		in   string
		want string
	}{
		{"<@12345> hello", "hello"},
		{"hello <#general> world", "hello  world"},
		{"<:wave:9876> hi <@!111>", "hi"},
		{"no markup here", "no markup here"},
		{"<@1><@2><@3>", ""},
		{"", ""},
		{"  padded  ", "padded"},
	}

	for _, c := range cases {
		if got := s.Clean(c.in); got != c.want {
			t.Fatalf("Clean(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCleanKeepsComparisons(t *testing.T) {
	s := New()
	// An unclosed bracket is not markup and must survive.
	if got := s.Clean("2 < 3"); got != "2 < 3" {
		t.Fatalf("got %q", got)
	}
}
