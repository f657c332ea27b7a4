package format

import "testing"

func TestSanitizeTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Weekly Planning Meeting", "Weekly Planning Meeting"},
		{`"Quoted Title"`, "Quoted Title"},
		{"  Leading and trailing  ", "Leading and trailing"},
		{"Budget: Q3 Review?", "Budget Q3 Review"},
		{"a/b\\c", "a-b-c"},
		{"Line\nbreaks\tinside", "Line-breaks-inside"},
		{"", "Untitled"},
		{`"?"`, "Untitled"},
	}

	for _, tc := range cases {
		if got := sanitizeTitle(tc.in); got != tc.want {
			t.Errorf("sanitizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeTitleBoundsLength(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "very long "
	}
	got := sanitizeTitle(long)
	if len(got) > 120 {
		t.Errorf("Expected title capped at 120 bytes, got %d", len(got))
	}
	if got == "" {
		t.Error("Expected non-empty title")
	}
}
