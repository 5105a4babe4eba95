package promptstyle

import "testing"

func TestComposeSystem(t *testing.T) {
	cases := []struct {
		system, instructions, want string
	}{
		{"", "", ""},
		{"  Be brief. ", "", "Be brief."},
		{"", "Cite sources.", "Cite sources."},
		{"Be brief.", "\nCite sources.\n", "Be brief.\n\nCite sources."},
	}
	for _, tc := range cases {
		if got := ComposeSystem(tc.system, tc.instructions); got != tc.want {
			t.Errorf("ComposeSystem(%q, %q) = %q, want %q", tc.system, tc.instructions, got, tc.want)
		}
	}
}
