package strutil

import "testing"

func TestTitle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"foo", "Foo"},
		{"\xf0", "\xf0"},
		{"FOO", "FOO"},
	}
	for _, test := range tests {
		if got := Title(test.in); got != test.want {
			t.Errorf("Title(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}
