package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple", title: "Hello World", want: "hello-world"},
		{name: "punctuation collapsed", title: "Hello, World!", want: "hello-world"},
		{name: "already lowercase", title: "hello world", want: "hello-world"},
		{name: "multiple spaces", title: "Hello   World", want: "hello-world"},
		{name: "leading and trailing junk", title: "  --Hello World--  ", want: "hello-world"},
		{name: "digits kept", title: "Go 1.22 Released", want: "go-1-22-released"},
		{name: "diacritics folded", title: "Zażółć gęślą jaźń", want: "zazolc-gesla-jazn"},
		{name: "stroked letters folded", title: "Łódź", want: "lodz"},
		{name: "ligatures expanded", title: "Straße œuvre", want: "strasse-oeuvre"},
		{name: "empty", title: "", want: ""},
		{name: "only punctuation", title: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.title); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestMakeIsDeterministic(t *testing.T) {
	a := Make("Idempotent Tag Upsert")
	b := Make("Idempotent Tag Upsert")
	if a != b {
		t.Errorf("Make returned %q then %q for the same input", a, b)
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		title string
		slug  string
		want  bool
	}{
		{"Hello World", "hello-world", true},
		{"Hello World!", "hello-world", true},
		{"Hello, World", "hello-world", true},
		{"Hello World", "Hello-World", true},
		{"Zażółć gęślą jaźń", "zazolc-gesla-jazn", true},
		{"Hello Worldwide", "hello-world", false},
		{"Goodbye World", "hello-world", false},
	}

	for _, tt := range tests {
		if got := Matches(tt.title, tt.slug); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.title, tt.slug, got, tt.want)
		}
	}
}
