package suggest

import "testing"

func TestClosest(t *testing.T) {
	candidates := []string{"TestStruct", "TestUnion", "Header", "std::assert", "std::print"}

	tests := []struct {
		name string
		want string
	}{
		{"TestStrcut", "TestStruct"},
		{"header", "Header"},
		{"assert", "std::assert"},
		{"Unio", "TestUnion"},
		{"zzzzzz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Closest(tt.name, candidates); got != tt.want {
				t.Errorf("Closest(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestHint(t *testing.T) {
	if got := Hint("Headr", []string{"Header"}); got != ". Did you mean 'Header'?" {
		t.Errorf("unexpected hint %q", got)
	}
	if got := Hint("x", nil); got != "" {
		t.Errorf("expected no hint, got %q", got)
	}
}
