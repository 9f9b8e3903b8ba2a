package sanitizer

import (
	"reflect"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"leading and trailing", "  hello  ", "hello"},
		{"internal run collapsed", "a   b\t\tc", "a b c"},
		{"newlines collapsed", "line1\nline2", "line1 line2"},
		{"already clean", "clean text", "clean text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.in); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTrimAndNormalize_Idempotent(t *testing.T) {
	inputs := []string{"  a   b  ", "x", "", "multi\n\nline  text"}
	for _, in := range inputs {
		once := TrimAndNormalize(in)
		twice := TrimAndNormalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeExpertise(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"dedupe case-insensitive", []string{"Go", "go", " GO "}, []string{"go"}},
		{"drops empties", []string{"", "  ", "backend"}, []string{"backend"}},
		{"keeps order", []string{"System Design", "golang", "system design"}, []string{"system design", "golang"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeExpertise(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeExpertise(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
