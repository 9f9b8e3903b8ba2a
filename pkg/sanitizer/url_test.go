package sanitizer

import "testing"

func TestNormalizeMeetingLink(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"valid https", "https://meet.example.com/room/1", "https://meet.example.com/room/1"},
		{"valid http kept", "http://meet.example.com/x", "http://meet.example.com/x"},
		{"host lowercased", "https://Meet.Example.COM/Room", "https://meet.example.com/Room"},
		{"trailing slash trimmed", "https://meet.example.com/", "https://meet.example.com"},
		{"whitespace trimmed", "  https://meet.example.com/a  ", "https://meet.example.com/a"},
		{"missing scheme rejected", "meet.example.com/room", ""},
		{"javascript scheme rejected", "javascript:alert(1)", ""},
		{"relative path rejected", "/room/1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeMeetingLink(tt.in); got != tt.want {
				t.Errorf("NormalizeMeetingLink(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
