package store

import "testing"

func TestHostKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://canvas.example.edu", "canvas.example.edu"},
		{"https://Canvas.Example.edu/", "canvas.example.edu"},
		{"http://127.0.0.1:3000//", "127.0.0.1:3000"},
		{" canvas.example.edu ", "canvas.example.edu"},
	}

	for _, tt := range tests {
		if got := HostKey(tt.input); got != tt.expected {
			t.Errorf("HostKey(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestKeys(t *testing.T) {
	host := "https://canvas.example.edu/"

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"enrollments", EnrollmentsKey(host, 42), "canvas:canvas.example.edu:course:42:enrollments"},
		{"run", RunKey(host, "abc"), "canvas:canvas.example.edu:run:abc"},
		{"runs", RunsKey(host), "canvas:canvas.example.edu:runs"},
	}

	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s key = %q, want %q", tt.name, tt.got, tt.expected)
		}
	}
}
