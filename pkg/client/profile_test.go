package client

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestServerProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile ServerProfile
		wantErr bool
	}{
		{"valid", ServerProfile{Name: "school", HostURL: "https://canvas.example.edu", APIToken: "t"}, false},
		{"missing token", ServerProfile{Name: "school", HostURL: "https://canvas.example.edu"}, true},
		{"missing host", ServerProfile{Name: "school", APIToken: "t"}, true},
		{"host not a url", ServerProfile{Name: "school", HostURL: "canvas", APIToken: "t"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerProfile_URL(t *testing.T) {
	tests := []struct {
		host     string
		path     string
		expected string
	}{
		{"https://c.edu", "/api/v1/courses", "https://c.edu/api/v1/courses"},
		{"https://c.edu/", "/api/v1/courses", "https://c.edu/api/v1/courses"},
		{"https://c.edu//", "api/v1/courses", "https://c.edu/api/v1/courses"},
	}

	for _, tt := range tests {
		p := ServerProfile{HostURL: tt.host}
		if got := p.URL(tt.path); got != tt.expected {
			t.Errorf("URL(%q, %q) = %q, want %q", tt.host, tt.path, got, tt.expected)
		}
	}
}

func TestServerProfile_LogOmitsToken(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf)
	logger.Info().Object("server", &ServerProfile{
		Name: "school", HostURL: "https://c.edu", APIToken: "super-secret",
	}).Msg("")

	if strings.Contains(buf.String(), "super-secret") {
		t.Errorf("log leaked token: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"host_url":"https://c.edu"`) {
		t.Errorf("log = %s", buf.String())
	}
}
