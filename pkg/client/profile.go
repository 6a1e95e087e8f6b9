package client

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = validator.New()

// ServerProfile identifies one Canvas instance and the bearer token used
// against it. It is resolved once at startup and shared read-only.
type ServerProfile struct {
	Name     string
	HostURL  string `validate:"required,url"`
	APIToken string `validate:"required"`
}

// Validate checks that the profile can be used to issue requests.
func (p *ServerProfile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid server profile %q: %w", p.Name, err)
	}
	return nil
}

// URL joins path onto HostURL with exactly one slash between them.
func (p *ServerProfile) URL(path string) string {
	return strings.TrimRight(p.HostURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// MarshalZerologObject logs the profile without its token.
func (p *ServerProfile) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", p.Name).Str("host_url", p.HostURL)
}
