package api

import (
	"fmt"
	"net/http"
)

// AuthType identifies the authentication strategy for a service endpoint.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBasic  AuthType = "basic"
	AuthBearer AuthType = "bearer"
	AuthAPIKey AuthType = "apikey"
)

// AuthConfig holds credentials for a service endpoint.
type AuthConfig struct {
	Type     AuthType
	Username string
	Password string
	Token    string
	APIKey   string
	// HeaderName overrides the default header used for API key auth.
	HeaderName string
}

// Apply sets authentication headers on the request.
func (a *AuthConfig) Apply(req *http.Request) error {
	switch a.Type {
	case AuthNone, "":
		return nil
	case AuthBasic:
		if a.Username == "" {
			return fmt.Errorf("basic auth requires a username")
		}
		req.SetBasicAuth(a.Username, a.Password)
		return nil
	case AuthBearer:
		if a.Token == "" {
			return fmt.Errorf("bearer auth requires a token")
		}
		req.Header.Set("Authorization", "Bearer "+a.Token)
		return nil
	case AuthAPIKey:
		if a.APIKey == "" {
			return fmt.Errorf("api key auth requires a key")
		}
		header := a.HeaderName
		if header == "" {
			header = "X-API-Key"
		}
		req.Header.Set(header, a.APIKey)
		return nil
	default:
		return fmt.Errorf("unsupported auth type: %s", a.Type)
	}
}
