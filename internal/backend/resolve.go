package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoBaseURL means no backend base URL could be determined. In production
// this aborts the request; defaulting to a development host would silently
// send mutations to the wrong place.
var ErrNoBaseURL = errors.New("backend: no base URL available")

const devBaseURL = "http://localhost:3000"

// ResolveBaseURL determines the backend base URL for one request, in order:
// forwarded headers from the fronting proxy, then the configured fallback,
// then a development default outside production. Resolution is
// deterministic per request.
func ResolveBaseURL(r *http.Request, configured string, production bool) (string, error) {
	if host := r.Header.Get("X-Forwarded-Host"); host != "" {
		proto := r.Header.Get("X-Forwarded-Proto")
		if proto == "" {
			proto = "https"
		}
		return fmt.Sprintf("%s://%s", proto, host), nil
	}

	if configured != "" {
		return configured, nil
	}

	if production {
		return "", ErrNoBaseURL
	}
	return devBaseURL, nil
}
