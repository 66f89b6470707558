package llm

import (
	"errors"
	"fmt"
)

// ErrNotConfigured means no model provider credentials are available. The
// engine refuses requests up front when this is set rather than failing
// midway through a conversation turn.
var ErrNotConfigured = errors.New("llm: no provider configured")

// ErrUpstreamUnavailable wraps transport-level failures from a model
// provider API.
var ErrUpstreamUnavailable = errors.New("llm: upstream unavailable")

func upstreamError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, provider, err)
}

func upstreamStatusError(provider string, status int, body string) error {
	if len(body) > 500 {
		body = body[:500]
	}
	return fmt.Errorf("%w: %s returned status %d: %s", ErrUpstreamUnavailable, provider, status, body)
}
