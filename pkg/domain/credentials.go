package domain

// Credentials holds the caller identity resolved from a single inbound
// request. Every field is optional: resolution is best-effort and an absent
// token is a valid state that callers must check before use. Credentials
// are constructed fresh per request and never persisted.
type Credentials struct {
	// Token is the opaque bearer token forwarded to the upstream API.
	// The gateway never verifies or decodes it.
	Token string
	// UserID identifies the employee the request acts on behalf of.
	UserID string
	// Role is the caller's role as reported by the client.
	Role string
}

// HasToken reports whether a bearer token was resolved.
func (c Credentials) HasToken() bool { return c.Token != "" }

// MaskedToken returns a redacted form of the token that is safe to log:
// the first and last four characters with an ellipsis in between. Tokens of
// eight characters or fewer are replaced by a fixed mask so nothing of the
// value leaks. The raw token must never reach a log sink.
func (c Credentials) MaskedToken() string {
	if c.Token == "" {
		return ""
	}
	if len(c.Token) <= 8 { //nolint: mnd
		return "********"
	}

	return c.Token[:4] + "..." + c.Token[len(c.Token)-4:]
}
