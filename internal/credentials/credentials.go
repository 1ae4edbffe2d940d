// Package credentials resolves a caller's identity from the layered sources
// a browser-extension client may use: the Authorization header, fields of
// the parsed request body, custom x-user-* headers, the URL path, and an
// encoded session cookie.
//
// Resolution is best-effort, not an authentication decision. Absent fields
// stay empty and malformed session cookies degrade to "no token found";
// rejecting unauthenticated callers is the forwarding layer's job.
package credentials

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"timegate/pkg/domain"
	"timegate/pkg/logger"

	"go.uber.org/zap"
)

// Body carries the credential-bearing fields of an already-parsed request
// body. The body is parsed once at the handler boundary so that resolution
// never reads the request stream and stays idempotent.
type Body struct {
	Token  string
	UserID string
	Role   string
}

// source produces an optional value; empty string means "not present".
type source func() string

// firstNonEmpty runs sources in order and returns the first non-empty value.
// Keeping each source as its own entry makes the precedence order auditable.
func firstNonEmpty(sources ...source) string {
	for _, s := range sources {
		if v := s(); v != "" {
			return v
		}
	}

	return ""
}

// Resolve extracts the caller's credentials from r and the parsed body.
// It never fails: fields that cannot be resolved stay empty. The request is
// only read, never mutated, so resolving twice yields identical results.
//
// Precedence per field:
//   - token: Authorization bearer header, body "token", session cookie
//   - userId: "id" path parameter, body "userId", x-user-id header
//   - role: x-user-role header, body "role"
func Resolve(r *http.Request, body Body) domain.Credentials {
	creds := domain.Credentials{
		Token: firstNonEmpty(
			func() string { return bearerToken(r.Header.Get("Authorization")) },
			func() string { return body.Token },
			func() string { return cookieToken(r.Header.Get("Cookie")) },
		),
		UserID: firstNonEmpty(
			func() string { return r.PathValue("id") },
			func() string { return body.UserID },
			func() string { return r.Header.Get("x-user-id") },
		),
		Role: firstNonEmpty(
			func() string { return r.Header.Get("x-user-role") },
			func() string { return body.Role },
		),
	}

	if creds.HasToken() {
		logger.Debug(r.Context(), "resolved bearer token",
			zap.String("token", creds.MaskedToken()),
			zap.String("user_id", creds.UserID))
	}

	return creds
}

// bearerToken strips the "Bearer " prefix from an Authorization header.
// Headers without the prefix yield nothing; they are not bearer credentials.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// sessionCookieNames are checked in order for an encoded session object.
var sessionCookieNames = []string{"currentUser", "user", "authUser"} //nolint: gochecknoglobals

// cookieToken pulls a token out of an encoded session cookie. The cookie
// value is expected to be a URL-encoded JSON object; any parse failure is
// swallowed and resolution degrades to "no token found".
func cookieToken(header string) string {
	if header == "" {
		return ""
	}

	cookies := parseCookies(header)
	for _, name := range sessionCookieNames {
		raw, ok := cookies[name]
		if !ok {
			continue
		}
		if token := sessionToken(raw); token != "" {
			return token
		}
	}

	return ""
}

// parseCookies splits a Cookie header into key/value pairs. Keys and values
// are trimmed of surrounding whitespace and values are URL-decoded; values
// that fail decoding are kept verbatim.
func parseCookies(header string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(header, ";") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if decoded, err := url.QueryUnescape(v); err == nil {
			v = decoded
		}
		out[k] = v
	}

	return out
}

// sessionToken extracts a token from a decoded session JSON object,
// preferring accessToken over token and top-level fields over the nested
// data object.
func sessionToken(raw string) string {
	var session struct {
		AccessToken string `json:"accessToken"`
		Token       string `json:"token"`
		Data        struct {
			AccessToken string `json:"accessToken"`
			Token       string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return ""
	}

	for _, token := range []string{
		session.AccessToken,
		session.Data.AccessToken,
		session.Token,
		session.Data.Token,
	} {
		if token != "" {
			return token
		}
	}

	return ""
}
