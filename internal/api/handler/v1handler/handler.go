// Package v1handler implements the version 1 HTTP handlers of the gateway:
// geofenced clock-in/clock-out forwarding, the employee pass-through, and
// the geofence inspection endpoints.
package v1handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"timegate/internal/geofence"
	"timegate/internal/upstream"
	"timegate/pkg/logger"
	"timegate/pkg/serrors"

	"github.com/go-faster/jx"
)

// maxBodyBytes bounds the request body the gateway is willing to parse.
const maxBodyBytes = 1 << 20

// Deps carries the collaborators handlers need.
type Deps struct {
	// Upstream forwards admitted requests to the attendance API.
	Upstream upstream.Client
	// Geofence decides admission for clock actions.
	Geofence *geofence.Validator
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// requestBody is the decoded JSON body of a v1 request. Pointer fields
// distinguish absent coordinates from zero values, which are valid
// coordinates.
type requestBody struct {
	Token     string
	UserID    string
	Role      string
	Latitude  *float64
	Longitude *float64
}

// decodeBody reads and parses the request body once so that credential
// resolution and coordinate extraction never touch the request stream
// again. An empty body is fine; malformed JSON is a bad request.
func decodeBody(w http.ResponseWriter, r *http.Request) (requestBody, error) {
	var body requestBody

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return body, serrors.Wrap(serrors.ErrBadRequest, err, "could not read request body")
	}
	if len(raw) == 0 {
		return body, nil
	}

	d := jx.DecodeBytes(raw)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "token":
			v, err := d.Str()
			if err != nil {
				return err
			}
			body.Token = v
		case "userId":
			v, err := d.Str()
			if err != nil {
				return err
			}
			body.UserID = v
		case "role":
			v, err := d.Str()
			if err != nil {
				return err
			}
			body.Role = v
		case "latitude":
			v, err := optFloat(d)
			if err != nil {
				return err
			}
			body.Latitude = v
		case "longitude":
			v, err := optFloat(d)
			if err != nil {
				return err
			}
			body.Longitude = v
		default:
			return d.Skip()
		}

		return nil
	}); err != nil {
		return requestBody{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid JSON body")
	}

	return body, nil
}

// optFloat reads one JSON value and interprets it as a number when possible.
// Extension clients send coordinates both as numbers and as quoted strings;
// anything non-numeric counts as absent rather than failing the request.
func optFloat(d *jx.Decoder) (*float64, error) {
	raw, err := d.Raw()
	if err != nil {
		return nil, err
	}
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, nil //nolint: nilerr // non-numeric value, treated as absent
	}

	return &v, nil
}

// statusOf maps semantic error kinds to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, serrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, serrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, serrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, serrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, serrors.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, serrors.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the JSON error envelope {code, message}.
// Internal details are logged, never leaked to the caller.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)

	code := serrors.ErrInternal.Error()
	msg := "internal error"
	var serr *serrors.Error
	if errors.As(err, &serr) && serr.Kind() != nil {
		code = serr.Kind().Error()
		if serr.Message() != "" {
			msg = serr.Message()
		}
	}
	if status >= http.StatusInternalServerError {
		logger.Error(r.Context(), err.Error())
		msg = "internal error"
	}

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Str(code)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()

	writeJSON(w, status, e.Bytes())
}

// relay copies an upstream reply to the caller unchanged.
func relay(w http.ResponseWriter, resp *upstream.Response) {
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
