package v1handler

import (
	"context"
	"net/http"
	"timegate/internal/credentials"
	"timegate/internal/geofence"
	"timegate/internal/upstream"
	"timegate/pkg/domain"
	"timegate/pkg/logger"
	"timegate/pkg/metrics"
	"timegate/pkg/serrors"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// ClockIn validates the caller's location and forwards a clock-in to the
// attendance API.
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, "clock-in", h.deps.Upstream.ClockIn)
}

// ClockOut validates the caller's location and forwards a clock-out to the
// attendance API.
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.clock(w, r, "clock-out", h.deps.Upstream.ClockOut)
}

// clock is the shared pipeline for both clock actions: decode once, resolve
// credentials, validate the coordinate against the geofence, forward, relay.
func (h *Handler) clock(w http.ResponseWriter, r *http.Request, action string,
	forward func(context.Context, upstream.ClockRequest) (*upstream.Response, error)) {
	body, err := decodeBody(w, r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	creds := credentials.Resolve(r, credentials.Body{
		Token:  body.Token,
		UserID: body.UserID,
		Role:   body.Role,
	})
	if !creds.HasToken() {
		metrics.ClockDecisions.WithLabelValues(action, "unauthorized").Inc()
		h.writeError(w, r, serrors.With(serrors.ErrUnauthorized, "no credentials found in request"))

		return
	}

	if body.Latitude == nil || body.Longitude == nil {
		metrics.ClockDecisions.WithLabelValues(action, "missing_location").Inc()
		h.writeError(w, r, serrors.With(serrors.ErrBadRequest, "latitude and longitude are required"))

		return
	}
	coord := domain.Coordinate{Latitude: *body.Latitude, Longitude: *body.Longitude}
	if !coord.Valid() {
		metrics.ClockDecisions.WithLabelValues(action, "missing_location").Inc()
		h.writeError(w, r, serrors.With(serrors.ErrBadRequest, "latitude or longitude out of range"))

		return
	}

	res := h.deps.Geofence.Validate(coord.Latitude, coord.Longitude)
	if !res.Admitted {
		metrics.ClockDecisions.WithLabelValues(action, "rejected").Inc()
		logger.Info(r.Context(), "location rejected",
			zap.String("action", action),
			zap.String("closest_region", res.Region),
			zap.Float64("distance_meters", res.DistanceMeters))
		h.writeLocationRejected(w, res)

		return
	}
	metrics.ClockDecisions.WithLabelValues(action, "admitted").Inc()

	resp, err := forward(r.Context(), upstream.ClockRequest{Credentials: creds, Coordinate: coord})
	if err != nil {
		h.writeError(w, r, err)

		return
	}
	relay(w, resp)
}

// writeLocationRejected renders the nearest-miss diagnostics the validator
// produced so the caller knows how far outside the boundary they are.
func (h *Handler) writeLocationRejected(w http.ResponseWriter, res geofence.Result) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Str(serrors.ErrForbidden.Error())
	e.FieldStart("message")
	e.Str("location outside allowed regions")
	e.FieldStart("closestRegion")
	e.Str(res.Region)
	e.FieldStart("distanceMeters")
	e.Float64(res.DistanceMeters)
	e.FieldStart("allowedRadiusMeters")
	e.Float64(res.AllowedRadiusMeters)
	e.ObjEnd()

	writeJSON(w, http.StatusForbidden, e.Bytes())
}

// Employee relays the employee sub-resource without geofencing; only a
// resolvable token is required.
func (h *Handler) Employee(w http.ResponseWriter, r *http.Request) {
	creds := credentials.Resolve(r, credentials.Body{})
	if !creds.HasToken() {
		h.writeError(w, r, serrors.With(serrors.ErrUnauthorized, "no credentials found in request"))

		return
	}

	resp, err := h.deps.Upstream.Employee(r.Context(), creds, r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)

		return
	}
	relay(w, resp)
}
