package v1handler

import (
	"net/http"
	"timegate/internal/credentials"
	"timegate/pkg/domain"
	"timegate/pkg/serrors"

	"github.com/go-faster/jx"
)

// Regions lists the configured geofence regions by name and radius. Center
// coordinates are deliberately not echoed back to callers.
func (h *Handler) Regions(w http.ResponseWriter, r *http.Request) {
	creds := credentials.Resolve(r, credentials.Body{})
	if !creds.HasToken() {
		h.writeError(w, r, serrors.With(serrors.ErrUnauthorized, "no credentials found in request"))

		return
	}

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("dynamic")
	e.Bool(h.deps.Geofence.Dynamic())
	e.FieldStart("regions")
	e.ArrStart()
	for _, region := range h.deps.Geofence.Regions() {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(region.Name)
		e.FieldStart("radiusMeters")
		e.Float64(region.RadiusMeters)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()

	writeJSON(w, http.StatusOK, e.Bytes())
}

// ValidateLocation dry-runs the geofence for a coordinate without touching
// the upstream. It exists so clients can check admission before submitting
// a clock action.
func (h *Handler) ValidateLocation(w http.ResponseWriter, r *http.Request) {
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
		h.writeError(w, r, serrors.With(serrors.ErrUnauthorized, "no credentials found in request"))

		return
	}

	if body.Latitude == nil || body.Longitude == nil {
		h.writeError(w, r, serrors.With(serrors.ErrBadRequest, "latitude and longitude are required"))

		return
	}
	coord := domain.Coordinate{Latitude: *body.Latitude, Longitude: *body.Longitude}
	if !coord.Valid() {
		h.writeError(w, r, serrors.With(serrors.ErrBadRequest, "latitude or longitude out of range"))

		return
	}

	res := h.deps.Geofence.Validate(coord.Latitude, coord.Longitude)

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("admitted")
	e.Bool(res.Admitted)
	e.FieldStart("region")
	e.Str(res.Region)
	e.FieldStart("distanceMeters")
	e.Float64(res.DistanceMeters)
	e.FieldStart("allowedRadiusMeters")
	e.Float64(res.AllowedRadiusMeters)
	e.ObjEnd()

	writeJSON(w, http.StatusOK, e.Bytes())
}
