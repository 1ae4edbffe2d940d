package v1handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"timegate/internal/api/handler/v1handler"
	"timegate/internal/geofence"
	"timegate/internal/upstream"
	"timegate/pkg/domain"
	"timegate/pkg/logger"
	"timegate/pkg/serrors"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// initialize logger to avoid nil pointer deref during tests
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

// fakeUpstream records forwarded requests and plays back canned responses.
type fakeUpstream struct {
	clockResp    *upstream.Response
	clockErr     error
	employeeResp *upstream.Response
	employeeErr  error

	clockCalls []upstream.ClockRequest
	lastAction string
	lastCreds  domain.Credentials
	lastEmplID string
}

func (f *fakeUpstream) ClockIn(_ context.Context, req upstream.ClockRequest) (*upstream.Response, error) {
	f.lastAction = "clock-in"
	f.clockCalls = append(f.clockCalls, req)

	return f.clockResp, f.clockErr
}

func (f *fakeUpstream) ClockOut(_ context.Context, req upstream.ClockRequest) (*upstream.Response, error) {
	f.lastAction = "clock-out"
	f.clockCalls = append(f.clockCalls, req)

	return f.clockResp, f.clockErr
}

func (f *fakeUpstream) Employee(_ context.Context, creds domain.Credentials, id string) (*upstream.Response, error) {
	f.lastCreds = creds
	f.lastEmplID = id

	return f.employeeResp, f.employeeErr
}

var officeRegions = []geofence.Region{
	{Name: "Office", Latitude: 26.257544, Longitude: 73.009617, RadiusMeters: 100},
}

func newHandler(up upstream.Client, regions []geofence.Region, dynamic bool) *v1handler.Handler {
	return v1handler.New(v1handler.Deps{
		Upstream: up,
		Geofence: geofence.New(regions, dynamic),
	})
}

func do(h http.HandlerFunc, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h(rec, req)

	return rec
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Code
}

func TestClockIn_NoCredentials(t *testing.T) {
	up := &fakeUpstream{}
	h := newHandler(up, officeRegions, false)

	rec := do(h.ClockIn, http.MethodPost, "/v1/attendance/clock-in",
		`{"latitude":26.257544,"longitude":73.009617}`, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, serrors.ErrUnauthorized.Error(), errCode(t, rec))
	require.Empty(t, up.clockCalls, "nothing may be forwarded without a token")
}

func TestClockIn_MissingLocation(t *testing.T) {
	up := &fakeUpstream{}
	h := newHandler(up, officeRegions, false)

	cases := []struct {
		name string
		body string
	}{
		{name: "no coordinates", body: `{}`},
		{name: "latitude only", body: `{"latitude":26.257544}`},
		{name: "non-numeric latitude", body: `{"latitude":"here","longitude":73.0}`},
		{name: "null latitude", body: `{"latitude":null,"longitude":73.0}`},
		{name: "latitude out of range", body: `{"latitude":91,"longitude":73.0}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(h.ClockIn, http.MethodPost, "/v1/attendance/clock-in", tc.body,
				map[string]string{"Authorization": "Bearer tok-abcdef"})

			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, serrors.ErrBadRequest.Error(), errCode(t, rec))
		})
	}
	require.Empty(t, up.clockCalls)
}

func TestClockIn_MalformedJSON(t *testing.T) {
	up := &fakeUpstream{}
	h := newHandler(up, officeRegions, false)

	rec := do(h.ClockIn, http.MethodPost, "/v1/attendance/clock-in", `{"latitude":`,
		map[string]string{"Authorization": "Bearer tok-abcdef"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, up.clockCalls)
}

func TestClockIn_LocationRejected(t *testing.T) {
	up := &fakeUpstream{}
	h := newHandler(up, officeRegions, false)

	rec := do(h.ClockIn, http.MethodPost, "/v1/attendance/clock-in",
		`{"latitude":26.26,"longitude":73.02}`,
		map[string]string{"Authorization": "Bearer tok-abcdef"})

	require.Equal(t, http.StatusForbidden, rec.Code)

	var body struct {
		Code                string  `json:"code"`
		ClosestRegion       string  `json:"closestRegion"`
		DistanceMeters      float64 `json:"distanceMeters"`
		AllowedRadiusMeters float64 `json:"allowedRadiusMeters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, serrors.ErrForbidden.Error(), body.Code)
	require.Equal(t, "Office", body.ClosestRegion)
	require.InDelta(t, 1071, body.DistanceMeters, 1)
	require.Equal(t, 100.0, body.AllowedRadiusMeters)
	require.Empty(t, up.clockCalls, "rejected locations must not be forwarded")
}

func TestClockIn_AdmittedForwardsAndRelays(t *testing.T) {
	up := &fakeUpstream{clockResp: &upstream.Response{
		StatusCode:  http.StatusCreated,
		ContentType: "application/json",
		Body:        []byte(`{"id":"att-1"}`),
	}}
	h := newHandler(up, officeRegions, false)

	rec := do(h.ClockIn, http.MethodPost, "/v1/attendance/clock-in",
		`{"latitude":26.257544,"longitude":73.009617,"userId":"42"}`,
		map[string]string{
			"Authorization": "Bearer tok-abcdef",
			"x-user-role":   "employee",
		})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.JSONEq(t, `{"id":"att-1"}`, rec.Body.String())
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	require.Len(t, up.clockCalls, 1)
	require.Equal(t, "clock-in", up.lastAction)
	forwarded := up.clockCalls[0]
	require.Equal(t, "tok-abcdef", forwarded.Credentials.Token)
	require.Equal(t, "42", forwarded.Credentials.UserID)
	require.Equal(t, "employee", forwarded.Credentials.Role)
	require.Equal(t, 26.257544, forwarded.Coordinate.Latitude)
	require.Equal(t, 73.009617, forwarded.Coordinate.Longitude)
}

func TestClockIn_StringCoordinatesAccepted(t *testing.T) {
	up := &fakeUpstream{clockResp: &upstream.Response{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	h := newHandler(up, officeRegions, false)

	rec := do(h.ClockIn, http.MethodPost, "/v1/attendance/clock-in",
		`{"latitude":"26.257544","longitude":"73.009617"}`,
		map[string]string{"Authorization": "Bearer tok-abcdef"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, up.clockCalls, 1)
}

func TestClockIn_TokenFromBody(t *testing.T) {
	up := &fakeUpstream{clockResp: &upstream.Response{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	h := newHandler(up, officeRegions, false)

	rec := do(h.ClockIn, http.MethodPost, "/v1/attendance/clock-in",
		`{"token":"body-token","latitude":26.257544,"longitude":73.009617}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, up.clockCalls, 1)
	require.Equal(t, "body-token", up.clockCalls[0].Credentials.Token)
}

func TestClockIn_UpstreamRejectionRelayedVerbatim(t *testing.T) {
	up := &fakeUpstream{clockResp: &upstream.Response{
		StatusCode:  http.StatusConflict,
		ContentType: "application/json",
		Body:        []byte(`{"error":"already clocked in"}`),
	}}
	h := newHandler(up, officeRegions, false)

	rec := do(h.ClockIn, http.MethodPost, "/v1/attendance/clock-in",
		`{"latitude":26.257544,"longitude":73.009617}`,
		map[string]string{"Authorization": "Bearer tok-abcdef"})

	require.Equal(t, http.StatusConflict, rec.Code)
	require.JSONEq(t, `{"error":"already clocked in"}`, rec.Body.String())
}

func TestClockIn_UpstreamUnreachable(t *testing.T) {
	up := &fakeUpstream{clockErr: serrors.Wrap(serrors.ErrUnavailable,
		errors.New("connection refused"), "could not reach attendance API")}
	h := newHandler(up, officeRegions, false)

	rec := do(h.ClockIn, http.MethodPost, "/v1/attendance/clock-in",
		`{"latitude":26.257544,"longitude":73.009617}`,
		map[string]string{"Authorization": "Bearer tok-abcdef"})

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, serrors.ErrUnavailable.Error(), errCode(t, rec))
}

func TestClockOut_UsesClockOutForwarder(t *testing.T) {
	up := &fakeUpstream{clockResp: &upstream.Response{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	h := newHandler(up, officeRegions, false)

	rec := do(h.ClockOut, http.MethodPost, "/v1/attendance/clock-out",
		`{"latitude":26.257544,"longitude":73.009617}`,
		map[string]string{"Authorization": "Bearer tok-abcdef"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "clock-out", up.lastAction)
}

func TestClockIn_DynamicModeAdmitsAnywhere(t *testing.T) {
	up := &fakeUpstream{clockResp: &upstream.Response{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	h := newHandler(up, nil, true)

	rec := do(h.ClockIn, http.MethodPost, "/v1/attendance/clock-in",
		`{"latitude":-45.0,"longitude":170.0}`,
		map[string]string{"Authorization": "Bearer tok-abcdef"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, up.clockCalls, 1)
}

func TestEmployee_PassThrough(t *testing.T) {
	up := &fakeUpstream{employeeResp: &upstream.Response{
		StatusCode:  http.StatusOK,
		ContentType: "application/json",
		Body:        []byte(`{"id":"42"}`),
	}}
	h := newHandler(up, officeRegions, false)

	req := httptest.NewRequest(http.MethodGet, "/v1/employees/42", nil)
	req.Header.Set("Authorization", "Bearer tok-abcdef")
	req.SetPathValue("id", "42")
	rec := httptest.NewRecorder()
	h.Employee(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":"42"}`, rec.Body.String())
	require.Equal(t, "42", up.lastEmplID)
	require.Equal(t, "tok-abcdef", up.lastCreds.Token)
	// path parameter also feeds credential resolution
	require.Equal(t, "42", up.lastCreds.UserID)
}

func TestEmployee_NoCredentials(t *testing.T) {
	up := &fakeUpstream{}
	h := newHandler(up, officeRegions, false)

	req := httptest.NewRequest(http.MethodGet, "/v1/employees/42", nil)
	req.SetPathValue("id", "42")
	rec := httptest.NewRecorder()
	h.Employee(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, up.lastEmplID)
}

func TestValidateLocation_DryRun(t *testing.T) {
	up := &fakeUpstream{}
	h := newHandler(up, officeRegions, false)

	rec := do(h.ValidateLocation, http.MethodPost, "/v1/geofence/validate",
		`{"latitude":26.26,"longitude":73.02}`,
		map[string]string{"Authorization": "Bearer tok-abcdef"})

	require.Equal(t, http.StatusOK, rec.Code)

	var body geofence.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Admitted)
	require.Equal(t, "Office", body.Region)
	require.InDelta(t, 1071, body.DistanceMeters, 1)
	require.Empty(t, up.clockCalls, "dry-run never reaches the upstream")
}

func TestRegions_ListsWithoutCenters(t *testing.T) {
	up := &fakeUpstream{}
	h := newHandler(up, officeRegions, false)

	rec := do(h.Regions, http.MethodGet, "/v1/geofence/regions", "",
		map[string]string{"Authorization": "Bearer tok-abcdef"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"dynamic":false,"regions":[{"name":"Office","radiusMeters":100}]}`, rec.Body.String())
	require.NotContains(t, rec.Body.String(), "latitude")
}
