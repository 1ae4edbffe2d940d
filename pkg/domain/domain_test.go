package domain_test

import (
	"math"
	"testing"
	"timegate/pkg/domain"

	"github.com/stretchr/testify/require"
)

func TestCredentials_MaskedToken(t *testing.T) {
	cases := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty token", token: "", want: ""},
		{name: "short token fully masked", token: "abc123", want: "********"},
		{name: "exactly eight chars fully masked", token: "12345678", want: "********"},
		{name: "long token keeps edges", token: "eyJhbGciOiJSUzI1NiJ9", want: "eyJh...NiJ9"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := domain.Credentials{Token: tc.token}
			require.Equal(t, tc.want, c.MaskedToken())
		})
	}
}

func TestCredentials_HasToken(t *testing.T) {
	require.False(t, domain.Credentials{}.HasToken())
	require.True(t, domain.Credentials{Token: "abc"}.HasToken())
}

func TestCoordinate_Valid(t *testing.T) {
	cases := []struct {
		name  string
		coord domain.Coordinate
		want  bool
	}{
		{name: "origin", coord: domain.Coordinate{}, want: true},
		{name: "typical point", coord: domain.Coordinate{Latitude: 26.257544, Longitude: 73.009617}, want: true},
		{name: "latitude at north pole", coord: domain.Coordinate{Latitude: 90}, want: true},
		{name: "longitude at antimeridian", coord: domain.Coordinate{Longitude: -180}, want: true},
		{name: "latitude too large", coord: domain.Coordinate{Latitude: 90.001}, want: false},
		{name: "longitude too small", coord: domain.Coordinate{Longitude: -180.5}, want: false},
		{name: "NaN latitude", coord: domain.Coordinate{Latitude: math.NaN()}, want: false},
		{name: "infinite longitude", coord: domain.Coordinate{Longitude: math.Inf(1)}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.coord.Valid())
		})
	}
}
