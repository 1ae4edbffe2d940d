package config_test

import (
	"testing"
	"timegate/internal/config"

	"github.com/stretchr/testify/require"
)

func TestRegionList_SetValue(t *testing.T) {
	cases := []struct {
		name string
		in   string
		out  config.RegionList
		ok   bool
	}{
		{
			name: "empty input clears the list",
			in:   "",
			out:  nil,
			ok:   true,
		},
		{
			name: "single region",
			in:   "Office:26.257544:73.009617:100",
			out: config.RegionList{
				{Name: "Office", Latitude: 26.257544, Longitude: 73.009617, RadiusMeters: 100},
			},
			ok: true,
		},
		{
			name: "multiple regions keep order",
			in:   "Office:26.257544:73.009617:100, Warehouse:26.3:73.1:250",
			out: config.RegionList{
				{Name: "Office", Latitude: 26.257544, Longitude: 73.009617, RadiusMeters: 100},
				{Name: "Warehouse", Latitude: 26.3, Longitude: 73.1, RadiusMeters: 250},
			},
			ok: true,
		},
		{
			name: "missing field",
			in:   "Office:26.25:73.00",
			ok:   false,
		},
		{
			name: "non-numeric latitude",
			in:   "Office:north:73.00:100",
			ok:   false,
		},
		{
			name: "zero radius rejected",
			in:   "Office:26.25:73.00:0",
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var l config.RegionList
			err := l.SetValue(tc.in)
			if !tc.ok {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.out, l)
		})
	}
}
