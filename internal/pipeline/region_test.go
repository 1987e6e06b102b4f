package pipeline

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/pkg/errors"
)

const regionsPayload = `{"data":[
	{"id":1,"title":"North","latitude":"10.5","longitude":"20.5","zoom":10,
	 "coordinates":[[20,10],[21,10],[21,11],[20,11]]},
	{"id":"2","title":"South","latitude":"1","longitude":"2"},
	{"id":3,"title":"","coordinates":[[0,0]]},
	{"id":4,"title":"Broken","latitude":"abc"},
	{"id":5,"title":"Overlap","coordinates":[[20,10],[22,10],[22,12],[20,12],[20,10]]}
]}`

func TestProcessRegions(t *testing.T) {
	dict := domain.TermDictionary{"North": "북쪽"}

	data, err := ProcessRegions([]byte(regionsPayload), dict)
	require.NoError(t, err)

	assert.Equal(t, []string{"North", "South", "Overlap"}, data.Titles)
	assert.Equal(t, map[int]string{1: "North", 2: "South", 5: "Overlap"}, data.RegionIDMap)

	assert.Equal(t, domain.RegionMeta{Lat: 10.5, Lng: 20.5, Zoom: 10}, data.RegionMetaInfo["North"])
	assert.Equal(t, domain.RegionMeta{Lat: 1, Lng: 2, Zoom: domain.DefaultRegionZoom}, data.RegionMetaInfo["South"])

	assert.Equal(t, "North", data.ReverseRegionMap["North"])
	assert.Equal(t, "North", data.ReverseRegionMap["북쪽"])
	assert.Equal(t, "South", data.ReverseRegionMap["South"])

	// South has no coordinates: 4 points from North + 5 from Overlap
	require.Len(t, data.BoundsCoords, 9)
	assert.Equal(t, [2]float64{10, 20}, data.BoundsCoords[0], "bounds are [lat, lng]")

	require.Len(t, data.Polygons, 2)
	assert.Equal(t, "North", data.Polygons[0].Name)
	assert.True(t, data.Polygons[0].Ring.Closed())

	require.NotNil(t, data.Bounds)
	assert.Equal(t, domain.BoundingBox{MinLat: 10, MinLon: 20, MaxLat: 12, MaxLon: 22}, *data.Bounds)
}

func TestProcessRegions_NoCoordinates(t *testing.T) {
	data, err := ProcessRegions([]byte(`{"data":[{"id":5,"title":"North","coordinates":[]}]}`), nil)
	require.NoError(t, err)

	assert.Equal(t, "North", data.RegionIDMap[5])
	assert.Empty(t, data.BoundsCoords)
	assert.Empty(t, data.Polygons)
	assert.Nil(t, data.Bounds)
}

func TestProcessRegions_StructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array root", `[{"id":1}]`},
		{"string root", `"regions"`},
		{"empty", ``},
		{"missing data", `{"items":[]}`},
		{"data not array", `{"data":{"id":1}}`},
		{"null data", `{"data":null}`},
		{"truncated", `{"data":[{"id":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProcessRegions([]byte(tt.input), nil)
			require.Error(t, err)
			assert.True(t, errors.IsStructural(err))

			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, DatasetRegions, appErr.Details["dataset"])
		})
	}
}

func TestResolveRegion(t *testing.T) {
	data, err := ProcessRegions([]byte(regionsPayload), nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		point  orb.Point
		want   string
		wantOK bool
	}{
		{"inside both, first in payload order wins", orb.Point{20.5, 10.5}, "North", true},
		{"only in second polygon", orb.Point{21.5, 11.5}, "Overlap", true},
		{"outside all", orb.Point{0, 0}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveRegion(tt.point, data.Polygons)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := ResolveRegion(orb.Point{1, 1}, nil)
	assert.False(t, ok)
}
