package pipeline

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/mapdata-service/internal/domain"
)

// ProcessRegions разбирает {"data": RegionRecord[]} и строит карты регионов.
// Регион без координат попадает во все карты, но не в границы.
func ProcessRegions(raw []byte, dict domain.TermDictionary) (*domain.RegionData, error) {
	elems, err := decodeDataArray(raw, DatasetRegions)
	if err != nil {
		return nil, err
	}

	result := &domain.RegionData{
		Titles:           make([]string, 0, len(elems)),
		RegionIDMap:      make(map[int]string, len(elems)),
		RegionMetaInfo:   make(map[string]domain.RegionMeta, len(elems)),
		ReverseRegionMap: make(map[string]string, len(elems)*2),
		BoundsCoords:     make([][2]float64, 0),
		Polygons:         make([]domain.RegionPolygon, 0, len(elems)),
	}

	var points orb.MultiPoint
	seen := make(map[string]struct{}, len(elems))

	for _, elem := range elems {
		var rec domain.RegionRecord
		if err := json.Unmarshal(elem, &rec); err != nil || rec.Title == "" {
			continue
		}

		result.RegionIDMap[rec.ID] = rec.Title
		result.RegionMetaInfo[rec.Title] = domain.RegionMeta{
			Lat:  rec.Latitude,
			Lng:  rec.Longitude,
			Zoom: rec.Zoom,
		}
		result.ReverseRegionMap[rec.Title] = rec.Title
		if localized, ok := dict.Translate(rec.Title); ok && localized != rec.Title {
			result.ReverseRegionMap[localized] = rec.Title
		}
		if _, dup := seen[rec.Title]; !dup {
			seen[rec.Title] = struct{}{}
			result.Titles = append(result.Titles, rec.Title)
		}

		for _, c := range rec.Coordinates {
			result.BoundsCoords = append(result.BoundsCoords, [2]float64{c[1], c[0]})
			points = append(points, orb.Point{c[0], c[1]})
		}

		// для point-in-polygon нужен хотя бы треугольник
		if ring := rec.Ring(); len(ring) >= 4 {
			result.Polygons = append(result.Polygons, domain.RegionPolygon{Name: rec.Title, Ring: ring})
		}
	}

	if len(points) > 0 {
		b := points.Bound()
		result.Bounds = &domain.BoundingBox{
			MinLat: b.Min.Lat(),
			MinLon: b.Min.Lon(),
			MaxLat: b.Max.Lat(),
			MaxLon: b.Max.Lon(),
		}
	}

	return result, nil
}

// ResolveRegion возвращает первый регион, содержащий точку (X = lng, Y = lat)
func ResolveRegion(point orb.Point, regions []domain.RegionPolygon) (string, bool) {
	for _, r := range regions {
		if len(r.Ring) == 0 {
			continue
		}
		if !r.Ring.Bound().Contains(point) {
			continue
		}
		if planar.RingContains(r.Ring, point) {
			return r.Name, true
		}
	}
	return "", false
}
