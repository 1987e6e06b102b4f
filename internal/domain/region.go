package domain

import (
	"encoding/json"
	"strings"

	"github.com/paulmach/orb"
)

// DefaultRegionZoom - зум камеры, если регион его не задаёт
const DefaultRegionZoom = 12

// RegionRecord - именованная граница региона из regions.json
type RegionRecord struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	Zoom        int          `json:"zoom"`
	Coordinates [][2]float64 `json:"coordinates"` // [lng, lat]
}

// UnmarshalJSON принимает координаты центра строками и подставляет зум по умолчанию
func (r *RegionRecord) UnmarshalJSON(b []byte) error {
	var aux struct {
		ID          FlexInt       `json:"id"`
		Title       FlexString    `json:"title"`
		Latitude    FlexFloat     `json:"latitude"`
		Longitude   FlexFloat     `json:"longitude"`
		Zoom        *FlexInt      `json:"zoom"`
		Coordinates [][]FlexFloat `json:"coordinates"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	rec := RegionRecord{
		ID:        int(aux.ID),
		Title:     strings.TrimSpace(string(aux.Title)),
		Latitude:  float64(aux.Latitude),
		Longitude: float64(aux.Longitude),
		Zoom:      DefaultRegionZoom,
	}
	if aux.Zoom != nil && *aux.Zoom > 0 {
		rec.Zoom = int(*aux.Zoom)
	}
	for _, pair := range aux.Coordinates {
		if len(pair) < 2 {
			continue
		}
		rec.Coordinates = append(rec.Coordinates, [2]float64{float64(pair[0]), float64(pair[1])})
	}

	*r = rec
	return nil
}

// Ring возвращает полигон региона в координатах orb (X = lng, Y = lat)
func (r RegionRecord) Ring() orb.Ring {
	if len(r.Coordinates) == 0 {
		return nil
	}
	ring := make(orb.Ring, 0, len(r.Coordinates)+1)
	for _, c := range r.Coordinates {
		ring = append(ring, orb.Point{c[0], c[1]})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// RegionMeta - центр камеры и зум для региона
type RegionMeta struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom int     `json:"zoom"`
}

// RegionPolygon - полигон региона для определения принадлежности точки
type RegionPolygon struct {
	Name string   `json:"name"`
	Ring orb.Ring `json:"ring"`
}

// RegionData - результат обработки regions.json
type RegionData struct {
	Titles           []string              `json:"titles"`
	RegionIDMap      map[int]string        `json:"regionIdMap"`
	RegionMetaInfo   map[string]RegionMeta `json:"regionMetaInfo"`
	ReverseRegionMap map[string]string     `json:"reverseRegionMap"`
	BoundsCoords     [][2]float64          `json:"boundsCoords"` // [lat, lng]
	Polygons         []RegionPolygon       `json:"polygons"`
	Bounds           *BoundingBox          `json:"bounds,omitempty"`
}
