package domain

import "time"

type Point struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

type BoundingBox struct {
	MinLat float64 `json:"min_lat" db:"min_lat"`
	MinLon float64 `json:"min_lon" db:"min_lon"`
	MaxLat float64 `json:"max_lat" db:"max_lat"`
	MaxLon float64 `json:"max_lon" db:"max_lon"`
}

// Center возвращает центр прямоугольника
func (b BoundingBox) Center() Point {
	return Point{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}

// LoadStats - статистика одной загрузки карты
type LoadStats struct {
	RawItems        int           `json:"raw_items"`
	ExcludedItems   int           `json:"excluded_items"`
	ProcessedItems  int           `json:"processed_items"`
	TranslatedItems int           `json:"translated_items"`
	Categories      int           `json:"categories"`
	Regions         int           `json:"regions"`
	Duration        time.Duration `json:"duration_ns"`
}
