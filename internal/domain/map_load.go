package domain

import "time"

// MapLoadResult - всё, что получают рендер и фильтры после загрузки карты
type MapLoadResult struct {
	MapKey           string                     `json:"map_key"`
	Categories       []Category                 `json:"categories"`
	Items            []ProcessedItem            `json:"items"`
	ItemsByCategory  map[string][]ProcessedItem `json:"items_by_category"`
	RegionMetaInfo   map[string]RegionMeta      `json:"region_meta_info"`
	ReverseRegionMap map[string]string          `json:"reverse_region_map"`
	Regions          []string                   `json:"regions"`
	UniqueRegions    []string                   `json:"unique_regions"`
	Bounds           *BoundingBox               `json:"bounds,omitempty"`
	Stats            LoadStats                  `json:"stats"`
	Mode             string                     `json:"mode"`
	LoadedAt         time.Time                  `json:"loaded_at"`

	// Cached выставляется при чтении из кеша и не сериализуется
	Cached bool `json:"-"`
}

// Progress - суммарный прогресс загрузки крупных файлов (0..1)
type Progress struct {
	Fraction float64 `json:"fraction"`
	Items    float64 `json:"items"`
	Regions  float64 `json:"regions"`
}

// ProgressFunc получает обновления прогресса; может вызываться из разных горутин
type ProgressFunc func(Progress)

// FilterState - сохранённые фильтры и избранное для одной карты
type FilterState struct {
	MapKey           string   `json:"map_key"`
	ActiveCategories []string `json:"active_categories"`
	ActiveRegions    []string `json:"active_regions"`
	Favorites        []string `json:"favorites"`
}
