package dto

import (
	"time"

	"github.com/mapdata-service/internal/config"
	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/usecase"
)

// MapSummary - карта из каталога
type MapSummary struct {
	Key             string `json:"key"`
	Name            string `json:"name"`
	DefaultCategory string `json:"default_category,omitempty"`
}

// MapsResponse - список настроенных карт
type MapsResponse struct {
	Maps []MapSummary `json:"maps"`
}

// MapDataResponse - данные карты для рендера и фильтров
type MapDataResponse struct {
	MapKey           string                       `json:"map_key"`
	Categories       []domain.Category            `json:"categories"`
	Items            []domain.ProcessedItem       `json:"items"`
	RegionMetaInfo   map[string]domain.RegionMeta `json:"region_meta_info"`
	ReverseRegionMap map[string]string            `json:"reverse_region_map"`
	UniqueRegions    []string                     `json:"unique_regions"`
	Bounds           *domain.BoundingBox          `json:"bounds,omitempty"`
	Stats            domain.LoadStats             `json:"stats"`
	LoadedAt         time.Time                    `json:"loaded_at"`
}

// CategoryItemsResponse - отсортированная группа предметов категории
type CategoryItemsResponse struct {
	Category string                 `json:"category"`
	Items    []domain.ProcessedItem `json:"items"`
}

// SelectResponse - результат выбора карты
type SelectResponse struct {
	MapKey     string           `json:"map_key"`
	Categories int              `json:"categories"`
	Items      int              `json:"items"`
	Regions    int              `json:"regions"`
	Stats      domain.LoadStats `json:"stats"`
}

// SessionResponse - текущее состояние сессии
type SessionResponse struct {
	MapKey   string          `json:"map_key"`
	Loading  bool            `json:"loading"`
	Progress domain.Progress `json:"progress"`
	Loaded   bool            `json:"loaded"`
	LoadedAt *time.Time      `json:"loaded_at,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// ListResponse - список строк (категории, регионы, избранное)
type ListResponse struct {
	MapKey string   `json:"map_key"`
	Values []string `json:"values"`
}

// HealthResponse - состояние сервиса
type HealthResponse struct {
	Status   string            `json:"status"`
	Executor string            `json:"executor"`
	Checks   map[string]string `json:"checks,omitempty"`
}

func ToMapSummaries(maps []config.MapConfig) []MapSummary {
	out := make([]MapSummary, 0, len(maps))
	for _, m := range maps {
		out = append(out, MapSummary{
			Key:             m.Key,
			Name:            m.Name,
			DefaultCategory: m.DefaultCategory,
		})
	}
	return out
}

func ToMapDataResponse(r *domain.MapLoadResult) MapDataResponse {
	return MapDataResponse{
		MapKey:           r.MapKey,
		Categories:       r.Categories,
		Items:            r.Items,
		RegionMetaInfo:   r.RegionMetaInfo,
		ReverseRegionMap: r.ReverseRegionMap,
		UniqueRegions:    r.UniqueRegions,
		Bounds:           r.Bounds,
		Stats:            r.Stats,
		LoadedAt:         r.LoadedAt,
	}
}

func ToSelectResponse(r *domain.MapLoadResult) SelectResponse {
	return SelectResponse{
		MapKey:     r.MapKey,
		Categories: len(r.Categories),
		Items:      len(r.Items),
		Regions:    len(r.UniqueRegions),
		Stats:      r.Stats,
	}
}

func ToSessionResponse(s usecase.SessionState) SessionResponse {
	resp := SessionResponse{
		MapKey:   s.MapKey,
		Loading:  s.Loading,
		Progress: s.Progress,
		Loaded:   s.Result != nil,
	}
	if s.Result != nil {
		loadedAt := s.Result.LoadedAt
		resp.LoadedAt = &loadedAt
	}
	if s.Error != nil {
		resp.Error = s.Error.Error()
	}
	return resp
}
