package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// DefaultImageSize - размер иконки маркера по умолчанию
const DefaultImageSize = 44

// UnknownRegion - регион предмета, который не удалось определить
const UnknownRegion = "unknown"

// RawItem - точка интереса в том виде, в котором она пришла из источника.
// После загрузки не изменяется: merge строит новые ProcessedItem.
type RawItem struct {
	ID          string   `json:"id"`
	CategoryID  string   `json:"categoryId"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	RegionID    *int     `json:"regionId,omitempty"`
	Image       string   `json:"image,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// ErrMissingItemID - у предмета нет идентификатора
var ErrMissingItemID = errors.New("item has no id")

// UnmarshalJSON принимает оба варианта имён полей (categoryId/category_id, regionId/region_id)
func (r *RawItem) UnmarshalJSON(b []byte) error {
	var aux struct {
		ID              FlexString `json:"id"`
		CategoryID      FlexString `json:"categoryId"`
		CategoryIDSnake FlexString `json:"category_id"`
		Title           FlexString `json:"title"`
		Description     FlexString `json:"description"`
		Latitude        FlexFloat  `json:"latitude"`
		Longitude       FlexFloat  `json:"longitude"`
		RegionID        *FlexInt   `json:"regionId"`
		RegionIDSnake   *FlexInt   `json:"region_id"`
		Image           StringList `json:"image"`
		Images          StringList `json:"images"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	id := strings.TrimSpace(string(aux.ID))
	if id == "" {
		return ErrMissingItemID
	}

	item := RawItem{
		ID:          id,
		CategoryID:  strings.TrimSpace(string(aux.CategoryID)),
		Title:       string(aux.Title),
		Description: string(aux.Description),
		Latitude:    float64(aux.Latitude),
		Longitude:   float64(aux.Longitude),
		Images:      []string(aux.Images),
	}
	if item.CategoryID == "" {
		item.CategoryID = strings.TrimSpace(string(aux.CategoryIDSnake))
	}

	regionID := aux.RegionID
	if regionID == nil {
		regionID = aux.RegionIDSnake
	}
	if regionID != nil {
		v := int(*regionID)
		item.RegionID = &v
	}

	switch {
	case len(aux.Image) == 1:
		item.Image = aux.Image[0]
	case len(aux.Image) > 1 && len(item.Images) == 0:
		item.Images = []string(aux.Image)
	}

	*r = item
	return nil
}

// CompositeKey - ключ "{categoryId}_{id}" для списка исключений
func (r RawItem) CompositeKey() string {
	return CompositeKey(r.CategoryID, r.ID)
}

// CompositeKey собирает ключ исключения из категории и идентификатора
func CompositeKey(categoryID, itemID string) string {
	return categoryID + "_" + itemID
}

// ProcessedItem - предмет, готовый к отрисовке
type ProcessedItem struct {
	ID                string   `json:"id"`
	Category          string   `json:"category"`
	Name              string   `json:"name"`
	RawTitle          string   `json:"rawTitle,omitempty"`
	Description       string   `json:"description"`
	X                 float64  `json:"x"`
	Y                 float64  `json:"y"`
	Region            string   `json:"region"`
	ForceRegion       string   `json:"forceRegion,omitempty"`
	Images            []string `json:"images"`
	VideoURL          []string `json:"video_url,omitempty"`
	ImageSizeW        int      `json:"imageSizeW"`
	ImageSizeH        int      `json:"imageSizeH"`
	IsTranslated      bool     `json:"isTranslated"`
	HasCustomPosition bool     `json:"hasCustomPosition"`
}

// Category - категория, выведенная из списка предметов
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// MapData - результат merge: список предметов, категории и группировка
type MapData struct {
	Categories      []Category                 `json:"categories"`
	Items           []ProcessedItem            `json:"items"`
	ItemsByCategory map[string][]ProcessedItem `json:"itemsByCategory"`
}
