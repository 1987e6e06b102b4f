package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/mapdata-service/internal/domain"
)

// Merge строит итоговые предметы, категории и группировку.
// Входные данные не изменяются; одинаковый вход даёт одинаковый результат.
func Merge(in domain.MergeInput) *domain.MapData {
	tables := in.Translations
	if tables == nil {
		tables = NewTranslationTables()
	}

	// filter + project
	raws := make([]domain.RawItem, 0, len(in.Items))
	items := make([]domain.ProcessedItem, 0, len(in.Items))
	for _, raw := range in.Items {
		if in.MissingItems.Has(raw.CompositeKey()) {
			continue
		}
		raws = append(raws, raw)
		items = append(items, project(raw, in.RegionIDMap))
	}

	categories := deriveCategories(items, tables.Dictionary)

	for i := range items {
		item := &items[i]
		raw := raws[i]

		applyOverride(item, raw, tables, in.ReverseRegionMap)
		applyDescriptionFallback(item, tables.CommonDescriptions, in.DefaultDescriptions)

		if item.ForceRegion != "" {
			item.Region = item.ForceRegion
		} else if name, ok := ResolveRegion(orb.Point{item.Y, item.X}, in.Polygons); ok {
			item.Region = name
		}
	}

	groups := make(map[string][]domain.ProcessedItem, len(categories))
	for _, c := range categories {
		groups[c.ID] = make([]domain.ProcessedItem, 0)
	}
	for _, item := range items {
		groups[item.Category] = append(groups[item.Category], item)
	}

	return &domain.MapData{
		Categories:      categories,
		Items:           items,
		ItemsByCategory: groups,
	}
}

func project(raw domain.RawItem, regionIDMap map[int]string) domain.ProcessedItem {
	region := domain.UnknownRegion
	if raw.RegionID != nil {
		if name, ok := regionIDMap[*raw.RegionID]; ok && name != "" {
			region = name
		}
	}

	var images []string
	switch {
	case len(raw.Images) > 0:
		images = append([]string(nil), raw.Images...)
	case raw.Image != "":
		images = []string{raw.Image}
	default:
		images = []string{}
	}

	return domain.ProcessedItem{
		ID:          raw.ID,
		Category:    raw.CategoryID,
		Name:        raw.Title,
		RawTitle:    raw.Title,
		Description: raw.Description,
		X:           raw.Latitude,
		Y:           raw.Longitude,
		Region:      region,
		Images:      images,
		ImageSizeW:  domain.DefaultImageSize,
		ImageSizeH:  domain.DefaultImageSize,
	}
}

func deriveCategories(items []domain.ProcessedItem, dict domain.TermDictionary) []domain.Category {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, item := range items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		ids = append(ids, item.Category)
	}
	sort.Slice(ids, func(i, j int) bool { return lessID(ids[i], ids[j]) })

	categories := make([]domain.Category, 0, len(ids))
	for _, id := range ids {
		name, _ := dict.Translate(id)
		categories = append(categories, domain.Category{
			ID:    id,
			Name:  name,
			Image: fmt.Sprintf("icons/%s.png", id),
		})
	}
	return categories
}

// lessID сортирует числовые идентификаторы по значению, остальные - лексикографически после них
func lessID(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		if ai != bi {
			return ai < bi
		}
		return a < b
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}

// lookupOverride ищет запись сначала по id, затем по исходному названию
func lookupOverride(tables *domain.TranslationTables, raw domain.RawItem) (domain.OverrideRecord, bool) {
	byKey, ok := tables.Overrides[raw.CategoryID]
	if !ok {
		return domain.OverrideRecord{}, false
	}
	if rec, ok := byKey[raw.ID]; ok {
		return rec, true
	}
	// ключи таблицы обрезаны при сборке
	if title := strings.TrimSpace(raw.Title); title != "" {
		if rec, ok := byKey[title]; ok {
			return rec, true
		}
	}
	return domain.OverrideRecord{}, false
}

func applyOverride(item *domain.ProcessedItem, raw domain.RawItem, tables *domain.TranslationTables, reverse map[string]string) {
	rec, found := lookupOverride(tables, raw)

	if found && rec.Name != "" {
		item.Name = rec.Name
		item.IsTranslated = true
	} else if raw.Title != "" {
		if name, ok := tables.Dictionary.Translate(raw.Title); ok {
			item.Name = name
			item.IsTranslated = true
		}
	}

	if !found {
		return
	}

	if rec.Description != "" {
		item.Description = rec.Description
	}

	if rec.Region != "" {
		region := rec.Region
		if canonical, ok := reverse[region]; ok && canonical != "" {
			region = canonical
		}
		item.ForceRegion = region
	}

	switch rec.Image.Kind {
	case domain.ImageClear:
		item.Images = []string{}
	case domain.ImageSingle, domain.ImageList:
		item.Images = append([]string(nil), rec.Image.Paths...)
	}

	if len(rec.Video) > 0 {
		item.VideoURL = append([]string(nil), rec.Video...)
	}

	if rec.CustomPosition != nil {
		item.X = rec.CustomPosition.X
		item.Y = rec.CustomPosition.Y
		item.HasCustomPosition = true
	}
}

// applyDescriptionFallback: описание по имени предмета важнее общего описания категории
func applyDescriptionFallback(item *domain.ProcessedItem, common, defaults map[string]string) {
	if item.Description != "" {
		return
	}
	if desc, ok := defaults[item.Name]; ok && desc != "" {
		item.Description = desc
		return
	}
	if desc, ok := defaults[item.RawTitle]; ok && desc != "" {
		item.Description = desc
		return
	}
	if desc, ok := common[item.Category]; ok {
		item.Description = desc
	}
}

// SortGroups упорядочивает каждую группу по отображаемому имени (при равенстве - по id).
// Это шаг представления, Merge его не выполняет.
func SortGroups(groups map[string][]domain.ProcessedItem) {
	for _, list := range groups {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Name != list[j].Name {
				return list[i].Name < list[j].Name
			}
			return lessID(list[i].ID, list[j].ID)
		})
	}
}
