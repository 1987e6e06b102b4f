package pipeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/pkg/csvtoken"
)

const (
	rowTypeCommon   = "common"
	rowTypeOverride = "override"

	// minRowFields - строки короче считаются битыми
	minRowFields = 3

	idPlaceholder = "{id}"
	clearSentinel = "null"
)

// styledRule заменяет <hr> в описаниях
const styledRule = `<hr style="margin: 8px 0; border: 0; border-top: 1px solid rgba(255,255,255,0.2);">`

// translationColumns - индексы колонок таблицы переводов, -1 если колонки нет
type translationColumns struct {
	typ, category, key, korean, description, region, image, video, position int
}

func resolveColumns(header []string) translationColumns {
	cols := translationColumns{-1, -1, -1, -1, -1, -1, -1, -1, -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "type":
			cols.typ = i
		case "category":
			cols.category = i
		case "key":
			cols.key = i
		case "korean":
			cols.korean = i
		case "description":
			cols.description = i
		case "region":
			cols.region = i
		case "image":
			cols.image = i
		case "video":
			cols.video = i
		case "customposition":
			cols.position = i
		}
	}
	return cols
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// NewTranslationTables возвращает пустой контекст переводов
func NewTranslationTables() *domain.TranslationTables {
	return &domain.TranslationTables{
		Dictionary:         domain.TermDictionary{},
		Overrides:          domain.CategoryOverrides{},
		CommonDescriptions: map[string]string{},
	}
}

// BuildTranslationTables строит таблицы из основного CSV и дополнительных.
// Строки более позднего файла накладываются на предыдущие поле за полем.
func BuildTranslationTables(csvs ...string) *domain.TranslationTables {
	tables := NewTranslationTables()
	for _, text := range csvs {
		if strings.TrimSpace(text) == "" {
			continue
		}
		rows := csvtoken.Parse(text)
		if len(rows) == 0 {
			continue
		}
		AddRows(tables, rows[0], rows[1:])
	}
	return tables
}

// AddRows добавляет строки CSV в таблицы. Колонки определяются по заголовку.
func AddRows(tables *domain.TranslationTables, header []string, rows [][]string) {
	cols := resolveColumns(header)
	if cols.typ < 0 || cols.category < 0 || cols.key < 0 {
		return
	}

	for _, row := range rows {
		if len(row) < minRowFields {
			continue
		}

		key := field(row, cols.key)
		switch strings.ToLower(strings.TrimSpace(field(row, cols.typ))) {
		case rowTypeCommon:
			addCommon(tables, key, field(row, cols.korean))
		case rowTypeOverride:
			category := strings.TrimSpace(field(row, cols.category))
			key = strings.TrimSpace(key)
			if category == "" || key == "" {
				continue
			}
			addOverride(tables, category, key, row, cols)
		}
	}
}

func addCommon(tables *domain.TranslationTables, key, value string) {
	if key == "" || value == "" {
		return
	}
	tables.Dictionary[key] = value
	if trimmed := strings.TrimSpace(key); trimmed != "" {
		tables.Dictionary[trimmed] = value
	}
}

func addOverride(tables *domain.TranslationTables, category, key string, row []string, cols translationColumns) {
	if key == domain.CommonDescriptionKey {
		if desc := normalizeDescription(field(row, cols.description)); desc != "" {
			tables.CommonDescriptions[category] = desc
		}
		return
	}

	rec := domain.OverrideRecord{
		Name:           strings.TrimSpace(field(row, cols.korean)),
		Description:    normalizeDescription(field(row, cols.description)),
		Region:         strings.TrimSpace(field(row, cols.region)),
		Image:          parseImage(field(row, cols.image), key),
		Video:          parseList(field(row, cols.video)),
		CustomPosition: parsePosition(field(row, cols.position)),
	}

	byKey, ok := tables.Overrides[category]
	if !ok {
		byKey = make(map[string]domain.OverrideRecord)
		tables.Overrides[category] = byKey
	}
	if prev, exists := byKey[key]; exists {
		rec = prev.Merge(rec)
	}
	byKey[key] = rec
}

func normalizeDescription(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ReplaceAll(s, "<hr>", styledRule)
}

// parseList разбирает "[a|b]" в список, голое значение - в список из одного элемента
func parseList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return []string{s}
	}
	parts := strings.Split(s[1:len(s)-1], "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseImage(s, key string) domain.ImageOverride {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.ImageOverride{}
	}
	if strings.EqualFold(s, clearSentinel) {
		return domain.ImageOverride{Kind: domain.ImageClear}
	}

	isList := strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
	paths := parseList(s)
	if len(paths) == 0 {
		return domain.ImageOverride{}
	}
	for i, p := range paths {
		paths[i] = strings.ReplaceAll(p, idPlaceholder, key)
	}
	if isList {
		return domain.ImageOverride{Kind: domain.ImageList, Paths: paths}
	}
	return domain.ImageOverride{Kind: domain.ImageSingle, Paths: paths}
}

// parsePosition разбирает "[x|y]"; возвращает nil, если хотя бы одно число некорректно
func parsePosition(s string) *domain.Position {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil
	}
	parts := strings.Split(s[1:len(s)-1], "|")
	if len(parts) != 2 {
		return nil
	}
	x, ok := parseFinite(parts[0])
	if !ok {
		return nil
	}
	y, ok := parseFinite(parts[1])
	if !ok {
		return nil
	}
	return &domain.Position{X: x, Y: y}
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
