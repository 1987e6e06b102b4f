package domain

import (
	"encoding/json"
	"sort"
)

// CommonDescriptionKey - ключ строки Override, задающей общее описание категории
const CommonDescriptionKey = "_common_description"

// ImageKind - вариант переопределения изображений
type ImageKind string

const (
	ImageNone   ImageKind = ""
	ImageClear  ImageKind = "clear"
	ImageSingle ImageKind = "single"
	ImageList   ImageKind = "list"
)

// ImageOverride - разобранное значение колонки Image.
// Форма значения определяется один раз при разборе CSV.
type ImageOverride struct {
	Kind  ImageKind `json:"kind,omitempty"`
	Paths []string  `json:"paths,omitempty"`
}

// IsSet сообщает, задаёт ли запись изображения (в том числе очистку)
func (o ImageOverride) IsSet() bool {
	return o.Kind != ImageNone
}

// Position - координаты, заменяющие исходные
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// OverrideRecord - строка таблицы переводов для пары (категория, ключ предмета)
type OverrideRecord struct {
	Name           string        `json:"name,omitempty"`
	Description    string        `json:"description,omitempty"`
	Region         string        `json:"region,omitempty"`
	Image          ImageOverride `json:"image,omitempty"`
	Video          []string      `json:"video,omitempty"`
	CustomPosition *Position     `json:"customPosition,omitempty"`
}

// Merge накладывает заданные поля next поверх r
func (r OverrideRecord) Merge(next OverrideRecord) OverrideRecord {
	if next.Name != "" {
		r.Name = next.Name
	}
	if next.Description != "" {
		r.Description = next.Description
	}
	if next.Region != "" {
		r.Region = next.Region
	}
	if next.Image.IsSet() {
		r.Image = next.Image
	}
	if len(next.Video) > 0 {
		r.Video = next.Video
	}
	if next.CustomPosition != nil {
		pos := *next.CustomPosition
		r.CustomPosition = &pos
	}
	return r
}

// TermDictionary - словарь общих терминов: исходный термин -> перевод
type TermDictionary map[string]string

// Translate возвращает перевод или исходную строку
func (d TermDictionary) Translate(term string) (string, bool) {
	if d == nil {
		return term, false
	}
	if v, ok := d[term]; ok && v != "" {
		return v, true
	}
	return term, false
}

// CategoryOverrides - category id -> item key -> override
type CategoryOverrides map[string]map[string]OverrideRecord

// TranslationTables - контекст переводов одной карты; строится заново при каждой смене карты
type TranslationTables struct {
	Dictionary         TermDictionary    `json:"dictionary"`
	Overrides          CategoryOverrides `json:"overrides"`
	CommonDescriptions map[string]string `json:"commonDescriptions"`
}

// KeySet - множество составных ключей; в JSON кодируется отсортированным массивом
type KeySet map[string]struct{}

func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s KeySet) Add(key string) {
	s[key] = struct{}{}
}

// Sorted возвращает элементы множества по возрастанию
func (s KeySet) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s KeySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *KeySet) UnmarshalJSON(b []byte) error {
	var keys []string
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	set := make(KeySet, len(keys))
	for _, k := range keys {
		set.Add(k)
	}
	*s = set
	return nil
}

// MergeInput - явный контекст одного вызова merge; принадлежит вызывающей стороне
type MergeInput struct {
	Items               []RawItem          `json:"items"`
	RegionIDMap         map[int]string     `json:"regionIdMap"`
	Polygons            []RegionPolygon    `json:"polygons"`
	MissingItems        KeySet             `json:"missingItems"`
	Translations        *TranslationTables `json:"translations"`
	ReverseRegionMap    map[string]string  `json:"reverseRegionMap"`
	DefaultDescriptions map[string]string  `json:"defaultDescriptions"`
}
