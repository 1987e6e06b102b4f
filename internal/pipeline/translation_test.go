package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapdata-service/internal/domain"
)

const translationHeader = "Type,Category,Key,Korean,Description,Region,Image,Video,CustomPosition\n"

func TestBuildTranslationTables_Common(t *testing.T) {
	csv := translationHeader +
		"Common,,Chest,상자,,,,,\n" +
		"Common,, North ,북쪽,,,,,\n" +
		"Common,,Empty,,,,,,\n"

	tables := BuildTranslationTables(csv)

	assert.Equal(t, "상자", tables.Dictionary["Chest"])
	assert.Equal(t, "북쪽", tables.Dictionary[" North "], "raw key is kept")
	assert.Equal(t, "북쪽", tables.Dictionary["North"], "trimmed key is added")
	_, ok := tables.Dictionary["Empty"]
	assert.False(t, ok, "empty translations are skipped")
	assert.Empty(t, tables.Overrides)
}

func TestBuildTranslationTables_Override(t *testing.T) {
	csv := translationHeader +
		`Override,10,1,박스,"Line one<hr>Line two",North,[icons/{id}_a.png| icons/{id}_b.png ],https://v/1,[3.5|-2.25]` + "\n" +
		"Override,10,Lamp,램프,,,null,[https://v/a|https://v/b],[x|1]\n" +
		"Override,10,_common_description,,Shared text,,,,\n" +
		"Override,,2,missing category,,,,,\n" +
		"Override,10,,missing key,,,,,\n" +
		"Override,10\n" +
		"Unknown,10,3,ignored,,,,,\n"

	tables := BuildTranslationTables(csv)
	require.Contains(t, tables.Overrides, "10")
	byKey := tables.Overrides["10"]
	assert.Len(t, byKey, 2)

	rec := byKey["1"]
	assert.Equal(t, "박스", rec.Name)
	assert.Equal(t, "Line one"+styledRule+"Line two", rec.Description)
	assert.Equal(t, "North", rec.Region)
	assert.Equal(t, domain.ImageOverride{
		Kind:  domain.ImageList,
		Paths: []string{"icons/1_a.png", "icons/1_b.png"},
	}, rec.Image)
	assert.Equal(t, []string{"https://v/1"}, rec.Video)
	require.NotNil(t, rec.CustomPosition)
	assert.Equal(t, domain.Position{X: 3.5, Y: -2.25}, *rec.CustomPosition)

	lamp := byKey["Lamp"]
	assert.Equal(t, domain.ImageClear, lamp.Image.Kind)
	assert.Equal(t, []string{"https://v/a", "https://v/b"}, lamp.Video)
	assert.Nil(t, lamp.CustomPosition, "non-numeric position is ignored")

	assert.Equal(t, "Shared text", tables.CommonDescriptions["10"])
}

func TestBuildTranslationTables_ColumnOrderAndCase(t *testing.T) {
	csv := " key ,TYPE,korean,category,image\n" +
		"7,override,Seven,3,icon_{id}.png\n"

	tables := BuildTranslationTables(csv)

	rec := tables.Overrides["3"]["7"]
	assert.Equal(t, "Seven", rec.Name)
	assert.Equal(t, domain.ImageOverride{Kind: domain.ImageSingle, Paths: []string{"icon_7.png"}}, rec.Image)
}

func TestBuildTranslationTables_Supplemental(t *testing.T) {
	primary := translationHeader +
		"Override,10,1,Primary name,Primary description,,a.png,,\n" +
		"Common,,Chest,상자,,,,,\n"
	supplemental := translationHeader +
		"Override,10,1,Supplemental name,,South,,,\n" +
		"Override,10,2,Second,,,,,\n"

	tables := BuildTranslationTables(primary, "", supplemental)

	rec := tables.Overrides["10"]["1"]
	assert.Equal(t, "Supplemental name", rec.Name)
	assert.Equal(t, "Primary description", rec.Description)
	assert.Equal(t, "South", rec.Region)
	assert.Equal(t, domain.ImageSingle, rec.Image.Kind)
	assert.Equal(t, "Second", tables.Overrides["10"]["2"].Name)
	assert.Equal(t, "상자", tables.Dictionary["Chest"])
}

func TestBuildTranslationTables_FreshPerCall(t *testing.T) {
	first := BuildTranslationTables(translationHeader + "Override,10,1,A,,,,,\n")
	second := BuildTranslationTables(translationHeader + "Override,20,1,B,,,,,\n")

	assert.NotContains(t, second.Overrides, "10")
	assert.NotContains(t, first.Overrides, "20")
}

func TestBuildTranslationTables_MissingRequiredColumns(t *testing.T) {
	tables := BuildTranslationTables("Category,Key,Korean\n10,1,name\n")
	assert.Empty(t, tables.Overrides)
	assert.Empty(t, tables.Dictionary)
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		input string
		want  *domain.Position
	}{
		{"[3.5|-2.25]", &domain.Position{X: 3.5, Y: -2.25}},
		{"[ 1 | 2 ]", &domain.Position{X: 1, Y: 2}},
		{"[1|2|3]", nil},
		{"[1|Inf]", nil},
		{"[NaN|1]", nil},
		{"1|2", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePosition(tt.input))
		})
	}
}

func TestParseImage(t *testing.T) {
	assert.Equal(t, domain.ImageOverride{}, parseImage("  ", "1"))
	assert.Equal(t, domain.ImageOverride{Kind: domain.ImageClear}, parseImage("NULL", "1"))
	assert.Equal(t, domain.ImageOverride{}, parseImage("[ | ]", "1"))
	assert.Equal(t,
		domain.ImageOverride{Kind: domain.ImageList, Paths: []string{"x/5.png"}},
		parseImage("[x/{id}.png]", "5"),
	)
}

func TestNormalizeDescription(t *testing.T) {
	got := normalizeDescription(" a<hr>b<hr>c ")
	assert.Equal(t, 2, strings.Count(got, styledRule))
	assert.NotContains(t, got, "<hr>")
}
