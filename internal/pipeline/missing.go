package pipeline

import (
	"strings"

	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/pkg/csvtoken"
)

const missingHeaderPrefix = "categoryid"

// ParseMissingItems строит множество исключаемых ключей "{categoryId}_{itemId}"
func ParseMissingItems(text string) domain.KeySet {
	set := domain.KeySet{}
	for _, row := range csvtoken.Parse(text) {
		if len(row) < 2 {
			continue
		}
		category := strings.TrimSpace(row[0])
		id := strings.TrimSpace(row[1])
		if strings.EqualFold(category, missingHeaderPrefix) || category == "" || id == "" {
			continue
		}
		set.Add(domain.CompositeKey(category, id))
	}
	return set
}
