package pipeline

import (
	"bytes"
	"encoding/json"

	"github.com/mapdata-service/internal/domain"
	"github.com/mapdata-service/internal/pkg/errors"
)

const (
	DatasetItems   = "items"
	DatasetRegions = "regions"
)

// decodeDataArray проверяет форму {"data": [...]} и возвращает элементы массива без разбора.
// Любое другое содержимое корня - структурная ошибка набора dataset.
func decodeDataArray(raw []byte, dataset string) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.InvalidPayload(dataset, "top-level value is not an object")
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, errors.InvalidPayload(dataset, "malformed JSON: "+err.Error())
	}

	data := bytes.TrimSpace(envelope["data"])
	if len(data) == 0 || data[0] != '[' {
		return nil, errors.InvalidPayload(dataset, "missing data array")
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, errors.InvalidPayload(dataset, "malformed data array: "+err.Error())
	}
	return elems, nil
}

// ParseItems разбирает {"data": RawItem[]}. Битые элементы пропускаются.
func ParseItems(raw []byte) ([]domain.RawItem, error) {
	elems, err := decodeDataArray(raw, DatasetItems)
	if err != nil {
		return nil, err
	}

	items := make([]domain.RawItem, 0, len(elems))
	for _, elem := range elems {
		var item domain.RawItem
		if err := json.Unmarshal(elem, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
