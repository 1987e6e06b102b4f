package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Исходные JSON-файлы собираются разными скриптами: идентификаторы и координаты
// встречаются и числами, и строками. Flex-типы принимают оба варианта.

// FlexString принимает строку или число и хранит его текстовое представление
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		s, err := numberText(b)
		if err != nil {
			return err
		}
		*f = FlexString(s)
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*f = FlexString(b)
	default:
		return fmt.Errorf("expected string or number, got %s", truncate(b))
	}
	return nil
}

// numberText приводит число к каноническому виду: 1.0 и 1e0 дают "1".
// Целые литералы без точки и экспоненты остаются как есть, без потери точности.
func numberText(b []byte) (string, error) {
	if !bytes.ContainsAny(b, ".eE") {
		if n, err := strconv.ParseInt(string(b), 10, 64); err == nil {
			return strconv.FormatInt(n, 10), nil
		}
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return "", fmt.Errorf("invalid number %s", truncate(b))
	}
	if v == 0 {
		return "0", nil
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

// FlexFloat принимает число или числовую строку; пустая строка и null дают 0
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	str := strings.TrimSpace(string(s))
	if str == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("invalid number %q", str)
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt принимает целое число или строку с целым числом
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	var v FlexFloat
	if err := v.UnmarshalJSON(b); err != nil {
		return err
	}
	if float64(v) != math.Trunc(float64(v)) {
		return fmt.Errorf("invalid integer %v", float64(v))
	}
	*f = FlexInt(v)
	return nil
}

// StringList принимает одну строку или массив строк
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if b[0] == '[' {
		var items []FlexString
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := strings.TrimSpace(string(item)); s != "" {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	}

	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if str := strings.TrimSpace(string(s)); str != "" {
		*l = StringList{str}
	} else {
		*l = nil
	}
	return nil
}

func truncate(b []byte) string {
	const limit = 32
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
