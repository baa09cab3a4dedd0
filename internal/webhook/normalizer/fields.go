package normalizer

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// fields is a decoded JSON object with lookup helpers tolerant of the
// field-name variants lead platforms have used over time.
type fields map[string]any

func asFields(payload any) fields {
	if m, ok := payload.(map[string]any); ok {
		return fields(m)
	}
	return fields{}
}

// str returns the first non-empty scalar value among keys.
func (f fields) str(keys ...string) string {
	for _, key := range keys {
		if v, ok := f[key]; ok {
			if s := scalarString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// object returns the first nested object among keys.
func (f fields) object(keys ...string) fields {
	for _, key := range keys {
		if m, ok := f[key].(map[string]any); ok {
			return fields(m)
		}
	}
	return fields{}
}

// flag reports whether any of keys holds a truthy boolean or string.
func (f fields) flag(keys ...string) bool {
	for _, key := range keys {
		switch v := f[key].(type) {
		case bool:
			if v {
				return true
			}
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "1", "yes":
				return true
			}
		case json.Number:
			if v.String() == "1" {
				return true
			}
		case float64:
			if v == 1 {
				return true
			}
		}
	}
	return false
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// upperSnake maps "fullName", "full_name" and "FULL_NAME" to "FULL_NAME".
func upperSnake(key string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(key))
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]) {
			b.WriteByte('_')
		}
		if r == '-' || r == ' ' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func joinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

func putIfSet(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}
