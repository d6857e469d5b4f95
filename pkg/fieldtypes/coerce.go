package fieldtypes

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatBool renders a boolean the way metadata documents store it.
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ParseBool accepts "true"/"false" in any casing as well as native booleans.
func ParseBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case nil:
		return false, nil
	}
	s := strings.TrimSpace(asString(v))
	switch {
	case s == "":
		return false, nil
	case strings.EqualFold(s, "true"):
		return true, nil
	case strings.EqualFold(s, "false"):
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean", s)
}

// ParseInt accepts integral strings and JSON numbers.
func ParseInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	}
	s := strings.TrimSpace(asString(v))
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return i, nil
}

// ParseNumber accepts numeric strings and JSON numbers.
func ParseNumber(v any) (float64, error) {
	if n, ok := v.(float64); ok {
		return n, nil
	}
	s := strings.TrimSpace(asString(v))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return f, nil
}

// FormatNumber renders a float without trailing zeros.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// NormalizeEnum maps a value onto the canonical casing of one of the allowed values.
func NormalizeEnum(value string, allowed []string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, a := range allowed {
		if a == value {
			return a, true
		}
	}
	for _, a := range allowed {
		if strings.EqualFold(a, value) {
			return a, true
		}
	}
	return value, false
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return FormatBool(s)
	case float64:
		return FormatNumber(s)
	case int:
		return strconv.Itoa(s)
	case json.Number:
		return s.String()
	case []string:
		if len(s) == 1 {
			return s[0]
		}
	case []any:
		if len(s) == 1 {
			return asString(s[0])
		}
	}
	return fmt.Sprint(v)
}

// asList normalizes a list attribute. A single element collapsed to a scalar by the
// XML conversion comes back as a one-element list.
func asList(v any) []string {
	switch l := v.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, 0, len(l))
		for _, s := range l {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s := strings.TrimSpace(asString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(l) == "" {
			return nil
		}
		return []string{strings.TrimSpace(l)}
	}
	return []string{asString(v)}
}

func isAbsent(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(s) == ""
	case []string:
		return len(asList(s)) == 0
	case []any:
		return len(asList(s)) == 0
	}
	return false
}
