package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// StringList is a list field that clients may send either as a JSON array
// or as a single string.
//
// Accepted forms:
//   - ["Red", "Blue"]
//   - [{"name": "Red"}, {"color": "Blue"}, {"label": "Green"}]
//   - "Red, Blue" or "Red\nBlue"
//   - "[\"Red\", \"Blue\"]" (a JSON array encoded as a string)
//
// Entries are trimmed, and empty or duplicate entries are dropped.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	switch data[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*l = parseListString(raw)
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = parseListItems(items)
		return nil
	default:
		return fmt.Errorf("expected a string or an array, got %s", string(data))
	}
}

func parseListString(raw string) StringList {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			return parseListItems(items)
		}
	}
	parts := strings.FieldsFunc(trimmed, func(r rune) bool { return r == ',' || r == '\n' })
	return compact(parts)
}

func parseListItems(items []json.RawMessage) StringList {
	values := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			values = append(values, s)
			continue
		}
		var obj struct {
			Name  string `json:"name"`
			Color string `json:"color"`
			Label string `json:"label"`
		}
		if err := json.Unmarshal(item, &obj); err == nil {
			switch {
			case obj.Name != "":
				values = append(values, obj.Name)
			case obj.Color != "":
				values = append(values, obj.Color)
			case obj.Label != "":
				values = append(values, obj.Label)
			}
		}
	}
	return compact(values)
}

func compact(values []string) StringList {
	seen := make(map[string]struct{}, len(values))
	out := make(StringList, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Numeric is a number that may also arrive as a numeric string. Strings
// may use a decimal comma ("12,50").
type Numeric struct {
	raw string
	set bool
}

// NewNumeric builds a Numeric from its textual form.
func NewNumeric(raw string) Numeric {
	return Numeric{raw: raw, set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Numeric{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Numeric{raw: strings.TrimSpace(s), set: true}
		return nil
	}
	*n = Numeric{raw: string(data), set: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	return json.Marshal(n.raw)
}

// IsSet reports whether a non-empty value was supplied.
func (n Numeric) IsSet() bool {
	return n.set && n.raw != ""
}

// Int parses the value as an integer, truncating any fraction.
func (n Numeric) Int() (int, error) {
	if v, err := strconv.Atoi(n.raw); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(n.raw, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a number", n.raw)
	}
	return int(math.Trunc(f)), nil
}

// Decimal parses the value as a decimal number.
func (n Numeric) Decimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.Replace(n.raw, ",", ".", 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", n.raw)
	}
	return d, nil
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an e-mail address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Resolve returns the trimmed request value when supplied, otherwise the
// stored fallback.
func Resolve(value *string, fallback string) string {
	if value == nil {
		return strings.TrimSpace(fallback)
	}
	return strings.TrimSpace(*value)
}

// ParseIdentifier reports whether a path identifier is a numeric primary
// key. Anything else is treated as a code.
func ParseIdentifier(identifier string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(identifier), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
