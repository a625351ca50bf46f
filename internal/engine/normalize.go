package engine

import "strings"

// absentValues are raw cell values that mean "no data". Spreadsheet exports
// of null cells frequently materialize as these literals.
var absentValues = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"n/a":  {},
	"#n/a": {},
}

// NormalizeKey canonicalizes a natural key or address component. Whitespace
// is trimmed and null/NaN placeholders collapse to the empty string, so the
// literal "nan" can never leak into a composite address.
func NormalizeKey(raw string) string {
	s := strings.TrimSpace(raw)
	if _, absent := absentValues[strings.ToLower(s)]; absent {
		return ""
	}
	return s
}

// ComposeAddress derives the composite address from the number, responder and
// label fields. Absent components degrade to shorter strings, down to "" when
// all three are absent.
func ComposeAddress(number, responder, label string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{number, responder, label} {
		if v := NormalizeKey(p); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}
