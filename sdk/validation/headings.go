package validation

import (
	"strings"
	"unicode"
)

// Heading turns a camelCase field name into a column heading.
//
//	Heading("dueDate")   // "Due Date"
//	Heading("id")        // "ID"
//	Heading("XMLParser") // "XML Parser"
func Heading(field string) string {
	if strings.EqualFold(field, "id") {
		return "ID"
	}

	runes := []rune(field)
	var b strings.Builder
	for i, r := range runes {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			acronymEnd := unicode.IsUpper(runes[i-1]) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || acronymEnd {
				b.WriteRune(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
