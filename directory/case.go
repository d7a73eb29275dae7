package directory

import (
	"reflect"
	"strings"
	"unicode"
)

// namespaceOf returns the cache namespace for a model: its type name in snake_case.
func namespaceOf(model any) string {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return toSnake(t.Name())
}

// toSnake converts s to snake_case. Runs of punctuation collapse into a single
// underscore and are trimmed from both ends, so the result is safe as a key prefix.
func toSnake(s string) string {
	runes := []rune(s)

	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	// sep is set when an underscore is owed before the next letter or digit.
	sep := false
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sep = true
				}
			}
			r = unicode.ToLower(r)
		case unicode.IsLower(r):
		case unicode.IsDigit(r):
			if i > 0 && !unicode.IsDigit(runes[i-1]) {
				sep = true
			}
		default:
			sep = true
			continue
		}

		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}

	return b.String()
}
