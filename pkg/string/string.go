package string

import (
	"strings"
	"unicode"
)

func TrimStrings(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}

func TrimSlice(ss []string) {
	for i := range ss {
		ss[i] = strings.TrimSpace(ss[i])
	}
}

func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	lastSep := true
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			if !lastSep {
				b.WriteByte('_')
				lastSep = true
			}
			continue
		}
		if unicode.IsUpper(r) && i > 0 && !lastSep &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
		lastSep = false
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ToKebabCase lowercases and replaces every non-alphanumeric run with a dash.
func ToKebabCase(s string) string {
	return strings.ToLower(normalize(s, '-'))
}

// ToTitleCase converts "my_project-name" style identifiers to "My Project Name".
func ToTitleCase(s string) string {
	words := strings.Fields(normalize(s, ' '))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// normalize replaces every non-alphanumeric run with a single separator and
// trims separators from both ends.
func normalize(s string, sep rune) string {
	var b strings.Builder
	lastSep := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSep = false
		} else if !lastSep {
			b.WriteRune(sep)
			lastSep = true
		}
	}
	return strings.TrimSuffix(b.String(), string(sep))
}
