package helpers

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Capitalize upper-cases the first character using Spanish casing rules and
// leaves the remainder untouched.
func Capitalize(s string) string {
	return CapitalizeIn(language.Spanish, s)
}

// CapitalizeIn upper-cases the first character of s for the given language.
func CapitalizeIn(tag language.Tag, s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return cases.Upper(tag).String(s[:size]) + s[size:]
}

// JoinCapitalized capitalizes every value and joins them with ", ".
func JoinCapitalized(values []string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, Capitalize(v))
	}
	return strings.Join(out, ", ")
}

// Tenths renders a value stored in tenths as a decimal, e.g. 69 -> "6.9", 60 -> "6".
func Tenths(units int) string {
	return strconv.FormatFloat(float64(units)/10, 'f', -1, 64)
}
