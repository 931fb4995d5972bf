// Package cleaning implements the deterministic text normalization applied to resume text
// before it reaches the vectorizer.
//
// The transform must stay byte-for-byte compatible with the cleaner the classifier was
// trained with, so every step is a regular expression applied in a fixed order, and
// whitespace means the full Unicode whitespace set rather than Go's ASCII \s.
package cleaning

import (
	"regexp"
	"strings"
	"unicode"
)

// space is the Unicode whitespace set: ASCII controls, the information separators,
// NEL and every Z-category code point.
const space = `\t\n\v\f\r\x1c-\x1f\x85\p{Z}`

var (
	urlPattern         = regexp.MustCompile(`http[^` + space + `]+[` + space + `]`)
	retweetPattern     = regexp.MustCompile(`RT|cc`)
	hashtagPattern     = regexp.MustCompile(`#[^` + space + `]+[` + space + `]`)
	mentionPattern     = regexp.MustCompile(`@[^` + space + `]+`)
	punctuationPattern = regexp.MustCompile("[!\"#$%&'()*+,\\-./:;<=>?@\\[\\\\\\]^_`{|}~]")
	nonASCIIPattern    = regexp.MustCompile(`[^a-zA-Z0-9` + space + `]`)
	whitespacePattern  = regexp.MustCompile(`[` + space + `]+`)
)

// Normalize cleans raw resume text. It never fails: any input, including the empty
// string and invalid UTF-8, yields ASCII letters and digits separated by single spaces
// with no leading or trailing space.
//
// Steps, each applied to the output of the previous one:
//  1. trim surrounding whitespace
//  2. URL tokens (http followed by non-space and one whitespace char) become a space
//  3. every occurrence of "RT" or "cc" becomes a space (case-sensitive substrings)
//  4. hashtag tokens (# followed by non-space and one whitespace char) become a space
//  5. mention tokens (@ followed by non-space) become two spaces
//  6. ASCII punctuation becomes a space
//  7. any remaining non-alphanumeric, non-whitespace char becomes a space
//  8. whitespace runs collapse to one space
//  9. trim again
func Normalize(text string) string {
	cleaned := trimSpace(text)
	cleaned = urlPattern.ReplaceAllLiteralString(cleaned, " ")
	cleaned = retweetPattern.ReplaceAllLiteralString(cleaned, " ")
	cleaned = hashtagPattern.ReplaceAllLiteralString(cleaned, " ")
	cleaned = mentionPattern.ReplaceAllLiteralString(cleaned, "  ")
	cleaned = punctuationPattern.ReplaceAllLiteralString(cleaned, " ")
	cleaned = nonASCIIPattern.ReplaceAllLiteralString(cleaned, " ")
	cleaned = whitespacePattern.ReplaceAllLiteralString(cleaned, " ")
	return trimSpace(cleaned)
}

// IsNormalized reports whether s already has the shape Normalize produces:
// ASCII alphanumerics separated by single spaces, no leading or trailing space.
func IsNormalized(s string) bool {
	if s == "" {
		return true
	}
	if s[0] == ' ' || s[len(s)-1] == ' ' {
		return false
	}
	prevSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			if prevSpace {
				return false
			}
			prevSpace = true
		case isASCIIAlnum(c):
			prevSpace = false
		default:
			return false
		}
	}
	return true
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\v', r == '\f', r == '\r':
		return true
	case r >= 0x1c && r <= 0x1f, r == 0x85:
		return true
	}
	return unicode.Is(unicode.Z, r)
}

func isASCIIAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
